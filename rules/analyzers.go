// Copyright 2025 Google LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package rules

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/harinee-md/log-analyzer-agent/conversation"
	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

const (
	// referenceTurnCount is the conversation length treated as "long"
	// when normalizing turn-derived scores.
	referenceTurnCount = 10
	// referenceQuestions is the question count treated as maximal effort.
	referenceQuestions = 5
	// resolutionWindow is how many closing turns are scanned for
	// resolution keywords.
	resolutionWindow = 3
)

func analyzeTurnCount(conv *conversation.Conversation) evaluation.Value {
	total := len(conv.Turns)
	var userTurns, agentTurns int
	for _, t := range conv.Turns {
		switch t.Speaker {
		case conversation.SpeakerUser:
			userTurns++
		case conversation.SpeakerAgent:
			agentTurns++
		}
	}
	return evaluation.Value{
		Score:     math.Min(float64(total)/referenceTurnCount, 1),
		Reasoning: fmt.Sprintf("Counted %d turns (User: %d, Agent: %d).", total, userTurns, agentTurns),
	}
}

// analyzePII scans agent turns only: PII originating from the user is not
// an agent fault.
func analyzePII(conv *conversation.Conversation) evaluation.Value {
	var parts []string
	for _, t := range conv.Turns {
		if t.Speaker == conversation.SpeakerAgent {
			parts = append(parts, t.Text)
		}
	}
	text := strings.Join(parts, " ")

	var total int
	var categories []string
	for _, p := range piiPatterns {
		if n := len(p.re.FindAllString(text, -1)); n > 0 {
			categories = append(categories, p.name)
			total += n
		}
	}

	if total == 0 {
		return evaluation.Value{Reasoning: "No PII detected in agent turns."}
	}
	return evaluation.Value{
		Score:     round3(math.Min(1, float64(total)/float64(len(conv.Turns)))),
		Reasoning: fmt.Sprintf("Found %d PII instances: %s.", total, strings.Join(categories, ", ")),
	}
}

func analyzeContextRetention(conv *conversation.Conversation) evaluation.Value {
	if len(conv.Turns) < 2 {
		return evaluation.Value{Score: 1, Reasoning: "Insufficient turns to measure context retention."}
	}

	type userEntity struct {
		key     string
		ordinal int
	}
	var entities []userEntity
	seen := make(map[string]struct{})
	for _, t := range conv.Turns {
		if t.Speaker != conversation.SpeakerUser {
			continue
		}
		for _, e := range ExtractEntities(t.Text) {
			key := strings.ToLower(e)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			entities = append(entities, userEntity{key: key, ordinal: t.Ordinal})
		}
	}
	if len(entities) == 0 {
		return evaluation.Value{Score: 1, Reasoning: "No user entities found to track."}
	}

	var referenced int
	for _, e := range entities {
		for _, t := range conv.Turns {
			if t.Speaker != conversation.SpeakerAgent || t.Ordinal <= e.ordinal {
				continue
			}
			if strings.Contains(strings.ToLower(t.Text), e.key) {
				referenced++
				break
			}
		}
	}

	return evaluation.Value{
		Score:     round3(float64(referenced) / float64(len(entities))),
		Reasoning: fmt.Sprintf("Agent referenced %d/%d user entities.", referenced, len(entities)),
	}
}

// analyzeCustomerEffort scores the effort the user expended. Raw effort
// rises with score; the composite applies the inversion.
func analyzeCustomerEffort(conv *conversation.Conversation) evaluation.Value {
	var userTurns, questions int
	for _, t := range conv.Turns {
		if t.Speaker != conversation.SpeakerUser {
			continue
		}
		userTurns++
		if strings.Contains(t.Text, "?") {
			questions++
		}
	}
	if userTurns == 0 {
		return evaluation.Value{Reasoning: "No user turns found, minimal effort required."}
	}

	turnEffort := math.Min(float64(userTurns)/referenceTurnCount, 1)
	questionEffort := math.Min(float64(questions)/referenceQuestions, 1)
	return evaluation.Value{
		Score: round3(turnEffort*0.6 + questionEffort*0.4),
		Reasoning: fmt.Sprintf("User made %d turns with %d questions. Effort based on turn count (%.2f) and question frequency (%.2f).",
			userTurns, questions, turnEffort, questionEffort),
	}
}

func (e *Engine) analyzeResolution(conv *conversation.Conversation) evaluation.Value {
	window := conv.Turns
	if len(window) > resolutionWindow {
		window = window[len(window)-resolutionWindow:]
	}
	for _, t := range window {
		text := strings.ToLower(t.Text)
		for _, keyword := range e.resolutionKeywords {
			if strings.Contains(text, keyword) {
				return evaluation.Value{
					Score:     1,
					Reasoning: fmt.Sprintf("Detected resolution keyword %q in last %d turns.", keyword, len(window)),
				}
			}
		}
	}
	return evaluation.Value{Reasoning: fmt.Sprintf("No resolution keywords found in last %d turns.", len(window))}
}

func (e *Engine) analyzeEscalation(conv *conversation.Conversation) evaluation.Value {
	parts := make([]string, 0, len(conv.Turns))
	for _, t := range conv.Turns {
		parts = append(parts, strings.ToLower(t.Text))
	}
	text := strings.Join(parts, " ")
	for _, keyword := range e.escalationKeywords {
		if strings.Contains(text, keyword) {
			return evaluation.Value{
				Score:     1,
				Reasoning: fmt.Sprintf("Detected escalation keyword %q in conversation.", keyword),
			}
		}
	}
	return evaluation.Value{Reasoning: "No escalation keywords detected."}
}

// analyzeIntentAccuracy measures how close the declared case intent is to
// the intent detectable from the opening user turn. Absent a declared
// intent or a user turn there is nothing to compare and the metric is
// omitted rather than zero-filled.
func analyzeIntentAccuracy(conv *conversation.Conversation) (evaluation.Value, bool) {
	intent := strings.TrimSpace(conv.CaseIntent)
	first, ok := conv.FirstUserTurn()
	if intent == "" || !ok {
		return evaluation.Value{}, false
	}

	similarity := intentSimilarity(intent, first.Text)
	return evaluation.Value{
		Score:     round3(similarity),
		Reasoning: fmt.Sprintf("Case intent %q has %.2f similarity with the opening user turn.", truncate(intent, 50), similarity),
	}, true
}

// intentSimilarity is a word-level edit-distance similarity in [0,1].
func intentSimilarity(a, b string) float64 {
	wordsA := tokenize(a)
	wordsB := tokenize(b)
	if len(wordsA) == 0 && len(wordsB) == 0 {
		return 1
	}
	if len(wordsA) == 0 || len(wordsB) == 0 {
		return 0
	}

	options := levenshtein.Options{
		InsCost: 1,
		DelCost: 1,
		SubCost: 1,
		Matches: levenshtein.IdenticalRunes,
	}
	// The library computes distances over rune sequences, so each distinct
	// word is mapped to a distinct rune; equal words compare equal and the
	// resulting distance is the word-level edit distance.
	ids := make(map[string]rune, len(wordsA)+len(wordsB))
	wordID := func(w string) rune {
		r, ok := ids[w]
		if !ok {
			r = rune(len(ids) + 1)
			ids[w] = r
		}
		return r
	}
	source := make([]rune, len(wordsA))
	for i, w := range wordsA {
		source[i] = wordID(w)
	}
	target := make([]rune, len(wordsB))
	for i, w := range wordsB {
		target[i] = wordID(w)
	}

	distance := levenshtein.DistanceForStrings(source, target, options)
	longest := max(len(wordsA), len(wordsB))
	return 1 - float64(distance)/float64(longest)
}

func tokenize(s string) []string {
	return strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
