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

// Package labeler classifies one conversation into a TP/TN/FP/FN outcome.
//
// The classification is a total function over the rule and judge signal
// sets: a missing semantic signal falls back to a rule-only heuristic with
// reduced confidence, it never produces an error. When the source log
// carries precomputed action/intent scores those override the heuristics
// entirely.
package labeler

import (
	"fmt"
	"strings"

	"github.com/harinee-md/log-analyzer-agent/conversation"
	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

// DefaultRefusalPhrases mark an agent turn as an explicit refusal.
var DefaultRefusalPhrases = []string{
	"can't help",
	"unable to",
	"I don't have access",
}

const (
	// signalThreshold splits normalized correctness signals into pass/fail.
	signalThreshold = 0.5
	// fallbackConfidence applies whenever a label is decided without the
	// semantic signal that would normally decide it.
	fallbackConfidence = 0.6
)

// Labeler derives the binary outcome label for evaluated conversations.
type Labeler struct {
	refusalPhrases []string
}

// Option configures a Labeler.
type Option func(*Labeler)

// WithRefusalPhrases replaces the refusal phrase list. Matching is
// case-insensitive. Empty input keeps the defaults.
func WithRefusalPhrases(phrases []string) Option {
	return func(l *Labeler) {
		if len(phrases) > 0 {
			l.refusalPhrases = lowered(phrases)
		}
	}
}

// NewLabeler creates a Labeler with the default refusal phrase list.
func NewLabeler(opts ...Option) *Labeler {
	l := &Labeler{refusalPhrases: lowered(DefaultRefusalPhrases)}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Label classifies conv given the rule engine's set and the judge's set.
// Judge scores arrive on their raw scale; Label normalizes the signals it
// reads so thresholds compare like with like.
func (l *Labeler) Label(conv *conversation.Conversation, ruleSet, judgeSet evaluation.Set) evaluation.LabelResult {
	if r, ok := l.labelFromPrecomputed(conv); ok {
		return r
	}
	if l.refused(conv, ruleSet) {
		return l.labelRefusal(ruleSet, judgeSet)
	}
	return l.labelResponse(conv, judgeSet)
}

// labelFromPrecomputed applies the action/intent scores recorded in the
// source log, when both are present. These come from the system that
// produced the log and outrank every heuristic here.
func (l *Labeler) labelFromPrecomputed(conv *conversation.Conversation) (evaluation.LabelResult, bool) {
	pre := conv.Precomputed
	if pre == nil {
		return evaluation.LabelResult{}, false
	}
	acted := pre.ActionTaken >= signalThreshold
	expected := pre.ActionExpected >= signalThreshold

	var r evaluation.LabelResult
	switch {
	case expected && acted:
		r = evaluation.LabelResult{Label: evaluation.LabelTP, Confidence: 1.0, Rationale: "Agent action matched expected intent"}
	case expected && !acted:
		r = evaluation.LabelResult{Label: evaluation.LabelFN, Confidence: 1.0, Rationale: "Agent did not act when action was expected"}
	case !expected && acted:
		r = evaluation.LabelResult{Label: evaluation.LabelFP, Confidence: 1.0, Rationale: "Agent acted when no action was expected"}
	default:
		r = evaluation.LabelResult{Label: evaluation.LabelTN, Confidence: 1.0, Rationale: "Agent correctly did not act"}
	}
	return r, true
}

// refused reports whether the agent declined to help: no resolution was
// detected and the final agent turn contains an explicit refusal phrase.
func (l *Labeler) refused(conv *conversation.Conversation, ruleSet evaluation.Set) bool {
	if resolved, ok := signal(ruleSet, evaluation.MetricResolutionDetected); ok && resolved >= signalThreshold {
		return false
	}
	last, ok := conv.LastAgentTurn()
	if !ok {
		return false
	}
	text := strings.ToLower(last.Text)
	for _, phrase := range l.refusalPhrases {
		if strings.Contains(text, phrase) {
			return true
		}
	}
	return false
}

// labelResponse handles the agent-responded half of the decision table.
func (l *Labeler) labelResponse(conv *conversation.Conversation, judgeSet evaluation.Set) evaluation.LabelResult {
	if !conv.HasGroundTruth() {
		return evaluation.LabelResult{
			Label:      evaluation.LabelTP,
			Confidence: 0.9,
			Rationale:  "Agent responded; no ground truth available to dispute the response",
		}
	}
	accuracy, ok := signal(judgeSet, evaluation.MetricResponseAccuracy)
	if !ok {
		return evaluation.LabelResult{
			Label:      evaluation.LabelTP,
			Confidence: fallbackConfidence,
			Rationale:  "Agent responded; accuracy signal unavailable",
		}
	}
	if accuracy >= signalThreshold {
		return evaluation.LabelResult{
			Label:      evaluation.LabelTP,
			Confidence: 0.9,
			Rationale:  fmt.Sprintf("Agent responded correctly with %.0f%% accuracy", accuracy*100),
		}
	}
	return evaluation.LabelResult{
		Label:      evaluation.LabelFP,
		Confidence: 0.7,
		Rationale:  fmt.Sprintf("Agent responded but with low accuracy (%.0f%%)", accuracy*100),
	}
}

// labelRefusal handles the agent-refused half of the decision table.
func (l *Labeler) labelRefusal(ruleSet, judgeSet evaluation.Set) evaluation.LabelResult {
	correctness, ok := signal(judgeSet, evaluation.MetricRefusalCorrectness)
	if !ok {
		// Rule-only fallback: escalation or exposed PII justify a refusal.
		escalated, _ := signal(ruleSet, evaluation.MetricEscalationDetected)
		pii, _ := signal(ruleSet, evaluation.MetricPIIExposure)
		if escalated >= signalThreshold || pii > 0 {
			return evaluation.LabelResult{
				Label:      evaluation.LabelTN,
				Confidence: fallbackConfidence,
				Rationale:  "Refusal correctness unavailable; escalation or PII signals suggest refusal was appropriate",
			}
		}
		return evaluation.LabelResult{
			Label:      evaluation.LabelFN,
			Confidence: fallbackConfidence,
			Rationale:  "Refusal correctness unavailable and no rule signal justifies the refusal",
		}
	}
	if correctness >= signalThreshold {
		return evaluation.LabelResult{
			Label:      evaluation.LabelTN,
			Confidence: 0.9,
			Rationale:  "Agent correctly refused when refusal was appropriate",
		}
	}
	return evaluation.LabelResult{
		Label:      evaluation.LabelFN,
		Confidence: 0.85,
		Rationale:  "Agent refused when help was appropriate",
	}
}

// signal reads a metric and brings it onto the [0,1] scale so the 0.5
// threshold applies uniformly.
func signal(set evaluation.Set, m evaluation.Metric) (float64, bool) {
	v, ok := set.Score(m)
	if !ok {
		return 0, false
	}
	if m.Scale() == evaluation.ScalePercent {
		return v / 100, true
	}
	return v, true
}

func lowered(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, strings.ToLower(s))
	}
	return out
}
