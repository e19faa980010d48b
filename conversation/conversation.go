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

package conversation

import "strings"

// Speaker identifies who produced a turn.
type Speaker string

const (
	SpeakerUser   Speaker = "User"
	SpeakerAgent  Speaker = "Agent"
	SpeakerSystem Speaker = "System"
)

// Turn is one utterance within a conversation. Ordinal is the zero-based
// position and is strictly increasing; speaker alternation is not
// guaranteed. IsAction marks machine payloads (JSON action messages)
// that should not be judged as natural-language agent text.
type Turn struct {
	Speaker  Speaker `json:"speaker"`
	Text     string  `json:"text"`
	Ordinal  int     `json:"ordinal"`
	IsAction bool    `json:"is_action,omitempty"`
}

// PrecomputedScores carries the action/intent binary scores some report
// exports include. When both are present the labeler classifies from them
// directly instead of deriving signals.
type PrecomputedScores struct {
	// ActionTaken is 1 when the agent performed the download action.
	ActionTaken float64 `json:"action_taken"`
	// ActionExpected is 1 when the ground truth shows the action was
	// expected.
	ActionExpected float64 `json:"action_expected"`
}

// Conversation is the canonical unit of evaluation. It is created once by
// the normalizer and never mutated; downstream stages attach derived
// results alongside it, never into it.
type Conversation struct {
	ID         string `json:"id"`
	CaseIntent string `json:"case_intent,omitempty"`
	Turns      []Turn `json:"turns"`

	// GroundTruth is the expected response text, flattened to a plain
	// string. Empty when the record carried none or the payload was
	// malformed.
	GroundTruth string `json:"ground_truth,omitempty"`

	// GroundTruthSubject is the subject line of a structured ground-truth
	// payload, used as the reference intent.
	GroundTruthSubject string `json:"ground_truth_subject,omitempty"`

	Precomputed *PrecomputedScores `json:"precomputed_scores,omitempty"`

	// Transcript preserves the raw multi-turn text for judge prompts.
	Transcript string `json:"transcript,omitempty"`
}

// HasGroundTruth returns true if a ground-truth response is available.
func (c *Conversation) HasGroundTruth() bool {
	return c.GroundTruth != ""
}

// AgentText returns the non-action agent turns joined with newlines.
func (c *Conversation) AgentText() string {
	var parts []string
	for _, t := range c.Turns {
		if t.Speaker == SpeakerAgent && !t.IsAction {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// UserText returns the user turns joined with newlines.
func (c *Conversation) UserText() string {
	var parts []string
	for _, t := range c.Turns {
		if t.Speaker == SpeakerUser {
			parts = append(parts, t.Text)
		}
	}
	return strings.Join(parts, "\n")
}

// FirstUserTurn returns the earliest user turn.
func (c *Conversation) FirstUserTurn() (Turn, bool) {
	for _, t := range c.Turns {
		if t.Speaker == SpeakerUser {
			return t, true
		}
	}
	return Turn{}, false
}

// LastAgentTurn returns the latest non-action agent turn.
func (c *Conversation) LastAgentTurn() (Turn, bool) {
	for i := len(c.Turns) - 1; i >= 0; i-- {
		if c.Turns[i].Speaker == SpeakerAgent && !c.Turns[i].IsAction {
			return c.Turns[i], true
		}
	}
	return Turn{}, false
}
