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

package evaluation

import "time"

// Label classifies the agent's act-or-refuse decision for one conversation.
type Label string

const (
	// LabelTP: the agent responded and the response was correct.
	LabelTP Label = "TP"
	// LabelTN: the agent refused and the refusal was correct.
	LabelTN Label = "TN"
	// LabelFP: the agent responded when it should not have, or responded
	// incorrectly.
	LabelFP Label = "FP"
	// LabelFN: the agent refused when it should have responded.
	LabelFN Label = "FN"
)

// AllLabels returns the four outcome labels.
func AllLabels() []Label {
	return []Label{LabelTP, LabelTN, LabelFP, LabelFN}
}

// Grade is the letter grade derived from a composite score.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// GradeForScore maps a composite score in [0,1] to a letter grade.
// Thresholds: A >= 0.85, B >= 0.70, C >= 0.55, D >= 0.40.
func GradeForScore(score float64) Grade {
	switch {
	case score >= 0.85:
		return GradeA
	case score >= 0.70:
		return GradeB
	case score >= 0.55:
		return GradeC
	case score >= 0.40:
		return GradeD
	default:
		return GradeF
	}
}

// BatchStatus reports how a batch run concluded.
type BatchStatus string

const (
	// StatusCompleted means at least one conversation was evaluated.
	StatusCompleted BatchStatus = "completed"
	// StatusNoProcessable means no record survived normalization; the
	// result carries only the failure summary.
	StatusNoProcessable BatchStatus = "no_processable_conversations"
)

// LabelResult is the binary classification for one conversation.
type LabelResult struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
}

// MetricFailure records a semantic metric that was attempted but could not
// be obtained after retries. The metric is absent from the conversation's
// set; the failure keeps it distinguishable from "not attempted".
type MetricFailure struct {
	Metric   Metric `json:"metric"`
	Attempts int    `json:"attempts"`
	Err      string `json:"error"`
}

// FailureRecord names an input record the normalizer had to skip.
type FailureRecord struct {
	ConversationID string `json:"conversation_id"`
	Reason         string `json:"reason"`
}

// ConversationResult is the evaluated outcome for one conversation.
type ConversationResult struct {
	ConversationID string `json:"conversation_id"`
	CaseIntent     string `json:"case_intent,omitempty"`
	TurnCount      int    `json:"turn_count"`

	// Normalized metric values, each in [0,1]. Absent metrics are
	// missing keys.
	Metrics map[Metric]float64 `json:"metrics"`

	CompositeScore float64 `json:"composite_score"`
	Grade          Grade   `json:"grade"`

	Label           Label   `json:"label"`
	LabelConfidence float64 `json:"label_confidence"`
	LabelRationale  string  `json:"label_rationale"`

	// Per-metric justification strings from both signal families.
	Reasoning map[Metric]string `json:"reasoning,omitempty"`

	// Semantic calls that failed after retries.
	FailedMetrics []MetricFailure `json:"failed_metrics,omitempty"`
}

// ScenarioResult aggregates the conversations sharing one case intent.
type ScenarioResult struct {
	// Scenario is the first-seen trimmed case intent for the group.
	Scenario          string `json:"scenario"`
	ConversationCount int    `json:"conversation_count"`

	// Mean per metric over the conversations where the metric is present.
	Metrics map[Metric]float64 `json:"metrics"`

	Labels         map[Label]int `json:"label_distribution"`
	CompositeScore float64       `json:"composite_score"`
	Grade          Grade         `json:"grade"`
}

// BatchResult is the final result tree for one input batch.
type BatchResult struct {
	BatchID   string      `json:"batch_id"`
	Status    BatchStatus `json:"status"`
	CreatedAt time.Time   `json:"created_at"`

	TotalConversations int `json:"total_conversations"`

	// Overall means, distribution and composite over all conversations.
	Metrics        map[Metric]float64 `json:"metrics"`
	Labels         map[Label]int      `json:"label_distribution"`
	CompositeScore float64            `json:"composite_score"`
	Grade          Grade              `json:"grade"`

	// Scenarios in first-occurrence order of their case intent.
	Scenarios []*ScenarioResult `json:"scenarios"`

	// Conversations in input order.
	Conversations []*ConversationResult `json:"conversations"`

	// Records skipped during normalization.
	Failures []FailureRecord `json:"failures,omitempty"`
}
