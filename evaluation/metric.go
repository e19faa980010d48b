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

// Metric identifies one evaluation metric.
type Metric string

const (
	// Rule-based metrics

	// MetricTurnCount measures conversation length against a 10-turn reference.
	// Score: 0.0 - 1.0, len(turns)/10 clamped.
	MetricTurnCount Metric = "turn_count"

	// MetricPIIExposure counts PII pattern hits in agent turns, per turn.
	// Score: 0.0 - 1.0 (lower is better).
	MetricPIIExposure Metric = "pii_exposure"

	// MetricContextRetention measures how many user-mentioned entities the
	// agent referenced back later in the conversation.
	// Score: 0.0 - 1.0; conversations with no entities score 1.0.
	MetricContextRetention Metric = "context_retention"

	// MetricCustomerEffort combines user turn count and question frequency.
	// Score: 0.0 - 1.0 (lower is better).
	MetricCustomerEffort Metric = "customer_effort"

	// MetricResolutionDetected flags closing keywords in the final three turns.
	MetricResolutionDetected Metric = "resolution_detected"

	// MetricEscalationDetected flags human-handoff keywords anywhere.
	// Lower is better.
	MetricEscalationDetected Metric = "escalation_detected"

	// MetricIntentAccuracy is the edit-distance similarity between the
	// declared case intent and the opening user turn.
	// Score: 0.0 - 1.0; absent when either side is missing.
	MetricIntentAccuracy Metric = "intent_accuracy"

	// Semantic quality metrics (LLM-as-Judge, 0-100)

	// MetricResponseAccuracy compares the agent response against the
	// ground-truth response. Requires ground truth.
	MetricResponseAccuracy Metric = "response_accuracy"

	// MetricAnswerRelevancy checks that the response addresses the user's
	// actual questions.
	MetricAnswerRelevancy Metric = "answer_relevancy"

	// MetricCompleteness checks coverage of the ground-truth information
	// and task completion. Requires ground truth.
	MetricCompleteness Metric = "completeness_score"

	// MetricClarity rates how clear and well-structured the response is.
	MetricClarity Metric = "clarity_score"

	// MetricTone rates professionalism and empathy of the response.
	MetricTone Metric = "tone_appropriateness"

	// Semantic risk metrics (LLM-as-Judge flags, stored as 0 or 100)

	// MetricHallucination flags fabricated or contradicted information.
	// Requires ground truth. Lower is better.
	MetricHallucination Metric = "hallucination_rate"

	// MetricIncorrectRefusal flags refusals of requests the ground truth
	// shows should have been served. Requires ground truth. Lower is better.
	MetricIncorrectRefusal Metric = "incorrect_refusal_rate"

	// MetricOverconfidence flags definitive claims made without supporting
	// data. Lower is better.
	MetricOverconfidence Metric = "overconfidence"

	// Semantic policy metrics (LLM-as-Judge, 0-100)

	// MetricPIICompliance rates adherence to PII handling policy.
	MetricPIICompliance Metric = "pii_handling_compliance"

	// MetricRefusalCorrectness rates whether the act-or-refuse decision
	// matched the ground truth. Requires ground truth.
	MetricRefusalCorrectness Metric = "refusal_correctness"
)

// Scale describes the native range a metric is produced on.
type Scale string

const (
	// ScaleUnit covers metrics already in [0,1].
	ScaleUnit Scale = "UNIT"
	// ScalePercent covers LLM-judgment scores in [0,100].
	ScalePercent Scale = "PERCENT"
	// ScaleFlag covers boolean metrics stored as 0 or 1.
	ScaleFlag Scale = "FLAG"
)

// AllMetrics returns the full metric catalog in canonical order.
func AllMetrics() []Metric {
	return append(RuleMetrics(), SemanticMetrics()...)
}

// RuleMetrics returns the metrics produced by the rule engine.
func RuleMetrics() []Metric {
	return []Metric{
		MetricTurnCount,
		MetricPIIExposure,
		MetricContextRetention,
		MetricCustomerEffort,
		MetricResolutionDetected,
		MetricEscalationDetected,
		MetricIntentAccuracy,
	}
}

// SemanticMetrics returns the metrics produced by the semantic evaluator.
func SemanticMetrics() []Metric {
	return []Metric{
		MetricResponseAccuracy,
		MetricAnswerRelevancy,
		MetricCompleteness,
		MetricClarity,
		MetricTone,
		MetricHallucination,
		MetricIncorrectRefusal,
		MetricOverconfidence,
		MetricPIICompliance,
		MetricRefusalCorrectness,
	}
}

// String returns the string representation of the metric.
func (m Metric) String() string {
	return string(m)
}

// Semantic returns true if the metric requires an LLM judgment call.
func (m Metric) Semantic() bool {
	switch m {
	case MetricResponseAccuracy,
		MetricAnswerRelevancy,
		MetricCompleteness,
		MetricClarity,
		MetricTone,
		MetricHallucination,
		MetricIncorrectRefusal,
		MetricOverconfidence,
		MetricPIICompliance,
		MetricRefusalCorrectness:
		return true
	default:
		return false
	}
}

// Boolean returns true if the metric is a flag rather than a score.
func (m Metric) Boolean() bool {
	switch m {
	case MetricResolutionDetected,
		MetricEscalationDetected,
		MetricHallucination,
		MetricIncorrectRefusal,
		MetricOverconfidence:
		return true
	default:
		return false
	}
}

// LowerIsBetter returns true if a high raw value indicates a problem.
// Storage keeps the raw intensity; composite scoring applies the inversion.
func (m Metric) LowerIsBetter() bool {
	switch m {
	case MetricPIIExposure,
		MetricCustomerEffort,
		MetricEscalationDetected,
		MetricHallucination,
		MetricIncorrectRefusal,
		MetricOverconfidence:
		return true
	default:
		return false
	}
}

// RequiresGroundTruth returns true if the metric cannot be computed
// without a ground-truth response. Such metrics are skipped, not
// zero-filled, when ground truth is absent.
func (m Metric) RequiresGroundTruth() bool {
	switch m {
	case MetricIntentAccuracy,
		MetricResponseAccuracy,
		MetricCompleteness,
		MetricHallucination,
		MetricIncorrectRefusal,
		MetricRefusalCorrectness:
		return true
	default:
		return false
	}
}

// Scale returns the native range the metric is produced on.
func (m Metric) Scale() Scale {
	if m.Boolean() {
		switch m {
		case MetricResolutionDetected, MetricEscalationDetected:
			return ScaleFlag
		default:
			// Judge flags arrive as 0 or 100.
			return ScalePercent
		}
	}
	if m.Semantic() {
		return ScalePercent
	}
	return ScaleUnit
}

// Value is one raw metric observation on the metric's native scale,
// together with a short human-readable justification.
type Value struct {
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning,omitempty"`
}

// Set maps metrics to raw values. A missing key means the metric is
// absent for the conversation (skipped or failed); downstream stages
// must tolerate missing keys.
type Set map[Metric]Value

// Score returns the raw score for m and whether it is present.
func (s Set) Score(m Metric) (float64, bool) {
	v, ok := s[m]
	return v.Score, ok
}

// Present returns true if m has a value in the set.
func (s Set) Present(m Metric) bool {
	_, ok := s[m]
	return ok
}

// Reasoning returns the per-metric justification strings.
func (s Set) Reasoning() map[Metric]string {
	out := make(map[Metric]string, len(s))
	for m, v := range s {
		if v.Reasoning != "" {
			out[m] = v.Reasoning
		}
	}
	return out
}

// Merge returns a new set containing s overlaid with other.
func (s Set) Merge(other Set) Set {
	out := make(Set, len(s)+len(other))
	for m, v := range s {
		out[m] = v
	}
	for m, v := range other {
		out[m] = v
	}
	return out
}
