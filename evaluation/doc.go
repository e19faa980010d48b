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

// Package evaluation defines the shared vocabulary of the conversation
// evaluation pipeline: the metric catalog, raw and normalized metric
// values, outcome labels, quality grades, the serializable result tree,
// and the pipeline error taxonomy.
//
// # Metric Catalog
//
// Seventeen metrics are produced per conversation, split by origin:
//
// Rule-based (deterministic pattern/heuristic analysis, no external calls):
//   - turn_count: conversation length against a 10-turn reference (0.0-1.0)
//   - pii_exposure: PII pattern hits in agent turns per turn (0.0-1.0, lower is better)
//   - context_retention: user entities the agent referenced back (0.0-1.0)
//   - customer_effort: user turn and question load (0.0-1.0, lower is better)
//   - resolution_detected: closing keywords in the final turns (flag)
//   - escalation_detected: handoff keywords anywhere (flag, lower is better)
//   - intent_accuracy: declared intent vs opening user turn similarity (0.0-1.0)
//
// Semantic (LLM-as-Judge, one external call each, 0-100 scale or flag):
//   - response_accuracy, answer_relevancy, completeness_score,
//     clarity_score, tone_appropriateness: quality scores (0-100)
//   - hallucination_rate, incorrect_refusal_rate, overconfidence:
//     risk flags mapped to 0 or 100 (lower is better)
//   - pii_handling_compliance, refusal_correctness: policy scores (0-100)
//
// A metric can be absent for a conversation: skipped because its input is
// missing (no ground truth) or degraded after failed judge calls. Absence
// is represented by a missing Set key, never by a sentinel value, so that
// composite scoring can renormalize weights over the metrics that exist.
//
// # Result Tree
//
// BatchResult -> ScenarioResult -> ConversationResult is a plain tree of
// strings, numbers and booleans, safe to hand to any serialization or
// presentation layer. Scenario order follows first appearance of each
// case intent in the input batch.
package evaluation
