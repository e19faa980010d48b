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

import "errors"

var (
	// ErrMalformedConversation indicates a record that could not be
	// normalized into a conversation. Fatal for that one record only;
	// the batch continues and the record appears in the failure summary.
	ErrMalformedConversation = errors.New("evaluation: malformed conversation")

	// ErrRuleEngine indicates the rule engine received input that
	// violates its preconditions. The rule engine is pure and total over
	// well-formed conversations, so this is a defect and fails the run.
	ErrRuleEngine = errors.New("evaluation: rule engine defect")

	// ErrSemanticCall indicates a judge call that kept failing after
	// retries. Scoped to a single metric; the conversation proceeds with
	// the metric absent.
	ErrSemanticCall = errors.New("evaluation: semantic call failed")

	// ErrAggregationInconsistency indicates the scenario counts do not
	// partition the conversation total. This is a defect and fails the run.
	ErrAggregationInconsistency = errors.New("evaluation: aggregation inconsistency")
)
