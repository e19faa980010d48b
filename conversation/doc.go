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

// Package conversation holds the canonical conversation model and the
// normalizer that builds it from raw tabular records.
//
// A raw record is a map of column-like keys produced by an external
// ingestion layer. Two layouts are recognized:
//
// Report layout, a multi-turn conversation export:
//
//	example.multi_turn_conv      full transcript ("Bot: ...\nUser: ...")
//	example.case_intent          declared intent for the case
//	example.ground_truth_emails  JSON payload with the expected replies
//	example.conversation_id      optional explicit identifier
//	Download Action chat.score   optional precomputed action score
//	Download intent GT Email.score  optional precomputed intent score
//
// Exchange layout, one user/agent exchange per record:
//
//	user   the user query
//	agent  the agent response
//	human  optional ground-truth response
//	id     optional explicit identifier
//
// Layout detection is by presence of the distinguishing keys. The
// normalizer emits exactly one immutable Conversation per record, or a
// malformed-conversation failure naming the problem; it never drops a
// record silently.
package conversation
