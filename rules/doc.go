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

// Package rules computes the deterministic metric family for a
// conversation using pattern matching and heuristics alone. The engine
// performs no I/O and holds no mutable state, so conversations can be
// analyzed concurrently without coordination.
//
// Analyzers cover turn counting, PII exposure in agent turns, entity-based
// context retention, customer effort, resolution and escalation keyword
// detection, and edit-distance intent accuracy. Each analyzer is
// independent and order-insensitive; together they produce an
// evaluation.Set with a justification string per metric.
package rules
