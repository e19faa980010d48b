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

// Package semantic obtains judgment-based metrics from an external
// text-judgment service. It is the only pipeline stage that performs I/O
// and the only source of non-determinism.
//
// The service is a capability boundary, not a provider: anything
// satisfying the Judge interface works, which keeps evaluation testable
// with deterministic stubs. One call is issued per metric, concurrently
// up to a configured limit, with a per-call timeout and bounded retries.
// A metric whose calls all fail degrades to a recorded failure; the
// conversation continues with a partial metric set.
package semantic
