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

import "regexp"

// DefaultResolutionKeywords are the phrases whose presence in the closing
// turns marks a conversation as resolved.
var DefaultResolutionKeywords = []string{
	"resolved", "fixed", "completed", "done", "solved",
	"helped", "thank you", "thanks", "that works",
	"issue is resolved", "problem solved", "all set",
	"perfect", "great", "awesome", "appreciate",
}

// DefaultEscalationKeywords are the phrases that signal a request to
// reach a human.
var DefaultEscalationKeywords = []string{
	"transfer", "supervisor", "manager", "human agent",
	"speak to someone", "escalate", "connect me",
	"real person", "live agent",
}

// piiPattern pairs a PII category with its detection expression. The
// slice is ordered so detection reports categories deterministically.
type piiPattern struct {
	name string
	re   *regexp.Regexp
}

var piiPatterns = []piiPattern{
	{"email", regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)},
	{"phone", regexp.MustCompile(`\b(?:\+?1[-.\s]?)?\(?[0-9]{3}\)?[-.\s]?[0-9]{3}[-.\s]?[0-9]{4}\b`)},
	{"ssn", regexp.MustCompile(`\b\d{3}[-.\s]?\d{2}[-.\s]?\d{4}\b`)},
	{"credit_card", regexp.MustCompile(`\b(?:\d{4}[-.\s]?){3}\d{4}\b`)},
	{"ip_address", regexp.MustCompile(`\b\d{1,3}\.\d{1,3}\.\d{1,3}\.\d{1,3}\b`)},
}

// orderPatterns match order, invoice, ticket, and reference identifiers.
// A capture group, when present, isolates the identifier from its label.
var orderPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:order|invoice|case|ticket|ref|reference)[\s#:]*([A-Z0-9-]{5,})\b`),
	regexp.MustCompile(`(?i)#\s*([A-Z0-9][A-Z0-9-]*)`),
	regexp.MustCompile(`(?i)\bINV[0-9]+\b`),
	regexp.MustCompile(`(?i)\b[A-Z]{2,4}[0-9]{5,}\b`),
}

// properNounRe matches capitalized words and multi-word phrases, the
// entity candidates for context retention.
var properNounRe = regexp.MustCompile(`\b[A-Z][a-z]+(?:\s+[A-Z][a-z]+)*\b`)

// entityStopwords filters pronouns, pleasantries, and other
// sentence-leading words the proper-noun pattern over-matches.
var entityStopwords = map[string]struct{}{
	"i": {}, "a": {}, "an": {}, "the": {},
	"this": {}, "that": {}, "these": {}, "those": {},
	"my": {}, "me": {}, "mine": {}, "we": {}, "our": {}, "us": {},
	"you": {}, "your": {}, "it": {}, "its": {},
	"he": {}, "she": {}, "they": {}, "them": {},
	"hello": {}, "hi": {}, "hey": {},
	"thank": {}, "thanks": {}, "please": {}, "sorry": {}, "sure": {},
	"yes": {}, "no": {}, "ok": {}, "okay": {},
	"what": {}, "when": {}, "where": {}, "which": {}, "who": {}, "why": {}, "how": {},
	"can": {}, "could": {}, "would": {}, "should": {}, "will": {},
	"do": {}, "does": {}, "did": {}, "is": {}, "are": {}, "was": {}, "were": {}, "am": {},
	"bot": {}, "user": {}, "agent": {}, "system": {},
}
