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

import "strings"

// ExtractEntities returns the entity-like tokens in text: capitalized
// proper-noun phrases plus order and reference numbers. Duplicates are
// removed case-insensitively preserving first occurrence.
func ExtractEntities(text string) []string {
	var entities []string
	seen := make(map[string]struct{})

	add := func(candidate string) {
		key := strings.ToLower(candidate)
		if _, ok := seen[key]; ok {
			return
		}
		seen[key] = struct{}{}
		entities = append(entities, candidate)
	}

	for _, phrase := range properNounRe.FindAllString(text, -1) {
		if allStopwords(phrase) {
			continue
		}
		add(phrase)
	}
	for _, ref := range DetectOrderNumbers(text) {
		add(ref)
	}
	return entities
}

// DetectOrderNumbers returns the order, invoice, and reference
// identifiers found in text, deduplicated case-insensitively preserving
// first occurrence.
func DetectOrderNumbers(text string) []string {
	var refs []string
	seen := make(map[string]struct{})
	for _, re := range orderPatterns {
		for _, match := range re.FindAllStringSubmatch(text, -1) {
			ref := match[0]
			if len(match) > 1 && match[1] != "" {
				ref = match[1]
			}
			key := strings.ToLower(ref)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			refs = append(refs, ref)
		}
	}
	return refs
}

func allStopwords(phrase string) bool {
	for _, word := range strings.Fields(phrase) {
		if _, ok := entityStopwords[strings.ToLower(word)]; !ok {
			return false
		}
	}
	return true
}
