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

package semantic

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

// flagKeys maps boolean judge metrics to the JSON key carrying their
// verdict. Everything else reports a numeric "score".
var flagKeys = map[evaluation.Metric]string{
	evaluation.MetricHallucination:    "hallucination_detected",
	evaluation.MetricIncorrectRefusal: "incorrect_refusal",
	evaluation.MetricOverconfidence:   "overconfidence_detected",
}

var jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)

// parseVerdict decodes a judge reply into a raw metric value. Score
// metrics stay on the 0-100 scale and flags become 100 (detected) or 0.
// Anything unparsable is an error eligible for retry.
func parseVerdict(m evaluation.Metric, raw string) (evaluation.Value, error) {
	payload, err := decodePayload(raw)
	if err != nil {
		return evaluation.Value{}, err
	}

	if key, ok := flagKeys[m]; ok {
		detected, ok := lookupBool(payload, key)
		if !ok {
			return evaluation.Value{}, fmt.Errorf("verdict is missing the %q flag", key)
		}
		var score float64
		if detected {
			score = 100
		}
		reasoning, ok := lookupString(payload, "reasoning", "details")
		if !ok {
			reasoning = defaultFlagReasoning(m, detected)
		}
		return evaluation.Value{Score: score, Reasoning: reasoning}, nil
	}

	score, ok := lookupScore(payload)
	if !ok {
		return evaluation.Value{}, errors.New(`verdict is missing the "score" key`)
	}
	reasoning, _ := lookupString(payload, "reasoning", "details")
	return evaluation.Value{Score: clampScore(score), Reasoning: reasoning}, nil
}

// decodePayload extracts the JSON object from a reply, stripping
// markdown fences and surrounding prose.
func decodePayload(raw string) (map[string]any, error) {
	cleaned := strings.ReplaceAll(raw, "```json", "")
	cleaned = strings.ReplaceAll(cleaned, "```", "")
	cleaned = strings.TrimSpace(cleaned)

	var payload map[string]any
	if err := json.Unmarshal([]byte(cleaned), &payload); err == nil {
		return payload, nil
	}
	if object := jsonObjectRe.FindString(cleaned); object != "" {
		if err := json.Unmarshal([]byte(object), &payload); err == nil {
			return payload, nil
		}
		// Some models emit single-quoted pseudo-JSON.
		if err := json.Unmarshal([]byte(strings.ReplaceAll(object, "'", `"`)), &payload); err == nil {
			return payload, nil
		}
	}
	return nil, errors.New("verdict contains no parsable JSON object")
}

// lookupKey finds the first of names in payload, matching keys
// case-insensitively.
func lookupKey(payload map[string]any, names ...string) (any, bool) {
	for _, name := range names {
		for k, v := range payload {
			if strings.EqualFold(k, name) {
				return v, true
			}
		}
	}
	return nil, false
}

func lookupScore(payload map[string]any) (float64, bool) {
	v, ok := lookupKey(payload, "score")
	if !ok {
		return 0, false
	}
	switch s := v.(type) {
	case float64:
		return s, true
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(s), "%")
		f, err := strconv.ParseFloat(strings.TrimSpace(trimmed), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

func lookupBool(payload map[string]any, key string) (bool, bool) {
	v, ok := lookupKey(payload, key)
	if !ok {
		return false, false
	}
	switch b := v.(type) {
	case bool:
		return b, true
	case string:
		parsed, err := strconv.ParseBool(strings.ToLower(strings.TrimSpace(b)))
		if err != nil {
			return false, false
		}
		return parsed, true
	default:
		return false, false
	}
}

func lookupString(payload map[string]any, names ...string) (string, bool) {
	v, ok := lookupKey(payload, names...)
	if !ok {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}

func clampScore(v float64) float64 {
	return math.Min(100, math.Max(0, v))
}

func defaultFlagReasoning(m evaluation.Metric, detected bool) string {
	switch m {
	case evaluation.MetricHallucination:
		if detected {
			return "Hallucination detected."
		}
		return "No hallucination detected."
	case evaluation.MetricIncorrectRefusal:
		if detected {
			return "Incorrect refusal detected."
		}
		return "No incorrect refusal detected."
	case evaluation.MetricOverconfidence:
		if detected {
			return "Overconfidence detected."
		}
		return "No overconfidence detected."
	default:
		return ""
	}
}
