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
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

func TestParseVerdictScores(t *testing.T) {
	tests := []struct {
		name    string
		metric  evaluation.Metric
		raw     string
		want    evaluation.Value
		wantErr bool
	}{
		{
			name:   "plain json",
			metric: evaluation.MetricAnswerRelevancy,
			raw:    `{"score": 87, "reasoning": "directly answers the question"}`,
			want:   evaluation.Value{Score: 87, Reasoning: "directly answers the question"},
		},
		{
			name:   "markdown fenced",
			metric: evaluation.MetricClarity,
			raw:    "```json\n{\"score\": 42, \"reasoning\": \"rambling\"}\n```",
			want:   evaluation.Value{Score: 42, Reasoning: "rambling"},
		},
		{
			name:   "json embedded in prose",
			metric: evaluation.MetricTone,
			raw:    `Here is my assessment: {"score": 55, "reasoning": "neutral"} hope that helps!`,
			want:   evaluation.Value{Score: 55, Reasoning: "neutral"},
		},
		{
			name:   "percent suffixed string score",
			metric: evaluation.MetricResponseAccuracy,
			raw:    `{"score": "85%"}`,
			want:   evaluation.Value{Score: 85},
		},
		{
			name:   "numeric string score",
			metric: evaluation.MetricCompleteness,
			raw:    `{"score": "70", "reasoning": "missing one step"}`,
			want:   evaluation.Value{Score: 70, Reasoning: "missing one step"},
		},
		{
			name:   "key casing variance",
			metric: evaluation.MetricPIICompliance,
			raw:    `{"Score": 60, "Reasoning": "partially compliant"}`,
			want:   evaluation.Value{Score: 60, Reasoning: "partially compliant"},
		},
		{
			name:   "single quoted pseudo json",
			metric: evaluation.MetricRefusalCorrectness,
			raw:    `{'score': 45}`,
			want:   evaluation.Value{Score: 45},
		},
		{
			name:   "score clamped high",
			metric: evaluation.MetricClarity,
			raw:    `{"score": 250}`,
			want:   evaluation.Value{Score: 100},
		},
		{
			name:   "score clamped low",
			metric: evaluation.MetricClarity,
			raw:    `{"score": -5}`,
			want:   evaluation.Value{Score: 0},
		},
		{
			name:    "missing score key",
			metric:  evaluation.MetricTone,
			raw:     `{"verdict": "good"}`,
			wantErr: true,
		},
		{
			name:    "no json at all",
			metric:  evaluation.MetricTone,
			raw:     "I am unable to evaluate this conversation.",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdict(tt.metric, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseVerdict() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict() returned unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseVerdict() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseVerdictFlags(t *testing.T) {
	tests := []struct {
		name    string
		metric  evaluation.Metric
		raw     string
		want    evaluation.Value
		wantErr bool
	}{
		{
			name:   "hallucination detected with details",
			metric: evaluation.MetricHallucination,
			raw:    `{"hallucination_detected": true, "details": "invented a refund policy"}`,
			want:   evaluation.Value{Score: 100, Reasoning: "invented a refund policy"},
		},
		{
			name:   "hallucination clear uses default reasoning",
			metric: evaluation.MetricHallucination,
			raw:    `{"hallucination_detected": false}`,
			want:   evaluation.Value{Score: 0, Reasoning: "No hallucination detected."},
		},
		{
			name:   "incorrect refusal from string flag",
			metric: evaluation.MetricIncorrectRefusal,
			raw:    `{"incorrect_refusal": "true", "reasoning": "refused a legitimate request"}`,
			want:   evaluation.Value{Score: 100, Reasoning: "refused a legitimate request"},
		},
		{
			name:   "overconfidence clear",
			metric: evaluation.MetricOverconfidence,
			raw:    `{"overconfidence_detected": false, "reasoning": "hedged appropriately"}`,
			want:   evaluation.Value{Score: 0, Reasoning: "hedged appropriately"},
		},
		{
			name:    "missing flag key",
			metric:  evaluation.MetricOverconfidence,
			raw:     `{"score": 90}`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVerdict(tt.metric, tt.raw)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("parseVerdict() = %+v, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseVerdict() returned unexpected error: %v", err)
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("parseVerdict() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
