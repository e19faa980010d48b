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

package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

func TestParseEmptyKeepsDefaults(t *testing.T) {
	got, err := Parse(nil)
	if err != nil {
		t.Fatalf("Parse(nil) returned unexpected error: %v", err)
	}
	if diff := cmp.Diff(Default(), got); diff != "" {
		t.Errorf("Parse(nil) mismatch (-want +got):\n%s", diff)
	}
}

func TestParseOverlay(t *testing.T) {
	doc := []byte(`
weights:
  clarity_score: 2.0
refusal_phrases:
  - cannot assist
judge:
  model: gemini-2.5-pro
  timeout: 45s
  retries: 0
pipeline:
  cache_size: 0
`)

	got, err := Parse(doc)
	if err != nil {
		t.Fatalf("Parse() returned unexpected error: %v", err)
	}

	want := Default()
	want.Weights = map[string]float64{"clarity_score": 2.0}
	want.RefusalPhrases = []string{"cannot assist"}
	want.Judge.Model = "gemini-2.5-pro"
	want.Judge.Timeout = 45 * time.Second
	want.Judge.Retries = 0
	want.Pipeline.CacheSize = 0

	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Parse() mismatch (-want +got):\n%s", diff)
	}
}

func TestParseRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"negative weight", "weights:\n  clarity_score: -1\n"},
		{"unknown metric in weights", "weights:\n  sentiment: 1\n"},
		{"negative retries", "judge:\n  retries: -1\n"},
		{"zero judge concurrency", "judge:\n  max_concurrent_calls: 0\n"},
		{"negative timeout", "judge:\n  timeout: -5s\n"},
		{"empty model", "judge:\n  model: \"\"\n"},
		{"zero conversation concurrency", "pipeline:\n  max_concurrent_conversations: 0\n"},
		{"negative cache size", "pipeline:\n  cache_size: -1\n"},
		{"not yaml", "weights: ["},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := Parse([]byte(tc.doc)); err == nil {
				t.Errorf("Parse(%q) accepted invalid input", tc.doc)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	cfg, err := Load(filepath.Join("testdata", "config.yaml"))
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if got := cfg.Judge.MaxConcurrentCalls; got != 8 {
		t.Errorf("Judge.MaxConcurrentCalls = %d, want 8", got)
	}
	if got := cfg.Judge.Timeout; got != 20*time.Second {
		t.Errorf("Judge.Timeout = %s, want 20s", got)
	}
	if got := cfg.Judge.RetryBackoff; got != 250*time.Millisecond {
		t.Errorf("Judge.RetryBackoff = %s, want 250ms", got)
	}
	if got := cfg.Pipeline.MaxConcurrentConversations; got != 6 {
		t.Errorf("Pipeline.MaxConcurrentConversations = %d, want 6", got)
	}
	if got := len(cfg.ResolutionKeywords); got != 3 {
		t.Errorf("len(ResolutionKeywords) = %d, want 3", got)
	}

	want := map[evaluation.Metric]float64{
		evaluation.MetricResponseAccuracy: 2.0,
		evaluation.MetricHallucination:    1.5,
		evaluation.MetricTurnCount:        0.5,
	}
	if diff := cmp.Diff(want, cfg.MetricWeights()); diff != "" {
		t.Errorf("MetricWeights() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join("testdata", "absent.yaml")); err == nil {
		t.Error("Load() succeeded on a missing file")
	}
}

func TestMetricWeightsEmpty(t *testing.T) {
	if got := Default().MetricWeights(); got != nil {
		t.Errorf("MetricWeights() = %v, want nil for empty table", got)
	}
}
