// Copyright 2026 Google LLC
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

package telemetry

import (
	"errors"
	"sync"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.36.0"
)

var errTest = errors.New("test error")

// The local tracer provider registers processors exactly once, so all tests
// share a single in-memory exporter and reset it between cases.
var (
	testExporter     = tracetest.NewInMemoryExporter()
	registerExporter sync.Once
)

func setupTestTracer(t *testing.T) *tracetest.InMemoryExporter {
	t.Helper()
	registerExporter.Do(func() {
		AddSpanProcessor(sdktrace.NewSimpleSpanProcessor(testExporter))
		RegisterTelemetry()
	})
	testExporter.Reset()
	return testExporter
}

func TestStartTraceEmitsOnLocalAndGlobalTracers(t *testing.T) {
	exporter := setupTestTracer(t)

	spans := StartTrace(t.Context(), "evaluate_batch conversations.json")
	if len(spans) != 2 {
		t.Fatalf("StartTrace() returned %d spans, want 2", len(spans))
	}
	AfterBatch(spans, BatchParams{BatchID: "batch-1", FileID: "conversations.json", Status: "completed"})

	// Only the local span is recorded; the global tracer is a noop here.
	got := exporter.GetSpans()
	if len(got) != 1 {
		t.Fatalf("expected 1 recorded span, got %d", len(got))
	}
	if got[0].Name != "evaluate_batch conversations.json" {
		t.Errorf("got span name %q, want %q", got[0].Name, "evaluate_batch conversations.json")
	}
}

func TestAfterBatch(t *testing.T) {
	tests := []struct {
		name       string
		params     BatchParams
		wantStatus codes.Code
		wantAttrs  map[attribute.Key]string
	}{
		{
			name: "Success",
			params: BatchParams{
				BatchID:       "batch-1",
				FileID:        "conversations.json",
				Status:        "completed",
				Conversations: 12,
				Failures:      2,
			},
			wantStatus: codes.Ok,
			wantAttrs: map[attribute.Key]string{
				evalBatchID:           "batch-1",
				evalFileID:            "conversations.json",
				evalBatchStatus:       "completed",
				evalConversationCount: "12",
				evalFailureCount:      "2",
			},
		},
		{
			name: "Error",
			params: BatchParams{
				BatchID: "batch-2",
				FileID:  "conversations.json",
				Error:   errTest,
			},
			wantStatus: codes.Error,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exporter := setupTestTracer(t)

			spans := StartTrace(t.Context(), "evaluate_batch "+tc.params.FileID)
			AfterBatch(spans, tc.params)

			recorded := exporter.GetSpans()
			if len(recorded) != 1 {
				t.Fatalf("expected 1 recorded span, got %d", len(recorded))
			}
			gotSpan := recorded[0]

			if gotSpan.Status.Code != tc.wantStatus {
				t.Errorf("expected status %v, got %v", tc.wantStatus, gotSpan.Status.Code)
			}
			if tc.params.Error != nil && gotSpan.Status.Description != tc.params.Error.Error() {
				t.Errorf("expected status description %q, got %q", tc.params.Error.Error(), gotSpan.Status.Description)
			}
			gotAttrs := attributesToMap(gotSpan.Attributes)
			for k, v := range tc.wantAttrs {
				if gotAttrs[k] != v {
					t.Errorf("attribute %q: got %q, want %q", k, gotAttrs[k], v)
				}
			}
		})
	}
}

func TestAfterConversation(t *testing.T) {
	tests := []struct {
		name           string
		params         ConversationParams
		wantStatus     codes.Code
		wantAttrs      map[attribute.Key]string
		wantCaseIntent bool
	}{
		{
			name: "Success",
			params: ConversationParams{
				ConversationID: "conv-1",
				CaseIntent:     "billing",
				Label:          "TP",
				Grade:          "B",
				CompositeScore: 0.82,
				FailedMetrics:  1,
			},
			wantStatus: codes.Ok,
			wantAttrs: map[attribute.Key]string{
				evalConversationID: "conv-1",
				evalCaseIntent:     "billing",
				evalLabel:          "TP",
				evalGrade:          "B",
				evalCompositeScore: "0.82",
				evalFailureCount:   "1",
			},
			wantCaseIntent: true,
		},
		{
			name: "NoCaseIntent",
			params: ConversationParams{
				ConversationID: "conv-2",
				Label:          "TN",
				Grade:          "A",
				CompositeScore: 0.9,
			},
			wantStatus: codes.Ok,
			wantAttrs: map[attribute.Key]string{
				evalConversationID: "conv-2",
				evalLabel:          "TN",
				evalGrade:          "A",
				evalCompositeScore: "0.9",
			},
		},
		{
			name: "Error",
			params: ConversationParams{
				ConversationID: "conv-3",
				Error:          errTest,
			},
			wantStatus: codes.Error,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exporter := setupTestTracer(t)

			spans := StartTrace(t.Context(), "evaluate_conversation "+tc.params.ConversationID)
			AfterConversation(spans, tc.params)

			recorded := exporter.GetSpans()
			if len(recorded) != 1 {
				t.Fatalf("expected 1 recorded span, got %d", len(recorded))
			}
			gotSpan := recorded[0]

			if gotSpan.Status.Code != tc.wantStatus {
				t.Errorf("expected status %v, got %v", tc.wantStatus, gotSpan.Status.Code)
			}
			if tc.params.Error != nil && gotSpan.Status.Description != tc.params.Error.Error() {
				t.Errorf("expected status description %q, got %q", tc.params.Error.Error(), gotSpan.Status.Description)
			}
			gotAttrs := attributesToMap(gotSpan.Attributes)
			for k, v := range tc.wantAttrs {
				if gotAttrs[k] != v {
					t.Errorf("attribute %q: got %q, want %q", k, gotAttrs[k], v)
				}
			}
			if _, ok := gotAttrs[evalCaseIntent]; ok != tc.wantCaseIntent {
				t.Errorf("case intent attribute present = %v, want %v", ok, tc.wantCaseIntent)
			}
		})
	}
}

func TestAfterJudgeCall(t *testing.T) {
	tests := []struct {
		name       string
		params     JudgeCallParams
		wantStatus codes.Code
		wantAttrs  map[attribute.Key]string
	}{
		{
			name: "Success",
			params: JudgeCallParams{
				Metric:  "answer_relevancy",
				Attempt: 1,
			},
			wantStatus: codes.Ok,
			wantAttrs: map[attribute.Key]string{
				semconv.GenAISystemKey: guessedGenAISystem,
				evalMetric:             "answer_relevancy",
				evalAttempt:            "1",
			},
		},
		{
			name: "Error",
			params: JudgeCallParams{
				Metric:  "tone_appropriateness",
				Attempt: 3,
				Error:   errTest,
			},
			wantStatus: codes.Error,
			wantAttrs: map[attribute.Key]string{
				evalMetric:  "tone_appropriateness",
				evalAttempt: "3",
			},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			exporter := setupTestTracer(t)

			spans := StartTrace(t.Context(), "judge_metric "+tc.params.Metric)
			AfterJudgeCall(spans, tc.params)

			recorded := exporter.GetSpans()
			if len(recorded) != 1 {
				t.Fatalf("expected 1 recorded span, got %d", len(recorded))
			}
			gotSpan := recorded[0]

			if gotSpan.Status.Code != tc.wantStatus {
				t.Errorf("expected status %v, got %v", tc.wantStatus, gotSpan.Status.Code)
			}
			if tc.params.Error != nil && gotSpan.Status.Description != tc.params.Error.Error() {
				t.Errorf("expected status description %q, got %q", tc.params.Error.Error(), gotSpan.Status.Description)
			}
			gotAttrs := attributesToMap(gotSpan.Attributes)
			for k, v := range tc.wantAttrs {
				if gotAttrs[k] != v {
					t.Errorf("attribute %q: got %q, want %q", k, gotAttrs[k], v)
				}
			}
		})
	}
}

func attributesToMap(attrs []attribute.KeyValue) map[attribute.Key]string {
	m := make(map[attribute.Key]string, len(attrs))
	for _, attr := range attrs {
		m[attr.Key] = attr.Value.Emit()
	}
	return m
}
