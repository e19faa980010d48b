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

// Package telemetry emits spans and log events for evaluation runs.
//
// Spans are emitted twice, once through the local tracer provider and once
// through the global one, so batch traces reach locally registered span
// processors even when the host application configures its own global
// provider.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.36.0"
	"go.opentelemetry.io/otel/trace"
)

// systemName identifies this instrumentation in tracer and logger scopes.
const systemName = "conversation.eval"

// Custom span attribute keys for evaluation runs.
const (
	evalBatchID           = attribute.Key("conversation.eval.batch_id")
	evalFileID            = attribute.Key("conversation.eval.file_id")
	evalBatchStatus       = attribute.Key("conversation.eval.batch_status")
	evalConversationCount = attribute.Key("conversation.eval.conversation_count")
	evalFailureCount      = attribute.Key("conversation.eval.failure_count")
	evalConversationID    = attribute.Key("conversation.eval.conversation_id")
	evalCaseIntent        = attribute.Key("conversation.eval.case_intent")
	evalLabel             = attribute.Key("conversation.eval.label")
	evalGrade             = attribute.Key("conversation.eval.grade")
	evalCompositeScore    = attribute.Key("conversation.eval.composite_score")
	evalMetric            = attribute.Key("conversation.eval.metric")
	evalAttempt           = attribute.Key("conversation.eval.attempt")
)

type tracerProviderHolder struct {
	tp trace.TracerProvider
}

type tracerProviderConfig struct {
	spanProcessors []sdktrace.SpanProcessor
	mu             *sync.RWMutex
}

var (
	once        sync.Once
	localTracer tracerProviderHolder
	// Span limits are disabled so long verdict payloads are not truncated.
	limits = sdktrace.SpanLimits{
		AttributeValueLengthLimit:   -1,
		AttributeCountLimit:         -1,
		EventCountLimit:             -1,
		LinkCountLimit:              -1,
		AttributePerEventCountLimit: -1,
		AttributePerLinkCountLimit:  -1,
	}
	localTracerConfig = tracerProviderConfig{
		spanProcessors: []sdktrace.SpanProcessor{},
		mu:             &sync.RWMutex{},
	}
)

// AddSpanProcessor adds a span processor to the local tracer config.
func AddSpanProcessor(processor sdktrace.SpanProcessor) {
	localTracerConfig.mu.Lock()
	defer localTracerConfig.mu.Unlock()
	localTracerConfig.spanProcessors = append(localTracerConfig.spanProcessors, processor)
}

// RegisterTelemetry sets up the local tracer that will be used to emit traces.
// We use a local tracer to respect the global tracer configurations.
func RegisterTelemetry() {
	once.Do(func() {
		traceProvider := sdktrace.NewTracerProvider(
			sdktrace.WithRawSpanLimits(limits),
		)
		localTracerConfig.mu.RLock()
		spanProcessors := localTracerConfig.spanProcessors
		localTracerConfig.mu.RUnlock()
		for _, processor := range spanProcessors {
			traceProvider.RegisterSpanProcessor(processor)
		}
		localTracer = tracerProviderHolder{tp: traceProvider}
	})
}

// If the global tracer is not set, the default NoopTracerProvider will be used.
// That means that those spans are NOT recording/exporting.
// If the local tracer is not set, we'll set up a tracer with all registered span processors.
func getTracers() []trace.Tracer {
	if localTracer.tp == nil {
		RegisterTelemetry()
	}
	return []trace.Tracer{
		localTracer.tp.Tracer(systemName),
		otel.GetTracerProvider().Tracer(systemName),
	}
}

// StartTrace returns spans to start emitting events, one from the local tracer
// and one from the global.
func StartTrace(ctx context.Context, traceName string) []trace.Span {
	tracers := getTracers()
	spans := make([]trace.Span, len(tracers))
	for i, tracer := range tracers {
		_, span := tracer.Start(ctx, traceName)
		spans[i] = span
	}
	return spans
}

// BatchParams carries the outcome of a batch evaluation run.
type BatchParams struct {
	BatchID       string
	FileID        string
	Status        string
	Conversations int
	Failures      int
	Error         error
}

// AfterBatch records the batch outcome on the spans and ends them.
func AfterBatch(spans []trace.Span, params BatchParams) {
	for _, span := range spans {
		span.SetAttributes(
			evalBatchID.String(params.BatchID),
			evalFileID.String(params.FileID),
			evalBatchStatus.String(params.Status),
			evalConversationCount.Int(params.Conversations),
			evalFailureCount.Int(params.Failures),
		)
		endSpan(span, params.Error)
	}
}

// ConversationParams carries the outcome of a single conversation evaluation.
type ConversationParams struct {
	ConversationID string
	CaseIntent     string
	Label          string
	Grade          string
	CompositeScore float64
	FailedMetrics  int
	Error          error
}

// AfterConversation records the conversation outcome on the spans and ends them.
func AfterConversation(spans []trace.Span, params ConversationParams) {
	for _, span := range spans {
		attributes := []attribute.KeyValue{
			evalConversationID.String(params.ConversationID),
			evalLabel.String(params.Label),
			evalGrade.String(params.Grade),
			evalCompositeScore.Float64(params.CompositeScore),
			evalFailureCount.Int(params.FailedMetrics),
		}
		if params.CaseIntent != "" {
			attributes = append(attributes, evalCaseIntent.String(params.CaseIntent))
		}
		span.SetAttributes(attributes...)
		endSpan(span, params.Error)
	}
}

// JudgeCallParams carries the outcome of a single judge model call.
type JudgeCallParams struct {
	Metric  string
	Attempt int
	Error   error
}

// AfterJudgeCall records the judge call outcome on the spans and ends them.
func AfterJudgeCall(spans []trace.Span, params JudgeCallParams) {
	for _, span := range spans {
		span.SetAttributes(
			semconv.GenAISystemKey.String(guessedGenAISystem),
			evalMetric.String(params.Metric),
			evalAttempt.Int(params.Attempt),
		)
		endSpan(span, params.Error)
	}
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
