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
	"context"
	"encoding/json"
	"os"
	"strings"

	"go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/log/global"
	semconv "go.opentelemetry.io/otel/semconv/v1.36.0"

	"github.com/harinee-md/log-analyzer-agent/internal/version"
)

// Message content is not logged by default. Set the following env variable to
// enable logging of prompt/verdict content.
// OTEL_INSTRUMENTATION_GENAI_CAPTURE_MESSAGE_CONTENT=true
var elideMessageContent = !isEnvVarTrue("OTEL_INSTRUMENTATION_GENAI_CAPTURE_MESSAGE_CONTENT")

const elidedContent = "<elided>"

// guessedGenAISystem is the AI system serving judge calls.
var guessedGenAISystem = guessAISystem()

var logger = global.GetLoggerProvider().Logger(
	systemName,
	log.WithSchemaURL(semconv.SchemaURL),
	log.WithInstrumentationVersion(version.Version),
)

// LogJudgePrompt logs the prompt sent to the judge model for one metric.
// Semconv reference: https://github.com/open-telemetry/semantic-conventions/blob/v1.36.0/docs/gen-ai/gen-ai-events.md#event-gen_aiusermessage.
// NOTE: The spec requires a "role" body field, but it's omitted. Judge prompts
// always carry the user role.
func LogJudgePrompt(ctx context.Context, metric string, prompt string) {
	record := log.Record{}
	record.SetEventName("gen_ai.user.message")
	record.SetBody(log.MapValue(
		log.KeyValue{Key: "content", Value: promptToLogValue(prompt)},
	))
	record.AddAttributes(
		aiSystemAttribute(),
		log.String(string(evalMetric), metric),
	)
	logger.Emit(ctx, record)
}

// LogJudgeVerdict logs the judge reply for one metric.
// Semconv reference: https://github.com/open-telemetry/semantic-conventions/blob/v1.36.0/docs/gen-ai/gen-ai-events.md#event-gen_aichoice.
// NOTE: The spec embeds the "content" field under the "message" key, but it's
// added directly in body. Verdicts that parse as JSON are logged structured,
// anything else is logged as a raw string.
func LogJudgeVerdict(ctx context.Context, metric string, reply string, err error) {
	record := log.Record{}
	record.SetEventName("gen_ai.choice")

	kvs := []log.KeyValue{
		// A judge call carries a single verdict. Hardcoding index to 0.
		log.Int("index", 0),
		{Key: "content", Value: verdictToLogValue(reply)},
	}
	if err != nil {
		kvs = append(kvs, log.String("error", err.Error()))
	}
	record.SetBody(log.MapValue(kvs...))
	record.AddAttributes(
		aiSystemAttribute(),
		log.String(string(evalMetric), metric),
	)
	logger.Emit(ctx, record)
}

func isEnvVarTrue(name string) bool {
	val, ok := os.LookupEnv(name)
	if !ok {
		return false
	}
	val = strings.ToLower(val)
	return val == "true" || val == "1"
}

func guessAISystem() string {
	if isEnvVarTrue("GOOGLE_GENAI_USE_VERTEXAI") {
		return semconv.GenAISystemGCPVertexAI.Value.AsString()
	}
	return semconv.GenAISystemGCPGenAI.Value.AsString()
}

func aiSystemAttribute() log.KeyValue {
	return log.String(string(semconv.GenAISystemKey), guessedGenAISystem)
}

// promptToLogValue returns the prompt content, or the elided content string
// when content capture is disabled.
func promptToLogValue(prompt string) log.Value {
	if elideMessageContent {
		return log.StringValue(elidedContent)
	}
	if prompt == "" {
		return log.Value{}
	}
	return log.StringValue(prompt)
}

// verdictToLogValue keeps the verdict structure when the reply is valid JSON.
func verdictToLogValue(reply string) log.Value {
	if elideMessageContent {
		return log.StringValue(elidedContent)
	}
	if reply == "" {
		return log.Value{}
	}
	var m map[string]any
	if err := json.Unmarshal([]byte(reply), &m); err != nil {
		return log.StringValue(reply)
	}
	return toLogValue(m)
}
