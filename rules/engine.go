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

import (
	"fmt"
	"strings"

	"github.com/harinee-md/log-analyzer-agent/conversation"
	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

// Engine computes the deterministic metric family for a conversation.
type Engine struct {
	resolutionKeywords []string
	escalationKeywords []string
}

// Option configures an Engine.
type Option func(*Engine)

// WithResolutionKeywords replaces the default resolution keyword table.
// Keywords are matched case-insensitively as substrings.
func WithResolutionKeywords(keywords []string) Option {
	return func(e *Engine) {
		if len(keywords) > 0 {
			e.resolutionKeywords = lowered(keywords)
		}
	}
}

// WithEscalationKeywords replaces the default escalation keyword table.
func WithEscalationKeywords(keywords []string) Option {
	return func(e *Engine) {
		if len(keywords) > 0 {
			e.escalationKeywords = lowered(keywords)
		}
	}
}

// NewEngine returns an Engine with the default keyword tables.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		resolutionKeywords: lowered(DefaultResolutionKeywords),
		escalationKeywords: lowered(DefaultEscalationKeywords),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate runs every analyzer over conv and returns the rule metric set.
// Intent accuracy is included only when a case intent and a user turn
// exist to compare. A nil or empty conversation is a defect in the
// calling stage, reported as ErrRuleEngine.
func (e *Engine) Evaluate(conv *conversation.Conversation) (evaluation.Set, error) {
	if conv == nil || len(conv.Turns) == 0 {
		return nil, fmt.Errorf("%w: conversation with no turns reached the rule engine", evaluation.ErrRuleEngine)
	}

	set := evaluation.Set{
		evaluation.MetricTurnCount:          analyzeTurnCount(conv),
		evaluation.MetricPIIExposure:        analyzePII(conv),
		evaluation.MetricContextRetention:   analyzeContextRetention(conv),
		evaluation.MetricCustomerEffort:     analyzeCustomerEffort(conv),
		evaluation.MetricResolutionDetected: e.analyzeResolution(conv),
		evaluation.MetricEscalationDetected: e.analyzeEscalation(conv),
	}
	if value, ok := analyzeIntentAccuracy(conv); ok {
		set[evaluation.MetricIntentAccuracy] = value
	}
	return set, nil
}

func lowered(keywords []string) []string {
	out := make([]string, len(keywords))
	for i, k := range keywords {
		out[i] = strings.ToLower(k)
	}
	return out
}
