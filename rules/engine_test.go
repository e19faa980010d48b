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
	"errors"
	"strings"
	"testing"

	"github.com/harinee-md/log-analyzer-agent/conversation"
	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

func newConv(t *testing.T, transcript string) *conversation.Conversation {
	t.Helper()
	turns := conversation.ParseTranscript(transcript)
	if len(turns) == 0 {
		t.Fatalf("no turns parsed from %q", transcript)
	}
	return &conversation.Conversation{ID: "test", Turns: turns, Transcript: transcript}
}

func score(t *testing.T, set evaluation.Set, m evaluation.Metric) float64 {
	t.Helper()
	v, ok := set.Score(m)
	if !ok {
		t.Fatalf("metric %s absent", m)
	}
	return v
}

func TestEvaluateEntityRetention(t *testing.T) {
	c := newConv(t, "User: My name is John, order #A1.\nAgent: Hi John, order #A1 shipped.")

	set, err := NewEngine().Evaluate(c)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}

	if got := score(t, set, evaluation.MetricTurnCount); got != 0.2 {
		t.Errorf("turn count = %v, want 0.2", got)
	}
	if got := score(t, set, evaluation.MetricContextRetention); got != 1.0 {
		t.Errorf("context retention = %v, want 1.0", got)
	}
	wantReason := "Agent referenced 2/2 user entities."
	if got := set.Reasoning()[evaluation.MetricContextRetention]; got != wantReason {
		t.Errorf("context retention reasoning = %q, want %q", got, wantReason)
	}
	if set.Present(evaluation.MetricIntentAccuracy) {
		t.Error("intent accuracy present without a case intent")
	}
}

func TestEvaluateContextRetentionEdgeCases(t *testing.T) {
	e := NewEngine()

	single := &conversation.Conversation{Turns: []conversation.Turn{
		{Speaker: conversation.SpeakerUser, Text: "hello John"},
	}}
	set, err := e.Evaluate(single)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricContextRetention); got != 1.0 {
		t.Errorf("single turn retention = %v, want 1.0", got)
	}

	set, err = e.Evaluate(newConv(t, "User: hi there\nAgent: hello"))
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricContextRetention); got != 1.0 {
		t.Errorf("no-entity retention = %v, want 1.0", got)
	}
	wantReason := "No user entities found to track."
	if got := set.Reasoning()[evaluation.MetricContextRetention]; got != wantReason {
		t.Errorf("no-entity reasoning = %q, want %q", got, wantReason)
	}

	set, err = e.Evaluate(newConv(t, "User: My order is BX12345 for Francesca\nAgent: Please hold."))
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricContextRetention); got != 0.0 {
		t.Errorf("unreferenced retention = %v, want 0.0", got)
	}
}

func TestEvaluatePIIExposure(t *testing.T) {
	c := newConv(t, "User: How can I reach billing?\nAgent: Email us at john@acme.com or call 555-123-4567.")

	set, err := NewEngine().Evaluate(c)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}

	if got := score(t, set, evaluation.MetricPIIExposure); got <= 0 {
		t.Errorf("pii exposure = %v, want > 0", got)
	}
	reason := set.Reasoning()[evaluation.MetricPIIExposure]
	if !strings.Contains(reason, "email") {
		t.Errorf("pii reasoning %q does not record the email match", reason)
	}
	if !strings.Contains(reason, "phone") {
		t.Errorf("pii reasoning %q does not record the phone match", reason)
	}
}

func TestEvaluatePIIIgnoresUserTurns(t *testing.T) {
	c := newConv(t, "User: My email is jane@corp.example and my SSN is 123-45-6789.\nAgent: I will not repeat those details.")

	set, err := NewEngine().Evaluate(c)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}

	if got := score(t, set, evaluation.MetricPIIExposure); got != 0 {
		t.Errorf("pii exposure = %v, want 0 when only the user shares PII", got)
	}
	wantReason := "No PII detected in agent turns."
	if got := set.Reasoning()[evaluation.MetricPIIExposure]; got != wantReason {
		t.Errorf("pii reasoning = %q, want %q", got, wantReason)
	}
}

func TestEvaluateResolutionWindow(t *testing.T) {
	stale := newConv(t, strings.Join([]string{
		"User: Thanks in advance, here is my issue.",
		"Agent: Let me check.",
		"User: Any update?",
		"Agent: Still looking.",
		"User: This is taking forever.",
	}, "\n"))

	set, err := NewEngine().Evaluate(stale)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricResolutionDetected); got != 0 {
		t.Errorf("resolution = %v, want 0 when keywords fall outside the closing window", got)
	}

	closed := newConv(t, "User: It fails on login.\nAgent: Try resetting your cache.\nUser: That works, appreciate it!")
	set, err = NewEngine().Evaluate(closed)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricResolutionDetected); got != 1 {
		t.Errorf("resolution = %v, want 1", got)
	}
	reason := set.Reasoning()[evaluation.MetricResolutionDetected]
	if !strings.Contains(reason, "that works") {
		t.Errorf("resolution reasoning = %q, want the matched keyword recorded", reason)
	}
}

func TestEvaluateEscalation(t *testing.T) {
	c := newConv(t, "User: This is useless, let me speak to a supervisor.\nAgent: One moment.")

	set, err := NewEngine().Evaluate(c)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricEscalationDetected); got != 1 {
		t.Errorf("escalation = %v, want 1", got)
	}

	calm := newConv(t, "User: hi\nAgent: hello")
	set, err = NewEngine().Evaluate(calm)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricEscalationDetected); got != 0 {
		t.Errorf("escalation = %v, want 0", got)
	}
}

func TestEvaluateCustomerEffort(t *testing.T) {
	c := newConv(t, strings.Join([]string{
		"User: My app crashes?",
		"Agent: Since when?",
		"User: Since the update.",
		"Agent: Which version?",
		"User: The latest one?",
		"Agent: Checking now.",
		"User: Ok.",
	}, "\n"))

	set, err := NewEngine().Evaluate(c)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}

	// 4 user turns of which 2 are questions: 0.6*0.4 + 0.4*0.4.
	if got := score(t, set, evaluation.MetricCustomerEffort); got != 0.4 {
		t.Errorf("customer effort = %v, want 0.4", got)
	}
	wantReason := "User made 4 turns with 2 questions. Effort based on turn count (0.40) and question frequency (0.40)."
	if got := set.Reasoning()[evaluation.MetricCustomerEffort]; got != wantReason {
		t.Errorf("effort reasoning = %q, want %q", got, wantReason)
	}
}

func TestEvaluateIntentAccuracy(t *testing.T) {
	exact := newConv(t, "User: Password reset\nAgent: Sure, sending a link.")
	exact.CaseIntent = "password reset"

	set, err := NewEngine().Evaluate(exact)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricIntentAccuracy); got != 1.0 {
		t.Errorf("intent accuracy = %v, want 1.0 for an exact match", got)
	}

	partial := newConv(t, "User: I have a billing dispute about my invoice\nAgent: Let me see.")
	partial.CaseIntent = "billing dispute"
	set, err = NewEngine().Evaluate(partial)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricIntentAccuracy); got != 0.25 {
		t.Errorf("intent accuracy = %v, want 0.25", got)
	}

	agentOnly := &conversation.Conversation{
		CaseIntent: "greeting",
		Turns: []conversation.Turn{
			{Speaker: conversation.SpeakerAgent, Text: "Hello there."},
		},
	}
	set, err = NewEngine().Evaluate(agentOnly)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if set.Present(evaluation.MetricIntentAccuracy) {
		t.Error("intent accuracy present without a user turn")
	}
}

func TestEvaluateRejectsEmptyConversation(t *testing.T) {
	e := NewEngine()
	for _, c := range []*conversation.Conversation{nil, {}} {
		if _, err := e.Evaluate(c); !errors.Is(err, evaluation.ErrRuleEngine) {
			t.Errorf("Evaluate(%v) error = %v, want errors.Is(err, evaluation.ErrRuleEngine)", c, err)
		}
	}
}

func TestEngineCustomKeywords(t *testing.T) {
	e := NewEngine(
		WithResolutionKeywords([]string{"Sorted"}),
		WithEscalationKeywords([]string{"tier two"}),
	)

	c := newConv(t, "User: Broken again.\nAgent: All sorted now, routing to tier two.")
	set, err := e.Evaluate(c)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricResolutionDetected); got != 1 {
		t.Errorf("resolution = %v, want 1 with custom keyword", got)
	}
	if got := score(t, set, evaluation.MetricEscalationDetected); got != 1 {
		t.Errorf("escalation = %v, want 1 with custom keyword", got)
	}

	defaults := newConv(t, "User: hi\nAgent: thanks for waiting")
	set, err = e.Evaluate(defaults)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}
	if got := score(t, set, evaluation.MetricResolutionDetected); got != 0 {
		t.Errorf("resolution = %v, want 0 once the default keywords are replaced", got)
	}
}

func TestEvaluateScoresInRange(t *testing.T) {
	c := newConv(t, strings.Join([]string{
		"User: My name is Ada Lovelace, ticket TK123456?",
		"Agent: Hi Ada, TK123456 is being reviewed.",
		"User: Can you escalate to a manager?",
		"Agent: Transferring you to a live agent now.",
		"User: Thanks, that works.",
	}, "\n"))
	c.CaseIntent = "ticket status"

	set, err := NewEngine().Evaluate(c)
	if err != nil {
		t.Fatalf("Evaluate() returned unexpected error: %v", err)
	}

	for _, m := range evaluation.RuleMetrics() {
		v, ok := set.Score(m)
		if !ok {
			t.Errorf("metric %s absent", m)
			continue
		}
		if v < 0 || v > 1 {
			t.Errorf("metric %s = %v, want within [0,1]", m, v)
		}
	}
}
