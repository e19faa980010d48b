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

package conversation

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mitchellh/mapstructure"

	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

// Record is one raw tabular row as handed over by the ingestion layer.
type Record map[string]any

// Layout names a known record column layout.
type Layout string

const (
	// LayoutReport is the multi-turn conversation export with
	// "example."-prefixed columns.
	LayoutReport Layout = "report"
	// LayoutExchange is the single user/agent exchange layout.
	LayoutExchange Layout = "exchange"
)

// reportRecord mirrors the report layout columns.
type reportRecord struct {
	ConversationID    string   `mapstructure:"example.conversation_id"`
	MultiTurnConv     string   `mapstructure:"example.multi_turn_conv"`
	CaseIntent        string   `mapstructure:"example.case_intent"`
	GroundTruthEmails string   `mapstructure:"example.ground_truth_emails"`
	ActionScore       *float64 `mapstructure:"Download Action chat.score"`
	IntentScore       *float64 `mapstructure:"Download intent GT Email.score"`
}

// exchangeRecord mirrors the single-exchange layout columns.
type exchangeRecord struct {
	ID         string `mapstructure:"id"`
	User       string `mapstructure:"user"`
	Agent      string `mapstructure:"agent"`
	Human      string `mapstructure:"human"`
	CaseIntent string `mapstructure:"case_intent"`
}

// DetectLayout determines which known layout a record matches by the
// presence of its distinguishing keys. The report layout's dotted columns
// are matched exactly; the exchange layout's plain columns are matched
// case-insensitively.
func DetectLayout(rec Record) (Layout, bool) {
	if _, ok := rec["example.multi_turn_conv"]; ok {
		return LayoutReport, true
	}
	var hasUser, hasAgent bool
	for key := range rec {
		switch {
		case strings.EqualFold(key, "user"):
			hasUser = true
		case strings.EqualFold(key, "agent"):
			hasAgent = true
		}
	}
	if hasUser && hasAgent {
		return LayoutExchange, true
	}
	return "", false
}

// Normalizer converts raw records into canonical conversations.
type Normalizer struct{}

// NewNormalizer returns a Normalizer.
func NewNormalizer() *Normalizer {
	return &Normalizer{}
}

// Normalize builds one Conversation from a raw record. index is the
// record's position in the batch and seeds the fallback identifier.
// Failures wrap evaluation.ErrMalformedConversation and name the missing
// or malformed field; the caller skips the record and continues the batch.
func (n *Normalizer) Normalize(rec Record, index int) (*Conversation, error) {
	layout, ok := DetectLayout(rec)
	if !ok {
		return nil, fmt.Errorf("%w: record %d matches no known layout", evaluation.ErrMalformedConversation, index)
	}

	switch layout {
	case LayoutReport:
		return n.normalizeReport(rec, index)
	default:
		return n.normalizeExchange(rec, index)
	}
}

func (n *Normalizer) normalizeReport(rec Record, index int) (*Conversation, error) {
	var row reportRecord
	if err := decodeRecord(rec, &row); err != nil {
		return nil, fmt.Errorf("%w: record %d: %v", evaluation.ErrMalformedConversation, index, err)
	}

	turns := ParseTranscript(row.MultiTurnConv)
	if len(turns) == 0 {
		return nil, fmt.Errorf("%w: record %d: field %q has no parseable turns", evaluation.ErrMalformedConversation, index, "example.multi_turn_conv")
	}

	gt := flattenGroundTruth(row.GroundTruthEmails)

	intent := strings.TrimSpace(row.CaseIntent)
	if intent == "" {
		intent = gt.Subject
	}

	var precomputed *PrecomputedScores
	if row.ActionScore != nil && row.IntentScore != nil {
		precomputed = &PrecomputedScores{
			ActionTaken:    *row.ActionScore,
			ActionExpected: *row.IntentScore,
		}
	}

	return &Conversation{
		ID:                 fallbackID(row.ConversationID, gt.CaseNumber, index),
		CaseIntent:         intent,
		Turns:              turns,
		GroundTruth:        gt.Text,
		GroundTruthSubject: gt.Subject,
		Precomputed:        precomputed,
		Transcript:         row.MultiTurnConv,
	}, nil
}

func (n *Normalizer) normalizeExchange(rec Record, index int) (*Conversation, error) {
	var row exchangeRecord
	if err := decodeRecord(rec, &row); err != nil {
		return nil, fmt.Errorf("%w: record %d: %v", evaluation.ErrMalformedConversation, index, err)
	}

	transcript := synthesizeTranscript(row.User, row.Agent)
	turns := ParseTranscript(transcript)
	if len(turns) == 0 {
		return nil, fmt.Errorf("%w: record %d: fields %q and %q are empty", evaluation.ErrMalformedConversation, index, "user", "agent")
	}

	return &Conversation{
		ID:          fallbackID(row.ID, "", index),
		CaseIntent:  strings.TrimSpace(row.CaseIntent),
		Turns:       turns,
		GroundTruth: strings.TrimSpace(row.Human),
		Transcript:  transcript,
	}, nil
}

func decodeRecord(rec Record, out any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result: out,
		// Spreadsheet-origin values are stringly typed.
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(map[string]any(rec))
}

func synthesizeTranscript(user, agent string) string {
	var b strings.Builder
	if strings.TrimSpace(user) != "" {
		b.WriteString("User: ")
		b.WriteString(strings.TrimSpace(user))
	}
	if strings.TrimSpace(agent) != "" {
		if b.Len() > 0 {
			b.WriteString("\n")
		}
		b.WriteString("Agent: ")
		b.WriteString(strings.TrimSpace(agent))
	}
	return b.String()
}

func fallbackID(explicit, caseNumber string, index int) string {
	if id := strings.TrimSpace(explicit); id != "" {
		return id
	}
	if caseNumber != "" {
		return caseNumber
	}
	if index >= 0 {
		return fmt.Sprintf("conv_%d", index)
	}
	return uuid.NewString()
}
