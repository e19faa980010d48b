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
	"encoding/json"
	"strings"
)

// groundTruth is the flattened form of a record's expected-response data.
type groundTruth struct {
	CaseNumber string
	Subject    string
	Text       string
}

// groundTruthPayload is the structured JSON shape report exports carry.
type groundTruthPayload struct {
	CaseNumber string `json:"case_number"`
	Subject    string `json:"subject"`
	Emails     []struct {
		EmailIndex     int    `json:"email_index"`
		Body           string `json:"body"`
		ConversationID string `json:"conversation_id"`
	} `json:"emails"`
}

// flattenGroundTruth turns a raw ground-truth value into plain text.
// A structured JSON payload yields the subject plus the email bodies
// joined with blank lines; a malformed payload degrades to an empty
// ground truth rather than failing the record; anything else passes
// through as already-plain text.
func flattenGroundTruth(raw string) groundTruth {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return groundTruth{}
	}

	if !strings.HasPrefix(raw, "{") {
		return groundTruth{Text: raw}
	}

	var payload groundTruthPayload
	if err := json.Unmarshal([]byte(raw), &payload); err != nil {
		return groundTruth{}
	}

	bodies := make([]string, 0, len(payload.Emails))
	for _, email := range payload.Emails {
		if body := strings.TrimSpace(email.Body); body != "" {
			bodies = append(bodies, body)
		}
	}
	return groundTruth{
		CaseNumber: payload.CaseNumber,
		Subject:    payload.Subject,
		Text:       strings.Join(bodies, "\n\n"),
	}
}
