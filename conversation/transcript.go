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
	"regexp"
	"strings"
)

// speakerPrefixRe matches a line-leading "Speaker:" token. The token is a
// single short word so that prose containing colons further in stays part
// of the current turn.
var speakerPrefixRe = regexp.MustCompile(`^([A-Za-z][A-Za-z_-]{0,15}):\s*(.*)$`)

// ParseTranscript splits multi-turn transcript text into ordered turns
// using the line-oriented "Speaker: text" convention.
//
// Recognized speakers are User, Agent, Bot (mapped to Agent) and System,
// matched case-insensitively. A line with an unrecognized speaker token
// becomes a System turn that keeps the whole line, so no text is lost.
// Lines without a speaker token continue the current turn; blank lines are
// skipped; all text is whitespace-trimmed. Messages that look like JSON
// action payloads are flagged IsAction.
func ParseTranscript(text string) []Turn {
	var turns []Turn
	var current Speaker
	var pending []string

	flush := func() {
		if current == "" || len(pending) == 0 {
			return
		}
		msg := strings.TrimSpace(strings.Join(pending, "\n"))
		if msg != "" {
			turns = append(turns, Turn{
				Speaker:  current,
				Text:     msg,
				Ordinal:  len(turns),
				IsAction: isActionPayload(msg),
			})
		}
		pending = nil
	}

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}

		m := speakerPrefixRe.FindStringSubmatch(line)
		if m == nil {
			if current == "" {
				// Leading text before any speaker token is retained
				// rather than dropped.
				current = SpeakerSystem
			}
			pending = append(pending, line)
			continue
		}

		speaker, known := speakerFor(m[1])
		flush()
		current = speaker
		if known {
			pending = []string{m[2]}
		} else {
			// Unknown speaker token: a System turn keeping the whole
			// line, including who spoke.
			pending = []string{line}
		}
	}
	flush()

	return turns
}

func speakerFor(token string) (Speaker, bool) {
	switch {
	case strings.EqualFold(token, "User"):
		return SpeakerUser, true
	case strings.EqualFold(token, "Agent"), strings.EqualFold(token, "Bot"):
		return SpeakerAgent, true
	case strings.EqualFold(token, "System"):
		return SpeakerSystem, true
	default:
		return SpeakerSystem, false
	}
}

// isActionPayload reports whether a message is a JSON action payload
// (quick replies, download actions) rather than natural language.
func isActionPayload(msg string) bool {
	return strings.HasPrefix(msg, "{") && strings.Contains(msg, `"`)
}
