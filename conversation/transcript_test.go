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
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseTranscript(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []Turn
	}{
		{
			name: "user and agent exchange",
			text: "User: My name is John, order #A1.\nAgent: Hi John, order #A1 shipped.",
			want: []Turn{
				{Speaker: SpeakerUser, Text: "My name is John, order #A1.", Ordinal: 0},
				{Speaker: SpeakerAgent, Text: "Hi John, order #A1 shipped.", Ordinal: 1},
			},
		},
		{
			name: "bot prefix maps to agent",
			text: "Bot: Hello! How can I help?\nUser: Where is my order?",
			want: []Turn{
				{Speaker: SpeakerAgent, Text: "Hello! How can I help?", Ordinal: 0},
				{Speaker: SpeakerUser, Text: "Where is my order?", Ordinal: 1},
			},
		},
		{
			name: "continuation lines join the current turn",
			text: "User: I need help with my invoice.\nIt was due last week.\nBot: Let me check.",
			want: []Turn{
				{Speaker: SpeakerUser, Text: "I need help with my invoice.\nIt was due last week.", Ordinal: 0},
				{Speaker: SpeakerAgent, Text: "Let me check.", Ordinal: 1},
			},
		},
		{
			name: "blank lines and padding tolerated",
			text: "  User:   hi  \n\n\n  Bot:  hello  \n",
			want: []Turn{
				{Speaker: SpeakerUser, Text: "hi", Ordinal: 0},
				{Speaker: SpeakerAgent, Text: "hello", Ordinal: 1},
			},
		},
		{
			name: "unknown speaker becomes a system turn keeping the line",
			text: "User: transfer me please\nSupervisor: I am taking this over",
			want: []Turn{
				{Speaker: SpeakerUser, Text: "transfer me please", Ordinal: 0},
				{Speaker: SpeakerSystem, Text: "Supervisor: I am taking this over", Ordinal: 1},
			},
		},
		{
			name: "leading text before any speaker is retained",
			text: "Conversation exported 2024-01-02\nUser: hi",
			want: []Turn{
				{Speaker: SpeakerSystem, Text: "Conversation exported 2024-01-02", Ordinal: 0},
				{Speaker: SpeakerUser, Text: "hi", Ordinal: 1},
			},
		},
		{
			name: "json action payload flagged",
			text: `User: track my order` + "\n" + `Bot: {"quickReplies": ["Track order", "Talk to agent"]}`,
			want: []Turn{
				{Speaker: SpeakerUser, Text: "track my order", Ordinal: 0},
				{Speaker: SpeakerAgent, Text: `{"quickReplies": ["Track order", "Talk to agent"]}`, Ordinal: 1, IsAction: true},
			},
		},
		{
			name: "multi line action payload flagged",
			text: "Bot: {\n\"action\": \"download\"\n}",
			want: []Turn{
				{Speaker: SpeakerAgent, Text: "{\n\"action\": \"download\"\n}", Ordinal: 0, IsAction: true},
			},
		},
		{
			name: "prefixes match case insensitively",
			text: "user: hi\nBOT: hello",
			want: []Turn{
				{Speaker: SpeakerUser, Text: "hi", Ordinal: 0},
				{Speaker: SpeakerAgent, Text: "hello", Ordinal: 1},
			},
		},
		{
			name: "consecutive same speaker turns preserved",
			text: "User: hello?\nUser: anyone there?",
			want: []Turn{
				{Speaker: SpeakerUser, Text: "hello?", Ordinal: 0},
				{Speaker: SpeakerUser, Text: "anyone there?", Ordinal: 1},
			},
		},
		{
			name: "empty input",
			text: "",
			want: nil,
		},
		{
			name: "whitespace only",
			text: "   \n\n  ",
			want: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseTranscript(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParseTranscript() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}
