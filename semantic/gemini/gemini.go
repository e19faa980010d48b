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

// Package gemini adapts the Gemini API to the semantic.Judge interface.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"

	"github.com/harinee-md/log-analyzer-agent/semantic"
)

// DefaultModel is used when NewJudge is given an empty model name.
const DefaultModel = "gemini-2.5-flash"

// judgeTemperature keeps verdicts near-deterministic across runs.
const judgeTemperature float32 = 0.1

// Judge scores conversations with a Gemini model.
type Judge struct {
	client *genai.Client
	model  string
}

// NewJudge creates a Gemini-backed judge. cfg carries credentials and
// backend selection exactly as genai.NewClient expects.
func NewJudge(ctx context.Context, model string, cfg *genai.ClientConfig) (*Judge, error) {
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Judge{client: client, model: model}, nil
}

// Model reports the model name verdicts are requested from.
func (j *Judge) Model() string {
	return j.model
}

// Judge sends one grading prompt and returns the raw model text.
// The response is requested as JSON so the verdict parser rarely has
// to fall back to fence or brace extraction.
func (j *Judge) Judge(ctx context.Context, prompt string) (string, error) {
	resp, err := j.client.Models.GenerateContent(ctx, j.model,
		genai.Text(prompt),
		&genai.GenerateContentConfig{
			Temperature:      genai.Ptr(judgeTemperature),
			ResponseMIMEType: "application/json",
		})
	if err != nil {
		return "", fmt.Errorf("failed to call model: %w", err)
	}
	if len(resp.Candidates) == 0 {
		return "", fmt.Errorf("empty response")
	}
	candidate := resp.Candidates[0]
	if candidate.Content == nil || len(candidate.Content.Parts) == 0 {
		return "", fmt.Errorf("no parts in response")
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		sb.WriteString(part.Text)
	}
	return sb.String(), nil
}

var _ semantic.Judge = (*Judge)(nil)
