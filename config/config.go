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

// Package config provides the YAML-loadable tuning tables for the
// evaluation pipeline: metric weights, keyword and phrase lists, judge
// call limits and pipeline sizing.
//
// Parse overlays the document onto Default(), so a file only needs the
// keys it changes. An explicitly written zero keeps its meaning (for
// example retries: 0 disables retrying and cache_size: 0 disables the
// result cache); keys left out inherit the default.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

// Config is the root of the tuning table.
type Config struct {
	// Weights adjusts per-metric influence on the composite score,
	// keyed by metric name. Missing metrics weigh 1. Empty means equal
	// weighting.
	Weights map[string]float64 `yaml:"weights"`

	// RefusalPhrases overrides the labeler's refusal phrase list.
	RefusalPhrases []string `yaml:"refusal_phrases"`
	// ResolutionKeywords overrides the rule engine's resolution list.
	ResolutionKeywords []string `yaml:"resolution_keywords"`
	// EscalationKeywords overrides the rule engine's escalation list.
	EscalationKeywords []string `yaml:"escalation_keywords"`

	Judge    JudgeConfig    `yaml:"judge"`
	Pipeline PipelineConfig `yaml:"pipeline"`
}

// JudgeConfig bounds the semantic evaluator's external calls.
type JudgeConfig struct {
	Model              string        `yaml:"model"`
	Timeout            time.Duration `yaml:"timeout"`
	Retries            int           `yaml:"retries"`
	RetryBackoff       time.Duration `yaml:"retry_backoff"`
	MaxConcurrentCalls int           `yaml:"max_concurrent_calls"`
}

// PipelineConfig sizes the batch orchestrator.
type PipelineConfig struct {
	MaxConcurrentConversations int `yaml:"max_concurrent_conversations"`
	CacheSize                  int `yaml:"cache_size"`
}

// Default returns the configuration used when no file is supplied.
// Keyword and phrase lists stay empty here; empty lists tell each stage
// to keep its built-in defaults.
func Default() *Config {
	return &Config{
		Judge: JudgeConfig{
			Model:              "gemini-2.5-flash",
			Timeout:            30 * time.Second,
			Retries:            2,
			RetryBackoff:       500 * time.Millisecond,
			MaxConcurrentCalls: 4,
		},
		Pipeline: PipelineConfig{
			MaxConcurrentConversations: 4,
			CacheSize:                  128,
		},
	}
}

// Parse overlays a YAML document onto the defaults and validates the
// result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Load reads and parses the configuration file at path.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// MetricWeights converts the string-keyed weight table to the metric-keyed
// form the scorer consumes. Empty input yields nil, which means equal
// weighting downstream.
func (c *Config) MetricWeights() map[evaluation.Metric]float64 {
	if len(c.Weights) == 0 {
		return nil
	}
	weights := make(map[evaluation.Metric]float64, len(c.Weights))
	for name, w := range c.Weights {
		weights[evaluation.Metric(name)] = w
	}
	return weights
}

func (c *Config) validate() error {
	known := make(map[string]bool, len(evaluation.AllMetrics()))
	for _, m := range evaluation.AllMetrics() {
		known[string(m)] = true
	}
	for name, w := range c.Weights {
		if !known[name] {
			return fmt.Errorf("config: unknown metric %q in weights", name)
		}
		if w < 0 {
			return fmt.Errorf("config: weight for %q is negative", name)
		}
	}

	if c.Judge.Model == "" {
		return fmt.Errorf("config: judge model is empty")
	}
	if c.Judge.Timeout <= 0 {
		return fmt.Errorf("config: judge timeout must be positive, got %s", c.Judge.Timeout)
	}
	if c.Judge.Retries < 0 {
		return fmt.Errorf("config: judge retries must not be negative, got %d", c.Judge.Retries)
	}
	if c.Judge.RetryBackoff < 0 {
		return fmt.Errorf("config: judge retry backoff must not be negative, got %s", c.Judge.RetryBackoff)
	}
	if c.Judge.MaxConcurrentCalls <= 0 {
		return fmt.Errorf("config: judge max_concurrent_calls must be positive, got %d", c.Judge.MaxConcurrentCalls)
	}

	if c.Pipeline.MaxConcurrentConversations <= 0 {
		return fmt.Errorf("config: pipeline max_concurrent_conversations must be positive, got %d", c.Pipeline.MaxConcurrentConversations)
	}
	if c.Pipeline.CacheSize < 0 {
		return fmt.Errorf("config: pipeline cache_size must not be negative, got %d", c.Pipeline.CacheSize)
	}
	return nil
}
