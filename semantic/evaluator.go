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

package semantic

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/harinee-md/log-analyzer-agent/conversation"
	"github.com/harinee-md/log-analyzer-agent/evaluation"
	"github.com/harinee-md/log-analyzer-agent/internal/telemetry"
)

const (
	defaultMaxConcurrent = 4
	defaultTimeout       = 30 * time.Second
	defaultRetries       = 2
	defaultBackoff       = 500 * time.Millisecond
)

// Evaluator issues one judge call per semantic metric and assembles the
// verdicts into a metric set.
type Evaluator struct {
	judge         Judge
	maxConcurrent int
	timeout       time.Duration
	retries       int
	backoff       time.Duration
}

// Option configures an Evaluator.
type Option func(*Evaluator)

// WithMaxConcurrent bounds the number of in-flight judge calls. Calls
// beyond the bound queue rather than fail.
func WithMaxConcurrent(n int) Option {
	return func(e *Evaluator) {
		if n > 0 {
			e.maxConcurrent = n
		}
	}
}

// WithTimeout sets the per-call timeout.
func WithTimeout(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.timeout = d
		}
	}
}

// WithRetries sets how many additional attempts follow a failed call.
func WithRetries(n int) Option {
	return func(e *Evaluator) {
		if n >= 0 {
			e.retries = n
		}
	}
}

// WithBackoff sets the delay before the first retry; it doubles per
// subsequent retry.
func WithBackoff(d time.Duration) Option {
	return func(e *Evaluator) {
		if d > 0 {
			e.backoff = d
		}
	}
}

// NewEvaluator returns an Evaluator backed by judge.
func NewEvaluator(judge Judge, opts ...Option) *Evaluator {
	e := &Evaluator{
		judge:         judge,
		maxConcurrent: defaultMaxConcurrent,
		timeout:       defaultTimeout,
		retries:       defaultRetries,
		backoff:       defaultBackoff,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Evaluate obtains the semantic metric family for conv. Metrics that
// need ground truth are skipped when the conversation carries none,
// producing no entry rather than a zero. A metric whose calls all fail
// is returned as a MetricFailure and the set stays partial; the error is
// non-nil only when ctx ends the run.
func (e *Evaluator) Evaluate(ctx context.Context, conv *conversation.Conversation) (evaluation.Set, []evaluation.MetricFailure, error) {
	in := inputsFor(conv)

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(e.maxConcurrent)

	var mu sync.Mutex
	set := evaluation.Set{}
	var failures []evaluation.MetricFailure

	for _, m := range evaluation.SemanticMetrics() {
		if m.RequiresGroundTruth() && !conv.HasGroundTruth() {
			log.Debug().
				Str("conversation_id", conv.ID).
				Str("metric", m.String()).
				Msg("skipping metric without ground truth")
			continue
		}
		group.Go(func() error {
			value, attempts, err := e.evaluateMetric(gctx, conv.ID, m, in)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				log.Warn().
					Str("conversation_id", conv.ID).
					Str("metric", m.String()).
					Int("attempts", attempts).
					Err(err).
					Msg("semantic metric degraded to absent")
				failures = append(failures, evaluation.MetricFailure{
					Metric:   m,
					Attempts: attempts,
					Err:      fmt.Errorf("%w: %s: %v", evaluation.ErrSemanticCall, m, err).Error(),
				})
				return nil
			}
			set[m] = value
			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, nil, err
	}

	slices.SortFunc(failures, func(a, b evaluation.MetricFailure) int {
		return strings.Compare(a.Metric.String(), b.Metric.String())
	})
	return set, failures, nil
}

func (e *Evaluator) evaluateMetric(ctx context.Context, convID string, m evaluation.Metric, in promptInputs) (evaluation.Value, int, error) {
	prompt, err := buildPrompt(m, in)
	if err != nil {
		return evaluation.Value{}, 0, err
	}

	var lastErr error
	attempts := 0
	for attempt := 0; attempt <= e.retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return evaluation.Value{}, attempts, ctx.Err()
			case <-time.After(e.backoff << (attempt - 1)):
			}
			log.Debug().
				Str("conversation_id", convID).
				Str("metric", m.String()).
				Int("attempt", attempt+1).
				Msg("retrying judge call")
		}
		attempts++

		raw, err := e.callJudge(ctx, m, attempts, prompt)
		if err == nil {
			value, perr := parseVerdict(m, raw)
			if perr == nil {
				return value, attempts, nil
			}
			err = perr
		}
		lastErr = err
		if ctx.Err() != nil {
			return evaluation.Value{}, attempts, ctx.Err()
		}
	}
	return evaluation.Value{}, attempts, lastErr
}

func (e *Evaluator) callJudge(ctx context.Context, m evaluation.Metric, attempt int, prompt string) (string, error) {
	spans := telemetry.StartTrace(ctx, "judge_metric "+m.String())
	telemetry.LogJudgePrompt(ctx, m.String(), prompt)

	callCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()
	raw, err := e.judge.Judge(callCtx, prompt)

	telemetry.LogJudgeVerdict(ctx, m.String(), raw, err)
	telemetry.AfterJudgeCall(spans, telemetry.JudgeCallParams{
		Metric:  m.String(),
		Attempt: attempt,
		Error:   err,
	})
	return raw, err
}
