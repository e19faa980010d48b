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

// Package pipeline runs the full evaluation of a conversation batch:
// normalization, rule analysis, judge calls, labeling, scoring and
// aggregation, behind a result cache keyed by file identity.
//
// Concurrent Run calls for the same file are coalesced into a single
// underlying evaluation. A caller that joins an in-flight evaluation can
// abandon the wait through its own context without cancelling the run for
// everyone else.
package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/harinee-md/log-analyzer-agent/aggregate"
	"github.com/harinee-md/log-analyzer-agent/config"
	"github.com/harinee-md/log-analyzer-agent/conversation"
	"github.com/harinee-md/log-analyzer-agent/evaluation"
	"github.com/harinee-md/log-analyzer-agent/internal/telemetry"
	"github.com/harinee-md/log-analyzer-agent/labeler"
	"github.com/harinee-md/log-analyzer-agent/rules"
	"github.com/harinee-md/log-analyzer-agent/scoring"
	"github.com/harinee-md/log-analyzer-agent/semantic"
)

// settings collects option values before the stages are assembled.
type settings struct {
	cfg          *config.Config
	concurrency  int
	cacheSize    int
	cacheSizeSet bool
	ruleOpts     []rules.Option
	semanticOpts []semantic.Option
	labelOpts    []labeler.Option
}

// Option configures a Runner.
type Option func(*settings)

// WithConfig applies a full tuning table: metric weights, keyword and
// phrase lists, judge call limits and pipeline sizing. Values set by other
// options win over the table regardless of option order.
func WithConfig(cfg *config.Config) Option {
	return func(s *settings) {
		if cfg != nil {
			s.cfg = cfg
		}
	}
}

// WithConversationConcurrency bounds how many conversations are evaluated
// at once. Conversations beyond the bound queue rather than fail.
func WithConversationConcurrency(n int) Option {
	return func(s *settings) {
		if n != 0 {
			s.concurrency = n
		}
	}
}

// WithCacheSize sets how many batch results are retained, evicting least
// recently used entries beyond the size. Zero disables caching.
func WithCacheSize(size int) Option {
	return func(s *settings) {
		s.cacheSize = size
		s.cacheSizeSet = true
	}
}

// WithoutCache disables the result cache; every Run evaluates anew.
func WithoutCache() Option {
	return WithCacheSize(0)
}

// WithRuleOptions forwards options to the rule engine.
func WithRuleOptions(opts ...rules.Option) Option {
	return func(s *settings) {
		s.ruleOpts = append(s.ruleOpts, opts...)
	}
}

// WithSemanticOptions forwards options to the semantic evaluator. They
// have no effect when the Runner is built without a judge.
func WithSemanticOptions(opts ...semantic.Option) Option {
	return func(s *settings) {
		s.semanticOpts = append(s.semanticOpts, opts...)
	}
}

// WithLabelerOptions forwards options to the labeler.
func WithLabelerOptions(opts ...labeler.Option) Option {
	return func(s *settings) {
		s.labelOpts = append(s.labelOpts, opts...)
	}
}

// Runner evaluates batches of raw conversation records end to end.
type Runner struct {
	normalizer *conversation.Normalizer
	engine     *rules.Engine
	// evaluator is nil when the Runner was built without a judge; rule
	// metrics still flow, semantic metrics stay absent.
	evaluator *semantic.Evaluator
	labeler   *labeler.Labeler
	weights   map[evaluation.Metric]float64

	concurrency int
	cache       *resultCache

	flights singleflight.Group
}

// New assembles the evaluation stages. A nil judge yields a rule-only
// Runner: conversations are still normalized, analyzed, labeled and
// scored, with the semantic metric family absent throughout.
func New(judge semantic.Judge, opts ...Option) (*Runner, error) {
	s := settings{cfg: config.Default()}
	for _, opt := range opts {
		opt(&s)
	}

	concurrency := s.cfg.Pipeline.MaxConcurrentConversations
	if s.concurrency != 0 {
		concurrency = s.concurrency
	}
	if concurrency <= 0 {
		return nil, fmt.Errorf("pipeline: conversation concurrency must be positive, got %d", concurrency)
	}

	cacheSize := s.cfg.Pipeline.CacheSize
	if s.cacheSizeSet {
		cacheSize = s.cacheSize
	}
	cache, err := newResultCache(cacheSize)
	if err != nil {
		return nil, err
	}

	ruleOpts := []rules.Option{
		rules.WithResolutionKeywords(s.cfg.ResolutionKeywords),
		rules.WithEscalationKeywords(s.cfg.EscalationKeywords),
	}
	ruleOpts = append(ruleOpts, s.ruleOpts...)

	var evaluator *semantic.Evaluator
	if judge != nil {
		semanticOpts := []semantic.Option{
			semantic.WithMaxConcurrent(s.cfg.Judge.MaxConcurrentCalls),
			semantic.WithTimeout(s.cfg.Judge.Timeout),
			semantic.WithRetries(s.cfg.Judge.Retries),
			semantic.WithBackoff(s.cfg.Judge.RetryBackoff),
		}
		semanticOpts = append(semanticOpts, s.semanticOpts...)
		evaluator = semantic.NewEvaluator(judge, semanticOpts...)
	}

	labelOpts := []labeler.Option{labeler.WithRefusalPhrases(s.cfg.RefusalPhrases)}
	labelOpts = append(labelOpts, s.labelOpts...)

	return &Runner{
		normalizer:  conversation.NewNormalizer(),
		engine:      rules.NewEngine(ruleOpts...),
		evaluator:   evaluator,
		labeler:     labeler.NewLabeler(labelOpts...),
		weights:     s.cfg.MetricWeights(),
		concurrency: concurrency,
		cache:       cache,
	}, nil
}

// Run evaluates one batch of records identified by fileID. A cached
// result for the same fileID is returned without re-evaluating; callers
// running concurrently on one fileID share a single evaluation and
// receive the same result. Results are shared between callers and must be
// treated as read-only.
//
// The evaluation runs under the context of the caller that started it.
// A caller that joined a run in flight can abandon the wait by cancelling
// its own context; the run continues for the others. Cancelled and failed
// runs are never cached.
func (r *Runner) Run(ctx context.Context, fileID string, records []conversation.Record) (*evaluation.BatchResult, error) {
	if cached, ok := r.cache.get(fileID); ok {
		log.Debug().
			Str("file_id", fileID).
			Str("batch_id", cached.BatchID).
			Msg("returning cached batch result")
		return cached, nil
	}

	ch := r.flights.DoChan(fileID, func() (any, error) {
		result, err := r.runBatch(ctx, fileID, records)
		if err != nil {
			return nil, err
		}
		r.cache.add(fileID, result)
		return result, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*evaluation.BatchResult), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (r *Runner) runBatch(ctx context.Context, fileID string, records []conversation.Record) (*evaluation.BatchResult, error) {
	spans := telemetry.StartTrace(ctx, "evaluate_batch "+fileID)
	batchID := uuid.NewString()

	log.Info().
		Str("batch_id", batchID).
		Str("file_id", fileID).
		Int("records", len(records)).
		Msg("starting batch evaluation")

	conversations, failures := r.normalize(records)

	if len(conversations) == 0 {
		result := &evaluation.BatchResult{
			BatchID:   batchID,
			Status:    evaluation.StatusNoProcessable,
			CreatedAt: time.Now().UTC(),
			Failures:  failures,
		}
		log.Warn().
			Str("batch_id", batchID).
			Str("file_id", fileID).
			Int("skipped", len(failures)).
			Msg("no record in the batch survived normalization")
		telemetry.AfterBatch(spans, telemetry.BatchParams{
			BatchID:  batchID,
			FileID:   fileID,
			Status:   string(result.Status),
			Failures: len(failures),
		})
		return result, nil
	}

	results, err := r.evaluateAll(ctx, conversations)
	if err != nil {
		telemetry.AfterBatch(spans, telemetry.BatchParams{
			BatchID:       batchID,
			FileID:        fileID,
			Conversations: len(conversations),
			Failures:      len(failures),
			Error:         err,
		})
		return nil, err
	}

	scenarios, summary, err := aggregate.Aggregate(results)
	if err != nil {
		telemetry.AfterBatch(spans, telemetry.BatchParams{
			BatchID:       batchID,
			FileID:        fileID,
			Conversations: len(results),
			Failures:      len(failures),
			Error:         err,
		})
		return nil, err
	}

	result := &evaluation.BatchResult{
		BatchID:            batchID,
		Status:             evaluation.StatusCompleted,
		CreatedAt:          time.Now().UTC(),
		TotalConversations: len(results),
		Metrics:            summary.Metrics,
		Labels:             summary.Labels,
		CompositeScore:     summary.CompositeScore,
		Grade:              summary.Grade,
		Scenarios:          scenarios,
		Conversations:      results,
		Failures:           failures,
	}

	log.Info().
		Str("batch_id", batchID).
		Str("file_id", fileID).
		Int("conversations", len(results)).
		Int("skipped", len(failures)).
		Float64("composite_score", result.CompositeScore).
		Str("grade", string(result.Grade)).
		Msg("batch evaluation complete")

	telemetry.AfterBatch(spans, telemetry.BatchParams{
		BatchID:       batchID,
		FileID:        fileID,
		Status:        string(result.Status),
		Conversations: len(results),
		Failures:      len(failures),
	})
	return result, nil
}

// normalize converts raw records into conversations, collecting a failure
// entry per skipped record. A malformed record never aborts the batch.
func (r *Runner) normalize(records []conversation.Record) ([]*conversation.Conversation, []evaluation.FailureRecord) {
	conversations := make([]*conversation.Conversation, 0, len(records))
	var failures []evaluation.FailureRecord
	for i, rec := range records {
		conv, err := r.normalizer.Normalize(rec, i)
		if err != nil {
			log.Warn().
				Int("record", i).
				Err(err).
				Msg("skipping record that failed normalization")
			failures = append(failures, evaluation.FailureRecord{
				ConversationID: recordID(rec, i),
				Reason:         err.Error(),
			})
			continue
		}
		conversations = append(conversations, conv)
	}
	return conversations, failures
}

func (r *Runner) evaluateAll(ctx context.Context, conversations []*conversation.Conversation) ([]*evaluation.ConversationResult, error) {
	results := make([]*evaluation.ConversationResult, len(conversations))

	group, gctx := errgroup.WithContext(ctx)
	group.SetLimit(r.concurrency)
	for i, conv := range conversations {
		group.Go(func() error {
			result, err := r.evaluateConversation(gctx, conv)
			if err != nil {
				return err
			}
			// Index assignment keeps results in input order no matter
			// which conversation finishes first.
			results[i] = result
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (r *Runner) evaluateConversation(ctx context.Context, conv *conversation.Conversation) (*evaluation.ConversationResult, error) {
	spans := telemetry.StartTrace(ctx, "evaluate_conversation "+conv.ID)

	ruleSet, err := r.engine.Evaluate(conv)
	if err != nil {
		telemetry.AfterConversation(spans, telemetry.ConversationParams{
			ConversationID: conv.ID,
			CaseIntent:     conv.CaseIntent,
			Error:          err,
		})
		return nil, err
	}

	judgeSet := evaluation.Set{}
	var failed []evaluation.MetricFailure
	if r.evaluator != nil {
		judgeSet, failed, err = r.evaluator.Evaluate(ctx, conv)
		if err != nil {
			telemetry.AfterConversation(spans, telemetry.ConversationParams{
				ConversationID: conv.ID,
				CaseIntent:     conv.CaseIntent,
				Error:          err,
			})
			return nil, err
		}
	}

	labelResult := r.labeler.Label(conv, ruleSet, judgeSet)

	normalized := scoring.Normalize(ruleSet.Merge(judgeSet))
	composite := scoring.Composite(normalized, r.weights)

	metrics := make(map[evaluation.Metric]float64, len(normalized))
	for m, v := range normalized {
		metrics[m] = v.Score
	}
	reasoning := normalized.Reasoning()
	if len(reasoning) == 0 {
		reasoning = nil
	}

	result := &evaluation.ConversationResult{
		ConversationID:  conv.ID,
		CaseIntent:      conv.CaseIntent,
		TurnCount:       len(conv.Turns),
		Metrics:         metrics,
		CompositeScore:  composite,
		Grade:           evaluation.GradeForScore(composite),
		Label:           labelResult.Label,
		LabelConfidence: labelResult.Confidence,
		LabelRationale:  labelResult.Rationale,
		Reasoning:       reasoning,
		FailedMetrics:   failed,
	}

	telemetry.AfterConversation(spans, telemetry.ConversationParams{
		ConversationID: conv.ID,
		CaseIntent:     conv.CaseIntent,
		Label:          string(result.Label),
		Grade:          string(result.Grade),
		CompositeScore: result.CompositeScore,
		FailedMetrics:  len(failed),
	})
	return result, nil
}

// recordID pulls a best-effort identifier out of a record that failed
// normalization, falling back to the record's batch position.
func recordID(rec conversation.Record, index int) string {
	for _, key := range []string{"example.conversation_id", "id"} {
		if v, ok := rec[key].(string); ok && strings.TrimSpace(v) != "" {
			return strings.TrimSpace(v)
		}
	}
	return fmt.Sprintf("record_%d", index)
}
