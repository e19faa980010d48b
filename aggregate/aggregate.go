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

// Package aggregate rolls per-conversation results up into scenario groups
// and a batch-wide summary.
//
// A scenario is the set of conversations sharing one case intent, compared
// case-insensitively after trimming. Scenario order follows the first
// occurrence of each intent in the batch, never a sort: callers see their
// own upload order reflected back.
package aggregate

import (
	"fmt"
	"math"
	"strings"

	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

// Summary is the batch-wide rollup across every conversation.
type Summary struct {
	Metrics        map[evaluation.Metric]float64
	Labels         map[evaluation.Label]int
	CompositeScore float64
	Grade          evaluation.Grade
}

// Aggregate groups conversations by case intent and computes per-scenario
// and overall statistics. Metric means run over the conversations where
// the metric is present, never over the full set. The returned error is
// the count-partition tripwire: scenario counts failing to sum to the
// batch total indicates a defect, not bad input.
func Aggregate(conversations []*evaluation.ConversationResult) ([]*evaluation.ScenarioResult, Summary, error) {
	groups := make(map[string][]*evaluation.ConversationResult)
	names := make(map[string]string)
	var order []string

	for _, conv := range conversations {
		trimmed := strings.TrimSpace(conv.CaseIntent)
		key := strings.ToLower(trimmed)
		if _, seen := groups[key]; !seen {
			order = append(order, key)
			names[key] = trimmed
		}
		groups[key] = append(groups[key], conv)
	}

	scenarios := make([]*evaluation.ScenarioResult, 0, len(order))
	counted := 0
	for _, key := range order {
		convs := groups[key]
		counted += len(convs)
		composite := meanComposite(convs)
		scenarios = append(scenarios, &evaluation.ScenarioResult{
			Scenario:          names[key],
			ConversationCount: len(convs),
			Metrics:           metricMeans(convs),
			Labels:            labelCounts(convs),
			CompositeScore:    composite,
			Grade:             evaluation.GradeForScore(composite),
		})
	}

	if counted != len(conversations) {
		return nil, Summary{}, fmt.Errorf("%w: scenario counts sum to %d, batch has %d conversations",
			evaluation.ErrAggregationInconsistency, counted, len(conversations))
	}

	overall := Summary{
		Metrics:        metricMeans(conversations),
		Labels:         labelCounts(conversations),
		CompositeScore: meanComposite(conversations),
	}
	overall.Grade = evaluation.GradeForScore(overall.CompositeScore)
	return scenarios, overall, nil
}

// metricMeans averages each metric over the conversations that carry it.
func metricMeans(convs []*evaluation.ConversationResult) map[evaluation.Metric]float64 {
	sums := make(map[evaluation.Metric]float64)
	counts := make(map[evaluation.Metric]int)
	for _, conv := range convs {
		for m, v := range conv.Metrics {
			sums[m] += v
			counts[m]++
		}
	}

	means := make(map[evaluation.Metric]float64, len(sums))
	for m, sum := range sums {
		means[m] = round4(sum / float64(counts[m]))
	}
	return means
}

func labelCounts(convs []*evaluation.ConversationResult) map[evaluation.Label]int {
	counts := make(map[evaluation.Label]int)
	for _, conv := range convs {
		counts[conv.Label]++
	}
	return counts
}

func meanComposite(convs []*evaluation.ConversationResult) float64 {
	if len(convs) == 0 {
		return 0
	}
	var sum float64
	for _, conv := range convs {
		sum += conv.CompositeScore
	}
	return round4(sum / float64(len(convs)))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
