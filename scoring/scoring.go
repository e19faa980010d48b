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

// Package scoring brings raw metric values onto the [0,1] scale and folds
// them into one weighted composite score.
//
// Normalized values are stored un-inverted: a stored value is always the
// raw intensity of what the metric measures. Direction is applied only
// inside Composite, where lower-is-better metrics contribute 1-value.
package scoring

import (
	"math"

	"github.com/harinee-md/log-analyzer-agent/evaluation"
)

// Normalize maps every value in set to [0,1] by its metric's scale:
// percent scores divide by 100, flags and unit ratios pass through.
// Results are clamped and rounded to four decimals; reasoning strings
// are preserved. The input set is not modified.
func Normalize(set evaluation.Set) evaluation.Set {
	out := make(evaluation.Set, len(set))
	for m, v := range set {
		score := v.Score
		if m.Scale() == evaluation.ScalePercent {
			score /= 100
		}
		out[m] = evaluation.Value{Score: round4(clamp01(score)), Reasoning: v.Reasoning}
	}
	return out
}

// Composite computes the weighted directional mean over the metrics
// present in normalized. Lower-is-better metrics contribute 1-value so a
// clean conversation scores high. Weights are renormalized over present
// metrics only; a metric missing from weights carries weight 1. A nil
// weights map gives equal weighting. An empty set scores 0.
func Composite(normalized evaluation.Set, weights map[evaluation.Metric]float64) float64 {
	var weightedSum, totalWeight float64
	for m, v := range normalized {
		w := 1.0
		if cw, ok := weights[m]; ok {
			w = cw
		}
		dir := v.Score
		if m.LowerIsBetter() {
			dir = 1 - v.Score
		}
		weightedSum += dir * w
		totalWeight += w
	}
	if totalWeight == 0 {
		return 0
	}
	return round4(weightedSum / totalWeight)
}

// DefaultWeights returns the equal-weight table over every known metric.
// Callers mutate their copy freely.
func DefaultWeights() map[evaluation.Metric]float64 {
	weights := make(map[evaluation.Metric]float64)
	for _, m := range evaluation.AllMetrics() {
		weights[m] = 1.0
	}
	return weights
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

func round4(v float64) float64 {
	return math.Round(v*10000) / 10000
}
