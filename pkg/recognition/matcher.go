package recognition

import (
	"fmt"
	"math"
)

const (
	// MaxDistance is the distance at which the confidence score bottoms
	// out at zero.
	MaxDistance = 1.0

	// MatchThreshold is the inclusive distance bound for a positive match.
	// Lower is stricter.
	MatchThreshold = 0.4
)

// MatchResult is the outcome of comparing two descriptors. Recomputed
// fresh per attempt, never persisted.
type MatchResult struct {
	Distance float64 `json:"distance"`
	Score    float64 `json:"score"`
	IsMatch  bool    `json:"is_match"`
}

// Percent formats the score as a percentage with two decimals, the way it
// is displayed to users.
func (r MatchResult) Percent() string {
	return fmt.Sprintf("%.2f", r.Score*100)
}

// Match compares a previously enrolled descriptor against a candidate
// using the default bounds. Distance is symmetric, the score is bounded to
// [0, 1] and non-increasing in distance, and the threshold is inclusive.
func Match(reference, candidate Descriptor) MatchResult {
	return MatchWith(reference, candidate, MatchThreshold, MaxDistance)
}

// MatchWith is Match with caller-supplied bounds. Non-positive values fall
// back to the defaults.
func MatchWith(reference, candidate Descriptor, threshold, maxDistance float64) MatchResult {
	if threshold <= 0 {
		threshold = MatchThreshold
	}
	if maxDistance <= 0 {
		maxDistance = MaxDistance
	}
	return resultForDistance(EuclideanDistance(reference, candidate), threshold, maxDistance)
}

func resultForDistance(distance, threshold, maxDistance float64) MatchResult {
	return MatchResult{
		Distance: distance,
		Score:    math.Max(0, 1-distance/maxDistance),
		IsMatch:  distance <= threshold,
	}
}

// EuclideanDistance is the straight-line distance between two embeddings,
// the sole basis for match decisions.
func EuclideanDistance(a, b Descriptor) float64 {
	var sum float64
	for i := range a {
		diff := float64(a[i] - b[i])
		sum += diff * diff
	}
	return math.Sqrt(sum)
}
