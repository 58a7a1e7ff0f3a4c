package recognition

import (
	"math"
	"testing"
)

// descriptorAtDistance returns a descriptor exactly d away from the zero
// descriptor along the first axis.
func descriptorAtDistance(d float64) Descriptor {
	var desc Descriptor
	desc[0] = float32(d)
	return desc
}

func TestEuclideanDistance(t *testing.T) {
	var a, b Descriptor
	a[0], a[1], a[2] = 1, 2, 3
	b[0], b[1], b[2] = 4, 6, 8

	dist := EuclideanDistance(a, b)
	expected := math.Sqrt(50) // 3-4-5 differences
	if math.Abs(dist-expected) > 0.0001 {
		t.Errorf("expected %f, got %f", expected, dist)
	}

	if EuclideanDistance(a, a) != 0 {
		t.Error("expected zero distance for identical descriptors")
	}
}

func TestMatchSymmetry(t *testing.T) {
	var a, b Descriptor
	a[0], a[5], a[100] = 0.3, -0.2, 0.9
	b[0], b[5], b[100] = -0.1, 0.4, 0.7

	if Match(a, b).Distance != Match(b, a).Distance {
		t.Error("expected symmetric distance")
	}
}

func TestMatchExampleValues(t *testing.T) {
	tests := []struct {
		distance float64
		score    float64
		isMatch  bool
	}{
		{0.25, 0.75, true},
		{0.55, 0.45, false},
		{0.4, 0.6, true}, // threshold boundary is inclusive
	}

	for _, tt := range tests {
		res := resultForDistance(tt.distance, MatchThreshold, MaxDistance)
		if res.Distance != tt.distance {
			t.Errorf("distance %f: got %f", tt.distance, res.Distance)
		}
		if math.Abs(res.Score-tt.score) > 1e-9 {
			t.Errorf("distance %f: expected score %f, got %f", tt.distance, tt.score, res.Score)
		}
		if res.IsMatch != tt.isMatch {
			t.Errorf("distance %f: expected match=%t, got %t", tt.distance, tt.isMatch, res.IsMatch)
		}
	}
}

func TestMatchEndToEnd(t *testing.T) {
	var reference Descriptor
	res := Match(reference, descriptorAtDistance(0.25))
	if math.Abs(res.Distance-0.25) > 1e-6 {
		t.Errorf("expected distance 0.25, got %f", res.Distance)
	}
	if !res.IsMatch {
		t.Error("expected match at distance 0.25")
	}
}

func TestMatchWithCustomThreshold(t *testing.T) {
	// A distance of 0.38 passes the default 0.4 threshold but must fail a
	// stricter configured 0.35.
	if !resultForDistance(0.38, MatchThreshold, MaxDistance).IsMatch {
		t.Error("expected a match under the default threshold")
	}
	if resultForDistance(0.38, 0.35, MaxDistance).IsMatch {
		t.Error("expected no match under the stricter threshold")
	}

	// A wider max distance flattens the score curve.
	res := resultForDistance(0.5, 0.35, 2.0)
	if res.Score != 0.75 {
		t.Errorf("expected score 0.75 with max distance 2.0, got %f", res.Score)
	}
}

func TestMatchWithZeroBoundsUseDefaults(t *testing.T) {
	var reference Descriptor
	res := MatchWith(reference, descriptorAtDistance(0.25), 0, 0)
	if !res.IsMatch {
		t.Error("expected zero bounds to fall back to the defaults")
	}
	if math.Abs(res.Score-0.75) > 1e-6 {
		t.Errorf("expected score 0.75, got %f", res.Score)
	}
}

func TestMatchScoreBounded(t *testing.T) {
	var reference Descriptor
	res := Match(reference, descriptorAtDistance(2.5))
	if res.Score != 0 {
		t.Errorf("expected score clamped to 0 beyond max distance, got %f", res.Score)
	}
	if res.IsMatch {
		t.Error("expected no match far beyond the threshold")
	}
}

func TestMatchScoreMonotonic(t *testing.T) {
	var reference Descriptor
	prev := math.Inf(1)
	for _, d := range []float64{0, 0.1, 0.25, 0.4, 0.55, 0.8, 1.0, 1.5} {
		score := Match(reference, descriptorAtDistance(d)).Score
		if score > prev {
			t.Errorf("score increased with distance at %f: %f > %f", d, score, prev)
		}
		prev = score
	}
}

func TestMatchResultPercent(t *testing.T) {
	res := MatchResult{Score: 0.7512}
	if res.Percent() != "75.12" {
		t.Errorf("expected 75.12, got %s", res.Percent())
	}
}
