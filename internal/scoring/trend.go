package scoring

// --- Trend analysis ---
//
// The confidence series across rounds tells the session layer whether
// further questioning is still paying off.

// Trend labels.
const (
	TrendIncreasing = "increasing"
	TrendDecreasing = "decreasing"
	TrendStable     = "stable"
	TrendVolatile   = "volatile"
)

// diminishingDelta is the round-over-round gain below which a round is
// considered to have bought nothing.
const diminishingDelta = 1.0

// classifyTrend labels a confidence series. Two or more direction changes
// mark the series volatile; otherwise the latest delta decides.
func classifyTrend(series []float64) string {
	if len(series) < 2 {
		return TrendStable
	}

	deltas := make([]float64, 0, len(series)-1)
	for i := 1; i < len(series); i++ {
		deltas = append(deltas, series[i]-series[i-1])
	}

	if directionChanges(deltas) >= 2 {
		return TrendVolatile
	}

	last := deltas[len(deltas)-1]
	switch {
	case last > 2:
		return TrendIncreasing
	case last < -2:
		return TrendDecreasing
	default:
		return TrendStable
	}
}

// diminishingReturns reports whether the last two rounds each gained less
// than diminishingDelta without regressing. Two flat rounds in a row mean
// more questioning will not move the score; the session should escalate to
// a human pause instead.
func diminishingReturns(series []float64) bool {
	if len(series) < 3 {
		return false
	}
	for i := len(series) - 2; i < len(series); i++ {
		d := series[i] - series[i-1]
		if d < 0 || d >= diminishingDelta {
			return false
		}
	}
	return true
}

func directionChanges(deltas []float64) int {
	changes := 0
	prev := 0
	for _, d := range deltas {
		sign := 0
		switch {
		case d > 0.5:
			sign = 1
		case d < -0.5:
			sign = -1
		}
		if sign != 0 && prev != 0 && sign != prev {
			changes++
		}
		if sign != 0 {
			prev = sign
		}
	}
	return changes
}
