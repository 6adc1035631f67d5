package prediction

import (
	"math"
	"sort"
)

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// weightedMean weights each value by its paired weight. Degenerate weights
// (missing or non-positive overall) fall back to the plain mean.
func weightedMean(values, weights []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	if len(weights) != len(values) {
		return mean(values)
	}
	var weightedSum, totalWeight float64
	for i, v := range values {
		w := weights[i]
		if w <= 0 {
			w = 1
		}
		weightedSum += v * w
		totalWeight += w
	}
	if totalWeight <= 0 {
		return mean(values)
	}
	return weightedSum / totalWeight
}

func stdDev(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	avg := mean(values)
	var sumSq float64
	for _, v := range values {
		d := v - avg
		sumSq += d * d
	}
	return math.Sqrt(sumSq / float64(len(values)))
}

func variance(values []float64) float64 {
	sd := stdDev(values)
	return sd * sd
}

// confidenceFor derives a per-factor confidence from the coefficient of
// variation. Fewer than two points yields the fixed default 0.5.
func confidenceFor(values []float64) float64 {
	if len(values) < 2 {
		return 0.5
	}
	avg := mean(values)
	if avg == 0 {
		return 0.1
	}
	cv := stdDev(values) / math.Abs(avg)
	return clamp(1-cv, 0.1, 1.0)
}

// mode returns the most frequent string. Ties break lexicographically so
// the result never depends on input or map iteration order.
func mode(values []string) string {
	if len(values) == 0 {
		return ""
	}
	freq := make(map[string]int, len(values))
	for _, v := range values {
		freq[v]++
	}
	keys := make([]string, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if freq[k] > freq[best] {
			best = k
		}
	}
	return best
}

// modeInt is mode for integers; ties break toward the smallest value.
func modeInt(values []int) int {
	if len(values) == 0 {
		return 0
	}
	freq := make(map[int]int, len(values))
	for _, v := range values {
		freq[v]++
	}
	keys := make([]int, 0, len(freq))
	for k := range freq {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	best := keys[0]
	for _, k := range keys[1:] {
		if freq[k] > freq[best] {
			best = k
		}
	}
	return best
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}

func clamp01(v float64) float64 {
	return clamp(v, 0, 1)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
