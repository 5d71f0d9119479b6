package physio

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// triggerOnsets returns the sample indices at which the scanner trigger
// fired.
//
// When the scanner logged the trigger in-band, the affected samples arrive
// here as missing values, alternating "on" and "off" marks; the 1st, 3rd,
// 5th... missing sample is an "on" mark, so those positions are the onsets.
// A trigger channel without missing marks is treated as an analog waveform
// and the onsets are its rising edges through the mid-range threshold.
func triggerOnsets(samples []float64) []int {
	var marks []int
	for i, v := range samples {
		if math.IsNaN(v) {
			marks = append(marks, i)
		}
	}
	if len(marks) > 0 {
		onsets := make([]int, 0, (len(marks)+1)/2)
		for i := 0; i < len(marks); i += 2 {
			onsets = append(onsets, marks[i])
		}
		return onsets
	}

	if len(samples) == 0 {
		return nil
	}
	lo, hi := floats.Min(samples), floats.Max(samples)
	threshold := lo + (hi-lo)/2
	var onsets []int
	for i := 1; i < len(samples); i++ {
		if samples[i-1] < threshold && samples[i] >= threshold {
			onsets = append(onsets, i)
		}
	}
	return onsets
}

// onsetIndicator expands onset indices into a 0/1 column of length n.
func onsetIndicator(n int, onsets []int) []float64 {
	col := make([]float64, n)
	for _, idx := range onsets {
		if idx < n {
			col[idx] = 1
		}
	}
	return col
}
