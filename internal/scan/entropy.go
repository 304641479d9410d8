package scan

import "math"

// maxTokenEntropy is the entropy (bits per character) of a uniformly random
// string over the candidate-token alphabet, used to normalize confidence.
const maxTokenEntropy = 6.0

// ShannonEntropy returns the entropy of s in bits per character.
func ShannonEntropy(s string) float64 {
	if s == "" {
		return 0
	}
	var freq [256]int
	for i := 0; i < len(s); i++ {
		freq[s[i]]++
	}
	n := float64(len(s))
	var h float64
	for _, c := range freq {
		if c == 0 {
			continue
		}
		p := float64(c) / n
		h -= p * math.Log2(p)
	}
	return h
}

// normalizedEntropy maps an entropy value to a confidence score in [0, 1].
func normalizedEntropy(h float64) float64 {
	c := h / maxTokenEntropy
	if c > 1 {
		return 1
	}
	return c
}
