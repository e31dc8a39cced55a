package estimator

import "strings"

type ggufQuant struct {
	Level string
	BPW   float64
}

// ggufQuants maps each supported GGUF quantisation level to its effective
// bits per weight. The values are empirically measured averages for
// llama.cpp quantised models, not the nominal bit counts (Q4_K_S stores
// scales and mins alongside the 4-bit weights, so it averages 4.58 bits),
// and are kept in ascending bpw order. Update here when llama.cpp's
// quantisation formats change.
var ggufQuants = []ggufQuant{
	{"Q2_K", 3.35},
	{"Q3_K_S", 3.5},
	{"Q3_K_M", 3.91},
	{"Q3_K_L", 4.27},
	{"Q4_0", 4.55},
	{"Q4_K_S", 4.58},
	{"Q4_K_M", 4.85},
	{"Q5_0", 5.54},
	{"Q5_K_S", 5.54},
	{"Q5_K_M", 5.69},
	{"Q6_K", 6.59},
	{"Q8_0", 8.5},
}

// ListGGUFQuants returns the supported GGUF quantisation level names in
// ascending bits-per-weight order.
func ListGGUFQuants() []string {
	levels := make([]string, len(ggufQuants))
	for i, q := range ggufQuants {
		levels[i] = q.Level
	}
	return levels
}

// GGUFBitsPerWeight resolves a GGUF level name to its effective bits per
// weight. Matching is case-insensitive. Unrecognised names return an
// UnknownQuantLevelError carrying the closest supported level as a
// suggestion.
func GGUFBitsPerWeight(level string) (float64, error) {
	upper := strings.ToUpper(level)
	for _, q := range ggufQuants {
		if q.Level == upper {
			return q.BPW, nil
		}
	}

	var closest string
	minDistance := len(upper)
	for _, q := range ggufQuants {
		if d := levenshteinDistance(upper, q.Level); d < minDistance {
			minDistance = d
			closest = q.Level
		}
	}

	return 0, &UnknownQuantLevelError{Level: level, Suggestion: closest}
}

// levenshteinDistance calculates the Levenshtein distance between two strings
func levenshteinDistance(s1, s2 string) int {
	s1 = strings.ToUpper(s1)
	s2 = strings.ToUpper(s2)
	m := len(s1)
	n := len(s2)
	d := make([][]int, m+1)
	for i := range d {
		d[i] = make([]int, n+1)
	}
	for i := 0; i <= m; i++ {
		d[i][0] = i
	}
	for j := 0; j <= n; j++ {
		d[0][j] = j
	}
	for j := 1; j <= n; j++ {
		for i := 1; i <= m; i++ {
			if s1[i-1] == s2[j-1] {
				d[i][j] = d[i-1][j-1]
			} else {
				min := d[i-1][j]
				if d[i][j-1] < min {
					min = d[i][j-1]
				}
				if d[i-1][j-1] < min {
					min = d[i-1][j-1]
				}
				d[i][j] = min + 1
			}
		}
	}
	return d[m][n]
}
