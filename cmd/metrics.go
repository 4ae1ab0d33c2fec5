package cmd

import (
	"regexp"
	"strings"
)

// Metrics compares a reconstruction against its ground truth transcript.
// Distances are counted in runes.
type Metrics struct {
	CharacterSimilarity float64 `yaml:"character_similarity"`
	CharacterErrorRate  float64 `yaml:"character_error_rate"`
	ExpectedLength      int     `yaml:"expected_length"`
	ActualLength        int     `yaml:"actual_length"`
	CorrectCharacters   int     `yaml:"correct_characters"`
	Substitutions       int     `yaml:"substitutions"`
	Deletions           int     `yaml:"deletions"`
	Insertions          int     `yaml:"insertions"`
}

var whitespace = regexp.MustCompile(`[\s\p{Zs}]+`)

// normalizeText drops all whitespace and lowercases. Reconstructed lines are
// joined without separators, so transcripts are compared the same way.
func normalizeText(text string) string {
	return strings.ToLower(whitespace.ReplaceAllString(text, ""))
}

func levenshteinDistance(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	len1, len2 := len(r1), len(r2)
	if len1 == 0 {
		return len2
	}
	if len2 == 0 {
		return len1
	}

	prev := make([]int, len2+1)
	curr := make([]int, len2+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len1; i++ {
		curr[0] = i
		for j := 1; j <= len2; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len2]
}

func calculateSimilarity(s1, s2 string) float64 {
	maxLen := max(len([]rune(s1)), len([]rune(s2)))
	if maxLen == 0 {
		return 1.0
	}
	distance := levenshteinDistance(s1, s2)
	return 1.0 - float64(distance)/float64(maxLen)
}

// editOperations aligns orig and trans and counts each kind of edit
func editOperations(orig, trans []rune) (correct, substitutions, deletions, insertions int) {
	m, n := len(orig), len(trans)
	dp := make([][]int, m+1)
	for i := range dp {
		dp[i] = make([]int, n+1)
		dp[i][0] = i
	}
	for j := 0; j <= n; j++ {
		dp[0][j] = j
	}

	for i := 1; i <= m; i++ {
		for j := 1; j <= n; j++ {
			if orig[i-1] == trans[j-1] {
				dp[i][j] = dp[i-1][j-1]
			} else {
				dp[i][j] = 1 + min(dp[i-1][j], dp[i][j-1], dp[i-1][j-1])
			}
		}
	}

	i, j := m, n
	for i > 0 || j > 0 {
		switch {
		case i > 0 && j > 0 && orig[i-1] == trans[j-1]:
			correct++
			i--
			j--
		case i > 0 && j > 0 && dp[i][j] == dp[i-1][j-1]+1:
			substitutions++
			i--
			j--
		case i > 0 && dp[i][j] == dp[i-1][j]+1:
			deletions++
			i--
		default:
			insertions++
			j--
		}
	}

	return correct, substitutions, deletions, insertions
}

func CalculateAccuracyMetrics(original, transcribed string) Metrics {
	origNorm := []rune(normalizeText(original))
	transNorm := []rune(normalizeText(transcribed))

	correct, subs, dels, ins := editOperations(origNorm, transNorm)
	cer := 0.0
	if len(origNorm) > 0 {
		cer = float64(subs+dels+ins) / float64(len(origNorm))
	} else if len(transNorm) > 0 {
		cer = 1.0
	}

	return Metrics{
		CharacterSimilarity: calculateSimilarity(string(origNorm), string(transNorm)),
		CharacterErrorRate:  cer,
		ExpectedLength:      len(origNorm),
		ActualLength:        len(transNorm),
		CorrectCharacters:   correct,
		Substitutions:       subs,
		Deletions:           dels,
		Insertions:          ins,
	}
}
