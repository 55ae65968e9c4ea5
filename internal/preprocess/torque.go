package preprocess

import (
	"errors"
	"strconv"
	"strings"
)

// ParseTorque returns the number a torque field starts with, so "190 Nm"
// parses to 190. Only the first whitespace-separated token is considered. A
// token that is not a number in full falls back to its longest numeric prefix,
// which turns "190Nm@ 2000rpm" into 190. Numbers too large for a float64
// parse to ±Inf. Text with no leading number parses to 0.
func ParseTorque(text string) float64 {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return 0
	}
	token := fields[0]

	if v, ok := parseFloat(token); ok {
		return v
	}

	prefix := numericPrefix(token)
	if prefix == "" {
		return 0
	}
	v, _ := parseFloat(prefix)
	return v
}

// parseFloat is strconv.ParseFloat where out-of-range values count as parsed,
// as ±Inf or ±0
func parseFloat(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return 0, false
	}
	return v, true
}

// numericPrefix returns the longest prefix of s shaped like a decimal number:
// optional sign, digits with at most one decimal point, optional exponent.
// It returns "" when s has no leading digit.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		j := i + 1
		fraction := 0
		for j < len(s) && isDigit(s[j]) {
			j++
			fraction++
		}
		if digits+fraction > 0 {
			i = j
			digits += fraction
		}
	}
	if digits == 0 {
		return ""
	}

	// exponent only counts when at least one digit follows it
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		start := j
		for j < len(s) && isDigit(s[j]) {
			j++
		}
		if j > start {
			i = j
		}
	}

	return s[:i]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
