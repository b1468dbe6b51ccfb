package draft

import (
	"math"
	"strconv"
	"strings"
)

const (
	MaxReps        = 300
	MaxTimeSeconds = 86400

	decimalPlaces = 2
)

// SanitizeDecimalInput cleans weight or distance text typed by the user:
// only digits and a single decimal point are kept, at most two
// fractional digits, and leading zeros are collapsed ("007" -> "7").
// A lone "." becomes "".
func SanitizeDecimalInput(s string) string {
	var intPart, fracPart strings.Builder
	seenDot := false
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			if seenDot {
				if fracPart.Len() < decimalPlaces {
					fracPart.WriteRune(r)
				}
			} else {
				intPart.WriteRune(r)
			}
		case r == '.' && !seenDot:
			seenDot = true
		}
	}

	ip := intPart.String()
	fp := fracPart.String()
	if !seenDot {
		if ip == "" {
			return ""
		}
		return collapseLeadingZeros(ip)
	}
	if ip == "" && fp == "" {
		return ""
	}
	if ip == "" {
		ip = "0"
	}
	return collapseLeadingZeros(ip) + "." + fp
}

// SanitizeRepsInput keeps digits only and clamps to [0, MaxReps].
func SanitizeRepsInput(s string) string {
	return sanitizeIntInput(s, MaxReps)
}

// SanitizeTimeInput keeps digits only and clamps to [0, MaxTimeSeconds].
func SanitizeTimeInput(s string) string {
	return sanitizeIntInput(s, MaxTimeSeconds)
}

// ParseDecimal sanitizes s and returns its value rounded to two
// decimals. Empty or zero input means "not yet entered" and yields nil.
func ParseDecimal(s string) *float64 {
	clean := SanitizeDecimalInput(s)
	if clean == "" {
		return nil
	}
	v, err := strconv.ParseFloat(strings.TrimSuffix(clean, "."), 64)
	if err != nil || v == 0 {
		return nil
	}
	v = RoundDecimal(v)
	return &v
}

func ParseReps(s string) *int {
	return parseInt(SanitizeRepsInput(s))
}

func ParseTimeSeconds(s string) *int {
	return parseInt(SanitizeTimeInput(s))
}

// RoundDecimal rounds v to the precision kept for weight and distance.
func RoundDecimal(v float64) float64 {
	p := math.Pow10(decimalPlaces)
	return math.Round(v*p) / p
}

// SanitizeValue applies the input field rules to a numeric value.
// Reps and time are rounded to whole numbers and clamped, weight and
// distance are rounded to two decimals and kept non-negative. Zero,
// NaN and infinities yield nil ("not yet entered").
func SanitizeValue(field Field, v *float64) *float64 {
	if v == nil || math.IsNaN(*v) || math.IsInf(*v, 0) {
		return nil
	}
	var clean float64
	switch field {
	case FieldReps:
		clean = clampWhole(*v, MaxReps)
	case FieldTimeSeconds:
		clean = clampWhole(*v, MaxTimeSeconds)
	default:
		clean = RoundDecimal(math.Max(*v, 0))
	}
	if clean <= 0 {
		return nil
	}
	return &clean
}

func clampWhole(v float64, maxValue int) float64 {
	return math.Min(math.Max(math.Round(v), 0), float64(maxValue))
}

// FormatDecimal renders a weight or distance without trailing zeros.
func FormatDecimal(v float64) string {
	return strconv.FormatFloat(RoundDecimal(v), 'f', -1, 64)
}

func sanitizeIntInput(s string, maxValue int) string {
	var digits strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	if digits.Len() == 0 {
		return ""
	}
	clean := collapseLeadingZeros(digits.String())
	maxStr := strconv.Itoa(maxValue)
	if len(clean) > len(maxStr) {
		return maxStr
	}
	v, err := strconv.Atoi(clean)
	if err != nil || v > maxValue {
		return maxStr
	}
	return clean
}

func parseInt(clean string) *int {
	if clean == "" {
		return nil
	}
	v, err := strconv.Atoi(clean)
	if err != nil || v == 0 {
		return nil
	}
	return &v
}

func collapseLeadingZeros(digits string) string {
	trimmed := strings.TrimLeft(digits, "0")
	if trimmed == "" {
		return "0"
	}
	return trimmed
}
