package exporter

import (
	"fmt"
	"math"
	"strconv"
)

// FormatFloat formats a float64 for CSV output with one decimal place.
// NaN (a missing value in the raw tables) becomes an empty field.
func FormatFloat(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return fmt.Sprintf("%.1f", f)
}

// FormatFloat2 formats a float64 with two decimal places, empty when missing.
func FormatFloat2(f float64) string {
	if math.IsNaN(f) {
		return ""
	}
	return fmt.Sprintf("%.2f", f)
}

// FormatInt formats an int for CSV output
func FormatInt(i int) string {
	return strconv.Itoa(i)
}

// ParseFloat parses a CSV numeric field; an empty field is a missing value
// and parses to NaN.
func ParseFloat(s string) (float64, error) {
	if s == "" {
		return math.NaN(), nil
	}
	return strconv.ParseFloat(s, 64)
}

// ParseInt parses a CSV integer field. Empty fields parse to zero.
func ParseInt(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	// Tolerate float-formatted integers ("2021.0") in hand-edited inputs.
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f), nil
	}
	return strconv.Atoi(s)
}
