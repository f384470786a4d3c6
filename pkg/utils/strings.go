package utils

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	slugInvalid = regexp.MustCompile(`[^a-z0-9 -]+`)
	slugDashes  = regexp.MustCompile(`-+`)
)

// GenerateSlug converts a string into a URL-friendly slug.
// e.g. "2021 Mercedes-Benz C 300!" -> "2021-mercedes-benz-c-300"
func GenerateSlug(input string) string {
	s := strings.ToLower(strings.TrimSpace(input))
	s = slugInvalid.ReplaceAllString(s, "")
	s = strings.ReplaceAll(s, " ", "-")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

// NormalizeEmail trims and lowercases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ParseInt parses a string to int with a fallback default value
func ParseInt(s string, defaultVal int) int {
	if s == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(s)
	if err != nil {
		return defaultVal
	}
	return val
}

// ParseBoolPtr returns nil for an empty or invalid value.
func ParseBoolPtr(s string) *bool {
	b, err := strconv.ParseBool(s)
	if err != nil {
		return nil
	}
	return &b
}

// ParseDecimalPtr returns nil for an empty or invalid value.
func ParseDecimalPtr(s string) *decimal.Decimal {
	if s == "" {
		return nil
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil
	}
	return &d
}
