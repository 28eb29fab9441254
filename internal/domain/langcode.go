package domain

import "strings"

const (
	// LangcodeNotSpecified marks a translation that was not translated from
	// another language.
	LangcodeNotSpecified = "und"
	// LangcodeNotApplicable is used when a language carries no meaningful code.
	LangcodeNotApplicable = "zxx"
)

// NormalizeLangcode lower-cases and trims a language code.
func NormalizeLangcode(code string) string {
	return strings.ToLower(strings.TrimSpace(code))
}

// IsUnspecifiedSource reports whether the source langcode denotes an original
// translation.
func IsUnspecifiedSource(code string) bool {
	normalized := NormalizeLangcode(code)
	return normalized == "" || normalized == LangcodeNotSpecified || normalized == LangcodeNotApplicable
}
