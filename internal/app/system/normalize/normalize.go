// Package normalize canonicalises user input before it is stored or used
// in a query.
package normalize

import "strings"

// Email trims and lowercases.
func Email(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Name trims and preserves case.
func Name(s string) string { return strings.TrimSpace(s) }

// Enum trims and lowercases a value compared against a fixed set
// (personality, provider, lead status).
func Enum(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// Code trims and uppercases registration codes such as GST and PAN numbers.
func Code(s string) string { return strings.ToUpper(strings.TrimSpace(s)) }

// Phone trims and removes spaces, dashes and parentheses. A leading + is kept.
func Phone(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')', '\t':
			return -1
		}
		return r
	}, strings.TrimSpace(s))
}
