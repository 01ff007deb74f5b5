package form

import (
	"strings"
	"unicode/utf16"
)

// PasswordSymbols is the punctuation set a strong password must draw from.
const PasswordSymbols = `!@#$%^&*(),.?":{}|<>`

// PasswordPolicy is the strength policy applied before registration.
type PasswordPolicy struct {
	MinLength int
	Symbols   string
}

// DefaultPasswordPolicy requires 8 characters and one of each character class.
func DefaultPasswordPolicy() PasswordPolicy {
	return PasswordPolicy{MinLength: 8, Symbols: PasswordSymbols}
}

// Violations lists the rules password breaks, empty when it is strong.
// Length is measured in UTF-16 code units, so a character outside the
// Basic Multilingual Plane counts twice.
func (p PasswordPolicy) Violations(password string) []string {
	var upper, lower, digit, symbol bool
	units := 0
	for _, r := range password {
		units += len(utf16.AppendRune(nil, r))
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= 'a' && r <= 'z':
			lower = true
		case r >= '0' && r <= '9':
			digit = true
		case strings.ContainsRune(p.Symbols, r):
			symbol = true
		}
	}

	var violations []string
	if units < p.MinLength {
		violations = append(violations, "length")
	}
	if !upper {
		violations = append(violations, "uppercase")
	}
	if !lower {
		violations = append(violations, "lowercase")
	}
	if !digit {
		violations = append(violations, "digit")
	}
	if !symbol {
		violations = append(violations, "symbol")
	}
	return violations
}

// Strong reports whether password satisfies every rule.
func (p PasswordPolicy) Strong(password string) bool {
	return len(p.Violations(password)) == 0
}
