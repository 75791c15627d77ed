package isbn

import (
	"strings"
)

// Type represents the kind of ISBN a value is.
type Type string

const (
	TypeISBN10  Type = "isbn_10"
	TypeISBN13  Type = "isbn_13"
	TypeUnknown Type = ""
)

// Normalize removes spaces and hyphens from an ISBN and uppercases the rest.
// Nothing else is stripped, so a value like "ISBN:0596520689" keeps its prefix
// and fails validation.
func Normalize(value string) string {
	if value == "" {
		return ""
	}
	var result strings.Builder
	result.Grow(len(value))
	for _, r := range value {
		if r == ' ' || r == '-' {
			continue
		}
		result.WriteRune(r)
	}
	return strings.ToUpper(result.String())
}

// NormalizePtr is Normalize for optional values. A nil value, or one that is
// empty once normalized, comes back as nil.
func NormalizePtr(value *string) *string {
	if value == nil {
		return nil
	}
	normalized := Normalize(*value)
	if normalized == "" {
		return nil
	}
	return &normalized
}

// Validate reports whether the value is a well-formed ISBN-10 or ISBN-13 with
// a correct check digit. The value is normalized first.
func Validate(value string) bool {
	if value == "" {
		return false
	}
	normalized := Normalize(value)
	switch len(normalized) {
	case 10:
		return ValidateISBN10(normalized)
	case 13:
		return ValidateISBN13(normalized)
	default:
		return false
	}
}

// DetectType classifies a raw value as an ISBN-10 or ISBN-13. Values that
// don't validate are TypeUnknown.
func DetectType(value string) Type {
	normalized := Normalize(value)
	if len(normalized) == 13 && ValidateISBN13(normalized) {
		return TypeISBN13
	}
	if len(normalized) == 10 && ValidateISBN10(normalized) {
		return TypeISBN10
	}
	return TypeUnknown
}

// ValidateISBN10 validates an already normalized ISBN-10.
// ISBN-10 uses modulo 11 with weights 10,9,8,7,6,5,4,3,2,1.
func ValidateISBN10(value string) bool {
	if len(value) != 10 {
		return false
	}

	var sum int
	for i := 0; i < 10; i++ {
		c := value[i]
		var digit int
		switch {
		case c >= '0' && c <= '9':
			digit = int(c - '0')
		case c == 'X' && i == 9:
			digit = 10
		default:
			// X is only valid as the check digit
			return false
		}
		sum += digit * (10 - i)
	}
	return sum%11 == 0
}

// ValidateISBN13 validates an already normalized ISBN-13.
// ISBN-13 uses alternating weights of 1 and 3.
func ValidateISBN13(value string) bool {
	if len(value) != 13 {
		return false
	}

	var sum int
	for i := 0; i < 13; i++ {
		c := value[i]
		if c < '0' || c > '9' {
			return false
		}
		digit := int(c - '0')
		if i%2 == 0 {
			sum += digit
		} else {
			sum += digit * 3
		}
	}
	return sum%10 == 0
}
