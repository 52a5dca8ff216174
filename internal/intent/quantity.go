package intent

import (
	"regexp"
	"strconv"
)

// DefaultQuantity is used when the utterance names no usable quantity.
const DefaultQuantity = 1

// quantityPattern matches a whole integer immediately followed (optionally
// after spaces) by a whole unit token. The number may not continue a decimal
// or grouped figure ("2.5", "1,000") and the unit may not run on into a longer
// word ("kilometre"). Devanagari digits are accepted alongside ASCII.
var quantityPattern = regexp.MustCompile(`(?i)(?:^|[^0-9०-९.,])(-?[0-9०-९]+)\s*(kilograms|kilogram|kilos|kilo|kgs|kg|किलोग्राम|किलो|केजी)(?:$|[^\p{L}\p{M}])`)

// ExtractQuantity scans the original, un-normalized utterance for a quantity.
// Zero, negative, fractional, oversized or absent quantities yield DefaultQuantity.
func ExtractQuantity(original string) int {
	m := quantityPattern.FindStringSubmatch(original)
	if m == nil {
		return DefaultQuantity
	}
	n, err := strconv.Atoi(asciiDigits(m[1]))
	if err != nil || n <= 0 {
		return DefaultQuantity
	}
	return n
}

// asciiDigits rewrites Devanagari digits to their ASCII forms.
func asciiDigits(s string) string {
	out := make([]rune, 0, len(s))
	for _, r := range s {
		if r >= '०' && r <= '९' {
			r = '0' + (r - '०')
		}
		out = append(out, r)
	}
	return string(out)
}
