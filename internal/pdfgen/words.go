package pdfgen

import (
	"fmt"
	"math"
	"strings"
)

var ones = []string{
	"", "One", "Two", "Three", "Four", "Five", "Six", "Seven", "Eight",
	"Nine", "Ten", "Eleven", "Twelve", "Thirteen", "Fourteen", "Fifteen",
	"Sixteen", "Seventeen", "Eighteen", "Nineteen",
}

var tens = []string{
	"", "", "Twenty", "Thirty", "Forty", "Fifty", "Sixty", "Seventy",
	"Eighty", "Ninety",
}

// AmountInWords renders a rupee amount in the Indian numbering system
// (crore, lakh, thousand), with paise appended when present.
func AmountInWords(amount float64) string {
	if amount < 0 {
		return "Minus " + AmountInWords(-amount)
	}
	rupees := int64(amount)
	paise := int64(math.Round((amount - float64(rupees)) * 100))

	var parts []string
	if rupees == 0 {
		parts = append(parts, "Zero")
	} else {
		groups := []struct {
			value int64
			name  string
		}{
			{10000000, "Crore"},
			{100000, "Lakh"},
			{1000, "Thousand"},
			{100, "Hundred"},
		}
		n := rupees
		for _, g := range groups {
			if n >= g.value {
				parts = append(parts, belowHundred(n/g.value), g.name)
				n %= g.value
			}
		}
		if n > 0 {
			parts = append(parts, belowHundred(n))
		}
	}
	words := strings.Join(parts, " ") + " Rupees"
	if paise > 0 {
		words += fmt.Sprintf(" and %s Paise", belowHundred(paise))
	}
	return words + " Only"
}

// belowHundred spells 0..99. Crore groups can exceed 99 for very large
// amounts; recurse through the hundreds place in that case.
func belowHundred(n int64) string {
	switch {
	case n >= 100:
		s := belowHundred(n/100) + " Hundred"
		if rem := n % 100; rem > 0 {
			s += " " + belowHundred(rem)
		}
		return s
	case n < 20:
		return ones[n]
	default:
		s := tens[n/10]
		if n%10 > 0 {
			s += " " + ones[n%10]
		}
		return s
	}
}
