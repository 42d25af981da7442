package checkout

import (
	"strings"
)

// Placeholders shown on the card preview for fields not yet typed.
const (
	CardNumberPlaceholder = "#### #### #### ####"
	CardNamePlaceholder   = "FULL NAME"
	ExpiryPlaceholder     = "MM/YY"
)

// minCardDigits is the shortest card number the wizard submits.
const minCardDigits = 16

func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber keeps only digits and groups them in fours:
// "4111111111111111" becomes "4111 1111 1111 1111".
func FormatCardNumber(input string) string {
	digits := digitsOnly(input)
	var b strings.Builder
	for i := 0; i < len(digits); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		end := min(i+4, len(digits))
		b.WriteString(digits[i:end])
	}
	return b.String()
}

// FormatExpiry keeps only digits and inserts a slash after the month once
// two digits are present. Digits past the year are dropped.
func FormatExpiry(input string) string {
	digits := digitsOnly(input)
	if len(digits) < 2 {
		return digits
	}
	end := min(4, len(digits))
	return digits[:2] + "/" + digits[2:end]
}

// CardPreview is the mock card drawn beside the payment form.
type CardPreview struct {
	Number string `json:"number"`
	Name   string `json:"name"`
	Expiry string `json:"expiry"`
}

// Preview formats p for display, substituting placeholders for empty fields.
func Preview(p Payment) CardPreview {
	preview := CardPreview{
		Number: FormatCardNumber(p.CardNumber),
		Name:   strings.ToUpper(strings.TrimSpace(p.CardName)),
		Expiry: FormatExpiry(p.Expiry),
	}
	if preview.Number == "" {
		preview.Number = CardNumberPlaceholder
	}
	if preview.Name == "" {
		preview.Name = CardNamePlaceholder
	}
	if preview.Expiry == "" {
		preview.Expiry = ExpiryPlaceholder
	}
	return preview
}
