package domain

import (
	"crypto/rand"
	"fmt"
	"regexp"
	"strings"
)

// CurrencySymbol prefixes every formatted price.
const CurrencySymbol = "€"

// FormatPrice renders cents as "€12.50".
func FormatPrice(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%s%d.%02d", sign, CurrencySymbol, cents/100, cents%100)
}

var (
	slugSpaces  = regexp.MustCompile(`\s+`)
	slugInvalid = regexp.MustCompile(`[^\w\-]+`)
	slugDashes  = regexp.MustCompile(`\-\-+`)
)

// serbianLatin folds Serbian Latin letters to ASCII so they survive slugging.
var serbianLatin = strings.NewReplacer(
	"š", "s", "č", "c", "ć", "c", "ž", "z", "đ", "dj",
)

// Slugify lowercases text and keeps word characters joined by single dashes.
func Slugify(text string) string {
	s := serbianLatin.Replace(strings.ToLower(strings.TrimSpace(text)))
	s = slugSpaces.ReplaceAllString(s, "-")
	s = slugInvalid.ReplaceAllString(s, "")
	s = slugDashes.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}

const skuAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// GenerateSKU builds BRA-PRO-SIZE-XXXX from brand, product and size with a random suffix.
func GenerateSKU(productName, size, brandName string) string {
	suffix := make([]byte, 4)
	if _, err := rand.Read(suffix); err != nil {
		copy(suffix, "0000")
	}
	for i, b := range suffix {
		suffix[i] = skuAlphabet[int(b)%len(skuAlphabet)]
	}
	return fmt.Sprintf("%s-%s-%s-%s", prefix3(brandName), prefix3(productName), strings.ToUpper(size), string(suffix))
}

func prefix3(s string) string {
	r := []rune(strings.ToUpper(s))
	if len(r) > 3 {
		r = r[:3]
	}
	return string(r)
}
