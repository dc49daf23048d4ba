package image

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"mockup/internal/domain"
)

// BuildMockupPrompt renders the instruction sent to the generation service.
// It is pure: the same inputs always yield the same prompt.
func BuildMockupPrompt(product, variant string, hasLogo bool) string {
	product = cleanField(product)
	variant = cleanField(variant)
	if variant == "" {
		variant = domain.DefaultVariant
	}

	switch {
	case product != "" && hasLogo:
		return fmt.Sprintf(
			"Create a photorealistic product mockup of the %s (%s variant). "+
				"Place the uploaded logo on the product realistically, following its surface, lighting and perspective. "+
				"Keep the product shape and colors faithful to the original photo.",
			product, variant)
	case product != "":
		return fmt.Sprintf(
			"Create a studio-quality product mockup of the %s (%s variant) "+
				"with soft lighting, a clean background and realistic shadows.",
			product, variant)
	case hasLogo:
		return fmt.Sprintf(
			"Place the uploaded logo on the product in a photorealistic mockup (%s variant). "+
				"The logo should follow the product surface with natural lighting and perspective.",
			variant)
	default:
		return "Make this look like a professional product mockup with studio lighting and a clean background."
	}
}

// cleanField NFC-normalizes s, drops control characters and collapses runs
// of whitespace.
func cleanField(s string) string {
	s = norm.NFC.String(s)
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			if unicode.IsSpace(r) {
				return ' '
			}
			return -1
		}
		return r
	}, s)
	return strings.Join(strings.Fields(s), " ")
}
