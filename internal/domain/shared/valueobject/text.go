package valueobject

import (
	"math"

	"github.com/go-playground/validator/v10"
)

// DefaultTruncateLength is used by TruncateText callers that have no
// layout-specific limit
const DefaultTruncateLength = 100

var emailValidator = validator.New()

// TruncateText shortens text to maxLength runes and appends an ellipsis.
// Text at or under the limit is returned unchanged.
func TruncateText(text string, maxLength int) string {
	if maxLength < 0 {
		maxLength = 0
	}
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength]) + "..."
}

// IsValidEmail reports whether email is a syntactically valid address
func IsValidEmail(email string) bool {
	return emailValidator.Var(email, "required,email") == nil
}

// DiscountPercentage returns how much cheaper discounted is than original,
// as a whole percentage. Halves round up, so a 2.5% markup reports -2.
func DiscountPercentage(original, discounted int64) int {
	if original <= 0 {
		return 0
	}
	discount := float64(original-discounted) / float64(original) * 100
	return int(math.Floor(discount + 0.5))
}
