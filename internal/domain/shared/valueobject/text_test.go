package valueobject

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTruncateText(t *testing.T) {
	t.Run("short text is unchanged", func(t *testing.T) {
		assert.Equal(t, "Tablet Air 4", TruncateText("Tablet Air 4", DefaultTruncateLength))
	})

	t.Run("text at the limit is unchanged", func(t *testing.T) {
		text := strings.Repeat("a", 10)
		assert.Equal(t, text, TruncateText(text, 10))
	})

	t.Run("long text is cut and suffixed", func(t *testing.T) {
		assert.Equal(t, "Premium...", TruncateText("Premium Wireless Headphones", 7))
	})

	t.Run("counts runes not bytes", func(t *testing.T) {
		assert.Equal(t, "₦₦...", TruncateText("₦₦₦₦", 2))
	})
}

func TestIsValidEmail(t *testing.T) {
	assert.True(t, IsValidEmail("jane@example.com"))
	assert.True(t, IsValidEmail("oluwaseun.ajayi@example.com"))
	assert.False(t, IsValidEmail(""))
	assert.False(t, IsValidEmail("jane"))
	assert.False(t, IsValidEmail("jane@"))
	assert.False(t, IsValidEmail("jane doe@example.com"))
}

func TestDiscountPercentage(t *testing.T) {
	assert.Equal(t, 25, DiscountPercentage(100000, 75000))
	assert.Equal(t, 33, DiscountPercentage(150000, 100000))
	assert.Equal(t, 0, DiscountPercentage(0, 100))
	assert.Equal(t, 0, DiscountPercentage(-5, 100))
	assert.Equal(t, 0, DiscountPercentage(42000, 42000))

	t.Run("halves round up", func(t *testing.T) {
		assert.Equal(t, 3, DiscountPercentage(200, 195))
		assert.Equal(t, -2, DiscountPercentage(200, 205))
		assert.Equal(t, 0, DiscountPercentage(1000, 1005))
	})
}
