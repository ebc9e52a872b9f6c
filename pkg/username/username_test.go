package username_test

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/playforge/gamekit/pkg/username"
)

func TestFromEmail(t *testing.T) {
	t.Parallel()

	t.Run("uses local part plus numeric suffix", func(t *testing.T) {
		t.Parallel()

		got := username.FromEmail("player@example.com")
		assert.Regexp(t, regexp.MustCompile(`^player\d{1,3}$`), got)
	})

	t.Run("address without at-sign used verbatim as base", func(t *testing.T) {
		t.Parallel()

		got := username.FromEmail("player")
		assert.True(t, strings.HasPrefix(got, "player"))
	})

	t.Run("suffix stays under 1000", func(t *testing.T) {
		t.Parallel()

		for range 100 {
			got := username.FromEmail("x@example.com")
			assert.Regexp(t, regexp.MustCompile(`^x\d{1,3}$`), got)
		}
	})
}

func TestFromEmailWithCheck(t *testing.T) {
	t.Parallel()

	t.Run("accepts first available candidate", func(t *testing.T) {
		t.Parallel()

		got, ok := username.FromEmailWithCheck("player@example.com", func(string) bool { return true })
		assert.True(t, ok)
		assert.NotEmpty(t, got)
	})

	t.Run("retries on rejection", func(t *testing.T) {
		t.Parallel()

		calls := 0
		got, ok := username.FromEmailWithCheck("player@example.com", func(string) bool {
			calls++
			return calls >= 3
		})
		assert.True(t, ok)
		assert.Equal(t, 3, calls)
		assert.NotEmpty(t, got)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, ok := username.FromEmailWithCheck("player@example.com", func(string) bool {
			calls++
			return false
		})
		assert.False(t, ok)
		assert.Equal(t, 10, calls)
	})
}
