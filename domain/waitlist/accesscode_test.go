package waitlist

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAccessCode(t *testing.T) {
	pattern := regexp.MustCompile(`^PS-[A-HJ-NP-Z2-9]{8}$`)

	t.Run("matches the expected format", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := GenerateAccessCode()
			require.NoError(t, err)
			assert.Regexp(t, pattern, code)
		}
	})

	t.Run("never contains ambiguous characters", func(t *testing.T) {
		for i := 0; i < 100; i++ {
			code, err := GenerateAccessCode()
			require.NoError(t, err)

			for _, forbidden := range []string{"0", "O", "1", "I"} {
				assert.False(t, strings.Contains(code[len(accessCodePrefix):], forbidden),
					"code %q contains ambiguous character %q", code, forbidden)
			}
		}
	})

	t.Run("sequential codes differ", func(t *testing.T) {
		// Best-effort uniqueness: 32^8 codes make a collision across a
		// handful of draws vanishingly unlikely.
		seen := make(map[string]bool)
		for i := 0; i < 50; i++ {
			code, err := GenerateAccessCode()
			require.NoError(t, err)
			assert.False(t, seen[code], "duplicate code %q", code)
			seen[code] = true
		}
	})
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "a@b.com", NormalizeEmail(" a@b.com "))
	assert.Equal(t, "a@b.com", NormalizeEmail("A@B.com"))
	assert.Equal(t, "student@example.com", NormalizeEmail("\tStudent@Example.COM\n"))
}

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"student@example.com",
		"first.last@sub.example.co.uk",
		"x@y.io",
	}
	for _, email := range valid {
		assert.True(t, IsValidEmail(email), "expected %q to be valid", email)
	}

	invalid := []string{
		"",
		"not-an-email",
		"missing@tld",
		"two@@example.com",
		"spaces in@example.com",
		"@example.com",
		"user@",
	}
	for _, email := range invalid {
		assert.False(t, IsValidEmail(email), "expected %q to be invalid", email)
	}
}
