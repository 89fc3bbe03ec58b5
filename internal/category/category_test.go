package category

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/unicode/norm"

	dErrors "rmfaudit/pkg/domain-errors"
)

func TestAll_CanonicalOrder(t *testing.T) {
	got := All()
	require.Len(t, got, 7)
	assert.Equal(t, PrivacyEnhanced, got[0])
	assert.Equal(t, FairBiasManaged, got[6])

	got[0] = "tampered"
	assert.Equal(t, PrivacyEnhanced, All()[0], "All returns a copy")
}

func TestParse(t *testing.T) {
	t.Run("exact names", func(t *testing.T) {
		for _, name := range Names() {
			c, err := Parse(name)
			require.NoError(t, err)
			assert.Equal(t, name, c.String())
			assert.True(t, c.IsValid())
		}
	})

	t.Run("surrounding whitespace is trimmed", func(t *testing.T) {
		c, err := Parse("  Safe\n")
		require.NoError(t, err)
		assert.Equal(t, Safe, c)
	})

	t.Run("decomposed input is normalized", func(t *testing.T) {
		c, err := Parse(norm.NFD.String(string(FairBiasManaged)))
		require.NoError(t, err)
		assert.Equal(t, FairBiasManaged, c)
	})

	t.Run("rejects near misses", func(t *testing.T) {
		for _, name := range []string{"", "safe", "Safety", "Fair - With Harmful Bias Managed", "Privacy"} {
			_, err := Parse(name)
			require.Error(t, err, name)
			assert.True(t, errors.Is(err, ErrInvalid))
			assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		}
	})
}

func TestParseAll_StopsAtFirstInvalid(t *testing.T) {
	_, err := ParseAll([]string{"Safe", "Unknown", "Privacy-Enhanced"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `"Unknown"`)

	got, err := ParseAll([]string{"Safe", "Privacy-Enhanced"})
	require.NoError(t, err)
	assert.Equal(t, []Category{Safe, PrivacyEnhanced}, got)
}
