package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateUsername(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name     string
		username string
		wantErr  bool
	}{
		{"Valid", "coasterfan", false},
		{"Exactly Min Length", "abcde", false},
		{"Exactly Max Length", strings.Repeat("u", 30), false},
		{"Too Short", "ab", true},
		{"Too Long", strings.Repeat("u", 31), true},
		{"Inner Space", "coaster fan", true},
		{"Tab", "coaster\tfan", true},
		{"Empty", "", true},
		{"Unicode Counted As Runes", "ÅÅÅÅÅ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateUsername(tt.username)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	t.Parallel()
	assert.NoError(t, ValidatePassword("validPass1"))
	assert.Error(t, ValidatePassword("p1"))
	assert.Error(t, ValidatePassword("has space1"))
	assert.Error(t, ValidatePassword(strings.Repeat("p", 31)))
}

func TestValidateRating(t *testing.T) {
	t.Parallel()
	for r := 1; r <= 5; r++ {
		assert.NoError(t, ValidateRating(r))
	}
	assert.Error(t, ValidateRating(0))
	assert.Error(t, ValidateRating(6))
	assert.Error(t, ValidateRating(-3))
}

func TestNormalizeName(t *testing.T) {
	t.Parallel()
	name, err := NormalizeName("name", "  Cedar Point ")
	assert.NoError(t, err)
	assert.Equal(t, "Cedar Point", name)

	_, err = NormalizeName("name", "   ")
	assert.EqualError(t, err, "name is required")

	_, err = NormalizeName("location", strings.Repeat("x", NameMaxLen+1))
	assert.Error(t, err)
}

func TestNormalizeBody(t *testing.T) {
	t.Parallel()
	body, err := NormalizeBody("\n great airtime \n")
	assert.NoError(t, err)
	assert.Equal(t, "great airtime", body)

	_, err = NormalizeBody(" ")
	assert.Error(t, err)
}
