package identity_test

import (
	"math"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poolup/poolup/pkg/identity"
)

func TestEncodeHash(t *testing.T) {
	original := []uint64{1, 112_358_777, 1_618_033_988, 2_718_281_828, math.MaxUint64 - 1}
	expected := []string{
		"0000000000001",
		"00000003b4xbt",
		"0000001h72fa4",
		"0000002j0bc34",
		"fzzzzzzzzzzzy",
	}

	for i, hash := range original {
		encoded := identity.EncodeHash(hash)
		assert.Equal(t, expected[i], encoded)
		assert.Len(t, encoded, identity.EncodedWidth)
	}
}

func TestEncodeHashAlphabet(t *testing.T) {
	// The alphabet omits visually ambiguous letters.
	for _, excluded := range []string{"g", "i", "l", "o"} {
		assert.NotContains(t, identity.Alphabet, excluded)
	}
	assert.Len(t, identity.Alphabet, 32)

	for _, hash := range []uint64{0, 31, 32, math.MaxUint64} {
		for _, ch := range identity.EncodeHash(hash) {
			assert.True(t, strings.ContainsRune(identity.Alphabet, ch), "symbol %q outside alphabet", ch)
		}
	}
}
