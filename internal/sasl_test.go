package internal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeSASL(t *testing.T) {
	assert.Equal(t, "UG9nQ2hhbXA=", EncodeSASL([]byte("PogChamp")))
	assert.Equal(t, "", EncodeSASL(nil))
}

func TestDecodeSASL(t *testing.T) {
	b, err := DecodeSASL("Y2hhbGxlbmdl")
	require.NoError(t, err)
	assert.Equal(t, []byte("challenge"), b)

	for _, s := range []string{"", "="} {
		b, err := DecodeSASL(s)
		require.NoError(t, err)
		assert.NotNil(t, b)
		assert.Empty(t, b)
	}

	_, err = DecodeSASL("not base64!")
	assert.Error(t, err)
}
