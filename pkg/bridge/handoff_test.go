package bridge

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airgaplab/airgap/pkg/policy"
)

func TestEncodeDecodeEnv_RoundTrip(t *testing.T) {
	conf := policy.NewConfiguration(
		[]string{"localhost", "*.internal.test"},
		[]string{"tracker.test"},
	)

	encoded, sessionID, err := EncodeEnv(conf)
	require.NoError(t, err)
	require.NotEmpty(t, encoded)
	require.NotEmpty(t, sessionID)

	decoded, gotSession, err := DecodeEnv(encoded)
	require.NoError(t, err)
	assert.Equal(t, sessionID, gotSession)
	assert.True(t, conf.Equal(decoded))
}

func TestDecodeEnv_Garbage(t *testing.T) {
	for name, encoded := range map[string]string{
		"not base64":      "%%%not-base64%%%",
		"base64 not cbor": "bm90IGNib3IgYXQgYWxs",
	} {
		t.Run(name, func(t *testing.T) {
			_, _, err := DecodeEnv(encoded)
			assert.True(t, errors.Is(err, ErrDecodeHandoff))
		})
	}
}

func TestAdoptFromEnv(t *testing.T) {
	t.Run("adopts a valid snapshot", func(t *testing.T) {
		conf := policy.NewConfiguration([]string{"localhost"}, nil)
		encoded, _, err := EncodeEnv(conf)
		require.NoError(t, err)
		t.Setenv(PolicyEnv, encoded)

		b := newTestBridge()
		require.True(t, b.AdoptFromEnv())

		current := b.Current()
		require.NotNil(t, current)
		assert.Equal(t, []string{"localhost"}, current.AllowedHosts())
	})

	t.Run("unset variable", func(t *testing.T) {
		t.Setenv(PolicyEnv, "")

		b := newTestBridge()
		assert.False(t, b.AdoptFromEnv())
		assert.Nil(t, b.Current())
	})

	t.Run("undecodable snapshot is fail-open", func(t *testing.T) {
		t.Setenv(PolicyEnv, "!!!garbage!!!")

		b := newTestBridge()
		assert.False(t, b.AdoptFromEnv())
		assert.Nil(t, b.Current())
	})
}
