package storage

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

func TestSealerRoundTrip(t *testing.T) {
	s, err := NewSealer([]byte("host|user"))
	require.NoError(t, err)

	sealed, err := s.Seal("eyJhbGciOiJIUzI1NiJ9.payload.sig")
	require.NoError(t, err)
	assert.NotContains(t, sealed, "payload")

	opened, err := s.Open(sealed)
	require.NoError(t, err)
	assert.Equal(t, "eyJhbGciOiJIUzI1NiJ9.payload.sig", opened)
}

func TestSealerNoncesDiffer(t *testing.T) {
	s, err := NewSealer([]byte("id"))
	require.NoError(t, err)

	a, err := s.Seal("same")
	require.NoError(t, err)
	b, err := s.Seal("same")
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestSealerRejectsForeignIdentity(t *testing.T) {
	mine, err := NewSealer([]byte("alice@laptop"))
	require.NoError(t, err)
	theirs, err := NewSealer([]byte("bob@desktop"))
	require.NoError(t, err)

	sealed, err := mine.Seal("token")
	require.NoError(t, err)

	_, err = theirs.Open(sealed)
	require.Error(t, err)
	assert.Equal(t, amplyerrors.ErrCodeStorageSeal, amplyerrors.CodeOf(err))
}

func TestSealerRejectsMalformed(t *testing.T) {
	s, err := NewSealer([]byte("id"))
	require.NoError(t, err)

	tests := map[string]string{
		"not base64": "%%%",
		"truncated":  base64.StdEncoding.EncodeToString([]byte("short")),
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := s.Open(in)
			assert.Error(t, err)
		})
	}

	sealed, err := s.Seal("token")
	require.NoError(t, err)
	raw, _ := base64.StdEncoding.DecodeString(sealed)
	raw[len(raw)-1] ^= 0xff
	_, err = s.Open(base64.StdEncoding.EncodeToString(raw))
	assert.Error(t, err, "tampered ciphertext must not open")
}

func TestLocalIdentityScopedToDir(t *testing.T) {
	assert.NotEqual(t, LocalIdentity("/a"), LocalIdentity("/b"))
}
