package storage

import (
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"io"
	"os"
	"runtime"

	"golang.org/x/crypto/chacha20poly1305"
	"golang.org/x/crypto/hkdf"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
)

const sealInfo = "amply-auth-token v1"

// Sealer encrypts small secrets (the session token) before they reach disk.
// The key is derived with HKDF-SHA256 from a machine/user identity, so a
// copied state directory does not open on another account.
type Sealer struct {
	aead cipher.AEAD
}

// NewSealer derives an XChaCha20-Poly1305 key from identity.
func NewSealer(identity []byte) (*Sealer, error) {
	key := make([]byte, chacha20poly1305.KeySize)
	kdf := hkdf.New(sha256.New, identity, []byte("amply"), []byte(sealInfo))
	if _, err := io.ReadFull(kdf, key); err != nil {
		return nil, amplyerrors.Wrap(amplyerrors.ErrCodeStorageSeal, "failed to derive sealing key", err)
	}
	aead, err := chacha20poly1305.NewX(key)
	if err != nil {
		return nil, amplyerrors.Wrap(amplyerrors.ErrCodeStorageSeal, "failed to initialize cipher", err)
	}
	return &Sealer{aead: aead}, nil
}

// LocalIdentity builds the identity for the current user on this host,
// scoped to the state directory.
func LocalIdentity(stateDir string) []byte {
	host, _ := os.Hostname()
	user := os.Getenv("USER")
	if user == "" {
		user = os.Getenv("USERNAME")
	}
	return []byte(fmt.Sprintf("%s|%s|%s|%d|%s", runtime.GOOS, host, user, os.Getuid(), stateDir))
}

// Seal encrypts plaintext and returns base64(nonce || ciphertext).
func (s *Sealer) Seal(plaintext string) (string, error) {
	nonce := make([]byte, s.aead.NonceSize(), s.aead.NonceSize()+len(plaintext)+s.aead.Overhead())
	if _, err := rand.Read(nonce); err != nil {
		return "", amplyerrors.Wrap(amplyerrors.ErrCodeStorageSeal, "failed to generate nonce", err)
	}
	out := s.aead.Seal(nonce, nonce, []byte(plaintext), []byte(sealInfo))
	return base64.StdEncoding.EncodeToString(out), nil
}

// Open reverses Seal. Tampered or foreign values fail.
func (s *Sealer) Open(sealed string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(sealed)
	if err != nil {
		return "", amplyerrors.Wrap(amplyerrors.ErrCodeStorageSeal, "sealed value is not base64", err)
	}
	if len(raw) < s.aead.NonceSize()+s.aead.Overhead() {
		return "", amplyerrors.New(amplyerrors.ErrCodeStorageSeal, "sealed value is truncated")
	}
	nonce, ct := raw[:s.aead.NonceSize()], raw[s.aead.NonceSize():]
	pt, err := s.aead.Open(nil, nonce, ct, []byte(sealInfo))
	if err != nil {
		return "", amplyerrors.Wrap(amplyerrors.ErrCodeStorageSeal, "sealed value could not be opened", err)
	}
	return string(pt), nil
}
