package session

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/storage"
)

// record is the on-disk shape of the amply-auth key.
type record struct {
	Token  string `yaml:"token"`
	Sealed bool   `yaml:"sealed,omitempty"`
}

func (s *Store) persist(token string) {
	if s.storage == nil {
		return
	}
	if token == "" {
		if err := s.storage.Remove(storage.KeyAuth); err != nil {
			s.logger.WithError(err).Warn("failed to remove persisted token")
		}
		return
	}

	rec := record{Token: token}
	if s.sealer != nil {
		sealed, err := s.sealer.Seal(token)
		if err != nil {
			s.logger.WithError(err).Warn("failed to seal token, not persisting")
			return
		}
		rec = record{Token: sealed, Sealed: true}
	}
	if err := s.storage.Set(storage.KeyAuth, rec); err != nil {
		s.logger.WithError(err).Warn("failed to persist token")
	}
}

// loadToken reads the persisted token. A record that cannot be opened is
// treated as absent.
func (s *Store) loadToken() (string, error) {
	if s.storage == nil {
		return "", nil
	}
	var rec record
	ok, err := s.storage.Get(storage.KeyAuth, &rec)
	if err != nil {
		return "", err
	}
	if !ok || rec.Token == "" {
		return "", nil
	}
	if !rec.Sealed {
		return rec.Token, nil
	}
	if s.sealer == nil {
		return "", amplyerrors.New(amplyerrors.ErrCodeStorageSeal, "persisted token is sealed but no sealer is configured")
	}
	return s.sealer.Open(rec.Token)
}

// expired reports whether token is a JWT whose exp claim has passed. The
// signature is not checked; opaque tokens are never considered expired.
func expired(token string, now time.Time) bool {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return !now.Before(exp.Time)
}
