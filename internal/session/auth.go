package session

import (
	"context"
	"errors"
	"net/http"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/gateway"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/internal/storage"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// Boot outcomes recorded by the session_boots metric.
const (
	BootAnonymous = "anonymous"
	BootVerified  = "verified"
	BootExpired   = "expired"
	BootRejected  = "rejected"
	BootOffline   = "offline"
)

// Hydrate is the first boot phase. It loads the persisted token and, when
// one is present and not already expired, marks the session loading. It
// reports whether verification is needed.
func (s *Store) Hydrate() bool {
	token, err := s.loadToken()
	if err != nil {
		s.logger.WithError(err).Warn("discarding unreadable persisted token")
		s.persist("")
		token = ""
	}
	switch {
	case token == "":
		s.observeBoot(BootAnonymous)
	case expired(token, s.now()):
		s.logger.Info("persisted token has expired")
		s.observeBoot(BootExpired)
		s.persist("")
		token = ""
	}
	if token == "" {
		s.update(func(st *types.Session) { *st = types.Session{} })
		return false
	}

	s.update(func(st *types.Session) {
		*st = types.Session{Token: token, Loading: true}
	})
	return true
}

// Verify is the second boot phase. It fetches the current user with the
// hydrated token. Any failure clears the session in memory. The persisted
// token is removed only when the API answered; a cancelled or unreachable
// request keeps it for the next boot.
func (s *Store) Verify(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		s.SetLoading(false)
		return nil
	}

	user, err := s.api.Me(ctx)
	if err != nil {
		if unanswered(ctx, err) {
			s.logger.WithError(err).Info("could not verify persisted session")
			s.observeBoot(BootOffline)
			s.update(func(st *types.Session) { *st = types.Session{} })
			return err
		}
		s.logger.WithError(err).Info("persisted session rejected")
		s.observeBoot(BootRejected)
		s.Logout()
		return err
	}

	// A concurrent logout or login wins over this boot.
	if s.Token() != token {
		return nil
	}
	s.SetAuth(token, user)
	s.observeBoot(BootVerified)
	return nil
}

// Boot runs both phases. A rejected token is not an error for the caller:
// the session simply ends up logged out.
func (s *Store) Boot(ctx context.Context) {
	if s.Hydrate() {
		_ = s.Verify(ctx)
	}
}

// Login signs in with credentials. Bad credentials return an
// authentication error and leave any existing session in place.
func (s *Store) Login(ctx context.Context, email, password string) (*types.User, error) {
	resp, err := s.api.Login(ctx, email, password)
	if err != nil {
		s.observeLogin(false)
		if gateway.IsStatus(err, http.StatusUnauthorized) || gateway.IsStatus(err, http.StatusBadRequest) {
			return nil, amplyerrors.NewInvalidCredentialsError(err)
		}
		return nil, err
	}

	user, err := s.api.MeWithToken(ctx, resp.AccessToken)
	if err != nil {
		s.observeLogin(false)
		return nil, err
	}

	s.SetAuth(resp.AccessToken, user)
	s.observeLogin(true)
	s.logger.Info("logged in", "user_id", user.ID, "account_type", string(user.AccountType))
	return user.Clone(), nil
}

// Register creates an account. The session is not changed; the new user
// signs in after verifying their email.
func (s *Store) Register(ctx context.Context, req types.RegisterRequest) (*types.RegisterResponse, error) {
	resp, err := s.api.Register(ctx, req)
	if err != nil {
		if gateway.IsStatus(err, http.StatusConflict) {
			return nil, amplyerrors.Wrap(amplyerrors.ErrCodeRegistrationFailed, "an account with this email already exists", err).
				WithField("email")
		}
		return nil, err
	}
	return resp, nil
}

// Refresh re-fetches the current user for an authenticated session.
func (s *Store) Refresh(ctx context.Context) (*types.User, error) {
	token := s.Token()
	if token == "" {
		return nil, amplyerrors.NewNotLoggedInError()
	}
	user, err := s.api.Me(ctx)
	if err != nil {
		return nil, err
	}
	if s.Token() == token {
		s.SetAuth(token, user)
	}
	return user.Clone(), nil
}

// SignOut revokes the token server-side, best effort, then logs out locally.
func (s *Store) SignOut(ctx context.Context) {
	if s.Token() != "" {
		if err := s.api.Logout(ctx); err != nil {
			s.logger.WithError(err).Debug("server-side logout failed")
		}
	}
	s.Logout()
}

// Expire is the gateway's 401 hook. It clears the session without calling
// the API again.
func (s *Store) Expire(ctx context.Context) {
	s.logger.InfoContext(ctx, "session expired")
	s.api.ClearCache()
	s.Logout()
}

// Sync reconciles the session with the persisted token after another
// process changed it.
func (s *Store) Sync(ctx context.Context) error {
	persisted, err := s.loadToken()
	if err != nil {
		return err
	}
	current := s.Token()
	switch {
	case persisted == current:
		return nil
	case persisted == "":
		s.logger.Info("signed out by another process")
		s.api.ClearCache()
		s.update(func(st *types.Session) { *st = types.Session{} })
		return nil
	default:
		s.logger.Info("signed in by another process")
		s.api.ClearCache()
		if !s.Hydrate() {
			return nil
		}
		return s.Verify(ctx)
	}
}

// Follow applies Sync whenever changes reports the auth key, until ctx is
// done or changes is closed.
func (s *Store) Follow(ctx context.Context, changes <-chan string) {
	for {
		select {
		case <-ctx.Done():
			return
		case key, ok := <-changes:
			if !ok {
				return
			}
			if key != storage.KeyAuth {
				continue
			}
			if err := s.Sync(ctx); err != nil {
				s.logger.WithError(err).Warn("failed to sync session")
			}
		}
	}
}

// unanswered reports whether err means the API never judged the token:
// the caller gave up, the network failed or the server was unavailable.
func unanswered(ctx context.Context, err error) bool {
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var apiErr *gateway.APIError
	if errors.As(err, &apiErr) {
		return apiErr.Temporary()
	}
	switch amplyerrors.CodeOf(err) {
	case amplyerrors.ErrCodeNetworkUnreachable, amplyerrors.ErrCodeNetworkTimeout:
		return true
	}
	return false
}

func (s *Store) observeBoot(outcome string) {
	if s.metrics != nil {
		s.metrics.SessionBoots.WithLabelValues(outcome).Inc()
	}
}

func (s *Store) observeLogin(success bool) {
	if s.metrics != nil {
		s.metrics.SessionLogins.WithLabelValues(metrics.BoolLabel(success)).Inc()
	}
}
