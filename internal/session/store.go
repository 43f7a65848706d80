// Package session owns the authenticated session of the client.
//
// The Store is the single writer of session state. Every read returns a
// copy, and every change is published to subscribers so views can redraw.
// Only the bearer token is persisted; the user and organization are always
// re-fetched with that token before the session is trusted.
package session

import (
	"context"
	"sync"
	"time"

	"github.com/amply-impact/amply/internal/log"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/internal/storage"
	"github.com/amply-impact/amply/pkg/amply/types"
)

// API is the slice of the platform client the session needs.
type API interface {
	Login(ctx context.Context, email, password string) (*types.LoginResponse, error)
	Register(ctx context.Context, req types.RegisterRequest) (*types.RegisterResponse, error)
	Logout(ctx context.Context) error
	Me(ctx context.Context) (*types.User, error)
	MeWithToken(ctx context.Context, token string) (*types.User, error)

	// ClearCache drops cached reads made for the previous account.
	ClearCache()
}

// Options configures a Store.
type Options struct {
	// Storage persists the token. Nil keeps the session in memory only.
	Storage storage.Store

	// Sealer encrypts the token at rest. Nil stores it as is.
	Sealer *storage.Sealer

	Logger  *log.Logger
	Metrics *metrics.Metrics

	// Now is the clock used for the token expiry pre-check.
	Now func() time.Time
}

// Store holds the current session.
type Store struct {
	mu    sync.RWMutex
	state types.Session

	api     API
	storage storage.Store
	sealer  *storage.Sealer
	logger  *log.Logger
	metrics *metrics.Metrics
	now     func() time.Time

	subMu  sync.Mutex
	subs   map[int]chan types.Session
	nextID int
}

// New creates an empty, logged-out Store.
func New(api API, opts Options) *Store {
	logger := opts.Logger
	if logger == nil {
		logger = log.DefaultLogger()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Store{
		api:     api,
		storage: opts.Storage,
		sealer:  opts.Sealer,
		logger:  logger.With("component", "session"),
		metrics: opts.Metrics,
		now:     now,
		subs:    make(map[int]chan types.Session),
	}
}

// Snapshot returns a deep copy of the current session.
func (s *Store) Snapshot() types.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.copyLocked()
}

func (s *Store) copyLocked() types.Session {
	return types.Session{
		Token:        s.state.Token,
		User:         s.state.User.Clone(),
		Organization: s.state.Organization.Clone(),
		Loading:      s.state.Loading,
	}
}

// Token returns the bearer token, or "" when logged out. It makes the
// Store a gateway token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Token
}

// SetAuth replaces token, user and organization in one step, clears the
// loading flag and persists the token.
func (s *Store) SetAuth(token string, user *types.User) {
	s.update(func(st *types.Session) {
		st.Token = token
		st.User = user.Clone()
		st.Organization = nil
		if user != nil {
			st.Organization = user.Organization.Clone()
		}
		st.Loading = false
	})
	s.persist(token)
}

// Logout clears the session and the persisted token. Preferences and
// locale are stored under other keys and survive.
func (s *Store) Logout() {
	s.update(func(st *types.Session) {
		*st = types.Session{}
	})
	s.persist("")
}

// UserPatch lists the user fields UpdateUser may change. Nil fields are kept.
type UserPatch struct {
	FirstName           *string
	LastName            *string
	DisplayName         *string
	IsEmailVerified     *bool
	CompanyName         *string
	City                *string
	CountryCode         *string
	LanguagePreference  *string
	Timezone            *string
	OnboardingCompleted *bool
	Organization        *types.Organization
}

// UpdateUser merges patch into the current user. Without a user it does
// nothing.
func (s *Store) UpdateUser(patch UserPatch) {
	s.mu.Lock()
	if s.state.User == nil {
		s.mu.Unlock()
		return
	}
	u := s.state.User.Clone()
	setString(&u.FirstName, patch.FirstName)
	setString(&u.LastName, patch.LastName)
	setString(&u.DisplayName, patch.DisplayName)
	setString(&u.CompanyName, patch.CompanyName)
	setString(&u.City, patch.City)
	setString(&u.CountryCode, patch.CountryCode)
	setString(&u.LanguagePreference, patch.LanguagePreference)
	setString(&u.Timezone, patch.Timezone)
	if patch.IsEmailVerified != nil {
		u.IsEmailVerified = *patch.IsEmailVerified
	}
	if patch.OnboardingCompleted != nil {
		u.OnboardingCompleted = *patch.OnboardingCompleted
	}
	if patch.Organization != nil {
		u.Organization = patch.Organization.Clone()
		s.state.Organization = patch.Organization.Clone()
	}
	s.state.User = u
	snap := s.copyLocked()
	s.mu.Unlock()
	s.publish(snap)
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// SetLoading toggles the loading flag.
func (s *Store) SetLoading(loading bool) {
	s.update(func(st *types.Session) {
		st.Loading = loading
	})
}

// Subscribe returns a channel receiving the latest snapshot after each
// change. Slow readers only see the newest state. cancel closes the channel.
func (s *Store) Subscribe() (<-chan types.Session, func()) {
	ch := make(chan types.Session, 1)

	s.subMu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = ch
	s.subMu.Unlock()

	var once sync.Once
	cancel := func() {
		once.Do(func() {
			s.subMu.Lock()
			delete(s.subs, id)
			s.subMu.Unlock()
			close(ch)
		})
	}
	return ch, cancel
}

func (s *Store) update(fn func(*types.Session)) {
	s.mu.Lock()
	fn(&s.state)
	snap := s.copyLocked()
	s.mu.Unlock()
	s.publish(snap)
}

func (s *Store) publish(snap types.Session) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	for _, ch := range s.subs {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
