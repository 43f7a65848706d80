package session

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	amplyerrors "github.com/amply-impact/amply/internal/errors"
	"github.com/amply-impact/amply/internal/gateway"
	"github.com/amply-impact/amply/internal/metrics"
	"github.com/amply-impact/amply/internal/storage"
	"github.com/amply-impact/amply/pkg/amply/types"
)

type fakeAPI struct {
	mu          sync.Mutex
	loginErr    error
	meErr       error
	user        *types.User
	token       string
	logoutCalls int
	meTokens    []string
	cacheClears int
}

func (f *fakeAPI) Login(ctx context.Context, email, password string) (*types.LoginResponse, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &types.LoginResponse{AccessToken: f.token, TokenType: "bearer", UserID: f.user.ID}, nil
}

func (f *fakeAPI) Register(ctx context.Context, req types.RegisterRequest) (*types.RegisterResponse, error) {
	return &types.RegisterResponse{UserID: "new", Email: req.Email, Message: "check your inbox"}, nil
}

func (f *fakeAPI) Logout(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logoutCalls++
	return errors.New("offline")
}

func (f *fakeAPI) Me(ctx context.Context) (*types.User, error) {
	if f.meErr != nil {
		return nil, f.meErr
	}
	return f.user.Clone(), nil
}

func (f *fakeAPI) ClearCache() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cacheClears++
}

func (f *fakeAPI) MeWithToken(ctx context.Context, token string) (*types.User, error) {
	f.mu.Lock()
	f.meTokens = append(f.meTokens, token)
	f.mu.Unlock()
	return f.Me(ctx)
}

func adminUser(status types.ReviewStatus) *types.User {
	return &types.User{
		ID:          "u1",
		Email:       "admin@example.org",
		FirstName:   "Ada",
		AccountType: types.AccountOrganizationAdmin,
		Organization: &types.Organization{
			ID:           "o1",
			Name:         "Clean Water",
			ReviewStatus: status,
		},
	}
}

func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "u1",
		ExpiresAt: jwt.NewNumericDate(exp),
	})
	s, err := tok.SignedString([]byte("test-key"))
	require.NoError(t, err)
	return s
}

func TestSetAuthAndSnapshotCopies(t *testing.T) {
	s := New(&fakeAPI{}, Options{})
	s.SetLoading(true)
	s.SetAuth("tok", adminUser(types.ReviewApproved))

	snap := s.Snapshot()
	assert.Equal(t, "tok", snap.Token)
	assert.False(t, snap.Loading)
	require.NotNil(t, snap.Organization)
	assert.Equal(t, "o1", snap.Organization.ID)

	snap.User.FirstName = "Mallory"
	snap.Organization.Name = "Changed"
	again := s.Snapshot()
	assert.Equal(t, "Ada", again.User.FirstName)
	assert.Equal(t, "Clean Water", again.Organization.Name)
}

func TestLogoutKeepsOtherKeys(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyUI, map[string]string{"theme": "dark"}))
	require.NoError(t, store.Set(storage.KeyLanguage, "de"))

	s := New(&fakeAPI{}, Options{Storage: store})
	s.SetAuth("tok", adminUser(types.ReviewApproved))
	require.True(t, store.Has(storage.KeyAuth))

	s.Logout()
	assert.Equal(t, types.Session{}, s.Snapshot())
	assert.False(t, store.Has(storage.KeyAuth))
	assert.True(t, store.Has(storage.KeyUI))
	assert.True(t, store.Has(storage.KeyLanguage))
}

func TestUpdateUser(t *testing.T) {
	s := New(&fakeAPI{}, Options{})

	name := "Grace"
	s.UpdateUser(UserPatch{FirstName: &name})
	assert.Nil(t, s.Snapshot().User, "no user means no-op")

	s.SetAuth("tok", adminUser(types.ReviewPending))
	done := true
	s.UpdateUser(UserPatch{FirstName: &name, OnboardingCompleted: &done})

	u := s.Snapshot().User
	assert.Equal(t, "Grace", u.FirstName)
	assert.True(t, u.OnboardingCompleted)
	assert.Equal(t, "admin@example.org", u.Email)

	s.UpdateUser(UserPatch{Organization: &types.Organization{ID: "o1", ReviewStatus: types.ReviewApproved}})
	assert.Equal(t, types.ReviewApproved, s.Snapshot().Organization.ReviewStatus)
}

func TestSubscribeReceivesLatest(t *testing.T) {
	s := New(&fakeAPI{}, Options{})
	ch, cancel := s.Subscribe()

	s.SetLoading(true)
	s.SetAuth("tok", adminUser(types.ReviewApproved))

	snap := <-ch
	assert.Equal(t, "tok", snap.Token)

	cancel()
	cancel()
	_, open := <-ch
	assert.False(t, open)
	s.Logout()
}

func TestSealedPersistence(t *testing.T) {
	store := storage.NewMemoryStore()
	sealer, err := storage.NewSealer([]byte("host:user"))
	require.NoError(t, err)

	s := New(&fakeAPI{}, Options{Storage: store, Sealer: sealer})
	s.SetAuth("secret-token", adminUser(types.ReviewApproved))

	var rec record
	ok, err := store.Get(storage.KeyAuth, &rec)
	require.NoError(t, err)
	require.True(t, ok)
	assert.True(t, rec.Sealed)
	assert.NotContains(t, rec.Token, "secret-token")

	got, err := New(&fakeAPI{}, Options{Storage: store, Sealer: sealer}).loadToken()
	require.NoError(t, err)
	assert.Equal(t, "secret-token", got)
}

func TestBootVerifiesPersistedToken(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyAuth, record{Token: "opaque"}))
	_, m := metrics.NewRegistry()

	api := &fakeAPI{user: adminUser(types.ReviewApproved)}
	s := New(api, Options{Storage: store, Metrics: m})

	require.True(t, s.Hydrate())
	snap := s.Snapshot()
	assert.True(t, snap.Loading)
	assert.Equal(t, "opaque", snap.Token)
	assert.Nil(t, snap.User, "hydrated sessions carry no user until verified")

	require.NoError(t, s.Verify(context.Background()))
	snap = s.Snapshot()
	assert.False(t, snap.Loading)
	assert.Equal(t, "u1", snap.User.ID)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionBoots.WithLabelValues(BootVerified)))
}

func TestBootClearsRejectedToken(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyAuth, record{Token: "revoked"}))

	api := &fakeAPI{meErr: amplyerrors.NewSessionExpiredError()}
	s := New(api, Options{Storage: store})
	s.Boot(context.Background())

	assert.Equal(t, types.Session{}, s.Snapshot())
	assert.False(t, store.Has(storage.KeyAuth))
}

func TestBootKeepsTokenWhenUnanswered(t *testing.T) {
	tests := []struct {
		name  string
		meErr error
	}{
		{"cancelled", context.Canceled},
		{"deadline", context.DeadlineExceeded},
		{"unreachable", amplyerrors.NewNetworkError(errors.New("dial tcp: connection refused"))},
		{"timeout", amplyerrors.New(amplyerrors.ErrCodeNetworkTimeout, "the Amply API did not respond in time")},
		{"server unavailable", &gateway.APIError{Status: http.StatusServiceUnavailable, Code: "unavailable"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			require.NoError(t, store.Set(storage.KeyAuth, record{Token: "valid"}))
			_, m := metrics.NewRegistry()

			s := New(&fakeAPI{meErr: tt.meErr}, Options{Storage: store, Metrics: m})
			s.Boot(context.Background())

			assert.Equal(t, types.Session{}, s.Snapshot(), "an unverified session is never trusted")
			assert.True(t, store.Has(storage.KeyAuth), "the next boot retries with the same token")
			assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionBoots.WithLabelValues(BootOffline)))
		})
	}
}

func TestBootKeepsTokenWhenCallerGivesUp(t *testing.T) {
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyAuth, record{Token: "valid"}))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	s := New(&fakeAPI{meErr: errors.New("request aborted")}, Options{Storage: store})
	s.Boot(ctx)

	assert.Empty(t, s.Token())
	assert.True(t, store.Has(storage.KeyAuth))
}

func TestBootRemovesTokenTheAPIRejected(t *testing.T) {
	tests := []struct {
		name  string
		meErr error
	}{
		{"expired", amplyerrors.NewSessionExpiredError()},
		{"forbidden", &gateway.APIError{Status: http.StatusForbidden, Code: "forbidden"}},
		{"not found", &gateway.APIError{Status: http.StatusNotFound, Code: "user_not_found"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMemoryStore()
			require.NoError(t, store.Set(storage.KeyAuth, record{Token: "revoked"}))

			s := New(&fakeAPI{meErr: tt.meErr}, Options{Storage: store})
			s.Boot(context.Background())

			assert.Equal(t, types.Session{}, s.Snapshot())
			assert.False(t, store.Has(storage.KeyAuth))
		})
	}
}

func TestBootDropsExpiredJWTWithoutNetwork(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store := storage.NewMemoryStore()
	require.NoError(t, store.Set(storage.KeyAuth, record{Token: signedToken(t, now.Add(-time.Hour))}))

	api := &fakeAPI{meErr: errors.New("must not be called")}
	s := New(api, Options{Storage: store, Now: func() time.Time { return now }})

	assert.False(t, s.Hydrate())
	assert.False(t, store.Has(storage.KeyAuth))
	assert.Equal(t, types.Session{}, s.Snapshot())
}

func TestExpiredHelper(t *testing.T) {
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	assert.True(t, expired(signedToken(t, now.Add(-time.Minute)), now))
	assert.False(t, expired(signedToken(t, now.Add(time.Minute)), now))
	assert.False(t, expired("not-a-jwt", now))
}

func TestBootWithoutToken(t *testing.T) {
	_, m := metrics.NewRegistry()
	s := New(&fakeAPI{}, Options{Storage: storage.NewMemoryStore(), Metrics: m})
	s.Boot(context.Background())

	assert.Equal(t, types.Session{}, s.Snapshot())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SessionBoots.WithLabelValues(BootAnonymous)))
}

func TestLoginPopulatesUserFromCurrentUserFetch(t *testing.T) {
	store := storage.NewMemoryStore()
	api := &fakeAPI{user: adminUser(types.ReviewApproved), token: "fresh"}
	s := New(api, Options{Storage: store})

	user, err := s.Login(context.Background(), "admin@example.org", "password1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, []string{"fresh"}, api.meTokens)

	snap := s.Snapshot()
	assert.Equal(t, "fresh", snap.Token)
	assert.Equal(t, "o1", snap.Organization.ID)
	assert.True(t, store.Has(storage.KeyAuth))
}

func TestLoginFailureKeepsExistingSession(t *testing.T) {
	badCreds := &gateway.APIError{Status: http.StatusUnauthorized, Code: "invalid_credentials", Message: "Invalid email or password"}
	api := &fakeAPI{loginErr: badCreds}
	s := New(api, Options{})
	s.SetAuth("existing", adminUser(types.ReviewApproved))

	_, err := s.Login(context.Background(), "admin@example.org", "wrong")
	require.Error(t, err)
	assert.Equal(t, amplyerrors.ErrCodeInvalidCredentials, amplyerrors.CodeOf(err))
	assert.Equal(t, "existing", s.Snapshot().Token)
}

func TestLoginServerErrorIsNotCredentials(t *testing.T) {
	api := &fakeAPI{loginErr: &gateway.APIError{Status: http.StatusServiceUnavailable, Code: "unavailable"}}
	s := New(api, Options{})

	_, err := s.Login(context.Background(), "a@b.c", "password1")
	require.Error(t, err)
	assert.NotEqual(t, amplyerrors.ErrCodeInvalidCredentials, amplyerrors.CodeOf(err))
}

func TestSignOutIsBestEffort(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, Options{})
	s.SignOut(context.Background())
	assert.Equal(t, 0, api.logoutCalls, "no server call without a token")

	s.SetAuth("tok", adminUser(types.ReviewApproved))
	s.SignOut(context.Background())
	assert.Equal(t, 1, api.logoutCalls)
	assert.Empty(t, s.Token())
}

func TestRefreshRequiresSession(t *testing.T) {
	api := &fakeAPI{user: adminUser(types.ReviewApproved)}
	s := New(api, Options{})

	_, err := s.Refresh(context.Background())
	assert.ErrorIs(t, err, amplyerrors.ErrNotLoggedIn)

	s.SetAuth("tok", &types.User{ID: "u1"})
	user, err := s.Refresh(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "o1", user.Organization.ID)
	assert.Equal(t, "o1", s.Snapshot().Organization.ID)
}

func TestSyncFollowsOtherProcesses(t *testing.T) {
	store := storage.NewMemoryStore()
	api := &fakeAPI{user: adminUser(types.ReviewApproved)}
	s := New(api, Options{Storage: store})
	s.SetAuth("tok", adminUser(types.ReviewApproved))

	require.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, "tok", s.Token(), "own writes are ignored")

	require.NoError(t, store.Remove(storage.KeyAuth))
	require.NoError(t, s.Sync(context.Background()))
	assert.Empty(t, s.Token())

	assert.Equal(t, 1, api.cacheClears, "reads of the signed-out account are dropped")

	require.NoError(t, store.Set(storage.KeyAuth, record{Token: "other"}))
	require.NoError(t, s.Sync(context.Background()))
	assert.Equal(t, "other", s.Token())
	assert.NotNil(t, s.Snapshot().User)
	assert.Equal(t, 2, api.cacheClears, "reads of the previous account are dropped")
}

func TestFollow(t *testing.T) {
	store := storage.NewMemoryStore()
	s := New(&fakeAPI{}, Options{Storage: store})
	s.SetAuth("tok", adminUser(types.ReviewApproved))
	require.NoError(t, store.Remove(storage.KeyAuth))

	changes := make(chan string, 2)
	changes <- storage.KeyUI
	changes <- storage.KeyAuth
	close(changes)

	s.Follow(context.Background(), changes)
	assert.Empty(t, s.Token())
}

func TestExpireIsTheGatewayHook(t *testing.T) {
	api := &fakeAPI{}
	s := New(api, Options{})
	s.SetAuth("tok", adminUser(types.ReviewApproved))

	var hook gateway.UnauthorizedFunc = s.Expire
	hook(context.Background())
	assert.Equal(t, types.Session{}, s.Snapshot())
	assert.Equal(t, 1, api.cacheClears)
}
