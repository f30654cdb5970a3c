package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/iliyamo/musicuration-desk/internal/database/dbtest"
	"github.com/iliyamo/musicuration-desk/internal/model"
	"github.com/iliyamo/musicuration-desk/internal/queue"
	"github.com/iliyamo/musicuration-desk/internal/repository"
	"github.com/iliyamo/musicuration-desk/internal/utils"
)

type recordingPublisher struct {
	events []any
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev any) error {
	p.events = append(p.events, ev)
	return p.err
}

type fixture struct {
	svc   *AuthService
	store *repository.Store
	codec *utils.TokenCodec
	clock *time.Time
	pub   *recordingPublisher
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := time.Now().UTC()
	codec := utils.NewTokenCodec("test-secret", 30, 7)
	codec.Now = func() time.Time { return clock }
	store := repository.NewStore(dbtest.Open(t))
	pub := &recordingPublisher{}
	f := &fixture{
		svc:   NewAuthService(store, codec, bcrypt.MinCost, pub),
		store: store,
		codec: codec,
		clock: &clock,
		pub:   pub,
	}
	return f
}

func (f *fixture) register(t *testing.T, username, email, password string) *model.User {
	t.Helper()
	u, err := f.svc.Register(context.Background(), model.UserCreate{Username: username, Email: email, Password: password})
	require.NoError(t, err)
	return u
}

func TestAliceScenario(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "alice", "alice@x.com", "pw123")

	pair, err := f.svc.Login(ctx, "alice", "pw123")
	require.NoError(t, err)
	assert.Equal(t, "bearer", pair.TokenType)
	assert.NotEqual(t, pair.AccessToken, pair.RefreshToken)

	me, err := f.svc.Authenticate(ctx, pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
	assert.Equal(t, "alice@x.com", me.Email)

	refreshed, err := f.svc.Refresh(ctx, pair.RefreshToken)
	require.NoError(t, err)
	assert.Equal(t, pair.RefreshToken, refreshed.RefreshToken)

	require.NoError(t, f.svc.Logout(ctx, me, pair.RefreshToken))
	_, err = f.svc.Refresh(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrRevokedRefresh)
	assert.ErrorIs(t, err, ErrUnauthorized)

	// Logging out twice is not an error.
	require.NoError(t, f.svc.Logout(ctx, me, pair.RefreshToken))

	require.Len(t, f.pub.events, 3)
	login, ok := f.pub.events[0].(queue.SessionEvent)
	require.True(t, ok)
	assert.Equal(t, queue.EventLogin, login.Type)
	assert.Equal(t, me.ID, login.UserID)
}

func TestLogin_SameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "bob", "bob@example.com", "secret")

	_, errUnknown := f.svc.Login(context.Background(), "nobody", "secret")
	_, errWrong := f.svc.Login(context.Background(), "bob", "not-it")
	assert.ErrorIs(t, errUnknown, ErrUnauthorized)
	assert.Equal(t, errUnknown.Error(), errWrong.Error())
	assert.Empty(t, f.pub.events)
}

func TestLogin_EachLoginAddsLedgerRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "carol", "carol@example.com", "secret")

	p1, err := f.svc.Login(ctx, "carol", "secret")
	require.NoError(t, err)
	p2, err := f.svc.Login(ctx, "carol", "secret")
	require.NoError(t, err)
	assert.NotEqual(t, p1.RefreshToken, p2.RefreshToken)

	for _, tok := range []string{p1.RefreshToken, p2.RefreshToken} {
		ok, err := f.store.Q().Tokens.Exists(ctx, tok)
		require.NoError(t, err)
		assert.True(t, ok)
	}
}

func TestLogin_PrunesExpiredLedgerRowsOnCodecClock(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "dave", "dave@example.com", "secret")

	old, err := f.svc.Login(ctx, "dave", "secret")
	require.NoError(t, err)

	*f.clock = f.clock.Add(8 * 24 * time.Hour)
	fresh, err := f.svc.Login(ctx, "dave", "secret")
	require.NoError(t, err)

	ok, err := f.store.Q().Tokens.Exists(ctx, old.RefreshToken)
	require.NoError(t, err)
	assert.False(t, ok, "expired refresh token should be pruned")

	ok, err = f.store.Q().Tokens.Exists(ctx, fresh.RefreshToken)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestRefresh_RejectsAccessToken(t *testing.T) {
	f := newFixture(t)
	f.register(t, "dave", "dave@example.com", "secret")
	pair, err := f.svc.Login(context.Background(), "dave", "secret")
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), pair.AccessToken)
	assert.ErrorIs(t, err, ErrNotRefreshToken)
}

func TestRefresh_RejectsGarbageAndExpired(t *testing.T) {
	f := newFixture(t)
	f.register(t, "erin", "erin@example.com", "secret")
	pair, err := f.svc.Login(context.Background(), "erin", "secret")
	require.NoError(t, err)

	_, err = f.svc.Refresh(context.Background(), "not-a-jwt")
	assert.ErrorIs(t, err, ErrInvalidRefresh)

	*f.clock = f.clock.Add(8 * 24 * time.Hour)
	_, err = f.svc.Refresh(context.Background(), pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidRefresh)
}

func TestRefresh_UnknownSubject(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "frank", "frank@example.com", "secret")

	// A ledger-held token whose subject names no user.
	ghost, exp, err := f.codec.IssueRefresh("ghost")
	require.NoError(t, err)
	require.NoError(t, f.store.Q().Tokens.Store(ctx, u.ID, ghost, exp))

	_, err = f.svc.Refresh(ctx, ghost)
	assert.ErrorIs(t, err, ErrRefreshNoUser)
}

func TestAuthenticate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, "gina", "gina@example.com", "secret")
	pair, err := f.svc.Login(ctx, "gina", "secret")
	require.NoError(t, err)

	_, err = f.svc.Authenticate(ctx, pair.RefreshToken)
	assert.ErrorIs(t, err, ErrInvalidCredentials, "refresh tokens are not bearer tokens")

	orphan, _, err := f.codec.IssueAccess("nobody")
	require.NoError(t, err)
	_, err = f.svc.Authenticate(ctx, orphan)
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	*f.clock = f.clock.Add(31 * time.Minute)
	_, err = f.svc.Authenticate(ctx, pair.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRegister_Conflict(t *testing.T) {
	f := newFixture(t)
	f.register(t, "hana", "hana@example.com", "secret")

	_, err := f.svc.Register(context.Background(), model.UserCreate{Username: "hana", Email: "other@example.com", Password: "x"})
	assert.ErrorIs(t, err, repository.ErrConflict)
	_, err = f.svc.Register(context.Background(), model.UserCreate{Username: "hana2", Email: "HANA@example.com", Password: "x"})
	assert.ErrorIs(t, err, repository.ErrConflict)
}

func TestPublishFailureDoesNotFailLogin(t *testing.T) {
	f := newFixture(t)
	f.pub.err = errors.New("broker down")
	f.register(t, "ivan", "ivan@example.com", "secret")

	_, err := f.svc.Login(context.Background(), "ivan", "secret")
	require.NoError(t, err)
	assert.Len(t, f.pub.events, 1)
}

func TestCollectionService(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u := f.register(t, "jun", "jun@example.com", "secret")
	svc := NewCollectionService(f.store, f.pub)

	q := f.store.Q()
	al, err := q.Albums.Create(ctx, model.AlbumInput{Title: "Album"})
	require.NoError(t, err)
	a, err := q.Artists.Create(ctx, model.ArtistInput{Name: "Artist"})
	require.NoError(t, err)
	perf, err := q.Performances.Create(ctx, model.PerformanceInput{ArtistID: a.ID, Name: "Live", Date: model.NewDate(2025, 1, 1)})
	require.NoError(t, err)

	_, err = svc.AddPossession(ctx, u, model.PossessionInput{EntityType: model.EntityAlbum, EntityID: al.ID, Status: model.StatusWishlist})
	require.NoError(t, err)
	_, err = svc.AddAttendance(ctx, u, model.AttendanceInput{PerformanceID: perf.ID})
	require.NoError(t, err)
	_, err = svc.AddAttendance(ctx, u, model.AttendanceInput{PerformanceID: perf.ID})
	assert.ErrorIs(t, err, repository.ErrConflict)

	require.Len(t, f.pub.events, 2)
	ev := f.pub.events[1].(queue.CollectionEvent)
	assert.Equal(t, queue.EventAttendance, ev.Type)
	assert.Equal(t, perf.ID, ev.EntityID)

	owned, err := svc.Possessions(ctx, u)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, model.StatusWishlist, owned[0].Status)
}
