package application

import (
	"context"
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todosync/internal/domain/entity"
)

func newProfileService(users *fakeUserRepo, profiles *fakeProfileRepo, maxBytes int) *ProfileService {
	return NewProfileService(users, profiles, nil, "", maxBytes, nil)
}

func registeredUser(t *testing.T, users *fakeUserRepo, email string) *entity.Identity {
	t.Helper()
	u := &entity.Identity{Email: email, PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLoadMissingProfileYieldsEmpty(t *testing.T) {
	users := newFakeUserRepo()
	u := registeredUser(t, users, "p@example.com")
	svc := newProfileService(users, newFakeProfileRepo(), 1<<20)

	p := svc.Load(context.Background(), u.ID)

	require.NotNil(t, p, "load never fails")
	assert.Equal(t, u.ID, p.UserID)
	assert.Equal(t, "p@example.com", p.Email, "email comes from the identity")
	assert.Empty(t, p.Username)
	assert.Empty(t, p.PhotoBase64)
}

func TestLoadFetchFailureDegradesToEmpty(t *testing.T) {
	users := newFakeUserRepo()
	u := registeredUser(t, users, "down@example.com")
	profiles := newFakeProfileRepo()
	profiles.getErr = errors.New("document store unreachable")
	svc := newProfileService(users, profiles, 1<<20)

	p := svc.Load(context.Background(), u.ID)

	require.NotNil(t, p)
	assert.Equal(t, "down@example.com", p.Email)
	assert.Empty(t, p.Username)
	assert.Empty(t, p.PhotoBase64)
}

func TestLoadIdentityEmailWinsOverDocument(t *testing.T) {
	users := newFakeUserRepo()
	u := registeredUser(t, users, "current@example.com")
	profiles := newFakeProfileRepo()
	require.NoError(t, profiles.Create(context.Background(), &entity.Profile{
		UserID:   u.ID,
		Email:    "stale@example.com",
		Username: "alice",
	}))
	svc := newProfileService(users, profiles, 1<<20)

	p := svc.Load(context.Background(), u.ID)

	assert.Equal(t, "current@example.com", p.Email)
	assert.Equal(t, "alice", p.Username)
}

func TestUpdateUsername(t *testing.T) {
	users := newFakeUserRepo()
	u := registeredUser(t, users, "name@example.com")
	profiles := newFakeProfileRepo()
	svc := newProfileService(users, profiles, 1<<20)

	require.NoError(t, svc.UpdateUsername(context.Background(), u.ID, "bob"))

	p := svc.Load(context.Background(), u.ID)
	assert.Equal(t, "bob", p.Username)
}

func TestUpdateAvatarEnforcesCeiling(t *testing.T) {
	users := newFakeUserRepo()
	u := registeredUser(t, users, "big@example.com")
	profiles := newFakeProfileRepo()
	svc := newProfileService(users, profiles, 64)

	tooBig := base64.StdEncoding.EncodeToString([]byte(strings.Repeat("x", 128)))
	err := svc.UpdateAvatar(context.Background(), u.ID, tooBig)

	require.ErrorIs(t, err, ErrAvatarTooLarge)
	assert.Zero(t, profiles.photoCalls, "the oversized payload never reaches the store")
}

func TestUpdateAvatarRejectsInvalidBase64(t *testing.T) {
	users := newFakeUserRepo()
	u := registeredUser(t, users, "bad@example.com")
	profiles := newFakeProfileRepo()
	svc := newProfileService(users, profiles, 1<<20)

	err := svc.UpdateAvatar(context.Background(), u.ID, "not*base64!")

	require.ErrorIs(t, err, ErrInvalidImage)
	assert.Zero(t, profiles.photoCalls)
}

func TestUpdateAvatarStoresEncodedPayloadVerbatim(t *testing.T) {
	users := newFakeUserRepo()
	u := registeredUser(t, users, "ok@example.com")
	profiles := newFakeProfileRepo()
	svc := newProfileService(users, profiles, 1<<20)

	encoded := base64.StdEncoding.EncodeToString([]byte("jpeg bytes"))
	require.NoError(t, svc.UpdateAvatar(context.Background(), u.ID, encoded))

	p := svc.Load(context.Background(), u.ID)
	assert.Equal(t, encoded, p.PhotoBase64)
}
