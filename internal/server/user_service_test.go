package server

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hirewire/hirewire/internal/config"
	"github.com/hirewire/hirewire/internal/db"
)

// fakeUserStore is an in-memory userStore for service tests.
type fakeUserStore struct {
	users map[uuid.UUID]*db.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[uuid.UUID]*db.User)}
}

func (f *fakeUserStore) CheckEmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range f.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserStore) CreateUser(_ context.Context, email, passwordHash, role, name string) (uuid.UUID, error) {
	id := uuid.New()
	f.users[id] = &db.User{
		ID:           id,
		Email:        email,
		PasswordHash: passwordHash,
		Role:         role,
		Name:         name,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}
	return id, nil
}

func (f *fakeUserStore) GetUser(_ context.Context, id uuid.UUID) (*db.User, error) {
	u, ok := f.users[id]
	if !ok {
		return nil, nil
	}
	copied := *u
	return &copied, nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*db.User, error) {
	for _, u := range f.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeUserStore) UpdateUserProfile(_ context.Context, u *db.User) error {
	stored, ok := f.users[u.ID]
	if !ok {
		return &ErrUserNotFound{UserID: u.ID}
	}
	stored.Name = u.Name
	stored.Company = u.Company
	stored.Title = u.Title
	stored.Bio = u.Bio
	return nil
}

func (f *fakeUserStore) UpdatePassword(_ context.Context, id uuid.UUID, passwordHash string) error {
	stored, ok := f.users[id]
	if !ok {
		return &ErrUserNotFound{UserID: id}
	}
	stored.PasswordHash = passwordHash
	return nil
}

func newTestUserService() (*UserService, *fakeUserStore) {
	store := newFakeUserStore()
	// Minimum cost keeps the test suite fast
	return NewUserService(store, &config.PasswordConfig{BcryptCost: 10}), store
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{
		Email:    "manager@example.com",
		Password: "super-secret",
		Role:     "hr",
		Name:     "Sam Manager",
	})
	require.NoError(t, err)
	assert.Equal(t, "hr", user.Role)
	assert.Equal(t, "manager@example.com", user.Email)

	loggedIn, err := svc.Login(ctx, &LoginRequest{
		Email:    "manager@example.com",
		Password: "super-secret",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, loggedIn.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	req := &RegisterRequest{
		Email:    "dup@example.com",
		Password: "super-secret",
		Role:     "applicant",
		Name:     "Dup",
	}
	_, err := svc.Register(ctx, req)
	require.NoError(t, err)

	_, err = svc.Register(ctx, req)
	var dupErr *ErrEmailAlreadyExists
	assert.ErrorAs(t, err, &dupErr)
}

func TestLoginRejections(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	_, err := svc.Register(ctx, &RegisterRequest{
		Email:    "user@example.com",
		Password: "super-secret",
		Role:     "applicant",
		Name:     "User",
	})
	require.NoError(t, err)

	// Wrong password and unknown email fail with the same generic error
	_, err = svc.Login(ctx, &LoginRequest{Email: "user@example.com", Password: "wrong"})
	var credErr *ErrInvalidCredentials
	assert.ErrorAs(t, err, &credErr)

	_, err = svc.Login(ctx, &LoginRequest{Email: "nobody@example.com", Password: "super-secret"})
	assert.ErrorAs(t, err, &credErr)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{
		Email:    "hr@example.com",
		Password: "super-secret",
		Role:     "hr",
		Name:     "Before",
	})
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, user.ID, &UpdateProfileRequest{
		Name:    "After",
		Company: "HireWire Inc",
	})
	require.NoError(t, err)
	assert.Equal(t, "After", updated.Name)
	assert.Equal(t, "HireWire Inc", updated.Company)
	// Untouched fields survive
	assert.Equal(t, "hr@example.com", updated.Email)
}

func TestUpdatePassword(t *testing.T) {
	svc, _ := newTestUserService()
	ctx := context.Background()

	user, err := svc.Register(ctx, &RegisterRequest{
		Email:    "pw@example.com",
		Password: "old-password",
		Role:     "hr",
		Name:     "PW",
	})
	require.NoError(t, err)

	err = svc.UpdatePassword(ctx, user.ID, "wrong", "new-password")
	var mismatch *ErrPasswordMismatch
	assert.ErrorAs(t, err, &mismatch)

	require.NoError(t, svc.UpdatePassword(ctx, user.ID, "old-password", "new-password"))

	_, err = svc.Login(ctx, &LoginRequest{Email: "pw@example.com", Password: "new-password"})
	assert.NoError(t, err)

	err = svc.UpdatePassword(ctx, uuid.New(), "old-password", "new-password")
	var missing *ErrUserNotFound
	assert.ErrorAs(t, err, &missing)
}
