package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huzaifanaeem1/todostream/internal/domain"
	"github.com/huzaifanaeem1/todostream/internal/store"
)

// fakeUserStore is an in-memory store.UserStore.
type fakeUserStore struct {
	mu      sync.Mutex
	byEmail map[string]*domain.User
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{byEmail: make(map[string]*domain.User)}
}

func (s *fakeUserStore) Create(_ context.Context, user *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[user.Email]; ok {
		return store.ErrEmailExists
	}
	cp := *user
	s.byEmail[user.Email] = &cp
	return nil
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.byEmail[email]
	if !ok {
		return nil, store.ErrUserNotFound
	}
	cp := *user
	return &cp, nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.byEmail {
		if user.ID == id {
			cp := *user
			return &cp, nil
		}
	}
	return nil, store.ErrUserNotFound
}

// fakeHasher marks hashes deterministically so tests can verify the
// stored value is not the plaintext.
type fakeHasher struct{}

func (fakeHasher) Hash(password string) (string, error) {
	return "hashed:" + password, nil
}

func (fakeHasher) Compare(hashedPassword, password string) error {
	if hashedPassword != "hashed:"+password {
		return errors.New("mismatch")
	}
	return nil
}

// fakeTokens issues predictable tokens.
type fakeTokens struct{}

func (fakeTokens) GenerateToken(_ context.Context, userID uuid.UUID) (string, error) {
	return "token-for-" + userID.String(), nil
}

func (fakeTokens) ValidateToken(_ context.Context, token string) (uuid.UUID, error) {
	return uuid.Parse(strings.TrimPrefix(token, "token-for-"))
}

func newTestUserService() (UserService, *fakeUserStore) {
	users := newFakeUserStore()
	return NewUserService(users, fakeHasher{}, fakeTokens{}), users
}

func TestRegisterHashesPasswordAndIssuesToken(t *testing.T) {
	t.Parallel()

	svc, users := newTestUserService()

	result, err := svc.Register(context.Background(), "alex@example.com", "correct-horse-battery")
	require.NoError(t, err)

	assert.Equal(t, "alex@example.com", result.User.Email)
	assert.Equal(t, "token-for-"+result.User.ID.String(), result.Token)

	stored, err := users.GetByEmail(context.Background(), "alex@example.com")
	require.NoError(t, err)
	assert.Equal(t, "hashed:correct-horse-battery", stored.HashedPassword)
	assert.Empty(t, stored.Password, "plaintext must not be retained")
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService()

	_, err := svc.Register(context.Background(), "not-an-email", "correct-horse-battery")
	assert.ErrorIs(t, err, store.ErrInvalidEntity)

	_, err = svc.Register(context.Background(), "alex@example.com", "short")
	assert.ErrorIs(t, err, store.ErrInvalidEntity)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService()

	_, err := svc.Register(context.Background(), "alex@example.com", "correct-horse-battery")
	require.NoError(t, err)

	_, err = svc.Register(context.Background(), "alex@example.com", "another-passphrase")
	assert.ErrorIs(t, err, store.ErrEmailExists)
}

func TestLogin(t *testing.T) {
	t.Parallel()

	svc, _ := newTestUserService()

	registered, err := svc.Register(context.Background(), "alex@example.com", "correct-horse-battery")
	require.NoError(t, err)

	t.Run("valid credentials", func(t *testing.T) {
		t.Parallel()
		result, err := svc.Login(context.Background(), "alex@example.com", "correct-horse-battery")
		require.NoError(t, err)
		assert.Equal(t, registered.User.ID, result.User.ID)
		assert.NotEmpty(t, result.Token)
	})

	t.Run("wrong password", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Login(context.Background(), "alex@example.com", "wrong-passphrase")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown email", func(t *testing.T) {
		t.Parallel()
		_, err := svc.Login(context.Background(), "nobody@example.com", "correct-horse-battery")
		assert.ErrorIs(t, err, ErrInvalidCredentials,
			"unknown email must be indistinguishable from a wrong password")
	})
}
