package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"authportal/internal/domain"
	"authportal/internal/repository"
)

type fakeUserRepo struct {
	byLogin   map[string]*domain.User
	nextID    int64
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byLogin: make(map[string]*domain.User)}
}

func (f *fakeUserRepo) Init(context.Context) error { return nil }

func (f *fakeUserRepo) Create(_ context.Context, user *domain.User) (int64, error) {
	if f.createErr != nil {
		return 0, f.createErr
	}
	if _, ok := f.byLogin[user.Login]; ok {
		return 0, repository.ErrDuplicateLogin
	}
	f.nextID++
	user.ID = f.nextID
	stored := *user
	f.byLogin[user.Login] = &stored
	return user.ID, nil
}

func (f *fakeUserRepo) GetByLogin(_ context.Context, login string) (*domain.User, error) {
	user, ok := f.byLogin[login]
	if !ok {
		return nil, repository.ErrNotFound
	}
	out := *user
	return &out, nil
}

func (f *fakeUserRepo) GetByID(_ context.Context, id int64) (*domain.User, error) {
	for _, user := range f.byLogin {
		if user.ID == id {
			out := *user
			return &out, nil
		}
	}
	return nil, repository.ErrNotFound
}

func TestRegisterNormalizesFields(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	user, err := svc.Register(context.Background(), RegisterInput{
		Login:    "alice",
		Password: "Secret123",
		FullName: "  Alice Liddell  ",
		Phone:    " +15550100 ",
		Email:    "Alice@Example.COM ",
	})
	require.NoError(t, err)
	require.NotNil(t, user)

	assert.Equal(t, "alice", user.Login)
	assert.Equal(t, "Alice Liddell", user.FullName)
	assert.Equal(t, "+15550100", user.Phone)
	assert.Equal(t, "alice@example.com", user.Email)
	assert.Empty(t, user.PasswordHash, "hash must not leave the service")

	stored := repo.byLogin["alice"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "Secret123", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret123")))
	assert.Error(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("wrong")))
}

func TestRegisterDuplicateLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), RegisterInput{
		Login: "alice", Password: "Secret123", FullName: "Alice", Phone: "+15550100", Email: "a@b.co",
	})
	require.NoError(t, err)
	firstHash := repo.byLogin["alice"].PasswordHash

	_, err = svc.Register(context.Background(), RegisterInput{
		Login: "alice", Password: "Another999", FullName: "Imposter", Phone: "+15550199", Email: "x@y.co",
	})
	assert.ErrorIs(t, err, ErrLoginTaken)

	// the first account is untouched
	assert.Equal(t, firstHash, repo.byLogin["alice"].PasswordHash)
	assert.Equal(t, "Alice", repo.byLogin["alice"].FullName)
}

func TestRegisterDuplicateRaceAtCreate(t *testing.T) {
	// lookup sees a free login but the store rejects the insert, as happens
	// when a concurrent registration wins the race
	repo := newFakeUserRepo()
	repo.createErr = repository.ErrDuplicateLogin
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), RegisterInput{
		Login: "alice", Password: "Secret123", FullName: "Alice", Phone: "+15550100", Email: "a@b.co",
	})
	assert.ErrorIs(t, err, ErrLoginTaken)
}

func TestAuthenticate(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	_, err := svc.Register(context.Background(), RegisterInput{
		Login: "alice", Password: "Secret123", FullName: "Alice", Phone: "+15550100", Email: "a@b.co",
	})
	require.NoError(t, err)

	t.Run("success", func(t *testing.T) {
		user, err := svc.Authenticate(context.Background(), "alice", "Secret123")
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Login)
		assert.NotZero(t, user.ID)
		assert.Empty(t, user.PasswordHash)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "alice", "wrong")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown login", func(t *testing.T) {
		_, err := svc.Authenticate(context.Background(), "ghost", "Secret123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestGetByID(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewUserService(repo, bcrypt.MinCost)

	created, err := svc.Register(context.Background(), RegisterInput{
		Login: "alice", Password: "Secret123", FullName: "Alice", Phone: "+15550100", Email: "a@b.co",
	})
	require.NoError(t, err)

	user, err := svc.GetByID(context.Background(), created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", user.Login)
	assert.Empty(t, user.PasswordHash)

	_, err = svc.GetByID(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
