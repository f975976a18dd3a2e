package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository"
)

type fakeUserRepo struct {
	byEmail map[string]domain.User
	nextID  uint
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]domain.User{}, nextID: 1}
}

func (f *fakeUserRepo) Create(_ context.Context, user domain.User) (domain.User, error) {
	if _, ok := f.byEmail[user.Email]; ok {
		return domain.User{}, repository.ErrUserEmailExists
	}

	user.ID = f.nextID
	f.nextID++
	f.byEmail[user.Email] = user

	return user, nil
}

func (f *fakeUserRepo) FindByEmail(_ context.Context, email string) (domain.User, error) {
	user, ok := f.byEmail[email]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return user, nil
}

func TestSignupHashesPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	created, err := svc.Signup(context.Background(), domain.User{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
		Role:     domain.RoleManager,
	})
	require.NoError(t, err)

	assert.NotEqual(t, "sup3rsecret", created.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.Password), []byte("sup3rsecret")))
}

func TestSignupRejectsUnknownRole(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	_, err := svc.Signup(context.Background(), domain.User{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
		Role:     "root",
	})
	assert.ErrorIs(t, err, ErrInvalidRole)
}

func TestSignupDuplicateEmail(t *testing.T) {
	svc := NewAuthService(newFakeUserRepo())

	user := domain.User{Email: "admin@example.com", Password: "sup3rsecret", Role: domain.RoleViewer}
	_, err := svc.Signup(context.Background(), user)
	require.NoError(t, err)

	_, err = svc.Signup(context.Background(), user)
	assert.ErrorIs(t, err, ErrUserEmailExists)
}

func TestLogin(t *testing.T) {
	repo := newFakeUserRepo()
	svc := NewAuthService(repo)

	_, err := svc.Signup(context.Background(), domain.User{
		Email:    "admin@example.com",
		Password: "sup3rsecret",
		Role:     domain.RoleAdmin,
	})
	require.NoError(t, err)

	user, err := svc.Login(context.Background(), "admin@example.com", "sup3rsecret")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, user.Role)

	_, err = svc.Login(context.Background(), "admin@example.com", "wrong")
	assert.ErrorIs(t, err, ErrWrongPassword)

	_, err = svc.Login(context.Background(), "ghost@example.com", "sup3rsecret")
	assert.ErrorIs(t, err, ErrUserNotFound)
}
