package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/pkg/qrtoken"
	"github.com/vietanh2810/campmeet-api/internal/repository"
)

type fakeRegistrationRepo struct {
	regs     map[uint]domain.Registration
	nextID   uint
	listErr  error
	countErr error
	total    int64
	verified int64
}

func newFakeRegistrationRepo() *fakeRegistrationRepo {
	return &fakeRegistrationRepo{regs: map[uint]domain.Registration{}, nextID: 1}
}

func (f *fakeRegistrationRepo) Create(_ context.Context, reg domain.Registration) (domain.Registration, error) {
	reg.ID = f.nextID
	f.nextID++
	f.regs[reg.ID] = reg

	return reg, nil
}

func (f *fakeRegistrationRepo) FindByID(_ context.Context, id uint) (domain.Registration, error) {
	reg, ok := f.regs[id]
	if !ok {
		return domain.Registration{}, repository.ErrRegistrationNotFound
	}

	return reg, nil
}

func (f *fakeRegistrationRepo) List(_ context.Context, _, _ int) ([]domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	out := make([]domain.Registration, 0, len(f.regs))
	for _, reg := range f.regs {
		out = append(out, reg)
	}

	return out, nil
}

func (f *fakeRegistrationRepo) CountByStatus(_ context.Context) (int64, int64, error) {
	if f.countErr != nil {
		return 0, 0, f.countErr
	}

	return f.total, f.verified, nil
}

func TestCreateRegistrationMintsCode(t *testing.T) {
	repo := newFakeRegistrationRepo()
	svc := NewRegistrationService(repo, attendanceKey)

	created, err := svc.CreateRegistration(context.Background(), domain.Registration{FullName: "Dana Levi"})
	require.NoError(t, err)
	assert.NotEmpty(t, created.QRCode)
}

func TestIssueTokenRoundTrips(t *testing.T) {
	repo := newFakeRegistrationRepo()
	svc := NewRegistrationService(repo, attendanceKey)

	created, err := svc.CreateRegistration(context.Background(), domain.Registration{FullName: "Dana Levi"})
	require.NoError(t, err)

	token, err := svc.IssueToken(context.Background(), created.ID)
	require.NoError(t, err)

	payload, err := qrtoken.Decode(attendanceKey, token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, payload.RegistrationID)
	assert.Equal(t, created.QRCode, payload.Code)
}

func TestListRegistrationsDegradesWhenStorageUnavailable(t *testing.T) {
	repo := newFakeRegistrationRepo()
	repo.listErr = repository.ErrStorageUnavailable
	svc := NewRegistrationService(repo, attendanceKey)

	regs, err := svc.ListRegistrations(context.Background(), 50, 0)
	require.NoError(t, err)
	assert.Empty(t, regs)
}

func TestListRegistrationsPropagatesOtherErrors(t *testing.T) {
	repo := newFakeRegistrationRepo()
	repo.listErr = errors.New("connection reset")
	svc := NewRegistrationService(repo, attendanceKey)

	_, err := svc.ListRegistrations(context.Background(), 50, 0)
	assert.Error(t, err)
}

func TestStatsNeverErrors(t *testing.T) {
	repo := newFakeRegistrationRepo()
	repo.total = 12
	repo.verified = 7
	svc := NewRegistrationService(repo, attendanceKey)

	stats := svc.Stats(context.Background())
	assert.Equal(t, int64(12), stats.TotalRegistrations)
	assert.Equal(t, int64(7), stats.VerifiedCount)

	repo.countErr = errors.New("down")
	assert.Equal(t, DashboardStats{}, svc.Stats(context.Background()))
}
