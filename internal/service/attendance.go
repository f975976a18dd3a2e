package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/pkg/qrtoken"
	"github.com/vietanh2810/campmeet-api/internal/repository"
)

var (
	ErrRegistrationNotFound = repository.ErrRegistrationNotFound
	ErrAlreadyVerified      = repository.ErrAlreadyVerified
	ErrNotVerified          = repository.ErrNotVerified
	ErrInvalidToken         = qrtoken.ErrInvalidToken

	// ErrUnverifyBlocked rejects unverification while a room or platoon
	// allocation exists. The allocation has to be removed first; silently
	// reverting would leave an unverified registrant occupying a seat.
	ErrUnverifyBlocked = errors.New("unverify blocked by active allocation")
)

// Broadcaster pushes an event to every connected dashboard. It never fails;
// delivery problems are the hub's internal bookkeeping.
type Broadcaster interface {
	Broadcast(event domain.AttendanceEvent)
}

type AttendanceRegistrationRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Registration, error)
	MarkVerified(ctx context.Context, id uint, method, device, operator string, at time.Time) (domain.Registration, error)
	MarkUnverified(ctx context.Context, id uint) (domain.Registration, error)
	UpdateQRCode(ctx context.Context, id uint, code string) error
}

type AttendanceRoomRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Room, error)
}

type AttendancePlatoonRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Platoon, error)
}

type AttendanceService struct {
	repo       AttendanceRegistrationRepository
	rooms      AttendanceRoomRepository
	platoons   AttendancePlatoonRepository
	events     Broadcaster
	signingKey string
}

func NewAttendanceService(repo AttendanceRegistrationRepository, rooms AttendanceRoomRepository, platoons AttendancePlatoonRepository, events Broadcaster, signingKey string) *AttendanceService {
	return &AttendanceService{
		repo:       repo,
		rooms:      rooms,
		platoons:   platoons,
		events:     events,
		signingKey: signingKey,
	}
}

// CheckResult tells the scanner which transition applies to the presented
// code. Room and Platoon are populated only for ActionUnverifyBlocked so
// the operator sees what is holding the unverification up.
type CheckResult struct {
	Action       domain.AttendanceAction `json:"action"`
	Registration domain.Registration     `json:"registration"`
	Room         *domain.Room            `json:"room,omitempty"`
	Platoon      *domain.Platoon         `json:"platoon,omitempty"`
}

// Check is the non-mutating scan: it resolves the token and reports the
// next sensible action without changing any state.
func (s *AttendanceService) Check(ctx context.Context, token, scannerName string) (CheckResult, error) {
	reg, err := s.resolve(ctx, token)
	if err != nil {
		return CheckResult{}, err
	}

	result := CheckResult{Registration: reg}

	switch {
	case !reg.IsVerified:
		result.Action = domain.ActionVerifyReady
	case reg.RoomID == nil && reg.PlatoonID == nil:
		result.Action = domain.ActionUnverifyReady
	default:
		result.Action = domain.ActionUnverifyBlocked

		if reg.RoomID != nil {
			room, err := s.rooms.FindByID(ctx, *reg.RoomID)
			if err != nil {
				return CheckResult{}, fmt.Errorf("s.rooms.FindByID -> %w", err)
			}
			result.Room = &room
		}
		if reg.PlatoonID != nil {
			platoon, err := s.platoons.FindByID(ctx, *reg.PlatoonID)
			if err != nil {
				return CheckResult{}, fmt.Errorf("s.platoons.FindByID -> %w", err)
			}
			result.Platoon = &platoon
		}
	}

	event := domain.AttendanceEvent{
		Type:           domain.EventNewScan,
		RegistrationID: reg.ID,
		FullName:       reg.FullName,
		Status:         string(result.Action),
		ScannerName:    scannerName,
		Timestamp:      time.Now(),
	}
	s.events.Broadcast(event)

	return result, nil
}

// Verify moves a registration from UNVERIFIED to verified in one atomic
// conditional update; a concurrent duplicate scan loses the race and gets
// ErrAlreadyVerified. QR regeneration runs detached so its failure can
// never fail an already-committed verification.
func (s *AttendanceService) Verify(ctx context.Context, token, method, device, operator string) (domain.Registration, error) {
	reg, err := s.resolve(ctx, token)
	if err != nil {
		return domain.Registration{}, err
	}

	if method == "" {
		method = "qr_scan"
	}
	if device == "" {
		device = "unknown"
	}
	if operator == "" {
		operator = "unknown"
	}

	updated, err := s.repo.MarkVerified(ctx, reg.ID, method, device, operator, time.Now())
	if err != nil {
		if errors.Is(err, repository.ErrAlreadyVerified) {
			return domain.Registration{}, ErrAlreadyVerified
		}

		return domain.Registration{}, fmt.Errorf("s.repo.MarkVerified -> %w", err)
	}

	go s.regenerateCode(updated.ID)

	s.events.Broadcast(domain.NewVerificationEvent(updated, device))

	return updated, nil
}

// Unverify reverts a verified registration that holds no room or platoon
// allocation.
func (s *AttendanceService) Unverify(ctx context.Context, token string) (domain.Registration, error) {
	reg, err := s.resolve(ctx, token)
	if err != nil {
		return domain.Registration{}, err
	}

	if reg.RoomID != nil || reg.PlatoonID != nil {
		return domain.Registration{}, ErrUnverifyBlocked
	}

	updated, err := s.repo.MarkUnverified(ctx, reg.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotVerified) {
			return domain.Registration{}, ErrNotVerified
		}

		return domain.Registration{}, fmt.Errorf("s.repo.MarkUnverified -> %w", err)
	}

	s.events.Broadcast(domain.NewStatusChangeEvent(updated, "unverified"))

	return updated, nil
}

func (s *AttendanceService) resolve(ctx context.Context, token string) (domain.Registration, error) {
	payload, err := qrtoken.Decode(s.signingKey, token)
	if err != nil {
		return domain.Registration{}, ErrInvalidToken
	}

	reg, err := s.repo.FindByID(ctx, payload.RegistrationID)
	if err != nil {
		if errors.Is(err, repository.ErrRegistrationNotFound) {
			return domain.Registration{}, ErrRegistrationNotFound
		}

		return domain.Registration{}, fmt.Errorf("s.repo.FindByID -> %w", err)
	}

	// A token minted for a previous code value has been consumed already.
	if reg.QRCode != payload.Code {
		return domain.Registration{}, ErrInvalidToken
	}

	return reg, nil
}

// regenerateCode runs detached from the verification request. The old code
// stays valid if this fails, which is why the failure is logged loudly.
func (s *AttendanceService) regenerateCode(registrationID uint) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.repo.UpdateQRCode(ctx, registrationID, qrtoken.NewCode()); err != nil {
		zap.L().Error("qr code regeneration failed",
			zap.Uint("registration_id", registrationID),
			zap.Error(err))
	}
}
