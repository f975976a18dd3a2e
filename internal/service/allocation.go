package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/vietanh2810/campmeet-api/internal/config"
	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository"
)

var (
	ErrRoomNotFound    = repository.ErrRoomNotFound
	ErrPlatoonNotFound = repository.ErrPlatoonNotFound

	// ErrConcurrentModification is surfaced after the engine's single
	// automatic retry also lost its race. Nothing was committed; the caller
	// may retry.
	ErrConcurrentModification = errors.New("concurrent modification")

	ErrGenderMismatch = errors.New("gender mismatch")
)

// SettingsProvider hands the engine the current allocation tunables. It is
// consulted on every request so config edits apply without a restart.
type SettingsProvider interface {
	AllocationSettings() config.AllocationConfig
}

type AllocationRegistrationRepository interface {
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Registration, error)
	FindVerifiedUnallocated(ctx context.Context, kind string) ([]domain.Registration, error)
}

type AllocationRoomRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Room, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Room, error)
	FindAll(ctx context.Context) ([]domain.Room, error)
	AllocateAll(ctx context.Context, assignments []domain.RoomAllocation) error
	RemoveByRegistrationID(ctx context.Context, registrationID uint) (bool, error)
	ClearRoom(ctx context.Context, roomID uint) ([]uint, error)
	ClearAll(ctx context.Context) ([]uint, error)
}

type AllocationPlatoonRepository interface {
	FindByID(ctx context.Context, id uint) (domain.Platoon, error)
	FindByIDs(ctx context.Context, ids []uint) ([]domain.Platoon, error)
	FindAll(ctx context.Context) ([]domain.Platoon, error)
	AllocateAll(ctx context.Context, assignments []domain.PlatoonParticipant) error
	RemoveByRegistrationID(ctx context.Context, registrationID uint) (bool, error)
	ClearPlatoon(ctx context.Context, platoonID uint) ([]uint, error)
	ClearAll(ctx context.Context) ([]uint, error)
}

type AllocationService struct {
	regRepo     AllocationRegistrationRepository
	roomRepo    AllocationRoomRepository
	platoonRepo AllocationPlatoonRepository
	settings    SettingsProvider
	events      Broadcaster
}

func NewAllocationService(
	regRepo AllocationRegistrationRepository,
	roomRepo AllocationRoomRepository,
	platoonRepo AllocationPlatoonRepository,
	settings SettingsProvider,
	events Broadcaster,
) *AllocationService {
	return &AllocationService{
		regRepo:     regRepo,
		roomRepo:    roomRepo,
		platoonRepo: platoonRepo,
		settings:    settings,
		events:      events,
	}
}

// AllocationRecord is one committed registration-to-container binding,
// carrying the container name for UI display.
type AllocationRecord struct {
	RegistrationID uint   `json:"registration_id"`
	ContainerID    uint   `json:"container_id"`
	ContainerName  string `json:"container_name"`
}

type AllocationResult struct {
	AllocatedCount  int                `json:"allocated_count"`
	UnassignedCount int                `json:"unassigned_count"`
	Allocations     []AllocationRecord `json:"allocations"`
}

// GroupingPreview runs the grouping step without committing anything: the
// dry-run/debug view of who would be grouped with whom.
func (s *AllocationService) GroupingPreview(ctx context.Context) ([]AgeGroup, error) {
	regs, err := s.regRepo.FindVerifiedUnallocated(ctx, "room")
	if err != nil {
		if errors.Is(err, repository.ErrStorageUnavailable) {
			return []AgeGroup{}, nil
		}

		return nil, fmt.Errorf("s.regRepo.FindVerifiedUnallocated -> %w", err)
	}

	settings := s.settings.AllocationSettings()

	return GroupByAgeBand(regs, settings.AgeRangeYears, time.Now()), nil
}

// AllocateRooms places the given candidates into the given rooms,
// all-or-nothing. ErrConcurrentModification is retried once internally.
func (s *AllocationService) AllocateRooms(ctx context.Context, candidateIDs, roomIDs []uint) (AllocationResult, error) {
	result, err := s.allocateRoomsOnce(ctx, candidateIDs, roomIDs)
	if errors.Is(err, repository.ErrAllocationConflict) {
		result, err = s.allocateRoomsOnce(ctx, candidateIDs, roomIDs)
	}
	if errors.Is(err, repository.ErrAllocationConflict) {
		return AllocationResult{}, ErrConcurrentModification
	}

	return result, err
}

func (s *AllocationService) allocateRoomsOnce(ctx context.Context, candidateIDs, roomIDs []uint) (AllocationResult, error) {
	candidates, err := s.loadCandidates(ctx, candidateIDs)
	if err != nil {
		return AllocationResult{}, err
	}

	rooms, err := s.roomRepo.FindByIDs(ctx, roomIDs)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("s.roomRepo.FindByIDs -> %w", err)
	}
	if len(rooms) != len(roomIDs) {
		return AllocationResult{}, ErrRoomNotFound
	}

	for _, candidate := range candidates {
		if candidate.RoomID != nil {
			return AllocationResult{}, repository.ErrAllocationConflict
		}
	}

	for _, room := range rooms {
		if !room.IsActive {
			return AllocationResult{}, ErrRoomNotFound
		}
		for _, candidate := range candidates {
			if candidate.Gender != room.Gender {
				return AllocationResult{}, ErrGenderMismatch
			}
		}
	}

	settings := s.settings.AllocationSettings()

	assignments, unplaced := distributeRooms(candidates, rooms, settings.MaxAgeGap, time.Now())
	if len(unplaced) > 0 {
		// Partial placement is never committed.
		return AllocationResult{}, ErrInsufficientCapacity
	}

	rows := make([]domain.RoomAllocation, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, domain.RoomAllocation{
			RegistrationID: a.RegistrationID,
			RoomID:         a.ContainerID,
		})
	}

	if err = s.roomRepo.AllocateAll(ctx, rows); err != nil {
		return AllocationResult{}, err
	}

	roomNames := make(map[uint]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}

	return s.finishRoomCommit(candidates, assignments, roomNames), nil
}

// AutoAllocateRooms runs grouping, suitability scoring and commit over
// every verified unallocated registrant and every active room. Members no
// compatible room can take are reported, not failed.
func (s *AllocationService) AutoAllocateRooms(ctx context.Context) (AllocationResult, error) {
	result, err := s.autoAllocateRoomsOnce(ctx)
	if errors.Is(err, repository.ErrAllocationConflict) {
		result, err = s.autoAllocateRoomsOnce(ctx)
	}
	if errors.Is(err, repository.ErrAllocationConflict) {
		return AllocationResult{}, ErrConcurrentModification
	}

	return result, err
}

func (s *AllocationService) autoAllocateRoomsOnce(ctx context.Context) (AllocationResult, error) {
	regs, err := s.regRepo.FindVerifiedUnallocated(ctx, "room")
	if err != nil {
		return AllocationResult{}, fmt.Errorf("s.regRepo.FindVerifiedUnallocated -> %w", err)
	}

	rooms, err := s.roomRepo.FindAll(ctx)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("s.roomRepo.FindAll -> %w", err)
	}

	settings := s.settings.AllocationSettings()
	now := time.Now()
	groups := GroupByAgeBand(regs, settings.AgeRangeYears, now)

	// Room compositions evolve as groups are placed, so keep one mutable
	// view across all groups.
	roomsByGender := make(map[domain.Gender][]domain.Room)
	roomIndex := make(map[uint]int)
	for _, room := range rooms {
		if !room.IsActive {
			continue
		}
		roomsByGender[room.Gender] = append(roomsByGender[room.Gender], room)
	}
	for _, list := range roomsByGender {
		for i, room := range list {
			roomIndex[room.ID] = i
		}
	}

	var (
		assignments []Assignment
		unassigned  int
		candidates  = make(map[uint]domain.Registration, len(regs))
	)

	for _, reg := range regs {
		candidates[reg.ID] = reg
	}

	for _, group := range groups {
		genderRooms := roomsByGender[group.Gender]
		placed, unplaced := distributeRooms(group.Members, genderRooms, settings.MaxAgeGap, now)
		unassigned += len(unplaced)

		for _, a := range placed {
			assignments = append(assignments, a)

			idx := roomIndex[a.ContainerID]
			genderRooms[idx].Occupancy++
			genderRooms[idx].OccupantAges = append(genderRooms[idx].OccupantAges, candidates[a.RegistrationID].Age(now))
		}
	}

	rows := make([]domain.RoomAllocation, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, domain.RoomAllocation{
			RegistrationID: a.RegistrationID,
			RoomID:         a.ContainerID,
		})
	}

	if err = s.roomRepo.AllocateAll(ctx, rows); err != nil {
		return AllocationResult{}, err
	}

	roomNames := make(map[uint]string, len(rooms))
	for _, room := range rooms {
		roomNames[room.ID] = room.Name
	}

	ordered := make([]domain.Registration, 0, len(regs))
	ordered = append(ordered, regs...)

	result := s.finishRoomCommit(ordered, assignments, roomNames)
	result.UnassignedCount = unassigned

	return result, nil
}

// AllocatePlatoons places candidates into platoons round-robin. Platoons
// carry no compatibility constraint, only capacity.
func (s *AllocationService) AllocatePlatoons(ctx context.Context, candidateIDs, platoonIDs []uint) (AllocationResult, error) {
	result, err := s.allocatePlatoonsOnce(ctx, candidateIDs, platoonIDs)
	if errors.Is(err, repository.ErrAllocationConflict) {
		result, err = s.allocatePlatoonsOnce(ctx, candidateIDs, platoonIDs)
	}
	if errors.Is(err, repository.ErrAllocationConflict) {
		return AllocationResult{}, ErrConcurrentModification
	}

	return result, err
}

func (s *AllocationService) allocatePlatoonsOnce(ctx context.Context, candidateIDs, platoonIDs []uint) (AllocationResult, error) {
	candidates, err := s.loadCandidates(ctx, candidateIDs)
	if err != nil {
		return AllocationResult{}, err
	}

	for _, candidate := range candidates {
		if candidate.PlatoonID != nil {
			return AllocationResult{}, repository.ErrAllocationConflict
		}
	}

	platoons, err := s.platoonRepo.FindByIDs(ctx, platoonIDs)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("s.platoonRepo.FindByIDs -> %w", err)
	}
	if len(platoons) != len(platoonIDs) {
		return AllocationResult{}, ErrPlatoonNotFound
	}

	containers := make([]Container, 0, len(platoons))
	names := make(map[uint]string, len(platoons))
	for _, platoon := range platoons {
		containers = append(containers, Container{ID: platoon.ID, Free: platoon.AvailableSpace()})
		names[platoon.ID] = platoon.Name
	}

	assignments, err := Distribute(candidateIDs, containers)
	if err != nil {
		return AllocationResult{}, err
	}

	rows := make([]domain.PlatoonParticipant, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, domain.PlatoonParticipant{
			RegistrationID: a.RegistrationID,
			PlatoonID:      a.ContainerID,
		})
	}

	if err = s.platoonRepo.AllocateAll(ctx, rows); err != nil {
		return AllocationResult{}, err
	}

	return s.finishPlatoonCommit(candidates, assignments, names), nil
}

// AutoAllocatePlatoons spreads every verified registrant without a platoon
// across all platoons with free space. When capacity runs short it fills
// what it can and reports the remainder as unassigned.
func (s *AllocationService) AutoAllocatePlatoons(ctx context.Context) (AllocationResult, error) {
	result, err := s.autoAllocatePlatoonsOnce(ctx)
	if errors.Is(err, repository.ErrAllocationConflict) {
		result, err = s.autoAllocatePlatoonsOnce(ctx)
	}
	if errors.Is(err, repository.ErrAllocationConflict) {
		return AllocationResult{}, ErrConcurrentModification
	}

	return result, err
}

func (s *AllocationService) autoAllocatePlatoonsOnce(ctx context.Context) (AllocationResult, error) {
	regs, err := s.regRepo.FindVerifiedUnallocated(ctx, "platoon")
	if err != nil {
		return AllocationResult{}, fmt.Errorf("s.regRepo.FindVerifiedUnallocated -> %w", err)
	}

	platoons, err := s.platoonRepo.FindAll(ctx)
	if err != nil {
		return AllocationResult{}, fmt.Errorf("s.platoonRepo.FindAll -> %w", err)
	}

	containers := make([]Container, 0, len(platoons))
	names := make(map[uint]string, len(platoons))
	totalFree := 0
	for _, platoon := range platoons {
		containers = append(containers, Container{ID: platoon.ID, Free: platoon.AvailableSpace()})
		names[platoon.ID] = platoon.Name
		totalFree += platoon.AvailableSpace()
	}

	candidateIDs := make([]uint, 0, len(regs))
	for _, reg := range regs {
		candidateIDs = append(candidateIDs, reg.ID)
	}

	unassigned := 0
	if len(candidateIDs) > totalFree {
		unassigned = len(candidateIDs) - totalFree
		candidateIDs = candidateIDs[:totalFree]
	}

	assignments, err := Distribute(candidateIDs, containers)
	if err != nil {
		return AllocationResult{}, err
	}

	rows := make([]domain.PlatoonParticipant, 0, len(assignments))
	for _, a := range assignments {
		rows = append(rows, domain.PlatoonParticipant{
			RegistrationID: a.RegistrationID,
			PlatoonID:      a.ContainerID,
		})
	}

	if err = s.platoonRepo.AllocateAll(ctx, rows); err != nil {
		return AllocationResult{}, err
	}

	result := s.finishPlatoonCommit(regs, assignments, names)
	result.UnassignedCount = unassigned

	return result, nil
}

// RemoveRoomAllocation frees one registration's bed.
func (s *AllocationService) RemoveRoomAllocation(ctx context.Context, registrationID uint) (int, error) {
	regs, err := s.regRepo.FindByIDs(ctx, []uint{registrationID})
	if err != nil {
		return 0, fmt.Errorf("s.regRepo.FindByIDs -> %w", err)
	}
	if len(regs) == 0 {
		return 0, ErrRegistrationNotFound
	}

	removed, err := s.roomRepo.RemoveByRegistrationID(ctx, registrationID)
	if err != nil {
		return 0, fmt.Errorf("s.roomRepo.RemoveByRegistrationID -> %w", err)
	}
	if !removed {
		return 0, nil
	}

	s.events.Broadcast(domain.NewAllocationEvent(regs[0], nil, nil, "room_unallocated"))

	return 1, nil
}

// ClearRoom empties one room and emits one deallocation event per evicted
// registration.
func (s *AllocationService) ClearRoom(ctx context.Context, roomID uint) (int, error) {
	affected, err := s.roomRepo.ClearRoom(ctx, roomID)
	if err != nil {
		return 0, fmt.Errorf("s.roomRepo.ClearRoom -> %w", err)
	}

	s.broadcastDeallocations(ctx, affected, "room_unallocated")

	return len(affected), nil
}

// ClearAllRooms removes every room allocation.
func (s *AllocationService) ClearAllRooms(ctx context.Context) (int, error) {
	affected, err := s.roomRepo.ClearAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.roomRepo.ClearAll -> %w", err)
	}

	s.broadcastDeallocations(ctx, affected, "room_unallocated")

	return len(affected), nil
}

func (s *AllocationService) RemovePlatoonAllocation(ctx context.Context, registrationID uint) (int, error) {
	regs, err := s.regRepo.FindByIDs(ctx, []uint{registrationID})
	if err != nil {
		return 0, fmt.Errorf("s.regRepo.FindByIDs -> %w", err)
	}
	if len(regs) == 0 {
		return 0, ErrRegistrationNotFound
	}

	removed, err := s.platoonRepo.RemoveByRegistrationID(ctx, registrationID)
	if err != nil {
		return 0, fmt.Errorf("s.platoonRepo.RemoveByRegistrationID -> %w", err)
	}
	if !removed {
		return 0, nil
	}

	s.events.Broadcast(domain.NewAllocationEvent(regs[0], nil, nil, "platoon_unallocated"))

	return 1, nil
}

func (s *AllocationService) ClearPlatoon(ctx context.Context, platoonID uint) (int, error) {
	affected, err := s.platoonRepo.ClearPlatoon(ctx, platoonID)
	if err != nil {
		return 0, fmt.Errorf("s.platoonRepo.ClearPlatoon -> %w", err)
	}

	s.broadcastDeallocations(ctx, affected, "platoon_unallocated")

	return len(affected), nil
}

func (s *AllocationService) ClearAllPlatoons(ctx context.Context) (int, error) {
	affected, err := s.platoonRepo.ClearAll(ctx)
	if err != nil {
		return 0, fmt.Errorf("s.platoonRepo.ClearAll -> %w", err)
	}

	s.broadcastDeallocations(ctx, affected, "platoon_unallocated")

	return len(affected), nil
}

func (s *AllocationService) loadCandidates(ctx context.Context, candidateIDs []uint) ([]domain.Registration, error) {
	candidates, err := s.regRepo.FindByIDs(ctx, candidateIDs)
	if err != nil {
		return nil, fmt.Errorf("s.regRepo.FindByIDs -> %w", err)
	}
	if len(candidates) != len(candidateIDs) {
		return nil, ErrRegistrationNotFound
	}

	for _, candidate := range candidates {
		if !candidate.IsVerified {
			return nil, ErrNotVerified
		}
	}

	return candidates, nil
}

func (s *AllocationService) finishRoomCommit(candidates []domain.Registration, assignments []Assignment, roomNames map[uint]string) AllocationResult {
	byID := make(map[uint]domain.Registration, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	records := make([]AllocationRecord, 0, len(assignments))
	for _, a := range assignments {
		name := roomNames[a.ContainerID]
		records = append(records, AllocationRecord{
			RegistrationID: a.RegistrationID,
			ContainerID:    a.ContainerID,
			ContainerName:  name,
		})

		roomName := name
		s.events.Broadcast(domain.NewAllocationEvent(byID[a.RegistrationID], &roomName, nil, "room_allocated"))
	}

	return AllocationResult{
		AllocatedCount: len(records),
		Allocations:    records,
	}
}

func (s *AllocationService) finishPlatoonCommit(candidates []domain.Registration, assignments []Assignment, platoonNames map[uint]string) AllocationResult {
	byID := make(map[uint]domain.Registration, len(candidates))
	for _, c := range candidates {
		byID[c.ID] = c
	}

	records := make([]AllocationRecord, 0, len(assignments))
	for _, a := range assignments {
		name := platoonNames[a.ContainerID]
		records = append(records, AllocationRecord{
			RegistrationID: a.RegistrationID,
			ContainerID:    a.ContainerID,
			ContainerName:  name,
		})

		platoonName := name
		s.events.Broadcast(domain.NewAllocationEvent(byID[a.RegistrationID], nil, &platoonName, "platoon_allocated"))
	}

	return AllocationResult{
		AllocatedCount: len(records),
		Allocations:    records,
	}
}

func (s *AllocationService) broadcastDeallocations(ctx context.Context, registrationIDs []uint, status string) {
	if len(registrationIDs) == 0 {
		return
	}

	regs, err := s.regRepo.FindByIDs(ctx, registrationIDs)
	if err != nil {
		// Events are best-effort; the deletion itself already committed.
		for _, id := range registrationIDs {
			s.events.Broadcast(domain.NewAllocationEvent(domain.Registration{ID: id}, nil, nil, status))
		}

		return
	}

	for _, reg := range regs {
		s.events.Broadcast(domain.NewAllocationEvent(reg, nil, nil, status))
	}
}
