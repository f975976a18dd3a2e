package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/campmeet-api/internal/config"
	"github.com/vietanh2810/campmeet-api/internal/domain"
	"github.com/vietanh2810/campmeet-api/internal/repository"
)

type fixedSettings struct {
	cfg config.AllocationConfig
}

func (f fixedSettings) AllocationSettings() config.AllocationConfig {
	return f.cfg
}

type fakeAllocRegRepo struct {
	regs        map[uint]domain.Registration
	unallocated []domain.Registration
	listErr     error
}

func (f *fakeAllocRegRepo) FindByIDs(_ context.Context, ids []uint) ([]domain.Registration, error) {
	out := make([]domain.Registration, 0, len(ids))
	for _, id := range ids {
		if reg, ok := f.regs[id]; ok {
			out = append(out, reg)
		}
	}

	return out, nil
}

func (f *fakeAllocRegRepo) FindVerifiedUnallocated(_ context.Context, _ string) ([]domain.Registration, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}

	return f.unallocated, nil
}

type fakeAllocRoomRepo struct {
	rooms       map[uint]domain.Room
	failures    int
	committed   [][]domain.RoomAllocation
	removed     []uint
	clearReturn []uint
}

func (f *fakeAllocRoomRepo) FindByID(_ context.Context, id uint) (domain.Room, error) {
	room, ok := f.rooms[id]
	if !ok {
		return domain.Room{}, repository.ErrRoomNotFound
	}

	return room, nil
}

func (f *fakeAllocRoomRepo) FindByIDs(_ context.Context, ids []uint) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(ids))
	for _, id := range ids {
		if room, ok := f.rooms[id]; ok {
			out = append(out, room)
		}
	}

	return out, nil
}

func (f *fakeAllocRoomRepo) FindAll(_ context.Context) ([]domain.Room, error) {
	out := make([]domain.Room, 0, len(f.rooms))
	for _, room := range f.rooms {
		out = append(out, room)
	}

	return out, nil
}

func (f *fakeAllocRoomRepo) AllocateAll(_ context.Context, assignments []domain.RoomAllocation) error {
	if f.failures > 0 {
		f.failures--
		return repository.ErrAllocationConflict
	}

	f.committed = append(f.committed, assignments)

	return nil
}

func (f *fakeAllocRoomRepo) RemoveByRegistrationID(_ context.Context, registrationID uint) (bool, error) {
	for _, id := range f.removed {
		if id == registrationID {
			return false, nil
		}
	}
	f.removed = append(f.removed, registrationID)

	return true, nil
}

func (f *fakeAllocRoomRepo) ClearRoom(_ context.Context, _ uint) ([]uint, error) {
	return f.clearReturn, nil
}

func (f *fakeAllocRoomRepo) ClearAll(_ context.Context) ([]uint, error) {
	return f.clearReturn, nil
}

type fakeAllocPlatoonRepo struct {
	platoons    map[uint]domain.Platoon
	failures    int
	committed   [][]domain.PlatoonParticipant
	clearReturn []uint
}

func (f *fakeAllocPlatoonRepo) FindByID(_ context.Context, id uint) (domain.Platoon, error) {
	platoon, ok := f.platoons[id]
	if !ok {
		return domain.Platoon{}, repository.ErrPlatoonNotFound
	}

	return platoon, nil
}

func (f *fakeAllocPlatoonRepo) FindByIDs(_ context.Context, ids []uint) ([]domain.Platoon, error) {
	out := make([]domain.Platoon, 0, len(ids))
	for _, id := range ids {
		if platoon, ok := f.platoons[id]; ok {
			out = append(out, platoon)
		}
	}

	return out, nil
}

func (f *fakeAllocPlatoonRepo) FindAll(_ context.Context) ([]domain.Platoon, error) {
	out := make([]domain.Platoon, 0, len(f.platoons))
	for _, platoon := range f.platoons {
		out = append(out, platoon)
	}

	return out, nil
}

func (f *fakeAllocPlatoonRepo) AllocateAll(_ context.Context, assignments []domain.PlatoonParticipant) error {
	if f.failures > 0 {
		f.failures--
		return repository.ErrAllocationConflict
	}

	f.committed = append(f.committed, assignments)

	return nil
}

func (f *fakeAllocPlatoonRepo) RemoveByRegistrationID(_ context.Context, _ uint) (bool, error) {
	return true, nil
}

func (f *fakeAllocPlatoonRepo) ClearPlatoon(_ context.Context, _ uint) ([]uint, error) {
	return f.clearReturn, nil
}

func (f *fakeAllocPlatoonRepo) ClearAll(_ context.Context) ([]uint, error) {
	return f.clearReturn, nil
}

func verifiedReg(id uint, gender domain.Gender, age int) domain.Registration {
	reg := regAged(id, gender, age)
	reg.IsVerified = true

	return reg
}

func newAllocationFixture(
	regRepo *fakeAllocRegRepo,
	roomRepo *fakeAllocRoomRepo,
	platoonRepo *fakeAllocPlatoonRepo,
) (*AllocationService, *captureBroadcaster) {
	if regRepo == nil {
		regRepo = &fakeAllocRegRepo{regs: map[uint]domain.Registration{}}
	}
	if roomRepo == nil {
		roomRepo = &fakeAllocRoomRepo{rooms: map[uint]domain.Room{}}
	}
	if platoonRepo == nil {
		platoonRepo = &fakeAllocPlatoonRepo{platoons: map[uint]domain.Platoon{}}
	}

	events := &captureBroadcaster{}
	settings := fixedSettings{cfg: config.AllocationConfig{MaxAgeGap: 5, AgeRangeYears: 5}}

	return NewAllocationService(regRepo, roomRepo, platoonRepo, settings, events), events
}

func TestAllocateRooms(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
		2: verifiedReg(2, domain.GenderMale, 13),
	}}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{
		10: {ID: 10, Name: "Cedar", Gender: domain.GenderMale, Capacity: 4, IsActive: true},
	}}
	svc, events := newAllocationFixture(regRepo, roomRepo, nil)

	result, err := svc.AllocateRooms(context.Background(), []uint{1, 2}, []uint{10})
	require.NoError(t, err)

	assert.Equal(t, 2, result.AllocatedCount)
	assert.Equal(t, 0, result.UnassignedCount)
	require.Len(t, result.Allocations, 2)
	for _, record := range result.Allocations {
		assert.Equal(t, uint(10), record.ContainerID)
		assert.Equal(t, "Cedar", record.ContainerName)
	}

	require.Len(t, roomRepo.committed, 1)
	assert.Len(t, roomRepo.committed[0], 2)

	assert.Len(t, events.Events(), 2)
	for _, event := range events.Events() {
		assert.Equal(t, "room_allocated", event.Status)
	}
}

func TestAllocateRoomsGenderMismatch(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderFemale, 12),
	}}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{
		10: {ID: 10, Gender: domain.GenderMale, Capacity: 4, IsActive: true},
	}}
	svc, _ := newAllocationFixture(regRepo, roomRepo, nil)

	_, err := svc.AllocateRooms(context.Background(), []uint{1}, []uint{10})
	assert.ErrorIs(t, err, ErrGenderMismatch)
	assert.Empty(t, roomRepo.committed)
}

func TestAllocateRoomsUnverifiedCandidate(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: regAged(1, domain.GenderMale, 12),
	}}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{
		10: {ID: 10, Gender: domain.GenderMale, Capacity: 4, IsActive: true},
	}}
	svc, _ := newAllocationFixture(regRepo, roomRepo, nil)

	_, err := svc.AllocateRooms(context.Background(), []uint{1}, []uint{10})
	assert.ErrorIs(t, err, ErrNotVerified)
}

func TestAllocateRoomsInactiveRoom(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
	}}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{
		10: {ID: 10, Gender: domain.GenderMale, Capacity: 4, IsActive: false},
	}}
	svc, _ := newAllocationFixture(regRepo, roomRepo, nil)

	_, err := svc.AllocateRooms(context.Background(), []uint{1}, []uint{10})
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestAllocateRoomsUnknownRegistration(t *testing.T) {
	svc, _ := newAllocationFixture(nil, nil, nil)

	_, err := svc.AllocateRooms(context.Background(), []uint{77}, []uint{10})
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestAllocateRoomsInsufficientCapacityCommitsNothing(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
		2: verifiedReg(2, domain.GenderMale, 12),
		3: verifiedReg(3, domain.GenderMale, 12),
	}}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{
		10: {ID: 10, Gender: domain.GenderMale, Capacity: 2, IsActive: true},
	}}
	svc, events := newAllocationFixture(regRepo, roomRepo, nil)

	_, err := svc.AllocateRooms(context.Background(), []uint{1, 2, 3}, []uint{10})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Empty(t, roomRepo.committed)
	assert.Empty(t, events.Events())
}

func TestAllocateRoomsRetriesOnceOnConflict(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
	}}
	roomRepo := &fakeAllocRoomRepo{
		rooms: map[uint]domain.Room{
			10: {ID: 10, Gender: domain.GenderMale, Capacity: 4, IsActive: true},
		},
		failures: 1,
	}
	svc, _ := newAllocationFixture(regRepo, roomRepo, nil)

	result, err := svc.AllocateRooms(context.Background(), []uint{1}, []uint{10})
	require.NoError(t, err)
	assert.Equal(t, 1, result.AllocatedCount)
	require.Len(t, roomRepo.committed, 1)
}

func TestAllocateRoomsGivesUpAfterSecondConflict(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
	}}
	roomRepo := &fakeAllocRoomRepo{
		rooms: map[uint]domain.Room{
			10: {ID: 10, Gender: domain.GenderMale, Capacity: 4, IsActive: true},
		},
		failures: 2,
	}
	svc, _ := newAllocationFixture(regRepo, roomRepo, nil)

	_, err := svc.AllocateRooms(context.Background(), []uint{1}, []uint{10})
	assert.ErrorIs(t, err, ErrConcurrentModification)
	assert.Empty(t, roomRepo.committed)
}

func TestAllocateRoomsAlreadyAllocatedCandidate(t *testing.T) {
	roomID := uint(10)
	allocated := verifiedReg(1, domain.GenderMale, 12)
	allocated.RoomID = &roomID

	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{1: allocated}}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{
		10: {ID: 10, Gender: domain.GenderMale, Capacity: 4, IsActive: true},
	}}
	svc, _ := newAllocationFixture(regRepo, roomRepo, nil)

	// Still allocated on the retry, so the engine reports the conflict.
	_, err := svc.AllocateRooms(context.Background(), []uint{1}, []uint{10})
	assert.ErrorIs(t, err, ErrConcurrentModification)
}

func TestAutoAllocateRooms(t *testing.T) {
	regRepo := &fakeAllocRegRepo{
		regs: map[uint]domain.Registration{},
		unallocated: []domain.Registration{
			verifiedReg(1, domain.GenderMale, 12),
			verifiedReg(2, domain.GenderMale, 13),
			verifiedReg(3, domain.GenderFemale, 12),
			verifiedReg(4, domain.GenderMale, 40),
		},
	}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{
		10: {ID: 10, Name: "Cedar", Gender: domain.GenderMale, Capacity: 2, IsActive: true},
		20: {ID: 20, Name: "Maple", Gender: domain.GenderFemale, Capacity: 2, IsActive: true},
	}}
	svc, _ := newAllocationFixture(regRepo, roomRepo, nil)

	result, err := svc.AutoAllocateRooms(context.Background())
	require.NoError(t, err)

	// The 40-year-old fits no room once the teenagers hold Cedar.
	assert.Equal(t, 3, result.AllocatedCount)
	assert.Equal(t, 1, result.UnassignedCount)

	byRegistration := map[uint]uint{}
	for _, record := range result.Allocations {
		byRegistration[record.RegistrationID] = record.ContainerID
	}
	assert.Equal(t, uint(10), byRegistration[1])
	assert.Equal(t, uint(10), byRegistration[2])
	assert.Equal(t, uint(20), byRegistration[3])
}

func TestAutoAllocateRoomsSkipsInactiveRooms(t *testing.T) {
	regRepo := &fakeAllocRegRepo{
		regs:        map[uint]domain.Registration{},
		unallocated: []domain.Registration{verifiedReg(1, domain.GenderMale, 12)},
	}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{
		10: {ID: 10, Gender: domain.GenderMale, Capacity: 2, IsActive: false},
	}}
	svc, _ := newAllocationFixture(regRepo, roomRepo, nil)

	result, err := svc.AutoAllocateRooms(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, result.AllocatedCount)
	assert.Equal(t, 1, result.UnassignedCount)
}

func TestAllocatePlatoonsRoundRobin(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
		2: verifiedReg(2, domain.GenderFemale, 25),
		3: verifiedReg(3, domain.GenderMale, 30),
		4: verifiedReg(4, domain.GenderFemale, 14),
	}}
	platoonRepo := &fakeAllocPlatoonRepo{platoons: map[uint]domain.Platoon{
		100: {ID: 100, Name: "Alpha", Capacity: 2},
		200: {ID: 200, Name: "Bravo", Capacity: 2},
	}}
	svc, _ := newAllocationFixture(regRepo, nil, platoonRepo)

	result, err := svc.AllocatePlatoons(context.Background(), []uint{1, 2, 3, 4}, []uint{100, 200})
	require.NoError(t, err)

	assert.Equal(t, 4, result.AllocatedCount)

	perPlatoon := map[uint]int{}
	for _, record := range result.Allocations {
		perPlatoon[record.ContainerID]++
	}
	assert.Equal(t, 2, perPlatoon[100])
	assert.Equal(t, 2, perPlatoon[200])
}

func TestAllocatePlatoonsInsufficientCapacity(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
		2: verifiedReg(2, domain.GenderMale, 12),
	}}
	platoonRepo := &fakeAllocPlatoonRepo{platoons: map[uint]domain.Platoon{
		100: {ID: 100, Capacity: 1},
	}}
	svc, _ := newAllocationFixture(regRepo, nil, platoonRepo)

	_, err := svc.AllocatePlatoons(context.Background(), []uint{1, 2}, []uint{100})
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Empty(t, platoonRepo.committed)
}

func TestAutoAllocatePlatoonsReportsOverflow(t *testing.T) {
	regRepo := &fakeAllocRegRepo{
		regs: map[uint]domain.Registration{},
		unallocated: []domain.Registration{
			verifiedReg(1, domain.GenderMale, 12),
			verifiedReg(2, domain.GenderMale, 13),
			verifiedReg(3, domain.GenderMale, 14),
		},
	}
	platoonRepo := &fakeAllocPlatoonRepo{platoons: map[uint]domain.Platoon{
		100: {ID: 100, Capacity: 2},
	}}
	svc, _ := newAllocationFixture(regRepo, nil, platoonRepo)

	result, err := svc.AutoAllocatePlatoons(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.AllocatedCount)
	assert.Equal(t, 1, result.UnassignedCount)
}

func TestRemoveRoomAllocation(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
	}}
	roomRepo := &fakeAllocRoomRepo{rooms: map[uint]domain.Room{}}
	svc, events := newAllocationFixture(regRepo, roomRepo, nil)

	removed, err := svc.RemoveRoomAllocation(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 1, removed)

	got := events.Events()
	require.Len(t, got, 1)
	assert.Equal(t, "room_unallocated", got[0].Status)
	assert.Nil(t, got[0].RoomName)

	// Second removal is a no-op.
	removed, err = svc.RemoveRoomAllocation(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, 0, removed)
}

func TestRemoveRoomAllocationUnknownRegistration(t *testing.T) {
	svc, _ := newAllocationFixture(nil, nil, nil)

	_, err := svc.RemoveRoomAllocation(context.Background(), 42)
	assert.ErrorIs(t, err, ErrRegistrationNotFound)
}

func TestClearRoomBroadcastsPerRegistration(t *testing.T) {
	regRepo := &fakeAllocRegRepo{regs: map[uint]domain.Registration{
		1: verifiedReg(1, domain.GenderMale, 12),
		2: verifiedReg(2, domain.GenderMale, 13),
	}}
	roomRepo := &fakeAllocRoomRepo{
		rooms:       map[uint]domain.Room{},
		clearReturn: []uint{1, 2},
	}
	svc, events := newAllocationFixture(regRepo, roomRepo, nil)

	removed, err := svc.ClearRoom(context.Background(), 10)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.Len(t, events.Events(), 2)
}

func TestGroupingPreview(t *testing.T) {
	regRepo := &fakeAllocRegRepo{
		regs: map[uint]domain.Registration{},
		unallocated: []domain.Registration{
			verifiedReg(1, domain.GenderMale, 12),
			verifiedReg(2, domain.GenderMale, 13),
		},
	}
	svc, _ := newAllocationFixture(regRepo, nil, nil)

	groups, err := svc.GroupingPreview(context.Background())
	require.NoError(t, err)
	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 2)
}

func TestGroupingPreviewDegradesWhenStorageUnavailable(t *testing.T) {
	regRepo := &fakeAllocRegRepo{
		regs:    map[uint]domain.Registration{},
		listErr: repository.ErrStorageUnavailable,
	}
	svc, _ := newAllocationFixture(regRepo, nil, nil)

	groups, err := svc.GroupingPreview(context.Background())
	require.NoError(t, err)
	assert.Empty(t, groups)
}
