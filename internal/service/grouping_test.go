package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vietanh2810/campmeet-api/internal/domain"
)

var groupingNow = time.Date(2026, 6, 15, 12, 0, 0, 0, time.UTC)

func regAged(id uint, gender domain.Gender, age int) domain.Registration {
	return domain.Registration{
		ID:          id,
		Gender:      gender,
		DateOfBirth: groupingNow.AddDate(-age, 0, -1),
	}
}

func TestGroupByAgeBand(t *testing.T) {
	regs := []domain.Registration{
		regAged(1, domain.GenderMale, 12),
		regAged(2, domain.GenderMale, 14),
		regAged(3, domain.GenderMale, 17),
		regAged(4, domain.GenderFemale, 13),
		{ID: 5, Gender: "other", DateOfBirth: groupingNow.AddDate(-13, 0, -1)},
	}

	groups := GroupByAgeBand(regs, 5, groupingNow)

	require.Len(t, groups, 3)

	// Ordered by gender, then band.
	assert.Equal(t, domain.GenderFemale, groups[0].Gender)
	assert.Equal(t, 10, groups[0].BandStart)
	assert.Equal(t, 14, groups[0].BandEnd)
	require.Len(t, groups[0].Members, 1)
	assert.Equal(t, uint(4), groups[0].Members[0].ID)

	assert.Equal(t, domain.GenderMale, groups[1].Gender)
	assert.Equal(t, 10, groups[1].BandStart)
	assert.Len(t, groups[1].Members, 2)

	assert.Equal(t, domain.GenderMale, groups[2].Gender)
	assert.Equal(t, 15, groups[2].BandStart)
	assert.Equal(t, 19, groups[2].BandEnd)
	require.Len(t, groups[2].Members, 1)
	assert.Equal(t, uint(3), groups[2].Members[0].ID)
}

func TestGroupByAgeBandEmpty(t *testing.T) {
	assert.Empty(t, GroupByAgeBand(nil, 5, groupingNow))
}

func TestRoomSuitable(t *testing.T) {
	tests := []struct {
		name       string
		occupants  []int
		candidates []int
		maxGap     int
		want       bool
	}{
		{"empty room takes anyone", nil, []int{12}, 3, true},
		{"within gap", []int{12, 13}, []int{14}, 3, true},
		{"gap on the boundary", []int{12}, []int{15}, 3, true},
		{"gap exceeded", []int{12}, []int{16}, 3, false},
		{"candidate younger than occupants", []int{15, 16}, []int{11}, 3, false},
		{"no candidates", []int{12}, nil, 3, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RoomSuitable(tt.occupants, tt.candidates, tt.maxGap))
		})
	}
}

func TestUsableSpace(t *testing.T) {
	room := domain.Room{Capacity: 6, Occupancy: 2}

	assert.Equal(t, 4, UsableSpace(room, 10))
	assert.Equal(t, 3, UsableSpace(room, 3))
	assert.Equal(t, 0, UsableSpace(domain.Room{Capacity: 2, Occupancy: 2}, 5))
}

func TestDistributeSpreadsRoundRobin(t *testing.T) {
	candidates := []uint{1, 2, 3, 4, 5, 6}
	containers := []Container{
		{ID: 10, Free: 3},
		{ID: 20, Free: 3},
	}

	assignments, err := Distribute(candidates, containers)
	require.NoError(t, err)
	require.Len(t, assignments, 6)

	perContainer := map[uint]int{}
	seen := map[uint]bool{}
	for _, a := range assignments {
		perContainer[a.ContainerID]++
		assert.False(t, seen[a.RegistrationID], "candidate %d placed twice", a.RegistrationID)
		seen[a.RegistrationID] = true
	}

	assert.Equal(t, 3, perContainer[10])
	assert.Equal(t, 3, perContainer[20])
}

func TestDistributeSkipsExhaustedContainers(t *testing.T) {
	candidates := []uint{1, 2, 3}
	containers := []Container{
		{ID: 10, Free: 0},
		{ID: 20, Free: 3},
	}

	assignments, err := Distribute(candidates, containers)
	require.NoError(t, err)
	require.Len(t, assignments, 3)
	for _, a := range assignments {
		assert.Equal(t, uint(20), a.ContainerID)
	}
}

func TestDistributeInsufficientCapacity(t *testing.T) {
	candidates := []uint{1, 2, 3}
	containers := []Container{{ID: 10, Free: 2}}

	assignments, err := Distribute(candidates, containers)
	assert.ErrorIs(t, err, ErrInsufficientCapacity)
	assert.Nil(t, assignments)
}

func TestDistributeRoomsHonorsAgeGap(t *testing.T) {
	candidates := []domain.Registration{
		regAged(1, domain.GenderMale, 12),
		regAged(2, domain.GenderMale, 13),
		regAged(3, domain.GenderMale, 19),
	}
	rooms := []domain.Room{
		{ID: 10, Capacity: 3, Occupancy: 1, OccupantAges: []int{12}},
		{ID: 20, Capacity: 3, Occupancy: 1, OccupantAges: []int{18}},
	}

	assignments, unplaced := distributeRooms(candidates, rooms, 3, groupingNow)

	assert.Empty(t, unplaced)
	require.Len(t, assignments, 3)

	byCandidate := map[uint]uint{}
	for _, a := range assignments {
		byCandidate[a.RegistrationID] = a.ContainerID
	}

	assert.Equal(t, uint(10), byCandidate[1])
	assert.Equal(t, uint(10), byCandidate[2])
	assert.Equal(t, uint(20), byCandidate[3])
}

func TestDistributeRoomsReportsUnplaced(t *testing.T) {
	candidates := []domain.Registration{
		regAged(1, domain.GenderMale, 12),
		regAged(2, domain.GenderMale, 30),
	}
	rooms := []domain.Room{
		{ID: 10, Capacity: 4, Occupancy: 1, OccupantAges: []int{12}},
	}

	assignments, unplaced := distributeRooms(candidates, rooms, 3, groupingNow)

	require.Len(t, assignments, 1)
	assert.Equal(t, uint(1), assignments[0].RegistrationID)
	assert.Equal(t, []uint{2}, unplaced)
}

func TestDistributeRoomsEvolvingComposition(t *testing.T) {
	// The first arrival into the empty room constrains who can join later.
	candidates := []domain.Registration{
		regAged(1, domain.GenderMale, 12),
	}
	rooms := []domain.Room{{ID: 10, Capacity: 4}}

	assignments, unplaced := distributeRooms(candidates, rooms, 3, groupingNow)
	require.Len(t, assignments, 1)
	assert.Empty(t, unplaced)

	// Room now holds a 12-year-old; a 20-year-old no longer fits.
	rooms[0].OccupantAges = []int{12}
	rooms[0].Occupancy = 1

	_, unplaced = distributeRooms([]domain.Registration{regAged(2, domain.GenderMale, 20)}, rooms, 3, groupingNow)
	assert.Equal(t, []uint{2}, unplaced)
}

func TestDistributeRoomsNoRooms(t *testing.T) {
	candidates := []domain.Registration{regAged(1, domain.GenderMale, 12)}

	assignments, unplaced := distributeRooms(candidates, nil, 3, groupingNow)
	assert.Empty(t, assignments)
	assert.Equal(t, []uint{1}, unplaced)
}
