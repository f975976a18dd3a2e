package service

import (
	"errors"
	"math/rand"
	"sort"
	"time"

	"github.com/vietanh2810/campmeet-api/internal/domain"
)

var ErrInsufficientCapacity = errors.New("insufficient capacity")

// AgeGroup is one bucket of the grouping step: verified, unallocated
// registrants of one gender whose ages fall in [BandStart, BandStart+width).
type AgeGroup struct {
	Gender    domain.Gender         `json:"gender"`
	BandStart int                   `json:"band_start"`
	BandEnd   int                   `json:"band_end"`
	Members   []domain.Registration `json:"members"`
}

// GroupByAgeBand partitions registrants by gender and fixed-width age band.
// Registrants without an allocatable gender are ignored. The result is
// ordered by gender, then band.
func GroupByAgeBand(regs []domain.Registration, ageRangeYears int, now time.Time) []AgeGroup {
	type key struct {
		gender domain.Gender
		band   int
	}

	buckets := make(map[key]*AgeGroup)
	order := make([]key, 0)

	for _, reg := range regs {
		if !reg.Allocatable() {
			continue
		}

		band := (reg.Age(now) / ageRangeYears) * ageRangeYears
		k := key{gender: reg.Gender, band: band}

		group, ok := buckets[k]
		if !ok {
			group = &AgeGroup{
				Gender:    reg.Gender,
				BandStart: band,
				BandEnd:   band + ageRangeYears - 1,
			}
			buckets[k] = group
			order = append(order, k)
		}

		group.Members = append(group.Members, reg)
	}

	sort.Slice(order, func(i, j int) bool {
		if order[i].gender != order[j].gender {
			return order[i].gender < order[j].gender
		}

		return order[i].band < order[j].band
	})

	groups := make([]AgeGroup, 0, len(order))
	for _, k := range order {
		groups = append(groups, *buckets[k])
	}

	return groups
}

// RoomSuitable scores a room against a set of candidate ages. An empty room
// is suitable unconditionally; otherwise the span of existing and candidate
// ages together must stay within maxAgeGap. This is deliberately greedy and
// order-dependent: a room accepted while empty constrains who can join later.
func RoomSuitable(occupantAges, candidateAges []int, maxAgeGap int) bool {
	if len(occupantAges) == 0 {
		return true
	}
	if len(candidateAges) == 0 {
		return true
	}

	min, max := occupantAges[0], occupantAges[0]
	for _, age := range occupantAges {
		if age < min {
			min = age
		}
		if age > max {
			max = age
		}
	}
	for _, age := range candidateAges {
		if age < min {
			min = age
		}
		if age > max {
			max = age
		}
	}

	return max-min <= maxAgeGap
}

// UsableSpace is the number of group members a room can actually take:
// free beds clipped to the remaining group size.
func UsableSpace(room domain.Room, remainingGroupSize int) int {
	space := room.AvailableSpace()
	if space > remainingGroupSize {
		return remainingGroupSize
	}

	return space
}

// Container is a capacity-bounded allocation target as the distributor sees
// it: an ID and its free space.
type Container struct {
	ID   uint
	Free int
}

// Assignment binds one candidate to one container.
type Assignment struct {
	RegistrationID uint
	ContainerID    uint
}

// Distribute spreads candidates across containers round-robin. Candidates
// are shuffled first so the walk order does not cluster, e.g.,
// alphabetically adjacent names into the same container. It rejects with
// ErrInsufficientCapacity before assigning anything if the containers
// cannot hold everyone; otherwise every candidate is placed.
func Distribute(candidateIDs []uint, containers []Container) ([]Assignment, error) {
	totalFree := 0
	for _, c := range containers {
		if c.Free > 0 {
			totalFree += c.Free
		}
	}
	if totalFree < len(candidateIDs) {
		return nil, ErrInsufficientCapacity
	}

	shuffled := make([]uint, len(candidateIDs))
	copy(shuffled, candidateIDs)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	remaining := make([]int, len(containers))
	for i, c := range containers {
		remaining[i] = c.Free
	}

	assignments := make([]Assignment, 0, len(shuffled))
	target := 0
	for _, id := range shuffled {
		for remaining[target%len(containers)] <= 0 {
			target++
		}

		idx := target % len(containers)
		assignments = append(assignments, Assignment{
			RegistrationID: id,
			ContainerID:    containers[idx].ID,
		})
		remaining[idx]--
		target++
	}

	return assignments, nil
}

// distributeRooms walks shuffled candidates round-robin across rooms,
// skipping rooms that are full or would break the age-gap constraint as
// their composition evolves. Gender is assumed to be pre-checked. It
// returns the assignments plus the candidates no room could take.
func distributeRooms(candidates []domain.Registration, rooms []domain.Room, maxAgeGap int, now time.Time) (assignments []Assignment, unplaced []uint) {
	shuffled := make([]domain.Registration, len(candidates))
	copy(shuffled, candidates)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})

	type roomState struct {
		id   uint
		free int
		ages []int
	}

	states := make([]*roomState, 0, len(rooms))
	for _, room := range rooms {
		states = append(states, &roomState{
			id:   room.ID,
			free: room.AvailableSpace(),
			ages: append([]int(nil), room.OccupantAges...),
		})
	}

	start := 0
	for _, candidate := range shuffled {
		age := candidate.Age(now)

		placed := false
		for offset := 0; offset < len(states); offset++ {
			state := states[(start+offset)%len(states)]
			if state.free <= 0 {
				continue
			}
			if !RoomSuitable(state.ages, []int{age}, maxAgeGap) {
				continue
			}

			assignments = append(assignments, Assignment{
				RegistrationID: candidate.ID,
				ContainerID:    state.id,
			})
			state.free--
			state.ages = append(state.ages, age)
			start = (start + offset + 1) % len(states)
			placed = true
			break
		}

		if !placed {
			unplaced = append(unplaced, candidate.ID)
		}
	}

	return assignments, unplaced
}
