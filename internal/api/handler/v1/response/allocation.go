package response

import "github.com/vietanh2810/campmeet-api/internal/service"

type AllocationResponse struct {
	AllocatedCount  int                        `json:"allocated_count"`
	UnassignedCount int                        `json:"unassigned_count"`
	Allocations     []service.AllocationRecord `json:"allocations"`
}

func NewAllocationResponse(result service.AllocationResult) AllocationResponse {
	allocations := result.Allocations
	if allocations == nil {
		allocations = []service.AllocationRecord{}
	}

	return AllocationResponse{
		AllocatedCount:  result.AllocatedCount,
		UnassignedCount: result.UnassignedCount,
		Allocations:     allocations,
	}
}

type GroupingResponse struct {
	Groups []service.AgeGroup `json:"groups"`
}

type RemovalResponse struct {
	Message      string `json:"message"`
	RemovedCount int    `json:"removed_count"`
}
