package response

import "github.com/vietanh2810/campmeet-api/internal/service"

// PollResponse is the degraded-mode snapshot for clients without a
// websocket connection.
type PollResponse struct {
	Stats           service.DashboardStats `json:"stats"`
	ConnectionCount int                    `json:"connection_count"`
	ServerTime      string                 `json:"server_time"`
}
