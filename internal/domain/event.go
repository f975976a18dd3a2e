package domain

import "time"

// AttendanceEventType tags the ephemeral events pushed to connected
// dashboards. Events are never persisted; a client that was not connected
// when an event fired simply never sees it.
type AttendanceEventType string

const (
	EventVerification AttendanceEventType = "verification"
	EventStatusChange AttendanceEventType = "status_change"
	EventNewScan      AttendanceEventType = "new_scan"
	EventConnected    AttendanceEventType = "connected"
	EventHeartbeat    AttendanceEventType = "heartbeat"
)

type AttendanceEvent struct {
	Type           AttendanceEventType `json:"type"`
	RegistrationID uint                `json:"registration_id,omitempty"`
	FullName       string              `json:"full_name,omitempty"`
	Status         string              `json:"status,omitempty"`
	ScannerName    string              `json:"scanner_name,omitempty"`
	RoomName       *string             `json:"room_name,omitempty"`
	PlatoonName    *string             `json:"platoon_name,omitempty"`
	Timestamp      time.Time           `json:"timestamp"`
}

func NewVerificationEvent(reg Registration, scannerName string) AttendanceEvent {
	return AttendanceEvent{
		Type:           EventVerification,
		RegistrationID: reg.ID,
		FullName:       reg.FullName,
		Status:         "verified",
		ScannerName:    scannerName,
		Timestamp:      time.Now(),
	}
}

func NewStatusChangeEvent(reg Registration, status string) AttendanceEvent {
	return AttendanceEvent{
		Type:           EventStatusChange,
		RegistrationID: reg.ID,
		FullName:       reg.FullName,
		Status:         status,
		Timestamp:      time.Now(),
	}
}

// NewAllocationEvent reports a room or platoon (de)allocation. A nil name
// signals "now unallocated" to the dashboards.
func NewAllocationEvent(reg Registration, roomName, platoonName *string, status string) AttendanceEvent {
	return AttendanceEvent{
		Type:           EventStatusChange,
		RegistrationID: reg.ID,
		FullName:       reg.FullName,
		Status:         status,
		RoomName:       roomName,
		PlatoonName:    platoonName,
		Timestamp:      time.Now(),
	}
}

func NewHeartbeatEvent() AttendanceEvent {
	return AttendanceEvent{
		Type:      EventHeartbeat,
		Timestamp: time.Now(),
	}
}

func NewConnectedEvent() AttendanceEvent {
	return AttendanceEvent{
		Type:      EventConnected,
		Status:    "connected",
		Timestamp: time.Now(),
	}
}
