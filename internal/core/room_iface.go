package core

import (
	"time"

	"github.com/dkeye/callrelay/internal/domain"
)

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	SID         SessionID `json:"sid"`
	ClientToken string    `json:"client"`
	ConnectedAt time.Time `json:"connected_at"`
}

// RoomService is the core-facing API of a room.
// It owns the membership set and the call phase but never touches transport resources.
type RoomService interface {
	Room() *domain.Room
	MemberCount() int
	MembersSnapshot() []MemberDTO

	AddMember(sid SessionID, ms MemberSession)
	RemoveMember(sid SessionID) bool
	Broadcast(from SessionID, data Frame) PublishResult

	Phase() domain.CallPhase
	// Advance applies a relayed kind to the call phase. When the kind is
	// out of phase the phase is left as Next reports it.
	Advance(k domain.Kind) (prev, next domain.CallPhase, inPhase bool)
	// EndCall moves a ringing or active call to ended.
	EndCall() bool
}

type RoomInfo struct {
	ID          domain.RoomID    `json:"id"`
	MemberCount int              `json:"client_count"`
	Phase       domain.CallPhase `json:"phase"`
}

type RoomManager interface {
	Get(id domain.RoomID) (RoomService, bool)
	GetOrCreate(id domain.RoomID) RoomService
	List() []RoomInfo
	// StopRoom deletes the room only while it is empty.
	StopRoom(id domain.RoomID) bool
}
