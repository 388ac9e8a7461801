package orch

import (
	"github.com/dkeye/callrelay/internal/core"
	"github.com/dkeye/callrelay/internal/domain"
	"github.com/dkeye/callrelay/internal/wire"
	"github.com/rs/zerolog/log"
)

// Join moves sid into roomID, leaving its previous room first.
// Joining the current room again changes nothing.
// Presence events are emitted under mu so sinks see them in commit order.
func (o *Orchestrator) Join(sid core.SessionID, roomID domain.RoomID) bool {
	o.mu.Lock()
	from, left, res := o.leftRoom(sid, roomID)
	joined := false
	if from != roomID {
		if session, ok := o.Registry.GetSession(sid); ok {
			room := o.Rooms.GetOrCreate(roomID)
			room.AddMember(sid, session)
			o.Registry.UpdateRoom(sid, roomID)
			joined = true
			o.presence().MemberJoined(string(roomID), string(sid))
		}
	}
	o.mu.Unlock()

	if left {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("from_room", string(from)).Msg("left room")
		o.applyPolicy(from, res)
	}
	if joined {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("added to room")
	}
	return joined || from == roomID
}

// leftRoom removes sid from its current room unless that room is keep.
func (o *Orchestrator) leftRoom(sid core.SessionID, keep domain.RoomID) (domain.RoomID, bool, core.PublishResult) {
	current, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		return "", false, core.PublishResult{}
	}
	if current == keep {
		return current, false, core.PublishResult{}
	}
	left, res := o.removeLocked(sid, current)
	return current, left, res
}

// Leave removes sid from its room. It is idempotent.
func (o *Orchestrator) Leave(sid core.SessionID) {
	o.mu.Lock()
	roomID, _, ok := o.Registry.RoomOf(sid)
	var (
		left bool
		res  core.PublishResult
	)
	if ok {
		left, res = o.removeLocked(sid, roomID)
	}
	o.mu.Unlock()

	if left {
		log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(roomID)).Msg("left room")
		o.applyPolicy(roomID, res)
	}
}

// removeLocked must run with mu held exclusively. The returned result is
// the departure broadcast, if any, for applyPolicy once mu is released.
func (o *Orchestrator) removeLocked(sid core.SessionID, roomID domain.RoomID) (bool, core.PublishResult) {
	o.Registry.RemoveRoom(sid)
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return false, core.PublishResult{}
	}
	removed := room.RemoveMember(sid)
	if removed {
		o.presence().MemberLeft(string(roomID), string(sid))
	}
	if room.MemberCount() == 0 {
		o.Rooms.StopRoom(roomID)
		return removed, core.PublishResult{}
	}
	if removed && room.EndCall() {
		log.Info().Str("module", "orch").Str("room", string(roomID)).Str("sid", string(sid)).Msg("call ended by departure")
		return true, room.Broadcast(sid, core.Frame(wire.Encode(domain.KindCallEnd.Outbound(), roomID, nil)))
	}
	return removed, core.PublishResult{}
}

// KickBySID removes sid from its room and cancels its connection.
func (o *Orchestrator) KickBySID(sid core.SessionID) {
	o.Leave(sid)
	o.Registry.Cancel(sid)
}

// OnDisconnect is the transport's disconnect hook.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	o.Leave(sid)
	o.Registry.Unbind(sid)
}

// Shutdown cancels every live session.
func (o *Orchestrator) Shutdown() int {
	return o.Registry.CancelAll()
}
