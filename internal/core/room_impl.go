package core

import (
	"errors"
	"sync"

	"github.com/dkeye/callrelay/internal/domain"
	"github.com/rs/zerolog/log"
)

// roomImpl is a threadsafe in-memory room.
// It never closes adapter-owned resources.
type roomImpl struct {
	room  *domain.Room
	mu    sync.RWMutex
	bySID map[SessionID]MemberSession
	phase domain.CallPhase
}

func NewRoomService(room *domain.Room) RoomService {
	return &roomImpl{
		room:  room,
		bySID: make(map[SessionID]MemberSession),
		phase: domain.PhaseIdle,
	}
}

func (r *roomImpl) Room() *domain.Room { return r.room }

func (r *roomImpl) MemberCount() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.bySID)
}

func (r *roomImpl) AddMember(sid SessionID, ms MemberSession) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.bySID[sid] = ms
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Msg("member added")
}

func (r *roomImpl) RemoveMember(sid SessionID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.bySID[sid]; !ok {
		return false
	}
	delete(r.bySID, sid)
	log.Debug().Str("module", "core.room").Str("room", string(r.room.ID)).Str("sid", string(sid)).Msg("member removed")
	return true
}

func (r *roomImpl) Broadcast(from SessionID, data Frame) PublishResult {
	r.mu.RLock()
	defer r.mu.RUnlock()
	res := PublishResult{}
	for sid, m := range r.bySID {
		if sid == from {
			continue
		}
		if err := m.Signal().TrySend(data); err != nil {
			if errors.Is(err, ErrBackpressure) {
				res.Dropped = append(res.Dropped, sid)
			}
			continue
		}
		res.SendTo++
	}
	log.Debug().Str("module", "core.room").Str("from", string(from)).Int("sent_to", res.SendTo).Int("dropped", len(res.Dropped)).Msg("broadcast result")
	return res
}

func (r *roomImpl) MembersSnapshot() []MemberDTO {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]MemberDTO, 0, len(r.bySID))
	for sid, ms := range r.bySID {
		m := ms.Meta()
		out = append(out, MemberDTO{SID: sid, ClientToken: m.ClientToken, ConnectedAt: m.ConnectedAt})
	}
	return out
}

func (r *roomImpl) Phase() domain.CallPhase {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.phase
}

func (r *roomImpl) Advance(k domain.Kind) (domain.CallPhase, domain.CallPhase, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	prev := r.phase
	next, ok := prev.Next(k)
	r.phase = next
	return prev, next, ok
}

func (r *roomImpl) EndCall() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.phase != domain.PhaseRinging && r.phase != domain.PhaseActive {
		return false
	}
	r.phase = domain.PhaseEnded
	return true
}
