package orch

import (
	"sync"

	"github.com/dkeye/callrelay/internal/app"
	"github.com/dkeye/callrelay/internal/core"
	"github.com/dkeye/callrelay/internal/domain"
	"github.com/dkeye/callrelay/internal/wire"
	"github.com/rs/zerolog/log"
)

// Orchestrator owns room membership and signal fan-out.
// Join and Leave hold mu exclusively; Relay holds it shared, so a relay
// never observes a member halfway through insertion or removal.
type Orchestrator struct {
	Registry  *app.Registry
	Rooms     core.RoomManager
	Policy    app.Policy
	Presence  app.PresenceSink
	Lifecycle app.LifecycleMode

	mu sync.RWMutex
}

// Dispatch routes a decoded signal to the operation of the same kind.
func (o *Orchestrator) Dispatch(sid core.SessionID, sig domain.Signal) {
	switch {
	case sig.Kind == domain.KindJoin:
		o.Join(sid, sig.Room)
	case sig.Kind.Relayed():
		o.Relay(sid, sig)
	default:
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("kind", string(sig.Kind)).Msg("dispatch: unhandled kind")
	}
}

func (o *Orchestrator) Relay(sid core.SessionID, sig domain.Signal) {
	o.mu.RLock()
	roomID, res, ok := o.relayLocked(sid, sig)
	o.mu.RUnlock()
	if ok {
		o.applyPolicy(roomID, res)
	}
}

func (o *Orchestrator) relayLocked(sid core.SessionID, sig domain.Signal) (domain.RoomID, core.PublishResult, bool) {
	logger := log.With().Str("module", "orch").Str("sid", string(sid)).Str("kind", string(sig.Kind)).Logger()

	roomID, _, ok := o.Registry.RoomOf(sid)
	if !ok {
		logger.Debug().Msg("relay: sender has no room, dropped")
		return "", core.PublishResult{}, false
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		logger.Debug().Str("room", string(roomID)).Msg("relay: room gone, dropped")
		return "", core.PublishResult{}, false
	}
	if sig.Room != "" && sig.Room != roomID {
		logger.Debug().Str("room", string(roomID)).Str("claimed_room", string(sig.Room)).Msg("relay: routed by membership")
	}

	prev, next, inPhase := room.Advance(sig.Kind)
	if !inPhase {
		if o.Lifecycle == app.LifecycleStrict && sig.Kind.Negotiation() {
			logger.Info().Str("room", string(roomID)).Str("phase", string(prev)).Msg("relay: out of phase, dropped")
			return "", core.PublishResult{}, false
		}
		logger.Debug().Str("room", string(roomID)).Str("phase", string(prev)).Msg("relay: out of phase")
	}
	if prev != next {
		logger.Info().Str("room", string(roomID)).Str("from", string(prev)).Str("to", string(next)).Msg("call phase")
	}

	frame := wire.Encode(sig.Kind.Outbound(), roomID, sig.Blob)
	return roomID, room.Broadcast(sid, core.Frame(frame)), true
}

// applyPolicy runs outside mu because kicking takes it exclusively.
func (o *Orchestrator) applyPolicy(roomID domain.RoomID, res core.PublishResult) {
	if o.Policy == nil || len(res.Dropped) == 0 {
		return
	}
	room, ok := o.Rooms.Get(roomID)
	if !ok {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(room, slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow)).Str("room", string(roomID)).Msg("kicking slow member")
			o.KickBySID(slow)
		case app.DropFrame, app.NoAction:
			log.Warn().Str("module", "orch").Str("sid", string(slow)).Str("room", string(roomID)).Msg("frame dropped on backpressure")
		}
	}
}

func (o *Orchestrator) presence() app.PresenceSink {
	if o.Presence == nil {
		return app.NopPresence{}
	}
	return o.Presence
}
