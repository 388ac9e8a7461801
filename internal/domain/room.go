package domain

type RoomID string

// CallPhase is the lifecycle state of the call inside one room.
type CallPhase string

const (
	PhaseIdle    CallPhase = "idle"
	PhaseRinging CallPhase = "ringing"
	PhaseActive  CallPhase = "active"
	PhaseEnded   CallPhase = "ended"
)

type Room struct {
	ID RoomID
}

// Next returns the phase a room moves to after a relayed signal of kind k
// and whether k is in phase for the current state.
func (p CallPhase) Next(k Kind) (CallPhase, bool) {
	switch k {
	case KindCallStart:
		return PhaseRinging, true
	case KindCallEnd:
		return PhaseEnded, p == PhaseRinging || p == PhaseActive
	case KindAnswer:
		switch p {
		case PhaseRinging, PhaseActive:
			return PhaseActive, true
		}
		return p, false
	case KindOffer, KindICECandidate:
		return p, p == PhaseRinging || p == PhaseActive
	}
	return p, true
}
