package domain

import (
	"encoding/json"
	"errors"
)

var (
	ErrMissingRoom = errors.New("missing room id")
	ErrRoomTooLong = errors.New("room id too long")
)

// Kind is an inbound signal kind after alias resolution.
type Kind string

const (
	KindJoin         Kind = "join"
	KindCallStart    Kind = "call_start"
	KindOffer        Kind = "offer"
	KindAnswer       Kind = "answer"
	KindICECandidate Kind = "ice_candidate"
	KindCallEnd      Kind = "call_end"
)

// Outbound returns the frame type recipients see for a relayed kind.
func (k Kind) Outbound() string {
	switch k {
	case KindCallStart:
		return "incoming_call"
	case KindCallEnd:
		return "call_ended"
	}
	return string(k)
}

// Relayed reports whether k is fanned out to room mates.
func (k Kind) Relayed() bool {
	switch k {
	case KindCallStart, KindOffer, KindAnswer, KindICECandidate, KindCallEnd:
		return true
	}
	return false
}

// Negotiation reports whether k carries session negotiation data.
func (k Kind) Negotiation() bool {
	return k == KindOffer || k == KindAnswer || k == KindICECandidate
}

// Signal is a decoded, validated inbound message.
// Blob is forwarded verbatim and never inspected.
type Signal struct {
	Kind Kind
	Room RoomID
	Blob json.RawMessage
}

func ValidateRoomID(id RoomID) error {
	if id == "" {
		return ErrMissingRoom
	}
	if len(id) > MaxRoomIDLen {
		return ErrRoomTooLong
	}
	return nil
}
