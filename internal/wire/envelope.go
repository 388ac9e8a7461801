// Package wire converts between WebSocket text frames and typed signals.
//
// Inbound frames are validated once here; the rest of the relay only sees
// domain.Signal values. Negotiation blobs are carried as json.RawMessage and
// written back out verbatim.
package wire

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/dkeye/callrelay/internal/domain"
)

var (
	ErrBadFrame    = errors.New("bad frame")
	ErrUnknownKind = errors.New("unknown signal type")
)

// Control is a connection-level request that never reaches a room.
type Control string

const (
	ControlNone  Control = ""
	ControlPing  Control = "ping"
	ControlLeave Control = "leave"
)

// Inbound is one decoded client frame: a control request or a room signal.
type Inbound struct {
	Control Control
	Signal  domain.Signal
}

var kindAliases = map[string]domain.Kind{
	"join":                 domain.KindJoin,
	"join_room":            domain.KindJoin,
	"call_start":           domain.KindCallStart,
	"start_call":           domain.KindCallStart,
	"offer":                domain.KindOffer,
	"webrtc_offer":         domain.KindOffer,
	"answer":               domain.KindAnswer,
	"webrtc_answer":        domain.KindAnswer,
	"ice_candidate":        domain.KindICECandidate,
	"webrtc_ice_candidate": domain.KindICECandidate,
	"end_call":             domain.KindCallEnd,
	"call_end":             domain.KindCallEnd,
}

type envelope struct {
	Type      string          `json:"type"`
	Room      string          `json:"room"`
	RoomID    string          `json:"roomId"`
	Payload   json.RawMessage `json:"payload"`
	SDP       json.RawMessage `json:"sdp"`
	Candidate json.RawMessage `json:"candidate"`
}

// Decode parses one client frame. Legacy shapes are accepted: the room may
// arrive as "roomId" or, for join and lifecycle kinds, as a bare string
// payload; the blob may arrive as "sdp" or "candidate".
func Decode(data []byte) (Inbound, error) {
	// Blobs are forwarded as text frames, which peers reject unless they are UTF-8.
	if !utf8.Valid(data) {
		return Inbound{}, fmt.Errorf("%w: invalid utf-8", ErrBadFrame)
	}
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
	}

	switch Control(env.Type) {
	case ControlPing, ControlLeave:
		return Inbound{Control: Control(env.Type)}, nil
	}

	kind, ok := kindAliases[env.Type]
	if !ok {
		return Inbound{}, fmt.Errorf("%w: %q", ErrUnknownKind, env.Type)
	}

	sig := domain.Signal{Kind: kind}
	payload := nonNull(env.Payload)

	room := env.Room
	if room == "" {
		room = env.RoomID
	}
	if room == "" && !kind.Negotiation() && isJSONString(payload) {
		if err := json.Unmarshal(payload, &room); err != nil {
			return Inbound{}, fmt.Errorf("%w: room payload: %v", ErrBadFrame, err)
		}
		payload = nil
	}
	sig.Room = domain.RoomID(room)

	switch {
	case payload != nil:
		sig.Blob = payload
	case nonNull(env.SDP) != nil:
		sig.Blob = env.SDP
	case nonNull(env.Candidate) != nil:
		sig.Blob = env.Candidate
	}

	if kind == domain.KindJoin || sig.Room != "" {
		if err := domain.ValidateRoomID(sig.Room); err != nil {
			return Inbound{}, fmt.Errorf("%w: %v", ErrBadFrame, err)
		}
	}
	return Inbound{Signal: sig}, nil
}

func nonNull(raw json.RawMessage) json.RawMessage {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil
	}
	return raw
}

func isJSONString(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '"'
}
