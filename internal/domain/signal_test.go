package domain

import (
	"strings"
	"testing"
)

func TestOutbound(t *testing.T) {
	cases := map[Kind]string{
		KindCallStart:    "incoming_call",
		KindOffer:        "offer",
		KindAnswer:       "answer",
		KindICECandidate: "ice_candidate",
		KindCallEnd:      "call_ended",
	}
	for k, want := range cases {
		if got := k.Outbound(); got != want {
			t.Fatalf("%s.Outbound()=%q, want %q", k, got, want)
		}
		if !k.Relayed() {
			t.Fatalf("%s.Relayed()=false", k)
		}
	}
	if KindJoin.Relayed() {
		t.Fatalf("join must not be relayed")
	}
}

func TestValidateRoomID(t *testing.T) {
	if err := ValidateRoomID(""); err != ErrMissingRoom {
		t.Fatalf("empty: err=%v", err)
	}
	if err := ValidateRoomID(RoomID(strings.Repeat("x", MaxRoomIDLen+1))); err != ErrRoomTooLong {
		t.Fatalf("long: err=%v", err)
	}
	if err := ValidateRoomID("room-1"); err != nil {
		t.Fatalf("valid: err=%v", err)
	}
}

func TestCallEndOutOfPhase(t *testing.T) {
	next, ok := PhaseIdle.Next(KindCallEnd)
	if next != PhaseEnded || ok {
		t.Fatalf("idle+call_end=(%s, %v), want (ended, false)", next, ok)
	}
}
