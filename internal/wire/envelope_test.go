package wire

import (
	"errors"
	"strings"
	"testing"

	"github.com/dkeye/callrelay/internal/domain"
)

func TestDecode(t *testing.T) {
	cases := []struct {
		name    string
		in      string
		control Control
		kind    domain.Kind
		room    domain.RoomID
		blob    string
	}{
		{"join", `{"type":"join","room":"r1"}`, ControlNone, domain.KindJoin, "r1", ""},
		{"legacy join bare string", `{"type":"join_room","payload":"r1"}`, ControlNone, domain.KindJoin, "r1", ""},
		{"call start with hint", `{"type":"call_start","room":"r1","payload":{"video":"intro.mp4"}}`, ControlNone, domain.KindCallStart, "r1", `{"video":"intro.mp4"}`},
		{"legacy start_call", `{"type":"start_call","payload":"r1"}`, ControlNone, domain.KindCallStart, "r1", ""},
		{"legacy offer", `{"type":"webrtc_offer","roomId":"r1","sdp":{"type":"offer","sdp":"v=0"}}`, ControlNone, domain.KindOffer, "r1", `{"type":"offer","sdp":"v=0"}`},
		{"answer", `{"type":"answer","room":"r1","payload":{"type":"answer","sdp":"v=0"}}`, ControlNone, domain.KindAnswer, "r1", `{"type":"answer","sdp":"v=0"}`},
		{"legacy candidate", `{"type":"webrtc_ice_candidate","roomId":"r1","candidate":{"candidate":"a=1"}}`, ControlNone, domain.KindICECandidate, "r1", `{"candidate":"a=1"}`},
		{"offer string blob stays blob", `{"type":"offer","payload":"v=0"}`, ControlNone, domain.KindOffer, "", `"v=0"`},
		{"end call", `{"type":"end_call","room":"r1"}`, ControlNone, domain.KindCallEnd, "r1", ""},
		{"null payload", `{"type":"end_call","room":"r1","payload":null}`, ControlNone, domain.KindCallEnd, "r1", ""},
		{"ping", `{"type":"ping"}`, ControlPing, "", "", ""},
		{"leave", `{"type":"leave"}`, ControlLeave, "", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := Decode([]byte(tc.in))
			if err != nil {
				t.Fatalf("Decode: %v", err)
			}
			if got.Control != tc.control {
				t.Fatalf("control=%q, want %q", got.Control, tc.control)
			}
			if got.Signal.Kind != tc.kind || got.Signal.Room != tc.room {
				t.Fatalf("signal=(%s, %s), want (%s, %s)", got.Signal.Kind, got.Signal.Room, tc.kind, tc.room)
			}
			if string(got.Signal.Blob) != tc.blob {
				t.Fatalf("blob=%s, want %s", got.Signal.Blob, tc.blob)
			}
		})
	}
}

func TestDecodeRejects(t *testing.T) {
	cases := []struct {
		name string
		in   string
		err  error
	}{
		{"not json", `hello`, ErrBadFrame},
		{"unknown type", `{"type":"rename"}`, ErrUnknownKind},
		{"join without room", `{"type":"join"}`, ErrBadFrame},
		{"invalid utf-8 blob", "{\"type\":\"offer\",\"room\":\"r1\",\"payload\":{\"sdp\":\"v=0\xff\xfe\"}}", ErrBadFrame},
		{"invalid utf-8 room", "{\"type\":\"join\",\"room\":\"r\xc3\"}", ErrBadFrame},
		{"room too long", `{"type":"join","room":"` + strings.Repeat("a", domain.MaxRoomIDLen+1) + `"}`, ErrBadFrame},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := Decode([]byte(tc.in))
			if !errors.Is(err, tc.err) {
				t.Fatalf("err=%v, want %v", err, tc.err)
			}
		})
	}
}

func TestEncodeKeepsBlobBytes(t *testing.T) {
	blob := []byte(`{ "sdp" : "v=0\r\n",  "type":"offer" }`)
	got := string(Encode("offer", "r1", blob))
	want := `{"type":"offer","room":"r1","payload":{ "sdp" : "v=0\r\n",  "type":"offer" }}`
	if got != want {
		t.Fatalf("Encode=%s\nwant   %s", got, want)
	}
}

func TestEncodeOmitsEmptyFields(t *testing.T) {
	if got := string(Encode("pong", "", nil)); got != `{"type":"pong"}` {
		t.Fatalf("Encode=%s", got)
	}
	if got := string(Encode("call_ended", `r"1`, nil)); got != `{"type":"call_ended","room":"r\"1"}` {
		t.Fatalf("Encode=%s", got)
	}
}

func TestDecodeEncodeForwardsVerbatim(t *testing.T) {
	in, err := Decode([]byte(`{"type":"webrtc_answer","roomId":"r1","sdp":{"type":"answer",  "sdp":"x"}}`))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	out := string(Encode(in.Signal.Kind.Outbound(), in.Signal.Room, in.Signal.Blob))
	if out != `{"type":"answer","room":"r1","payload":{"type":"answer",  "sdp":"x"}}` {
		t.Fatalf("out=%s", out)
	}
}
