package app

import (
	"context"
	"testing"

	"github.com/dkeye/callrelay/internal/core"
	"github.com/dkeye/callrelay/internal/domain"
)

type nopConn struct{}

func (nopConn) TrySend(core.Frame) error { return nil }
func (nopConn) Close()                   {}

func newSession() core.MemberSession {
	return core.NewMemberSession(domain.NewMember("tok", "127.0.0.1:1"), nopConn{})
}

func TestRoomManagerGetOrCreate(t *testing.T) {
	m := NewRoomManager()
	a := m.GetOrCreate("r1")
	b := m.GetOrCreate("r1")
	if a != b {
		t.Fatalf("GetOrCreate returned different rooms for the same id")
	}
	if _, ok := m.Get("r2"); ok {
		t.Fatalf("Get created a room")
	}
	if len(m.List()) != 1 {
		t.Fatalf("List len=%d, want 1", len(m.List()))
	}
}

func TestRoomManagerStopRoomOnlyWhenEmpty(t *testing.T) {
	m := NewRoomManager()
	r := m.GetOrCreate("r1")
	r.AddMember("a", newSession())
	if m.StopRoom("r1") {
		t.Fatalf("StopRoom removed a non-empty room")
	}
	r.RemoveMember("a")
	if !m.StopRoom("r1") {
		t.Fatalf("StopRoom kept an empty room")
	}
	if _, ok := m.Get("r1"); ok {
		t.Fatalf("room still present after StopRoom")
	}
}

func TestRegistryRoomTracking(t *testing.T) {
	r := NewRegistry()
	canceled := false
	r.BindSignal("a", newSession(), func() { canceled = true })

	if _, _, ok := r.RoomOf("a"); ok {
		t.Fatalf("fresh session has a room")
	}
	if !r.UpdateRoom("a", "r1") {
		t.Fatalf("UpdateRoom failed")
	}
	if room, _, ok := r.RoomOf("a"); !ok || room != "r1" {
		t.Fatalf("RoomOf=(%q, %v)", room, ok)
	}
	r.RemoveRoom("a")
	if _, _, ok := r.RoomOf("a"); ok {
		t.Fatalf("RoomOf after RemoveRoom still ok")
	}
	if r.UpdateRoom("missing", "r1") {
		t.Fatalf("UpdateRoom on unknown sid succeeded")
	}

	if !r.Cancel("a") || !canceled {
		t.Fatalf("Cancel did not run the cancel func")
	}
	r.Unbind("a")
	r.Unbind("a")
	if r.Count() != 0 {
		t.Fatalf("Count=%d, want 0", r.Count())
	}
}

func TestRegistryCancelAll(t *testing.T) {
	r := NewRegistry()
	ctx1, cancel1 := context.WithCancel(context.Background())
	ctx2, cancel2 := context.WithCancel(context.Background())
	r.BindSignal("a", newSession(), cancel1)
	r.BindSignal("b", newSession(), cancel2)

	if n := r.CancelAll(); n != 2 {
		t.Fatalf("CancelAll=%d, want 2", n)
	}
	if ctx1.Err() == nil || ctx2.Err() == nil {
		t.Fatalf("contexts not canceled")
	}
}

func TestPolicyFromName(t *testing.T) {
	p, err := PolicyFromName("")
	if err != nil || p.OnBackPressure(nil, "a") != KickMember {
		t.Fatalf("default policy: %v %v", p, err)
	}
	p, err = PolicyFromName("drop")
	if err != nil || p.OnBackPressure(nil, "a") != DropFrame {
		t.Fatalf("drop policy: %v %v", p, err)
	}
	if _, err := PolicyFromName("retry"); err == nil {
		t.Fatalf("unknown policy accepted")
	}
}

func TestParseLifecycleMode(t *testing.T) {
	for in, want := range map[string]LifecycleMode{"": LifecyclePermissive, "permissive": LifecyclePermissive, "strict": LifecycleStrict} {
		got, err := ParseLifecycleMode(in)
		if err != nil || got != want {
			t.Fatalf("ParseLifecycleMode(%q)=(%q, %v), want %q", in, got, err, want)
		}
	}
	if _, err := ParseLifecycleMode("phased"); err == nil {
		t.Fatalf("unknown mode accepted")
	}
}
