package presence

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

type call struct {
	cmd string
	key string
	arg string
}

type fakeStore struct {
	mu    sync.Mutex
	calls []call
	err   error
	done  chan struct{}
}

func newFakeStore() *fakeStore {
	return &fakeStore{done: make(chan struct{}, 64)}
}

func (f *fakeStore) record(c call) {
	f.mu.Lock()
	f.calls = append(f.calls, c)
	f.mu.Unlock()
	f.done <- struct{}{}
}

func (f *fakeStore) SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	f.record(call{"sadd", key, members[0].(string)})
	cmd := redis.NewIntCmd(ctx)
	if f.err != nil {
		cmd.SetErr(f.err)
	} else {
		cmd.SetVal(1)
	}
	return cmd
}

func (f *fakeStore) SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	f.record(call{"srem", key, members[0].(string)})
	cmd := redis.NewIntCmd(ctx)
	cmd.SetVal(1)
	return cmd
}

func (f *fakeStore) Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd {
	f.record(call{"expire", key, expiration.String()})
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeStore) snapshot() []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]call(nil), f.calls...)
}

func (f *fakeStore) wait(t *testing.T, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		select {
		case <-f.done:
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out after %d of %d store calls", i, n)
		}
	}
}

func TestRoomKey(t *testing.T) {
	if got := RoomKey("r1"); got != "callrelay:room:r1:members" {
		t.Fatalf("RoomKey=%q", got)
	}
}

func TestMirrorAppliesInOrder(t *testing.T) {
	store := newFakeStore()
	m := NewMirror(store, time.Hour, 8)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go m.Run(ctx)

	m.MemberJoined("r1", "a")
	m.MemberLeft("r1", "a")
	m.MemberJoined("r2", "a")
	store.wait(t, 5)

	want := []call{
		{"sadd", "callrelay:room:r1:members", "a"},
		{"expire", "callrelay:room:r1:members", "1h0m0s"},
		{"srem", "callrelay:room:r1:members", "a"},
		{"sadd", "callrelay:room:r2:members", "a"},
		{"expire", "callrelay:room:r2:members", "1h0m0s"},
	}
	got := store.snapshot()
	if len(got) != len(want) {
		t.Fatalf("calls=%v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("call %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestMirrorSkipsExpireWithoutTTL(t *testing.T) {
	store := newFakeStore()
	m := NewMirror(store, 0, 8)
	if err := m.apply(context.Background(), event{op: opJoin, room: "r1", sid: "a"}); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if got := store.snapshot(); len(got) != 1 || got[0].cmd != "sadd" {
		t.Fatalf("calls=%v", got)
	}
}

func TestMirrorApplyError(t *testing.T) {
	store := newFakeStore()
	store.err = errors.New("connection refused")
	m := NewMirror(store, time.Minute, 8)
	err := m.apply(context.Background(), event{op: opJoin, room: "r1", sid: "a"})
	if err == nil || !errors.Is(err, store.err) {
		t.Fatalf("apply err=%v", err)
	}
	if got := store.snapshot(); len(got) != 1 {
		t.Fatalf("expire ran after a failed sadd: %v", got)
	}
}

func TestMirrorDropsWhenFull(t *testing.T) {
	store := newFakeStore()
	m := NewMirror(store, 0, 1)
	m.MemberJoined("r1", "a")
	m.MemberJoined("r1", "b")
	if got := len(m.events); got != 1 {
		t.Fatalf("queued %d events, want 1", got)
	}
}

func TestMirrorRunStops(t *testing.T) {
	m := NewMirror(newFakeStore(), 0, 0)
	if cap(m.events) != 256 {
		t.Fatalf("default buffer=%d", cap(m.events))
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		m.Run(ctx)
		close(done)
	}()
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatalf("Run did not return after cancel")
	}
}
