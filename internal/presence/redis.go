// Package presence mirrors live room occupancy into Redis so operators can
// inspect it. The relay never reads it back; rooms do not survive restarts.
package presence

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const applyTimeout = 2 * time.Second

type Config struct {
	Addr     string
	Password string
	DB       int
}

// setStore is the subset of redis.Cmdable the mirror writes through.
type setStore interface {
	SAdd(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	SRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd
	Expire(ctx context.Context, key string, expiration time.Duration) *redis.BoolCmd
}

type op int

const (
	opJoin op = iota
	opLeave
)

type event struct {
	op   op
	room string
	sid  string
}

// Mirror applies membership events in the order the orchestrator committed them.
// A single worker drains the queue; when the queue is full events are dropped.
type Mirror struct {
	store  setStore
	ttl    time.Duration
	events chan event
}

// Connect dials Redis and verifies the connection.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return client, nil
}

func NewMirror(store setStore, ttl time.Duration, buffer int) *Mirror {
	if buffer <= 0 {
		buffer = 256
	}
	return &Mirror{store: store, ttl: ttl, events: make(chan event, buffer)}
}

func RoomKey(room string) string {
	return "callrelay:room:" + room + ":members"
}

func (m *Mirror) MemberJoined(room, sid string) { m.enqueue(event{op: opJoin, room: room, sid: sid}) }
func (m *Mirror) MemberLeft(room, sid string)   { m.enqueue(event{op: opLeave, room: room, sid: sid}) }

func (m *Mirror) enqueue(ev event) {
	select {
	case m.events <- ev:
	default:
		log.Warn().Str("module", "presence").Str("room", ev.room).Str("sid", ev.sid).Msg("presence queue full, event dropped")
	}
}

// Run drains events until ctx is done.
func (m *Mirror) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			log.Info().Str("module", "presence").Msg("presence mirror stopped")
			return
		case ev := <-m.events:
			if err := m.apply(ctx, ev); err != nil {
				log.Error().Err(err).Str("module", "presence").Str("room", ev.room).Msg("presence write failed")
			}
		}
	}
}

func (m *Mirror) apply(ctx context.Context, ev event) error {
	ctx, cancel := context.WithTimeout(ctx, applyTimeout)
	defer cancel()

	key := RoomKey(ev.room)
	switch ev.op {
	case opJoin:
		if err := m.store.SAdd(ctx, key, ev.sid).Err(); err != nil {
			return fmt.Errorf("sadd %s: %w", key, err)
		}
		if m.ttl > 0 {
			if err := m.store.Expire(ctx, key, m.ttl).Err(); err != nil {
				return fmt.Errorf("expire %s: %w", key, err)
			}
		}
	case opLeave:
		if err := m.store.SRem(ctx, key, ev.sid).Err(); err != nil {
			return fmt.Errorf("srem %s: %w", key, err)
		}
	}
	return nil
}
