package app

import (
	"fmt"

	"github.com/dkeye/callrelay/internal/core"
)

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
	DropFrame
)

type Policy interface {
	OnBackPressure(room core.RoomService, sid core.SessionID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(room core.RoomService, sid core.SessionID) BackpressureAction {
	return p.Action
}

// PolicyFromName maps the backpressure_policy config value to a Policy.
func PolicyFromName(name string) (Policy, error) {
	switch name {
	case "", "kick":
		return SimplePolicy{Action: KickMember}, nil
	case "drop":
		return SimplePolicy{Action: DropFrame}, nil
	}
	return nil, fmt.Errorf("unknown backpressure policy %q", name)
}

// LifecycleMode selects how out-of-phase negotiation signals are treated.
type LifecycleMode string

const (
	LifecyclePermissive LifecycleMode = "permissive"
	LifecycleStrict     LifecycleMode = "strict"
)

func ParseLifecycleMode(s string) (LifecycleMode, error) {
	switch LifecycleMode(s) {
	case "", LifecyclePermissive:
		return LifecyclePermissive, nil
	case LifecycleStrict:
		return LifecycleStrict, nil
	}
	return "", fmt.Errorf("unknown lifecycle mode %q", s)
}

// PresenceSink observes membership changes as they are committed.
// It is called with the orchestrator lock held, so implementations must not
// block or call back into the orchestrator.
type PresenceSink interface {
	MemberJoined(room string, sid string)
	MemberLeft(room string, sid string)
}

type NopPresence struct{}

func (NopPresence) MemberJoined(string, string) {}
func (NopPresence) MemberLeft(string, string)   {}
