// Package space provides the host world that trigger scripts act on.
// A State holds the entities of the current room, the player's flags and
// the slot table scripts use to name entities.
//
// State is not safe for concurrent use; callers that share it between
// goroutines must serialize access.
package space

import (
	"log/slog"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/logger"
	"github.com/zurustar/azscript/pkg/vector"
	"github.com/zurustar/azscript/pkg/vm"
)

// State is the mutable world of a single game session.
type State struct {
	Player Player

	log     *slog.Logger
	runOpts []vm.Option

	baddies    *arena[Baddie]
	doors      *arena[Door]
	gravfields *arena[Gravfield]
	nodes      *arena[Node]
	refs       entity.Table

	room  *Room
	frame uint64
	last  Outcome
}

// Option is a functional option for configuring a State.
type Option func(*State)

// WithLogger sets the logger for script outcomes.
func WithLogger(log *slog.Logger) Option {
	return func(s *State) {
		s.log = log
	}
}

// WithRunOptions adds options passed to every vm.Run call.
func WithRunOptions(opts ...vm.Option) Option {
	return func(s *State) {
		s.runOpts = append(s.runOpts, opts...)
	}
}

// New creates an empty State with no room entered.
func New(opts ...Option) *State {
	s := &State{
		log:        logger.GetLogger(),
		baddies:    newArena[Baddie](MaxBaddies),
		doors:      newArena[Door](MaxDoors),
		gravfields: newArena[Gravfield](MaxGravfields),
		nodes:      newArena[Node](MaxNodes),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Refs implements vm.World.
func (s *State) Refs() *entity.Table { return &s.refs }

// TestFlag implements vm.World.
func (s *State) TestFlag(flag int) bool { return s.Player.HasFlag(flag) }

// SetFlag implements vm.World.
func (s *State) SetFlag(flag int) { s.Player.SetFlag(flag) }

// ClearFlag implements vm.World.
func (s *State) ClearFlag(flag int) { s.Player.ClearFlag(flag) }

// SpawnBaddie implements vm.World. It returns false when the room already
// holds MaxBaddies baddies.
func (s *State) SpawnBaddie(kind entity.BaddieKind, pos vector.Vector, angle float64) bool {
	_, _, ok := s.baddies.insert(Baddie{
		Kind:     kind,
		Position: pos,
		Angle:    vector.Mod2Pi(angle),
	})
	if !ok {
		s.log.Debug("Baddie spawn skipped, room is full", "kind", kind)
	}
	return ok
}

// FindBaddie implements vm.World.
func (s *State) FindBaddie(id entity.UID) (entity.Handle, bool) { return s.baddies.find(id) }

// RemoveBaddie implements vm.World.
func (s *State) RemoveBaddie(h entity.Handle) { s.baddies.remove(h) }

// FindDoor implements vm.World.
func (s *State) FindDoor(id entity.UID) (entity.Handle, bool) { return s.doors.find(id) }

// IsPassage implements vm.World.
func (s *State) IsPassage(h entity.Handle) bool {
	return s.doors.get(h).Kind == entity.DoorPassage
}

// LockDoor implements vm.World.
func (s *State) LockDoor(h entity.Handle) {
	d := s.doors.get(h)
	d.Kind = entity.DoorLocked
	d.IsOpen = false
}

// UnlockDoor implements vm.World.
func (s *State) UnlockDoor(h entity.Handle) {
	s.doors.get(h).Kind = entity.DoorNormal
}

// FindGravfield implements vm.World.
func (s *State) FindGravfield(id entity.UID) (entity.Handle, bool) { return s.gravfields.find(id) }

// FieldStrength implements vm.World.
func (s *State) FieldStrength(h entity.Handle) float64 { return s.gravfields.get(h).Strength }

// SetFieldStrength implements vm.World.
func (s *State) SetFieldStrength(h entity.Handle, strength float64) {
	s.gravfields.get(h).Strength = strength
}

// Baddie returns the baddie with the given id.
func (s *State) Baddie(id entity.UID) (Baddie, bool) {
	h, ok := s.baddies.find(id)
	if !ok {
		return Baddie{}, false
	}
	return *s.baddies.get(h), true
}

// Door returns the door with the given id.
func (s *State) Door(id entity.UID) (Door, bool) {
	h, ok := s.doors.find(id)
	if !ok {
		return Door{}, false
	}
	return *s.doors.get(h), true
}

// Gravfield returns the gravfield with the given id.
func (s *State) Gravfield(id entity.UID) (Gravfield, bool) {
	h, ok := s.gravfields.find(id)
	if !ok {
		return Gravfield{}, false
	}
	return *s.gravfields.get(h), true
}

// BaddieCount returns the number of live baddies.
func (s *State) BaddieCount() int { return s.baddies.len() }

// Frame returns the number of ticks since the state was created.
func (s *State) Frame() uint64 { return s.frame }

// Room returns the current room, or nil before EnterRoom.
func (s *State) Room() *Room { return s.room }

// LastOutcome returns the outcome of the most recent script run.
func (s *State) LastOutcome() Outcome { return s.last }
