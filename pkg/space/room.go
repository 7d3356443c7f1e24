package space

import (
	"errors"
	"fmt"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/opcode"
	"github.com/zurustar/azscript/pkg/vm"
)

// ErrUnknownTrigger is returned by Fire for a name the room does not define.
var ErrUnknownTrigger = errors.New("unknown trigger")

// ErrNoRoom is returned when an operation needs a room before EnterRoom.
var ErrNoRoom = errors.New("no room entered")

// Room is the fixture a State is populated from on entry.
// Slot is the reference table slot for the entity, 0 for none.
type Room struct {
	Name       string
	Flags      []int // Set on entry, in addition to flags already held
	Baddies    []BaddieFixture
	Doors      []DoorFixture
	Gravfields []GravfieldFixture
	Nodes      []NodeFixture
	OnStart    *opcode.Script
	Triggers   []Trigger
}

type BaddieFixture struct {
	Slot int
	Baddie
}

type DoorFixture struct {
	Slot int
	Door
}

type GravfieldFixture struct {
	Slot int
	Gravfield
}

type NodeFixture struct {
	Slot int
	Node
}

// Trigger is a named script of the room.
// Triggers with Every > 0 also run on every Every-th tick.
type Trigger struct {
	Name   string
	Script *opcode.Script
	Every  int
}

// Outcome is a finished script run.
type Outcome struct {
	Name   string
	Result vm.Result
}

// Trigger returns the room trigger with the given name.
func (r *Room) Trigger(name string) (Trigger, bool) {
	for _, t := range r.Triggers {
		if t.Name == name {
			return t, true
		}
	}
	return Trigger{}, false
}

// EnterRoom replaces the current entities with the room's fixtures,
// rebuilds the slot table and runs the room's OnStart script.
// Player flags are kept. Previously issued UIDs never resolve again.
// If a fixture cannot be placed the state is left with no room and no entities.
func (s *State) EnterRoom(room *Room) (vm.Result, error) {
	if room == nil {
		return vm.Result{}, ErrNoRoom
	}
	s.leaveRoom()

	// 1. 固定エンティティを配置
	if err := s.placeFixtures(room); err != nil {
		s.leaveRoom()
		return vm.Result{}, err
	}
	s.room = room

	// 2. 初期フラグ
	for _, flag := range room.Flags {
		s.Player.SetFlag(flag)
	}

	s.log.Info("Entered room", "room", room.Name,
		"baddies", s.baddies.len(), "doors", s.doors.len(),
		"gravfields", s.gravfields.len(), "nodes", s.nodes.len())

	// 3. 入室スクリプト
	return s.RunScript("on-start", room.OnStart), nil
}

// leaveRoom drops every entity and slot binding.
func (s *State) leaveRoom() {
	s.baddies.clear()
	s.doors.clear()
	s.gravfields.clear()
	s.nodes.clear()
	s.refs.Reset()
	s.room = nil
}

func (s *State) placeFixtures(room *Room) error {
	for i, f := range room.Baddies {
		id, _, ok := s.baddies.insert(f.Baddie)
		if !ok {
			return fmt.Errorf("room %s: baddie %d: more than %d baddies", room.Name, i, MaxBaddies)
		}
		if err := s.bind(f.Slot, entity.KindBaddie, id); err != nil {
			return fmt.Errorf("room %s: baddie %d: %w", room.Name, i, err)
		}
	}
	for i, f := range room.Doors {
		id, _, ok := s.doors.insert(f.Door)
		if !ok {
			return fmt.Errorf("room %s: door %d: more than %d doors", room.Name, i, MaxDoors)
		}
		if err := s.bind(f.Slot, entity.KindDoor, id); err != nil {
			return fmt.Errorf("room %s: door %d: %w", room.Name, i, err)
		}
	}
	for i, f := range room.Gravfields {
		id, _, ok := s.gravfields.insert(f.Gravfield)
		if !ok {
			return fmt.Errorf("room %s: gravfield %d: more than %d gravfields", room.Name, i, MaxGravfields)
		}
		if err := s.bind(f.Slot, entity.KindGravfield, id); err != nil {
			return fmt.Errorf("room %s: gravfield %d: %w", room.Name, i, err)
		}
	}
	for i, f := range room.Nodes {
		id, _, ok := s.nodes.insert(f.Node)
		if !ok {
			return fmt.Errorf("room %s: node %d: more than %d nodes", room.Name, i, MaxNodes)
		}
		if err := s.bind(f.Slot, entity.KindNode, id); err != nil {
			return fmt.Errorf("room %s: node %d: %w", room.Name, i, err)
		}
	}
	return nil
}

func (s *State) bind(slot int, kind entity.Kind, id entity.UID) error {
	if slot == 0 {
		return nil
	}
	if ref, used := s.refs.Get(slot); used && ref.Kind != entity.KindNone {
		return fmt.Errorf("slot %d already holds a %s", slot, ref.Kind)
	}
	return s.refs.Set(slot, entity.Ref{Kind: kind, UID: id})
}

// RunScript runs script against the state and records the outcome.
// Script errors are reported in the result and never returned as Go errors.
func (s *State) RunScript(name string, script *opcode.Script) vm.Result {
	opts := make([]vm.Option, 0, len(s.runOpts)+1)
	opts = append(opts, vm.WithLogger(s.log))
	opts = append(opts, s.runOpts...)

	res := vm.Run(s, script, opts...)
	s.last = Outcome{Name: name, Result: res}

	if res.OK() {
		s.log.Debug("Script finished", "script", name, "steps", res.Steps)
	} else {
		s.log.Warn("Script failed", "script", name, "error", res.Err)
	}
	return res
}

// Fire runs the named trigger of the current room. Names that match no
// trigger are tried as node names, which runs the node's OnUse script.
func (s *State) Fire(name string) (vm.Result, error) {
	if s.room == nil {
		return vm.Result{}, ErrNoRoom
	}
	if t, ok := s.room.Trigger(name); ok {
		return s.RunScript(name, t.Script), nil
	}
	var (
		node  *Node
		found bool
	)
	s.nodes.each(func(_ entity.Handle, n *Node) {
		if !found && n.Name == name {
			node, found = n, true
		}
	})
	if found {
		return s.RunScript(name, node.OnUse), nil
	}
	return vm.Result{}, fmt.Errorf("%w: %s", ErrUnknownTrigger, name)
}

// KillBaddie removes the baddie and runs its OnKill script.
func (s *State) KillBaddie(id entity.UID) (vm.Result, bool) {
	h, ok := s.baddies.find(id)
	if !ok {
		return vm.Result{}, false
	}
	b := *s.baddies.get(h)
	s.baddies.remove(h)
	return s.RunScript("on-kill:"+b.Kind.String(), b.OnKill), true
}

// Tick advances the frame counter and runs periodic triggers that are due.
func (s *State) Tick() []Outcome {
	s.frame++
	if s.room == nil {
		return nil
	}
	var out []Outcome
	for _, t := range s.room.Triggers {
		if t.Every > 0 && s.frame%uint64(t.Every) == 0 {
			res := s.RunScript(t.Name, t.Script)
			out = append(out, Outcome{Name: t.Name, Result: res})
		}
	}
	return out
}
