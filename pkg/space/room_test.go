package space

import (
	"errors"
	"io"
	"log/slog"
	"math"
	"strings"
	"testing"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/opcode"
	"github.com/zurustar/azscript/pkg/vector"
	"github.com/zurustar/azscript/pkg/vm"
)

func newTestState() *State {
	return New(
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
		WithRunOptions(vm.WithDiagnostics(nil)),
	)
}

func script(ins ...opcode.Instruction) *opcode.Script { return opcode.New(ins...) }

func testRoom() *Room {
	return &Room{
		Name:  "test-room",
		Flags: []int{2},
		Baddies: []BaddieFixture{
			{Slot: 1, Baddie: Baddie{Kind: entity.BaddieTurret, OnKill: script(opcode.I(opcode.Set, 9))}},
			{Baddie: Baddie{Kind: entity.BaddieLump}},
		},
		Doors: []DoorFixture{
			{Slot: 2, Door: Door{Kind: entity.DoorNormal, IsOpen: true}},
			{Slot: 3, Door: Door{Kind: entity.DoorPassage, IsOpen: true}},
		},
		Gravfields: []GravfieldFixture{
			{Slot: 4, Gravfield: Gravfield{Kind: entity.GravTrapezoid, Strength: 100}},
		},
		Nodes: []NodeFixture{
			{Node: Node{Name: "console", OnUse: script(opcode.I(opcode.Unlock, 2))}},
		},
		OnStart: script(opcode.I(opcode.Set, 1)),
		Triggers: []Trigger{
			{Name: "lock-exit", Script: script(opcode.I(opcode.Lock, 2))},
			{Name: "lock-passage", Script: script(opcode.I(opcode.Lock, 3))},
			{Name: "flip", Script: script(
				opcode.I(opcode.GetGS, 4), opcode.I(opcode.Push, 0), opcode.I(opcode.GetGS, 4),
				opcode.I(opcode.AddI, 0), opcode.I(opcode.Add, 0),
				opcode.I(opcode.Push, -3), opcode.I(opcode.Add, 0), opcode.I(opcode.SetGS, 4),
			)},
			{Name: "pulse", Script: script(opcode.I(opcode.Test, 5), opcode.I(opcode.Beqz, 3), opcode.I(opcode.Clr, 5), opcode.I(opcode.Stop, 0), opcode.I(opcode.Set, 5)), Every: 2},
		},
	}
}

func enter(t *testing.T, s *State, room *Room) {
	t.Helper()
	res, err := s.EnterRoom(room)
	if err != nil {
		t.Fatalf("EnterRoom: %v", err)
	}
	if !res.OK() {
		t.Fatalf("OnStart failed: %v", res.Err)
	}
}

func TestEnterRoom(t *testing.T) {
	s := newTestState()
	enter(t, s, testRoom())

	if !s.Player.HasFlag(1) || !s.Player.HasFlag(2) {
		t.Errorf("expected flags 1 (OnStart) and 2 (room), got %b", s.Player.Flags)
	}
	if s.BaddieCount() != 2 {
		t.Errorf("BaddieCount = %d, want 2", s.BaddieCount())
	}
	if s.refs.Used() != 4 {
		t.Errorf("bound slots = %d, want 4", s.refs.Used())
	}
	if ref, _ := s.refs.Get(2); ref.Kind != entity.KindDoor {
		t.Errorf("slot 2 = %+v, want a door", ref)
	}
	if s.LastOutcome().Name != "on-start" {
		t.Errorf("last outcome = %q, want on-start", s.LastOutcome().Name)
	}
}

func TestEnterRoom_Errors(t *testing.T) {
	s := newTestState()
	if _, err := s.EnterRoom(nil); !errors.Is(err, ErrNoRoom) {
		t.Errorf("nil room: got %v", err)
	}

	dup := &Room{Name: "dup", Doors: []DoorFixture{
		{Slot: 5, Door: Door{Kind: entity.DoorNormal}},
		{Slot: 5, Door: Door{Kind: entity.DoorBomb}},
	}}
	if _, err := s.EnterRoom(dup); err == nil || !strings.Contains(err.Error(), "slot 5") {
		t.Errorf("duplicate slot: got %v", err)
	}

	outOfRange := &Room{Name: "range", Gravfields: []GravfieldFixture{{Slot: 25}}}
	if _, err := s.EnterRoom(outOfRange); err == nil {
		t.Error("slot 25 should be rejected")
	}

	crowded := &Room{Name: "crowded"}
	for i := 0; i <= MaxDoors; i++ {
		crowded.Doors = append(crowded.Doors, DoorFixture{Door: Door{Kind: entity.DoorNormal}})
	}
	if _, err := s.EnterRoom(crowded); err == nil {
		t.Error("more doors than capacity should be rejected")
	}
}

func TestEnterRoom_FailureLeavesNoRoom(t *testing.T) {
	s := newTestState()
	enter(t, s, testRoom())

	dup := &Room{Name: "dup",
		Baddies: []BaddieFixture{{Slot: 4, Baddie: Baddie{Kind: entity.BaddieLump}}},
		Doors:   []DoorFixture{{Slot: 4, Door: Door{Kind: entity.DoorNormal}}},
	}
	if _, err := s.EnterRoom(dup); err == nil {
		t.Fatal("duplicate slot should be rejected")
	}

	if s.Room() != nil {
		t.Errorf("Room() = %q, want nil", s.Room().Name)
	}
	if n := s.BaddieCount(); n != 0 {
		t.Errorf("BaddieCount() = %d, want 0", n)
	}
	if snap := s.Snapshot(); snap.Slots != 0 || snap.Room != "" {
		t.Errorf("Snapshot() room %q slots %d, want empty", snap.Room, snap.Slots)
	}
	if _, err := s.Fire("lock-exit"); !errors.Is(err, ErrNoRoom) {
		t.Errorf("Fire after failed entry: got %v", err)
	}

	// 失敗後も通常どおり入室できる
	enter(t, s, testRoom())
	if s.Room() == nil || s.Room().Name != "test-room" {
		t.Error("room should be entered again after a failure")
	}
}

func TestEnterRoom_OldUIDsGoStale(t *testing.T) {
	s := newTestState()
	enter(t, s, testRoom())
	oldRef, _ := s.refs.Get(2)

	enter(t, s, testRoom())
	if _, ok := s.Door(oldRef.UID); ok {
		t.Error("door UID from the previous visit should not resolve")
	}
	newRef, _ := s.refs.Get(2)
	if _, ok := s.Door(newRef.UID); !ok {
		t.Error("rebuilt slot should resolve")
	}
}

func TestFire(t *testing.T) {
	s := newTestState()
	enter(t, s, testRoom())
	doorRef, _ := s.refs.Get(2)

	res, err := s.Fire("lock-exit")
	if err != nil || !res.OK() {
		t.Fatalf("lock-exit: %v %v", err, res.Err)
	}
	d, _ := s.Door(doorRef.UID)
	if d.Kind != entity.DoorLocked || d.IsOpen {
		t.Errorf("door after lock = %+v", d)
	}

	res, err = s.Fire("console")
	if err != nil || !res.OK() {
		t.Fatalf("console: %v %v", err, res.Err)
	}
	d, _ = s.Door(doorRef.UID)
	if d.Kind != entity.DoorNormal {
		t.Errorf("door after node use = %+v", d)
	}

	res, err = s.Fire("lock-passage")
	if err != nil {
		t.Fatalf("lock-passage: %v", err)
	}
	if !vm.IsErrorType(res.Err, vm.ErrorIllegalDoorOperation) {
		t.Errorf("expected illegal door operation, got %+v", res)
	}
	if s.LastOutcome().Name != "lock-passage" || s.LastOutcome().Result.OK() {
		t.Errorf("last outcome = %+v", s.LastOutcome())
	}

	if _, err := s.Fire("missing"); !errors.Is(err, ErrUnknownTrigger) {
		t.Errorf("missing trigger: got %v", err)
	}
}

func TestFire_NoRoom(t *testing.T) {
	if _, err := newTestState().Fire("x"); !errors.Is(err, ErrNoRoom) {
		t.Errorf("got %v, want ErrNoRoom", err)
	}
}

func TestFire_Gravfield(t *testing.T) {
	s := newTestState()
	enter(t, s, testRoom())
	ref, _ := s.refs.Get(4)

	// 0 + strength - 3; the first GETGS value stays on the stack
	res, err := s.Fire("flip")
	if err != nil || !res.OK() {
		t.Fatalf("flip: %v %v", err, res.Err)
	}
	g, _ := s.Gravfield(ref.UID)
	if g.Strength != 97 {
		t.Errorf("strength = %v, want 97", g.Strength)
	}
	if len(res.Stack) != 1 || res.Stack[0] != 100 {
		t.Errorf("stack = %v, want [100]", res.Stack)
	}
}

func TestKillBaddie(t *testing.T) {
	s := newTestState()
	enter(t, s, testRoom())
	ref, _ := s.refs.Get(1)

	res, ok := s.KillBaddie(ref.UID)
	if !ok || !res.OK() {
		t.Fatalf("KillBaddie: %v %+v", ok, res)
	}
	if !s.Player.HasFlag(9) {
		t.Error("OnKill script should have set flag 9")
	}
	if s.BaddieCount() != 1 {
		t.Errorf("BaddieCount = %d, want 1", s.BaddieCount())
	}
	if _, ok := s.KillBaddie(ref.UID); ok {
		t.Error("killing a dead baddie should report false")
	}

	// The slot still names the dead baddie, so UNBAD is a no-op.
	res = s.RunScript("unbad", script(opcode.I(opcode.Unbad, 1)))
	if !res.OK() {
		t.Errorf("UNBAD of a dead baddie should succeed, got %v", res.Err)
	}
}

func TestSpawnBaddie(t *testing.T) {
	s := newTestState()
	enter(t, s, &Room{Name: "empty"})

	res := s.RunScript("spawn", script(
		opcode.I(opcode.Push, float64(entity.BaddieZipper)),
		opcode.I(opcode.Push, 5),
		opcode.I(opcode.Push, 6),
		opcode.I(opcode.Push, 3*math.Pi),
		opcode.I(opcode.Bad, 0),
	))
	if !res.OK() {
		t.Fatalf("spawn: %v", res.Err)
	}
	snap := s.Snapshot()
	if len(snap.Baddies) != 1 {
		t.Fatalf("baddies = %d, want 1", len(snap.Baddies))
	}
	b := snap.Baddies[0]
	if b.Kind != entity.BaddieZipper || b.Position != (vector.Vector{X: 5, Y: 6}) {
		t.Errorf("spawned %+v", b)
	}
	if math.Abs(math.Abs(b.Angle)-math.Pi) > 1e-9 {
		t.Errorf("angle should be normalized into [-pi, pi], got %v", b.Angle)
	}
}

func TestSpawnBaddie_Full(t *testing.T) {
	s := newTestState()
	enter(t, s, &Room{Name: "empty"})
	for i := 0; i < MaxBaddies; i++ {
		if !s.SpawnBaddie(entity.BaddieLump, vector.Zero, 0) {
			t.Fatalf("spawn %d failed", i)
		}
	}

	res := s.RunScript("spawn", script(
		opcode.I(opcode.Push, 1), opcode.I(opcode.Push, 0), opcode.I(opcode.Push, 0), opcode.I(opcode.Push, 0),
		opcode.I(opcode.Bad, 0),
	))
	if !res.OK() {
		t.Errorf("a full room should skip the spawn silently, got %v", res.Err)
	}
	if s.BaddieCount() != MaxBaddies {
		t.Errorf("BaddieCount = %d, want %d", s.BaddieCount(), MaxBaddies)
	}
}

func TestTick(t *testing.T) {
	s := newTestState()
	if out := s.Tick(); out != nil {
		t.Errorf("tick without room ran %v", out)
	}
	enter(t, s, testRoom())

	out := s.Tick() // frame 2
	if len(out) != 1 || out[0].Name != "pulse" {
		t.Fatalf("frame 2 outcomes = %+v", out)
	}
	if !s.Player.HasFlag(5) {
		t.Error("pulse should set flag 5")
	}
	if out := s.Tick(); len(out) != 0 {
		t.Errorf("frame 3 should run nothing, got %+v", out)
	}
	s.Tick() // frame 4
	if s.Player.HasFlag(5) {
		t.Error("second pulse should clear flag 5")
	}
	if s.Frame() != 4 {
		t.Errorf("Frame = %d, want 4", s.Frame())
	}
}

func TestSnapshot_String(t *testing.T) {
	s := newTestState()
	enter(t, s, testRoom())
	out := s.Snapshot().String()

	for _, want := range []string{
		"room: test-room",
		"flags: [1 2]",
		"baddies: 2",
		"turret",
		"doors: 2",
		"passage open",
		"gravfields: 1",
		"trapezoid strength 100",
		"last: on-start: normal after 1 steps",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("snapshot output missing %q:\n%s", want, out)
		}
	}
}

func TestPlayerFlags(t *testing.T) {
	var p Player
	p.SetFlag(0)
	p.SetFlag(63)
	p.SetFlag(64)
	p.SetFlag(-1)
	if p.Flags != 1|1<<63 {
		t.Errorf("Flags = %b", p.Flags)
	}
	p.ClearFlag(0)
	if p.HasFlag(0) || !p.HasFlag(63) || p.HasFlag(64) {
		t.Errorf("Flags = %b", p.Flags)
	}
}
