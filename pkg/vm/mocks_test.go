package vm

import (
	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/vector"
)

// mockWorld is an in-memory World for interpreter tests.
// Entities are never reused, so a removed entity's UID stays stale.
type mockWorld struct {
	refs  entity.Table
	flags [entity.NumFlags]bool

	baddies []mockBaddie
	doors   []mockDoor
	fields  []mockField

	spawnCapacity int // negative means unlimited
	mutations     int
}

type mockBaddie struct {
	id    entity.UID
	kind  entity.BaddieKind
	pos   vector.Vector
	angle float64
	alive bool
}

type mockDoor struct {
	id    entity.UID
	kind  entity.DoorKind
	open  bool
	alive bool
}

type mockField struct {
	id       entity.UID
	strength float64
	alive    bool
}

func newMockWorld() *mockWorld {
	return &mockWorld{spawnCapacity: -1}
}

func (w *mockWorld) nextUID() entity.UID {
	n := len(w.baddies) + len(w.doors) + len(w.fields)
	return entity.UID{Index: uint32(n), Gen: 1}
}

// addBaddie places a baddie and stores a reference to it in slot.
func (w *mockWorld) addBaddie(slot int, kind entity.BaddieKind) int {
	id := w.nextUID()
	w.baddies = append(w.baddies, mockBaddie{id: id, kind: kind, alive: true})
	if slot > 0 {
		_ = w.refs.Set(slot, entity.Ref{Kind: entity.KindBaddie, UID: id})
	}
	return len(w.baddies) - 1
}

func (w *mockWorld) addDoor(slot int, kind entity.DoorKind, open bool) int {
	id := w.nextUID()
	w.doors = append(w.doors, mockDoor{id: id, kind: kind, open: open, alive: true})
	if slot > 0 {
		_ = w.refs.Set(slot, entity.Ref{Kind: entity.KindDoor, UID: id})
	}
	return len(w.doors) - 1
}

func (w *mockWorld) addField(slot int, strength float64) int {
	id := w.nextUID()
	w.fields = append(w.fields, mockField{id: id, strength: strength, alive: true})
	if slot > 0 {
		_ = w.refs.Set(slot, entity.Ref{Kind: entity.KindGravfield, UID: id})
	}
	return len(w.fields) - 1
}

func (w *mockWorld) liveBaddies() int {
	n := 0
	for _, b := range w.baddies {
		if b.alive {
			n++
		}
	}
	return n
}

func (w *mockWorld) Refs() *entity.Table { return &w.refs }

func (w *mockWorld) TestFlag(flag int) bool { return w.flags[flag] }

func (w *mockWorld) SetFlag(flag int) {
	w.mutations++
	w.flags[flag] = true
}

func (w *mockWorld) ClearFlag(flag int) {
	w.mutations++
	w.flags[flag] = false
}

func (w *mockWorld) SpawnBaddie(kind entity.BaddieKind, pos vector.Vector, angle float64) bool {
	if w.spawnCapacity >= 0 && w.liveBaddies() >= w.spawnCapacity {
		return false
	}
	w.mutations++
	w.baddies = append(w.baddies, mockBaddie{id: w.nextUID(), kind: kind, pos: pos, angle: angle, alive: true})
	return true
}

func (w *mockWorld) FindBaddie(id entity.UID) (entity.Handle, bool) {
	for i, b := range w.baddies {
		if b.alive && b.id == id {
			return entity.Handle(i), true
		}
	}
	return 0, false
}

func (w *mockWorld) RemoveBaddie(h entity.Handle) {
	w.mutations++
	w.baddies[h].alive = false
}

func (w *mockWorld) FindDoor(id entity.UID) (entity.Handle, bool) {
	for i, d := range w.doors {
		if d.alive && d.id == id {
			return entity.Handle(i), true
		}
	}
	return 0, false
}

func (w *mockWorld) IsPassage(h entity.Handle) bool {
	return w.doors[h].kind == entity.DoorPassage
}

func (w *mockWorld) LockDoor(h entity.Handle) {
	w.mutations++
	w.doors[h].kind = entity.DoorLocked
	w.doors[h].open = false
}

func (w *mockWorld) UnlockDoor(h entity.Handle) {
	w.mutations++
	w.doors[h].kind = entity.DoorNormal
}

func (w *mockWorld) FindGravfield(id entity.UID) (entity.Handle, bool) {
	for i, f := range w.fields {
		if f.alive && f.id == id {
			return entity.Handle(i), true
		}
	}
	return 0, false
}

func (w *mockWorld) FieldStrength(h entity.Handle) float64 {
	return w.fields[h].strength
}

func (w *mockWorld) SetFieldStrength(h entity.Handle, strength float64) {
	w.mutations++
	w.fields[h].strength = strength
}
