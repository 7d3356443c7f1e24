// Package entity defines the typed references that scripts use to reach live
// game objects: entity kinds, generation-checked stable ids, and the fixed
// slot table a host fills in before running a script.
package entity

import "fmt"

// NumSlots is the number of slots in a reference table.
// Scripts address slots 1 through NumSlots.
const NumSlots = 24

// NumFlags is the number of player flags scripts may test, set and clear.
const NumFlags = 64

// Kind is the type of entity a slot refers to.
type Kind uint8

const (
	KindNone Kind = iota
	KindBaddie
	KindDoor
	KindGravfield
	KindNode
)

var kindNames = map[Kind]string{
	KindNone:      "none",
	KindBaddie:    "baddie",
	KindDoor:      "door",
	KindGravfield: "gravfield",
	KindNode:      "node",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind returns the Kind with the given name.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return k, nil
		}
	}
	return KindNone, fmt.Errorf("unknown entity kind: %q", name)
}

// UID is a stable identifier for an entity stored in a generational arena.
// A UID stays valid until the entity it names is removed; after that the
// arena bumps the generation of the cell and the old UID no longer resolves.
// The zero UID never names an entity.
type UID struct {
	Index uint32
	Gen   uint32
}

// IsZero reports whether id is the zero UID.
func (id UID) IsZero() bool {
	return id.Gen == 0
}

func (id UID) String() string {
	return fmt.Sprintf("%d#%d", id.Index, id.Gen)
}

// Handle is a host-side index of a live entity, valid only while the host
// world is not mutated by anything other than the holder.
type Handle int

// Ref is the content of one slot.
type Ref struct {
	Kind Kind
	UID  UID
}

// Table maps slot numbers 1..NumSlots to entity references.
// The zero Table has every slot empty.
type Table struct {
	refs [NumSlots]Ref
}

// Get returns the reference stored in slot. ok is false if slot is out of range.
func (t *Table) Get(slot int) (ref Ref, ok bool) {
	if slot < 1 || slot > NumSlots {
		return Ref{}, false
	}
	return t.refs[slot-1], true
}

// Set stores ref in slot.
func (t *Table) Set(slot int, ref Ref) error {
	if slot < 1 || slot > NumSlots {
		return fmt.Errorf("slot %d out of range [1, %d]", slot, NumSlots)
	}
	t.refs[slot-1] = ref
	return nil
}

// Resolve returns the UID in slot if it holds a reference of the wanted kind.
func (t *Table) Resolve(slot int, want Kind) (UID, bool) {
	ref, ok := t.Get(slot)
	if !ok || ref.Kind != want || want == KindNone {
		return UID{}, false
	}
	return ref.UID, true
}

// Reset empties every slot.
func (t *Table) Reset() {
	t.refs = [NumSlots]Ref{}
}

// Used returns the number of non-empty slots.
func (t *Table) Used() int {
	n := 0
	for _, r := range t.refs {
		if r.Kind != KindNone {
			n++
		}
	}
	return n
}
