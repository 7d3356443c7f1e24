package space

import (
	"fmt"
	"io"
	"strings"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/opcode"
)

// Snapshot is a read-only copy of the state for display.
type Snapshot struct {
	Room       string
	Frame      uint64
	Flags      uint64
	Slots      int
	Baddies    []BaddieView
	Doors      []DoorView
	Gravfields []GravfieldView
	Last       Outcome
}

type BaddieView struct {
	ID entity.UID
	Baddie
}

type DoorView struct {
	ID entity.UID
	Door
}

type GravfieldView struct {
	ID entity.UID
	Gravfield
}

// Snapshot copies the current state.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{
		Frame: s.frame,
		Flags: s.Player.Flags,
		Slots: s.refs.Used(),
		Last:  s.last,
	}
	if s.room != nil {
		snap.Room = s.room.Name
	}
	s.baddies.each(func(h entity.Handle, b *Baddie) {
		snap.Baddies = append(snap.Baddies, BaddieView{ID: s.baddies.uid(h), Baddie: *b})
	})
	s.doors.each(func(h entity.Handle, d *Door) {
		snap.Doors = append(snap.Doors, DoorView{ID: s.doors.uid(h), Door: *d})
	})
	s.gravfields.each(func(h entity.Handle, g *Gravfield) {
		snap.Gravfields = append(snap.Gravfields, GravfieldView{ID: s.gravfields.uid(h), Gravfield: *g})
	})
	return snap
}

// SetFlags returns the numbers of the set flags in increasing order.
func (snap Snapshot) SetFlags() []int {
	var flags []int
	for i := 0; i < entity.NumFlags; i++ {
		if snap.Flags&(1<<uint(i)) != 0 {
			flags = append(flags, i)
		}
	}
	return flags
}

// Fprint writes a multi-line description of the snapshot to w.
func (snap Snapshot) Fprint(w io.Writer) {
	fmt.Fprintf(w, "room: %s (frame %d, %d slots bound)\n", snap.Room, snap.Frame, snap.Slots)
	fmt.Fprintf(w, "flags: %v\n", snap.SetFlags())
	fmt.Fprintf(w, "baddies: %d\n", len(snap.Baddies))
	for _, b := range snap.Baddies {
		fmt.Fprintf(w, "  %s %s at (%s, %s)\n", b.ID, b.Kind,
			opcode.FormatValue(b.Position.X), opcode.FormatValue(b.Position.Y))
	}
	fmt.Fprintf(w, "doors: %d\n", len(snap.Doors))
	for _, d := range snap.Doors {
		state := "closed"
		if d.IsOpen {
			state = "open"
		}
		fmt.Fprintf(w, "  %s %s %s\n", d.ID, d.Kind, state)
	}
	fmt.Fprintf(w, "gravfields: %d\n", len(snap.Gravfields))
	for _, g := range snap.Gravfields {
		fmt.Fprintf(w, "  %s %s strength %s\n", g.ID, g.Kind, opcode.FormatValue(g.Strength))
	}
	if snap.Last.Name != "" {
		fmt.Fprintf(w, "last: %s\n", snap.Last.Summary())
	}
}

// String returns the output of Fprint.
func (snap Snapshot) String() string {
	var sb strings.Builder
	snap.Fprint(&sb)
	return sb.String()
}

// Summary describes the outcome on one line.
func (o Outcome) Summary() string {
	if o.Result.OK() {
		return fmt.Sprintf("%s: normal after %d steps", o.Name, o.Result.Steps)
	}
	return fmt.Sprintf("%s: %s", o.Name, o.Result.Err)
}
