package space

import (
	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/opcode"
	"github.com/zurustar/azscript/pkg/vector"
)

// Entity capacities per room.
const (
	MaxBaddies    = 100
	MaxDoors      = 50
	MaxGravfields = 50
	MaxNodes      = 50
)

// Baddie is an enemy in the current room.
type Baddie struct {
	Kind     entity.BaddieKind
	Position vector.Vector
	Angle    float64
	OnKill   *opcode.Script // Runs when the baddie is killed, may be nil
}

// Door connects the current room to another one.
type Door struct {
	Kind     entity.DoorKind
	IsOpen   bool
	Position vector.Vector
	Angle    float64
}

// GravfieldSize holds the shape parameters of a gravfield.
// Trapezoid fields use the first four, sector fields the last three.
type GravfieldSize struct {
	Semilength     float64
	FrontOffset    float64
	FrontSemiwidth float64
	RearSemiwidth  float64
	InnerRadius    float64
	Thickness      float64
	SweepDegrees   float64
}

// Gravfield pushes the player ship while it is inside the field.
type Gravfield struct {
	Kind     entity.GravfieldKind
	Strength float64
	Position vector.Vector
	Angle    float64
	Size     GravfieldSize
}

// Node is a console or trap that runs a script when used.
type Node struct {
	Name     string
	Position vector.Vector
	OnUse    *opcode.Script
}

// Player holds state that survives room changes.
type Player struct {
	Flags uint64
}

// HasFlag reports whether flag is set. Flags outside 0-63 are never set.
func (p *Player) HasFlag(flag int) bool {
	if flag < 0 || flag >= entity.NumFlags {
		return false
	}
	return p.Flags&(1<<uint(flag)) != 0
}

// SetFlag sets flag. Flags outside 0-63 are ignored.
func (p *Player) SetFlag(flag int) {
	if flag < 0 || flag >= entity.NumFlags {
		return
	}
	p.Flags |= 1 << uint(flag)
}

// ClearFlag clears flag. Flags outside 0-63 are ignored.
func (p *Player) ClearFlag(flag int) {
	if flag < 0 || flag >= entity.NumFlags {
		return
	}
	p.Flags &^= 1 << uint(flag)
}
