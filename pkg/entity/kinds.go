package entity

import "fmt"

// BaddieKind identifies a species of enemy.
// BaddieNothing marks a removed baddie and cannot be spawned.
type BaddieKind int

const (
	BaddieNothing BaddieKind = iota
	BaddieLump
	BaddieTurret
	BaddieZipper
	BaddieBouncer
	BaddieAtom
	BaddieSpiner
	BaddieBox
	BaddieArmoredBox
	BaddieClam
	BaddieNightbug
	BaddieSpineMine
	BaddieBrokenTurret

	// NumBaddieKinds is one past the last spawnable kind.
	NumBaddieKinds
)

var baddieNames = [NumBaddieKinds]string{
	"nothing", "lump", "turret", "zipper", "bouncer", "atom", "spiner",
	"box", "armored-box", "clam", "nightbug", "spine-mine", "broken-turret",
}

// Spawnable reports whether k may be spawned by a script.
func (k BaddieKind) Spawnable() bool {
	return k >= 1 && k < NumBaddieKinds
}

func (k BaddieKind) String() string {
	if k < 0 || k >= NumBaddieKinds {
		return fmt.Sprintf("baddie(%d)", int(k))
	}
	return baddieNames[k]
}

// ParseBaddieKind returns the spawnable baddie kind with the given name.
func ParseBaddieKind(name string) (BaddieKind, error) {
	for k := BaddieLump; k < NumBaddieKinds; k++ {
		if baddieNames[k] == name {
			return k, nil
		}
	}
	return BaddieNothing, fmt.Errorf("unknown baddie kind: %q", name)
}

// DoorKind identifies how a door opens.
// Passages are always open and can never be locked or unlocked.
type DoorKind int

const (
	DoorNothing DoorKind = iota
	DoorNormal
	DoorLocked
	DoorRocket
	DoorBomb
	DoorPassage
)

var doorNames = map[DoorKind]string{
	DoorNothing: "nothing",
	DoorNormal:  "normal",
	DoorLocked:  "locked",
	DoorRocket:  "rocket",
	DoorBomb:    "bomb",
	DoorPassage: "passage",
}

func (k DoorKind) String() string {
	if name, ok := doorNames[k]; ok {
		return name
	}
	return fmt.Sprintf("door(%d)", int(k))
}

// ParseDoorKind returns the door kind with the given name.
func ParseDoorKind(name string) (DoorKind, error) {
	for k, n := range doorNames {
		if n == name && k != DoorNothing {
			return k, nil
		}
	}
	return DoorNothing, fmt.Errorf("unknown door kind: %q", name)
}

// GravfieldKind identifies the shape of a gravity field.
type GravfieldKind int

const (
	GravNothing GravfieldKind = iota
	GravTrapezoid
	GravSectorPull
	GravSectorSpin
)

var gravNames = map[GravfieldKind]string{
	GravNothing:    "nothing",
	GravTrapezoid:  "trapezoid",
	GravSectorPull: "sector-pull",
	GravSectorSpin: "sector-spin",
}

func (k GravfieldKind) String() string {
	if name, ok := gravNames[k]; ok {
		return name
	}
	return fmt.Sprintf("gravfield(%d)", int(k))
}

// ParseGravfieldKind returns the gravfield kind with the given name.
func ParseGravfieldKind(name string) (GravfieldKind, error) {
	for k, n := range gravNames {
		if n == name && k != GravNothing {
			return k, nil
		}
	}
	return GravNothing, fmt.Errorf("unknown gravfield kind: %q", name)
}
