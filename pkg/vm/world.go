package vm

import (
	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/vector"
)

// World is the live game state a script acts on.
// All methods are synchronous; the host must not mutate the world from
// anywhere else while Run is executing.
type World interface {
	// Refs returns the slot table scripts use to reach entities.
	Refs() *entity.Table

	// Player flags. Flags are always in [0, entity.NumFlags).
	TestFlag(flag int) bool
	SetFlag(flag int)
	ClearFlag(flag int)

	// SpawnBaddie adds a baddie. It returns false if the world is full.
	SpawnBaddie(kind entity.BaddieKind, pos vector.Vector, angle float64) bool
	FindBaddie(id entity.UID) (entity.Handle, bool)
	RemoveBaddie(h entity.Handle)

	FindDoor(id entity.UID) (entity.Handle, bool)
	IsPassage(h entity.Handle) bool
	// LockDoor closes the door and makes it locked.
	LockDoor(h entity.Handle)
	// UnlockDoor returns the door to the normal openable state.
	UnlockDoor(h entity.Handle)

	FindGravfield(id entity.UID) (entity.Handle, bool)
	FieldStrength(h entity.Handle) float64
	SetFieldStrength(h entity.Handle, strength float64)
}
