package scenario

import (
	"fmt"
	"sort"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/opcode"
)

// Param is one argument of a script template. Kind is the entity kind the
// argument must name, or KindNone for a number.
type Param struct {
	Name string
	Kind entity.Kind
}

// Template builds a script from slot numbers and numeric arguments.
type Template struct {
	Name        string
	Description string
	Params      []Param
	build       func(args []float64) []opcode.Instruction
}

// Instantiate builds the script for args, one value per parameter.
// Entity arguments are passed as slot numbers.
func (t Template) Instantiate(args []float64) (*opcode.Script, error) {
	if len(args) != len(t.Params) {
		return nil, fmt.Errorf("script %s takes %d arguments, got %d", t.Name, len(t.Params), len(args))
	}
	return opcode.New(t.build(args)...), nil
}

func ins(op opcode.Op, imm float64) opcode.Instruction { return opcode.I(op, imm) }

func bare(op opcode.Op) opcode.Instruction { return opcode.I(op, 0) }

var (
	doorParam      = Param{Name: "door", Kind: entity.KindDoor}
	baddieParam    = Param{Name: "baddie", Kind: entity.KindBaddie}
	gravfieldParam = Param{Name: "gravfield", Kind: entity.KindGravfield}
)

func number(name string) Param { return Param{Name: name, Kind: entity.KindNone} }

// Library is the set of scripts scenarios can attach to triggers.
var Library = map[string]Template{
	"nop": {
		Description: "does nothing",
		build:       func([]float64) []opcode.Instruction { return nil },
	},
	"lock-exit": {
		Description: "locks a door",
		Params:      []Param{doorParam},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{ins(opcode.Lock, a[0])}
		},
	},
	"unlock-exit": {
		Description: "unlocks a door",
		Params:      []Param{doorParam},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{ins(opcode.Unlock, a[0])}
		},
	},
	"lock-once": {
		Description: "locks a door the first time, remembering it in a flag",
		Params:      []Param{doorParam, number("flag")},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{
				ins(opcode.Test, a[1]),
				ins(opcode.Bnez, 4),
				ins(opcode.Set, a[1]),
				ins(opcode.Lock, a[0]),
				bare(opcode.Stop),
			}
		},
	},
	"set-flag": {
		Description: "sets a flag",
		Params:      []Param{number("flag")},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{ins(opcode.Set, a[0])}
		},
	},
	"clear-flag": {
		Description: "clears a flag",
		Params:      []Param{number("flag")},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{ins(opcode.Clr, a[0])}
		},
	},
	"toggle-flag": {
		Description: "flips a flag",
		Params:      []Param{number("flag")},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{
				ins(opcode.Test, a[0]),
				ins(opcode.Beqz, 3),
				ins(opcode.Clr, a[0]),
				bare(opcode.Stop),
				ins(opcode.Set, a[0]),
			}
		},
	},
	"spawn": {
		Description: "spawns one baddie",
		Params:      []Param{number("kind"), number("x"), number("y"), number("angle")},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{
				ins(opcode.Push, a[0]),
				ins(opcode.Push, a[1]),
				ins(opcode.Push, a[2]),
				ins(opcode.Push, a[3]),
				bare(opcode.Bad),
			}
		},
	},
	"spawn-ambush": {
		Description: "spawns three baddies around a point unless the flag is set, then sets it",
		Params:      []Param{number("kind"), number("x"), number("y"), number("flag")},
		build: func(a []float64) []opcode.Instruction {
			k, x, y, flag := a[0], a[1], a[2], a[3]
			out := []opcode.Instruction{
				ins(opcode.Test, flag),
				ins(opcode.Bnez, 17),
			}
			offsets := [3][3]float64{{0, 60, -1.5708}, {-52, -30, 0.5236}, {52, -30, 2.618}}
			for _, o := range offsets {
				out = append(out,
					ins(opcode.Push, k),
					ins(opcode.Push, x+o[0]),
					ins(opcode.Push, y+o[1]),
					ins(opcode.Push, o[2]),
					bare(opcode.Bad),
				)
			}
			return append(out, ins(opcode.Set, flag))
		},
	},
	"remove-baddie": {
		Description: "removes a baddie",
		Params:      []Param{baddieParam},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{ins(opcode.Unbad, a[0])}
		},
	},
	"boost-gravity": {
		Description: "adds to a gravfield's strength",
		Params:      []Param{gravfieldParam, number("amount")},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{
				ins(opcode.GetGS, a[0]),
				ins(opcode.AddI, a[1]),
				ins(opcode.SetGS, a[0]),
			}
		},
	},
	"swap-gravity": {
		Description: "exchanges the strengths of two gravfields",
		Params:      []Param{gravfieldParam, gravfieldParam},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{
				ins(opcode.GetGS, a[0]),
				ins(opcode.GetGS, a[1]),
				ins(opcode.SetGS, a[0]),
				ins(opcode.SetGS, a[1]),
			}
		},
	},
	"gravity-switch": {
		Description: "moves the strength of the first gravfield onto the second when the flag is set",
		Params:      []Param{gravfieldParam, gravfieldParam, number("flag")},
		build: func(a []float64) []opcode.Instruction {
			return []opcode.Instruction{
				ins(opcode.Test, a[2]),
				ins(opcode.Beqz, 6),
				ins(opcode.GetGS, a[0]),
				ins(opcode.SetGS, a[1]),
				ins(opcode.Push, 0),
				ins(opcode.SetGS, a[0]),
				bare(opcode.Stop),
			}
		},
	},
	"runaway-loop": {
		Description: "loops forever and is stopped by the step limit",
		build: func([]float64) []opcode.Instruction {
			return []opcode.Instruction{bare(opcode.Nop), ins(opcode.Jump, -1)}
		},
	},
	"overflow": {
		Description: "pushes more values than the stack holds",
		build: func([]float64) []opcode.Instruction {
			out := make([]opcode.Instruction, 0, 25)
			for i := 0; i < 25; i++ {
				out = append(out, ins(opcode.Push, float64(i)))
			}
			return out
		},
	},
	"fail": {
		Description: "halts with an explicit error",
		build: func([]float64) []opcode.Instruction {
			return []opcode.Instruction{bare(opcode.Error)}
		},
	},
}

func init() {
	for name, t := range Library {
		t.Name = name
		Library[name] = t
	}
}

// LookupTemplate returns the library script with the given name.
func LookupTemplate(name string) (Template, bool) {
	t, ok := Library[name]
	return t, ok
}

// TemplateNames returns the library script names in sorted order.
func TemplateNames() []string {
	names := make([]string, 0, len(Library))
	for name := range Library {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
