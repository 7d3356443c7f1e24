package scenario

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/space"
)

// ValidationError lists every problem found in a scenario.
type ValidationError struct {
	Scenario string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid scenario %s: %s", e.Scenario, strings.Join(e.Problems, "; "))
}

// named is an entity that script arguments can refer to.
type named struct {
	kind entity.Kind
	slot int
}

type validator struct {
	problems []string
	entities map[string]named
	slots    map[int]string
}

func (v *validator) addf(format string, args ...any) {
	v.problems = append(v.problems, fmt.Sprintf(format, args...))
}

// entity records an entity declaration and checks its name and slot.
func (v *validator) entity(what string, index int, name string, kind entity.Kind, slot int) {
	label := fmt.Sprintf("%s %d", what, index)
	if name != "" {
		label = fmt.Sprintf("%s %q", what, name)
		if _, dup := v.entities[name]; dup {
			v.addf("%s: duplicate entity name", label)
		}
		v.entities[name] = named{kind: kind, slot: slot}
	}
	if slot == 0 {
		return
	}
	if slot < 1 || slot > entity.NumSlots {
		v.addf("%s: slot %d out of range [1, %d]", label, slot, entity.NumSlots)
		return
	}
	if other, used := v.slots[slot]; used {
		v.addf("%s: slot %d already used by %s", label, slot, other)
		return
	}
	v.slots[slot] = label
}

// Validate checks kinds, slots, flags, capacities and script references.
// It returns a *ValidationError listing every problem found.
func (s *Scenario) Validate() error {
	v := &validator{
		entities: make(map[string]named),
		slots:    make(map[int]string),
	}

	for _, f := range s.Flags {
		if f < 0 || f >= entity.NumFlags {
			v.addf("flag %d out of range [0, %d)", f, entity.NumFlags)
		}
	}

	if len(s.Baddies) > space.MaxBaddies {
		v.addf("%d baddies exceed the limit of %d", len(s.Baddies), space.MaxBaddies)
	}
	if len(s.Doors) > space.MaxDoors {
		v.addf("%d doors exceed the limit of %d", len(s.Doors), space.MaxDoors)
	}
	if len(s.Gravfields) > space.MaxGravfields {
		v.addf("%d gravfields exceed the limit of %d", len(s.Gravfields), space.MaxGravfields)
	}
	if len(s.Nodes) > space.MaxNodes {
		v.addf("%d nodes exceed the limit of %d", len(s.Nodes), space.MaxNodes)
	}

	// 1. エンティティ宣言
	for i, b := range s.Baddies {
		if _, err := entity.ParseBaddieKind(b.Kind); err != nil {
			v.addf("baddie %d: %v", i, err)
		}
		v.entity("baddie", i, b.Name, entity.KindBaddie, b.Slot)
	}
	for i, d := range s.Doors {
		if _, err := entity.ParseDoorKind(d.Kind); err != nil {
			v.addf("door %d: %v", i, err)
		}
		v.entity("door", i, d.Name, entity.KindDoor, d.Slot)
	}
	for i, g := range s.Gravfields {
		if _, err := entity.ParseGravfieldKind(g.Kind); err != nil {
			v.addf("gravfield %d: %v", i, err)
		}
		v.entity("gravfield", i, g.Name, entity.KindGravfield, g.Slot)
	}
	for i, n := range s.Nodes {
		if n.Name == "" {
			v.addf("node %d: missing name", i)
		}
		v.entity("node", i, n.Name, entity.KindNode, n.Slot)
	}

	// 2. スクリプト参照
	if s.OnStart != nil {
		v.scriptRef("on_start", s.OnStart)
	}
	for i, b := range s.Baddies {
		if b.OnKill != nil {
			v.scriptRef(fmt.Sprintf("baddie %d on_kill", i), b.OnKill)
		}
	}
	for _, n := range s.Nodes {
		if n.OnUse != nil {
			v.scriptRef(fmt.Sprintf("node %q on_use", n.Name), n.OnUse)
		}
	}

	fireable := make(map[string]bool)
	for i, t := range s.Triggers {
		label := fmt.Sprintf("trigger %q", t.Name)
		if t.Name == "" {
			label = fmt.Sprintf("trigger %d", i)
			v.addf("%s: missing name", label)
		} else if fireable[t.Name] {
			v.addf("%s: duplicate trigger name", label)
		}
		fireable[t.Name] = true
		if t.Every < 0 {
			v.addf("%s: every must not be negative", label)
		}
		ref := t.ScriptRef
		v.scriptRef(label, &ref)
	}
	for _, n := range s.Nodes {
		if n.OnUse != nil && fireable[n.Name] {
			v.addf("node %q: name is already used by a trigger", n.Name)
		}
	}

	if len(v.problems) > 0 {
		return &ValidationError{Scenario: s.Name, Problems: v.problems}
	}
	return nil
}

func (v *validator) scriptRef(label string, ref *ScriptRef) {
	if _, err := v.resolveArgs(ref); err != nil {
		v.addf("%s: %v", label, err)
	}
}

// resolveArgs converts the arguments of ref to the values passed to its
// template: slot numbers for entity parameters, numbers otherwise.
func (v *validator) resolveArgs(ref *ScriptRef) ([]float64, error) {
	t, ok := LookupTemplate(ref.Script)
	if !ok {
		return nil, fmt.Errorf("unknown script %q", ref.Script)
	}
	if len(ref.Args) != len(t.Params) {
		return nil, fmt.Errorf("script %s takes %d arguments, got %d", t.Name, len(t.Params), len(ref.Args))
	}

	out := make([]float64, len(ref.Args))
	for i, arg := range ref.Args {
		p := t.Params[i]
		if p.Kind == entity.KindNone {
			n, err := parseNumber(arg)
			if err != nil {
				return nil, fmt.Errorf("script %s argument %s: %w", t.Name, p.Name, err)
			}
			out[i] = n
			continue
		}
		e, ok := v.entities[arg]
		if !ok {
			return nil, fmt.Errorf("script %s argument %s: unknown entity %q", t.Name, p.Name, arg)
		}
		if e.kind != p.Kind {
			return nil, fmt.Errorf("script %s argument %s: %q is a %s, want %s", t.Name, p.Name, arg, e.kind, p.Kind)
		}
		if e.slot == 0 {
			return nil, fmt.Errorf("script %s argument %s: %q has no slot", t.Name, p.Name, arg)
		}
		out[i] = float64(e.slot)
	}
	return out, nil
}

// parseNumber accepts a decimal number or a baddie kind name.
func parseNumber(arg string) (float64, error) {
	if n, err := strconv.ParseFloat(arg, 64); err == nil {
		return n, nil
	}
	if k, err := entity.ParseBaddieKind(arg); err == nil {
		return float64(k), nil
	}
	return 0, fmt.Errorf("%q is not a number", arg)
}
