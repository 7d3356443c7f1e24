package scenario

import (
	"fmt"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/opcode"
	"github.com/zurustar/azscript/pkg/space"
	"github.com/zurustar/azscript/pkg/vector"
)

func radians(degrees float64) float64 {
	return vector.Mod2Pi(degrees * vector.Pi / 180)
}

func (p Placement) position() vector.Vector {
	return vector.Vector{X: p.X, Y: p.Y}
}

// Build validates the scenario and converts it into a room. Script
// references are instantiated from Library with entity names replaced by
// their slots.
func (s *Scenario) Build() (*space.Room, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}

	v := &validator{entities: make(map[string]named), slots: make(map[int]string)}
	room := &space.Room{
		Name:  s.Name,
		Flags: append([]int(nil), s.Flags...),
	}

	for i, b := range s.Baddies {
		kind, _ := entity.ParseBaddieKind(b.Kind)
		v.entity("baddie", i, b.Name, entity.KindBaddie, b.Slot)
		room.Baddies = append(room.Baddies, space.BaddieFixture{
			Slot: b.Slot,
			Baddie: space.Baddie{
				Kind:     kind,
				Position: b.position(),
				Angle:    radians(b.Angle),
			},
		})
	}
	for i, d := range s.Doors {
		kind, _ := entity.ParseDoorKind(d.Kind)
		v.entity("door", i, d.Name, entity.KindDoor, d.Slot)
		room.Doors = append(room.Doors, space.DoorFixture{
			Slot: d.Slot,
			Door: space.Door{
				Kind:     kind,
				IsOpen:   d.Open || kind == entity.DoorPassage,
				Position: d.position(),
				Angle:    radians(d.Angle),
			},
		})
	}
	for i, g := range s.Gravfields {
		kind, _ := entity.ParseGravfieldKind(g.Kind)
		v.entity("gravfield", i, g.Name, entity.KindGravfield, g.Slot)
		room.Gravfields = append(room.Gravfields, space.GravfieldFixture{
			Slot: g.Slot,
			Gravfield: space.Gravfield{
				Kind:     kind,
				Strength: g.Strength,
				Position: g.position(),
				Angle:    radians(g.Angle),
				Size:     space.GravfieldSize(g.Size),
			},
		})
	}
	for i, n := range s.Nodes {
		v.entity("node", i, n.Name, entity.KindNode, n.Slot)
		room.Nodes = append(room.Nodes, space.NodeFixture{
			Slot: n.Slot,
			Node: space.Node{Name: n.Name, Position: n.position()},
		})
	}

	// スクリプトは全エンティティの登録後に生成する
	var err error
	if room.OnStart, err = v.instantiate(s.OnStart); err != nil {
		return nil, fmt.Errorf("scenario %s on_start: %w", s.Name, err)
	}
	for i, b := range s.Baddies {
		if room.Baddies[i].OnKill, err = v.instantiate(b.OnKill); err != nil {
			return nil, fmt.Errorf("scenario %s baddie %d: %w", s.Name, i, err)
		}
	}
	for i, n := range s.Nodes {
		if room.Nodes[i].OnUse, err = v.instantiate(n.OnUse); err != nil {
			return nil, fmt.Errorf("scenario %s node %q: %w", s.Name, n.Name, err)
		}
	}
	for _, t := range s.Triggers {
		ref := t.ScriptRef
		script, err := v.instantiate(&ref)
		if err != nil {
			return nil, fmt.Errorf("scenario %s trigger %q: %w", s.Name, t.Name, err)
		}
		room.Triggers = append(room.Triggers, space.Trigger{Name: t.Name, Script: script, Every: t.Every})
	}

	return room, nil
}

// instantiate builds the script for ref. A nil ref yields a nil script.
func (v *validator) instantiate(ref *ScriptRef) (*opcode.Script, error) {
	if ref == nil {
		return nil, nil
	}
	args, err := v.resolveArgs(ref)
	if err != nil {
		return nil, err
	}
	t, _ := LookupTemplate(ref.Script)
	return t.Instantiate(args)
}
