// Package scenario loads room fixtures from YAML or TOML files and turns
// them into rooms for the space package.
//
// Scenario files never contain scripts. Triggers name a template from
// Library and pass entity names or numbers as arguments.
package scenario

// Scenario is the decoded content of a scenario file.
type Scenario struct {
	Name        string          `yaml:"name" toml:"name"`
	Description string          `yaml:"description" toml:"description"`
	Flags       []int           `yaml:"flags" toml:"flags"`
	Baddies     []BaddieSpec    `yaml:"baddies" toml:"baddies"`
	Doors       []DoorSpec      `yaml:"doors" toml:"doors"`
	Gravfields  []GravfieldSpec `yaml:"gravfields" toml:"gravfields"`
	Nodes       []NodeSpec      `yaml:"nodes" toml:"nodes"`
	OnStart     *ScriptRef      `yaml:"on_start" toml:"on_start"`
	Triggers    []TriggerSpec   `yaml:"triggers" toml:"triggers"`

	// Source is the file the scenario was read from (set at load time).
	Source string `yaml:"-" toml:"-"`
}

// Placement is the position shared by every entity declaration.
type Placement struct {
	X     float64 `yaml:"x" toml:"x"`
	Y     float64 `yaml:"y" toml:"y"`
	Angle float64 `yaml:"angle" toml:"angle"` // Degrees
}

type BaddieSpec struct {
	Name      string `yaml:"name" toml:"name"`
	Kind      string `yaml:"kind" toml:"kind"`
	Slot      int    `yaml:"slot" toml:"slot"`
	Placement `yaml:",inline" toml:",inline"`
	OnKill    *ScriptRef `yaml:"on_kill" toml:"on_kill"`
}

type DoorSpec struct {
	Name      string `yaml:"name" toml:"name"`
	Kind      string `yaml:"kind" toml:"kind"`
	Slot      int    `yaml:"slot" toml:"slot"`
	Open      bool   `yaml:"open" toml:"open"`
	Placement `yaml:",inline" toml:",inline"`
}

type GravfieldSpec struct {
	Name      string   `yaml:"name" toml:"name"`
	Kind      string   `yaml:"kind" toml:"kind"`
	Slot      int      `yaml:"slot" toml:"slot"`
	Strength  float64  `yaml:"strength" toml:"strength"`
	Size      SizeSpec `yaml:"size" toml:"size"`
	Placement `yaml:",inline" toml:",inline"`
}

// SizeSpec is the shape of a gravfield. Trapezoid fields use the first
// four values, sector fields the rest.
type SizeSpec struct {
	Semilength     float64 `yaml:"semilength" toml:"semilength"`
	FrontOffset    float64 `yaml:"front_offset" toml:"front_offset"`
	FrontSemiwidth float64 `yaml:"front_semiwidth" toml:"front_semiwidth"`
	RearSemiwidth  float64 `yaml:"rear_semiwidth" toml:"rear_semiwidth"`
	InnerRadius    float64 `yaml:"inner_radius" toml:"inner_radius"`
	Thickness      float64 `yaml:"thickness" toml:"thickness"`
	SweepDegrees   float64 `yaml:"sweep_degrees" toml:"sweep_degrees"`
}

type NodeSpec struct {
	Name      string `yaml:"name" toml:"name"`
	Slot      int    `yaml:"slot" toml:"slot"`
	Placement `yaml:",inline" toml:",inline"`
	OnUse     *ScriptRef `yaml:"on_use" toml:"on_use"`
}

// ScriptRef names a library template and its arguments. Each argument is
// either the name of an entity in the scenario or a number.
type ScriptRef struct {
	Script string   `yaml:"script" toml:"script"`
	Args   []string `yaml:"args" toml:"args"`
}

// TriggerSpec is a named script that can be fired, or run every Every ticks.
type TriggerSpec struct {
	Name      string `yaml:"name" toml:"name"`
	Every     int    `yaml:"every" toml:"every"`
	ScriptRef `yaml:",inline" toml:",inline"`
}

// TriggerNames returns the names that can be fired in the scenario:
// triggers first, then nodes with an OnUse script.
func (s *Scenario) TriggerNames() []string {
	var names []string
	for _, t := range s.Triggers {
		names = append(names, t.Name)
	}
	for _, n := range s.Nodes {
		if n.OnUse != nil {
			names = append(names, n.Name)
		}
	}
	return names
}
