// Package vm provides the virtual machine for executing trigger scripts.
// A script runs to completion inside a single call to Run:
// - instructions execute one at a time against a small evaluation stack
// - entities are reached through the world's slot table
// - every run is bounded by a step limit, so no script can hang the host
// - any violated invariant halts the run with a ScriptError instead of panicking
package vm

import (
	"io"
	"log/slog"
	"math"
	"os"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/logger"
	"github.com/zurustar/azscript/pkg/opcode"
	"github.com/zurustar/azscript/pkg/vector"
)

// DefaultMaxSteps is how many instructions a script may execute before it is
// halted as an infinite loop.
const DefaultMaxSteps = 100

// Status is the outcome of a script run.
type Status int

const (
	// StatusNormal means the script stopped, or ran off its end.
	StatusNormal Status = iota
	// StatusError means the script halted on a ScriptError.
	StatusError
)

func (s Status) String() string {
	if s == StatusNormal {
		return "normal"
	}
	return "error"
}

// Result describes how a script run ended.
type Result struct {
	Status Status
	Err    *ScriptError // Set when Status is StatusError
	PC     int          // Program counter when the run ended
	Steps  int          // Instructions started, including one rejected by the step limit
	Stack  []float64    // Evaluation stack at termination, bottom first
}

// OK reports whether the run ended normally.
func (r Result) OK() bool {
	return r.Status == StatusNormal
}

// Option is a functional option for configuring a run.
type Option func(*config)

type config struct {
	log      *slog.Logger
	diag     io.Writer
	maxSteps int
}

// WithLogger sets the logger used to record failed runs.
func WithLogger(log *slog.Logger) Option {
	return func(c *config) {
		c.log = log
	}
}

// WithDiagnostics sets where error reports are written. A nil writer
// disables the reports. The default is os.Stderr.
func WithDiagnostics(w io.Writer) Option {
	return func(c *config) {
		c.diag = w
	}
}

// WithMaxSteps overrides the step limit. Values <= 0 keep DefaultMaxSteps.
func WithMaxSteps(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxSteps = n
		}
	}
}

// machine holds the state of one Run call.
type machine struct {
	world  World
	refs   *entity.Table
	script *opcode.Script
	stack  stack
	pc     int
	next   int
	steps  int
	limit  int
}

// Run executes script against world and reports how it ended.
// A nil or empty script is a normal no-op. Run never panics on script
// content and always terminates.
func Run(world World, script *opcode.Script, opts ...Option) Result {
	if script.Len() == 0 {
		return Result{Status: StatusNormal}
	}

	cfg := config{
		log:      logger.GetLogger(),
		diag:     os.Stderr,
		maxSteps: DefaultMaxSteps,
	}
	for _, opt := range opts {
		opt(&cfg)
	}

	refs := world.Refs()
	if refs == nil {
		refs = &entity.Table{}
	}

	m := &machine{
		world:  world,
		refs:   refs,
		script: script,
		limit:  cfg.maxSteps,
	}
	err := m.run()

	res := Result{
		Status: StatusNormal,
		PC:     m.pc,
		Steps:  m.steps,
		Stack:  m.stack.snapshot(),
	}
	if err != nil {
		err.PC = m.pc
		res.Status = StatusError
		res.Err = err
		report(cfg, script, res)
	}
	return res
}

func (m *machine) run() *ScriptError {
	n := m.script.Len()
	for m.pc < n {
		m.steps++
		if m.steps > m.limit {
			return newStepLimitError(m.limit)
		}
		m.next = m.pc + 1
		stop, err := m.exec(m.script.At(m.pc))
		if err != nil || stop {
			return err
		}
		m.pc = m.next
	}
	return nil
}

// exec runs a single instruction. stop is true when the script should end
// normally.
func (m *machine) exec(ins opcode.Instruction) (stop bool, err *ScriptError) {
	imm := ins.Immediate
	switch ins.Op {
	case opcode.Nop:
		return false, nil

	// Stack manipulation
	case opcode.Push:
		return false, m.stack.push(imm)

	// Arithmetic
	case opcode.Add:
		a, b, err := m.stack.pop2()
		if err != nil {
			return false, err
		}
		return false, m.stack.push(a + b)
	case opcode.AddI:
		a, err := m.stack.pop1()
		if err != nil {
			return false, err
		}
		return false, m.stack.push(a + imm)

	// Branches
	case opcode.Beqz:
		p, err := m.stack.pop1()
		if err != nil {
			return false, err
		}
		if p == 0 {
			return false, m.jump(imm)
		}
		return false, nil
	case opcode.Bnez:
		p, err := m.stack.pop1()
		if err != nil {
			return false, err
		}
		if p != 0 {
			return false, m.jump(imm)
		}
		return false, nil
	case opcode.Jump:
		return false, m.jump(imm)

	// Flags
	case opcode.Test:
		flag, err := flagIndex(imm)
		if err != nil {
			return false, err
		}
		if m.world.TestFlag(flag) {
			return false, m.stack.push(1)
		}
		return false, m.stack.push(0)
	case opcode.Set:
		flag, err := flagIndex(imm)
		if err != nil {
			return false, err
		}
		m.world.SetFlag(flag)
		return false, nil
	case opcode.Clr:
		flag, err := flagIndex(imm)
		if err != nil {
			return false, err
		}
		m.world.ClearFlag(flag)
		return false, nil

	// Baddies
	case opcode.Bad:
		k, x, y, angle, err := m.stack.pop4()
		if err != nil {
			return false, err
		}
		n, ok := truncate(k)
		kind := entity.BaddieKind(n)
		if !ok || !kind.Spawnable() {
			return false, newInvalidBaddieKindError(k)
		}
		// A full world drops the spawn without failing the script.
		m.world.SpawnBaddie(kind, vector.Vector{X: x, Y: y}, angle)
		return false, nil
	case opcode.Unbad:
		id, err := m.resolve(imm, entity.KindBaddie)
		if err != nil {
			return false, err
		}
		if h, ok := m.world.FindBaddie(id); ok {
			m.world.RemoveBaddie(h)
		}
		return false, nil

	// Doors
	case opcode.Lock:
		id, err := m.resolve(imm, entity.KindDoor)
		if err != nil {
			return false, err
		}
		if h, ok := m.world.FindDoor(id); ok {
			if m.world.IsPassage(h) {
				return false, newPassageError("lock")
			}
			m.world.LockDoor(h)
		}
		return false, nil
	case opcode.Unlock:
		id, err := m.resolve(imm, entity.KindDoor)
		if err != nil {
			return false, err
		}
		if h, ok := m.world.FindDoor(id); ok {
			if m.world.IsPassage(h) {
				return false, newPassageError("unlock")
			}
			m.world.UnlockDoor(h)
		}
		return false, nil

	// Gravfields
	case opcode.GetGS:
		id, err := m.resolve(imm, entity.KindGravfield)
		if err != nil {
			return false, err
		}
		strength := 0.0
		if h, ok := m.world.FindGravfield(id); ok {
			strength = m.world.FieldStrength(h)
		}
		return false, m.stack.push(strength)
	case opcode.SetGS:
		value, err := m.stack.pop1()
		if err != nil {
			return false, err
		}
		id, err := m.resolve(imm, entity.KindGravfield)
		if err != nil {
			return false, err
		}
		if h, ok := m.world.FindGravfield(id); ok {
			m.world.SetFieldStrength(h, value)
		}
		return false, nil

	// Termination
	case opcode.Stop:
		return true, nil
	case opcode.Error:
		return false, newExplicitError()
	}

	return false, newInvalidOpcodeError(ins.Op)
}

// jump sets the next instruction to pc+offset. The end of the script is a
// valid target and stops the run.
func (m *machine) jump(offset float64) *ScriptError {
	delta, ok := truncate(offset)
	if !ok {
		return newJumpOutOfRangeError(offset)
	}
	target := m.pc + delta
	if target < 0 || target > m.script.Len() {
		return newJumpOutOfRangeError(offset)
	}
	m.next = target
	return nil
}

// resolve looks up the entity id stored in the slot named by v.
func (m *machine) resolve(v float64, kind entity.Kind) (entity.UID, *ScriptError) {
	slot, ok := truncate(v)
	if !ok {
		return entity.UID{}, newInvalidUUIDError(v, kind)
	}
	id, ok := m.refs.Resolve(slot, kind)
	if !ok {
		return entity.UID{}, newInvalidUUIDError(v, kind)
	}
	return id, nil
}

func flagIndex(v float64) (int, *ScriptError) {
	flag, ok := truncate(v)
	if !ok || flag < 0 || flag >= entity.NumFlags {
		return 0, newInvalidFlagError(v)
	}
	return flag, nil
}

// maxIndex bounds the magnitude of values converted to indices, well beyond
// any script length, slot, kind or flag.
const maxIndex = 1 << 30

// truncate converts v to an int, rounding toward zero. ok is false for NaN,
// infinities and magnitudes no index could have.
func truncate(v float64) (n int, ok bool) {
	if math.IsNaN(v) || v >= maxIndex || v <= -maxIndex {
		return 0, false
	}
	return int(v), true
}
