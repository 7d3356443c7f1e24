// Package opcode defines the instruction set for the trigger script virtual machine.
// This package is the foundation that both script producers and the VM depend on.
// Producers build Scripts out of Instructions, and the VM executes them.
package opcode

import "strconv"

// Op represents an instruction opcode.
// The set of opcodes is closed; the VM rejects any value not listed here.
type Op uint8

// Opcodes of the trigger script VM.
// Pops/pushes describe the evaluation stack effect of each instruction.
const (
	// Nop does nothing.
	Nop Op = iota

	// Push pushes the immediate.
	// Pops: 0, Pushes: 1
	Push

	// Add pops a and b and pushes a+b.
	// Pops: 2, Pushes: 1
	Add

	// AddI pops a and pushes a+immediate.
	// Pops: 1, Pushes: 1
	AddI

	// Beqz pops p and jumps by the immediate if p is zero.
	// Pops: 1, Pushes: 0
	Beqz

	// Bnez pops p and jumps by the immediate if p is non-zero.
	// Pops: 1, Pushes: 0
	Bnez

	// Jump jumps by the immediate unconditionally.
	Jump

	// Test pushes 1 if the player flag named by the immediate is set, else 0.
	// Pops: 0, Pushes: 1
	Test

	// Set sets the player flag named by the immediate.
	Set

	// Clr clears the player flag named by the immediate.
	Clr

	// Bad pops kind, x, y and angle (angle on top) and spawns a baddie.
	// Pops: 4, Pushes: 0
	Bad

	// Unbad removes the baddie referenced by the slot in the immediate.
	Unbad

	// Lock locks the door referenced by the slot in the immediate.
	Lock

	// Unlock unlocks the door referenced by the slot in the immediate.
	Unlock

	// GetGS pushes the strength of the gravfield referenced by the slot in
	// the immediate, or 0 if it no longer exists.
	// Pops: 0, Pushes: 1
	GetGS

	// SetGS pops a value and stores it as the strength of the gravfield
	// referenced by the slot in the immediate.
	// Pops: 1, Pushes: 0
	SetGS

	// Stop terminates the script normally.
	Stop

	// Error terminates the script with a failure.
	Error

	numOps
)

var opNames = [numOps]string{
	Nop:    "nop",
	Push:   "push",
	Add:    "add",
	AddI:   "addi",
	Beqz:   "beqz",
	Bnez:   "bnez",
	Jump:   "jump",
	Test:   "test",
	Set:    "set",
	Clr:    "clr",
	Bad:    "bad",
	Unbad:  "unbad",
	Lock:   "lock",
	Unlock: "unlock",
	GetGS:  "getgs",
	SetGS:  "setgs",
	Stop:   "stop",
	Error:  "error",
}

// hasImmediate marks the opcodes whose immediate operand is meaningful.
var hasImmediate = [numOps]bool{
	Push:   true,
	AddI:   true,
	Beqz:   true,
	Bnez:   true,
	Jump:   true,
	Test:   true,
	Set:    true,
	Clr:    true,
	Unbad:  true,
	Lock:   true,
	Unlock: true,
	GetGS:  true,
	SetGS:  true,
}

// Valid reports whether op is a member of the instruction set.
func (op Op) Valid() bool {
	return op < numOps
}

// String returns the lowercase mnemonic of op.
func (op Op) String() string {
	if !op.Valid() {
		return "op(" + strconv.Itoa(int(op)) + ")"
	}
	return opNames[op]
}

// UsesImmediate reports whether the immediate operand affects op.
func (op Op) UsesImmediate() bool {
	return op.Valid() && hasImmediate[op]
}

// Lookup returns the opcode with the given mnemonic.
func Lookup(name string) (Op, bool) {
	for op, n := range opNames {
		if n == name {
			return Op(op), true
		}
	}
	return 0, false
}

// Instruction is a single decoded VM instruction.
type Instruction struct {
	Op        Op
	Immediate float64
}

// I builds an instruction. The immediate is ignored by opcodes that don't use one.
func I(op Op, immediate float64) Instruction {
	return Instruction{Op: op, Immediate: immediate}
}

// Script is an immutable sequence of instructions.
// The zero value and a nil *Script are both empty scripts.
type Script struct {
	ins []Instruction
}

// New returns a Script holding a copy of ins.
func New(ins ...Instruction) *Script {
	cp := make([]Instruction, len(ins))
	copy(cp, ins)
	return &Script{ins: cp}
}

// Len returns the number of instructions. It is safe to call on a nil Script.
func (s *Script) Len() int {
	if s == nil {
		return 0
	}
	return len(s.ins)
}

// At returns the instruction at pc. It panics if pc is out of range, as
// slice indexing does.
func (s *Script) At(pc int) Instruction {
	return s.ins[pc]
}

// Instructions returns a copy of the script's instructions.
func (s *Script) Instructions() []Instruction {
	if s == nil {
		return nil
	}
	cp := make([]Instruction, len(s.ins))
	copy(cp, s.ins)
	return cp
}
