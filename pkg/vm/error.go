// Package vm provides error handling for the trigger script virtual machine.
package vm

import (
	"errors"
	"fmt"
)

// ErrorType represents the reason a script halted with an error.
type ErrorType string

const (
	// Stack discipline
	ErrorStackOverflow  ErrorType = "STACK_OVERFLOW"
	ErrorStackUnderflow ErrorType = "STACK_UNDERFLOW"

	// Control flow
	ErrorJumpOutOfRange    ErrorType = "JUMP_OUT_OF_RANGE"
	ErrorStepLimitExceeded ErrorType = "STEP_LIMIT_EXCEEDED"
	ErrorInvalidOpcode     ErrorType = "INVALID_OPCODE"
	ErrorExplicit          ErrorType = "EXPLICIT_ERROR"

	// World access
	ErrorInvalidEntityReference ErrorType = "INVALID_ENTITY_REFERENCE"
	ErrorInvalidEntityKind      ErrorType = "INVALID_ENTITY_KIND"
	ErrorIllegalDoorOperation   ErrorType = "ILLEGAL_DOOR_OPERATION"
	ErrorInvalidFlag            ErrorType = "INVALID_FLAG"
)

// ScriptError describes why a script run halted.
// It only ever ends the current run; world mutations made earlier in the
// same run are kept.
type ScriptError struct {
	Type    ErrorType
	Message string
	PC      int // Program counter of the failing instruction, -1 if unknown
}

// Error implements the error interface.
func (e *ScriptError) Error() string {
	if e.PC >= 0 {
		return fmt.Sprintf("[%s] %s at pc %d", e.Type, e.Message, e.PC)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// NewScriptError creates a ScriptError with no program counter.
func NewScriptError(errType ErrorType, message string) *ScriptError {
	return &ScriptError{
		Type:    errType,
		Message: message,
		PC:      -1,
	}
}

// IsErrorType reports whether err is a *ScriptError of the given type.
func IsErrorType(err error, errType ErrorType) bool {
	var se *ScriptError
	if errors.As(err, &se) && se != nil {
		return se.Type == errType
	}
	return false
}

// Error helper functions for each halt reason. Messages match what script
// authors see in error reports.

func newStackOverflowError() *ScriptError {
	return NewScriptError(ErrorStackOverflow, "stack overflow")
}

func newStackUnderflowError() *ScriptError {
	return NewScriptError(ErrorStackUnderflow, "stack underflow")
}

func newJumpOutOfRangeError(target float64) *ScriptError {
	return NewScriptError(ErrorJumpOutOfRange, fmt.Sprintf("jump out of range (offset %g)", target))
}

func newStepLimitError(limit int) *ScriptError {
	return NewScriptError(ErrorStepLimitExceeded, fmt.Sprintf("ran for too long (%d steps)", limit))
}

func newInvalidOpcodeError(op fmt.Stringer) *ScriptError {
	return NewScriptError(ErrorInvalidOpcode, fmt.Sprintf("invalid opcode %s", op))
}

func newExplicitError() *ScriptError {
	return NewScriptError(ErrorExplicit, "ERROR opcode")
}

func newInvalidUUIDError(slot float64, want fmt.Stringer) *ScriptError {
	return NewScriptError(ErrorInvalidEntityReference, fmt.Sprintf("invalid uuid (slot %g, want %s)", slot, want))
}

func newInvalidBaddieKindError(kind float64) *ScriptError {
	return NewScriptError(ErrorInvalidEntityKind, fmt.Sprintf("invalid baddie kind %g", kind))
}

func newPassageError(verb string) *ScriptError {
	return NewScriptError(ErrorIllegalDoorOperation, "cannot "+verb+" passage")
}

func newInvalidFlagError(flag float64) *ScriptError {
	return NewScriptError(ErrorInvalidFlag, fmt.Sprintf("invalid flag %g", flag))
}
