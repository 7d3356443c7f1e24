package vm

// StackCapacity is the maximum number of values on the evaluation stack.
const StackCapacity = 24

// stack is the evaluation stack of a single Run call.
// Each pop variant matches the arity of the opcodes that use it; values come
// back in push order, so the top of the stack is the last result.
type stack struct {
	values [StackCapacity]float64
	size   int
}

func (s *stack) push(v float64) *ScriptError {
	if s.size >= StackCapacity {
		return newStackOverflowError()
	}
	s.values[s.size] = v
	s.size++
	return nil
}

func (s *stack) pop1() (float64, *ScriptError) {
	if s.size < 1 {
		return 0, newStackUnderflowError()
	}
	s.size--
	return s.values[s.size], nil
}

func (s *stack) pop2() (a, b float64, err *ScriptError) {
	if s.size < 2 {
		return 0, 0, newStackUnderflowError()
	}
	s.size -= 2
	return s.values[s.size], s.values[s.size+1], nil
}

func (s *stack) pop4() (a, b, c, d float64, err *ScriptError) {
	if s.size < 4 {
		return 0, 0, 0, 0, newStackUnderflowError()
	}
	s.size -= 4
	v := s.values[s.size:]
	return v[0], v[1], v[2], v[3], nil
}

// snapshot returns a copy of the live values, bottom first.
func (s *stack) snapshot() []float64 {
	out := make([]float64, s.size)
	copy(out, s.values[:s.size])
	return out
}
