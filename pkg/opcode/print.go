package opcode

import (
	"io"
	"strconv"
	"strings"
)

// FormatValue formats a value with 12 significant digits, the precision
// used by script listings and the console dump.
func FormatValue(v float64) string {
	return strconv.FormatFloat(v, 'g', 12, 64)
}

// String renders the instruction as "mnemonic [immediate]".
func (ins Instruction) String() string {
	if !ins.Op.UsesImmediate() {
		return ins.Op.String()
	}
	return ins.Op.String() + " " + FormatValue(ins.Immediate)
}

// String renders the script as a single line of instructions separated by "; ".
func (s *Script) String() string {
	var sb strings.Builder
	_ = Fprint(&sb, s)
	return sb.String()
}

// Fprint writes the listing of s to w.
// An empty script is written as "<empty>".
func Fprint(w io.Writer, s *Script) error {
	if s.Len() == 0 {
		_, err := io.WriteString(w, "<empty>")
		return err
	}
	for pc, ins := range s.ins {
		if pc > 0 {
			if _, err := io.WriteString(w, "; "); err != nil {
				return err
			}
		}
		if _, err := io.WriteString(w, ins.String()); err != nil {
			return err
		}
	}
	return nil
}
