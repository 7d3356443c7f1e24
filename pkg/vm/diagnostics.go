package vm

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/zurustar/azscript/pkg/opcode"
)

// FormatReport renders the error report for a failed run:
//
//	SCRIPT ERROR: <message>
//	  <script listing>
//	  pc = <pc>
//	  stack: <values>
//
// Immediates in the listing use 12 significant digits; stack values are
// printed at full double precision.
// It returns "" for a run that ended normally.
func FormatReport(script *opcode.Script, res Result) string {
	if res.Err == nil {
		return ""
	}
	var sb strings.Builder
	writeReport(&sb, script, res)
	return sb.String()
}

func writeReport(w io.Writer, script *opcode.Script, res Result) {
	fmt.Fprintf(w, "SCRIPT ERROR: %s\n  ", res.Err.Message)
	_ = opcode.Fprint(w, script)
	fmt.Fprintf(w, "\n  pc = %d\n  stack: ", res.PC)
	for i, v := range res.Stack {
		if i != 0 {
			io.WriteString(w, ", ")
		}
		// スタックは丸めずに出す
		io.WriteString(w, strconv.FormatFloat(v, 'g', -1, 64))
	}
	io.WriteString(w, "\n")
}

// report records a failed run. The text report is only written in debug
// builds; the log record is always emitted.
func report(cfg config, script *opcode.Script, res Result) {
	if cfg.log != nil {
		cfg.log.Warn("Script halted with error",
			"type", res.Err.Type,
			"message", res.Err.Message,
			"pc", res.PC,
			"steps", res.Steps,
			"length", script.Len())
	}
	if diagnosticsEnabled && cfg.diag != nil {
		writeReport(cfg.diag, script, res)
	}
}
