//go:build !release

package vm

// diagnosticsEnabled turns on the text error report. Build with the
// release tag to drop it.
const diagnosticsEnabled = true
