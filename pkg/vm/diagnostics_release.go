//go:build release

package vm

const diagnosticsEnabled = false
