package app

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/zurustar/azscript/pkg/scenario"
)

const labYAML = `
name: lab
description: one door and a field
doors:
  - name: exit
    kind: normal
    slot: 1
    open: true
gravfields:
  - name: field
    kind: trapezoid
    slot: 2
    strength: 10
nodes:
  - name: console
    on_use: {script: unlock-exit, args: [exit]}
on_start: {script: set-flag, args: ["1"]}
triggers:
  - name: lock
    script: lock-exit
    args: [exit]
  - name: boost
    script: boost-gravity
    args: [field, "5"]
  - name: spin
    script: runaway-loop
`

const yardTOML = `
name = "yard"
flags = [6]

[[triggers]]
name = "mark"
script = "set-flag"
args = ["8"]
`

func testFS() fstest.MapFS {
	return fstest.MapFS{
		"scenarios/lab.yaml": {Data: []byte(labYAML)},
		"scenarios/yard.toml": {Data: []byte(yardTOML)},
		"scenarios/README":    {Data: []byte("not a scenario")},
	}
}

// run はアプリケーションを実行し、標準出力の内容を返す
func run(t *testing.T, fsys fstest.MapFS, stdin string, args ...string) (string, error) {
	t.Helper()
	for _, key := range []string{"HEADLESS", "TIMEOUT", "LOG_LEVEL", "AZSCRIPT_SCENARIO"} {
		t.Setenv(key, "")
	}
	var app *Application
	if fsys == nil {
		app = New(nil)
	} else {
		app = New(fsys)
	}
	var out bytes.Buffer
	app.SetIO(strings.NewReader(stdin), &out, io.Discard)
	err := app.Run(args)
	return out.String(), err
}

func TestRun_Help(t *testing.T) {
	out, err := run(t, testFS(), "", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Usage:") {
		t.Errorf("help output = %q", out)
	}
}

func TestRun_InvalidArgs(t *testing.T) {
	_, err := run(t, testFS(), "", "--log-level", "loud")
	if err == nil || !strings.Contains(err.Error(), "failed to parse args") {
		t.Errorf("err = %v", err)
	}
}

func TestRun_List(t *testing.T) {
	out, err := run(t, testFS(), "", "--list")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"lab", "embedded:lab.yaml", "one door and a field", "  - lock", "  - console", "yard", "  - mark"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "README") {
		t.Errorf("non-scenario file listed:\n%s", out)
	}
}

func TestRun_Fire(t *testing.T) {
	out, err := run(t, testFS(), "", "-s", "lab", "--fire", "lock,boost,console")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{
		"lock: normal after 1 steps",
		"boost: normal after 3 steps",
		"console: normal after 1 steps",
		"room: lab",
		"flags: [1]",
		"strength 15",
		"normal closed",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_FireScriptFailureIsReported(t *testing.T) {
	out, err := run(t, testFS(), "", "-s", "lab", "--fire", "spin", "--max-steps", "10")
	if err != nil {
		t.Fatalf("script failures must not fail the run: %v", err)
	}
	if !strings.Contains(out, "ran for too long (10 steps)") {
		t.Errorf("output = %q", out)
	}
}

func TestRun_FireUnknownTrigger(t *testing.T) {
	_, err := run(t, testFS(), "", "-s", "yard", "--fire", "lock")
	if err == nil || !strings.Contains(err.Error(), "unknown trigger") {
		t.Errorf("err = %v", err)
	}
}

func TestRun_UnknownScenario(t *testing.T) {
	_, err := run(t, testFS(), "", "-s", "moon", "--headless")
	if err == nil || !strings.Contains(err.Error(), "scenario not found: moon") {
		t.Errorf("err = %v", err)
	}
}

func TestRun_NoScenarios(t *testing.T) {
	_, err := run(t, nil, "", "--headless")
	if !errors.Is(err, scenario.ErrNoScenarios) {
		t.Errorf("err = %v, want ErrNoScenarios", err)
	}
}

func TestRun_HeadlessSelectsThenConsole(t *testing.T) {
	out, err := run(t, testFS(), "2\nmark\nstate\nq\n", "--headless")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, want := range []string{"Available scenarios:", "Selected: yard", "mark: normal after 1 steps", "flags: [6 8]"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRun_HeadlessCancelled(t *testing.T) {
	_, err := run(t, testFS(), "q\n", "--headless")
	if err == nil || !strings.Contains(err.Error(), "user cancelled") {
		t.Errorf("err = %v", err)
	}
}

func TestRun_ExternalFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "yard.toml")
	if err := os.WriteFile(path, []byte(yardTOML), 0644); err != nil {
		t.Fatal(err)
	}

	// 外部シナリオが1つだけなら自動選択される
	out, err := run(t, testFS(), "", path, "--fire", "mark")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "room: yard") {
		t.Errorf("output = %q", out)
	}
}

func TestRun_ExternalMissing(t *testing.T) {
	_, err := run(t, testFS(), "", filepath.Join(t.TempDir(), "none.yaml"), "--headless")
	if err == nil || !strings.Contains(err.Error(), "does not exist") {
		t.Errorf("err = %v", err)
	}
}

func TestRun_ExternalInvalid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("name: bad\nflags: [99]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := run(t, testFS(), "", path, "--headless")
	var verr *scenario.ValidationError
	if !errors.As(err, &verr) {
		t.Errorf("err = %v, want *scenario.ValidationError", err)
	}
}
