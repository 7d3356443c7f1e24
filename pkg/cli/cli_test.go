package cli

import (
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"
)

// clearEnv は環境変数の影響を受けないようにする
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"HEADLESS", "TIMEOUT", "LOG_LEVEL", "AZSCRIPT_SCENARIO"} {
		t.Setenv(key, "")
	}
}

func TestParseArgs_ValidArgs(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		expected Config
	}{
		{
			name:     "デフォルト設定",
			args:     []string{},
			expected: Config{LogLevel: "info"},
		},
		{
			name:     "シナリオパス指定",
			args:     []string{"rooms/hangar.yaml"},
			expected: Config{ScenarioPath: "rooms/hangar.yaml", LogLevel: "info"},
		},
		{
			name:     "タイムアウト指定",
			args:     []string{"--timeout", "10"},
			expected: Config{Timeout: 10 * time.Second, LogLevel: "info"},
		},
		{
			name:     "タイムアウト指定（短縮形）",
			args:     []string{"-t", "5"},
			expected: Config{Timeout: 5 * time.Second, LogLevel: "info"},
		},
		{
			name:     "ログレベル指定（短縮形）",
			args:     []string{"-l", "error"},
			expected: Config{LogLevel: "error"},
		},
		{
			name:     "シナリオ名",
			args:     []string{"-s", "reactor"},
			expected: Config{ScenarioName: "reactor", LogLevel: "info"},
		},
		{
			name:     "トリガー発火",
			args:     []string{"--fire", "lock-exit, flip,,console"},
			expected: Config{Fire: []string{"lock-exit", "flip", "console"}, LogLevel: "info"},
		},
		{
			name:     "最大ステップ数",
			args:     []string{"--max-steps=500"},
			expected: Config{MaxSteps: 500, LogLevel: "info"},
		},
		{
			name:     "一覧表示",
			args:     []string{"--list", "rooms"},
			expected: Config{ScenarioPath: "rooms", List: true, LogLevel: "info"},
		},
		{
			name:     "ヘルプ表示（短縮形）",
			args:     []string{"-h"},
			expected: Config{LogLevel: "info", ShowHelp: true},
		},
		{
			name: "位置引数が最初（順序に関係なく動作）",
			args: []string{"rooms", "--timeout", "10", "--headless", "-f", "pulse"},
			expected: Config{
				ScenarioPath: "rooms",
				Timeout:      10 * time.Second,
				LogLevel:     "info",
				Headless:     true,
				Fire:         []string{"pulse"},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*config, tt.expected) {
				t.Errorf("ParseArgs(%q) = %+v, want %+v", tt.args, *config, tt.expected)
			}
		})
	}
}

func TestParseArgs_InvalidArgs(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{"負のタイムアウト", []string{"--timeout", "-10"}},
		{"無効なログレベル", []string{"--log-level", "invalid"}},
		{"無効なログレベル（短縮形）", []string{"-l", "trace"}},
		{"負の最大ステップ数", []string{"--max-steps", "-1"}},
		{"数値でないタイムアウト", []string{"-t", "soon"}},
		{"未知のフラグ", []string{"--bogus"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			if _, err := ParseArgs(tt.args); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestParseArgs_Environment(t *testing.T) {
	tests := []struct {
		name     string
		env      map[string]string
		args     []string
		expected Config
	}{
		{
			name:     "HEADLESS=1",
			env:      map[string]string{"HEADLESS": "1"},
			expected: Config{LogLevel: "info", Headless: true},
		},
		{
			name:     "HEADLESS=TRUE",
			env:      map[string]string{"HEADLESS": "TRUE"},
			expected: Config{LogLevel: "info", Headless: true},
		},
		{
			name:     "HEADLESS=0",
			env:      map[string]string{"HEADLESS": "0"},
			expected: Config{LogLevel: "info"},
		},
		{
			name:     "TIMEOUT",
			env:      map[string]string{"TIMEOUT": "7"},
			expected: Config{LogLevel: "info", Timeout: 7 * time.Second},
		},
		{
			name:     "無効なTIMEOUTは無視",
			env:      map[string]string{"TIMEOUT": "abc"},
			expected: Config{LogLevel: "info"},
		},
		{
			name:     "フラグが優先",
			env:      map[string]string{"TIMEOUT": "7", "LOG_LEVEL": "debug"},
			args:     []string{"-t", "3", "-l", "warn"},
			expected: Config{LogLevel: "warn", Timeout: 3 * time.Second},
		},
		{
			name:     "LOG_LEVEL",
			env:      map[string]string{"LOG_LEVEL": "DEBUG"},
			expected: Config{LogLevel: "debug"},
		},
		{
			name:     "AZSCRIPT_SCENARIO",
			env:      map[string]string{"AZSCRIPT_SCENARIO": "rooms"},
			expected: Config{LogLevel: "info", ScenarioPath: "rooms"},
		},
		{
			name:     "位置引数が優先",
			env:      map[string]string{"AZSCRIPT_SCENARIO": "rooms"},
			args:     []string{"other.toml"},
			expected: Config{LogLevel: "info", ScenarioPath: "other.toml"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			config, err := ParseArgs(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(*config, tt.expected) {
				t.Errorf("got %+v, want %+v", *config, tt.expected)
			}
		})
	}
}

func TestReorderArgs(t *testing.T) {
	tests := []struct {
		args []string
		want []string
	}{
		{nil, nil},
		{[]string{"a", "-t", "5"}, []string{"-t", "5", "a"}},
		{[]string{"--headless", "a"}, []string{"--headless", "a"}},
		{[]string{"a", "--list", "-h"}, []string{"--list", "-h", "a"}},
		{[]string{"--fire=x,y", "a"}, []string{"--fire=x,y", "a"}},
	}
	for _, tt := range tests {
		if got := reorderArgs(tt.args); !reflect.DeepEqual(got, tt.want) {
			t.Errorf("reorderArgs(%q) = %q, want %q", tt.args, got, tt.want)
		}
	}
}

func TestPrintHelp(t *testing.T) {
	var buf bytes.Buffer
	PrintHelp(&buf)
	for _, want := range []string{"Usage:", "--fire", "--headless", "AZSCRIPT_SCENARIO"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("help text missing %q", want)
		}
	}
}
