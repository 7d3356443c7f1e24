package cli

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config はコマンドライン引数から解析された設定を保持する
type Config struct {
	ScenarioPath string        // 外部シナリオファイルまたはディレクトリのパス
	ScenarioName string        // 使用するシナリオ名（省略時は自動選択）
	Timeout      time.Duration // タイムアウト時間（0は無制限）
	LogLevel     string        // ログレベル（debug, info, warn, error）
	Headless     bool          // ヘッドレスモード
	Fire         []string      // 入室後に順に発火するトリガー
	MaxSteps     int           // スクリプト1回あたりの最大ステップ数（0は既定値）
	List         bool          // シナリオ一覧を表示して終了
	ShowHelp     bool          // ヘルプ表示フラグ
}

// boolFlags は値を取らないフラグ
var boolFlags = map[string]bool{
	"-h": true, "--help": true, "-help": true,
	"--headless": true, "-headless": true,
	"--list": true, "-list": true,
}

// ParseArgs コマンドライン引数を解析してConfigを返す
func ParseArgs(args []string) (*Config, error) {
	// 引数を並べ替え：フラグを前に、位置引数を後ろに
	reorderedArgs := reorderArgs(args)

	fs := flag.NewFlagSet("azscript", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	config := &Config{}

	var timeoutSec int
	var fire string
	fs.IntVar(&timeoutSec, "timeout", 0, "タイムアウト時間（秒）")
	fs.IntVar(&timeoutSec, "t", 0, "タイムアウト時間（秒）（短縮形）")
	fs.StringVar(&config.LogLevel, "log-level", "info", "ログレベル（debug, info, warn, error）")
	fs.StringVar(&config.LogLevel, "l", "info", "ログレベル（短縮形）")
	fs.StringVar(&config.ScenarioName, "scenario", "", "シナリオ名")
	fs.StringVar(&config.ScenarioName, "s", "", "シナリオ名（短縮形）")
	fs.StringVar(&fire, "fire", "", "発火するトリガー（カンマ区切り）")
	fs.StringVar(&fire, "f", "", "発火するトリガー（短縮形）")
	fs.IntVar(&config.MaxSteps, "max-steps", 0, "スクリプトの最大ステップ数")
	fs.BoolVar(&config.Headless, "headless", false, "ヘッドレスモード")
	fs.BoolVar(&config.List, "list", false, "シナリオ一覧を表示")
	fs.BoolVar(&config.ShowHelp, "help", false, "ヘルプを表示")
	fs.BoolVar(&config.ShowHelp, "h", false, "ヘルプを表示（短縮形）")

	if err := fs.Parse(reorderedArgs); err != nil {
		return nil, err
	}

	// 環境変数からの設定（コマンドラインフラグが優先）
	if !config.Headless {
		if headlessEnv := os.Getenv("HEADLESS"); headlessEnv != "" {
			config.Headless = headlessEnv == "1" || strings.ToLower(headlessEnv) == "true"
		}
	}

	if timeoutSec == 0 {
		if timeoutEnv := os.Getenv("TIMEOUT"); timeoutEnv != "" {
			if t, err := strconv.Atoi(timeoutEnv); err == nil && t > 0 {
				timeoutSec = t
			}
		}
	}

	if config.LogLevel == "info" {
		if logLevelEnv := os.Getenv("LOG_LEVEL"); logLevelEnv != "" {
			config.LogLevel = strings.ToLower(logLevelEnv)
		}
	}

	if timeoutSec < 0 {
		return nil, fmt.Errorf("timeout must be non-negative, got %d", timeoutSec)
	}
	config.Timeout = time.Duration(timeoutSec) * time.Second

	if config.MaxSteps < 0 {
		return nil, fmt.Errorf("max-steps must be non-negative, got %d", config.MaxSteps)
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[config.LogLevel] {
		return nil, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", config.LogLevel)
	}

	for _, name := range strings.Split(fire, ",") {
		if name = strings.TrimSpace(name); name != "" {
			config.Fire = append(config.Fire, name)
		}
	}

	// 位置引数（シナリオのパス）
	if fs.NArg() > 0 {
		config.ScenarioPath = fs.Arg(0)
	} else if env := os.Getenv("AZSCRIPT_SCENARIO"); env != "" {
		config.ScenarioPath = env
	}

	return config, nil
}

// reorderArgs 引数を並べ替えて、フラグを前に、位置引数を後ろに配置する
func reorderArgs(args []string) []string {
	var flags []string
	var positional []string

	for i := 0; i < len(args); i++ {
		arg := args[i]

		if len(arg) > 0 && arg[0] == '-' {
			flags = append(flags, arg)

			// -t 5 のように値が続く場合は一緒に移動する
			if strings.Contains(arg, "=") || boolFlags[arg] {
				continue
			}
			if i+1 < len(args) {
				i++
				flags = append(flags, args[i])
			}
		} else {
			positional = append(positional, arg)
		}
	}

	return append(flags, positional...)
}

// PrintHelp ヘルプメッセージを表示
func PrintHelp(w io.Writer) {
	fmt.Fprint(w, `azscript - trigger script playground

Usage:
  azscript [options] [scenario-path]

Arguments:
  scenario-path   シナリオファイル（.yaml, .yml, .toml）またはそれを含むディレクトリ（省略可）
                  省略した場合は組み込みシナリオを使用

Options:
  -s, --scenario <name>       使用するシナリオ名
  -f, --fire <a,b,...>        入室後に指定トリガーを順に発火して終了
  -t, --timeout <seconds>     指定秒数後にプログラムを終了（デフォルト: 無制限）
  -l, --log-level <level>     ログレベル: debug, info, warn, error（デフォルト: info）
  --max-steps <n>             スクリプト1回あたりの最大ステップ数（デフォルト: 100）
  --headless                  ヘッドレスモード（GUIなし、標準入力から操作）
  --list                      利用可能なシナリオを表示
  -h, --help                  このヘルプを表示

Environment Variables:
  HEADLESS=1                  ヘッドレスモードを有効化
  TIMEOUT=<seconds>           タイムアウト時間（秒）
  LOG_LEVEL=<level>           ログレベル
  AZSCRIPT_SCENARIO=<path>    シナリオのパス

Examples:
  azscript                              組み込みシナリオを選択して起動
  azscript ./rooms/hangar.yaml          シナリオファイルを指定
  azscript --list ./rooms               ディレクトリ内のシナリオを一覧表示
  azscript --fire lock-exit,flip        トリガーを発火して結果を表示
  HEADLESS=1 azscript -s reactor        環境変数でヘッドレスモード
`)
}
