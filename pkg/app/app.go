package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"

	"github.com/zurustar/azscript/pkg/cli"
	"github.com/zurustar/azscript/pkg/logger"
	"github.com/zurustar/azscript/pkg/scenario"
	"github.com/zurustar/azscript/pkg/space"
	"github.com/zurustar/azscript/pkg/vm"
	"github.com/zurustar/azscript/pkg/window"
)

// ScenarioDir は埋め込みファイルシステム内のシナリオディレクトリ
const ScenarioDir = "scenarios"

// Application はアプリケーションのメインロジックを管理する
type Application struct {
	config   *cli.Config
	log      *slog.Logger
	registry *scenario.Registry
	embedFS  fs.FS

	stdin  *bufio.Scanner
	stdout io.Writer
	logOut io.Writer
}

// New Applicationを作成
// embedFS は ScenarioDir 以下に組み込みシナリオを持つ（nil可）
func New(embedFS fs.FS) *Application {
	return &Application{
		embedFS: embedFS,
		stdin:   bufio.NewScanner(os.Stdin),
		stdout:  os.Stdout,
		logOut:  os.Stdout,
	}
}

// SetIO 入出力先を差し替える
func (app *Application) SetIO(stdin io.Reader, stdout, logOut io.Writer) {
	app.stdin = bufio.NewScanner(stdin)
	app.stdout = stdout
	app.logOut = logOut
}

// Run アプリケーションを実行
func (app *Application) Run(args []string) error {
	// 1. コマンドライン引数の解析
	config, err := cli.ParseArgs(args)
	if err != nil {
		return fmt.Errorf("failed to parse args: %w", err)
	}
	app.config = config

	if app.config.ShowHelp {
		cli.PrintHelp(app.stdout)
		return nil
	}

	// 2. ロガーの初期化
	if err := logger.InitLoggerWithWriter(app.config.LogLevel, app.logOut); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	app.log = logger.GetLogger()
	app.log.Info("Application started")

	// 3. シナリオの読み込み
	if err := app.loadScenarios(); err != nil {
		return fmt.Errorf("failed to load scenarios: %w", err)
	}
	if app.config.List {
		app.printScenarios()
		return nil
	}

	// 4. シナリオの選択
	entry, needsSelection, err := app.selectScenario()
	if err != nil {
		return fmt.Errorf("failed to select scenario: %w", err)
	}

	// 5. 部屋の実行
	if needsSelection && !app.config.Headless && len(app.config.Fire) == 0 {
		err = app.runWindow(nil)
	} else {
		if needsSelection {
			entry, err = window.RunHeadless(app.registry.Available(), app.config.Timeout, app.stdin, app.stdout)
			if err != nil {
				return fmt.Errorf("failed to select scenario: %w", err)
			}
		}
		err = app.play(entry)
	}
	if err != nil {
		return err
	}

	app.log.Info("Application terminated normally")
	return nil
}

// loadScenarios 組み込みシナリオと外部シナリオを読み込む
func (app *Application) loadScenarios() error {
	reg, err := scenario.NewRegistry(app.embedFS, ScenarioDir)
	if err != nil {
		return err
	}

	if app.config.ScenarioPath != "" {
		if err := reg.LoadExternal(app.config.ScenarioPath); err != nil {
			return fmt.Errorf("failed to load external scenario: %w", err)
		}
	}
	app.registry = reg

	app.log.Info("Scenarios loaded", "count", len(reg.Available()))
	return nil
}

// printScenarios シナリオ一覧を表示
func (app *Application) printScenarios() {
	for _, e := range app.registry.Available() {
		source := e.File
		if e.IsEmbedded {
			source = "embedded:" + source
		}
		fmt.Fprintf(app.stdout, "%-16s %s\n", e.Name, source)
		if e.Scenario.Description != "" {
			fmt.Fprintf(app.stdout, "  %s\n", e.Scenario.Description)
		}
		for _, name := range e.Scenario.TriggerNames() {
			fmt.Fprintf(app.stdout, "  - %s\n", name)
		}
	}
}

// selectScenario 名前指定があればそれを、なければ単一のシナリオを選択する
// 戻り値: (選択されたシナリオ, 選択が必要か, エラー)
func (app *Application) selectScenario() (*scenario.Entry, bool, error) {
	if name := app.config.ScenarioName; name != "" {
		entry, ok := app.registry.Lookup(name)
		if !ok {
			return nil, false, fmt.Errorf("scenario not found: %s", name)
		}
		return entry, false, nil
	}
	return app.registry.Select()
}

// enter はシナリオから部屋を作り、入室した Session を返す
func (app *Application) enter(entry *scenario.Entry) (*window.Session, error) {
	room, err := entry.Scenario.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build scenario %s: %w", entry.Name, err)
	}

	state := space.New(
		space.WithLogger(app.log),
		space.WithRunOptions(vm.WithMaxSteps(app.config.MaxSteps)),
	)
	res, err := state.EnterRoom(room)
	if err != nil {
		return nil, fmt.Errorf("failed to enter %s: %w", entry.Name, err)
	}
	if !res.OK() {
		app.log.Warn("on_start script failed", "scenario", entry.Name, "error", res.Err)
	}

	app.log.Info("Scenario selected", "name", entry.Name, "file", entry.File, "embedded", entry.IsEmbedded)
	return window.NewSession(state, entry.Scenario.TriggerNames()), nil
}

// play は選択されたシナリオを実行する
func (app *Application) play(entry *scenario.Entry) error {
	sess, err := app.enter(entry)
	if err != nil {
		return err
	}

	switch {
	case len(app.config.Fire) > 0:
		return app.fireAll(sess)
	case app.config.Headless:
		return app.runConsole(sess)
	default:
		return app.runWindow(sess)
	}
}

// fireAll は --fire で指定されたトリガーを順に発火し、最終状態を表示する
func (app *Application) fireAll(sess *window.Session) error {
	for _, name := range app.config.Fire {
		o, err := sess.Fire(name)
		if err != nil {
			return fmt.Errorf("failed to fire %s: %w", name, err)
		}
		fmt.Fprintln(app.stdout, o.Summary())
	}
	sess.Snapshot().Fprint(app.stdout)
	return nil
}

// runConsole ヘッドレスモードで標準入力から操作する
func (app *Application) runConsole(sess *window.Session) error {
	app.log.Info("Headless mode: reading commands from stdin")

	ctx := context.Background()
	if app.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, app.config.Timeout)
		defer cancel()
	}
	if err := window.RunConsole(ctx, sess, app.stdin, app.stdout); err != nil {
		return fmt.Errorf("console failed: %w", err)
	}
	return nil
}

// runWindow GUIモードでウィンドウを実行する
// sess が nil の場合はシナリオ選択画面から始める
func (app *Application) runWindow(sess *window.Session) error {
	mode := window.ModePlayground
	if sess == nil {
		mode = window.ModeSelection
	}
	game := window.NewGame(mode, app.registry.Available(), app.config.Timeout)
	game.SetSession(sess)
	game.SetHasSelection(sess == nil)
	game.SetOnSelected(app.enter)

	if err := window.Run(game); err != nil {
		return fmt.Errorf("failed to run window: %w", err)
	}
	return nil
}
