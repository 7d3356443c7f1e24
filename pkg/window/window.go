package window

import (
	"fmt"
	"image/color"
	"strings"
	"sync"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	ebvector "github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/logger"
	"github.com/zurustar/azscript/pkg/scenario"
	"github.com/zurustar/azscript/pkg/space"
	"golang.org/x/image/font/basicfont"
)

const (
	screenWidth  = 1024
	screenHeight = 768
	lineHeight   = 16
)

var (
	// 背景色 #0087C8
	backgroundColor = color.RGBA{0x00, 0x87, 0xC8, 0xFF}
	// テキスト色（白）
	textColor = color.White
	// 選択中のテキスト色（黄色）
	selectedTextColor = color.RGBA{0xFF, 0xFF, 0x00, 0xFF}
	errorTextColor    = color.RGBA{0xFF, 0x80, 0x80, 0xFF}
	baddieColor       = color.RGBA{0xE0, 0x30, 0x30, 0xFF}
	openDoorColor     = color.RGBA{0x40, 0xE0, 0x40, 0xFF}
	closedDoorColor   = color.RGBA{0x60, 0x60, 0x60, 0xFF}
	fieldColor        = color.RGBA{0x60, 0x40, 0x80, 0x80}
	// デフォルトフォント
	defaultFace = text.NewGoXFace(basicfont.Face7x13)
)

// 数字キー 1〜9 はトリガーの発火に使う
var triggerKeys = []ebiten.Key{
	ebiten.Key1, ebiten.Key2, ebiten.Key3, ebiten.Key4, ebiten.Key5,
	ebiten.Key6, ebiten.Key7, ebiten.Key8, ebiten.Key9,
}

// Mode はウィンドウの表示モードを表す
type Mode int

const (
	ModeSelection  Mode = iota // シナリオ選択画面
	ModePlayground             // 部屋の操作画面
)

// Game はEbitengineのゲームインターフェースを実装する
type Game struct {
	mode          Mode             // 現在のモード
	entries       []scenario.Entry // 利用可能なシナリオ一覧
	selectedIndex int              // 選択中のシナリオのインデックス
	selected      *scenario.Entry  // 選択されたシナリオ
	timeout       time.Duration    // タイムアウト時間
	startTime     time.Time        // 開始時刻

	session *Session
	paused  bool   // 周期トリガーの停止
	message string // 直近の操作結果
	failed  bool

	// シナリオ選択時に Session を作成するコールバック
	onSelected      func(entry *scenario.Entry) (*Session, error)
	transitionError error

	hasSelection bool // 選択画面に戻れるかどうか（複数シナリオ時true）
	mu           sync.RWMutex
}

// NewGame Gameを作成
func NewGame(mode Mode, entries []scenario.Entry, timeout time.Duration) *Game {
	return &Game{
		mode:      mode,
		entries:   entries,
		timeout:   timeout,
		startTime: time.Now(),
	}
}

// SetSession sets the session shown in playground mode.
func (g *Game) SetSession(s *Session) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.session = s
}

// SetOnSelected sets the callback that enters the selected scenario.
func (g *Game) SetOnSelected(callback func(entry *scenario.Entry) (*Session, error)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.onSelected = callback
}

// SetHasSelection sets whether ESC in playground mode returns to the
// selection screen instead of exiting.
func (g *Game) SetHasSelection(has bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hasSelection = has
}

// GetTransitionError returns the error of the last failed scenario entry.
func (g *Game) GetTransitionError() error {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.transitionError
}

// Update ゲームロジックの更新（Ebitengineが毎フレーム呼び出す）
func (g *Game) Update() error {
	if g.timeout > 0 && time.Since(g.startTime) >= g.timeout {
		return ebiten.Termination
	}

	switch g.mode {
	case ModeSelection:
		return g.updateSelection()
	case ModePlayground:
		return g.updatePlayground()
	}
	return nil
}

// updateSelection シナリオ選択画面の更新
func (g *Game) updateSelection() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyUp) && g.selectedIndex > 0 {
		g.selectedIndex--
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyDown) && g.selectedIndex < len(g.entries)-1 {
		g.selectedIndex++
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEnter) && len(g.entries) > 0 {
		return g.choose(g.selectedIndex)
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		return ebiten.Termination
	}
	return nil
}

// choose はシナリオを選択し、コールバックがあれば操作画面に遷移する
func (g *Game) choose(i int) error {
	g.selected = &g.entries[i]

	g.mu.RLock()
	callback := g.onSelected
	g.mu.RUnlock()
	if callback == nil {
		return ebiten.Termination
	}

	sess, err := callback(g.selected)
	if err != nil {
		g.mu.Lock()
		g.transitionError = err
		g.mu.Unlock()
		return ebiten.Termination
	}

	g.mu.Lock()
	g.session = sess
	g.mode = ModePlayground
	g.message = ""
	g.startTime = time.Now() // タイムアウトをリセット
	g.mu.Unlock()
	return nil
}

// updatePlayground 操作画面の更新
func (g *Game) updatePlayground() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) {
		g.mu.RLock()
		hasSelection := g.hasSelection
		g.mu.RUnlock()
		if hasSelection {
			g.returnToSelection()
			return nil
		}
		return ebiten.Termination
	}

	g.mu.RLock()
	sess := g.session
	g.mu.RUnlock()
	if sess == nil {
		return nil
	}

	for i, key := range triggerKeys {
		if inpututil.IsKeyJustPressed(key) {
			g.report(sess.FireIndex(i))
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyK) {
		if o, ok := sess.KillFirst(); ok {
			g.report(o, nil)
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}

	if !g.paused {
		sess.Tick()
	}
	return nil
}

// report は操作結果をステータス行に表示する
func (g *Game) report(o space.Outcome, err error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if err != nil {
		g.message, g.failed = err.Error(), true
		return
	}
	g.message, g.failed = o.Summary(), !o.Result.OK()
}

// returnToSelection は操作画面から選択画面に戻る
func (g *Game) returnToSelection() {
	if g.selected != nil {
		logger.GetLogger().Info("Leaving scenario", "name", g.selected.Name)
	}
	g.mu.Lock()
	g.mode = ModeSelection
	g.session = nil
	g.paused = false
	g.message = ""
	g.mu.Unlock()
}

// Draw 画面描画（Ebitengineが毎フレーム呼び出す）
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(backgroundColor)

	switch g.mode {
	case ModeSelection:
		g.drawSelection(screen)
	case ModePlayground:
		g.drawPlayground(screen)
	}
}

func drawText(screen *ebiten.Image, s string, x, y float64, clr color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(x, y)
	op.ColorScale.ScaleWithColor(clr)
	text.Draw(screen, s, defaultFace, op)
}

// drawSelection シナリオ選択画面の描画
func (g *Game) drawSelection(screen *ebiten.Image) {
	drawText(screen, "Select a scenario", 50, 50, textColor)

	for i, e := range g.entries {
		y := 120 + float64(i*40)
		prefix, clr := "  ", color.Color(textColor)
		if i == g.selectedIndex {
			prefix, clr = "> ", selectedTextColor
		}
		label := prefix + e.Name
		if e.Scenario != nil && e.Scenario.Description != "" {
			label += " - " + e.Scenario.Description
		}
		drawText(screen, label, 70, y, clr)
	}

	drawText(screen, "Use UP/DOWN to select, ENTER to confirm, ESC to exit", 50, 650, textColor)
}

// drawPlayground 操作画面の描画（左に状態、右に部屋の俯瞰図）
func (g *Game) drawPlayground(screen *ebiten.Image) {
	g.mu.RLock()
	sess, message, failed, paused := g.session, g.message, g.failed, g.paused
	g.mu.RUnlock()
	if sess == nil {
		return
	}

	snap := sess.Snapshot()
	y := 30.0
	for _, line := range strings.Split(strings.TrimRight(snap.String(), "\n"), "\n") {
		drawText(screen, line, 20, y, textColor)
		y += lineHeight
	}

	y += lineHeight
	drawText(screen, "keys:", 20, y, selectedTextColor)
	y += lineHeight
	for i, name := range triggerLabels(sess.Triggers()) {
		drawText(screen, fmt.Sprintf("  %d  %s", i+1, name), 20, y, textColor)
		y += lineHeight
	}

	y += lineHeight
	for _, h := range sess.History() {
		drawText(screen, h, 20, y, textColor)
		y += lineHeight
	}

	status := "K kill baddie, P pause ticks, ESC back"
	if paused {
		status = "[paused] " + status
	}
	drawText(screen, status, 20, screenHeight-40, textColor)
	if message != "" {
		clr := color.Color(selectedTextColor)
		if failed {
			clr = errorTextColor
		}
		drawText(screen, message, 20, screenHeight-20, clr)
	}

	drawRoom(screen, sess)
}

// triggerLabels は数字キーに割り当てられる名前だけを返す
func triggerLabels(names []string) []string {
	if len(names) > len(triggerKeys) {
		return names[:len(triggerKeys)]
	}
	return names
}

// 俯瞰図の原点（画面座標）とスケール
const (
	mapOriginX = 700
	mapOriginY = 384
	mapScale   = 0.25
)

func toScreen(x, y float64) (float32, float32) {
	return float32(mapOriginX + x*mapScale), float32(mapOriginY - y*mapScale)
}

// drawRoom はエンティティを単純な図形で描画する
func drawRoom(screen *ebiten.Image, sess *Session) {
	snap := sess.Snapshot()
	for _, f := range snap.Gravfields {
		x, y := toScreen(f.Position.X, f.Position.Y)
		r := float32(f.Size.Semilength * mapScale)
		if r < 4 {
			r = 4
		}
		ebvector.StrokeCircle(screen, x, y, r, 2, fieldColor, true)
	}
	for _, d := range snap.Doors {
		x, y := toScreen(d.Position.X, d.Position.Y)
		clr := closedDoorColor
		if d.IsOpen {
			clr = openDoorColor
		}
		ebvector.DrawFilledRect(screen, x-6, y-3, 12, 6, clr, false)
		if d.Kind == entity.DoorLocked {
			drawText(screen, "L", float64(x)+8, float64(y)-6, closedDoorColor)
		}
	}
	for _, b := range snap.Baddies {
		x, y := toScreen(b.Position.X, b.Position.Y)
		ebvector.DrawFilledCircle(screen, x, y, 5, baddieColor, true)
	}
}

// Layout 画面サイズを返す
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

// GetSelected 選択されたシナリオを取得
func (g *Game) GetSelected() *scenario.Entry {
	return g.selected
}

// Run GUIモードでウィンドウを実行
func Run(game *Game) error {
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("azscript")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(game); err != nil {
		return fmt.Errorf("failed to run game: %w", err)
	}
	return game.GetTransitionError()
}
