package window

import (
	"fmt"
	"sync"

	"github.com/zurustar/azscript/pkg/entity"
	"github.com/zurustar/azscript/pkg/space"
)

// historySize は保持する実行結果の件数
const historySize = 8

// Session はウィンドウとコンソールから操作される部屋の状態を保持する
// space.State はスレッドセーフではないため、すべての操作は mu の下で行う
type Session struct {
	mu       sync.Mutex
	state    *space.State
	triggers []string
	history  []string
}

// NewSession は入室済みの state から Session を作成する
// triggers はキー 1〜9 に割り当てる発火名の一覧
func NewSession(state *space.State, triggers []string) *Session {
	s := &Session{state: state, triggers: append([]string(nil), triggers...)}
	if last := state.LastOutcome(); last.Name != "" {
		s.record(last)
	}
	return s
}

// Triggers は発火可能な名前の一覧を返す
func (s *Session) Triggers() []string {
	return append([]string(nil), s.triggers...)
}

// Fire はトリガーまたはノードを発火する
func (s *Session) Fire(name string) (space.Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.state.Fire(name)
	if err != nil {
		return space.Outcome{}, err
	}
	o := space.Outcome{Name: name, Result: res}
	s.record(o)
	return o, nil
}

// FireIndex はキー番号（0始まり）に対応するトリガーを発火する
func (s *Session) FireIndex(i int) (space.Outcome, error) {
	if i < 0 || i >= len(s.triggers) {
		return space.Outcome{}, fmt.Errorf("no trigger bound to key %d", i+1)
	}
	return s.Fire(s.triggers[i])
}

// KillFirst は最も若いスロットのバディを倒し、on-kill スクリプトを実行する
func (s *Session) KillFirst() (space.Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.state.Snapshot()
	if len(snap.Baddies) == 0 {
		return space.Outcome{}, false
	}
	if _, ok := s.state.KillBaddie(snap.Baddies[0].ID); !ok {
		return space.Outcome{}, false
	}
	o := s.state.LastOutcome()
	s.record(o)
	return o, true
}

// Tick はフレームを1つ進め、周期トリガーの結果を返す
func (s *Session) Tick() []space.Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.state.Tick()
	for _, o := range out {
		s.record(o)
	}
	return out
}

// Snapshot は現在の状態のコピーを返す
func (s *Session) Snapshot() space.Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Snapshot()
}

// Dump は名前に対応するスクリプトのリストを返す
func (s *Session) Dump(name string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	room := s.state.Room()
	if room == nil {
		return "", space.ErrNoRoom
	}
	if t, ok := room.Trigger(name); ok {
		return t.Script.String(), nil
	}
	for _, n := range room.Nodes {
		if n.Name == name {
			return n.OnUse.String(), nil
		}
	}
	if name == "on-start" {
		return room.OnStart.String(), nil
	}
	return "", fmt.Errorf("%w: %s", space.ErrUnknownTrigger, name)
}

// History は新しい順に実行結果の要約を返す
func (s *Session) History() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]string, len(s.history))
	for i, h := range s.history {
		out[len(s.history)-1-i] = h
	}
	return out
}

// Flag はフラグが立っているかを返す
func (s *Session) Flag(flag int) bool {
	if flag < 0 || flag >= entity.NumFlags {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Player.HasFlag(flag)
}

func (s *Session) record(o space.Outcome) {
	s.history = append(s.history, o.Summary())
	if len(s.history) > historySize {
		s.history = s.history[len(s.history)-historySize:]
	}
}
