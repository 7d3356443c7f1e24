package scenario

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/zurustar/azscript/pkg/fileutil"
)

// ErrNoScenarios is returned by Select when no scenario is available.
var ErrNoScenarios = errors.New("no scenarios available")

// Entry is a scenario known to a Registry.
type Entry struct {
	Name       string // Scenario name
	File       string // File name inside its directory
	IsEmbedded bool
	Scenario   *Scenario
}

// Registry はシナリオの管理を行う
// 外部パスが指定された場合は埋め込みシナリオより優先される
type Registry struct {
	embedded []Entry
	external []Entry
}

// NewRegistry は埋め込みファイルシステムの dir 以下のシナリオを読み込む
func NewRegistry(fsys fs.FS, dir string) (*Registry, error) {
	r := &Registry{}
	if fsys == nil {
		return r, nil
	}
	entries, err := loadDir(fileutil.NewEmbedFS(fsys, dir), true)
	if err != nil {
		return nil, err
	}
	r.embedded = entries
	return r, nil
}

// loadDir parses every scenario file directly inside the file system root.
func loadDir(fsys fileutil.FileSystem, embedded bool) ([]Entry, error) {
	names, err := fileutil.ListFiles(fsys, ".", Extensions...)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, name := range names {
		data, err := fsys.ReadFile(name)
		if err != nil {
			return nil, fmt.Errorf("failed to read scenario %s: %w", name, err)
		}
		s, err := Parse(name, data)
		if err != nil {
			return nil, err
		}
		entries = append(entries, Entry{Name: s.Name, File: name, IsEmbedded: embedded, Scenario: s})
	}
	return entries, nil
}

// LoadExternal は外部のシナリオファイル、またはディレクトリ内の全シナリオを読み込む
func (r *Registry) LoadExternal(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("scenario path does not exist: %s", path)
		}
		return fmt.Errorf("failed to access scenario path: %w", err)
	}

	if !info.IsDir() {
		s, err := LoadFile(path)
		if err != nil {
			return err
		}
		r.external = []Entry{{Name: s.Name, File: filepath.Base(path), Scenario: s}}
		return nil
	}

	entries, err := loadDir(fileutil.NewRealFS(path), false)
	if err != nil {
		return err
	}
	if len(entries) == 0 {
		return fmt.Errorf("no scenario files found in %s", path)
	}
	r.external = entries
	return nil
}

// Available returns the external scenarios if any were loaded, otherwise
// the embedded ones. Entries are sorted by file name.
func (r *Registry) Available() []Entry {
	if len(r.external) > 0 {
		return append([]Entry(nil), r.external...)
	}
	return append([]Entry(nil), r.embedded...)
}

// Lookup finds an available scenario by name or file name, ignoring case.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	for _, e := range r.Available() {
		if strings.EqualFold(e.Name, name) || strings.EqualFold(e.File, name) {
			return &e, true
		}
	}
	return nil, false
}

// Select はシナリオを選択する（単一の場合は自動選択）
// 戻り値: (選択されたシナリオ, 選択が必要か, エラー)
func (r *Registry) Select() (*Entry, bool, error) {
	entries := r.Available()
	switch len(entries) {
	case 0:
		return nil, false, ErrNoScenarios
	case 1:
		return &entries[0], false, nil
	}
	return nil, true, nil
}
