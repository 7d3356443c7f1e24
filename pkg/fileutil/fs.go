package fileutil

import (
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem は実ファイルシステムと埋め込みファイルシステムを統一的に扱うインターフェース
// ファイル名の大文字小文字は区別しない
type FileSystem interface {
	// ReadFile はファイルの内容を読み込む
	ReadFile(name string) ([]byte, error)
	// ReadDir はディレクトリの内容を読み込む
	ReadDir(name string) ([]fs.DirEntry, error)
	// BasePath はベースパスを返す
	BasePath() string
	// IsEmbedded は埋め込みファイルシステムかどうかを返す
	IsEmbedded() bool
}

// trimRoot は先頭の "/" や "\" を除去する
func trimRoot(name string) string {
	return strings.TrimLeft(name, `/\`)
}

// RealFS は実ファイルシステムへのアクセスを提供する
type RealFS struct {
	basePath string
}

// NewRealFS は実ファイルシステム用のFileSystemを作成する
func NewRealFS(basePath string) *RealFS {
	return &RealFS{basePath: basePath}
}

func (r *RealFS) ReadFile(name string) ([]byte, error) {
	p := r.resolvePath(name)
	if _, err := os.Stat(p); err != nil {
		// 大文字小文字を無視して検索
		found, ferr := FindFileCaseInsensitive(filepath.Dir(p), filepath.Base(p))
		if ferr != nil {
			return nil, ferr
		}
		p = found
	}
	return os.ReadFile(p)
}

func (r *RealFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(r.resolvePath(name))
}

func (r *RealFS) BasePath() string { return r.basePath }

func (r *RealFS) IsEmbedded() bool { return false }

func (r *RealFS) resolvePath(name string) string {
	clean := trimRoot(name)
	if r.basePath == "" {
		if clean == "" {
			return "."
		}
		return clean
	}
	return filepath.Join(r.basePath, clean)
}

// EmbedFS は埋め込みファイルシステムへのアクセスを提供する
type EmbedFS struct {
	fsys     fs.FS
	basePath string
}

// NewEmbedFS は埋め込みファイルシステム用のFileSystemを作成する
func NewEmbedFS(fsys fs.FS, basePath string) *EmbedFS {
	return &EmbedFS{fsys: fsys, basePath: basePath}
}

func (e *EmbedFS) ReadFile(name string) ([]byte, error) {
	p := e.resolvePath(name)
	data, err := fs.ReadFile(e.fsys, p)
	if err == nil {
		return data, nil
	}
	found, ferr := FindFileCaseInsensitiveFS(e.fsys, path.Dir(p), path.Base(p))
	if ferr != nil {
		return nil, ferr
	}
	return fs.ReadFile(e.fsys, found)
}

func (e *EmbedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(e.fsys, e.resolvePath(name))
}

func (e *EmbedFS) BasePath() string { return e.basePath }

func (e *EmbedFS) IsEmbedded() bool { return true }

// resolvePath は embed.FS 用のパスを返す
// "." や "" はベースパスそのものを意味する
func (e *EmbedFS) resolvePath(name string) string {
	clean := strings.ReplaceAll(trimRoot(name), `\`, "/")
	if clean == "" || clean == "." {
		if e.basePath != "" {
			return e.basePath
		}
		return "."
	}
	if e.basePath != "" {
		return path.Join(e.basePath, clean)
	}
	return path.Clean(clean)
}
