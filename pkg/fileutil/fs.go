package fileutil

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// FileSystem は音源ファイルの読み込み元を統一的に扱うインターフェース
type FileSystem interface {
	// ReadFile はファイルの内容を読み込む（大文字小文字を無視）
	ReadFile(name string) ([]byte, error)
	// ReadDir はディレクトリの内容を読み込む
	ReadDir(name string) ([]fs.DirEntry, error)
	// BasePath はベースパス（またはベースURL）を返す
	BasePath() string
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
	actualPath, err := r.find(r.resolvePath(name))
	if err != nil {
		return nil, err
	}
	return os.ReadFile(actualPath)
}

func (r *RealFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return os.ReadDir(r.resolvePath(name))
}

func (r *RealFS) BasePath() string {
	return r.basePath
}

func (r *RealFS) resolvePath(name string) string {
	name = cleanName(name)
	if r.basePath != "" {
		return filepath.Join(r.basePath, name)
	}
	return name
}

func (r *RealFS) find(p string) (string, error) {
	// まず直接アクセスを試みる
	if _, err := os.Stat(p); err == nil {
		return p, nil
	}
	return FindFileCaseInsensitive(filepath.Dir(p), filepath.Base(p))
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
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, err
	}

	// 大文字小文字を無視して検索
	actualPath, findErr := FindFileCaseInsensitiveFS(e.fsys, path.Dir(p), path.Base(p))
	if findErr != nil {
		return nil, findErr
	}
	return fs.ReadFile(e.fsys, actualPath)
}

func (e *EmbedFS) ReadDir(name string) ([]fs.DirEntry, error) {
	return fs.ReadDir(e.fsys, e.resolvePath(name))
}

func (e *EmbedFS) BasePath() string {
	return e.basePath
}

func (e *EmbedFS) resolvePath(name string) string {
	name = strings.ReplaceAll(cleanName(name), "\\", "/")
	// "." は現在のディレクトリを意味するので、basePathそのものを返す
	if name == "." || name == "" {
		if e.basePath != "" {
			return e.basePath
		}
		return "."
	}
	if e.basePath != "" {
		return e.basePath + "/" + name
	}
	return name
}

// Exists reports whether name can be found in fsys, ignoring case.
func Exists(fsys FileSystem, name string) bool {
	if fsys == nil {
		return false
	}
	name = strings.ReplaceAll(cleanName(name), "\\", "/")
	entries, err := fsys.ReadDir(path.Dir(name))
	if err != nil {
		// 一覧を取得できない場合（HTTPなど）は読み込みで確認する
		_, err = fsys.ReadFile(name)
		return err == nil
	}
	_, ok := matchEntry(entries, path.Base(name))
	return ok
}

// Describe returns a short human-readable form of fsys for log output.
func Describe(fsys FileSystem) string {
	switch f := fsys.(type) {
	case nil:
		return "<none>"
	case *EmbedFS:
		return fmt.Sprintf("embed:%s", f.basePath)
	case *HTTPFS:
		return f.baseURL
	default:
		return fsys.BasePath()
	}
}
