package dfs

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/tahopen/tahopen-hadoop-shims/internal/engine"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// KeyDefaultReplication is the replication reported for paths that never
// had one set.
const KeyDefaultReplication = "dfs.replication"

// LocalFileSystem serves a distributed filesystem namespace from a local
// directory. Every absolute path p maps to root/p. Replication factors are
// kept in a Catalog because local files have none.
type LocalFileSystem struct {
	root    string
	uri     hadoop.Path
	conf    *hadoop.Configuration
	engine  engine.Engine
	catalog *Catalog
}

// Option configures a LocalFileSystem.
type Option func(*LocalFileSystem)

// WithEngine sets the engine used by CopyFromLocalFile.
func WithEngine(e engine.Engine) Option {
	return func(l *LocalFileSystem) { l.engine = e }
}

// NewLocalFileSystem creates a filesystem rooted at root. The served URI is
// taken from fs.defaultFS in conf and defaults to file:///.
func NewLocalFileSystem(root, catalogPath string, conf *hadoop.Configuration, opts ...Option) (*LocalFileSystem, error) {
	if conf == nil {
		conf = hadoop.NewConfiguration(nil)
	}
	defaultFS := conf.Get(model.KeyDefaultFS)
	if defaultFS == "" {
		defaultFS = "file:///"
	}
	uri, err := hadoop.ParsePath(defaultFS)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", model.KeyDefaultFS, err)
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve root: %w", err)
	}
	if err := os.MkdirAll(absRoot, 0755); err != nil {
		return nil, fmt.Errorf("create root: %w", err)
	}
	catalog, err := OpenCatalog(catalogPath)
	if err != nil {
		return nil, err
	}

	l := &LocalFileSystem{
		root:    absRoot,
		uri:     hadoop.MustPath(uri.Scheme() + "://" + uri.Authority() + "/"),
		conf:    conf,
		engine:  engine.NewCopyEngine(),
		catalog: catalog,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Close releases the attribute catalog.
func (l *LocalFileSystem) Close() error {
	return l.catalog.Close()
}

// Root returns the local directory backing the namespace.
func (l *LocalFileSystem) Root() string { return l.root }

func (l *LocalFileSystem) URI() hadoop.Path { return l.uri }

func (l *LocalFileSystem) Conf() *hadoop.Configuration { return l.conf }

func (l *LocalFileSystem) MakeQualified(p hadoop.Path) hadoop.Path {
	if !p.IsAbsolute() {
		p = hadoop.MustPath("/").Join(p.PathString())
	}
	return p.Qualify(l.uri.Scheme(), l.uri.Authority())
}

// resolve maps p to its local path and its catalog key.
func (l *LocalFileSystem) resolve(p hadoop.Path) (string, string, error) {
	if p.IsQualified() && (p.Scheme() != l.uri.Scheme() || p.Authority() != l.uri.Authority()) {
		return "", "", fmt.Errorf("wrong filesystem: %s, expected: %s", p, l.uri)
	}
	key := p.PathString()
	if !p.IsAbsolute() {
		key = hadoop.MustPath("/").Join(key).PathString()
	}
	return filepath.Join(l.root, filepath.FromSlash(key)), key, nil
}

func (l *LocalFileSystem) Exists(p hadoop.Path) (bool, error) {
	local, _, err := l.resolve(p)
	if err != nil {
		return false, err
	}
	_, err = os.Lstat(local)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func (l *LocalFileSystem) GetFileStatus(p hadoop.Path) (*FileStatus, error) {
	local, key, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(local)
	if err != nil {
		return nil, fmt.Errorf("status %s: %w", p, err)
	}
	return l.status(l.MakeQualified(p), key, info)
}

func (l *LocalFileSystem) status(p hadoop.Path, key string, info fs.FileInfo) (*FileStatus, error) {
	replication, ok, err := l.catalog.Replication(key)
	if err != nil {
		return nil, err
	}
	if !ok {
		replication = l.conf.GetInt(KeyDefaultReplication, 1)
	}
	st := &FileStatus{
		Path:        p,
		IsDir:       info.IsDir(),
		Permission:  info.Mode().Perm(),
		Replication: replication,
		ModTime:     info.ModTime(),
	}
	if !info.IsDir() {
		st.Length = info.Size()
	}
	return st, nil
}

func (l *LocalFileSystem) Create(p hadoop.Path, overwrite bool) (io.WriteCloser, error) {
	local, key, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	flags := os.O_CREATE | os.O_WRONLY | os.O_TRUNC
	if !overwrite {
		flags = os.O_CREATE | os.O_WRONLY | os.O_EXCL
	}
	if err := os.MkdirAll(filepath.Dir(local), 0755); err != nil {
		return nil, fmt.Errorf("create parent of %s: %w", p, err)
	}
	f, err := os.OpenFile(local, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", p, err)
	}
	if err := l.catalog.Forget(key); err != nil {
		f.Close()
		return nil, err
	}
	return f, nil
}

func (l *LocalFileSystem) Delete(p hadoop.Path, recursive bool) (bool, error) {
	local, key, err := l.resolve(p)
	if err != nil {
		return false, err
	}
	info, err := os.Lstat(local)
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("delete %s: %w", p, err)
	}
	if info.IsDir() && !recursive {
		entries, err := os.ReadDir(local)
		if err != nil {
			return false, fmt.Errorf("delete %s: %w", p, err)
		}
		if len(entries) > 0 {
			return false, fmt.Errorf("delete %s: directory is not empty", p)
		}
	}
	if err := os.RemoveAll(local); err != nil {
		return false, fmt.Errorf("delete %s: %w", p, err)
	}
	if err := l.catalog.Forget(key); err != nil {
		return false, err
	}
	return true, nil
}

func (l *LocalFileSystem) Mkdirs(p hadoop.Path) error {
	local, _, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(local, 0755); err != nil {
		return fmt.Errorf("mkdirs %s: %w", p, err)
	}
	return nil
}

func (l *LocalFileSystem) ListStatus(p hadoop.Path) ([]FileStatus, error) {
	local, key, err := l.resolve(p)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(local)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	qualified := l.MakeQualified(p)
	if !info.IsDir() {
		st, err := l.status(qualified, key, info)
		if err != nil {
			return nil, err
		}
		return []FileStatus{*st}, nil
	}

	entries, err := os.ReadDir(local)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", p, err)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name() < entries[j].Name() })
	out := make([]FileStatus, 0, len(entries))
	for _, e := range entries {
		childInfo, err := os.Stat(filepath.Join(local, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", p, err)
		}
		child := qualified.Join(e.Name())
		st, err := l.status(child, child.PathString(), childInfo)
		if err != nil {
			return nil, err
		}
		out = append(out, *st)
	}
	return out, nil
}

func (l *LocalFileSystem) SetPermission(p hadoop.Path, perm os.FileMode) error {
	local, _, err := l.resolve(p)
	if err != nil {
		return err
	}
	if err := os.Chmod(local, perm); err != nil {
		return fmt.Errorf("set permission %s: %w", p, err)
	}
	return nil
}

func (l *LocalFileSystem) SetReplication(p hadoop.Path, replication int) (bool, error) {
	local, key, err := l.resolve(p)
	if err != nil {
		return false, err
	}
	if _, err := os.Lstat(local); err != nil {
		return false, fmt.Errorf("set replication %s: %w", p, err)
	}
	if err := l.catalog.SetReplication(key, replication); err != nil {
		return false, err
	}
	return true, nil
}

func (l *LocalFileSystem) CopyFromLocalFile(src string, dst hadoop.Path) error {
	local, key, err := l.resolve(dst)
	if err != nil {
		return err
	}
	if info, err := os.Stat(local); err == nil {
		if info.IsDir() {
			name := filepath.Base(src)
			local = filepath.Join(local, name)
			key = hadoop.MustPath(key).Join(name).PathString()
		}
		if err := os.RemoveAll(local); err != nil {
			return fmt.Errorf("replace %s: %w", dst, err)
		}
	}
	if _, err := l.engine.Clone(src, local); err != nil {
		return fmt.Errorf("copy %s to %s: %w", src, dst, err)
	}
	return l.catalog.Forget(key)
}
