// Package stager copies local files and directories onto the distributed
// filesystem so that cluster jobs can fetch them through the distributed
// cache.
package stager

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/tahopen/tahopen-hadoop-shims/internal/engine"
	"github.com/tahopen/tahopen-hadoop-shims/internal/exclude"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/dfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/fsutil"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/logging"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// Stager stages local content onto a distributed filesystem.
type Stager struct {
	fs      dfs.FileSystem
	engine  engine.Engine
	tempDir string
	log     *logging.Logger
}

// Option configures a Stager.
type Option func(*Stager)

// WithEngine sets the engine used for private exclusion copies.
func WithEngine(e engine.Engine) Option {
	return func(s *Stager) { s.engine = e }
}

// WithTempDir sets the directory private exclusion copies are made under.
func WithTempDir(dir string) Option {
	return func(s *Stager) { s.tempDir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(s *Stager) { s.log = l }
}

// New creates a Stager writing to fs.
func New(fs dfs.FileSystem, opts ...Option) *Stager {
	s := &Stager{
		fs:     fs,
		engine: engine.NewCopyEngine(),
		log:    logging.Global(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// FileSystem returns the filesystem staged entries are written to.
func (s *Stager) FileSystem() dfs.FileSystem { return s.fs }

// Replication returns the replication factor applied to staged entries.
func (s *Stager) Replication() int {
	return s.fs.Conf().GetInt(model.KeySubmitReplication, model.DefaultReplication)
}

// Stage is StageForCache for a prepared entry.
func (s *Stager) Stage(e model.StagedEntry) error {
	dest, err := hadoop.ParsePath(e.Destination)
	if err != nil {
		return errclass.ErrInvalidArgument.WithMessagef("destination %q", e.Destination).Wrap(err)
	}
	return s.StageForCache(e.Source, dest, e.ExcludePrefixes, e.Overwrite, e.Public)
}

// StageForCache copies source to dest. An existing dest is replaced when
// overwrite is set and rejected otherwise. A file whose name ends in
// config.properties has its authentication lines removed; a directory with exclusion prefixes is
// filtered through a private temporary copy. The staged entry then gets
// permission 0777 (public) or 0755 and the submit replication factor.
func (s *Stager) StageForCache(source string, dest hadoop.Path, excludePrefixes string, overwrite, public bool) error {
	info, err := os.Stat(source)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return errclass.ErrSourceNotFound.WithMessagef("source does not exist: %s", source)
		}
		return errclass.ErrSourceNotFound.WithMessagef("stat %s", source).Wrap(err)
	}

	name := filepath.Base(source)
	// A linked source is staged as the content it points to.
	if source, err = filepath.EvalSymlinks(source); err != nil {
		return errclass.ErrSourceNotFound.WithMessagef("resolve %s", name).Wrap(err)
	}

	exists, err := s.fs.Exists(dest)
	if err != nil {
		return errclass.ErrStagingFailed.WithMessagef("check %s", dest).Wrap(err)
	}
	if exists {
		if !overwrite {
			return errclass.ErrDestinationExists.WithMessagef("destination exists: %s", dest)
		}
		if _, err := s.fs.Delete(dest, true); err != nil {
			return errclass.ErrStagingFailed.WithMessagef("delete %s", dest).Wrap(err)
		}
	}

	prefixes := exclude.ParsePrefixes(excludePrefixes)
	switch {
	case strings.HasSuffix(name, model.ConfigPropertiesFile) && !info.IsDir():
		err = s.copyConfigProperties(source, dest)
	case info.IsDir() && len(prefixes) > 0:
		err = s.copyFiltered(source, dest, excludePrefixes)
	default:
		err = s.fs.CopyFromLocalFile(source, dest)
	}
	if err != nil {
		return errclass.ErrStagingFailed.WithMessagef("copy %s to %s", source, dest).Wrap(err)
	}

	entry := model.StagedEntry{Public: public}
	if err := s.fs.SetPermission(dest, entry.Permission()); err != nil {
		return errclass.ErrStagingFailed.WithMessagef("set permission on %s", dest).Wrap(err)
	}
	replication := s.Replication()
	if _, err := s.fs.SetReplication(dest, replication); err != nil {
		return errclass.ErrStagingFailed.WithMessagef("set replication on %s", dest).Wrap(err)
	}

	s.log.Debug("staged", map[string]any{
		"source":      source,
		"destination": dest.String(),
		"replication": replication,
		"public":      public,
	})
	return nil
}

// copyConfigProperties writes source to dest line by line, dropping
// authentication properties.
func (s *Stager) copyConfigProperties(source string, dest hadoop.Path) error {
	in, err := os.Open(source)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := s.fs.Create(dest, true)
	if err != nil {
		return err
	}
	if err := filterProperties(in, out); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

func filterProperties(r io.Reader, w io.Writer) error {
	br := bufio.NewReader(r)
	bw := bufio.NewWriter(w)
	for {
		line, err := br.ReadString('\n')
		if line != "" && !strings.HasPrefix(line, model.AuthPropertyPrefix) {
			if !strings.HasSuffix(line, "\n") {
				line += "\n"
			}
			if _, werr := bw.WriteString(line); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
	}
	return bw.Flush()
}

// copyFiltered stages a private copy of source with excluded libraries
// removed. The copy is deleted on every path.
func (s *Stager) copyFiltered(source string, dest hadoop.Path, excludePrefixes string) error {
	tmp, err := fsutil.PrivateTempDir(s.tempDir)
	if err != nil {
		return err
	}
	defer func() {
		if err := os.RemoveAll(tmp); err != nil {
			s.log.Warn("failed to remove temporary copy", map[string]any{"path": tmp, "error": err.Error()})
		}
	}()

	filtered := filepath.Join(tmp, filepath.Base(source))
	if _, err := s.engine.Clone(source, filtered); err != nil {
		return fmt.Errorf("private copy: %w", err)
	}
	removed, err := exclude.RemoveExcluded(filtered, excludePrefixes)
	if err != nil {
		return fmt.Errorf("exclude: %w", err)
	}
	if removed > 0 {
		s.log.Debug("excluded libraries", map[string]any{"source": source, "removed": removed})
	}
	return s.fs.CopyFromLocalFile(filtered, dest)
}
