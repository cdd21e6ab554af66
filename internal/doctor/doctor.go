// Package doctor inspects an installation root for partial installs and
// staging drift.
package doctor

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/tahopen/tahopen-hadoop-shims/internal/audit"
	"github.com/tahopen/tahopen-hadoop-shims/internal/installer"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/dfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
)

// Severities.
const (
	SeverityCritical = "critical"
	SeverityError    = "error"
	SeverityWarning  = "warning"
)

// Finding represents a detected issue.
type Finding struct {
	Category    string `json:"category"`
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Path        string `json:"path,omitempty"`
}

// Result contains doctor check results.
type Result struct {
	Root     string    `json:"root"`
	Healthy  bool      `json:"healthy"`
	Findings []Finding `json:"findings"`
}

func (r *Result) add(f Finding) {
	r.Findings = append(r.Findings, f)
	if f.Severity != SeverityWarning {
		r.Healthy = false
	}
}

// Doctor checks installation roots on a filesystem.
type Doctor struct {
	fs      dfs.FileSystem
	journal *audit.FileAppender
	tempDir string
}

// Option configures a Doctor.
type Option func(*Doctor)

// WithJournal also verifies the install journal.
func WithJournal(j *audit.FileAppender) Option {
	return func(d *Doctor) { d.journal = j }
}

// WithTempDir also looks for extraction directories left in dir.
func WithTempDir(dir string) Option {
	return func(d *Doctor) { d.tempDir = dir }
}

// NewDoctor creates a new doctor.
func NewDoctor(fs dfs.FileSystem, opts ...Option) *Doctor {
	d := &Doctor{fs: fs}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Check runs all diagnostic checks against root. Strict mode checks the
// replication of every staged path rather than only the top level.
func (d *Doctor) Check(root hadoop.Path, strict bool) (*Result, error) {
	result := &Result{Root: d.fs.MakeQualified(root).String(), Healthy: true}

	exists, err := d.fs.Exists(root)
	if err != nil {
		return nil, fmt.Errorf("check root: %w", err)
	}
	if !exists {
		result.add(Finding{
			Category:    "root",
			Description: "installation root does not exist",
			Severity:    SeverityCritical,
			Path:        result.Root,
		})
		return result, nil
	}

	if err := d.checkLock(root, result); err != nil {
		return nil, err
	}
	d.checkLib(root, result)
	d.checkReplication(root, strict, result)
	d.checkJournal(result)
	d.checkOrphanTemp(result)
	return result, nil
}

func (d *Doctor) checkLock(root hadoop.Path, result *Result) error {
	installed, err := installer.IsInstalledAt(d.fs, root)
	if err != nil {
		return fmt.Errorf("check lock marker: %w", err)
	}
	if !installed {
		result.add(Finding{
			Category:    "lock",
			Description: "lock marker present: install in progress or failed; rerun install to overwrite",
			Severity:    SeverityCritical,
			Path:        installer.LockFileAt(d.fs.MakeQualified(root)).String(),
		})
	}
	return nil
}

func (d *Doctor) checkLib(root hadoop.Path, result *Result) {
	lib := root.Join(model.LibDir)
	st, err := d.fs.GetFileStatus(lib)
	if err != nil || !st.IsDir {
		result.add(Finding{
			Category:    "layout",
			Description: "lib directory missing",
			Severity:    SeverityError,
			Path:        d.fs.MakeQualified(lib).String(),
		})
		return
	}
	entries, err := d.fs.ListStatus(lib)
	if err != nil {
		result.add(Finding{
			Category:    "layout",
			Description: fmt.Sprintf("cannot list lib directory: %v", err),
			Severity:    SeverityError,
			Path:        st.Path.String(),
		})
		return
	}
	if len(entries) == 0 {
		result.add(Finding{
			Category:    "layout",
			Description: "lib directory is empty",
			Severity:    SeverityWarning,
			Path:        st.Path.String(),
		})
	}
}

func (d *Doctor) checkReplication(root hadoop.Path, strict bool, result *Result) {
	want := d.fs.Conf().GetInt(model.KeySubmitReplication, model.DefaultReplication)
	entries, err := d.fs.ListStatus(root)
	if err != nil {
		result.add(Finding{
			Category:    "replication",
			Description: fmt.Sprintf("cannot list root: %v", err),
			Severity:    SeverityError,
		})
		return
	}
	for len(entries) > 0 {
		st := entries[0]
		entries = entries[1:]
		if st.Path.Name() == model.LockFileName {
			continue
		}
		if st.Replication < want {
			result.add(Finding{
				Category:    "replication",
				Description: fmt.Sprintf("replication %d below configured %d", st.Replication, want),
				Severity:    SeverityWarning,
				Path:        st.Path.String(),
			})
		}
		if strict && st.IsDir {
			children, err := d.fs.ListStatus(st.Path)
			if err == nil {
				entries = append(entries, children...)
			}
		}
	}
}

func (d *Doctor) checkJournal(result *Result) {
	if d.journal == nil {
		return
	}
	if err := d.journal.Verify(); err != nil {
		result.add(Finding{
			Category:    "journal",
			Description: err.Error(),
			Severity:    SeverityError,
			Path:        d.journal.Path(),
		})
	}
}

// checkOrphanTemp reports extraction directories, which carry UUID names,
// left in the temp directory by an interrupted install.
func (d *Doctor) checkOrphanTemp(result *Result) {
	if d.tempDir == "" {
		return
	}
	entries, err := os.ReadDir(d.tempDir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if _, err := uuid.Parse(e.Name()); err != nil {
			continue
		}
		result.add(Finding{
			Category:    "tmp",
			Description: "orphan extraction directory",
			Severity:    SeverityWarning,
			Path:        filepath.Join(d.tempDir, e.Name()),
		})
	}
}
