// Package installer materializes a Kettle environment on a distributed
// filesystem: the runtime archive, shim drivers, the big data plugin and
// any additional plugins, guarded by a lock marker under the root.
package installer

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/tahopen/tahopen-hadoop-shims/internal/archive"
	"github.com/tahopen/tahopen-hadoop-shims/internal/plugin"
	"github.com/tahopen/tahopen-hadoop-shims/internal/stager"
	"github.com/tahopen/tahopen-hadoop-shims/internal/vfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/dfs"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/errclass"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/hadoop"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/logging"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/model"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/pathutil"
	"github.com/tahopen/tahopen-hadoop-shims/pkg/progress"
)

// Request describes one environment install.
type Request struct {
	// Archive is the local runtime archive (zip).
	Archive string
	// Destination is the installation root on the distributed filesystem.
	Destination hadoop.Path
	// BigDataPlugin is the local big data plugin folder.
	BigDataPlugin string
	// AdditionalPlugins is a comma-separated list of plugin folder names
	// relative to a plugin root.
	AdditionalPlugins string
	// ExcludePluginFiles is a comma-separated list of library name prefixes
	// left out of additional plugins.
	ExcludePluginFiles string
	// ShimIdentifier selects hadoop-configurations/<id>/lib/pmr.
	ShimIdentifier string
}

// Journal records install events.
type Journal interface {
	Append(rec model.JournalRecord) error
}

// Installer runs environment installs.
type Installer struct {
	stager    *stager.Stager
	resolver  *plugin.Resolver
	extractor *archive.Extractor
	driverDir string
	journal   Journal
	progress  progress.Callback
	log       *logging.Logger
	state     model.InstallState
}

// Option configures an Installer.
type Option func(*Installer)

// WithExtractor sets the archive extractor.
func WithExtractor(x *archive.Extractor) Option {
	return func(in *Installer) { in.extractor = x }
}

// WithDriverDir sets the local shim driver deployment directory.
func WithDriverDir(dir string) Option {
	return func(in *Installer) { in.driverDir = dir }
}

// WithJournal records install events to j.
func WithJournal(j Journal) Option {
	return func(in *Installer) { in.journal = j }
}

// WithProgress reports step transitions to cb.
func WithProgress(cb progress.Callback) Option {
	return func(in *Installer) { in.progress = cb }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(in *Installer) { in.log = l }
}

// New creates an Installer that stages through st and resolves additional
// plugins with res.
func New(st *stager.Stager, res *plugin.Resolver, opts ...Option) *Installer {
	in := &Installer{
		stager:    st,
		resolver:  res,
		extractor: archive.NewExtractor(""),
		progress:  progress.Noop,
		log:       logging.Global(),
		state:     model.StateNotStarted,
	}
	for _, opt := range opts {
		opt(in)
	}
	return in
}

// State returns the state the last install reached.
func (in *Installer) State() model.InstallState { return in.state }

// LockFileAt returns the lock marker path under root.
func LockFileAt(root hadoop.Path) hadoop.Path {
	return root.Join(model.LockFileName)
}

// IsInstalledAt reports whether root holds a completed install, which is
// the case exactly when no lock marker is present.
func IsInstalledAt(fs dfs.FileSystem, root hadoop.Path) (bool, error) {
	locked, err := fs.Exists(LockFileAt(root))
	if err != nil {
		return false, err
	}
	return !locked, nil
}

// Status describes the installation root.
func Status(fs dfs.FileSystem, root hadoop.Path) (*model.InstallStatus, error) {
	locked, err := fs.Exists(LockFileAt(root))
	if err != nil {
		return nil, fmt.Errorf("check lock marker: %w", err)
	}
	return &model.InstallStatus{
		Root:       fs.MakeQualified(root).String(),
		Installed:  !locked,
		LockExists: locked,
	}, nil
}

// IsInstalledAt is the package function over the installer's filesystem.
func (in *Installer) IsInstalledAt(root hadoop.Path) (bool, error) {
	return IsInstalledAt(in.stager.FileSystem(), root)
}

// Install extracts the archive and stages the environment under
// req.Destination. The lock marker is created before anything is staged
// and removed only when every step succeeded; a failed install leaves it
// in place and is not rolled back. The returned report is never nil.
func (in *Installer) Install(req Request) (*model.InstallReport, error) {
	report := &model.InstallReport{
		InstallID:   uuid.NewString(),
		Destination: req.Destination.String(),
	}
	in.state = model.StateNotStarted
	err := in.install(req, report)
	report.State = in.state
	if err != nil {
		report.Error = err.Error()
		in.record(report, model.JournalRecord{
			EventType: model.EventInstallFailed,
			Details:   map[string]any{"error": err.Error()},
		})
		in.log.ErrorErr("install failed", err, map[string]any{
			"destination": report.Destination,
			"state":       string(in.state),
		})
		return report, err
	}
	in.record(report, model.JournalRecord{
		EventType: model.EventInstallComplete,
		Details:   map[string]any{"staged_entries": report.StagedEntries},
	})
	in.log.Info("install complete", map[string]any{
		"destination":    report.Destination,
		"staged_entries": report.StagedEntries,
	})
	return report, nil
}

func (in *Installer) install(req Request, report *model.InstallReport) error {
	if req.Archive == "" {
		return errclass.ErrNullArgument.WithMessage("archive is required")
	}
	if req.Destination.IsZero() {
		return errclass.ErrNullArgument.WithMessage("destination is required")
	}
	if req.BigDataPlugin == "" {
		return errclass.ErrNullArgument.WithMessage("big data plugin is required")
	}
	if req.ShimIdentifier != "" {
		if err := pathutil.ValidateSegment(req.ShimIdentifier); err != nil {
			return err
		}
	}
	fs := in.stager.FileSystem()
	in.record(report, model.JournalRecord{
		EventType: model.EventInstallStart,
		Details: map[string]any{
			"archive":         req.Archive,
			"big_data_plugin": req.BigDataPlugin,
			"shim":            req.ShimIdentifier,
		},
	})

	in.transition(report, model.StateExtracting)
	extracted, err := in.extractor.ExtractToTemp(req.Archive)
	if err != nil {
		return err
	}
	defer func() {
		if ok, err := vfs.DeleteDirectory(extracted); err != nil || !ok {
			in.log.Warn("failed to remove extracted archive", map[string]any{"path": extracted})
		}
	}()

	lock := LockFileAt(req.Destination)
	w, err := fs.Create(lock, true)
	if err != nil {
		return errclass.ErrStagingFailed.WithMessagef("create lock marker %s", lock).Wrap(err)
	}
	if err := w.Close(); err != nil {
		return errclass.ErrStagingFailed.WithMessagef("create lock marker %s", lock).Wrap(err)
	}
	in.transition(report, model.StateLockAcquired)

	if err := in.stageArchive(extracted, req.Destination, report); err != nil {
		return err
	}

	in.transition(report, model.StateStagingDrivers)
	in.stageDrivers(req.Destination, report)

	in.transition(report, model.StateStagingPlugin)
	if err := in.stageBigDataPlugin(req.Destination, req.BigDataPlugin, req.ShimIdentifier, report); err != nil {
		return err
	}

	if strings.TrimSpace(req.AdditionalPlugins) != "" {
		in.transition(report, model.StateStagingAdditionalPlugins)
		n, err := in.StagePluginsForCache(req.Destination.Join(model.PluginsDir), req.AdditionalPlugins, req.ExcludePluginFiles)
		report.StagedEntries += n
		if err != nil {
			return err
		}
	}

	if _, err := fs.Delete(lock, true); err != nil {
		return errclass.ErrStagingFailed.WithMessagef("delete lock marker %s", lock).Wrap(err)
	}
	in.transition(report, model.StateLockReleased)
	return nil
}

// stageArchive replaces the contents of root with the extracted archive,
// leaving the lock marker in place, then normalizes root itself.
func (in *Installer) stageArchive(extracted string, root hadoop.Path, report *model.InstallReport) error {
	if err := in.clearRoot(root); err != nil {
		return err
	}
	children, err := vfs.Children(extracted)
	if err != nil {
		return errclass.ErrStagingFailed.WithMessage("list extracted archive").Wrap(err)
	}
	for _, c := range children {
		if c.Rel == model.LockFileName {
			continue
		}
		if err := in.stager.StageForCache(c.Path, root.Join(c.Rel), "", true, false); err != nil {
			return err
		}
		report.StagedEntries++
	}

	fs := in.stager.FileSystem()
	if err := fs.SetPermission(root, model.PermissionPrivate); err != nil {
		return errclass.ErrStagingFailed.WithMessagef("set permission on %s", root).Wrap(err)
	}
	if _, err := fs.SetReplication(root, in.stager.Replication()); err != nil {
		return errclass.ErrStagingFailed.WithMessagef("set replication on %s", root).Wrap(err)
	}
	return nil
}

// clearRoot deletes every entry of root except the lock marker, so that a
// reinstall leaves nothing from the previous environment behind.
func (in *Installer) clearRoot(root hadoop.Path) error {
	fs := in.stager.FileSystem()
	entries, err := fs.ListStatus(root)
	if err != nil {
		return errclass.ErrStagingFailed.WithMessagef("list %s", root).Wrap(err)
	}
	for _, e := range entries {
		if e.Path.Name() == model.LockFileName {
			continue
		}
		if _, err := fs.Delete(e.Path, true); err != nil {
			return errclass.ErrStagingFailed.WithMessagef("delete %s", e.Path).Wrap(err)
		}
	}
	return nil
}

// stageDrivers stages every file below the driver deployment directory to
// drivers/<rel>. Failures are logged and recorded, never returned.
func (in *Installer) stageDrivers(root hadoop.Path, report *model.InstallReport) {
	if in.driverDir == "" {
		return
	}
	ok, err := vfs.IsFolder(in.driverDir)
	if err != nil || !ok {
		return
	}
	files, err := vfs.FindLocalFiles(in.driverDir, "")
	if err != nil {
		in.log.Warn("failed to list shim drivers", map[string]any{"path": in.driverDir, "error": err.Error()})
		return
	}
	driversDir := root.Join(model.DriversDir)
	for _, f := range files {
		rel, err := filepath.Rel(in.driverDir, f)
		if err != nil {
			continue
		}
		dest := driversDir.Join(filepath.ToSlash(rel))
		if err := in.stager.StageForCache(f, dest, "", true, false); err != nil {
			in.log.Warn("failed to stage the shims to distributed cache", map[string]any{
				"source":      f,
				"destination": dest.String(),
				"error":       err.Error(),
			})
			report.DriverSkips = append(report.DriverSkips, f)
			in.record(report, model.JournalRecord{
				EventType: model.EventDriverSkipped,
				Details:   map[string]any{"source": f, "error": err.Error()},
			})
			continue
		}
		report.StagedEntries++
	}
}

// stageBigDataPlugin stages the plugin folder without its shim
// configurations and then the selected shim's pmr libraries into lib/.
func (in *Installer) stageBigDataPlugin(root hadoop.Path, pluginFolder, shim string, report *model.InstallReport) error {
	ok, err := vfs.IsFolder(pluginFolder)
	if err != nil {
		return errclass.ErrSourceNotFound.WithMessagef("big data plugin %s", pluginFolder).Wrap(err)
	}
	if !ok {
		return errclass.ErrSourceNotFound.WithMessagef("big data plugin folder does not exist: %s", pluginFolder)
	}

	pluginDir := root.Join(model.PluginsDir).Join(filepath.Base(pluginFolder))
	children, err := vfs.FindFiles(pluginFolder, vfs.Depth(1, 1))
	if err != nil {
		return errclass.ErrStagingFailed.WithMessagef("list %s", pluginFolder).Wrap(err)
	}
	for _, c := range children {
		if c.Rel == model.HadoopConfigurationsDir || c.Rel == model.PMRLibrariesArchive {
			continue
		}
		if err := in.stager.StageForCache(c.Path, pluginDir.Join(c.Rel), "", true, false); err != nil {
			return err
		}
		report.StagedEntries++
	}

	if shim == "" {
		return nil
	}
	pmr := filepath.Join(pluginFolder, model.HadoopConfigurationsDir, shim, model.LibDir, "pmr")
	ok, err = vfs.IsFolder(pmr)
	if err != nil || !ok {
		return nil
	}
	libs, err := vfs.Children(pmr)
	if err != nil {
		return errclass.ErrStagingFailed.WithMessagef("list %s", pmr).Wrap(err)
	}
	libDir := root.Join(model.LibDir)
	for _, l := range libs {
		if err := in.stager.StageForCache(l.Path, libDir.Join(l.Rel), "", true, false); err != nil {
			return err
		}
		report.StagedEntries++
	}
	return nil
}

// StagePluginsForCache resolves each comma-separated plugin folder name and
// stages it into pluginsDir/<relative path>, leaving out libraries matching
// excludePrefixes. It returns how many plugins were staged.
func (in *Installer) StagePluginsForCache(pluginsDir hadoop.Path, names, excludePrefixes string) (int, error) {
	fs := in.stager.FileSystem()
	exists, err := fs.Exists(pluginsDir)
	if err != nil {
		return 0, errclass.ErrStagingFailed.WithMessagef("check %s", pluginsDir).Wrap(err)
	}
	if !exists {
		if err := fs.Mkdirs(pluginsDir); err != nil {
			return 0, errclass.ErrStagingFailed.WithMessagef("create %s", pluginsDir).Wrap(err)
		}
	}

	staged := 0
	for _, name := range strings.Split(names, ",") {
		if strings.TrimSpace(name) == "" {
			continue
		}
		ref, found, err := in.resolver.FindPluginFolder(name)
		if err != nil {
			return staged, err
		}
		if !found {
			return staged, errclass.ErrPluginNotFound.WithMessagef("plugin directory not found: %s", strings.TrimSpace(name))
		}
		dest := pluginsDir.Join(ref.RelativePath)
		if err := in.stager.StageForCache(ref.Folder, dest, excludePrefixes, true, false); err != nil {
			return staged, err
		}
		staged++
	}
	return staged, nil
}

func (in *Installer) transition(report *model.InstallReport, state model.InstallState) {
	in.state = state
	report.State = state
	in.progress("install", state.Ordinal(), model.StateLockReleased.Ordinal(), string(state))
	in.log.Debug("install state", map[string]any{"destination": report.Destination, "state": string(state)})
	in.record(report, model.JournalRecord{EventType: model.EventStateChange})
}

func (in *Installer) record(report *model.InstallReport, rec model.JournalRecord) {
	if in.journal == nil {
		return
	}
	rec.InstallID = report.InstallID
	rec.Destination = report.Destination
	rec.State = in.state
	if err := in.journal.Append(rec); err != nil {
		in.log.Warn("failed to append install journal", map[string]any{"error": err.Error()})
	}
}
