// Package model holds the value types shared by staging, installation and
// reporting code.
package model

import "os"

// EngineType identifies the local copy engine used to transfer trees.
type EngineType string

const (
	EngineAuto        EngineType = "auto"
	EngineReflinkCopy EngineType = "reflink-copy"
	EngineCopy        EngineType = "copy"
)

// HashValue is a SHA-256 hash stored as hex string.
type HashValue string

// Fixed layout of an installation root.
const (
	LockFileName            = ".lock"
	LibDir                  = "lib"
	PluginsDir              = "plugins"
	DriversDir              = "drivers"
	HadoopConfigurationsDir = "hadoop-configurations"
	PMRLibrariesArchive     = "pentaho-mapreduce-libraries.zip"
	BigDataPluginFolderName = "pentaho-big-data-plugin"
	ConfigPropertiesFile    = "config.properties"
	AuthPropertyPrefix      = "pentaho.authentication"
	LibraryExtension        = "jar"
)

// Cluster configuration keys consumed or produced by staging.
const (
	KeySubmitReplication  = "mapred.submit.replication"
	KeyClasspathFiles     = "mapred.job.classpath.files"
	KeyCacheFiles         = "mapred.cache.files"
	KeyCreateSymlink      = "mapred.create.symlink"
	KeyDefaultFS          = "fs.defaultFS"
	DefaultReplication    = 10
	DefaultPathSeparator  = ","
	PermissionPrivate     = 0o755
	PermissionPublic      = 0o777
	ExtractionBufferBytes = 8192
)

// StagedEntry describes one copy onto the distributed filesystem. It lives
// only for the duration of the staging call that builds it.
type StagedEntry struct {
	Source          string `json:"source"`
	Destination     string `json:"destination"`
	ExcludePrefixes string `json:"exclude_prefixes,omitempty"`
	Overwrite       bool   `json:"overwrite"`
	Public          bool   `json:"public"`
}

// Permission returns the mode applied to the destination after the copy.
func (e StagedEntry) Permission() os.FileMode {
	if e.Public {
		return PermissionPublic
	}
	return PermissionPrivate
}
