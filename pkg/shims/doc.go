// Package shims is the library entry point for installing Kettle
// environments onto a distributed filesystem and configuring jobs to use
// them.
//
// A Client is opened from a config.Config and wires the filesystem, the
// cache stager, the plugin resolver, the installer and the classpath
// registrar together:
//
//	cfg, _ := config.Load(".")
//	c, err := shims.Open(cfg)
//	if err != nil { ... }
//	defer c.Close()
//	report, err := c.Install(shims.InstallOptions{Destination: "/opt/pentaho/mapreduce"})
package shims
