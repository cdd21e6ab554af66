package model

// InstallState tracks how far an environment install progressed. A failed
// install stays in the state it failed in, with the lock marker present.
type InstallState string

const (
	StateNotStarted               InstallState = "not_started"
	StateExtracting               InstallState = "extracting"
	StateLockAcquired             InstallState = "lock_acquired"
	StateStagingDrivers           InstallState = "staging_drivers"
	StateStagingPlugin            InstallState = "staging_plugin"
	StateStagingAdditionalPlugins InstallState = "staging_additional_plugins"
	StateLockReleased             InstallState = "lock_released"
)

var installOrder = []InstallState{
	StateNotStarted,
	StateExtracting,
	StateLockAcquired,
	StateStagingDrivers,
	StateStagingPlugin,
	StateStagingAdditionalPlugins,
	StateLockReleased,
}

// Ordinal returns the position of s in the install sequence, or -1.
func (s InstallState) Ordinal() int {
	for i, st := range installOrder {
		if st == s {
			return i
		}
	}
	return -1
}

// Terminal reports whether s is the success state.
func (s InstallState) Terminal() bool {
	return s == StateLockReleased
}

// InstallStatus is the observable state of an installation root.
type InstallStatus struct {
	Root       string `json:"root"`
	Installed  bool   `json:"installed"`
	LockExists bool   `json:"lock_exists"`
}

// InstallReport summarizes a completed or failed install.
type InstallReport struct {
	InstallID     string       `json:"install_id"`
	Destination   string       `json:"destination"`
	State         InstallState `json:"state"`
	StagedEntries int          `json:"staged_entries"`
	DriverSkips   []string     `json:"driver_skips,omitempty"`
	Error         string       `json:"error,omitempty"`
}
