//go:build darwin
// +build darwin

package idle

// platformBackends lists the auto-detection order on macOS.
func platformBackends() []Backend {
	return []Backend{BackendIOReg, BackendTmux}
}
