//go:build !darwin
// +build !darwin

package idle

// platformBackends lists the auto-detection order on X11/Wayland systems.
func platformBackends() []Backend {
	return []Backend{BackendX11, BackendDBus, BackendTmux}
}
