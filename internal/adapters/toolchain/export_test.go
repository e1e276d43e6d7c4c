package toolchain

// SetLookPath replaces the PATH lookup of h.
func (h *HostEnvFactory) SetLookPath(fn func(string) (string, error)) {
	h.lookPath = fn
}
