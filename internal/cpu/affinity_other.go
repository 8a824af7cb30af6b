//go:build !linux && !windows

package cpu

// pinToCore is unavailable here; macOS, for one, has no thread pinning API.
func pinToCore(int) (uintptr, error) {
	return 0, ErrAffinityUnsupported
}
