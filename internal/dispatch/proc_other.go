//go:build !unix

package dispatch

import "os/exec"

// ownProcessGroup keeps the exec default: only the encoder process itself is
// killed on cancellation.
func ownProcessGroup(_ *exec.Cmd) {}
