//go:build !windows

// Package process terminates browser process trees left behind by go-rod.
package process

import "syscall"

// KillProcessGroup sends SIGKILL to the process group led by pid, taking
// Chrome's renderer and GPU children down with it.
func KillProcessGroup(pid int) {
	if pid <= 0 {
		return
	}
	// Error ignored: launcher.Kill() runs afterwards as a fallback
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}
