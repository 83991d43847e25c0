//go:build linux
// +build linux

package process

import "golang.org/x/sys/unix"

// waitExited blocks until pid has exited but leaves it waitable.
func waitExited(pid int) (bool, error) {
	for {
		var info unix.Siginfo
		err := unix.Waitid(unix.P_PID, pid, &info, unix.WEXITED|unix.WNOWAIT, nil)
		if err == unix.EINTR {
			continue
		}
		if err != nil {
			return false, err
		}
		return true, nil
	}
}
