//go:build unix

package executor

import "syscall"

// sysProcAttr places the child in its own process group so a timeout
// kill can reach the whole "sh -c ..." subtree, not just the shell.
func sysProcAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{Setpgid: true}
}

// signalGroup signals the process group led by pid.
func signalGroup(pid int, sig syscall.Signal) error {
	return syscall.Kill(-pid, sig)
}
