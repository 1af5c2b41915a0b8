//go:build !windows

package cmd

import (
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"
)

// DefaultShell returns the argv commands are appended to.
func DefaultShell() []string {
	return []string{"/bin/sh", "-c"}
}

func shellCommand(shell []string, command string) *exec.Cmd {
	args := append(append([]string(nil), shell[1:]...), command)
	return exec.Command(shell[0], args...)
}

// setProcessGroup puts the command in its own process group so that
// everything it spawns can be signalled together.
func setProcessGroup(c *exec.Cmd) {
	c.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func terminate(p *os.Process) error {
	return unix.Kill(-p.Pid, unix.SIGTERM)
}

func kill(p *os.Process) error {
	return unix.Kill(-p.Pid, unix.SIGKILL)
}

// exitCode follows the shell convention of 128+signal for killed processes.
func exitCode(state *os.ProcessState) int {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return 128 + int(ws.Signal())
	}
	return state.ExitCode()
}
