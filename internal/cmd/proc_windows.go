//go:build windows

package cmd

import (
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/sys/windows"
)

// DefaultShell returns the argv commands are appended to.
func DefaultShell() []string {
	return []string{"cmd.exe", "/d", "/s", "/c"}
}

// shellCommand builds the process for command. cmd.exe does not follow the
// MSVC argument rules exec.Command escapes for, so its command line is
// written directly with the command wrapped in one pair of quotes, which
// /s strips again.
func shellCommand(shell []string, command string) *exec.Cmd {
	args := append(append([]string(nil), shell[1:]...), command)
	c := exec.Command(shell[0], args...)
	if !isCmdExe(shell[0]) {
		return c
	}
	parts := make([]string, 0, len(shell)+1)
	for _, s := range shell {
		parts = append(parts, syscall.EscapeArg(s))
	}
	parts = append(parts, `"`+command+`"`)
	c.SysProcAttr = &syscall.SysProcAttr{CmdLine: strings.Join(parts, " ")}
	return c
}

func isCmdExe(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	return base == "cmd" || base == "cmd.exe"
}

// setProcessGroup starts the command in a new process group, keeping any
// attributes shellCommand already set.
func setProcessGroup(c *exec.Cmd) {
	if c.SysProcAttr == nil {
		c.SysProcAttr = &syscall.SysProcAttr{}
	}
	c.SysProcAttr.CreationFlags |= windows.CREATE_NEW_PROCESS_GROUP
}

// terminate asks the whole process tree to close.
func terminate(p *os.Process) error {
	return taskkill(p, false)
}

// kill forces the process tree down and falls back to the shell process
// alone if taskkill is unavailable.
func kill(p *os.Process) error {
	if err := taskkill(p, true); err != nil {
		return p.Kill()
	}
	return nil
}

func taskkill(p *os.Process, force bool) error {
	args := []string{"/T"}
	if force {
		args = append(args, "/F")
	}
	args = append(args, "/PID", strconv.Itoa(p.Pid))
	c := exec.Command("taskkill", args...)
	c.SysProcAttr = &syscall.SysProcAttr{HideWindow: true}
	return c.Run()
}

func exitCode(state *os.ProcessState) int {
	return state.ExitCode()
}
