//go:build !windows

package cmd

import (
	"slices"
	"testing"
)

func TestShellCommand(t *testing.T) {
	t.Parallel()

	shell := make([]string, 2, 8)
	copy(shell, []string{"/bin/sh", "-c"})

	first := shellCommand(shell, `echo "a b"`)
	second := shellCommand(shell, "exit 3")

	if want := []string{"/bin/sh", "-c", `echo "a b"`}; !slices.Equal(first.Args, want) {
		t.Errorf("first Args = %q, want %q", first.Args, want)
	}
	if want := []string{"/bin/sh", "-c", "exit 3"}; !slices.Equal(second.Args, want) {
		t.Errorf("second Args = %q, want %q", second.Args, want)
	}
	if len(shell) != 2 {
		t.Errorf("shell modified: %q", shell)
	}
}

func TestSetProcessGroup(t *testing.T) {
	t.Parallel()

	c := shellCommand(DefaultShell(), "true")
	setProcessGroup(c)
	if c.SysProcAttr == nil || !c.SysProcAttr.Setpgid {
		t.Errorf("SysProcAttr = %+v, want Setpgid", c.SysProcAttr)
	}
}
