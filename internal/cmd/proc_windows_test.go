//go:build windows

package cmd

import (
	"testing"

	"golang.org/x/sys/windows"
)

func TestShellCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		shell   []string
		command string
		want    string
	}{
		{
			name:    "quotes kept verbatim",
			shell:   DefaultShell(),
			command: `echo "a b" & exit 3`,
			want:    `cmd.exe /d /s /c "echo "a b" & exit 3"`,
		},
		{
			name:    "full path to cmd",
			shell:   []string{`C:\Windows\System32\CMD.EXE`, "/c"},
			command: "dir",
			want:    `C:\Windows\System32\CMD.EXE /c "dir"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c := shellCommand(tt.shell, tt.command)
			if c.SysProcAttr == nil {
				t.Fatal("SysProcAttr not set")
			}
			if c.SysProcAttr.CmdLine != tt.want {
				t.Errorf("CmdLine = %q, want %q", c.SysProcAttr.CmdLine, tt.want)
			}
		})
	}
}

func TestShellCommand_OtherShell(t *testing.T) {
	t.Parallel()

	c := shellCommand([]string{"powershell", "-Command"}, "Get-Date")
	if c.SysProcAttr != nil {
		t.Errorf("SysProcAttr = %+v, want nil", c.SysProcAttr)
	}
	if len(c.Args) != 3 || c.Args[2] != "Get-Date" {
		t.Errorf("Args = %q", c.Args)
	}
}

func TestSetProcessGroup_KeepsCmdLine(t *testing.T) {
	t.Parallel()

	c := shellCommand(DefaultShell(), "dir")
	setProcessGroup(c)
	if c.SysProcAttr.CmdLine == "" {
		t.Error("CmdLine dropped")
	}
	if c.SysProcAttr.CreationFlags&windows.CREATE_NEW_PROCESS_GROUP == 0 {
		t.Errorf("CreationFlags = %#x, want new process group", c.SysProcAttr.CreationFlags)
	}
}
