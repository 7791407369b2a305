//go:build !unix

package shell

import (
	"os"
	"os/exec"
)

func shellInterpreter(line string) (string, []string) {
	return "cmd", []string{"/C", line}
}

func setProcessGroup(*exec.Cmd) {}

func terminate(cmd *exec.Cmd) {
	if cmd == nil || cmd.Process == nil {
		return
	}
	if err := cmd.Process.Signal(os.Interrupt); err != nil {
		_ = cmd.Process.Kill()
	}
}

func kill(cmd *exec.Cmd) {
	if cmd != nil && cmd.Process != nil {
		_ = cmd.Process.Kill()
	}
}

func signalNumber(*exec.ExitError) (int, bool) { return 0, false }
