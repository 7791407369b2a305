package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/thellimist/clite/cmd"
)

var version = "dev"

type exitCoder interface {
	ExitCode() int
}

func main() {
	cmd.SetVersion(version)
	err := cmd.Execute(os.Args[1:])
	if err == nil {
		return
	}
	var reported *cmd.ExitError
	if !errors.As(err, &reported) {
		fmt.Fprintf(os.Stderr, "Error: %s\n", err)
	}
	code := 1
	var ec exitCoder
	if errors.As(err, &ec) && ec.ExitCode() != 0 {
		code = ec.ExitCode()
	}
	os.Exit(code)
}
