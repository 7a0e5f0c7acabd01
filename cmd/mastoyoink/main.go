package main

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// Exit codes
const (
	ExitSuccess          = 0
	ExitGeneralError     = 1
	ExitInvalidArgs      = 2
	ExitManifestError    = 3
	ExitStorageError     = 4
	ExitInterrupted      = 5
	ExitValidationFailed = 6
)

// app carries the process streams so commands can be run from tests.
type app struct {
	stdout io.Writer
	stderr io.Writer

	// transport, when set, replaces the HTTP client's pooled transport.
	transport http.RoundTripper
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr}
	os.Exit(a.run(os.Args[1:]))
}

func (a *app) run(args []string) int {
	if len(args) == 0 {
		a.printUsage()
		return ExitInvalidArgs
	}

	command := args[0]
	cmdArgs := args[1:]

	switch command {
	case "sync":
		return a.runSync(cmdArgs)
	case "validate":
		return a.runValidate(cmdArgs)
	case "help", "-h", "--help":
		a.printUsage()
		return ExitSuccess
	}

	// mastoyoink --instance HOST --categories LIST
	if strings.HasPrefix(command, "-") {
		return a.runSync(args)
	}

	fmt.Fprintf(a.stderr, "Unknown command: %s\n", command)
	a.printUsage()
	return ExitInvalidArgs
}

func (a *app) printUsage() {
	fmt.Fprintln(a.stderr, `Usage: mastoyoink <command> [options]

Commands:
  sync      Download the custom emoji of an instance, filtered by category
  validate  Check that every matching emoji is present in the destination
  help      Show this help

Running 'mastoyoink --instance HOST --categories LIST' is the same as 'sync'.
Run 'mastoyoink <command> -h' for command-specific help.`)
}
