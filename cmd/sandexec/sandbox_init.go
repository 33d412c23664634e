package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/quayrun/sandexec/sandbox"
)

var sandboxInitSpecFD int

// sandboxInitCmd is the hidden re-exec target procrunner.Runner spawns:
// it already runs inside the namespaces its parent unshared via
// exec.Cmd's Cloneflags, reads the sandbox.Spec from specFD, and hands
// off to sandbox.Init, which never returns on success.
var sandboxInitCmd = &cobra.Command{
	Use:           "sandbox-init",
	Short:         "Run as the sandbox trampoline process (internal, runs inside the new namespaces)",
	Hidden:        true,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		program, err := cmd.Flags().GetString("program")
		if err != nil {
			return err
		}
		return runSandboxInit(program, args)
	},
}

func init() {
	sandboxInitCmd.Flags().IntVar(&sandboxInitSpecFD, "spec-fd", 3, "file descriptor the sandbox.Spec JSON is read from")
	sandboxInitCmd.Flags().String("program", "", "absolute path of the program to execve")
	rootCmd.AddCommand(sandboxInitCmd)
}

func runSandboxInit(program string, args []string) error {
	specFile := os.NewFile(uintptr(sandboxInitSpecFD), "spec")
	defer specFile.Close()

	data, err := io.ReadAll(specFile)
	if err != nil {
		return fmt.Errorf("reading sandbox spec from fd %d: %w", sandboxInitSpecFD, err)
	}

	var spec sandbox.Spec
	if err := json.Unmarshal(data, &spec); err != nil {
		return fmt.Errorf("parsing sandbox spec: %w", err)
	}

	return sandbox.Init(spec, program, args, os.Environ())
}
