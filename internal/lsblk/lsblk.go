// Package lsblk hands the reconstructed tree to the external
// enumeration tool.
package lsblk

import (
	"fmt"
	"os"
	"os/exec"
)

// CheckArgs performs the superficial well-formedness check on
// pass-through arguments: they are not interpreted, only kept from
// smuggling control bytes into the tool invocation.
func CheckArgs(args []string) error {
	for _, a := range args {
		if a == "" {
			return fmt.Errorf("empty pass-through argument")
		}
		for _, c := range a {
			if c < 0x20 && c != '\t' {
				return fmt.Errorf("pass-through argument %q contains control characters", a)
			}
		}
	}
	return nil
}

// Run invokes the enumeration tool with the working root as its sysroot
// override plus the caller's display arguments, inheriting stdio. A
// non-zero exit is a collaborator failure.
func Run(prog, root string, args []string) error {
	if prog == "" {
		prog = "lsblk"
	}
	if err := CheckArgs(args); err != nil {
		return err
	}

	full := append([]string{"--sysroot", root}, args...)
	cmd := exec.Command(prog, full...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("enumeration tool %q: %w", prog, err)
	}
	return nil
}
