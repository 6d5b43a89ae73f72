//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/magefile/mage/mg"
)

// Default target to run when none is specified
// If not set, running mage will list available targets
var Default = Build

func Build() error {
	mg.Deps(BuildDigitizer)
	mg.Deps(BuildMeasureSmear)
	fmt.Println("Compilation finished")
	return nil
}

func BuildDigitizer() error {
	fmt.Println("Building digitizer executable...")
	return buildCommand("./bin/digitizer", "./digitizer")
}

func BuildMeasureSmear() error {
	fmt.Println("Building measureSmear executable...")
	return buildCommand("./bin/measureSmear", "./measureSmear")
}

func buildCommand(output string, path string) error {
	ldflags := os.Getenv("CGO_LDFLAGS")
	cflags := os.Getenv("CGO_CFLAGS")
	cmd := exec.Command("go", "build", "-o", output, path)
	cmd.Env = append(os.Environ(),
		"CGO_ENABLED=1",
		fmt.Sprintf("CGO_LDFLAGS=%s", ldflags),
		fmt.Sprintf("CGO_CFLAGS=%s", cflags))
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
