//go:build mage
// +build mage

package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/magefile/mage/mg"
	"github.com/magefile/mage/sh"
)

var binDir = "bin"

var services = map[string]string{
	"onboarding-service":  "./cmd/onboarding",
	"onboarding-notifier": "./cmd/notifier",
	"api-gateway":         "./api-gateway",
}

var Default = Build

// Build compiles every binary into bin/
func Build() error {
	mg.Deps(Tidy)

	if err := os.MkdirAll(binDir, 0o755); err != nil {
		return err
	}
	env := map[string]string{"CGO_ENABLED": "0"}
	for name, pkg := range services {
		out := filepath.Join(binDir, name)
		fmt.Println("Building:", out)
		if err := sh.RunWithV(env, "go", "build", "-trimpath", "-o", out, pkg); err != nil {
			return err
		}
	}
	return nil
}

func Test() error {
	fmt.Println("Testing...")
	return sh.RunV("go", "test", "./...", "-count=1", "-race")
}

func Tidy() error {
	return sh.RunV("go", "mod", "tidy")
}

// Docs regenerates the swagger description
func Docs() error {
	if _, err := exec.LookPath("swag"); err != nil {
		return fmt.Errorf("swag not found. Install with: go install github.com/swaggo/swag/cmd/swag@latest")
	}
	return sh.RunV("swag", "init", "-g", "cmd/onboarding/docs.go", "-o", "docs", "--parseInternal")
}

func Run() error {
	return sh.RunV("go", "run", "./cmd/onboarding")
}

func Clean() error {
	return sh.Rm(binDir)
}
