//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package main

import (
	"fmt"
	"os/exec"

	"github.com/magefile/mage/sh"
)

const binLint = "golangci-lint"

// Lint runs go vet over every package, including the integration-tagged
// tests, then golangci-lint when it is installed.
func Lint() error {
	if err := sh.RunV(binGo, "vet", "-tags", integrationTag, "./..."); err != nil {
		return err
	}
	if _, err := exec.LookPath(binLint); err != nil {
		fmt.Println("golangci-lint not found on PATH; skipping.")
		return nil
	}
	return sh.RunV(binLint, "run", "--build-tags", integrationTag, "./...")
}
