//go:build mage

// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

// Package main provides build targets for the storefront project using Mage.
//
// Usage:
//
//	mage build             Compile the storefront binary to bin/
//	mage install           Install storefront to GOPATH/bin
//	mage clean             Remove build artifacts
//	mage test:all          Run unit and integration tests
//	mage test:unit         Run unit tests only
//	mage test:integration  Build, then run the CLI and container-backed tests
//	mage lint              Run golangci-lint
//	mage dev:up            Start local postgres and redis containers
//	mage dev:down          Stop them
package main
