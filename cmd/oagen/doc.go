// SPDX-License-Identifier: MPL-2.0

// Package cmd contains the CLI commands for oagen.
//
// This package implements the Cobra command hierarchy: code generation
// through a containerized openapi-generator, build descriptor merging and
// backup, the generator catalog, and configuration management.
package cmd
