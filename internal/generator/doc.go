// SPDX-License-Identifier: MPL-2.0

// Package generator runs the containerized OpenAPI generator against a
// project.
//
// It holds the catalog of generator types per language, discovers OpenAPI
// definitions in a project tree, guards against overwriting earlier output,
// makes sure the generator image is present, and streams the generator's
// progress. For Java projects the Maven descriptor already in the output
// folder is backed up before generation and reconciled with the generated one
// afterwards (see package pom).
package generator
