// SPDX-License-Identifier: MPL-2.0

// Package testutil provides helpers for tests that fail the test on error
// instead of returning it: environment variables (MustSetenv, SetHomeDir,
// SetConfigHome), files (MustWriteFile, MustReadFile, MustMkdirAll), and a
// semaphore bounding concurrent container runs.
package testutil
