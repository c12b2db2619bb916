// SPDX-License-Identifier: MPL-2.0

// Package backup reserves collision-free file names and moves existing files
// out of the way before code generation overwrites them.
//
// Names are derived as {stem}{-N}{ext}: the bare stem is tried first, then
// stem-1, stem-2 and so on until a name is free. The reservation is a
// check-then-act probe and is not safe against concurrent writers in the same
// directory; the workflow assumes one interactive user per project.
package backup
