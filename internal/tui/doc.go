// SPDX-License-Identifier: MPL-2.0

// Package tui provides the interactive yes/no prompt used before oagen pulls
// images, overwrites generated output or renames build descriptors.
//
// On a terminal the prompt is a Bubble Tea model styled with lipgloss. When
// stdin is not a terminal, or ACCESSIBLE is set, a plain line prompt is used
// instead and written to stderr so it is not captured by pipes.
package tui
