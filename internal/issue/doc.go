// SPDX-License-Identifier: MPL-2.0

// Package issue provides actionable errors and a catalog of Markdown
// explanations, rendered with glamour, for the failures users hit most:
// missing container engines, failed pulls, generator errors and build
// descriptors that cannot be merged.
package issue
