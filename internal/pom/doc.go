// SPDX-License-Identifier: MPL-2.0

// Package pom reconciles a project's Maven build descriptor with one freshly
// produced by a code generator.
//
// Documents are parsed into an explicit tree (Node) whose children are grouped
// into named slots. A slot is either a single node or a sequence of nodes,
// which makes the XML singleton/list ambiguity visible instead of implicit:
// a <dependencies> element with one <dependency> parses as a single slot and
// is normalized to a sequence before anything is appended to it.
//
// Only three sections are merged, in this order: project/properties,
// project/dependencies/dependency and project/build/plugins/plugin. Entries
// are identified by key (property name, or groupId and artifactId) and the
// original document always wins on conflict; generated entries that are new
// are appended in generated order.
//
// Reconciler.Reconcile performs the full file choreography around a merge:
// it moves the generator's pom.xml aside under a unique name, parses both
// descriptors, merges, and writes the result back to pom.xml with a fixed
// formatting configuration.
package pom
