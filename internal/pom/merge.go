// SPDX-License-Identifier: MPL-2.0

package pom

import (
	"fmt"
)

const (
	// ProjectElement is the required root element of a build descriptor.
	ProjectElement = "project"
	// PropertiesElement holds the key/value properties of a project.
	PropertiesElement = "properties"

	// SectionProperties names the properties merge in errors and logs.
	SectionProperties = "properties"
	// SectionDependencies names the dependency merge in errors and logs.
	SectionDependencies = "dependencies"
	// SectionPlugins names the build plugin merge in errors and logs.
	SectionPlugins = "build.plugins"
)

var (
	dependencySection = keyedSection{
		name:      SectionDependencies,
		container: []string{"dependencies"},
		entry:     "dependency",
	}
	pluginSection = keyedSection{
		name:      SectionPlugins,
		container: []string{"build", "plugins"},
		entry:     "plugin",
	}
)

type (
	// Key identifies a dependency or a plugin. Components are compared with
	// exact string equality; a missing component is the empty string.
	Key struct {
		GroupID    string
		ArtifactID string
	}

	// Stats counts the entries appended from the generated document.
	Stats struct {
		Properties   int
		Dependencies int
		Plugins      int
	}

	// keyedSection is a list of entries under a container path below
	// <project>, deduplicated by Key.
	keyedSection struct {
		name      string
		container []string
		entry     string
	}
)

// KeyOf returns the composite key of a dependency or plugin entry.
func KeyOf(n *Node) Key {
	return Key{GroupID: n.ChildText("groupId"), ArtifactID: n.ChildText("artifactId")}
}

// String returns the key in groupId:artifactId form.
func (k Key) String() string {
	return k.GroupID + ":" + k.ArtifactID
}

// Total returns the number of appended entries across all sections.
func (s Stats) Total() int {
	return s.Properties + s.Dependencies + s.Plugins
}

// Merge copies the properties, dependencies and build plugins of gen that are
// missing from orig into orig, in that order. A nil gen leaves orig untouched.
// On error orig may hold the sections merged before the failing one, so
// callers must not serialize it.
func Merge(orig, gen *Document) (Stats, error) {
	var stats Stats
	if gen == nil {
		return stats, nil
	}

	steps := []struct {
		section string
		run     func(orig, gen *Document) (int, error)
		count   *int
	}{
		{SectionProperties, MergeProperties, &stats.Properties},
		{SectionDependencies, MergeDependencies, &stats.Dependencies},
		{SectionPlugins, MergeBuildPlugins, &stats.Plugins},
	}
	for _, step := range steps {
		n, err := step.run(orig, gen)
		if err != nil {
			return stats, &SectionMergeError{Section: step.section, Err: err}
		}
		*step.count = n
	}
	return stats, nil
}

// MergeProperties copies every property of gen whose name is absent from
// orig. Existing properties are never overwritten. A missing <properties> on
// the original side is created at the end of <project>.
func MergeProperties(orig, gen *Document) (int, error) {
	origProject, genProject, err := projects(orig, gen)
	if err != nil {
		return 0, err
	}

	src := genProject.First(PropertiesElement)
	if src == nil || !src.HasChildren() {
		return 0, nil
	}

	dst := origProject.First(PropertiesElement)
	added := 0
	for _, slot := range src.Slots {
		if len(slot.Nodes) == 0 || dst.Slot(slot.Name) != nil {
			continue
		}
		if dst == nil {
			dst = origProject.EnsureChild(PropertiesElement)
		}
		for _, n := range slot.Nodes {
			dst.AppendChild(n.Clone())
		}
		added++
		logger().Debug("property added", "name", slot.Name)
	}
	return added, nil
}

// MergeDependencies appends the dependencies of gen whose key is not present
// in orig, keeping generated order.
func MergeDependencies(orig, gen *Document) (int, error) {
	return mergeKeyed(orig, gen, dependencySection)
}

// MergeBuildPlugins appends the build plugins of gen whose key is not present
// in orig, keeping generated order.
func MergeBuildPlugins(orig, gen *Document) (int, error) {
	return mergeKeyed(orig, gen, pluginSection)
}

func mergeKeyed(orig, gen *Document, sec keyedSection) (int, error) {
	origProject, genProject, err := projects(orig, gen)
	if err != nil {
		return 0, err
	}

	genEntries := sec.entries(genProject)
	origEntries := sec.entries(origProject)
	if origEntries != nil {
		origEntries.Normalize()
	}
	if genEntries == nil || len(genEntries.Nodes) == 0 {
		return 0, nil
	}
	genEntries.Normalize()

	seen := make(map[Key]struct{})
	if origEntries != nil {
		for _, n := range origEntries.Nodes {
			seen[KeyOf(n)] = struct{}{}
		}
	}

	added := 0
	for _, n := range genEntries.Nodes {
		key := KeyOf(n)
		if _, ok := seen[key]; ok {
			logger().Debug("entry kept from original", "section", sec.name, "key", key)
			continue
		}
		if origEntries == nil {
			origEntries = sec.ensure(origProject)
		}
		origEntries.Nodes = append(origEntries.Nodes, n.Clone())
		seen[key] = struct{}{}
		added++
		logger().Debug("entry added", "section", sec.name, "key", key)
	}
	return added, nil
}

// entries returns the entry slot below project, or nil when any part of the
// path is missing.
func (s keyedSection) entries(project *Node) *Slot {
	n := project
	for _, name := range s.container {
		if n = n.First(name); n == nil {
			return nil
		}
	}
	return n.Slot(s.entry)
}

// ensure creates the missing containers and an empty sequence slot.
func (s keyedSection) ensure(project *Node) *Slot {
	n := project
	for _, name := range s.container {
		n = n.EnsureChild(name)
	}
	return n.AddSlot(s.entry, SlotSequence)
}

func projects(orig, gen *Document) (*Node, *Node, error) {
	o, err := project(orig, "original")
	if err != nil {
		return nil, nil, err
	}
	g, err := project(gen, "generated")
	if err != nil {
		return nil, nil, err
	}
	return o, g, nil
}

func project(doc *Document, side string) (*Node, error) {
	if doc == nil || doc.Root == nil {
		return nil, fmt.Errorf("%s document is empty", side)
	}
	if doc.Root.Name != ProjectElement {
		return nil, fmt.Errorf("%s root <%s>: %w", side, doc.Root.Name, ErrNotProject)
	}
	return doc.Root, nil
}
