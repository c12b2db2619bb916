// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"maps"
	"slices"
	"strings"

	"github.com/charmbracelet/glamour"
)

const (
	FileNotFoundId Id = iota + 1
	ConfigLoadFailedId
	ContainerEngineNotFoundId
	ImagePullFailedId
	DefinitionNotFoundId
	GeneratorTypeUnknownId
	GenerationFailedId
	DescriptorParseFailedId
	DescriptorMergeFailedId
	PermissionDeniedId
)

const generatorDocs HttpLink = "https://openapi-generator.tech/docs/generators"

type (
	// Id identifies a catalog entry.
	Id int

	// MarkdownMsg is the Markdown body of an issue.
	MarkdownMsg string

	// HttpLink is a documentation URL.
	HttpLink string

	// Issue is a catalog entry explaining a failure and how to recover.
	Issue struct {
		id       Id
		mdMsg    MarkdownMsg
		docLinks []HttpLink
		extLinks []HttpLink
	}
)

var (
	render = glamour.Render

	fileNotFoundIssue = &Issue{
		id: FileNotFoundId,
		mdMsg: `
# File not found!

A file or directory given on the command line does not exist.

## Things you can try:
- Check the path for typos
- Use an absolute path, or run oagen from the project root`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file exists but could not be read or does not match the schema.

## Things you can try:
- Print the effective configuration:
~~~
$ oagen config show
~~~
- Regenerate a default file and compare:
~~~
$ oagen config dump
~~~
- Valid values: container_engine is "podman" or "docker", generator.pull is
  "missing", "always" or "never", merge.write_mode is "sync" or "async"`,
	}

	containerEngineNotFoundIssue = &Issue{
		id: ContainerEngineNotFoundId,
		mdMsg: `
# No container engine available!

The OpenAPI generator runs in a container, but neither Podman nor Docker could be reached.

## Things you can try:
- Install Podman or Docker and make sure it is on your PATH
- Start the Docker daemon, or check ` + "`podman info`" + `
- Select the engine explicitly:
~~~cue
container_engine: "docker"
~~~`,
		extLinks: []HttpLink{"https://podman.io/docs/installation", "https://docs.docker.com/get-docker/"},
	}

	imagePullFailedIssue = &Issue{
		id: ImagePullFailedId,
		mdMsg: `
# Could not pull the generator image!

The image is not present locally and pulling it failed or was not allowed.

## Things you can try:
- Check your network connection and registry access
- Pull it manually:
~~~
$ docker pull openapitools/openapi-generator-cli:v4.2.2
~~~
- Allow pulls in your configuration:
~~~cue
generator: pull: "missing"
~~~`,
	}

	definitionNotFoundIssue = &Issue{
		id: DefinitionNotFoundId,
		mdMsg: `
# No OpenAPI definition found!

oagen looks for *.yaml, *.yml and *.json files in the project, skipping hidden
folders and well-known non-API files such as package.json or Chart.yaml.

## Things you can try:
- Pass the definition explicitly with --definition
- List the candidates oagen sees:
~~~
$ oagen generate html --project . --list
~~~`,
	}

	generatorTypeUnknownIssue = &Issue{
		id: GeneratorTypeUnknownId,
		mdMsg: `
# Generator type not available!

The requested generator does not exist for this language, or several generators
fit and none was chosen.

## Things you can try:
- List the generator types per language:
~~~
$ oagen catalog server
~~~
- Pass one of them with --generator`,
		docLinks: []HttpLink{generatorDocs},
	}

	generationFailedIssue = &Issue{
		id: GenerationFailedId,
		mdMsg: `
# Code generation failed!

The generator container exited with an error. Its output is shown above.

## Things you can try:
- Validate the definition:
~~~
$ docker run --rm -v "$PWD:/gen" openapitools/openapi-generator-cli:v4.2.2 validate -i /gen/openapi.yaml
~~~
- Re-run with --verbose to see every generator line
- A previous pom.xml, if any, is kept as pom-backup.xml in the output folder`,
		docLinks: []HttpLink{generatorDocs},
	}

	descriptorParseFailedIssue = &Issue{
		id: DescriptorParseFailedId,
		mdMsg: `
# Build descriptor is not valid XML!

The previous pom.xml could not be parsed, so nothing was merged. The generated
descriptor was put back as pom.xml and your original is untouched under its
backup name.

## Things you can try:
- Fix the XML error at the reported line in the backup file
- Merge again once it parses:
~~~
$ oagen pom merge ./server --original pom-backup.xml
~~~`,
	}

	descriptorMergeFailedIssue = &Issue{
		id: DescriptorMergeFailedId,
		mdMsg: `
# Build descriptors could not be merged!

Only descriptors whose root element is <project> can be merged.

## Things you can try:
- Check the root element of both files
- Inspect the parsed tree:
~~~
$ oagen pom show ./server/pom-backup.xml
~~~`,
		extLinks: []HttpLink{"https://maven.apache.org/pom.html"},
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Permission denied!

A file could not be read, renamed or written.

## Things you can try:
- Check the permissions of the output folder
- Files written by a rootful Docker daemon may belong to root; run
  oagen as your user (the default) or fix ownership with chown`,
	}

	issues = map[Id]*Issue{
		fileNotFoundIssue.Id():            fileNotFoundIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		containerEngineNotFoundIssue.Id(): containerEngineNotFoundIssue,
		imagePullFailedIssue.Id():         imagePullFailedIssue,
		definitionNotFoundIssue.Id():      definitionNotFoundIssue,
		generatorTypeUnknownIssue.Id():    generatorTypeUnknownIssue,
		generationFailedIssue.Id():        generationFailedIssue,
		descriptorParseFailedIssue.Id():   descriptorParseFailedIssue,
		descriptorMergeFailedIssue.Id():   descriptorMergeFailedIssue,
		permissionDeniedIssue.Id():        permissionDeniedIssue,
	}
)

func (i *Issue) Id() Id { return i.id }

func (i *Issue) MarkdownMsg() MarkdownMsg { return i.mdMsg }

func (i *Issue) DocLinks() []HttpLink { return slices.Clone(i.docLinks) }

func (i *Issue) ExtLinks() []HttpLink { return slices.Clone(i.extLinks) }

// Render renders the issue with a glamour style ("auto", "dark", "light", or
// a path to a JSON style file).
func (i *Issue) Render(stylePath string) (string, error) {
	var md strings.Builder
	md.WriteString(string(i.mdMsg))
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		md.WriteString("\n\n## See also:\n")
		for _, link := range slices.Concat(i.docLinks, i.extLinks) {
			md.WriteString("- <" + string(link) + ">\n")
		}
	}
	return render(md.String(), stylePath)
}

// Values returns all catalog entries ordered by Id.
func Values() []*Issue {
	return slices.SortedFunc(maps.Values(issues), func(a, b *Issue) int {
		return int(a.id - b.id)
	})
}

// Get returns the entry for id, or nil.
func Get(id Id) *Issue {
	return issues[id]
}
