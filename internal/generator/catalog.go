// SPDX-License-Identifier: MPL-2.0

package generator

import (
	"fmt"
	"slices"
	"strings"
)

const (
	// KindClient generates an API client.
	KindClient Kind = "client"
	// KindServer generates a server stub.
	KindServer Kind = "server"
	// KindHTML generates HTML documentation.
	KindHTML Kind = "html"

	// DefaultDocGenerator is the documentation generator used by KindHTML when
	// none is requested.
	DefaultDocGenerator = "html2"
)

type (
	// Kind selects which family of generators a request draws from.
	Kind string

	// Language describes one target language of the catalog.
	Language struct {
		// Name is the display name (e.g. "Node.js").
		Name string
		// Aliases are alternative spellings accepted on lookup, such as the
		// identifiers project metadata uses ("nodejs").
		Aliases []string
		// SourceFolder is the folder, relative to the project, that generated
		// sources are written to by default.
		SourceFolder string
		Client       []string
		Server       []string
	}
)

var docGenerators = []string{"cwiki", "dynamic-html", "html", "html2", "openapi", "openapi-yaml"}

var languages = []Language{
	{Name: "Go", SourceFolder: ".", Client: []string{"go"}, Server: []string{"go-gin-server", "go-server"}},
	{
		Name: "Java", SourceFolder: "src",
		Client: []string{"java", "jaxrs-cxf-client"},
		Server: []string{
			"jaxrs-spec", "java-inflector", "java-msf4j", "java-pkmst", "java-play-framework",
			"java-undertow-server", "java-vertx", "jaxrs-cxf", "jaxrs-cxf-cdi", "jaxrs-jersey",
			"jaxrs-resteasy", "jaxrs-resteasy-eap", "spring",
		},
	},
	{
		Name: "Node.js", Aliases: []string{"nodejs", "node"}, SourceFolder: ".",
		Client: []string{
			"javascript", "javascript-closure-angular", "javascript-flowtyped", "typescript-angular",
			"typescript-angularjs", "typescript-aurelia", "typescript-axios", "typescript-fetch",
			"typescript-inversify", "typescript-jquery", "typescript-node",
		},
		Server: []string{"nodejs-express-server", "nodejs-server-deprecated"},
	},
	{Name: "Python", SourceFolder: ".", Client: []string{"python"}, Server: []string{"python-flask"}},
	{Name: "Swift", SourceFolder: "Sources", Client: []string{"swift3", "swift4", "swift2-deprecated"}},
	{Name: "Ada", Client: []string{"ada"}, Server: []string{"ada-server"}},
	{Name: "Apex", Client: []string{"apex"}},
	{Name: "Bash", Client: []string{"bash"}},
	{Name: "C", Client: []string{"c"}},
	{
		Name: "C#", Aliases: []string{"csharp"},
		Client: []string{"csharp", "csharp-dotnet2", "csharp-refactor"},
		Server: []string{"csharp-nancyfx"},
	},
	{
		Name: "C++", Aliases: []string{"cpp"},
		Client: []string{"cpp-qt5", "cpp-restsdk", "cpp-tizen"},
		Server: []string{"cpp-pistache-server", "cpp-qt5-qhttpengine-server", "cpp-restbed-server"},
	},
	{Name: "Dart", Client: []string{"dart", "dart-jaguar"}},
	{Name: "Eiffel", Client: []string{"eiffel"}},
	{Name: "Elixir", Client: []string{"elixir"}},
	{Name: "Elm", Client: []string{"elm"}},
	{Name: "Erlang", Client: []string{"erlang-client", "erlang-proper"}, Server: []string{"erlang-server"}},
	{Name: "Haskell", Client: []string{"haskell-http-client"}, Server: []string{"haskell"}},
	{Name: "Kotlin", Client: []string{"kotlin"}, Server: []string{"kotlin-server", "kotlin-spring"}},
	{Name: "Lua", Client: []string{"lua"}},
	{Name: "Objective-C", Aliases: []string{"objc"}, Client: []string{"objc"}},
	{Name: "Perl", Client: []string{"perl"}},
	{
		Name: "PHP", Client: []string{"php"},
		Server: []string{"php-laravel", "php-lumen", "php-silex", "php-slim", "php-symfony", "php-ze-ph"},
	},
	{Name: "PowerShell", Client: []string{"powershell"}},
	{Name: "R", Client: []string{"r"}},
	{Name: "Ruby", Client: []string{"ruby"}, Server: []string{"ruby-on-rails", "ruby-sinatra"}},
	{Name: "Rust", Client: []string{"rust"}, Server: []string{"rust-server"}},
	{
		Name: "Scala", Client: []string{"scala-akka", "scala-gatling", "scala-httpclient", "scalaz"},
		Server: []string{"scala-finch", "scala-lagom-server", "scalatra"},
	},
	{
		Name: "TypeScript",
		Client: []string{
			"typescript-angular", "typescript-angularjs", "typescript-aurelia", "typescript-axios",
			"typescript-fetch", "typescript-inversify", "typescript-jquery", "typescript-node",
		},
	},
}

// ParseKind converts a command-line value into a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case KindClient, KindServer, KindHTML:
		return k, nil
	default:
		return "", fmt.Errorf("unknown generator kind %q (expected client, server or html)", s)
	}
}

// Languages returns every language of the catalog in display order.
func Languages() []Language {
	return slices.Clone(languages)
}

// LookupLanguage finds a language by display name or alias, ignoring case.
func LookupLanguage(name string) (Language, bool) {
	name = strings.TrimSpace(name)
	for _, l := range languages {
		if strings.EqualFold(l.Name, name) {
			return l, true
		}
		for _, a := range l.Aliases {
			if strings.EqualFold(a, name) {
				return l, true
			}
		}
	}
	return Language{}, false
}

// Types returns the generator types of the language for the given kind.
// KindHTML ignores the language and returns the documentation generators.
func (l Language) Types(kind Kind) []string {
	switch kind {
	case KindClient:
		return slices.Clone(l.Client)
	case KindServer:
		return slices.Clone(l.Server)
	case KindHTML:
		return DocGenerators()
	default:
		return nil
	}
}

// IsJava reports whether generation for the language produces a Maven
// build descriptor.
func (l Language) IsJava() bool {
	return l.Name == "Java"
}

// DocGenerators returns the documentation generator types.
func DocGenerators() []string {
	return slices.Clone(docGenerators)
}

// PreferredSourceFolder returns the default output folder, relative to the
// project root, for generated sources of the named language. Unknown
// languages use the project root.
func PreferredSourceFolder(language string) string {
	if l, ok := LookupLanguage(language); ok && l.SourceFolder != "" {
		return l.SourceFolder
	}
	return "."
}

// SelectGeneratorType resolves the generator type for a request.
//
// For KindHTML the requested type defaults to DefaultDocGenerator. For client
// and server generation the language must be known and offer at least one
// type; a requested type must belong to that set, and when nothing is
// requested the only candidate is chosen automatically.
func SelectGeneratorType(kind Kind, language, requested string) (string, error) {
	if kind == KindHTML {
		if requested == "" {
			return DefaultDocGenerator, nil
		}
		if !slices.Contains(docGenerators, requested) {
			return "", &UnknownGeneratorTypeError{Kind: kind, Type: requested, Candidates: DocGenerators()}
		}
		return requested, nil
	}

	l, ok := LookupLanguage(language)
	if !ok {
		return "", &UnknownLanguageError{Language: language}
	}
	types := l.Types(kind)
	if len(types) == 0 {
		return "", &NoGeneratorTypeError{Kind: kind, Language: l.Name}
	}
	if requested != "" {
		if !slices.Contains(types, requested) {
			return "", &UnknownGeneratorTypeError{Kind: kind, Type: requested, Candidates: types}
		}
		return requested, nil
	}
	if len(types) == 1 {
		return types[0], nil
	}
	return "", &AmbiguousGeneratorError{Kind: kind, Language: l.Name, Candidates: types}
}
