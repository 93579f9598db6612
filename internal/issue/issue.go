// SPDX-License-Identifier: EPL-2.0

package issue

import (
	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	ModuleNotFoundId Id = iota + 1
	PermissionDeniedId
	StrategyNotSupportedId
	DependencyCycleId
	MalformedSpecifierId
	InvalidAliasId
	FetchFailedId
	ConfigLoadFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // links into the project docs, when a page exists for the issue
	extLinks []HttpLink  // external links that might be useful for the user
}

func (i *Issue) Id() Id {
	return i.id
}

func (i *Issue) MarkdownMsg() MarkdownMsg {
	return i.mdMsg
}

func (i *Issue) DocLinks() []HttpLink {
	return slices.Clone(i.docLinks)
}

func (i *Issue) ExtLinks() []HttpLink {
	return slices.Clone(i.extLinks)
}

func (i *Issue) Render(stylePath string) (string, error) {
	extraMd := ""
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd += "\n\n"
		extraMd += "## See also: "
		for _, link := range i.docLinks {
			extraMd += "- [" + string(link) + "]"
		}
		for _, link := range i.extLinks {
			extraMd += "- [" + string(link) + "]"
		}
	}
	return render(string(i.mdMsg)+extraMd, stylePath)
}

var (
	render = glamour.Render

	moduleNotFoundIssue = &Issue{
		id: ModuleNotFoundId,
		mdMsg: `
# Module not found!

None of the candidates in your REQUIRE specifier resolved to a
fetchable module.

## Things you can try:
- Check the specifier for typos
- If you gave a preference list, every entry was tried in order; the
  per-candidate failures are listed above
- For registry modules, verify the package name exists:
~~~
REQUIRE "registry:stats"
~~~

- For filesystem modules, verify the file exists relative to the
  requiring script:
~~~
REQUIRE "./lib/stats.js"
~~~

- For npm modules, make sure the package is installed under a
  node_modules directory above your script`,
	}

	permissionDeniedIssue = &Issue{
		id: PermissionDeniedId,
		mdMsg: `
# Module load blocked by security policy!

The specifier matched a block pattern, or an allow list is configured
and the specifier did not match it.

## Policy rules:
- Block patterns always win over allow patterns
- An empty policy allows everything
- A non-empty allow list denies everything it does not match
- Sandboxed hosts additionally require URL loads to match an allow
  pattern explicitly

## Things you can try:
- Add an allow pattern for the module:
~~~cue
policy: allow: ["registry:*", "https://cdn.example.com/**"]
~~~

- Check your block patterns for an overly broad glob (` + "`**`" + ` crosses
  path separators, ` + "`*`" + ` does not)`,
	}

	strategyNotSupportedIssue = &Issue{
		id: StrategyNotSupportedId,
		mdMsg: `
# Load strategy not available on this host!

The specifier's resolution strategy is not legal in the current host
environment.

## Strategy availability:
- **native** hosts: all strategies
- **sandboxed** hosts (browser/wasm): registry, plus allowlisted URLs
- **controlbus** hosts: registry only, through the host bridge

## Things you can try:
- Use a registry specifier instead of a filesystem path:
~~~
REQUIRE "registry:stats"
~~~

- Give a preference list so sandboxed hosts fall back gracefully:
~~~
REQUIRE "cwd:stats.js, registry:stats"
~~~`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Circular module dependency detected!

The module's declared dependencies loop back on themselves, so there is
no order in which they can load.

## Example of a cycle:
~~~
a.js  declares  dependencies: ["./b.js"]
b.js  declares  dependencies: ["./a.js"]   // a -> b -> a
~~~

## Things you can try:
- The full chain is printed above; break any one edge
- Move the shared definitions into a third module both sides require`,
	}

	malformedSpecifierIssue = &Issue{
		id: MalformedSpecifierId,
		mdMsg: `
# Malformed module specifier!

The REQUIRE argument could not be parsed.

## Valid specifier shapes:
~~~
REQUIRE "stats"                          // registry shorthand
REQUIRE "registry:stats"
REQUIRE "cwd:lib/stats.js"
REQUIRE "root:lib/stats.js"
REQUIRE "npm:leftpad"
REQUIRE "github.com/acme/plot@v2.1.0"
REQUIRE "./relative.js"
REQUIRE "/absolute/path.js"
REQUIRE "https://cdn.example.com/mod.js"
~~~

## Rename clauses:
~~~
REQUIRE "math" AS "m"          // prefix: m_SQRT, m_LOG, ...
REQUIRE "gfx" AS "gfx_(.*)"    // template with exactly one capture
~~~`,
	}

	invalidAliasIssue = &Issue{
		id: InvalidAliasId,
		mdMsg: `
# Invalid alias for a command target!

Capture-template aliases rename each export by substituting its
original name, so the final name depends on module data. A command
target registers exactly one name, and that name must be known before
the module loads.

## Things you can try:
- Use a plain literal alias instead:
~~~
REQUIRE "plotter" AS "DRAW"
~~~

- Or load it without a rename clause to use the module's declared name`,
	}

	fetchFailedIssue = &Issue{
		id: FetchFailedId,
		mdMsg: `
# Module fetch failed!

The module resolved to a location but could not be retrieved or
materialized. Nothing from this REQUIRE was registered.

## Common causes:
- Network failure or an HTTP error status from a remote host
- The file disappeared between resolution and fetch
- The module header declares a kind its body does not provide

## Things you can try:
- Retry; transient network failures are the usual culprit
- Check the location printed above is reachable from this machine
- For registry modules, verify the registry base URL configuration`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load loader configuration!

## Configuration file locations:
- Linux: ~/.config/modload/config.cue
- macOS: ~/Library/Application Support/modload/config.cue
- Windows: %APPDATA%\modload\config.cue

## Things you can try:
- Check the configuration syntax against the error above
- Remove the config file to fall back to defaults
- Environment overrides use the MODLOAD_ prefix (e.g. MODLOAD_HOST)

## Example configuration:
~~~cue
registry: {
  base_url: "https://registry.oriolang.dev/modules"
}

policy: {
  allow: ["registry:*"]
  block: ["**/internal/**"]
}
~~~`,
	}

	issues = map[Id]*Issue{
		moduleNotFoundIssue.Id():       moduleNotFoundIssue,
		permissionDeniedIssue.Id():     permissionDeniedIssue,
		strategyNotSupportedIssue.Id(): strategyNotSupportedIssue,
		dependencyCycleIssue.Id():      dependencyCycleIssue,
		malformedSpecifierIssue.Id():   malformedSpecifierIssue,
		invalidAliasIssue.Id():         invalidAliasIssue,
		fetchFailedIssue.Id():          fetchFailedIssue,
		configLoadFailedIssue.Id():     configLoadFailedIssue,
	}
)

func Values() []*Issue {
	return maps.Values(issues)
}

func Get(id Id) *Issue {
	return issues[id]
}
