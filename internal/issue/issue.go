// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"cmp"
	"strings"

	"github.com/charmbracelet/glamour"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

type Id int

const (
	PackageNotFoundId Id = iota + 1
	VersionConflictId
	DependencyCycleId
	UnsatisfiableConstraintId
	InvalidRequestId
	PackageLoadFailedId
	ConfigLoadFailedId
	LockFileInvalidId
	ShellNotFoundId
	CommandFailedId
)

type MarkdownMsg string

type HttpLink string

type Renderer interface {
	Render(in string, stylePath string) (string, error)
}

type Issue struct {
	id       Id          // ID used to lookup the issue
	mdMsg    MarkdownMsg // Markdown text that will be rendered
	docLinks []HttpLink  // documentation pages for this issue type
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
	var extraMd strings.Builder
	if len(i.docLinks) > 0 || len(i.extLinks) > 0 {
		extraMd.WriteString("\n\n## See also\n")
		for _, link := range i.docLinks {
			extraMd.WriteString("\n- <" + string(link) + ">")
		}
		for _, link := range i.extLinks {
			extraMd.WriteString("\n- <" + string(link) + ">")
		}
	}
	return render(string(i.mdMsg)+extraMd.String(), stylePath)
}

var (
	render = glamour.Render

	packageNotFoundIssue = &Issue{
		id: PackageNotFoundId,
		mdMsg: `
# Package not found!

No package with this name exists in any package search path.

## Search locations (in order of precedence):
1. Paths given with ` + "`--packages`" + `
2. Paths listed in ` + "`$ANVIL_PACKAGES`" + `
3. ` + "`package_paths`" + ` in your config file (or the built-in defaults)
4. The ` + "`platform`" + ` override for the current platform

Each package lives at ` + "`<search path>/<name>/<version>/package.yaml`" + `.

## Things you can try:
- List what anvil can see:
~~~
$ anvil list
~~~

- Check which search paths are active:
~~~
$ anvil config show
~~~

- Run with ` + "`--verbose`" + ` to see package files that were skipped while loading`,
	}

	versionConflictIssue = &Issue{
		id: VersionConflictId,
		mdMsg: `
# Version conflict!

Two requirements on the same package cannot be satisfied by a single version.
Only one version of each package can be active in an environment.

## Things you can try:
- Look at which requirements collide:
~~~
$ anvil resolve <packages...> --verbose
~~~

- Relax one of the constraints, for example ` + "`python-3.10|3.11`" + ` instead of ` + "`python-3.10`" + `
- Request the shared dependency explicitly with a version that works for both
- Check whether a platform variant narrows the dependency on this platform`,
	}

	dependencyCycleIssue = &Issue{
		id: DependencyCycleId,
		mdMsg: `
# Dependency cycle detected!

A package depends on itself, directly or through other packages.
The cycle is shown in the error message as ` + "`a -> b -> a`" + `.

## Things you can try:
- Review the ` + "`requires`" + ` lists of the packages in the cycle
- Check platform variants, which can replace the base ` + "`requires`" + ` list
- Move the shared pieces into a separate package that both can require`,
	}

	unsatisfiableConstraintIssue = &Issue{
		id: UnsatisfiableConstraintId,
		mdMsg: `
# No matching version!

The package exists, but none of its versions satisfies the requested constraint.

## Things you can try:
- See which versions are installed:
~~~
$ anvil list <name>
~~~

- Widen the constraint, for example ` + "`maya-2024+`" + ` instead of ` + "`maya-2024`" + `
- Install the missing version into one of the package search paths`,
	}

	invalidRequestIssue = &Issue{
		id: InvalidRequestId,
		mdMsg: `
# Invalid package request!

Requests have the form ` + "`name`" + ` or ` + "`name-constraint`" + `.

## Supported constraints:
~~~
maya              any version
maya-2024         exactly 2024
maya-2024+        2024 or newer
maya-2024..2025   between 2024 and 2025, inclusive
python-3.10|3.11  either 3.10 or 3.11
~~~

A dash that belongs to the package name is escaped: ` + "`studio\\-tools-2+`" + `.`,
	}

	packageLoadFailedIssue = &Issue{
		id: PackageLoadFailedId,
		mdMsg: `
# Package file could not be loaded!

A ` + "`package.yaml`" + ` was skipped because it could not be parsed or validated.
Other packages are still available.

## Things you can try:
- Check that ` + "`name`" + ` and ` + "`version`" + ` match the directory layout ` + "`<name>/<version>/package.yaml`" + `
- Check that every ` + "`requires`" + ` entry is a valid request
- Validate every package:
~~~
$ anvil validate
~~~`,
	}

	configLoadFailedIssue = &Issue{
		id: ConfigLoadFailedId,
		mdMsg: `
# Failed to load configuration!

The configuration file could not be read or does not match the schema.

## Things you can try:
- Show where anvil looks for its configuration:
~~~
$ anvil config path
~~~

- Write a fresh default configuration:
~~~
$ anvil config init
~~~

## Example config.cue:
~~~cue
package_paths: ["~/packages", "/opt/packages"]
aliases: {
	lookdev: ["maya-2024+", "arnold-7.2"]
}
ui: color_scheme: "auto"
~~~`,
	}

	lockFileInvalidIssue = &Issue{
		id: LockFileInvalidId,
		mdMsg: `
# Lock file could not be used!

The lock file is missing, malformed, or was written for a different platform.

## Things you can try:
- Regenerate it:
~~~
$ anvil lock <packages...> -o anvil.lock
~~~

- Run without ` + "`--lock`" + ` to resolve from the package catalog`,
	}

	shellNotFoundIssue = &Issue{
		id: ShellNotFoundId,
		mdMsg: `
# Shell not found!

The shell for ` + "`anvil shell`" + ` could not be started.

## Things you can try:
- Pass a shell explicitly: ` + "`anvil shell maya --shell bash`" + `
- Set ` + "`default_shell`" + ` in your config file
- Check that ` + "`$SHELL`" + ` points to an installed shell`,
	}

	commandFailedIssue = &Issue{
		id: CommandFailedId,
		mdMsg: `
# Command failed!

The command started inside the package environment exited with an error.

## Things you can try:
- Print the environment the command received:
~~~
$ anvil env <packages...>
~~~

- Check the command aliases defined by the packages:
~~~
$ anvil info <package>
~~~`,
	}

	issues = map[Id]*Issue{
		packageNotFoundIssue.Id():         packageNotFoundIssue,
		versionConflictIssue.Id():         versionConflictIssue,
		dependencyCycleIssue.Id():         dependencyCycleIssue,
		unsatisfiableConstraintIssue.Id(): unsatisfiableConstraintIssue,
		invalidRequestIssue.Id():          invalidRequestIssue,
		packageLoadFailedIssue.Id():       packageLoadFailedIssue,
		configLoadFailedIssue.Id():        configLoadFailedIssue,
		lockFileInvalidIssue.Id():         lockFileInvalidIssue,
		shellNotFoundIssue.Id():           shellNotFoundIssue,
		commandFailedIssue.Id():           commandFailedIssue,
	}
)

// Values returns every known issue ordered by Id.
func Values() []*Issue {
	values := make([]*Issue, 0, len(issues))
	for v := range maps.Values(issues) {
		values = append(values, v)
	}
	slices.SortFunc(values, func(a, b *Issue) int { return cmp.Compare(a.id, b.id) })
	return values
}

func Get(id Id) *Issue {
	return issues[id]
}
