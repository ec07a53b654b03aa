// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"os/exec"
	"slices"
	"strings"

	"mvdan.cc/sh/v3/expand"
	"mvdan.cc/sh/v3/interp"
	"mvdan.cc/sh/v3/syntax"

	"github.com/anvil-pipeline/anvil/internal/compose"
	"github.com/anvil-pipeline/anvil/pkg/envmap"
)

var (
	// ErrNoCommand is returned when Run is given an empty argv.
	ErrNoCommand = errors.New("no command specified")
	// ErrInvalidAssignment is returned for an --env value that is not KEY=VALUE.
	ErrInvalidAssignment = errors.New("invalid environment assignment")
)

type (
	// Options describes the environment a process is started in.
	Options struct {
		// Composition is the composed environment and command table.
		Composition *compose.Result
		// Ambient is the enclosing environment; nil means none is inherited.
		Ambient map[string]string
		// Extra overrides both Ambient and the composed environment.
		Extra *envmap.Map
		// Dir is the working directory; empty means the current one.
		Dir string

		Stdin  io.Reader
		Stdout io.Writer
		Stderr io.Writer
	}

	// ExitError reports a process or alias that finished with a non-zero status.
	ExitError struct {
		Command string
		Code    int
	}
)

// Error implements the error interface.
func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Command, e.Code)
}

// ParseAssignments parses KEY=VALUE pairs in order. Later keys override earlier ones.
func ParseAssignments(pairs []string) (*envmap.Map, error) {
	m := envmap.New()
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(key) == "" {
			return nil, fmt.Errorf("%w: %q (want KEY=VALUE)", ErrInvalidAssignment, pair)
		}
		m.Set(key, value)
	}
	return m, nil
}

// Environ returns the full process environment as KEY=value pairs: ambient
// variables, overlaid by the composed environment, overlaid by Extra.
func (o Options) Environ() []string {
	merged := envmap.New()
	for _, k := range slices.Sorted(maps.Keys(o.Ambient)) {
		merged.Set(k, o.Ambient[k])
	}
	if o.Composition != nil {
		merged.Overlay(o.Composition.Env)
	}
	merged.Overlay(o.Extra)

	out := make([]string, 0, merged.Len())
	for k, v := range merged.All() {
		out = append(out, k+"="+v)
	}
	return out
}

// Run starts argv inside the environment. When argv[0] is a command alias of
// the composition, its template runs in the embedded shell interpreter with the
// remaining arguments as positional parameters. Otherwise argv[0] is looked up
// on the composed PATH and executed directly.
func Run(ctx context.Context, argv []string, opts Options) error {
	if len(argv) == 0 {
		return ErrNoCommand
	}
	if opts.Composition != nil {
		if tmpl, _, ok := opts.Composition.Command(argv[0]); ok {
			return runAlias(ctx, argv[0], tmpl, argv[1:], opts)
		}
	}
	return runNative(ctx, argv, opts)
}

func runAlias(ctx context.Context, alias, tmpl string, args []string, opts Options) error {
	prog, err := syntax.NewParser().Parse(strings.NewReader(tmpl), alias)
	if err != nil {
		return fmt.Errorf("failed to parse command %q: %w", alias, err)
	}

	runnerOpts := []interp.RunnerOption{
		interp.Env(expand.ListEnviron(opts.Environ()...)),
		interp.StdIO(opts.Stdin, opts.Stdout, opts.Stderr),
	}
	if opts.Dir != "" {
		runnerOpts = append(runnerOpts, interp.Dir(opts.Dir))
	}
	// "--" ends option parsing so args like "-v" reach the script as $1.
	if len(args) > 0 {
		runnerOpts = append(runnerOpts, interp.Params(append([]string{"--"}, args...)...))
	}

	runner, err := interp.New(runnerOpts...)
	if err != nil {
		return fmt.Errorf("failed to create interpreter: %w", err)
	}

	if err := runner.Run(ctx, prog); err != nil {
		var exitStatus interp.ExitStatus
		if errors.As(err, &exitStatus) {
			return &ExitError{Command: alias, Code: int(exitStatus)}
		}
		return fmt.Errorf("command %q failed: %w", alias, err)
	}
	return nil
}

func runNative(ctx context.Context, argv []string, opts Options) error {
	cmd, err := command(ctx, argv, opts)
	if err != nil {
		return err
	}
	return wait(cmd, argv[0])
}

// command builds an exec.Cmd for argv, resolving argv[0] against the PATH of
// the target environment rather than the current process.
func command(ctx context.Context, argv []string, opts Options) (*exec.Cmd, error) {
	environ := opts.Environ()
	dir := opts.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	path, err := interp.LookPathDir(dir, expand.ListEnviron(environ...), argv[0])
	if err != nil {
		return nil, fmt.Errorf("command %q not found: %w", argv[0], err)
	}

	cmd := exec.CommandContext(ctx, path, argv[1:]...)
	cmd.Args[0] = argv[0]
	cmd.Env = environ
	cmd.Dir = opts.Dir
	cmd.Stdin = opts.Stdin
	cmd.Stdout = opts.Stdout
	cmd.Stderr = opts.Stderr
	return cmd, nil
}

func wait(cmd *exec.Cmd, name string) error {
	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return &ExitError{Command: name, Code: exitErr.ExitCode()}
		}
		return fmt.Errorf("failed to run %q: %w", name, err)
	}
	return nil
}
