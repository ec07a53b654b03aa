// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"context"
	"os/exec"
	"runtime"

	"github.com/anvil-pipeline/anvil/pkg/platform"
)

// PromptPrefix marks the prompt of shells started by Shell.
const PromptPrefix = "[anvil] "

// defaultPrompt is used when neither the ambient nor the composed environment sets PS1.
const defaultPrompt = PromptPrefix + `\u@\h:\w\$ `

// DetectShell returns the user's shell: $SHELL when set, otherwise pwsh or cmd
// on Windows and bash elsewhere.
func DetectShell(getenv func(string) string) string {
	if shell := getenv("SHELL"); shell != "" {
		return shell
	}
	if runtime.GOOS == platform.Windows {
		if _, err := exec.LookPath("pwsh"); err == nil {
			return "pwsh"
		}
		return "cmd"
	}
	return "bash"
}

// Shell starts an interactive shell inside the environment and waits for it
// to exit. PS1 is prefixed with PromptPrefix so the session is recognizable.
func Shell(ctx context.Context, shell string, opts Options) error {
	prompt := defaultPrompt
	if ps1, ok := promptOf(opts); ok {
		prompt = PromptPrefix + ps1
	}
	extra := opts.Extra.Clone()
	extra.Set("PS1", prompt)
	opts.Extra = extra

	cmd, err := command(ctx, []string{shell}, opts)
	if err != nil {
		return err
	}
	return wait(cmd, shell)
}

func promptOf(opts Options) (string, bool) {
	if v, ok := opts.Extra.Get("PS1"); ok {
		return v, true
	}
	if opts.Composition != nil {
		if v, ok := opts.Composition.Env.Get("PS1"); ok {
			return v, true
		}
	}
	v, ok := opts.Ambient["PS1"]
	return v, ok
}
