// SPDX-License-Identifier: MPL-2.0

package launch

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/anvil-pipeline/anvil/pkg/envmap"
)

const (
	// FormatPlain prints KEY=value lines.
	FormatPlain Format = "plain"
	// FormatExport prints POSIX shell export statements.
	FormatExport Format = "export"
	// FormatJSON prints one JSON object in composition order.
	FormatJSON Format = "json"
	// FormatFish prints fish `set -gx` statements.
	FormatFish Format = "fish"
	// FormatPwsh prints PowerShell `$env:` assignments.
	FormatPwsh Format = "pwsh"
	// FormatCmd prints cmd.exe `set` statements.
	FormatCmd Format = "cmd"
)

// ErrInvalidFormat is the sentinel error wrapped by InvalidFormatError.
var ErrInvalidFormat = errors.New("invalid output format")

type (
	// Format selects how an environment is rendered.
	Format string

	// InvalidFormatError is returned when a Format value is not recognized.
	InvalidFormatError struct {
		Value string
	}
)

// Error implements the error interface.
func (e *InvalidFormatError) Error() string {
	names := make([]string, len(Formats()))
	for i, f := range Formats() {
		names[i] = string(f)
	}
	return fmt.Sprintf("invalid output format %q (valid: %s)", e.Value, strings.Join(names, ", "))
}

// Unwrap returns ErrInvalidFormat so callers can use errors.Is for programmatic detection.
func (e *InvalidFormatError) Unwrap() error { return ErrInvalidFormat }

// Formats returns every supported format.
func Formats() []Format {
	return []Format{FormatPlain, FormatExport, FormatJSON, FormatFish, FormatPwsh, FormatCmd}
}

// ParseFormat parses a format name. "sh", "bash" and "zsh" are accepted as
// aliases for export, "powershell" for pwsh.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "plain", "":
		return FormatPlain, nil
	case "export", "sh", "bash", "zsh":
		return FormatExport, nil
	case "json":
		return FormatJSON, nil
	case "fish":
		return FormatFish, nil
	case "pwsh", "powershell":
		return FormatPwsh, nil
	case "cmd":
		return FormatCmd, nil
	default:
		return "", &InvalidFormatError{Value: s}
	}
}

// FormatForShell picks the script format for a shell binary. Unknown shells get
// POSIX export statements.
func FormatForShell(shellPath string) Format {
	base := strings.ToLower(filepath.Base(shellPath))
	base = strings.TrimSuffix(base, ".exe")
	switch base {
	case "fish":
		return FormatFish
	case "pwsh", "powershell":
		return FormatPwsh
	case "cmd":
		return FormatCmd
	default:
		return FormatExport
	}
}

// Render writes env to w in format f, one variable per line in env order.
func Render(w io.Writer, env *envmap.Map, f Format) error {
	if f == FormatJSON {
		data, err := env.MarshalJSON()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", "  "); err != nil {
			return err
		}
		buf.WriteByte('\n')
		if _, err := buf.WriteTo(w); err != nil {
			return fmt.Errorf("failed to write environment: %w", err)
		}
		return nil
	}

	line, err := lineFormatter(f)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)
	for key, value := range env.All() {
		bw.WriteString(line(key, value))
		bw.WriteByte('\n')
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("failed to write environment: %w", err)
	}
	return nil
}

func lineFormatter(f Format) (func(key, value string) string, error) {
	switch f {
	case FormatPlain:
		return func(k, v string) string { return k + "=" + v }, nil
	case FormatExport:
		return func(k, v string) string { return "export " + k + "=" + doubleQuote(v) }, nil
	case FormatFish:
		return func(k, v string) string { return "set -gx " + k + " " + fishQuote(v) }, nil
	case FormatPwsh:
		return func(k, v string) string { return "$env:" + k + " = '" + strings.ReplaceAll(v, "'", "''") + "'" }, nil
	case FormatCmd:
		return func(k, v string) string { return `set "` + k + "=" + v + `"` }, nil
	default:
		return nil, &InvalidFormatError{Value: string(f)}
	}
}

var doubleQuoteEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, `$`, `\$`, "`", "\\`")

// doubleQuote quotes v for a POSIX double-quoted string, escaping the
// characters that keep their meaning inside one.
func doubleQuote(v string) string {
	return `"` + doubleQuoteEscaper.Replace(v) + `"`
}

var fishEscaper = strings.NewReplacer(`\`, `\\`, `'`, `\'`)

func fishQuote(v string) string {
	return "'" + fishEscaper.Replace(v) + "'"
}
