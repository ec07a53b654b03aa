// SPDX-License-Identifier: MPL-2.0

package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/anvil-pipeline/anvil/pkg/envmap"
	"github.com/anvil-pipeline/anvil/pkg/pkgdef"
	"github.com/anvil-pipeline/anvil/pkg/platform"
	"github.com/anvil-pipeline/anvil/pkg/version"
)

// FileName is the definition file expected in every version directory.
const FileName = "package.yaml"

// ErrInvalidDefinition is wrapped by every error Parse returns for well-formed
// YAML with invalid content.
var ErrInvalidDefinition = errors.New("invalid package definition")

type (
	fileDef struct {
		Name        string        `yaml:"name"`
		Version     string        `yaml:"version"`
		Description string        `yaml:"description"`
		Requires    []string      `yaml:"requires"`
		Variants    []fileVariant `yaml:"variants"`
		Environment *envmap.Map   `yaml:"environment"`
		Commands    *envmap.Map   `yaml:"commands"`
	}

	fileVariant struct {
		// Platform defaults to the wildcard when omitted.
		Platform    string      `yaml:"platform"`
		Requires    *[]string   `yaml:"requires"`
		Environment *envmap.Map `yaml:"environment"`
	}
)

// LoadDir loads dir/package.yaml with dir as the package root.
func LoadDir(dir string) (*pkgdef.PackageDef, error) {
	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read package file: %w", err)
	}
	def, err := Parse(data, dir)
	if err != nil {
		return nil, err
	}
	def.Source = path
	return def, nil
}

// Parse decodes a package definition. Request strings are parsed here, so a
// returned definition never carries raw spec text.
func Parse(data []byte, root string) (*pkgdef.PackageDef, error) {
	var fd fileDef
	if err := yaml.Unmarshal(data, &fd); err != nil {
		return nil, fmt.Errorf("failed to parse package file: %w", err)
	}

	if strings.TrimSpace(fd.Name) == "" {
		return nil, fmt.Errorf("%w: name is required", ErrInvalidDefinition)
	}
	if fd.Version == "" {
		return nil, fmt.Errorf("%w: version is required", ErrInvalidDefinition)
	}
	v, err := version.ParseVersion(fd.Version)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDefinition, err)
	}
	requires, err := parseRequires(fd.Requires)
	if err != nil {
		return nil, err
	}

	def := &pkgdef.PackageDef{
		Name:        fd.Name,
		Version:     v,
		Description: fd.Description,
		Requires:    requires,
		Environment: orEmpty(fd.Environment),
		Commands:    orEmpty(fd.Commands),
		Root:        root,
	}

	for i, fv := range fd.Variants {
		variant := pkgdef.Variant{Platform: platform.PlatformAny, Environment: orEmpty(fv.Environment)}
		if fv.Platform != "" {
			p, err := platform.Parse(fv.Platform)
			if err != nil {
				return nil, fmt.Errorf("%w: variant %d: %w", ErrInvalidDefinition, i+1, err)
			}
			variant.Platform = p
		}
		if fv.Requires != nil {
			variant.HasRequires = true
			variant.Requires, err = parseRequires(*fv.Requires)
			if err != nil {
				return nil, fmt.Errorf("variant %d: %w", i+1, err)
			}
		}
		def.Variants = append(def.Variants, variant)
	}
	return def, nil
}

func parseRequires(texts []string) ([]version.Spec, error) {
	specs := make([]version.Spec, 0, len(texts))
	for _, text := range texts {
		s, err := version.ParseSpec(text)
		if err != nil {
			return nil, fmt.Errorf("%w: requires: %w", ErrInvalidDefinition, err)
		}
		specs = append(specs, s)
	}
	return specs, nil
}

func orEmpty(m *envmap.Map) *envmap.Map {
	if m == nil {
		return envmap.New()
	}
	return m
}
