package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/shipwise/intake/internal/model/interview"
)

// LoadDefinition reads an interview definition from a YAML file. An empty
// path returns the built-in shipping-intake definition.
func LoadDefinition(path string) (interview.Definition, error) {
	if path == "" {
		return interview.Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return interview.Definition{}, fmt.Errorf("reading interview definition: %w", err)
	}

	var def interview.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return interview.Definition{}, fmt.Errorf("parsing interview definition %s: %w", path, err)
	}

	if def.ClosingMessage == "" {
		def.ClosingMessage = interview.Default().ClosingMessage
	}

	if err := def.Validate(); err != nil {
		return interview.Definition{}, err
	}
	return def, nil
}
