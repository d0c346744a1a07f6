package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	J "cuelang.org/go/encoding/json"
	"cuelang.org/go/encoding/yaml"
	Y "gopkg.in/yaml.v3"
)

//go:embed schema.cue
var schemaFile string

//go:embed default.yaml
var DEFAULT []byte

var ErrUnsupportedFormat = errors.New("not in a valid format (expected .yaml, .yml or .json)")

func build(ctx *cue.Context, path string, data []byte) (cue.Value, error) {
	switch filepath.Ext(path) {
	case ".json":
		expr, err := J.Extract(path, data)
		if err != nil {
			return cue.Value{}, err
		}
		value := ctx.BuildExpr(expr)
		return value, value.Err()
	case ".yaml", ".yml":
		file, err := yaml.Extract(path, data)
		if err != nil {
			return cue.Value{}, err
		}
		value := ctx.BuildFile(file)
		return value, value.Err()
	}

	return cue.Value{}, ErrUnsupportedFormat
}

func readFile(ctx *cue.Context, path string) (cue.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, err
	}
	return build(ctx, path, data)
}

// Process reads the provided configuration files in order, compiles them,
// and unifies them with the configuration file schema. If no configuration
// files are provided, the default configuration is used.
func Process(configPaths []string) (*Config, error) {
	ctx := cuecontext.New()

	schema := ctx.CompileString(schemaFile)
	if err := schema.Err(); err != nil {
		return nil, err
	}

	if len(configPaths) == 0 {
		value, err := build(ctx, "default.yaml", DEFAULT)
		if err != nil {
			return nil, fmt.Errorf("invalid default config file: %w", err)
		}

		schema = schema.Unify(value)
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("invalid default config file: %w", err)
		}
	}

	for _, path := range configPaths {
		value, err := readFile(ctx, path)
		if err != nil {
			return nil, fmt.Errorf("could not process config file %s: %w", path, err)
		}

		schema = schema.Unify(value)
		if err := schema.Err(); err != nil {
			return nil, fmt.Errorf("could not merge config file %s: %w", path, err)
		}

		if err := schema.Validate(); err != nil {
			return nil, fmt.Errorf("config file %s is not valid: %w", path, err)
		}
	}

	if err := schema.Validate(); err != nil {
		return nil, err
	}

	data, err := schema.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("could not aggregate config: %w", err)
	}

	config := Config{}
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks what the schema cannot express.
func (c *Config) Validate() error {
	seen := make(map[string]struct{})
	for _, info := range c.Server.Maps {
		if _, ok := seen[info.Name]; ok {
			return fmt.Errorf("map %s is listed more than once", info.Name)
		}
		seen[info.Name] = struct{}{}
	}
	return nil
}

// YAML renders a processed configuration in the same format it is read in.
func (c *Config) YAML() ([]byte, error) {
	return Y.Marshal(c)
}
