package config

import (
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/goccy/go-yaml"
	"github.com/kaptinlin/jsonschema"
	"golang.org/x/sys/unix"
)

//go:embed schema.json
var rawSchema []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	return jsonschema.NewCompiler().Compile(rawSchema)
})

type ExcludeConfig struct {
	MacFile *string `yaml:"macFile,omitempty"`
}

type CaptureConfig struct {
	File          *string        `yaml:"file,omitempty"`
	SummaryFile   *string        `yaml:"summaryFile,omitempty"`
	Ui            *bool          `yaml:"ui"`
	ExcludeConfig *ExcludeConfig `yaml:"exclude"`
}

type Config struct {
	LogFileName   *string        `yaml:"log"`
	Style         *string        `yaml:"style"`
	DatasetFile   *string        `yaml:"dataset,omitempty"`
	Resolver      *string        `yaml:"resolver"`
	Json          *bool          `yaml:"json"`
	CaptureConfig *CaptureConfig `yaml:"capture"`
}

// GetConfig reads YAML config data, applies the non-nil fields of overrides
// on top of it, fills in defaults and validates the result.
func GetConfig(data []byte, overrides Config) (Config, error) {
	config, err := readConfig(data)
	if err != nil {
		return Config{}, err
	}
	config.applyOverrides(overrides)
	config.applyDefaults()
	err = config.validate()
	if err != nil {
		return Config{}, err
	}
	return config, nil
}

func readConfig(data []byte) (Config, error) {
	config := &Config{}
	err := yaml.UnmarshalWithOptions(data, config, yaml.Strict())
	if err != nil {
		return Config{}, err
	}
	return *config, nil
}

func (cfg *Config) applyOverrides(overrides Config) {
	if overrides.LogFileName != nil {
		cfg.LogFileName = overrides.LogFileName
	}
	if overrides.Style != nil {
		cfg.Style = overrides.Style
	}
	if overrides.DatasetFile != nil {
		cfg.DatasetFile = overrides.DatasetFile
	}
	if overrides.Resolver != nil {
		cfg.Resolver = overrides.Resolver
	}
	if overrides.Json != nil {
		cfg.Json = overrides.Json
	}
	if overrides.CaptureConfig != nil {
		if cfg.CaptureConfig == nil {
			cfg.CaptureConfig = &CaptureConfig{}
		}
		if overrides.CaptureConfig.File != nil {
			cfg.CaptureConfig.File = overrides.CaptureConfig.File
		}
		if overrides.CaptureConfig.SummaryFile != nil {
			cfg.CaptureConfig.SummaryFile = overrides.CaptureConfig.SummaryFile
		}
		if overrides.CaptureConfig.Ui != nil {
			cfg.CaptureConfig.Ui = overrides.CaptureConfig.Ui
		}
	}
}

func (cfg *Config) applyDefaults() {
	defaultLog := "macsql.log"
	defaultStyle := ""
	defaultResolver := "native"
	no := false

	if cfg.LogFileName == nil {
		cfg.LogFileName = &defaultLog
	}
	if cfg.Style == nil {
		cfg.Style = &defaultStyle
	}
	if cfg.Resolver == nil {
		cfg.Resolver = &defaultResolver
	}
	if cfg.Json == nil {
		cfg.Json = &no
	}
	if cfg.CaptureConfig == nil {
		cfg.CaptureConfig = &CaptureConfig{}
	}
	if cfg.CaptureConfig.Ui == nil {
		cfg.CaptureConfig.Ui = &no
	}
	if cfg.CaptureConfig.ExcludeConfig == nil {
		cfg.CaptureConfig.ExcludeConfig = &ExcludeConfig{}
	}
}

func (cfg *Config) validate() error {
	if errs := validateSchema(cfg); len(errs) > 0 {
		return errors.Join(errs...)
	}

	readableFiles := []*string{
		cfg.DatasetFile,
		cfg.CaptureConfig.File,
		cfg.CaptureConfig.ExcludeConfig.MacFile,
	}
	for _, file := range readableFiles {
		if file != nil && unix.Access(*file, unix.R_OK) != nil {
			return fmt.Errorf("file does not exist or is not readable: %v", *file)
		}
	}
	if cfg.CaptureConfig.ExcludeConfig.MacFile != nil && cfg.CaptureConfig.File == nil {
		return fmt.Errorf("exclude file %v set without a capture file", *cfg.CaptureConfig.ExcludeConfig.MacFile)
	}
	if cfg.CaptureConfig.SummaryFile != nil && cfg.CaptureConfig.File == nil {
		return fmt.Errorf("summary file %v set without a capture file", *cfg.CaptureConfig.SummaryFile)
	}
	if *cfg.CaptureConfig.Ui && cfg.CaptureConfig.File == nil {
		return errors.New("ui set without a capture file")
	}
	return nil
}

// validateSchema checks the fully defaulted config against the embedded JSON
// schema. The config is rendered back to YAML and converted to JSON so the
// schema sees the same property names as the config file.
func validateSchema(cfg *Config) []error {
	rendered, err := yaml.Marshal(cfg)
	if err != nil {
		return []error{err}
	}
	jsonBytes, err := yaml.YAMLToJSON(rendered)
	if err != nil {
		return []error{err}
	}

	schema, err := compileSchema()
	if err != nil {
		return []error{fmt.Errorf("compile config schema: %w", err)}
	}

	result := schema.Validate(jsonBytes)
	if result.IsValid() {
		return nil
	}
	errs := make([]error, 0, len(result.Errors))
	for keyword, evalErr := range result.Errors {
		errs = append(errs, fmt.Errorf("config %s: %w", keyword, evalErr))
	}
	return errs
}
