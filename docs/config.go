package docs

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/vitalvas/apispec/openapi"
	"github.com/vitalvas/apispec/webargs"
)

// Disabled turns off a documentation endpoint when used as its path.
const Disabled = openapi.Disabled

// Config configures the documentation extension. Zero fields take the
// values of DefaultConfig.
type Config struct {
	// Title and Version fill the document info object.
	Title       string `yaml:"title" toml:"title"`
	Version     string `yaml:"version" toml:"version"`
	Description string `yaml:"description" toml:"description"`

	// Servers, Tags and ExternalDocs are copied into a spec created by New.
	Servers      []openapi.Server      `yaml:"servers" toml:"servers"`
	Tags         []openapi.Tag         `yaml:"tags" toml:"tags"`
	ExternalDocs *openapi.ExternalDocs `yaml:"external_docs" toml:"external_docs"`

	// OpenAPIVersion is openapi.Version30 or openapi.Version31.
	OpenAPIVersion string `yaml:"openapi_version" toml:"openapi_version"`

	// SpecPath serves the JSON document.
	SpecPath string `yaml:"spec_path" toml:"spec_path"`

	// YAMLPath serves the YAML document.
	YAMLPath string `yaml:"yaml_path" toml:"yaml_path"`

	// UIPath serves the interactive docs page.
	UIPath string `yaml:"ui_path" toml:"ui_path"`

	// UI is one of "swagger", "rapidoc" or "redoc".
	UI string `yaml:"ui" toml:"ui"`

	// SwaggerUI adds options to the Swagger UI page.
	SwaggerUI map[string]any `yaml:"swagger_ui" toml:"swagger_ui"`

	// ExcludeOptions leaves OPTIONS operations out of the document.
	ExcludeOptions *bool `yaml:"exclude_options" toml:"exclude_options"`

	// DefaultLocation is where arguments registered without a location are
	// documented and, unless WithSettings supplies a parser, read from.
	DefaultLocation webargs.Location `yaml:"default_location" toml:"default_location"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	exclude := true
	return Config{
		Title:           "apispec",
		Version:         "v1",
		OpenAPIVersion:  openapi.Version30,
		SpecPath:        "/swagger/",
		YAMLPath:        "/swagger.yaml",
		UIPath:          "/swagger-ui/",
		UI:              "swagger",
		ExcludeOptions:  &exclude,
		DefaultLocation: webargs.DefaultLocation,
	}
}

// LoadConfig reads a YAML or TOML file, chosen by extension, and fills the
// missing fields with defaults.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("docs: parse %s: %w", path, err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("docs: parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("docs: unsupported config format %q", ext)
	}

	return cfg.withDefaults()
}

func (c Config) withDefaults() (Config, error) {
	if err := mergo.Merge(&c, DefaultConfig()); err != nil {
		return Config{}, fmt.Errorf("docs: apply defaults: %w", err)
	}
	if !c.DefaultLocation.Valid() {
		return Config{}, fmt.Errorf("docs: %w: %q", webargs.ErrUnknownLocation, c.DefaultLocation)
	}
	return c, nil
}

func (c Config) excludeOptions() bool {
	return c.ExcludeOptions == nil || *c.ExcludeOptions
}

func (c Config) handleConfig() (string, *openapi.HandleConfig) {
	hc := &openapi.HandleConfig{
		Title:           c.Title,
		JSONFilename:    absolute(c.SpecPath),
		YAMLFilename:    absolute(c.YAMLPath),
		SwaggerUIConfig: c.SwaggerUI,
	}

	switch c.UI {
	case "rapidoc":
		hc.UI = openapi.DocsRapiDoc
	case "redoc":
		hc.UI = openapi.DocsRedoc
	}

	if c.UIPath == Disabled {
		hc.DisableDocs = true
		return "", hc
	}
	return c.UIPath, hc
}

// absolute keeps disabled paths and anchors the rest at the root so they
// are not joined with the UI path.
func absolute(p string) string {
	if p == Disabled || strings.HasPrefix(p, "/") {
		return p
	}
	return "/" + p
}
