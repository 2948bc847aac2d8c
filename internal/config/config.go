package config

import (
	_ "embed"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	weaveerrors "github.com/toyz/weave/internal/errors"
	"github.com/toyz/weave/pkg/pointcut"
	"github.com/toyz/weave/pkg/weave"
)

// EnvPrefix prefixes the environment variables that override settings;
// WEAVE_LOG_LEVEL sets log.level
const EnvPrefix = "WEAVE_"

//go:embed defaults.toml
var defaultConfig []byte

// Config is a weave manifest together with tool settings
type Config struct {
	Log       LogConfig         `koanf:"log"`
	Pointcuts map[string]string `koanf:"pointcuts"`
	Aspects   []AspectConfig    `koanf:"aspects"`

	// Source is the manifest path, empty when none was loaded
	Source string `koanf:"-"`
}

// LogConfig holds the logging settings
type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// AspectConfig binds a registered advice to a pointcut
type AspectConfig struct {
	Name      string `koanf:"name"`
	Advice    string `koanf:"advice"`
	Pointcut  string `koanf:"pointcut"`
	Order     int    `koanf:"order"`
	Condition string `koanf:"condition"`
}

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// ParserFor picks the koanf parser for a manifest by file extension
func ParserFor(path string) (koanf.Parser, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, weaveerrors.ConfigurationError(path, "unsupported manifest format, use .yaml, .yml or .toml")
	}
}

// Load reads the configuration in layers: built-in defaults, the manifest at
// path (skipped when path is empty), WEAVE_* environment variables and finally
// overrides, a flat map of dotted keys such as "log.level".
func Load(path string, overrides map[string]interface{}) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, weaveerrors.WrapConfigurationError("defaults", "load", err)
	}

	// 2. Manifest
	if path != "" {
		parser, err := ParserFor(path)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(path), parser); err != nil {
			return nil, weaveerrors.WrapConfigurationError(path, "load", err)
		}
	}

	// 3. Environment
	err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "_", ".")
	}), nil)
	if err != nil {
		return nil, weaveerrors.WrapConfigurationError("environment", "load", err)
	}

	// 4. Overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, weaveerrors.WrapConfigurationError("flags", "load", err)
		}
	}

	cfg := Config{Source: path}
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			ErrorUnused:      false,
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, weaveerrors.WrapConfigurationError(describeSource(path), "decode", err)
	}
	return &cfg, nil
}

func describeSource(path string) string {
	if path == "" {
		return "defaults"
	}
	return path
}

// PointcutNames returns the names of the declared pointcuts, sorted
func (c *Config) PointcutNames() []string {
	names := make([]string, 0, len(c.Pointcuts))
	for name := range c.Pointcuts {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks the manifest without binding anything: pointcut names and
// expressions, references between them, and that every aspect names an advice
// and a pointcut. knownAdvice, when non-nil, is the set of advice names that
// may be referenced. All problems are reported together.
func (c *Config) Validate(knownAdvice map[string]bool) error {
	var errs *weaveerrors.MultipleErrors

	scope := pointcut.NewScope()
	for _, name := range c.PointcutNames() {
		if err := scope.Define(name, c.Pointcuts[name]); err != nil {
			weaveerrors.AddToMultiple(&errs, weaveerrors.WrapPointcutError("pointcut "+name, err))
		}
	}
	if errs.ErrorOrNil() == nil {
		for _, name := range scope.Names() {
			if _, err := scope.Resolve(name); err != nil {
				weaveerrors.AddToMultiple(&errs, weaveerrors.WrapPointcutError("pointcut "+name, err))
			}
		}
	}

	for i, aspect := range c.Aspects {
		field := fmt.Sprintf("aspects[%d]", i)
		if aspect.Advice == "" {
			weaveerrors.AddToMultiple(&errs, weaveerrors.NewValidationError(field+".advice", "an advice name", "nothing"))
		} else if knownAdvice != nil && !knownAdvice[aspect.Advice] {
			weaveerrors.AddToMultiple(&errs, weaveerrors.NewValidationError(field+".advice", "a registered advice", fmt.Sprintf("%q", aspect.Advice)))
		}
		if aspect.Pointcut == "" {
			weaveerrors.AddToMultiple(&errs, weaveerrors.NewValidationError(field+".pointcut", "a pointcut expression", "nothing"))
		} else if _, err := scope.Compile(aspect.Pointcut); err != nil {
			weaveerrors.AddToMultiple(&errs, weaveerrors.WrapPointcutError(field+".pointcut", err))
		}
		if aspect.Condition != "" {
			if _, err := weave.NewCondition(aspect.Condition); err != nil {
				weaveerrors.AddToMultiple(&errs, weaveerrors.NewValidationError(field+".condition", "a boolean expression", err.Error()))
			}
		}
	}
	return errs.ErrorOrNil()
}

// Manifest converts the configuration into a weave.Manifest
func (c *Config) Manifest() weave.Manifest {
	m := weave.Manifest{
		Pointcuts: make(map[string]string, len(c.Pointcuts)),
		Aspects:   make([]weave.Aspect, 0, len(c.Aspects)),
	}
	for name, expression := range c.Pointcuts {
		m.Pointcuts[name] = expression
	}
	for _, a := range c.Aspects {
		m.Aspects = append(m.Aspects, weave.Aspect{
			Name:      a.Name,
			Advice:    a.Advice,
			Pointcut:  a.Pointcut,
			Order:     a.Order,
			Condition: a.Condition,
		})
	}
	return m
}
