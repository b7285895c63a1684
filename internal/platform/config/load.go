package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	env "github.com/knadh/koanf/providers/env/v2"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	envPrefix        = "APP_"
	clientEnvPrefix  = "TODOCTL_"
	defaultConfigDir = "configs"
)

// Option adjusts where Load and LoadClient look for files.
type Option func(*options)

type options struct {
	dir        string
	clientFile string
}

// WithConfigDir makes Load read base.yaml and the profile file from dir
// instead of ./configs.
func WithConfigDir(dir string) Option {
	return func(o *options) {
		o.dir = dir
	}
}

// WithClientFile makes LoadClient read path, a YAML file of client keys,
// between the defaults and the environment. An empty path is ignored.
func WithClientFile(path string) Option {
	return func(o *options) {
		o.clientFile = path
	}
}

// layer is one configuration source. A nil parser means the provider
// already yields a key map.
type layer struct {
	name     string
	provider koanf.Provider
	parser   koanf.Parser
}

func yamlLayer(path string) layer {
	return layer{name: path, provider: file.Provider(path), parser: yaml.Parser()}
}

// Load builds the service configuration for profile. Later layers win:
//
//	built-in defaults < configs/base.yaml < configs/<profile>.yaml < APP_* env
//
// Environment names are matched against the keys already loaded, so
// APP_DATABASE_MAX_OPEN_CONNS sets database.max_open_conns rather than
// database.max.open.conns.
func Load(profile string, opts ...Option) (*Config, error) {
	if err := checkProfile(profile); err != nil {
		return nil, err
	}
	o := collect(opts)

	var cfg Config
	err := build(&cfg, envPrefix,
		layer{name: "defaults", provider: confmap.Provider(defaults(), ".")},
		yamlLayer(filepath.Join(o.dir, "base.yaml")),
		yamlLayer(filepath.Join(o.dir, profile+".yaml")),
	)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config for profile %q: %w", profile, err)
	}
	return &cfg, nil
}

// LoadClient builds the todoctl configuration from the client defaults, an
// optional file (WithClientFile) and TODOCTL_* environment variables such as
// TODOCTL_BASE_URL or TODOCTL_RETRY_MAX_ATTEMPTS.
func LoadClient(opts ...Option) (*ClientConfig, error) {
	o := collect(opts)

	layers := []layer{{name: "client defaults", provider: confmap.Provider(clientDefaults(), ".")}}
	if o.clientFile != "" {
		layers = append(layers, yamlLayer(o.clientFile))
	}

	var cfg ClientConfig
	if err := build(&cfg, clientEnvPrefix, layers...); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid client config: %w", err)
	}
	return &cfg, nil
}

func collect(opts []Option) options {
	o := options{dir: defaultConfigDir}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// build loads layers in order, then prefix environment variables, and
// unmarshals the result into out.
func build(out any, prefix string, layers ...layer) error {
	k := koanf.New(".")
	for _, l := range layers {
		if err := k.Load(l.provider, l.parser); err != nil {
			return fmt.Errorf("loading %s: %w", l.name, err)
		}
	}
	if err := k.Load(envProvider(prefix, k.Keys()), nil); err != nil {
		return fmt.Errorf("loading %s* environment: %w", prefix, err)
	}
	if err := k.Unmarshal("", out); err != nil {
		return fmt.Errorf("decoding config: %w", err)
	}
	return nil
}

// envProvider maps PREFIX_A_B_C onto the known key whose dots and
// underscores flatten to a_b_c. Unknown names nest on every underscore.
func envProvider(prefix string, known []string) *env.Env {
	byEnvName := make(map[string]string, len(known))
	for _, key := range known {
		byEnvName[strings.ReplaceAll(key, ".", "_")] = key
	}

	return env.Provider(".", env.Opt{
		Prefix: prefix,
		TransformFunc: func(name, value string) (string, any) {
			name = strings.ToLower(strings.TrimPrefix(name, prefix))
			if key, ok := byEnvName[name]; ok {
				return key, value
			}
			return strings.ReplaceAll(name, "_", "."), value
		},
	})
}

// checkProfile rejects names that could escape the config directory.
func checkProfile(profile string) error {
	switch {
	case strings.TrimSpace(profile) == "":
		return errors.New("profile must not be empty")
	case strings.ContainsAny(profile, `/\`), strings.Contains(profile, ".."):
		return fmt.Errorf("profile %q must be a plain name", profile)
	default:
		return nil
	}
}
