package config

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/go-viper/mapstructure/v2"
	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	csyncerrors "github.com/jtele2/csync/pkg/errors"
	"github.com/jtele2/csync/pkg/logging"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

const (
	// EnvPrefix prefixes every csync environment override.
	EnvPrefix = "CSYNC_"
	// EnvSyncBranch is the legacy branch override.
	EnvSyncBranch = "SYNC_BRANCH"
	// EnvConfigFile points at an alternative config file.
	EnvConfigFile = "CSYNC_CONFIG"

	appDirName   = "csync"
	userFileName = "config.toml"
	dotenvName   = "env"
)

type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, errors.New("not implemented")
}

// LoadOptions tweaks where configuration is read from.
type LoadOptions struct {
	// ConfigFile overrides the user config file location.
	ConfigFile string
}

// Load builds the effective configuration.
func Load(opts LoadOptions) (*Config, error) {
	logger := logging.GetLogger("config")
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, csyncerrors.Wrap(err, csyncerrors.ErrConfigLoad, "failed to load defaults")
	}

	// 2. User file
	userFile := opts.ConfigFile
	if userFile == "" {
		userFile = os.Getenv(EnvConfigFile)
	}
	if userFile == "" {
		userFile = UserFile()
	}
	if _, err := os.Stat(userFile); err == nil {
		if err := k.Load(file.Provider(userFile), toml.Parser()); err != nil {
			return nil, csyncerrors.Wrapf(err, csyncerrors.ErrConfigLoad, "failed to load config from %s", userFile)
		}
		logger.Debug().Str("path", userFile).Msg("Loaded user config")
	}

	// 3. Dotenv; godotenv.Load never overrides variables already set
	dotenvFile := filepath.Join(Dir(), dotenvName)
	if _, err := os.Stat(dotenvFile); err == nil {
		if err := godotenv.Load(dotenvFile); err != nil {
			return nil, csyncerrors.Wrapf(err, csyncerrors.ErrConfigLoad, "failed to load %s", dotenvFile)
		}
		logger.Debug().Str("path", dotenvFile).Msg("Loaded dotenv file")
	}

	// 4. CSYNC_* environment
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, csyncerrors.Wrap(err, csyncerrors.ErrConfigLoad, "failed to load env vars")
	}

	// 5. Legacy branch override
	if branch := os.Getenv(EnvSyncBranch); branch != "" {
		if err := k.Set("sync.branch", branch); err != nil {
			return nil, csyncerrors.Wrap(err, csyncerrors.ErrConfigLoad, "failed to apply SYNC_BRANCH")
		}
	}

	var cfg Config
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToSliceHookFunc(","),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, csyncerrors.Wrap(err, csyncerrors.ErrConfigLoad, "failed to unmarshal configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, csyncerrors.Wrap(err, csyncerrors.ErrConfigLoad, "invalid configuration")
	}

	return &cfg, nil
}

// Dir returns the csync config directory, honouring XDG_CONFIG_HOME when it
// is set after process start (tests, wrappers).
func Dir() string {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appDirName)
	}
	return filepath.Join(xdg.ConfigHome, appDirName)
}

// UserFile is the default location of the user config file.
func UserFile() string {
	return filepath.Join(Dir(), userFileName)
}

// envKey maps CSYNC_SYNC__REMOTE_URL to sync.remote_url. CSYNC_CONFIGS_DIR
// is accepted as a shorthand for paths.configs_dir. Returning "" skips the
// variable.
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	switch key {
	case "configs_dir":
		return "paths.configs_dir"
	case "config":
		return ""
	}
	if !strings.Contains(key, "__") {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}

// Default returns the built-in configuration without consulting the user
// file or environment.
func Default() *Config {
	k := koanf.New(".")
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		panic(fmt.Sprintf("embedded defaults are invalid: %v", err))
	}
	var cfg Config
	if err := k.UnmarshalWithConf("", &cfg, koanf.UnmarshalConf{Tag: "koanf"}); err != nil {
		panic(fmt.Sprintf("embedded defaults do not decode: %v", err))
	}
	return &cfg
}
