package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

const (
	configName = "config"
	configType = "toml"
	configDir  = ".stride"
	envPrefix  = "STRIDE"

	BackendTOML   = "toml"
	BackendSQLite = "sqlite"
)

const (
	keyStorageBackend        = "storage.backend"
	keyStoragePath           = "storage.path"
	keyStorageMemoryFallback = "storage.memory_fallback"
	keyHistoryKey            = "history.key"
	keyLogDir                = "log.dir"
	keySensorSource          = "sensor.source"
	keySensorPermission      = "sensor.require_permission"
	keyDisplayLocale         = "display.locale"
	keyShellManifest         = "shell.manifest"
	keyShellOrigin           = "shell.origin"
	keyShellCacheDir         = "shell.cache_dir"
	keyServeListen           = "serve.listen"
)

type Config struct {
	Dir     string
	Storage StorageConfig
	History HistoryConfig
	Log     LogConfig
	Sensor  SensorConfig
	Display DisplayConfig
	Shell   ShellConfig
	Serve   ServeConfig
}

type StorageConfig struct {
	Backend        string
	Path           string
	MemoryFallback bool
}

type HistoryConfig struct {
	Key string
}

type LogConfig struct {
	Dir string
}

type SensorConfig struct {
	// Source is a sample file path, "-" for stdin, or empty when no sensor
	// is attached.
	Source            string
	RequirePermission bool
}

type DisplayConfig struct {
	Locale string
}

type ShellConfig struct {
	Manifest string
	Origin   string
	CacheDir string
}

type ServeConfig struct {
	Listen string
}

// Load reads ~/.stride/config.toml (optional) into cfg and applies defaults
// and STRIDE_* environment overrides.
func Load(cfg *viper.Viper) (Config, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Config{}, fmt.Errorf("resolve home directory: %w", err)
	}
	baseDir := filepath.Join(homeDir, configDir)

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.AddConfigPath(baseDir)

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()

	cfg.SetDefault(keyStorageBackend, BackendTOML)
	cfg.SetDefault(keyStoragePath, "")
	cfg.SetDefault(keyStorageMemoryFallback, true)
	cfg.SetDefault(keyHistoryKey, "stepHistory")
	cfg.SetDefault(keyLogDir, filepath.Join(baseDir, "logs"))
	cfg.SetDefault(keySensorSource, "")
	cfg.SetDefault(keySensorPermission, false)
	cfg.SetDefault(keyDisplayLocale, localeFromEnv())
	cfg.SetDefault(keyShellManifest, filepath.Join(baseDir, "shell.yaml"))
	cfg.SetDefault(keyShellOrigin, filepath.Join(baseDir, "web"))
	cfg.SetDefault(keyShellCacheDir, filepath.Join(baseDir, "shell-cache"))
	cfg.SetDefault(keyServeListen, "127.0.0.1:8080")

	if err := cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configNotFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	out := Config{
		Dir: baseDir,
		Storage: StorageConfig{
			Backend:        strings.ToLower(strings.TrimSpace(cfg.GetString(keyStorageBackend))),
			Path:           cfg.GetString(keyStoragePath),
			MemoryFallback: cfg.GetBool(keyStorageMemoryFallback),
		},
		History: HistoryConfig{Key: cfg.GetString(keyHistoryKey)},
		Log:     LogConfig{Dir: cfg.GetString(keyLogDir)},
		Sensor: SensorConfig{
			Source:            cfg.GetString(keySensorSource),
			RequirePermission: cfg.GetBool(keySensorPermission),
		},
		Display: DisplayConfig{Locale: cfg.GetString(keyDisplayLocale)},
		Shell: ShellConfig{
			Manifest: cfg.GetString(keyShellManifest),
			Origin:   cfg.GetString(keyShellOrigin),
			CacheDir: cfg.GetString(keyShellCacheDir),
		},
		Serve: ServeConfig{Listen: cfg.GetString(keyServeListen)},
	}

	if out.Storage.Path == "" {
		out.Storage.Path = defaultStoragePath(baseDir, out.Storage.Backend)
	}

	if err := out.Validate(); err != nil {
		return Config{}, err
	}

	return out, nil
}

func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendTOML, BackendSQLite:
	default:
		return fmt.Errorf("unsupported storage backend %q", c.Storage.Backend)
	}
	if strings.TrimSpace(c.History.Key) == "" {
		return errors.New("history key is empty")
	}
	if strings.TrimSpace(c.Storage.Path) == "" {
		return errors.New("storage path is empty")
	}

	return nil
}

func defaultStoragePath(baseDir, backend string) string {
	if backend == BackendSQLite {
		return filepath.Join(baseDir, "storage.db")
	}
	return filepath.Join(baseDir, "storage.toml")
}

// localeFromEnv turns LANG-style values such as "de_DE.UTF-8" into a BCP 47
// tag.
func localeFromEnv() string {
	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		value := os.Getenv(key)
		if i := strings.IndexAny(value, ".@"); i >= 0 {
			value = value[:i]
		}
		if value == "" || value == "C" || value == "POSIX" {
			continue
		}
		return strings.ReplaceAll(value, "_", "-")
	}
	return "en"
}
