package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"
)

// EnvPrefix is the prefix of environment variables that override config keys.
// GSXPM_WATCHED_FOLDER maps to watched_folder.
const EnvPrefix = "GSXPM_"

const (
	DefaultSaveDebounce = 500 * time.Millisecond
	DefaultLogLevel     = "info"
)

type Config struct {
	DataDir       string        `koanf:"data_dir" json:"data_dir"`
	WatchedFolder string        `koanf:"watched_folder" json:"watched_folder,omitempty"`
	GSXTargetDir  string        `koanf:"gsx_target_dir" json:"gsx_target_dir"`
	SaveDebounce  time.Duration `koanf:"save_debounce" json:"save_debounce"`
	IncludeRoot   bool          `koanf:"include_root" json:"include_root"`
	LogLevel      string        `koanf:"log_level" json:"log_level"`

	// File is the config file that was loaded, empty when only defaults applied.
	File string `koanf:"-" json:"file,omitempty"`
}

func DefaultConfig() *Config {
	dataDir := defaultDataDir()
	return &Config{
		DataDir:      dataDir,
		GSXTargetDir: defaultTargetDir(dataDir),
		SaveDebounce: DefaultSaveDebounce,
		IncludeRoot:  true,
		LogLevel:     DefaultLogLevel,
	}
}

// Load reads configuration without flag overrides.
func Load(configPath string) (*Config, error) {
	return LoadWithFlags(configPath, nil)
}

// LoadWithFlags loads configuration from defaults, the first config file found,
// GSXPM_ environment variables and explicitly set flags, in increasing priority.
func LoadWithFlags(configPath string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")
	def := DefaultConfig()

	if err := k.Load(confmap.Provider(map[string]interface{}{
		"data_dir":       def.DataDir,
		"gsx_target_dir": "",
		"save_debounce":  def.SaveDebounce,
		"include_root":   def.IncludeRoot,
		"log_level":      def.LogLevel,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("loading defaults: %w", err)
	}

	used := ""
	for _, path := range getConfigPaths(configPath) {
		if path == "" {
			continue
		}
		if _, err := os.Stat(path); err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, err
		}
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("reading config file %s: %w", path, err)
		}
		used = path
		break
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, fmt.Errorf("loading environment: %w", err)
	}

	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			return strings.ReplaceAll(f.Name, "-", "_"), posflag.FlagVal(flags, f)
		}), nil); err != nil {
			return nil, fmt.Errorf("loading flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("decoding config: %w", err)
	}
	cfg.File = used
	cfg.expandPaths()
	if cfg.GSXTargetDir == "" {
		cfg.GSXTargetDir = defaultTargetDir(cfg.DataDir)
	}
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = DefaultSaveDebounce
	}
	return &cfg, nil
}

func getConfigPaths(explicit string) []string {
	home, _ := os.UserHomeDir()

	var paths []string

	if explicit != "" {
		paths = append(paths, explicit)
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	if xdgConfig == "" {
		xdgConfig = filepath.Join(home, ".config")
	}
	paths = append(paths, filepath.Join(xdgConfig, "gsxpm", "config.yaml"))

	paths = append(paths, filepath.Join(home, ".gsxpm.yaml"))

	return paths
}

func defaultDataDir() string {
	home, _ := os.UserHomeDir()
	xdgData := os.Getenv("XDG_DATA_HOME")
	if xdgData == "" {
		xdgData = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(xdgData, "gsxpm")
}

// defaultTargetDir is where GSX reads airport profiles. Outside Windows there
// is no simulator, so activation goes to a folder under the data dir.
func defaultTargetDir(dataDir string) string {
	if runtime.GOOS == "windows" {
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "Virtuali", "GSX", "MSFS")
		}
	}
	return filepath.Join(dataDir, "gsx-target")
}

func (c *Config) expandPaths() {
	c.DataDir = expandHome(c.DataDir)
	c.WatchedFolder = expandHome(c.WatchedFolder)
	c.GSXTargetDir = expandHome(c.GSXTargetDir)
}

func expandHome(p string) string {
	if len(p) > 0 && p[0] == '~' {
		home, _ := os.UserHomeDir()
		return filepath.Join(home, p[1:])
	}
	return p
}

// UserFoldersPath is the local profile store shown as the second tree.
func (c *Config) UserFoldersPath() string {
	return filepath.Join(c.DataDir, "user_folders")
}

// ProfilesPath is where uploaded profiles are filed by continent/country/icao.
func (c *Config) ProfilesPath() string {
	return filepath.Join(c.DataDir, "gsx-profiles")
}

func (c *Config) StatePath() string {
	return filepath.Join(c.DataDir, "app-settings.json")
}

func (c *Config) DBPath() string {
	return filepath.Join(c.DataDir, "profiles.db")
}

func (c *Config) BackupDir() string {
	return filepath.Join(c.DataDir, "backups")
}

func (c *Config) LogsDir() string {
	return filepath.Join(c.DataDir, "logs")
}
