package toml

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	toml "github.com/pelletier/go-toml/v2"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	configName      = "config"
	configType      = "toml"
	configDir       = ".fdraft"
	configFile      = "config.toml"
	envPrefix       = "FDRAFT"
	configFileMode  = 0o600
	configDirMode   = 0o700
	tempFilePattern = ".config-*.toml.tmp"
)

// Keys accepted by the profile file, the FDRAFT_ environment and flags.
const (
	KeyConfigPath     = "config"
	KeyEndpoint       = "endpoint"
	KeyPollInterval   = "poll_interval"
	KeyRequestTimeout = "request_timeout"
	KeyPlayerID       = "player_id"
	KeyDiscardStale   = "sync.discard_stale"
	KeyLogLevel       = "log.level"
	KeyLogFile        = "log.file"
	KeyMetricsAddr    = "metrics.addr"
	KeyPIN            = "pin"
)

var ErrUnknownKey = errors.New("unknown config key")

type Settings struct {
	Endpoint       string
	PollInterval   time.Duration
	RequestTimeout time.Duration
	PlayerID       string
	DiscardStale   bool
	LogLevel       string
	LogFile        string
	MetricsAddr    string
}

type Repository struct {
	cfg  *viper.Viper
	home string
	path string
	mu   *sync.RWMutex
}

var (
	lockRegistryMu sync.Mutex
	pathLockMap    = map[string]*sync.RWMutex{}
)

// NewRepository prepares cfg with defaults, the FDRAFT_ environment, any
// .env file and the profile file, then returns a repository writing to that
// same profile.
func NewRepository(cfg *viper.Viper) (*Repository, error) {
	if cfg == nil {
		cfg = viper.New()
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("resolve home directory: %w", err)
	}

	if err := loadDotEnv(".env", filepath.Join(homeDir, configDir, ".env")); err != nil {
		return nil, err
	}

	cfg.SetEnvPrefix(envPrefix)
	cfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	cfg.AutomaticEnv()
	if err := cfg.BindEnv(KeyPIN); err != nil {
		return nil, fmt.Errorf("bind pin env: %w", err)
	}

	cfg.SetDefault(KeyPollInterval, "4s")
	cfg.SetDefault(KeyRequestTimeout, "15s")
	cfg.SetDefault(KeyDiscardStale, true)
	cfg.SetDefault(KeyLogLevel, "info")
	cfg.SetDefault(KeyLogFile, filepath.Join(homeDir, configDir, "watch.log"))

	path := cfg.GetString(KeyConfigPath)
	if path == "" {
		path = filepath.Join(homeDir, configDir, configFile)
	}
	path, err = normalizePath(path)
	if err != nil {
		return nil, err
	}

	cfg.SetConfigName(configName)
	cfg.SetConfigType(configType)
	cfg.SetConfigFile(path)

	repo := &Repository{cfg: cfg, home: homeDir, path: path, mu: lockForPath(path)}
	if err := repo.reload(); err != nil {
		return nil, err
	}

	return repo, nil
}

func (r *Repository) Path() string {
	return r.path
}

// PIN returns the PIN from a bound flag or FDRAFT_PIN. It is never read from
// or written to the profile file.
func (r *Repository) PIN() string {
	return strings.TrimSpace(r.cfg.GetString(KeyPIN))
}

// BindFlag makes flag override key for this run. A flag the user did not set
// falls through to the environment, the profile file and the defaults.
func (r *Repository) BindFlag(key string, flag *pflag.Flag) error {
	if flag == nil {
		return fmt.Errorf("bind %s: flag not defined", key)
	}
	if err := r.cfg.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("bind %s flag: %w", key, err)
	}
	return nil
}

func (r *Repository) Settings() (Settings, error) {
	poll, err := positiveDuration(r.cfg, KeyPollInterval)
	if err != nil {
		return Settings{}, err
	}
	timeout, err := positiveDuration(r.cfg, KeyRequestTimeout)
	if err != nil {
		return Settings{}, err
	}

	return Settings{
		Endpoint:       strings.TrimSpace(r.cfg.GetString(KeyEndpoint)),
		PollInterval:   poll,
		RequestTimeout: timeout,
		PlayerID:       strings.TrimSpace(r.cfg.GetString(KeyPlayerID)),
		DiscardStale:   r.cfg.GetBool(KeyDiscardStale),
		LogLevel:       r.cfg.GetString(KeyLogLevel),
		LogFile:        expandHome(r.cfg.GetString(KeyLogFile), r.home),
		MetricsAddr:    strings.TrimSpace(r.cfg.GetString(KeyMetricsAddr)),
	}, nil
}

// Keys lists the settable keys in display order.
func Keys() []string {
	return []string{
		KeyEndpoint,
		KeyPollInterval,
		KeyRequestTimeout,
		KeyPlayerID,
		KeyDiscardStale,
		KeyLogLevel,
		KeyLogFile,
		KeyMetricsAddr,
	}
}

// Set validates value for key and persists it to the profile file.
func (r *Repository) Set(ctx context.Context, key, value string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	key = strings.ToLower(strings.TrimSpace(key))
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w %q", ErrUnknownKey, key)
	}
	value = strings.TrimSpace(value)

	r.mu.Lock()
	defer r.mu.Unlock()

	file, err := r.readSchema()
	if err != nil {
		return err
	}

	if err := assign(&file, key, value); err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}

	if err := r.writeSchema(file); err != nil {
		return err
	}

	return r.reload()
}

func assign(file *fileSchema, key, value string) error {
	switch key {
	case KeyEndpoint:
		file.Endpoint = value
	case KeyPollInterval, KeyRequestTimeout:
		parsed, err := time.ParseDuration(value)
		if err != nil || parsed <= 0 {
			return fmt.Errorf("%s must be a positive duration such as 4s, got %q", key, value)
		}
		if key == KeyPollInterval {
			file.PollInterval = parsed.String()
		} else {
			file.RequestTimeout = parsed.String()
		}
	case KeyPlayerID:
		file.PlayerID = value
	case KeyDiscardStale:
		parsed, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be true or false, got %q", key, value)
		}
		file.Sync.DiscardStale = &parsed
	case KeyLogLevel:
		if _, err := zerolog.ParseLevel(strings.ToLower(value)); err != nil || value == "" {
			return fmt.Errorf("%s must be one of trace, debug, info, warn, error, got %q", key, value)
		}
		file.Log.Level = strings.ToLower(value)
	case KeyLogFile:
		file.Log.File = value
	case KeyMetricsAddr:
		file.Metrics.Addr = value
	}

	return nil
}

func (r *Repository) reload() error {
	if err := r.cfg.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if errors.As(err, &configNotFound) || errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read config file: %w", err)
	}

	return nil
}

func (r *Repository) readSchema() (fileSchema, error) {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fileSchema{}, nil
		}
		return fileSchema{}, fmt.Errorf("read config file: %w", err)
	}

	var file fileSchema
	if err := toml.Unmarshal(data, &file); err != nil {
		return fileSchema{}, fmt.Errorf("decode config file: %w", err)
	}
	if err := file.validateVersion(); err != nil {
		return fileSchema{}, err
	}
	file.applyDefaults()

	return file, nil
}

func (r *Repository) writeSchema(file fileSchema) error {
	file.applyDefaults()

	if err := os.MkdirAll(filepath.Dir(r.path), configDirMode); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	data, err := toml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode config file: %w", err)
	}

	tempFile, err := os.CreateTemp(filepath.Dir(r.path), tempFilePattern)
	if err != nil {
		return fmt.Errorf("create temp config file: %w", err)
	}

	tempName := tempFile.Name()
	cleanup := true
	defer func() {
		if cleanup {
			_ = os.Remove(tempName)
		}
	}()

	if _, err := tempFile.Write(data); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("write temp config file: %w", err)
	}

	if err := tempFile.Chmod(configFileMode); err != nil {
		_ = tempFile.Close()
		return fmt.Errorf("chmod temp config file: %w", err)
	}

	if err := tempFile.Close(); err != nil {
		return fmt.Errorf("close temp config file: %w", err)
	}

	if err := os.Rename(tempName, r.path); err != nil {
		return fmt.Errorf("replace config file: %w", err)
	}

	cleanup = false
	return nil
}

func positiveDuration(cfg *viper.Viper, key string) (time.Duration, error) {
	raw := strings.TrimSpace(cfg.GetString(key))
	parsed, err := time.ParseDuration(raw)
	if err != nil || parsed <= 0 {
		return 0, fmt.Errorf("%s must be a positive duration, got %q", key, raw)
	}
	return parsed, nil
}

func loadDotEnv(paths ...string) error {
	for _, path := range paths {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
	}
	return nil
}

func expandHome(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	return path
}

func normalizePath(path string) (string, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolve config path: %w", err)
	}

	return filepath.Clean(absPath), nil
}

func lockForPath(path string) *sync.RWMutex {
	lockRegistryMu.Lock()
	defer lockRegistryMu.Unlock()

	if mu, ok := pathLockMap[path]; ok {
		return mu
	}

	mu := &sync.RWMutex{}
	pathLockMap[path] = mu
	return mu
}
