package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"net/mail"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/example/club-schedule-board/internal/alert"
	"github.com/example/club-schedule-board/internal/application"
)

// Config captures environment driven configuration values for the board process.
type Config struct {
	HTTPPort         int
	RemoteEndpoint   string
	RootAdminEmail   string
	CacheDSN         string
	SyncInterval     time.Duration
	RemoteTimeout    time.Duration
	Detector         application.DetectorMode
	AlertPermission  alert.Permission
	HeaderFile       string
	HeaderDefaults   application.HeaderDefaults
	ManualSyncPerMin int
	LogLevel         slog.Level
}

// LoadEnvFile loads variables from the given .env files (".env" when none are named)
// without overriding variables already present in the environment. It reports whether
// a file was found.
func LoadEnvFile(paths ...string) (bool, error) {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	if err := godotenv.Load(paths...); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("không đọc được tệp .env: %w", err)
	}
	return true, nil
}

// Load parses configuration values from the current process environment.
//
// Optional fields fall back to defaults; missing and malformed values are collected
// and reported together.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:         8080,
		CacheDSN:         "file:board-cache.db",
		SyncInterval:     application.DefaultSyncInterval,
		RemoteTimeout:    15 * time.Second,
		Detector:         application.DetectorCursor,
		AlertPermission:  alert.PermissionDefault,
		ManualSyncPerMin: 6,
		LogLevel:         slog.LevelInfo,
	}

	missing := make([]string, 0, 1)
	invalid := make([]string, 0, 4)

	if portValue := env("BOARD_HTTP_PORT"); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 || port > 65535 {
			invalid = append(invalid, "BOARD_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if endpoint := env("BOARD_REMOTE_ENDPOINT"); endpoint != "" {
		parsed, err := url.Parse(endpoint)
		if err != nil || (parsed.Scheme != "http" && parsed.Scheme != "https") || parsed.Host == "" {
			invalid = append(invalid, "BOARD_REMOTE_ENDPOINT")
		} else {
			cfg.RemoteEndpoint = endpoint
		}
	}

	if root := env("BOARD_ROOT_ADMIN_EMAIL"); root == "" {
		missing = append(missing, "BOARD_ROOT_ADMIN_EMAIL")
	} else if _, err := mail.ParseAddress(root); err != nil {
		invalid = append(invalid, "BOARD_ROOT_ADMIN_EMAIL")
	} else {
		cfg.RootAdminEmail = application.NormalizeEmail(root)
	}

	if dsn := env("BOARD_CACHE_DSN"); dsn != "" {
		cfg.CacheDSN = dsn
	}

	if value := env("BOARD_SYNC_INTERVAL"); value != "" {
		interval, err := time.ParseDuration(value)
		if err != nil || interval <= 0 {
			invalid = append(invalid, "BOARD_SYNC_INTERVAL")
		} else {
			cfg.SyncInterval = interval
		}
	}

	if value := env("BOARD_REMOTE_TIMEOUT"); value != "" {
		timeout, err := time.ParseDuration(value)
		if err != nil || timeout <= 0 {
			invalid = append(invalid, "BOARD_REMOTE_TIMEOUT")
		} else {
			cfg.RemoteTimeout = timeout
		}
	}

	if value := env("BOARD_NOTIFICATION_DETECTOR"); value != "" {
		mode, ok := application.ParseDetectorMode(value)
		if !ok {
			invalid = append(invalid, "BOARD_NOTIFICATION_DETECTOR")
		} else {
			cfg.Detector = mode
		}
	}

	if value := env("BOARD_ALERT_PERMISSION"); value != "" {
		permission, ok := alert.ParsePermission(value)
		if !ok {
			invalid = append(invalid, "BOARD_ALERT_PERMISSION")
		} else {
			cfg.AlertPermission = permission
		}
	}

	if value := env("BOARD_SYNC_RATE"); value != "" {
		rate, err := strconv.Atoi(value)
		if err != nil || rate <= 0 {
			invalid = append(invalid, "BOARD_SYNC_RATE")
		} else {
			cfg.ManualSyncPerMin = rate
		}
	}

	if value := env("BOARD_LOG_LEVEL"); value != "" {
		var level slog.Level
		if err := level.UnmarshalText([]byte(value)); err != nil {
			invalid = append(invalid, "BOARD_LOG_LEVEL")
		} else {
			cfg.LogLevel = level
		}
	}

	cfg.HeaderFile = env("BOARD_HEADER_FILE")

	if len(missing) > 0 {
		return Config{}, fmt.Errorf("thiếu biến môi trường bắt buộc: %s", strings.Join(missing, ", "))
	}
	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("giá trị biến môi trường không hợp lệ: %s", strings.Join(invalid, ", "))
	}

	cfg.HeaderDefaults = application.StandardHeaderDefaults()
	if cfg.HeaderFile != "" {
		defaults, err := LoadHeaderDefaults(cfg.HeaderFile)
		if err != nil {
			return Config{}, err
		}
		cfg.HeaderDefaults = defaults
	}

	return cfg, nil
}

// Addr returns the listen address for the HTTP server.
func (c Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

func env(key string) string {
	return strings.TrimSpace(os.Getenv(key))
}
