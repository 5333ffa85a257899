package main

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/viper"
)

const lastLoadedFileKey = "last_loaded_file"

// Settings is the small JSON config file that remembers which backing file
// the user picked last.
type Settings struct {
	v      *viper.Viper
	path   string
	logger *slog.Logger
}

// LoadSettings reads the config file at path. A missing, unreadable or
// malformed file yields empty settings; only the latter two are logged.
func LoadSettings(path string, logger *slog.Logger) *Settings {
	s := &Settings{v: newViper(path), path: path, logger: logger}

	if err := s.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist) {
			logger.Debug("config file not found, using defaults", "path", path)
		} else {
			logger.Warn("ignoring unreadable config file", "path", path, "err", err)
			s.v = newViper(path)
		}
	}
	return s
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("json")
	return v
}

func (s *Settings) Path() string {
	return s.path
}

func (s *Settings) LastLoadedFile() string {
	return s.v.GetString(lastLoadedFileKey)
}

// SetLastLoadedFile records file and rewrites the config file.
func (s *Settings) SetLastLoadedFile(file string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}
	s.v.Set(lastLoadedFileKey, file)
	if err := s.v.WriteConfigAs(s.path); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}
	return nil
}

// ResolveDataFile picks the backing file: an explicit override first, then
// the remembered file if it is absolute and still exists, then fallback.
func ResolveDataFile(override string, s *Settings, fallback string) (string, error) {
	if override != "" {
		return filepath.Abs(override)
	}

	if last := s.LastLoadedFile(); last != "" {
		if !filepath.IsAbs(last) {
			s.logger.Warn("remembered data file is not absolute, using default", "path", last)
		} else if info, err := os.Stat(last); err != nil || info.IsDir() {
			s.logger.Warn("remembered data file is gone, using default", "path", last)
		} else {
			return last, nil
		}
	}

	return fallback, nil
}

// Paths are the default locations of drawtrack's files.
type Paths struct {
	Config  string
	Data    string
	Journal string
}

func DefaultPaths() (Paths, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("error getting user home directory: %w", err)
	}

	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		if runtime.GOOS == "windows" {
			configHome = filepath.Join(homeDir, "AppData", "Roaming")
		} else {
			configHome = filepath.Join(homeDir, ".config")
		}
	}

	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = filepath.Join(homeDir, ".local", "share")
	}

	return Paths{
		Config:  filepath.Join(configHome, "drawtrack", "config.json"),
		Data:    filepath.Join(dataHome, "drawtrack", "projects.json"),
		Journal: filepath.Join(dataHome, "drawtrack", "sessions.db"),
	}, nil
}
