// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets loads credentials and contact details kept outside the
// config file. Two stores are read: a directory of plain-text files, where
// each filename is a key and the trimmed contents are the value, and an
// optional dotenv file.
//
// Supported keys: crossref-mailto (file) and CROSSREF_MAILTO (dotenv).
package secrets

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// DefaultDir is the secrets directory relative to the working directory.
	DefaultDir = ".secrets"

	// DefaultEnvFile is the dotenv file relative to the working directory.
	DefaultEnvFile = ".env"

	// MailtoFile holds the Crossref polite-pool contact inside DefaultDir.
	MailtoFile = "crossref-mailto"

	// MailtoEnv is the dotenv or environment key for the same contact.
	MailtoEnv = "CROSSREF_MAILTO"
)

// Load reads all files in dir and returns a map of filename to trimmed contents.
// A missing directory or missing files are not errors; Load returns an empty map.
// Unreadable files are logged as warnings but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("could not read secret", "name", name, "error", err)
			continue
		}

		value := strings.TrimSpace(string(data))
		if value != "" {
			secrets[name] = value
		}
	}

	return secrets, nil
}

// ReadEnvFile parses a dotenv file without touching the process
// environment. A missing file yields an empty map.
func ReadEnvFile(path string) (map[string]string, error) {
	values, err := godotenv.Read(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading env file %s: %w", path, err)
	}
	return values, nil
}

// LoadEnv exports a dotenv file into the process environment so viper's
// AutomaticEnv can see it. Variables already set win. A missing file is
// not an error.
func LoadEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("loading env file %s: %w", path, err)
	}
	return nil
}

// ResolveMailto returns the first non-blank polite contact from, in order:
// explicit, the MailtoFile in dir, then MailtoEnv in envFile. It returns ""
// when none is set.
func ResolveMailto(explicit, dir, envFile string) string {
	if v := strings.TrimSpace(explicit); v != "" {
		return v
	}
	if s, err := Load(dir); err == nil {
		if v := s[MailtoFile]; v != "" {
			return v
		}
	} else {
		slog.Warn("skipping secrets directory", "dir", dir, "error", err)
	}
	env, err := ReadEnvFile(envFile)
	if err != nil {
		slog.Warn("skipping env file", "path", envFile, "error", err)
		return ""
	}
	return strings.TrimSpace(env[MailtoEnv])
}
