package config

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"alias-heaven-calculator/internal/roles"
	errs "alias-heaven-calculator/pkg/errors"
)

// Roles file formats
const (
	FormatTOML = "toml"
	FormatYAML = "yaml"
)

func formatFor(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	default:
		return "", errs.NewValidation("config.formatFor", fmt.Sprintf("unsupported roles file extension %q", filepath.Ext(path)), nil)
	}
}

// LoadRoles reads and validates a roles file. An empty path returns the
// embedded defaults.
func LoadRoles(path string) (roles.Config, error) {
	if path == "" {
		return roles.DefaultConfig(), nil
	}
	format, err := formatFor(path)
	if err != nil {
		return roles.Config{}, err
	}
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return roles.Config{}, errs.NewIO("config.LoadRoles", path, err)
	}
	cfg, err := DecodeRoles(data, format)
	if err != nil {
		return roles.Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// DecodeRoles parses data in the given format, rejecting unknown keys, and
// validates the result.
func DecodeRoles(data []byte, format string) (roles.Config, error) {
	var cfg roles.Config
	switch format {
	case FormatTOML:
		md, err := toml.NewDecoder(bytes.NewReader(data)).Decode(&cfg)
		if err != nil {
			return roles.Config{}, errs.NewValidation("config.DecodeRoles", "invalid toml", err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, 0, len(undecoded))
			for _, k := range undecoded {
				keys = append(keys, k.String())
			}
			return roles.Config{}, errs.NewValidation("config.DecodeRoles", "unknown keys: "+strings.Join(keys, ", "), nil)
		}
	case FormatYAML:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&cfg); err != nil && err != io.EOF {
			return roles.Config{}, errs.NewValidation("config.DecodeRoles", "invalid yaml", err)
		}
	default:
		return roles.Config{}, errs.NewValidation("config.DecodeRoles", fmt.Sprintf("unknown format %q", format), nil)
	}
	if err := cfg.Validate(); err != nil {
		return roles.Config{}, err
	}
	return cfg, nil
}

// EncodeRoles writes cfg in the given format.
func EncodeRoles(w io.Writer, cfg roles.Config, format string) error {
	switch format {
	case FormatTOML:
		return toml.NewEncoder(w).Encode(cfg)
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(cfg); err != nil {
			return err
		}
		return enc.Close()
	default:
		return errs.NewValidation("config.EncodeRoles", fmt.Sprintf("unknown format %q", format), nil)
	}
}
