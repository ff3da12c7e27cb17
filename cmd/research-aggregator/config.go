package main

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/pdiddy/research-aggregator/internal/discover"
	"github.com/pdiddy/research-aggregator/pkg/types"
)

// Flag name to config key. Flags are bound per command in PreRunE so that
// commands sharing a key do not steal each other's binding.
var flagKeys = map[string]string{
	"max-items":      "max_items",
	"out-dir":        "out_dir",
	"with-doaj":      "with_doaj",
	"save-snapshots": "save_snapshots",
	"snapshot-limit": "snapshot_limit",
	"mailto":         "mailto",
	"csl":            "csl",
	"keyless":        "keyless",
	"max-retries":    "max_retries",
}

func setDefaults(v *viper.Viper) {
	def := types.DefaultConfig()
	v.SetDefault("max_items", def.MaxItems)
	v.SetDefault("out_dir", def.OutDir)
	v.SetDefault("with_doaj", def.WithDOAJ)
	v.SetDefault("save_snapshots", def.SaveSnapshots)
	v.SetDefault("snapshot_limit", def.SnapshotLimit)
	v.SetDefault("mailto", "")
	v.SetDefault("csl", def.CSL)
	v.SetDefault("keyless", string(def.Keyless))
	v.SetDefault("max_retries", def.MaxRetries)
	v.SetDefault("user_agent", "")
	v.SetDefault("log_level", "info")
}

// bindFlags binds every known flag in fs to its config key.
func bindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("binding --%s: %w", name, err)
		}
	}
	return nil
}

// configFrom reads a types.Config out of v, clamping the item cap to the
// largest page any source accepts.
func configFrom(v *viper.Viper) (types.Config, error) {
	cfg := types.Config{
		HTTPConfig: types.HTTPConfig{
			UserAgent:  strings.TrimSpace(v.GetString("user_agent")),
			MaxRetries: max(0, v.GetInt("max_retries")),
		},
		MaxItems:      clampItems(v.GetInt("max_items")),
		OutDir:        v.GetString("out_dir"),
		WithDOAJ:      v.GetBool("with_doaj"),
		SaveSnapshots: v.GetBool("save_snapshots"),
		SnapshotLimit: max(0, v.GetInt("snapshot_limit")),
		Mailto:        strings.TrimSpace(v.GetString("mailto")),
		CSL:           v.GetBool("csl"),
		Keyless:       types.KeylessPolicy(strings.ToLower(strings.TrimSpace(v.GetString("keyless")))),
	}
	if !cfg.Keyless.Valid() {
		return types.Config{}, fmt.Errorf("invalid keyless policy %q: must be %q or %q",
			cfg.Keyless, types.KeylessKeep, types.KeylessCollide)
	}
	if cfg.OutDir == "" {
		return types.Config{}, fmt.Errorf("out_dir must not be empty")
	}
	return cfg, nil
}

func clampItems(n int) int {
	return min(max(n, 1), discover.ArxivMaxItems)
}
