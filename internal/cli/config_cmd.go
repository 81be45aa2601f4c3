// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/sethvargo/go-envconfig"

	"github.com/jeranaias/eduportal-tui/internal/config"
)

const configUsage = "eduportal config [show|path|init|get <key>|set <key> <value>|keys]"

// HandleConfig runs a config subcommand against the directory dir.
func HandleConfig(dir string, args Args, w io.Writer) error {
	switch args.Subcommand {
	case "", "show":
		cfg, err := config.LoadDir(dir, envconfig.OsLookuper())
		if err != nil {
			return err
		}
		if args.JSON {
			return NewJSONResponse("config show", cfg).Write(w, ColorsEnabled())
		}
		fmt.Fprintln(w, TitleStyle.Render("Configuration"))
		for _, key := range config.Keys() {
			v, _ := cfg.Get(key)
			fmt.Fprintf(w, "%s %v\n", LabelStyle.Width(28).Render(key), v)
		}
		return nil

	case "path":
		path := config.PathTOML(dir)
		if _, err := os.Stat(path); err != nil {
			if _, jerr := os.Stat(config.PathJSON(dir)); jerr == nil {
				path = config.PathJSON(dir)
			}
		}
		if args.JSON {
			return NewJSONResponse("config path", map[string]string{"path": path, "dir": dir}).Write(w, false)
		}
		fmt.Fprintln(w, path)
		return nil

	case "init":
		path, err := config.Init(dir)
		if errors.Is(err, config.ErrExists) {
			fmt.Fprintf(w, "%s %s already exists\n", WarningStyle.Render("[WARN]"), path)
			return nil
		}
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s Wrote %s\n", SuccessStyle.Render("[OK]"), path)
		return nil

	case "get":
		if args.ConfigKey == "" {
			return ErrMissingArgument("key", configUsage)
		}
		cfg, err := config.LoadDir(dir, envconfig.OsLookuper())
		if err != nil {
			return err
		}
		v, err := cfg.Get(args.ConfigKey)
		if err != nil {
			return &UsageError{Message: err.Error(), Usage: configUsage}
		}
		fmt.Fprintln(w, v)
		return nil

	case "set":
		if args.ConfigKey == "" || args.ConfigVal == "" {
			return ErrMissingArgument("key and value", configUsage)
		}
		// Env overrides must not leak into the saved file.
		cfg, err := config.LoadDir(dir, nil)
		if err != nil {
			return err
		}
		if err := cfg.Set(args.ConfigKey, args.ConfigVal); err != nil {
			return &UsageError{Message: err.Error(), Usage: configUsage}
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := config.Save(cfg, config.PathTOML(dir)); err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s = %s\n", SuccessStyle.Render("[OK]"), args.ConfigKey, args.ConfigVal)
		return nil

	case "keys":
		for _, key := range config.Keys() {
			fmt.Fprintln(w, key)
		}
		return nil
	}
	return &UsageError{Message: "unknown config subcommand: " + args.Subcommand, Usage: configUsage}
}
