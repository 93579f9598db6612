// SPDX-License-Identifier: MPL-2.0

package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/oriolang/modload/internal/config"
)

var (
	configCmd = &cobra.Command{
		Use:   "config",
		Short: "Manage loader configuration",
		Long: `Manage loader configuration.

Configuration is stored in:
  - Linux: ~/.config/modload/config.cue
  - macOS: ~/Library/Application Support/modload/config.cue
  - Windows: %APPDATA%\modload\config.cue`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	configShowCmd = &cobra.Command{
		Use:   "show",
		Short: "Show current configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, path, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}

			if path == "" {
				fmt.Println(SubtitleStyle.Render("(no config file found, showing defaults)"))
			} else {
				fmt.Println(SubtitleStyle.Render("loaded from " + path))
			}
			fmt.Println()

			fmt.Println(TitleStyle.Render("Registry"))
			base := string(cfg.Registry.BaseURL)
			if base == "" {
				base = "(built-in default)"
			}
			fmt.Printf("  base_url:   %s\n", base)
			fmt.Printf("  index_file: %s\n", cfg.Registry.IndexFile)

			fmt.Println(TitleStyle.Render("Policy"))
			fmt.Printf("  allow: %s\n", patternList(cfg.Policy.Allow, "(everything)"))
			fmt.Printf("  block: %s\n", patternList(cfg.Policy.Block, "(nothing)"))

			fmt.Println(TitleStyle.Render("Host"))
			if cfg.Host == config.HostAuto {
				fmt.Println("  mode: auto-detect")
			} else {
				fmt.Printf("  mode: %s\n", cfg.Host)
			}

			fmt.Println(TitleStyle.Render("Resolution"))
			fmt.Printf("  project_markers: %s\n", strings.Join(cfg.ProjectMarkers, ", "))
			fmt.Printf("  cache size:      %d\n", cfg.Cache.Size)
			if cfg.Cache.PersistPath != "" {
				fmt.Printf("  cache persist:   %s\n", cfg.Cache.PersistPath)
			}

			fmt.Println(TitleStyle.Render("Log"))
			fmt.Printf("  level: %s\n", cfg.Log.Level)
			return nil
		},
	}

	configInitCmd = &cobra.Command{
		Use:   "init",
		Short: "Create default configuration file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.CreateDefaultConfig(); err != nil {
				return err
			}
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			path := filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
			fmt.Println(SuccessStyle.Render("Configuration ready at ") + LocationStyle.Render(path))
			return nil
		},
	}

	configCheckCmd = &cobra.Command{
		Use:   "check [file]",
		Short: "Validate a configuration file",
		Long: `Validate a configuration file against the schema without loading it.

Without an argument, checks the default configuration file.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var path string
			switch {
			case len(args) == 1:
				path = args[0]
			case cfgFile != "":
				path = cfgFile
			default:
				cfgDir, err := config.ConfigDir()
				if err != nil {
					return err
				}
				path = filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt)
			}

			if _, err := config.ValidateFile(path); err != nil {
				return err
			}
			fmt.Println(SuccessStyle.Render("Configuration valid: ") + LocationStyle.Render(path))
			return nil
		},
	}

	configPathCmd = &cobra.Command{
		Use:   "path",
		Short: "Show configuration file path",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfgDir, err := config.ConfigDir()
			if err != nil {
				return err
			}
			fmt.Println(filepath.Join(cfgDir, config.ConfigFileName+"."+config.ConfigFileExt))
			return nil
		},
	}

	configDumpCmd = &cobra.Command{
		Use:   "dump",
		Short: "Output raw configuration as CUE",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, _, err := config.LoadWithPath(cmd.Context(), config.LoadOptions{ConfigFilePath: cfgFile})
			if err != nil {
				return err
			}
			fmt.Print(config.GenerateCUE(cfg))
			return nil
		},
	}
)

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configCheckCmd)
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configDumpCmd)
}

// patternList renders a glob list, substituting a placeholder when the
// list is empty.
func patternList(patterns []string, empty string) string {
	if len(patterns) == 0 {
		return empty
	}
	return strings.Join(patterns, ", ")
}
