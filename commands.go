package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.aimuz.me/dictation/audiocapture"
	"go.aimuz.me/dictation/config"
	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List audio capture devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		devices, err := audiocapture.Devices()
		if err != nil {
			return fmt.Errorf("list devices: %w", err)
		}
		if len(devices) == 0 {
			return audiocapture.ErrNoDevice
		}
		out := cmd.OutOrStdout()
		for _, d := range devices {
			mark := " "
			if d.Default {
				mark = "*"
			}
			fmt.Fprintf(out, "%s %s\n", mark, d.Name)
		}
		return nil
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect or create the configuration file",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), configPath)
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration with the API key masked",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("no config at %s, run 'dictation config init'", configPath)
		}
		cfg, err := config.LoadFile(configPath)
		if err != nil {
			return err
		}
		return showConfig(cmd, cfg)
	},
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write the default configuration if none exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configPath); err == nil {
			fmt.Fprintf(cmd.OutOrStdout(), "config already exists: %s\n", configPath)
			return nil
		}
		if _, err := config.LoadFile(configPath); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\nadd your Deepgram API key (https://console.deepgram.com/) and run 'dictation'\n", configPath)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configPathCmd, configShowCmd, configInitCmd)
}

func showConfig(cmd *cobra.Command, cfg *config.Config) error {
	out := cmd.OutOrStdout()

	masked := *cfg
	masked.Deepgram.APIKey = maskKey(cfg.APIKey())
	data, err := json.MarshalIndent(masked, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	fmt.Fprintf(out, "# %s\n%s\n", cfg.File(), data)

	if tag, err := language.Parse(cfg.Deepgram.Language); err == nil {
		fmt.Fprintf(out, "language: %s\n", display.English.Tags().Name(tag))
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(out, "warning: %v\n", err)
	}
	return nil
}

func maskKey(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return strings.Repeat("*", len(key))
	}
	return key[:4] + strings.Repeat("*", len(key)-8) + key[len(key)-4:]
}
