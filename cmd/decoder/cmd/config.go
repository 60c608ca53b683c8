package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/lugondev/solana-decoder/internal/config"
)

var configOutPath string

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage decoder configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default .decoder.yaml config file",
	Long: `init writes the decoder's default configuration (RPC endpoint, log
format, and a disabled Postgres sink) to a YAML file so it can be edited in
place instead of built up from flags and environment variables.`,
	RunE: runConfigInit,
}

func init() {
	configInitCmd.Flags().StringVar(&configOutPath, "out", ".decoder.yaml", "path to write the config file to")
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	if _, err := os.Stat(configOutPath); err == nil {
		return fmt.Errorf("refusing to overwrite existing file %s", configOutPath)
	}

	data, err := yaml.Marshal(config.DefaultConfig())
	if err != nil {
		return fmt.Errorf("failed to marshal default config: %w", err)
	}

	if dir := filepath.Dir(configOutPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}

	if err := os.WriteFile(configOutPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", configOutPath, err)
	}

	fmt.Fprintf(os.Stdout, "wrote default config to %s\n", configOutPath)
	return nil
}
