package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Junheng-Zheng/Junbot/config"
)

func configCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or initialize configuration",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "init [path]",
		Short: "Write a default config.yaml",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := "config.yaml"
			if len(args) == 1 {
				path = args[0]
			}
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("%s already exists", path)
			}
			if err := config.Default().Save(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s\n", path)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.GetConfig()
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Provider:  %s\n", cfg.LLM.Provider)
			fmt.Fprintf(out, "Model:     %s\n", cfg.LLM.Model)
			fmt.Fprintf(out, "API URL:   %s\n", valueOrDefault(cfg.LLM.APIURL, "(provider default)"))
			fmt.Fprintf(out, "API Key:   %s\n", keyStatus(cfg.LLM.APIKey))
			fmt.Fprintf(out, "Database:  %s %s\n", cfg.Database.Type, cfg.Database.DSN)
			fmt.Fprintf(out, "Prompt:    %s\n", valueOrDefault(cfg.Prompt.SystemFile, "(none)"))
			return nil
		},
	})

	return cmd
}

func valueOrDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func keyStatus(key string) string {
	if key == "" {
		return "not set"
	}
	return "set"
}
