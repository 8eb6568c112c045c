package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"k8s.io/klog/v2"

	"github.com/Junheng-Zheng/Junbot/config"
	"github.com/Junheng-Zheng/Junbot/internal/app"
)

var Version = "dev"

func main() {
	klog.InitFlags(nil)
	defer klog.Flush()

	rootCmd := &cobra.Command{
		Use:     "junbot",
		Short:   "Junbot - chat-driven task list",
		Version: Version,
	}
	rootCmd.PersistentFlags().AddGoFlagSet(flag.CommandLine)

	rootCmd.AddCommand(chatCmd())
	rootCmd.AddCommand(tasksCmd())
	rootCmd.AddCommand(historyCmd())
	rootCmd.AddCommand(configCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func loadApp() (*app.App, error) {
	return app.New(config.GetConfig())
}
