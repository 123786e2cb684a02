package main

import (
	"github.com/spf13/cobra"
)

func newRootCommand() *cobra.Command {
	flags := &rootFlags{}
	ctx := newCommandContext(flags)

	rootCmd := &cobra.Command{
		Use:           "lemonade-go",
		Short:         "Command-line client for the Lemonade local LLM server",
		SilenceUsage:  true,
		SilenceErrors: true,
		Example: `  lemonade-go status
  lemonade-go models --json
  lemonade-go scan --all-interfaces
  lemonade-go load Qwen2.5-0.5B-Instruct-CPU
  lemonade-go chat --model Qwen2.5-0.5B-Instruct-CPU --prompt "Hello, how are you?" --temp 0.8
  lemonade-go --host 192.168.1.100 --port 8000 models`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if shouldSkipConfig(cmd) {
				return nil
			}
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.config, "config", "c", "", "Configuration file path")
	pf.StringVar(&flags.url, "url", "", "Lemonade server base URL (skips discovery)")
	pf.StringVar(&flags.host, "host", "", "Lemonade server host (default: discover on 127.0.0.1)")
	pf.IntVar(&flags.port, "port", 0, "Lemonade server port (default: discover on the candidate ports)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false, "Enable verbose logging")
	pf.BoolVar(&flags.trace, "vv", false, "Enable trace logging")
	pf.BoolVar(&flags.json, "json", false, "Output results as JSON")

	rootCmd.AddCommand(newStatusCommand(ctx))
	rootCmd.AddCommand(newModelsCommand(ctx))
	rootCmd.AddCommand(newScanCommand(ctx))
	rootCmd.AddCommand(newCurrentCommand(ctx))
	rootCmd.AddCommand(newLoadCommand(ctx))
	rootCmd.AddCommand(newUnloadCommand(ctx))
	rootCmd.AddCommand(newChatCommand(ctx))
	rootCmd.AddCommand(newEmbedCommand(ctx))
	rootCmd.AddCommand(newConfigCommand(ctx))
	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}
