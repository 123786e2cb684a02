package main

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/hypernetix/lemonade-go/pkg/lemonade"
)

func newModelsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the models the server can run",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(client *lemonade.LemonadeClient) error {
				models := client.ListModels(cmd.Context())
				if ctx.jsonOutput() {
					return writeJSON(cmd, models)
				}
				printModels(cmd, models)
				return nil
			})
		},
	}
}

// printModels prints models as a table
func printModels(cmd *cobra.Command, models []lemonade.Model) {
	out := cmd.OutOrStdout()
	if len(models) == 0 {
		fmt.Fprintln(out, "No models found")
		return
	}

	rows := make([][]string, 0, len(models))
	for _, model := range models {
		rows = append(rows, []string{
			model.Name,
			orNA(model.Recipe),
			orNA(model.OwnedBy),
			formatCreated(model.Created),
			truncateString(orNA(model.Checkpoint), 60),
		})
	}
	renderRows(out, []string{"Name", "Recipe", "Owner", "Created", "Checkpoint"}, rows, nil)
}

func formatCreated(created int64) string {
	if created == 0 {
		return "N/A"
	}
	return time.Unix(created, 0).UTC().Format("2006-01-02")
}

func orNA(s string) string {
	if s == "" {
		return "N/A"
	}
	return s
}

func newLoadCommand(ctx *commandContext) *cobra.Command {
	var ctxSize int

	cmd := &cobra.Command{
		Use:   "load <model>",
		Short: "Load a model on the server",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			model := lemonade.SanitizeModelName(args[0])
			if model == "" {
				return errors.New("please provide a valid model name, run `lemonade-go models` to see available models")
			}

			opts := lemonade.Options{}
			if ctxSize > 0 {
				opts["ctx_size"] = ctxSize
			}

			return ctx.withClient(cmd, func(client *lemonade.LemonadeClient) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Loading model %q ...\n", model)
				resp := client.LoadModel(cmd.Context(), model, opts)
				if msg, failed := resp.ErrorMessage(); failed {
					return fmt.Errorf("failed to load model: %s", msg)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Model %s loaded successfully\n", model)
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&ctxSize, "ctx-size", 0, "Context size to load the model with (server default when 0)")
	return cmd
}

func newUnloadCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "unload",
		Short: "Unload the server's current model",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(client *lemonade.LemonadeClient) error {
				resp := client.UnloadModel(cmd.Context())
				if msg, failed := resp.ErrorMessage(); failed {
					if strings.Contains(msg, "404") {
						fmt.Fprintln(cmd.OutOrStdout(), "No model is currently loaded. No action needed.")
						return nil
					}
					return fmt.Errorf("failed to unload model: %s", msg)
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Model unloaded successfully")
				return nil
			})
		},
	}
}
