package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hypernetix/lemonade-go/pkg/lemonade"
)

type chatFlags struct {
	model       string
	prompt      string
	system      string
	temperature float64
	maxTokens   int
}

func newChatCommand(ctx *commandContext) *cobra.Command {
	flags := &chatFlags{}

	cmd := &cobra.Command{
		Use:   "chat [prompt]",
		Short: "Send a prompt to a model",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			prompt := flags.prompt
			if prompt == "" {
				prompt = strings.Join(args, " ")
			}
			if strings.TrimSpace(prompt) == "" {
				return errors.New("a prompt is required: pass --prompt or the prompt text as arguments")
			}

			system := flags.system
			if !cmd.Flags().Changed("system") {
				system = cfg.Chat.SystemPrompt
			}
			temperature := flags.temperature
			if !cmd.Flags().Changed("temp") {
				temperature = cfg.Chat.Temperature
			}

			raw := []map[string]any{}
			if system != "" {
				raw = append(raw, map[string]any{"role": "system", "content": system})
			}
			raw = append(raw, map[string]any{"content": prompt})
			messages := lemonade.FormatMessages(raw)

			opts := lemonade.Options{"temperature": temperature}
			if flags.maxTokens > 0 {
				opts["max_tokens"] = flags.maxTokens
			}

			return ctx.withClient(cmd, func(client *lemonade.LemonadeClient) error {
				model := lemonade.SanitizeModelName(flags.model)
				if model == "" {
					model = cfg.Chat.Model
				}
				if model == "" {
					current, ok := client.GetCurrentModel(cmd.Context())
					if !ok {
						return errors.New("no model specified and none is active, load one with `lemonade-go load <model>`")
					}
					model = current
					if !ctx.jsonOutput() {
						fmt.Fprintf(cmd.OutOrStdout(), "No model specified, using active model: %s\n", model)
					}
				}

				resp := client.ChatCompletion(cmd.Context(), model, messages, opts)
				if msg, failed := resp.ErrorMessage(); failed {
					return fmt.Errorf("failed to send prompt: %s", msg)
				}
				if !lemonade.ValidateResponse(resp) {
					return fmt.Errorf("unexpected chat response from %s", client.BaseURL())
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, lemonade.ExtractModelInfo(resp))
				}

				content, ok := chatContent(resp)
				if !ok {
					return errors.New("chat response carries no message content")
				}
				fmt.Fprintln(cmd.OutOrStdout(), content)
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&flags.model, "model", "", "Model to use (default: configured model, then the active model)")
	cmd.Flags().StringVar(&flags.prompt, "prompt", "", "Prompt text")
	cmd.Flags().StringVar(&flags.system, "system", "", "System prompt")
	cmd.Flags().Float64Var(&flags.temperature, "temp", 0.7, "Temperature for sampling")
	cmd.Flags().IntVar(&flags.maxTokens, "max-tokens", 0, "Maximum tokens to generate (server default when 0)")
	return cmd
}

// chatContent returns the message content of the first choice.
func chatContent(resp lemonade.Response) (string, bool) {
	choices, ok := resp["choices"].([]any)
	if !ok || len(choices) == 0 {
		return "", false
	}
	choice, ok := choices[0].(map[string]any)
	if !ok {
		return "", false
	}
	if message, ok := choice["message"].(map[string]any); ok {
		content, ok := message["content"].(string)
		return content, ok
	}
	text, ok := choice["text"].(string)
	return text, ok
}

func newEmbedCommand(ctx *commandContext) *cobra.Command {
	var model string

	cmd := &cobra.Command{
		Use:   "embed <text>",
		Short: "Compute an embedding of text",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if model == "" {
				return errors.New("--model is required")
			}
			input := strings.Join(args, " ")

			return ctx.withClient(cmd, func(client *lemonade.LemonadeClient) error {
				resp := client.Embeddings(cmd.Context(), input, lemonade.SanitizeModelName(model), nil)
				if msg, failed := resp.ErrorMessage(); failed {
					return fmt.Errorf("failed to compute embedding: %s", msg)
				}
				if !lemonade.ValidateResponse(resp) {
					return fmt.Errorf("unexpected embedding response from %s", client.BaseURL())
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, resp)
				}

				data, _ := resp["data"].([]any)
				for _, entry := range data {
					item, _ := entry.(map[string]any)
					vector, _ := item["embedding"].([]any)
					fmt.Fprintf(cmd.OutOrStdout(), "Embedding %v: %d dimensions\n", item["index"], len(vector))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&model, "model", "", "Embedding model to use")
	return cmd
}
