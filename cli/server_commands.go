package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/hypernetix/lemonade-go/pkg/lemonade"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check if the Lemonade server is running",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(client *lemonade.LemonadeClient) error {
				running, err := client.CheckStatus(cmd.Context())
				if ctx.jsonOutput() {
					status := map[string]any{"url": client.BaseURL(), "running": running}
					if err != nil {
						status["error"] = lemonade.FormatError(err)
					}
					if jsonErr := writeJSON(cmd, status); jsonErr != nil {
						return jsonErr
					}
				}
				if err != nil {
					return fmt.Errorf("Lemonade server status: ERROR - %s", lemonade.FormatError(err))
				}
				if !running {
					return fmt.Errorf("Lemonade server status: NOT RUNNING @ %s", client.BaseURL())
				}
				if !ctx.jsonOutput() {
					fmt.Fprintf(cmd.OutOrStdout(), "Lemonade server status: RUNNING @ %s\n", client.BaseURL())
				}
				return nil
			})
		},
	}
}

func newScanCommand(ctx *commandContext) *cobra.Command {
	var allInterfaces bool

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Probe the candidate hosts and ports for Lemonade servers",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger := ctx.log()

			hosts := cfg.Server.Hosts
			if ctx.flags.host != "" {
				hosts = []string{ctx.flags.host}
			}
			if allInterfaces {
				if hosts, err = lemonade.InterfaceHosts(); err != nil {
					logger.Warn("Listing network interfaces: %v", err)
				}
			}
			ports := cfg.Server.Ports
			if ctx.flags.port != 0 {
				ports = []int{ctx.flags.port}
			}

			scanner := lemonade.NewScanner(logger)
			defer scanner.Close()
			found := scanner.ScanHosts(cmd.Context(), hosts, ports)

			if ctx.jsonOutput() {
				return writeJSON(cmd, found)
			}
			out := cmd.OutOrStdout()
			if len(found) == 0 {
				fmt.Fprintf(out, "No Lemonade servers found on %d hosts and ports %s\n", len(hosts), joinPorts(ports))
				return nil
			}
			rows := make([][]string, 0, len(found))
			for _, endpoint := range found {
				rows = append(rows, []string{endpoint.Host, strconv.Itoa(endpoint.Port), endpoint.URL()})
			}
			renderRows(out, []string{"Host", "Port", "URL"}, rows, []columnAlignment{alignLeft, alignRight, alignLeft})
			return nil
		},
	}

	cmd.Flags().BoolVar(&allInterfaces, "all-interfaces", false, "Also probe the IPv4 address of every network interface")
	return cmd
}

func newCurrentCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the model the server has active",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(cmd, func(client *lemonade.LemonadeClient) error {
				model, ok := client.GetCurrentModel(cmd.Context())
				if !ok {
					return errors.New("no active model reported by the server")
				}
				if ctx.jsonOutput() {
					return writeJSON(cmd, map[string]string{"model": model})
				}
				fmt.Fprintln(cmd.OutOrStdout(), model)
				return nil
			})
		},
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "version",
		Short:       "Show version information",
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "Lemonade Go CLI version: %s\n", lemonade.LemonadeGoVersion)
			return nil
		},
	}
}
