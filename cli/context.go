package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/hypernetix/lemonade-go/internal/config"
	"github.com/hypernetix/lemonade-go/pkg/lemonade"
)

type rootFlags struct {
	config  string
	url     string
	host    string
	port    int
	verbose bool
	trace   bool
	json    bool
}

type commandContext struct {
	flags *rootFlags

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     lemonade.Logger
}

func newCommandContext(flags *rootFlags) *commandContext {
	return &commandContext{flags: flags}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(strings.TrimSpace(c.flags.config))
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) jsonOutput() bool {
	return c.flags.json
}

// log returns the CLI logger. The configured level applies unless -v or --vv is set.
func (c *commandContext) log() lemonade.Logger {
	c.loggerOnce.Do(func() {
		level := lemonade.LogLevelWarn
		if c.config != nil {
			level = lemonade.ParseLogLevel(c.config.Logging.Level)
		}
		if c.flags.verbose {
			level = lemonade.LogLevelDebug
		}
		if c.flags.trace {
			level = lemonade.LogLevelTrace
		}
		c.logger = lemonade.NewLogger(level)
	})
	return c.logger
}

// baseURL resolves the server URL from flags, then config, then discovery
// across the configured hosts and ports.
func (c *commandContext) baseURL(ctx context.Context) (string, error) {
	cfg, err := c.ensureConfig()
	if err != nil {
		return "", err
	}
	logger := c.log()

	if url := strings.TrimSpace(c.flags.url); url != "" {
		return strings.TrimRight(url, "/"), nil
	}

	scanner := lemonade.NewScanner(logger)
	defer scanner.Close()

	if c.flags.host != "" || c.flags.port != 0 {
		host := c.flags.host
		if host == "" {
			host = lemonade.LemonadeAPIHosts[0]
		}
		if c.flags.port != 0 {
			return lemonade.Endpoint{Host: host, Port: c.flags.port}.URL(), nil
		}
		logger.Debug("Port not set, probing candidate ports on %s", host)
		port, ok := scanner.FindAvailablePort(ctx, host, cfg.Server.Ports)
		if !ok {
			return "", fmt.Errorf("no Lemonade server found on %s (ports %s), try setting --port", host, joinPorts(cfg.Server.Ports))
		}
		return lemonade.Endpoint{Host: host, Port: port}.URL(), nil
	}

	if cfg.Server.BaseURL != "" {
		return cfg.Server.BaseURL, nil
	}

	logger.Debug("Server URL not set, attempting to discover Lemonade server...")
	for _, host := range cfg.Server.Hosts {
		if port, ok := scanner.FindAvailablePort(ctx, host, cfg.Server.Ports); ok {
			endpoint := lemonade.Endpoint{Host: host, Port: port}
			logger.Debug("Discovered Lemonade server at %s", endpoint)
			return endpoint.URL(), nil
		}
	}
	return "", fmt.Errorf("could not discover Lemonade server on %s (ports %s), try setting --url or --host and --port",
		strings.Join(cfg.Server.Hosts, ", "), joinPorts(cfg.Server.Ports))
}

func (c *commandContext) withClient(cmd *cobra.Command, fn func(*lemonade.LemonadeClient) error) error {
	url, err := c.baseURL(cmd.Context())
	if err != nil {
		return err
	}
	client := lemonade.NewLemonadeClient(url, c.log())
	defer client.Close()
	return fn(client)
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func joinPorts(ports []int) string {
	parts := make([]string, len(ports))
	for i, port := range ports {
		parts[i] = strconv.Itoa(port)
	}
	return strings.Join(parts, ", ")
}
