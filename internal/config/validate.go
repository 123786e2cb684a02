package config

import (
	"errors"
	"fmt"
	"net/url"
)

var validLogLevels = map[string]bool{
	"error": true, "warn": true, "warning": true, "info": true, "debug": true, "trace": true,
}

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level %q must be one of error, warn, info, debug, trace", c.Logging.Level)
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return errors.New("chat.temperature must be between 0 and 2")
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.BaseURL != "" {
		u, err := url.Parse(c.Server.BaseURL)
		if err != nil {
			return fmt.Errorf("server.base_url: %w", err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("server.base_url %q must use http or https", c.Server.BaseURL)
		}
		if u.Host == "" {
			return fmt.Errorf("server.base_url %q has no host", c.Server.BaseURL)
		}
	}
	if len(c.Server.Hosts) == 0 {
		return errors.New("server.hosts must list at least one host")
	}
	if len(c.Server.Ports) == 0 {
		return errors.New("server.ports must list at least one port")
	}
	for _, port := range c.Server.Ports {
		if port < 1 || port > 65535 {
			return fmt.Errorf("server.ports: %d is not a valid TCP port", port)
		}
	}
	return nil
}
