package config

import "strings"

func (c *Config) normalize() {
	c.Server.BaseURL = strings.TrimRight(strings.TrimSpace(c.Server.BaseURL), "/")

	hosts := make([]string, 0, len(c.Server.Hosts))
	for _, host := range c.Server.Hosts {
		if host = strings.TrimSpace(host); host != "" {
			hosts = append(hosts, host)
		}
	}
	c.Server.Hosts = hosts

	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}

	c.Chat.Model = strings.TrimSpace(c.Chat.Model)
}
