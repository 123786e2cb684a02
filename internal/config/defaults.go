package config

import "github.com/hypernetix/lemonade-go/pkg/lemonade"

const (
	defaultLogLevel    = "warn"
	defaultTemperature = 0.7
)

// Default returns a Config populated with the library's candidate hosts and
// ports. BaseURL stays empty so the CLI discovers the server.
func Default() Config {
	return Config{
		Server: Server{
			Hosts: append([]string(nil), lemonade.LemonadeAPIHosts...),
			Ports: append([]int(nil), lemonade.LemonadeAPIPorts...),
		},
		Logging: Logging{
			Level: defaultLogLevel,
		},
		Chat: Chat{
			Temperature: defaultTemperature,
		},
	}
}
