package lemonade

import (
	"fmt"
	"net"
	"strconv"
)

// Model is the normalized descriptor of a model served by Lemonade
type Model struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Object    string `json:"object"`
	Created   int64  `json:"created"`
	OwnedBy   string `json:"owned_by"`
	Source    string `json:"source"`
	Provider  string `json:"provider"`
	Status    string `json:"status"`
	SizeGB    int    `json:"size_gb"`
	LocalPath string `json:"local_path"`
	Backend   string `json:"backend"`

	// Lemonade-specific metadata, present on recent servers
	Checkpoint string `json:"checkpoint,omitempty"`
	Recipe     string `json:"recipe,omitempty"`
}

// ChatMessage is a single turn of a conversation
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Payload is a JSON request body assembled for a single call
type Payload map[string]any

// Options carries caller-supplied request parameters. A key mapped to nil
// is treated as absent by the chat payload builder.
type Options map[string]any

// Response is a decoded JSON object returned by the server, or an object
// with a single "error" key describing why the call failed.
type Response map[string]any

// ErrorMessage reports the "error" entry of the response, if any.
func (r Response) ErrorMessage() (string, bool) {
	v, ok := r["error"]
	if !ok {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// Endpoint is a host/port pair probed by the scanner
type Endpoint struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func (e Endpoint) String() string {
	return net.JoinHostPort(e.Host, strconv.Itoa(e.Port))
}

// URL returns the http base URL of the endpoint.
func (e Endpoint) URL() string {
	return "http://" + e.String()
}
