package lemonade

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// activeModelEndpoints are tried in order when resolving the active model.
var activeModelEndpoints = []string{CurrentModelEndpoint, ModelEndpoint, StatusEndpoint}

// activeModelFields are inspected in order on each active-model response.
var activeModelFields = []string{"model", "current_model", "active_model", "name"}

// Discovery lists and resolves models on a Lemonade server
type Discovery struct {
	ListTimeout  time.Duration
	ProbeTimeout time.Duration

	scanner *Scanner
	session *Session
	logger  Logger
	owned   bool
}

// NewDiscovery creates a Discovery with its own HTTP session.
func NewDiscovery(logger Logger) *Discovery {
	if logger == nil {
		logger = NewLogger(LogLevelError)
	}
	d := newDiscovery(NewSession(logger), logger)
	d.owned = true
	return d
}

func newDiscovery(session *Session, logger Logger) *Discovery {
	return &Discovery{
		ListTimeout:  ListModelsTimeout,
		ProbeTimeout: ActiveModelTimeout,
		scanner:      newScanner(session, logger),
		session:      session,
		logger:       logger,
	}
}

// Scanner returns the scanner used to re-probe loopback ports.
func (d *Discovery) Scanner() *Scanner {
	return d.scanner
}

// Close releases the session if the Discovery created it.
func (d *Discovery) Close() {
	if d.owned {
		d.session.Close()
	}
}

// DiscoverModels lists the models served at baseURL as normalized descriptors.
// A loopback baseURL whose port no longer answers is redirected to the first
// candidate port that does. Failures are logged and yield an empty list.
func (d *Discovery) DiscoverModels(ctx context.Context, baseURL string) []Model {
	baseURL = d.resolveBaseURL(ctx, baseURL)

	models, err := d.fetchModels(ctx, baseURL)
	if err != nil {
		d.logger.Error("Error retrieving models from %s: %v", baseURL, err)
		return []Model{}
	}
	return models
}

// resolveBaseURL re-probes the port of a loopback URL and rewrites it when
// the server has moved to another candidate port.
func (d *Discovery) resolveBaseURL(ctx context.Context, baseURL string) string {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	u, err := url.Parse(baseURL)
	if err != nil || !isLoopbackHost(u.Hostname()) || u.Port() == "" {
		return baseURL
	}
	currentPort, err := strconv.Atoi(u.Port())
	if err != nil {
		return baseURL
	}

	host := u.Hostname()
	if _, ok := d.scanner.FindAvailablePort(ctx, host, []int{currentPort}); ok {
		return baseURL
	}

	candidates := make([]int, 0, len(d.scanner.Ports))
	for _, port := range d.scanner.Ports {
		if port != currentPort {
			candidates = append(candidates, port)
		}
	}
	port, ok := d.scanner.FindAvailablePort(ctx, host, candidates)
	if !ok {
		return baseURL
	}

	u.Host = net.JoinHostPort(host, strconv.Itoa(port))
	d.logger.Info("Lemonade server moved from port %d to %d, using %s", currentPort, port, u.String())
	return u.String()
}

func isLoopbackHost(host string) bool {
	if strings.EqualFold(host, "localhost") {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}

// fetchModels queries baseURL exactly as given, without re-probing.
func (d *Discovery) fetchModels(ctx context.Context, baseURL string) ([]Model, error) {
	modelsURL := strings.TrimRight(baseURL, "/") + ModelsEndpoint

	body, err := d.session.getJSONSuccess(ctx, modelsURL, d.ListTimeout)
	if err != nil {
		return nil, err
	}

	var entries []any
	switch v := body.(type) {
	case map[string]any:
		if data, ok := v["data"].([]any); ok {
			entries = data
		} else if v["data"] != nil {
			return nil, fmt.Errorf("unexpected type %T for data in response from %s", v["data"], modelsURL)
		}
	case []any:
		entries = v
	default:
		return nil, fmt.Errorf("unexpected response type %T from %s", body, modelsURL)
	}

	models := make([]Model, 0, len(entries))
	for _, entry := range entries {
		raw, ok := entry.(map[string]any)
		if !ok {
			d.logger.Debug("Skipping non-object model entry: %v", entry)
			continue
		}
		models = append(models, NewModelFromRaw(raw))
	}

	d.logger.Debug("Discovered %d models at %s", len(models), baseURL)
	return models, nil
}

// NewModelFromRaw normalizes one entry of the server's model list.
// id and name fall back to each other, then to "unknown".
func NewModelFromRaw(raw map[string]any) Model {
	id, hasID := stringField(raw, "id")
	name, hasName := stringField(raw, "name")

	switch {
	case hasID && !hasName:
		name = id
	case hasName && !hasID:
		id = name
	case !hasID && !hasName:
		id, name = "unknown", "unknown"
	}

	object, ok := stringField(raw, "object")
	if !ok {
		object = "model"
	}
	ownedBy, ok := stringField(raw, "owned_by")
	if !ok {
		ownedBy = "unknown"
	}

	var created int64
	switch v := raw["created"].(type) {
	case float64:
		created = int64(v)
	case int64:
		created = v
	case int:
		created = int64(v)
	}

	checkpoint, _ := stringField(raw, "checkpoint")
	recipe, _ := stringField(raw, "recipe")

	return Model{
		ID:         id,
		Name:       name,
		Object:     object,
		Created:    created,
		OwnedBy:    ownedBy,
		Source:     "external",
		Provider:   ProviderName,
		Status:     "Available",
		SizeGB:     0,
		LocalPath:  LocalPathScheme + name,
		Backend:    BackendName,
		Checkpoint: checkpoint,
		Recipe:     recipe,
	}
}

// stringField reports raw[key] as a string when the key is present and non-null.
func stringField(raw map[string]any, key string) (string, bool) {
	v, ok := raw[key]
	if !ok || v == nil {
		return "", false
	}
	if s, ok := v.(string); ok {
		return s, true
	}
	return fmt.Sprintf("%v", v), true
}

// GetActiveModel resolves the model the server currently has active. It tries
// the dedicated endpoints in order and falls back to the first discovered model.
func (d *Discovery) GetActiveModel(ctx context.Context, baseURL string) (string, bool) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	base := strings.TrimRight(baseURL, "/")

	for _, endpoint := range activeModelEndpoints {
		body, err := d.session.getJSON(ctx, base+endpoint, d.ProbeTimeout)
		if err != nil {
			d.logger.Debug("Active model probe %s failed: %v", endpoint, err)
			continue
		}
		if name, ok := activeModelFromBody(body); ok {
			d.logger.Debug("Active model %s reported by %s", name, endpoint)
			return name, true
		}
	}

	models := d.DiscoverModels(ctx, baseURL)
	if len(models) > 0 {
		return models[0].Name, true
	}
	return "", false
}

func activeModelFromBody(body any) (string, bool) {
	switch v := body.(type) {
	case string:
		return v, true
	case map[string]any:
		for _, field := range activeModelFields {
			if name, ok := stringField(v, field); ok {
				return name, true
			}
		}
	}
	return "", false
}

// VerifyModelAvailability reports whether modelName matches the name or id
// of a discovered model. Matching is exact and case-sensitive.
func (d *Discovery) VerifyModelAvailability(ctx context.Context, modelName string, baseURL string) bool {
	for _, model := range d.DiscoverModels(ctx, baseURL) {
		if model.Name == modelName || model.ID == modelName {
			return true
		}
	}
	return false
}

// DiscoverModels lists models at baseURL with a temporary Discovery.
func DiscoverModels(ctx context.Context, baseURL string) []Model {
	d := NewDiscovery(nil)
	defer d.Close()
	return d.DiscoverModels(ctx, baseURL)
}

// GetActiveModel resolves the active model at baseURL with a temporary Discovery.
func GetActiveModel(ctx context.Context, baseURL string) (string, bool) {
	d := NewDiscovery(nil)
	defer d.Close()
	return d.GetActiveModel(ctx, baseURL)
}

// VerifyModelAvailability checks modelName at baseURL with a temporary Discovery.
func VerifyModelAvailability(ctx context.Context, modelName string, baseURL string) bool {
	d := NewDiscovery(nil)
	defer d.Close()
	return d.VerifyModelAvailability(ctx, modelName, baseURL)
}
