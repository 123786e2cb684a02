package lemonade

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// LemonadeClient represents a client for a Lemonade server
type LemonadeClient struct {
	logger    Logger
	baseURL   string
	session   *Session
	discovery *Discovery
}

// NewLemonadeClient creates a new Lemonade client. An empty baseURL selects
// http://localhost:8000 and trailing slashes are stripped.
func NewLemonadeClient(baseURL string, logger Logger) *LemonadeClient {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	if logger == nil {
		logger = NewLogger(LogLevelError)
	}
	session := NewSession(logger)
	return &LemonadeClient{
		logger:    logger,
		baseURL:   strings.TrimRight(baseURL, "/"),
		session:   session,
		discovery: newDiscovery(session, logger),
	}
}

// BaseURL returns the server URL the client talks to.
func (c *LemonadeClient) BaseURL() string {
	return c.baseURL
}

// Session returns the client's reusable HTTP session.
func (c *LemonadeClient) Session() *Session {
	return c.session
}

// Discovery returns the model discovery bound to the client's session.
func (c *LemonadeClient) Discovery() *Discovery {
	return c.discovery
}

// Close releases the client's HTTP session
func (c *LemonadeClient) Close() {
	c.session.Close()
}

func (c *LemonadeClient) endpoint(path string) string {
	return c.baseURL + path
}

// guard turns a panic inside fn into an error response.
func (c *LemonadeClient) guard(op string, fn func() Response) (resp Response) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Error in %s request: %v", op, r)
			resp = Response{"error": fmt.Sprintf("%v", r)}
		}
	}()
	return fn()
}

// ListModels lists the models served at the client's base URL, normalized
// the same way as DiscoverModels. Failures are logged and yield an empty list.
func (c *LemonadeClient) ListModels(ctx context.Context) []Model {
	models, err := c.discovery.fetchModels(ctx, c.baseURL)
	if err != nil {
		c.logger.Error("Error retrieving models: %v", err)
		return []Model{}
	}
	return models
}

// ChatCompletion sends a chat-completion request and returns the server's
// reply, or a response whose "error" key describes the failure.
func (c *LemonadeClient) ChatCompletion(ctx context.Context, model string, messages []ChatMessage, opts Options) Response {
	return c.guard("chat completion", func() Response {
		payload := BuildChatPayload(model, messages, opts)
		c.logger.Debug("Sending chat completion to model %s (%d messages)", model, len(messages))
		return c.session.Post(ctx, c.endpoint(ChatCompletionEndpoint), payload, nil)
	})
}

// Embeddings requests an embedding of input from model.
func (c *LemonadeClient) Embeddings(ctx context.Context, input string, model string, opts Options) Response {
	return c.guard("embedding", func() Response {
		payload := BuildEmbeddingPayload(input, model, opts)
		return c.session.Post(ctx, c.endpoint(EmbeddingsEndpoint), payload, nil)
	})
}

// HealthCheck reports whether the model listing path completes. An empty
// model list still counts as healthy since ListModels absorbs connectivity
// failures; use CheckStatus to tell an unreachable server apart.
func (c *LemonadeClient) HealthCheck(ctx context.Context) (healthy bool) {
	defer func() {
		if r := recover(); r != nil {
			c.logger.Error("Health check failed: %v", r)
			healthy = false
		}
	}()

	models := c.ListModels(ctx)
	c.logger.Debug("Health check listed %d models", len(models))
	return true
}

// CheckStatus checks if the Lemonade server is running and answering its API.
// An unreachable server reports (false, nil); a server that answers with an
// error status or an unparseable body reports (false, err).
func (c *LemonadeClient) CheckStatus(ctx context.Context) (bool, error) {
	_, err := c.discovery.fetchModels(ctx, c.baseURL)
	if err == nil {
		return true, nil
	}

	var reqErr *RequestError
	if errors.As(err, &reqErr) && reqErr.Kind == ErrorKindRequest {
		c.logger.Debug("Lemonade server at %s is not reachable: %v", c.baseURL, err)
		return false, nil
	}
	return false, fmt.Errorf("service is running but API is not responding correctly: %w", err)
}

// GetCurrentModel returns the model the server reports as active.
func (c *LemonadeClient) GetCurrentModel(ctx context.Context) (string, bool) {
	return c.discovery.GetActiveModel(ctx, c.baseURL)
}

// IsModelAvailable reports whether modelName is served at the client's base URL.
func (c *LemonadeClient) IsModelAvailable(ctx context.Context, modelName string) bool {
	return c.discovery.VerifyModelAvailability(ctx, modelName, c.baseURL)
}

// LoadModel asks the server to load modelName. opts are merged into the request body.
func (c *LemonadeClient) LoadModel(ctx context.Context, modelName string, opts Options) Response {
	return c.guard("load model", func() Response {
		c.logger.Debug("Sending load_model request for model: %s", modelName)
		return c.session.Post(ctx, c.endpoint(LoadModelEndpoint), BuildModelLoadPayload(modelName, opts), nil)
	})
}

// UnloadModel asks the server to unload its current model.
func (c *LemonadeClient) UnloadModel(ctx context.Context) Response {
	return c.guard("unload model", func() Response {
		c.logger.Debug("Sending unload_model request")
		return c.session.Post(ctx, c.endpoint(UnloadModelEndpoint), Payload{}, nil)
	})
}
