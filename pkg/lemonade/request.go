package lemonade

// chatOptionalParams are copied into chat payloads only when set to a non-nil value.
var chatOptionalParams = []string{
	"temperature", "top_p", "top_k", "max_tokens", "stop",
	"presence_penalty", "frequency_penalty", "repetition_penalty",
}

// BuildChatPayload assembles a chat-completion request body.
//
// The body always carries model, messages and stream (false unless opts sets
// "stream", whose value is forwarded as given). Whitelisted sampling parameters are included only when
// present in opts with a non-nil value, and a server-specific "options" entry
// is passed through verbatim.
func BuildChatPayload(model string, messages []ChatMessage, opts Options) Payload {
	if messages == nil {
		messages = []ChatMessage{}
	}

	payload := Payload{
		"model":    model,
		"messages": messages,
		"stream":   false,
	}
	if v, ok := opts["stream"]; ok {
		payload["stream"] = v
	}

	for _, param := range chatOptionalParams {
		if v, ok := opts[param]; ok && v != nil {
			payload[param] = v
		}
	}

	if v, ok := opts["options"]; ok {
		payload["options"] = v
	}

	return payload
}

// BuildModelLoadPayload returns {"model": modelName} extended with every entry of opts.
func BuildModelLoadPayload(modelName string, opts Options) Payload {
	payload := Payload{"model": modelName}
	for k, v := range opts {
		payload[k] = v
	}
	return payload
}

// BuildEmbeddingPayload returns {"input": input, "model": model} extended with every entry of opts.
func BuildEmbeddingPayload(input string, model string, opts Options) Payload {
	payload := Payload{
		"input": input,
		"model": model,
	}
	for k, v := range opts {
		payload[k] = v
	}
	return payload
}
