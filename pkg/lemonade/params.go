package lemonade

import "time"

var (
	LemonadeAPIHosts = []string{"127.0.0.1", "localhost"}
	LemonadeAPIPorts = []int{8000, 8020, 8040, 8060, 8080, 9000}
)

const (
	LemonadeGoVersion      = "0.3.0"
	DefaultBaseURL         = "http://localhost:8000"
	LemonadeAPIPrefix      = "/api/v1"
	ModelsEndpoint         = LemonadeAPIPrefix + "/models"
	ChatCompletionEndpoint = LemonadeAPIPrefix + "/chat/completions"
	EmbeddingsEndpoint     = LemonadeAPIPrefix + "/embeddings"
	LoadModelEndpoint      = LemonadeAPIPrefix + "/load_model"
	UnloadModelEndpoint    = LemonadeAPIPrefix + "/unload_model"
	CurrentModelEndpoint   = LemonadeAPIPrefix + "/current_model"
	ModelEndpoint          = LemonadeAPIPrefix + "/model"
	StatusEndpoint         = LemonadeAPIPrefix + "/status"
	LocalPathScheme        = "lemonade://"
	ProviderName           = "Lemonade"
	BackendName            = "lemonade"
	RequestIDHeader        = "X-Request-ID"
)

// Per-call time budgets.
const (
	PortProbeTimeout    = 500 * time.Millisecond
	VerifyServerTimeout = 2 * time.Second
	ActiveModelTimeout  = 5 * time.Second
	ListModelsTimeout   = 10 * time.Second
	SendRequestTimeout  = 30 * time.Second
)
