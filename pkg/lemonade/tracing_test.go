package lemonade

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.opentelemetry.io/otel/trace"
)

func installRecorder(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(prev)
		provider.Shutdown(context.Background())
	})
	return recorder
}

func spanAttributes(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	attrs := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		attrs[kv.Key] = kv.Value
	}
	return attrs
}

func TestPostRecordsSpan(t *testing.T) {
	recorder := installRecorder(t)

	server := NewMockLemonadeService(t, newMockLogger())
	defer server.Close()

	client := NewLemonadeClient(server.URL, newMockLogger())
	defer client.Close()

	client.LoadModel(context.Background(), mockModel1.ID, nil)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	span := spans[0]

	assert.Equal(t, "lemonade.post", span.Name())
	assert.Equal(t, trace.SpanKindClient, span.SpanKind())
	attrs := spanAttributes(span)
	assert.Equal(t, http.MethodPost, attrs["http.method"].AsString())
	assert.Equal(t, server.URL+LoadModelEndpoint, attrs["http.url"].AsString())
	assert.Equal(t, int64(http.StatusOK), attrs["http.status_code"].AsInt64())
	assert.NotEmpty(t, attrs["lemonade.request_id"].AsString())
	assert.Equal(t, codes.Unset, span.Status().Code)
}

func TestFailedGetRecordsErrorSpan(t *testing.T) {
	recorder := installRecorder(t)

	session := NewSession(newMockLogger())
	defer session.Close()

	url := fmt.Sprintf("http://127.0.0.1:%d%s", closedPort(t), ModelsEndpoint)
	_, err := session.getJSON(context.Background(), url, VerifyServerTimeout)
	require.Error(t, err)

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "lemonade.get", spans[0].Name())
	assert.Equal(t, codes.Error, spans[0].Status().Code)
	assert.Equal(t, err.Error(), spans[0].Status().Description)
	_, hasStatus := spanAttributes(spans[0])["http.status_code"]
	assert.False(t, hasStatus)
	require.NotEmpty(t, spans[0].Events())
	assert.Equal(t, "exception", spans[0].Events()[0].Name)
}
