package lemonade

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

// Session is a reusable HTTP transport to a Lemonade server. It is safe to
// reuse across serial calls; Close releases its idle connections.
type Session struct {
	http       *resty.Client
	logger     Logger
	closeCount int // read by tests to check temporary sessions are closed once
}

// restyLogger routes resty's internal warnings through the session logger
type restyLogger struct {
	Logger
}

func (r restyLogger) Errorf(format string, v ...interface{}) { r.Error(format, v...) }
func (r restyLogger) Warnf(format string, v ...interface{})  { r.Warn(format, v...) }
func (r restyLogger) Debugf(format string, v ...interface{}) { r.Debug(format, v...) }

// NewSession creates a session with the package's default headers.
func NewSession(logger Logger) *Session {
	if logger == nil {
		logger = NewLogger(LogLevelError)
	}
	client := resty.New().
		SetHeader("User-Agent", "lemonade-go/"+LemonadeGoVersion).
		SetHeader("Accept", "application/json").
		SetTimeout(SendRequestTimeout).
		SetLogger(restyLogger{logger})
	return &Session{
		http:   client,
		logger: logger,
	}
}

// newSession is swapped out in tests to observe temporary sessions.
var newSession = NewSession

// Close releases idle connections held by the session.
func (s *Session) Close() {
	s.http.GetClient().CloseIdleConnections()
	s.closeCount++
}

// SendRequest POSTs payload as JSON to url. A nil headers map sends
// Content-Type: application/json. When session is nil a temporary session
// is created for this call and closed before returning.
func SendRequest(ctx context.Context, url string, payload Payload, headers map[string]string, session *Session) Response {
	if session == nil {
		session = newSession(nil)
		defer session.Close()
	}
	return session.Post(ctx, url, payload, headers)
}

// Post sends payload as a JSON body and decodes the JSON reply. Failures are
// logged and returned as {"error": "<kind>: <details>"}.
func (s *Session) Post(ctx context.Context, url string, payload Payload, headers map[string]string) Response {
	if headers == nil {
		headers = map[string]string{"Content-Type": "application/json"}
	}
	if payload == nil {
		payload = Payload{}
	}

	ctx, cancel := context.WithTimeout(ctx, SendRequestTimeout)
	defer cancel()

	requestID := uuid.NewString()
	ctx, span := startSpan(ctx, "lemonade.post", http.MethodPost, url, requestID)

	s.logger.Debug("POST %s (request %s)", url, requestID)
	resp, err := s.http.R().
		SetContext(ctx).
		SetHeaders(headers).
		SetHeader(RequestIDHeader, requestID).
		SetBody(payload).
		Post(url)
	if err != nil {
		reqErr := &RequestError{Kind: ErrorKindRequest, URL: url, Cause: err}
		s.logger.Error("Error in request to %s: %v", url, err)
		endSpan(span, 0, reqErr)
		return errorResponse(reqErr)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		reqErr := &RequestError{
			Kind:       ErrorKindHTTP,
			URL:        url,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
			Cause:      fmt.Errorf("%s for url %s", resp.Status(), url),
		}
		s.logger.Error("HTTP error in request to %s: %v", url, reqErr.Cause)
		if reqErr.Body != "" {
			s.logger.Error("Response body: %s", reqErr.Body)
		}
		endSpan(span, resp.StatusCode(), reqErr)
		return errorResponse(reqErr)
	}

	decoded, err := decodeResponse(resp.Body())
	if err != nil {
		reqErr := &RequestError{Kind: ErrorKindJSONDecode, URL: url, StatusCode: resp.StatusCode(), Cause: err}
		s.logger.Error("Error parsing response from %s: %v", url, err)
		endSpan(span, resp.StatusCode(), reqErr)
		return errorResponse(reqErr)
	}

	s.logger.Trace("Raw response from %s: %s", url, resp.String())
	endSpan(span, resp.StatusCode(), nil)
	return decoded
}

// getJSON issues a GET bounded by timeout and decodes the body into any.
// Any status other than 200 is reported as an HTTP error.
func (s *Session) getJSON(ctx context.Context, url string, timeout time.Duration) (any, error) {
	return s.get(ctx, url, timeout, func(status int) bool { return status == http.StatusOK })
}

// getJSONSuccess is getJSON accepting any 2xx status.
func (s *Session) getJSONSuccess(ctx context.Context, url string, timeout time.Duration) (any, error) {
	return s.get(ctx, url, timeout, func(status int) bool { return status >= 200 && status < 300 })
}

func (s *Session) get(ctx context.Context, url string, timeout time.Duration, accept func(int) bool) (any, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	requestID := uuid.NewString()
	ctx, span := startSpan(ctx, "lemonade.get", http.MethodGet, url, requestID)

	resp, err := s.http.R().
		SetContext(ctx).
		SetHeader(RequestIDHeader, requestID).
		Get(url)
	if err != nil {
		reqErr := &RequestError{Kind: ErrorKindRequest, URL: url, Cause: err}
		endSpan(span, 0, reqErr)
		return nil, reqErr
	}

	if !accept(resp.StatusCode()) {
		reqErr := &RequestError{
			Kind:       ErrorKindHTTP,
			URL:        url,
			StatusCode: resp.StatusCode(),
			Body:       resp.String(),
			Cause:      fmt.Errorf("%s for url %s", resp.Status(), url),
		}
		endSpan(span, resp.StatusCode(), reqErr)
		return nil, reqErr
	}

	var decoded any
	if err := json.Unmarshal(resp.Body(), &decoded); err != nil {
		reqErr := &RequestError{Kind: ErrorKindJSONDecode, URL: url, StatusCode: resp.StatusCode(), Cause: err}
		endSpan(span, resp.StatusCode(), reqErr)
		return nil, reqErr
	}

	endSpan(span, resp.StatusCode(), nil)
	return decoded, nil
}

func decodeResponse(body []byte) (Response, error) {
	var decoded any
	if err := json.Unmarshal(body, &decoded); err != nil {
		return nil, err
	}
	if obj, ok := decoded.(map[string]any); ok {
		return Response(obj), nil
	}
	return Response{"data": decoded}, nil
}
