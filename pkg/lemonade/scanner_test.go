package lemonade

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"
)

// serverPort extracts the TCP port of a test server
func serverPort(t *testing.T, server *httptest.Server) int {
	t.Helper()
	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("Failed to parse server URL: %v", err)
	}
	port, err := strconv.Atoi(u.Port())
	if err != nil {
		t.Fatalf("Failed to parse server port: %v", err)
	}
	return port
}

// closedPort returns a loopback port with no listener behind it
func closedPort(t *testing.T) int {
	t.Helper()
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to reserve port: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()
	return port
}

func jsonServer(body string, status int) *httptest.Server {
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != ModelsEndpoint {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
}

func TestCandidateEndpoints(t *testing.T) {
	endpoints := candidateEndpoints([]string{"a", "b"}, []int{1, 2})
	expected := []Endpoint{{"a", 1}, {"a", 2}, {"b", 1}, {"b", 2}}

	if len(endpoints) != len(expected) {
		t.Fatalf("candidateEndpoints() returned %d endpoints: (%v), want %d (%v)", len(endpoints), endpoints, len(expected), expected)
	}
	for i := range expected {
		if endpoints[i] != expected[i] {
			t.Errorf("candidateEndpoints()[%d] = %v, want %v", i, endpoints[i], expected[i])
		}
	}
}

func TestIsPortOpen(t *testing.T) {
	server := jsonServer(`{"data":[]}`, http.StatusOK)
	defer server.Close()

	if !IsPortOpen("127.0.0.1", serverPort(t, server), PortProbeTimeout) {
		t.Error("IsPortOpen() = false for a listening port")
	}

	start := time.Now()
	if IsPortOpen("127.0.0.1", closedPort(t), PortProbeTimeout) {
		t.Error("IsPortOpen() = true for a port without listener")
	}
	if elapsed := time.Since(start); elapsed > 2*PortProbeTimeout {
		t.Errorf("IsPortOpen() took %v for a closed port, budget is %v", elapsed, PortProbeTimeout)
	}
}

func TestVerifyServer(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		status   int
		expected bool
	}{
		{name: "data key", body: `{"data": []}`, status: http.StatusOK, expected: true},
		{name: "bare list", body: `[]`, status: http.StatusOK, expected: true},
		{name: "unrelated object", body: `{"foo": 1}`, status: http.StatusOK, expected: false},
		{name: "not json", body: `<html></html>`, status: http.StatusOK, expected: false},
		{name: "error status", body: `{"data": []}`, status: http.StatusInternalServerError, expected: false},
	}

	scanner := NewScanner(newMockLogger())
	defer scanner.Close()

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := jsonServer(tt.body, tt.status)
			defer server.Close()

			result := scanner.VerifyServer(context.Background(), serverPort(t, server), "127.0.0.1")
			if result != tt.expected {
				t.Errorf("VerifyServer() = %v, want %v", result, tt.expected)
			}
		})
	}

	t.Run("unreachable", func(t *testing.T) {
		if scanner.VerifyServer(context.Background(), closedPort(t), "127.0.0.1") {
			t.Error("VerifyServer() = true for a closed port")
		}
	})
}

func TestFindAvailablePortOrder(t *testing.T) {
	// The first port is open but does not answer like Lemonade
	impostor := jsonServer(`{"foo": 1}`, http.StatusOK)
	defer impostor.Close()
	lemonade := jsonServer(`{"object": "list", "data": []}`, http.StatusOK)
	defer lemonade.Close()

	p1, p2 := serverPort(t, impostor), serverPort(t, lemonade)

	logger := newMockLogger()
	scanner := NewScanner(logger)
	defer scanner.Close()

	port, ok := scanner.FindAvailablePort(context.Background(), "127.0.0.1", []int{p1, p2})
	if !ok || port != p2 {
		t.Fatalf("FindAvailablePort() = (%d, %v), want (%d, true)", port, ok, p2)
	}

	probes := logger.messagesContaining("Probing")
	if len(probes) != 2 {
		t.Fatalf("Expected 2 probes, got %d: %v", len(probes), probes)
	}
	if !strings.Contains(probes[0], strconv.Itoa(p1)) || !strings.Contains(probes[1], strconv.Itoa(p2)) {
		t.Errorf("Expected port %d to be probed before %d, got %v", p1, p2, probes)
	}
}

func TestFindAvailablePortEmpty(t *testing.T) {
	logger := newMockLogger()
	scanner := NewScanner(logger)
	defer scanner.Close()

	port, ok := scanner.FindAvailablePort(context.Background(), "127.0.0.1", []int{})
	if ok {
		t.Errorf("FindAvailablePort() = (%d, true) for an empty port list", port)
	}
	if probes := logger.messagesContaining("Probing"); len(probes) != 0 {
		t.Errorf("Expected no probes for an empty port list, got %v", probes)
	}
}

func TestFindAvailablePortNoneFound(t *testing.T) {
	port, ok := FindAvailablePort(context.Background(), "127.0.0.1", []int{closedPort(t)})
	if ok {
		t.Errorf("FindAvailablePort() = (%d, true), want not found", port)
	}
}

func TestScanHosts(t *testing.T) {
	lemonade := jsonServer(`[]`, http.StatusOK)
	defer lemonade.Close()

	live, dead := serverPort(t, lemonade), closedPort(t)

	scanner := NewScanner(newMockLogger())
	defer scanner.Close()

	found := scanner.ScanHosts(context.Background(), []string{"127.0.0.1", "localhost"}, []int{dead, live})

	if len(found) == 0 || found[0] != (Endpoint{Host: "127.0.0.1", Port: live}) {
		t.Fatalf("ScanHosts() = %v, want 127.0.0.1:%d first", found, live)
	}
	for _, e := range found {
		if e.Port == dead {
			t.Errorf("ScanHosts() reported closed port %d", dead)
		}
	}
	// localhost may resolve to ::1 only, so it is not required to match
	if len(found) > 2 {
		t.Errorf("ScanHosts() returned %d endpoints, want at most 2", len(found))
	}
}

func TestEndpointURL(t *testing.T) {
	e := Endpoint{Host: "127.0.0.1", Port: 8000}
	if e.URL() != "http://127.0.0.1:8000" {
		t.Errorf("Endpoint.URL() = %s", e.URL())
	}
}

func TestScannerCopiesDefaultCandidates(t *testing.T) {
	scanner := NewScanner(newMockLogger())
	defer scanner.Close()

	wantHosts := append([]string(nil), LemonadeAPIHosts...)
	wantPorts := append([]int(nil), LemonadeAPIPorts...)

	scanner.Hosts[0] = "mutated"
	scanner.Ports[0] = 1

	if LemonadeAPIHosts[0] != wantHosts[0] {
		t.Errorf("LemonadeAPIHosts changed through a scanner: %v", LemonadeAPIHosts)
	}
	if LemonadeAPIPorts[0] != wantPorts[0] {
		t.Errorf("LemonadeAPIPorts changed through a scanner: %v", LemonadeAPIPorts)
	}
}
