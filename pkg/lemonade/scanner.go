package lemonade

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"time"
)

// Scanner probes candidate host/port pairs for a running Lemonade server.
// Each candidate gets a cheap TCP connect first; only open ports are asked
// for their model list, so closed ports never cost an HTTP timeout.
type Scanner struct {
	Hosts         []string
	Ports         []int
	DialTimeout   time.Duration
	VerifyTimeout time.Duration

	logger  Logger
	session *Session
}

// NewScanner creates a scanner over the default Lemonade hosts and ports.
func NewScanner(logger Logger) *Scanner {
	if logger == nil {
		logger = NewLogger(LogLevelError)
	}
	return newScanner(NewSession(logger), logger)
}

func newScanner(session *Session, logger Logger) *Scanner {
	return &Scanner{
		Hosts:         append([]string(nil), LemonadeAPIHosts...),
		Ports:         append([]int(nil), LemonadeAPIPorts...),
		DialTimeout:   PortProbeTimeout,
		VerifyTimeout: VerifyServerTimeout,
		logger:        logger,
		session:       session,
	}
}

// Close releases the scanner's HTTP session.
func (s *Scanner) Close() {
	s.session.Close()
}

// IsPortOpen reports whether a TCP connection to host:port succeeds within timeout.
func IsPortOpen(host string, port int, timeout time.Duration) bool {
	return dialPort(context.Background(), host, port, timeout)
}

func dialPort(ctx context.Context, host string, port int, timeout time.Duration) bool {
	if timeout <= 0 {
		timeout = PortProbeTimeout
	}
	dialer := net.Dialer{Timeout: timeout}
	conn, err := dialer.DialContext(ctx, "tcp", net.JoinHostPort(host, strconv.Itoa(port)))
	if err != nil {
		return false
	}
	conn.Close()
	return true
}

// IsPortOpen reports whether host:port accepts TCP connections within the scanner's dial timeout.
func (s *Scanner) IsPortOpen(ctx context.Context, host string, port int) bool {
	return dialPort(ctx, host, port, s.DialTimeout)
}

// VerifyServer checks that host:port answers GET /api/v1/models with a 200
// and a body shaped like a Lemonade model list.
func (s *Scanner) VerifyServer(ctx context.Context, port int, host string) bool {
	if host == "" {
		host = LemonadeAPIHosts[0]
	}
	url := fmt.Sprintf("%s%s", Endpoint{Host: host, Port: port}.URL(), ModelsEndpoint)

	body, err := s.session.getJSON(ctx, url, s.VerifyTimeout)
	if err != nil {
		s.logger.Debug("No Lemonade server at %s: %v", url, err)
		return false
	}

	switch v := body.(type) {
	case map[string]any:
		if _, ok := v["data"]; ok {
			s.logger.Debug("Successfully verified Lemonade server at %s", url)
			return true
		}
	case []any:
		s.logger.Debug("Successfully verified Lemonade server at %s", url)
		return true
	}

	s.logger.Debug("Response from %s does not look like a Lemonade model list", url)
	return false
}

func (s *Scanner) probe(ctx context.Context, host string, port int) bool {
	s.logger.Debug("Probing %s", Endpoint{Host: host, Port: port})
	if !s.IsPortOpen(ctx, host, port) {
		return false
	}
	return s.VerifyServer(ctx, port, host)
}

// FindAvailablePort returns the first port, in the given order, on which a
// Lemonade server answers. An empty host means 127.0.0.1 and a nil ports
// slice means the scanner's candidate ports.
func (s *Scanner) FindAvailablePort(ctx context.Context, host string, ports []int) (int, bool) {
	if host == "" {
		host = LemonadeAPIHosts[0]
	}
	if ports == nil {
		ports = s.Ports
	}

	for _, port := range ports {
		if s.probe(ctx, host, port) {
			s.logger.Debug("Lemonade server found on port %d", port)
			return port, true
		}
	}
	return 0, false
}

// ScanHosts probes every host/port combination and returns all endpoints
// with a Lemonade server, host-major then port order.
func (s *Scanner) ScanHosts(ctx context.Context, hosts []string, ports []int) []Endpoint {
	if hosts == nil {
		hosts = s.Hosts
	}
	if ports == nil {
		ports = s.Ports
	}

	found := []Endpoint{}
	for _, candidate := range candidateEndpoints(hosts, ports) {
		if s.probe(ctx, candidate.Host, candidate.Port) {
			s.logger.Info("Lemonade server found at %s", candidate)
			found = append(found, candidate)
		}
	}
	return found
}

func candidateEndpoints(hosts []string, ports []int) []Endpoint {
	endpoints := make([]Endpoint, 0, len(hosts)*len(ports))
	for _, host := range hosts {
		for _, port := range ports {
			endpoints = append(endpoints, Endpoint{Host: host, Port: port})
		}
	}
	return endpoints
}

// InterfaceHosts returns the default loopback hosts followed by the IPv4
// address of every non-loopback network interface.
func InterfaceHosts() ([]string, error) {
	hosts := append([]string{}, LemonadeAPIHosts...)

	netAddrs, err := net.InterfaceAddrs()
	if err != nil {
		return hosts, fmt.Errorf("failed to get network interfaces: %w", err)
	}

	for _, netAddr := range netAddrs {
		if ipnet, ok := netAddr.(*net.IPNet); ok && !ipnet.IP.IsLoopback() && ipnet.IP.To4() != nil {
			hosts = append(hosts, ipnet.IP.String())
		}
	}
	return hosts, nil
}

// FindAvailablePort probes ports on host with a default scanner.
func FindAvailablePort(ctx context.Context, host string, ports []int) (int, bool) {
	s := NewScanner(nil)
	defer s.Close()
	return s.FindAvailablePort(ctx, host, ports)
}

// VerifyServer checks host:port with a default scanner.
func VerifyServer(ctx context.Context, port int, host string) bool {
	s := NewScanner(nil)
	defer s.Close()
	return s.VerifyServer(ctx, port, host)
}

// ScanHosts probes hosts and ports with a default scanner.
func ScanHosts(ctx context.Context, hosts []string, ports []int) []Endpoint {
	s := NewScanner(nil)
	defer s.Close()
	return s.ScanHosts(ctx, hosts, ports)
}
