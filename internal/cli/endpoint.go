package cli

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"flewid/internal/config"
)

// DetectEndpoint returns the streamable HTTP endpoint of a server started
// with cfg.
func DetectEndpoint(cfg config.ServerConfig) string {
	host := cfg.Host
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	port := cfg.Port
	if port == 0 {
		port = config.GetDefaultConfig().Server.Port
	}
	return fmt.Sprintf("http://%s/mcp", net.JoinHostPort(host, fmt.Sprint(port)))
}

// CheckServerRunning verifies that something accepts connections at endpoint.
func CheckServerRunning(endpoint string) error {
	u, err := url.Parse(endpoint)
	if err != nil || u.Host == "" {
		return fmt.Errorf("invalid endpoint %q", endpoint)
	}

	host := u.Host
	if u.Port() == "" {
		port := "80"
		if strings.EqualFold(u.Scheme, "https") {
			port = "443"
		}
		host = net.JoinHostPort(u.Hostname(), port)
	}

	conn, err := net.DialTimeout("tcp", host, 2*time.Second)
	if err != nil {
		return fmt.Errorf("flewid server is not reachable at %s (start it with 'flewid serve'): %w", endpoint, err)
	}
	conn.Close()
	return nil
}
