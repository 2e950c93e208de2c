package utils

import (
	"fmt"
	"net"
	"net/url"
	"time"

	"github.com/gofiber/fiber/v2"
)

// PingService checks if a service is reachable at the given URL
func PingService(serviceURL string, timeout time.Duration) error {
	parsedURL, err := url.Parse(serviceURL)
	if err != nil {
		return fmt.Errorf("invalid URL: %w", err)
	}

	host := parsedURL.Hostname()
	port := parsedURL.Port()

	if port == "" {
		switch parsedURL.Scheme {
		case "https":
			port = "443"
		default:
			port = "80"
		}
	}

	address := net.JoinHostPort(host, port)

	conn, err := net.DialTimeout("tcp", address, timeout)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	defer conn.Close()

	return nil
}

// FetchHealth reaches the service and GETs its health endpoint, returning the status code and body
func FetchHealth(healthURL string, timeout time.Duration) (int, []byte, error) {
	if err := PingService(healthURL, timeout); err != nil {
		return 0, nil, err
	}

	agent := fiber.Get(healthURL).Timeout(timeout)
	if err := agent.Parse(); err != nil {
		return 0, nil, fmt.Errorf("invalid health URL: %w", err)
	}
	status, body, errs := agent.Bytes()
	if len(errs) > 0 {
		return 0, nil, fmt.Errorf("health request failed: %w", errs[0])
	}
	return status, body, nil
}
