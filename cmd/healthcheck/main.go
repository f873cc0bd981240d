// Command healthcheck probes a running passkeep-server and exits non-zero
// unless the vault reports ok. Index entries without a stored record are
// printed as a warning but do not fail the check.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"strings"
	"time"
)

const defaultAddr = "127.0.0.1:8080"

type healthBody struct {
	Status   string   `json:"status"`
	Websites int      `json:"websites"`
	Dangling []string `json:"dangling"`
}

func main() {
	os.Exit(check(normalizeAddr(os.Getenv("PASSKEEP_LISTEN_ADDR")), os.Stderr))
}

func check(addr string, stderr io.Writer) int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, "http://"+addr+"/api/v1/health", nil)
	if err != nil {
		fmt.Fprintf(stderr, "healthcheck: %v\n", err)
		return 1
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		fmt.Fprintf(stderr, "healthcheck: %v\n", err)
		return 1
	}
	defer resp.Body.Close()

	var body healthBody
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		fmt.Fprintf(stderr, "healthcheck: %s returned %d with unreadable body\n", addr, resp.StatusCode)
		return 1
	}
	if resp.StatusCode != http.StatusOK || body.Status != "ok" {
		fmt.Fprintf(stderr, "healthcheck: vault %s (HTTP %d)\n", body.Status, resp.StatusCode)
		return 1
	}
	if len(body.Dangling) > 0 {
		fmt.Fprintf(stderr, "healthcheck: %d of %d indexed websites have no record: %s\n",
			len(body.Dangling), body.Websites, strings.Join(body.Dangling, ", "))
	}
	return 0
}

// normalizeAddr turns the server's listen address into one the probe can
// dial. A wildcard host is replaced with loopback.
func normalizeAddr(raw string) string {
	if raw == "" {
		return defaultAddr
	}

	host, port, err := net.SplitHostPort(raw)
	if err != nil {
		return defaultAddr
	}

	switch host {
	case "", "0.0.0.0":
		host = "127.0.0.1"
	case "::":
		host = "::1"
	}
	return net.JoinHostPort(host, port)
}
