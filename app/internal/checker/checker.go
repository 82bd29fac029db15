package checker

import (
	"fmt"
	"net"
	"net/http"
	"time"
)

// Result is the outcome of a single probe. Latency is reported only for
// successful probes.
type Result struct {
	OK bool
	MS *int
}

// Probe performs one reachability check against a target. It never returns an
// error: every network failure, timeout, or unexpected response maps to a
// failed Result. The timeout bounds every variant, including plain TCP.
func Probe(host string, port int, checkType string, timeout time.Duration) Result {
	switch checkType {
	case "web-service":
		return httpProbe(host, port, timeout)
	case "java-server":
		return javaProbe(host, port, timeout)
	case "bedrock-server":
		return bedrockProbe(host, port, timeout)
	default:
		return tcpProbe(host, port, timeout)
	}
}

func tcpProbe(host string, port int, timeout time.Duration) Result {
	addr := net.JoinHostPort(host, fmt.Sprintf("%d", port))
	t0 := time.Now()
	conn, err := net.DialTimeout("tcp", addr, timeout)
	if err != nil {
		return Result{}
	}
	_ = conn.Close()
	d := int(time.Since(t0).Milliseconds())
	return Result{OK: true, MS: &d}
}

func httpProbe(host string, port int, timeout time.Duration) Result {
	url := fmt.Sprintf("http://%s", net.JoinHostPort(host, fmt.Sprintf("%d", port)))
	client := &http.Client{Timeout: timeout}

	t0 := time.Now()
	resp, err := client.Get(url)
	if err != nil {
		return Result{}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Result{}
	}
	d := int(time.Since(t0).Milliseconds())
	return Result{OK: true, MS: &d}
}
