package livefeed

import (
	"net/url"
	"strings"
)

// Candidates builds the endpoint probe order for a catalog served at origin
// (e.g. "http://localhost:4000"): the origin's own /ws endpoint first, then
// the same host on each alternate port. Alternate ports cover setups where
// the feed listens separately from the HTTP API.
func Candidates(origin string, altPorts ...string) []string {
	u, err := url.Parse(origin)
	if err != nil || u.Host == "" {
		return nil
	}

	scheme := "ws"
	if u.Scheme == "https" || u.Scheme == "wss" {
		scheme = "wss"
	}

	out := []string{scheme + "://" + u.Host + "/ws"}
	host := u.Hostname()
	for _, port := range altPorts {
		candidate := scheme + "://" + host + ":" + port + "/ws"
		if !contains(out, candidate) {
			out = append(out, candidate)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
