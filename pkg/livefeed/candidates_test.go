package livefeed

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCandidatesOriginFirstThenAltPorts(t *testing.T) {
	got := Candidates("http://localhost:4000", "4001", "4443")

	assert.Equal(t, []string{
		"ws://localhost:4000/ws",
		"ws://localhost:4001/ws",
		"ws://localhost:4443/ws",
	}, got)
}

func TestCandidatesSecureOriginUsesWSS(t *testing.T) {
	got := Candidates("https://catalog.example.com")

	assert.Equal(t, []string{"wss://catalog.example.com/ws"}, got)
}

func TestCandidatesDeduplicatesOriginPort(t *testing.T) {
	got := Candidates("http://localhost:4000", "4000", "4001")

	assert.Equal(t, []string{
		"ws://localhost:4000/ws",
		"ws://localhost:4001/ws",
	}, got)
}

func TestCandidatesRejectsGarbageOrigin(t *testing.T) {
	assert.Nil(t, Candidates("://not-a-url"))
	assert.Nil(t, Candidates(""))
}
