package id

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"
)

// Generator creates run identifiers.
type Generator interface {
	NewID() (string, error)
}

const timeLayout = "20060102T150405.000Z"

// RandomGenerator returns ids that sort by creation time: a UTC millisecond
// timestamp followed by random hex.
type RandomGenerator struct {
	now func() time.Time
}

func NewRandomGenerator() *RandomGenerator {
	return &RandomGenerator{now: time.Now}
}

func (g *RandomGenerator) NewID() (string, error) {
	suffix := make([]byte, 6)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("read random bytes: %w", err)
	}
	return g.now().UTC().Format(timeLayout) + "-" + hex.EncodeToString(suffix), nil
}
