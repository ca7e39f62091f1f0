package service

import (
	"crypto/rand"
	"fmt"
	"io"
	"log"
	"math/big"
	"strings"

	"github.com/google/uuid"
)

const (
	apiKeyLength  = 32
	apiKeyCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// KeyGenerator produces profiler API keys from a random source
type KeyGenerator struct {
	random io.Reader
}

func NewKeyGenerator(random io.Reader) *KeyGenerator {
	if random == nil {
		random = rand.Reader
	}
	return &KeyGenerator{random: random}
}

// Generate returns a 32 character alphanumeric key. If the random source
// fails it falls back to a UUIDv4 as 32 hex characters.
func (g *KeyGenerator) Generate() string {
	key, err := g.fromCharset()
	if err != nil {
		log.Printf("API key generation failed, using uuid fallback: %v", err)
		return strings.ReplaceAll(uuid.New().String(), "-", "")
	}
	return key
}

func (g *KeyGenerator) fromCharset() (string, error) {
	size := big.NewInt(int64(len(apiKeyCharset)))

	var b strings.Builder
	b.Grow(apiKeyLength)
	for i := 0; i < apiKeyLength; i++ {
		n, err := rand.Int(g.random, size)
		if err != nil {
			return "", fmt.Errorf("failed to read random source: %w", err)
		}
		b.WriteByte(apiKeyCharset[n.Int64()])
	}

	return b.String(), nil
}
