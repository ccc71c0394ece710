package redis

import "fmt"

// KeyBuilder provides environment-aware Redis key building functionality
type KeyBuilder struct {
	prefix string // Environment prefix (staging/prod)
}

// NewKeyBuilder creates a new key builder with environment-based prefix
func NewKeyBuilder(environment string) *KeyBuilder {
	prefix := "prod"
	switch environment {
	case "development", "staging":
		prefix = "staging"
	case "test":
		prefix = "test"
	}

	return &KeyBuilder{
		prefix: prefix,
	}
}

// BuildKey constructs a Redis key with the environment prefix
func (kb *KeyBuilder) BuildKey(key string) string {
	return fmt.Sprintf("%s:%s", kb.prefix, key)
}

// GetPrefix returns the current environment prefix
func (kb *KeyBuilder) GetPrefix() string {
	return kb.prefix
}

// KeySessionRecord is the single fixed slot holding a client scope's user record
func (kb *KeyBuilder) KeySessionRecord(scope string) string {
	return kb.BuildKey(fmt.Sprintf(KeySessionRecord, scope))
}

func (kb *KeyBuilder) KeyContactRateLimit(ipHash string) string {
	return kb.BuildKey(fmt.Sprintf(KeyContactRateLimit, ipHash))
}

func (kb *KeyBuilder) KeyAdminStats() string {
	return kb.BuildKey(KeyAdminStats)
}

// KeyCustom builds a prefixed key from a custom pattern
func (kb *KeyBuilder) KeyCustom(pattern string, args ...interface{}) string {
	return kb.BuildKey(fmt.Sprintf(pattern, args...))
}
