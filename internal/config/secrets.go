package config

import (
	"fmt"
	"os"

	"github.com/fae-dev/fae-core/internal/faeerrors"
)

// SecretResolver resolves a SecretRef to its underlying value. Implementations
// are injected rather than hard-coded so the core never needs to know how a
// given deployment stores credentials.
type SecretResolver interface {
	Resolve(ref SecretRef) (string, error)
}

// EnvLiteralResolver resolves "env" and "literal" secret references directly;
// "command" and "keychain" are named but left pluggable, returning
// ErrSecretResolverUnsupported so the core never hard-fails on a resolver
// kind it cannot itself provide.
type EnvLiteralResolver struct{}

// Resolve implements SecretResolver.
func (EnvLiteralResolver) Resolve(ref SecretRef) (string, error) {
	switch ref.Type {
	case "env":
		v, ok := os.LookupEnv(ref.Value)
		if !ok {
			return "", fmt.Errorf("config: environment variable %q is not set", ref.Value)
		}
		return v, nil
	case "literal":
		return ref.Value, nil
	case "command", "keychain":
		return "", faeerrors.ErrSecretResolverUnsupported
	default:
		return "", fmt.Errorf("config: unknown secret reference type %q", ref.Type)
	}
}
