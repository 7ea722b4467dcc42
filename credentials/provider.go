package credentials

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrNotFound is returned when no provider knows the requested key.
var ErrNotFound = errors.New("credential not found")

// Provider defines the interface for credential providers
type Provider interface {
	GetCredential(key string) (string, error)
}

// EnvProvider retrieves credentials from environment variables
type EnvProvider struct{}

func NewEnvProvider() *EnvProvider {
	return &EnvProvider{}
}

func (p *EnvProvider) GetCredential(key string) (string, error) {
	value := os.Getenv(key)
	if value == "" {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return value, nil
}

// FileProvider reads a credential from a file named by the <KEY>_FILE
// environment variable, the convention used for mounted secrets.
type FileProvider struct {
	readFile func(string) ([]byte, error)
}

func NewFileProvider() *FileProvider {
	return &FileProvider{readFile: os.ReadFile}
}

func (p *FileProvider) GetCredential(key string) (string, error) {
	path := os.Getenv(key + "_FILE")
	if path == "" {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	data, err := p.readFile(path)
	if err != nil {
		return "", fmt.Errorf("read %s secret file: %w", key, err)
	}
	value := strings.TrimSpace(string(data))
	if value == "" {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return value, nil
}

// StaticProvider for testing with hardcoded credentials
type StaticProvider struct {
	credentials map[string]string
}

func NewStaticProvider(creds map[string]string) *StaticProvider {
	return &StaticProvider{
		credentials: creds,
	}
}

func (p *StaticProvider) GetCredential(key string) (string, error) {
	value, ok := p.credentials[key]
	if !ok {
		return "", fmt.Errorf("%s: %w", key, ErrNotFound)
	}
	return value, nil
}

// Chain asks each provider in turn and returns the first credential found.
type Chain []Provider

func (c Chain) GetCredential(key string) (string, error) {
	for _, p := range c {
		value, err := p.GetCredential(key)
		if err == nil {
			return value, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return "", err
		}
	}
	return "", fmt.Errorf("%s: %w", key, ErrNotFound)
}

// Resolve returns configured when it is set, otherwise the provider's value
// for key. A missing credential resolves to "".
func Resolve(p Provider, key, configured string) (string, error) {
	if configured != "" {
		return configured, nil
	}
	value, err := p.GetCredential(key)
	if errors.Is(err, ErrNotFound) {
		return "", nil
	}
	return value, err
}
