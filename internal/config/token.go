package config

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// tokenFileName holds the bearer token guarding the management API.
const tokenFileName = "api_token"

func tokenPath(dataDir string) string {
	return filepath.Join(dataDir, tokenFileName)
}

// EnsureAPIToken returns the API bearer token, generating and persisting
// one on first run.
func EnsureAPIToken(dataDir string) (string, error) {
	if token, err := GetAPIToken(dataDir); err == nil {
		return token, nil
	}

	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("generating API token: %w", err)
	}
	token := hex.EncodeToString(buf)

	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", fmt.Errorf("creating data dir: %w", err)
	}
	if err := os.WriteFile(tokenPath(dataDir), []byte(token+"\n"), 0o600); err != nil {
		return "", fmt.Errorf("writing API token: %w", err)
	}
	return token, nil
}

// GetAPIToken reads the persisted API bearer token.
func GetAPIToken(dataDir string) (string, error) {
	data, err := os.ReadFile(tokenPath(dataDir))
	if err != nil {
		return "", fmt.Errorf("reading API token: %w", err)
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", fmt.Errorf("API token file is empty")
	}
	return token, nil
}
