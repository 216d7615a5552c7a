package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// tokenStore persists the session's token pair between command invocations.
// The file lives under the user config dir unless overridden and is written
// owner-only since it holds credentials.
type tokenStore struct {
	path string
}

type storedTokens struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken,omitempty"`
}

func newTokenStore(path string) (*tokenStore, error) {
	if path == "" {
		dir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("resolve token path: %w", err)
		}
		path = filepath.Join(dir, "bhakti-console", "token.json")
	}
	return &tokenStore{path: path}, nil
}

func (s *tokenStore) load() (access, refresh string) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return "", ""
	}
	var t storedTokens
	if json.Unmarshal(raw, &t) != nil {
		return "", ""
	}
	return t.AccessToken, t.RefreshToken
}

func (s *tokenStore) save(access, refresh string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	raw, err := json.Marshal(storedTokens{AccessToken: access, RefreshToken: refresh})
	if err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0o600); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *tokenStore) clear() {
	_ = os.Remove(s.path)
}
