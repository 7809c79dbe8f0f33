package auth

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dlfarias/teamvault/internal/utils"
)

func newTestSource(env map[string]string, tokenFile string, keyringToken string, keyringErr error) *TokenSource {
	return &TokenSource{
		TokenFile: tokenFile,
		getenv: func(key string) string {
			return env[key]
		},
		keyringGet: func(service, user string) (string, error) {
			if keyringErr != nil {
				return "", keyringErr
			}
			return keyringToken, nil
		},
	}
}

func TestTokenFromEnv(t *testing.T) {
	src := newTestSource(map[string]string{EnvToken: "  env-token \n"}, "", "", errors.New("locked"))
	tok, err := src.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "env-token" {
		t.Errorf("got %q", tok)
	}
}

func TestTokenFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("file-token\n"), 0600); err != nil {
		t.Fatal(err)
	}
	src := newTestSource(nil, path, "", errors.New("locked"))
	tok, err := src.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "file-token" {
		t.Errorf("got %q", tok)
	}
}

func TestTokenFromKeyring(t *testing.T) {
	src := newTestSource(nil, "", "keyring-token", nil)
	tok, err := src.Token()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if tok != "keyring-token" {
		t.Errorf("got %q", tok)
	}
}

func TestTokenEnvWinsOverFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("file-token"), 0600); err != nil {
		t.Fatal(err)
	}
	src := newTestSource(map[string]string{EnvToken: "env-token"}, path, "keyring-token", nil)
	tok, _ := src.Token()
	if tok != "env-token" {
		t.Errorf("precedence violated, got %q", tok)
	}
}

func TestTokenNothingFound(t *testing.T) {
	src := newTestSource(nil, "", "", errors.New("not found"))
	_, err := src.Token()
	if !utils.IsCode(err, utils.ErrCodeAuthRequired) {
		t.Fatalf("expected AUTH_REQUIRED, got %v", err)
	}
}

func TestTokenMissingFileFallsThrough(t *testing.T) {
	src := newTestSource(nil, filepath.Join(t.TempDir(), "absent"), "keyring-token", nil)
	tok, err := src.Token()
	if err != nil {
		t.Fatalf("a missing token file is not an error: %v", err)
	}
	if tok != "keyring-token" {
		t.Errorf("got %q", tok)
	}
}
