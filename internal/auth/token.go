package auth

import (
	"os"
	"strings"

	"github.com/zalando/go-keyring"

	"github.com/dlfarias/teamvault/internal/utils"
)

const (
	// EnvToken is checked first when resolving credentials
	EnvToken = "TEAMVAULT_TOKEN"

	keyringService = "teamvault"
	keyringUser    = "graph-token"
)

// TokenSource resolves the bearer token used for remote API calls
type TokenSource struct {
	// TokenFile is an optional path to a file holding the raw token
	TokenFile string

	// env and keyring lookups are swappable for tests
	getenv     func(string) string
	keyringGet func(service, user string) (string, error)
}

// NewTokenSource builds a source with the default env and keyring lookups
func NewTokenSource(tokenFile string) *TokenSource {
	return &TokenSource{
		TokenFile:  tokenFile,
		getenv:     os.Getenv,
		keyringGet: keyring.Get,
	}
}

// Token resolves the bearer token, trying the environment, then the token
// file, then the OS keyring. Returns AUTH_REQUIRED when nothing yields one.
func (s *TokenSource) Token() (string, error) {
	if tok := strings.TrimSpace(s.getenv(EnvToken)); tok != "" {
		return tok, nil
	}

	if s.TokenFile != "" {
		data, err := os.ReadFile(s.TokenFile)
		if err != nil && !os.IsNotExist(err) {
			return "", utils.NewAppError(utils.NewSyncError(utils.ErrCodeAuthRequired,
				"failed to read token file: "+err.Error()).
				WithContext("path", s.TokenFile).Build())
		}
		if tok := strings.TrimSpace(string(data)); tok != "" {
			return tok, nil
		}
	}

	if tok, err := s.keyringGet(keyringService, keyringUser); err == nil {
		if tok = strings.TrimSpace(tok); tok != "" {
			return tok, nil
		}
	}

	return "", utils.NewAppError(utils.NewSyncError(utils.ErrCodeAuthRequired,
		"no credentials found: set "+EnvToken+", provide a token file, or store one in the keyring").Build())
}

// Store saves the token in the OS keyring for later runs
func Store(token string) error {
	if strings.TrimSpace(token) == "" {
		return utils.NewAppError(utils.NewSyncError(utils.ErrCodeInvalidArgument,
			"refusing to store an empty token").Build())
	}
	if err := keyring.Set(keyringService, keyringUser, token); err != nil {
		return utils.NewAppError(utils.NewSyncError(utils.ErrCodeAuthRequired,
			"failed to store token in keyring: "+err.Error()).Build())
	}
	return nil
}

// Clear removes any stored token from the OS keyring
func Clear() error {
	err := keyring.Delete(keyringService, keyringUser)
	if err != nil && err != keyring.ErrNotFound {
		return utils.NewAppError(utils.NewSyncError(utils.ErrCodeAuthRequired,
			"failed to clear token from keyring: "+err.Error()).Build())
	}
	return nil
}
