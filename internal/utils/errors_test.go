package utils

import (
	"errors"
	"testing"
)

func TestSyncErrorBuilder(t *testing.T) {
	syncErr := NewSyncError(ErrCodeForbidden, "listing denied").
		WithHTTPStatus(403).
		WithRemoteCode("Authorization_RequestDenied").
		WithContext("teamId", "team-1").
		Build()

	if syncErr.Code != ErrCodeForbidden || syncErr.HTTPStatus != 403 {
		t.Errorf("unexpected error: %+v", syncErr)
	}
	if syncErr.RemoteCode != "Authorization_RequestDenied" {
		t.Errorf("remote code lost: %+v", syncErr)
	}
	if syncErr.Context["teamId"] != "team-1" {
		t.Errorf("context lost: %+v", syncErr)
	}
}

func TestCodeOf(t *testing.T) {
	appErr := NewAppError(NewSyncError(ErrCodeRateLimited, "slow down").Build())
	if CodeOf(appErr) != ErrCodeRateLimited {
		t.Errorf("got %s", CodeOf(appErr))
	}
	if CodeOf(errors.New("plain")) != ErrCodeUnknown {
		t.Errorf("plain errors must map to UNKNOWN")
	}
	if !IsCode(appErr, ErrCodeRateLimited) || IsCode(appErr, ErrCodeForbidden) {
		t.Error("IsCode mismatch")
	}
}

func TestGetExitCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{ErrCodeCredentialExpired, ExitAuthExpired},
		{ErrCodeForbidden, ExitPermissionDenied},
		{ErrCodeRetryExhausted, ExitRetryExhausted},
		{ErrCodeStorageFailure, ExitStorageFailure},
		{ErrCodeCatalogFailure, ExitCatalogFailure},
		{"SOMETHING_ELSE", ExitUnknown},
	}
	for _, tt := range tests {
		if got := GetExitCode(tt.code); got != tt.want {
			t.Errorf("GetExitCode(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}
