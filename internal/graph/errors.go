package graph

import (
	"encoding/json"
	"net/http"

	"github.com/dlfarias/teamvault/internal/logging"
	"github.com/dlfarias/teamvault/internal/types"
	"github.com/dlfarias/teamvault/internal/utils"
)

// remoteError is the diagnostic envelope the remote API returns on 4xx/5xx
type remoteError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// classifyResponse maps a non-retryable HTTP error response to exactly one
// taxonomy code. The remote diagnostic code/message is preserved verbatim;
// the orchestrator's fallback logic depends on it for 403s.
func classifyResponse(status int, body []byte, reqCtx *types.RequestContext, logger logging.Logger) error {
	var remote remoteError
	_ = json.Unmarshal(body, &remote)

	var code string
	switch status {
	case http.StatusUnauthorized:
		code = utils.ErrCodeCredentialExpired
	case http.StatusForbidden:
		code = utils.ErrCodeForbidden
	case http.StatusNotFound:
		code = utils.ErrCodeNotFound
	case http.StatusBadRequest:
		code = utils.ErrCodeInvalidArgument
	default:
		code = utils.ErrCodeUnknown
	}

	message := remote.Error.Message
	if message == "" {
		message = http.StatusText(status)
	}

	logger.Error("API error classified",
		logging.F("httpStatus", status),
		logging.F("errorCode", code),
		logging.F("remoteCode", remote.Error.Code),
		logging.F("requestType", reqCtx.RequestType),
		logging.F("teamId", reqCtx.TeamID),
	)

	builder := utils.NewSyncError(code, message).
		WithHTTPStatus(status).
		WithRemoteCode(remote.Error.Code).
		WithContext("traceId", reqCtx.TraceID).
		WithContext("requestType", string(reqCtx.RequestType))

	if code == utils.ErrCodeCredentialExpired {
		builder.WithContext("suggestedAction", "re-authenticate and restart the run")
	}

	return utils.NewAppError(builder.Build())
}
