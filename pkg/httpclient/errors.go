package httpclient

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	apperrors "github.com/maysa/storefront/pkg/errors"
)

// downstreamError mirrors the error half of the standard response envelope.
type downstreamError struct {
	Error *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// ParseResponseError consumes and closes the body of a non-2xx response and
// translates it into an AppError. resource and id describe what was requested
// and are used for 404s.
func ParseResponseError(resp *http.Response, service, resource, id string) error {
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("%s returned status %d (read body: %w)", service, resp.StatusCode, err)
	}

	code, message := "", string(body)
	var env downstreamError
	if json.Unmarshal(body, &env) == nil && env.Error != nil {
		code, message = env.Error.Code, env.Error.Message
	}
	qualified := fmt.Sprintf("%s: %s", service, message)

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return apperrors.NotFound(resource, id)
	case resp.StatusCode == http.StatusBadRequest:
		return apperrors.InvalidInput(qualified)
	case resp.StatusCode == http.StatusConflict:
		return apperrors.Conflict(qualified)
	case resp.StatusCode == http.StatusUnauthorized, resp.StatusCode == http.StatusForbidden:
		return apperrors.Unavailable(qualified, apperrors.ErrUnauthorized)
	case resp.StatusCode >= 500:
		return apperrors.Unavailable(qualified, fmt.Errorf("status %d %s", resp.StatusCode, code))
	default:
		return fmt.Errorf("%s returned unexpected status %d: %s", service, resp.StatusCode, message)
	}
}
