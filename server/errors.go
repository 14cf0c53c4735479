package server

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/crmarques/ddiconf/faults"
	"github.com/crmarques/ddiconf/resource"
)

// CheckResponse returns the body of a 2xx response. 401 becomes an AuthError;
// every other status becomes a RemoteError carrying status and body verbatim.
func CheckResponse(operation string, response Response) (resource.Value, error) {
	if response.Success() {
		return response.Body, nil
	}

	label := strings.TrimSpace(operation)
	if label == "" {
		label = "request"
	}

	if response.StatusCode == http.StatusUnauthorized {
		return nil, faults.NewRemoteTypedError(
			faults.AuthError,
			fmt.Sprintf("%s: authentication failed", label),
			response.StatusCode,
			response.Body,
		)
	}

	return nil, faults.NewRemoteTypedError(
		faults.RemoteError,
		fmt.Sprintf("%s failed with status %d", label, response.StatusCode),
		response.StatusCode,
		response.Body,
	)
}

func NewTransportError(operation string, cause error) error {
	return faults.NewTypedError(faults.TransportError, fmt.Sprintf("%s: request failed", operation), cause)
}
