package apierr

import (
	"io"
	"strings"
)

// NoErrorMessage stands in for an error response body that is empty or could
// not be read.
const NoErrorMessage = "No error message available"

// ResponseMessage reads at most limit bytes of an error response body and
// returns them trimmed, or NoErrorMessage.
func ResponseMessage(body io.Reader, limit int64) string {
	if body == nil {
		return NoErrorMessage
	}
	data, err := io.ReadAll(io.LimitReader(body, limit))
	if err != nil {
		return NoErrorMessage
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		return NoErrorMessage
	}
	return msg
}
