package rest

import (
	"net/http"

	"github.com/hashicorp-forge/sitekit/pkg/apierror"
	"github.com/hashicorp-forge/sitekit/pkg/transport"
	"github.com/hashicorp-forge/sitekit/pkg/value"
)

// Decode maps an HTTP status and body into either a value tree or a
// classified error. It interprets nothing beyond the error envelope.
//
//   - 401 and 403 are authorization failures whatever the body says.
//   - Other non-2xx statuses are HTTP errors carrying the envelope's code and
//     message when the body is one.
//   - 204 is a null value.
//   - Any other 2xx body must be well-formed JSON.
func Decode(status int, body []byte) (value.Value, error) {
	if !transport.IsSuccess(status) {
		code, message := parseErrorEnvelope(body)
		return value.Null(), transport.ClassifyStatus(status, code, message)
	}

	if status == http.StatusNoContent {
		return value.Null(), nil
	}

	v, err := value.ParseJSON(body)
	if err != nil {
		return value.Null(), apierror.DecodingFailure(err)
	}
	return v, nil
}

// parseErrorEnvelope reads the two envelope shapes in use:
//
//	{"error": "unknown_blog", "message": "Unknown blog"}                 (WordPress.com)
//	{"code": "rest_forbidden", "message": "...", "data": {"status": 401}} (self-hosted)
func parseErrorEnvelope(body []byte) (code, message string) {
	v, err := value.ParseJSON(body)
	if err != nil {
		return "", ""
	}

	for _, key := range []string{"error", "code"} {
		if e, ok := v.Get(key); ok {
			if s, ok := e.AsString(); ok {
				code = s
				break
			}
		}
	}
	if m, ok := v.Get("message"); ok {
		message, _ = m.AsString()
	}

	return code, message
}
