package http

import (
	"bytes"
	"encoding/json"

	"github.com/crmarques/ddiconf/resource"
)

func encodeRequestBody(body resource.Value) ([]byte, error) {
	if body == nil {
		return nil, nil
	}

	normalized, err := resource.Normalize(body)
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, validationError("failed to encode JSON request body", err)
	}
	return encoded, nil
}

// decodeResponseBody decodes JSON bodies with exact numbers. Bodies that are
// not JSON, such as proxy error pages, are kept as text.
func decodeResponseBody(body []byte) (resource.Value, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	decoder := json.NewDecoder(bytes.NewReader(body))
	decoder.UseNumber()

	var value any
	if err := decoder.Decode(&value); err != nil {
		return string(body), nil
	}

	normalized, err := resource.Normalize(value)
	if err != nil {
		return nil, err
	}
	return normalized, nil
}
