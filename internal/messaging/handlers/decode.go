package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gitlab.com/fcv-2025.net/attempt-service/internal/static/errs"
)

type validator interface {
	Validate() error
}

// decode reads a request payload and validates it. Numbers in test cases are
// kept as written so integers stay integers in generated literals.
func decode(payload []byte, v validator) error {
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: malformed payload: %v", errs.InvalidRequest, err)
	}
	return v.Validate()
}
