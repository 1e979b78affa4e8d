package mediatype

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

var errTrailingData = errors.New("trailing data after JSON value")

type jsonParser struct{}

func (jsonParser) Encode(v any) ([]byte, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedValue, err)
	}

	return data, nil
}

func (jsonParser) Decode(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var v any

	err := dec.Decode(&v)
	if err != nil {
		return nil, err
	}

	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errTrailingData
	}

	return v, nil
}

// JSON handles application/json and every "+json" structured suffix. Numbers
// decode as json.Number, so they encode back to the same digits.
func JSON() *MediaType {
	return New(NameJSON, jsonParser{}, HypermediaSemantics{},
		"application/json",
		"application/*+json",
		"text/json",
	)
}
