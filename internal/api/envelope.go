package api

import (
	"github.com/danielgtaylor/huma/v2"
)

// envelopeVersion is bumped when the response envelope shape changes.
const envelopeVersion = 1

// envelope is the wire shape every successful huma response is wrapped in.
// Clients switch on success before touching data.
type envelope struct {
	V       int  `json:"v"`
	Success bool `json:"success"`
	Data    any  `json:"data"`
}

// EnvelopeTransformer wraps successful response bodies in the shared
// envelope. Error responses are shaped by APIError and pass through.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if _, isErr := v.(*APIError); isErr {
		return v, nil
	}
	if len(status) > 0 && status[0] != '2' {
		return v, nil
	}
	return envelope{V: envelopeVersion, Success: true, Data: v}, nil
}
