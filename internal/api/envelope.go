package api

import (
	"strconv"

	"github.com/danielgtaylor/huma/v2"

	"github.com/listenupapp/readinglog/internal/http/response"
)

// EnvelopeVersion is the version of the response envelope.
const EnvelopeVersion = response.Version

// Envelope wraps every JSON response. Routes outside huma write the same
// shape through the response package.
type Envelope = response.Envelope

// EnvelopeTransformer is a huma transformer that wraps response bodies in an Envelope.
func EnvelopeTransformer(_ huma.Context, status string, v any) (any, error) {
	if apiErr, ok := v.(*APIError); ok {
		return response.Failure(apiErr.Code, apiErr.Message, apiErr.Details), nil
	}

	code, err := strconv.Atoi(status)
	success := err != nil || code < 400

	if e, ok := v.(error); ok && !success {
		return response.Failure("", e.Error(), nil), nil
	}

	return Envelope{
		V:       EnvelopeVersion,
		Success: success,
		Data:    v,
	}, nil
}
