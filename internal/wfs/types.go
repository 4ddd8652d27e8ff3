package wfs

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Feature is a single GeoJSON feature.
type Feature struct {
	Type       string          `json:"type"`
	Geometry   json.RawMessage `json:"geometry"`
	Properties map[string]any  `json:"properties"`
}

// FeatureCollection is a GeoJSON feature collection with GeoServer paging counters.
// TotalFeatures may be a number or the string "unknown", so both counters are
// kept as decoded JSON values.
type FeatureCollection struct {
	Type           string    `json:"type"`
	Features       []Feature `json:"features"`
	TotalFeatures  any       `json:"totalFeatures,omitempty"`
	NumberReturned any       `json:"numberReturned,omitempty"`
}

// Response is a decoded upstream body. Bodies that carry no features array,
// such as service exception reports, are kept verbatim in Raw.
type Response struct {
	Collection *FeatureCollection
	Raw        json.RawMessage
}

// DecodeResponse parses a JSON body from the feature service.
func DecodeResponse(body []byte) (*Response, error) {
	var probe struct {
		Features json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		// Valid JSON that is not an object (array, string, null) passes through.
		if json.Valid(body) {
			return &Response{Raw: json.RawMessage(bytes.TrimSpace(body))}, nil
		}
		return nil, fmt.Errorf("invalid JSON response body: %w", err)
	}

	if len(probe.Features) == 0 || bytes.Equal(bytes.TrimSpace(probe.Features), []byte("null")) {
		return &Response{Raw: json.RawMessage(bytes.TrimSpace(body))}, nil
	}

	var fc FeatureCollection
	if err := json.Unmarshal(body, &fc); err != nil {
		return nil, fmt.Errorf("failed to parse feature collection: %w", err)
	}
	return &Response{Collection: &fc}, nil
}

// Count returns the number of features, or 0 for raw responses.
func (r *Response) Count() int {
	if r == nil || r.Collection == nil {
		return 0
	}
	return len(r.Collection.Features)
}

// MarshalJSON emits the collection, or the raw body when there is none.
func (r *Response) MarshalJSON() ([]byte, error) {
	switch {
	case r == nil:
		return []byte("null"), nil
	case r.Collection != nil:
		return json.Marshal(r.Collection)
	case len(r.Raw) > 0:
		return r.Raw, nil
	default:
		return []byte("null"), nil
	}
}
