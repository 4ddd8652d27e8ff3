// Package wfs builds GetFeature requests against the GVP GeoServer and
// normalizes the GeoJSON collections it returns.
package wfs

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/olgasafonova/volcano-mcp-server/internal/cql"
	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
)

const (
	// DefaultBaseURL is the Smithsonian GVP Volcanoes of the World WFS endpoint
	DefaultBaseURL = "https://webservices.volcano.si.edu/geoserver/GVP-VOTW/wfs"

	// LayerVolcanoes holds one feature per Holocene volcano
	LayerVolcanoes = "Smithsonian_VOTW_Holocene_Volcanoes"

	// LayerEruptions holds one feature per Holocene eruption
	LayerEruptions = "Smithsonian_VOTW_Holocene_Eruptions"

	// DefaultCount is used when a query does not set a result limit
	DefaultCount = 50
)

// Query describes a single GetFeature request.
type Query struct {
	Layer  string
	Filter cql.Filter
	Count  int   // defaults to DefaultCount when <= 0
	BBox   *BBox // optional
}

// Params returns the encoded request parameters.
func (q Query) Params() (url.Values, error) {
	if err := cql.ValidateIdentifier("typeName", q.Layer); err != nil {
		return nil, err
	}

	count := q.Count
	if count <= 0 {
		count = DefaultCount
	}

	params := url.Values{}
	params.Set("service", "WFS")
	params.Set("version", "2.0.0")
	params.Set("request", "GetFeature")
	params.Set("typeName", q.Layer)
	params.Set("outputFormat", "application/json")
	params.Set("count", strconv.Itoa(count))

	filter, err := q.Filter.Encode()
	if err != nil {
		return nil, err
	}
	if filter != "" {
		params.Set("CQL_FILTER", filter)
	}

	if q.BBox != nil {
		if err := q.BBox.Validate(); err != nil {
			return nil, err
		}
		params.Set("bbox", q.BBox.String())
	}

	return params, nil
}

// URL returns the full request URL against baseURL.
func (q Query) URL(baseURL string) (string, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", apierrors.NewValidationError("base_url", baseURL, "must be an absolute URL")
	}

	params, err := q.Params()
	if err != nil {
		return "", err
	}

	sep := "?"
	if strings.Contains(baseURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%s%s", baseURL, sep, params.Encode()), nil
}
