package wfs

import (
	"math"
	"strconv"
	"strings"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
)

// BBox is a geographic bounding box in WGS84 degrees.
type BBox struct {
	West  float64
	South float64
	East  float64
	North float64
}

// ParseBBox parses "west,south,east,north".
func ParseBBox(s string) (*BBox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return nil, apierrors.NewValidationError("bbox", s, "must be 'west,south,east,north'")
	}

	var vals [4]float64
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return nil, apierrors.NewValidationError("bbox", s, "coordinates must be numbers")
		}
		vals[i] = v
	}

	b := &BBox{West: vals[0], South: vals[1], East: vals[2], North: vals[3]}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate checks coordinate ranges. West may exceed East for boxes that
// cross the antimeridian.
func (b *BBox) Validate() error {
	for _, v := range []float64{b.West, b.South, b.East, b.North} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return apierrors.NewValidationError("bbox", b.String(), "coordinates must be finite")
		}
	}
	if b.South < -90 || b.South > 90 || b.North < -90 || b.North > 90 {
		return apierrors.NewValidationError("bbox", b.String(), "latitudes must be within [-90, 90]")
	}
	if b.West < -180 || b.West > 180 || b.East < -180 || b.East > 180 {
		return apierrors.NewValidationError("bbox", b.String(), "longitudes must be within [-180, 180]")
	}
	if b.South > b.North {
		return apierrors.NewValidationError("bbox", b.String(), "south must not exceed north")
	}
	return nil
}

// String formats the box as "west,south,east,north".
func (b *BBox) String() string {
	f := func(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }
	return f(b.West) + "," + f(b.South) + "," + f(b.East) + "," + f(b.North)
}
