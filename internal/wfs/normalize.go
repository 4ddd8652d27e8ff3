package wfs

import "maps"

// RedundantFields are always removed from feature properties: the landform
// duplicate of Primary_Volcano_Type and the date/VEI modifier qualifiers.
var RedundantFields = []string{
	"Volcanic_Landform",
	"StartDateYearModifier",
	"StartDateYearUncertainty",
	"StartDateDayModifier",
	"StartDateDayUncertainty",
	"EndDateYearModifier",
	"EndDateYearUncertainty",
	"EndDateDayModifier",
	"EndDateDayUncertainty",
	"ExplosivityIndexModifier",
}

// VerboseFields are removed unless verbose output is requested.
var VerboseFields = []string{
	"Primary_Photo_Link",
	"Primary_Photo_Caption",
	"Primary_Photo_Credit",
	"Geological_Summary",
}

// Normalize returns a cleaned copy of fc. The input is not modified.
// Only type, features and the two paging counters survive.
func Normalize(fc *FeatureCollection, verbose bool) *FeatureCollection {
	if fc == nil {
		return nil
	}

	features := make([]Feature, 0, len(fc.Features))
	for _, f := range fc.Features {
		features = append(features, normalizeFeature(f, verbose))
	}

	return &FeatureCollection{
		Type:           fc.Type,
		Features:       features,
		TotalFeatures:  fc.TotalFeatures,
		NumberReturned: fc.NumberReturned,
	}
}

func normalizeFeature(f Feature, verbose bool) Feature {
	props := maps.Clone(f.Properties)
	if props == nil {
		props = map[string]any{}
	}
	for _, k := range RedundantFields {
		delete(props, k)
	}
	if !verbose {
		for _, k := range VerboseFields {
			delete(props, k)
		}
	}

	return Feature{
		Type:       f.Type,
		Geometry:   f.Geometry,
		Properties: props,
	}
}

// Normalize cleans the collection if there is one; raw bodies pass through.
func (r *Response) Normalize(verbose bool) *Response {
	if r == nil || r.Collection == nil {
		return r
	}
	return &Response{Collection: Normalize(r.Collection, verbose)}
}
