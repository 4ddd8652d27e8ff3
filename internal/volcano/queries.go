package volcano

import (
	"github.com/olgasafonova/volcano-mcp-server/internal/cql"
	"github.com/olgasafonova/volcano-mcp-server/internal/wfs"
)

// Recipe defaults
const (
	DefaultLimit               = 50
	DefaultRecentActivityLimit = 100
	DefaultYearsBack           = 10
	DefaultRiskWindowYears     = 200
	DefaultLargeEruptionVEI    = 4
	DetailsProfileLimit        = 10
	DefaultEruptionLimit       = 20
)

// Field names on the two GVP layers. The volcano layer spells the name
// without an underscore, the eruption layer with one.
const (
	fieldCountry          = "Country"
	fieldVolcanoType      = "VolcanoType"
	fieldElevation        = "Elevation"
	fieldVolcanoName      = "VolcanoName"
	fieldLastEruption     = "LastEruption"
	fieldWithin5km        = "Within_5km"
	fieldWithin30km       = "Within_30km"
	fieldEruptionVolcano  = "Volcano_Name"
	fieldStartYear        = "StartDateYear"
	fieldEndYear          = "EndDateYear"
	fieldExplosivityIndex = "ExplosivityIndexMax"
)

func orDefault(n, def int) int {
	if n == 0 {
		return def
	}
	return n
}

func orDefaultFloat(v, def float64) float64 {
	if v == 0 {
		return def
	}
	return v
}

// inCountry restricts eruptions to volcanoes whose country matches c
func inCountry(c string) cql.Clause {
	return cql.In(fieldEruptionVolcano, wfs.LayerVolcanoes, fieldEruptionVolcano, cql.Contains(fieldCountry, c))
}

// yearRange adds start/end year bounds; zero means unset
func yearRange(f cql.Filter, start, end float64) cql.Filter {
	if start != 0 {
		f = f.And(cql.AtLeast(fieldStartYear, start))
	}
	if end != 0 {
		f = f.And(cql.AtMost(fieldStartYear, end))
	}
	return f
}

func parseOptionalBBox(s string) (*wfs.BBox, error) {
	if s == "" {
		return nil, nil
	}
	return wfs.ParseBBox(s)
}

// SearchVolcanoesQuery builds the volcano profile search
func SearchVolcanoesQuery(args SearchVolcanoesArgs) (wfs.Query, error) {
	if err := ValidateLimit("limit", args.Limit); err != nil {
		return wfs.Query{}, err
	}
	bbox, err := parseOptionalBBox(args.BBox)
	if err != nil {
		return wfs.Query{}, err
	}

	var f cql.Filter
	if args.Country != "" {
		f = f.And(cql.Contains(fieldCountry, args.Country))
	}
	if args.VolcanoType != "" {
		f = f.And(cql.Equals(fieldVolcanoType, args.VolcanoType))
	}
	if args.MinElevation != 0 {
		f = f.And(cql.AtLeast(fieldElevation, args.MinElevation))
	}
	if args.MaxElevation != 0 {
		f = f.And(cql.AtMost(fieldElevation, args.MaxElevation))
	}

	return wfs.Query{
		Layer:  wfs.LayerVolcanoes,
		Filter: f,
		Count:  orDefault(args.Limit, DefaultLimit),
		BBox:   bbox,
	}, nil
}

// SearchEruptionsQuery builds the eruption search
func SearchEruptionsQuery(args SearchEruptionsArgs) (wfs.Query, error) {
	if err := ValidateLimit("limit", args.Limit); err != nil {
		return wfs.Query{}, err
	}
	if err := ValidateVEI(args.MinVEI); err != nil {
		return wfs.Query{}, err
	}
	bbox, err := parseOptionalBBox(args.BBox)
	if err != nil {
		return wfs.Query{}, err
	}

	var f cql.Filter
	if args.VolcanoName != "" {
		f = f.And(cql.Contains(fieldEruptionVolcano, args.VolcanoName))
	}
	f = yearRange(f, args.StartYear, args.EndYear)
	if args.MinVEI != nil {
		f = f.And(cql.AtLeast(fieldExplosivityIndex, *args.MinVEI))
	}
	if args.Country != "" {
		f = f.And(inCountry(args.Country))
	}
	if args.OngoingOnly {
		f = f.And(cql.IsNull(fieldEndYear))
	}

	return wfs.Query{
		Layer:  wfs.LayerEruptions,
		Filter: f,
		Count:  orDefault(args.Limit, DefaultLimit),
		BBox:   bbox,
	}, nil
}

// FindRecentActivityQuery builds the eruption lookup for the last years_back years
func FindRecentActivityQuery(args FindRecentActivityArgs, currentYear int) (wfs.Query, error) {
	if err := ValidateLimit("limit", args.Limit); err != nil {
		return wfs.Query{}, err
	}
	if err := ValidateVEI(args.MinVEI); err != nil {
		return wfs.Query{}, err
	}

	startYear := float64(currentYear) - orDefaultFloat(args.YearsBack, DefaultYearsBack)
	f := cql.Filter{cql.AtLeast(fieldStartYear, startYear)}
	if args.MinVEI != nil {
		f = f.And(cql.AtLeast(fieldExplosivityIndex, *args.MinVEI))
	}
	if args.Country != "" {
		f = f.And(inCountry(args.Country))
	}

	return wfs.Query{
		Layer:  wfs.LayerEruptions,
		Filter: f,
		Count:  orDefault(args.Limit, DefaultRecentActivityLimit),
	}, nil
}

// AssessVolcanicRiskQuery builds the lookup of recently active volcanoes near people
func AssessVolcanicRiskQuery(args AssessVolcanicRiskArgs, currentYear int) (wfs.Query, error) {
	if err := ValidateLimit("limit", args.Limit); err != nil {
		return wfs.Query{}, err
	}

	cutoffYear := float64(currentYear) - orDefaultFloat(args.RecentActivityYears, DefaultRiskWindowYears)
	f := cql.Filter{cql.AtLeast(fieldLastEruption, cutoffYear)}
	if args.Country != "" {
		f = f.And(cql.Contains(fieldCountry, args.Country))
	}
	if args.MinPopulation5km != 0 {
		f = f.And(cql.AtLeast(fieldWithin5km, args.MinPopulation5km))
	}
	if args.MinPopulation30km != 0 {
		f = f.And(cql.AtLeast(fieldWithin30km, args.MinPopulation30km))
	}

	return wfs.Query{
		Layer:  wfs.LayerVolcanoes,
		Filter: f,
		Count:  orDefault(args.Limit, DefaultLimit),
	}, nil
}

// VolcanoDetailsQueries builds the profile lookup and the eruption history lookup
func VolcanoDetailsQueries(args GetVolcanoDetailsArgs) (profile, eruptions wfs.Query, err error) {
	if err := ValidateVolcanoName(args.VolcanoName); err != nil {
		return wfs.Query{}, wfs.Query{}, err
	}
	if err := ValidateLimit("eruption_limit", args.EruptionLimit); err != nil {
		return wfs.Query{}, wfs.Query{}, err
	}

	profile = wfs.Query{
		Layer:  wfs.LayerVolcanoes,
		Filter: cql.Filter{cql.Contains(fieldVolcanoName, args.VolcanoName)},
		Count:  DetailsProfileLimit,
	}
	eruptions = wfs.Query{
		Layer:  wfs.LayerEruptions,
		Filter: cql.Filter{cql.Contains(fieldEruptionVolcano, args.VolcanoName)},
		Count:  orDefault(args.EruptionLimit, DefaultEruptionLimit),
	}
	return profile, eruptions, nil
}

// FindLargeEruptionsQuery builds the lookup of eruptions at or above a VEI
func FindLargeEruptionsQuery(args FindLargeEruptionsArgs) (wfs.Query, error) {
	if err := ValidateLimit("limit", args.Limit); err != nil {
		return wfs.Query{}, err
	}
	minVEI := orDefaultFloat(args.MinVEI, DefaultLargeEruptionVEI)
	if err := ValidateVEI(&minVEI); err != nil {
		return wfs.Query{}, err
	}

	f := cql.Filter{cql.AtLeast(fieldExplosivityIndex, minVEI)}
	f = yearRange(f, args.StartYear, args.EndYear)

	return wfs.Query{
		Layer:  wfs.LayerEruptions,
		Filter: f,
		Count:  orDefault(args.Limit, DefaultLimit),
	}, nil
}
