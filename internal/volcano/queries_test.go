package volcano

import (
	"testing"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
	"github.com/olgasafonova/volcano-mcp-server/internal/wfs"
)

func ptr[T any](v T) *T { return &v }

func encode(t *testing.T, q wfs.Query) string {
	t.Helper()
	s, err := q.Filter.Encode()
	if err != nil {
		t.Fatalf("Filter.Encode: %v", err)
	}
	return s
}

func TestSearchVolcanoesQuery(t *testing.T) {
	tests := []struct {
		name      string
		args      SearchVolcanoesArgs
		want      string
		wantCount int
	}{
		{"no filters", SearchVolcanoesArgs{}, "", 50},
		{
			"all filters",
			SearchVolcanoesArgs{Country: "Japan", VolcanoType: "Stratovolcano", MinElevation: 1000, MaxElevation: 4000, Limit: 5},
			"Country LIKE '%Japan%' AND VolcanoType = 'Stratovolcano' AND Elevation >= 1000 AND Elevation <= 4000",
			5,
		},
		{"zero elevation ignored", SearchVolcanoesArgs{MinElevation: 0, MaxElevation: -50}, "Elevation <= -50", 50},
		{"quote escaped", SearchVolcanoesArgs{Country: "Cote d'Ivoire"}, "Country LIKE '%Cote d''Ivoire%'", 50},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := SearchVolcanoesQuery(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Layer != wfs.LayerVolcanoes {
				t.Errorf("Layer = %q", q.Layer)
			}
			if got := encode(t, q); got != tt.want {
				t.Errorf("filter = %q, want %q", got, tt.want)
			}
			if q.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", q.Count, tt.wantCount)
			}
		})
	}
}

func TestSearchVolcanoesQuery_BBox(t *testing.T) {
	q, err := SearchVolcanoesQuery(SearchVolcanoesArgs{BBox: "129,30,146,46"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.BBox == nil || q.BBox.String() != "129,30,146,46" {
		t.Errorf("BBox = %v", q.BBox)
	}

	_, err = SearchVolcanoesQuery(SearchVolcanoesArgs{BBox: "129,30,146"})
	if !apierrors.IsValidation(err) {
		t.Errorf("expected validation error for malformed bbox, got %v", err)
	}
}

func TestSearchEruptionsQuery(t *testing.T) {
	tests := []struct {
		name string
		args SearchEruptionsArgs
		want string
	}{
		{"empty", SearchEruptionsArgs{}, ""},
		{"min_vei zero is kept", SearchEruptionsArgs{MinVEI: ptr(0.0)}, "ExplosivityIndexMax >= 0"},
		{"bce range", SearchEruptionsArgs{StartYear: -1000, EndYear: 1500}, "StartDateYear >= -1000 AND StartDateYear <= 1500"},
		{"ongoing", SearchEruptionsArgs{OngoingOnly: true}, "EndDateYear IS NULL"},
		{
			"country subquery",
			SearchEruptionsArgs{VolcanoName: "Etna", Country: "Italy"},
			"Volcano_Name LIKE '%Etna%' AND Volcano_Name IN (SELECT Volcano_Name FROM Smithsonian_VOTW_Holocene_Volcanoes WHERE Country LIKE '%Italy%')",
		},
		{
			"clause order",
			SearchEruptionsArgs{VolcanoName: "Fuji", StartYear: 1700, EndYear: 1800, MinVEI: ptr(3.0), Country: "Japan", OngoingOnly: true},
			"Volcano_Name LIKE '%Fuji%' AND StartDateYear >= 1700 AND StartDateYear <= 1800 AND ExplosivityIndexMax >= 3 AND " +
				"Volcano_Name IN (SELECT Volcano_Name FROM Smithsonian_VOTW_Holocene_Volcanoes WHERE Country LIKE '%Japan%') AND EndDateYear IS NULL",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := SearchEruptionsQuery(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if q.Layer != wfs.LayerEruptions {
				t.Errorf("Layer = %q", q.Layer)
			}
			if got := encode(t, q); got != tt.want {
				t.Errorf("filter = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSearchEruptionsQuery_InjectionStaysInLiteral(t *testing.T) {
	q, err := SearchEruptionsQuery(SearchEruptionsArgs{VolcanoName: "x') OR 1=1 OR ('"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "Volcano_Name LIKE '%x'') OR 1=1 OR (''%'"
	if got := encode(t, q); got != want {
		t.Errorf("filter = %q, want %q", got, want)
	}
}

func TestFindRecentActivityQuery(t *testing.T) {
	const year = 2026

	tests := []struct {
		name      string
		args      FindRecentActivityArgs
		want      string
		wantCount int
	}{
		{"years_back 5", FindRecentActivityArgs{YearsBack: 5}, "StartDateYear >= 2021", 100},
		{"default window", FindRecentActivityArgs{}, "StartDateYear >= 2016", 100},
		{
			"vei and country",
			FindRecentActivityArgs{YearsBack: 1, MinVEI: ptr(2.0), Country: "Iceland", Limit: 7},
			"StartDateYear >= 2025 AND ExplosivityIndexMax >= 2 AND Volcano_Name IN (SELECT Volcano_Name FROM Smithsonian_VOTW_Holocene_Volcanoes WHERE Country LIKE '%Iceland%')",
			7,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := FindRecentActivityQuery(tt.args, year)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := encode(t, q); got != tt.want {
				t.Errorf("filter = %q, want %q", got, tt.want)
			}
			if q.Count != tt.wantCount {
				t.Errorf("Count = %d, want %d", q.Count, tt.wantCount)
			}
		})
	}
}

func TestAssessVolcanicRiskQuery(t *testing.T) {
	q, err := AssessVolcanicRiskQuery(AssessVolcanicRiskArgs{}, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := encode(t, q); got != "LastEruption >= 1826" {
		t.Errorf("default filter = %q", got)
	}

	q, err = AssessVolcanicRiskQuery(AssessVolcanicRiskArgs{
		Country:             "Indonesia",
		MinPopulation5km:    1000,
		MinPopulation30km:   100000,
		RecentActivityYears: 50,
	}, 2026)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := "LastEruption >= 1976 AND Country LIKE '%Indonesia%' AND Within_5km >= 1000 AND Within_30km >= 100000"
	if got := encode(t, q); got != want {
		t.Errorf("filter = %q, want %q", got, want)
	}
	if q.Layer != wfs.LayerVolcanoes || q.Count != 50 {
		t.Errorf("Layer/Count = %q/%d", q.Layer, q.Count)
	}
}

func TestVolcanoDetailsQueries(t *testing.T) {
	profile, eruptions, err := VolcanoDetailsQueries(GetVolcanoDetailsArgs{VolcanoName: "Vesuvius"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.Layer != wfs.LayerVolcanoes || profile.Count != 10 {
		t.Errorf("profile Layer/Count = %q/%d", profile.Layer, profile.Count)
	}
	if got := encode(t, profile); got != "VolcanoName LIKE '%Vesuvius%'" {
		t.Errorf("profile filter = %q", got)
	}
	if eruptions.Layer != wfs.LayerEruptions || eruptions.Count != 20 {
		t.Errorf("eruptions Layer/Count = %q/%d", eruptions.Layer, eruptions.Count)
	}
	if got := encode(t, eruptions); got != "Volcano_Name LIKE '%Vesuvius%'" {
		t.Errorf("eruptions filter = %q", got)
	}

	_, eruptions, _ = VolcanoDetailsQueries(GetVolcanoDetailsArgs{VolcanoName: "Vesuvius", EruptionLimit: 3})
	if eruptions.Count != 3 {
		t.Errorf("eruption_limit not applied: %d", eruptions.Count)
	}
}

func TestVolcanoDetailsQueries_NameRequired(t *testing.T) {
	for _, name := range []string{"", "   "} {
		_, _, err := VolcanoDetailsQueries(GetVolcanoDetailsArgs{VolcanoName: name})
		if !apierrors.IsValidation(err) {
			t.Errorf("name %q: expected validation error, got %v", name, err)
		}
	}
}

func TestFindLargeEruptionsQuery(t *testing.T) {
	tests := []struct {
		name string
		args FindLargeEruptionsArgs
		want string
	}{
		{"default vei", FindLargeEruptionsArgs{}, "ExplosivityIndexMax >= 4"},
		{"zero vei means default", FindLargeEruptionsArgs{MinVEI: 0}, "ExplosivityIndexMax >= 4"},
		{"colossal", FindLargeEruptionsArgs{MinVEI: 6, StartYear: -5000, EndYear: 1900}, "ExplosivityIndexMax >= 6 AND StartDateYear >= -5000 AND StartDateYear <= 1900"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := FindLargeEruptionsQuery(tt.args)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := encode(t, q); got != tt.want {
				t.Errorf("filter = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestQueries_Validation(t *testing.T) {
	if _, err := SearchVolcanoesQuery(SearchVolcanoesArgs{Limit: -1}); !apierrors.IsValidation(err) {
		t.Errorf("negative limit: %v", err)
	}
	if _, err := SearchEruptionsQuery(SearchEruptionsArgs{MinVEI: ptr(9.0)}); !apierrors.IsValidation(err) {
		t.Errorf("vei above 8: %v", err)
	}
	if _, err := FindRecentActivityQuery(FindRecentActivityArgs{MinVEI: ptr(-1.0)}, 2026); !apierrors.IsValidation(err) {
		t.Errorf("negative vei: %v", err)
	}
	if _, err := FindLargeEruptionsQuery(FindLargeEruptionsArgs{MinVEI: 12}); !apierrors.IsValidation(err) {
		t.Errorf("vei 12: %v", err)
	}
}
