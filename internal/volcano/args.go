package volcano

import (
	"encoding/json"

	"github.com/olgasafonova/volcano-mcp-server/internal/wfs"
)

// SearchVolcanoesArgs contains parameters for volcano search
type SearchVolcanoesArgs struct {
	Country      string  `json:"country,omitempty" jsonschema:"Country name (e.g. 'Japan', 'Indonesia', 'United States')"`
	VolcanoType  string  `json:"volcano_type,omitempty" jsonschema:"Type of volcano (e.g. 'Stratovolcano', 'Shield volcano', 'Caldera')"`
	MinElevation float64 `json:"min_elevation,omitempty" jsonschema:"Minimum elevation in meters"`
	MaxElevation float64 `json:"max_elevation,omitempty" jsonschema:"Maximum elevation in meters"`
	BBox         string  `json:"bbox,omitempty" jsonschema:"Geographic bounding box as 'west,south,east,north' (e.g. '129,30,146,46' for Japan region)"`
	Limit        int     `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default: 50)"`
	Verbose      bool    `json:"verbose,omitempty" jsonschema:"Include detailed geological summaries, photo captions, and photo credits (default: false)"`
}

// SearchEruptionsArgs contains parameters for eruption search
type SearchEruptionsArgs struct {
	VolcanoName string   `json:"volcano_name,omitempty" jsonschema:"Name of specific volcano to search"`
	StartYear   float64  `json:"start_year,omitempty" jsonschema:"Start year for eruption search (negative for BCE, e.g. -1000 for 1000 BCE)"`
	EndYear     float64  `json:"end_year,omitempty" jsonschema:"End year for eruption search"`
	MinVEI      *float64 `json:"min_vei,omitempty" jsonschema:"Minimum Volcanic Explosivity Index (0-8, higher = more explosive)"`
	Country     string   `json:"country,omitempty" jsonschema:"Country name to filter eruptions"`
	BBox        string   `json:"bbox,omitempty" jsonschema:"Geographic bounding box as 'west,south,east,north'"`
	OngoingOnly bool     `json:"ongoing_only,omitempty" jsonschema:"Only return eruptions that may still be ongoing (no end date)"`
	Limit       int      `json:"limit,omitempty" jsonschema:"Maximum number of results to return (default: 50)"`
	Verbose     bool     `json:"verbose,omitempty" jsonschema:"Include detailed geological summaries, photo captions, and photo credits (default: false)"`
}

// FindRecentActivityArgs contains parameters for the recent activity lookup
type FindRecentActivityArgs struct {
	YearsBack float64  `json:"years_back,omitempty" jsonschema:"Number of years to look back from present (default: 10)"`
	MinVEI    *float64 `json:"min_vei,omitempty" jsonschema:"Minimum VEI to include (default: 0)"`
	Country   string   `json:"country,omitempty" jsonschema:"Limit to specific country"`
	Limit     int      `json:"limit,omitempty" jsonschema:"Maximum number of results (default: 100)"`
	Verbose   bool     `json:"verbose,omitempty" jsonschema:"Include detailed geological summaries, photo captions, and photo credits (default: false)"`
}

// AssessVolcanicRiskArgs contains parameters for the population exposure lookup
type AssessVolcanicRiskArgs struct {
	Country             string  `json:"country,omitempty" jsonschema:"Country to assess (optional, defaults to worldwide)"`
	MinPopulation5km    float64 `json:"min_population_5km,omitempty" jsonschema:"Minimum population within 5km to consider high-risk"`
	MinPopulation30km   float64 `json:"min_population_30km,omitempty" jsonschema:"Minimum population within 30km to consider moderate-risk"`
	RecentActivityYears float64 `json:"recent_activity_years,omitempty" jsonschema:"Years to look back for recent activity (default: 200)"`
	Limit               int     `json:"limit,omitempty" jsonschema:"Maximum number of volcanoes to return (default: 50)"`
	Verbose             bool    `json:"verbose,omitempty" jsonschema:"Include detailed geological summaries, photo captions, and photo credits (default: false)"`
}

// GetVolcanoDetailsArgs contains parameters for a single volcano lookup
type GetVolcanoDetailsArgs struct {
	VolcanoName      string `json:"volcano_name" jsonschema:"Name of the volcano (e.g. 'Mount Fuji', 'Kilauea', 'Vesuvius')"`
	IncludeEruptions *bool  `json:"include_eruptions,omitempty" jsonschema:"Include eruption history (default: true)"`
	EruptionLimit    int    `json:"eruption_limit,omitempty" jsonschema:"Maximum number of eruptions to return (default: 20)"`
	Verbose          bool   `json:"verbose,omitempty" jsonschema:"Include detailed geological summaries, photo captions, and photo credits (default: false)"`
}

// FindLargeEruptionsArgs contains parameters for the large eruption lookup
type FindLargeEruptionsArgs struct {
	MinVEI    float64 `json:"min_vei,omitempty" jsonschema:"Minimum VEI level (4+ for large eruptions, 6+ for colossal, default: 4)"`
	StartYear float64 `json:"start_year,omitempty" jsonschema:"Start year to search from (negative for BCE)"`
	EndYear   float64 `json:"end_year,omitempty" jsonschema:"End year to search to"`
	Limit     int     `json:"limit,omitempty" jsonschema:"Maximum number of eruptions to return (default: 50)"`
	Verbose   bool    `json:"verbose,omitempty" jsonschema:"Include detailed geological summaries, photo captions, and photo credits (default: false)"`
}

// VolcanoDetailsResult holds a volcano profile and, unless excluded, its eruptions.
// Without eruptions it serializes as the bare profile collection.
type VolcanoDetailsResult struct {
	Profile         *wfs.Response
	EruptionHistory *wfs.Response
	WithEruptions   bool
}

// MarshalJSON emits {"volcano_profile", "eruption_history"} or the profile alone.
func (r VolcanoDetailsResult) MarshalJSON() ([]byte, error) {
	if !r.WithEruptions {
		return json.Marshal(r.Profile)
	}
	return json.Marshal(struct {
		VolcanoProfile  *wfs.Response `json:"volcano_profile"`
		EruptionHistory *wfs.Response `json:"eruption_history"`
	}{r.Profile, r.EruptionHistory})
}
