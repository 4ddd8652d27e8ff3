package tools

import "github.com/olgasafonova/volcano-mcp-server/internal/wfs"

var (
	volcanoLayer  = []string{wfs.LayerVolcanoes}
	eruptionLayer = []string{wfs.LayerEruptions}
)

// AllTools contains all tool specifications for the volcano MCP server.
// Tool descriptions follow a structured format for LLM tool selection:
// - USE WHEN: Natural language triggers
// - NOT FOR: Disambiguation from similar tools
// - PARAMETERS: Key arguments with defaults
// - RETURNS: What the tool returns
var AllTools = []ToolSpec{
	{
		Name:     "search-volcanoes",
		Method:   "SearchVolcanoes",
		Title:    "Search Volcanoes",
		Category: "search",
		Layers:   volcanoLayer,
		Description: `Search for volcanoes by location, country, or characteristics. Returns volcano profiles with details like type, elevation, last eruption, and population exposure.

USE WHEN: User asks "which volcanoes are in Japan", "list stratovolcanoes above 3000 m", "volcanoes in this region".

NOT FOR: Eruption records (use search-eruptions) or a single named volcano (use get-volcano-details).

PARAMETERS:
- country: Country name, substring match (e.g. 'Japan', 'Indonesia')
- volcano_type: Exact volcano type (e.g. 'Stratovolcano', 'Caldera')
- min_elevation / max_elevation: Elevation bounds in meters
- bbox: 'west,south,east,north' (e.g. '129,30,146,46' for Japan region)
- limit: Max results (default 50)
- verbose: Include geological summaries and photo details (default false)

RETURNS: GeoJSON FeatureCollection of volcano profiles.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "search-eruptions",
		Method:   "SearchEruptions",
		Title:    "Search Eruptions",
		Category: "search",
		Layers:   eruptionLayer,
		Description: `Search volcanic eruptions by date range, volcano, intensity (VEI), or location. Returns eruption records with dates, explosivity, and activity details.

USE WHEN: User asks "eruptions of Etna since 1900", "VEI 5 eruptions in Indonesia", "which eruptions are still ongoing".

NOT FOR: Volcano profiles (use search-volcanoes). For the last few years use find-recent-activity.

PARAMETERS:
- volcano_name: Volcano name, substring match
- start_year / end_year: Eruption start year bounds (negative for BCE)
- min_vei: Minimum Volcanic Explosivity Index (0-8); 0 is a valid filter
- country: Country of the volcano
- bbox: 'west,south,east,north'
- ongoing_only: Only eruptions without an end date
- limit: Max results (default 50)
- verbose: Include geological summaries and photo details (default false)

RETURNS: GeoJSON FeatureCollection of eruption records.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "find-recent-activity",
		Method:   "FindRecentActivity",
		Title:    "Find Recent Volcanic Activity",
		Category: "monitoring",
		Layers:   eruptionLayer,
		Description: `Find recent volcanic activity and eruptions. Useful for monitoring current volcanic threats and recent changes in volcanic behavior.

USE WHEN: User asks "what erupted recently", "eruptions in the last 5 years", "current volcanic activity in Iceland".

NOT FOR: Historical ranges (use search-eruptions) or only major events (use find-large-eruptions).

PARAMETERS:
- years_back: Years to look back from the current year (default 10)
- min_vei: Minimum VEI to include
- country: Limit to a specific country
- limit: Max results (default 100)
- verbose: Include geological summaries and photo details (default false)

RETURNS: GeoJSON FeatureCollection of eruptions that started within the window.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "assess-volcanic-risk",
		Method:   "AssessVolcanicRisk",
		Title:    "Assess Volcanic Risk",
		Category: "risk",
		Layers:   volcanoLayer,
		Description: `Assess volcanic risk by finding volcanoes near populated areas. Identifies high-risk volcanoes based on population exposure and eruption history.

USE WHEN: User asks "which volcanoes threaten large populations", "volcanic risk in the Philippines", "active volcanoes with 100k people within 30 km".

NOT FOR: Listing volcanoes without a risk angle (use search-volcanoes).

PARAMETERS:
- country: Country to assess (default worldwide)
- min_population_5km: Minimum population within 5 km
- min_population_30km: Minimum population within 30 km
- recent_activity_years: Only volcanoes that erupted within this many years (default 200)
- limit: Max results (default 50)
- verbose: Include geological summaries and photo details (default false)

RETURNS: GeoJSON FeatureCollection of volcano profiles with population exposure fields.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "get-volcano-details",
		Method:   "GetVolcanoDetails",
		Title:    "Get Volcano Details",
		Category: "details",
		Layers:   []string{wfs.LayerVolcanoes, wfs.LayerEruptions},
		Description: `Get detailed information about a specific volcano, including its characteristics, eruption history, and risk profile.

USE WHEN: User names a volcano: "tell me about Mount Fuji", "Vesuvius eruption history", "how dangerous is Kilauea".

NOT FOR: Searching across many volcanoes (use search-volcanoes).

PARAMETERS:
- volcano_name: Volcano name, substring match (required)
- include_eruptions: Also fetch eruption history (default true)
- eruption_limit: Max eruptions (default 20)
- verbose: Include geological summaries and photo details (default false)

RETURNS: {"volcano_profile", "eruption_history"} collections, or the profile collection alone when include_eruptions is false.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
	{
		Name:     "find-large-eruptions",
		Method:   "FindLargeEruptions",
		Title:    "Find Large Eruptions",
		Category: "search",
		Layers:   eruptionLayer,
		Description: `Find historically significant large volcanic eruptions. Useful for studying major volcanic events and their impacts.

USE WHEN: User asks "biggest eruptions in history", "VEI 6 or larger eruptions", "major eruptions before 1000 CE".

NOT FOR: Eruptions of a specific volcano (use search-eruptions).

PARAMETERS:
- min_vei: Minimum VEI (4+ large, 6+ colossal; default 4)
- start_year / end_year: Eruption start year bounds (negative for BCE)
- limit: Max results (default 50)
- verbose: Include geological summaries and photo details (default false)

RETURNS: GeoJSON FeatureCollection of eruption records.`,
		ReadOnly:   true,
		Idempotent: true,
		OpenWorld:  true,
	},
}
