package volcano

import (
	"errors"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
)

// ErrVolcanoNameRequired is returned when volcano-profile is rendered without a name
var ErrVolcanoNameRequired = errors.New("volcano_name argument is required for volcano-profile prompt")

// PromptArgument describes one named substitution argument
type PromptArgument struct {
	Name        string
	Description string
	Required    bool
}

// PromptSpec is a static prompt template
type PromptSpec struct {
	Name        string
	Description string
	Arguments   []PromptArgument
	render      func(args map[string]string) (string, error)
}

// Prompts lists the templates in advertised order
var Prompts = []PromptSpec{
	{
		Name:        "recent-activity",
		Description: "Find recent volcanic activity and eruptions worldwide",
		Arguments: []PromptArgument{
			{Name: "years_back", Description: "Number of years to look back (default: 5)"},
			{Name: "min_vei", Description: "Minimum VEI (Volcanic Explosivity Index) to include"},
		},
		render: func(args map[string]string) (string, error) {
			return "Find recent volcanic eruptions from the last " + argOr(args, "years_back", "5") +
				" years with VEI " + argOr(args, "min_vei", "0") +
				" or higher. Include volcano names, locations, dates, and intensity information. " +
				"Highlight any ongoing eruptions and analyze patterns by region.", nil
		},
	},
	{
		Name:        "risk-assessment",
		Description: "Analyze volcanic risk for populated areas",
		Arguments: []PromptArgument{
			{Name: "country", Description: "Country or region to assess"},
			{Name: "min_population", Description: "Minimum population within 30km to consider high-risk"},
		},
		render: func(args map[string]string) (string, error) {
			return "Analyze volcanic risk in " + argOr(args, "country", "worldwide") +
				". Find volcanoes with recent activity (last 100 years) that have populations of " +
				argOr(args, "min_population", "10000") +
				"+ within 30km. Include volcano types, last eruption dates, VEI history, and population exposure. " +
				"Prioritize by risk level.", nil
		},
	},
	{
		Name:        "volcano-profile",
		Description: "Get detailed profile and eruption history for a specific volcano",
		Arguments: []PromptArgument{
			{Name: "volcano_name", Description: "Name of the volcano to analyze", Required: true},
		},
		render: func(args map[string]string) (string, error) {
			name := args["volcano_name"]
			if name == "" {
				return "", ErrVolcanoNameRequired
			}
			return "Create a comprehensive profile for " + name +
				". Include: volcano characteristics (type, elevation, location), eruption history with dates and VEI, " +
				"population at risk, tectonic setting, and recent activity. Compare with similar volcanoes in the region.", nil
		},
	},
}

// argOr returns args[key], or def when it is missing or empty
func argOr(args map[string]string, key, def string) string {
	if v := args[key]; v != "" {
		return v
	}
	return def
}

// FindPrompt looks up a prompt by name
func FindPrompt(name string) (PromptSpec, bool) {
	for _, p := range Prompts {
		if p.Name == name {
			return p, true
		}
	}
	return PromptSpec{}, false
}

// RenderPrompt renders the named prompt into its user message text
func RenderPrompt(name string, args map[string]string) (string, error) {
	p, ok := FindPrompt(name)
	if !ok {
		return "", apierrors.NewNotFoundError(apierrors.KindPrompt, name)
	}
	return p.render(args)
}
