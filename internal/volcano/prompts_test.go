package volcano

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
)

func TestRenderPrompt(t *testing.T) {
	tests := []struct {
		name     string
		prompt   string
		args     map[string]string
		contains []string
	}{
		{
			name:     "recent-activity defaults",
			prompt:   "recent-activity",
			contains: []string{"last 5 years", "VEI 0 or higher"},
		},
		{
			name:     "recent-activity with args",
			prompt:   "recent-activity",
			args:     map[string]string{"years_back": "20", "min_vei": "3"},
			contains: []string{"last 20 years", "VEI 3 or higher"},
		},
		{
			name:     "risk-assessment defaults",
			prompt:   "risk-assessment",
			contains: []string{"Analyze volcanic risk in worldwide.", "populations of 10000+ within 30km"},
		},
		{
			name:     "risk-assessment with country",
			prompt:   "risk-assessment",
			args:     map[string]string{"country": "Chile", "min_population": "500"},
			contains: []string{"risk in Chile.", "populations of 500+"},
		},
		{
			name:     "volcano-profile",
			prompt:   "volcano-profile",
			args:     map[string]string{"volcano_name": "Krakatau"},
			contains: []string{"Create a comprehensive profile for Krakatau."},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, err := RenderPrompt(tt.prompt, tt.args)
			if err != nil {
				t.Fatalf("RenderPrompt: %v", err)
			}
			for _, want := range tt.contains {
				if !strings.Contains(text, want) {
					t.Errorf("text %q missing %q", text, want)
				}
			}
		})
	}
}

func TestRenderPrompt_VolcanoNameRequired(t *testing.T) {
	for _, args := range []map[string]string{nil, {"volcano_name": ""}} {
		_, err := RenderPrompt("volcano-profile", args)
		if !errors.Is(err, ErrVolcanoNameRequired) {
			t.Errorf("args %v: err = %v", args, err)
		}
	}
}

func TestRenderPrompt_Unknown(t *testing.T) {
	_, err := RenderPrompt("eruption-forecast", nil)
	if !apierrors.IsNotFound(err) {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
	if err.Error() != "Prompt not found: eruption-forecast" {
		t.Errorf("message = %q", err.Error())
	}
}

func TestPrompts_Table(t *testing.T) {
	want := []string{"recent-activity", "risk-assessment", "volcano-profile"}
	if len(Prompts) != len(want) {
		t.Fatalf("got %d prompts, want %d", len(Prompts), len(want))
	}
	for i, p := range Prompts {
		if p.Name != want[i] {
			t.Errorf("Prompts[%d] = %q, want %q", i, p.Name, want[i])
		}
		if p.Description == "" {
			t.Errorf("%s has no description", p.Name)
		}
	}

	p, _ := FindPrompt("volcano-profile")
	if len(p.Arguments) != 1 || !p.Arguments[0].Required {
		t.Errorf("volcano-profile should have one required argument: %+v", p.Arguments)
	}
}

func TestReadSchema(t *testing.T) {
	for _, s := range Schemas {
		t.Run(s.URI, func(t *testing.T) {
			text, err := ReadSchema(s.URI)
			if err != nil {
				t.Fatalf("ReadSchema: %v", err)
			}
			if !strings.Contains(text, "\n  \"") {
				t.Error("schema text should be two-space indented")
			}

			var doc map[string]any
			if err := json.Unmarshal([]byte(text), &doc); err != nil {
				t.Fatalf("schema is not JSON: %v", err)
			}
			if doc["type"] != "object" {
				t.Errorf("type = %v", doc["type"])
			}
		})
	}
}

func TestReadSchema_NullableTypes(t *testing.T) {
	text, err := ReadSchema("schema://volcano_response")
	if err != nil {
		t.Fatalf("ReadSchema: %v", err)
	}
	for _, want := range []string{`"LastEruption"`, `"Within_30km"`, `"null"`, `"minItems": 2`} {
		if !strings.Contains(text, want) {
			t.Errorf("schema missing %s", want)
		}
	}
}

func TestReadSchema_PropertyOrder(t *testing.T) {
	tests := []struct {
		uri   string
		order []string
	}{
		{"schema://eruption_response", []string{`"Volcano_Number"`, `"Volcano_Name"`, `"Eruption_Number"`, `"Activity_Type"`, `"ExplosivityIndexMax"`, `"StartEvidenceMethod"`}},
		{"schema://volcano_response", []string{`"VolcanoNumber"`, `"VolcanoName"`, `"Country"`, `"VolcanoType"`, `"Within_5km"`, `"Within_100km"`, `"LatitudeDecimal"`, `"LongitudeDecimal"`}},
		{"schema://volcano_response", []string{`"geometry"`, `"properties"`}},
	}

	for _, tt := range tests {
		text, err := ReadSchema(tt.uri)
		if err != nil {
			t.Fatalf("ReadSchema(%s): %v", tt.uri, err)
		}
		last := -1
		for _, key := range tt.order {
			i := strings.Index(text, key)
			if i <= last {
				t.Errorf("%s: %s at %d, want after offset %d", tt.uri, key, i, last)
			}
			last = i
		}
	}
}

func TestReadSchema_Unknown(t *testing.T) {
	for _, uri := range []string{"schema://lava_response", "volcano_response", "file:///etc/passwd"} {
		_, err := ReadSchema(uri)
		if !apierrors.IsNotFound(err) {
			t.Errorf("%s: expected NotFoundError, got %v", uri, err)
			continue
		}
		if err.Error() != "Unknown schema: "+uri {
			t.Errorf("message = %q", err.Error())
		}
	}
}
