package volcano

import (
	"encoding/json"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"

	apierrors "github.com/olgasafonova/volcano-mcp-server/internal/errors"
)

// SchemaMIMEType is the media type of the schema resources
const SchemaMIMEType = "application/schema+json"

const schemaScheme = "schema://"

// SchemaResource is a static JSON Schema document served as a resource
type SchemaResource struct {
	URI         string
	Name        string
	Description string
	Schema      *jsonschema.Schema
}

// Schemas lists the resources in advertised order
var Schemas = []SchemaResource{
	{
		URI:         schemaScheme + "eruption_response",
		Name:        "Eruption Data Schema",
		Description: "Schema for volcanic eruption data returned by the Smithsonian GVP WFS API",
		Schema: featureCollectionSchema(
			field{"Volcano_Number", &jsonschema.Schema{Type: "number"}},
			field{"Volcano_Name", &jsonschema.Schema{Type: "string"}},
			field{"Eruption_Number", &jsonschema.Schema{Type: "number"}},
			field{"Activity_Type", &jsonschema.Schema{Type: "string"}},
			field{"ExplosivityIndexMax", nullable("number")},
			field{"ActivityArea", nullable("string")},
			field{"StartDateYear", nullable("number")},
			field{"EndDateYear", nullable("number")},
			field{"StartEvidenceMethod", nullable("string")},
		),
	},
	{
		URI:         schemaScheme + "volcano_response",
		Name:        "Volcano Data Schema",
		Description: "Schema for volcano profile data returned by the Smithsonian GVP WFS API",
		Schema: featureCollectionSchema(
			field{"VolcanoNumber", &jsonschema.Schema{Type: "number"}},
			field{"VolcanoName", &jsonschema.Schema{Type: "string"}},
			field{"Country", &jsonschema.Schema{Type: "string"}},
			field{"VolcanoType", nullable("string")},
			field{"LastEruption", nullable("number", "string")},
			field{"Elevation", nullable("number")},
			field{"TectonicSetting", nullable("string")},
			field{"Within_5km", nullable("number")},
			field{"Within_10km", nullable("number")},
			field{"Within_30km", nullable("number")},
			field{"Within_100km", nullable("number")},
			field{"LatitudeDecimal", &jsonschema.Schema{Type: "number"}},
			field{"LongitudeDecimal", &jsonschema.Schema{Type: "number"}},
		),
	},
}

// field is one named property of a schema object
type field struct {
	name   string
	schema *jsonschema.Schema
}

func nullable(types ...string) *jsonschema.Schema {
	return &jsonschema.Schema{Types: append(types, "null")}
}

func intPtr(n int) *int { return &n }

// object builds an object schema whose properties render in the given order
func object(fields ...field) *jsonschema.Schema {
	s := &jsonschema.Schema{
		Type:          "object",
		Properties:    make(map[string]*jsonschema.Schema, len(fields)),
		PropertyOrder: make([]string, 0, len(fields)),
	}
	for _, f := range fields {
		s.Properties[f.name] = f.schema
		s.PropertyOrder = append(s.PropertyOrder, f.name)
	}
	return s
}

// featureCollectionSchema wraps a property schema in a GeoJSON point collection
func featureCollectionSchema(props ...field) *jsonschema.Schema {
	geometry := object(
		field{"type", &jsonschema.Schema{Type: "string", Enum: []any{"Point"}}},
		field{"coordinates", &jsonschema.Schema{
			Type:     "array",
			Items:    &jsonschema.Schema{Type: "number"},
			MinItems: intPtr(2),
			MaxItems: intPtr(2),
		}},
	)
	feature := object(
		field{"type", &jsonschema.Schema{Type: "string", Enum: []any{"Feature"}}},
		field{"geometry", geometry},
		field{"properties", object(props...)},
	)
	return object(
		field{"type", &jsonschema.Schema{Type: "string", Enum: []any{"FeatureCollection"}}},
		field{"features", &jsonschema.Schema{Type: "array", Items: feature}},
	)
}

// FindSchema looks up a schema resource by URI
func FindSchema(uri string) (SchemaResource, bool) {
	if !strings.HasPrefix(uri, schemaScheme) {
		return SchemaResource{}, false
	}
	for _, s := range Schemas {
		if s.URI == uri {
			return s, true
		}
	}
	return SchemaResource{}, false
}

// ReadSchema returns the two-space indented schema document for uri
func ReadSchema(uri string) (string, error) {
	s, ok := FindSchema(uri)
	if !ok {
		return "", apierrors.NewNotFoundError(apierrors.KindResource, uri)
	}
	data, err := json.MarshalIndent(s.Schema, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
