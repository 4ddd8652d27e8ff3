package tracing

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	semconv "go.opentelemetry.io/otel/semconv/v1.39.0"
)

// recordSpans installs a provider that keeps ended spans in memory
func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() {
		_ = tp.Shutdown(context.Background())
		otel.SetTracerProvider(prev)
	})
	return sr
}

func attrs(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func clearEnv(t *testing.T) {
	for _, key := range []string{
		"OTEL_SERVICE_NAME", "OTEL_SERVICE_VERSION", "OTEL_ENVIRONMENT", "OTEL_ENABLED",
		"OTEL_EXPORTER_OTLP_ENDPOINT", "OTEL_EXPORTER_OTLP_INSECURE", "OTEL_TRACES_SAMPLER_ARG",
	} {
		t.Setenv(key, "")
	}
}

func TestDefaultConfig(t *testing.T) {
	clearEnv(t)

	cfg := DefaultConfig()

	if cfg.ServiceName != TracerName {
		t.Errorf("ServiceName = %q, want %q", cfg.ServiceName, TracerName)
	}
	if cfg.ServiceVersion != "1.0.0" {
		t.Errorf("ServiceVersion = %q", cfg.ServiceVersion)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if cfg.Enabled {
		t.Error("tracing should be off without OTEL_ENABLED or an endpoint")
	}
	if !cfg.OTLPInsecure {
		t.Error("OTLP should default to plain HTTP")
	}
	if cfg.SampleRate != 1.0 {
		t.Errorf("SampleRate = %v, want 1.0", cfg.SampleRate)
	}
	if cfg.Writer == nil {
		t.Error("stdout exporter writer should default to stderr")
	}
}

func TestDefaultConfig_WithEnvVars(t *testing.T) {
	clearEnv(t)
	t.Setenv("OTEL_SERVICE_NAME", "volcanoes-staging")
	t.Setenv("OTEL_ENVIRONMENT", "production")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4318")
	t.Setenv("OTEL_EXPORTER_OTLP_INSECURE", "false")
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "0.25")

	cfg := DefaultConfig()

	if cfg.ServiceName != "volcanoes-staging" {
		t.Errorf("ServiceName = %q", cfg.ServiceName)
	}
	if cfg.Environment != "production" {
		t.Errorf("Environment = %q", cfg.Environment)
	}
	if !cfg.Enabled {
		t.Error("an OTLP endpoint should enable tracing")
	}
	if cfg.OTLPEndpoint != "collector:4318" {
		t.Errorf("OTLPEndpoint = %q", cfg.OTLPEndpoint)
	}
	if cfg.OTLPInsecure {
		t.Error("OTEL_EXPORTER_OTLP_INSECURE=false should require TLS")
	}
	if cfg.SampleRate != 0.25 {
		t.Errorf("SampleRate = %v, want 0.25", cfg.SampleRate)
	}
}

func TestDefaultConfig_BadSampleRate(t *testing.T) {
	clearEnv(t)
	t.Setenv("OTEL_TRACES_SAMPLER_ARG", "most")

	if got := DefaultConfig().SampleRate; got != 1.0 {
		t.Errorf("unparseable sample rate should fall back to 1.0, got %v", got)
	}
}

func TestSetup_Disabled(t *testing.T) {
	shutdown, err := Setup(context.Background(), Config{Enabled: false})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown returned error: %v", err)
	}
}

func TestSetup_StdoutExporterWritesToWriter(t *testing.T) {
	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	var buf bytes.Buffer
	shutdown, err := Setup(context.Background(), Config{
		ServiceName:    "test-service",
		ServiceVersion: "1.0.0",
		Environment:    "test",
		Enabled:        true,
		SampleRate:     1.0,
		Writer:         &buf,
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}

	_, span := StartSpan(context.Background(), "mcp.tool.search-volcanoes")
	span.End()

	if err := shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
	if !strings.Contains(buf.String(), "mcp.tool.search-volcanoes") {
		t.Errorf("exported output missing span name:\n%s", buf.String())
	}
}

// The service resource is merged with the SDK default, which fails when
// the two carry different schema URLs.
func TestSetup_ResourceSchemaMatchesSDK(t *testing.T) {
	if got, want := semconv.SchemaURL, resource.Default().SchemaURL(); got != want {
		t.Fatalf("semconv schema %s does not match SDK default %s", got, want)
	}

	prev := otel.GetTracerProvider()
	defer otel.SetTracerProvider(prev)

	shutdown, err := Setup(context.Background(), Config{
		ServiceName: "test-service",
		Enabled:     true,
		SampleRate:  1.0,
		Writer:      &bytes.Buffer{},
	})
	if err != nil {
		t.Fatalf("Setup failed: %v", err)
	}
	if err := shutdown(context.Background()); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNewSampler(t *testing.T) {
	tests := []struct {
		rate float64
		want string
	}{
		{1.0, "AlwaysOnSampler"},
		{1.5, "AlwaysOnSampler"},
		{0, "AlwaysOffSampler"},
		{-0.5, "AlwaysOffSampler"},
		{0.5, "TraceIDRatioBased{0.5}"},
	}

	for _, tt := range tests {
		desc := newSampler(tt.rate).Description()
		if !strings.HasPrefix(desc, "ParentBased{root:"+tt.want) {
			t.Errorf("newSampler(%v) = %s, want root %s", tt.rate, desc, tt.want)
		}
	}
}

func TestAddToolAttributes(t *testing.T) {
	sr := recordSpans(t)

	_, span := StartSpan(context.Background(), "mcp.tool.get-volcano-details")
	AddToolAttributes(span, "get-volcano-details", "details")
	span.End()

	ended := sr.Ended()
	if len(ended) != 1 {
		t.Fatalf("ended spans = %d, want 1", len(ended))
	}
	got := attrs(ended[0])
	if got["mcp.tool.name"].AsString() != "get-volcano-details" {
		t.Errorf("mcp.tool.name = %v", got["mcp.tool.name"])
	}
	if got["mcp.tool.category"].AsString() != "details" {
		t.Errorf("mcp.tool.category = %v", got["mcp.tool.category"])
	}
}

func TestAddUpstreamAttributes(t *testing.T) {
	tests := []struct {
		name       string
		layer      string
		filter     string
		wantFilter bool
	}{
		{"volcanoes with filter", "Smithsonian_VOTW_Holocene_Volcanoes", "Country LIKE '%Japan%'", true},
		{"eruptions without filter", "Smithsonian_VOTW_Holocene_Eruptions", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sr := recordSpans(t)

			_, span := StartSpan(context.Background(), "wfs.get_feature")
			AddUpstreamAttributes(span, tt.layer, tt.filter, 50)
			AddResultAttributes(span, 3, true)
			span.End()

			got := attrs(sr.Ended()[0])
			if got["wfs.layer"].AsString() != tt.layer {
				t.Errorf("wfs.layer = %v", got["wfs.layer"])
			}
			if got["wfs.count"].AsInt64() != 50 || got["wfs.features"].AsInt64() != 3 {
				t.Errorf("count/features = %v/%v", got["wfs.count"], got["wfs.features"])
			}
			if !got["wfs.cache_hit"].AsBool() {
				t.Error("wfs.cache_hit should be true")
			}
			if _, ok := got["wfs.cql_filter"]; ok != tt.wantFilter {
				t.Errorf("wfs.cql_filter present = %v, want %v", ok, tt.wantFilter)
			}
		})
	}
}

func TestRecordError(t *testing.T) {
	sr := recordSpans(t)

	_, ok := StartSpan(context.Background(), "clean")
	RecordError(ok, nil)
	ok.End()

	_, failed := StartSpan(context.Background(), "failed")
	RecordError(failed, errors.New("upstream returned 503"))
	failed.End()

	ended := sr.Ended()
	if ended[0].Status().Code != codes.Unset || len(ended[0].Events()) != 0 {
		t.Errorf("nil error should leave the span untouched: %+v", ended[0].Status())
	}
	if ended[1].Status().Code != codes.Error {
		t.Errorf("status = %v, want Error", ended[1].Status().Code)
	}
	if len(ended[1].Events()) != 1 || ended[1].Events()[0].Name != "exception" {
		t.Errorf("expected one exception event, got %v", ended[1].Events())
	}
}

func TestGetEnvOrDefault(t *testing.T) {
	t.Setenv("TEST_GET_ENV_KEY", "custom-value")
	t.Setenv("TEST_GET_ENV_KEY_EMPTY", "")

	if got := getEnvOrDefault("TEST_GET_ENV_KEY", "default"); got != "custom-value" {
		t.Errorf("set: got %q", got)
	}
	if got := getEnvOrDefault("TEST_GET_ENV_KEY_EMPTY", "default"); got != "default" {
		t.Errorf("empty: got %q", got)
	}
	if got := getEnvOrDefault("TEST_GET_ENV_KEY_UNSET_42", "default"); got != "default" {
		t.Errorf("unset: got %q", got)
	}
}
