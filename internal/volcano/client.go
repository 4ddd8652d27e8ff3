// Package volcano implements the volcano and eruption tools on top of the
// GVP feature service, plus the prompt templates and schema resources the
// server advertises alongside them.
package volcano

import (
	"context"
	"fmt"
	"time"

	"github.com/olgasafonova/volcano-mcp-server/internal/wfs"
)

// FeatureSource runs GetFeature queries. *wfs.Client satisfies it.
type FeatureSource interface {
	GetFeatures(ctx context.Context, q wfs.Query) (*wfs.Response, error)
}

// Client runs the tool recipes against a FeatureSource
type Client struct {
	features FeatureSource
	now      func() time.Time
}

// Option configures the Client
type Option func(*Client)

// WithClock sets the time source used for look-back windows
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient creates a volcano client
func NewClient(features FeatureSource, opts ...Option) *Client {
	c := &Client{
		features: features,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) currentYear() int {
	return c.now().Year()
}

func (c *Client) run(ctx context.Context, q wfs.Query, verbose bool) (*wfs.Response, error) {
	resp, err := c.features.GetFeatures(ctx, q)
	if err != nil {
		return nil, err
	}
	return resp.Normalize(verbose), nil
}

// SearchVolcanoes searches volcano profiles by country, type, elevation and area
func (c *Client) SearchVolcanoes(ctx context.Context, args SearchVolcanoesArgs) (*wfs.Response, error) {
	q, err := SearchVolcanoesQuery(args)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, q, args.Verbose)
}

// SearchEruptions searches eruption records
func (c *Client) SearchEruptions(ctx context.Context, args SearchEruptionsArgs) (*wfs.Response, error) {
	q, err := SearchEruptionsQuery(args)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, q, args.Verbose)
}

// FindRecentActivity returns eruptions that started within the look-back window
func (c *Client) FindRecentActivity(ctx context.Context, args FindRecentActivityArgs) (*wfs.Response, error) {
	q, err := FindRecentActivityQuery(args, c.currentYear())
	if err != nil {
		return nil, err
	}
	return c.run(ctx, q, args.Verbose)
}

// AssessVolcanicRisk returns recently active volcanoes filtered by nearby population
func (c *Client) AssessVolcanicRisk(ctx context.Context, args AssessVolcanicRiskArgs) (*wfs.Response, error) {
	q, err := AssessVolcanicRiskQuery(args, c.currentYear())
	if err != nil {
		return nil, err
	}
	return c.run(ctx, q, args.Verbose)
}

// GetVolcanoDetails fetches the volcano profile, then its eruption history
// unless include_eruptions is false. The two requests run sequentially.
func (c *Client) GetVolcanoDetails(ctx context.Context, args GetVolcanoDetailsArgs) (VolcanoDetailsResult, error) {
	profileQ, eruptionsQ, err := VolcanoDetailsQueries(args)
	if err != nil {
		return VolcanoDetailsResult{}, err
	}

	profile, err := c.run(ctx, profileQ, args.Verbose)
	if err != nil {
		return VolcanoDetailsResult{}, fmt.Errorf("volcano profile: %w", err)
	}

	if args.IncludeEruptions != nil && !*args.IncludeEruptions {
		return VolcanoDetailsResult{Profile: profile}, nil
	}

	history, err := c.run(ctx, eruptionsQ, args.Verbose)
	if err != nil {
		return VolcanoDetailsResult{}, fmt.Errorf("eruption history: %w", err)
	}

	return VolcanoDetailsResult{
		Profile:         profile,
		EruptionHistory: history,
		WithEruptions:   true,
	}, nil
}

// FindLargeEruptions returns eruptions at or above the VEI threshold
func (c *Client) FindLargeEruptions(ctx context.Context, args FindLargeEruptionsArgs) (*wfs.Response, error) {
	q, err := FindLargeEruptionsQuery(args)
	if err != nil {
		return nil, err
	}
	return c.run(ctx, q, args.Verbose)
}
