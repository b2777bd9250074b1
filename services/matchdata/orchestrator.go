package matchdata

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/davideneu/hattrick-matchview/lib/scrapers/chpp"
	"github.com/davideneu/hattrick-matchview/lib/telemetry"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("matchview.services.matchdata")

// ErrNoSource is returned when neither the api path nor a page
// extractor is available for a request. When the api path was tried
// and failed, the returned error wraps both ErrNoSource and the api
// error so callers can inspect the real cause.
var ErrNoSource = errors.New("no data source available")

// ApiClient is the authenticated CHPP surface the orchestrator needs.
type ApiClient interface {
	IsAuthenticated() bool
	GetMatchDetails(ctx context.Context, matchID string) ([]byte, error)
	GetLiveMatchEvents(ctx context.Context, matchID string, action chpp.ActionType, lastShownIndexes []int) ([]byte, error)
}

// PageExtractor is the scraping fallback. It is best-effort and never
// fails: whatever could be read off the page comes back.
type PageExtractor interface {
	Extract(ctx context.Context) *MatchData
}

// Orchestrator reconciles the two data sources into one record,
// preferring the authenticated api and degrading to page scraping.
type Orchestrator struct {
	api  ApiClient
	page PageExtractor
}

func NewOrchestrator(api ApiClient, page PageExtractor) *Orchestrator {
	return &Orchestrator{api: api, page: page}
}

// settled is the all-settle join result of one of the two api calls.
type settled struct {
	body []byte
	err  error
}

// ExtractMatchData resolves the full normalized record for a match.
//
// Failure policy: match details are the primary source, so an error
// there abandons the api path entirely and the page fallback takes
// over; the live commentary feed is enrichment only, so its failure
// merely yields an empty event list. A failed api path never mutates
// persisted authentication state.
func (o *Orchestrator) ExtractMatchData(ctx context.Context, matchID string) (*MatchData, error) {
	ctx, span := tracer.Start(ctx, "orchestrator:ExtractMatchData")
	defer span.End()
	span.SetAttributes(attribute.String("match_id", matchID))

	var apiErr error
	if o.api != nil && o.api.IsAuthenticated() {
		data, err := o.fromApi(ctx, matchID)
		if err == nil {
			return data, nil
		}
		apiErr = err
		span.RecordError(err)
		span.SetStatus(codes.Error, "api path failed, falling back to page extraction")
		slog.WarnContext(ctx, "api extraction failed, falling back to page scraping",
			"match_id", matchID, "err", err)
	}

	if o.page == nil {
		if apiErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrNoSource, apiErr)
		}
		return nil, ErrNoSource
	}
	return o.page.Extract(ctx), nil
}

// fromApi fires the two endpoint calls together and joins them
// all-settle so the live call failing cannot cancel the details call.
func (o *Orchestrator) fromApi(ctx context.Context, matchID string) (*MatchData, error) {
	ctx, span := tracer.Start(ctx, "orchestrator:fromApi")
	defer span.End()

	details := make(chan settled, 1)
	live := make(chan settled, 1)
	go func() {
		body, err := o.api.GetMatchDetails(ctx, matchID)
		details <- settled{body: body, err: err}
	}()
	go func() {
		body, err := o.api.GetLiveMatchEvents(ctx, matchID, chpp.ViewAll, nil)
		live <- settled{body: body, err: err}
	}()
	detailsRes := <-details
	liveRes := <-live

	if detailsRes.err != nil {
		return nil, detailsRes.err
	}
	data, err := ParseMatchDetails(detailsRes.body)
	if err != nil {
		return nil, err
	}

	events, err := o.liveEvents(liveRes)
	if err != nil {
		slog.WarnContext(ctx, "live events unavailable, continuing with empty feed",
			"match_id", matchID, "err", err)
		span.RecordError(err)
		data.Events = []Event{}
		return data, nil
	}
	data.Events = events
	return data, nil
}

func (o *Orchestrator) liveEvents(res settled) ([]Event, error) {
	if res.err != nil {
		return nil, res.err
	}
	return ParseLiveEvents(res.body)
}
