// Package matchpage scrapes a rendered match page into the normalized
// match record. Everything here is best-effort: the page markup is not
// a contract, so every step degrades to empty fields instead of
// failing.
package matchpage

import (
	"bytes"
	"context"
	"log/slog"
	"regexp"
	"time"

	"github.com/davideneu/hattrick-matchview/lib/telemetry"
	"github.com/davideneu/hattrick-matchview/lib/textutil"
	"github.com/davideneu/hattrick-matchview/services/matchdata"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = telemetry.Tracer("matchview.scrapers.matchpage")

const (
	defaultPollInterval = 500 * time.Millisecond
	defaultWaitCeiling  = 15 * time.Second
)

// PageSource yields the current state of the rendered page. Sources
// backed by a live page may return different documents across calls
// while content streams in.
type PageSource interface {
	Document(ctx context.Context) (*goquery.Document, error)
}

// StaticSource serves a fixed document, for already-captured pages.
type StaticSource struct {
	Doc *goquery.Document
}

func (s StaticSource) Document(ctx context.Context) (*goquery.Document, error) {
	return s.Doc, nil
}

// FetchSource retrieves the page over http on every call. Content the
// site renders client-side will be missing from what it sees.
type FetchSource struct {
	Http *resty.Client
	Url  string
}

func (s FetchSource) Document(ctx context.Context) (*goquery.Document, error) {
	res, err := s.Http.R().SetContext(ctx).Get(s.Url)
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromReader(bytes.NewReader(res.Body()))
}

// Extractor scrapes one match page.
type Extractor struct {
	source       PageSource
	matchUrl     string
	pollInterval time.Duration
	waitCeiling  time.Duration
}

type ExtractorOptions struct {
	Source PageSource
	// MatchUrl is the page address, used only to recover the match id.
	MatchUrl string
	// PollInterval and WaitCeiling bound the readiness wait; zero
	// values take the defaults (500ms, 15s).
	PollInterval time.Duration
	WaitCeiling  time.Duration
}

func NewExtractor(options ExtractorOptions) *Extractor {
	if options.PollInterval <= 0 {
		options.PollInterval = defaultPollInterval
	}
	if options.WaitCeiling <= 0 {
		options.WaitCeiling = defaultWaitCeiling
	}
	return &Extractor{
		source:       options.Source,
		matchUrl:     options.MatchUrl,
		pollInterval: options.PollInterval,
		waitCeiling:  options.WaitCeiling,
	}
}

// Extract scrapes whatever the page currently offers. It never
// returns an error: fields the page does not yield stay zero.
func (e *Extractor) Extract(ctx context.Context) *matchdata.MatchData {
	ctx, span := tracer.Start(ctx, "matchpage:Extract")
	defer span.End()
	span.SetAttributes(attribute.String("match_url", e.matchUrl))

	doc := e.waitForReady(ctx)
	data := &matchdata.MatchData{Events: []matchdata.Event{}}
	data.MatchInfo.MatchID = matchIdFromUrl(e.matchUrl)
	if doc == nil {
		slog.WarnContext(ctx, "page source yielded no document, returning empty record",
			"match_url", e.matchUrl)
		return data
	}

	e.extractMatchInfo(doc, &data.MatchInfo)
	e.extractTeams(doc, &data.Teams)
	e.extractPlayers(doc, &data.Players)
	e.extractStats(doc, &data.Stats)
	data.Events = e.extractEvents(doc)
	return data
}

// waitForReady polls the source until the page looks fully rendered
// or the ceiling passes. Timing out is not an error: the last
// document seen is returned and extraction proceeds on it.
func (e *Extractor) waitForReady(ctx context.Context) *goquery.Document {
	ctx, span := tracer.Start(ctx, "matchpage:waitForReady")
	defer span.End()

	deadline := time.Now().Add(e.waitCeiling)
	var last *goquery.Document
	for {
		doc, err := e.source.Document(ctx)
		if err != nil {
			slog.WarnContext(ctx, "failed to read page document", "err", err)
		} else {
			last = doc
			if pageReady(doc) {
				return doc
			}
		}

		if time.Now().After(deadline) {
			slog.WarnContext(ctx, "page readiness wait exceeded ceiling, extracting anyway",
				"ceiling", e.waitCeiling)
			return last
		}
		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "page readiness wait cancelled, extracting anyway",
				"err", ctx.Err())
			return last
		case <-time.After(e.pollInterval):
		}
	}
}

// pageReady checks the three readiness signals: both team anchors
// present, at least one substantive event, no loading placeholder
// text anywhere on the page.
func pageReady(doc *goquery.Document) bool {
	if len(teamAnchors(doc)) < 2 {
		return false
	}
	if !hasRealEvents(doc) {
		return false
	}
	body := doc.Find("body").Text()
	return !textutil.ContainsAny(body, loadingPhrases)
}

// hasRealEvents looks for at least one event container with genuine
// content rather than a streaming animation placeholder.
func hasRealEvents(doc *goquery.Document) bool {
	found := false
	for _, selector := range eventSelectors {
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			if hasAnimatorChild(sel) {
				return true
			}
			text := cleanText(sel)
			if minuteMarkerRegex.MatchString(text) || len(text) > 10 {
				found = true
				return false
			}
			return true
		})
		if found {
			return true
		}
	}
	return false
}

var matchIdRegex = regexp.MustCompile(`(?i)matchID=(\d+)`)

func matchIdFromUrl(rawurl string) string {
	m := matchIdRegex.FindStringSubmatch(rawurl)
	if m == nil {
		return ""
	}
	return m[1]
}
