// Package chpp is a client for Hattrick's CHPP XML API. Every request
// is signed with OAuth 1.0a; the three-legged handshake that obtains
// the per-user access token lives here too.
package chpp

import (
	"context"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/davideneu/hattrick-matchview/lib/oauth1"
	"github.com/davideneu/hattrick-matchview/lib/telemetry"

	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/otel/codes"
)

var tracer = telemetry.Tracer("matchview.lib.scrapers.chpp")

const (
	DefaultBaseUrl = "https://chpp.hattrick.org"

	requestTokenPath = "/oauth/request_token.ashx"
	authorizePath    = "/oauth/authorize.aspx"
	accessTokenPath  = "/oauth/access_token.ashx"
	resourcePath     = "/chppxml.ashx"
)

// ActionType selects how the live endpoint reports events.
type ActionType string

const (
	ViewAll ActionType = "viewAll"
	ViewNew ActionType = "viewNew"
)

var matchIDRegex = regexp.MustCompile(`^\d+$`)

// Credentials is the full set required to sign resource calls.
type Credentials struct {
	ConsumerKey       string
	ConsumerSecret    string
	AccessToken       string
	AccessTokenSecret string
}

// Complete reports whether every field is non-empty, the definition
// of an authenticated client.
func (c Credentials) Complete() bool {
	return c.ConsumerKey != "" && c.ConsumerSecret != "" &&
		c.AccessToken != "" && c.AccessTokenSecret != ""
}

// Authorizer is the external collaborator that walks the user through
// the authorize page. It returns the callback url the provider
// redirected to, which carries oauth_verifier.
type Authorizer interface {
	LaunchInteractive(ctx context.Context, authorizeUrl string) (callbackUrl string, err error)
}

// CredentialStore persists credentials once the handshake succeeds.
type CredentialStore interface {
	SetCredentials(ctx context.Context, c Credentials) error
}

type Client struct {
	BaseUrl *url.URL
	Http    *resty.Client

	creds       Credentials
	callbackUrl string
	store       CredentialStore
}

type ClientOptions struct {
	// BaseUrl defaults to DefaultBaseUrl.
	BaseUrl        string
	ConsumerKey    string
	ConsumerSecret string
	// CallbackUrl is sent as oauth_callback during the request-token
	// step, unique to this installation.
	CallbackUrl string
	// Store receives credentials after a successful handshake. May be
	// nil, in which case the caller persists them itself.
	Store CredentialStore
}

func NewClient(opts ClientOptions) (*Client, error) {
	base := opts.BaseUrl
	if base == "" {
		base = DefaultBaseUrl
	}
	baseUrl, err := url.Parse(base)
	if err != nil {
		return nil, err
	}

	client := resty.New()
	client.SetBaseURL(base)
	client.SetHeader("user-agent", "hattrick-matchview/1.0")
	client.SetTimeout(time.Second * 30)
	telemetry.InstrumentResty(client, "matchview.lib.scrapers.chpp.http")

	return &Client{
		BaseUrl: baseUrl,
		Http:    client,
		creds: Credentials{
			ConsumerKey:    opts.ConsumerKey,
			ConsumerSecret: opts.ConsumerSecret,
		},
		callbackUrl: opts.CallbackUrl,
		store:       opts.Store,
	}, nil
}

// SetCredentials installs previously persisted credentials.
func (c *Client) SetCredentials(creds Credentials) {
	c.creds = creds
}

func (c *Client) Credentials() Credentials {
	return c.creds
}

func (c *Client) IsAuthenticated() bool {
	return c.creds.Complete()
}

func (c *Client) endpoint(path string) string {
	u := *c.BaseUrl
	u.Path = path
	u.RawQuery = ""
	return u.String()
}

// ValidateMatchID rejects anything other than a plain digit string,
// which keeps ids safe to splice into a query string.
func ValidateMatchID(matchID string) error {
	if !matchIDRegex.MatchString(matchID) {
		return ErrInvalidMatchID
	}
	return nil
}

// GetMatchDetails fetches the matchdetails XML for a match. The raw
// document is returned, parsing is the caller's concern.
func (c *Client) GetMatchDetails(ctx context.Context, matchID string) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:GetMatchDetails")
	defer span.End()

	if err := ValidateMatchID(matchID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if !c.creds.Complete() {
		span.SetStatus(codes.Error, "credentials incomplete")
		return nil, ErrNotAuthenticated
	}

	query := map[string]string{
		"file":         "matchdetails",
		"version":      "3.0",
		"sourceSystem": "hattrick",
		"matchEvents":  "true",
		"matchID":      matchID,
	}
	body, err := c.signedGet(ctx, resourcePath, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "matchdetails request failed")
		return nil, err
	}
	return body, nil
}

// GetLiveMatchEvents fetches the live commentary feed for a match.
// lastShownIndexes may be nil; when present it is serialized exactly
// once so the signed string and the sent string cannot diverge.
func (c *Client) GetLiveMatchEvents(ctx context.Context, matchID string, action ActionType, lastShownIndexes []int) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "client:GetLiveMatchEvents")
	defer span.End()

	if err := ValidateMatchID(matchID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		return nil, err
	}
	if action != ViewAll && action != ViewNew {
		span.SetStatus(codes.Error, "bad action type")
		return nil, ErrInvalidActionType
	}
	if !c.creds.Complete() {
		span.SetStatus(codes.Error, "credentials incomplete")
		return nil, ErrNotAuthenticated
	}

	query := map[string]string{
		"file":       "live",
		"version":    "2.2",
		"actionType": string(action),
		"matchID":    matchID,
	}
	if len(lastShownIndexes) > 0 {
		serialized := make([]string, len(lastShownIndexes))
		for i, idx := range lastShownIndexes {
			serialized[i] = strconv.Itoa(idx)
		}
		query["lastShownIndexes"] = strings.Join(serialized, ",")
	}

	body, err := c.signedGet(ctx, resourcePath, query)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "live request failed")
		return nil, err
	}
	return body, nil
}

// signedGet issues a GET against path with the query parameters both
// signed and sent. Only oauth_* parameters travel in the header.
func (c *Client) signedGet(ctx context.Context, path string, query map[string]string) ([]byte, error) {
	oauthParams, err := oauth1.BaseParams(c.creds.ConsumerKey)
	if err != nil {
		return nil, err
	}
	oauthParams["oauth_token"] = c.creds.AccessToken

	signing := make(map[string]string, len(oauthParams)+len(query))
	for k, v := range oauthParams {
		signing[k] = v
	}
	for k, v := range query {
		signing[k] = v
	}
	oauthParams["oauth_signature"] = oauth1.Sign(
		"GET", c.endpoint(path), signing,
		c.creds.ConsumerSecret, c.creds.AccessTokenSecret,
	)

	res, err := c.Http.R().
		SetContext(ctx).
		SetQueryParams(query).
		SetHeader("Authorization", oauth1.AuthorizationHeader(oauthParams)).
		Get(path)
	if err != nil {
		return nil, err
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return nil, &StatusError{Code: res.StatusCode(), Body: res.String()}
	}
	return res.Body(), nil
}
