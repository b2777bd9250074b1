package chpp

import (
	"context"
	"fmt"
	"net/url"

	"github.com/davideneu/hattrick-matchview/lib/oauth1"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// requestToken is the temporary token pair obtained in step one of
// the handshake. Its secret signs the access-token exchange only.
type requestToken struct {
	Token  string
	Secret string
}

// Authenticate runs the full three-legged OAuth handshake:
// request token, interactive user authorization, access token.
// On success the resulting credentials are installed on the client
// and written through to the credential store when one is configured.
// On any failure previously held credentials are left untouched.
func (c *Client) Authenticate(ctx context.Context, auth Authorizer) error {
	ctx, span := tracer.Start(ctx, "client:Authenticate")
	defer span.End()

	reqToken, err := c.fetchRequestToken(ctx)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "request token step failed")
		return err
	}

	verifier, err := c.authorizeUser(ctx, auth, reqToken.Token)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "authorization step failed")
		return err
	}

	accessToken, accessSecret, err := c.fetchAccessToken(ctx, reqToken, verifier)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "access token step failed")
		return err
	}

	creds := Credentials{
		ConsumerKey:       c.creds.ConsumerKey,
		ConsumerSecret:    c.creds.ConsumerSecret,
		AccessToken:       accessToken,
		AccessTokenSecret: accessSecret,
	}
	if c.store != nil {
		err = c.store.SetCredentials(ctx, creds)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "failed to persist credentials")
			return err
		}
	}
	c.creds = creds
	return nil
}

func (c *Client) fetchRequestToken(ctx context.Context) (requestToken, error) {
	ctx, span := tracer.Start(ctx, "client:fetchRequestToken")
	defer span.End()

	params, err := oauth1.BaseParams(c.creds.ConsumerKey)
	if err != nil {
		return requestToken{}, err
	}
	params["oauth_callback"] = c.callbackUrl
	// token secret is the empty string at this step, not omitted
	params["oauth_signature"] = oauth1.Sign(
		"POST", c.endpoint(requestTokenPath), params,
		c.creds.ConsumerSecret, "",
	)

	body, err := c.signedHandshakePost(ctx, requestTokenPath, params)
	if err != nil {
		return requestToken{}, err
	}

	parsed, err := oauth1.ParseTokenResponse(body)
	if err != nil {
		return requestToken{}, err
	}
	if parsed["oauth_token"] == "" || parsed["oauth_token_secret"] == "" {
		return requestToken{}, fmt.Errorf("request token response missing token pair")
	}
	return requestToken{
		Token:  parsed["oauth_token"],
		Secret: parsed["oauth_token_secret"],
	}, nil
}

func (c *Client) authorizeUser(ctx context.Context, auth Authorizer, token string) (string, error) {
	ctx, span := tracer.Start(ctx, "client:authorizeUser")
	defer span.End()

	authorizeUrl := c.endpoint(authorizePath) + "?oauth_token=" + url.QueryEscape(token)
	span.SetAttributes(attribute.String("authorize_url", authorizeUrl))

	callbackUrl, err := auth.LaunchInteractive(ctx, authorizeUrl)
	if err != nil {
		return "", err
	}
	if callbackUrl == "" {
		return "", ErrUserCancelled
	}

	parsed, err := url.Parse(callbackUrl)
	if err != nil {
		return "", fmt.Errorf("malformed callback url: %w", err)
	}
	verifier := parsed.Query().Get("oauth_verifier")
	if verifier == "" {
		return "", ErrNoVerifier
	}
	return verifier, nil
}

func (c *Client) fetchAccessToken(ctx context.Context, reqToken requestToken, verifier string) (string, string, error) {
	ctx, span := tracer.Start(ctx, "client:fetchAccessToken")
	defer span.End()

	params, err := oauth1.BaseParams(c.creds.ConsumerKey)
	if err != nil {
		return "", "", err
	}
	params["oauth_token"] = reqToken.Token
	params["oauth_verifier"] = verifier
	params["oauth_signature"] = oauth1.Sign(
		"POST", c.endpoint(accessTokenPath), params,
		c.creds.ConsumerSecret, reqToken.Secret,
	)

	body, err := c.signedHandshakePost(ctx, accessTokenPath, params)
	if err != nil {
		return "", "", err
	}

	parsed, err := oauth1.ParseTokenResponse(body)
	if err != nil {
		return "", "", err
	}
	if parsed["oauth_token"] == "" || parsed["oauth_token_secret"] == "" {
		return "", "", fmt.Errorf("access token response missing token pair")
	}
	return parsed["oauth_token"], parsed["oauth_token_secret"], nil
}

func (c *Client) signedHandshakePost(ctx context.Context, path string, params map[string]string) (string, error) {
	res, err := c.Http.R().
		SetContext(ctx).
		SetHeader("Authorization", oauth1.AuthorizationHeader(params)).
		Post(path)
	if err != nil {
		return "", err
	}
	if res.StatusCode() < 200 || res.StatusCode() >= 300 {
		return "", &StatusError{Code: res.StatusCode(), Body: res.String()}
	}
	return res.String(), nil
}
