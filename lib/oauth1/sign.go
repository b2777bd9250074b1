// Package oauth1 implements the client half of the OAuth 1.0a signing
// protocol: percent encoding, signature base string construction,
// HMAC-SHA1 signatures and Authorization header serialization.
package oauth1

import (
	"crypto/hmac"
	"crypto/sha1"
	"encoding/base64"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mazen160/go-random"
)

const (
	SignatureMethod = "HMAC-SHA1"
	Version         = "1.0"

	nonceLength = 32
)

// PercentEncode encodes a string per RFC 3986 with the OAuth refinement
// that "!", "'", "(", ")" and "*" are percent-encoded too. Unreserved
// characters (ALPHA, DIGIT, "-", ".", "_", "~") pass through unchanged.
func PercentEncode(s string) string {
	var out strings.Builder
	for _, b := range []byte(s) {
		if isUnreserved(b) {
			out.WriteByte(b)
			continue
		}
		out.WriteString(fmt.Sprintf("%%%02X", b))
	}
	return out.String()
}

func isUnreserved(b byte) bool {
	switch {
	case b >= 'A' && b <= 'Z':
		return true
	case b >= 'a' && b <= 'z':
		return true
	case b >= '0' && b <= '9':
		return true
	case b == '-' || b == '.' || b == '_' || b == '~':
		return true
	}
	return false
}

// Sign computes the OAuth 1.0a HMAC-SHA1 signature over a request.
// `params` must hold every parameter that participates in signing,
// OAuth and API query parameters alike, excluding oauth_signature.
// tokenSecret is the empty string during the request-token step.
func Sign(method, rawurl string, params map[string]string, consumerSecret, tokenSecret string) string {
	base := SignatureBaseString(method, rawurl, params)
	key := PercentEncode(consumerSecret) + "&" + PercentEncode(tokenSecret)

	mac := hmac.New(sha1.New, []byte(key))
	mac.Write([]byte(base))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// SignatureBaseString builds `METHOD&enc(url)&enc(sortedParams)`.
// Pairs are encoded first, then sorted by encoded key with encoded
// value as the tie breaker.
func SignatureBaseString(method, rawurl string, params map[string]string) string {
	type pair struct {
		key, value string
	}
	pairs := make([]pair, 0, len(params))
	for k, v := range params {
		if k == "oauth_signature" {
			continue
		}
		pairs = append(pairs, pair{PercentEncode(k), PercentEncode(v)})
	}
	// Sorting the joined "k=v" strings would misorder keys that are
	// prefixes of other keys, since "=" sorts above digits.
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].key != pairs[j].key {
			return pairs[i].key < pairs[j].key
		}
		return pairs[i].value < pairs[j].value
	})

	joined := make([]string, len(pairs))
	for i, p := range pairs {
		joined[i] = p.key + "=" + p.value
	}

	return strings.ToUpper(method) +
		"&" + PercentEncode(rawurl) +
		"&" + PercentEncode(strings.Join(joined, "&"))
}

// AuthorizationHeader serializes the oauth_* subset of params into an
// `OAuth k="v", ...` header. Non-OAuth parameters are deliberately
// left out: they travel in the URL query string instead.
func AuthorizationHeader(params map[string]string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		if strings.HasPrefix(k, "oauth_") {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf(`%s="%s"`, PercentEncode(k), PercentEncode(params[k])))
	}
	return "OAuth " + strings.Join(pairs, ", ")
}

// Nonce returns a fresh unpredictable request token of 32 alphanumeric
// characters.
func Nonce() (string, error) {
	return random.String(nonceLength)
}

// Timestamp returns the current unix time in seconds as a string, the
// format oauth_timestamp requires.
func Timestamp() string {
	return fmt.Sprintf("%d", time.Now().Unix())
}

// BaseParams assembles the always-present oauth_* parameters for a new
// request. The signature is computed and appended by the caller.
func BaseParams(consumerKey string) (map[string]string, error) {
	nonce, err := Nonce()
	if err != nil {
		return nil, err
	}
	return map[string]string{
		"oauth_consumer_key":     consumerKey,
		"oauth_signature_method": SignatureMethod,
		"oauth_timestamp":        Timestamp(),
		"oauth_nonce":            nonce,
		"oauth_version":          Version,
	}, nil
}

// ParseTokenResponse decodes the `key=value&key=value` body returned
// by the request-token and access-token endpoints.
func ParseTokenResponse(body string) (map[string]string, error) {
	values, err := url.ParseQuery(body)
	if err != nil {
		return nil, fmt.Errorf("malformed token response: %w", err)
	}
	out := make(map[string]string, len(values))
	for k := range values {
		out[k] = values.Get(k)
	}
	return out, nil
}
