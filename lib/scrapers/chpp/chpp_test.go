package chpp

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/davideneu/hattrick-matchview/lib/telemetry"

	"github.com/stretchr/testify/require"
)

// fakeChpp emulates the three oauth endpoints plus the xml resource
// endpoint, counting every request it serves.
type fakeChpp struct {
	s        *httptest.Server
	requests atomic.Int64

	lastResourceQuery  string
	lastResourceHeader string
}

func newFakeChpp(t *testing.T) *fakeChpp {
	f := &fakeChpp{}
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/request_token.ashx", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		if !strings.HasPrefix(r.Header.Get("Authorization"), "OAuth ") {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("oauth_token=reqtoken&oauth_token_secret=reqsecret"))
	})
	mux.HandleFunc("/oauth/access_token.ashx", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		auth := r.Header.Get("Authorization")
		if !strings.Contains(auth, `oauth_token="reqtoken"`) ||
			!strings.Contains(auth, `oauth_verifier="verified-123"`) {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Write([]byte("oauth_token=acctoken&oauth_token_secret=accsecret"))
	})
	mux.HandleFunc("/chppxml.ashx", func(w http.ResponseWriter, r *http.Request) {
		f.requests.Add(1)
		f.lastResourceQuery = r.URL.RawQuery
		f.lastResourceHeader = r.Header.Get("Authorization")
		w.Write([]byte(`<?xml version="1.0"?><HattrickData><Match></Match></HattrickData>`))
	})
	f.s = httptest.NewServer(mux)
	t.Cleanup(f.s.Close)
	return f
}

type staticAuthorizer struct {
	callback string
	err      error
}

func (a staticAuthorizer) LaunchInteractive(ctx context.Context, authorizeUrl string) (string, error) {
	return a.callback, a.err
}

type memoryStore struct {
	saved *Credentials
}

func (m *memoryStore) SetCredentials(ctx context.Context, c Credentials) error {
	m.saved = &c
	return nil
}

func newTestClient(t *testing.T, f *fakeChpp, store CredentialStore) *Client {
	client, err := NewClient(ClientOptions{
		BaseUrl:        f.s.URL,
		ConsumerKey:    "consumer",
		ConsumerSecret: "consumersecret",
		CallbackUrl:    "https://example.invalid/oauth",
		Store:          store,
	})
	require.NoError(t, err)
	return client
}

func TestHandshake(t *testing.T) {
	cleanup := telemetry.SetupForTesting(t, "test:lib/scrapers/chpp")
	defer cleanup()

	f := newFakeChpp(t)
	store := &memoryStore{}
	client := newTestClient(t, f, store)

	auth := staticAuthorizer{
		callback: "https://example.invalid/oauth?oauth_token=reqtoken&oauth_verifier=verified-123",
	}
	err := client.Authenticate(context.Background(), auth)
	require.NoError(t, err)

	require.True(t, client.IsAuthenticated())
	require.Equal(t, "acctoken", client.Credentials().AccessToken)
	require.Equal(t, "accsecret", client.Credentials().AccessTokenSecret)

	require.NotNil(t, store.saved)
	require.Equal(t, "acctoken", store.saved.AccessToken)
}

func TestHandshakeNoVerifier(t *testing.T) {
	f := newFakeChpp(t)
	client := newTestClient(t, f, nil)

	auth := staticAuthorizer{callback: "https://example.invalid/oauth?other=1"}
	err := client.Authenticate(context.Background(), auth)
	require.ErrorIs(t, err, ErrNoVerifier)
	require.False(t, client.IsAuthenticated())
}

func TestHandshakeUserCancelled(t *testing.T) {
	f := newFakeChpp(t)
	client := newTestClient(t, f, nil)

	auth := staticAuthorizer{err: ErrUserCancelled}
	err := client.Authenticate(context.Background(), auth)
	require.ErrorIs(t, err, ErrUserCancelled)
}

func TestHandshakeKeepsPriorCredentialsOnFailure(t *testing.T) {
	f := newFakeChpp(t)
	client := newTestClient(t, f, nil)
	prior := Credentials{
		ConsumerKey:       "consumer",
		ConsumerSecret:    "consumersecret",
		AccessToken:       "old",
		AccessTokenSecret: "oldsecret",
	}
	client.SetCredentials(prior)

	auth := staticAuthorizer{callback: "https://example.invalid/oauth?other=1"}
	err := client.Authenticate(context.Background(), auth)
	require.Error(t, err)
	require.Equal(t, prior, client.Credentials())
}

func TestInvalidMatchIDNoNetworkCall(t *testing.T) {
	f := newFakeChpp(t)
	client := newTestClient(t, f, nil)
	client.SetCredentials(Credentials{
		ConsumerKey:       "consumer",
		ConsumerSecret:    "consumersecret",
		AccessToken:       "acctoken",
		AccessTokenSecret: "accsecret",
	})

	for _, id := range []string{"12a", "", "-5", "1 2", "12;DROP"} {
		_, err := client.GetMatchDetails(context.Background(), id)
		require.ErrorIs(t, err, ErrInvalidMatchID, "match id %q", id)

		_, err = client.GetLiveMatchEvents(context.Background(), id, ViewAll, nil)
		require.ErrorIs(t, err, ErrInvalidMatchID, "match id %q", id)
	}
	require.Equal(t, int64(0), f.requests.Load())
}

func TestInvalidActionTypeNoNetworkCall(t *testing.T) {
	f := newFakeChpp(t)
	client := newTestClient(t, f, nil)
	client.SetCredentials(Credentials{
		ConsumerKey:       "consumer",
		ConsumerSecret:    "consumersecret",
		AccessToken:       "acctoken",
		AccessTokenSecret: "accsecret",
	})

	_, err := client.GetLiveMatchEvents(context.Background(), "123", ActionType("view"), nil)
	require.ErrorIs(t, err, ErrInvalidActionType)
	require.Equal(t, int64(0), f.requests.Load())
}

func TestUnauthenticatedNoNetworkCall(t *testing.T) {
	f := newFakeChpp(t)
	client := newTestClient(t, f, nil)

	_, err := client.GetMatchDetails(context.Background(), "123456")
	require.ErrorIs(t, err, ErrNotAuthenticated)
	require.Equal(t, int64(0), f.requests.Load())
}

func TestResourceCallSplitsHeaderAndQuery(t *testing.T) {
	f := newFakeChpp(t)
	client := newTestClient(t, f, nil)
	client.SetCredentials(Credentials{
		ConsumerKey:       "consumer",
		ConsumerSecret:    "consumersecret",
		AccessToken:       "acctoken",
		AccessTokenSecret: "accsecret",
	})

	body, err := client.GetMatchDetails(context.Background(), "757402591")
	require.NoError(t, err)
	require.Contains(t, string(body), "<Match>")

	// api params in the query string, none of them in the header
	require.Contains(t, f.lastResourceQuery, "file=matchdetails")
	require.Contains(t, f.lastResourceQuery, "matchID=757402591")
	require.Contains(t, f.lastResourceQuery, "matchEvents=true")
	require.NotContains(t, f.lastResourceQuery, "oauth_")

	require.Contains(t, f.lastResourceHeader, `oauth_consumer_key="consumer"`)
	require.Contains(t, f.lastResourceHeader, `oauth_token="acctoken"`)
	require.Contains(t, f.lastResourceHeader, "oauth_signature=")
	require.NotContains(t, f.lastResourceHeader, "matchID")
}

func TestLiveEventsSerializesIndexesOnce(t *testing.T) {
	f := newFakeChpp(t)
	client := newTestClient(t, f, nil)
	client.SetCredentials(Credentials{
		ConsumerKey:       "consumer",
		ConsumerSecret:    "consumersecret",
		AccessToken:       "acctoken",
		AccessTokenSecret: "accsecret",
	})

	_, err := client.GetLiveMatchEvents(context.Background(), "123", ViewNew, []int{4, 8, 15})
	require.NoError(t, err)
	require.Contains(t, f.lastResourceQuery, "lastShownIndexes=4%2C8%2C15")
	require.Contains(t, f.lastResourceQuery, "actionType=viewNew")
}

func TestStatusError(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})
	s := httptest.NewServer(mux)
	t.Cleanup(s.Close)

	client, err := NewClient(ClientOptions{
		BaseUrl:        s.URL,
		ConsumerKey:    "consumer",
		ConsumerSecret: "consumersecret",
	})
	require.NoError(t, err)
	client.SetCredentials(Credentials{
		ConsumerKey:       "consumer",
		ConsumerSecret:    "consumersecret",
		AccessToken:       "acctoken",
		AccessTokenSecret: "accsecret",
	})

	_, err = client.GetMatchDetails(context.Background(), "123")
	var statusErr *StatusError
	require.ErrorAs(t, err, &statusErr)
	require.Equal(t, http.StatusBadGateway, statusErr.Code)
}
