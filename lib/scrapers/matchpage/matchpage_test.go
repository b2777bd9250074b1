package matchpage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/davideneu/hattrick-matchview/lib/telemetry"
	"github.com/davideneu/hattrick-matchview/services/matchdata"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

const matchPageHtml = `<!DOCTYPE html>
<html>
<body>
  <div class="sidebar">
    <a href="/Shop/">Il nostro negozio</a>
  </div>
  <div class="breadcrumb boxHead"><a href="/Club/">Club</a><a href="/Club/Matches/">Matches</a></div>
  <div class="boxHead">V.227</div>
  <div class="matchDate">30/08/2026 15:00</div>
  <div class="arena">Example Arena</div>
  <div class="score">2 - 1</div>
  <div class="lineup">
    <table>
      <tr><td><a href="/Club/?TeamID=123">FC Example</a></td></tr>
      <tr><td><a href="/Club/?TeamID=456">AC Visitors</a></td></tr>
      <tr><td><a href="/Club/Players/Player.aspx?playerID=9001">Keeper One</a></td></tr>
      <tr><td><a href="/Club/Players/Player.aspx?playerID=9002">Defender Two</a></td></tr>
    </table>
  </div>
  <table class="stats">
    <tr><td>Possesso palla</td><td>55%</td><td>45%</td></tr>
    <tr><td>Occasioni da gol</td><td>6</td><td>3</td></tr>
  </table>
  <div class="telecronaca">
    <div class="matchEvent">12' Gol! Defender Two scores from distance</div>
    <div class="matchEvent">43' Cartellino giallo for a late challenge</div>
    <div class="matchEvent"><span class="minute">71'</span> Sostituzione for the visitors</div>
  </div>
</body>
</html>`

func docFromHtml(t *testing.T, page string) *goquery.Document {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	require.NoError(t, err)
	return doc
}

func newTestExtractor(t *testing.T, page string) *Extractor {
	return NewExtractor(ExtractorOptions{
		Source:       StaticSource{Doc: docFromHtml(t, page)},
		MatchUrl:     "https://www84.hattrick.org/Club/Matches/Match.aspx?matchID=757402591",
		PollInterval: time.Millisecond,
		WaitCeiling:  10 * time.Millisecond,
	})
}

func TestExtractFullPage(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	data := newTestExtractor(t, matchPageHtml).Extract(context.Background())

	require.Equal(t, "757402591", data.MatchInfo.MatchID)
	require.Equal(t, "V.227", data.MatchInfo.Type)
	require.Equal(t, "Example Arena", data.MatchInfo.Arena)
	require.Equal(t, "30/08/2026 15:00", data.MatchInfo.Date)

	require.Equal(t, "FC Example", data.Teams.Home.Name)
	require.Equal(t, "123", data.Teams.Home.ID)
	require.Equal(t, 2, data.Teams.Home.Score)
	require.Equal(t, "AC Visitors", data.Teams.Away.Name)
	require.Equal(t, "456", data.Teams.Away.ID)
	require.Equal(t, 1, data.Teams.Away.Score)

	require.Len(t, data.Players.Home, 2)
	require.Equal(t, "9001", data.Players.Home[0].ID)
	require.Equal(t, "Keeper One", data.Players.Home[0].Name)

	require.Equal(t, matchdata.SplitStat{Home: 55, Away: 45}, data.Stats.Possession)
	require.Equal(t, matchdata.SplitStat{Home: 6, Away: 3}, data.Stats.Chances)

	require.Len(t, data.Events, 3)
	require.Equal(t, 12, data.Events[0].Minute)
	require.Equal(t, matchdata.KindGoal, data.Events[0].Kind)
	require.Equal(t, 43, data.Events[1].Minute)
	require.Equal(t, matchdata.KindYellowCard, data.Events[1].Kind)
	require.Equal(t, 71, data.Events[2].Minute)
	require.Equal(t, matchdata.KindSubstitution, data.Events[2].Kind)
}

func TestMatchTypeIgnoresShopAndNavLinks(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	data := newTestExtractor(t, matchPageHtml).Extract(context.Background())
	require.NotContains(t, strings.ToLower(data.MatchInfo.Type), "negozio")
	require.Equal(t, "V.227", data.MatchInfo.Type)
}

func TestMatchTypeRejectsAllNoise(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	// every header candidate is noise: nav breadcrumb, shop link,
	// pagination arrows, a loading phrase, an anchor-wrapped title
	page := `<html><body>
	  <div class="boxHead"><a href="/a">Club</a><a href="/b">Matches</a></div>
	  <h1>Il nostro negozio</h1>
	  <div class="list-header">Next page »</div>
	  <div class="title">Attendere prego...</div>
	  <a href="/x"><span class="matchHeader">Wrapped title</span></a>
	</body></html>`

	data := newTestExtractor(t, page).Extract(context.Background())
	require.Empty(t, data.MatchInfo.Type)
}

func TestShortCodesAccepted(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	page := `<html><body><h1>V.1</h1></body></html>`
	data := newTestExtractor(t, page).Extract(context.Background())
	require.Equal(t, "V.1", data.MatchInfo.Type)
}

func TestEventsSkipLoadingPlaceholders(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	page := `<html><body>
	  <div class="matchEvent"><canvas></canvas>5' streaming in</div>
	  <div class="matchEvent"><div class="rive-animator"></div>7' still loading</div>
	  <div class="matchEvent">Attendere prego</div>
	  <div class="matchEvent">x</div>
	  <div class="matchEvent">90' Fischio finale</div>
	</body></html>`

	data := newTestExtractor(t, page).Extract(context.Background())
	require.Len(t, data.Events, 1)
	require.Equal(t, 90, data.Events[0].Minute)
}

func TestEventsMinuteMarkerFallback(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	// no dedicated event containers: rows with minute markers are
	// swept up instead, curly apostrophe included
	page := `<html><body><table>
	  <tr><td>23′ Goal for the home side</td></tr>
	  <tr><td>88' Rote Karte!</td></tr>
	  <tr><td>no minute here</td></tr>
	</table></body></html>`

	data := newTestExtractor(t, page).Extract(context.Background())
	require.Len(t, data.Events, 2)
	require.Equal(t, 23, data.Events[0].Minute)
	require.Equal(t, matchdata.KindGoal, data.Events[0].Kind)
	require.Equal(t, 88, data.Events[1].Minute)
	require.Equal(t, matchdata.KindRedCard, data.Events[1].Kind)
}

func TestEventsSortedWithMissingMinutes(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	page := `<html><body>
	  <div class="matchEvent">The captains meet for the coin toss</div>
	  <div class="matchEvent">67' A late chance goes wide</div>
	  <div class="matchEvent">4' Early pressure</div>
	</body></html>`

	data := newTestExtractor(t, page).Extract(context.Background())
	require.Len(t, data.Events, 3)
	require.Equal(t, 0, data.Events[0].Minute)
	require.Equal(t, 4, data.Events[1].Minute)
	require.Equal(t, 67, data.Events[2].Minute)
}

func TestExtractEmptyPage(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	data := newTestExtractor(t, `<html><body></body></html>`).Extract(context.Background())
	require.NotNil(t, data)
	require.Empty(t, data.Teams.Home.Name)
	require.NotNil(t, data.Events)
	require.Empty(t, data.Events)
	// the match id still comes from the page address
	require.Equal(t, "757402591", data.MatchInfo.MatchID)
}

func TestFetchSource(t *testing.T) {
	telemetry.SetupForTesting(t, "matchpage-test")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(matchPageHtml))
	}))
	defer server.Close()

	extractor := NewExtractor(ExtractorOptions{
		Source:   FetchSource{Http: resty.New(), Url: server.URL},
		MatchUrl: "https://www.hattrick.org/Club/Matches/Match.aspx?matchID=757402591",
	})

	data := extractor.Extract(context.Background())
	require.Equal(t, "FC Example", data.Teams.Home.Name)
	require.Equal(t, "AC Visitors", data.Teams.Away.Name)
	require.Equal(t, "757402591", data.MatchInfo.MatchID)
	require.NotEmpty(t, data.Events)
}
