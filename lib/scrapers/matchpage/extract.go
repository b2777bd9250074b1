package matchpage

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/davideneu/hattrick-matchview/lib/htmlutil"
	"github.com/davideneu/hattrick-matchview/lib/textutil"
	"github.com/davideneu/hattrick-matchview/services/matchdata"

	"github.com/PuerkitoBio/goquery"
)

const (
	// teamIdKey and playerIdKey are the query keys the site puts in
	// entity links, the most stable markers on the page.
	teamIdKey   = "TeamID"
	playerIdKey = "PlayerID"

	minHeaderTextLen = 3
	maxHeaderTextLen = 100
)

var (
	headerSelectors = []string{
		".matchHeader",
		".boxHead",
		"h1",
		"[class*=header]",
		"[class*=title]",
	}
	dateSelectors = []string{
		".date",
		".matchDate",
		"time",
		"[class*=date]",
		"[datetime]",
	}
	arenaSelectors = []string{
		".arena",
		"[class*=arena]",
	}
	scoreSelector  = ".score, .matchScore, .result"
	eventSelectors = []string{
		".matchEvent",
		".event",
		".commentary",
		".telecronaca",
		"[class*=event]",
		"[class*=comment]",
	}
	minuteSelector = ".minute, [class*=minute]"

	scoreRegex        = regexp.MustCompile(`(\d+)\s*[-:]\s*(\d+)`)
	minuteMarkerRegex = regexp.MustCompile(`(\d+)['′]`)
)

func cleanText(sel *goquery.Selection) string {
	return htmlutil.CleanText(sel.Text())
}

func hasAnimatorChild(sel *goquery.Selection) bool {
	return sel.Find("canvas").Length() > 0 || sel.Find("[class*=rive]").Length() > 0
}

// acceptHeaderText is the noise gate for match info extraction. It
// rejects nav breadcrumbs (text fully covered by descendant link
// text), loading placeholders, pagination arrows, shop links, nodes
// inside anchors or buttons, and texts outside the 3..100 length
// window.
func acceptHeaderText(sel *goquery.Selection, text string) bool {
	if len(text) < minHeaderTextLen || len(text) > maxHeaderTextLen {
		return false
	}
	if anchorText := htmlutil.JoinedAnchorText(sel); anchorText != "" && strings.HasPrefix(anchorText, text) {
		return false
	}
	if textutil.ContainsAny(text, loadingPhrases) {
		return false
	}
	if textutil.ContainsAny(text, paginationMarkers) {
		return false
	}
	if textutil.ContainsAny(text, shopKeywords) {
		return false
	}
	if sel.Closest("a, button").Length() > 0 {
		return false
	}
	return true
}

// firstAcceptedText walks the selector priority list and returns the
// first candidate surviving the noise gate. Selector order is
// authoritative: a hit on an earlier selector beats everything after.
func firstAcceptedText(doc *goquery.Document, selectors []string) string {
	for _, selector := range selectors {
		var accepted string
		doc.Find(selector).EachWithBreak(func(_ int, sel *goquery.Selection) bool {
			text := cleanText(sel)
			if acceptHeaderText(sel, text) {
				accepted = text
				return false
			}
			return true
		})
		if accepted != "" {
			return accepted
		}
	}
	return ""
}

func (e *Extractor) extractMatchInfo(doc *goquery.Document, info *matchdata.MatchInfo) {
	info.Type = firstAcceptedText(doc, headerSelectors)
	info.Arena = firstAcceptedText(doc, arenaSelectors)

	info.Date = firstAcceptedText(doc, dateSelectors)
	if info.Date == "" {
		// machine-readable datetime attributes escape the text filters
		if datetime, ok := doc.Find("[datetime]").First().Attr("datetime"); ok {
			info.Date = datetime
		}
	}
}

// teamAnchors returns the page's team links in document order.
func teamAnchors(doc *goquery.Document) []htmlutil.Anchor {
	sel := doc.Find("a").FilterFunction(func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		return ok && htmlutil.HasQueryParam(href, teamIdKey)
	})
	return htmlutil.GetAnchors(sel)
}

func (e *Extractor) extractTeams(doc *goquery.Document, teams *matchdata.Teams) {
	anchors := teamAnchors(doc)
	if len(anchors) >= 2 {
		teams.Home.Name = anchors[0].Name
		teams.Home.ID = htmlutil.QueryParam(anchors[0].Href, teamIdKey)
		teams.Away.Name = anchors[1].Name
		teams.Away.ID = htmlutil.QueryParam(anchors[1].Href, teamIdKey)
	}

	scoreText := cleanText(doc.Find(scoreSelector).First())
	if m := scoreRegex.FindStringSubmatch(scoreText); m != nil {
		teams.Home.Score, _ = strconv.Atoi(m[1])
		teams.Away.Score, _ = strconv.Atoi(m[2])
	}
}

// extractPlayers collects every player link on the page. The
// home/away split relies on a row-ancestry check that cannot always
// tell the sides apart on this markup; misfiled players are a known
// limitation of the scraped path.
func (e *Extractor) extractPlayers(doc *goquery.Document, players *matchdata.Lineups) {
	doc.Find("a").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok || !htmlutil.HasQueryParam(href, playerIdKey) {
			return
		}
		player := matchdata.Player{
			Name: cleanText(sel),
			ID:   htmlutil.QueryParam(href, playerIdKey),
		}
		if sel.Closest("tr, li, .player").Length() > 0 {
			players.Home = append(players.Home, player)
		}
	})
}

func (e *Extractor) extractStats(doc *goquery.Document, stats *matchdata.Stats) {
	havePossession := false
	haveChances := false
	doc.Find("tr, .stat-row, .statistic").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := cleanText(sel)
		if !havePossession && textutil.ContainsAny(text, possessionKeywords) {
			if numbers := textutil.Numbers(text, 2); len(numbers) >= 2 {
				stats.Possession = matchdata.SplitStat{Home: numbers[0], Away: numbers[1]}
				havePossession = true
			}
		}
		if !haveChances && textutil.ContainsAny(text, chanceKeywords) {
			if numbers := textutil.Numbers(text, 2); len(numbers) >= 2 {
				stats.Chances = matchdata.SplitStat{Home: numbers[0], Away: numbers[1]}
				haveChances = true
			}
		}
		return !(havePossession && haveChances)
	})
}

func (e *Extractor) extractEvents(doc *goquery.Document) []matchdata.Event {
	candidates := eventCandidates(doc)

	events := []matchdata.Event{}
	candidates.Each(func(_ int, sel *goquery.Selection) {
		if hasAnimatorChild(sel) {
			return
		}
		text := cleanText(sel)
		if len(text) < 3 || textutil.ContainsAny(text, loadingPhrases) {
			return
		}
		events = append(events, matchdata.Event{
			Minute:      eventMinute(sel, text),
			Kind:        classifyEvent(text),
			Description: text,
		})
	})
	matchdata.SortEvents(events)
	return events
}

// eventCandidates picks the first event selector with any matches,
// falling back to a sweep of row-like elements carrying a minute
// marker when no dedicated container exists.
func eventCandidates(doc *goquery.Document) *goquery.Selection {
	for _, selector := range eventSelectors {
		sel := doc.Find(selector)
		if sel.Length() > 0 {
			return sel
		}
	}
	return doc.Find("tr, div, li, p").FilterFunction(func(_ int, sel *goquery.Selection) bool {
		return minuteMarkerRegex.MatchString(sel.Text())
	})
}

// eventMinute prefers a dedicated minute sub-element over the
// apostrophe pattern in the full text. Both straight and curly
// apostrophes mark minutes on this site.
func eventMinute(sel *goquery.Selection, text string) int {
	if minuteNode := sel.Find(minuteSelector).First(); minuteNode.Length() > 0 {
		if numbers := textutil.Numbers(minuteNode.Text(), 1); len(numbers) == 1 {
			return numbers[0]
		}
	}
	if m := minuteMarkerRegex.FindStringSubmatch(text); m != nil {
		minute, _ := strconv.Atoi(m[1])
		return minute
	}
	return 0
}

func classifyEvent(text string) matchdata.EventKind {
	for _, entry := range eventKindKeywords {
		if textutil.ContainsAny(text, entry.keywords) {
			return entry.kind
		}
	}
	return matchdata.KindInfo
}
