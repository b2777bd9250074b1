package matchdata

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ErrMalformedXML is returned when a response body cannot be decoded
// or lacks the expected root content.
var ErrMalformedXML = errors.New("malformed xml response")

// RemoteError is an api-level error carried inside a well-formed
// response document.
type RemoteError struct {
	Message string
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("chpp api error: %s", e.Message)
}

type matchDetailsDoc struct {
	Match *matchXML `xml:"Match"`
}

type matchXML struct {
	MatchID                  string     `xml:"MatchID"`
	MatchType                string     `xml:"MatchType"`
	MatchDate                string     `xml:"MatchDate"`
	FinishedDate             string     `xml:"FinishedDate"`
	Status                   string     `xml:"Status"`
	HomeTeam                 teamXML    `xml:"HomeTeam"`
	AwayTeam                 teamXML    `xml:"AwayTeam"`
	Arena                    arenaXML   `xml:"Arena"`
	Goals                    []goalXML  `xml:"Scoreboard>Goal"`
	Events                   []eventXML `xml:"EventList>Event"`
	PossessionFirstHalfHome  string     `xml:"PossessionFirstHalfHome"`
	PossessionFirstHalfAway  string     `xml:"PossessionFirstHalfAway"`
	PossessionSecondHalfHome string     `xml:"PossessionSecondHalfHome"`
	PossessionSecondHalfAway string     `xml:"PossessionSecondHalfAway"`
}

type teamXML struct {
	HomeTeamID     string      `xml:"HomeTeamID"`
	HomeTeamName   string      `xml:"HomeTeamName"`
	HomeGoals      string      `xml:"HomeGoals"`
	AwayTeamID     string      `xml:"AwayTeamID"`
	AwayTeamName   string      `xml:"AwayTeamName"`
	AwayGoals      string      `xml:"AwayGoals"`
	Formation      string      `xml:"Formation"`
	TacticType     string      `xml:"TacticType"`
	TacticSkill    string      `xml:"TacticSkill"`
	RatingMidfield string      `xml:"RatingMidfield"`
	RatingLeftDef  string      `xml:"RatingLeftDef"`
	RatingMidDef   string      `xml:"RatingMidDef"`
	RatingRightDef string      `xml:"RatingRightDef"`
	RatingLeftAtt  string      `xml:"RatingLeftAtt"`
	RatingMidAtt   string      `xml:"RatingMidAtt"`
	RatingRightAtt string      `xml:"RatingRightAtt"`
	Lineup         []playerXML `xml:"StartingLineup>Player"`
}

type playerXML struct {
	PlayerID   string `xml:"PlayerID"`
	PlayerName string `xml:"PlayerName"`
	RoleID     string `xml:"RoleID"`
	Behaviour  string `xml:"Behaviour"`
}

type arenaXML struct {
	ArenaID   string `xml:"ArenaID"`
	ArenaName string `xml:"ArenaName"`
	WeatherID string `xml:"WeatherID"`
	SoldTotal string `xml:"SoldTotal"`
}

type goalXML struct {
	Minute            string `xml:"Minute"`
	MatchPart         string `xml:"MatchPart"`
	SubjectTeamID     string `xml:"SubjectTeamID"`
	SubjectPlayerID   string `xml:"SubjectPlayerID"`
	SubjectPlayerName string `xml:"SubjectPlayerName"`
	ObjectPlayerID    string `xml:"ObjectPlayerID"`
	ObjectPlayerName  string `xml:"ObjectPlayerName"`
}

type eventXML struct {
	Minute      string `xml:"Minute"`
	EventTypeID string `xml:"EventTypeID"`
	EventText   string `xml:"EventText"`
	TeamID      string `xml:"TeamID"`
	PlayerID    string `xml:"PlayerID"`
}

// atoiOr0 mirrors how missing or garbled numeric elements are
// treated: they become 0, never a parse failure.
func atoiOr0(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}

// findErrorElement walks the token stream looking for an Error
// element anywhere in the document, returning its text. A token-level
// scan is used because the error node's position varies between
// endpoints and api versions.
func findErrorElement(doc []byte) (string, bool, error) {
	dec := xml.NewDecoder(bytes.NewReader(doc))
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			return "", false, nil
		}
		if err != nil {
			return "", false, err
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		if start.Name.Local == "Error" {
			var text string
			err := dec.DecodeElement(&text, &start)
			if err != nil {
				return "", false, err
			}
			return strings.TrimSpace(text), true, nil
		}
	}
}

// checkDocument validates well-formedness and surfaces api-level
// errors before any field extraction happens.
func checkDocument(doc []byte) error {
	msg, found, err := findErrorElement(doc)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrMalformedXML, err)
	}
	if found {
		return &RemoteError{Message: msg}
	}
	return nil
}

// ParseMatchDetails converts a matchdetails response into the
// normalized record. Deterministic, no side effects.
func ParseMatchDetails(doc []byte) (*MatchData, error) {
	if err := checkDocument(doc); err != nil {
		return nil, err
	}

	var parsed matchDetailsDoc
	if err := xml.Unmarshal(doc, &parsed); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrMalformedXML, err)
	}
	if parsed.Match == nil {
		return nil, fmt.Errorf("%w: no Match element", ErrMalformedXML)
	}
	m := parsed.Match

	data := &MatchData{
		MatchInfo: MatchInfo{
			MatchID:      m.MatchID,
			Date:         m.MatchDate,
			Type:         m.MatchType,
			Arena:        m.Arena.ArenaName,
			ArenaID:      m.Arena.ArenaID,
			WeatherID:    atoiOr0(m.Arena.WeatherID),
			Attendance:   atoiOr0(m.Arena.SoldTotal),
			FinishedDate: m.FinishedDate,
			Status:       m.Status,
		},
		Teams: Teams{
			Home: Team{
				Name:        m.HomeTeam.HomeTeamName,
				ID:          m.HomeTeam.HomeTeamID,
				Score:       atoiOr0(m.HomeTeam.HomeGoals),
				Formation:   m.HomeTeam.Formation,
				TacticType:  m.HomeTeam.TacticType,
				TacticSkill: m.HomeTeam.TacticSkill,
				Ratings:     ratingsFromTeam(m.HomeTeam),
			},
			Away: Team{
				Name:        m.AwayTeam.AwayTeamName,
				ID:          m.AwayTeam.AwayTeamID,
				Score:       atoiOr0(m.AwayTeam.AwayGoals),
				Formation:   m.AwayTeam.Formation,
				TacticType:  m.AwayTeam.TacticType,
				TacticSkill: m.AwayTeam.TacticSkill,
				Ratings:     ratingsFromTeam(m.AwayTeam),
			},
		},
		Players: Lineups{
			Home: playersFromLineup(m.HomeTeam.Lineup),
			Away: playersFromLineup(m.AwayTeam.Lineup),
		},
		Stats: Stats{
			Possession: SplitStat{
				Home: atoiOr0(m.PossessionFirstHalfHome),
				Away: atoiOr0(m.PossessionFirstHalfAway),
			},
			PossessionSecondHalf: SplitStat{
				Home: atoiOr0(m.PossessionSecondHalfHome),
				Away: atoiOr0(m.PossessionSecondHalfAway),
			},
		},
		Events: eventsFromXML(m.Events),
		Goals:  goalsFromXML(m.Goals),
	}
	SortEvents(data.Events)
	return data, nil
}

// ParseLiveEvents converts a live response into the normalized event
// list. Every Event element in the document becomes a record, blank
// descriptions included: filtering is a presentation concern.
func ParseLiveEvents(doc []byte) ([]Event, error) {
	if err := checkDocument(doc); err != nil {
		return nil, err
	}

	dec := xml.NewDecoder(bytes.NewReader(doc))
	sawRoot := false
	var raw []eventXML
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedXML, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		sawRoot = true
		if start.Name.Local != "Event" {
			continue
		}
		var ev eventXML
		if err := dec.DecodeElement(&ev, &start); err != nil {
			return nil, fmt.Errorf("%w: %s", ErrMalformedXML, err)
		}
		raw = append(raw, ev)
	}
	if !sawRoot {
		return nil, fmt.Errorf("%w: empty document", ErrMalformedXML)
	}

	events := eventsFromXML(raw)
	SortEvents(events)
	return events, nil
}

func ratingsFromTeam(t teamXML) SectorRatings {
	return SectorRatings{
		Midfield: atoiOr0(t.RatingMidfield),
		LeftDef:  atoiOr0(t.RatingLeftDef),
		MidDef:   atoiOr0(t.RatingMidDef),
		RightDef: atoiOr0(t.RatingRightDef),
		LeftAtt:  atoiOr0(t.RatingLeftAtt),
		MidAtt:   atoiOr0(t.RatingMidAtt),
		RightAtt: atoiOr0(t.RatingRightAtt),
	}
}

func playersFromLineup(lineup []playerXML) []Player {
	players := make([]Player, 0, len(lineup))
	for _, p := range lineup {
		players = append(players, Player{
			ID:        p.PlayerID,
			Name:      p.PlayerName,
			RoleID:    p.RoleID,
			Behaviour: p.Behaviour,
		})
	}
	return players
}

func eventsFromXML(raw []eventXML) []Event {
	events := make([]Event, 0, len(raw))
	for _, ev := range raw {
		typeID := atoiOr0(ev.EventTypeID)
		events = append(events, Event{
			Minute:      atoiOr0(ev.Minute),
			Kind:        KindForTypeID(typeID),
			TypeID:      typeID,
			Description: strings.TrimSpace(ev.EventText),
			TeamID:      ev.TeamID,
			PlayerID:    ev.PlayerID,
		})
	}
	return events
}

func goalsFromXML(raw []goalXML) []Goal {
	goals := make([]Goal, 0, len(raw))
	for _, g := range raw {
		goals = append(goals, Goal{
			Minute:            atoiOr0(g.Minute),
			MatchPart:         atoiOr0(g.MatchPart),
			SubjectTeamID:     g.SubjectTeamID,
			SubjectPlayerID:   g.SubjectPlayerID,
			SubjectPlayerName: g.SubjectPlayerName,
			ObjectPlayerID:    g.ObjectPlayerID,
			ObjectPlayerName:  g.ObjectPlayerName,
		})
	}
	return goals
}
