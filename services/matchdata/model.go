// Package matchdata holds the normalized match record shared by the
// CHPP XML path and the page-scraping fallback, the XML parsers that
// produce it, and the orchestrator that reconciles the two sources.
package matchdata

import "sort"

type MatchData struct {
	MatchInfo MatchInfo `json:"matchInfo"`
	Teams     Teams     `json:"teams"`
	Players   Lineups   `json:"players"`
	Stats     Stats     `json:"stats"`
	Events    []Event   `json:"events"`
	Goals     []Goal    `json:"goals,omitempty"`
}

type MatchInfo struct {
	MatchID      string `json:"matchId"`
	Date         string `json:"date"`
	Type         string `json:"type"`
	Arena        string `json:"arena"`
	ArenaID      string `json:"arenaId,omitempty"`
	WeatherID    int    `json:"weatherId,omitempty"`
	Attendance   int    `json:"attendance,omitempty"`
	FinishedDate string `json:"finishedDate,omitempty"`
	Status       string `json:"status,omitempty"`
}

type Teams struct {
	Home Team `json:"home"`
	Away Team `json:"away"`
}

type Team struct {
	Name        string        `json:"name"`
	ID          string        `json:"id"`
	Score       int           `json:"score"`
	Formation   string        `json:"formation,omitempty"`
	TacticType  string        `json:"tacticType,omitempty"`
	TacticSkill string        `json:"tacticSkill,omitempty"`
	Ratings     SectorRatings `json:"ratings"`
}

// SectorRatings are the seven per-sector performance values the
// match report breaks a team down into.
type SectorRatings struct {
	Midfield int `json:"midfield"`
	LeftDef  int `json:"leftDef"`
	MidDef   int `json:"midDef"`
	RightDef int `json:"rightDef"`
	LeftAtt  int `json:"leftAtt"`
	MidAtt   int `json:"midAtt"`
	RightAtt int `json:"rightAtt"`
}

type Lineups struct {
	Home []Player `json:"home"`
	Away []Player `json:"away"`
}

type Player struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	RoleID    string `json:"roleId,omitempty"`
	Behaviour string `json:"behaviour,omitempty"`
}

type Stats struct {
	Possession SplitStat `json:"possession"`
	Chances    SplitStat `json:"chances"`
	// second-half possession is only available over the api
	PossessionSecondHalf SplitStat `json:"possessionSecondHalf"`
}

type SplitStat struct {
	Home int `json:"home"`
	Away int `json:"away"`
}

type Event struct {
	Minute      int       `json:"minute"`
	Kind        EventKind `json:"type"`
	TypeID      int       `json:"typeId,omitempty"`
	Description string    `json:"description"`
	TeamID      string    `json:"teamId,omitempty"`
	PlayerID    string    `json:"playerId,omitempty"`
}

// Goal is one entry of the scoreboard goal list, richer than the
// corresponding timeline event.
type Goal struct {
	Minute            int    `json:"minute"`
	MatchPart         int    `json:"matchPart"`
	SubjectTeamID     string `json:"subjectTeamId"`
	SubjectPlayerID   string `json:"subjectPlayerId"`
	SubjectPlayerName string `json:"subjectPlayerName"`
	ObjectPlayerID    string `json:"objectPlayerId,omitempty"`
	ObjectPlayerName  string `json:"objectPlayerName,omitempty"`
}

// SortEvents orders events non-decreasing by minute, preserving the
// relative order of events in the same minute.
func SortEvents(events []Event) {
	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Minute < events[j].Minute
	})
}
