package matchpage

import "github.com/davideneu/hattrick-matchview/services/matchdata"

// Keyword tables for the scraping heuristics. The site is served in
// many languages, so every filter checks localized variants; all
// entries are lowercase and matched by substring.

// loadingPhrases are the "please wait" placeholders the site shows
// while content is still streaming in.
var loadingPhrases = []string{
	"attendere prego",
	"please wait",
	"bitte warten",
	"espere por favor",
	"veuillez patienter",
	"por favor aguarde",
	"vänligen vänta",
	"loading",
	"cargando",
	"chargement",
	"laden",
}

// paginationMarkers identify prev/next navigation controls that
// otherwise look like short header text.
var paginationMarkers = []string{
	">>",
	"<<",
	"«",
	"»",
	"next",
	"previous",
	"successiv",
	"precedente",
	"weiter",
	"zurück",
	"suivant",
	"précédent",
	"siguiente",
	"anterior",
}

// shopKeywords identify advertising and merchandising links.
var shopKeywords = []string{
	"buy",
	"shop",
	"gift",
	"sponsor",
	"negozio",
	"store",
	"kaufen",
	"tienda",
	"boutique",
	"acquista",
}

// possessionKeywords and chanceKeywords locate the stat rows.
var possessionKeywords = []string{
	"possession",
	"possesso",
	"ballbesitz",
	"posesión",
	"posse",
}

var chanceKeywords = []string{
	"chances",
	"occasioni",
	"opportunit",
	"chancen",
	"ocasiones",
	"occasions",
}

// eventKindKeywords classifies scraped commentary text. Checked in
// order; the first kind with a keyword hit wins, everything else is
// KindInfo.
var eventKindKeywords = []struct {
	kind     matchdata.EventKind
	keywords []string
}{
	{matchdata.KindGoal, []string{"goal", "gol"}},
	{matchdata.KindYellowCard, []string{"yellow", "giallo", "gelb", "amarillo"}},
	{matchdata.KindRedCard, []string{"red", "rosso", "rot", "rojo"}},
	{matchdata.KindSubstitution, []string{"substitution", "cambio", "sostituzione", "auswechslung"}},
}
