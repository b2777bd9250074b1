package matchdata

// EventKind is the normalized classification of a commentary event.
type EventKind string

const (
	KindGoal          EventKind = "goal"
	KindYellowCard    EventKind = "yellow_card"
	KindRedCard       EventKind = "red_card"
	KindSubstitution  EventKind = "substitution"
	KindSwapPositions EventKind = "swap_positions"
	KindInjury        EventKind = "injury"
	KindNearMiss      EventKind = "near_miss"
	KindChance        EventKind = "chance"
	KindSpecialChance EventKind = "special_chance"
	KindHalfway       EventKind = "halfway"
	KindWhistle       EventKind = "whistle"
	KindInfo          EventKind = "info"
)

// eventKindByTypeID is the authoritative EventTypeID mapping. 10-15
// cover the goal variants (regular, penalty, indirect free kick,
// direct free kick, long shot, special).
var eventKindByTypeID = map[int]EventKind{
	10: KindGoal,
	11: KindGoal,
	12: KindGoal,
	13: KindGoal,
	14: KindGoal,
	15: KindGoal,
	20: KindYellowCard,
	21: KindRedCard,
	22: KindRedCard,
	30: KindSubstitution,
	31: KindSwapPositions,
	40: KindInjury,
	50: KindNearMiss,
	51: KindChance,
	52: KindSpecialChance,
	60: KindHalfway,
	61: KindWhistle,
}

// KindForTypeID maps a numeric EventTypeID to its kind, defaulting to
// KindInfo for codes outside the table.
func KindForTypeID(typeID int) EventKind {
	if kind, ok := eventKindByTypeID[typeID]; ok {
		return kind
	}
	return KindInfo
}
