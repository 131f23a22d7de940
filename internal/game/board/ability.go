package board

// Ability is the gem a card carries. At most one per card.
type Ability int

const (
	None Ability = iota
	Blue
	Purple
	Red
	Yellow
	Orange
	Green
)

// Abilities lists every real gem in enum order.
func Abilities() []Ability {
	return []Ability{Blue, Purple, Red, Yellow, Orange, Green}
}

var abilityNames = map[Ability]string{
	None:   "NONE",
	Blue:   "BLUE",
	Purple: "PURPLE",
	Red:    "RED",
	Yellow: "YELLOW",
	Orange: "ORANGE",
	Green:  "GREEN",
}

var abilityTitles = map[Ability]string{
	Blue:   "FIBONACCI'S BOON",
	Purple: "PENANCE",
	Red:    "POPE'S BLESSING",
	Yellow: "INDULGENCE",
	Orange: "DYNASTY",
	Green:  "KHAN'S LEGACY",
}

var abilityDescriptions = map[Ability]string{
	Blue:   "Draw extra card when placed.",
	Purple: "Recycle random card when stepping on.",
	Red:    "Heal for one when placed.",
	Yellow: "Score earned for stepping on is tenfold.",
	Orange: "Doubles move scores when stepping on.",
	Green:  "Fill neighbours with blank cards.",
}

// String returns the gem colour.
func (a Ability) String() string {
	if name, ok := abilityNames[a]; ok {
		return name
	}
	return "UNKNOWN"
}

// Title returns the display name shown on tooltips. Empty for None.
func (a Ability) Title() string {
	return abilityTitles[a]
}

// Description returns the player-facing rules text. Empty for None.
func (a Ability) Description() string {
	return abilityDescriptions[a]
}

// IsValid reports whether a is a known value, None included.
func (a Ability) IsValid() bool {
	return a >= None && a <= Green
}

// Wilds maps a gem to the extra abilities it also counts as.
// A nil Wilds means no wildcards are active.
type Wilds map[Ability][]Ability

// Matches reports whether a card carrying gem counts as want.
func (w Wilds) Matches(gem, want Ability) bool {
	if gem == None {
		return false
	}
	if gem == want {
		return true
	}
	for _, extra := range w[gem] {
		if extra == want {
			return true
		}
	}
	return false
}
