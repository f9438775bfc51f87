// Package companion answers "what grows well next to what" from a
// static table. Pure data, no state.
package companion

import (
	"sort"
	"strings"
)

type Companion struct {
	Species string `json:"species"`
	Reason  string `json:"reason"`
}

type Advice struct {
	Species string      `json:"species"`
	Good    []Companion `json:"good"`
	Bad     []Companion `json:"bad"`
}

var table = map[string]Advice{
	"tomato": {
		Species: "tomato",
		Good: []Companion{
			{Species: "basil", Reason: "repels whiteflies and improves flavor"},
			{Species: "carrot", Reason: "loosens soil around tomato roots"},
			{Species: "marigold", Reason: "deters nematodes"},
		},
		Bad: []Companion{
			{Species: "cabbage", Reason: "stunts tomato growth"},
			{Species: "corn", Reason: "shared pest: corn earworm"},
			{Species: "potato", Reason: "shared blight risk"},
		},
	},
	"basil": {
		Species: "basil",
		Good: []Companion{
			{Species: "tomato", Reason: "mutual pest protection"},
			{Species: "pepper", Reason: "repels aphids and spider mites"},
		},
		Bad: []Companion{
			{Species: "rue", Reason: "inhibits basil growth"},
		},
	},
	"carrot": {
		Species: "carrot",
		Good: []Companion{
			{Species: "onion", Reason: "onion scent masks carrots from carrot fly"},
			{Species: "lettuce", Reason: "shallow roots do not compete"},
			{Species: "tomato", Reason: "shade in hot weather"},
		},
		Bad: []Companion{
			{Species: "dill", Reason: "cross-pollinates and attracts carrot pests"},
		},
	},
	"onion": {
		Species: "onion",
		Good: []Companion{
			{Species: "carrot", Reason: "confuses onion fly and carrot fly alike"},
			{Species: "lettuce", Reason: "efficient use of bed space"},
		},
		Bad: []Companion{
			{Species: "beans", Reason: "onions inhibit bean growth"},
			{Species: "peas", Reason: "onions inhibit pea growth"},
		},
	},
	"lettuce": {
		Species: "lettuce",
		Good: []Companion{
			{Species: "carrot", Reason: "no root competition"},
			{Species: "strawberry", Reason: "ground cover keeps soil moist"},
			{Species: "cucumber", Reason: "cucumber leaves shade lettuce in summer"},
		},
		Bad: []Companion{
			{Species: "parsley", Reason: "crowds lettuce heads"},
		},
	},
	"cucumber": {
		Species: "cucumber",
		Good: []Companion{
			{Species: "beans", Reason: "beans fix nitrogen cucumbers need"},
			{Species: "dill", Reason: "attracts predatory insects"},
		},
		Bad: []Companion{
			{Species: "sage", Reason: "aromatic herbs stunt cucumbers"},
		},
	},
	"beans": {
		Species: "beans",
		Good: []Companion{
			{Species: "corn", Reason: "corn stalks serve as bean poles"},
			{Species: "squash", Reason: "classic three-sisters planting"},
		},
		Bad: []Companion{
			{Species: "onion", Reason: "alliums inhibit bean growth"},
		},
	},
	"corn": {
		Species: "corn",
		Good: []Companion{
			{Species: "beans", Reason: "beans fix nitrogen for corn"},
			{Species: "squash", Reason: "squash leaves shade out weeds"},
		},
		Bad: []Companion{
			{Species: "tomato", Reason: "shared pest: corn earworm"},
		},
	},
	"squash": {
		Species: "squash",
		Good: []Companion{
			{Species: "corn", Reason: "grows in corn's partial shade"},
			{Species: "nasturtium", Reason: "trap crop for squash bugs"},
		},
		Bad: []Companion{
			{Species: "potato", Reason: "heavy feeders compete for nutrients"},
		},
	},
	"pepper": {
		Species: "pepper",
		Good: []Companion{
			{Species: "basil", Reason: "repels aphids, thrips and flies"},
			{Species: "onion", Reason: "deters common pepper pests"},
		},
		Bad: []Companion{
			{Species: "beans", Reason: "vines entangle pepper plants"},
		},
	},
	"strawberry": {
		Species: "strawberry",
		Good: []Companion{
			{Species: "lettuce", Reason: "hides ripening berries from birds"},
			{Species: "onion", Reason: "deters pests with scent"},
		},
		Bad: []Companion{
			{Species: "cabbage", Reason: "cabbage family hampers strawberry growth"},
		},
	},
	"cabbage": {
		Species: "cabbage",
		Good: []Companion{
			{Species: "onion", Reason: "deters cabbage loopers"},
			{Species: "dill", Reason: "attracts wasps that prey on cabbage worms"},
		},
		Bad: []Companion{
			{Species: "tomato", Reason: "mutual growth inhibition"},
			{Species: "strawberry", Reason: "mutual growth inhibition"},
		},
	},
}

// Lookup returns companion advice for a species, case-insensitively.
func Lookup(species string) (*Advice, bool) {
	advice, ok := table[strings.ToLower(strings.TrimSpace(species))]
	if !ok {
		return nil, false
	}
	return &advice, true
}

// Species lists every species the table knows, sorted.
func Species() []string {
	out := make([]string, 0, len(table))
	for s := range table {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
