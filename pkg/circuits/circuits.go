package circuits

import "sort"

// Default is the circuit shown before any selection is made.
const Default = "spa"

type Circuit struct {
	Slug  string `json:"slug"`
	Label string `json:"label"`
}

var labels = map[string]string{
	"albert_park":    "Albert Park (Australia)",
	"americas":       "Circuit of the Americas (COTA)",
	"bahrain":        "Bahrain International Circuit",
	"baku":           "Baku City Circuit",
	"buddh":          "Buddh International Circuit",
	"catalunya":      "Circuit de Barcelona-Catalunya",
	"fuji":           "Fuji Speedway (Japan)",
	"galvez":         "Autódromo Juan y Oscar Gálvez (Argentina)",
	"hockenheimring": "Hockenheimring (Germany)",
	"hungaroring":    "Hungaroring (Hungary)",
	"imola":          "Imola (Emilia-Romagna GP)",
	"indianapolis":   "Indianapolis Motor Speedway (USA)",
	"interlagos":     "Interlagos (Brazil)",
	"istanbul":       "Istanbul Park (Turkey)",
	"jeddah":         "Jeddah Corniche Circuit (Saudi Arabia)",
	"losail":         "Losail International Circuit (Qatar)",
	"magny_cours":    "Magny-Cours (France)",
	"monaco":         "Circuit de Monaco (Monaco)",
	"monza":          "Monza (Italy)",
	"nurburgring":    "Nürburgring (Germany)",
	"portimao":       "Portimão (Portugal)",
	"red_bull_ring":  "Red Bull Ring (Austria)",
	"ricard":         "Circuit Paul Ricard",
	"rodriguez":      "Autódromo Hermanos Rodríguez (Mexico)",
	"sepang":         "Sepang International Circuit (Malaysia)",
	"shanghai":       "Shanghai International Circuit (China)",
	"silverstone":    "Silverstone (Great Britain)",
	"sochi":          "Sochi Autodrom (Russia)",
	"spa":            "Spa-Francorchamps (Belgium)",
	"suzuka":         "Suzuka (Japan)",
	"valencia":       "Valencia Street Circuit (European GP)",
	"vegas":          "Las Vegas Strip Circuit (USA)",
	"villeneuve":     "Circuit Gilles Villeneuve (Canada)",
	"yas_marina":     "Yas Marina Circuit (Abu Dhabi)",
}

// Label returns the display name of a circuit, or the slug itself when the
// circuit is not part of the catalog.
func Label(slug string) string {
	if l, ok := labels[slug]; ok {
		return l
	}
	return slug
}

func Known(slug string) bool {
	_, ok := labels[slug]
	return ok
}

// All returns the catalog sorted by slug.
func All() []Circuit {
	out := make([]Circuit, 0, len(labels))
	for slug, label := range labels {
		out = append(out, Circuit{Slug: slug, Label: label})
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Slug < out[j].Slug
	})
	return out
}

// Range returns a page of the sorted catalog, clamped to its bounds.
func Range(from, to int) []Circuit {
	all := All()
	if from < 0 {
		from = 0
	}
	if to > len(all) {
		to = len(all)
	}
	if from >= to {
		return nil
	}
	return all[from:to]
}
