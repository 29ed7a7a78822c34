package drivers

// FallbackColor is used for entities without an entry in the table.
const FallbackColor = "#aaaaaa"

type Driver struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	ShortName string `json:"shortName"`
	Color     string `json:"color"`
}

var All = []Driver{
	{ID: "VER", Name: "Max Verstappen", ShortName: "VER", Color: "#1f77b4"},
	{ID: "PER", Name: "Sergio Pérez", ShortName: "PER", Color: "#ff7f0e"},
	{ID: "HAM", Name: "Lewis Hamilton", ShortName: "HAM", Color: "#2ca02c"},
	{ID: "NOR", Name: "Lando Norris", ShortName: "NOR", Color: "#d62728"},
	{ID: "LEC", Name: "Charles Leclerc", ShortName: "LEC", Color: "#9467bd"},
}

// DefaultSelection is shown in driver mode regardless of the circuit.
var DefaultSelection = []string{"VER", "HAM"}

// Lookup returns the metadata of a driver. Unknown ids get their own id as
// name and short name and the fallback colour.
func Lookup(id string) Driver {
	for _, d := range All {
		if d.ID == id {
			return d
		}
	}
	return Driver{ID: id, Name: id, ShortName: id, Color: FallbackColor}
}
