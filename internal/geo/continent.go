package geo

import "strings"

// continentByCity covers the tour cities listings are created with. The set
// is closed on purpose: an unknown city yields "" and listing alerts treat
// that as matching only continent-wildcard preferences.
var continentByCity = map[string]string{
	"amsterdam":      "Europe",
	"antwerp":        "Europe",
	"barcelona":      "Europe",
	"berlin":         "Europe",
	"brussels":       "Europe",
	"cologne":        "Europe",
	"copenhagen":     "Europe",
	"dublin":         "Europe",
	"frankfurt":      "Europe",
	"hamburg":        "Europe",
	"lisbon":         "Europe",
	"london":         "Europe",
	"madrid":         "Europe",
	"milan":          "Europe",
	"munich":         "Europe",
	"oslo":           "Europe",
	"paris":          "Europe",
	"prague":         "Europe",
	"rome":           "Europe",
	"stockholm":      "Europe",
	"vienna":         "Europe",
	"warsaw":         "Europe",
	"zurich":         "Europe",
	"atlanta":        "North America",
	"boston":         "North America",
	"chicago":        "North America",
	"dallas":         "North America",
	"denver":         "North America",
	"las vegas":      "North America",
	"los angeles":    "North America",
	"mexico city":    "North America",
	"miami":          "North America",
	"montreal":       "North America",
	"nashville":      "North America",
	"new york":       "North America",
	"philadelphia":   "North America",
	"san francisco":  "North America",
	"seattle":        "North America",
	"toronto":        "North America",
	"vancouver":      "North America",
	"buenos aires":   "South America",
	"lima":           "South America",
	"rio de janeiro": "South America",
	"santiago":       "South America",
	"sao paulo":      "South America",
	"bangkok":        "Asia",
	"hong kong":      "Asia",
	"jakarta":        "Asia",
	"manila":         "Asia",
	"osaka":          "Asia",
	"seoul":          "Asia",
	"singapore":      "Asia",
	"taipei":         "Asia",
	"tokyo":          "Asia",
	"auckland":       "Oceania",
	"brisbane":       "Oceania",
	"melbourne":      "Oceania",
	"perth":          "Oceania",
	"sydney":         "Oceania",
	"cape town":      "Africa",
	"johannesburg":   "Africa",
}

// ContinentForCity returns the continent for a concert city, or "" when the
// city is not in the table. Lookup is case-insensitive.
func ContinentForCity(city string) string {
	return continentByCity[strings.ToLower(strings.TrimSpace(city))]
}
