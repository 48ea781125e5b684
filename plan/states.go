package plan

import "strings"

// stateNames maps USPS codes to full state names, all fifty states plus DC.
var stateNames = map[string]string{
	"AL": "Alabama", "AK": "Alaska", "AZ": "Arizona", "AR": "Arkansas",
	"CA": "California", "CO": "Colorado", "CT": "Connecticut", "DE": "Delaware",
	"FL": "Florida", "GA": "Georgia", "HI": "Hawaii", "ID": "Idaho",
	"IL": "Illinois", "IN": "Indiana", "IA": "Iowa", "KS": "Kansas",
	"KY": "Kentucky", "LA": "Louisiana", "ME": "Maine", "MD": "Maryland",
	"MA": "Massachusetts", "MI": "Michigan", "MN": "Minnesota", "MS": "Mississippi",
	"MO": "Missouri", "MT": "Montana", "NE": "Nebraska", "NV": "Nevada",
	"NH": "New Hampshire", "NJ": "New Jersey", "NM": "New Mexico", "NY": "New York",
	"NC": "North Carolina", "ND": "North Dakota", "OH": "Ohio", "OK": "Oklahoma",
	"OR": "Oregon", "PA": "Pennsylvania", "RI": "Rhode Island", "SC": "South Carolina",
	"SD": "South Dakota", "TN": "Tennessee", "TX": "Texas", "UT": "Utah",
	"VT": "Vermont", "VA": "Virginia", "WA": "Washington", "WV": "West Virginia",
	"WI": "Wisconsin", "WY": "Wyoming", "DC": "District of Columbia",
}

// majorCities lists research-priority cities, largest markets first, for the
// states the static planner covers.
var majorCities = map[string][]string{
	"TX": {"Houston", "Dallas", "Austin", "San Antonio", "Fort Worth", "El Paso", "Arlington", "Plano"},
	"CA": {"Los Angeles", "San Francisco", "San Diego", "San Jose", "Sacramento", "Fresno", "Oakland", "Long Beach"},
	"FL": {"Miami", "Orlando", "Tampa", "Jacksonville", "Fort Lauderdale", "Tallahassee", "St. Petersburg", "Hialeah"},
	"NY": {"New York City", "Buffalo", "Rochester", "Albany", "Syracuse", "Yonkers"},
	"IL": {"Chicago", "Aurora", "Naperville", "Rockford", "Springfield", "Peoria"},
	"PA": {"Philadelphia", "Pittsburgh", "Allentown", "Reading", "Erie", "Scranton"},
	"OH": {"Columbus", "Cleveland", "Cincinnati", "Toledo", "Akron", "Dayton"},
	"GA": {"Atlanta", "Augusta", "Savannah", "Columbus", "Macon", "Athens"},
	"NC": {"Charlotte", "Raleigh", "Greensboro", "Durham", "Winston-Salem", "Fayetteville"},
	"MI": {"Detroit", "Grand Rapids", "Warren", "Sterling Heights", "Ann Arbor", "Lansing"},
}

// StateName returns the full name for a USPS state code.
func StateName(code string) (string, bool) {
	name, ok := stateNames[strings.ToUpper(code)]
	return name, ok
}

// ValidState reports whether code is a known USPS state code.
func ValidState(code string) bool {
	_, ok := stateNames[strings.ToUpper(code)]
	return ok
}

// MajorCities returns the built-in city list for a state, or nil for states
// outside the table.
func MajorCities(code string) []string {
	cities, ok := majorCities[strings.ToUpper(code)]
	if !ok {
		return nil
	}
	return append([]string(nil), cities...)
}
