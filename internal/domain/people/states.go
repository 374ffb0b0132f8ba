package people

// validStateCodes is the closed set of two-letter USPS codes:
// the 50 states, the District of Columbia, and the inhabited territories.
var validStateCodes = map[string]struct{}{
	"AL": {}, "AK": {}, "AZ": {}, "AR": {}, "CA": {}, "CO": {}, "CT": {},
	"DE": {}, "FL": {}, "GA": {}, "HI": {}, "ID": {}, "IL": {}, "IN": {},
	"IA": {}, "KS": {}, "KY": {}, "LA": {}, "ME": {}, "MD": {}, "MA": {},
	"MI": {}, "MN": {}, "MS": {}, "MO": {}, "MT": {}, "NE": {}, "NV": {},
	"NH": {}, "NJ": {}, "NM": {}, "NY": {}, "NC": {}, "ND": {}, "OH": {},
	"OK": {}, "OR": {}, "PA": {}, "RI": {}, "SC": {}, "SD": {}, "TN": {},
	"TX": {}, "UT": {}, "VT": {}, "VA": {}, "WA": {}, "WV": {}, "WI": {},
	"WY": {},
	"DC": {},
	"AS": {}, "GU": {}, "MP": {}, "PR": {}, "VI": {},
}

// IsValidStateCode reports whether code (already uppercase) is a known
// US state or territory code.
func IsValidStateCode(code string) bool {
	_, ok := validStateCodes[code]
	return ok
}
