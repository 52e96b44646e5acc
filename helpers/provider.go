package helpers

import "regexp"

// UnknownProvider is returned when a number matches no known network.
const UnknownProvider = "UNKNOWN"

type providerPattern struct {
	name string
	re   *regexp.Regexp
}

// Order matters: 768/769 belong to MPESA even though EQUITEL claims 76[3-9].
var providerPatterns = []providerPattern{
	{"MPESA", regexp.MustCompile(`(?:0)?((?:(?:7[01249][0-9])|(?:75[789])|(?:76[89]))[0-9]{6})$`)},
	{"AIRTELMONEY", regexp.MustCompile(`(?:0)?((?:(?:73[0-9])|(?:75[0-6])|(?:78[5-9]))[0-9]{6})$`)},
	{"TKASH", regexp.MustCompile(`(?:0)?(77[0-9][0-9]{6})$`)},
	{"EQUITEL", regexp.MustCompile(`0?(76[3-9][0-9]{6})$`)},
}

var airtimeProviders = map[string]string{
	"MPESA":       "MPESA",
	"AIRTELMONEY": "AIRTEL",
	"TKASH":       "TKASH",
	"EQUITEL":     "EQUITEL",
}

// ServiceProvider maps a local mobile number (0XXXXXXXXX) to its mobile money
// provider, or to its airtime provider name when airtime is set.
func ServiceProvider(mobileNumber string, airtime bool) string {
	for _, p := range providerPatterns {
		if !p.re.MatchString(mobileNumber) {
			continue
		}
		if airtime {
			return airtimeProviders[p.name]
		}
		return p.name
	}
	return UnknownProvider
}
