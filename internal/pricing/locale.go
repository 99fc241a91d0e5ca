package pricing

// defaultLocale is returned for any region code outside the known mapping so
// that catalog lookups degrade to N. Virginia pricing instead of failing hard.
const defaultLocale = "US East (N. Virginia)"

// regionLocales maps AWS region codes to the human-readable location names
// the Pricing API expects in its "location" filter field.
var regionLocales = map[string]string{
	"us-east-1":      "US East (N. Virginia)",
	"us-east-2":      "US East (Ohio)",
	"us-west-1":      "US West (N. California)",
	"us-west-2":      "US West (Oregon)",
	"af-south-1":     "Africa (Cape Town)",
	"ap-northeast-1": "Asia Pacific (Tokyo)",
	"ap-northeast-2": "Asia Pacific (Seoul)",
	"ap-northeast-3": "Asia Pacific (Osaka-Local)",
	"ap-southeast-1": "Asia Pacific (Singapore)",
	"ap-southeast-2": "Asia Pacific (Sydney)",
	"ap-east-1":      "Asia Pacific (Hong Kong)",
	"ap-south-1":     "Asia Pacific (Mumbai)",
	"ap-south-2":     "Asia Pacific (Hyderabad)",
	"ca-central-1":   "Canada (Central)",
	"eu-central-1":   "EU (Frankfurt)",
	"eu-west-1":      "EU (Ireland)",
	"eu-west-2":      "EU (London)",
	"eu-west-3":      "EU (Paris)",
	"eu-north-1":     "EU (Stockholm)",
	"eu-south-1":     "EU (Milan)",
	"me-south-1":     "Middle East (Bahrain)",
	"sa-east-1":      "South America (Sao Paulo)",
}

// LocaleForRegion resolves a region code to the Pricing API location name.
// Unknown codes fall back to defaultLocale; this is a documented default,
// not an error.
func LocaleForRegion(regionCode string) string {
	if locale, ok := regionLocales[regionCode]; ok {
		return locale
	}
	return defaultLocale
}
