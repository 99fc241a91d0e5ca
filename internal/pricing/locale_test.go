package pricing

import "testing"

func TestLocaleForRegion_KnownCodes(t *testing.T) {
	cases := map[string]string{
		"us-east-1":      "US East (N. Virginia)",
		"us-west-2":      "US West (Oregon)",
		"eu-central-1":   "EU (Frankfurt)",
		"ap-south-2":     "Asia Pacific (Hyderabad)",
		"sa-east-1":      "South America (Sao Paulo)",
		"ap-northeast-3": "Asia Pacific (Osaka-Local)",
	}
	for code, want := range cases {
		if got := LocaleForRegion(code); got != want {
			t.Errorf("LocaleForRegion(%q) = %q; want %q", code, got, want)
		}
	}
}

func TestLocaleForRegion_UnknownCodeFallsBack(t *testing.T) {
	for _, code := range []string{"", "moon-base-1", "us-east-99"} {
		if got := LocaleForRegion(code); got != defaultLocale {
			t.Errorf("LocaleForRegion(%q) = %q; want default %q", code, got, defaultLocale)
		}
	}
}
