package stats

import "qrlinks/internal/geoip"

// flagEmoji maps a country name to its flag. Unknown or unmapped countries
// fall back to the globe glyph so the dashboard never shows a blank cell.
var flagEmoji = map[string]string{
	"Australia":      "🇦🇺",
	"Austria":        "🇦🇹",
	"Belgium":        "🇧🇪",
	"Brazil":         "🇧🇷",
	"Canada":         "🇨🇦",
	"China":          "🇨🇳",
	"Czechia":        "🇨🇿",
	"Denmark":        "🇩🇰",
	"Finland":        "🇫🇮",
	"France":         "🇫🇷",
	"Germany":        "🇩🇪",
	"India":          "🇮🇳",
	"Indonesia":      "🇮🇩",
	"Ireland":        "🇮🇪",
	"Italy":          "🇮🇹",
	"Japan":          "🇯🇵",
	"Mexico":         "🇲🇽",
	"Netherlands":    "🇳🇱",
	"New Zealand":    "🇳🇿",
	"Norway":         "🇳🇴",
	"Poland":         "🇵🇱",
	"Portugal":       "🇵🇹",
	"Singapore":      "🇸🇬",
	"South Korea":    "🇰🇷",
	"Spain":          "🇪🇸",
	"Sweden":         "🇸🇪",
	"Switzerland":    "🇨🇭",
	"United Kingdom": "🇬🇧",
	"United States":  "🇺🇸",
}

// FlagFor returns the flag emoji for a country name, or a globe for
// countries without a mapping and for the unknown sentinel.
func FlagFor(country string) string {
	if country == geoip.UnknownValue {
		return "🌐"
	}
	if flag, ok := flagEmoji[country]; ok {
		return flag
	}
	return "🌐"
}
