package models

// NoDataLabel is the delta label used when both reporting windows are empty.
// It is distinct from a 0% delta, which means "same as last period".
const NoDataLabel = "No data yet"

// StatsReport is the team-scoped dashboard summary.
type StatsReport struct {
	TotalQRCodes        int64  `json:"total_qr_codes"`
	QRCodesDelta        string `json:"qr_codes_delta"`
	TotalScans          int64  `json:"total_scans"`
	ScansDelta          string `json:"scans_delta"`
	UniqueVisitors      int64  `json:"unique_visitors"`
	UniqueVisitorsDelta string `json:"unique_visitors_delta"`

	Devices      DeviceBreakdown   `json:"devices"`
	TopCountries []CountryStat     `json:"top_countries"`
	TopQRCodes   []QRCodeScanCount `json:"top_qr_codes"`
	RecentScans  []RecentScan      `json:"recent_scans"`
}

// DeviceBreakdown is the device-class mix as percentages of classified scans.
type DeviceBreakdown struct {
	Mobile  float64 `json:"mobile"`
	Desktop float64 `json:"desktop"`
	Tablet  float64 `json:"tablet"`
}

// CountryStat is a top-country entry with its flag emoji.
type CountryStat struct {
	Country string `json:"country"`
	Flag    string `json:"flag"`
	Count   int64  `json:"count"`
}

// RecentScan is a recent scan event with a human-relative timestamp.
type RecentScan struct {
	QRCodeID string `json:"qr_code_id"`
	Country  string `json:"country"`
	City     string `json:"city"`
	Device   string `json:"device"`
	When     string `json:"when"` // "just now", "5 minutes ago", ...
}
