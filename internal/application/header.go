package application

import (
	"fmt"
	"strings"
	"time"
)

// DefaultBrandLogo replaces stale or placeholder logos on every header load.
const DefaultBrandLogo = "https://live.staticflickr.com/65535/55088078719_1e5e49e97d_o.jpg"

// NormalizeLogo substitutes the default brand logo for empty values, inline SVG data
// URIs and anything mentioning "placeholder".
func NormalizeLogo(logo string) string {
	if logo == "" || strings.HasPrefix(logo, "data:image/svg+xml") || strings.Contains(logo, "placeholder") {
		return DefaultBrandLogo
	}
	return logo
}

// NormalizeHeader returns header with its logo normalized.
func NormalizeHeader(header HeaderConfig) HeaderConfig {
	header.Logo = NormalizeLogo(header.Logo)
	return header
}

// HeaderDefaults holds the club details used when no header document is available.
type HeaderDefaults struct {
	Logo          string `yaml:"logo"`
	Address       string `yaml:"address"`
	Hotline       string `yaml:"hotline"`
	Website       string `yaml:"website"`
	ScheduleTitle string `yaml:"schedule_title"`
	HolidayNotice string `yaml:"holiday_notice"`
}

// StandardHeaderDefaults returns the built-in club details.
func StandardHeaderDefaults() HeaderDefaults {
	return HeaderDefaults{
		Logo:    DefaultBrandLogo,
		Address: "Ciputra Club, Bắc Từ Liêm, Hà Nội",
		Hotline: "0243 743 0666",
		Website: "www.ciputraclub.vn",
	}
}

// Header builds the default header for the month containing now. An empty title
// becomes the monthly schedule title.
func (d HeaderDefaults) Header(now time.Time) HeaderConfig {
	title := d.ScheduleTitle
	if strings.TrimSpace(title) == "" {
		title = MonthlyScheduleTitle(now)
	}
	return NormalizeHeader(HeaderConfig{
		Logo:          d.Logo,
		Address:       d.Address,
		Hotline:       d.Hotline,
		Website:       d.Website,
		ScheduleTitle: title,
		HolidayNotice: d.HolidayNotice,
	})
}

// MonthlyScheduleTitle formats the board title for the month containing now.
func MonthlyScheduleTitle(now time.Time) string {
	return fmt.Sprintf("Lịch GX - THÁNG %d NĂM %d", int(now.Month()), now.Year())
}
