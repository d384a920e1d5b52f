package application

import (
	"testing"
	"time"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func TestNormalizeLogo(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"":                                        DefaultBrandLogo,
		"data:image/svg+xml;base64,PHN2Zz4=":      DefaultBrandLogo,
		"https://cdn.example.com/placeholder.png": DefaultBrandLogo,
		"https://cdn.example.com/logo.png":        "https://cdn.example.com/logo.png",
		"data:image/png;base64,iVBORw0KGgo=":      "data:image/png;base64,iVBORw0KGgo=",
	}
	for in, want := range cases {
		if got := NormalizeLogo(in); got != want {
			t.Fatalf("NormalizeLogo(%q): expected %q, got %q", in, want, got)
		}
	}
}

func TestNormalizeLogoIsIdempotent(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("normalizing twice equals normalizing once", prop.ForAll(
		func(logo string) bool {
			once := NormalizeLogo(logo)
			return NormalizeLogo(once) == once
		},
		gen.OneGenOf(
			gen.AnyString(),
			gen.AlphaString().Map(func(s string) string { return "https://img.example.com/" + s }),
			gen.AlphaString().Map(func(s string) string { return "data:image/svg+xml," + s }),
			gen.AlphaString().Map(func(s string) string { return s + "placeholder" + s }),
		),
	))

	properties.TestingRun(t)
}

func TestHeaderDefaults_Header(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, time.November, 20, 0, 0, 0, 0, time.UTC)

	header := StandardHeaderDefaults().Header(now)
	if header.ScheduleTitle != "Lịch GX - THÁNG 11 NĂM 2025" {
		t.Fatalf("unexpected monthly title %q", header.ScheduleTitle)
	}
	if header.Logo != DefaultBrandLogo {
		t.Fatalf("expected default logo, got %q", header.Logo)
	}
	if header.Hotline == "" || header.Address == "" || header.Website == "" {
		t.Fatalf("expected standard club details, got %+v", header)
	}

	custom := HeaderDefaults{ScheduleTitle: "Lịch mùa hè", Logo: "https://example.com/placeholder.svg"}.Header(now)
	if custom.ScheduleTitle != "Lịch mùa hè" {
		t.Fatalf("expected configured title to win, got %q", custom.ScheduleTitle)
	}
	if custom.Logo != DefaultBrandLogo {
		t.Fatalf("expected placeholder logo to be replaced, got %q", custom.Logo)
	}
}
