package shipping

import (
	"context"
	"testing"

	"github.com/rakibhasan/dokan/internal/domain"
	"github.com/rakibhasan/dokan/internal/storage/memory"
)

func testSettings() domain.ShippingSettings {
	return domain.ShippingSettings{
		BaseInsideMinor:  6000,
		BaseOutsideMinor: 12000,
		PerKgMinor:       2000,
	}
}

func TestCalculate(t *testing.T) {
	settings := testSettings()

	cases := []struct {
		name        string
		zone        Zone
		weightGrams int32
		want        int64
	}{
		{"inside, zero weight", ZoneInsideDhaka, 0, 6000},
		{"inside, under a kilo", ZoneInsideDhaka, 400, 6000},
		{"inside, exactly a kilo", ZoneInsideDhaka, 1000, 6000},
		{"inside, just over a kilo", ZoneInsideDhaka, 1001, 8000},
		{"inside, two kilos", ZoneInsideDhaka, 2000, 8000},
		{"inside, started third kilo", ZoneInsideDhaka, 2001, 10000},
		{"outside, under a kilo", ZoneOutsideDhaka, 800, 12000},
		{"outside, three and a half kilos", ZoneOutsideDhaka, 3500, 18000},
		{"unknown zone falls back to outside", Zone("mars"), 500, 12000},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Calculate(settings, tc.zone, tc.weightGrams); got != tc.want {
				t.Fatalf("Calculate(%s, %d) = %d, want %d", tc.zone, tc.weightGrams, got, tc.want)
			}
		})
	}
}

func TestQuote_UsesStoredSettings(t *testing.T) {
	repo := memory.NewShippingSettingsRepository()
	quoter := NewQuoter(repo)

	ctx := context.Background()
	if err := repo.Save(ctx, testSettings()); err != nil {
		t.Fatalf("save settings: %v", err)
	}

	got, err := quoter.Quote(ctx, ZoneInsideDhaka, 2500)
	if err != nil {
		t.Fatalf("Quote failed: %v", err)
	}
	if got != 10000 {
		t.Fatalf("unexpected quote: %d", got)
	}
}

func TestZoneValid(t *testing.T) {
	if !ZoneInsideDhaka.Valid() || !ZoneOutsideDhaka.Valid() {
		t.Fatal("expected known zones to be valid")
	}
	if Zone("moon").Valid() {
		t.Fatal("expected unknown zone to be invalid")
	}
}
