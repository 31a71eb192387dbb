package distance

import (
	"errors"
	"strconv"
	"testing"

	"franchise-crm/internal/models"
)

func TestHaversineKm(t *testing.T) {
	// one degree of longitude on the equator ≈ 111.19 km
	if d := HaversineKm(0, 0, 0, 1); d != 111 {
		t.Errorf("HaversineKm equator degree = %d; want 111", d)
	}
	if d := HaversineKm(22.3072, 73.1812, 22.3072, 73.1812); d != 0 {
		t.Errorf("HaversineKm identical points = %d; want 0", d)
	}
}

func TestHaversineKmSymmetric(t *testing.T) {
	points := [][4]float64{
		{22.3072, 73.1812, 23.0225, 72.5714},
		{19.0760, 72.8777, 28.6139, 77.2090},
		{-33.8688, 151.2093, 51.5074, -0.1278},
		{0, 179.5, 0, -179.5},
	}
	for _, p := range points {
		ab := HaversineKm(p[0], p[1], p[2], p[3])
		ba := HaversineKm(p[2], p[3], p[0], p[1])
		if ab != ba {
			t.Errorf("HaversineKm(%v) = %d but reversed = %d", p, ab, ba)
		}
	}
}

func TestEstimateKm(t *testing.T) {
	cases := []struct {
		name     string
		from, to string
		want     int
	}{
		{"same region close codes", "390001", "390011", 0},
		{"same region", "390001", "395001", 50},
		{"different regions", "390001", "110001", 5600},
		{"different regions reversed", "110001", "390001", 5600},
		{"neighbouring regions", "380001", "390001", 200},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := EstimateKm(tc.from, tc.to)
			if err != nil {
				t.Fatalf("EstimateKm error: %v", err)
			}
			if got != tc.want {
				t.Errorf("EstimateKm(%s,%s) = %d; want %d", tc.from, tc.to, got, tc.want)
			}
		})
	}
}

func TestEstimateKmSameRegionIsSmall(t *testing.T) {
	for to := 390000; to < 400000; to += 997 {
		got, err := EstimateKm("390001", strconv.Itoa(to))
		if err != nil {
			t.Fatalf("EstimateKm error: %v", err)
		}
		if got < 0 || got > 100 {
			t.Errorf("EstimateKm(390001,%d) = %d; want within [0,100]", to, got)
		}
	}
}

func TestEstimateKmDeterministic(t *testing.T) {
	first, _ := EstimateKm("560001", "700001")
	for i := 0; i < 10; i++ {
		if got, _ := EstimateKm("560001", "700001"); got != first {
			t.Fatalf("EstimateKm not deterministic: %d then %d", first, got)
		}
	}
}

func TestEstimateKmUnparseable(t *testing.T) {
	got, err := EstimateKm("ABC123", "390001")
	if !errors.Is(err, models.ErrInvalidPostalCode) {
		t.Errorf("err = %v; want ErrInvalidPostalCode", err)
	}
	if got != 0 {
		t.Errorf("distance = %d; want 0", got)
	}
}
