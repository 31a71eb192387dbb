package distance

import (
	"fmt"
	"math"
	"strconv"

	"franchise-crm/internal/models"
)

const (
	// regionDivisor keeps the leading two digits of a six-digit pincode.
	regionDivisor = 10000
	// kmPerRegion is the assumed hop between neighbouring region codes.
	kmPerRegion = 200
	// sameRegionDivisor scales the raw pincode difference inside one region.
	sameRegionDivisor = 100
)

// EstimateKm approximates the distance between two pincodes from their
// numeric proximity alone. It is only used when geocoding failed. Pincodes
// that do not parse as integers yield 0 and models.ErrInvalidPostalCode.
func EstimateKm(from, to string) (int, error) {
	fromNum, err := strconv.Atoi(from)
	if err != nil {
		return 0, fmt.Errorf("estimate %q: %w", from, models.ErrInvalidPostalCode)
	}
	toNum, err := strconv.Atoi(to)
	if err != nil {
		return 0, fmt.Errorf("estimate %q: %w", to, models.ErrInvalidPostalCode)
	}

	fromRegion := fromNum / regionDivisor
	toRegion := toNum / regionDivisor

	if fromRegion == toRegion {
		diff := math.Abs(float64(fromNum - toNum))
		return int(math.Round(diff / sameRegionDivisor)), nil
	}
	regionDiff := fromRegion - toRegion
	if regionDiff < 0 {
		regionDiff = -regionDiff
	}
	return regionDiff * kmPerRegion, nil
}
