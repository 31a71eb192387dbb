package models

import "time"

// Distance methods reported to callers.
const (
	MethodExact       = "exact"
	MethodGeolocation = "geolocation"
	MethodEstimation  = "estimation"
)

// Coordinates is a WGS84 point in degrees. A 0 on either axis means "not resolved".
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Unresolved reports whether either axis is 0. Providers send 0, "" or "NA"
// for a missing axis and all of them decode to 0.
func (c Coordinates) Unresolved() bool {
	return c.Lat == 0 || c.Lon == 0
}

// Location is a resolved pincode: its coordinates plus a display label.
type Location struct {
	Coordinates
	Label  string `json:"label,omitempty"`
	Source string `json:"source,omitempty"`
}

// DistanceResult is the outcome of a pincode-to-pincode distance computation.
// Success=false means DistanceKm is an estimate (or 0 for unparseable input),
// not a measurement.
type DistanceResult struct {
	DistanceKm  int              `json:"distance_km"`
	Success     bool             `json:"success"`
	Method      string           `json:"method"`
	Cached      bool             `json:"cached"`
	Error       string           `json:"error,omitempty"`
	From        string           `json:"from,omitempty"`
	To          string           `json:"to,omitempty"`
	Coordinates *RouteCoordinates `json:"coordinates,omitempty"`
}

// RouteCoordinates echoes the resolved endpoints of a measured distance.
type RouteCoordinates struct {
	From Coordinates `json:"from"`
	To   Coordinates `json:"to"`
}

// DistanceQuery is bound from the query string of GET /distance.
type DistanceQuery struct {
	From string `query:"from" validate:"required,pincode"`
	To   string `query:"to" validate:"required,pincode"`
}

// BatchDistanceRequest asks for distances from one origin to many destinations.
type BatchDistanceRequest struct {
	From string   `json:"from" validate:"required,pincode"`
	To   []string `json:"to" validate:"required,min=1,max=100,dive,required,pincode"`
}

// BatchDistanceResponse maps each destination pincode to its result.
type BatchDistanceResponse struct {
	RequestID string                    `json:"request_id"`
	From      string                    `json:"from"`
	Results   map[string]DistanceResult `json:"results"`
}

// StoredDistance is a row of the durable exact-distance table.
type StoredDistance struct {
	FromPincode string    `json:"from_pincode"`
	ToPincode   string    `json:"to_pincode"`
	DistanceKm  int       `json:"distance_km"`
	Method      string    `json:"method"`
	UpdatedAt   time.Time `json:"updated_at"`
}
