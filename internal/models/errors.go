package models

import "errors"

var ErrNotFound = errors.New("requested resource not found")
var ErrForbidden = errors.New("user does not have permission to access this resource")
var ErrConflict = errors.New("resource conflict, item already exists")
var ErrInvalidToken = errors.New("token not found or expired")

// ErrInvalidPostalCode is returned when a pincode cannot be parsed as a number
// or does not match the configured format.
var ErrInvalidPostalCode = errors.New("invalid pincode format")

// ErrNoCoordinates indicates that a geocoding provider answered but had no
// usable latitude/longitude for the query.
var ErrNoCoordinates = errors.New("no coordinates for location")

// ErrStoreUnavailable is returned by handlers that need the database when the
// service was started without DATABASE_URL.
var ErrStoreUnavailable = errors.New("persistence is not configured")

var ErrInvalidRuleRange = errors.New("max_km must be greater than min_km")

// ErrorResponse is the JSON body of every non-2xx response.
type ErrorResponse struct {
	Message string `json:"message"`
}

// ErrInvalidRule wraps field-level problems in a rule save request.
var ErrInvalidRule = errors.New("invalid pricing rule")
