package models

// Pincode lookup sources.
const (
	PincodeSourceAPI      = "api"
	PincodeSourceFallback = "fallback"
)

// PincodeInfo is the area/city/state a pincode belongs to.
type PincodeInfo struct {
	Pincode string `json:"pincode"`
	Area    string `json:"area"`
	City    string `json:"city"`
	State   string `json:"state"`
	Source  string `json:"source"`
}
