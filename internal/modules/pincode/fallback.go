package pincode

import "franchise-crm/internal/models"

// fallbackPincodes answers for common city pincodes when India Post is
// unreachable or has no record.
var fallbackPincodes = map[string]models.PincodeInfo{
	"110001": {Area: "Connaught Place", City: "New Delhi", State: "Delhi"},
	"400001": {Area: "Fort", City: "Mumbai", State: "Maharashtra"},
	"560001": {Area: "Bangalore GPO", City: "Bangalore", State: "Karnataka"},
	"600001": {Area: "Chennai GPO", City: "Chennai", State: "Tamil Nadu"},
	"700001": {Area: "Kolkata GPO", City: "Kolkata", State: "West Bengal"},
	"380001": {Area: "Ahmedabad GPO", City: "Ahmedabad", State: "Gujarat"},
	"500001": {Area: "Hyderabad GPO", City: "Hyderabad", State: "Telangana"},
	"141001": {Area: "Ludhiana GPO", City: "Ludhiana", State: "Punjab"},
	"208001": {Area: "Kanpur GPO", City: "Kanpur", State: "Uttar Pradesh"},
	"302001": {Area: "Jaipur GPO", City: "Jaipur", State: "Rajasthan"},
	"411001": {Area: "Pune GPO", City: "Pune", State: "Maharashtra"},
	"682001": {Area: "Kochi GPO", City: "Kochi", State: "Kerala"},
	"781001": {Area: "Guwahati GPO", City: "Guwahati", State: "Assam"},
	"800001": {Area: "Patna GPO", City: "Patna", State: "Bihar"},
	"226001": {Area: "Lucknow GPO", City: "Lucknow", State: "Uttar Pradesh"},
	"390001": {Area: "Vadodara GPO", City: "Vadodara", State: "Gujarat"},
	"390011": {Area: "Subhanpura", City: "Vadodara", State: "Gujarat"},
}

func lookupFallback(pincode string) (models.PincodeInfo, bool) {
	info, ok := fallbackPincodes[pincode]
	if !ok {
		return models.PincodeInfo{}, false
	}
	info.Pincode = pincode
	info.Source = models.PincodeSourceFallback
	return info, true
}
