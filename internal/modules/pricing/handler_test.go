package pricing

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"franchise-crm/internal/middleware"
	"franchise-crm/internal/models"
	"franchise-crm/internal/validation"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const testSecret = "pricing-test-secret"

func newTestServer(repo RepositoryInterface, dist *fakeDistances) *echo.Echo {
	e := echo.New()
	e.Logger.SetOutput(io.Discard)
	svc := NewService(repo, dist, quietLogger())
	NewHandler(svc, validation.MustNew("")).RegisterRoutes(e.Group("/api/v1"), middleware.JWTAuth(testSecret))
	return e
}

func tokenFor(t *testing.T, p models.Principal) string {
	t.Helper()
	tok, err := middleware.IssueToken(testSecret, p, time.Hour)
	if err != nil {
		t.Fatalf("IssueToken: %v", err)
	}
	return tok
}

func request(e *echo.Echo, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestComputeEndpoint(t *testing.T) {
	repo := newFakeRepo(variantRule("v1", "f1", 11, intPtr(50), "50"))
	e := newTestServer(repo, nil)

	rec := request(e, http.MethodGet, "/api/v1/distance-pricing/compute?franchise_id=f1&variant_id=v1&km=25&base=100", "", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var q models.PricingQuote
	if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if q.Source != models.PricingSourceVariant || !q.Addon.Equal(dec("50")) || !q.FinalPrice.Equal(dec("150")) {
		t.Errorf("quote = %+v", q)
	}
}

func TestComputeEndpointBadParams(t *testing.T) {
	e := newTestServer(newFakeRepo(), nil)
	for _, target := range []string{
		"/api/v1/distance-pricing/compute?km=25&base=100",
		"/api/v1/distance-pricing/compute?variant_id=v1&km=abc&base=100",
		"/api/v1/distance-pricing/compute?variant_id=v1&km=25&base=x",
		"/api/v1/distance-pricing/compute?variant_id=v1&km=-3&base=100",
		"/api/v1/distance-pricing/compute?variant_id=v1&km=1e300&base=100",
		"/api/v1/distance-pricing/compute?variant_id=v1&km=Inf&base=100",
		"/api/v1/distance-pricing/compute?variant_id=v1&km=NaN&base=100",
	} {
		if rec := request(e, http.MethodGet, target, "", ""); rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d; want 400", target, rec.Code)
		}
	}
}

func TestComputeEndpointScopesFranchise(t *testing.T) {
	repo := newFakeRepo(variantRule("v1", "f1", 0, nil, "50"))
	e := newTestServer(repo, nil)

	for target, want := range map[string]string{
		"/api/v1/distance-pricing/compute?franchiseId=f1&variantId=v1&km=25&base=100": "150",
		"/api/v1/distance-pricing/compute?franchise_id=f2&variant_id=v1&km=25&base=100": "100",
		"/api/v1/distance-pricing/compute?variant_id=v1&km=25&base=100":                 "100",
	} {
		rec := request(e, http.MethodGet, target, "", "")
		var q models.PricingQuote
		if err := json.Unmarshal(rec.Body.Bytes(), &q); err != nil {
			t.Fatalf("GET %s: decode: %v", target, err)
		}
		if !q.FinalPrice.Equal(dec(want)) {
			t.Errorf("GET %s final = %s; want %s", target, q.FinalPrice, want)
		}
	}
}

func TestQuoteEndpoint(t *testing.T) {
	repo := newFakeRepo(variantRule("v1", "f1", 11, intPtr(50), "50"))
	dist := &fakeDistances{result: models.DistanceResult{DistanceKm: 25, Success: true, Method: models.MethodGeolocation}}
	e := newTestServer(repo, dist)

	rec := request(e, http.MethodPost, "/api/v1/distance-pricing/quote",
		`{"from":"390001","to":"390025","franchise_id":"f1","variant_id":"v1","base_price":"100"}`, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var resp models.QuoteResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !resp.Quote.FinalPrice.Equal(dec("150")) || resp.Distance.DistanceKm != 25 {
		t.Errorf("resp = %+v", resp)
	}

	if rec := request(e, http.MethodPost, "/api/v1/distance-pricing/quote", `{"from":"39","to":"390025"}`, ""); rec.Code != http.StatusBadRequest {
		t.Errorf("bad pincode status = %d; want 400", rec.Code)
	}
	if dist.calls != 1 {
		t.Errorf("distance lookups = %d; want 1", dist.calls)
	}
}

func TestRuleRoutesRequireAuth(t *testing.T) {
	e := newTestServer(newFakeRepo(), nil)
	if rec := request(e, http.MethodGet, "/api/v1/distance-pricing/rules", "", ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("GET rules without token = %d; want 401", rec.Code)
	}
	body := `{"variant_id":"v1","min_km":0,"max_km":10,"mode":"flat","value":"5"}`
	if rec := request(e, http.MethodPost, "/api/v1/distance-pricing/rules", body, ""); rec.Code != http.StatusUnauthorized {
		t.Errorf("POST rules without token = %d; want 401", rec.Code)
	}

	readonly := tokenFor(t, models.Principal{UserID: "r", FranchiseID: "f1", Role: models.RoleReadonly})
	if rec := request(e, http.MethodPost, "/api/v1/distance-pricing/rules", body, readonly); rec.Code != http.StatusForbidden {
		t.Errorf("POST rules as readonly = %d; want 403", rec.Code)
	}
	if rec := request(e, http.MethodGet, "/api/v1/distance-pricing/rules", "", readonly); rec.Code != http.StatusOK {
		t.Errorf("GET rules as readonly = %d; want 200", rec.Code)
	}
}

func TestSaveRuleEndpoint(t *testing.T) {
	repo := newFakeRepo()
	e := newTestServer(repo, nil)
	staff := tokenFor(t, staffF1)

	rec := request(e, http.MethodPost, "/api/v1/distance-pricing/rules",
		`{"variant_id":"v1","min_km":0,"max_km":10,"mode":"flat","value":"5"}`, staff)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status = %d; body %s", rec.Code, rec.Body.String())
	}
	var created models.PricingRule
	if err := json.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.ID == uuid.Nil || created.FranchiseID != "f1" {
		t.Errorf("created = %+v", created)
	}

	rec = request(e, http.MethodPost, "/api/v1/distance-pricing/rules",
		`{"variant_id":"v1","min_km":10,"max_km":5,"mode":"flat","value":"5"}`, staff)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad range status = %d; want 400", rec.Code)
	}
	rec = request(e, http.MethodPost, "/api/v1/distance-pricing/rules",
		`{"variant_id":"v1","min_km":0,"mode":"percent","value":"5"}`, staff)
	if rec.Code != http.StatusBadRequest {
		t.Errorf("bad mode status = %d; want 400", rec.Code)
	}

	other := tokenFor(t, staffF2)
	update := `{"id":"` + created.ID.String() + `","min_km":0,"max_km":20,"mode":"flat","value":"9"}`
	if rec := request(e, http.MethodPost, "/api/v1/distance-pricing/rules", update, other); rec.Code != http.StatusForbidden {
		t.Errorf("cross-franchise update = %d; want 403", rec.Code)
	}
	if rec := request(e, http.MethodPost, "/api/v1/distance-pricing/rules", update, staff); rec.Code != http.StatusOK {
		t.Errorf("own update = %d; body %s", rec.Code, rec.Body.String())
	}
}

func TestSaveTierEndpoint(t *testing.T) {
	e := newTestServer(newFakeRepo(), nil)
	admin := tokenFor(t, models.Principal{UserID: "a", FranchiseID: "f1", Role: models.RoleFranchiseAdmin})

	rec := request(e, http.MethodPost, "/api/v1/distance-pricing/tiers", `{"min_km":100,"mode":"multiplier","value":"1.2"}`, admin)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}

	rec = request(e, http.MethodGet, "/api/v1/distance-pricing/tiers", "", admin)
	var tiers []models.PricingRule
	if err := json.Unmarshal(rec.Body.Bytes(), &tiers); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(tiers) != 1 || !tiers[0].IsGlobal() || tiers[0].MaxKm != nil {
		t.Errorf("tiers = %+v", tiers)
	}
}

func TestListRulesWithoutFranchiseClaim(t *testing.T) {
	e := newTestServer(newFakeRepo(variantRule("v1", "f1", 0, nil, "1")), nil)
	tok := tokenFor(t, models.Principal{UserID: "u", Role: models.RoleStaff})
	if rec := request(e, http.MethodGet, "/api/v1/distance-pricing/rules", "", tok); rec.Code != http.StatusForbidden {
		t.Errorf("GET rules without franchise = %d; want 403", rec.Code)
	}
}

func TestRuleRoutesWithoutStore(t *testing.T) {
	e := echo.New()
	NewHandler(NewService(nil, nil, quietLogger()), validation.MustNew("")).RegisterRoutes(e.Group("/api/v1"), middleware.JWTAuth(testSecret))

	rec := request(e, http.MethodGet, "/api/v1/distance-pricing/rules", "", tokenFor(t, staffF1))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d; want 503", rec.Code)
	}
}
