package distance

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"franchise-crm/internal/models"
	"franchise-crm/internal/validation"

	"github.com/labstack/echo/v4"
)

func newTestHandler(res *fakeResolver) (*echo.Echo, *Handler) {
	e := echo.New()
	svc := NewService(res, nil, NewCache(time.Hour), quietLogger(), 2)
	h := NewHandler(svc, validation.MustNew(""))
	h.RegisterRoutes(e.Group("/api/v1"))
	return e, h
}

func TestGetDistanceRejectsMissingParams(t *testing.T) {
	res := newFakeResolver()
	e, _ := newTestHandler(res)

	for _, target := range []string{
		"/api/v1/distance",
		"/api/v1/distance?from=390001",
		"/api/v1/distance?to=390001",
		"/api/v1/distance?from=%20&to=390001",
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d; want 400", target, rec.Code)
		}
	}
	if res.total() != 0 {
		t.Errorf("resolver called %d times for bad requests", res.total())
	}
}

func TestGetDistanceRejectsMalformedPincode(t *testing.T) {
	res := newFakeResolver()
	e, _ := newTestHandler(res)

	for _, target := range []string{
		"/api/v1/distance?from=39000&to=390001",
		"/api/v1/distance?from=ABCDEF&to=390001",
		"/api/v1/distance?from=390001&to=3900011",
	} {
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, target, nil))
		if rec.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d; want 400", target, rec.Code)
			continue
		}
		var body models.ErrorResponse
		if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil || body.Message == "" {
			t.Errorf("GET %s body = %q; want error message", target, rec.Body.String())
		}
	}
	if res.total() != 0 {
		t.Errorf("resolver called %d times for bad requests", res.total())
	}
}

func TestGetDistanceExact(t *testing.T) {
	e, _ := newTestHandler(newFakeResolver())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/distance?from=390001&to=390001", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}

	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["success"] != true || body["distance_km"] != float64(0) || body["method"] != "exact" {
		t.Errorf("body = %v; want success exact 0", body)
	}
}

func TestGetDistanceEstimationIsStill200(t *testing.T) {
	e, _ := newTestHandler(newFakeResolver())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/distance?from=390001&to=110001", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; want 200", rec.Code)
	}
	var got models.DistanceResult
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.Success || got.Method != models.MethodEstimation || got.DistanceKm != 5600 {
		t.Errorf("result = %+v; want 5600 estimation", got)
	}
}

func TestGetBatchDistances(t *testing.T) {
	e, _ := newTestHandler(newFakeResolver())

	body := `{"from":"390001","to":["390001","380001"]}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/distance/batch", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d; body %s", rec.Code, rec.Body.String())
	}
	var got models.BatchDistanceResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if got.RequestID == "" || got.From != "390001" || len(got.Results) != 2 {
		t.Errorf("response = %+v", got)
	}
	if got.Results["380001"].Method != models.MethodGeolocation {
		t.Errorf("380001 = %+v; want geolocation", got.Results["380001"])
	}
}

func TestGetBatchDistancesValidation(t *testing.T) {
	e, _ := newTestHandler(newFakeResolver())

	for _, body := range []string{
		`{"from":"390001","to":[]}`,
		`{"from":"39","to":["390001"]}`,
		`{"from":"390001","to":["x"]}`,
		`not json`,
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/distance/batch", strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("body %s → %d; want 400", body, rec.Code)
		}
	}
}

// stubService lets handler tests observe the context passed down.
type stubService struct {
	ServiceInterface
	gotCtx context.Context
}

func (s *stubService) Calculate(ctx context.Context, from, to string) models.DistanceResult {
	s.gotCtx = ctx
	return models.DistanceResult{DistanceKm: 7, Success: true, Method: models.MethodGeolocation}
}

func TestGetDistancePassesRequestContext(t *testing.T) {
	e := echo.New()
	stub := &stubService{}
	h := NewHandler(stub, validation.MustNew(""))

	req := httptest.NewRequest(http.MethodGet, "/?from=390001&to=380001", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h.GetDistance(c); err != nil {
		t.Fatalf("GetDistance: %v", err)
	}
	if stub.gotCtx != req.Context() {
		t.Error("handler did not forward the request context")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d; want 200", rec.Code)
	}
}
