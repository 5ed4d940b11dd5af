package httpapi

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"meal-telegram/models"
	"meal-telegram/services"

	"github.com/gin-gonic/gin"
)

func buildTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	ctx := context.Background()

	store := services.NewMemStore()
	food := store.AddVendor("好味", models.KindFood)
	store.AddVendor("清原", models.KindDrink)
	cat := store.AddCategory(food.ID, "便當")
	item := store.AddItem(cat.ID, "雞腿便當", 120, "")

	registry := services.NewRegistry(store, store)
	if err := registry.SetFoodVendor(ctx, "2024-05-06", models.SlotLunch, food.ID); err != nil {
		t.Fatal(err)
	}
	_, err := store.RecordOrder(ctx, models.CreateOrderInput{
		PlatformUserID: "1", DisplayName: "amy", Date: "2024-05-06", Slot: models.SlotLunch, ItemID: item.ID, Quantity: 2,
	})
	if err != nil {
		t.Fatal(err)
	}

	clock := services.NewFixedClock(time.Date(2024, 5, 6, 8, 0, 0, 0, time.UTC))
	h := NewHandler(services.NewReporter(store, registry, store), registry, services.DefaultMealWindow(time.UTC), clock)
	return NewRouter(h)
}

func doRequest(r *gin.Engine, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return body
}

func TestHealthz(t *testing.T) {
	w := doRequest(buildTestRouter(t), "/healthz")
	if w.Code != http.StatusOK || w.Body.String() != "ok" {
		t.Errorf("GET /healthz = %d %q", w.Code, w.Body.String())
	}
}

func TestReport(t *testing.T) {
	r := buildTestRouter(t)
	tests := []struct {
		path   string
		code   int
		status string
		total  float64
	}{
		{"/api/reports?date=2024-05-06&slot=lunch", http.StatusOK, "ok", 240},
		{"/api/reports", http.StatusOK, "ok", 240},
		{"/api/reports?date=2024-05-06&slot=lunch&kind=drink", http.StatusOK, "vendor_not_configured", 0},
		{"/api/reports?date=2024-05-07&slot=lunch&kind=food", http.StatusOK, "vendor_not_configured", 0},
		{"/api/reports?date=2024-05-06&slot=dinner", http.StatusOK, "vendor_not_configured", 0},
	}
	for _, tt := range tests {
		w := doRequest(r, tt.path)
		if w.Code != tt.code {
			t.Errorf("GET %s = %d, want %d", tt.path, w.Code, tt.code)
			continue
		}
		body := decode(t, w)
		if body["status"] != tt.status || body["grand_total"] != tt.total {
			t.Errorf("GET %s = %v/%v, want %s/%v", tt.path, body["status"], body["grand_total"], tt.status, tt.total)
		}
	}
}

func TestReportBadInput(t *testing.T) {
	r := buildTestRouter(t)
	for _, path := range []string{
		"/api/reports?slot=brunch",
		"/api/reports?kind=dessert",
		"/api/reports?date=06-05-2024",
		"/api/spend?slot=night",
		"/api/selections?date=tomorrow",
	} {
		w := doRequest(r, path)
		if w.Code != http.StatusBadRequest {
			t.Errorf("GET %s = %d, want 400", path, w.Code)
			continue
		}
		if _, ok := decode(t, w)["error"]; !ok {
			t.Errorf("GET %s: no error field", path)
		}
	}
}

func TestSpendAndSelections(t *testing.T) {
	r := buildTestRouter(t)

	body := decode(t, doRequest(r, "/api/spend?date=2024-05-06&slot=lunch"))
	users, _ := body["users"].([]any)
	if len(users) != 1 || users[0].(map[string]any)["name"] != "amy" || body["grand_total"] != float64(240) {
		t.Errorf("spend = %v", body)
	}

	body = decode(t, doRequest(r, "/api/selections?date=2024-05-06"))
	sels, _ := body["selections"].([]any)
	if len(sels) != 1 {
		t.Fatalf("selections = %v", body)
	}
	sel := sels[0].(map[string]any)
	if sel["slot"] != "lunch" || sel["kind"] != "food" || sel["vendor"].(map[string]any)["code"] != "AA" {
		t.Errorf("selection = %v", sel)
	}
}
