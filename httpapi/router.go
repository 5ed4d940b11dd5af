// Package httpapi serves the read-only report endpoints.
package httpapi

import (
	"net/http"
	"time"

	"meal-telegram/models"
	"meal-telegram/services"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	reporter *services.Reporter
	registry *services.Registry
	window   services.MealWindow
	clock    services.Clock
}

func NewHandler(reporter *services.Reporter, registry *services.Registry, window services.MealWindow, clock services.Clock) *Handler {
	return &Handler{reporter: reporter, registry: registry, window: window, clock: clock}
}

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.GET("/healthz", func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	api := r.Group("/api")
	api.GET("/reports", h.Report)
	api.GET("/spend", h.Spend)
	api.GET("/selections", h.Selections)
	return r
}

type lineJSON struct {
	Code     string `json:"code"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
	Subtotal int64  `json:"subtotal"`
	Note     string `json:"note,omitempty"`
}

type userJSON struct {
	Name  string     `json:"name"`
	Lines []lineJSON `json:"lines"`
	Total int64      `json:"total"`
}

type vendorJSON struct {
	Code  string     `json:"code"`
	Name  string     `json:"name"`
	Kind  string     `json:"kind"`
	Users []userJSON `json:"users"`
	Total int64      `json:"total"`
}

// Report handles GET /api/reports?date=&slot=&kind=.
func (h *Handler) Report(c *gin.Context) {
	date, slot, ok := h.dateSlot(c)
	if !ok {
		return
	}
	kind := models.VendorKind(c.Query("kind"))
	if kind != "" && !kind.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "kind must be food or drink"})
		return
	}
	rep, err := h.reporter.Report(c.Request.Context(), date, slot, kind)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "report failed"})
		return
	}
	vendors := make([]vendorJSON, 0, len(rep.Vendors))
	for _, v := range rep.Vendors {
		vj := vendorJSON{Code: v.Vendor.Code, Name: v.Vendor.Name, Kind: string(v.Vendor.Kind), Total: v.Total}
		for _, u := range v.Users {
			uj := userJSON{Name: u.DisplayName, Total: u.Total}
			for _, l := range u.Lines {
				uj.Lines = append(uj.Lines, lineJSON{
					Code: l.ItemCode, Name: l.ItemName, Price: l.Price,
					Quantity: l.Quantity, Subtotal: l.Subtotal(), Note: l.Note,
				})
			}
			vj.Users = append(vj.Users, uj)
		}
		vendors = append(vendors, vj)
	}
	c.JSON(http.StatusOK, gin.H{
		"date":        rep.Date,
		"slot":        rep.Slot,
		"kind":        rep.Kind,
		"status":      rep.Status,
		"vendors":     vendors,
		"grand_total": rep.GrandTotal,
		"text":        rep.Text(),
	})
}

// Spend handles GET /api/spend?date=&slot=.
func (h *Handler) Spend(c *gin.Context) {
	date, slot, ok := h.dateSlot(c)
	if !ok {
		return
	}
	sp, err := h.reporter.Spend(c.Request.Context(), date, slot)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "spend failed"})
		return
	}
	users := make([]gin.H, 0, len(sp.Users))
	for _, u := range sp.Users {
		users = append(users, gin.H{"name": u.DisplayName, "total": u.Total})
	}
	c.JSON(http.StatusOK, gin.H{"date": sp.Date, "slot": sp.Slot, "users": users, "grand_total": sp.GrandTotal})
}

// Selections handles GET /api/selections?date=.
func (h *Handler) Selections(c *gin.Context) {
	date, ok := h.date(c)
	if !ok {
		return
	}
	sels, err := h.registry.Selections(c.Request.Context(), date)
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "selections failed"})
		return
	}
	out := make([]gin.H, 0, len(sels))
	for _, s := range sels {
		out = append(out, gin.H{
			"slot": s.Slot, "kind": s.Kind,
			"vendor": gin.H{"code": s.Vendor.Code, "name": s.Vendor.Name},
		})
	}
	c.JSON(http.StatusOK, gin.H{"date": date, "selections": out})
}

func (h *Handler) date(c *gin.Context) (string, bool) {
	date := c.Query("date")
	if date == "" {
		return h.window.Today(h.clock.Now()), true
	}
	if _, err := time.Parse("2006-01-02", date); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "date must be YYYY-MM-DD"})
		return "", false
	}
	return date, true
}

// dateSlot reads date and slot; a missing slot means the current report slot.
func (h *Handler) dateSlot(c *gin.Context) (string, models.MealSlot, bool) {
	date, ok := h.date(c)
	if !ok {
		return "", "", false
	}
	raw := c.Query("slot")
	if raw == "" {
		return date, h.window.ReportSlot(h.clock.Now()), true
	}
	slot, ok := services.ParseSlot(raw)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "slot must be lunch or dinner"})
		return "", "", false
	}
	return date, slot, true
}
