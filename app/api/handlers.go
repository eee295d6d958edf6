package api

import (
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/proveit-app/proveit/app/analytics"
	"github.com/proveit-app/proveit/app/headlines"
	"github.com/proveit-app/proveit/app/sources"
)

const maxImportBytes = 2 << 20

func NewHandler(tracker TrackerInterface, porter PorterInterface,
	headlinesSvc HeadlinesInterface, verdictClient VerdictInterface,
	registry *sources.Registry) *Handler {
	return &Handler{
		tracker:   tracker,
		porter:    porter,
		headlines: headlinesSvc,
		verdict:   verdictClient,
		registry:  registry,
	}
}

func (h *Handler) PostTrack(c *gin.Context) {
	var req analytics.TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	event, err := h.tracker.Track(req)
	if err != nil {
		slog.Error("Track failed", "source", req.Source, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record read event"})
		return
	}

	if event == nil {
		// Tracking disabled in preferences: acknowledged, nothing stored.
		c.JSON(http.StatusOK, gin.H{"tracked": false})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"tracked": true, "event": event})
}

func (h *Handler) GetHistory(c *gin.Context) {
	events := h.tracker.Events()
	c.JSON(http.StatusOK, gin.H{
		"total":  len(events),
		"events": events,
	})
}

func (h *Handler) DeleteHistory(c *gin.Context) {
	window := c.DefaultQuery("window", analytics.ClearWindowAll)

	if err := h.tracker.Clear(window); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   err.Error(),
			"windows": analytics.ClearWindows(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"cleared":   true,
		"window":    window,
		"remaining": len(h.tracker.Events()),
	})
}

func (h *Handler) GetStats(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Stats())
}

func (h *Handler) GetPreferences(c *gin.Context) {
	c.JSON(http.StatusOK, h.tracker.Preferences())
}

func (h *Handler) PutPreferences(c *gin.Context) {
	var update analytics.PreferencesUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	prefs, err := h.tracker.UpdatePreferences(update)
	if err != nil {
		slog.Error("Preferences update failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save preferences"})
		return
	}

	c.JSON(http.StatusOK, prefs)
}

func (h *Handler) GetExport(c *gin.Context) {
	payload := h.porter.Export()

	c.Header("Content-Disposition", "attachment; filename=\""+h.porter.ExportFilename()+"\"")
	c.JSON(http.StatusOK, payload)
}

func (h *Handler) PostImport(c *gin.Context) {
	data, err := io.ReadAll(io.LimitReader(c.Request.Body, maxImportBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	result := h.porter.Import(data)
	if !result.Success {
		c.JSON(http.StatusBadRequest, result)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetReport(c *gin.Context) {
	h.renderReport(c, false)
}

func (h *Handler) GetReportPrint(c *gin.Context) {
	h.renderReport(c, true)
}

func (h *Handler) renderReport(c *gin.Context, autoPrint bool) {
	html, err := h.porter.RenderHTML(autoPrint)
	if err != nil {
		slog.Error("Report rendering failed", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to render report"})
		return
	}

	c.Header("Content-Type", "text/html; charset=utf-8")
	c.String(http.StatusOK, html)
}

func (h *Handler) GetSession(c *gin.Context) {
	session := gin.H{
		"reportStale": h.tracker.IsStale(),
	}

	if lastLogin := h.tracker.LastLogin(); lastLogin != nil {
		session["lastLogin"] = lastLogin.Format(time.RFC3339)
	}
	if lastReport := h.tracker.LastReportSent(); lastReport != nil {
		session["lastReportSent"] = lastReport.Format(time.RFC3339)
	}

	c.JSON(http.StatusOK, session)
}

func (h *Handler) PostReportSent(c *gin.Context) {
	if err := h.tracker.MarkReportSent(); err != nil {
		slog.Error("Failed to record report marker", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record report marker"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"recorded": true})
}

func (h *Handler) GetHeadlines(c *gin.Context) {
	category := c.DefaultQuery("category", "politics")

	articles := h.headlines.Fetch(c.Request.Context(), category)

	c.JSON(http.StatusOK, gin.H{
		"category":   category,
		"categories": headlines.Categories(),
		"articles":   articles,
	})
}

func (h *Handler) PostVerdict(c *gin.Context) {
	var req struct {
		Claim string `json:"claim"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	claim := strings.TrimSpace(req.Claim)
	if claim == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Claim is required"})
		return
	}

	if !h.verdict.Enabled() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Verdict checking is not configured"})
		return
	}

	result, err := h.verdict.Check(c.Request.Context(), claim)
	if err != nil {
		slog.Error("Verdict check failed", "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": "Verdict service unavailable"})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) GetSources(c *gin.Context) {
	list := h.registry.All()
	if c.Query("trusted") == "true" {
		list = h.registry.Trusted()
	}

	c.JSON(http.StatusOK, gin.H{
		"total":   len(list),
		"sources": list,
	})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"events":    len(h.tracker.Events()),
		"sources":   h.registry.Count(),
	}

	c.JSON(http.StatusOK, health)
}
