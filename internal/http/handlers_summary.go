package http

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"ichinichi/internal/core"
	"ichinichi/internal/cost"
	"ichinichi/internal/report"
)

type summaryResponse struct {
	Period    core.DisplayPeriod   `json:"period"`
	Total     float64              `json:"total"`
	Formatted string               `json:"formatted"`
	ItemCount int                  `json:"itemCount"`
	Summary   core.SummaryData     `json:"summary"`
	Shares    []core.CategoryShare `json:"shares"`
}

func (s *Server) handleSummary(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		respondError(c, err)
		return
	}
	summary, err := s.items.Summary(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if summary.CategorySummary == nil {
		summary.CategorySummary = []core.CategorySummary{}
	}
	shares := cost.Shares(summary, period)
	if shares == nil {
		shares = []core.CategoryShare{}
	}
	total := summary.Total(period)
	c.JSON(http.StatusOK, summaryResponse{
		Period:    period,
		Total:     total,
		Formatted: s.formatter.PerPeriod(total, period),
		ItemCount: summary.ItemCount(),
		Summary:   summary,
		Shares:    shares,
	})
}

func (s *Server) handleRanking(c *gin.Context) {
	limit, err := parseLimit(c)
	if err != nil {
		respondError(c, err)
		return
	}
	top, err := s.items.Top(c.Request.Context(), limit)
	if err != nil {
		respondError(c, err)
		return
	}
	if top == nil {
		top = []core.Item{}
	}
	c.JSON(http.StatusOK, top)
}

func (s *Server) handleCategories(c *gin.Context) {
	cats, err := s.items.Categories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	if cats == nil {
		cats = []string{}
	}
	c.JSON(http.StatusOK, cats)
}

// handleReport renders the markdown report as a standalone HTML page.
func (s *Server) handleReport(c *gin.Context) {
	period, err := parsePeriod(c)
	if err != nil {
		respondError(c, err)
		return
	}
	items, err := s.items.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	md, err := report.Markdown(report.Build(items, period, cost.DefaultTopN, time.Now()), s.formatter)
	if err != nil {
		respondError(c, err)
		return
	}
	var page bytes.Buffer
	if err := report.HTML(&page, "ichinichi report", md); err != nil {
		respondError(c, err)
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", page.Bytes())
}
