package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"ichinichi/internal/core"
)

func (s *Server) handleListItems(c *gin.Context) {
	items, err := s.items.ListByCategory(c.Request.Context(), c.Query("category"))
	if err != nil {
		respondError(c, err)
		return
	}
	if items == nil {
		items = []core.Item{}
	}
	c.JSON(http.StatusOK, items)
}

func (s *Server) handleGetItem(c *gin.Context) {
	item, err := s.items.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleCreateItem(c *gin.Context) {
	in, err := bindItemInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	item, err := s.items.Create(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.Header("Location", "/api/items/"+item.ID)
	c.JSON(http.StatusCreated, item)
}

func (s *Server) handleUpdateItem(c *gin.Context) {
	in, err := bindItemInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	item, err := s.items.Update(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleDeleteItem(c *gin.Context) {
	if err := s.items.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// previewResponse carries the raw figures plus their display strings.
type previewResponse struct {
	CostPerDay   float64           `json:"costPerDay"`
	CostPerMonth float64           `json:"costPerMonth"`
	CostPerYear  float64           `json:"costPerYear"`
	Formatted    map[string]string `json:"formatted"`
}

func (s *Server) handlePreview(c *gin.Context) {
	in, err := bindItemInput(c)
	if err != nil {
		respondError(c, err)
		return
	}
	p, err := s.items.Preview(in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, previewResponse{
		CostPerDay:   p.CostPerDay,
		CostPerMonth: p.CostPerMonth,
		CostPerYear:  p.CostPerYear,
		Formatted: map[string]string{
			"costPerDay":   s.formatter.Detailed(p.CostPerDay),
			"costPerMonth": s.formatter.Detailed(p.CostPerMonth),
			"costPerYear":  s.formatter.Detailed(p.CostPerYear),
		},
	})
}
