package rest

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ArtistSummary handles GET /api/artists/:id/summary
func (h *Handler) ArtistSummary(c *gin.Context) {
	summary, err := h.svc.ArtistSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}
