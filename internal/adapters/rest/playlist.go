package rest

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ewilliams-labs/playlist-catalog/internal/core/domain"
)

// PlaylistTracks handles GET /api/playlists/:id/tracks?energyMin=
func (h *Handler) PlaylistTracks(c *gin.Context) {
	energyMin := 0.0
	if raw, ok := c.GetQuery("energyMin"); ok {
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			h.writeError(c, fmt.Errorf("energyMin must be a number between 0 and 1: %w", domain.ErrInvalidArgument))
			return
		}
		energyMin = v
	}

	page, err := h.svc.PlaylistTracks(c.Request.Context(), c.Param("id"), energyMin)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}
