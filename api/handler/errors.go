package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/use-agent/bestseller/models"
)

// respondError maps a ScrapeError to the correct HTTP status code and writes
// a structured JSON error response.
func respondError(c *gin.Context, err error, timing models.TimingInfo) {
	scrapeErr := models.AsScrapeError(err)

	c.JSON(StatusFor(scrapeErr.Code), models.ExtractResponse{
		Success: false,
		Links:   []models.Link{},
		Error:   scrapeErr.ToDetail(),
		Timing:  timing,
	})
}

// StatusFor translates error codes to HTTP status codes.
func StatusFor(code string) int {
	switch code {
	case models.ErrCodeTimeout:
		return http.StatusGatewayTimeout // 504
	case models.ErrCodeNavigation:
		return http.StatusBadGateway // 502
	case models.ErrCodeInvalidInput:
		return http.StatusBadRequest // 400
	case models.ErrCodeRateLimited:
		return http.StatusTooManyRequests // 429
	case models.ErrCodeUnauthorized:
		return http.StatusUnauthorized // 401
	default:
		return http.StatusInternalServerError // 500
	}
}
