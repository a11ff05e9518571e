package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"streetsense-be/repository"
	"streetsense-be/services"
)

// SearchController serves the pincode search view. The pincode is matched as
// a case-insensitive substring of the address, the contract the clients rely
// on, not a structured postal-code lookup.
type SearchController struct {
	logger   *zap.Logger
	problems *services.ProblemService
}

func NewSearchController(logger *zap.Logger, problems *services.ProblemService) *SearchController {
	return &SearchController{
		logger:   logger,
		problems: problems,
	}
}

// SearchByPincode handles GET /api/search/pincode/:pincode
func (sc *SearchController) SearchByPincode(c *gin.Context) {
	pincode := c.Param("pincode")
	if pincode == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Pincode is required"})
		return
	}

	problems, err := sc.problems.List(c.Request.Context(), repository.ProblemFilter{Pincode: pincode})
	if err != nil {
		sc.logger.Error("pincode search failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search problems"})
		return
	}

	c.JSON(http.StatusOK, problems)
}
