package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"streetsense-be/models"
	"streetsense-be/repository"
	"streetsense-be/services"
)

// ProblemController holds the handlers for the problem lifecycle endpoints.
type ProblemController struct {
	logger   *zap.Logger
	problems *services.ProblemService
}

func NewProblemController(logger *zap.Logger, problems *services.ProblemService) *ProblemController {
	return &ProblemController{
		logger:   logger,
		problems: problems,
	}
}

// CreateProblem handles POST /api/problems
func (pc *ProblemController) CreateProblem(c *gin.Context) {
	reportedBy, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	// Required/optional constraints are enforced in the service so a single
	// response can enumerate every invalid field.
	var input struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Category    string `json:"category"`
		Location    struct {
			Address string   `json:"address"`
			Lat     *float64 `json:"lat"`
			Lng     *float64 `json:"lng"`
		} `json:"location"`
		Images []string `json:"images"`
	}

	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	problem, err := pc.problems.Create(c.Request.Context(), services.CreateProblemInput{
		Title:       input.Title,
		Description: input.Description,
		Category:    input.Category,
		Address:     input.Location.Address,
		Lat:         input.Location.Lat,
		Lng:         input.Location.Lng,
		Images:      input.Images,
		ReportedBy:  reportedBy,
	})
	if err != nil {
		if ve, ok := services.AsValidationError(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{
				"error":  "Validation failed",
				"fields": ve.Fields,
			})
			return
		}
		pc.logger.Error("create problem failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create problem"})
		return
	}

	c.JSON(http.StatusCreated, problem)
}

// ListProblems handles GET /api/problems with optional search, category,
// status and pincode query filters, newest first.
func (pc *ProblemController) ListProblems(c *gin.Context) {
	filter := repository.ProblemFilter{
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Status:   c.Query("status"),
		Pincode:  c.Query("pincode"),
	}

	problems, err := pc.problems.List(c.Request.Context(), filter)
	if err != nil {
		pc.logger.Error("list problems failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
		return
	}

	c.JSON(http.StatusOK, problems)
}

// GetProblem handles GET /api/problems/:id
func (pc *ProblemController) GetProblem(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	detail, err := pc.problems.Get(c.Request.Context(), problemID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		pc.logger.Error("get problem failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problem"})
		return
	}

	c.JSON(http.StatusOK, detail)
}

// GetMyProblems handles GET /api/problems/mine
func (pc *ProblemController) GetMyProblems(c *gin.Context) {
	userID, err := currentUserID(c)
	if err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	problems, err := pc.problems.ListByReporter(c.Request.Context(), userID)
	if err != nil {
		pc.logger.Error("list own problems failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve problems"})
		return
	}

	c.JSON(http.StatusOK, problems)
}

// UpdateStatus handles PATCH /api/problems/:id/status
func (pc *ProblemController) UpdateStatus(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	var input struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
		return
	}

	problem, err := pc.problems.SetStatus(c.Request.Context(), problemID, models.ProblemStatus(input.Status))
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvalidStatus):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status"})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		default:
			pc.logger.Error("update status failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update status"})
		}
		return
	}

	c.JSON(http.StatusOK, problem)
}

// UpvoteProblem handles POST /api/problems/:id/upvote
func (pc *ProblemController) UpvoteProblem(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	problem, err := pc.problems.Upvote(c.Request.Context(), problemID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
			return
		}
		pc.logger.Error("upvote failed", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upvote problem"})
		return
	}

	c.JSON(http.StatusOK, problem)
}

// AddUpdate handles POST /api/problems/:id/updates
func (pc *ProblemController) AddUpdate(c *gin.Context) {
	problemID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid problem ID"})
		return
	}

	var input struct {
		Content string `json:"content" binding:"required"`
		Author  string `json:"author"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		return
	}

	author := input.Author
	if author == "" {
		author = "Citizen"
	}

	problem, err := pc.problems.AppendUpdate(c.Request.Context(), problemID, input.Content, author)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmptyContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": "Content is required"})
		case errors.Is(err, services.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "Problem not found"})
		default:
			pc.logger.Error("add update failed", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add update"})
		}
		return
	}

	c.JSON(http.StatusOK, problem)
}
