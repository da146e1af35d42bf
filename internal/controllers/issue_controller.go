package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/civicsync/civicsync/internal/apperr"
	"github.com/civicsync/civicsync/internal/models"
	"github.com/civicsync/civicsync/internal/services"
)

type IssueController struct {
	issues *services.IssueService
}

func NewIssueController(issues *services.IssueService) *IssueController {
	return &IssueController{issues: issues}
}

type CreateIssueRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    string   `json:"category"`
	Location    string   `json:"location"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	ImageURL    *string  `json:"imageUrl,omitempty"`
	UserID      *uint    `json:"userId,omitempty"`
}

type UpdateStatusRequest struct {
	Status  string  `json:"status" binding:"required"`
	Message *string `json:"message,omitempty"`
}

// GetIssues returns all issues newest first, optionally narrowed by category
// and a case-insensitive title/description search.
func (ic *IssueController) GetIssues(c *gin.Context) {
	issues, err := ic.issues.List(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	category := c.Query("category")
	search := strings.ToLower(c.Query("search"))
	if category != "" || search != "" {
		filtered := make([]models.Issue, 0, len(issues))
		for _, issue := range issues {
			if category != "" && string(issue.Category) != category {
				continue
			}
			if search != "" &&
				!strings.Contains(strings.ToLower(issue.Title), search) &&
				!strings.Contains(strings.ToLower(issue.Description), search) {
				continue
			}
			filtered = append(filtered, issue)
		}
		issues = filtered
	}

	c.JSON(http.StatusOK, issues)
}

func (ic *IssueController) CreateIssue(c *gin.Context) {
	var req CreateIssueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Token identity wins over the body; an anonymous report falls back to
	// the seeded default reporter like the original API did.
	reporterID := uint(1)
	if req.UserID != nil {
		reporterID = *req.UserID
	}
	if id, exists := c.Get("user_id"); exists {
		reporterID = id.(uint)
	}

	issue, err := ic.issues.Create(c.Request.Context(), services.CreateIssueInput{
		Title:       req.Title,
		Description: req.Description,
		Category:    models.IssueCategory(req.Category),
		Location:    req.Location,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
		ReporterID:  reporterID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, issue)
}

func (ic *IssueController) UpvoteIssue(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	issue, err := ic.issues.Upvote(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

func (ic *IssueController) UpdateIssueStatus(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var updatedBy *uint
	if uid, exists := c.Get("user_id"); exists {
		v := uid.(uint)
		updatedBy = &v
	}

	issue, err := ic.issues.UpdateStatus(c.Request.Context(), id, models.IssueStatus(req.Status), req.Message, updatedBy)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, issue)
}

// GetIssueUpdates returns the status audit trail for one issue.
func (ic *IssueController) GetIssueUpdates(c *gin.Context) {
	id, ok := issueID(c)
	if !ok {
		return
	}

	updates, err := ic.issues.Updates(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, updates)
}

func issueID(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid issue id"})
		return 0, false
	}
	return uint(id), true
}

// respondError maps the service error taxonomy onto HTTP statuses.
func respondError(c *gin.Context, err error) {
	switch {
	case apperr.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Issue not found"})
	case errors.Is(err, apperr.ErrUnavailable):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Service temporarily unavailable"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
