package handlers

import (
	"fmt"
	"net/http"

	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
	"github.com/anonto42/collabhub/backend/internal/services"
	"github.com/labstack/echo/v4"
)

// EngagementHandler handles HTTP requests related to project engagement
type EngagementHandler struct {
	engagementService   *services.EngagementService
	projectRepository   repositories.ProjectRepository
	notificationService *services.NotificationService
}

// NewEngagementHandler creates a new EngagementHandler
func NewEngagementHandler(engagementService *services.EngagementService, projectRepo repositories.ProjectRepository, notificationService *services.NotificationService) *EngagementHandler {
	return &EngagementHandler{
		engagementService:   engagementService,
		projectRepository:   projectRepo,
		notificationService: notificationService,
	}
}

// RegisterEngagementRoutes registers engagement-related routes
func (h *EngagementHandler) RegisterEngagementRoutes(g *echo.Group) {
	g.POST("/projects/:project_id/like", h.ToggleLike)
	g.POST("/projects/:project_id/share", h.RecordShare)
	g.POST("/projects/:project_id/view", h.RecordView)
	g.GET("/projects/:project_id/engagement", h.GetEngagementStatus)
}

// ToggleLike flips the authenticated user's like on a project
func (h *EngagementHandler) ToggleLike(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	projectID := c.Param("project_id")

	// Verify project exists
	project, err := h.projectRepository.GetProjectByID(c.Request().Context(), projectID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}

	result, err := h.engagementService.Toggle(c.Request().Context(), currentUserID, projectID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Notify the project owner on toggle-on, but not about their own like
	if result.Active && result.Created && project.OwnerID != currentUserID {
		content := fmt.Sprintf("Someone liked your project %q", project.Name)
		if _, err := h.notificationService.Create(c.Request().Context(), project.OwnerID, content, models.NotificationProjectLiked, projectID, nil); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"project_id": projectID, "active": result.Active})
}

// RecordShare records a share engagement at most once per user and project
func (h *EngagementHandler) RecordShare(c echo.Context) error {
	return h.recordOnce(c, models.EngagementShare)
}

// RecordView records a view engagement at most once per user and project
func (h *EngagementHandler) RecordView(c echo.Context) error {
	return h.recordOnce(c, models.EngagementView)
}

func (h *EngagementHandler) recordOnce(c echo.Context, kind models.EngagementKind) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	projectID := c.Param("project_id")

	// Verify project exists
	if _, err := h.projectRepository.GetProjectByID(c.Request().Context(), projectID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}

	result, err := h.engagementService.RecordOnce(c.Request().Context(), currentUserID, projectID, kind)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{"project_id": projectID, "created": result.Created})
}

// GetEngagementStatus reports whether the authenticated user has liked and
// shared a project
func (h *EngagementHandler) GetEngagementStatus(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	projectID := c.Param("project_id")

	status, err := h.engagementService.Status(c.Request().Context(), currentUserID, projectID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, status)
}
