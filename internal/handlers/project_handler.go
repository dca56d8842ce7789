package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
	"github.com/anonto42/collabhub/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// ProjectHandler handles HTTP requests related to projects and their comments
type ProjectHandler struct {
	projectRepository    repositories.ProjectRepository
	commentRepository    repositories.CommentRepository
	engagementRepository repositories.EngagementRepository
	notificationService  *services.NotificationService
}

// NewProjectHandler creates a new ProjectHandler
func NewProjectHandler(projectRepo repositories.ProjectRepository, commentRepo repositories.CommentRepository, engagementRepo repositories.EngagementRepository, notificationService *services.NotificationService) *ProjectHandler {
	return &ProjectHandler{
		projectRepository:    projectRepo,
		commentRepository:    commentRepo,
		engagementRepository: engagementRepo,
		notificationService:  notificationService,
	}
}

// RegisterProjectRoutes registers project-related routes
func (h *ProjectHandler) RegisterProjectRoutes(g *echo.Group) {
	g.POST("/projects", h.CreateProject)
	g.GET("/projects", h.GetAllProjects)
	g.GET("/projects/mine", h.GetMyProjects)
	g.GET("/projects/:project_id", h.GetProject)
	g.DELETE("/projects/:project_id", h.DeleteProject)
	g.POST("/projects/:project_id/comments", h.CreateComment)
	g.GET("/projects/:project_id/comments", h.GetComments)
}

// CreateProject creates a new project owned by the authenticated user
func (h *ProjectHandler) CreateProject(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateProjectRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	project := &models.Project{
		OwnerID:     currentUserID,
		Name:        req.Name,
		Description: req.Description,
	}
	if err := h.projectRepository.CreateProject(c.Request().Context(), project); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, project)
}

// GetProject retrieves a single project
func (h *ProjectHandler) GetProject(c echo.Context) error {
	projectID := c.Param("project_id")

	project, err := h.projectRepository.GetProjectByID(c.Request().Context(), projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Project not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, project)
}

// GetAllProjects retrieves all projects with pagination
func (h *ProjectHandler) GetAllProjects(c echo.Context) error {
	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 50 {
		limit = 20
	}

	projects, err := h.projectRepository.GetAllProjects(c.Request().Context(), skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, projects)
}

// GetMyProjects retrieves the authenticated user's projects with pagination
func (h *ProjectHandler) GetMyProjects(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	skip, _ := strconv.ParseInt(c.QueryParam("skip"), 10, 64)
	limit, _ := strconv.ParseInt(c.QueryParam("limit"), 10, 64)
	if limit < 1 || limit > 50 {
		limit = 20
	}

	projects, err := h.projectRepository.GetProjectsByOwnerID(c.Request().Context(), currentUserID, skip, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, projects)
}

// DeleteProject deletes a project owned by the authenticated user and
// notifies everyone who liked it
func (h *ProjectHandler) DeleteProject(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	projectID := c.Param("project_id")

	project, err := h.projectRepository.GetProjectByID(c.Request().Context(), projectID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Project not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if project.OwnerID != currentUserID {
		return echo.NewHTTPError(http.StatusForbidden, "Only the project owner may delete it")
	}

	if err := h.projectRepository.DeleteProject(c.Request().Context(), projectID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	// Fan out the deletion to users who had liked the project
	likerIDs, err := h.engagementRepository.ListUserIDsByProject(c.Request().Context(), projectID, models.EngagementLike)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	content := fmt.Sprintf("A project you liked, %q, was deleted", project.Name)
	for _, likerID := range likerIDs {
		if likerID == currentUserID {
			continue
		}
		if _, err := h.notificationService.Create(c.Request().Context(), likerID, content, models.NotificationProjectDeleted, projectID, nil); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.NoContent(http.StatusNoContent)
}

// CreateComment posts a comment on a project, bumps the comment counter and
// notifies the project owner
func (h *ProjectHandler) CreateComment(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	projectID := c.Param("project_id")

	var req models.CreateCommentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	// Verify project exists
	project, err := h.projectRepository.GetProjectByID(c.Request().Context(), projectID)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Project not found")
	}

	comment := &models.Comment{
		ProjectID: projectID,
		UserID:    currentUserID,
		Content:   req.Content,
	}
	if err := h.commentRepository.CreateComment(comment); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.projectRepository.IncrementComments(c.Request().Context(), projectID, 1); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if project.OwnerID != currentUserID {
		content := fmt.Sprintf("New comment on your project %q", project.Name)
		if _, err := h.notificationService.Create(c.Request().Context(), project.OwnerID, content, models.NotificationProjectComment, projectID, nil); err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, comment)
}

// GetComments retrieves all comments for a project
func (h *ProjectHandler) GetComments(c echo.Context) error {
	projectID := c.Param("project_id")

	comments, err := h.commentRepository.GetCommentsByProjectID(projectID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, comments)
}
