package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/anonto42/collabhub/backend/internal/models"
	"github.com/anonto42/collabhub/backend/internal/repositories"
	"github.com/anonto42/collabhub/backend/internal/services"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
)

// TeamHandler handles HTTP requests related to teams and memberships
type TeamHandler struct {
	teamRepository    repositories.TeamRepository
	membershipService *services.MembershipService
	userRepository    repositories.UserRepository
}

// NewTeamHandler creates a new TeamHandler
func NewTeamHandler(teamRepo repositories.TeamRepository, membershipService *services.MembershipService, userRepo repositories.UserRepository) *TeamHandler {
	return &TeamHandler{
		teamRepository:    teamRepo,
		membershipService: membershipService,
		userRepository:    userRepo,
	}
}

// RegisterTeamRoutes registers team-related routes
func (h *TeamHandler) RegisterTeamRoutes(g *echo.Group) {
	g.POST("/teams", h.CreateTeam)
	g.GET("/teams/:team_id/members", h.ListMembers)
	g.POST("/teams/:team_id/invitations", h.InviteMember)
	g.PUT("/teams/:team_id/invitations/respond", h.RespondInvitation)
	g.DELETE("/teams/:team_id/members/:user_id", h.RemoveMember)
	g.PUT("/teams/:team_id/members/:user_id/role", h.ChangeRole)
}

// CreateTeam creates a team; the creator becomes its first accepted lead
func (h *TeamHandler) CreateTeam(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}

	var req models.CreateTeamRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	team := &models.Team{Name: req.Name, OwnerID: currentUserID}
	if err := h.teamRepository.CreateTeam(team); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.membershipService.AddFounder(c.Request().Context(), team.ID, currentUserID); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, team)
}

// ListMembers returns every membership row for a team
func (h *TeamHandler) ListMembers(c echo.Context) error {
	teamID, err := parseTeamID(c)
	if err != nil {
		return err
	}

	members, err := h.membershipService.Members(c.Request().Context(), teamID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, members)
}

// InviteMember invites a user to a team; only an accepted lead may invite
func (h *TeamHandler) InviteMember(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	teamID, err := parseTeamID(c)
	if err != nil {
		return err
	}

	var req models.InviteMemberRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requireLead(c, teamID, currentUserID); err != nil {
		return err
	}

	// Check the invitee exists
	if _, err := h.userRepository.GetUserByID(req.UserID); err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "Invited user not found")
	}

	created, err := h.membershipService.Invite(c.Request().Context(), teamID, req.UserID, models.MembershipRole(req.Role))
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Team not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !created {
		return echo.NewHTTPError(http.StatusConflict, "A membership for this user already exists")
	}

	return c.JSON(http.StatusCreated, echo.Map{"team_id": teamID, "user_id": req.UserID, "status": models.MembershipPending})
}

// RespondInvitation lets the authenticated user accept or reject their
// pending invitation
func (h *TeamHandler) RespondInvitation(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	teamID, err := parseTeamID(c)
	if err != nil {
		return err
	}

	var req models.RespondInvitationRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	membership, err := h.membershipService.Respond(c.Request().Context(), teamID, currentUserID, req.Response == "accept")
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "No invitation found for this team")
		}
		if errors.Is(err, services.ErrMembershipNotPending) {
			return echo.NewHTTPError(http.StatusConflict, "Invitation has already been responded to")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, membership)
}

// RemoveMember removes a user from a team; only an accepted lead may remove,
// except a member may remove themselves (leave)
func (h *TeamHandler) RemoveMember(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	teamID, err := parseTeamID(c)
	if err != nil {
		return err
	}
	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	if uint(targetID) != currentUserID {
		if err := h.requireLead(c, teamID, currentUserID); err != nil {
			return err
		}
	}

	if _, err := h.membershipService.Remove(c.Request().Context(), teamID, uint(targetID)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Membership not found")
		}
		if errors.Is(err, services.ErrLastLead) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

// ChangeRole changes a member's role; only an accepted lead may do so
func (h *TeamHandler) ChangeRole(c echo.Context) error {
	currentUserID := getUserIDFromContext(c)
	if currentUserID == 0 {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not authenticated")
	}
	teamID, err := parseTeamID(c)
	if err != nil {
		return err
	}
	targetID, err := strconv.ParseUint(c.Param("user_id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid user ID")
	}

	var req models.ChangeRoleRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid request payload")
	}
	validate := validator.New()
	if err := validate.Struct(req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	if err := h.requireLead(c, teamID, currentUserID); err != nil {
		return err
	}

	if err := h.membershipService.ChangeRole(c.Request().Context(), teamID, uint(targetID), models.MembershipRole(req.Role)); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "Membership not found")
		}
		if errors.Is(err, services.ErrLastLead) || errors.Is(err, services.ErrMembershipNotAccepted) {
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.NoContent(http.StatusNoContent)
}

func (h *TeamHandler) requireLead(c echo.Context, teamID, userID uint) error {
	role, ok, err := h.membershipService.RoleOf(c.Request().Context(), teamID, userID)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok || role != models.RoleLead {
		return echo.NewHTTPError(http.StatusForbidden, "Only a team lead may perform this action")
	}
	return nil
}

func parseTeamID(c echo.Context) (uint, error) {
	teamID, err := strconv.ParseUint(c.Param("team_id"), 10, 32)
	if err != nil {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "Invalid team ID")
	}
	return uint(teamID), nil
}
