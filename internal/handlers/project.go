package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

// Forbidden messages per project action.
const (
	MsgProjectViewDenied          = "You are not authorized to view this project"
	MsgProjectUpdateDenied        = "You are not authorized to update this project"
	MsgProjectDeleteDenied        = "You are not authorized to delete this project"
	MsgProjectInviteDenied        = "You are not authorized to invite users to this project"
	MsgProjectMembersDenied       = "You are not authorized to view the members of this project"
	MsgProjectRemoveMembersDenied = "You are not authorized to remove members from this project"
)

type ProjectHandler struct {
	projectService *services.ProjectService
}

func NewProjectHandler(projectService *services.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// ListProjects returns the projects the current user belongs to
func (h *ProjectHandler) ListProjects(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	params := utils.GetPaginationParams(c)
	page, err := h.projectService.ListProjects(c.Request.Context(), services.ListProjectsInput{
		UserID:     userID,
		Search:     c.Query("search"),
		Sort:       utils.GetSortParams(c),
		Pagination: params,
	})
	if err != nil {
		respondProjectError(c, err, MsgProjectViewDenied)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectListResponse(page.Projects, page.Users, params, page.Total))
}

// CreateProject creates a project owned by the current user
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var req dto.CreateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), services.CreateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		CreatorID:   userID,
	})
	if err != nil {
		respondProjectError(c, err, "")
		return
	}

	c.JSON(http.StatusCreated, dto.ToProjectDTO(*project, nil))
}

// GetProject returns a project with its members and tasks.
// Requires RequireProjectMember.
func (h *ProjectHandler) GetProject(c *gin.Context) {
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	details, err := h.projectService.GetDetails(c.Request.Context(), project)
	if err != nil {
		respondProjectError(c, err, MsgProjectViewDenied)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDetailDTO(details.Project, details.Members, details.Tasks, details.Users))
}

// UpdateProject patches name, description and completed. Owner only.
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	projectID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	var req dto.UpdateProjectRequest
	if !bindJSON(c, &req) {
		return
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), projectID, userID, services.UpdateProjectInput{
		Name:        req.Name,
		Description: req.Description,
		Completed:   req.Completed,
	})
	if err != nil {
		respondProjectError(c, err, MsgProjectUpdateDenied)
		return
	}

	c.JSON(http.StatusOK, dto.ToProjectDTO(*project, nil))
}

// DeleteProject deletes a project and everything in it. Owner only.
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	projectID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	if err := h.projectService.DeleteProject(c.Request.Context(), projectID, userID); err != nil {
		respondProjectError(c, err, MsgProjectDeleteDenied)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Project deleted successfully"})
}

// InviteMember sends an invitation to join the project
func (h *ProjectHandler) InviteMember(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	projectID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	var req dto.InviteMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	invitation, err := h.projectService.InviteMember(c.Request.Context(), projectID, userID, req.RecipientID)
	if err != nil {
		respondProjectError(c, err, MsgProjectInviteDenied)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message":    "Invitation sent successfully",
		"invitation": dto.ToInvitationDTO(*invitation, nil, nil),
	})
}

// ListMembers returns the project's members. Requires RequireProjectMember.
func (h *ProjectHandler) ListMembers(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	project, ok := middleware.GetProject(c)
	if !ok {
		apierrors.NotFound(c, "Project not found")
		return
	}

	members, err := h.projectService.ListMembers(c.Request.Context(), project.ID, userID)
	if err != nil {
		respondProjectError(c, err, MsgProjectMembersDenied)
		return
	}

	c.JSON(http.StatusOK, dto.MemberListResponse{Members: dto.ToUserDTOs(members)})
}

// RemoveMember removes a member from the project. Owner only.
func (h *ProjectHandler) RemoveMember(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	projectID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid project ID")
		return
	}

	var req dto.RemoveMemberRequest
	if !bindJSON(c, &req) {
		return
	}

	if err := h.projectService.RemoveMember(c.Request.Context(), projectID, userID, req.MemberID); err != nil {
		respondProjectError(c, err, MsgProjectRemoveMembersDenied)
		return
	}

	c.JSON(http.StatusOK, messageResponse{Message: "Member removed successfully"})
}

// respondProjectError maps service errors. denied is the 403 message for the action.
func respondProjectError(c *gin.Context, err error, denied string) {
	switch {
	case errors.Is(err, services.ErrProjectNotFound):
		apierrors.NotFound(c, "Project not found")
	case errors.Is(err, services.ErrNotProjectMember),
		errors.Is(err, services.ErrNotProjectOwner):
		apierrors.Forbidden(c, denied)
	case errors.Is(err, services.ErrUserNotFound):
		apierrors.NotFound(c, "User not found")
	case errors.Is(err, services.ErrAlreadyProjectMember):
		apierrors.Conflict(c, "User is already a member of this project")
	case errors.Is(err, services.ErrInvitationAlreadySent):
		apierrors.Conflict(c, "Invitation has already been sent to this user")
	case errors.Is(err, services.ErrCannotRemoveOwner):
		apierrors.BadRequest(c, "Project owner cannot be removed")
	case errors.Is(err, services.ErrMemberNotInProject):
		apierrors.BadRequest(c, "User is not a member of this project")
	default:
		apierrors.InternalError(c, err)
	}
}
