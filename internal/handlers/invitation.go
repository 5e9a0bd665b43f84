package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/dto"
	apierrors "github.com/yukikurage/project-tracker-api/internal/errors"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

type InvitationHandler struct {
	invitationService *services.InvitationService
}

func NewInvitationHandler(invitationService *services.InvitationService) *InvitationHandler {
	return &InvitationHandler{invitationService: invitationService}
}

// ListInvitations returns the invitations received by the current user,
// optionally filtered by ?status=
func (h *InvitationHandler) ListInvitations(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	var status *models.InvitationStatus
	if q := c.Query("status"); q != "" {
		s := models.InvitationStatus(q)
		if s != models.InvitationPending && s != models.InvitationAccepted && s != models.InvitationRejected {
			apierrors.BadRequest(c, "Invalid status")
			return
		}
		status = &s
	}

	list, err := h.invitationService.ListReceived(c.Request.Context(), userID, status)
	if err != nil {
		apierrors.InternalError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.ToInvitationListResponse(list.Invitations, list.Users, list.Projects))
}

// RespondInvitation accepts or rejects a pending invitation
func (h *InvitationHandler) RespondInvitation(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}
	invitationID, err := utils.ParseIDParam(c, "id")
	if err != nil {
		apierrors.BadRequest(c, "Invalid invitation ID")
		return
	}

	var req dto.RespondInvitationRequest
	if !bindJSON(c, &req) {
		return
	}

	invitation, err := h.invitationService.Respond(c.Request.Context(), invitationID, userID, req.Status)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrInvitationNotFound):
			apierrors.NotFound(c, "Invitation not found")
		case errors.Is(err, services.ErrNotInvitationRecipient):
			apierrors.Forbidden(c, "You are not authorized to respond to this invitation")
		case errors.Is(err, services.ErrInvitationResponded):
			apierrors.BadRequest(c, "Invitation has already been responded to")
		case errors.Is(err, services.ErrInvalidInvitationStatus):
			apierrors.BadRequest(c, "Invalid status")
		default:
			apierrors.InternalError(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":    "Invitation " + string(invitation.Status),
		"invitation": dto.ToInvitationDTO(*invitation, nil, nil),
	})
}
