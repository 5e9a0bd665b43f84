package services

import (
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/testutil"
)

func (s *serviceSuite) invite(project *models.Project, sender, recipient *models.User) *models.Invitation {
	inv, err := s.projects.InviteMember(s.ctx, project.ID, sender.ID, recipient.ID)
	s.Require().NoError(err)
	return inv
}

func (s *serviceSuite) TestRespond_Accept() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, bob)
	inv := s.invite(project, owner, alice)

	accepted, err := s.invitations.Respond(s.ctx, inv.ID, alice.ID, models.InvitationAccepted)
	s.Require().NoError(err)
	s.Equal(models.InvitationAccepted, accepted.Status)

	isMember, err := s.projectRepo.IsMember(s.ctx, project.ID, alice.ID)
	s.Require().NoError(err)
	s.True(isMember)

	s.Contains(s.inbox(owner), "alice has accepted your invitation to join the project Website")
	s.Contains(s.inbox(bob), "A new member has joined the project Website")
	s.NotContains(s.inbox(alice), "A new member has joined the project Website")

	// Terminal states cannot be left.
	_, err = s.invitations.Respond(s.ctx, inv.ID, alice.ID, models.InvitationAccepted)
	s.ErrorIs(err, ErrInvitationResponded)
	_, err = s.invitations.Respond(s.ctx, inv.ID, alice.ID, models.InvitationRejected)
	s.ErrorIs(err, ErrInvitationResponded)
}

func (s *serviceSuite) TestRespond_Reject() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner)
	inv := s.invite(project, owner, alice)

	rejected, err := s.invitations.Respond(s.ctx, inv.ID, alice.ID, models.InvitationRejected)
	s.Require().NoError(err)
	s.Equal(models.InvitationRejected, rejected.Status)

	isMember, err := s.projectRepo.IsMember(s.ctx, project.ID, alice.ID)
	s.Require().NoError(err)
	s.False(isMember)
	s.Equal([]string{"alice has rejected your invitation to join the project Website"}, s.inbox(owner))

	// A fresh invitation can be sent after a rejection.
	s.invite(project, owner, alice)
}

func (s *serviceSuite) TestRespond_Errors() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner)
	inv := s.invite(project, owner, alice)

	_, err := s.invitations.Respond(s.ctx, 9999, alice.ID, models.InvitationAccepted)
	s.ErrorIs(err, ErrInvitationNotFound)

	_, err = s.invitations.Respond(s.ctx, inv.ID, owner.ID, models.InvitationAccepted)
	s.ErrorIs(err, ErrNotInvitationRecipient)

	_, err = s.invitations.Respond(s.ctx, inv.ID, alice.ID, models.InvitationPending)
	s.ErrorIs(err, ErrInvalidInvitationStatus)

	_, err = s.invitations.Respond(s.ctx, inv.ID, alice.ID, "maybe")
	s.ErrorIs(err, ErrInvalidInvitationStatus)
}

func (s *serviceSuite) TestListReceived() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	first := testutil.CreateProject(s.T(), s.db, "First", owner)
	second := testutil.CreateProject(s.T(), s.db, "Second", owner)
	inv := s.invite(first, owner, alice)
	s.invite(second, owner, alice)

	_, err := s.invitations.Respond(s.ctx, inv.ID, alice.ID, models.InvitationRejected)
	s.Require().NoError(err)

	list, err := s.invitations.ListReceived(s.ctx, alice.ID, nil)
	s.Require().NoError(err)
	s.Len(list.Invitations, 2)
	s.Equal("owner", list.Users[owner.ID].Username)
	s.Len(list.Projects, 2)

	pending := models.InvitationPending
	list, err = s.invitations.ListReceived(s.ctx, alice.ID, &pending)
	s.Require().NoError(err)
	s.Require().Len(list.Invitations, 1)
	s.Equal(second.ID, list.Invitations[0].ProjectID)
}
