package services

import (
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/testutil"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

func (s *serviceSuite) TestCreateAndListProjects() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")

	project, err := s.projects.CreateProject(s.ctx, CreateProjectInput{
		Name:        "  Website ",
		Description: "Marketing site",
		CreatorID:   owner.ID,
	})
	s.Require().NoError(err)
	s.Equal("Website", project.Name)

	page, err := s.projects.ListProjects(s.ctx, ListProjectsInput{
		UserID:     owner.ID,
		Pagination: utils.NewPaginationParams(1, 10),
	})
	s.Require().NoError(err)
	s.Equal(int64(1), page.Total)
	s.Require().Len(page.Projects, 1)
	s.Equal("owner", page.Users[owner.ID].Username)
}

func (s *serviceSuite) TestGetProjectForMember() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	outsider := testutil.CreateUser(s.T(), s.db, "outsider")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner)

	_, err := s.projects.GetProjectForMember(s.ctx, project.ID, outsider.ID)
	s.ErrorIs(err, ErrNotProjectMember)

	_, err = s.projects.GetProjectForMember(s.ctx, 9999, owner.ID)
	s.ErrorIs(err, ErrProjectNotFound)

	got, err := s.projects.GetProjectForMember(s.ctx, project.ID, owner.ID)
	s.Require().NoError(err)
	s.Equal(project.ID, got.ID)
}

func (s *serviceSuite) TestGetDetails() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)
	testutil.CreateTask(s.T(), s.db, "Design", owner, testutil.WithProject(project), testutil.WithAssignee(alice))

	details, err := s.projects.GetDetails(s.ctx, project)
	s.Require().NoError(err)
	s.Len(details.Members, 2)
	s.Len(details.Tasks, 1)
	s.Contains(details.Users, owner.ID)
	s.Contains(details.Users, alice.ID)
}

func (s *serviceSuite) TestUpdateProject_OwnerOnlyAndCompletionNotifies() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)

	name := "Renamed"
	_, err := s.projects.UpdateProject(s.ctx, project.ID, alice.ID, UpdateProjectInput{Name: &name})
	s.ErrorIs(err, ErrNotProjectOwner)

	completed := true
	updated, err := s.projects.UpdateProject(s.ctx, project.ID, owner.ID, UpdateProjectInput{Name: &name, Completed: &completed})
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Name)
	s.True(updated.Completed)

	s.Equal([]string{"The project Renamed has been marked as completed"}, s.inbox(alice))
	s.Empty(s.inbox(owner))

	// Already completed: no second notification.
	_, err = s.projects.UpdateProject(s.ctx, project.ID, owner.ID, UpdateProjectInput{Completed: &completed})
	s.Require().NoError(err)
	s.Len(s.inbox(alice), 1)
}

func (s *serviceSuite) TestDeleteProject_CascadesAndNotifies() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)
	task := testutil.CreateTask(s.T(), s.db, "Design", owner, testutil.WithProject(project))

	s.ErrorIs(s.projects.DeleteProject(s.ctx, project.ID, alice.ID), ErrNotProjectOwner)
	s.Require().NoError(s.projects.DeleteProject(s.ctx, project.ID, owner.ID))

	_, err := s.tasks.GetTask(s.ctx, task.ID, owner.ID)
	s.ErrorIs(err, ErrTaskNotFound)
	s.Equal([]string{"The project Website has been deleted"}, s.inbox(alice))
	s.ErrorIs(s.projects.DeleteProject(s.ctx, project.ID, owner.ID), ErrProjectNotFound)
}

func (s *serviceSuite) TestInviteMember() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	outsider := testutil.CreateUser(s.T(), s.db, "outsider")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner)

	_, err := s.projects.InviteMember(s.ctx, project.ID, outsider.ID, alice.ID)
	s.ErrorIs(err, ErrNotProjectMember)

	_, err = s.projects.InviteMember(s.ctx, project.ID, owner.ID, 9999)
	s.ErrorIs(err, ErrUserNotFound)

	_, err = s.projects.InviteMember(s.ctx, project.ID, owner.ID, owner.ID)
	s.ErrorIs(err, ErrAlreadyProjectMember)

	invitation, err := s.projects.InviteMember(s.ctx, project.ID, owner.ID, alice.ID)
	s.Require().NoError(err)
	s.Equal(models.InvitationPending, invitation.Status)
	s.Equal([]string{"owner has invited you to join the project Website"}, s.inbox(alice))

	_, err = s.projects.InviteMember(s.ctx, project.ID, owner.ID, alice.ID)
	s.ErrorIs(err, ErrInvitationAlreadySent)
}

func (s *serviceSuite) TestRemoveMember() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	outsider := testutil.CreateUser(s.T(), s.db, "outsider")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)
	task := testutil.CreateTask(s.T(), s.db, "Design", owner, testutil.WithProject(project), testutil.WithAssignee(alice))

	s.ErrorIs(s.projects.RemoveMember(s.ctx, project.ID, alice.ID, owner.ID), ErrNotProjectOwner)
	s.ErrorIs(s.projects.RemoveMember(s.ctx, project.ID, owner.ID, 9999), ErrUserNotFound)
	s.ErrorIs(s.projects.RemoveMember(s.ctx, project.ID, owner.ID, owner.ID), ErrCannotRemoveOwner)
	s.ErrorIs(s.projects.RemoveMember(s.ctx, project.ID, owner.ID, outsider.ID), ErrMemberNotInProject)

	s.Require().NoError(s.projects.RemoveMember(s.ctx, project.ID, owner.ID, alice.ID))

	members, err := s.projects.ListMembers(s.ctx, project.ID, owner.ID)
	s.Require().NoError(err)
	s.Len(members, 1)

	reloaded, err := s.taskRepo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.AssignedTo)
	s.Equal([]string{"You have been removed from the project Website"}, s.inbox(alice))
}
