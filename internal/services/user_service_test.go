package services

import (
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/testutil"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

func (s *serviceSuite) TestGetMe_IncludesProjects() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	testutil.CreateProject(s.T(), s.db, "Website", owner, alice)
	testutil.CreateProject(s.T(), s.db, "Other", owner)

	user, projects, err := s.users.GetMe(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal("alice", user.Username)
	s.Require().Len(projects, 1)
	s.Equal("Website", projects[0].Name)

	_, _, err = s.users.GetMe(s.ctx, 9999)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *serviceSuite) TestUpdateMe() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	testutil.CreateUser(s.T(), s.db, "bob")

	bio := "Gopher"
	name := "alice2"
	user, err := s.users.UpdateMe(s.ctx, alice.ID, UpdateMeInput{Username: &name, Bio: &bio})
	s.Require().NoError(err)
	s.Equal("alice2", user.Username)
	s.Equal("Gopher", user.Bio)

	taken := "bob"
	_, err = s.users.UpdateMe(s.ctx, alice.ID, UpdateMeInput{Username: &taken})
	s.ErrorIs(err, ErrUsernameTaken)

	_, err = s.users.UpdateMe(s.ctx, alice.ID, UpdateMeInput{EmailProvided: true})
	s.ErrorIs(err, ErrEmailImmutable)
}

func (s *serviceSuite) TestDeleteMe_BlocksTokenAndRemovesUser() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	_, token, err := s.auth.Login(s.ctx, LoginInput{Email: alice.Email, Password: testutil.Password})
	s.Require().NoError(err)

	s.Require().NoError(s.users.DeleteMe(s.ctx, alice.ID, token))

	_, err = s.auth.Authenticate(s.ctx, token)
	s.ErrorIs(err, ErrTokenRevoked)
	_, err = s.auth.GetUser(s.ctx, alice.ID)
	s.ErrorIs(err, ErrUserNotFound)
}

func (s *serviceSuite) TestListUsers() {
	for _, name := range []string{"carol", "alice", "bob"} {
		testutil.CreateUser(s.T(), s.db, name)
	}

	users, total, err := s.users.ListUsers(s.ctx, repository.UserFilter{
		Sort:       utils.ParseSort("username"),
		Pagination: utils.NewPaginationParams(1, 2),
	})
	s.Require().NoError(err)
	s.Equal(int64(3), total)
	s.Require().Len(users, 2)
	s.Equal("alice", users[0].Username)
	s.Equal("bob", users[1].Username)
}
