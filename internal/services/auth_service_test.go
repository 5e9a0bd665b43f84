package services

import (
	"strings"
	"time"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/testutil"
)

func (s *serviceSuite) TestRegister_CreatesUserAndToken() {
	user, token, err := s.auth.Register(s.ctx, RegisterInput{
		Username: "alice",
		Email:    "  Alice@Example.com ",
		Password: "Secret123!",
	})
	s.Require().NoError(err)
	s.Equal("alice@example.com", user.Email)
	s.Equal(models.RoleUser, user.Role)
	s.NotEqual("Secret123!", user.PasswordHash)

	claims, err := s.auth.Authenticate(s.ctx, token)
	s.Require().NoError(err)
	s.Equal(user.ID, claims.UserID)
}

func (s *serviceSuite) TestRegister_DuplicateEmail() {
	testutil.CreateUser(s.T(), s.db, "alice")

	_, _, err := s.auth.Register(s.ctx, RegisterInput{
		Username: "another",
		Email:    "ALICE@example.com",
		Password: "Secret123!",
	})
	s.ErrorIs(err, ErrEmailTaken)
}

func (s *serviceSuite) TestRegister_DuplicateUsername() {
	testutil.CreateUser(s.T(), s.db, "alice")

	_, _, err := s.auth.Register(s.ctx, RegisterInput{
		Username: "alice",
		Email:    "new@example.com",
		Password: "Secret123!",
	})
	s.ErrorIs(err, ErrUsernameTaken)
}

func (s *serviceSuite) TestLogin() {
	user := testutil.CreateUser(s.T(), s.db, "alice")

	got, token, err := s.auth.Login(s.ctx, LoginInput{Email: user.Email, Password: testutil.Password})
	s.Require().NoError(err)
	s.Equal(user.ID, got.ID)
	s.NotEmpty(token)

	_, _, err = s.auth.Login(s.ctx, LoginInput{Email: user.Email, Password: "Wrong123!"})
	s.ErrorIs(err, ErrInvalidCredentials)

	_, _, err = s.auth.Login(s.ctx, LoginInput{Email: "nobody@example.com", Password: testutil.Password})
	s.ErrorIs(err, ErrInvalidCredentials)
}

func (s *serviceSuite) TestForgotAndResetPassword() {
	user := testutil.CreateUser(s.T(), s.db, "alice")

	s.Require().NoError(s.auth.ForgotPassword(s.ctx, user.Email))
	s.Require().Len(s.mail.sent, 1)
	msg := s.mail.sent[0]
	s.Equal(user.Email, msg.To)

	prefix := "http://localhost:8080/api/v1/auth/reset-password/"
	idx := strings.Index(msg.Body, prefix)
	s.Require().GreaterOrEqual(idx, 0)
	token := strings.TrimSpace(msg.Body[idx+len(prefix):])
	s.Len(token, 40)

	s.Require().NoError(s.auth.ResetPassword(s.ctx, token, "NewSecret1!"))

	_, _, err := s.auth.Login(s.ctx, LoginInput{Email: user.Email, Password: "NewSecret1!"})
	s.NoError(err)

	// Tokens are single use.
	s.ErrorIs(s.auth.ResetPassword(s.ctx, token, "Another1!"), ErrResetTokenInvalid)
}

func (s *serviceSuite) TestResetPassword_Expired() {
	user := testutil.CreateUser(s.T(), s.db, "alice")
	s.Require().NoError(s.auth.ForgotPassword(s.ctx, user.Email))
	body := s.mail.sent[0].Body
	token := body[strings.LastIndex(body, "/")+1:]

	s.auth.now = func() time.Time { return time.Now().Add(11 * time.Minute) }
	s.ErrorIs(s.auth.ResetPassword(s.ctx, token, "NewSecret1!"), ErrResetTokenInvalid)
}

func (s *serviceSuite) TestForgotPassword_UnknownEmail() {
	s.ErrorIs(s.auth.ForgotPassword(s.ctx, "nobody@example.com"), ErrUserNotFound)
	s.Empty(s.mail.sent)
}

func (s *serviceSuite) TestForgotPassword_MailFailureClearsToken() {
	user := testutil.CreateUser(s.T(), s.db, "alice")
	s.mail.err = errBoom

	err := s.auth.ForgotPassword(s.ctx, user.Email)
	s.ErrorIs(err, ErrResetEmailNotSent)

	reloaded, err := s.userRepo.FindByID(s.ctx, user.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.ResetPasswordToken)
	s.Nil(reloaded.ResetPasswordExpire)
}

func (s *serviceSuite) TestLogoutRevokesToken() {
	user := testutil.CreateUser(s.T(), s.db, "alice")
	_, token, err := s.auth.Login(s.ctx, LoginInput{Email: user.Email, Password: testutil.Password})
	s.Require().NoError(err)

	claims, err := s.auth.Authenticate(s.ctx, token)
	s.Require().NoError(err)
	s.Require().NoError(s.auth.Logout(s.ctx, token, claims))

	_, err = s.auth.Authenticate(s.ctx, token)
	s.ErrorIs(err, ErrTokenRevoked)
}

func (s *serviceSuite) TestAuthenticate_InvalidSignature() {
	user := testutil.CreateUser(s.T(), s.db, "alice")
	_, token, err := s.auth.Login(s.ctx, LoginInput{Email: user.Email, Password: testutil.Password})
	s.Require().NoError(err)

	tampered := token[:len(token)-2] + "xx"
	_, err = s.auth.Authenticate(s.ctx, tampered)
	s.ErrorIs(err, ErrTokenInvalid)
}

func (s *serviceSuite) TestRegisterAndLogin_PasswordsLongerThan72Bytes() {
	tests := []struct {
		username string
		length   int
	}{
		{"hundred", 100},
		{"maximum", 255},
	}

	for _, tt := range tests {
		password := "Aa1!" + strings.Repeat("x", tt.length-4)
		email := tt.username + "@example.com"

		_, _, err := s.auth.Register(s.ctx, RegisterInput{Username: tt.username, Email: email, Password: password})
		s.Require().NoError(err, tt.username)

		_, _, err = s.auth.Login(s.ctx, LoginInput{Email: email, Password: password})
		s.NoError(err, tt.username)

		// Differs only past byte 72.
		_, _, err = s.auth.Login(s.ctx, LoginInput{Email: email, Password: password[:tt.length-1] + "y"})
		s.ErrorIs(err, ErrInvalidCredentials, tt.username)
	}
}

func (s *serviceSuite) TestResetPassword_LongPassword() {
	user := testutil.CreateUser(s.T(), s.db, "alice")
	s.Require().NoError(s.auth.ForgotPassword(s.ctx, user.Email))
	body := s.mail.sent[0].Body
	token := body[strings.LastIndex(body, "/")+1:]

	password := "Aa1!" + strings.Repeat("x", 251)
	s.Require().NoError(s.auth.ResetPassword(s.ctx, token, password))

	_, _, err := s.auth.Login(s.ctx, LoginInput{Email: user.Email, Password: password})
	s.NoError(err)
}

func (s *serviceSuite) TestAuthenticate_UserDeleted() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	_, first, err := s.auth.Login(s.ctx, LoginInput{Email: alice.Email, Password: testutil.Password})
	s.Require().NoError(err)
	_, second, err := s.auth.Login(s.ctx, LoginInput{Email: alice.Email, Password: testutil.Password})
	s.Require().NoError(err)

	s.Require().NoError(s.users.DeleteMe(s.ctx, alice.ID, first))

	_, err = s.auth.Authenticate(s.ctx, first)
	s.ErrorIs(err, ErrTokenRevoked)
	_, err = s.auth.Authenticate(s.ctx, second)
	s.ErrorIs(err, ErrTokenRevoked)
}
