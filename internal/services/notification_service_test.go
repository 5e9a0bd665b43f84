package services

import (
	"github.com/yukikurage/project-tracker-api/internal/testutil"
)

func (s *serviceSuite) TestNotify_DeduplicatesRecipients() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")

	s.notifications.Notify(s.ctx, "hello", alice.ID, bob.ID, alice.ID)
	s.notifications.Notify(s.ctx, "nobody")

	s.Equal([]string{"hello"}, s.inbox(alice))
	s.Equal([]string{"hello"}, s.inbox(bob))
}

func (s *serviceSuite) TestNotificationOwnership() {
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	s.notifications.Notify(s.ctx, "first", alice.ID)
	s.notifications.Notify(s.ctx, "second", alice.ID)

	list, err := s.notifications.List(s.ctx, alice.ID, false)
	s.Require().NoError(err)
	s.Require().Len(list, 2)
	s.Equal("second", list[0].Message)

	_, err = s.notifications.MarkRead(s.ctx, list[0].ID, bob.ID)
	s.ErrorIs(err, ErrNotNotificationOwner)
	_, err = s.notifications.MarkRead(s.ctx, 9999, alice.ID)
	s.ErrorIs(err, ErrNotificationNotFound)

	read, err := s.notifications.MarkRead(s.ctx, list[0].ID, alice.ID)
	s.Require().NoError(err)
	s.True(read.Read)

	unread, err := s.notifications.List(s.ctx, alice.ID, true)
	s.Require().NoError(err)
	s.Require().Len(unread, 1)
	s.Equal("first", unread[0].Message)

	n, err := s.notifications.MarkAllRead(s.ctx, alice.ID)
	s.Require().NoError(err)
	s.Equal(int64(1), n)

	s.ErrorIs(s.notifications.Delete(s.ctx, list[0].ID, bob.ID), ErrNotNotificationOwner)
	s.Require().NoError(s.notifications.Delete(s.ctx, list[0].ID, alice.ID))
	s.Len(s.inbox(alice), 1)
}
