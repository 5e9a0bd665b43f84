package services

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/testutil"
	"github.com/yukikurage/project-tracker-api/internal/utils"
)

func (s *serviceSuite) TestCreateTask_ProjectNotifications() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice, bob)

	task, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{
		Name:       "Design",
		ProjectID:  &project.ID,
		AssignedTo: &alice.ID,
		CreatorID:  owner.ID,
	})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusPending, task.Status)
	s.Equal(models.TaskPriorityMedium, task.Priority)

	s.Equal([]string{
		"You have been assigned a new task: Design",
		"A new task Design has been added to project Website",
	}, s.inbox(alice))
	s.Equal([]string{"A new task Design has been added to project Website"}, s.inbox(bob))
	s.Empty(s.inbox(owner))
}

func (s *serviceSuite) TestCreateTask_AssignmentRules() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	outsider := testutil.CreateUser(s.T(), s.db, "outsider")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)

	tests := []struct {
		name    string
		input   CreateTaskInput
		wantErr error
	}{
		{
			name:    "project owner cannot be assignee",
			input:   CreateTaskInput{Name: "Task", ProjectID: &project.ID, AssignedTo: &owner.ID, CreatorID: alice.ID},
			wantErr: ErrAssigneeIsOwner,
		},
		{
			name:    "assignee must be member",
			input:   CreateTaskInput{Name: "Task", ProjectID: &project.ID, AssignedTo: &outsider.ID, CreatorID: owner.ID},
			wantErr: ErrAssigneeNotMember,
		},
		{
			name:    "unknown assignee",
			input:   CreateTaskInput{Name: "Task", ProjectID: &project.ID, AssignedTo: ptr(uint64(9999)), CreatorID: owner.ID},
			wantErr: ErrUserNotFound,
		},
		{
			name:    "personal task assigned to someone else",
			input:   CreateTaskInput{Name: "Task", AssignedTo: &alice.ID, CreatorID: owner.ID},
			wantErr: ErrPersonalTaskAssignee,
		},
		{
			name:    "creator not a member",
			input:   CreateTaskInput{Name: "Task", ProjectID: &project.ID, CreatorID: outsider.ID},
			wantErr: ErrNotProjectMember,
		},
		{
			name:    "missing project",
			input:   CreateTaskInput{Name: "Task", ProjectID: ptr(uint64(9999)), CreatorID: owner.ID},
			wantErr: ErrProjectNotFound,
		},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			_, err := s.tasks.CreateTask(s.ctx, tt.input)
			s.ErrorIs(err, tt.wantErr)
		})
	}

	// A personal task may be assigned to its creator.
	task, err := s.tasks.CreateTask(s.ctx, CreateTaskInput{Name: "Self", AssignedTo: &alice.ID, CreatorID: alice.ID})
	s.Require().NoError(err)
	s.True(task.IsAssignedTo(alice.ID))
	s.Empty(s.inbox(alice))
}

func (s *serviceSuite) TestGetTask_Visibility() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	outsider := testutil.CreateUser(s.T(), s.db, "outsider")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)
	task := testutil.CreateTask(s.T(), s.db, "Design", owner, testutil.WithProject(project))
	personal := testutil.CreateTask(s.T(), s.db, "Groceries", owner)

	_, err := s.tasks.GetTask(s.ctx, task.ID, alice.ID)
	s.NoError(err)
	_, err = s.tasks.GetTask(s.ctx, task.ID, outsider.ID)
	s.ErrorIs(err, ErrTaskAccessDenied)
	_, err = s.tasks.GetTask(s.ctx, personal.ID, alice.ID)
	s.ErrorIs(err, ErrTaskAccessDenied)
	_, err = s.tasks.GetTask(s.ctx, 9999, owner.ID)
	s.ErrorIs(err, ErrTaskNotFound)
}

func (s *serviceSuite) TestUpdateTask_Permissions() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	bob := testutil.CreateUser(s.T(), s.db, "bob")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice, bob)
	task := testutil.CreateTask(s.T(), s.db, "Design", bob, testutil.WithProject(project), testutil.WithAssignee(alice))

	name := "Renamed"
	_, err := s.tasks.UpdateTask(s.ctx, task.ID, alice.ID, UpdateTaskInput{Name: &name})
	s.ErrorIs(err, ErrTaskStatusOnly)

	stranger := testutil.CreateUser(s.T(), s.db, "stranger")
	_, err = s.tasks.UpdateTask(s.ctx, task.ID, stranger.ID, UpdateTaskInput{Name: &name})
	s.ErrorIs(err, ErrTaskPermissionDenied)

	// The project owner may edit tasks created by others.
	updated, err := s.tasks.UpdateTask(s.ctx, task.ID, owner.ID, UpdateTaskInput{Name: &name})
	s.Require().NoError(err)
	s.Equal("Renamed", updated.Name)

	completed := models.TaskStatusCompleted
	updated, err = s.tasks.UpdateTask(s.ctx, task.ID, alice.ID, UpdateTaskInput{Status: &completed})
	s.Require().NoError(err)
	s.Equal(models.TaskStatusCompleted, updated.Status)
	s.Contains(s.inbox(bob), "Task 'Renamed' has been completed by alice")
}

func (s *serviceSuite) TestUpdateTask_DueDateSetAndClear() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	task := testutil.CreateTask(s.T(), s.db, "Groceries", owner)

	due := time.Date(2030, 1, 2, 15, 0, 0, 0, time.UTC)
	updated, err := s.tasks.UpdateTask(s.ctx, task.ID, owner.ID, UpdateTaskInput{DueDate: &due, DueDateSet: true})
	s.Require().NoError(err)
	s.Require().NotNil(updated.DueDate)
	s.True(due.Equal(*updated.DueDate))

	// Omitted due date is left alone.
	priority := models.TaskPriorityHigh
	updated, err = s.tasks.UpdateTask(s.ctx, task.ID, owner.ID, UpdateTaskInput{Priority: &priority})
	s.Require().NoError(err)
	s.NotNil(updated.DueDate)

	updated, err = s.tasks.UpdateTask(s.ctx, task.ID, owner.ID, UpdateTaskInput{DueDateSet: true})
	s.Require().NoError(err)
	s.Nil(updated.DueDate)

	reloaded, err := s.taskRepo.FindByID(s.ctx, task.ID)
	s.Require().NoError(err)
	s.Nil(reloaded.DueDate)
	s.Equal(models.TaskPriorityHigh, reloaded.Priority)
}

func (s *serviceSuite) TestUpdatePriority() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)
	task := testutil.CreateTask(s.T(), s.db, "Design", owner, testutil.WithProject(project), testutil.WithAssignee(alice))

	_, err := s.tasks.UpdatePriority(s.ctx, task.ID, alice.ID, models.TaskPriorityHigh)
	s.ErrorIs(err, ErrTaskPermissionDenied)

	updated, err := s.tasks.UpdatePriority(s.ctx, task.ID, owner.ID, models.TaskPriorityLow)
	s.Require().NoError(err)
	s.Equal(models.TaskPriorityLow, updated.Priority)
}

func (s *serviceSuite) TestAssignToMember() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	outsider := testutil.CreateUser(s.T(), s.db, "outsider")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)
	task := testutil.CreateTask(s.T(), s.db, "Design", owner, testutil.WithProject(project))
	personal := testutil.CreateTask(s.T(), s.db, "Groceries", owner)

	_, err := s.tasks.AssignToMember(s.ctx, personal.ID, owner.ID, alice.ID)
	s.ErrorIs(err, ErrTaskWithoutProject)

	_, err = s.tasks.AssignToMember(s.ctx, task.ID, alice.ID, alice.ID)
	s.ErrorIs(err, ErrTaskPermissionDenied)

	_, err = s.tasks.AssignToMember(s.ctx, task.ID, owner.ID, owner.ID)
	s.ErrorIs(err, ErrAssigneeIsOwner)

	_, err = s.tasks.AssignToMember(s.ctx, task.ID, owner.ID, outsider.ID)
	s.ErrorIs(err, ErrMemberNotInProject)

	_, err = s.tasks.AssignToMember(s.ctx, task.ID, owner.ID, 9999)
	s.ErrorIs(err, ErrUserNotFound)

	updated, err := s.tasks.AssignToMember(s.ctx, task.ID, owner.ID, alice.ID)
	s.Require().NoError(err)
	s.True(updated.IsAssignedTo(alice.ID))
	s.Equal([]string{"You have been assigned a new task: Design"}, s.inbox(alice))
}

func (s *serviceSuite) TestDeleteTask() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	admin := testutil.CreateAdmin(s.T(), s.db, "admin")
	first := testutil.CreateTask(s.T(), s.db, "First", owner)
	second := testutil.CreateTask(s.T(), s.db, "Second", owner)

	s.ErrorIs(s.tasks.DeleteTask(s.ctx, first.ID, alice.ID, false), ErrTaskPermissionDenied)
	s.NoError(s.tasks.DeleteTask(s.ctx, first.ID, owner.ID, false))
	s.NoError(s.tasks.DeleteTask(s.ctx, second.ID, admin.ID, true))
	s.ErrorIs(s.tasks.DeleteTask(s.ctx, second.ID, owner.ID, false), ErrTaskNotFound)
}

func (s *serviceSuite) TestListTasks() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	alice := testutil.CreateUser(s.T(), s.db, "alice")
	outsider := testutil.CreateUser(s.T(), s.db, "outsider")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner, alice)
	testutil.CreateTask(s.T(), s.db, "Design", owner, testutil.WithProject(project), testutil.WithAssignee(alice))
	testutil.CreateTask(s.T(), s.db, "Deploy", owner, testutil.WithProject(project))

	page, err := s.tasks.ListTasks(s.ctx, ListTasksInput{UserID: alice.ID, Pagination: utils.NewPaginationParams(1, 10)})
	s.Require().NoError(err)
	s.Equal(int64(1), page.Total)
	s.Equal("Website", page.Projects[project.ID].Name)

	page, err = s.tasks.ListTasks(s.ctx, ListTasksInput{UserID: alice.ID, ProjectID: &project.ID, Pagination: utils.NewPaginationParams(1, 10)})
	s.Require().NoError(err)
	s.Equal(int64(2), page.Total)

	_, err = s.tasks.ListTasks(s.ctx, ListTasksInput{UserID: outsider.ID, ProjectID: &project.ID, Pagination: utils.NewPaginationParams(1, 10)})
	s.ErrorIs(err, ErrNotProjectMember)
}

func (s *serviceSuite) TestGenerateTasks() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	outsider := testutil.CreateUser(s.T(), s.db, "outsider")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner)

	_, err := s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{Text: "anything", ProjectID: project.ID, UserID: owner.ID})
	s.ErrorIs(err, ErrAIServiceNotConfigured)

	past := time.Now().Add(-72 * time.Hour)
	s.tasks.generator = stubGenerator{tasks: []GeneratedTask{
		{Name: "  Write landing copy  ", Priority: "urgent", DueDate: &past},
		{Name: "ab"},
		{Name: strings.Repeat("x", 80), Priority: models.TaskPriorityHigh},
	}}

	_, err = s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{Text: "anything", ProjectID: project.ID, UserID: outsider.ID})
	s.ErrorIs(err, ErrNotProjectMember)

	drafts, err := s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{Text: "anything", ProjectID: project.ID, UserID: owner.ID})
	s.Require().NoError(err)
	s.Require().Len(drafts, 2)
	s.Equal("Write landing copy", drafts[0].Name)
	s.Equal(models.TaskPriorityMedium, drafts[0].Priority)
	s.Nil(drafts[0].DueDate)
	s.Len(drafts[1].Name, 50)
	s.Equal(models.TaskPriorityHigh, drafts[1].Priority)

	s.tasks.generator = stubGenerator{}
	_, err = s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{Text: "anything", ProjectID: project.ID, UserID: owner.ID})
	s.ErrorIs(err, ErrAINoTasksGenerated)

	s.tasks.generator = stubGenerator{err: errBoom}
	_, err = s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{Text: "anything", ProjectID: project.ID, UserID: owner.ID})
	s.ErrorIs(err, errBoom)
}

func (s *serviceSuite) TestGenerateTasks_MultibyteText() {
	owner := testutil.CreateUser(s.T(), s.db, "owner")
	project := testutil.CreateProject(s.T(), s.db, "Website", owner)

	s.tasks.generator = stubGenerator{tasks: []GeneratedTask{
		{Name: "日"},
		{Name: "日本語"},
		{Name: strings.Repeat("日", 60), Description: strings.Repeat("説", 600)},
		{Name: strings.Repeat("x", 49) + "日本"},
	}}

	drafts, err := s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{Text: "anything", ProjectID: project.ID, UserID: owner.ID})
	s.Require().NoError(err)
	s.Require().Len(drafts, 3)

	s.Equal("日本語", drafts[0].Name)

	s.Equal(strings.Repeat("日", 50), drafts[1].Name)
	s.Equal(strings.Repeat("説", 500), drafts[1].Description)

	s.Equal(strings.Repeat("x", 49)+"日", drafts[2].Name)

	for _, d := range drafts {
		s.True(utf8.ValidString(d.Name), d.Name)
		s.True(utf8.ValidString(d.Description))
	}

	s.tasks.generator = stubGenerator{tasks: []GeneratedTask{{Name: "日"}, {Name: " 日本 "}}}
	_, err = s.tasks.GenerateTasks(s.ctx, GenerateTasksInput{Text: "anything", ProjectID: project.ID, UserID: owner.ID})
	s.ErrorIs(err, ErrAINoValidTasks)
}

func ptr[T any](v T) *T {
	return &v
}
