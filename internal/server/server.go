// Package server wires repositories, services and handlers into a gin router.
package server

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yukikurage/project-tracker-api/internal/auth"
	"github.com/yukikurage/project-tracker-api/internal/config"
	"github.com/yukikurage/project-tracker-api/internal/handlers"
	"github.com/yukikurage/project-tracker-api/internal/mailer"
	"github.com/yukikurage/project-tracker-api/internal/metrics"
	"github.com/yukikurage/project-tracker-api/internal/middleware"
	"github.com/yukikurage/project-tracker-api/internal/models"
	"github.com/yukikurage/project-tracker-api/internal/repository"
	"github.com/yukikurage/project-tracker-api/internal/scheduler"
	"github.com/yukikurage/project-tracker-api/internal/services"
	"gorm.io/gorm"
)

// Dependencies are the external pieces the application is built from.
// Generator may be nil, which disables AI task generation.
type Dependencies struct {
	DB        *gorm.DB
	Config    *config.Config
	Mailer    mailer.Mailer
	Generator services.TaskGenerator
	Metrics   *metrics.Metrics
	Logger    *slog.Logger
}

type Repositories struct {
	Users         repository.UserRepository
	Projects      repository.ProjectRepository
	Tasks         repository.TaskRepository
	Invitations   repository.InvitationRepository
	Notifications repository.NotificationRepository
	InvalidTokens repository.InvalidTokenRepository
}

type Services struct {
	Auth          *services.AuthService
	Users         *services.UserService
	Projects      *services.ProjectService
	Tasks         *services.TaskService
	Invitations   *services.InvitationService
	Notifications *services.NotificationService
}

// App is the assembled application.
type App struct {
	Router       *gin.Engine
	Repositories Repositories
	Services     Services

	deps Dependencies
}

// New builds the repositories, services and router.
func New(deps Dependencies) *App {
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.New(nil)
	}
	if deps.Mailer == nil {
		deps.Mailer = mailer.NewLogMailer(deps.Logger)
	}

	repos := Repositories{
		Users:         repository.NewUserRepository(deps.DB),
		Projects:      repository.NewProjectRepository(deps.DB),
		Tasks:         repository.NewTaskRepository(deps.DB),
		Invitations:   repository.NewInvitationRepository(deps.DB),
		Notifications: repository.NewNotificationRepository(deps.DB),
		InvalidTokens: repository.NewInvalidTokenRepository(deps.DB),
	}

	tokens := auth.NewTokenManager(deps.Config.JWTSecret, deps.Config.JWTTTL)
	notifier := services.NewNotificationService(repos.Notifications, deps.Logger)

	svc := Services{
		Auth:          services.NewAuthService(repos.Users, repos.InvalidTokens, tokens, deps.Mailer, deps.Config.BaseURL, deps.Config.ResetTTL),
		Users:         services.NewUserService(repos.Users, repos.Projects, repos.InvalidTokens),
		Projects:      services.NewProjectService(repos.Projects, repos.Users, repos.Tasks, repos.Invitations, notifier),
		Tasks:         services.NewTaskService(repos.Tasks, repos.Projects, repos.Users, notifier, deps.Generator),
		Invitations:   services.NewInvitationService(repos.Invitations, repos.Projects, repos.Users, notifier),
		Notifications: notifier,
	}

	app := &App{
		Repositories: repos,
		Services:     svc,
		deps:         deps,
	}
	app.Router = app.routes()
	return app
}

// NewScheduler builds the background scheduler over the app's repositories.
func (a *App) NewScheduler() (*scheduler.Scheduler, error) {
	return scheduler.New(a.Repositories.Tasks, a.Repositories.InvalidTokens, a.Services.Notifications, scheduler.Options{
		DueDateSweepSpec: a.deps.Config.DueDateSweepSpec,
		TokenPurgeSpec:   a.deps.Config.TokenPurgeSpec,
		Metrics:          a.deps.Metrics,
		Logger:           a.deps.Logger,
	})
}

func (a *App) routes() *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(),
		middleware.RequestLogger(a.deps.Logger),
		middleware.Metrics(a.deps.Metrics),
	)

	authHandler := handlers.NewAuthHandler(a.Services.Auth)
	userHandler := handlers.NewUserHandler(a.Services.Users)
	projectHandler := handlers.NewProjectHandler(a.Services.Projects)
	taskHandler := handlers.NewTaskHandler(a.Services.Tasks)
	invitationHandler := handlers.NewInvitationHandler(a.Services.Invitations)
	notificationHandler := handlers.NewNotificationHandler(a.Services.Notifications)

	requireAuth := middleware.RequireAuth(a.Services.Auth)

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "ok",
			"message": "Project Tracker API is running",
		})
	})
	r.GET("/metrics", gin.WrapH(a.deps.Metrics.Handler()))

	api := r.Group("/api/v1")
	{
		// Auth routes
		authRoutes := api.Group("/auth")
		{
			authRoutes.POST("/register", authHandler.Register)
			authRoutes.POST("/login", authHandler.Login)
			authRoutes.POST("/forgot-password", authHandler.ForgotPassword)
			authRoutes.PATCH("/reset-password/:token", authHandler.ResetPassword)
			authRoutes.POST("/logout", requireAuth, authHandler.Logout)
		}

		users := api.Group("/users")
		users.Use(requireAuth)
		{
			users.GET("", middleware.RequireRole(models.RoleAdmin), userHandler.ListUsers)
			users.GET("/me", userHandler.GetMe)
			users.PATCH("/me", userHandler.UpdateMe)
			users.DELETE("/me", userHandler.DeleteMe)
		}

		projects := api.Group("/projects")
		projects.Use(requireAuth)
		{
			projects.GET("", projectHandler.ListProjects)
			projects.POST("", projectHandler.CreateProject)
			projects.GET("/:id", middleware.RequireProjectMember(a.Services.Projects, handlers.MsgProjectViewDenied), projectHandler.GetProject)
			projects.PATCH("/:id", projectHandler.UpdateProject)
			projects.DELETE("/:id", projectHandler.DeleteProject)
			projects.POST("/:id/invite", projectHandler.InviteMember)
			projects.GET("/:id/members", middleware.RequireProjectMember(a.Services.Projects, handlers.MsgProjectMembersDenied), projectHandler.ListMembers)
			projects.DELETE("/:id/members", projectHandler.RemoveMember)
		}

		invitations := api.Group("/invitations")
		invitations.Use(requireAuth)
		{
			invitations.GET("", invitationHandler.ListInvitations)
			invitations.PATCH("/:id", invitationHandler.RespondInvitation)
		}

		tasks := api.Group("/tasks")
		tasks.Use(requireAuth)
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", taskHandler.CreateTask)
			tasks.POST("/generate", taskHandler.GenerateTasks)
			tasks.GET("/:id", middleware.RequireTaskAccess(a.Services.Tasks), taskHandler.GetTask)
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.PATCH("/:id/priority", taskHandler.UpdatePriority)
			tasks.PATCH("/:id/assign-to-member", taskHandler.AssignToMember)
		}

		notifications := api.Group("/notifications")
		notifications.Use(requireAuth)
		{
			notifications.GET("", notificationHandler.ListNotifications)
			notifications.PATCH("/read", notificationHandler.MarkAllRead)
			notifications.PATCH("/:id/read", notificationHandler.MarkRead)
			notifications.DELETE("/:id", notificationHandler.DeleteNotification)
		}
	}

	return r
}
