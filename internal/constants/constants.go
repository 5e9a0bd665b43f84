package constants

import "time"

// Context keys
const (
	ContextKeyUserID    = "user_id"
	ContextKeyUserRole  = "user_role"
	ContextKeyToken     = "auth_token"
	ContextKeyClaims    = "auth_claims"
	ContextKeyRequestID = "request_id"
	ContextKeyProject   = "project"
	ContextKeyTask      = "task"
)

// HTTP headers
const (
	HeaderAuthorization = "Authorization"
	HeaderAuthToken     = "x-auth-token"
	HeaderRequestID     = "X-Request-ID"
	BearerPrefix        = "Bearer "
)

// Pagination
const (
	MinPageSize     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
	// MaxPage keeps (page-1)*limit far from int overflow.
	MaxPage = 1_000_000
)

// Field limits
const (
	MinUsernameLength    = 3
	MaxUsernameLength    = 20
	MinPasswordLength    = 8
	MaxPasswordLength    = 255
	MaxBioLength         = 100
	MinNameLength        = 3
	MaxNameLength        = 50
	MaxDescriptionLength = 500
)

// Token lifetimes
const (
	DefaultTokenTTL        = time.Hour
	ResetTokenTTL          = 10 * time.Minute
	DeletedAccountBlockTTL = 7 * 24 * time.Hour
)

// Scheduler
const (
	DueDateReminderWindow   = 24 * time.Hour
	DefaultDueDateSweepSpec = "0 0 * * *"
	DefaultTokenPurgeSpec   = "@hourly"
)

// AI
const (
	MaxAIGeneratedTasks   = 20
	MaxGenerateTextLength = 4000
)
