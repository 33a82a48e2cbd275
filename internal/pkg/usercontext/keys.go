package usercontext

// Shared Locals keys used across controllers and middlewares
const (
	KeyUserContext = "USER_CONTEXT"
	KeyUserID      = "user_id"
	KeyUserEmail   = "user_email"
	KeyIsAdmin     = "isAdmin"
)
