package errors

import "errors"

// Custom application errors
var (
	ErrCategoryDisabled  = errors.New("notifications are disabled for this category") // Per-kind opt-out flag is off
	ErrPermissionDenied  = errors.New("notification permission denied")               // Dispatcher has no permission to deliver
	ErrPastTime          = errors.New("trigger time is not far enough in the future") // Adjusted time violates the minimum lead time
	ErrDispatch          = errors.New("failed to dispatch notification")              // Underlying dispatcher call failed
	ErrStorage           = errors.New("key-value store operation failed")             // Generic storage error
	ErrInvalidRequest    = errors.New("invalid reminder request")                     // Malformed or inconsistent request
	ErrInvalidDateTime   = errors.New("invalid date/time")                            // Unparseable date/time input
	ErrReminderNotFound  = errors.New("reminder not found")                           // No stored mapping for the entity
	ErrDatabaseOperation = errors.New("database operation failed")                    // Generic database error
	ErrLineAPI           = errors.New("failed to communicate with the LINE API")      // Generic LINE API error
	ErrScheduling        = errors.New("failed to register schedule")                  // Generic cron scheduling error
	ErrInternalServer    = errors.New("internal server error")                        // Generic internal error
)
