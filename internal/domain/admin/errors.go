// internal/domain/admin/errors.go
package admin

import "errors"

// LoginPath is where unauthenticated admins are sent
const LoginPath = "/admin/login"

var (
	ErrUnauthenticated      = errors.New("admin login required")
	ErrInvalidCredentials   = errors.New("invalid email or password")
	ErrInvalidTime          = errors.New("estimated time must be a positive number of minutes")
	ErrInvalidStatus        = errors.New("status must be done or canceled")
	ErrOrderClosed          = errors.New("order is already done or canceled")
	ErrOrderNotFound        = errors.New("order not found")
	ErrConfirmationRequired = errors.New("deletion must be confirmed")
	ErrInvalidMonth         = errors.New("month must be formatted as YYYY-MM")
	ErrInvalidItem          = errors.New("item needs a name, a category and a positive price")
)
