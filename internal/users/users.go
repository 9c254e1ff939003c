package users

import (
	"context"
	"errors"
	"time"

	"github.com/i474232898/canilaba/internal/weather"
)

// ErrUserNotFound is returned when no record exists for a user id.
var ErrUserNotFound = errors.New("user not found")

// User holds a chat user's laundry preferences.
type User struct {
	ID          int64                `json:"id"`
	ChatID      int64                `json:"chatId"`
	LaundryDays WeekdaySet           `json:"laundryDays"`
	Coordinates *weather.Coordinates `json:"coordinates,omitempty"`
	CreatedAt   time.Time            `json:"createdAt"`
	UpdatedAt   time.Time            `json:"updatedAt"`
}

// Store is the contract user preference stores must satisfy. Setters create
// the user record when it does not exist yet.
type Store interface {
	CreateUser(ctx context.Context, id, chatID int64) (User, error)
	GetUser(ctx context.Context, id int64) (User, error)
	DeleteUser(ctx context.Context, id int64) error
	ListUsers(ctx context.Context) ([]User, error)

	GetLaundryDays(ctx context.Context, id int64) (WeekdaySet, error)
	SetLaundryDays(ctx context.Context, id int64, days WeekdaySet) error
	GetCoordinates(ctx context.Context, id int64) (*weather.Coordinates, error)
	SetCoordinates(ctx context.Context, id int64, coords weather.Coordinates) error
}
