package httpapi

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/canilaba/internal/users"
	"github.com/i474232898/canilaba/internal/weather"
)

var validate = validator.New()

// Forecaster answers the laundry questions for a location.
type Forecaster interface {
	Now(ctx context.Context, coords weather.Coordinates, ref time.Time) (weather.NowResult, error)
	Today(ctx context.Context, coords weather.Coordinates, today time.Time) (weather.TodayResult, error)
}

// Deps are the services the HTTP handlers use.
type Deps struct {
	Forecaster Forecaster
	Users      users.Store
	// Location is the zone "now" and "today" are taken in.
	Location *time.Location
	Now      func() time.Time
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, deps Deps) {
	if deps.Location == nil {
		deps.Location = time.UTC
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}

	v1 := app.Group("/api/v1")

	v1.Get("/laundry/now", func(c *fiber.Ctx) error {
		q, err := parseForecastQuery(c, deps)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := deps.Forecaster.Now(c.UserContext(), q.Coordinates, q.At)
		if err != nil {
			return forecastError(err)
		}
		return c.JSON(res)
	})

	v1.Get("/laundry/today", func(c *fiber.Ctx) error {
		q, err := parseForecastQuery(c, deps)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := deps.Forecaster.Today(c.UserContext(), q.Coordinates, q.At)
		if err != nil {
			return forecastError(err)
		}
		return c.JSON(res)
	})

	v1.Get("/users/:id", func(c *fiber.Ctx) error {
		id, err := userID(c)
		if err != nil {
			return err
		}

		u, err := deps.Users.GetUser(c.UserContext(), id)
		if err != nil {
			return userError(err)
		}
		return c.JSON(u)
	})

	v1.Put("/users/:id/days", func(c *fiber.Ctx) error {
		id, err := userID(c)
		if err != nil {
			return err
		}

		var body struct {
			Days *users.WeekdaySet `json:"days"`
		}
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid days: "+err.Error())
		}
		if body.Days == nil {
			return fiber.NewError(fiber.StatusBadRequest, "days is required")
		}

		if err := deps.Users.SetLaundryDays(c.UserContext(), id, *body.Days); err != nil {
			return userError(err)
		}
		return respondUser(c, deps.Users, id)
	})

	v1.Put("/users/:id/location", func(c *fiber.Ctx) error {
		id, err := userID(c)
		if err != nil {
			return err
		}

		var body locationBody
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid location: "+err.Error())
		}
		if err := validate.Struct(body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		coords := weather.Coordinates{Longitude: *body.Longitude, Latitude: *body.Latitude}
		if err := deps.Users.SetCoordinates(c.UserContext(), id, coords); err != nil {
			return userError(err)
		}
		return respondUser(c, deps.Users, id)
	})

	v1.Delete("/users/:id", func(c *fiber.Ctx) error {
		id, err := userID(c)
		if err != nil {
			return err
		}

		if _, err := deps.Users.GetUser(c.UserContext(), id); err != nil {
			return userError(err)
		}
		if err := deps.Users.DeleteUser(c.UserContext(), id); err != nil {
			return userError(err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// forecastQuery holds query parameters for the laundry endpoints.
type forecastQuery struct {
	Coordinates weather.Coordinates
	At          time.Time
}

func parseForecastQuery(c *fiber.Ctx, deps Deps) (forecastQuery, error) {
	var q forecastQuery

	latStr, lonStr := c.Query("lat"), c.Query("lon")
	if latStr == "" || lonStr == "" {
		return q, errors.New("lat and lon query parameters are required")
	}
	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return q, errors.New("lat must be a number")
	}
	lon, err := strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return q, errors.New("lon must be a number")
	}
	q.Coordinates = weather.Coordinates{Longitude: lon, Latitude: lat}
	if err := validate.Struct(q.Coordinates); err != nil {
		return q, err
	}

	q.At = deps.Now().In(deps.Location)
	if at := c.Query("at"); at != "" {
		ts, err := parseTime(at)
		if err != nil {
			return q, err
		}
		q.At = ts.In(deps.Location)
	}
	return q, nil
}

type locationBody struct {
	Longitude *float64 `json:"longitude" validate:"required,longitude"`
	Latitude  *float64 `json:"latitude" validate:"required,latitude"`
}

func userID(c *fiber.Ctx) (int64, error) {
	id, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	return id, nil
}

func respondUser(c *fiber.Ctx, store users.Store, id int64) error {
	u, err := store.GetUser(c.UserContext(), id)
	if err != nil {
		return userError(err)
	}
	return c.JSON(u)
}

func forecastError(err error) error {
	switch {
	case errors.Is(err, weather.ErrTimeNotFound), errors.Is(err, weather.ErrSeriesMisaligned):
		return fiber.NewError(fiber.StatusConflict, "forecast not ready for the requested time")
	case errors.Is(err, weather.ErrSourceUnavailable):
		return fiber.NewError(fiber.StatusBadGateway, "weather source unavailable")
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to evaluate forecast")
	}
}

func userError(err error) error {
	if errors.Is(err, users.ErrUserNotFound) {
		return fiber.NewError(fiber.StatusNotFound, "user not found")
	}
	return fiber.NewError(fiber.StatusInternalServerError, "failed to access user settings")
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
