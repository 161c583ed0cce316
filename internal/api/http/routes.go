package httpapi

import (
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecast/internal/recorder"
	"github.com/i474232898/weather-forecast/internal/store"
	"github.com/i474232898/weather-forecast/internal/weather"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app. history may be nil.
func RegisterRoutes(app *fiber.App, service *weather.Service, history recorder.Recorder) {
	v1 := app.Group("/api/v1")

	// Runs a fetch cycle for the requested location.
	v1.Get("/weather", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.Fetch(c.UserContext(), locReq.toLocation())
		if err != nil {
			return fetchError(err)
		}
		return c.JSON(newReportView(report))
	})

	v1.Get("/weather/latest", func(c *fiber.Ctx) error {
		locReq, err := parseLocationQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.GetLatest(locReq.toLocation())
		if err != nil {
			switch {
			case errors.Is(err, store.ErrNotFound):
				return fiber.NewError(fiber.StatusNotFound, "no weather data for requested location")
			case errors.Is(err, store.ErrFetchFailed):
				return fiber.NewError(fiber.StatusBadGateway, err.Error())
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to load weather data")
		}
		return c.JSON(newReportView(report))
	})

	v1.Get("/weather/forecast", func(c *fiber.Ctx) error {
		var req forecastQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		report, err := service.ForecastDays(c.UserContext(), req.Location.toLocation(), req.Days)
		if err != nil {
			return fetchError(err)
		}
		view := newReportView(report)
		return c.JSON(fiber.Map{
			"location": view.Location,
			"days":     req.Days,
			"daily":    view.Daily,
		})
	})

	v1.Get("/weather/history", func(c *fiber.Ctx) error {
		var req historyQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		loc := req.Location.toLocation()
		reports, err := service.GetRange(loc, req.From, req.To)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no weather history for requested range")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather history")
		}

		views := make([]reportView, 0, len(reports))
		for _, r := range reports {
			views = append(views, newReportView(r))
		}
		return c.JSON(fiber.Map{
			"location": loc,
			"from":     req.From,
			"to":       req.To,
			"reports":  views,
		})
	})

	if history != nil {
		v1.Get("/cycles", func(c *fiber.Ctx) error {
			limit := c.QueryInt("limit", 50)
			if limit < 1 || limit > 500 {
				return fiber.NewError(fiber.StatusBadRequest, "limit must be between 1 and 500")
			}
			rows, err := history.ListCycles(c.UserContext(), limit)
			if err != nil {
				return fiber.NewError(fiber.StatusInternalServerError, "failed to list fetch cycles")
			}
			return c.JSON(fiber.Map{"cycles": rows})
		})
	}
}

// fetchError maps a fetch cycle error to an HTTP error.
func fetchError(err error) error {
	switch {
	case errors.Is(err, weather.ErrSuperseded):
		return fiber.NewError(fiber.StatusConflict, "request superseded by a newer request for the same location")
	case errors.Is(err, weather.ErrNetworkFailure):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	case errors.Is(err, weather.ErrNoProvider):
		return fiber.NewError(fiber.StatusServiceUnavailable, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to fetch weather data")
	}
}

// locationQuery holds query parameters for identifying a location.
type locationQuery struct {
	City    string `validate:"required,max=100"`
	Country string `validate:"omitempty,max=56"`
}

func (l locationQuery) toLocation() weather.Location {
	return weather.Location{
		City:    l.City,
		Country: l.Country,
	}
}

func parseLocationQuery(c *fiber.Ctx) (locationQuery, error) {
	var q locationQuery

	q.City = strings.TrimSpace(c.Query("city"))
	q.Country = strings.TrimSpace(c.Query("country"))

	if err := validate.Struct(q); err != nil {
		return q, err
	}

	return q, nil
}

// forecastQuery holds query parameters for the forecast endpoint.
type forecastQuery struct {
	Location locationQuery
	Days     int `validate:"required,min=1,max=5"`
}

func (f *forecastQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	f.Location = loc

	daysStr := c.Query("days")
	if daysStr == "" {
		return errors.New("days query parameter is required")
	}
	days, err := strconv.Atoi(daysStr)
	if err != nil {
		return errors.New("days must be an integer")
	}
	f.Days = days
	return nil
}

// historyQuery holds query parameters for the history endpoint.
type historyQuery struct {
	Location locationQuery
	From     time.Time `validate:"required"`
	To       time.Time `validate:"required,gtefield=From"`
}

func (h *historyQuery) bind(c *fiber.Ctx) error {
	loc, err := parseLocationQuery(c)
	if err != nil {
		return err
	}
	h.Location = loc

	fromStr := c.Query("from")
	toStr := c.Query("to")
	if fromStr == "" || toStr == "" {
		return errors.New("from and to query parameters are required")
	}

	from, err := parseTime(fromStr)
	if err != nil {
		return err
	}
	to, err := parseTime(toStr)
	if err != nil {
		return err
	}

	h.From = from
	h.To = to
	return nil
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
