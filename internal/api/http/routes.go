package httpapi

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-forecasting/internal/forecast"
	"github.com/i474232898/weather-forecasting/internal/weather"
	"github.com/i474232898/weather-forecasting/internal/weather/providers"
)

var validate = validator.New()

// Predictor is the part of weather.Service the routes need.
type Predictor interface {
	Predict(ctx context.Context, q weather.Query) (weather.Prediction, error)
}

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service Predictor) {
	v1 := app.Group("/api/v1")

	v1.Get("/predict", predictHandler(service, false))
	// update retrains and overwrites the cached result
	v1.Get("/update", predictHandler(service, true))
}

func predictHandler(service Predictor, retrain bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req predictQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		q := req.toQuery()
		q.Retrain = retrain

		prediction, err := service.Predict(c.UserContext(), q)
		if err != nil {
			return mapError(err)
		}
		return c.JSON(prediction)
	}
}

// predictQuery holds query parameters for the forecast endpoints. Target is
// checked by the service so unknown names share one error message.
type predictQuery struct {
	City   string   `validate:"omitempty,max=120"`
	Lat    *float64 `validate:"omitempty,gte=-180,lte=180"` // swapped pairs are corrected later
	Lon    *float64 `validate:"omitempty,gte=-180,lte=180"`
	Target string   `validate:"required"`
}

func (p *predictQuery) bind(c *fiber.Ctx) error {
	p.City = strings.TrimSpace(c.Query("city"))
	p.Target = c.Query("target", "temperature_2m")

	var err error
	if p.Lat, err = parseCoordinate(c.Query("lat"), "lat"); err != nil {
		return err
	}
	if p.Lon, err = parseCoordinate(c.Query("lon"), "lon"); err != nil {
		return err
	}
	return nil
}

func (p predictQuery) toQuery() weather.Query {
	return weather.Query{
		City:   p.City,
		Lat:    p.Lat,
		Lon:    p.Lon,
		Target: p.Target,
	}
}

func parseCoordinate(s, name string) (*float64, error) {
	if s == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil, errors.New("invalid " + name + "; expected a decimal number")
	}
	return &v, nil
}

func mapError(err error) error {
	var fetchErr *providers.FetchError
	switch {
	case errors.Is(err, forecast.ErrInvalidTarget), errors.Is(err, weather.ErrMissingLocation),
		errors.Is(err, weather.ErrInvalidCoordinates):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, weather.ErrPlaceNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.As(err, &fetchErr):
		return &UpstreamError{StatusCode: fetchErr.StatusCode, Err: err}
	default:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to compute forecast")
	}
}

// UpstreamError reports that the weather provider could not be reached.
type UpstreamError struct {
	StatusCode int
	Err        error
}

func (e *UpstreamError) Error() string { return "upstream weather provider failed: " + e.Err.Error() }

func (e *UpstreamError) Unwrap() error { return e.Err }

// ErrorHandler renders errors as {"error": true, "message": ...}. Upstream
// failures map to 502 and carry the provider's status when one was received.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	body := fiber.Map{"error": true, "message": err.Error()}

	var fe *fiber.Error
	var ue *UpstreamError
	switch {
	case errors.As(err, &fe):
		code = fe.Code
	case errors.As(err, &ue):
		code = fiber.StatusBadGateway
		if ue.StatusCode != 0 {
			body["upstream_status"] = ue.StatusCode
		}
	}
	return c.Status(code).JSON(body)
}
