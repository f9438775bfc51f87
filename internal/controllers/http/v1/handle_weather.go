package http

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"plantcare-api/internal/services/companion"
)

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error string `json:"error" example:"Missing required parameter: lat"`
}

// parseCoordinates validates the lat/lon query parameters.
func parseCoordinates(c *fiber.Ctx) (lat, lon float64, errResp *ErrorResponse) {
	latStr := c.Query("lat")
	lonStr := c.Query("lon")

	if latStr == "" {
		return 0, 0, &ErrorResponse{Error: "Missing required parameter: lat"}
	}
	if lonStr == "" {
		return 0, 0, &ErrorResponse{Error: "Missing required parameter: lon"}
	}

	lat, err := strconv.ParseFloat(latStr, 64)
	if err != nil {
		return 0, 0, &ErrorResponse{Error: "Invalid latitude format"}
	}
	if lat < -90 || lat > 90 {
		return 0, 0, &ErrorResponse{Error: "Latitude must be between -90 and 90"}
	}

	lon, err = strconv.ParseFloat(lonStr, 64)
	if err != nil {
		return 0, 0, &ErrorResponse{Error: "Invalid longitude format"}
	}
	if lon < -180 || lon > 180 {
		return 0, 0, &ErrorResponse{Error: "Longitude must be between -180 and 180"}
	}

	return lat, lon, nil
}

// GetWeather godoc
// @Summary Get weather snapshot
// @Description Returns cached current weather and daily forecast for a coordinate
// @Tags Weather
// @Produce json
// @Param lat query number true "Latitude coordinate (-90 to 90)" example(40.7128)
// @Param lon query number true "Longitude coordinate (-180 to 180)" example(-74.006)
// @Param days query integer false "Number of forecast days (1-7, default: 5)" example(3)
// @Success 200 {object} models.WeatherSnapshot "Successful response"
// @Failure 400 {object} ErrorResponse "Bad request - invalid parameters"
// @Failure 502 {object} ErrorResponse "Weather providers unavailable"
// @Router /weather [get]
func (r *routes) handleWeatherCall(c *fiber.Ctx) error {
	const defaultForecastWindow = 5
	const maxForecastWindow = 7

	lat, lon, errResp := parseCoordinates(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	forecastWindow := defaultForecastWindow
	if window := c.Query("days"); window != "" {
		if days, err := strconv.Atoi(window); err == nil && days > 0 && days <= maxForecastWindow {
			forecastWindow = days
		} else {
			r.l.Warning("invalid days parameter, using default", map[string]any{
				"provided": window,
				"default":  forecastWindow,
			})
		}
	}

	snapshot, err := r.weather.Snapshot(c.Context(), lat, lon, forecastWindow)
	if err != nil {
		r.l.Error(err, map[string]any{
			"lat":            lat,
			"lon":            lon,
			"forecastWindow": forecastWindow,
		})

		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{
			Error: "Weather data unavailable",
		})
	}

	return c.JSON(snapshot)
}

// GetCompanions godoc
// @Summary Companion-planting advice
// @Description Lists good and bad planting neighbors for a species
// @Tags Plants
// @Produce json
// @Param species query string true "Plant species" example(tomato)
// @Success 200 {object} companion.Advice "Successful response"
// @Failure 400 {object} ErrorResponse "Missing species"
// @Failure 404 {object} ErrorResponse "Unknown species"
// @Router /companions [get]
func (r *routes) handleCompanions(c *fiber.Ctx) error {
	species := c.Query("species")
	if species == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error: "Missing required parameter: species",
		})
	}

	advice, found := companion.Lookup(species)
	if !found {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Unknown species",
			"known": companion.Species(),
		})
	}

	return c.JSON(advice)
}
