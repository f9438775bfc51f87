package http

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/pkg/errors"

	"plantcare-api/internal/models"
	"plantcare-api/internal/services/rules"
	"plantcare-api/internal/storage"
)

type createGardenRequest struct {
	Name      string   `json:"name"`
	City      string   `json:"city"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
}

type createPlantRequest struct {
	Name    string `json:"name"`
	Species string `json:"species"`
}

// GardenAdviceResponse summarizes the evaluator's verdicts for a garden.
type GardenAdviceResponse struct {
	GardenID     uint   `json:"garden_id"`
	FrostRisk    bool   `json:"frost_risk"`
	FrostDate    string `json:"frost_date,omitempty"`
	Heatwave     bool   `json:"heatwave"`
	SkipWatering bool   `json:"skip_watering"`
	WateringNote string `json:"watering_note,omitempty"`
}

func parseIDParam(c *fiber.Ctx) (uint, *ErrorResponse) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 32)
	if err != nil || id == 0 {
		return 0, &ErrorResponse{Error: "Invalid id"}
	}
	return uint(id), nil
}

// CreateGarden godoc
// @Summary Create a garden
// @Tags Gardens
// @Accept json
// @Produce json
// @Param garden body createGardenRequest true "Garden"
// @Success 201 {object} models.Garden
// @Failure 400 {object} ErrorResponse
// @Router /gardens [post]
func (r *routes) handleCreateGarden(c *fiber.Ctx) error {
	var req createGardenRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Missing required field: name"})
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Latitude and longitude must be set together"})
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Latitude must be between -90 and 90"})
	}
	if req.Longitude != nil && (*req.Longitude < -180 || *req.Longitude > 180) {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Longitude must be between -180 and 180"})
	}

	garden := &models.Garden{
		Name:      req.Name,
		City:      req.City,
		Latitude:  req.Latitude,
		Longitude: req.Longitude,
	}
	if err := r.store.CreateGarden(garden); err != nil {
		r.l.Error(err, map[string]any{"garden": req.Name})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to create garden"})
	}

	return c.Status(fiber.StatusCreated).JSON(garden)
}

// GetGarden godoc
// @Summary Get a garden with its plants
// @Tags Gardens
// @Produce json
// @Param id path integer true "Garden ID"
// @Success 200 {object} models.Garden
// @Failure 404 {object} ErrorResponse
// @Router /gardens/{id} [get]
func (r *routes) handleGetGarden(c *fiber.Ctx) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	garden, err := r.store.GetGarden(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Garden not found"})
		}
		r.l.Error(err, map[string]any{"garden": id})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to load garden"})
	}

	return c.JSON(garden)
}

// GardenAdvice godoc
// @Summary Weather-derived care advice for a garden
// @Description Evaluates frost, heatwave and watering-skip rules over the garden's cached weather
// @Tags Gardens
// @Produce json
// @Param id path integer true "Garden ID"
// @Success 200 {object} GardenAdviceResponse
// @Failure 404 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse "Garden has no location"
// @Failure 502 {object} ErrorResponse "Weather providers unavailable"
// @Router /gardens/{id}/advice [get]
func (r *routes) handleGardenAdvice(c *fiber.Ctx) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	garden, err := r.store.GetGarden(id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Garden not found"})
		}
		r.l.Error(err, map[string]any{"garden": id})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to load garden"})
	}
	if !garden.HasLocation() {
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{Error: "Garden has no location"})
	}

	snapshot, err := r.weather.Snapshot(c.Context(), *garden.Latitude, *garden.Longitude, 7)
	if err != nil {
		r.l.Error(err, map[string]any{"garden": id})
		return c.Status(fiber.StatusBadGateway).JSON(ErrorResponse{Error: "Weather data unavailable"})
	}

	response := GardenAdviceResponse{GardenID: garden.ID}

	if date, ok := rules.FrostRiskDate(snapshot.Forecast); ok {
		response.FrostRisk = true
		response.FrostDate = date.Format("2006-01-02")
	}
	response.Heatwave = rules.HasHeatwave(snapshot.Forecast)

	today := models.ForecastForDate(snapshot.Forecast, time.Now())
	response.SkipWatering, response.WateringNote = rules.ShouldSkipWatering(snapshot.Current, today)

	return c.JSON(response)
}

// CreatePlant godoc
// @Summary Add a plant to a garden
// @Tags Plants
// @Accept json
// @Produce json
// @Param id path integer true "Garden ID"
// @Param plant body createPlantRequest true "Plant"
// @Success 201 {object} models.GardenPlant
// @Failure 404 {object} ErrorResponse
// @Router /gardens/{id}/plants [post]
func (r *routes) handleCreatePlant(c *fiber.Ctx) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	var req createPlantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: "Missing required field: name"})
	}

	plant := &models.GardenPlant{
		GardenID: id,
		Name:     req.Name,
		Species:  req.Species,
	}
	if err := r.store.CreatePlant(plant); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Garden not found"})
		}
		r.l.Error(err, map[string]any{"garden": id, "plant": req.Name})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to create plant"})
	}

	return c.Status(fiber.StatusCreated).JSON(plant)
}

// DeletePlant godoc
// @Summary Delete a plant and its reminders
// @Tags Plants
// @Param id path integer true "Plant ID"
// @Success 204 "Deleted"
// @Failure 404 {object} ErrorResponse
// @Router /plants/{id} [delete]
func (r *routes) handleDeletePlant(c *fiber.Ctx) error {
	id, errResp := parseIDParam(c)
	if errResp != nil {
		return c.Status(fiber.StatusBadRequest).JSON(errResp)
	}

	if err := r.store.DeletePlant(id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{Error: "Plant not found"})
		}
		r.l.Error(err, map[string]any{"plant": id})
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{Error: "Failed to delete plant"})
	}

	return c.SendStatus(fiber.StatusNoContent)
}
