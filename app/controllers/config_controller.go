package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/confcenter/confcenter/app/models"
	"github.com/confcenter/confcenter/app/services"
	"github.com/confcenter/confcenter/internal/pkg/constants"
)

// ConfigController serves the configuration CRUD endpoints
type ConfigController struct {
	configs *services.ConfigService
}

func NewConfigController(configs *services.ConfigService) *ConfigController {
	return &ConfigController{configs: configs}
}

type configRequest struct {
	ServiceName string            `json:"service_name"`
	EnvName     string            `json:"env_name"`
	Data        map[string]string `json:"data"`
}

// HandleCreate stores a new configuration record
func (ctl *ConfigController) HandleCreate(c *fiber.Ctx) error {
	var req configRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "unprocessable_entity",
			"message": "Invalid request body",
		})
	}

	record, err := ctl.configs.Create(req.ServiceName, req.EnvName, models.ConfigData(req.Data))
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Configuration created successfully",
		"id":      record.UUID,
	})
}

// HandleList returns all configuration records up to the service limit
func (ctl *ConfigController) HandleList(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", services.MaxConfigsLimit)

	records, err := ctl.configs.List(limit)
	if err != nil {
		return respondError(c, err)
	}
	if records == nil {
		records = []models.ConfigRecord{}
	}

	return c.JSON(records)
}

// HandleGet returns one configuration record by its public id
func (ctl *ConfigController) HandleGet(c *fiber.Ctx) error {
	record, err := ctl.configs.GetByID(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(record)
}

// HandleSearch returns the record for an exact (service, environment) pair
func (ctl *ConfigController) HandleSearch(c *fiber.Ctx) error {
	record, err := ctl.configs.Search(
		c.Query(constants.QueryServiceName),
		c.Query(constants.QueryEnvName),
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(record)
}

// HandleUpdate replaces a configuration record in full
func (ctl *ConfigController) HandleUpdate(c *fiber.Ctx) error {
	var req configRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
			"error":   "unprocessable_entity",
			"message": "Invalid request body",
		})
	}

	record, err := ctl.configs.Update(c.Params("id"), req.ServiceName, req.EnvName, models.ConfigData(req.Data))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(record)
}

// HandleDelete removes a configuration record
func (ctl *ConfigController) HandleDelete(c *fiber.Ctx) error {
	if err := ctl.configs.Delete(c.Params("id")); err != nil {
		return respondError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// HandleListEnvironments returns the distinct environment names
func (ctl *ConfigController) HandleListEnvironments(c *fiber.Ctx) error {
	envs, err := ctl.configs.ListEnvironments()
	if err != nil {
		return respondError(c, err)
	}
	if envs == nil {
		envs = []string{}
	}

	return c.JSON(fiber.Map{"environments": envs})
}

// HandleListServices returns the distinct service names
func (ctl *ConfigController) HandleListServices(c *fiber.Ctx) error {
	names, err := ctl.configs.ListServices()
	if err != nil {
		return respondError(c, err)
	}
	if names == nil {
		names = []string{}
	}

	return c.JSON(fiber.Map{"services": names})
}
