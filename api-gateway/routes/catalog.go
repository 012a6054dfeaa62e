package routes

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/esouk/onboarding/internal/catalog"
	"github.com/esouk/onboarding/pkg/backend"
	"github.com/esouk/onboarding/pkg/logger"
	"github.com/esouk/onboarding/pkg/validation"
)

// CatalogHandler serves the public product and shop listings
type CatalogHandler struct {
	service *catalog.Service
}

func NewCatalogHandler(service *catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// SearchProducts handles GET /api/catalog/products
func (h *CatalogHandler) SearchProducts(c *fiber.Ctx) error {
	var filters catalog.ProductFilters
	if err := c.QueryParser(&filters); err != nil {
		return badQuery(c, err)
	}

	page, err := h.service.SearchProducts(c.UserContext(), filters)
	if err != nil {
		return respondCatalogError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": page})
}

// SearchShops handles GET /api/catalog/shops
func (h *CatalogHandler) SearchShops(c *fiber.Ctx) error {
	var filters catalog.ShopFilters
	if err := c.QueryParser(&filters); err != nil {
		return badQuery(c, err)
	}

	page, err := h.service.SearchShops(c.UserContext(), filters)
	if err != nil {
		return respondCatalogError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "data": page})
}

func badQuery(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"success": false,
		"error":   "Invalid query parameters",
		"details": err.Error(),
	})
}

func respondCatalogError(c *fiber.Ctx, err error) error {
	if errors.Is(err, catalog.ErrInvalidFilters) {
		var fields validation.FieldErrors
		errors.As(err, &fields)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"success": false,
			"error":   "Invalid filters",
			"fields":  fields,
		})
	}

	if apiErr, ok := backend.AsAPIError(err); ok {
		status := apiErr.Status
		if status == 0 {
			status = fiber.StatusBadGateway
		}
		return c.Status(status).JSON(fiber.Map{"success": false, "error": apiErr.Message})
	}

	logger.Error(c.UserContext()).Err(err).Str("path", c.Path()).Msg("Catalog listing failed")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"success": false,
		"error":   "Internal server error. Please try again later.",
	})
}
