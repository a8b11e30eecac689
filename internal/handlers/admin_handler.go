package handlers

import (
	"errors"
	"fmt"
	"log"

	"clipvault/internal/services"

	"github.com/gofiber/fiber/v2"
)

// AdminHandler handles the destructive admin routes. The caller must
// already have passed both the auth and the admin gate.
type AdminHandler struct {
	service *services.AdminService
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(service *services.AdminService) *AdminHandler {
	return &AdminHandler{
		service: service,
	}
}

// RegisterRoutes registers the admin routes with the Fiber app.
func (h *AdminHandler) RegisterRoutes(router fiber.Router) {
	adminRoutes := router.Group("/admin")
	adminRoutes.Delete("/users", h.HandleDeleteUsers)
	adminRoutes.Delete("/entries", h.HandleDeleteEntries)
	adminRoutes.Delete("/tags", h.HandleDeleteTags)
	adminRoutes.Delete("/drop/:collection", h.HandleDropCollection)
}

// HandleDeleteUsers removes every non-admin account.
func (h *AdminHandler) HandleDeleteUsers(c *fiber.Ctx) error {
	if err := h.service.DeleteNonAdminUsers(); err != nil {
		log.Printf("Error deleting non-admin users: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete users",
		})
	}
	return c.JSON(fiber.Map{
		"message": "All non-admin users deleted",
	})
}

// HandleDeleteEntries removes every entry.
func (h *AdminHandler) HandleDeleteEntries(c *fiber.Ctx) error {
	if err := h.service.DeleteAllEntries(); err != nil {
		log.Printf("Error deleting all entries: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete entries",
		})
	}
	return c.JSON(fiber.Map{
		"message": "All entries deleted",
	})
}

// HandleDeleteTags removes every tag.
func (h *AdminHandler) HandleDeleteTags(c *fiber.Ctx) error {
	if err := h.service.DeleteAllTags(); err != nil {
		log.Printf("Error deleting all tags: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete tags",
		})
	}
	return c.JSON(fiber.Map{
		"message": "All tags deleted",
	})
}

// HandleDropCollection drops one of the enumerated collections. Names
// outside that set are rejected rather than passed to the storage layer.
func (h *AdminHandler) HandleDropCollection(c *fiber.Ctx) error {
	collection := c.Params("collection")

	if err := h.service.DropCollection(collection); err != nil {
		if errors.Is(err, services.ErrUnknownCollection) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": fmt.Sprintf("Unknown collection: %s", collection),
			})
		}
		log.Printf("Error dropping collection %s: %v", collection, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Failed to drop collection",
		})
	}

	return c.JSON(fiber.Map{
		"message": fmt.Sprintf("%s collection dropped", collection),
	})
}
