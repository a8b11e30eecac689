package handlers

import (
	"errors"
	"log"

	"clipvault/internal/services"

	"github.com/gofiber/fiber/v2"
)

// EntryHandler handles HTTP requests for entries. All routes require an
// authenticated user; the owner is always taken from the request locals,
// never from the body.
type EntryHandler struct {
	service *services.EntryService
}

// NewEntryHandler creates a new EntryHandler.
func NewEntryHandler(service *services.EntryService) *EntryHandler {
	return &EntryHandler{
		service: service,
	}
}

// RegisterRoutes registers the entry routes with the Fiber app.
func (h *EntryHandler) RegisterRoutes(router fiber.Router) {
	entryRoutes := router.Group("/entries")
	entryRoutes.Get("/", h.HandleListEntries)
	entryRoutes.Post("/", h.HandleCreateEntry)
	entryRoutes.Put("/:id", h.HandleUpdateEntry)
	entryRoutes.Delete("/:id", h.HandleDeleteEntry)
}

// EntryRequest represents the request body for entry create and update.
// Omitted fields replace the stored values with empty ones; there are no
// partial updates.
type EntryRequest struct {
	Title string   `json:"title"`
	Label string   `json:"label"`
	Value string   `json:"value"`
	Tags  []string `json:"tags"`
}

// HandleListEntries returns the authenticated user's entries with tags
// expanded to id/name pairs.
func (h *EntryHandler) HandleListEntries(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	entries, err := h.service.ListEntries(userID)
	if err != nil {
		log.Printf("Error listing entries for user %s: %v", userID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve entries",
		})
	}
	return c.JSON(entries)
}

// HandleCreateEntry creates a new entry for the authenticated user. The
// response carries the tag references as bare IDs.
func (h *EntryHandler) HandleCreateEntry(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)

	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create entry request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	entry, err := h.service.CreateEntry(userID, req.Title, req.Label, req.Value, req.Tags)
	if err != nil {
		log.Printf("Entry creation failed: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server Error",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(entry)
}

// HandleUpdateEntry replaces an owned entry's fields. A missing entry and
// somebody else's entry are the same 404 to the caller.
func (h *EntryHandler) HandleUpdateEntry(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	entryID := c.Params("id")

	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing update entry request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	entry, err := h.service.UpdateEntry(userID, entryID, req.Title, req.Label, req.Value, req.Tags)
	if err != nil {
		if errors.Is(err, services.ErrNotFoundOrUnauthorized) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"message": "Entry not found or unauthorized",
			})
		}
		log.Printf("Error updating entry %s: %v", entryID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Server error while updating entry",
		})
	}

	return c.JSON(entry)
}

// HandleDeleteEntry removes an owned entry. It reports success whether or
// not a matching entry existed.
func (h *EntryHandler) HandleDeleteEntry(c *fiber.Ctx) error {
	userID := c.Locals("user_id").(string)
	entryID := c.Params("id")

	if err := h.service.DeleteEntry(userID, entryID); err != nil {
		log.Printf("Error deleting entry %s: %v", entryID, err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not delete entry",
		})
	}

	return c.JSON(fiber.Map{
		"message": "Deleted",
	})
}
