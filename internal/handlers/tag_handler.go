package handlers

import (
	"errors"
	"fmt"
	"log"

	"clipvault/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// TagHandler handles HTTP requests for the global tag collection.
type TagHandler struct {
	service  *services.TagService
	validate *validator.Validate
}

// NewTagHandler creates a new TagHandler.
func NewTagHandler(service *services.TagService) *TagHandler {
	return &TagHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the tag routes with the Fiber app.
func (h *TagHandler) RegisterRoutes(router fiber.Router) {
	tagRoutes := router.Group("/tags")
	tagRoutes.Get("/", h.HandleListTags)
	tagRoutes.Post("/", h.HandleCreateTag)
}

// TagRequest represents the request body for tag creation.
type TagRequest struct {
	Name string `json:"name" validate:"required"`
}

// HandleListTags returns every tag in the system.
func (h *TagHandler) HandleListTags(c *fiber.Ctx) error {
	tags, err := h.service.ListTags()
	if err != nil {
		log.Printf("Error listing tags: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not retrieve tags",
		})
	}
	return c.JSON(tags)
}

// HandleCreateTag creates a tag directly. The duplicate check here is an
// exact name match only.
func (h *TagHandler) HandleCreateTag(c *fiber.Ctx) error {
	var req TagRequest
	if err := c.BodyParser(&req); err != nil {
		log.Printf("Error parsing create tag request body: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Invalid request body",
		})
	}

	if err := h.validate.Struct(req); err != nil {
		validationErrors := err.(validator.ValidationErrors)
		errorMessages := make(map[string]string)
		for _, e := range validationErrors {
			errorMessages[e.Field()] = fmt.Sprintf("Field '%s' failed on the '%s' tag", e.Field(), e.Tag())
		}
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Validation failed",
			"errors":  errorMessages,
		})
	}

	tag, err := h.service.CreateTag(req.Name)
	if err != nil {
		if errors.Is(err, services.ErrDuplicateTag) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"message": "Tag already exists",
			})
		}
		log.Printf("Error creating tag: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"message": "Could not create tag",
		})
	}

	return c.Status(fiber.StatusCreated).JSON(tag)
}
