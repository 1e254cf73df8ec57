package handlers

import (
	"fittrack/internal/middleware"
	"fittrack/internal/models"
	"fittrack/internal/repositories"
	"fittrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// EntryHandler serves the list/create/update/delete routes of one entry kind.
type EntryHandler[T models.Entry, D services.Draft[T]] struct {
	service *services.EntryService[T, D]
}

// NewEntryHandler creates a handler mounted at "/<kind>".
func NewEntryHandler[T models.Entry, D services.Draft[T]](service *services.EntryService[T, D]) *EntryHandler[T, D] {
	return &EntryHandler[T, D]{service: service}
}

func NewStepHandler(s *services.StepService) *EntryHandler[models.StepEntry, services.StepDraft] {
	return NewEntryHandler(s)
}

func NewWeightHandler(s *services.WeightService) *EntryHandler[models.WeightEntry, services.WeightDraft] {
	return NewEntryHandler(s)
}

func NewWorkoutHandler(s *services.WorkoutService) *EntryHandler[models.WorkoutEntry, services.WorkoutDraft] {
	return NewEntryHandler(s)
}

// RegisterRoutes registers the entry routes. router must be behind AuthRequired.
func (h *EntryHandler[T, D]) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/" + h.service.Kind())
	routes.Get("/", h.HandleList)
	routes.Get("/:id", h.HandleGet)
	routes.Post("/", h.HandleCreate)
	routes.Put("/:id", h.HandleUpdate)
	routes.Delete("/:id", h.HandleDelete)
}

// HandleList returns the user's entries, newest first, optionally limited by ?from= and ?to=.
func (h *EntryHandler[T, D]) HandleList(c *fiber.Ctx) error {
	filter := repositories.ListFilter{From: c.Query("from"), To: c.Query("to")}
	entries, err := h.service.List(c.UserContext(), middleware.UserID(c), filter)
	if err != nil {
		return respondError(c, "retrieve "+h.service.Kind(), err)
	}
	return c.JSON(entries)
}

// HandleGet returns a single entry.
func (h *EntryHandler[T, D]) HandleGet(c *fiber.Ctx) error {
	entry, err := h.service.Get(c.UserContext(), middleware.UserID(c), c.Params("id"))
	if err != nil {
		return respondError(c, "retrieve entry", err)
	}
	return c.JSON(entry)
}

// HandleCreate inserts a new entry from the submitted form.
func (h *EntryHandler[T, D]) HandleCreate(c *fiber.Ctx) error {
	var draft D
	if err := c.BodyParser(&draft); err != nil {
		return badBody(c, err)
	}
	entry, err := h.service.Create(c.UserContext(), middleware.UserID(c), draft)
	if err != nil {
		return respondError(c, "create entry", err)
	}
	return c.Status(fiber.StatusCreated).JSON(entry)
}

// HandleUpdate replaces the entry named in the path with the submitted form.
func (h *EntryHandler[T, D]) HandleUpdate(c *fiber.Ctx) error {
	var draft D
	if err := c.BodyParser(&draft); err != nil {
		return badBody(c, err)
	}
	entry, err := h.service.Update(c.UserContext(), middleware.UserID(c), c.Params("id"), draft)
	if err != nil {
		return respondError(c, "update entry", err)
	}
	return c.JSON(entry)
}

// HandleDelete removes an entry once the client confirms.
func (h *EntryHandler[T, D]) HandleDelete(c *fiber.Ctx) error {
	if !confirmed(c) {
		return nil
	}
	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, "delete entry", err)
	}
	return c.JSON(fiber.Map{
		"message": "Entry " + id + " deleted successfully",
	})
}
