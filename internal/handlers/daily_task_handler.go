package handlers

import (
	"fittrack/internal/middleware"
	"fittrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// DailyTaskHandler serves the checklist routes.
type DailyTaskHandler struct {
	service *services.DailyTaskService
}

// NewDailyTaskHandler creates a new DailyTaskHandler.
func NewDailyTaskHandler(service *services.DailyTaskService) *DailyTaskHandler {
	return &DailyTaskHandler{service: service}
}

// RegisterRoutes registers the daily-task routes. router must be behind AuthRequired.
func (h *DailyTaskHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/daily-tasks")
	routes.Get("/", h.HandleForDate)
	routes.Put("/", h.HandleSet)
	routes.Get("/tasks", h.HandleTasks)
	routes.Get("/summary", h.HandleSummary)
	routes.Delete("/:id", h.HandleDelete)
}

// HandleTasks lists the checklist keys.
func (h *DailyTaskHandler) HandleTasks(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"tasks": h.service.Tasks()})
}

// HandleForDate returns the task states of ?date= (default today).
func (h *DailyTaskHandler) HandleForDate(c *fiber.Ctx) error {
	date := c.Query("date", h.service.Today())
	states, err := h.service.ForDate(c.UserContext(), middleware.UserID(c), date)
	if err != nil {
		return respondError(c, "retrieve daily tasks", err)
	}
	return c.JSON(fiber.Map{
		"date":  date,
		"tasks": states,
	})
}

// HandleSet stores one checkbox toggle.
func (h *DailyTaskHandler) HandleSet(c *fiber.Ctx) error {
	var draft services.DailyTaskDraft
	if err := c.BodyParser(&draft); err != nil {
		return badBody(c, err)
	}
	entry, err := h.service.Set(c.UserContext(), middleware.UserID(c), draft)
	if err != nil {
		return respondError(c, "save daily task", err)
	}
	return c.JSON(entry)
}

// HandleSummary returns the trailing 7-day table.
func (h *DailyTaskHandler) HandleSummary(c *fiber.Ctx) error {
	summary, err := h.service.Summary(c.UserContext(), middleware.UserID(c))
	if err != nil {
		return respondError(c, "retrieve daily task summary", err)
	}
	return c.JSON(summary)
}

// HandleDelete removes one checklist entry once the client confirms.
func (h *DailyTaskHandler) HandleDelete(c *fiber.Ctx) error {
	if !confirmed(c) {
		return nil
	}
	id := c.Params("id")
	if err := h.service.Delete(c.UserContext(), middleware.UserID(c), id); err != nil {
		return respondError(c, "delete daily task", err)
	}
	return c.JSON(fiber.Map{
		"message": "Entry " + id + " deleted successfully",
	})
}
