package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

// ThemeCookie holds the light/dark preference. It has no expiry, so it lasts
// for the browser session only.
const ThemeCookie = "darkMode"

const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// NavLink is one entry of the navigation bar.
type NavLink struct {
	Title string `json:"title"`
	Path  string `json:"path"`
}

// NavLinks is the navigation bar, in display order.
var NavLinks = []NavLink{
	{Title: "Home", Path: "/"},
	{Title: "Steps", Path: "/steps"},
	{Title: "Weights", Path: "/weights"},
	{Title: "Workouts", Path: "/workouts"},
	{Title: "Daily Tasks", Path: "/daily-tasks"},
	{Title: "Import CSV", Path: "/import"},
}

// NavHandler serves the navigation shell: links and the theme toggle.
type NavHandler struct{}

// NewNavHandler creates a new NavHandler.
func NewNavHandler() *NavHandler {
	return &NavHandler{}
}

// RegisterRoutes registers the navigation routes. They need no session.
func (h *NavHandler) RegisterRoutes(router fiber.Router) {
	router.Get("/nav", h.HandleNav)
	router.Post("/theme/toggle", h.HandleToggleTheme)
	router.Put("/theme", h.HandleSetTheme)
}

func currentTheme(c *fiber.Ctx) string {
	if dark, err := strconv.ParseBool(c.Cookies(ThemeCookie)); err == nil && dark {
		return ThemeDark
	}
	return ThemeLight
}

// themeState is what clients apply to the document root.
func themeState(theme string) fiber.Map {
	rootClass := ""
	if theme == ThemeDark {
		rootClass = ThemeDark
	}
	return fiber.Map{"theme": theme, "root_class": rootClass}
}

func setTheme(c *fiber.Ctx, theme string) {
	c.Cookie(&fiber.Cookie{
		Name:        ThemeCookie,
		Value:       strconv.FormatBool(theme == ThemeDark),
		Path:        "/",
		SameSite:    fiber.CookieSameSiteLaxMode,
		SessionOnly: true,
	})
}

// HandleNav returns the navigation links and the current theme.
func (h *NavHandler) HandleNav(c *fiber.Ctx) error {
	state := themeState(currentTheme(c))
	state["links"] = NavLinks
	return c.JSON(state)
}

// HandleToggleTheme flips between light and dark.
func (h *NavHandler) HandleToggleTheme(c *fiber.Ctx) error {
	theme := ThemeDark
	if currentTheme(c) == ThemeDark {
		theme = ThemeLight
	}
	setTheme(c, theme)
	return c.JSON(themeState(theme))
}

// HandleSetTheme sets the theme explicitly from {"theme": "light"|"dark"}.
func (h *NavHandler) HandleSetTheme(c *fiber.Ctx) error {
	var req struct {
		Theme string `json:"theme"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badBody(c, err)
	}
	if req.Theme != ThemeLight && req.Theme != ThemeDark {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"message": "Theme must be light or dark",
		})
	}
	setTheme(c, req.Theme)
	return c.JSON(themeState(req.Theme))
}
