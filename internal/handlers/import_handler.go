package handlers

import (
	"bytes"
	"io"

	"fittrack/internal/middleware"
	"fittrack/internal/services"

	"github.com/gofiber/fiber/v2"
)

// ImportHandler accepts CSV uploads of steps and weights.
type ImportHandler struct {
	service *services.ImportService
}

// NewImportHandler creates a new ImportHandler.
func NewImportHandler(service *services.ImportService) *ImportHandler {
	return &ImportHandler{service: service}
}

// RegisterRoutes registers the import routes. router must be behind AuthRequired.
func (h *ImportHandler) RegisterRoutes(router fiber.Router) {
	routes := router.Group("/import")
	routes.Get("/", h.HandleKinds)
	routes.Post("/:kind", h.HandleImport)
}

// HandleKinds lists what can be imported.
func (h *ImportHandler) HandleKinds(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"kinds": h.service.Kinds()})
}

// HandleImport reads the CSV from a multipart "file" field or, failing that,
// from the raw request body.
func (h *ImportHandler) HandleImport(c *fiber.Ctx) error {
	var src io.Reader
	if fh, err := c.FormFile("file"); err == nil {
		f, err := fh.Open()
		if err != nil {
			return badBody(c, err)
		}
		defer f.Close()
		src = f
	} else {
		src = bytes.NewReader(c.Body())
	}

	result, err := h.service.ImportCSV(c.UserContext(), middleware.UserID(c), c.Params("kind"), src)
	if err != nil {
		return respondError(c, "import CSV", err)
	}
	return c.JSON(result)
}
