package server

import (
	"errors"

	"dishswap/internal/middleware"
	"dishswap/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// errResponseWritten is a sentinel indicating the HTTP response was already
// committed by a helper. Handlers must return nil (not this error) to avoid
// Fiber's ErrorHandler overwriting the response.
var errResponseWritten = errors.New("response already written")

// Pagination holds parsed limit/offset query parameters.
type Pagination struct {
	Limit  int
	Offset int
}

const (
	defaultPaginationLimit = 20
	maxPaginationLimit     = 100
	// maxPaginationOffset keeps page*limit far from int overflow.
	maxPaginationOffset = 1_000_000
)

// parsePagination reads limit, offset and the 1-based page, which overrides offset.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	limit := c.QueryInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}
	if limit > maxPaginationLimit {
		limit = maxPaginationLimit
	}

	offset := c.QueryInt("offset", 0)
	if offset < 0 {
		offset = 0
	}
	if page := c.QueryInt("page", 0); page > 0 {
		if page > maxPaginationOffset/limit+1 {
			page = maxPaginationOffset/limit + 1
		}
		offset = (page - 1) * limit
	}
	if offset > maxPaginationOffset {
		offset = maxPaginationOffset
	}

	return Pagination{
		Limit:  limit,
		Offset: offset,
	}
}

// parseID validates a UUID taken from a route parameter or query value.
// On failure it writes a 400 JSON response and returns errResponseWritten.
// Callers should check: if err != nil { return nil }
func parseID(c *fiber.Ctx, raw, label string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+label+" ID"))
		return "", errResponseWritten
	}
	return id.String(), nil
}

// mapServiceError maps a service error to its HTTP status.
func mapServiceError(err error) int {
	return models.StatusFor(err)
}

// respondServiceError writes err in the error envelope and logs server-side failures.
func respondServiceError(c *fiber.Ctx, err error) error {
	status := mapServiceError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed", "error", err, "path", c.Path())
	}
	return models.RespondWithError(c, status, err)
}

func respondData(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(models.Envelope{Success: true, Data: data})
}

func respondPage[T any](c *fiber.Ctx, page models.Page[T], p Pagination) error {
	items := page.Items
	if items == nil {
		items = []T{}
	}
	return c.JSON(models.Envelope{
		Success: true,
		Data:    items,
		Meta: &models.PageMeta{
			Total:  page.Total,
			Limit:  p.Limit,
			Offset: p.Offset,
		},
	})
}
