package users

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Handler exposes the CRUD surface over the user service.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type createRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
}

type updateRequest struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Age   *int    `json:"age"`
}

// List handles GET /api/users.
func (h *Handler) List(c *fiber.Ctx) error {
	list, err := h.svc.List(c.Context())
	if err != nil {
		return err
	}
	return c.JSON(list)
}

// Get handles GET /api/users/:id.
func (h *Handler) Get(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	u, err := h.svc.GetByID(c.Context(), int64(id))
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(u)
}

// Create handles POST /api/users.
func (h *Handler) Create(c *fiber.Ctx) error {
	var req createRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Create(c.Context(), CreateParams{Name: req.Name, Email: req.Email, Age: req.Age})
	if err != nil {
		return mapServiceError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// Update handles PUT /api/users/:id. Only fields present in the body
// are touched.
func (h *Handler) Update(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	var req updateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Update(c.Context(), int64(id), UpdateParams{Name: req.Name, Email: req.Email, Age: req.Age})
	if err != nil {
		return mapServiceError(err)
	}
	return c.JSON(u)
}

// Delete handles DELETE /api/users/:id.
func (h *Handler) Delete(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid user id")
	}
	if err := h.svc.Delete(c.Context(), int64(id)); err != nil {
		return mapServiceError(err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func mapServiceError(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, ErrEmailTaken), errors.Is(err, ErrInvalid):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	return err
}
