package auth

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"usercalc/internal/users"
)

// Handler exposes registration and login endpoints.
type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Age      int    `json:"age"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Register handles POST /api/auth/register.
func (h *Handler) Register(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	u, err := h.svc.Register(c.Context(), req.Name, req.Email, req.Age, req.Password)
	if err != nil {
		return mapAuthError(err)
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

// Login handles POST /api/auth/login.
func (h *Handler) Login(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	token, err := h.svc.Authenticate(c.Context(), req.Email, req.Password)
	if err != nil {
		return mapAuthError(err)
	}
	return c.JSON(fiber.Map{"token": token})
}

func mapAuthError(err error) error {
	switch {
	case errors.Is(err, users.ErrInvalid), errors.Is(err, users.ErrEmailTaken):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, ErrInvalidCredentials):
		return fiber.NewError(fiber.StatusUnauthorized, err.Error())
	}
	return err
}
