package calculator

import (
	"fmt"
	"strconv"

	"github.com/Knetic/govaluate"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"usercalc/internal/auth"
	"usercalc/internal/models"
)

const (
	historyDefaultLimit = 50
	historyMaxLimit     = 200
)

// Handler exposes the calculator endpoints. All of them require an
// authenticated caller and persist the invocation as history.
type Handler struct {
	db  *gorm.DB
	log *zap.Logger
}

func NewHandler(db *gorm.DB, log *zap.Logger) *Handler {
	return &Handler{db: db, log: log}
}

type calculateRequest struct {
	Operation string  `json:"operation"`
	A         float64 `json:"a"`
	B         float64 `json:"b"`
}

type evaluateRequest struct {
	Expression string `json:"expression"`
}

type resultResponse struct {
	Result string `json:"result"`
}

// Calculate handles POST /api/calculate: one of the four basic
// operations applied to two operands.
func (h *Handler) Calculate(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var req calculateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	op, err := ParseOperation(req.Operation)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	var eng Engine
	result, err := eng.Apply(op, req.A, req.B)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	resultStr := formatResult(result)
	expr := fmt.Sprintf("%v %s %v", req.A, op.Symbol(), req.B)
	if err := h.save(c, userID, expr, resultStr); err != nil {
		return err
	}
	return c.JSON(resultResponse{Result: resultStr})
}

// Evaluate handles POST /api/evaluate: a full arithmetic expression
// evaluated with govaluate.
func (h *Handler) Evaluate(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	var req evaluateRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}

	expression, err := govaluate.NewEvaluableExpression(req.Expression)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid expression")
	}
	result, err := expression.Evaluate(nil)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "evaluation error")
	}

	resultStr := fmt.Sprintf("%v", result)
	if err := h.save(c, userID, req.Expression, resultStr); err != nil {
		return err
	}
	return c.JSON(resultResponse{Result: resultStr})
}

// History handles GET /api/history: the caller's calculations, newest
// first. The limit query parameter is clamped to a sane range.
func (h *Handler) History(c *fiber.Ctx) error {
	userID, ok := auth.UserID(c)
	if !ok {
		return fiber.ErrUnauthorized
	}
	limit := c.QueryInt("limit", historyDefaultLimit)
	if limit <= 0 || limit > historyMaxLimit {
		limit = historyDefaultLimit
	}

	var rows []models.Calculation
	err := h.db.WithContext(c.Context()).
		Where("user_id = ?", userID).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return err
	}
	return c.JSON(rows)
}

func (h *Handler) save(c *fiber.Ctx, userID int64, expression, result string) error {
	calc := models.Calculation{
		PublicID:   uuid.NewString(),
		UserID:     userID,
		Expression: expression,
		Result:     result,
	}
	if err := h.db.WithContext(c.Context()).Create(&calc).Error; err != nil {
		h.log.Error("failed to save calculation", zap.Int64("user_id", userID), zap.Error(err))
		return fiber.NewError(fiber.StatusInternalServerError, "failed to save calculation")
	}
	return nil
}

// formatResult renders a float the shortest way that round-trips, so
// integral results serialize without a trailing ".0".
func formatResult(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
