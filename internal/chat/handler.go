package chat

import (
	"strings"
	"time"

	"gastro-backend/internal/auth"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type ContextSource interface {
	Context(locationID *uint) (BusinessContext, error)
}

type Message struct {
	Message        string `json:"message"`
	ConversationID string `json:"conversation_id"`
}

type Response struct {
	Response       string    `json:"response"`
	ConversationID string    `json:"conversation_id"`
	Timestamp      time.Time `json:"timestamp"`
}

// POST /api/chat
func ChatHandler(source ContextSource, assistant *Assistant) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var body Message
		if err := c.BodyParser(&body); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
		}
		body.Message = strings.TrimSpace(body.Message)
		if body.Message == "" {
			return fiber.NewError(fiber.StatusBadRequest, "message is required")
		}

		bc, err := source.Context(auth.CurrentLocationID(c))
		if err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "could not load business context")
		}

		id := body.ConversationID
		if id == "" {
			id = uuid.NewString()
		}
		return c.JSON(Response{
			Response:       assistant.Reply(c.Context(), body.Message, bc),
			ConversationID: id,
			Timestamp:      time.Now().UTC(),
		})
	}
}
