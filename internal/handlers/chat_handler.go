package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fathima-sithara/dm-service/internal/models"
	"github.com/fathima-sithara/dm-service/internal/repository"
)

// ChatHandler serves the read side: history, read-state and aggregation
// queries over the message store. No mutable state of its own.
type ChatHandler struct {
	store repository.MessageStore
	log   *zap.SugaredLogger
}

func NewChatHandler(store repository.MessageStore, log *zap.SugaredLogger) *ChatHandler {
	return &ChatHandler{store: store, log: log}
}

// GET /chat-history/:user1/:user2?limit=50&skip=0
func (h *ChatHandler) GetChatHistory(c *fiber.Ctx) error {
	user1 := c.Params("user1")
	user2 := c.Params("user2")
	limit := c.QueryInt("limit", 50)
	skip := c.QueryInt("skip", 0)

	msgs, err := h.store.History(c.Context(), models.ConversationKey(user1, user2), int64(limit), int64(skip))
	if err != nil {
		return h.storeError(c, "chat history", err)
	}
	return c.JSON(msgs)
}

// POST /mark-messages-read/:sender_id/:receiver_id
func (h *ChatHandler) MarkMessagesRead(c *fiber.Ctx) error {
	count, err := h.store.MarkRead(c.Context(), c.Params("sender_id"), c.Params("receiver_id"))
	if err != nil {
		return h.storeError(c, "mark read", err)
	}
	return c.JSON(fiber.Map{"marked_as_read": count})
}

// GET /unread-messages/:user_id
func (h *ChatHandler) GetUnreadCounts(c *fiber.Ctx) error {
	counts, err := h.store.UnreadCounts(c.Context(), c.Params("user_id"))
	if err != nil {
		return h.storeError(c, "unread counts", err)
	}
	if counts == nil {
		counts = map[string]int64{}
	}
	return c.JSON(counts)
}

// GET /recent-conversations/:user_id?limit=20
func (h *ChatHandler) GetRecentConversations(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 20)

	convs, err := h.store.RecentConversations(c.Context(), c.Params("user_id"), int64(limit))
	if err != nil {
		return h.storeError(c, "recent conversations", err)
	}
	if convs == nil {
		convs = []*models.ConversationSummary{}
	}
	return c.JSON(convs)
}

// GET /search-messages/:user_id?query=...
func (h *ChatHandler) SearchMessages(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "query is required"})
	}

	msgs, err := h.store.Search(c.Context(), c.Params("user_id"), query)
	if err != nil {
		return h.storeError(c, "search", err)
	}
	if msgs == nil {
		msgs = []*models.Message{}
	}
	return c.JSON(msgs)
}

// DELETE /message/:message_id
func (h *ChatHandler) DeleteMessage(c *fiber.Ctx) error {
	err := h.store.Delete(c.Context(), c.Params("message_id"))
	if errors.Is(err, repository.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Message not found"})
	}
	if err != nil {
		return h.storeError(c, "delete message", err)
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *ChatHandler) storeError(c *fiber.Ctx, op string, err error) error {
	h.log.Errorw(op, "err", err)
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}
