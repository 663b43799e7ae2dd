package routes

import (
	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/fathima-sithara/dm-service/internal/handlers"
	"github.com/fathima-sithara/dm-service/internal/metrics"
	"github.com/fathima-sithara/dm-service/internal/ws"
)

func Register(app *fiber.App, h *handlers.ChatHandler, wsSrv *ws.Server) {
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	app.Use("/ws/:user_id", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/:user_id", websocket.New(wsSrv.HandleWS()))

	app.Get("/chat-history/:user1/:user2", h.GetChatHistory)
	app.Post("/mark-messages-read/:sender_id/:receiver_id", h.MarkMessagesRead)
	app.Get("/unread-messages/:user_id", h.GetUnreadCounts)
	app.Get("/recent-conversations/:user_id", h.GetRecentConversations)
	app.Get("/search-messages/:user_id", h.SearchMessages)
	app.Delete("/message/:message_id", h.DeleteMessage)
}
