package routes

import (
	"github.com/URAYUSHJAIN/skillforge/handlers"
	"github.com/URAYUSHJAIN/skillforge/middleware"
	"github.com/gofiber/fiber/v2"
)

func ContactRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	api.Post("/contact", handlers.SubmitContact)

	admin := api.Group("/admin/contacts", middleware.Protected(), middleware.AdminRequired())
	admin.Get("", handlers.ListContacts)
	admin.Get("/stats", handlers.GetContactStats)
	admin.Patch("/:id", handlers.UpdateContact)
	admin.Delete("/:id", handlers.DeleteContact)
}
