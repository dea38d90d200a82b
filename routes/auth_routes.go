package routes

import (
	"github.com/URAYUSHJAIN/skillforge/handlers"
	"github.com/URAYUSHJAIN/skillforge/middleware"
	"github.com/gofiber/fiber/v2"
)

func AuthRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	auth := api.Group("/auth")
	auth.Post("/register", handlers.RegisterUser)
	auth.Post("/login", handlers.LoginUser)

	me := api.Group("/me", middleware.Protected())
	me.Get("", handlers.GetCurrentUser)
	me.Patch("", handlers.UpdateProfile)
}
