package routes

import (
	"github.com/URAYUSHJAIN/skillforge/handlers"
	"github.com/URAYUSHJAIN/skillforge/middleware"
	"github.com/gofiber/fiber/v2"
)

func CourseRoutes(app *fiber.App) {
	api := app.Group("/api/v1")

	courses := api.Group("/courses")
	courses.Get("", handlers.ListPublicCourses)
	courses.Get("/top", handlers.ListTopCourses)
	courses.Get("/:id", handlers.GetCourse)
	courses.Post("/:id/rate", middleware.Protected(), handlers.RateCourse)

	admin := api.Group("/admin/courses", middleware.Protected(), middleware.AdminRequired())
	admin.Get("", handlers.ListCourses)
	admin.Post("", handlers.CreateCourse)
	admin.Put("/:id", handlers.UpdateCourse)
	admin.Delete("/:id", handlers.DeleteCourse)
}
