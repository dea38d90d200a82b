package main

import (
	"log"
	"time"

	config "github.com/URAYUSHJAIN/skillforge/configs"
	"github.com/URAYUSHJAIN/skillforge/database"
	"github.com/URAYUSHJAIN/skillforge/handlers"
	"github.com/URAYUSHJAIN/skillforge/jobs"
	"github.com/URAYUSHJAIN/skillforge/notifications"
	"github.com/URAYUSHJAIN/skillforge/payments"
	"github.com/URAYUSHJAIN/skillforge/routes"
	"github.com/URAYUSHJAIN/skillforge/services"
	"github.com/URAYUSHJAIN/skillforge/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/robfig/cron/v3"
)

func main() {
	database.ConnectDB()
	database.Migrate()
	database.SeedAdmin()

	mailer := notifications.NewEmailService()

	// A typed nil *StripeService stored in the interface would defeat the
	// provider == nil check in the service, so assign only when configured.
	var provider payments.CheckoutProvider
	if stripeSvc := payments.NewStripeService(config.Config("STRIPE_SECRET_KEY")); stripeSvc != nil {
		provider = stripeSvc
	}

	bookingSvc := services.NewBookingService(
		database.NewBookingStore(database.DB),
		database.NewCourseStore(database.DB),
		provider,
		notifications.NewBookingNotifier(mailer),
		config.LoadBookingConfig(),
	)
	bookingHandler := handlers.NewBookingHandler(bookingSvc, config.Config("STRIPE_WEBHOOK_SECRET"))

	cr := cron.New()
	cr.AddFunc("*/15 * * * *", jobs.ReconcileStaleBookings(bookingSvc))
	go cr.Start()
	log.Println("✅ Cron job for booking reconciliation scheduled successfully.")

	app := fiber.New(fiber.Config{
		Prefork:           false,
		AppName:           "SkillForge",
		CaseSensitive:     true,
		StrictRouting:     true,
		EnablePrintRoutes: true,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}

			log.Printf("[ERROR] %v | Path: %s | Method: %s", err, c.Path(), c.Method())
			return c.Status(code).JSON(fiber.Map{
				"status":  "error",
				"code":    code,
				"message": err.Error(),
			})
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:  "*",
		AllowHeaders:  "Origin, Content-Type, Accept, Authorization, Stripe-Signature, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowMethods:  "GET, POST, PUT, PATCH, DELETE, OPTIONS",
		ExposeHeaders: "Content-Length, Authorization",
		MaxAge:        86400,
	}))

	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		TimeFormat: "2006-01-02 15:04:05",
		Format:     "[${time}] ${status} - ${latency} ${method} ${path}\n",
	}))

	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "success",
			"message": "Welcome to SkillForge API",
		})
	})

	routes.AuthRoutes(app)
	routes.CourseRoutes(app)
	routes.BookingRoutes(app, bookingHandler)
	routes.ContactRoutes(app)
	routes.UploadRoutes(app)
	routes.AdminFeedRoutes(app)

	go websocket.RunHub()

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status": "ok",
		})
	})

	port := config.Config("PORT")
	if port == "" {
		port = "4000"
	}

	log.Printf("✅ Server is running on port %s", port)
	if err := app.Listen(":" + port); err != nil {
		log.Fatalf("🔥 Server failed to start: %v", err)
	}
}
