package main

import (
	"context"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"devcourses/config"
	authControllers "devcourses/controllers/auth"
	courseControllers "devcourses/controllers/course"
	instructorControllers "devcourses/controllers/instructor"
	"devcourses/database"
	"devcourses/middleware"
	authRoutes "devcourses/routers/authRoutes"
	courseRoutes "devcourses/routers/courseRoutes"
	instructorRoutes "devcourses/routers/instructorRoutes"
	"devcourses/utils"
)

func main() {
	cfg := config.LoadConfig()
	appLog := utils.NewLogger(cfg.Env)

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect database: %v", err)
	}

	storage, err := utils.NewStorage(context.Background(), cfg)
	if err != nil {
		log.Fatalf("Failed to create storage client: %v", err)
	}

	stripe := utils.NewStripeClient(cfg)
	mailer := utils.NewMailer(cfg)

	app := fiber.New(fiber.Config{
		BodyLimit: 5 * 1024 * 1024, // base64 image uploads
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
			}
			if code == fiber.StatusInternalServerError {
				// Unexpected faults leak no detail
				appLog.WithError(err).Error("unhandled error")
				return middleware.JsonResponse(c, code, false, "Something went wrong!", nil)
			}
			return middleware.JsonResponse(c, code, false, err.Error(), nil)
		},
	})

	app.Use(cors.New(cors.Config{
		AllowOrigins:     "http://localhost:3000",
		AllowMethods:     "GET,POST,PUT,DELETE",
		AllowHeaders:     "Content-Type,Authorization,X-Csrf-Token",
		AllowCredentials: true,
	}))

	// Enable the built-in logger middleware to log all requests
	app.Use(logger.New(logger.Config{
		Format: "[${time}] ${ip} ${method} ${path} ${status} ${latency}\n",
	}))

	authController := authControllers.NewAuthController(db, cfg, mailer, appLog)
	instructorController := instructorControllers.NewInstructorController(db, cfg, stripe, appLog)
	courseController := courseControllers.NewCourseController(db, cfg, stripe, storage, mailer, appLog)

	authRoutes.SetupAuthRoutes(app, cfg, authController)
	instructorRoutes.SetupInstructorRoutes(app, cfg, instructorController)
	courseRoutes.SetupCourseRoutes(app, cfg, db, courseController)

	// Anti-forgery token issued on a dedicated endpoint; clients echo it in
	// the X-Csrf-Token header on state-mutating requests.
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-Csrf-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		ContextKey:     "csrf",
	}))
	app.Get("/api/csrf-token", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"csrfToken": c.Locals("csrf")})
	})

	appLog.Infof("Server is running on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
