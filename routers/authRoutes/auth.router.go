package authRoutes

import (
	"github.com/gofiber/fiber/v2"

	"devcourses/config"
	authControllers "devcourses/controllers/auth"
	"devcourses/middleware"
	authValidator "devcourses/validators/auth"
)

func SetupAuthRoutes(app *fiber.App, cfg *config.Config, ac *authControllers.AuthController) {
	auth := app.Group("/api")

	auth.Post("/register", authValidator.Register(), ac.Register)
	auth.Post("/login", authValidator.Login(), ac.Login)
	auth.Get("/logout", ac.Logout)
	auth.Get("/current-user", middleware.RequireSignIn(cfg), ac.CurrentUser)
	auth.Post("/forgot-password", authValidator.ForgotPassword(), ac.ForgotPassword)
	auth.Post("/reset-password", authValidator.ResetPassword(), ac.ResetPassword)
}
