package instructorRoutes

import (
	"github.com/gofiber/fiber/v2"

	"devcourses/config"
	instructorControllers "devcourses/controllers/instructor"
	"devcourses/middleware"
)

func SetupInstructorRoutes(app *fiber.App, cfg *config.Config, ic *instructorControllers.InstructorController) {
	instructor := app.Group("/api", middleware.RequireSignIn(cfg))

	instructor.Post("/make-instructor", ic.MakeInstructor)
	instructor.Post("/get-account-status", ic.GetAccountStatus)
	instructor.Get("/current-instructor", ic.CurrentInstructor)
	instructor.Get("/instructor-courses", ic.InstructorCourses)
	instructor.Get("/instructor-balance", ic.InstructorBalance)
}
