package courseRoutes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"devcourses/config"
	courseControllers "devcourses/controllers/course"
	"devcourses/middleware"
	courseValidator "devcourses/validators/course"
)

func SetupCourseRoutes(app *fiber.App, cfg *config.Config, db *gorm.DB, cc *courseControllers.CourseController) {
	api := app.Group("/api")

	signedIn := middleware.RequireSignIn(cfg)
	instructorOnly := middleware.RequireInstructor(db)

	// Catalog
	api.Get("/course", cc.ListPublished)
	api.Get("/course/:slug", cc.ReadCourse)

	// Owner-gated course and lesson mutation
	api.Post("/course", signedIn, instructorOnly, courseValidator.CreateCourse(), cc.CreateCourse)
	api.Put("/course/publish/:courseId", signedIn, instructorOnly, cc.PublishCourse)
	api.Put("/course/unpublish/:courseId", signedIn, instructorOnly, cc.UnpublishCourse)
	api.Post("/course/lesson/:slug/:instructorId", signedIn, instructorOnly, courseValidator.Lesson(), cc.AddLesson)
	api.Put("/course/lesson/:slug/:instructorId", signedIn, instructorOnly, courseValidator.Lesson(), cc.UpdateLesson)
	api.Put("/course/:slug/:lessonId", signedIn, instructorOnly, cc.RemoveLesson)
	api.Put("/course/:slug", signedIn, instructorOnly, courseValidator.CreateCourse(), cc.UpdateCourse)

	// Media
	api.Post("/course/upload-image", signedIn, courseValidator.UploadImage(), cc.UploadImage)
	api.Post("/course/remove-image", signedIn, courseValidator.RemoveImage(), cc.RemoveImage)
	api.Post("/course/video-upload/:instructorId", signedIn, instructorOnly, cc.UploadVideo)
	api.Post("/course/video-remove/:instructorId", signedIn, instructorOnly, courseValidator.RemoveImage(), cc.RemoveVideo)

	// Enrollment
	api.Get("/check-enrollment/:courseId", signedIn, cc.CheckEnrollment)
	api.Post("/free-enrollment/:courseId", signedIn, cc.FreeEnrollment)
	api.Post("/paid-enrollment/:courseId", signedIn, cc.PaidEnrollment)
	api.Get("/stripe-success/:courseId", signedIn, cc.StripeSuccess)
	api.Get("/user-courses", signedIn, cc.UserCourses)

	// Completion tracking
	api.Post("/mark-complete", signedIn, courseValidator.Completion(), cc.MarkComplete)
	api.Post("/mark-incomplete", signedIn, courseValidator.Completion(), cc.MarkIncomplete)
	api.Post("/list-complete", signedIn, courseValidator.ListCompleted(), cc.ListCompleted)
}
