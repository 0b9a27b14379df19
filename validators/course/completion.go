package courseValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"devcourses/middleware"
)

type CompletionRequest struct {
	CourseID uint   `json:"courseId"`
	LessonID string `json:"lessonId"`
}

type ListCompletedRequest struct {
	CourseID uint `json:"courseId"`
}

// Completion validates mark-complete and mark-incomplete bodies.
func Completion() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CompletionRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if reqData.CourseID == 0 {
			errors["courseId"] = "Course id is required!"
		}
		if strings.TrimSpace(reqData.LessonID) == "" {
			errors["lessonId"] = "Lesson id is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCompletion", reqData)
		return c.Next()
	}
}

// ListCompleted validates the list-complete body.
func ListCompleted() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ListCompletedRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if reqData.CourseID == 0 {
			return middleware.ValidationErrorResponse(c, map[string]string{"courseId": "Course id is required!"})
		}

		c.Locals("validatedListCompleted", reqData)
		return c.Next()
	}
}
