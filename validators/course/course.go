package courseValidator

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"devcourses/middleware"
)

// Request schemas shared with the course controller via c.Locals.

type CourseRequest struct {
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Paid        bool    `json:"paid"`
	Price       float64 `json:"price"`
}

type LessonRequest struct {
	ID          string `json:"id"` // set on update only
	Title       string `json:"title"`
	Content     string `json:"content"`
	VideoKey    string `json:"video_key"`
	VideoURL    string `json:"video_url"`
	FreePreview bool   `json:"free_preview"`
}

type ImageRequest struct {
	Image string `json:"image"` // base64 data URI
}

type RemoveImageRequest struct {
	Key string `json:"key"`
}

// CreateCourse validator middleware, shared by course update (same body).
func CreateCourse() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(CourseRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		// Validate Name
		if strings.TrimSpace(reqData.Name) == "" {
			errors["name"] = "Name is required!"
		} else if len(strings.TrimSpace(reqData.Name)) < 3 {
			errors["name"] = "Name must be at least 3 characters long!"
		}

		// Validate Description
		if strings.TrimSpace(reqData.Description) == "" {
			errors["description"] = "Description is required!"
		}

		// Price only matters for paid courses
		if reqData.Paid && reqData.Price <= 0 {
			errors["price"] = "Paid courses need a price greater than 0!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedCourse", reqData)
		return c.Next()
	}
}

// Lesson validator middleware for add and update.
func Lesson() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(LessonRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		errors := make(map[string]string)

		if strings.TrimSpace(reqData.Title) == "" {
			errors["title"] = "Title is required!"
		}
		if strings.TrimSpace(reqData.Content) == "" {
			errors["content"] = "Content is required!"
		}

		if len(errors) > 0 {
			return middleware.ValidationErrorResponse(c, errors)
		}

		c.Locals("validatedLesson", reqData)
		return c.Next()
	}
}

// UploadImage validator middleware
func UploadImage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(ImageRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Image) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"image": "No image!"})
		}

		c.Locals("validatedImage", reqData)
		return c.Next()
	}
}

// RemoveImage validator middleware
func RemoveImage() fiber.Handler {
	return func(c *fiber.Ctx) error {
		reqData := new(RemoveImageRequest)
		if err := c.BodyParser(reqData); err != nil {
			return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request body!", nil)
		}

		if strings.TrimSpace(reqData.Key) == "" {
			return middleware.ValidationErrorResponse(c, map[string]string{"key": "No image key!"})
		}

		c.Locals("validatedRemoveImage", reqData)
		return c.Next()
	}
}
