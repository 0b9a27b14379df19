package middleware

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"devcourses/models"
)

// RequireInstructor returns a middleware that rejects callers whose role set
// does not contain Instructor. Must run after RequireSignIn.
func RequireInstructor(db *gorm.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, ok := c.Locals("userId").(uint)
		if !ok {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
		}

		var user models.User
		if err := db.First(&user, userID).Error; err != nil {
			return JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
		}

		if !user.HasRole(models.RoleInstructor) {
			return JsonResponse(c, fiber.StatusForbidden, false, "You do not have permission to access this resource!", nil)
		}

		return c.Next()
	}
}
