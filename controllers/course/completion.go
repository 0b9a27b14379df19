package controllers

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"devcourses/middleware"
	"devcourses/models"
	courseValidator "devcourses/validators/course"
)

// loadEntitledUser loads the caller and checks entitlement to courseID.
// Completion tracking is only available for courses the user can access.
func (cc *CourseController) loadEntitledUser(c *fiber.Ctx, courseID uint) (*models.User, error) {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return nil, middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	if !user.IsEntitled(courseID) {
		return nil, middleware.JsonResponse(c, fiber.StatusForbidden, false, "Please enroll in this course first!", nil)
	}

	return &user, nil
}

// MarkComplete records a finished lesson. The first completion for a
// (user, course) pair creates the record; repeats are no-ops.
func (cc *CourseController) MarkComplete(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCompletion").(*courseValidator.CompletionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := cc.loadEntitledUser(c, reqData.CourseID)
	if user == nil {
		return err
	}

	var record models.Completed
	err = cc.DB.Where("user_id = ? AND course_id = ?", user.ID, reqData.CourseID).First(&record).Error
	if err == gorm.ErrRecordNotFound {
		record = models.Completed{
			UserID:   user.ID,
			CourseID: reqData.CourseID,
			Lessons:  []string{reqData.LessonID},
		}
		if err := cc.DB.Create(&record).Error; err != nil {
			cc.Log.WithError(err).Error("failed to create completion record")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark complete!", nil)
		}
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked complete!", record.Lessons)
	}
	if err != nil {
		cc.Log.WithError(err).Error("failed to load completion record")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark complete!", nil)
	}

	if record.MarkComplete(reqData.LessonID) {
		if err := cc.DB.Model(&record).Update("lessons", record.Lessons).Error; err != nil {
			cc.Log.WithError(err).Error("failed to update completion record")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark complete!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked complete!", record.Lessons)
}

// MarkIncomplete removes a lesson from the completed set. Absent records and
// absent lessons are both no-ops.
func (cc *CourseController) MarkIncomplete(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedCompletion").(*courseValidator.CompletionRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := cc.loadEntitledUser(c, reqData.CourseID)
	if user == nil {
		return err
	}

	var record models.Completed
	if err := cc.DB.Where("user_id = ? AND course_id = ?", user.ID, reqData.CourseID).First(&record).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked incomplete!", []string{})
	}

	if record.MarkIncomplete(reqData.LessonID) {
		if err := cc.DB.Model(&record).Update("lessons", record.Lessons).Error; err != nil {
			cc.Log.WithError(err).Error("failed to update completion record")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to mark incomplete!", nil)
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson marked incomplete!", record.Lessons)
}

// ListCompleted returns the completed lesson ids for a course, empty when no
// record exists.
func (cc *CourseController) ListCompleted(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedListCompleted").(*courseValidator.ListCompletedRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	user, err := cc.loadEntitledUser(c, reqData.CourseID)
	if user == nil {
		return err
	}

	var record models.Completed
	if err := cc.DB.Where("user_id = ? AND course_id = ?", user.ID, reqData.CourseID).First(&record).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Completed lessons fetched!", []string{})
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Completed lessons fetched!", record.Lessons)
}
