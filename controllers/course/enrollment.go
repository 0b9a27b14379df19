package controllers

import (
	"github.com/gofiber/fiber/v2"

	"devcourses/middleware"
	"devcourses/models"
	"devcourses/utils"
)

// CheckEnrollment answers whether the caller is entitled to a course.
func (cc *CourseController) CheckEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, ok := parseUintParam(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Enrollment checked!", fiber.Map{
		"enrolled": user.IsEntitled(courseID),
	})
}

// FreeEnrollment grants entitlement to a free course. Attempting the free
// path on a paid course is rejected explicitly rather than silently ignored.
func (cc *CourseController) FreeEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, ok := parseUintParam(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	var course models.Course
	if err := cc.DB.Preload("Instructor").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if course.Paid {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This course is paid. Use checkout to enroll!", nil)
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	// Idempotent set add. The whole entitlement column is rewritten from the
	// row loaded above, so concurrent grants to the same user can race; the
	// set only ever grows, so a lost write is repaired by re-enrolling.
	user.Grant(course.ID)
	if err := cc.DB.Model(&user).Update("courses", user.Courses).Error; err != nil {
		cc.Log.WithError(err).Error("failed to persist enrollment")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Congratulations! You have successfully enrolled!", fiber.Map{
		"course": courseView(course),
	})
}

// PaidEnrollment starts the paid path: compute the charge and platform fee
// in cents, create a hosted checkout session routed to the instructor's
// payout account, and remember the session id on the user. Only one pending
// session is tracked per user; a new attempt overwrites the previous one.
func (cc *CourseController) PaidEnrollment(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, ok := parseUintParam(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	// The instructor record is needed for the payout destination
	var course models.Course
	if err := cc.DB.Preload("Instructor").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !course.Paid {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "This course is free. No checkout needed!", nil)
	}

	if course.Instructor.StripeAccountID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Instructor has no payout account!", nil)
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	// Gross and fee are rounded to cents independently of each other
	amount := utils.GrossMinorUnits(course.Price)
	fee := utils.PlatformFeeMinorUnits(course.Price)

	sessionID, err := cc.Stripe.CreateCheckoutSession(course.ID, course.Name, amount, fee, course.Instructor.StripeAccountID)
	if err != nil {
		cc.Log.WithError(err).WithField("courseId", course.ID).Error("stripe checkout creation failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment provider error!", nil)
	}

	// Single pending-session slot per user: a concurrent attempt by the
	// same user overwrites this value, and confirmation resolves whichever
	// session was written last.
	if err := cc.DB.Model(&user).Update("stripe_session", sessionID).Error; err != nil {
		cc.Log.WithError(err).Error("failed to persist checkout session")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to start checkout!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Checkout session created!", fiber.Map{
		"sessionId": sessionID,
	})
}

// StripeSuccess is the confirmation step after the processor redirect: query
// the pending session and grant entitlement once the payment is captured.
func (cc *CourseController) StripeSuccess(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, ok := parseUintParam(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	var course models.Course
	if err := cc.DB.Preload("Instructor").First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if user.StripeSession == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No pending checkout session!", nil)
	}

	session, err := cc.Stripe.GetCheckoutSession(user.StripeSession)
	if err != nil {
		cc.Log.WithError(err).Error("stripe session fetch failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment provider error!", nil)
	}

	if session.PaymentStatus != "paid" {
		// Payment not captured yet: no state change, tell the caller
		return middleware.JsonResponse(c, fiber.StatusOK, true, "Payment not completed yet!", fiber.Map{
			"course":   courseView(course),
			"enrolled": false,
		})
	}

	// Grant and clear the pending slot in one row update. Same
	// read-modify-write window as the free path: a concurrent grant to the
	// same user can be overwritten and needs a re-confirmation to repair.
	user.Grant(course.ID)
	if err := cc.DB.Model(&user).Updates(map[string]interface{}{
		"courses":        user.Courses,
		"stripe_session": "",
	}).Error; err != nil {
		cc.Log.WithError(err).Error("failed to persist paid enrollment")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to enroll!", nil)
	}

	go func(email, courseName string) {
		if err := cc.Mailer.SendEnrollmentEmail(email, courseName); err != nil {
			cc.Log.WithError(err).Warn("enrollment email failed")
		}
	}(user.Email, course.Name)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Congratulations! You have successfully enrolled!", fiber.Map{
		"course":   courseView(course),
		"enrolled": true,
	})
}

// UserCourses enumerates the caller's entitled courses.
func (cc *CourseController) UserCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := cc.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	views := []fiber.Map{}
	if len(user.Courses) > 0 {
		var courses []models.Course
		if err := cc.DB.Where("id IN ?", []uint(user.Courses)).Preload("Instructor").Find(&courses).Error; err != nil {
			cc.Log.WithError(err).Error("failed to fetch user courses")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
		}
		for _, course := range courses {
			views = append(views, courseView(course))
		}
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": views,
	})
}
