package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devcourses/config"
	"devcourses/middleware"
	"devcourses/models"
	"devcourses/utils"
)

// InstructorController handles payout-account linkage and the instructor
// dashboard reads.
type InstructorController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Stripe *utils.StripeClient
	Log    *logrus.Logger
}

func NewInstructorController(db *gorm.DB, cfg *config.Config, stripe *utils.StripeClient, log *logrus.Logger) *InstructorController {
	return &InstructorController{DB: db, Cfg: cfg, Stripe: stripe, Log: log}
}

// MakeInstructor makes sure the caller has a connected Stripe account and
// returns the hosted onboarding link.
func (ic *InstructorController) MakeInstructor(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := ic.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	// Create the connected account on first call only
	if user.StripeAccountID == "" {
		accountID, err := ic.Stripe.CreateAccount()
		if err != nil {
			ic.Log.WithError(err).Error("stripe account creation failed")
			return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment provider error!", nil)
		}
		if err := ic.DB.Model(&user).Update("stripe_account_id", accountID).Error; err != nil {
			ic.Log.WithError(err).Error("failed to persist stripe account id")
			return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
		}
		user.StripeAccountID = accountID
	}

	link, err := ic.Stripe.CreateAccountLink(user.StripeAccountID, user.Email)
	if err != nil {
		ic.Log.WithError(err).Error("stripe account link failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment provider error!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Onboarding link created!", fiber.Map{
		"url": link,
	})
}

// GetAccountStatus checks onboarding progress; once charges are enabled the
// caller gains the Instructor role.
func (ic *InstructorController) GetAccountStatus(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := ic.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if user.StripeAccountID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No payout account linked!", nil)
	}

	account, err := ic.Stripe.GetAccount(user.StripeAccountID)
	if err != nil {
		ic.Log.WithError(err).Error("stripe account fetch failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment provider error!", nil)
	}

	if !account.ChargesEnabled {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Payout account onboarding incomplete!", nil)
	}

	// Role add is a set operation, safe to repeat
	user.AddRole(models.RoleInstructor)
	if err := ic.DB.Model(&user).Update("roles", user.Roles).Error; err != nil {
		ic.Log.WithError(err).Error("failed to persist instructor role")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Instructor enabled!", user)
}

// CurrentInstructor answers whether the caller carries the instructor role.
func (ic *InstructorController) CurrentInstructor(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := ic.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}

	if !user.HasRole(models.RoleInstructor) {
		return middleware.JsonResponse(c, fiber.StatusForbidden, false, "Not an instructor!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Instructor confirmed!", fiber.Map{"ok": true})
}

// InstructorCourses lists the caller's own courses, newest first.
func (ic *InstructorController) InstructorCourses(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var courses []models.Course
	if err := ic.DB.Where("instructor_id = ?", userID).Order("created_at desc").Find(&courses).Error; err != nil {
		ic.Log.WithError(err).Error("failed to fetch instructor courses")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": courses,
	})
}

// InstructorBalance proxies the connected account's balance for the
// instructor dashboard.
func (ic *InstructorController) InstructorBalance(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := ic.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "User not found!", nil)
	}
	if user.StripeAccountID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No payout account linked!", nil)
	}

	balance, err := ic.Stripe.GetBalance(user.StripeAccountID)
	if err != nil {
		ic.Log.WithError(err).Error("stripe balance fetch failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Payment provider error!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Balance fetched successfully!", balance)
}
