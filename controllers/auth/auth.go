package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"devcourses/config"
	"devcourses/middleware"
	"devcourses/models"
	"devcourses/utils"
	authValidator "devcourses/validators/auth"
)

// AuthController handles registration, sessions and password recovery.
type AuthController struct {
	DB     *gorm.DB
	Cfg    *config.Config
	Mailer *utils.Mailer
	Log    *logrus.Logger
}

func NewAuthController(db *gorm.DB, cfg *config.Config, mailer *utils.Mailer, log *logrus.Logger) *AuthController {
	return &AuthController{DB: db, Cfg: cfg, Mailer: mailer, Log: log}
}

func (ac *AuthController) Register(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRegister").(*authValidator.RegisterRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	// Reject taken emails
	var existing models.User
	if err := ac.DB.Where("email = ?", reqData.Email).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Email is taken!", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reqData.Password), ac.Cfg.SaltRound)
	if err != nil {
		ac.Log.WithError(err).Error("failed to hash password")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}

	user := models.User{
		Name:     reqData.Name,
		Email:    reqData.Email,
		Password: string(hashed),
		Roles:    []string{models.RoleSubscriber},
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		ac.Log.WithError(err).Error("failed to create user")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to register!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Register successfully!", nil)
}

func (ac *AuthController) Login(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedLogin").(*authValidator.LoginRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := ac.DB.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Wrong credentials!", nil)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(reqData.Password)); err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Wrong credentials!", nil)
	}

	token, err := middleware.GenerateJWT(ac.Cfg, user.ID)
	if err != nil {
		ac.Log.WithError(err).Error("failed to sign token")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}

	middleware.SetTokenCookie(c, token)

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Login successfully!", user)
}

func (ac *AuthController) Logout(c *fiber.Ctx) error {
	middleware.ClearTokenCookie(c)
	return middleware.JsonResponse(c, fiber.StatusCreated, true, "Logout successfully!", nil)
}

func (ac *AuthController) CurrentUser(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var user models.User
	if err := ac.DB.First(&user, userID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "User not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Current user fetched successfully!", user)
}

func (ac *AuthController) ForgotPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedForgotPassword").(*authValidator.ForgotPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := ac.DB.Where("email = ?", reqData.Email).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "User not found!", nil)
	}

	// 6 character upper-case reset code
	shortCode := strings.ToUpper(uuid.NewString()[:6])

	if err := ac.DB.Model(&user).Update("password_reset_code", shortCode).Error; err != nil {
		ac.Log.WithError(err).Error("failed to store reset code")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}

	if err := ac.Mailer.SendPasswordResetEmail(user.Email, shortCode); err != nil {
		ac.Log.WithError(err).WithField("email", user.Email).Error("failed to send reset email")
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to send reset email!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Reset code sent!", nil)
}

func (ac *AuthController) ResetPassword(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedResetPassword").(*authValidator.ResetPasswordRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var user models.User
	if err := ac.DB.Where("email = ? AND password_reset_code = ?", reqData.Email, reqData.Code).First(&user).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid reset code!", nil)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(reqData.NewPassword), ac.Cfg.SaltRound)
	if err != nil {
		ac.Log.WithError(err).Error("failed to hash password")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Something went wrong!", nil)
	}

	if err := ac.DB.Model(&user).Updates(map[string]interface{}{
		"password":            string(hashed),
		"password_reset_code": "",
	}).Error; err != nil {
		ac.Log.WithError(err).Error("failed to reset password")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to reset password!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Password reset successfully!", nil)
}
