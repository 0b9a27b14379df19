package controllers

import (
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"devcourses/middleware"
	courseValidator "devcourses/validators/course"
)

// UploadImage stores a base64 course image in the media bucket and returns
// the object reference the frontend saves on the course.
func (cc *CourseController) UploadImage(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedImage").(*courseValidator.ImageRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	ref, err := cc.Storage.UploadBase64Image(c.Context(), reqData.Image)
	if err != nil {
		cc.Log.WithError(err).Error("image upload failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to upload image!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Image uploaded successfully!", ref)
}

// RemoveImage deletes a previously uploaded image.
func (cc *CourseController) RemoveImage(c *fiber.Ctx) error {
	reqData, ok := c.Locals("validatedRemoveImage").(*courseValidator.RemoveImageRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := cc.Storage.Remove(c.Context(), reqData.Key); err != nil {
		cc.Log.WithError(err).Error("image removal failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to remove image!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Image removed successfully!", fiber.Map{"ok": true})
}

// UploadVideo streams a multipart lesson video into the media bucket.
func (cc *CourseController) UploadVideo(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	instructorID, ok := parseUintParam(c, "instructorId")
	if !ok || instructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	fileHeader, err := c.FormFile("video")
	if err != nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "No video!", nil)
	}

	file, err := fileHeader.Open()
	if err != nil {
		cc.Log.WithError(err).Error("failed to open uploaded video")
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Failed to read video!", nil)
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}

	key := fmt.Sprintf("videos/%s-%s", uuid.NewString(), fileHeader.Filename)
	ref, err := cc.Storage.Upload(c.Context(), key, contentType, file)
	if err != nil {
		cc.Log.WithError(err).Error("video upload failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to upload video!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video uploaded successfully!", ref)
}

// RemoveVideo deletes an uploaded lesson video.
func (cc *CourseController) RemoveVideo(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	instructorID, ok := parseUintParam(c, "instructorId")
	if !ok || instructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedRemoveImage").(*courseValidator.RemoveImageRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	if err := cc.Storage.Remove(c.Context(), reqData.Key); err != nil {
		cc.Log.WithError(err).Error("video removal failed")
		return middleware.JsonResponse(c, fiber.StatusBadGateway, false, "Failed to remove video!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Video removed successfully!", fiber.Map{"ok": true})
}
