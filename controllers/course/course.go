package controllers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"devcourses/config"
	"devcourses/middleware"
	"devcourses/models"
	"devcourses/utils"
	courseValidator "devcourses/validators/course"
)

// CourseController handles the catalog: owner-gated course and lesson CRUD,
// media, enrollment and completion tracking.
type CourseController struct {
	DB      *gorm.DB
	Cfg     *config.Config
	Stripe  *utils.StripeClient
	Storage *utils.Storage
	Mailer  *utils.Mailer
	Log     *logrus.Logger
}

func NewCourseController(db *gorm.DB, cfg *config.Config, stripe *utils.StripeClient, storage *utils.Storage, mailer *utils.Mailer, log *logrus.Logger) *CourseController {
	return &CourseController{DB: db, Cfg: cfg, Stripe: stripe, Storage: storage, Mailer: mailer, Log: log}
}

// courseView renders a course with the minimal instructor projection.
// The instructor's full record never reaches the response.
func courseView(course models.Course) fiber.Map {
	return fiber.Map{
		"id":          course.ID,
		"name":        course.Name,
		"slug":        course.Slug,
		"description": course.Description,
		"category":    course.Category,
		"image":       course.Image.Data(),
		"price":       course.Price,
		"paid":        course.Paid,
		"published":   course.Published,
		"lessons":     course.Lessons,
		"instructor": models.InstructorProjection{
			ID:   course.InstructorID,
			Name: course.Instructor.Name,
		},
	}
}

func parseUintParam(c *fiber.Ctx, name string) (uint, bool) {
	v, err := strconv.Atoi(c.Params(name))
	if err != nil || v <= 0 {
		return 0, false
	}
	return uint(v), true
}

func (cc *CourseController) CreateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	slug := utils.Slugify(reqData.Name)

	// Course slugs are unique across the platform
	var existing models.Course
	if err := cc.DB.Where("slug = ?", slug).First(&existing).Error; err == nil {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Title is taken!", nil)
	}

	course := models.Course{
		Name:         reqData.Name,
		Slug:         slug,
		Description:  reqData.Description,
		Category:     reqData.Category,
		Paid:         reqData.Paid,
		Price:        reqData.Price,
		InstructorID: userID,
	}
	if !course.Paid {
		course.Price = 0
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		cc.Log.WithError(err).Error("failed to create course")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to create course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course created successfully!", course)
}

// ListPublished returns every published course with the instructor
// projection.
func (cc *CourseController) ListPublished(c *fiber.Ctx) error {
	var courses []models.Course
	if err := cc.DB.Where("published = ?", true).Preload("Instructor").Order("created_at desc").Find(&courses).Error; err != nil {
		cc.Log.WithError(err).Error("failed to fetch courses")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to fetch courses!", nil)
	}

	views := make([]fiber.Map, len(courses))
	for i, course := range courses {
		views[i] = courseView(course)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Courses fetched successfully!", fiber.Map{
		"courses": views,
	})
}

func (cc *CourseController) ReadCourse(c *fiber.Ctx) error {
	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).Preload("Instructor").First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course fetched successfully!", courseView(course))
}

func (cc *CourseController) UpdateCourse(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedCourse").(*courseValidator.CourseRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}

	if !course.OwnedBy(userID) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// The slug stays stable after creation; renaming does not move the course
	course.Name = reqData.Name
	course.Description = reqData.Description
	course.Category = reqData.Category
	course.Paid = reqData.Paid
	course.Price = reqData.Price
	if !course.Paid {
		course.Price = 0
	}

	if err := cc.DB.Save(&course).Error; err != nil {
		cc.Log.WithError(err).Error("failed to update course")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Course updated successfully!", course)
}

// AddLesson appends a lesson to the course's embedded list. The lesson id is
// server generated; the slug comes from the title and may collide across
// courses.
func (cc *CourseController) AddLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	instructorID, ok := parseUintParam(c, "instructorId")
	if !ok || instructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}

	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.OwnedBy(userID) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lesson := models.Lesson{
		ID:          uuid.NewString(),
		Title:       reqData.Title,
		Slug:        utils.Slugify(reqData.Title),
		Content:     reqData.Content,
		FreePreview: reqData.FreePreview,
	}
	if reqData.VideoKey != "" {
		lesson.Video = &models.MediaRef{Bucket: cc.Cfg.GCSBucket, Key: reqData.VideoKey, URL: reqData.VideoURL}
	}

	course.AddLesson(lesson)

	// The whole lesson list is rewritten in one update
	if err := cc.DB.Model(&course).Update("lessons", course.Lessons).Error; err != nil {
		cc.Log.WithError(err).Error("failed to add lesson")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to add lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson added successfully!", course)
}

func (cc *CourseController) UpdateLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	instructorID, ok := parseUintParam(c, "instructorId")
	if !ok || instructorID != userID {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	reqData, ok := c.Locals("validatedLesson").(*courseValidator.LessonRequest)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid request data!", nil)
	}
	if reqData.ID == "" {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Lesson id is required!", nil)
	}

	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.OwnedBy(userID) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	lesson := models.Lesson{
		ID:          reqData.ID,
		Title:       reqData.Title,
		Slug:        utils.Slugify(reqData.Title),
		Content:     reqData.Content,
		FreePreview: reqData.FreePreview,
	}
	if reqData.VideoKey != "" {
		lesson.Video = &models.MediaRef{Bucket: cc.Cfg.GCSBucket, Key: reqData.VideoKey, URL: reqData.VideoURL}
	}

	if !course.UpdateLesson(lesson) {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if err := cc.DB.Model(&course).Update("lessons", course.Lessons).Error; err != nil {
		cc.Log.WithError(err).Error("failed to update lesson")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson updated successfully!", course)
}

func (cc *CourseController) RemoveLesson(c *fiber.Ctx) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	var course models.Course
	if err := cc.DB.Where("slug = ?", c.Params("slug")).First(&course).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.OwnedBy(userID) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	// Lesson media stays in the bucket until removed explicitly
	if _, found := course.RemoveLesson(c.Params("lessonId")); !found {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Lesson not found!", nil)
	}

	if err := cc.DB.Model(&course).Update("lessons", course.Lessons).Error; err != nil {
		cc.Log.WithError(err).Error("failed to remove lesson")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to remove lesson!", nil)
	}

	return middleware.JsonResponse(c, fiber.StatusOK, true, "Lesson removed successfully!", course)
}

func (cc *CourseController) setPublished(c *fiber.Ctx, published bool) error {
	userID, ok := c.Locals("userId").(uint)
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	courseID, ok := parseUintParam(c, "courseId")
	if !ok {
		return middleware.JsonResponse(c, fiber.StatusBadRequest, false, "Invalid course id!", nil)
	}

	var course models.Course
	if err := cc.DB.First(&course, courseID).Error; err != nil {
		return middleware.JsonResponse(c, fiber.StatusNotFound, false, "Course not found!", nil)
	}
	if !course.OwnedBy(userID) {
		return middleware.JsonResponse(c, fiber.StatusUnauthorized, false, "Unauthorized!", nil)
	}

	if err := cc.DB.Model(&course).Update("published", published).Error; err != nil {
		cc.Log.WithError(err).Error("failed to change publish state")
		return middleware.JsonResponse(c, fiber.StatusInternalServerError, false, "Failed to update course!", nil)
	}
	course.Published = published

	message := "Course unpublished successfully!"
	if published {
		message = "Course published successfully!"
	}
	return middleware.JsonResponse(c, fiber.StatusOK, true, message, course)
}

func (cc *CourseController) PublishCourse(c *fiber.Ctx) error {
	return cc.setPublished(c, true)
}

func (cc *CourseController) UnpublishCourse(c *fiber.Ctx) error {
	return cc.setPublished(c, false)
}
