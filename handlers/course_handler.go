package handlers

import (
	"strconv"

	"github.com/URAYUSHJAIN/skillforge/database"
	"github.com/URAYUSHJAIN/skillforge/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

func ListCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := database.DB.Order("created_at desc").Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch courses"})
	}
	return c.JSON(fiber.Map{"success": true, "courses": courses})
}

func ListPublicCourses(c *fiber.Ctx) error {
	limit, _ := strconv.Atoi(c.Query("limit", "100"))
	if limit <= 0 || limit > 100 {
		limit = 100
	}

	var courses []models.Course
	if err := database.DB.Order("created_at desc").Limit(limit).Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch courses"})
	}
	return c.JSON(fiber.Map{"success": true, "courses": courses})
}

func ListTopCourses(c *fiber.Ctx) error {
	var courses []models.Course
	if err := database.DB.
		Where("course_type = ?", models.CourseTypeTop).
		Order("avg_rating desc, created_at desc").
		Limit(6).
		Find(&courses).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch top courses"})
	}
	return c.JSON(fiber.Map{"success": true, "courses": courses})
}

func GetCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course models.Course
	err := database.DB.
		Preload("Lectures", func(db *gorm.DB) *gorm.DB { return db.Order("lectures.sort_order") }).
		Preload("Lectures.Chapters", func(db *gorm.DB) *gorm.DB { return db.Order("chapters.sort_order") }).
		First(&course, "id = ?", id).Error
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Course not found"})
	}

	return c.JSON(fiber.Map{"success": true, "course": course})
}

type ChapterRequest struct {
	Name            string `json:"name"`
	Topic           string `json:"topic"`
	VideoURL        string `json:"video_url"`
	DurationHours   int    `json:"duration_hours" validate:"gte=0"`
	DurationMinutes int    `json:"duration_minutes" validate:"gte=0"`
	IsPreview       bool   `json:"is_preview"`
}

type LectureRequest struct {
	Title    string           `json:"title"`
	Chapters []ChapterRequest `json:"chapters" validate:"dive"`
}

type CourseRequest struct {
	Name          string           `json:"name" validate:"required,min=2"`
	Teacher       string           `json:"teacher" validate:"required"`
	Image         string           `json:"image"`
	Overview      string           `json:"overview"`
	PricingType   string           `json:"pricing_type" validate:"required,oneof=free paid"`
	PriceOriginal float64          `json:"price_original" validate:"gte=0"`
	PriceSale     float64          `json:"price_sale" validate:"gte=0"`
	CourseType    string           `json:"course_type" validate:"omitempty,oneof=regular top"`
	Category      string           `json:"category"`
	Level         string           `json:"level"`
	Language      string           `json:"language"`
	Lectures      []LectureRequest `json:"lectures" validate:"dive"`
}

func CreateCourse(c *fiber.Ctx) error {
	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	course := courseFromRequest(req)

	totalMinutes := 0
	for i, lec := range req.Lectures {
		lecture := models.Lecture{Title: lec.Title, SortOrder: i}
		if lecture.Title == "" {
			lecture.Title = "Untitled lecture"
		}
		lectureMinutes := 0
		for j, ch := range lec.Chapters {
			lecture.Chapters = append(lecture.Chapters, models.Chapter{
				Name:            ch.Name,
				Topic:           ch.Topic,
				VideoURL:        ch.VideoURL,
				DurationHours:   ch.DurationHours,
				DurationMinutes: ch.DurationMinutes,
				SortOrder:       j,
				IsPreview:       ch.IsPreview,
			})
			lectureMinutes += ch.DurationHours*60 + ch.DurationMinutes
		}
		lecture.DurationHours = lectureMinutes / 60
		lecture.DurationMinutes = lectureMinutes % 60
		totalMinutes += lectureMinutes
		course.Lectures = append(course.Lectures, lecture)
	}

	course.TotalDurationHours = totalMinutes / 60
	course.TotalDurationMinutes = totalMinutes % 60
	course.TotalLectures = len(req.Lectures)

	if err := database.DB.Create(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to create course"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "message": "Course created successfully", "course": course})
}

func courseFromRequest(req CourseRequest) models.Course {
	course := models.Course{
		Name:          req.Name,
		Teacher:       req.Teacher,
		Image:         req.Image,
		Overview:      req.Overview,
		PricingType:   req.PricingType,
		PriceOriginal: req.PriceOriginal,
		PriceSale:     req.PriceSale,
		CourseType:    req.CourseType,
		Category:      req.Category,
		Level:         req.Level,
		Language:      req.Language,
	}
	if course.CourseType == "" {
		course.CourseType = models.CourseTypeRegular
	}
	if course.Category == "" {
		course.Category = "General"
	}
	if course.Level == "" {
		course.Level = "Beginner"
	}
	if course.Language == "" {
		course.Language = "English"
	}
	return course
}

func UpdateCourse(c *fiber.Ctx) error {
	id := c.Params("id")

	var course models.Course
	if err := database.DB.First(&course, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Course not found"})
	}

	var req CourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	course.Name = req.Name
	course.Teacher = req.Teacher
	if req.Image != "" {
		course.Image = req.Image
	}
	course.Overview = req.Overview
	course.PricingType = req.PricingType
	course.PriceOriginal = req.PriceOriginal
	course.PriceSale = req.PriceSale
	if req.CourseType != "" {
		course.CourseType = req.CourseType
	}
	if req.Category != "" {
		course.Category = req.Category
	}
	if req.Level != "" {
		course.Level = req.Level
	}
	if req.Language != "" {
		course.Language = req.Language
	}

	if err := database.DB.Save(&course).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update course"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Course updated successfully", "course": course})
}

func DeleteCourse(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid course id"})
	}

	result := database.DB.Delete(&models.Course{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to delete course"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Course not found"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Course deleted successfully"})
}

type RateCourseRequest struct {
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Comment string `json:"comment"`
}

// RateCourse upserts the caller's rating and recomputes the course
// aggregates inside the same transaction.
func RateCourse(c *fiber.Ctx) error {
	userID := authUserID(c)
	if userID == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"success": false, "message": "Authentication required"})
	}

	courseID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Invalid course id"})
	}

	var req RateCourseRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var course models.Course
	if err := database.DB.First(&course, "id = ?", courseID).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Course not found"})
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		var rating models.Rating
		result := tx.Where("course_id = ? AND user_id = ?", courseID, userID).First(&rating)
		if result.Error == nil {
			rating.Rating = req.Rating
			if req.Comment != "" {
				rating.Comment = req.Comment
			}
			if err := tx.Save(&rating).Error; err != nil {
				return err
			}
		} else {
			rating = models.Rating{
				CourseID: courseID,
				UserID:   userID,
				Rating:   req.Rating,
				Comment:  req.Comment,
			}
			if err := tx.Create(&rating).Error; err != nil {
				return err
			}
		}

		var agg struct {
			Avg   float64
			Total int64
		}
		if err := tx.Model(&models.Rating{}).
			Where("course_id = ?", courseID).
			Select("COALESCE(AVG(rating), 0) as avg, COUNT(*) as total").
			Scan(&agg).Error; err != nil {
			return err
		}

		return tx.Model(&models.Course{}).
			Where("id = ?", courseID).
			Updates(map[string]interface{}{"avg_rating": agg.Avg, "total_ratings": agg.Total}).Error
	})
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to save rating"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Rating saved"})
}
