package handlers

import (
	"strconv"

	"github.com/URAYUSHJAIN/skillforge/database"
	"github.com/URAYUSHJAIN/skillforge/models"
	"github.com/gofiber/fiber/v2"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Subject string `json:"subject"`
	Message string `json:"message" validate:"required"`
}

func SubmitContact(c *fiber.Ctx) error {
	var req ContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	contact := models.Contact{
		Name:    req.Name,
		Email:   req.Email,
		Subject: req.Subject,
		Message: req.Message,
		Status:  models.ContactStatusNew,
	}
	if err := database.DB.Create(&contact).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to submit message. Please try again later."})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Your message has been sent successfully! We will get back to you soon.",
		"contact": contact,
	})
}

func ListContacts(c *fiber.Ctx) error {
	status := c.Query("status")
	page, _ := strconv.Atoi(c.Query("page", "1"))
	limit, _ := strconv.Atoi(c.Query("limit", "20"))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}

	query := database.DB.Model(&models.Contact{})
	if status != "" && status != "all" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch contact messages"})
	}

	var contacts []models.Contact
	if err := query.
		Order("created_at desc").
		Limit(limit).
		Offset((page - 1) * limit).
		Find(&contacts).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch contact messages"})
	}

	pages := total / int64(limit)
	if total%int64(limit) != 0 {
		pages++
	}

	return c.JSON(fiber.Map{
		"success":  true,
		"contacts": contacts,
		"pagination": fiber.Map{
			"page":  page,
			"limit": limit,
			"total": total,
			"pages": pages,
		},
	})
}

func GetContactStats(c *fiber.Ctx) error {
	var stats struct {
		Total         int64 `json:"total"`
		NewCount      int64 `json:"new_count"`
		ReadCount     int64 `json:"read_count"`
		RepliedCount  int64 `json:"replied_count"`
		ResolvedCount int64 `json:"resolved_count"`
	}

	err := database.DB.Model(&models.Contact{}).
		Select(`COUNT(*) as total,
			COUNT(*) FILTER (WHERE status = 'new') as new_count,
			COUNT(*) FILTER (WHERE status = 'read') as read_count,
			COUNT(*) FILTER (WHERE status = 'replied') as replied_count,
			COUNT(*) FILTER (WHERE status = 'resolved') as resolved_count`).
		Scan(&stats).Error
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to fetch stats"})
	}

	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

type UpdateContactRequest struct {
	Status     string  `json:"status" validate:"omitempty,oneof=new read replied resolved"`
	AdminNotes *string `json:"admin_notes"`
}

func UpdateContact(c *fiber.Ctx) error {
	id := c.Params("id")

	var req UpdateContactRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": "Cannot parse JSON"})
	}
	if err := validate.Struct(req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "message": err.Error()})
	}

	var contact models.Contact
	if err := database.DB.First(&contact, "id = ?", id).Error; err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Contact message not found"})
	}

	if req.Status != "" {
		contact.Status = req.Status
	}
	if req.AdminNotes != nil {
		contact.AdminNotes = *req.AdminNotes
	}

	if err := database.DB.Save(&contact).Error; err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to update contact"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Contact updated successfully", "contact": contact})
}

func DeleteContact(c *fiber.Ctx) error {
	id := c.Params("id")

	result := database.DB.Delete(&models.Contact{}, "id = ?", id)
	if result.Error != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "message": "Failed to delete contact"})
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"success": false, "message": "Contact message not found"})
	}

	return c.JSON(fiber.Map{"success": true, "message": "Contact message deleted successfully"})
}
