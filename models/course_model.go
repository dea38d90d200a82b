package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	PricingTypeFree = "free"
	PricingTypePaid = "paid"

	CourseTypeRegular = "regular"
	CourseTypeTop     = "top"
)

type Course struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	Name     string    `gorm:"size:255;not null" json:"name"`
	Teacher  string    `gorm:"size:255;not null" json:"teacher"`
	Image    string    `gorm:"type:text" json:"image"`
	Overview string    `gorm:"type:text" json:"overview"`

	PricingType   string  `gorm:"size:50;not null;default:'free'" json:"pricing_type"`
	PriceOriginal float64 `gorm:"type:numeric(10,2);default:0" json:"price_original"`
	PriceSale     float64 `gorm:"type:numeric(10,2);default:0" json:"price_sale"`

	AvgRating    float64 `gorm:"type:numeric(3,2);default:0" json:"avg_rating"`
	TotalRatings int     `gorm:"default:0" json:"total_ratings"`

	TotalDurationHours   int `gorm:"default:0" json:"total_duration_hours"`
	TotalDurationMinutes int `gorm:"default:0" json:"total_duration_minutes"`
	TotalLectures        int `gorm:"default:0" json:"total_lectures"`

	CourseType string `gorm:"size:50;not null;default:'regular';index" json:"course_type"`
	Category   string `gorm:"size:100;default:'General'" json:"category"`
	Level      string `gorm:"size:50;default:'Beginner'" json:"level"`
	Language   string `gorm:"size:50;default:'English'" json:"language"`

	Lectures []Lecture `gorm:"foreignkey:CourseID" json:"lectures,omitempty"`
	Ratings  []Rating  `gorm:"foreignkey:CourseID" json:"ratings,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// EffectivePrice is the amount a student actually pays: the sale price when
// one is set, the original price otherwise, and always 0 for free courses.
func (c *Course) EffectivePrice() float64 {
	if c.PricingType == PricingTypeFree {
		return 0
	}
	if c.PriceSale > 0 {
		return c.PriceSale
	}
	return c.PriceOriginal
}

type Lecture struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CourseID uuid.UUID `gorm:"not null;index" json:"course_id"`
	Title    string    `gorm:"size:255;not null" json:"title"`

	DurationHours   int `gorm:"default:0" json:"duration_hours"`
	DurationMinutes int `gorm:"default:0" json:"duration_minutes"`
	SortOrder       int `gorm:"default:0" json:"sort_order"`

	Chapters []Chapter `gorm:"foreignkey:LectureID" json:"chapters,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

type Chapter struct {
	ID        uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	LectureID uuid.UUID `gorm:"not null;index" json:"lecture_id"`
	Name      string    `gorm:"size:255" json:"name"`
	Topic     string    `gorm:"type:text" json:"topic"`
	VideoURL  string    `gorm:"type:text" json:"video_url"`

	DurationHours   int  `gorm:"default:0" json:"duration_hours"`
	DurationMinutes int  `gorm:"default:0" json:"duration_minutes"`
	SortOrder       int  `gorm:"default:0" json:"sort_order"`
	IsPreview       bool `gorm:"default:false" json:"is_preview"`

	CreatedAt time.Time `json:"created_at"`
}

type Rating struct {
	ID       uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	CourseID uuid.UUID `gorm:"not null;uniqueIndex:uniq_course_user_rating" json:"course_id"`
	UserID   string    `gorm:"size:255;not null;uniqueIndex:uniq_course_user_rating" json:"user_id"`
	Rating   int       `gorm:"not null;check:rating >= 1 AND rating <= 5" json:"rating"`
	Comment  string    `gorm:"type:text" json:"comment"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
