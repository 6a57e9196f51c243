package models

import (
	"time"

	"github.com/lib/pq"
)

// Enquiry is the basic lead record a detailed profile is attached to.
type Enquiry struct {
	ID                    string         `db:"id" json:"id"`
	StudentName           string         `db:"student_name" json:"student_name"`
	Email                 string         `db:"email" json:"email"`
	Phone                 string         `db:"phone" json:"phone"`
	CurrentEducationLevel string         `db:"current_education_level" json:"current_education_level"`
	InterestedServices    pq.StringArray `db:"interested_services" json:"interested_services"`
	EnquiryStatus         EnquiryStatus  `db:"enquiry_status" json:"enquiry_status"`
	CreatedAt             time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt             time.Time      `db:"updated_at" json:"updated_at"`
}

// ServiceItem is an entry of the consultancy's services catalog.
type ServiceItem struct {
	ID        string    `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	Price     float64   `db:"price" json:"price"`
	Active    bool      `db:"active" json:"active"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ServiceFilter narrows catalog listings.
type ServiceFilter struct {
	ActiveOnly bool
}
