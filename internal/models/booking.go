package models

import (
	"time"

	"github.com/google/uuid"
)

// Booking описывает заявку на услугу: срочную (broadcast по радиусу)
// или адресную (конкретному исполнителю).
type Booking struct {
	ID            uuid.UUID                 `db:"id" json:"id"`
	RequesterID   uuid.UUID                 `db:"requester_id" json:"requester_id"`
	GraduateID    *uuid.UUID                `db:"graduate_id" json:"graduate_id,omitempty"`
	CategoryID    uuid.UUID                 `db:"category_id" json:"category_id"`
	CategoryName  *string                   `db:"category_name" json:"category_name,omitempty"`
	Type          BookingType               `db:"type" json:"type"`
	Status        BookingStatus             `db:"status" json:"status"`
	PaymentMethod string                    `db:"payment_method" json:"payment_method"`
	PaymentStatus PaymentConfirmationStatus `db:"payment_status" json:"payment_status"`
	Amount        *float64                  `db:"amount" json:"amount,omitempty"`
	Latitude      *float64                  `db:"latitude" json:"latitude,omitempty"`
	Longitude     *float64                  `db:"longitude" json:"longitude,omitempty"`
	RadiusKm      *float64                  `db:"radius_km" json:"radius_km,omitempty"`
	JobDetails    string                    `db:"job_details" json:"job_details"`
	CreatedAt     time.Time                 `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time                 `db:"updated_at" json:"updated_at"`
}

// Rating описывает оценку исполнителя заказчиком по завершённой заявке.
// Одна оценка на пару (заказчик, заявка).
type Rating struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BookingID   uuid.UUID `db:"booking_id" json:"booking_id"`
	RequesterID uuid.UUID `db:"requester_id" json:"requester_id"`
	GraduateID  uuid.UUID `db:"graduate_id" json:"graduate_id"`
	Value       float64   `db:"value" json:"value"`
	Comment     *string   `db:"comment" json:"comment,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// Category описывает категорию услуг.
type Category struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
