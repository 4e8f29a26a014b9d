package dto

import "github.com/google/uuid"

// RegisterRequest — тело POST /auth/register.
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required"`
	Username    string `json:"username"`
	Role        string `json:"role"`
	DisplayName string `json:"display_name"`
}

// LoginRequest — тело POST /auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RefreshRequest — тело POST /auth/refresh и /auth/logout.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

// CreateUrgentBookingRequest — тело POST /bookings/urgent.
type CreateUrgentBookingRequest struct {
	CategoryID    uuid.UUID `json:"category_id" binding:"required"`
	PaymentMethod string    `json:"payment_method" binding:"required"`
	Latitude      float64   `json:"latitude" binding:"required"`
	Longitude     float64   `json:"longitude" binding:"required"`
	RadiusKm      *float64  `json:"radius_km"`
	JobDetails    string    `json:"job_details" binding:"required"`
}

// CreateCategoryBookingRequest — тело POST /bookings/category.
type CreateCategoryBookingRequest struct {
	CategoryID    uuid.UUID `json:"category_id" binding:"required"`
	GraduateID    uuid.UUID `json:"graduate_id" binding:"required"`
	PaymentMethod string    `json:"payment_method" binding:"required"`
	JobDetails    string    `json:"job_details" binding:"required"`
}

// CompleteBookingRequest — тело POST /bookings/:id/worker-complete.
type CompleteBookingRequest struct {
	Amount *float64 `json:"amount"`
}

// ConfirmPaymentRequest — тело POST /bookings/:id/confirm-payment.
type ConfirmPaymentRequest struct {
	Amount float64 `json:"amount" binding:"required"`
}

// ApplyRatingRequest — тело POST /bookings/:id/rating.
type ApplyRatingRequest struct {
	Value   float64 `json:"value" binding:"required"`
	Comment *string `json:"comment"`
}

// UpdateProfileRequest — тело PUT /graduates/me.
type UpdateProfileRequest struct {
	DisplayName string      `json:"display_name" binding:"required"`
	Bio         *string     `json:"bio"`
	IsAvailable bool        `json:"is_available"`
	Latitude    *float64    `json:"latitude"`
	Longitude   *float64    `json:"longitude"`
	CategoryIDs []uuid.UUID `json:"category_ids"`
}

// SetAvailabilityRequest — тело PATCH /graduates/me/availability.
type SetAvailabilityRequest struct {
	IsAvailable *bool `json:"is_available" binding:"required"`
}

// PortfolioItemRequest — тело POST и PUT портфолио.
type PortfolioItemRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description *string `json:"description"`
	ProjectURL  *string `json:"project_url"`
}
