package models

import (
	"time"

	"github.com/google/uuid"
)

// Graduate описывает профиль исполнителя: доступность, координаты
// и денормализованный рейтинг (среднее + количество оценок).
type Graduate struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Bio         *string   `db:"bio" json:"bio,omitempty"`
	IsAvailable bool      `db:"is_available" json:"is_available"`
	Latitude    *float64  `db:"latitude" json:"latitude,omitempty"`
	Longitude   *float64  `db:"longitude" json:"longitude,omitempty"`
	Stars       float64   `db:"stars" json:"stars"`
	RatingCount int       `db:"rating_count" json:"rating_count"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
	Categories  []string  `json:"categories,omitempty"`
}

// NearbyGraduate — исполнитель из гео-выборки с расстоянием до точки поиска.
// Порядок выборки не гарантируется; ранжирование — забота вызывающего кода.
type NearbyGraduate struct {
	UserID      uuid.UUID `db:"user_id" json:"user_id"`
	DisplayName string    `db:"display_name" json:"display_name"`
	Latitude    float64   `db:"latitude" json:"latitude"`
	Longitude   float64   `db:"longitude" json:"longitude"`
	Stars       float64   `db:"stars" json:"stars"`
	RatingCount int       `db:"rating_count" json:"rating_count"`
	DistanceKm  float64   `db:"distance_km" json:"distance_km"`
}

// PortfolioItem описывает работу в портфолио исполнителя.
type PortfolioItem struct {
	ID          uuid.UUID `db:"id" json:"id"`
	GraduateID  uuid.UUID `db:"graduate_id" json:"graduate_id"`
	Title       string    `db:"title" json:"title"`
	Description *string   `db:"description" json:"description,omitempty"`
	ProjectURL  *string   `db:"project_url" json:"project_url,omitempty"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
