package dto

// ErrorResponse — стандартный ответ с ошибкой.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// SuccessResponse — стандартный успешный ответ.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// RatingSummaryResponse — агрегированный рейтинг исполнителя.
type RatingSummaryResponse struct {
	Stars       float64 `json:"stars"`
	RatingCount int     `json:"rating_count"`
}
