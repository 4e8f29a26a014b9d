package ws

import (
	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/models"
)

// BookingNotifier транслирует события жизненного цикла заявки в хаб.
// Реализует интерфейс уведомителя сервиса заявок.
type BookingNotifier struct {
	hub *Hub
}

// NewBookingNotifier создаёт новый адаптер.
func NewBookingNotifier(hub *Hub) *BookingNotifier {
	return &BookingNotifier{hub: hub}
}

// NotifyUser отправляет событие пользователю. Ошибка рассылки не влияет
// на исход перехода: заявка уже изменена в хранилище.
func (n *BookingNotifier) NotifyUser(userID uuid.UUID, event string, booking *models.Booking) {
	_ = n.hub.BroadcastToUser(userID, event, booking)
}
