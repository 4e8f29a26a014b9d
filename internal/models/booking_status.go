package models

// BookingStatus описывает статус заявки в жизненном цикле.
type BookingStatus string

const (
	BookingStatusPending         BookingStatus = "pending"
	BookingStatusAccepted        BookingStatus = "accepted"
	BookingStatusInProgress      BookingStatus = "in_progress"
	BookingStatusWorkerCompleted BookingStatus = "worker_completed"
	BookingStatusCompleted       BookingStatus = "completed"
	BookingStatusRejected        BookingStatus = "rejected"
	BookingStatusCancelled       BookingStatus = "cancelled"
)

// ActiveGraduateStatuses статусы, в которых исполнитель считается занятым.
var ActiveGraduateStatuses = []BookingStatus{
	BookingStatusAccepted,
	BookingStatusInProgress,
}

// ActiveRequesterStatuses статусы, в которых у заказчика есть активная заявка.
var ActiveRequesterStatuses = []BookingStatus{
	BookingStatusPending,
	BookingStatusAccepted,
	BookingStatusInProgress,
	BookingStatusWorkerCompleted,
}

func (s BookingStatus) IsValid() bool {
	switch s {
	case BookingStatusPending, BookingStatusAccepted, BookingStatusInProgress,
		BookingStatusWorkerCompleted, BookingStatusCompleted,
		BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// IsTerminal сообщает, что заявка достигла конечного статуса и больше не изменяется.
func (s BookingStatus) IsTerminal() bool {
	switch s {
	case BookingStatusCompleted, BookingStatusRejected, BookingStatusCancelled:
		return true
	}
	return false
}

// bookingTransitions описывает допустимые переходы жизненного цикла.
// Возврат worker_completed -> in_progress — путь оспаривания преждевременного
// завершения со стороны заказчика.
var bookingTransitions = map[BookingStatus][]BookingStatus{
	BookingStatusPending:         {BookingStatusAccepted, BookingStatusRejected, BookingStatusCancelled},
	BookingStatusAccepted:        {BookingStatusInProgress},
	BookingStatusInProgress:      {BookingStatusWorkerCompleted},
	BookingStatusWorkerCompleted: {BookingStatusInProgress, BookingStatusCompleted},
	BookingStatusCompleted:       {},
	BookingStatusRejected:        {},
	BookingStatusCancelled:       {},
}

func (s BookingStatus) CanTransitionTo(newStatus BookingStatus) bool {
	allowed, ok := bookingTransitions[s]
	if !ok {
		return false
	}
	for _, status := range allowed {
		if status == newStatus {
			return true
		}
	}
	return false
}

// PaymentConfirmationStatus описывает подтверждение оплаты — ортогональный
// к основному жизненному циклу суб-статус.
type PaymentConfirmationStatus string

const (
	PaymentPending   PaymentConfirmationStatus = "pending"
	PaymentConfirmed PaymentConfirmationStatus = "confirmed"
)
