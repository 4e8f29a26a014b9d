package models

import (
	"github.com/google/uuid"

	"github.com/gradlinkph/gradlink-backend/internal/pkg/apperror"
)

// BookingType определяет, как заявка находит исполнителя.
type BookingType string

const (
	// BookingTypeUrgent — срочная заявка, рассылается всем доступным
	// исполнителям в радиусе; закрепляется за первым принявшим.
	BookingTypeUrgent BookingType = "urgent"
	// BookingTypeCategory — адресная заявка конкретному исполнителю.
	BookingTypeCategory BookingType = "category"
)

func (t BookingType) IsValid() bool {
	return t == BookingTypeUrgent || t == BookingTypeCategory
}

// ClaimPolicy инкапсулирует правила принятия и отклонения заявки для её типа.
// Вся разница между срочной и адресной заявкой живёт здесь, а не в ветвлениях
// по enum внутри сервиса.
type ClaimPolicy interface {
	// Accept проверяет, может ли исполнитель принять заявку в её текущем состоянии.
	Accept(b *Booking, graduateID uuid.UUID) error
	// Reject проверяет, может ли исполнитель отклонить заявку.
	Reject(b *Booking, graduateID uuid.UUID) error
}

// ClaimPolicyFor возвращает политику для типа заявки.
func ClaimPolicyFor(t BookingType) ClaimPolicy {
	if t == BookingTypeCategory {
		return categoryClaim{}
	}
	return urgentClaim{}
}

// urgentClaim — правила срочной заявки: первый принявший выигрывает.
type urgentClaim struct{}

func (urgentClaim) Accept(b *Booking, graduateID uuid.UUID) error {
	if b.Status != BookingStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже не в ожидании")
	}
	if b.GraduateID != nil {
		return apperror.New(apperror.ErrCodeConflict, "заявку уже принял другой исполнитель")
	}
	return nil
}

func (urgentClaim) Reject(b *Booking, graduateID uuid.UUID) error {
	if b.Status != BookingStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже не в ожидании")
	}
	return nil
}

// categoryClaim — правила адресной заявки: действовать может только
// исполнитель, назначенный при создании.
type categoryClaim struct{}

func (categoryClaim) Accept(b *Booking, graduateID uuid.UUID) error {
	if b.Status != BookingStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже не в ожидании")
	}
	if b.GraduateID == nil || *b.GraduateID != graduateID {
		return apperror.New(apperror.ErrCodeForbidden, "заявка адресована другому исполнителю")
	}
	return nil
}

func (categoryClaim) Reject(b *Booking, graduateID uuid.UUID) error {
	if b.Status != BookingStatusPending {
		return apperror.New(apperror.ErrCodeInvalidState, "заявка уже не в ожидании")
	}
	if b.GraduateID == nil || *b.GraduateID != graduateID {
		return apperror.New(apperror.ErrCodeForbidden, "заявка адресована другому исполнителю")
	}
	return nil
}
