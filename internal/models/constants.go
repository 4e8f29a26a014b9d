package models

// Роли пользователей платформы.
const (
	RoleClient   = "client"
	RoleGraduate = "graduate"
)

// PaymentMethod константы способов оплаты.
const (
	PaymentMethodCash  = "cash"
	PaymentMethodGCash = "gcash"
	PaymentMethodCard  = "card"
)

// ValidPaymentMethods список валидных способов оплаты.
var ValidPaymentMethods = map[string]struct{}{
	PaymentMethodCash:  {},
	PaymentMethodGCash: {},
	PaymentMethodCard:  {},
}

// Ограничения рейтинга.
const (
	RatingMin = 1.0
	RatingMax = 5.0
)
