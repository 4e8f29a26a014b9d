package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Константы валидации
const (
	MinUsernameLength             = 3
	MaxUsernameLength             = 30
	MinDisplayNameLength          = 2
	MaxDisplayNameLength          = 100
	MinJobDetailsLength           = 5
	MaxJobDetailsLength           = 2000
	MinPortfolioTitleLength       = 1
	MaxPortfolioTitleLength       = 200
	MaxPortfolioDescriptionLength = 2000
	MaxBioLength                  = 1000
	MaxCommentLength              = 1000
	MaxExternalLinkLength         = 500
	MinRadiusKm                   = 0.1
	MaxRadiusKm                   = 100.0
	MinAmount                     = 0.0
	MaxAmount                     = 1000000.0
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	email = strings.TrimSpace(email)
	email = strings.ToLower(email)

	// Базовая проверка формата
	if !strings.Contains(email, "@") {
		return fmt.Errorf("email должен содержать символ @")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	localPart := parts[0]
	domainPart := parts[1]

	if len(localPart) == 0 || len(localPart) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}

	if len(domainPart) == 0 || len(domainPart) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}

	if !strings.Contains(domainPart, ".") {
		return fmt.Errorf("доменная часть email должна содержать точку")
	}

	// Проверка на валидные символы в локальной части
	emailRegex := regexp.MustCompile(`^[a-z0-9._+-]+$`)
	if !emailRegex.MatchString(localPart) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}

	// Проверка на валидные символы в доменной части
	domainRegex := regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
	if !domainRegex.MatchString(domainPart) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}

	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateUsername проверяет имя пользователя.
func ValidateUsername(username string) error {
	if username == "" {
		return fmt.Errorf("имя пользователя обязательно")
	}

	username = strings.TrimSpace(username)

	// Проверка длины
	if err := ValidateLength("имя пользователя", username, MinUsernameLength, MaxUsernameLength); err != nil {
		return err
	}

	// Проверка на допустимые символы (только буквы, цифры и подчеркивание)
	usernameRegex := regexp.MustCompile(`^[a-zA-Z0-9_]+$`)
	if !usernameRegex.MatchString(username) {
		return fmt.Errorf("имя пользователя может содержать только буквы, цифры и подчеркивание")
	}

	// Проверка, что не начинается с цифры
	if len(username) > 0 && unicode.IsDigit(rune(username[0])) {
		return fmt.Errorf("имя пользователя не может начинаться с цифры")
	}

	return nil
}

// ValidateDisplayName проверяет отображаемое имя.
func ValidateDisplayName(displayName string) error {
	if displayName == "" {
		return fmt.Errorf("отображаемое имя обязательно")
	}

	displayName = strings.TrimSpace(displayName)

	// Проверка длины
	if err := ValidateLength("отображаемое имя", displayName, MinDisplayNameLength, MaxDisplayNameLength); err != nil {
		return err
	}

	// Проверка на недопустимые символы (только буквы, цифры, пробелы и некоторые спецсимволы)
	displayNameRegex := regexp.MustCompile(`^[a-zA-Zа-яА-ЯёЁ0-9\s\-_.,!?()]+$`)
	if !displayNameRegex.MatchString(displayName) {
		return fmt.Errorf("отображаемое имя содержит недопустимые символы")
	}

	return nil
}

// ValidateCoordinates проверяет географические координаты.
func ValidateCoordinates(lat, lon float64) error {
	if lat < -90 || lat > 90 {
		return fmt.Errorf("широта должна быть в диапазоне от -90 до 90")
	}
	if lon < -180 || lon > 180 {
		return fmt.Errorf("долгота должна быть в диапазоне от -180 до 180")
	}
	return nil
}

// ValidateRadiusKm проверяет радиус гео-поиска.
func ValidateRadiusKm(radius float64) error {
	if radius < MinRadiusKm || radius > MaxRadiusKm {
		return fmt.Errorf("радиус поиска должен быть от %.1f до %.0f км", MinRadiusKm, MaxRadiusKm)
	}
	return nil
}

// ValidateAmount проверяет сумму оплаты.
func ValidateAmount(amount float64) error {
	if amount < MinAmount {
		return fmt.Errorf("сумма не может быть отрицательной")
	}
	if amount > MaxAmount {
		return fmt.Errorf("сумма не может превышать %.0f", MaxAmount)
	}
	return nil
}

// ValidateJobDetails проверяет описание работы в заявке.
func ValidateJobDetails(details string) error {
	if details == "" {
		return fmt.Errorf("описание работы обязательно")
	}

	details = strings.TrimSpace(details)

	if err := ValidateLength("описание работы", details, MinJobDetailsLength, MaxJobDetailsLength); err != nil {
		return err
	}

	return nil
}

// ValidateRatingComment проверяет комментарий к оценке.
func ValidateRatingComment(comment *string) error {
	if comment != nil && *comment != "" {
		c := strings.TrimSpace(*comment)
		if err := ValidateLength("комментарий", c, 0, MaxCommentLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateBio проверяет биографию.
func ValidateBio(bio *string) error {
	if bio != nil && *bio != "" {
		bioStr := strings.TrimSpace(*bio)
		if err := ValidateLength("биография", bioStr, 0, MaxBioLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidatePortfolioTitle проверяет заголовок работы в портфолио.
func ValidatePortfolioTitle(title string) error {
	if title == "" {
		return fmt.Errorf("название работы обязательно")
	}

	title = strings.TrimSpace(title)

	if err := ValidateLength("название работы", title, MinPortfolioTitleLength, MaxPortfolioTitleLength); err != nil {
		return err
	}

	return nil
}

// ValidatePortfolioDescription проверяет описание работы в портфолио.
func ValidatePortfolioDescription(description *string) error {
	if description != nil && *description != "" {
		desc := strings.TrimSpace(*description)
		if err := ValidateLength("описание работы", desc, 0, MaxPortfolioDescriptionLength); err != nil {
			return err
		}
	}
	return nil
}

// ValidateExternalLink проверяет внешнюю ссылку.
func ValidateExternalLink(link *string) error {
	if link != nil && *link != "" {
		linkStr := strings.TrimSpace(*link)

		if err := ValidateLength("внешняя ссылка", linkStr, 0, MaxExternalLinkLength); err != nil {
			return err
		}

		// Проверка формата URL
		parsedURL, err := url.Parse(linkStr)
		if err != nil {
			return fmt.Errorf("некорректный формат URL")
		}

		if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			return fmt.Errorf("ссылка должна начинаться с http:// или https://")
		}

		if parsedURL.Host == "" {
			return fmt.Errorf("ссылка должна содержать доменное имя")
		}
	}
	return nil
}
