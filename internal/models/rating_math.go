package models

import "math"

// Round1 округляет значение рейтинга до одного знака после запятой.
func Round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// NextRating сворачивает новую оценку в бегущее среднее исполнителя:
// (старое среднее * старое количество + оценка) / (количество + 1),
// с округлением до одного знака. Возвращает новое среднее и количество.
func NextRating(stars float64, count int, value float64) (float64, int) {
	next := (stars*float64(count) + value) / float64(count+1)
	return Round1(next), count + 1
}
