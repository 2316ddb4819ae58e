package models

import (
	"fmt"
	"strconv"
	"strings"
)

// Корзины опыта, в порядке отображения
const (
	ExperienceBucket0to2  = "0-2"
	ExperienceBucket3to5  = "3-5"
	ExperienceBucket6to10 = "6-10"
	ExperienceBucket10    = "10+"
)

var ExperienceBuckets = []string{
	ExperienceBucket0to2,
	ExperienceBucket3to5,
	ExperienceBucket6to10,
	ExperienceBucket10,
}

// Нижняя граница корзины, которая хранится вместо строки.
// Границы включительные: 10 лет - это "6-10", "10+" начинается с 11.
var bucketLowerBound = map[string]int{
	ExperienceBucket0to2:  0,
	ExperienceBucket3to5:  3,
	ExperienceBucket6to10: 6,
	ExperienceBucket10:    11,
}

// ParseExperience принимает целое число лет или строку корзины.
// Пустая строка - опыт не указан (nil).
func ParseExperience(raw string) (*int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, nil
	}
	if years, ok := bucketLowerBound[raw]; ok {
		return &years, nil
	}
	years, err := strconv.Atoi(strings.TrimSuffix(raw, "+"))
	if err != nil || years < 0 || years > 80 {
		return nil, fmt.Errorf("invalid years of experience %q", raw)
	}
	return &years, nil
}

// ExperienceBucket - корзина для числа лет
func ExperienceBucket(years int) string {
	switch {
	case years < 3:
		return ExperienceBucket0to2
	case years < 6:
		return ExperienceBucket3to5
	case years <= 10:
		return ExperienceBucket6to10
	default:
		return ExperienceBucket10
	}
}
