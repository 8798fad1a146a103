package models

import (
	"fmt"
	"time"
)

// Score bounds for reviews, inclusive.
const (
	MinScore = 1
	MaxScore = 10
)

// ValidateYear rejects release years beyond the current calendar year.
// The ceiling is evaluated at write time, so a title dated "next year"
// becomes valid on its own without a data fix.
func ValidateYear(year int) error {
	if current := time.Now().Year(); year > current {
		return fmt.Errorf("year %d is in the future (current year is %d)", year, current)
	}
	return nil
}

// ValidateScore rejects scores outside the inclusive 1-10 range.
func ValidateScore(score int) error {
	if score < MinScore || score > MaxScore {
		return fmt.Errorf("score must be between %d and %d, got %d", MinScore, MaxScore, score)
	}
	return nil
}

// ValidRole reports whether role is one of the known user roles.
func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleModerator, RoleAdmin:
		return true
	}
	return false
}
