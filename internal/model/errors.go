package model

import "errors"

// Common errors used across the application
var (
	// Player errors
	ErrPlayerNotFound      = errors.New("player not found")
	ErrProgressionNotFound = errors.New("progression record not found")

	// Streak errors
	ErrLoginEventNotFound = errors.New("login event not found")
	ErrLoginEventExists   = errors.New("login already recorded for this day")
	ErrStreakNotFound     = errors.New("streak summary not found")
	ErrInvalidDate        = errors.New("invalid calendar date")

	// Energy errors
	ErrInsufficientEnergy = errors.New("not enough energy")

	// Experience errors
	ErrInvalidAmount     = errors.New("amount must not be negative")
	ErrInvalidLevelTable = errors.New("invalid level table")

	// Leaderboard errors
	ErrInvalidPeriod  = errors.New("invalid leaderboard period")
	ErrNoActiveSeason = errors.New("no active season")
	ErrSeasonNotFound = errors.New("season not found")
	ErrInvalidSeason  = errors.New("season must end after it starts")
)
