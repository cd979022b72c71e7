package model

import "fmt"

// Difficulty is the ordered question difficulty level
type Difficulty string

const (
	DifficultyEasy   Difficulty = "EASY"
	DifficultyMedium Difficulty = "MEDIUM"
	DifficultyHard   Difficulty = "HARD"
)

// Difficulties lists all levels in ascending order
var Difficulties = []Difficulty{DifficultyEasy, DifficultyMedium, DifficultyHard}

// ParseDifficulty parses a difficulty string, rejecting unknown values
func ParseDifficulty(s string) (Difficulty, error) {
	switch Difficulty(s) {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return Difficulty(s), nil
	}
	return "", fmt.Errorf("unknown difficulty: %q", s)
}

// Easier returns the next level down. The second return is false at the floor.
func (d Difficulty) Easier() (Difficulty, bool) {
	switch d {
	case DifficultyHard:
		return DifficultyMedium, true
	case DifficultyMedium:
		return DifficultyEasy, true
	default:
		return d, false
	}
}

// Harder returns the next level up. The second return is false at the ceiling.
func (d Difficulty) Harder() (Difficulty, bool) {
	switch d {
	case DifficultyEasy:
		return DifficultyMedium, true
	case DifficultyMedium:
		return DifficultyHard, true
	default:
		return d, false
	}
}
