package config

// LearningConfig holds the learning-cycle tuning constants.
//
// PassThreshold gates basic proficiency (difficulty recommendation);
// AdvanceThreshold is the stricter formal level-up gate. The two are distinct
// on purpose and must stay separate.
type LearningConfig struct {
	// CycleDays is the inactivity window after which topic progress is reset
	CycleDays int

	// MinQuestions is the minimum attempts before difficulty advancement
	MinQuestions int

	// PassThreshold is the percent accuracy for basic proficiency
	PassThreshold float64

	// AdvanceThreshold is the percent accuracy for formal difficulty advancement
	AdvanceThreshold float64

	// SimilarityCutoff is the minimum AI similarity score for a free-text
	// answer to count as correct
	SimilarityCutoff float64
}

// DefaultLearningConfig returns the learning-cycle defaults
func DefaultLearningConfig() *LearningConfig {
	return &LearningConfig{
		CycleDays:        getEnvIntOrDefault("LEARNING_CYCLE_DAYS", 10),
		MinQuestions:     getEnvIntOrDefault("LEARNING_MIN_QUESTIONS", 20),
		PassThreshold:    getEnvFloatOrDefault("LEARNING_PASS_THRESHOLD", 70),
		AdvanceThreshold: getEnvFloatOrDefault("LEARNING_ADVANCE_THRESHOLD", 80),
		SimilarityCutoff: getEnvFloatOrDefault("LEARNING_SIMILARITY_CUTOFF", 80),
	}
}
