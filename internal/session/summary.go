package session

// AssessmentSummary reports what a completed assessment changed.
type AssessmentSummary struct {
	TokensEarned    int      `json:"tokensEarned"`
	MasteryAchieved bool     `json:"masteryLevel"`
	NewStages       []string `json:"typesComplete"`
	PerfectScore    bool     `json:"perfectScore"`
}

// PracticeSummary reports the result of a practice session, including any
// grade change the session triggered.
type PracticeSummary struct {
	TokensEarned    int  `json:"tokensEarned"`
	MasteryAchieved bool `json:"masteryLevel"`
	LevelChanged    bool `json:"levelChanged"`
	NewGrade        int  `json:"newGrade"`
	StreakBest      int  `json:"streakBest"`
}
