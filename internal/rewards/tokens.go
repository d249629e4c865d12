// Package rewards converts session performance into token awards.
package rewards

// TimeSetting holds the award rates for one session-length tier.
type TimeSetting struct {
	TokensPer5   int // tokens per full block of 5 correct answers
	PerfectBonus int // flat bonus for a flawless session
}

// Short sessions pay better per question; the boundary is inclusive at 60s.
const ShortSessionMaxSeconds = 60

var (
	shortSetting = TimeSetting{TokensPer5: 3, PerfectBonus: 20}
	longSetting  = TimeSetting{TokensPer5: 2, PerfectBonus: 15}
)

// SettingFor returns the tier for a session duration.
func SettingFor(durationSeconds int) TimeSetting {
	if durationSeconds <= ShortSessionMaxSeconds {
		return shortSetting
	}
	return longSetting
}

// CalculateTokens converts a finished session's results into a token award.
// Base pay is per full block of 5 correct answers; a perfect score earns a
// flat bonus on top. Zero-question sessions never qualify for the bonus.
func CalculateTokens(correct, total, durationSeconds int) int {
	if correct <= 0 {
		return 0
	}
	setting := SettingFor(durationSeconds)
	tokens := (correct / 5) * setting.TokensPer5
	if correct == total && total > 0 {
		tokens += setting.PerfectBonus
	}
	return tokens
}

// MicroTokenDivisor converts in-session correct answers into incremental
// token drips: one token per every 3 correct.
const MicroTokenDivisor = 3

// MicroTokens returns the incremental award for a running correct count.
func MicroTokens(correctCount int) int {
	if correctCount <= 0 {
		return 0
	}
	return correctCount / MicroTokenDivisor
}
