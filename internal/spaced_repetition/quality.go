package spaced_repetition

// QualityResponse represents the quality of response in SM-2
type QualityResponse int

const (
	// Complete blackout, unable to recall
	QualityBlackout QualityResponse = 0
	// Incorrect response but remembered upon seeing the correct answer
	QualityIncorrect QualityResponse = 1
	// Incorrect response but the correct answer felt familiar
	QualityIncorrectFamiliar QualityResponse = 2
	// Correct response but required significant effort
	QualityCorrectDifficult QualityResponse = 3
	// Correct response after some hesitation
	QualityCorrectHesitation QualityResponse = 4
	// Perfect response with no hesitation
	QualityPerfect QualityResponse = 5
)

// PassThreshold is the lowest quality that counts as a successful recall.
const PassThreshold = QualityCorrectDifficult

// Response time buckets in seconds. Comparisons are strict.
const (
	fastAnswerSeconds   = 10
	normalAnswerSeconds = 30
	slowAnswerSeconds   = 60
)

// ClampQuality forces q into [QualityBlackout, QualityPerfect].
func ClampQuality(q QualityResponse) QualityResponse {
	switch {
	case q < QualityBlackout:
		return QualityBlackout
	case q > QualityPerfect:
		return QualityPerfect
	}
	return q
}

// EstimateQuality maps a raw answer event to an SM-2 quality score.
//
// Wrong answers are always QualityIncorrect. A correct answer without timing
// is treated as hesitant; with timing, faster answers score higher.
// Negative response times count as instant.
func EstimateQuality(isCorrect bool, responseTimeSeconds *float64) QualityResponse {
	if !isCorrect {
		return QualityIncorrect
	}
	if responseTimeSeconds == nil {
		return QualityCorrectHesitation
	}

	t := max(*responseTimeSeconds, 0)
	switch {
	case t < fastAnswerSeconds:
		return QualityPerfect
	case t < normalAnswerSeconds:
		return QualityCorrectHesitation
	case t < slowAnswerSeconds:
		return QualityCorrectDifficult
	default:
		return QualityIncorrectFamiliar
	}
}
