package notify

var (
	singlePulse = []int{250}
	multiPulse  = []int{100, 50, 100, 50, 100}
)

// VibrationPattern returns the pulse sequence for a given alert count:
// one short pulse for a single alert, a multi-pulse burst for several.
func VibrationPattern(alertCount int) []int {
	switch {
	case alertCount <= 0:
		return nil
	case alertCount == 1:
		return singlePulse
	default:
		return multiPulse
	}
}
