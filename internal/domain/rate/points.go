package rate

import "github.com/okian/bookings/internal/domain/model"

// Standard scoring constants.
const (
	yellowCardPoints = -1
	redCardPoints    = -3
	savesPerPoint    = 3
)

// CardPoints is the default policy: one point lost per yellow card, three
// per red.
func CardPoints(r model.MatchRecord) float64 {
	return float64(yellowCardPoints*r.YellowCards + redCardPoints*r.RedCards)
}

// BonusPoints scores a match by the bonus points awarded in it. Callers
// choose the minutes window; the convention pairs 60-90 and 30-59 minute
// tables.
func BonusPoints(r model.MatchRecord) float64 {
	return float64(r.Bonus)
}

// SavePoints scores a match by goalkeeper saves, one point per three saves,
// rounded down. Restricting input to goalkeepers is the store's job.
func SavePoints(r model.MatchRecord) float64 {
	return float64(r.Saves / savesPerPoint)
}
