// Package scoring turns guess timing into points.
package scoring

import "time"

const (
	// GuesserBase is awarded for any correct guess, however late.
	GuesserBase = 50
	// GuesserMaxBonus is added in proportion to the time left in the round.
	GuesserMaxBonus = 100
	// DrawerPerGuess is awarded to the drawer for each distinct correct guesser.
	DrawerPerGuess = 25
)

type Points struct {
	Guesser int `json:"guesserPoints"`
	Drawer  int `json:"drawerPoints"`
}

// ScoreGuess returns the points for a correct guess made elapsed into a round
// lasting duration. Earlier guesses never score less than later ones.
func ScoreGuess(elapsed, duration time.Duration) Points {
	if duration <= 0 {
		return Points{Guesser: GuesserBase, Drawer: DrawerPerGuess}
	}
	if elapsed < 0 {
		elapsed = 0
	}
	if elapsed > duration {
		elapsed = duration
	}
	remaining := duration - elapsed
	bonus := int(int64(GuesserMaxBonus) * int64(remaining) / int64(duration))
	return Points{Guesser: GuesserBase + bonus, Drawer: DrawerPerGuess}
}
