package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestScoreGuessBounds(t *testing.T) {
	round := 80 * time.Second

	assert.Equal(t, Points{Guesser: GuesserBase + GuesserMaxBonus, Drawer: DrawerPerGuess}, ScoreGuess(0, round))
	assert.Equal(t, Points{Guesser: GuesserBase, Drawer: DrawerPerGuess}, ScoreGuess(round, round))
	assert.Equal(t, GuesserBase+GuesserMaxBonus/2, ScoreGuess(40*time.Second, round).Guesser)
}

func TestScoreGuessClampsOutOfRangeElapsed(t *testing.T) {
	round := 60 * time.Second

	assert.Equal(t, ScoreGuess(0, round), ScoreGuess(-5*time.Second, round))
	assert.Equal(t, GuesserBase, ScoreGuess(2*round, round).Guesser)
	assert.Equal(t, GuesserBase, ScoreGuess(time.Second, 0).Guesser)
}

func TestScoreGuessIsMonotonic(t *testing.T) {
	round := 90 * time.Second
	prev := ScoreGuess(0, round)
	for elapsed := 250 * time.Millisecond; elapsed <= round; elapsed += 250 * time.Millisecond {
		cur := ScoreGuess(elapsed, round)
		assert.LessOrEqual(t, cur.Guesser, prev.Guesser, "elapsed=%s", elapsed)
		assert.GreaterOrEqual(t, cur.Guesser, GuesserBase)
		assert.Equal(t, DrawerPerGuess, cur.Drawer)
		prev = cur
	}
}
