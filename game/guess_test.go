package game

import (
	"testing"
	"time"

	"doodleserver/game/moderation"
	"doodleserver/game/scoring"
	"doodleserver/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCorrectGuessScoresOncePerGuesser(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 2)
	d := h.startDrawing(t, code)

	h.clock.Advance(20 * time.Second)
	res, err := h.SubmitGuess(code, "p2", d.Word)
	require.NoError(t, err)
	want := scoring.ScoreGuess(20*time.Second, 80*time.Second)
	assert.Equal(t, GuessResult{Correct: true, Points: want.Guesser}, res)
	assert.Equal(t, want.Guesser, h.score(t, code, "p2"))
	assert.Equal(t, want.Drawer, h.score(t, code, "p1"))
	assert.Equal(t, models.PhaseDrawing, h.room(t, code).Phase.Kind(), "p3 has not guessed yet")

	res, err = h.SubmitGuess(code, "p2", d.Word)
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Equal(t, want.Guesser, h.score(t, code, "p2"))
	assert.Equal(t, want.Drawer, h.score(t, code, "p1"))

	h.clock.Advance(20 * time.Second)
	res, err = h.SubmitGuess(code, "p3", d.Word)
	require.NoError(t, err)
	later := scoring.ScoreGuess(40*time.Second, 80*time.Second)
	assert.Equal(t, later.Guesser, res.Points)
	assert.Less(t, later.Guesser, want.Guesser)
	assert.Equal(t, 2*scoring.DrawerPerGuess, h.score(t, code, "p1"))

	room := h.room(t, code)
	end, ok := room.Phase.(*models.RoundEnd)
	require.True(t, ok)
	assert.Equal(t, models.ReasonGuess, end.Reason)
	assert.Equal(t, []string{"p2", "p3"}, room.WordHistory[0].GuessedBy)
	assert.Len(t, h.rec.ofType(EventCorrectGuess), 2)
}

func TestGuessIsNormalized(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{CustomWords: []string{"Crème Brûlée"}}, 1)
	h.startDrawing(t, code)

	res, err := h.SubmitGuess(code, "p2", "  CREME   brulee ")
	require.NoError(t, err)
	assert.True(t, res.Correct)
}

func TestEndOnFirstGuess(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{EndOnFirstGuess: true}, 2)
	d := h.startDrawing(t, code)

	_, err := h.SubmitGuess(code, "p3", d.Word)
	require.NoError(t, err)
	assert.Equal(t, models.PhaseRoundEnd, h.room(t, code).Phase.Kind())

	res, err := h.SubmitGuess(code, "p2", d.Word)
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Zero(t, h.score(t, code, "p2"))
}

func TestWrongGuessIsRelayedAsChat(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{CustomWords: []string{"lantern"}}, 1)
	h.startDrawing(t, code)
	h.rec.reset()

	res, err := h.SubmitGuess(code, "p2", "lamp")
	require.NoError(t, err)
	assert.False(t, res.Correct)

	chat := h.rec.ofType(EventChatMessage)
	require.Len(t, chat, 1)
	assert.Equal(t, "lamp", chat[0].Data["text"])
	assert.Equal(t, true, chat[0].Data["guess"])
}

func TestDrawerGuessIsIgnored(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 1)
	d := h.startDrawing(t, code)
	h.rec.reset()

	res, err := h.SubmitGuess(code, "p1", d.Word)
	require.NoError(t, err)
	assert.True(t, res.Ignored)
	assert.Empty(t, h.rec.all())
}

func TestRateLimitedActionDoesNotMutate(t *testing.T) {
	deny := map[string]bool{ActionGuess: true}
	h := newHarness(t, WithRateLimiter(denyLimiter{deny: deny}))
	code := h.newRoom(t, models.RoomConfig{}, 1)
	d := h.startDrawing(t, code)
	deny[ActionJoin] = true
	h.rec.reset()

	_, err := h.SubmitGuess(code, "p2", d.Word)
	var limited *RateLimitedError
	require.ErrorAs(t, err, &limited)
	assert.Equal(t, 750*time.Millisecond, limited.RetryAfter)
	assert.Equal(t, "rate-limited", ErrorCode(err))
	assert.Zero(t, h.score(t, code, "p2"))
	assert.Empty(t, h.rec.all())

	_, err = h.Join(code, JoinRequest{PlayerID: "p9", Name: "Guest"})
	require.ErrorAs(t, err, &limited)
	assert.Len(t, h.room(t, code).Players, 2)
}

func TestDrawLineOnlyFromDrawer(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 1)
	assert.ErrorIs(t, h.DrawLine(code, "p1", map[string]interface{}{"x": 1.0}), ErrNotDrawer)

	h.startDrawing(t, code)
	h.rec.reset()
	assert.ErrorIs(t, h.DrawLine(code, "p2", map[string]interface{}{"x": 1.0}), ErrNotDrawer)
	require.NoError(t, h.DrawLine(code, "p1", map[string]interface{}{"x": 1.0}))

	lines := h.rec.ofType(EventDrawLine)
	require.Len(t, lines, 1)
	assert.Equal(t, "p1", lines[0].Except)

	assert.ErrorIs(t, h.ClearCanvas(code, "p2"), ErrNotDrawer)
	require.NoError(t, h.ClearCanvas(code, "p1"))
	assert.Empty(t, h.room(t, code).Strokes)
}

func TestChat(t *testing.T) {
	h := newHarness(t, WithModerator(moderation.NewBlocklist([]string{"darn"}, 50)))
	code := h.newRoom(t, models.RoomConfig{CustomWords: []string{"lantern"}}, 2)

	require.NoError(t, h.Chat(code, "p2", "oh darn"))
	chat := h.rec.ofType(EventChatMessage)
	require.Len(t, chat, 1)
	assert.Equal(t, "oh ****", chat[0].Data["text"])
	assert.Equal(t, false, chat[0].Data["guess"])

	assert.ErrorIs(t, h.Chat(code, "p2", "   "), ErrMessageBlocked)
	assert.ErrorIs(t, h.Chat(code, "nobody", "hi"), ErrPlayerNotFound)

	h.startDrawing(t, code)
	assert.ErrorIs(t, h.Chat(code, "p1", "it is a LANTERN"), ErrMessageBlocked)
	assert.ErrorIs(t, h.Chat(code, "p1", "Lantern"), ErrMessageBlocked, "the drawer cannot leak the word")

	require.NoError(t, h.Chat(code, "p2", "lantern"))
	assert.Len(t, h.rec.ofType(EventCorrectGuess), 1, "a chat naming the word counts as a guess")
}

func TestChatDisabled(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{AllowChat: boolPtr(false)}, 1)
	assert.ErrorIs(t, h.Chat(code, "p2", "hello"), ErrChatDisabled)
}

func TestWordHistoryMasksCurrentWord(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{CustomWords: []string{"hot dog"}}, 1)
	h.startDrawing(t, code)

	history, err := h.WordHistory(code, "p2")
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, "___ ___", history[0].Word)

	history, err = h.WordHistory(code, "p1")
	require.NoError(t, err)
	assert.Equal(t, "hot dog", history[0].Word)

	h.clock.Advance(80 * time.Second)
	history, err = h.WordHistory(code, "p2")
	require.NoError(t, err)
	assert.Equal(t, "hot dog", history[0].Word)

	_, err = h.WordHistory(code, "stranger")
	assert.ErrorIs(t, err, ErrPlayerNotFound)
}
