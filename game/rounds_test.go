package game

import (
	"testing"
	"time"

	"doodleserver/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartGamePreconditions(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 0)

	assert.ErrorIs(t, h.StartGame(code, "p1"), ErrNotEnoughPlayers)
	assert.Equal(t, models.StatusWaiting, h.room(t, code).Status)

	_, err := h.Join(code, JoinRequest{PlayerID: "p2", Name: "Player2"})
	require.NoError(t, err)
	assert.ErrorIs(t, h.StartGame(code, "p2"), ErrNotHost)

	require.NoError(t, h.Disconnect(code, "p2"))
	assert.ErrorIs(t, h.StartGame(code, "p1"), ErrNotEnoughPlayers)

	_, err = h.Reconnect(code, "p2")
	require.NoError(t, err)
	require.NoError(t, h.StartGame(code, "p1"))
	assert.ErrorIs(t, h.StartGame(code, "p1"), ErrAlreadyStarted)
}

func TestCountdownTicksThenDrawing(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 1)
	require.NoError(t, h.StartGame(code, "p1"))

	assert.Equal(t, models.PhaseCountdown, h.room(t, code).Phase.Kind())
	h.clock.Advance(2 * time.Second)
	assert.Equal(t, models.PhaseCountdown, h.room(t, code).Phase.Kind())
	h.clock.Advance(time.Second)
	assert.Equal(t, models.PhaseDrawing, h.room(t, code).Phase.Kind())

	var values []interface{}
	for _, ev := range h.rec.ofType(EventCountdown) {
		values = append(values, ev.Data["value"])
	}
	assert.Equal(t, []interface{}{3, 2, 1}, values)
}

func TestRoundStartEventOrder(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 1)
	require.NoError(t, h.StartGame(code, "p1"))
	h.clock.Advance(2 * time.Second)
	h.rec.reset()

	h.clock.Advance(time.Second)
	assert.Equal(t, []string{EventClearCanvas, EventRoundStart, EventRoundStart, EventTimerUpdate}, h.rec.types())

	events := h.rec.all()
	word := h.room(t, code).CurrentWord()
	assert.Equal(t, "p1", events[1].Except)
	assert.Equal(t, maskWord(word), events[1].Data["word"])
	assert.Equal(t, "p1", events[2].To)
	assert.Equal(t, word, events[2].Data["word"])
	assert.Equal(t, 80, events[3].Data["timeLeft"])
}

func TestRoundStartRecordsHistoryEntry(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{CustomWords: []string{"lantern"}}, 1)
	d := h.startDrawing(t, code)

	assert.Equal(t, "lantern", d.Word)
	room := h.room(t, code)
	require.Len(t, room.WordHistory, 1)
	assert.Equal(t, models.WordHistoryEntry{Round: 1, Word: "lantern", Drawer: "p1", GuessedBy: []string{}}, room.WordHistory[0])
	assert.True(t, h.timers.Active(code, keyRound))
}

func TestTimerUpdatesEverySecond(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 1)
	h.startDrawing(t, code)
	h.rec.reset()

	h.clock.Advance(3 * time.Second)
	var left []interface{}
	for _, ev := range h.rec.ofType(EventTimerUpdate) {
		left = append(left, ev.Data["timeLeft"])
	}
	assert.Equal(t, []interface{}{79, 78, 77}, left)
}

func TestTimeoutEndsRound(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 1)
	d := h.startDrawing(t, code)

	h.clock.Advance(80 * time.Second)
	room := h.room(t, code)
	end, ok := room.Phase.(*models.RoundEnd)
	require.True(t, ok)
	assert.Equal(t, models.ReasonTimeout, end.Reason)

	reveal := h.rec.ofType(EventWordReveal)
	require.Len(t, reveal, 1)
	assert.Equal(t, d.Word, reveal[0].Data["word"])
	assert.Equal(t, []string{keyNextRound}, h.timers.Keys(code))
}

func TestHintsFireAtCheckpointsOnce(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{}, 1)
	h.startDrawing(t, code)

	h.clock.Advance(19 * time.Second)
	assert.Empty(t, h.rec.ofType(EventHint))
	h.clock.Advance(time.Second)
	assert.Len(t, h.rec.ofType(EventHint), 1)
	h.clock.Advance(60 * time.Second)

	hints := h.rec.ofType(EventHint)
	require.Len(t, hints, 3)
	for i, ev := range hints {
		assert.Equal(t, i, ev.Data["index"])
		assert.Equal(t, "p1", ev.Except, "the drawer never receives hints")
	}
}

func TestHintsDisabled(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{AllowHints: boolPtr(false)}, 1)
	h.startDrawing(t, code)
	h.clock.Advance(80 * time.Second)
	assert.Empty(t, h.rec.ofType(EventHint))
}

func TestFullGameTwoPlayersThreeRounds(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{MaxRounds: 3}, 1)
	require.NoError(t, h.StartGame(code, "p1"))

	var drawers []string
	for round := 1; round <= 3; round++ {
		h.clock.Advance(3 * time.Second)
		room := h.room(t, code)
		require.Equal(t, round, room.Round)
		d, ok := room.Drawing()
		require.True(t, ok, "round %d should be drawing", round)
		drawers = append(drawers, d.Drawer)

		if round == 1 {
			h.clock.Advance(10 * time.Second)
			res, err := h.SubmitGuess(code, "p2", d.Word)
			require.NoError(t, err)
			require.True(t, res.Correct)
			h.clock.Advance(5 * time.Second)
			continue
		}
		h.clock.Advance(80 * time.Second)
		h.clock.Advance(5 * time.Second)
	}

	assert.Equal(t, []string{"p1", "p2", "p1"}, drawers)
	room := h.room(t, code)
	assert.Equal(t, models.StatusFinished, room.Status)
	assert.Equal(t, 3, room.Round)

	finished, ok := room.Phase.(*models.Finished)
	require.True(t, ok)
	require.Len(t, finished.Ranking, 2)
	assert.Equal(t, "p2", finished.Ranking[0].PlayerID)
	assert.Equal(t, "p1", finished.Ranking[1].PlayerID)
	assert.GreaterOrEqual(t, finished.Ranking[0].Score, finished.Ranking[1].Score)

	assert.Len(t, h.rec.ofType(EventGameEnded), 1)
	assert.Equal(t, 0, h.timers.Count(code))

	h.clock.Advance(time.Minute)
	assert.Equal(t, models.StatusFinished, h.room(t, code).Status)
}

func TestDrawerRotationNeverRepeatsImmediately(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{MaxRounds: 10, EndOnFirstGuess: true}, 2)
	require.NoError(t, h.StartGame(code, "p1"))

	var drawers []string
	for round := 1; round <= 10; round++ {
		h.clock.Advance(3 * time.Second)
		d, ok := h.room(t, code).Drawing()
		require.True(t, ok)
		drawers = append(drawers, d.Drawer)
		if round == 4 {
			// the next seat disconnects, rotation skips it
			require.NoError(t, h.Disconnect(code, "p3"))
		}
		if round == 6 {
			_, err := h.Reconnect(code, "p3")
			require.NoError(t, err)
		}
		h.clock.Advance(80 * time.Second)
		h.clock.Advance(5 * time.Second)
	}
	for i := 1; i < len(drawers); i++ {
		assert.NotEqual(t, drawers[i-1], drawers[i], "round %d", i+1)
	}
	assert.Equal(t, []string{"p1", "p2", "p3", "p1", "p2", "p1", "p2", "p3", "p1", "p2"}, drawers)
}

func TestRankingTiesKeepJoinOrder(t *testing.T) {
	room := &models.Room{Players: []*models.Player{
		{ID: "a", Score: 100},
		{ID: "b", Score: 150},
		{ID: "c", Score: 100},
		{ID: "s", Score: 500, IsSpectator: true},
	}}
	ranking := Ranking(room)
	require.Len(t, ranking, 3)
	assert.Equal(t, []string{"b", "a", "c"}, []string{ranking[0].PlayerID, ranking[1].PlayerID, ranking[2].PlayerID})
	assert.Equal(t, []int{1, 2, 2}, []int{ranking[0].Rank, ranking[1].Rank, ranking[2].Rank})
}

func TestRestartResetsGame(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{MaxRounds: 1}, 1)
	d := h.startDrawing(t, code)
	_, err := h.SubmitGuess(code, "p2", d.Word)
	require.NoError(t, err)

	assert.ErrorIs(t, h.Restart(code, "p1"), ErrNotFinished)
	h.clock.Advance(5 * time.Second)
	require.Equal(t, models.StatusFinished, h.room(t, code).Status)

	assert.ErrorIs(t, h.Restart(code, "p2"), ErrNotHost)
	require.NoError(t, h.Restart(code, "p1"))

	room := h.room(t, code)
	assert.Equal(t, models.StatusWaiting, room.Status)
	assert.Equal(t, 0, room.Round)
	assert.Empty(t, room.WordHistory)
	for _, p := range room.Players {
		assert.Zero(t, p.Score)
	}
	assert.Len(t, h.rec.ofType(EventGameRestarted), 1)
	require.NoError(t, h.StartGame(code, "p1"))
}

func TestRoundTimerAtMostOnePerRoom(t *testing.T) {
	h := newHarness(t)
	code := h.newRoom(t, models.RoomConfig{MaxRounds: 5}, 2)
	require.NoError(t, h.StartGame(code, "p1"))
	for i := 0; i < 500; i++ {
		h.clock.Advance(time.Second)
		if i == 40 {
			// pause and resume re-arm the round timers
			require.NoError(t, h.Disconnect(code, "p2"))
			require.NoError(t, h.Disconnect(code, "p3"))
			_, err := h.Reconnect(code, "p2")
			require.NoError(t, err)
			_, err = h.Reconnect(code, "p3")
			require.NoError(t, err)
		}
		// every live clock timer belongs to a scheduled key; a replaced
		// deadline would show up here as an extra pending timer
		assert.Equal(t, h.timers.Total(), h.clock.Pending(), "tick %d", i)
		room := h.room(t, code)
		if room.Status == models.StatusPlaying {
			assert.LessOrEqual(t, room.Round, room.MaxRounds)
		}
		if d, ok := room.Drawing(); ok {
			drawer, _ := room.FindPlayer(d.Drawer)
			require.NotNil(t, drawer)
			assert.False(t, drawer.IsSpectator)
		}
	}
	room := h.room(t, code)
	assert.Equal(t, models.StatusFinished, room.Status)
	assert.Len(t, h.rec.ofType(EventRoundEnded), room.MaxRounds)
}
