package game

import (
	"sort"
	"time"

	"doodleserver/game/hints"
	"doodleserver/game/words"
	"doodleserver/models"

	"go.uber.org/zap"
)

// StartGame moves a waiting room into its first countdown. Host only.
func (e *Engine) StartGame(code, playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.throttle(playerID, ActionStart); err != nil {
		return err
	}
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	if room.HostID != playerID {
		return ErrNotHost
	}
	if room.Status != models.StatusWaiting {
		return ErrAlreadyStarted
	}
	if len(room.ActivePlayers()) < room.Settings.MinPlayers {
		return ErrNotEnoughPlayers
	}

	room.Status = models.StatusPlaying
	room.Round = 1
	e.touch(room)
	e.emit(room, EventGameStarted, map[string]interface{}{
		"maxRounds": room.MaxRounds,
		"players":   playerList(room),
	})
	e.logger.Info("game started", zap.String("room", room.ID), zap.Int("players", len(room.Players)))
	e.enterCountdown(room)
	e.mirror(room)
	return nil
}

// Restart resets a finished game back to Waiting. Host only.
func (e *Engine) Restart(code, playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.throttle(playerID, ActionRestart); err != nil {
		return err
	}
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	if room.HostID != playerID {
		return ErrNotHost
	}
	if room.Status != models.StatusFinished && room.Status != models.StatusWaiting {
		return ErrNotFinished
	}

	e.timers.CancelAll(room.ID)
	for _, p := range room.Players {
		p.Score = 0
	}
	room.Status = models.StatusWaiting
	room.Phase = &models.Waiting{}
	room.Round = 0
	room.WordHistory = nil
	room.Strokes = nil
	room.LastDrawerID = ""
	room.DrawerCursor = -1
	e.touch(room)

	e.emit(room, EventGameRestarted, map[string]interface{}{"maxRounds": room.MaxRounds})
	e.promoteSpectators(room)
	e.emitPlayers(room)
	e.logger.Info("game restarted", zap.String("room", room.ID))
	e.mirror(room)
	return nil
}

func (e *Engine) enterCountdown(room *models.Room) {
	e.promoteSpectators(room)
	if len(room.ActivePlayers()) < room.Settings.MinPlayers {
		e.pause(room, "not-enough-players")
		return
	}
	ticks := room.Settings.CountdownTicks
	if ticks <= 0 {
		e.beginDrawing(room)
		return
	}
	room.Phase = &models.Countdown{Remaining: ticks}
	e.emit(room, EventCountdown, map[string]interface{}{"value": ticks, "round": room.Round})

	id := room.ID
	e.timers.Every(id, keyCountdown, time.Second, func() { e.countdownTick(id) })
}

func (e *Engine) countdownTick(id string) {
	room, ok := e.rooms[id]
	if !ok {
		return
	}
	c, ok := room.Phase.(*models.Countdown)
	if !ok {
		return
	}
	c.Remaining--
	if c.Remaining > 0 {
		e.emit(room, EventCountdown, map[string]interface{}{"value": c.Remaining, "round": room.Round})
		return
	}
	e.timers.Cancel(id, keyCountdown)
	e.beginDrawing(room)
	e.mirror(room)
}

func (e *Engine) beginDrawing(room *models.Room) {
	drawer := e.nextDrawer(room)
	if drawer == nil {
		e.pause(room, "not-enough-players")
		return
	}
	word, source := e.selector.Pick(words.Request{
		Difficulty:  room.Difficulty,
		Category:    room.Category,
		CustomWords: room.CustomWords,
		Used:        room.UsedWords(),
	})

	room.Strokes = nil
	e.emit(room, EventClearCanvas, nil)

	room.WordHistory = append(room.WordHistory, models.WordHistoryEntry{
		Round:     room.Round,
		Word:      word,
		Drawer:    drawer.ID,
		GuessedBy: []string{},
	})
	d := &models.Drawing{
		Drawer:    drawer.ID,
		Word:      word,
		StartedAt: e.now(),
		Duration:  room.Settings.DrawingTimeout.Std(),
	}
	room.Phase = d
	e.touch(room)
	e.logger.Info("round started",
		zap.String("room", room.ID),
		zap.Int("round", room.Round),
		zap.String("drawer", drawer.ID),
		zap.String("wordSource", string(source)))

	e.announceRound(room, d, false)
	e.armRound(room, d)
}

// announceRound sends round-start (the word only to the drawer) followed by
// the first timer-update.
func (e *Engine) announceRound(room *models.Room, d *models.Drawing, resumed bool) {
	drawerName := ""
	if p, _ := room.FindPlayer(d.Drawer); p != nil {
		drawerName = p.Name
	}
	left := secondsLeft(d.Remaining(e.now()))
	base := func() map[string]interface{} {
		return map[string]interface{}{
			"round":      room.Round,
			"maxRounds":  room.MaxRounds,
			"drawer":     d.Drawer,
			"drawerName": drawerName,
			"duration":   int(d.Duration / time.Second),
			"timeLeft":   left,
			"resumed":    resumed,
		}
	}
	forGuessers := base()
	forGuessers["word"] = maskWord(d.Word)
	forDrawer := base()
	forDrawer["word"] = d.Word

	e.emitExcept(room, d.Drawer, EventRoundStart, forGuessers)
	e.emitTo(room, d.Drawer, EventRoundStart, forDrawer)
	e.emit(room, EventTimerUpdate, map[string]interface{}{"timeLeft": left})
}

// armRound schedules the per-second timer updates, the round deadline and
// the hint checkpoints not yet reached.
func (e *Engine) armRound(room *models.Room, d *models.Drawing) {
	id := room.ID
	now := e.now()
	e.timers.Every(id, keyTimer, time.Second, func() { e.timerTick(id) })
	e.timers.Schedule(id, keyRound, d.Remaining(now), func() { e.roundDeadline(id) })

	if !room.Settings.AllowHints {
		return
	}
	elapsed := d.Elapsed(now)
	for i, offset := range hints.Offsets(d.Duration) {
		if i < d.HintsFired || offset < elapsed {
			continue
		}
		index := i
		e.timers.Schedule(id, hintKey(i), offset-elapsed, func() { e.fireHint(id, index) })
	}
}

func (e *Engine) timerTick(id string) {
	room, ok := e.rooms[id]
	if !ok {
		return
	}
	d, ok := room.Drawing()
	if !ok {
		return
	}
	left := d.Remaining(e.now())
	e.emit(room, EventTimerUpdate, map[string]interface{}{"timeLeft": secondsLeft(left)})
	if left <= 0 {
		e.timers.Cancel(id, keyTimer)
	}
}

func (e *Engine) roundDeadline(id string) {
	room, ok := e.rooms[id]
	if !ok {
		return
	}
	e.endRound(room, models.ReasonTimeout)
	e.mirror(room)
}

func (e *Engine) fireHint(id string, index int) {
	room, ok := e.rooms[id]
	if !ok {
		return
	}
	d, ok := room.Drawing()
	if !ok || index < d.HintsFired {
		return
	}
	hint := hints.NewGenerator(room.Settings.HintKinds).Generate(d.Word, index, room.Category)
	d.HintsFired = index + 1
	e.emitExcept(room, d.Drawer, EventHint, map[string]interface{}{
		"index": hint.Index,
		"kind":  hint.Kind,
		"text":  hint.Text,
	})
}

// endRound moves Drawing to RoundEnd and schedules what comes next.
func (e *Engine) endRound(room *models.Room, reason models.EndReason) {
	d, ok := room.Drawing()
	if !ok {
		return
	}
	e.timers.CancelAll(room.ID)

	room.Phase = &models.RoundEnd{Reason: reason, Word: d.Word, Drawer: d.Drawer}
	e.revealRound(room, d, reason)

	e.promoteSpectators(room)
	if len(room.ActivePlayers()) < room.Settings.MinPlayers {
		e.pause(room, "not-enough-players")
		return
	}
	delay := room.Settings.RoundEndDelay.Std()
	if reason == models.ReasonDrawerLeft {
		delay = room.Settings.DrawerLeftDelay.Std()
	}
	id := room.ID
	e.timers.Schedule(id, keyNextRound, delay, func() { e.advanceRound(id) })
}

// revealRound announces the word and the result of the round d.
func (e *Engine) revealRound(room *models.Room, d *models.Drawing, reason models.EndReason) {
	guessedBy := []string{}
	if entry := room.CurrentEntry(); entry != nil {
		guessedBy = append(guessedBy, entry.GuessedBy...)
	}
	scores := make(map[string]int, len(room.Players))
	for _, p := range room.Players {
		scores[p.ID] = p.Score
	}
	e.emit(room, EventWordReveal, map[string]interface{}{"word": d.Word})
	e.emit(room, EventRoundEnded, map[string]interface{}{
		"reason":    string(reason),
		"round":     room.Round,
		"word":      d.Word,
		"drawer":    d.Drawer,
		"guessedBy": guessedBy,
		"scores":    scores,
	})
	e.logger.Info("round ended",
		zap.String("room", room.ID),
		zap.Int("round", room.Round),
		zap.String("reason", string(reason)),
		zap.Int("guessers", len(guessedBy)))
}

func (e *Engine) advanceRound(id string) {
	room, ok := e.rooms[id]
	if !ok {
		return
	}
	if _, ok := room.Phase.(*models.RoundEnd); !ok || room.Status != models.StatusPlaying {
		return
	}
	if room.Round+1 > room.MaxRounds {
		e.finishGame(room)
	} else {
		room.Round++
		e.enterCountdown(room)
	}
	e.mirror(room)
}

func (e *Engine) finishGame(room *models.Room) {
	e.timers.CancelAll(room.ID)
	ranking := Ranking(room)
	room.Status = models.StatusFinished
	room.Phase = &models.Finished{Ranking: ranking}
	e.emit(room, EventGameEnded, map[string]interface{}{"ranking": ranking})
	e.logger.Info("game finished", zap.String("room", room.ID), zap.Int("rounds", room.Round))
}

// Ranking orders non-spectators by score, ties broken by join order. Tied
// players share a rank.
func Ranking(room *models.Room) []models.RankEntry {
	var players []*models.Player
	for _, p := range room.Players {
		if !p.IsSpectator {
			players = append(players, p)
		}
	}
	sort.SliceStable(players, func(i, j int) bool { return players[i].Score > players[j].Score })

	ranking := make([]models.RankEntry, len(players))
	for i, p := range players {
		rank := i + 1
		if i > 0 && p.Score == players[i-1].Score {
			rank = ranking[i-1].Rank
		}
		ranking[i] = models.RankEntry{Rank: rank, PlayerID: p.ID, Name: p.Name, Score: p.Score}
	}
	return ranking
}

func (e *Engine) pause(room *models.Room, reason string) {
	if room.Status != models.StatusPlaying {
		return
	}
	paused := &models.Paused{}
	switch ph := room.Phase.(type) {
	case *models.Drawing:
		paused.Suspended = ph
		paused.Remaining = ph.Remaining(e.now())
	case *models.RoundEnd:
		paused.AfterRoundEnd = true
	}
	e.timers.CancelAll(room.ID)
	room.Status = models.StatusPaused
	room.Phase = paused
	e.emit(room, EventGamePaused, map[string]interface{}{
		"reason":     reason,
		"minPlayers": room.Settings.MinPlayers,
	})
	e.logger.Info("game paused", zap.String("room", room.ID), zap.String("reason", reason))
	e.promoteSpectators(room)
}

// resume continues a paused game once enough players are active again. An
// interrupted round continues with the same word and remaining time if its
// drawer is still active; otherwise that round is closed and the game moves
// on to the next one.
func (e *Engine) resume(room *models.Room) {
	paused, ok := room.Phase.(*models.Paused)
	if !ok || room.Status != models.StatusPaused {
		return
	}
	e.promoteSpectators(room)
	if len(room.ActivePlayers()) < room.Settings.MinPlayers {
		return
	}
	if d := paused.Suspended; d != nil {
		switch {
		case paused.Remaining <= 0:
			e.closeSuspended(room, paused, models.ReasonTimeout)
		case !e.isActive(room, d.Drawer):
			e.closeSuspended(room, paused, models.ReasonDrawerLeft)
		}
	}
	room.Status = models.StatusPlaying
	e.emit(room, EventGameResumed, map[string]interface{}{"round": room.Round})
	e.logger.Info("game resumed", zap.String("room", room.ID), zap.Int("round", room.Round))

	switch {
	case paused.Suspended != nil:
		d := paused.Suspended
		d.StartedAt = e.now().Add(paused.Remaining - d.Duration)
		room.Phase = d
		e.announceRound(room, d, true)
		e.armRound(room, d)
	case paused.AfterRoundEnd:
		room.Phase = &models.RoundEnd{}
		e.advanceRound(room.ID)
	default:
		e.enterCountdown(room)
	}
}

// closeSuspended ends the round interrupted by a pause when it cannot
// continue. The room stays paused; resuming advances to the next round.
func (e *Engine) closeSuspended(room *models.Room, paused *models.Paused, reason models.EndReason) {
	d := paused.Suspended
	if d == nil {
		return
	}
	paused.Suspended = nil
	paused.Remaining = 0
	paused.AfterRoundEnd = true
	e.revealRound(room, d, reason)
}

func (e *Engine) isActive(room *models.Room, playerID string) bool {
	p, _ := room.FindPlayer(playerID)
	return p != nil && p.Active()
}

// nextDrawer walks the players in join order starting after the previous
// drawer's seat, skipping inactive players and, when anyone else is
// eligible, the previous drawer.
func (e *Engine) nextDrawer(room *models.Room) *models.Player {
	n := len(room.Players)
	eligible := len(room.ActivePlayers())
	if eligible == 0 {
		return nil
	}
	for step := 1; step <= n; step++ {
		i := (room.DrawerCursor + step) % n
		p := room.Players[i]
		if !p.Active() {
			continue
		}
		if p.ID == room.LastDrawerID && eligible > 1 {
			continue
		}
		room.DrawerCursor = i
		room.LastDrawerID = p.ID
		return p
	}
	return nil
}
