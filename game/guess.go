package game

import (
	"doodleserver/game/scoring"
	"doodleserver/game/words"
	"doodleserver/models"

	"go.uber.org/zap"
)

const maxStrokes = 5000

type GuessResult struct {
	Correct bool `json:"correct"`
	Points  int  `json:"points"`
	// Ignored is set when the guess arrived outside a drawing phase or
	// after the player had already guessed.
	Ignored bool `json:"ignored"`
}

// SubmitGuess checks text against the current word. Wrong guesses are relayed
// to the room as chat.
func (e *Engine) SubmitGuess(code, playerID, text string) (GuessResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.throttle(playerID, ActionGuess); err != nil {
		return GuessResult{}, err
	}
	room, err := e.lookup(code)
	if err != nil {
		return GuessResult{}, err
	}
	p, _ := room.FindPlayer(playerID)
	if p == nil {
		return GuessResult{}, ErrPlayerNotFound
	}
	if p.IsSpectator {
		return GuessResult{}, ErrSpectator
	}
	e.touch(room)
	res, err := e.guess(room, p, text)
	e.mirror(room)
	return res, err
}

func (e *Engine) guess(room *models.Room, p *models.Player, text string) (GuessResult, error) {
	d, ok := room.Drawing()
	if !ok || d.Drawer == p.ID || room.HasGuessed(p.ID) {
		// stale or already settled; never relay, the text may contain the word
		return GuessResult{Ignored: true}, nil
	}
	if !words.Matches(text, d.Word) {
		return GuessResult{}, e.relayChat(room, p, text, true)
	}

	points := scoring.ScoreGuess(d.Elapsed(e.now()), d.Duration)
	p.Score += points.Guesser
	entry := room.CurrentEntry()
	entry.GuessedBy = append(entry.GuessedBy, p.ID)
	drawerPoints := 0
	if drawer, _ := room.FindPlayer(d.Drawer); drawer != nil {
		drawer.Score += points.Drawer
		drawerPoints = points.Drawer
	}

	e.emit(room, EventCorrectGuess, map[string]interface{}{
		"playerId":     p.ID,
		"name":         p.Name,
		"points":       points.Guesser,
		"drawerPoints": drawerPoints,
	})
	e.emitPlayers(room)
	e.logger.Debug("correct guess",
		zap.String("room", room.ID),
		zap.String("player", p.ID),
		zap.Int("points", points.Guesser))

	if room.Settings.EndOnFirstGuess || e.allGuessed(room) {
		e.endRound(room, models.ReasonGuess)
	}
	return GuessResult{Correct: true, Points: points.Guesser}, nil
}

// allGuessed reports whether every active player other than the drawer has
// guessed the current word.
func (e *Engine) allGuessed(room *models.Room) bool {
	d, ok := room.Drawing()
	if !ok {
		return false
	}
	guessers := 0
	for _, p := range room.ActivePlayers() {
		if p.ID == d.Drawer {
			continue
		}
		guessers++
		if !room.HasGuessed(p.ID) {
			return false
		}
	}
	return guessers > 0
}

// Chat broadcasts a moderated message. A message that is exactly the current
// word counts as a guess from players who may still guess; any other message
// mentioning the word is blocked.
func (e *Engine) Chat(code, playerID, text string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.throttle(playerID, ActionChat); err != nil {
		return err
	}
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	p, _ := room.FindPlayer(playerID)
	if p == nil {
		return ErrPlayerNotFound
	}
	if !room.Settings.AllowChat {
		return ErrChatDisabled
	}
	e.touch(room)
	if d, ok := room.Drawing(); ok && words.Contains(text, d.Word) {
		canGuess := !p.IsSpectator && p.ID != d.Drawer && !room.HasGuessed(p.ID)
		if !canGuess || !words.Matches(text, d.Word) {
			return ErrMessageBlocked
		}
		_, err := e.guess(room, p, text)
		e.mirror(room)
		return err
	}
	return e.relayChat(room, p, text, false)
}

func (e *Engine) relayChat(room *models.Room, p *models.Player, text string, isGuess bool) error {
	verdict := e.moderator.ModerateMessage(p.ID, p.Name, text)
	if !verdict.Allowed {
		e.logger.Debug("chat message blocked",
			zap.String("room", room.ID),
			zap.String("player", p.ID),
			zap.String("action", verdict.Action))
		return ErrMessageBlocked
	}
	e.emit(room, EventChatMessage, map[string]interface{}{
		"playerId":   p.ID,
		"name":       p.Name,
		"text":       verdict.Filtered,
		"guess":      isGuess,
		"moderation": verdict.Action,
	})
	return nil
}

// DrawLine relays a stroke from the drawer to everyone else.
func (e *Engine) DrawLine(code, playerID string, stroke map[string]interface{}) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.throttle(playerID, ActionDraw); err != nil {
		return err
	}
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	d, ok := room.Drawing()
	if !ok || d.Drawer != playerID {
		return ErrNotDrawer
	}
	if len(room.Strokes) < maxStrokes {
		room.Strokes = append(room.Strokes, stroke)
	}
	e.touch(room)
	e.emitExcept(room, playerID, EventDrawLine, map[string]interface{}{"stroke": stroke})
	return nil
}

func (e *Engine) ClearCanvas(code, playerID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.throttle(playerID, ActionClearCanvas); err != nil {
		return err
	}
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	d, ok := room.Drawing()
	if !ok || d.Drawer != playerID {
		return ErrNotDrawer
	}
	room.Strokes = nil
	e.touch(room)
	e.emit(room, EventClearCanvas, nil)
	return nil
}

// WordHistory returns the words of the current game. The word of a round in
// progress is masked for everyone but its drawer.
func (e *Engine) WordHistory(code, playerID string) ([]models.WordHistoryEntry, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.throttle(playerID, ActionHistory); err != nil {
		return nil, err
	}
	room, err := e.lookup(code)
	if err != nil {
		return nil, err
	}
	if p, _ := room.FindPlayer(playerID); p == nil {
		return nil, ErrPlayerNotFound
	}
	history := make([]models.WordHistoryEntry, len(room.WordHistory))
	for i, entry := range room.WordHistory {
		entry.GuessedBy = append([]string(nil), entry.GuessedBy...)
		history[i] = entry
	}
	if d, ok := room.Drawing(); ok && d.Drawer != playerID && len(history) > 0 {
		last := &history[len(history)-1]
		last.Word = maskWord(last.Word)
	}
	return history, nil
}
