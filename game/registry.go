package game

import (
	"errors"
	"strings"
	"unicode/utf8"

	"doodleserver/models"

	"go.uber.org/zap"
)

const (
	codeLength       = 6
	codeAlphabet     = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	defaultMaxRounds = 3
	maxRoundsLimit   = 10
	maxCustomWords   = 200
	maxWordLength    = 40
)

// CreateRoom creates a room with the requesting player as host.
func (e *Engine) CreateRoom(hostID, hostName string, cfg models.RoomConfig) (models.RoomSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	name, err := validName(hostName)
	if err != nil {
		return models.RoomSnapshot{}, err
	}
	if hostID == "" {
		return models.RoomSnapshot{}, invalidConfig(errors.New("missing player id"))
	}
	room, err := e.newRoom(cfg)
	if err != nil {
		return models.RoomSnapshot{}, err
	}

	now := e.now()
	room.Players = []*models.Player{{ID: hostID, Name: name, IsHost: true, JoinedAt: now}}
	room.HostID = hostID
	e.rooms[room.ID] = room
	e.roomsCreated++
	e.armIdle(room, e.inactivityTimeout)
	e.mirror(room)

	e.logger.Info("room created",
		zap.String("room", room.ID),
		zap.String("host", hostID),
		zap.Int("maxRounds", room.MaxRounds),
		zap.String("difficulty", room.Difficulty),
		zap.Bool("private", room.Private))
	return e.snapshot(room), nil
}

func (e *Engine) newRoom(cfg models.RoomConfig) (*models.Room, error) {
	maxRounds := cfg.MaxRounds
	if maxRounds == 0 {
		maxRounds = defaultMaxRounds
	}
	if maxRounds < 1 || maxRounds > maxRoundsLimit {
		return nil, invalidConfig(errors.New("maxRounds must be between 1 and 10"))
	}
	difficulty := strings.ToLower(strings.TrimSpace(cfg.Difficulty))
	switch difficulty {
	case "":
		difficulty = models.DifficultyMedium
	case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
	default:
		return nil, invalidConfig(errors.New("difficulty must be easy, medium or hard"))
	}
	settings := cfg.Apply(e.defaults)
	if err := settings.Validate(); err != nil {
		return nil, invalidConfig(err)
	}

	var custom []string
	for _, w := range cfg.CustomWords {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		if utf8.RuneCountInString(w) > maxWordLength {
			return nil, invalidConfig(errors.New("custom words must be at most 40 characters"))
		}
		custom = append(custom, w)
	}
	if len(custom) > maxCustomWords {
		return nil, invalidConfig(errors.New("too many custom words"))
	}

	now := e.now()
	return &models.Room{
		ID:           e.newCode(),
		Status:       models.StatusWaiting,
		Phase:        &models.Waiting{},
		MaxRounds:    maxRounds,
		Difficulty:   difficulty,
		Category:     strings.ToLower(strings.TrimSpace(cfg.Category)),
		CustomWords:  custom,
		Settings:     settings,
		Private:      cfg.Private,
		Password:     cfg.Password,
		Banned:       make(map[string]bool),
		DrawerCursor: -1,
		CreatedAt:    now,
		LastActivity: now,
	}, nil
}

// newCode returns a code not used by any live room.
func (e *Engine) newCode() string {
	buf := make([]byte, codeLength)
	for {
		for i := range buf {
			buf[i] = codeAlphabet[e.rand.Intn(len(codeAlphabet))]
		}
		code := string(buf)
		if _, taken := e.rooms[code]; !taken {
			return code
		}
	}
}

func validName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if n := utf8.RuneCountInString(name); n < 2 || n > 20 {
		return "", ErrInvalidName
	}
	return name, nil
}

func (e *Engine) GetRoom(code string) (models.RoomSnapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	room, err := e.lookup(code)
	if err != nil {
		return models.RoomSnapshot{}, err
	}
	return e.snapshot(room), nil
}

// DeleteRoom removes the room, cancels all its timers and notifies members.
func (e *Engine) DeleteRoom(code, reason string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	room, err := e.lookup(code)
	if err != nil {
		return err
	}
	e.deleteRoom(room, reason)
	return nil
}

func (e *Engine) deleteRoom(room *models.Room, reason string) {
	e.cancelRoomTimers(room.ID)
	e.emit(room, EventRoomDeleted, map[string]interface{}{"reason": reason})
	delete(e.rooms, room.ID)
	e.cache.Delete(CacheKey(room.ID))
	e.roomsDeleted++
	e.logger.Info("room deleted", zap.String("room", room.ID), zap.String("reason", reason))
}

// Sweep deletes rooms idle beyond the inactivity timeout and rooms empty
// beyond the empty-room grace. It returns how many rooms were deleted.
func (e *Engine) Sweep() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	now := e.now()
	deleted := 0
	for _, room := range e.rooms {
		switch {
		case len(room.Players) == 0 && !room.EmptySince.IsZero() && now.Sub(room.EmptySince) >= e.emptyRoomGrace:
			e.deleteRoom(room, "empty")
		case now.Sub(room.LastActivity) >= e.inactivityTimeout:
			e.deleteRoom(room, "inactive")
		default:
			continue
		}
		deleted++
	}
	return deleted
}
