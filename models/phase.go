package models

import "time"

type PhaseKind string

const (
	PhaseWaiting   PhaseKind = "waiting"
	PhaseCountdown PhaseKind = "countdown"
	PhaseDrawing   PhaseKind = "drawing"
	PhaseRoundEnd  PhaseKind = "round-end"
	PhasePaused    PhaseKind = "paused"
	PhaseFinished  PhaseKind = "finished"
)

// EndReason はラウンド終了の理由です。
type EndReason string

const (
	ReasonTimeout    EndReason = "timeout"
	ReasonGuess      EndReason = "guess"
	ReasonDrawerLeft EndReason = "drawer-left"
)

// Phase はラウンドのライフサイクル上の位置です。
// 描き手と単語は Drawing の間だけ存在します。
type Phase interface {
	Kind() PhaseKind
}

type Waiting struct{}

type Countdown struct {
	Remaining int
}

type Drawing struct {
	Drawer     string
	Word       string
	StartedAt  time.Time
	Duration   time.Duration
	HintsFired int
}

// Deadline is the instant the round timer reaches zero.
func (d *Drawing) Deadline() time.Time {
	return d.StartedAt.Add(d.Duration)
}

func (d *Drawing) Remaining(now time.Time) time.Duration {
	left := d.Deadline().Sub(now)
	if left < 0 {
		return 0
	}
	return left
}

func (d *Drawing) Elapsed(now time.Time) time.Duration {
	elapsed := now.Sub(d.StartedAt)
	if elapsed < 0 {
		return 0
	}
	if elapsed > d.Duration {
		return d.Duration
	}
	return elapsed
}

type RoundEnd struct {
	Reason EndReason
	Word   string
	Drawer string
}

// Paused keeps the interrupted round, if any, so it can resume with the same
// word and the remaining time.
type Paused struct {
	Suspended     *Drawing
	Remaining     time.Duration
	AfterRoundEnd bool
}

type Finished struct {
	Ranking []RankEntry
}

func (*Waiting) Kind() PhaseKind   { return PhaseWaiting }
func (*Countdown) Kind() PhaseKind { return PhaseCountdown }
func (*Drawing) Kind() PhaseKind   { return PhaseDrawing }
func (*RoundEnd) Kind() PhaseKind  { return PhaseRoundEnd }
func (*Paused) Kind() PhaseKind    { return PhasePaused }
func (*Finished) Kind() PhaseKind  { return PhaseFinished }

type RankEntry struct {
	Rank     int    `json:"rank"`
	PlayerID string `json:"playerId"`
	Name     string `json:"name"`
	Score    int    `json:"score"`
}
