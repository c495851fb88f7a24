package broadcast

import (
	"doodleserver/game"
	"doodleserver/models"
)

// Fanout delivers each event to every sink in order.
type Fanout []game.Sink

func (f Fanout) Publish(ev models.Event) {
	for _, s := range f {
		if s != nil {
			s.Publish(ev)
		}
	}
}
