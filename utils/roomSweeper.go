package utils

import (
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Sweeper removes expired rooms and reports how many it removed.
type Sweeper interface {
	Sweep() int
}

// StartRoomSweeper は schedule ごとに空室・放置ルームを掃除するCronジョブを起動します。
func StartRoomSweeper(sweeper Sweeper, schedule string, logger *zap.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := sweeper.Sweep(); n > 0 {
			logger.Info("期限切れルームを削除しました", zap.Int("rooms_deleted", n))
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
