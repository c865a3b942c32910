package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/user/cinerag/internal/logging"
)

// defaultCheckpointInterval 默认检查间隔
const defaultCheckpointInterval = time.Minute

// CheckpointService 定时补写未保存成功的状态
// 每次修改都会立即保存，这里只负责在存储恢复后补齐失败的那次写入
type CheckpointService struct {
	session  *Session
	interval time.Duration
	log      zerolog.Logger
}

// NewCheckpointService 创建检查点服务
func NewCheckpointService(session *Session, interval time.Duration) *CheckpointService {
	if interval <= 0 {
		interval = defaultCheckpointInterval
	}
	return &CheckpointService{
		session:  session,
		interval: interval,
		log:      logging.Component("checkpoint"),
	}
}

// Start 启动定时任务，ctx 取消后退出
func (s *CheckpointService) Start(ctx context.Context) {
	ticker := time.NewTicker(s.interval)

	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.runCheckpoint(ctx)
			}
		}
	}()
}

// runCheckpoint 有未保存的修改时写入快照，返回是否写入成功
func (s *CheckpointService) runCheckpoint(ctx context.Context) bool {
	if !s.session.Dirty() {
		return false
	}

	if err := s.session.Save(ctx); err != nil {
		s.log.Warn().Err(err).Msg("checkpoint failed")
		return false
	}
	s.log.Info().Msg("pending changes saved")
	return true
}
