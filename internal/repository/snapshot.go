package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/user/cinerag/internal/model"
)

var (
	// ErrNoSnapshot 尚无任何快照，不属于错误状态
	ErrNoSnapshot = errors.New("no snapshot")
	// ErrSnapshotVersion 快照版本不受支持
	ErrSnapshotVersion = errors.New("unsupported snapshot version")
	// ErrCorruptSnapshot 快照无法解析或结构不一致
	ErrCorruptSnapshot = errors.New("corrupt snapshot")
)

// SnapshotStore 持久化适配器：整体读写，写入总是覆盖
type SnapshotStore interface {
	Load(ctx context.Context) (*model.Snapshot, error)
	Save(ctx context.Context, snap *model.Snapshot) error
}

// checkSnapshot 校验版本与平行数组长度
func checkSnapshot(snap *model.Snapshot) error {
	if snap.Version != model.SnapshotVersion {
		return fmt.Errorf("%w: %q", ErrSnapshotVersion, snap.Version)
	}
	if _, err := snap.Entries(); err != nil {
		return fmt.Errorf("%w: %v", ErrCorruptSnapshot, err)
	}
	return nil
}
