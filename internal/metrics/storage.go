package metrics

import (
	"context"
	"time"

	"github.com/hitoshi/donordesk/internal/model"
	"github.com/hitoshi/donordesk/internal/storage"
)

// InstrumentedStorage はStorageの各操作のレイテンシと失敗を計測するデコレータ。
// ハンドラーからは通常のStorageとして見える。
type InstrumentedStorage struct {
	inner     storage.Storage
	collector *Collector
}

// InstrumentStorage は計測付きのStorageを生成する。
func InstrumentStorage(inner storage.Storage, collector *Collector) *InstrumentedStorage {
	return &InstrumentedStorage{inner: inner, collector: collector}
}

// ListDonors は全ドナー取得を計測付きで実行する。
func (s *InstrumentedStorage) ListDonors(ctx context.Context) ([]model.Donor, error) {
	start := time.Now()
	donors, err := s.inner.ListDonors(ctx)
	s.observe("list", start, err)
	return donors, err
}

// GetDonor は単一ドナー取得を計測付きで実行する。
func (s *InstrumentedStorage) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	start := time.Now()
	donor, err := s.inner.GetDonor(ctx, id)
	s.observe("get", start, err)
	return donor, err
}

// CreateDonor はドナー作成を計測付きで実行する。
func (s *InstrumentedStorage) CreateDonor(ctx context.Context, in model.InsertDonor) (*model.Donor, error) {
	start := time.Now()
	donor, err := s.inner.CreateDonor(ctx, in)
	s.observe("create", start, err)
	if err == nil {
		s.collector.RecordDonorCreated()
	}
	return donor, err
}

// UpdateDonor はドナー更新を計測付きで実行する。
func (s *InstrumentedStorage) UpdateDonor(ctx context.Context, id string, in model.InsertDonor) (*model.Donor, error) {
	start := time.Now()
	donor, err := s.inner.UpdateDonor(ctx, id, in)
	s.observe("update", start, err)
	return donor, err
}

// DeleteDonor はドナー削除を計測付きで実行する。
func (s *InstrumentedStorage) DeleteDonor(ctx context.Context, id string) (bool, error) {
	start := time.Now()
	deleted, err := s.inner.DeleteDonor(ctx, id)
	s.observe("delete", start, err)
	if err == nil && deleted {
		s.collector.RecordDonorDeleted()
	}
	return deleted, err
}

// observe は操作のレイテンシと失敗を記録する。
func (s *InstrumentedStorage) observe(operation string, start time.Time, err error) {
	s.collector.RecordStorageLatency(operation, time.Since(start))
	if err != nil {
		s.collector.RecordStorageFailure(operation)
	}
}

// compile-time interface check
var _ storage.Storage = (*InstrumentedStorage)(nil)
