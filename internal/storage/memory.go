package storage

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/donordesk/internal/model"
)

// MemoryStorage はメモリ上のみでドナーを保持するストレージ。
// プロセス終了で消える。テストおよび開発用。
type MemoryStorage struct {
	mu     sync.RWMutex
	donors []model.Donor
}

// NewMemoryStorage は空のMemoryStorageを生成する。
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{donors: []model.Donor{}}
}

// ListDonors は全ドナーを登録日時の新しい順で返す。
func (s *MemoryStorage) ListDonors(ctx context.Context) ([]model.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	donors := make([]model.Donor, len(s.donors))
	copy(donors, s.donors)
	sortMostRecentFirst(donors)
	return donors, nil
}

// GetDonor は指定IDのドナーを取得する。見つからない場合はnilを返す。
func (s *MemoryStorage) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, d := range s.donors {
		if d.ID == id {
			donor := d
			return &donor, nil
		}
	}
	return nil, nil
}

// CreateDonor はIDと登録日時を付与してドナーを追加する。
func (s *MemoryStorage) CreateDonor(ctx context.Context, in model.InsertDonor) (*model.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donor := model.Donor{
		ID:         uuid.NewString(),
		Name:       in.Name,
		BloodGroup: in.BloodGroup,
		Phone:      in.Phone,
		AddedAt:    time.Now().UTC(),
	}
	s.donors = append(s.donors, donor)
	return &donor, nil
}

// UpdateDonor は可変フィールドのみを上書きする。見つからない場合はnilを返す。
func (s *MemoryStorage) UpdateDonor(ctx context.Context, id string, in model.InsertDonor) (*model.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.donors {
		if s.donors[i].ID != id {
			continue
		}
		s.donors[i].Name = in.Name
		s.donors[i].BloodGroup = in.BloodGroup
		s.donors[i].Phone = in.Phone
		donor := s.donors[i]
		return &donor, nil
	}
	return nil, nil
}

// DeleteDonor は指定IDのドナーを取り除く。削除された場合にtrueを返す。
func (s *MemoryStorage) DeleteDonor(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.donors {
		if s.donors[i].ID == id {
			s.donors = append(s.donors[:i], s.donors[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// compile-time interface check
var _ Storage = (*MemoryStorage)(nil)
