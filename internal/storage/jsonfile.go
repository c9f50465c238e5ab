package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/donordesk/internal/model"
)

// JSONFileStorage はローカルディスク上の単一JSONドキュメントを使用するストレージ。
// ドキュメントはドナーレコードの配列をそのまま保持し、
// 更新系の操作はすべて全件読み込み→メモリ上で変更→全件書き戻しで行う。
//
// mutexは同一プロセス内の書き込み競合のみを直列化する。
// 別プロセスから同じファイルに書き込んだ場合のread-modify-write競合は
// 検出されず、後勝ちで更新が失われる（既知の制限）。
type JSONFileStorage struct {
	mu   sync.Mutex
	path string
}

// NewJSONFileStorage は指定パスのファイルを使用するJSONFileStorageを生成する。
// ファイルは存在しなくてよく、初回アクセス時に空配列で作成される。
func NewJSONFileStorage(path string) *JSONFileStorage {
	return &JSONFileStorage{path: path}
}

// readDonors はファイル全体を読み込んでドナー配列にデコードする。
// ファイルが存在しない場合は空配列でファイルを作成してから空を返す。
// 壊れたJSONは修復せずエラーとして返す。
func (s *JSONFileStorage) readDonors() ([]model.Donor, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			if err := s.writeDonors([]model.Donor{}); err != nil {
				return nil, err
			}
			return []model.Donor{}, nil
		}
		return nil, fmt.Errorf("failed to read donors file: %w", err)
	}

	var donors []model.Donor
	if err := json.Unmarshal(data, &donors); err != nil {
		return nil, fmt.Errorf("failed to parse donors file: %w", err)
	}
	return donors, nil
}

// writeDonors はドナー配列全体をシリアライズしてファイルを上書きする。
func (s *JSONFileStorage) writeDonors(donors []model.Donor) error {
	b, err := json.MarshalIndent(donors, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode donors: %w", err)
	}
	if err := os.WriteFile(s.path, b, 0o644); err != nil {
		return fmt.Errorf("failed to write donors file: %w", err)
	}
	return nil
}

// ListDonors は全ドナーを登録日時の新しい順で返す。
func (s *JSONFileStorage) ListDonors(ctx context.Context) ([]model.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donors, err := s.readDonors()
	if err != nil {
		return nil, err
	}
	sortMostRecentFirst(donors)
	return donors, nil
}

// GetDonor は指定IDのドナーを取得する。見つからない場合はnilを返す。
func (s *JSONFileStorage) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donors, err := s.readDonors()
	if err != nil {
		return nil, err
	}
	for i := range donors {
		if donors[i].ID == id {
			return &donors[i], nil
		}
	}
	return nil, nil
}

// CreateDonor はIDと登録日時を付与してドナーを末尾に追加し、全件を書き戻す。
func (s *JSONFileStorage) CreateDonor(ctx context.Context, in model.InsertDonor) (*model.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donors, err := s.readDonors()
	if err != nil {
		return nil, err
	}

	donor := model.Donor{
		ID:         uuid.NewString(),
		Name:       in.Name,
		BloodGroup: in.BloodGroup,
		Phone:      in.Phone,
		AddedAt:    time.Now().UTC(),
	}
	donors = append(donors, donor)

	if err := s.writeDonors(donors); err != nil {
		return nil, err
	}
	return &donor, nil
}

// UpdateDonor は可変フィールドのみを上書きする。IDと登録日時は保持する。
// 見つからない場合はnilを返し、ファイルには書き込まない。
func (s *JSONFileStorage) UpdateDonor(ctx context.Context, id string, in model.InsertDonor) (*model.Donor, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donors, err := s.readDonors()
	if err != nil {
		return nil, err
	}

	for i := range donors {
		if donors[i].ID != id {
			continue
		}
		donors[i].Name = in.Name
		donors[i].BloodGroup = in.BloodGroup
		donors[i].Phone = in.Phone

		if err := s.writeDonors(donors); err != nil {
			return nil, err
		}
		updated := donors[i]
		return &updated, nil
	}
	return nil, nil
}

// DeleteDonor は指定IDのドナーをコレクションから取り除く。
// 削除前後の件数を比較して実際に削除されたかを判定し、
// 変化がなかった場合はファイルに書き込まずfalseを返す。
func (s *JSONFileStorage) DeleteDonor(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	donors, err := s.readDonors()
	if err != nil {
		return false, err
	}

	filtered := donors[:0:0]
	for _, d := range donors {
		if d.ID != id {
			filtered = append(filtered, d)
		}
	}
	if len(filtered) == len(donors) {
		return false, nil
	}

	if err := s.writeDonors(filtered); err != nil {
		return false, err
	}
	return true, nil
}

// compile-time interface check
var _ Storage = (*JSONFileStorage)(nil)
