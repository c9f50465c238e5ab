// Package storage はドナーデータ永続化のインターフェースと実装を提供する。
package storage

import (
	"context"
	"sort"

	"github.com/hitoshi/donordesk/internal/model"
)

// Storage はドナーコレクションに対する永続化操作のインターフェース。
// すべてのバックエンドが同一の契約で実装する。
type Storage interface {
	// ListDonors は全ドナーを登録日時の新しい順で返す。
	ListDonors(ctx context.Context) ([]model.Donor, error)

	// GetDonor は指定IDのドナーを取得する。見つからない場合はnilを返す。
	GetDonor(ctx context.Context, id string) (*model.Donor, error)

	// CreateDonor はドナーを新規作成する。
	// IDと登録日時はストレージ側で付与し、作成されたドナーを返す。
	CreateDonor(ctx context.Context, in model.InsertDonor) (*model.Donor, error)

	// UpdateDonor は指定IDのドナーの可変フィールドを上書きする。
	// IDと登録日時は保持される。見つからない場合はnilを返す。
	UpdateDonor(ctx context.Context, id string, in model.InsertDonor) (*model.Donor, error)

	// DeleteDonor は指定IDのドナーを削除する。
	// 実際に削除された場合はtrue、該当IDが存在しない場合はfalseを返す。
	DeleteDonor(ctx context.Context, id string) (bool, error)
}

// sortMostRecentFirst はドナーのスライスを登録日時の新しい順に並べ替える。
// 登録日時が同一の場合は元の並びを保つ。
func sortMostRecentFirst(donors []model.Donor) {
	sort.SliceStable(donors, func(i, j int) bool {
		return donors[i].AddedAt.After(donors[j].AddedAt)
	})
}
