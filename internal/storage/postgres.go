package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/hitoshi/donordesk/internal/model"
)

// PostgresStorage はPostgreSQLのdonorsテーブルを使用するストレージ。
// リモートストアの行はsnake_caseカラム（blood_group、added_at）で持つため、
// メモリ上のcamelCase形との変換はdonorRowに集約する。
type PostgresStorage struct {
	db *sql.DB
}

// NewPostgresStorage はPostgresStorageを生成する。
func NewPostgresStorage(db *sql.DB) *PostgresStorage {
	return &PostgresStorage{db: db}
}

// donorRow はdonorsテーブルの1行を表す。
// カラム順: id, name, blood_group, phone, added_at
type donorRow struct {
	ID         string
	Name       string
	BloodGroup string
	Phone      string
	AddedAt    time.Time
}

// toModel は永続化された行形をメモリ上のドナー形に変換する。
func (r donorRow) toModel() model.Donor {
	return model.Donor{
		ID:         r.ID,
		Name:       r.Name,
		BloodGroup: model.BloodGroup(r.BloodGroup),
		Phone:      r.Phone,
		AddedAt:    r.AddedAt,
	}
}

// newDonorRow はメモリ上のドナー形を永続化する行形に変換する。
func newDonorRow(d model.Donor) donorRow {
	return donorRow{
		ID:         d.ID,
		Name:       d.Name,
		BloodGroup: string(d.BloodGroup),
		Phone:      d.Phone,
		AddedAt:    d.AddedAt,
	}
}

// ListDonors は全ドナーを登録日時の新しい順で返す。
// 同時刻の行はidで並びを固定する。
func (s *PostgresStorage) ListDonors(ctx context.Context) ([]model.Donor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, blood_group, phone, added_at
		 FROM donors
		 ORDER BY added_at DESC, id`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list donors: %w", err)
	}
	defer rows.Close()

	donors := []model.Donor{}
	for rows.Next() {
		var r donorRow
		if err := rows.Scan(&r.ID, &r.Name, &r.BloodGroup, &r.Phone, &r.AddedAt); err != nil {
			return nil, fmt.Errorf("failed to scan donor row: %w", err)
		}
		donors = append(donors, r.toModel())
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate donor rows: %w", err)
	}
	return donors, nil
}

// GetDonor は指定IDのドナーを取得する。見つからない場合はnilを返す。
func (s *PostgresStorage) GetDonor(ctx context.Context, id string) (*model.Donor, error) {
	var r donorRow
	err := s.db.QueryRowContext(ctx,
		`SELECT id, name, blood_group, phone, added_at FROM donors WHERE id = $1`,
		id,
	).Scan(&r.ID, &r.Name, &r.BloodGroup, &r.Phone, &r.AddedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find donor by ID: %w", err)
	}

	donor := r.toModel()
	return &donor, nil
}

// CreateDonor はIDと登録日時を付与してドナーを挿入し、作成されたドナーを返す。
func (s *PostgresStorage) CreateDonor(ctx context.Context, in model.InsertDonor) (*model.Donor, error) {
	donor := model.Donor{
		ID:         uuid.NewString(),
		Name:       in.Name,
		BloodGroup: in.BloodGroup,
		Phone:      in.Phone,
		AddedAt:    time.Now().UTC(),
	}
	row := newDonorRow(donor)

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO donors (id, name, blood_group, phone, added_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		row.ID, row.Name, row.BloodGroup, row.Phone, row.AddedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert donor: %w", err)
	}
	return &donor, nil
}

// UpdateDonor は可変フィールドのみを上書きする。IDと登録日時は保持する。
// 見つからない場合はnilを返す。
func (s *PostgresStorage) UpdateDonor(ctx context.Context, id string, in model.InsertDonor) (*model.Donor, error) {
	var r donorRow
	err := s.db.QueryRowContext(ctx,
		`UPDATE donors
		 SET name = $1, blood_group = $2, phone = $3
		 WHERE id = $4
		 RETURNING id, name, blood_group, phone, added_at`,
		in.Name, string(in.BloodGroup), in.Phone, id,
	).Scan(&r.ID, &r.Name, &r.BloodGroup, &r.Phone, &r.AddedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update donor: %w", err)
	}

	donor := r.toModel()
	return &donor, nil
}

// DeleteDonor は指定IDのドナーを削除する。
// RowsAffectedで実際に削除されたかを判定する。
func (s *PostgresStorage) DeleteDonor(ctx context.Context, id string) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM donors WHERE id = $1`,
		id,
	)
	if err != nil {
		return false, fmt.Errorf("failed to delete donor: %w", err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rowsAffected > 0, nil
}

// compile-time interface check
var _ Storage = (*PostgresStorage)(nil)
