package storage

import (
	"testing"
	"time"

	"github.com/hitoshi/donordesk/internal/model"
)

// PostgresStorageはStorageインターフェースを満たすことを検証
func TestPostgresStorage_ImplementsInterface(t *testing.T) {
	var _ Storage = (*PostgresStorage)(nil)
}

// NewPostgresStorageが正しく初期化されることを検証
func TestNewPostgresStorage_Initializes(t *testing.T) {
	s := NewPostgresStorage(nil)
	if s == nil {
		t.Fatal("expected non-nil storage")
	}
}

// 行形とメモリ形の変換が両方向で対称であることを検証
// （snake_caseカラム ⇄ camelCaseフィールドの変換はここに集約されている）
func TestDonorRow_MappingRoundTrip(t *testing.T) {
	addedAt := time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)
	donor := model.Donor{
		ID:         "donor-1",
		Name:       "Jane Doe",
		BloodGroup: model.BloodGroupABNegative,
		Phone:      "5551234567",
		AddedAt:    addedAt,
	}

	row := newDonorRow(donor)

	if row.ID != donor.ID {
		t.Errorf("row.ID = %q, want %q", row.ID, donor.ID)
	}
	if row.BloodGroup != "AB-" {
		t.Errorf("row.BloodGroup = %q, want %q", row.BloodGroup, "AB-")
	}
	if !row.AddedAt.Equal(addedAt) {
		t.Errorf("row.AddedAt = %v, want %v", row.AddedAt, addedAt)
	}

	back := row.toModel()
	if back != donor {
		t.Errorf("round trip changed the donor: %+v -> %+v", donor, back)
	}
}

// 行形からの変換で血液型が型付きの列挙値に戻ることを検証
func TestDonorRow_ToModel_BloodGroupTyped(t *testing.T) {
	row := donorRow{
		ID:         "donor-2",
		Name:       "John Roe",
		BloodGroup: "O+",
		Phone:      "0123456789",
		AddedAt:    time.Now().UTC(),
	}

	donor := row.toModel()
	if donor.BloodGroup != model.BloodGroupOPositive {
		t.Errorf("BloodGroup = %q, want %q", donor.BloodGroup, model.BloodGroupOPositive)
	}
	if !donor.BloodGroup.IsValid() {
		t.Error("mapped blood group should be a valid enumerated value")
	}
}
