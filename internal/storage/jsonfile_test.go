package storage

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hitoshi/donordesk/internal/model"
)

func newTestJSONFileStorage(t *testing.T) (*JSONFileStorage, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "donors.json")
	return NewJSONFileStorage(path), path
}

func insertJaneDoe() model.InsertDonor {
	return model.InsertDonor{
		Name:       "Jane Doe",
		BloodGroup: model.BloodGroupONegative,
		Phone:      "5551234567",
	}
}

func TestJSONFileStorage_MissingFile_InitializedToEmptyArray(t *testing.T) {
	s, path := newTestJSONFileStorage(t)

	donors, err := s.ListDonors(context.Background())
	if err != nil {
		t.Fatalf("ListDonors failed: %v", err)
	}
	if len(donors) != 0 {
		t.Errorf("expected empty collection, got %d donors", len(donors))
	}

	// 初回アクセスで空配列のファイルが作成されること
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("donors file should have been created: %v", err)
	}
	if strings.TrimSpace(string(data)) != "[]" {
		t.Errorf("file content = %q, want empty JSON array", string(data))
	}
}

func TestJSONFileStorage_CreateThenGet_RoundTrip(t *testing.T) {
	s, _ := newTestJSONFileStorage(t)
	ctx := context.Background()

	before := time.Now().UTC()
	created, err := s.CreateDonor(ctx, insertJaneDoe())
	if err != nil {
		t.Fatalf("CreateDonor failed: %v", err)
	}

	if created.ID == "" {
		t.Error("created donor should have a generated id")
	}
	if created.Name != "Jane Doe" || created.BloodGroup != model.BloodGroupONegative || created.Phone != "5551234567" {
		t.Errorf("submitted fields should be unchanged: %+v", created)
	}
	if created.AddedAt.Before(before.Add(-time.Second)) || created.AddedAt.After(time.Now().UTC().Add(time.Second)) {
		t.Errorf("addedAt = %v, want close to current time", created.AddedAt)
	}

	got, err := s.GetDonor(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetDonor failed: %v", err)
	}
	if got == nil {
		t.Fatal("expected donor, got nil")
	}
	if got.ID != created.ID || got.Name != created.Name || got.BloodGroup != created.BloodGroup || got.Phone != created.Phone {
		t.Errorf("got %+v, want %+v", got, created)
	}
	if !got.AddedAt.Equal(created.AddedAt) {
		t.Errorf("addedAt = %v, want %v", got.AddedAt, created.AddedAt)
	}
}

func TestJSONFileStorage_GetDonor_NotFound_ReturnsNil(t *testing.T) {
	s, _ := newTestJSONFileStorage(t)

	got, err := s.GetDonor(context.Background(), "no-such-id")
	if err != nil {
		t.Fatalf("GetDonor failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil for unknown id, got %+v", got)
	}
}

// 削除後に作成しても以前のIDが再利用されないこと
func TestJSONFileStorage_IDsNeverReused(t *testing.T) {
	s, _ := newTestJSONFileStorage(t)
	ctx := context.Background()

	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		created, err := s.CreateDonor(ctx, insertJaneDoe())
		if err != nil {
			t.Fatalf("CreateDonor failed: %v", err)
		}
		if seen[created.ID] {
			t.Fatalf("id %q was reused", created.ID)
		}
		seen[created.ID] = true

		if _, err := s.DeleteDonor(ctx, created.ID); err != nil {
			t.Fatalf("DeleteDonor failed: %v", err)
		}
	}
}

func TestJSONFileStorage_Update_PreservesIDAndAddedAt(t *testing.T) {
	s, path := newTestJSONFileStorage(t)
	ctx := context.Background()

	created, err := s.CreateDonor(ctx, insertJaneDoe())
	if err != nil {
		t.Fatalf("CreateDonor failed: %v", err)
	}

	updated, err := s.UpdateDonor(ctx, created.ID, model.InsertDonor{
		Name:       "Jane D.",
		BloodGroup: model.BloodGroupONegative,
		Phone:      "5551234567",
	})
	if err != nil {
		t.Fatalf("UpdateDonor failed: %v", err)
	}
	if updated == nil {
		t.Fatal("expected updated donor, got nil")
	}
	if updated.Name != "Jane D." {
		t.Errorf("Name = %q, want %q", updated.Name, "Jane D.")
	}
	if updated.ID != created.ID {
		t.Errorf("ID changed: %q -> %q", created.ID, updated.ID)
	}
	if !updated.AddedAt.Equal(created.AddedAt) {
		t.Errorf("AddedAt changed: %v -> %v", created.AddedAt, updated.AddedAt)
	}

	// 別インスタンスで読み直しても更新が永続化されていること
	reread, err := NewJSONFileStorage(path).GetDonor(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetDonor after reopen failed: %v", err)
	}
	if reread == nil || reread.Name != "Jane D." {
		t.Errorf("update was not persisted: %+v", reread)
	}
}

func TestJSONFileStorage_Update_NotFound_LeavesCollectionUnchanged(t *testing.T) {
	s, _ := newTestJSONFileStorage(t)
	ctx := context.Background()

	created, err := s.CreateDonor(ctx, insertJaneDoe())
	if err != nil {
		t.Fatalf("CreateDonor failed: %v", err)
	}

	updated, err := s.UpdateDonor(ctx, "no-such-id", model.InsertDonor{
		Name:       "Someone Else",
		BloodGroup: model.BloodGroupAPositive,
		Phone:      "0000000000",
	})
	if err != nil {
		t.Fatalf("UpdateDonor failed: %v", err)
	}
	if updated != nil {
		t.Errorf("expected nil for unknown id, got %+v", updated)
	}

	donors, err := s.ListDonors(ctx)
	if err != nil {
		t.Fatalf("ListDonors failed: %v", err)
	}
	if len(donors) != 1 || donors[0].ID != created.ID || donors[0].Name != "Jane Doe" {
		t.Errorf("collection should be unchanged, got %+v", donors)
	}
}

func TestJSONFileStorage_Delete_Idempotence(t *testing.T) {
	s, _ := newTestJSONFileStorage(t)
	ctx := context.Background()

	created, err := s.CreateDonor(ctx, insertJaneDoe())
	if err != nil {
		t.Fatalf("CreateDonor failed: %v", err)
	}

	// 1回目はtrue
	deleted, err := s.DeleteDonor(ctx, created.ID)
	if err != nil {
		t.Fatalf("DeleteDonor failed: %v", err)
	}
	if !deleted {
		t.Error("first delete should return true")
	}

	// 2回目はfalse
	deleted, err = s.DeleteDonor(ctx, created.ID)
	if err != nil {
		t.Fatalf("second DeleteDonor failed: %v", err)
	}
	if deleted {
		t.Error("second delete should return false")
	}

	donors, err := s.ListDonors(ctx)
	if err != nil {
		t.Fatalf("ListDonors failed: %v", err)
	}
	for _, d := range donors {
		if d.ID == created.ID {
			t.Errorf("deleted id %q still present in list", created.ID)
		}
	}
}

func TestJSONFileStorage_Delete_NotFound_LeavesCollectionUnchanged(t *testing.T) {
	s, _ := newTestJSONFileStorage(t)
	ctx := context.Background()

	if _, err := s.CreateDonor(ctx, insertJaneDoe()); err != nil {
		t.Fatalf("CreateDonor failed: %v", err)
	}

	deleted, err := s.DeleteDonor(ctx, "no-such-id")
	if err != nil {
		t.Fatalf("DeleteDonor failed: %v", err)
	}
	if deleted {
		t.Error("delete of unknown id should return false")
	}

	donors, err := s.ListDonors(ctx)
	if err != nil {
		t.Fatalf("ListDonors failed: %v", err)
	}
	if len(donors) != 1 {
		t.Errorf("collection length changed: %d", len(donors))
	}
}

// 一覧は登録日時の新しい順で返ること
func TestJSONFileStorage_List_MostRecentFirst(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donors.json")

	// タイムスタンプを制御するためファイルを直接用意する
	content := `[
  {"id":"old","name":"Old","bloodGroup":"A+","phone":"1111111111","addedAt":"2025-01-01T00:00:00Z"},
  {"id":"newest","name":"Newest","bloodGroup":"B+","phone":"2222222222","addedAt":"2025-03-01T00:00:00Z"},
  {"id":"middle","name":"Middle","bloodGroup":"O+","phone":"3333333333","addedAt":"2025-02-01T00:00:00Z"}
]`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to seed donors file: %v", err)
	}

	donors, err := NewJSONFileStorage(path).ListDonors(context.Background())
	if err != nil {
		t.Fatalf("ListDonors failed: %v", err)
	}

	gotOrder := []string{}
	for _, d := range donors {
		gotOrder = append(gotOrder, d.ID)
	}
	wantOrder := []string{"newest", "middle", "old"}
	for i := range wantOrder {
		if gotOrder[i] != wantOrder[i] {
			t.Fatalf("order = %v, want %v", gotOrder, wantOrder)
		}
	}
}

// 壊れたJSONドキュメントは修復せずエラーになること
func TestJSONFileStorage_CorruptFile_ReturnsError(t *testing.T) {
	path := filepath.Join(t.TempDir(), "donors.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("failed to write corrupt file: %v", err)
	}

	s := NewJSONFileStorage(path)
	ctx := context.Background()

	if _, err := s.ListDonors(ctx); err == nil {
		t.Error("ListDonors on corrupt file should fail")
	}
	if _, err := s.GetDonor(ctx, "x"); err == nil {
		t.Error("GetDonor on corrupt file should fail")
	}
	if _, err := s.CreateDonor(ctx, insertJaneDoe()); err == nil {
		t.Error("CreateDonor on corrupt file should fail")
	}
	if _, err := s.UpdateDonor(ctx, "x", insertJaneDoe()); err == nil {
		t.Error("UpdateDonor on corrupt file should fail")
	}
	if _, err := s.DeleteDonor(ctx, "x"); err == nil {
		t.Error("DeleteDonor on corrupt file should fail")
	}

	// ファイルが書き換えられていないこと（自動修復しない）
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read file: %v", err)
	}
	if string(data) != "{not json" {
		t.Errorf("corrupt file was modified: %q", string(data))
	}
}

// 永続化形式の確認: camelCaseキーとISO-8601のaddedAt
func TestJSONFileStorage_PersistedShape(t *testing.T) {
	s, path := newTestJSONFileStorage(t)

	if _, err := s.CreateDonor(context.Background(), insertJaneDoe()); err != nil {
		t.Fatalf("CreateDonor failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read donors file: %v", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("persisted document should be a JSON array: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("expected 1 record, got %d", len(raw))
	}
	for _, key := range []string{"id", "name", "bloodGroup", "phone", "addedAt"} {
		if _, ok := raw[0][key]; !ok {
			t.Errorf("persisted record missing key %q: %v", key, raw[0])
		}
	}
	addedAt, ok := raw[0]["addedAt"].(string)
	if !ok {
		t.Fatalf("addedAt should be serialized as text, got %T", raw[0]["addedAt"])
	}
	if _, err := time.Parse(time.RFC3339, addedAt); err != nil {
		t.Errorf("addedAt %q is not ISO-8601: %v", addedAt, err)
	}
}

// 同一プロセス内の並行書き込みはmutexで直列化され、レコードが失われないこと。
//
// 既知の危険: このmutexは同一インスタンス内でのみ有効で、同じファイルを
// 別プロセス（または別インスタンス）が同時に書くread-modify-writeは
// 直列化されない。その場合は後勝ちで更新が失われる（lost update）。
// ファイル全体が一貫性の単位であり、原子性は保証されない。
func TestJSONFileStorage_ConcurrentWriters_SameInstance(t *testing.T) {
	s, _ := newTestJSONFileStorage(t)
	ctx := context.Background()

	const writers = 10
	var wg sync.WaitGroup
	errCh := make(chan error, writers)

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.CreateDonor(ctx, insertJaneDoe()); err != nil {
				errCh <- err
			}
		}()
	}
	wg.Wait()
	close(errCh)

	for err := range errCh {
		t.Fatalf("concurrent CreateDonor failed: %v", err)
	}

	donors, err := s.ListDonors(ctx)
	if err != nil {
		t.Fatalf("ListDonors failed: %v", err)
	}
	if len(donors) != writers {
		t.Errorf("expected %d donors, got %d", writers, len(donors))
	}
}
