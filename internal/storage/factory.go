package storage

import (
	"database/sql"
	"fmt"
)

// New はバックエンド名からStorageを生成する。
//
// サポートするバックエンド:
//
//	"json"     - ローカルディスク上の単一JSONファイル（デフォルト）
//	"postgres" - PostgreSQLのdonorsテーブル（dbが必須）
//	"memory"   - メモリのみ（テスト用、プロセス終了で消える）
func New(backend string, db *sql.DB, filePath string) (Storage, error) {
	switch backend {
	case "json", "":
		return NewJSONFileStorage(filePath), nil
	case "postgres":
		if db == nil {
			return nil, fmt.Errorf("postgres backend requires a database connection")
		}
		return NewPostgresStorage(db), nil
	case "memory":
		return NewMemoryStorage(), nil
	default:
		return nil, fmt.Errorf("unknown storage backend: %q (supported: json, postgres, memory)", backend)
	}
}
