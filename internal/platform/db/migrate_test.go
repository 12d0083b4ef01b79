package db

import (
	"reflect"
	"testing"
	"testing/fstest"
)

func TestMigrationFilesSortedSQLOnly(t *testing.T) {
	fsys := fstest.MapFS{
		"0002_reviews_index.sql": {Data: []byte("CREATE INDEX ...")},
		"0001_performance.sql":   {Data: []byte("CREATE TABLE ...")},
		"README.md":              {Data: []byte("notes")},
		"archive/0000_old.sql":   {Data: []byte("-- ignored")},
	}
	files, err := migrationFiles(fsys)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"0001_performance.sql", "0002_reviews_index.sql"}
	if !reflect.DeepEqual(files, want) {
		t.Fatalf("expected %v, got %v", want, files)
	}
}
