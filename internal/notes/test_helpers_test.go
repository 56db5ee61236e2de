package notes

import (
	"fmt"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:notes_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&Note{}, &Block{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	service, err := NewService(ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to build notes service: %v", err)
	}
	return service, db
}

func seedNote(t *testing.T, db *gorm.DB, userID uint, title string, orderIndex int) Note {
	t.Helper()
	note := Note{Title: title, UserID: userID, OrderIndex: orderIndex}
	if err := db.Create(&note).Error; err != nil {
		t.Fatalf("failed to seed note: %v", err)
	}
	return note
}

func seedBlock(t *testing.T, db *gorm.DB, noteID uint, blockType BlockType, content string, orderIndex int) Block {
	t.Helper()
	block := Block{NoteID: noteID, Type: blockType, Content: content, OrderIndex: orderIndex}
	if err := db.Create(&block).Error; err != nil {
		t.Fatalf("failed to seed block: %v", err)
	}
	return block
}
