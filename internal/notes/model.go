package notes

import "time"

// Note is a titled, ordered container of blocks owned by one user.
type Note struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	Title      string    `gorm:"column:title;size:512;not null"`
	UserID     uint      `gorm:"column:user_id;not null;index:idx_notes_user_order,priority:1"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0;index:idx_notes_user_order,priority:2"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
	Blocks     []Block   `gorm:"foreignKey:NoteID"`
}

// TableName provides the explicit table binding for GORM.
func (Note) TableName() string {
	return "notes"
}

// Block is an ordered content unit inside a note. ParentID allows nesting;
// it is stored and echoed but carries no behavior here.
type Block struct {
	ID         uint      `gorm:"column:id;primaryKey;autoIncrement"`
	NoteID     uint      `gorm:"column:note_id;not null;index:idx_blocks_note_order,priority:1"`
	ParentID   *uint     `gorm:"column:parent_id"`
	Type       BlockType `gorm:"column:type;size:32;not null"`
	Content    string    `gorm:"column:content;type:text;not null;default:''"`
	OrderIndex int       `gorm:"column:order_index;not null;default:0;index:idx_blocks_note_order,priority:2"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName provides the explicit table binding for GORM.
func (Block) TableName() string {
	return "blocks"
}

// OrderUpdate is one entry of a reorder batch.
type OrderUpdate struct {
	ID         uint
	OrderIndex int
}
