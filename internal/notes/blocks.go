package notes

import (
	"context"
	"encoding/json"
	"errors"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// NewBlock carries the input for block creation. Content is kept as raw JSON
// and validated against the block type before it is stored.
type NewBlock struct {
	NoteID     uint
	ParentID   *uint
	Type       BlockType
	Content    json.RawMessage
	OrderIndex int
}

// BlockPatch carries a partial block update. Nil fields are left untouched.
type BlockPatch struct {
	Content    json.RawMessage
	OrderIndex *int
	ParentID   *uint
}

// CreateBlock appends a block to a note the user owns. A note that does not
// exist resolves the same way as a note owned by someone else.
func (s *Service) CreateBlock(ctx context.Context, userID uint, input NewBlock) (Block, error) {
	if err := ValidateContent(input.Type, input.Content); err != nil {
		return Block{}, err
	}

	block := Block{
		NoteID:     input.NoteID,
		ParentID:   input.ParentID,
		Type:       input.Type,
		Content:    storedContent(input.Content),
		OrderIndex: input.OrderIndex,
	}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owned, err := ownsNote(tx, userID, input.NoteID)
		if err != nil {
			return newServiceError(opCreateBlock, "ownership_check_failed", err)
		}
		if !owned {
			return ErrNoteNotFound
		}
		return tx.Create(&block).Error
	})
	if err != nil {
		if !errors.Is(err, ErrNoteNotFound) {
			s.logError(opCreateBlock, "insert_failed", err, zap.Uint("user_id", userID), zap.Uint("note_id", input.NoteID))
		}
		return Block{}, err
	}
	return block, nil
}

// UpdateBlock applies the provided fields to an existing block after the
// transitive ownership check against its parent note.
func (s *Service) UpdateBlock(ctx context.Context, userID, blockID uint, patch BlockPatch) (Block, error) {
	var block Block
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Where("id = ?", blockID).Take(&block).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlockNotFound
		}
		if err != nil {
			return newServiceError(opUpdateBlock, "query_failed", err)
		}

		owned, err := ownsNote(tx, userID, block.NoteID)
		if err != nil {
			return newServiceError(opUpdateBlock, "ownership_check_failed", err)
		}
		if !owned {
			return ErrForbidden
		}

		if patch.Content != nil {
			if err := ValidateContent(block.Type, patch.Content); err != nil {
				return err
			}
			block.Content = storedContent(patch.Content)
		}
		if patch.OrderIndex != nil {
			block.OrderIndex = *patch.OrderIndex
		}
		if patch.ParentID != nil {
			block.ParentID = patch.ParentID
		}

		return tx.Save(&block).Error
	})
	if err != nil {
		if isUnexpected(err) {
			s.logError(opUpdateBlock, "transaction_failed", err, zap.Uint("user_id", userID), zap.Uint("block_id", blockID))
		}
		return Block{}, err
	}
	return block, nil
}

// DeleteBlock removes a block after the transitive ownership check.
func (s *Service) DeleteBlock(ctx context.Context, userID, blockID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var block Block
		err := tx.Where("id = ?", blockID).Take(&block).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrBlockNotFound
		}
		if err != nil {
			return newServiceError(opDeleteBlock, "query_failed", err)
		}

		owned, err := ownsNote(tx, userID, block.NoteID)
		if err != nil {
			return newServiceError(opDeleteBlock, "ownership_check_failed", err)
		}
		if !owned {
			return ErrForbidden
		}

		return tx.Delete(&block).Error
	})
	if err != nil && isUnexpected(err) {
		s.logError(opDeleteBlock, "transaction_failed", err, zap.Uint("user_id", userID), zap.Uint("block_id", blockID))
	}
	return err
}

// ReorderBlocks applies a batch of block position updates. Every listed block
// must belong to a note the user owns or the whole batch is rejected before
// any write; the accepted batch commits in a single transaction.
func (s *Service) ReorderBlocks(ctx context.Context, userID uint, batch []OrderUpdate) ([]Block, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	ids := make([]uint, 0, len(batch))
	for _, entry := range batch {
		ids = append(ids, entry.ID)
	}

	var updated []Block
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ownedCount int64
		err := tx.Model(&Block{}).
			Joins("JOIN notes ON notes.id = blocks.note_id").
			Where("blocks.id IN ? AND notes.user_id = ?", ids, userID).
			Count(&ownedCount).Error
		if err != nil {
			return newServiceError(opReorderBlocks, "ownership_check_failed", err)
		}
		if ownedCount != int64(len(uniqueIDs(ids))) {
			return ErrForbidden
		}

		for _, entry := range batch {
			err := tx.Model(&Block{}).
				Where("id = ?", entry.ID).
				Update("order_index", entry.OrderIndex).Error
			if err != nil {
				return newServiceError(opReorderBlocks, "update_failed", err)
			}
		}

		return tx.Where("id IN ?", ids).
			Order("order_index ASC").
			Find(&updated).Error
	})
	if err != nil {
		if !errors.Is(err, ErrForbidden) {
			s.logError(opReorderBlocks, "transaction_failed", err, zap.Uint("user_id", userID))
		}
		return nil, err
	}
	return updated, nil
}

// storedContent normalizes absent content to an explicit JSON null so the
// column round-trips cleanly.
func storedContent(raw json.RawMessage) string {
	if isEmptyContent(raw) {
		return "null"
	}
	return string(raw)
}

// isUnexpected filters the caller-facing sentinels out of error logging.
func isUnexpected(err error) bool {
	return err != nil &&
		!errors.Is(err, ErrBlockNotFound) &&
		!errors.Is(err, ErrNoteNotFound) &&
		!errors.Is(err, ErrForbidden) &&
		!errors.Is(err, ErrInvalidContent) &&
		!errors.Is(err, ErrInvalidBlockType)
}
