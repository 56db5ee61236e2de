package notes

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	errMissingDatabase = errors.New("database handle is required")
	noOpLogger         = zap.NewNop()
)

// ServiceConfig describes the dependencies of the notes service.
type ServiceConfig struct {
	Database *gorm.DB
	Logger   *zap.Logger
}

// Service provides user-scoped CRUD and reordering over notes and blocks.
// Every operation takes the acting user's id; ownership is enforced here,
// not in the HTTP layer.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService constructs the notes service.
func NewService(cfg ServiceConfig) (*Service, error) {
	if cfg.Database == nil {
		return nil, newServiceError(opServiceNew, "missing_database", errMissingDatabase)
	}
	logger := cfg.Logger
	if logger == nil {
		logger = noOpLogger
	}
	return &Service{db: cfg.Database, logger: logger}, nil
}

// List returns the user's notes ordered by position.
func (s *Service) List(ctx context.Context, userID uint) ([]Note, error) {
	var results []Note
	err := s.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("order_index ASC").
		Find(&results).Error
	if err != nil {
		s.logError(opListNotes, "query_failed", err, zap.Uint("user_id", userID))
		return nil, newServiceError(opListNotes, "query_failed", err)
	}
	return results, nil
}

// Get returns one note with its blocks in position order. A note owned by
// another user resolves the same way as a missing one.
func (s *Service) Get(ctx context.Context, userID, noteID uint) (Note, error) {
	var note Note
	err := s.db.WithContext(ctx).
		Preload("Blocks", func(db *gorm.DB) *gorm.DB {
			return db.Order("order_index ASC")
		}).
		Where("id = ? AND user_id = ?", noteID, userID).
		Take(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Note{}, ErrNoteNotFound
	}
	if err != nil {
		s.logError(opGetNote, "query_failed", err, zap.Uint("user_id", userID), zap.Uint("note_id", noteID))
		return Note{}, newServiceError(opGetNote, "query_failed", err)
	}
	return note, nil
}

// Create stores a new note at the end of the user's list.
func (s *Service) Create(ctx context.Context, userID uint, title string) (Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Note{}, ErrEmptyTitle
	}

	note := Note{Title: title, UserID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxIndex int
		err := tx.Model(&Note{}).
			Where("user_id = ?", userID).
			Select("COALESCE(MAX(order_index), -1)").
			Scan(&maxIndex).Error
		if err != nil {
			return err
		}
		note.OrderIndex = maxIndex + 1
		return tx.Create(&note).Error
	})
	if err != nil {
		s.logError(opCreateNote, "insert_failed", err, zap.Uint("user_id", userID))
		return Note{}, newServiceError(opCreateNote, "insert_failed", err)
	}
	return note, nil
}

// UpdateTitle renames an owned note.
func (s *Service) UpdateTitle(ctx context.Context, userID, noteID uint, title string) (Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return Note{}, ErrEmptyTitle
	}

	var note Note
	err := s.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", noteID, userID).
		Take(&note).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return Note{}, ErrNoteNotFound
	}
	if err != nil {
		s.logError(opUpdateNote, "query_failed", err, zap.Uint("user_id", userID), zap.Uint("note_id", noteID))
		return Note{}, newServiceError(opUpdateNote, "query_failed", err)
	}

	note.Title = title
	if err := s.db.WithContext(ctx).Save(&note).Error; err != nil {
		s.logError(opUpdateNote, "save_failed", err, zap.Uint("user_id", userID), zap.Uint("note_id", noteID))
		return Note{}, newServiceError(opUpdateNote, "save_failed", err)
	}
	return note, nil
}

// Delete removes an owned note together with all its blocks. The child
// deletion and the note deletion commit together or not at all.
func (s *Service) Delete(ctx context.Context, userID, noteID uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var note Note
		err := tx.Where("id = ? AND user_id = ?", noteID, userID).Take(&note).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNoteNotFound
		}
		if err != nil {
			return newServiceError(opDeleteNote, "query_failed", err)
		}
		if err := tx.Where("note_id = ?", noteID).Delete(&Block{}).Error; err != nil {
			return newServiceError(opDeleteNote, "block_delete_failed", err)
		}
		if err := tx.Delete(&note).Error; err != nil {
			return newServiceError(opDeleteNote, "note_delete_failed", err)
		}
		return nil
	})
	if err != nil && !errors.Is(err, ErrNoteNotFound) {
		s.logError(opDeleteNote, "transaction_failed", err, zap.Uint("user_id", userID), zap.Uint("note_id", noteID))
	}
	return err
}

// Reorder applies a batch of note position updates. Every listed id must be
// owned by the user or the whole batch is rejected before any write; the
// accepted batch commits in a single transaction.
func (s *Service) Reorder(ctx context.Context, userID uint, batch []OrderUpdate) ([]Note, error) {
	if len(batch) == 0 {
		return nil, ErrEmptyBatch
	}

	ids := make([]uint, 0, len(batch))
	for _, entry := range batch {
		ids = append(ids, entry.ID)
	}

	var updated []Note
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ownedCount int64
		err := tx.Model(&Note{}).
			Where("user_id = ? AND id IN ?", userID, ids).
			Count(&ownedCount).Error
		if err != nil {
			return newServiceError(opReorderNotes, "ownership_check_failed", err)
		}
		if ownedCount != int64(len(uniqueIDs(ids))) {
			return ErrForbidden
		}

		for _, entry := range batch {
			err := tx.Model(&Note{}).
				Where("id = ?", entry.ID).
				Update("order_index", entry.OrderIndex).Error
			if err != nil {
				return newServiceError(opReorderNotes, "update_failed", err)
			}
		}

		return tx.Where("id IN ?", ids).
			Order("order_index ASC").
			Find(&updated).Error
	})
	if err != nil {
		if !errors.Is(err, ErrForbidden) {
			s.logError(opReorderNotes, "transaction_failed", err, zap.Uint("user_id", userID))
		}
		return nil, err
	}
	return updated, nil
}

// ownsNote reports whether the note exists and belongs to the user. Used by
// every block mutation so the transitive permission check lives in one place.
func ownsNote(tx *gorm.DB, userID, noteID uint) (bool, error) {
	var count int64
	err := tx.Model(&Note{}).
		Where("id = ? AND user_id = ?", noteID, userID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func uniqueIDs(ids []uint) []uint {
	seen := make(map[uint]struct{}, len(ids))
	out := make([]uint, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func (s *Service) logError(operation, reason string, err error, fields ...zap.Field) {
	attrs := []zap.Field{
		zap.String("operation", operation),
		zap.String("reason", reason),
	}
	if err != nil {
		attrs = append(attrs, zap.Error(err))
	}
	attrs = append(attrs, fields...)
	s.logger.Error("notes service error", attrs...)
}
