package notes

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// BlockType enumerates the supported block kinds.
type BlockType string

const (
	BlockTypeText      BlockType = "text"
	BlockTypeChecklist BlockType = "checklist"
	BlockTypeImage     BlockType = "image"
	BlockTypeCode      BlockType = "code"
)

var (
	// ErrInvalidBlockType indicates an unknown or empty block type.
	ErrInvalidBlockType = errors.New("notes: invalid block type")
	// ErrInvalidContent indicates a content payload that does not match the
	// block type's shape.
	ErrInvalidContent = errors.New("notes: invalid block content")
)

// ChecklistContent is the structured payload of a checklist block.
type ChecklistContent struct {
	Text    string `json:"text"`
	Checked bool   `json:"checked"`
}

// ParseBlockType validates raw input and returns a BlockType.
func ParseBlockType(rawInput string) (BlockType, error) {
	switch BlockType(strings.TrimSpace(rawInput)) {
	case BlockTypeText:
		return BlockTypeText, nil
	case BlockTypeChecklist:
		return BlockTypeChecklist, nil
	case BlockTypeImage:
		return BlockTypeImage, nil
	case BlockTypeCode:
		return BlockTypeCode, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidBlockType, rawInput)
	}
}

// ValidateContent checks a raw JSON content payload against the block type.
// Content is a tagged union: text, code and image blocks carry a JSON string
// (plain text, source, or an asset URL); checklist blocks carry
// {"text": ..., "checked": ...}. Absent or null content is accepted so
// clients can create empty blocks first and fill them in on autosave.
func ValidateContent(blockType BlockType, raw json.RawMessage) error {
	if isEmptyContent(raw) {
		return nil
	}

	switch blockType {
	case BlockTypeText, BlockTypeImage, BlockTypeCode:
		var text string
		if err := json.Unmarshal(raw, &text); err != nil {
			return fmt.Errorf("%w: %s block requires a string payload", ErrInvalidContent, blockType)
		}
	case BlockTypeChecklist:
		var item ChecklistContent
		if err := json.Unmarshal(raw, &item); err != nil {
			return fmt.Errorf("%w: checklist block requires {text, checked}", ErrInvalidContent)
		}
	default:
		return fmt.Errorf("%w: %q", ErrInvalidBlockType, blockType)
	}
	return nil
}

func isEmptyContent(raw json.RawMessage) bool {
	trimmed := strings.TrimSpace(string(raw))
	return trimmed == "" || trimmed == "null"
}
