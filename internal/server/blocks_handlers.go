package server

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/inkpad-app/inkpad/internal/notes"
)

func (h *httpHandler) handleCreateBlock(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var request struct {
		NoteID     uint            `json:"noteId"`
		ParentID   *uint           `json:"parentId"`
		Type       string          `json:"type"`
		Content    json.RawMessage `json:"content"`
		OrderIndex int             `json:"orderIndex"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.NoteID == 0 || request.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "note_id_and_type_required"})
		return
	}

	blockType, err := notes.ParseBlockType(request.Type)
	if err != nil {
		h.respondError(c, err)
		return
	}

	block, err := h.notesService.CreateBlock(c.Request.Context(), userID, notes.NewBlock{
		NoteID:     request.NoteID,
		ParentID:   request.ParentID,
		Type:       blockType,
		Content:    request.Content,
		OrderIndex: request.OrderIndex,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBlockPayload(block))
}

func (h *httpHandler) handleUpdateBlock(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	blockID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	var request struct {
		Content    json.RawMessage `json:"content"`
		OrderIndex *int            `json:"orderIndex"`
		ParentID   *uint           `json:"parentId"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	block, err := h.notesService.UpdateBlock(c.Request.Context(), userID, blockID, notes.BlockPatch{
		Content:    request.Content,
		OrderIndex: request.OrderIndex,
		ParentID:   request.ParentID,
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBlockPayload(block))
}

func (h *httpHandler) handleDeleteBlock(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	blockID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	if err := h.notesService.DeleteBlock(c.Request.Context(), userID, blockID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *httpHandler) handleReorderBlocks(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var request struct {
		Blocks []orderUpdatePayload `json:"blocks"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.Blocks == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	batch := make([]notes.OrderUpdate, 0, len(request.Blocks))
	for _, entry := range request.Blocks {
		batch = append(batch, notes.OrderUpdate{ID: entry.ID, OrderIndex: entry.OrderIndex})
	}

	updated, err := h.notesService.ReorderBlocks(c.Request.Context(), userID, batch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	payload := make([]blockPayload, 0, len(updated))
	for _, block := range updated {
		payload = append(payload, toBlockPayload(block))
	}
	c.JSON(http.StatusOK, gin.H{"message": "reordered", "updates": payload})
}
