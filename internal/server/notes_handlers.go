package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/inkpad-app/inkpad/internal/notes"
)

type notePayload struct {
	ID         uint      `json:"id"`
	Title      string    `json:"title"`
	UserID     uint      `json:"userId"`
	OrderIndex int       `json:"orderIndex"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type noteDetailPayload struct {
	notePayload
	Blocks []blockPayload `json:"blocks"`
}

type blockPayload struct {
	ID         uint            `json:"id"`
	NoteID     uint            `json:"noteId"`
	ParentID   *uint           `json:"parentId"`
	Type       string          `json:"type"`
	Content    json.RawMessage `json:"content"`
	OrderIndex int             `json:"orderIndex"`
	CreatedAt  time.Time       `json:"createdAt"`
	UpdatedAt  time.Time       `json:"updatedAt"`
}

type orderUpdatePayload struct {
	ID         uint `json:"id"`
	OrderIndex int  `json:"orderIndex"`
}

func toNotePayload(note notes.Note) notePayload {
	return notePayload{
		ID:         note.ID,
		Title:      note.Title,
		UserID:     note.UserID,
		OrderIndex: note.OrderIndex,
		CreatedAt:  note.CreatedAt,
		UpdatedAt:  note.UpdatedAt,
	}
}

func toBlockPayload(block notes.Block) blockPayload {
	content := json.RawMessage("null")
	if block.Content != "" {
		content = json.RawMessage(block.Content)
	}
	return blockPayload{
		ID:         block.ID,
		NoteID:     block.NoteID,
		ParentID:   block.ParentID,
		Type:       string(block.Type),
		Content:    content,
		OrderIndex: block.OrderIndex,
		CreatedAt:  block.CreatedAt,
		UpdatedAt:  block.UpdatedAt,
	}
}

func (h *httpHandler) handleListNotes(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	results, err := h.notesService.List(c.Request.Context(), userID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	payload := make([]notePayload, 0, len(results))
	for _, note := range results {
		payload = append(payload, toNotePayload(note))
	}
	c.JSON(http.StatusOK, payload)
}

func (h *httpHandler) handleGetNote(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	noteID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	note, err := h.notesService.Get(c.Request.Context(), userID, noteID)
	if err != nil {
		h.respondError(c, err)
		return
	}

	detail := noteDetailPayload{
		notePayload: toNotePayload(note),
		Blocks:      make([]blockPayload, 0, len(note.Blocks)),
	}
	for _, block := range note.Blocks {
		detail.Blocks = append(detail.Blocks, toBlockPayload(block))
	}
	c.JSON(http.StatusOK, detail)
}

func (h *httpHandler) handleCreateNote(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var request struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	note, err := h.notesService.Create(c.Request.Context(), userID, request.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toNotePayload(note))
}

func (h *httpHandler) handleUpdateNote(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	noteID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	var request struct {
		Title string `json:"title"`
	}
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	note, err := h.notesService.UpdateTitle(c.Request.Context(), userID, noteID, request.Title)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toNotePayload(note))
}

func (h *httpHandler) handleDeleteNote(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}
	noteID, ok := pathID(c)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
		return
	}

	if err := h.notesService.Delete(c.Request.Context(), userID, noteID); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "deleted"})
}

func (h *httpHandler) handleReorderNotes(c *gin.Context) {
	userID, ok := h.actingUser(c)
	if !ok {
		return
	}

	var request struct {
		Notes []orderUpdatePayload `json:"notes"`
	}
	if err := c.ShouldBindJSON(&request); err != nil || request.Notes == nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}

	batch := make([]notes.OrderUpdate, 0, len(request.Notes))
	for _, entry := range request.Notes {
		batch = append(batch, notes.OrderUpdate{ID: entry.ID, OrderIndex: entry.OrderIndex})
	}

	updated, err := h.notesService.Reorder(c.Request.Context(), userID, batch)
	if err != nil {
		h.respondError(c, err)
		return
	}

	payload := make([]notePayload, 0, len(updated))
	for _, note := range updated {
		payload = append(payload, toNotePayload(note))
	}
	c.JSON(http.StatusOK, gin.H{"message": "reordered", "updates": payload})
}
