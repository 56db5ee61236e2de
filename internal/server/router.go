package server

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/inkpad-app/inkpad/internal/assets"
	"github.com/inkpad-app/inkpad/internal/auth"
	"github.com/inkpad-app/inkpad/internal/notes"
	"github.com/inkpad-app/inkpad/internal/users"
)

const userIDContextKey = "inkpad_user_id"

var (
	errMissingSessionManager = errors.New("session manager dependency required")
	errMissingUsersService   = errors.New("users service dependency required")
	errMissingNotesService   = errors.New("notes service dependency required")
	errMissingAssetsService  = errors.New("assets service dependency required")
)

// Dependencies wires the services the HTTP surface delegates to.
type Dependencies struct {
	Sessions      *auth.SessionManager
	UsersService  *users.Service
	NotesService  *notes.Service
	AssetsService *assets.Service
	AllowedOrigin string
	Logger        *zap.Logger
}

// NewHTTPHandler builds the REST router for the notes API.
func NewHTTPHandler(deps Dependencies) (http.Handler, error) {
	if deps.Sessions == nil {
		return nil, errMissingSessionManager
	}
	if deps.UsersService == nil {
		return nil, errMissingUsersService
	}
	if deps.NotesService == nil {
		return nil, errMissingNotesService
	}
	if deps.AssetsService == nil {
		return nil, errMissingAssetsService
	}

	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())

	allowedOrigin := deps.AllowedOrigin
	if allowedOrigin == "" {
		allowedOrigin = "http://localhost:5173"
	}
	// Session cookies require a concrete origin; a wildcard would break
	// credentialed requests.
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{allowedOrigin},
		AllowMethods: []string{
			http.MethodGet, http.MethodPost, http.MethodPut,
			http.MethodPatch, http.MethodDelete, http.MethodOptions,
		},
		AllowHeaders:     []string{"Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	handler := &httpHandler{
		sessions:      deps.Sessions,
		usersService:  deps.UsersService,
		notesService:  deps.NotesService,
		assetsService: deps.AssetsService,
		logger:        logger,
	}

	router.GET("/healthz", handler.handleHealth)
	router.Static(assets.URLPrefix, deps.AssetsService.Directory())

	api := router.Group("/api")
	api.POST("/auth/register", handler.handleRegister)
	api.POST("/auth/login", handler.handleLogin)
	api.POST("/auth/logout", handler.handleLogout)

	notesGroup := api.Group("/notes")
	notesGroup.Use(handler.authorizeRequest)
	notesGroup.GET("", handler.handleListNotes)
	notesGroup.GET("/:id", handler.handleGetNote)
	notesGroup.POST("", handler.handleCreateNote)
	notesGroup.PUT("/:id", handler.handleUpdateNote)
	notesGroup.DELETE("/:id", handler.handleDeleteNote)
	notesGroup.PATCH("/reorder", handler.handleReorderNotes)

	blocksGroup := api.Group("/blocks")
	blocksGroup.Use(handler.authorizeRequest)
	blocksGroup.POST("", handler.handleCreateBlock)
	blocksGroup.PUT("/:id", handler.handleUpdateBlock)
	blocksGroup.DELETE("/:id", handler.handleDeleteBlock)
	blocksGroup.PATCH("/reorder", handler.handleReorderBlocks)

	api.POST("/upload", handler.authorizeRequest, handler.handleUpload)

	return router, nil
}

type httpHandler struct {
	sessions      *auth.SessionManager
	usersService  *users.Service
	notesService  *notes.Service
	assetsService *assets.Service
	logger        *zap.Logger
}

func (h *httpHandler) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// authorizeRequest resolves the acting user from the session cookie and
// aborts with an uninformative 401 on any validation failure.
func (h *httpHandler) authorizeRequest(c *gin.Context) {
	userID, err := h.sessions.ValidateRequest(c.Request)
	if err != nil {
		if errors.Is(err, auth.ErrExpiredSessionToken) {
			h.logger.Info("session validation failed", zap.Error(err))
		} else if !errors.Is(err, auth.ErrMissingSessionToken) {
			h.logger.Warn("session validation failed", zap.Error(err))
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.Set(userIDContextKey, userID)
	c.Next()
}

func (h *httpHandler) actingUser(c *gin.Context) (uint, bool) {
	value, exists := c.Get(userIDContextKey)
	if !exists {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	userID, ok := value.(uint)
	if !ok || userID == 0 {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	return userID, true
}

// pathID parses the numeric :id segment. A malformed id resolves like a
// missing entity rather than a malformed request.
func pathID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// respondError maps domain sentinels onto the HTTP error taxonomy. Unknown
// failures surface as 500 with the service error code when one is present.
func (h *httpHandler) respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, users.ErrMissingCredentials):
		c.JSON(http.StatusBadRequest, gin.H{"error": "email_and_password_required"})
	case errors.Is(err, users.ErrEmailTaken):
		c.JSON(http.StatusConflict, gin.H{"error": "email_already_registered"})
	case errors.Is(err, users.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid_credentials"})
	case errors.Is(err, notes.ErrEmptyTitle):
		c.JSON(http.StatusBadRequest, gin.H{"error": "title_required"})
	case errors.Is(err, notes.ErrEmptyBatch):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
	case errors.Is(err, notes.ErrInvalidBlockType):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_block_type"})
	case errors.Is(err, notes.ErrInvalidContent):
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_block_content"})
	case errors.Is(err, notes.ErrNoteNotFound), errors.Is(err, notes.ErrBlockNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
	case errors.Is(err, notes.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	default:
		h.logger.Error("request failed", zap.Error(err))
		var serviceErr *notes.ServiceError
		if errors.As(err, &serviceErr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error", "code": serviceErr.Code()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
	}
}
