package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	sqlite "github.com/glebarez/sqlite"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/inkpad-app/inkpad/internal/assets"
	"github.com/inkpad-app/inkpad/internal/auth"
	"github.com/inkpad-app/inkpad/internal/notes"
	"github.com/inkpad-app/inkpad/internal/users"
)

const (
	testCookieName = "inkpad_session"
	jsonContent    = "application/json"
)

type testServer struct {
	handler  http.Handler
	sessions *auth.SessionManager
	db       *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:server_%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	if err := db.AutoMigrate(&users.User{}, &notes.Note{}, &notes.Block{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	sessions, err := auth.NewSessionManager(auth.SessionManagerConfig{
		SigningSecret: []byte("server-test-secret"),
		CookieName:    testCookieName,
		Issuer:        "inkpad-auth",
		Audience:      "inkpad-api",
	})
	if err != nil {
		t.Fatalf("failed to construct session manager: %v", err)
	}

	usersService, err := users.NewService(users.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to build users service: %v", err)
	}
	notesService, err := notes.NewService(notes.ServiceConfig{Database: db})
	if err != nil {
		t.Fatalf("failed to build notes service: %v", err)
	}
	assetsService, err := assets.NewService(assets.ServiceConfig{Directory: t.TempDir()})
	if err != nil {
		t.Fatalf("failed to build assets service: %v", err)
	}

	handler, err := NewHTTPHandler(Dependencies{
		Sessions:      sessions,
		UsersService:  usersService,
		NotesService:  notesService,
		AssetsService: assetsService,
		Logger:        zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("failed to build handler: %v", err)
	}

	return &testServer{handler: handler, sessions: sessions, db: db}
}

// sessionCookie registers an account directly in the store and returns a
// valid session cookie for it.
func (s *testServer) sessionCookie(t *testing.T, email string) (*http.Cookie, uint) {
	t.Helper()
	account := users.User{Email: email, PasswordHash: "unused"}
	if err := s.db.Create(&account).Error; err != nil {
		t.Fatalf("failed to seed account: %v", err)
	}
	token, err := s.sessions.IssueToken(account.ID)
	if err != nil {
		t.Fatalf("failed to issue token: %v", err)
	}
	return &http.Cookie{Name: testCookieName, Value: token}, account.ID
}

func (s *testServer) do(t *testing.T, method, path string, body any, cookie *http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to encode body: %v", err)
		}
		reader = bytes.NewReader(encoded)
	} else {
		reader = bytes.NewReader(nil)
	}

	request := httptest.NewRequest(method, path, reader)
	request.Header.Set("Content-Type", jsonContent)
	if cookie != nil {
		request.AddCookie(cookie)
	}

	recorder := httptest.NewRecorder()
	s.handler.ServeHTTP(recorder, request)
	return recorder
}

func decodeBody[T any](t *testing.T, recorder *httptest.ResponseRecorder) T {
	t.Helper()
	var value T
	if err := json.Unmarshal(recorder.Body.Bytes(), &value); err != nil {
		t.Fatalf("failed to decode response %q: %v", recorder.Body.String(), err)
	}
	return value
}
