package handler_test

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"whispergo/backend/internal/api/handler"
	"whispergo/backend/internal/chatcore"
	"whispergo/backend/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// newTestRouter wires the handler onto the same routes main uses.
func newTestRouter(core *MockCore) *gin.Engine {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := handler.NewHandler(core, logger)

	r := gin.New()
	r.Use(handler.RequestID())
	r.GET("/", h.Index)
	r.POST("/", h.Send)
	r.GET("/messages", h.Messages)
	r.GET("/exit", h.Exit)
	r.GET("/dump", h.Dump)
	r.GET("/healthz", h.Healthz)
	return r
}

func withCookie(req *http.Request, uid string) *http.Request {
	req.AddCookie(&http.Cookie{Name: "uid", Value: uid})
	return req
}

func TestIndex_MintsIdentityCookie(t *testing.T) {
	core := new(MockCore)
	core.On("Identify", "").Return("fresh-id", true)
	core.On("JoinOrStatus", "fresh-id").Return(chatcore.RoomStatus{
		State:     chatcore.StateWaiting,
		PeerCount: 1,
		Messages:  []models.MessageView{{SenderKind: models.SenderSystem, Text: models.TextChatInitiated, Time: "now"}},
	})
	core.On("OnlineCount").Return(1)

	w := httptest.NewRecorder()
	newTestRouter(core).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Set-Cookie"), "uid=fresh-id")
	assert.Contains(t, w.Body.String(), `"state":"waiting"`)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	core.AssertExpectations(t)
}

func TestIndex_KnownVisitorGetsNoCookie(t *testing.T) {
	core := new(MockCore)
	core.On("Identify", "known-id").Return("known-id", false)
	core.On("JoinOrStatus", "known-id").Return(chatcore.RoomStatus{State: chatcore.StateActive, PeerCount: 2})
	core.On("OnlineCount").Return(2)

	w := httptest.NewRecorder()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/", nil), "known-id")
	newTestRouter(core).ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Set-Cookie"))
	assert.Contains(t, w.Body.String(), `"state":"active"`)
}

func TestSend_ForwardsWellFormedPost(t *testing.T) {
	core := new(MockCore)
	core.On("SendMessage", "visitor-1", "hello there").Once()

	form := url.Values{"message": {"hello there"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	withCookie(req, "visitor-1")

	w := httptest.NewRecorder()
	newTestRouter(core).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	core.AssertExpectations(t)
}

func TestSend_DropsMalformedPost(t *testing.T) {
	core := new(MockCore)

	// Extra field: dropped, but the redirect still happens.
	form := url.Values{"message": {"hi"}, "extra": {"field"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	withCookie(req, "visitor-1")

	w := httptest.NewRecorder()
	newTestRouter(core).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	core.AssertNotCalled(t, "SendMessage")
}

func TestSend_DropsWrongFieldName(t *testing.T) {
	core := new(MockCore)

	form := url.Values{"msg": {"hi"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	withCookie(req, "visitor-1")

	w := httptest.NewRecorder()
	newTestRouter(core).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	core.AssertNotCalled(t, "SendMessage")
}

func TestSend_IgnoredWithoutIdentity(t *testing.T) {
	core := new(MockCore)

	form := url.Values{"message": {"hi"}}
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	w := httptest.NewRecorder()
	newTestRouter(core).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	core.AssertNotCalled(t, "SendMessage")
}

func TestMessages_EmptyWithoutIdentity(t *testing.T) {
	core := new(MockCore)

	w := httptest.NewRecorder()
	newTestRouter(core).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/messages", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, "[]", w.Body.String())
	core.AssertNotCalled(t, "FetchMessages")
}

func TestMessages_RendersInbox(t *testing.T) {
	core := new(MockCore)
	core.On("FetchMessages", "visitor-1").Return([]models.MessageView{
		{SenderKind: models.SenderThem, Time: "5s", Text: "hello", Seen: false},
	})

	w := httptest.NewRecorder()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/messages", nil), "visitor-1")
	newTestRouter(core).ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"sender_kind":"them"`)
	assert.Contains(t, w.Body.String(), `"text":"hello"`)
}

func TestMessages_NilInboxBecomesEmptyList(t *testing.T) {
	core := new(MockCore)
	core.On("FetchMessages", "visitor-1").Return(nil)

	w := httptest.NewRecorder()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/messages", nil), "visitor-1")
	newTestRouter(core).ServeHTTP(w, req)

	assert.JSONEq(t, "[]", w.Body.String())
}

func TestExit_LeavesAndRedirects(t *testing.T) {
	core := new(MockCore)
	core.On("Leave", "visitor-1").Once()

	w := httptest.NewRecorder()
	req := withCookie(httptest.NewRequest(http.MethodGet, "/exit", nil), "visitor-1")
	newTestRouter(core).ServeHTTP(w, req)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))
	core.AssertExpectations(t)
}

func TestDump_ReturnsSnapshot(t *testing.T) {
	core := new(MockCore)
	core.On("DebugDump").Return("visitor-1: room-1\nroom-1 -> [visitor-1]\n")

	w := httptest.NewRecorder()
	newTestRouter(core).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/dump", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "visitor-1: room-1")
}

func TestHealthz(t *testing.T) {
	core := new(MockCore)

	w := httptest.NewRecorder()
	newTestRouter(core).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok\n", w.Body.String())
}
