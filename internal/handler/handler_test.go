package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"pairchat/internal/app/chat"
	"pairchat/internal/app/messaging"
	"pairchat/internal/app/store"
	"pairchat/internal/configs"
	"pairchat/internal/pkg/logx"
)

func init() {
	logx.InitGlobalLogger(false)
}

// memStorage is an in-memory messaging.Storage used to exercise handlers
// without a database. Duplicate pair inserts fail with a Postgres
// unique-violation error, matching the schema's constraint.
type memStorage struct {
	mu sync.Mutex

	users    map[int64]string
	pairs    map[[2]int64]int64
	convs    map[int64]store.Conversation
	messages map[int64][]store.Message

	nextConvID int64
	nextMsgID  int64
}

func newMemStorage() *memStorage {
	return &memStorage{
		users:    map[int64]string{1: "Alice", 2: "Bob", 3: "Carol"},
		pairs:    make(map[[2]int64]int64),
		convs:    make(map[int64]store.Conversation),
		messages: make(map[int64][]store.Message),
	}
}

func (m *memStorage) ListContacts(ctx context.Context, excludeUserID int64) ([]store.Contact, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	contacts := make([]store.Contact, 0)
	for id := int64(1); id <= int64(len(m.users)); id++ {
		if name, ok := m.users[id]; ok && id != excludeUserID {
			contacts = append(contacts, store.Contact{ID: id, Name: name})
		}
	}
	return contacts, nil
}

func (m *memStorage) FindConversation(ctx context.Context, low, high int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id, ok := m.pairs[[2]int64{low, high}]
	if !ok {
		return 0, store.ErrNotFound
	}
	return id, nil
}

func (m *memStorage) CreateConversation(ctx context.Context, low, high int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := [2]int64{low, high}
	if _, exists := m.pairs[key]; exists {
		return 0, &pgconn.PgError{Code: "23505", ConstraintName: "conversations_pair_unique"}
	}

	m.nextConvID++
	id := m.nextConvID
	m.pairs[key] = id
	m.convs[id] = store.Conversation{ID: id, UserLow: low, UserHigh: high, CreatedAt: time.Now()}
	return id, nil
}

func (m *memStorage) GetConversation(ctx context.Context, id int64) (store.Conversation, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	conv, ok := m.convs[id]
	if !ok {
		return store.Conversation{}, store.ErrNotFound
	}
	return conv, nil
}

func (m *memStorage) InsertMessage(ctx context.Context, conversationID, senderID int64, text string) (store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.nextMsgID++
	msg := store.Message{
		ID:             m.nextMsgID,
		ConversationID: conversationID,
		SenderID:       senderID,
		Text:           text,
		CreatedAt:      time.Now(),
		SenderName:     m.users[senderID],
	}
	m.messages[conversationID] = append(m.messages[conversationID], msg)
	return msg, nil
}

func (m *memStorage) ListMessages(ctx context.Context, conversationID int64) ([]store.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return append([]store.Message(nil), m.messages[conversationID]...), nil
}

// newTestDeps wires a full AppDeps over in-memory storage.
func newTestDeps() (*AppDeps, *memStorage, *chat.Registry) {
	storage := newMemStorage()
	registry := chat.NewRegistry()

	deps := &AppDeps{
		Config:   &configs.AppConfig{Environment: "development", Port: 8080, AllowedOrigins: []string{}},
		Registry: registry,
		Resolver: messaging.NewResolver(storage),
		Messages: messaging.NewService(storage, registry),
		Storage:  storage,
	}
	return deps, storage, registry
}

func doRequest(t *testing.T, router http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reqBody *bytes.Buffer
	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reqBody = bytes.NewBuffer(encoded)
	} else {
		reqBody = &bytes.Buffer{}
	}

	request := httptest.NewRequest(method, path, reqBody)
	if body != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)
	return recorder
}

func TestHealthEndpoint(t *testing.T) {
	deps, _, _ := newTestDeps()
	router := Router(deps)

	rec := doRequest(t, router, http.MethodGet, "/health", nil)

	require.Equal(t, http.StatusOK, rec.Code)
}

func TestListContacts_Excludes_Requester(t *testing.T) {
	req := require.New(t)
	deps, _, _ := newTestDeps()
	router := Router(deps)

	rec := doRequest(t, router, http.MethodGet, "/contacts/1", nil)
	req.Equal(http.StatusOK, rec.Code)

	var contacts []store.Contact
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &contacts))
	req.Len(contacts, 2)
	for _, c := range contacts {
		req.NotEqual(int64(1), c.ID)
		req.NotEmpty(c.Name)
	}
}

func TestListContacts_Rejects_Bad_ID(t *testing.T) {
	deps, _, _ := newTestDeps()
	router := Router(deps)

	rec := doRequest(t, router, http.MethodGet, "/contacts/abc", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestResolveConversation_Is_Symmetric(t *testing.T) {
	req := require.New(t)
	deps, _, _ := newTestDeps()
	router := Router(deps)

	var first struct {
		ConversationID int64 `json:"conversationId"`
	}
	rec := doRequest(t, router, http.MethodGet, "/conversation/1/2", nil)
	req.Equal(http.StatusOK, rec.Code)
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &first))
	req.NotZero(first.ConversationID)

	var second struct {
		ConversationID int64 `json:"conversationId"`
	}
	rec = doRequest(t, router, http.MethodGet, "/conversation/2/1", nil)
	req.Equal(http.StatusOK, rec.Code)
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &second))

	req.Equal(first.ConversationID, second.ConversationID)
}

func TestResolveConversation_Rejects_Same_User(t *testing.T) {
	deps, _, _ := newTestDeps()
	router := Router(deps)

	rec := doRequest(t, router, http.MethodGet, "/conversation/1/1", nil)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestListMessages_Returns_History_In_Order(t *testing.T) {
	req := require.New(t)
	deps, storage, _ := newTestDeps()
	router := Router(deps)

	convID, err := storage.CreateConversation(context.Background(), 1, 2)
	req.NoError(err)

	for _, text := range []string{"first", "second", "third"} {
		_, err := storage.InsertMessage(context.Background(), convID, 1, text)
		req.NoError(err)
	}

	rec := doRequest(t, router, http.MethodGet, fmt.Sprintf("/messages/%d", convID), nil)
	req.Equal(http.StatusOK, rec.Code)

	var messages []store.Message
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &messages))
	req.Len(messages, 3)
	req.Equal("first", messages[0].Text)
	req.Equal("second", messages[1].Text)
	req.Equal("third", messages[2].Text)
	req.Equal("Alice", messages[0].SenderName)
	for i := 1; i < len(messages); i++ {
		req.False(messages[i].CreatedAt.Before(messages[i-1].CreatedAt))
	}
}

func TestPostMessage_Returns_Hydrated_Message(t *testing.T) {
	req := require.New(t)
	deps, storage, _ := newTestDeps()
	router := Router(deps)

	convID, err := storage.CreateConversation(context.Background(), 1, 2)
	req.NoError(err)

	rec := doRequest(t, router, http.MethodPost, "/message", map[string]any{
		"conversation_id": convID,
		"sender_id":       1,
		"recipient_id":    2,
		"text":            "hi",
	})
	req.Equal(http.StatusOK, rec.Code)

	var msg store.Message
	req.NoError(json.Unmarshal(rec.Body.Bytes(), &msg))
	req.Equal(int64(1), msg.SenderID)
	req.Equal("hi", msg.Text)
	req.Equal("Alice", msg.SenderName)
	req.NotZero(msg.ID)
}

func TestPostMessage_Rejects_Missing_Fields(t *testing.T) {
	req := require.New(t)
	deps, storage, _ := newTestDeps()
	router := Router(deps)

	convID, err := storage.CreateConversation(context.Background(), 1, 2)
	req.NoError(err)

	rec := doRequest(t, router, http.MethodPost, "/message", map[string]any{
		"conversation_id": convID,
		"sender_id":       1,
		"recipient_id":    2,
	})

	req.Equal(http.StatusBadRequest, rec.Code)
	req.Empty(storage.messages[convID])
}

func TestPostMessage_Rejects_Wrong_Content_Type(t *testing.T) {
	deps, _, _ := newTestDeps()
	router := Router(deps)

	request := httptest.NewRequest(http.MethodPost, "/message", bytes.NewBufferString("conversation_id=1"))
	request.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, request)

	require.Equal(t, http.StatusUnsupportedMediaType, recorder.Code)
}

func TestPostMessage_Unknown_Conversation(t *testing.T) {
	deps, _, _ := newTestDeps()
	router := Router(deps)

	rec := doRequest(t, router, http.MethodPost, "/message", map[string]any{
		"conversation_id": 999,
		"sender_id":       1,
		"recipient_id":    2,
		"text":            "hi",
	})

	require.Equal(t, http.StatusNotFound, rec.Code)
}

func TestReadinessGate_Fails_Fast_Without_Storage(t *testing.T) {
	req := require.New(t)
	deps, _, _ := newTestDeps()
	deps.Storage = nil
	router := Router(deps)

	for _, path := range []string{"/contacts/1", "/conversation/1/2", "/messages/1"} {
		rec := doRequest(t, router, http.MethodGet, path, nil)
		req.Equal(http.StatusServiceUnavailable, rec.Code, path)
	}

	rec := doRequest(t, router, http.MethodPost, "/message", map[string]any{
		"conversation_id": 1,
		"sender_id":       1,
		"recipient_id":    2,
		"text":            "hi",
	})
	req.Equal(http.StatusServiceUnavailable, rec.Code)

	// Health stays up regardless of the storage pool
	rec = doRequest(t, router, http.MethodGet, "/health", nil)
	req.Equal(http.StatusOK, rec.Code)
}
