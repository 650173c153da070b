package api

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"github.com/agiliza2b-source/tasks2/backup"
	"github.com/agiliza2b-source/tasks2/domain"
)

type mockStore struct {
	mu      sync.Mutex
	tasks   []domain.Task
	columns []domain.Column
	updates []domain.TaskUpdate
	atts    []domain.Attachment
	profile *domain.Profile
	events  []domain.SystemLogRecord
	touches int

	nextID int
}

func (m *mockStore) id() string {
	m.nextID++
	return "id-" + strconv.Itoa(m.nextID)
}

func (m *mockStore) ListColumns(ctx context.Context, userID string) ([]domain.Column, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Column(nil), m.columns...), nil
}

func (m *mockStore) ListTasks(ctx context.Context, userID string) ([]domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Task(nil), m.tasks...), nil
}

func (m *mockStore) InsertTask(ctx context.Context, t domain.Task) (domain.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t.ID = m.id()
	m.tasks = append(m.tasks, t)
	return t, nil
}

func (m *mockStore) UpdateTask(ctx context.Context, t domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == t.ID {
			m.tasks[i] = t
			return nil
		}
	}
	return errors.New("task not in store")
}

func (m *mockStore) DeleteTask(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.tasks {
		if m.tasks[i].ID == id {
			m.tasks = append(m.tasks[:i], m.tasks[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockStore) InsertColumn(ctx context.Context, c domain.Column) (domain.Column, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.id()
	m.columns = append(m.columns, c)
	return c, nil
}

func (m *mockStore) UpdateColumn(ctx context.Context, c domain.Column) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.columns {
		if m.columns[i].ID == c.ID {
			m.columns[i] = c
			return nil
		}
	}
	return errors.New("column not in store")
}

func (m *mockStore) DeleteColumn(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.columns {
		if m.columns[i].ID == id {
			m.columns = append(m.columns[:i], m.columns[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockStore) ListTaskUpdates(ctx context.Context, userID, taskID string) ([]domain.TaskUpdate, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.TaskUpdate
	for _, u := range m.updates {
		if u.TaskID == taskID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (m *mockStore) InsertTaskUpdates(ctx context.Context, updates []domain.TaskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range updates {
		u.ID = m.id()
		m.updates = append(m.updates, u)
	}
	return nil
}

func (m *mockStore) UpsertColumns(ctx context.Context, cols []domain.Column) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range cols {
		replaced := false
		for i := range m.columns {
			if m.columns[i].ID == c.ID {
				m.columns[i] = c
				replaced = true
				break
			}
		}
		if !replaced {
			m.columns = append(m.columns, c)
		}
	}
	return nil
}

func (m *mockStore) UpsertTasks(ctx context.Context, tasks []domain.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, t := range tasks {
		replaced := false
		for i := range m.tasks {
			if m.tasks[i].ID == t.ID {
				m.tasks[i] = t
				replaced = true
				break
			}
		}
		if !replaced {
			m.tasks = append(m.tasks, t)
		}
	}
	return nil
}

func (m *mockStore) GetProfile(ctx context.Context, userID string) (*domain.Profile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.profile, nil
}

func (m *mockStore) TouchProfile(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.touches++
	return nil
}

func (m *mockStore) UpdateTaskUpdate(ctx context.Context, u domain.TaskUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.updates {
		if m.updates[i].ID == u.ID {
			m.updates[i].Content = u.Content
			m.updates[i].Type = u.Type
			return nil
		}
	}
	return errors.New("update not in store")
}

func (m *mockStore) DeleteTaskUpdate(ctx context.Context, userID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := range m.updates {
		if m.updates[i].ID == id {
			m.updates = append(m.updates[:i], m.updates[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockStore) ListAttachments(ctx context.Context, userID, taskID string) ([]domain.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Attachment(nil), m.atts...), nil
}

func (m *mockStore) UploadAttachment(ctx context.Context, userID, taskID, fileName, fileType string, data []byte) (domain.Attachment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	att := domain.Attachment{ID: m.id(), TaskID: taskID, UserID: userID, FileName: fileName, FileType: fileType, FileSize: int64(len(data))}
	m.atts = append(m.atts, att)
	return att, nil
}

func (m *mockStore) DeleteAttachment(ctx context.Context, userID, id string) error { return nil }

func (m *mockStore) LogEvent(ctx context.Context, rec domain.SystemLogRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, rec)
}

type mockAuth struct{}

func (mockAuth) UserIDFromAuthHeader(h string) (string, error) {
	if h == "" {
		return "", errMissingAuthorization
	}
	return "user-1", nil
}

func newTestServer(store *mockStore) *echo.Echo {
	e := echo.New()
	Register(e, store, mockAuth{}, log.New())
	return e
}

func doJSON(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	req.Header.Set(echo.HeaderAuthorization, "Bearer token")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestGetBoard(t *testing.T) {
	store := &mockStore{
		columns: []domain.Column{{ID: "c1", Title: "A Fazer", UserID: "user-1"}},
		tasks: []domain.Task{
			{ID: "t1", Title: "Tarefa", ColumnID: "c1", UserID: "user-1"},
			{ID: "t2", Title: "Modelo", IsTemplate: true, UserID: "user-1"},
		},
	}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodGet, "/api/board", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var resp boardResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Columns) != 1 {
		t.Fatalf("unexpected columns: %+v", resp.Columns)
	}
	if len(resp.Tasks) != 1 || resp.Tasks[0].ID != "t1" {
		t.Fatalf("templates must not appear in tasks: %+v", resp.Tasks)
	}
	if len(resp.Templates) != 1 || resp.Templates[0].ID != "t2" {
		t.Fatalf("unexpected templates: %+v", resp.Templates)
	}
}

func TestGetBoardUnauthorized(t *testing.T) {
	e := newTestServer(&mockStore{})
	req := httptest.NewRequest(http.MethodGet, "/api/board", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestPostTaskAppliesDefaults(t *testing.T) {
	store := &mockStore{}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodPost, "/api/tasks", `{"title":"Nova tarefa","column_id":"c1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}

	var created domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if created.Status != domain.StatusTodo || created.Priority != domain.PriorityMedium || created.Color != domain.DefaultColor {
		t.Fatalf("defaults not applied: %+v", created)
	}
	if created.UserID != "user-1" {
		t.Fatalf("owner not stamped: %q", created.UserID)
	}
}

func TestPostTaskRejectsMissingTitle(t *testing.T) {
	e := newTestServer(&mockStore{})
	rec := doJSON(e, http.MethodPost, "/api/tasks", `{"column_id":"c1"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostTaskRejectsUnknownColor(t *testing.T) {
	e := newTestServer(&mockStore{})
	rec := doJSON(e, http.MethodPost, "/api/tasks", `{"title":"x","color":"magenta"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestPostTaskRejectsUnknownEnums(t *testing.T) {
	e := newTestServer(&mockStore{})

	cases := []struct {
		name string
		body string
	}{
		{name: "status", body: `{"title":"x","status":"bogus"}`},
		{name: "priority", body: `{"title":"x","priority":"urgent"}`},
		{name: "resourceType", body: `{"title":"x","resource_type":"weight"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doJSON(e, http.MethodPost, "/api/tasks", tc.body)
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
			}
		})
	}
}

func TestPatchTaskRejectsUnknownStatus(t *testing.T) {
	store := &mockStore{tasks: []domain.Task{{ID: "t1", Title: "Tarefa", UserID: "user-1"}}}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodPatch, "/api/tasks/t1", `{"title":"Tarefa","status":"bogus"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if store.tasks[0].Status != "" {
		t.Fatalf("bad status reached the store: %+v", store.tasks[0])
	}
}

func TestDeleteTaskConfirmationGate(t *testing.T) {
	store := &mockStore{
		tasks:   []domain.Task{{ID: "t1", Title: "Tarefa", UserID: "user-1"}},
		profile: &domain.Profile{ID: "user-1", ConfirmBeforeDelete: true},
	}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodDelete, "/api/tasks/t1", "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without confirm, got %d", rec.Code)
	}
	if len(store.tasks) != 1 {
		t.Fatal("unconfirmed delete reached the store")
	}

	rec = doJSON(e, http.MethodDelete, "/api/tasks/t1?confirm=true", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 with confirm, got %d", rec.Code)
	}
	if len(store.tasks) != 0 {
		t.Fatal("confirmed delete did not reach the store")
	}
}

func TestMoveTask(t *testing.T) {
	store := &mockStore{
		columns: []domain.Column{{ID: "c1"}, {ID: "c2"}},
		tasks:   []domain.Task{{ID: "t1", ColumnID: "c1", UserID: "user-1"}},
	}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodPost, "/api/tasks/t1/move", `{"column_id":"c2"}`)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if store.tasks[0].ColumnID != "c2" {
		t.Fatalf("move not persisted: %+v", store.tasks[0])
	}
}

func TestDuplicateTask(t *testing.T) {
	store := &mockStore{tasks: []domain.Task{{ID: "t1", Title: "Original", UserID: "user-1"}}}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodPost, "/api/tasks/t1/duplicate", "")
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var dup domain.Task
	if err := sonic.Unmarshal(rec.Body.Bytes(), &dup); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if dup.Title != "Original (Cópia)" {
		t.Fatalf("unexpected title: %q", dup.Title)
	}
}

func TestReorderColumns(t *testing.T) {
	store := &mockStore{columns: []domain.Column{
		{ID: "a", Position: 0, UserID: "user-1"},
		{ID: "b", Position: 1, UserID: "user-1"},
		{ID: "c", Position: 2, UserID: "user-1"},
		{ID: "d", Position: 3, UserID: "user-1"},
	}}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodPost, "/api/columns/reorder", `{"source_id":"c","target_id":"a"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	var cols []domain.Column
	if err := sonic.Unmarshal(rec.Body.Bytes(), &cols); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := []string{"c", "a", "b", "d"}
	for i, id := range want {
		if cols[i].ID != id || cols[i].Position != i {
			t.Fatalf("position %d: got %s/%d want %s/%d", i, cols[i].ID, cols[i].Position, id, i)
		}
	}
}

func TestPostChecklistUpdateNormalizesContent(t *testing.T) {
	store := &mockStore{}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodPost, "/api/tasks/t1/updates", `{"content":"- Buy milk\n- Call Bob","type":"checklist"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.updates) != 1 {
		t.Fatalf("expected 1 stored update, got %d", len(store.updates))
	}
	items := domain.ParseChecklist(store.updates[0].Content)
	if len(items) != 2 || items[0].Text != "Buy milk" {
		t.Fatalf("stored content not structured: %q", store.updates[0].Content)
	}
	if !strings.HasPrefix(store.updates[0].Content, "[") {
		t.Fatalf("legacy form survived the write: %q", store.updates[0].Content)
	}
}

func TestBackupDownload(t *testing.T) {
	store := &mockStore{
		columns: []domain.Column{{ID: "c1", Title: "A Fazer", UserID: "user-1"}},
		tasks:   []domain.Task{{ID: "t1", Title: "Tarefa", ColumnID: "c1", UserID: "user-1"}},
		profile: &domain.Profile{ID: "user-1", Email: "user@example.com"},
	}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodGet, "/api/backup", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	disposition := rec.Header().Get(echo.HeaderContentDisposition)
	if !strings.Contains(disposition, "backup-agiliza2b-") || !strings.Contains(disposition, ".enc") {
		t.Fatalf("unexpected disposition: %q", disposition)
	}

	doc, err := backup.Decode(rec.Body.String())
	if err != nil {
		t.Fatalf("downloaded file does not decode: %v", err)
	}
	if doc.Metadata.UserID != "user-1" || doc.Metadata.UserEmail != "user@example.com" {
		t.Fatalf("unexpected metadata: %+v", doc.Metadata)
	}
	if len(doc.Columns) != 1 || len(doc.Tasks) != 1 {
		t.Fatalf("board not exported: %+v", doc)
	}

	store.mu.Lock()
	foundAudit := false
	for _, ev := range store.events {
		if ev.Action == domain.ActionBackup {
			foundAudit = true
		}
	}
	store.mu.Unlock()
	if !foundAudit {
		t.Fatal("backup did not enqueue an audit record")
	}
}

func TestRestoreSameOwner(t *testing.T) {
	doc := backup.NewDocument(
		[]domain.Column{{ID: "c1", Title: "A Fazer", UserID: "user-1"}},
		[]domain.Task{{ID: "t1", Title: "Tarefa", ColumnID: "c1", UserID: "user-1"}},
		domain.Owner{ID: "user-1", Email: "user@example.com"},
		time.Now(),
	)
	encoded, err := backup.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	store := &mockStore{}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodPost, "/api/restore", encoded)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.columns) != 1 || len(store.tasks) != 1 {
		t.Fatalf("restore did not persist: %d columns %d tasks", len(store.columns), len(store.tasks))
	}
	store.mu.Lock()
	foundAudit := false
	for _, ev := range store.events {
		if ev.Action == domain.ActionRestore {
			foundAudit = true
		}
	}
	store.mu.Unlock()
	if !foundAudit {
		t.Fatal("restore did not enqueue an audit record")
	}
}

func TestRestoreCrossOwnerRequiresConfirm(t *testing.T) {
	doc := backup.NewDocument(
		[]domain.Column{{ID: "c1", UserID: "someone-else"}},
		[]domain.Task{{ID: "t1", ColumnID: "c1", UserID: "someone-else"}},
		domain.Owner{ID: "someone-else", Email: "other@example.com"},
		time.Now(),
	)
	encoded, err := backup.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}

	store := &mockStore{}
	e := newTestServer(store)

	rec := doJSON(e, http.MethodPost, "/api/restore", encoded)
	if rec.Code != http.StatusConflict {
		t.Fatalf("expected 409 without confirm, got %d: %s", rec.Code, rec.Body.String())
	}
	if len(store.columns) != 0 {
		t.Fatal("declined restore wrote rows")
	}

	rec = doJSON(e, http.MethodPost, "/api/restore?confirm=true", encoded)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with confirm, got %d: %s", rec.Code, rec.Body.String())
	}
	for _, c := range store.columns {
		if c.UserID != "user-1" {
			t.Fatalf("ownership not rewritten: %+v", c)
		}
	}
	for _, task := range store.tasks {
		if task.UserID != "user-1" {
			t.Fatalf("ownership not rewritten: %+v", task)
		}
	}
}

func TestRestoreRejectsMalformedFile(t *testing.T) {
	e := newTestServer(&mockStore{})

	rec := doJSON(e, http.MethodPost, "/api/restore", "not-valid-base64!!")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}

	garbage := base64.StdEncoding.EncodeToString([]byte(`{"no":"sections"}`))
	rec = doJSON(e, http.MethodPost, "/api/restore", garbage)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing sections, got %d", rec.Code)
	}
}

func TestRestoreRefreshesBoardView(t *testing.T) {
	store := &mockStore{}
	e := newTestServer(store)

	// Warm the per-user manager with an empty board.
	if rec := doJSON(e, http.MethodGet, "/api/board", ""); rec.Code != http.StatusOK {
		t.Fatalf("warm board: %d", rec.Code)
	}

	doc := backup.NewDocument(
		[]domain.Column{{ID: "c1", Title: "A Fazer", UserID: "user-1"}},
		[]domain.Task{{ID: "t1", Title: "Tarefa", ColumnID: "c1", UserID: "user-1"}},
		domain.Owner{ID: "user-1"},
		time.Now(),
	)
	encoded, err := backup.Encode(doc)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if rec := doJSON(e, http.MethodPost, "/api/restore", encoded); rec.Code != http.StatusOK {
		t.Fatalf("restore: %d", rec.Code)
	}

	rec := doJSON(e, http.MethodGet, "/api/board", "")
	var resp boardResponse
	if err := sonic.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Columns) != 1 || len(resp.Tasks) != 1 {
		t.Fatalf("board view not refreshed after restore: %+v", resp)
	}
}

func TestHealthz(t *testing.T) {
	e := newTestServer(&mockStore{})
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}
