package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"sciencejournal/controllers"
	"sciencejournal/repository"
	"sciencejournal/services"
	"sciencejournal/storage"
)

const secret = "router-secret"

var samplePDF = []byte("%PDF-1.4\n1 0 obj << /Type /Catalog >> endobj\ntrailer << /Root 1 0 R >>\n%%EOF\n")

type testServer struct {
	t      *testing.T
	router *gin.Engine
	dir    string
}

type session struct {
	token string
	csrf  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := repository.Open("sqlite", fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString()))
	if err != nil {
		t.Fatal(err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatal(err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := repository.Migrate(db); err != nil {
		t.Fatal(err)
	}

	dir := t.TempDir()
	store, err := storage.NewLocalStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	log := zap.NewNop()

	authSvc := services.NewAuthService(repository.NewUserRepository(db), secret, time.Hour, log)
	if err := authSvc.SeedAdmin(t.Context(), "root@example.org", "rootpassword"); err != nil {
		t.Fatal(err)
	}
	paperSvc := services.NewPaperService(db, store, services.NewMemoryViewCounter(), log, 1<<20)
	docSvc := services.NewDocumentService(repository.NewDocumentRepository(db), store, log)
	confSvc := services.NewConferenceService(repository.NewConferenceRepository(db), log)

	router := gin.New()
	Setup(router, Deps{
		DB:          db,
		Logger:      log,
		Secret:      secret,
		Resolver:    authSvc,
		Papers:      controllers.NewPaperController(paperSvc, docSvc, confSvc, log, 20),
		Conferences: controllers.NewConferenceController(confSvc, log),
		Auth:        controllers.NewAuthController(authSvc, secret, log),
	})
	return &testServer{t: t, router: router, dir: dir}
}

func (s *testServer) do(req *http.Request, sess *session) *httptest.ResponseRecorder {
	if sess != nil {
		req.Header.Set("Authorization", "Bearer "+sess.token)
		if sess.csrf != "" {
			req.Header.Set("X-CSRF-Token", sess.csrf)
		}
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) json(method, path string, body any, sess *session) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			s.t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	return s.do(req, sess)
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %s: %v", w.Body.String(), err)
	}
	return v
}

func (s *testServer) login(email, password string, register bool) *session {
	s.t.Helper()
	path := "/auth/login"
	want := http.StatusOK
	if register {
		path, want = "/auth/register", http.StatusCreated
	}
	w := s.json(http.MethodPost, path, map[string]string{"email": email, "password": password}, nil)
	if w.Code != want {
		s.t.Fatalf("%s: status %d: %s", path, w.Code, w.Body.String())
	}
	sess := &session{token: decode[struct {
		Token string `json:"token"`
	}](s.t, w).Token}

	w = s.do(httptest.NewRequest(http.MethodGet, "/auth/antiforgery", nil), sess)
	if w.Code != http.StatusOK {
		s.t.Fatalf("antiforgery: status %d", w.Code)
	}
	sess.csrf = decode[struct {
		Token string `json:"token"`
	}](s.t, w).Token
	return sess
}

type paperResponse struct {
	Paper struct {
		ID         uuid.UUID `json:"id"`
		Status     string    `json:"status"`
		Version    int       `json:"version"`
		DocumentID uuid.UUID `json:"document_id"`
		Keywords   []string  `json:"keywords"`
		Document   struct {
			DocumentName string `json:"document_name"`
		} `json:"document"`
	} `json:"paper"`
	NoEdit         bool   `json:"no_edit"`
	PreviousAction string `json:"previous_action"`
	Redirect       string `json:"redirect"`
}

func (s *testServer) submit(sess *session, abstract string, keywords ...string) paperResponse {
	s.t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	mw.WriteField("title", "Sparse attention")
	mw.WriteField("abstract", abstract)
	mw.WriteField("author_first", "ana@example.org")
	for _, kw := range keywords {
		mw.WriteField("keywords", kw)
	}
	fw, err := mw.CreateFormFile("file", "sparse.pdf")
	if err != nil {
		s.t.Fatal(err)
	}
	fw.Write(samplePDF)
	mw.Close()

	req := httptest.NewRequest(http.MethodPost, "/papers", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := s.do(req, sess)
	if w.Code != http.StatusCreated {
		s.t.Fatalf("create: status %d: %s", w.Code, w.Body.String())
	}
	return decode[paperResponse](s.t, w)
}

func TestPaperLifecycle(t *testing.T) {
	s := newTestServer(t)
	ana := s.login("ana@example.org", "password123", true)
	eve := s.login("eve@example.org", "password123", true)
	admin := s.login("root@example.org", "rootpassword", false)

	created := s.submit(ana, "A fairly long abstract that will be cut.", "ml", "nlp")
	id := created.Paper.ID
	if created.Paper.Status != "pending" || created.Redirect != "MyPapers" {
		t.Fatalf("created = %+v", created)
	}

	t.Run("details keep keyword order and view flags", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/papers/"+id.String()+"?flag=1&prev=MyPapers", nil), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d", w.Code)
		}
		got := decode[paperResponse](t, w)
		if kws := got.Paper.Keywords; len(kws) != 2 || kws[0] != "ml" || kws[1] != "nlp" {
			t.Fatalf("keywords = %v", kws)
		}
		if !got.NoEdit || got.PreviousAction != "MyPapers" {
			t.Fatalf("no_edit = %v previous_action = %q", got.NoEdit, got.PreviousAction)
		}

		w = s.do(httptest.NewRequest(http.MethodGet, "/papers/"+id.String(), nil), nil)
		if got := decode[paperResponse](t, w); got.NoEdit || got.PreviousAction != "Index" {
			t.Fatalf("defaults: no_edit = %v previous_action = %q", got.NoEdit, got.PreviousAction)
		}
	})

	t.Run("index truncates abstracts", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/papers?status=pending", nil), nil)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d", w.Code)
		}
		got := decode[struct {
			Papers []struct {
				Abstract string `json:"abstract"`
			} `json:"papers"`
		}](t, w)
		if len(got.Papers) != 1 || got.Papers[0].Abstract != "A fairly long abstra..." {
			t.Fatalf("papers = %+v", got.Papers)
		}
		if w := s.do(httptest.NewRequest(http.MethodGet, "/papers?status=bogus", nil), nil); w.Code != http.StatusBadRequest {
			t.Fatalf("bogus status filter: %d", w.Code)
		}
	})

	t.Run("document streams as pdf", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodGet, "/documents/"+created.Paper.DocumentID.String(), nil), nil)
		if w.Code != http.StatusOK || w.Header().Get("Content-Type") != "application/pdf" {
			t.Fatalf("status %d content-type %q", w.Code, w.Header().Get("Content-Type"))
		}
		if !bytes.Equal(w.Body.Bytes(), samplePDF) {
			t.Fatal("body differs from upload")
		}
	})

	t.Run("anti-forgery token required", func(t *testing.T) {
		noCSRF := &session{token: ana.token}
		w := s.json(http.MethodPut, "/papers/"+id.String(), map[string]any{"id": id, "title": "x", "author_first": "a"}, noCSRF)
		if w.Code != http.StatusForbidden {
			t.Fatalf("status %d", w.Code)
		}
	})

	t.Run("stranger cannot edit or delete", func(t *testing.T) {
		body := map[string]any{"id": id, "title": "Hijacked", "author_first": "eve"}
		if w := s.json(http.MethodPut, "/papers/"+id.String(), body, eve); w.Code != http.StatusForbidden {
			t.Fatalf("edit status %d", w.Code)
		}
		if w := s.json(http.MethodDelete, "/papers/"+id.String(), nil, eve); w.Code != http.StatusForbidden {
			t.Fatalf("delete status %d", w.Code)
		}
		missing := uuid.NewString()
		if w := s.do(httptest.NewRequest(http.MethodGet, "/papers/"+missing+"/edit", nil), eve); w.Code != http.StatusNotFound {
			t.Fatalf("edit form for missing paper: status %d", w.Code)
		}
	})

	t.Run("owner edits and replaces keywords", func(t *testing.T) {
		body := map[string]any{
			"id":           id,
			"version":      created.Paper.Version,
			"title":        "Sparse attention, revised",
			"author_first": "ana@example.org",
			"keywords":     []string{"Smith, J."},
		}
		w := s.json(http.MethodPut, "/papers/"+id.String(), body, ana)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d: %s", w.Code, w.Body.String())
		}
		got := decode[paperResponse](t, w)
		if len(got.Paper.Keywords) != 1 || got.Paper.Keywords[0] != "Smith, J." {
			t.Fatalf("keywords = %v", got.Paper.Keywords)
		}

		// dieselbe Version ist jetzt veraltet
		if w := s.json(http.MethodPut, "/papers/"+id.String(), body, ana); w.Code != http.StatusConflict {
			t.Fatalf("stale edit: status %d", w.Code)
		}
		body["id"] = uuid.New()
		if w := s.json(http.MethodPut, "/papers/"+id.String(), body, ana); w.Code != http.StatusNotFound {
			t.Fatalf("id mismatch: status %d", w.Code)
		}
	})

	t.Run("non-admin approve leaves status unchanged", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodPost, "/papers/"+id.String()+"/approve", nil), ana)
		if w.Code != http.StatusForbidden || !strings.Contains(w.Body.String(), "AdminRoleRequired") {
			t.Fatalf("status %d body %s", w.Code, w.Body.String())
		}
		if w := s.do(httptest.NewRequest(http.MethodGet, "/papers/pending", nil), ana); w.Code != http.StatusForbidden {
			t.Fatalf("pending list for non-admin: status %d", w.Code)
		}
		w = s.do(httptest.NewRequest(http.MethodGet, "/papers/"+id.String(), nil), nil)
		if got := decode[paperResponse](t, w); got.Paper.Status != "pending" {
			t.Fatalf("status = %q", got.Paper.Status)
		}
	})

	t.Run("admin approves", func(t *testing.T) {
		w := s.do(httptest.NewRequest(http.MethodPost, "/papers/"+id.String()+"/approve", nil), admin)
		if w.Code != http.StatusOK {
			t.Fatalf("status %d: %s", w.Code, w.Body.String())
		}
		if got := decode[paperResponse](t, w); got.Paper.Status != "approved" {
			t.Fatalf("status = %q", got.Paper.Status)
		}
		if w := s.do(httptest.NewRequest(http.MethodPost, "/papers/"+id.String()+"/deny", nil), admin); w.Code != http.StatusConflict {
			t.Fatalf("deny after approve: status %d", w.Code)
		}
		w = s.do(httptest.NewRequest(http.MethodGet, "/papers/pending", nil), admin)
		got := decode[struct {
			Papers []any `json:"papers"`
		}](t, w)
		if len(got.Papers) != 0 {
			t.Fatalf("pending = %d", len(got.Papers))
		}

		reviewsPath := "/papers/" + id.String() + "/reviews"
		if w := s.do(httptest.NewRequest(http.MethodGet, reviewsPath, nil), ana); w.Code != http.StatusForbidden {
			t.Fatalf("reviews for author: status %d", w.Code)
		}
		w = s.do(httptest.NewRequest(http.MethodGet, reviewsPath, nil), admin)
		history := decode[struct {
			Reviews []struct {
				Decision string `json:"decision"`
			} `json:"reviews"`
		}](t, w)
		if len(history.Reviews) != 1 || history.Reviews[0].Decision != "approved" {
			t.Fatalf("reviews = %+v", history.Reviews)
		}
	})

	t.Run("owner deletes", func(t *testing.T) {
		if w := s.json(http.MethodDelete, "/papers/"+id.String(), nil, ana); w.Code != http.StatusOK {
			t.Fatalf("status %d: %s", w.Code, w.Body.String())
		}
		if w := s.do(httptest.NewRequest(http.MethodGet, "/papers/"+id.String(), nil), nil); w.Code != http.StatusNotFound {
			t.Fatalf("details after delete: status %d", w.Code)
		}
		if entries, _ := os.ReadDir(s.dir); len(entries) != 0 {
			t.Fatalf("files left: %d", len(entries))
		}
	})
}

func TestMissingDocumentFileIsNotFound(t *testing.T) {
	s := newTestServer(t)
	ana := s.login("ana@example.org", "password123", true)
	created := s.submit(ana, "abstract", "ml")

	if err := os.Remove(filepath.Join(s.dir, created.Paper.Document.DocumentName)); err != nil {
		t.Fatal(err)
	}
	w := s.do(httptest.NewRequest(http.MethodGet, "/documents/"+created.Paper.DocumentID.String(), nil), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", w.Code)
	}
	if w := s.do(httptest.NewRequest(http.MethodGet, "/documents/not-a-uuid", nil), nil); w.Code != http.StatusNotFound {
		t.Fatalf("invalid id: status %d", w.Code)
	}
}

func TestAuthAndConferenceRoutes(t *testing.T) {
	s := newTestServer(t)

	if w := s.do(httptest.NewRequest(http.MethodGet, "/papers/new", nil), nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous create form: status %d", w.Code)
	}
	if w := s.json(http.MethodPost, "/auth/login", map[string]string{"email": "root@example.org", "password": "nope"}, nil); w.Code != http.StatusUnauthorized {
		t.Fatalf("bad login: status %d", w.Code)
	}

	ana := s.login("ana@example.org", "password123", true)
	if w := s.json(http.MethodPost, "/auth/register", map[string]string{"email": "ana@example.org", "password": "password123"}, nil); w.Code != http.StatusConflict {
		t.Fatalf("duplicate register: status %d", w.Code)
	}
	w := s.do(httptest.NewRequest(http.MethodGet, "/papers/new", nil), ana)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"author_first":"ana@example.org"`) {
		t.Fatalf("create form: status %d body %s", w.Code, w.Body.String())
	}

	if w := s.json(http.MethodPost, "/conferences", map[string]string{"name": "GopherCon"}, ana); w.Code != http.StatusForbidden {
		t.Fatalf("non-admin conference create: status %d", w.Code)
	}
	admin := s.login("root@example.org", "rootpassword", false)
	if w := s.json(http.MethodPost, "/conferences", map[string]string{"name": "GopherCon"}, admin); w.Code != http.StatusCreated {
		t.Fatalf("conference create: status %d: %s", w.Code, w.Body.String())
	}
	w = s.do(httptest.NewRequest(http.MethodGet, "/conferences", nil), nil)
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), "GopherCon") {
		t.Fatalf("conference list: status %d body %s", w.Code, w.Body.String())
	}

	if w := s.do(httptest.NewRequest(http.MethodGet, "/healthz", nil), nil); w.Code != http.StatusOK {
		t.Fatalf("healthz: status %d", w.Code)
	}
}
