package mockserver

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/hyperjump/docchat/internal/config"
	"github.com/hyperjump/docchat/internal/models"
)

func newTestServer() *Server {
	return NewServer(&config.MockConfig{Host: "localhost", Port: 8000}, zap.NewNop())
}

func multipartUpload(t *testing.T, filename, contentType, content string) *http.Request {
	t.Helper()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	h.Set("Content-Type", contentType)
	part, err := writer.CreatePart(h)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := part.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	if err := writer.Close(); err != nil {
		t.Fatal(err)
	}
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	return r
}

func TestHandleUpload(t *testing.T) {
	srv := newTestServer()
	w := httptest.NewRecorder()
	srv.handleUpload(w, multipartUpload(t, "contract.pdf", "application/pdf", "%PDF-1.4"))
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out models.UploadResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if out.Message != "File processed successfully" {
		t.Errorf("message: got %q", out.Message)
	}
}

func TestHandleUpload_RejectsDisallowedType(t *testing.T) {
	srv := newTestServer()
	w := httptest.NewRecorder()
	srv.handleUpload(w, multipartUpload(t, "evil.exe", "application/x-msdownload", "MZ"))
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "detail") {
		t.Errorf("body should carry a detail field: %s", w.Body.String())
	}
}

func TestHandleUpload_MissingFileField(t *testing.T) {
	srv := newTestServer()
	body := new(bytes.Buffer)
	writer := multipart.NewWriter(body)
	_ = writer.WriteField("other", "value")
	_ = writer.Close()
	r := httptest.NewRequest(http.MethodPost, "/upload", body)
	r.Header.Set("Content-Type", writer.FormDataContentType())
	w := httptest.NewRecorder()
	srv.handleUpload(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d", w.Code)
	}
}

func TestHandleAsk_BeforeUpload(t *testing.T) {
	srv := newTestServer()
	body, _ := json.Marshal(models.AskRequest{Question: "anything"})
	r := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	w := httptest.NewRecorder()
	srv.handleAsk(w, r)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status: got %d, want 400 before any upload", w.Code)
	}
	if !strings.Contains(w.Body.String(), "No document") {
		t.Errorf("body: %s", w.Body.String())
	}
}

func TestHandleAsk_EmptyQuestion(t *testing.T) {
	srv := newTestServer()
	w := httptest.NewRecorder()
	srv.handleUpload(w, multipartUpload(t, "notes.txt", "text/plain", "hello"))
	if w.Code != http.StatusOK {
		t.Fatalf("upload failed: %d", w.Code)
	}

	body, _ := json.Marshal(models.AskRequest{Question: "   "})
	r := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	w = httptest.NewRecorder()
	srv.handleAsk(w, r)
	if w.Code != http.StatusUnprocessableEntity {
		t.Errorf("status: got %d, want 422", w.Code)
	}
}

func TestHandleAsk_AfterUpload(t *testing.T) {
	srv := newTestServer()
	w := httptest.NewRecorder()
	srv.handleUpload(w, multipartUpload(t, "notes.txt", "text/plain", "hello"))
	if w.Code != http.StatusOK {
		t.Fatalf("upload failed: %d", w.Code)
	}

	body, _ := json.Marshal(models.AskRequest{
		Question:    "What is the termination clause?",
		ChatHistory: []models.ChatTurn{{ID: "t1", Question: "earlier", Answer: "a"}},
	})
	r := httptest.NewRequest(http.MethodPost, "/ask", bytes.NewReader(body))
	w = httptest.NewRecorder()
	srv.handleAsk(w, r)
	if w.Code != http.StatusOK {
		t.Fatalf("status: got %d, body: %s", w.Code, w.Body.String())
	}
	var out models.AskResponse
	if err := json.NewDecoder(w.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.Answer, "termination clause") {
		t.Errorf("answer: got %q", out.Answer)
	}
	if len(out.Context) == 0 {
		t.Error("context should not be empty")
	}
}

func TestHandleHealth(t *testing.T) {
	srv := newTestServer()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	srv.handleHealth(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("status: got %d", w.Code)
	}
}
