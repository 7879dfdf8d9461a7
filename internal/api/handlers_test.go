package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/gin-gonic/gin"

	"ComplyCheck/internal/config"
	"ComplyCheck/internal/retrieval/loaders"
	"ComplyCheck/internal/retrieval/retriever"
	"ComplyCheck/internal/retrieval/schema"
	"ComplyCheck/pkg/logger"
)

type stubLoader struct{}

func (stubLoader) Load(ctx context.Context, path string) ([]loaders.Page, error) {
	return []loaders.Page{{
		Number: 1,
		Text: "Pasal 26 menyatakan bahwa setiap pengendali data pribadi wajib menjaga " +
			"keamanan data pribadi yang diproses sesuai dengan ketentuan peraturan " +
			"perundang-undangan yang berlaku di wilayah Indonesia.",
	}}, nil
}

func testRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dir := t.TempDir()
	catDir := filepath.Join(dir, schema.CategoryNasional)
	if err := os.MkdirAll(catDir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(catDir, "UU_PDP.pdf"), []byte("%PDF-1.4"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg := config.RetrievalConfig{
		StandardsDir: dir,
		ChunkSize:    600,
		MaxPages:     15,
		DefaultTopK:  5,
	}
	log := logger.New("api-test", "", "")
	r, err := retriever.New(cfg, stubLoader{}, nil, nil, log)
	if err != nil {
		t.Fatal(err)
	}

	return SetupRouter(NewHandler(r, nil, cfg.DefaultTopK, log))
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRetrieveEndpoint(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/retrieve", map[string]any{
		"query":     "keamanan data pribadi",
		"standards": []string{"UU_PDP"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var res schema.RetrievalResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("response is not a retrieval result: %v", err)
	}
	if !res.Success {
		t.Errorf("Success = false, error %q", res.Error)
	}
	if res.Query != "keamanan data pribadi" {
		t.Errorf("Query = %q", res.Query)
	}
	if len(res.Standards) == 0 {
		t.Errorf("expected standards in response, message %q", res.Message)
	}
}

func TestRetrieveEndpoint_MissingQuery(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/retrieve", map[string]any{
		"top_k": 3,
	})

	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestLoadStandardsEndpoint(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/standards/load", map[string]any{
		"standards": []string{"UU_PDP", "ISO27001"},
	})

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body %s", w.Code, w.Body.String())
	}

	var res struct {
		Loaded int      `json:"loaded"`
		Errors []string `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if res.Loaded != 1 {
		t.Errorf("loaded = %d, want 1", res.Loaded)
	}
	if len(res.Errors) != 1 {
		t.Errorf("errors = %v, want one unknown-standard entry", res.Errors)
	}
}

func TestLoadStandardsEndpoint_MissingBody(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/v1/standards/load", map[string]any{})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}
}

func TestAvailableStandardsEndpoint(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/v1/standards", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var res map[string]map[string]schema.StandardInfo
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatal(err)
	}
	if _, ok := res[schema.CategoryNasional]["UU_PDP"]; !ok {
		t.Errorf("UU_PDP missing from %v", res)
	}
}

func TestHealthEndpoint(t *testing.T) {
	router := testRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}
