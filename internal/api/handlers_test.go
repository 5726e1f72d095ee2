package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shopify-product-importer/internal/fetcher"
	"github.com/maltedev/shopify-product-importer/internal/importer"
	"github.com/maltedev/shopify-product-importer/internal/jobs"
	"github.com/maltedev/shopify-product-importer/internal/parser"
	"github.com/maltedev/shopify-product-importer/internal/queue"
	"github.com/maltedev/shopify-product-importer/internal/shopify"
)

const hoodiePage = `<html><body>
<h1>Zip Hoodie</h1>
<div class="product-tab-content">Warm.</div>
<img id="main-product-image" src="https://cdn.example.com/hoodie.jpg">
<select><option>S €49,90</option><option>M €49,90</option></select>
</body></html>`

type testEnv struct {
	server *httptest.Server
	shop   *httptest.Server
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	shop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/products/hoodie" {
			w.Write([]byte(hoodiePage))
			return
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(shop.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	imp := importer.New(
		fetcher.NewHTTPFetcher(fetcher.HTTPOptions{Timeout: 2 * time.Second}),
		parser.NewRegistry(parser.DefaultProfile(shop.URL)),
		logger,
	)

	q := queue.NewInMemoryQueue()
	manager := jobs.NewManager(jobs.NewMemoryStore(), q, imp, nil, nil, 1, logger)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(func() {
		cancel()
		q.Close()
	})
	go manager.StartWorker(ctx)

	server := httptest.NewServer(NewRouter(NewHandlers(manager, 0, logger), RouterOptions{}))
	t.Cleanup(server.Close)

	return &testEnv{server: server, shop: shop}
}

func multipartBody(t *testing.T, files map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	mw := multipart.NewWriter(body)
	for field, content := range files {
		fw, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return body, mw.FormDataContentType()
}

func (e *testEnv) upload(t *testing.T, files map[string]string) *http.Response {
	t.Helper()
	body, contentType := multipartBody(t, files)
	res, err := http.Post(e.server.URL+"/api/v1/imports", contentType, body)
	require.NoError(t, err)
	t.Cleanup(func() { res.Body.Close() })
	return res
}

func (e *testEnv) getJob(t *testing.T, id string) (int, map[string]interface{}) {
	t.Helper()
	res, err := http.Get(e.server.URL + "/api/v1/imports/" + id)
	require.NoError(t, err)
	defer res.Body.Close()

	var out map[string]interface{}
	require.NoError(t, json.NewDecoder(res.Body).Decode(&out))
	return res.StatusCode, out
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)

	res, err := http.Get(env.server.URL + "/health")
	require.NoError(t, err)
	defer res.Body.Close()
	assert.Equal(t, http.StatusOK, res.StatusCode)
}

func TestImportUploadToDownload(t *testing.T) {
	env := newTestEnv(t)

	urls := fmt.Sprintf("loc\n%s/products/hoodie\n%s/products/missing\n", env.shop.URL, env.shop.URL)
	res := env.upload(t, map[string]string{
		"urls":     urls,
		"template": "Handle,Title,Variant Price\n",
	})
	require.Equal(t, http.StatusCreated, res.StatusCode)

	var created CreateImportResponse
	require.NoError(t, json.NewDecoder(res.Body).Decode(&created))
	require.NotEmpty(t, created.JobID)
	assert.Equal(t, "pending", created.Status)

	var job map[string]interface{}
	require.Eventually(t, func() bool {
		status, out := env.getJob(t, created.JobID)
		job = out
		return status == http.StatusOK && out["status"] == "completed"
	}, 5*time.Second, 20*time.Millisecond)

	assert.Equal(t, 1.0, job["progress"])
	assert.Equal(t, float64(2), job["row_count"])
	assert.Len(t, job["failures"], 1)
	assert.Contains(t, job["missing_columns"], "URL")

	downloads := job["downloads"].([]interface{})
	require.Len(t, downloads, 2)
	first := downloads[0].(map[string]interface{})
	assert.Equal(t, "Batch 1 (rows 1-1)", first["name"])

	dl, err := http.Get(env.server.URL + "/api/v1/imports/" + created.JobID + "/batches/2")
	require.NoError(t, err)
	defer dl.Body.Close()

	assert.Equal(t, http.StatusOK, dl.StatusCode)
	assert.Equal(t, "text/csv; charset=utf-8", dl.Header.Get("Content-Type"))
	assert.Equal(t, `attachment; filename="shopify_products_batch_2.csv"`, dl.Header.Get("Content-Disposition"))

	data, err := io.ReadAll(dl.Body)
	require.NoError(t, err)
	rows, err := shopify.ReadBatch(data)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "M", rows[0].Option1Value)
	assert.Equal(t, "49.90", rows[0].VariantPrice)
	assert.Empty(t, rows[0].ImageSrc)

	list, err := http.Get(env.server.URL + "/api/v1/imports")
	require.NoError(t, err)
	defer list.Body.Close()
	var jobsList []map[string]interface{}
	require.NoError(t, json.NewDecoder(list.Body).Decode(&jobsList))
	assert.Len(t, jobsList, 1)
}

func TestCreateImportValidation(t *testing.T) {
	env := newTestEnv(t)

	t.Run("missing urls file", func(t *testing.T) {
		res := env.upload(t, map[string]string{"template": "Handle\n"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("header only", func(t *testing.T) {
		res := env.upload(t, map[string]string{"urls": "loc\n"})
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})

	t.Run("not multipart", func(t *testing.T) {
		res, err := http.Post(env.server.URL+"/api/v1/imports", "application/json", bytes.NewBufferString("{}"))
		require.NoError(t, err)
		defer res.Body.Close()
		assert.Equal(t, http.StatusBadRequest, res.StatusCode)
	})
}

func TestLookupErrors(t *testing.T) {
	env := newTestEnv(t)

	status, _ := env.getJob(t, "does-not-exist")
	assert.Equal(t, http.StatusNotFound, status)

	res, err := http.Get(env.server.URL + "/api/v1/imports/does-not-exist/batches/1")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusNotFound, res.StatusCode)

	res, err = http.Get(env.server.URL + "/api/v1/imports/x/batches/zero")
	require.NoError(t, err)
	res.Body.Close()
	assert.Equal(t, http.StatusBadRequest, res.StatusCode)
}
