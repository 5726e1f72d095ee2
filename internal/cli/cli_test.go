package cli

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/maltedev/shopify-product-importer/internal/shopify"
)

const pantsPage = `<html><body>
<h1>Cargo Pants</h1>
<div class="product-tab-content">Six pockets.</div>
<img id="main-product-image" src="/img/pants.jpg">
<select><option>30 €59,00</option><option>32 €59,00</option><option>34 €61,00</option></select>
</body></html>`

func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(new(bytes.Buffer))
	rootCmd.SetArgs(args)
	defer func() {
		rootCmd.SetArgs(nil)
		runURLsFile, runTemplateFile, runOutDir, runBatchSize = "", "", "", 0
	}()

	err := rootCmd.Execute()
	return buf.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestVersionCmd_Executes(t *testing.T) {
	originalVersion := version
	SetVersion("test-version-1.0.0")
	defer func() { version = originalVersion }()

	out, err := executeCommand(t, "version")
	assert.NoError(t, err)
	assert.Contains(t, out, "importer version test-version-1.0.0")
}

func TestRunCmd_WritesBatches(t *testing.T) {
	shop := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/p/pants" {
			w.Write([]byte(pantsPage))
			return
		}
		http.NotFound(w, r)
	}))
	defer shop.Close()

	dir := t.TempDir()
	outDir := filepath.Join(dir, "out")
	urls := writeFile(t, dir, "urls.csv", fmt.Sprintf("loc\n%s/p/pants\n%s/p/gone\n", shop.URL, shop.URL))
	template := writeFile(t, dir, "template.csv", "Handle,Title,Body (HTML),Variant Price,Cost per item\n")

	out, err := executeCommand(t, "run",
		"--urls", urls,
		"--template", template,
		"--out", outDir,
		"--batch-size", "2")
	require.NoError(t, err)

	assert.Contains(t, out, "Processed 2/2")
	assert.Contains(t, out, "FAILED "+shop.URL+"/p/gone")
	assert.Contains(t, out, `Warning: template has no column "URL"`)
	assert.Contains(t, out, `Note: template column "Cost per item" is left empty`)
	assert.Contains(t, out, "Batch 1 (rows 1-2)")
	assert.Contains(t, out, "Batch 2 (rows 3-3)")
	assert.Contains(t, out, "1 products, 3 rows, 1 failed URLs, 2 batches")

	data, err := os.ReadFile(filepath.Join(outDir, "shopify_products_batch_1.csv"))
	require.NoError(t, err)
	rows, err := shopify.ReadBatch(data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "cargo-pants", rows[0].Handle)
	assert.Equal(t, "30", rows[0].Option1Value)
	assert.Equal(t, "59.00", rows[0].VariantPrice)
	assert.Equal(t, shop.URL+"/img/pants.jpg", rows[0].ImageSrc)
	assert.Empty(t, rows[1].ImageSrc)
}

func TestRunCmd_NoRows(t *testing.T) {
	shop := httptest.NewServer(http.NotFoundHandler())
	defer shop.Close()

	dir := t.TempDir()
	urls := writeFile(t, dir, "urls.csv", "loc\n"+shop.URL+"/p/1\n")

	out, err := executeCommand(t, "run", "--urls", urls, "--out", filepath.Join(dir, "out"))
	assert.ErrorIs(t, err, shopify.ErrNoRows)
	assert.Contains(t, out, "FAILED "+shop.URL+"/p/1")
}

func TestRunCmd_MissingURLsFile(t *testing.T) {
	_, err := executeCommand(t, "run", "--urls", filepath.Join(t.TempDir(), "nope.csv"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read urls")
}

func TestRunCmd_RequiresURLsFlag(t *testing.T) {
	_, err := executeCommand(t, "run")
	assert.Error(t, err)
}

func TestCommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	assert.True(t, names["run"])
	assert.True(t, names["serve"])
	assert.True(t, names["version"])
}
