package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/storefront/internal/admin"
	"github.com/mesh-intelligence/storefront/internal/seed"
	"github.com/mesh-intelligence/storefront/pkg/types"
)

// cliEnv runs commands against one config and data directory pair.
type cliEnv struct {
	t         *testing.T
	configDir string
	dataDir   string
}

func newCLIEnv(t *testing.T) *cliEnv {
	t.Helper()
	dir := t.TempDir()
	return &cliEnv{
		t:         t,
		configDir: filepath.Join(dir, "config"),
		dataDir:   filepath.Join(dir, "data"),
	}
}

func (e *cliEnv) run(args ...string) (string, error) {
	e.t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(append([]string{"--config-dir", e.configDir, "--data-dir", e.dataDir}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (e *cliEnv) mustRun(args ...string) string {
	e.t.Helper()
	out, err := e.run(args...)
	require.NoError(e.t, err, "storefront %v", args)
	return out
}

func decodeOutput[T any](t *testing.T, out string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(out), &v), "output: %s", out)
	return v
}

func TestVersion(t *testing.T) {
	out := newCLIEnv(t).mustRun("version")
	assert.Contains(t, out, "storefront v"+Version)
	assert.Contains(t, out, modulePath)
}

func TestInit(t *testing.T) {
	env := newCLIEnv(t)
	out := env.mustRun("init")
	assert.Contains(t, out, "Storefront initialized (sqlite backend)")
	assert.FileExists(t, filepath.Join(env.configDir, "config.yaml"))
	assert.FileExists(t, filepath.Join(env.dataDir, "site_content.jsonl"))

	out = env.mustRun("--json", "init")
	res := decodeOutput[map[string]any](t, out)
	assert.Equal(t, true, res["ok"])
}

func TestContentCommands(t *testing.T) {
	env := newCLIEnv(t)

	env.mustRun("content", "set", "home", "title", "Miel del Valle")
	out := env.mustRun("--json", "content", "get", "home", "title")
	assert.Equal(t, "Miel del Valle", decodeOutput[string](t, out))

	env.mustRun("content", "set", "home", "badges", `["organic", "local"]`, "--kind", "json")
	section := decodeOutput[map[string]json.RawMessage](t, env.mustRun("--json", "content", "get", "home"))
	assert.JSONEq(t, `["organic","local"]`, string(section["badges"]))
	assert.JSONEq(t, `"Miel del Valle"`, string(section["title"]))

	out = env.mustRun("content", "get", "home")
	assert.Contains(t, out, "ELEMENT")
	assert.Contains(t, out, "badges")

	env.mustRun("content", "delete", "home", "badges")
	_, err := env.run("content", "get", "home", "badges")
	require.Error(t, err)
	assert.Equal(t, exitUserError, ExitCode(err))

	_, err = env.run("content", "set", "home", "badges", `[broken`, "--kind", "json")
	assert.Equal(t, exitUserError, ExitCode(err))
	_, err = env.run("content", "set", "home", "badges", "x", "--kind", "yaml")
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestContentForm(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("content", "form", "nosuchform", "title=x")
	assert.True(t, errors.Is(err, admin.ErrUnknownForm))
	assert.Equal(t, exitUserError, ExitCode(err))

	_, err = env.run("content", "form", "home", "title")
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestProductCommands(t *testing.T) {
	env := newCLIEnv(t)

	out := env.mustRun("--json", "product", "add",
		"name=Miel de azahar", "description=Cosecha de primavera", "price=45", "weight=500g")
	created := decodeOutput[[]map[string]any](t, out)
	require.Len(t, created, 1)
	id, _ := created[0]["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, 45.0, created[0]["price"])

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"all", nil, 1},
		{"search any case", []string{"--search", "AZAHAR"}, 1},
		{"low price", []string{"--price", "low"}, 1},
		{"high price", []string{"--price", "high"}, 0},
		{"medium size", []string{"--size", "medium"}, 1},
		{"large size", []string{"--size", "large"}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := env.mustRun(append([]string{"--json", "product", "list"}, tt.args...)...)
			assert.Len(t, decodeOutput[[]map[string]any](t, out), tt.want)
		})
	}

	_, err := env.run("product", "list", "--price", "cheap")
	assert.Equal(t, exitUserError, ExitCode(err))

	out = env.mustRun("--json", "product", "update", id,
		"name=Miel de azahar", "description=Cosecha de primavera", "price=130", "weight=1kg")
	updated := decodeOutput[[]map[string]any](t, out)
	assert.Equal(t, 130.0, updated[0]["price"])

	env.mustRun("product", "delete", id)
	_, err = env.run("product", "delete", id)
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestProductValidation(t *testing.T) {
	env := newCLIEnv(t)
	_, err := env.run("product", "add", "name=", "price=-1")
	require.Error(t, err)
	var ve *admin.ValidationError
	require.True(t, errors.As(err, &ve))
	assert.Contains(t, ve.Fields, "name")
	assert.Contains(t, ve.Fields, "price")
	assert.Equal(t, exitUserError, ExitCode(err))

	_, err = env.run("product", "add", "novalue")
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestProductImage(t *testing.T) {
	env := newCLIEnv(t)
	img := filepath.Join(t.TempDir(), "jar.png")
	require.NoError(t, os.WriteFile(img, []byte("png"), 0o644))

	out := env.mustRun("--json", "product", "add", "--image", img,
		"name=Miel", "description=Pura", "price=10", "weight=200g")
	created := decodeOutput[[]map[string]any](t, out)
	assert.Contains(t, created[0]["image_url"], "/storage/site-images/")

	_, err := env.run("product", "add", "--image", filepath.Join(t.TempDir(), "missing.png"),
		"name=Miel", "description=Pura", "price=10", "weight=200g")
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestImageCommands(t *testing.T) {
	env := newCLIEnv(t)
	file := filepath.Join(t.TempDir(), "hive.jpg")
	require.NoError(t, os.WriteFile(file, []byte("jpeg"), 0o644))

	out := env.mustRun("--json", "image", "add", "gallery", file, "--alt", "Colmena")
	added := decodeOutput[[]types.Image](t, out)
	require.Len(t, added, 1)
	name := added[0].Name
	assert.Equal(t, "gallery", added[0].Section)
	assert.Equal(t, "Colmena", added[0].AltText)

	_, err := env.run("image", "add", "gallery", file)
	assert.Equal(t, exitUserError, ExitCode(err), "alt text is required")

	out = env.mustRun("--json", "image", "alt", name, "Colmena al sol")
	assert.Equal(t, "Colmena al sol", decodeOutput[[]types.Image](t, out)[0].AltText)

	out = env.mustRun("--json", "image", "put", "home", "home_background", file)
	slot := decodeOutput[[]types.Image](t, out)
	assert.Equal(t, "home_background", slot[0].Name)

	listed := decodeOutput[[]types.Image](t, env.mustRun("--json", "image", "list", "gallery"))
	assert.Len(t, listed, 1)

	env.mustRun("image", "replace", name, file)
	env.mustRun("image", "delete", name)
	listed = decodeOutput[[]types.Image](t, env.mustRun("--json", "image", "list", "gallery"))
	assert.Empty(t, listed)
}

func TestCategoryAndFAQCommands(t *testing.T) {
	env := newCLIEnv(t)

	cat := decodeOutput[types.Category](t, env.mustRun("--json", "category", "add", "Mieles"))
	require.NotEmpty(t, cat.CategoryID)
	cats := decodeOutput[[]types.Category](t, env.mustRun("--json", "category", "list"))
	assert.Len(t, cats, len(seed.Categories())+1)
	assert.Contains(t, cats, cat)
	env.mustRun("category", "delete", cat.CategoryID)
	cats = decodeOutput[[]types.Category](t, env.mustRun("--json", "category", "list"))
	assert.NotContains(t, cats, cat)

	faq := decodeOutput[[]types.FAQ](t, env.mustRun("--json", "faq", "add", "question=¿Envían?", "answer=Sí"))
	require.Len(t, faq, 1)
	id := faq[0].FAQID

	faq = decodeOutput[[]types.FAQ](t, env.mustRun("--json", "faq", "update", id, "question=¿Envían?", "answer=A todo el país"))
	assert.Equal(t, "A todo el país", faq[0].Answer)

	_, err := env.run("faq", "add", "question=solo pregunta")
	assert.Equal(t, exitUserError, ExitCode(err))

	env.mustRun("faq", "delete", id)
	_, err = env.run("faq", "delete", id)
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestListCommands(t *testing.T) {
	env := newCLIEnv(t)
	before := decodeOutput[[]types.ListItem](t, env.mustRun("--json", "list", "show", "contact", "locations"))

	out := env.mustRun("--json", "list", "add", "contact", "locations",
		"name=Centro", "address=Calle 1", "hours=9 a 18")
	added := decodeOutput[[]types.ListItem](t, out)
	require.Len(t, added, 1)
	id := added[0].ID
	require.NotEmpty(t, id)

	after := decodeOutput[[]types.ListItem](t, env.mustRun("--json", "list", "show", "contact", "locations"))
	assert.Len(t, after, len(before)+1)

	env.mustRun("list", "edit", "contact", "locations", id, "name=Norte", "address=Calle 2", "hours=10 a 14")
	after = decodeOutput[[]types.ListItem](t, env.mustRun("--json", "list", "show", "contact", "locations"))
	assert.Equal(t, "Norte", after[len(after)-1].Field("name"))

	env.mustRun("list", "delete", "contact", "locations", id)
	_, err := env.run("list", "delete", "contact", "locations", id)
	assert.Equal(t, exitUserError, ExitCode(err))

	_, err = env.run("list", "show", "home", "title")
	assert.Equal(t, exitUserError, ExitCode(err))
}

func TestExport(t *testing.T) {
	env := newCLIEnv(t)
	env.mustRun("faq", "add", "question=¿Hay retiro?", "answer=Sí")

	dir := filepath.Join(t.TempDir(), "export")
	out := env.mustRun("export", dir)
	assert.Contains(t, out, "Exported to "+dir)
	for _, name := range []string{"site_content.jsonl", "images.jsonl", "products.jsonl", "categories.jsonl", "faqs.jsonl"} {
		assert.FileExists(t, filepath.Join(dir, name))
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, exitSuccess},
		{"validation", &admin.ValidationError{Fields: map[string]string{"name": "required"}}, exitUserError},
		{"not found", fmt.Errorf("get faq: %w", types.ErrNotFound), exitUserError},
		{"system", errors.New("disk full"), exitSysError},
		{"already classified", sysError(types.ErrNotFound), exitSysError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(classify(tt.err)))
		})
	}
	assert.Equal(t, exitUserError, ExitCode(errors.New("unknown flag")))
}
