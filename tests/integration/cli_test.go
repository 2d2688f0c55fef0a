// CLI and HTTP integration tests for the storefront binary.
package integration

import (
	"fmt"
	"io"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestMain builds the storefront binary once before running tests.
func TestMain(m *testing.M) {
	projectRoot, err := FindProjectRoot()
	if err != nil {
		fmt.Fprintln(os.Stderr, "find project root:", err)
		os.Exit(1)
	}

	tmpDir, err := os.MkdirTemp("", "storefront-test-*")
	if err != nil {
		fmt.Fprintln(os.Stderr, "create temp dir:", err)
		os.Exit(1)
	}
	storefrontBin = filepath.Join(tmpDir, "storefront")

	cmd := exec.Command("go", "build", "-o", storefrontBin, "./cmd/storefront")
	cmd.Dir = projectRoot
	if output, err := cmd.CombinedOutput(); err != nil {
		buildErr = &BuildError{Err: err, Output: string(output)}
	}

	code := m.Run()
	os.RemoveAll(tmpDir)
	os.Exit(code)
}

func TestInitSeedsContent(t *testing.T) {
	env := NewTestEnv(t)

	result := env.MustRun("init")
	assert.Contains(t, result.Stdout, "Storefront initialized")

	rows := ReadJSONLFile[ContentRow](t, filepath.Join(env.DataDir, "site_content.jsonl"))
	require.NotEmpty(t, rows)
	sections := map[string]bool{}
	for _, r := range rows {
		sections[r.Section] = true
	}
	for _, s := range []string{"home", "about", "contact", "footer"} {
		assert.True(t, sections[s], "seeded section %s", s)
	}
}

func TestContentSurvivesRestart(t *testing.T) {
	env := NewTestEnv(t)
	env.MustRun("content", "set", "home", "title", "Miel del Valle")

	// Each invocation attaches again and rebuilds sqlite from JSONL.
	result := env.MustRun("--json", "content", "get", "home", "title")
	assert.Equal(t, "Miel del Valle", ParseJSON[string](t, result.Stdout))

	rows := ReadJSONLFile[ContentRow](t, filepath.Join(env.DataDir, "site_content.jsonl"))
	found := false
	for _, r := range rows {
		if r.Section == "home" && r.Element == "title" {
			found = true
			assert.Equal(t, "text", r.Kind)
			assert.Equal(t, "Miel del Valle", r.Content)
		}
	}
	assert.True(t, found, "home.title row in JSONL")
}

func TestExitCodes(t *testing.T) {
	env := NewTestEnv(t)

	tests := []struct {
		name string
		args []string
		want int
	}{
		{"success", []string{"version"}, 0},
		{"validation", []string{"product", "add", "name="}, 1},
		{"unknown form", []string{"content", "form", "nope"}, 1},
		{"unknown command", []string{"frobnicate"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := env.Run(tt.args...)
			assert.Equal(t, tt.want, result.ExitCode, "stderr: %s", result.Stderr)
			if tt.want != 0 {
				assert.Contains(t, result.Stderr, "Error:")
			}
		})
	}
}

func TestServeAndShutdown(t *testing.T) {
	env := NewTestEnv(t)
	env.Env = []string{"STOREFRONT_AUTH_ADMIN_TOKENS=integration-token"}
	env.MustRun("init")

	addr := FreeAddr(t)
	cmd := env.Command("serve", "--addr", addr)
	var stderr strings.Builder
	cmd.Stderr = &stderr
	require.NoError(t, cmd.Start())
	var waitErr error
	exited := make(chan struct{})
	go func() {
		waitErr = cmd.Wait()
		close(exited)
	}()
	t.Cleanup(func() {
		select {
		case <-exited:
		default:
			cmd.Process.Kill()
			<-exited
		}
	})

	base := "http://" + addr
	require.Eventually(t, func() bool {
		resp, err := http.Get(base + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 10*time.Second, 100*time.Millisecond, "server did not become healthy")

	resp, err := http.Get(base + "/api/content/home")
	require.NoError(t, err)
	body, _ := io.ReadAll(resp.Body)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), `"title"`)

	postFAQ := func(token string) int {
		req, err := http.NewRequest(http.MethodPost, base+"/api/admin/faqs",
			strings.NewReader(`{"question":"¿Envían?","answer":"Sí"}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		return resp.StatusCode
	}
	assert.Equal(t, http.StatusUnauthorized, postFAQ(""))
	assert.Equal(t, http.StatusUnauthorized, postFAQ("wrong"))
	assert.Equal(t, http.StatusCreated, postFAQ("integration-token"))

	require.NoError(t, cmd.Process.Signal(syscall.SIGTERM))
	select {
	case <-exited:
		assert.NoError(t, waitErr, "stderr: %s", stderr.String())
		assert.Contains(t, stderr.String(), "server stopped")
	case <-time.After(15 * time.Second):
		t.Fatal("server did not stop after SIGTERM")
	}
}
