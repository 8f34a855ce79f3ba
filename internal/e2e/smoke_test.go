package e2e

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stateBody = `{
  "ok": true,
  "config": {"draft_status": "closed"},
  "current": {"pick_number": 1, "direction": 1, "on_the_clock_name": "Alice"},
  "players": [{"player_id": "p1", "display_name": "Alice"}],
  "projections": [{"pair_id": 1, "sport": "Biathlon", "country": "FRA", "power_rank": 1, "projected_points": 12.5, "num_medals": 4, "last_year_score": 11}],
  "taken_pair_ids": [],
  "leaderboard": [{"player_id": "p1", "display_name": "Alice", "total_projected_points": 0, "picks_made": 0}],
  "teams": {"p1": []}
}`

func TestSmokeFlow(t *testing.T) {
	home := t.TempDir()
	binaryPath := buildBinary(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "state", r.URL.Query().Get("route"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(stateBody))
	}))
	t.Cleanup(server.Close)

	stdout, stderr, err := runFdraft(t, binaryPath, home, "version")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.NotEmpty(t, stdout)

	_, stderr, err = runFdraft(t, binaryPath, home, "config", "set", "endpoint", server.URL+"/exec")
	require.NoError(t, err, "stderr: %s", stderr)

	stdout, stderr, err = runFdraft(t, binaryPath, home, "config", "show")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "endpoint = "+server.URL+"/exec")

	stdout, stderr, err = runFdraft(t, binaryPath, home, "board", "--json")
	require.NoError(t, err, "stderr: %s", stderr)
	assert.Contains(t, stdout, "\"Biathlon\"")
	assert.Contains(t, stdout, "\"CLOSED\"")
}

func buildBinary(t *testing.T) string {
	t.Helper()

	binaryPath := filepath.Join(t.TempDir(), "fdraft-e2e")
	cmd := exec.Command("go", "build", "-o", binaryPath, "./cmd/fdraft")
	cmd.Dir = repoRoot(t)

	output, err := cmd.CombinedOutput()
	require.NoError(t, err, "build fdraft binary: %s", string(output))
	return binaryPath
}

func runFdraft(t *testing.T, binaryPath, home string, args ...string) (string, string, error) {
	t.Helper()

	cmd := exec.Command(binaryPath, args...)
	cmd.Env = append(cleanEnv(), "HOME="+home)

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	return stdout.String(), stderr.String(), err
}

// cleanEnv drops FDRAFT_ variables so the developer's settings do not leak in.
func cleanEnv() []string {
	env := make([]string, 0, len(os.Environ()))
	for _, kv := range os.Environ() {
		if len(kv) >= 7 && kv[:7] == "FDRAFT_" {
			continue
		}
		env = append(env, kv)
	}
	return env
}

func repoRoot(t *testing.T) string {
	t.Helper()

	wd, err := os.Getwd()
	require.NoError(t, err)
	return filepath.Clean(filepath.Join(wd, "..", ".."))
}
