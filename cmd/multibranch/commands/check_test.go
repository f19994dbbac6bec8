package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/haatos/freestyle-multibranch/internal/printer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func makeCheckout(t *testing.T, files ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, f := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, f), []byte("x"), 0o644))
	}
	return dir
}

func TestLocalCandidates(t *testing.T) {
	t.Run("success - names from prefix or directory", func(t *testing.T) {
		// arrange
		dir := makeCheckout(t)

		// act
		candidates, err := localCandidates([]string{"feature/login=" + dir, dir})

		// assert
		require.NoError(t, err)
		require.Len(t, candidates, 2)
		assert.Equal(t, "feature/login", candidates[0].Branch.Name)
		assert.Equal(t, filepath.Base(dir), candidates[1].Branch.Name)
		assert.NotNil(t, candidates[0].Probe)
	})
	t.Run("failure - not a directory", func(t *testing.T) {
		// arrange
		dir := makeCheckout(t, "marker.txt")

		// act
		_, err := localCandidates([]string{filepath.Join(dir, "marker.txt")})

		// assert
		assert.Error(t, err)
	})
}

func TestRunCheck(t *testing.T) {
	t.Run("success - marker criteria verdicts", func(t *testing.T) {
		// arrange
		out := new(bytes.Buffer)
		prevOut := printer.Out
		printer.Out = out
		t.Cleanup(func() { printer.Out = prevOut })
		checkTag, checkForm, checkJSON = "marker", map[string]string{"file_name": "Jenkinsfile"}, true
		with := makeCheckout(t, "Jenkinsfile")
		without := makeCheckout(t)

		// act
		err := runCheck(checkCmd, []string{"main=" + with, "feature/x=" + without})

		// assert
		require.NoError(t, err)
		verdicts := map[string]bool{}
		require.NoError(t, json.Unmarshal(out.Bytes(), &verdicts))
		assert.Equal(t, map[string]bool{"main": true, "feature-x": false}, verdicts)
	})
}
