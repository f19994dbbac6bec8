package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haatos/freestyle-multibranch/internal/multibranch"
	"github.com/haatos/freestyle-multibranch/internal/scm"
	"github.com/haatos/freestyle-multibranch/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errDatabase = errors.New("database is locked")

func generateBranch(name string) scm.Branch {
	return scm.NewBranch(
		name,
		scm.Head{Name: name, Kind: scm.HeadBranch},
		scm.Binding{Kind: "git", Remote: "https://example.com/repo.git", Ref: "refs/heads/" + name},
	)
}

func generateProject(t *testing.T, name string, branches ...string) *multibranch.Project {
	t.Helper()
	p := multibranch.NewProject(name, nil, nil)
	f := p.NewProjectFactory()
	for _, b := range branches {
		job, err := f.NewInstance(generateBranch(b))
		require.NoError(t, err)
		require.NoError(t, p.Put(job))
	}
	return p
}

func generateNode(name string) *store.Node {
	return &store.Node{
		NodeID:            1,
		Name:              name,
		Hostname:          "10.0.0.2:22",
		Workspace:         "/var/lib/builds",
		Username:          "builder",
		SSHPrivateKeyHash: "secret",
		Online:            true,
		Description:       "linux node",
	}
}

func generateBuild(job string) *store.Build {
	return &store.Build{
		BuildID:       "5a2d6a4e-96ab-4c4f-8a7b-1c0f1f7a3d11",
		JobName:       job,
		NodeName:      "controller",
		WorkspacePath: "workspace/web/" + job,
		HeadName:      job,
		Status:        store.StatusRunning,
		StartedOn:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func newJSONContext(method, target string, body any) (echo.Context, *httptest.ResponseRecorder) {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	e := echo.New()
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func assertHTTPError(t *testing.T, err error, code int) {
	t.Helper()
	var he *echo.HTTPError
	if assert.ErrorAs(t, err, &he) {
		assert.Equal(t, code, he.Code)
	}
}
