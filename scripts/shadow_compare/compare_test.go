package main

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBodiesEqualNormalizesPercentagesAndIgnoredKeys(t *testing.T) {
	legacy := []byte(`[{"_id":"64f0","name":"Asha","attendancePercentage":"75.00","totalClasses":4}]`)
	goBody := []byte(`[{"_id":"6a1c-uuid","name":"Asha","attendancePercentage":75,"totalClasses":4}]`)

	assert.True(t, bodiesEqual(goBody, legacy, []string{"_id"}))
	assert.False(t, bodiesEqual(goBody, legacy, nil))
}

func TestBodiesEqualNonJSON(t *testing.T) {
	assert.True(t, bodiesEqual([]byte("ok\n"), []byte("ok"), nil))
	assert.False(t, bodiesEqual([]byte("ok"), []byte("nope"), nil))
}

func TestComparerSendsRoleToken(t *testing.T) {
	var goAuth, legacyAuth string
	goSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		goAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer goSrv.Close()
	legacySrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		legacyAuth = r.Header.Get("Authorization")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"ok"}`))
	}))
	defer legacySrv.Close()

	cmp := comparer{
		client:     goSrv.Client(),
		goSide:     endpoint{base: goSrv.URL, tokens: map[string]string{roleProfessor: "go-token"}},
		legacySide: endpoint{base: legacySrv.URL, tokens: map[string]string{roleProfessor: "legacy-token"}},
	}
	res := cmp.compare(target{Method: "GET", Path: "professor/dashboard", Role: roleProfessor})

	require.NoError(t, res.Error)
	assert.Equal(t, "Bearer go-token", goAuth)
	assert.Equal(t, "Bearer legacy-token", legacyAuth)
	assert.False(t, res.StatusMatch)
	assert.True(t, res.BodyMatch)
	assert.True(t, res.diverged())
}

func TestLoadTargetsRejectsEmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "targets.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"targets":[]}`), 0o600))

	_, err := loadTargets(path)
	assert.Error(t, err)
}
