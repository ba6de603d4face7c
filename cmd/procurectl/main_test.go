package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"procurement/pkg/dashboard"
	"procurement/pkg/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// backend answers the few routes the commands below touch.
func backend(t *testing.T) (*httptest.Server, func() []string) {
	t.Helper()
	var (
		mu   sync.Mutex
		hits []string
	)
	reply := func(w http.ResponseWriter, status int, data interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"status": "success", "status_code": status, "data": data})
	}
	user := map[string]interface{}{"id": "u1", "firstName": "Anna", "lastName": "Rossi", "email": "anna@example.com", "role": "Dipendente"}
	request := map[string]interface{}{
		"_id": "r1", "idUtente": user, "idCategoria": "c1", "quantita": 2, "costo": 2000,
		"motivazione": "Need for new hire onboarding", "stato": "In attesa",
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		hits = append(hits, r.Method+" "+r.URL.Path)
		mu.Unlock()
		switch r.Method + " " + r.URL.Path {
		case "POST /api/login":
			reply(w, http.StatusOK, map[string]interface{}{"token": "tok", "user": user})
		case "POST /api/logout":
			reply(w, http.StatusOK, nil)
		case "GET /api/categorie":
			reply(w, http.StatusOK, []interface{}{map[string]interface{}{"_id": "c1", "descrizione": "Laptop", "costo": 1000}})
		case "POST /api/richieste":
			reply(w, http.StatusCreated, request)
		case "GET /api/richieste":
			reply(w, http.StatusOK, []interface{}{request})
		default:
			reply(w, http.StatusNotFound, nil)
		}
	}))
	t.Cleanup(srv.Close)
	return srv, func() []string {
		mu.Lock()
		defer mu.Unlock()
		return append([]string(nil), hits...)
	}
}

func TestCommandsAgainstBackend(t *testing.T) {
	srv, hits := backend(t)
	var out bytes.Buffer
	a, err := newApp(srv.URL+"/api", session.NewMemoryStorage(), strings.NewReader(""), &out)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, a.run(ctx, "login", []string{"anna@example.com", "-p", "secret1"}))
	assert.Contains(t, out.String(), "Benvenuto Anna Rossi")

	err = a.run(ctx, "create", []string{"-c", "c1", "-q", "2", "-r", "too short"})
	require.Error(t, err)
	assert.Contains(t, describe(err), "almeno 10 caratteri")
	assert.NotContains(t, hits(), "POST /api/richieste")

	out.Reset()
	require.NoError(t, a.run(ctx, "create", []string{"-c", "c1", "-q", "2", "-r", "Need for new hire onboarding"}))
	assert.Contains(t, out.String(), "Costo: 2000.00")
	assert.Contains(t, out.String(), "Richiesta r1 creata (In attesa)")

	out.Reset()
	require.NoError(t, a.run(ctx, "list", nil))
	assert.Contains(t, out.String(), "Laptop")
	assert.Contains(t, out.String(), "Anna Rossi")

	require.NoError(t, a.run(ctx, "logout", nil))
	before := len(hits())
	err = a.run(ctx, "list", nil)
	assert.ErrorIs(t, err, dashboard.ErrLoginRequired)
	err = a.run(ctx, "dashboard", nil)
	assert.ErrorIs(t, err, dashboard.ErrLoginRequired)
	assert.Len(t, hits(), before, "no protected call after logout")
}

func TestDeleteDeclinedAtPrompt(t *testing.T) {
	srv, hits := backend(t)
	var out bytes.Buffer
	a, err := newApp(srv.URL+"/api", session.NewMemoryStorage(), strings.NewReader("n\n"), &out)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, a.run(ctx, "login", []string{"anna@example.com", "--password", "secret1"}))

	err = a.run(ctx, "delete", []string{"r1"})
	assert.Equal(t, "operazione annullata", describe(err))
	assert.Contains(t, out.String(), "[s/N]")
	assert.NotContains(t, hits(), "DELETE /api/richieste/r1")
}

func TestUnknownCommand(t *testing.T) {
	a, err := newApp("http://127.0.0.1:0", session.NewMemoryStorage(), strings.NewReader(""), &bytes.Buffer{})
	require.NoError(t, err)
	err = a.run(context.Background(), "frobnicate", nil)
	assert.ErrorIs(t, err, errUsage)
}
