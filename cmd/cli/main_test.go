package main

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setFlags resets the package-level flag values runDump reads. Tests that
// use it cannot run in parallel.
func setFlags(out, id, secret, token string) {
	output = out
	corpID = id
	corpSecret = secret
	accessToken = token
	userAgent = ""
	proxy = ""
	proxyUser = ""
	proxyPassword = ""
	overwrite = false
	recursive = false
	agentDetails = false
	delayMS = 1
	verbose = false
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"WX_CORP_ID", "WX_CORP_SECRET", "WX_ACCESS_TOKEN",
		"WX_PROXY", "WX_PROXY_USER", "WX_PROXY_PASSWORD", "WX_USER_AGENT",
	} {
		t.Setenv(key, "")
	}
}

func TestRunDumpFailsOnInvalidSecret(t *testing.T) {
	clearEnv(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"errcode":40001,"errmsg":"invalid credential"}`))
	}))
	t.Cleanup(server.Close)
	t.Setenv("WX_BASE_URL", server.URL)

	out := filepath.Join(t.TempDir(), "out")
	setFlags(out, "corp-1", "wrong-secret", "")

	err := runDump(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authenticate")

	// The output directory exists but nothing was written into it.
	entries, readErr := os.ReadDir(out)
	require.NoError(t, readErr)
	assert.Empty(t, entries)
}

func TestRunDumpFailsOnMissingCredentials(t *testing.T) {
	clearEnv(t)

	setFlags(filepath.Join(t.TempDir(), "out"), "", "", "")

	err := runDump(rootCmd, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

func TestRunDumpHappyPath(t *testing.T) {
	clearEnv(t)

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("/cgi-bin/gettoken", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"errcode":0,"errmsg":"ok","access_token":"tok","expires_in":7200}`)
	})
	mux.HandleFunc("/cgi-bin/agent/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"errcode":0,"errmsg":"ok","agentlist":[{"agentid":1,"name":"portal"}]}`)
	})
	mux.HandleFunc("/cgi-bin/department/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"errcode":0,"errmsg":"ok","department":[{"id":1,"name":"HR","order":1}]}`)
	})
	mux.HandleFunc("/cgi-bin/user/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"errcode":0,"errmsg":"ok","userlist":[{"userid":"u","name":"m","department":[1],"order":[],"is_leader_in_dept":[],"extattr":{}}]}`)
	})
	mux.HandleFunc("/cgi-bin/tag/list", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"errcode":0,"errmsg":"ok","taglist":[{"tagid":1,"tagname":"alumni"}]}`)
	})
	mux.HandleFunc("/cgi-bin/tag/get", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, `{"errcode":0,"errmsg":"ok","userlist":[],"partylist":[],"tagname":"alumni"}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("WX_BASE_URL", server.URL)

	out := filepath.Join(t.TempDir(), "out")
	setFlags(out, "corp-1", "secret-1", "")

	require.NoError(t, runDump(rootCmd, nil))

	for _, name := range []string{
		"agents.json",
		"departments.json",
		filepath.Join("departments", "members-1-HR.json"),
		"tags.json",
		filepath.Join("tags", "_empty.txt"),
	} {
		_, err := os.Stat(filepath.Join(out, name))
		assert.NoError(t, err, "expected %s to exist", name)
	}

	data, err := os.ReadFile(filepath.Join(out, "tags", "_empty.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(data), fmt.Sprintf("%d - %s", 1, "alumni"))
}

func TestRunDumpWithPreIssuedToken(t *testing.T) {
	clearEnv(t)

	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, body string) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}
	mux.HandleFunc("/cgi-bin/gettoken", func(w http.ResponseWriter, r *http.Request) {
		t.Error("the token endpoint must not be called when a token is supplied")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "pre-issued", r.URL.Query().Get("access_token"))
		writeJSON(w, `{"errcode":0,"errmsg":"ok","agentlist":[],"department":[],"taglist":[]}`)
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	t.Setenv("WX_BASE_URL", server.URL)

	out := filepath.Join(t.TempDir(), "out")
	setFlags(out, "", "", "pre-issued")

	require.NoError(t, runDump(rootCmd, nil))

	_, err := os.Stat(filepath.Join(out, "agents.json"))
	assert.NoError(t, err)
}
