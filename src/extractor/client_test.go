package extractor

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/username/mpesaviz/backend/src/logger"
)

func TestMain(m *testing.M) {
	logger.InitLogger("error")
	os.Exit(m.Run())
}

func TestClientSubmit(t *testing.T) {
	var (
		gotToken    string
		gotPassCode string
		gotFilename string
		gotContent  string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotToken = r.FormValue("token")
		gotPassCode = r.FormValue("pass_code")

		file, header, err := r.FormFile("the_file")
		require.NoError(t, err)
		defer file.Close()
		gotFilename = header.Filename
		content, err := io.ReadAll(file)
		require.NoError(t, err)
		gotContent = string(content)

		w.WriteHeader(http.StatusAccepted)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	err := client.Submit(context.Background(), "tok-1", "statement.pdf", "1234", strings.NewReader("%PDF-1.4 body"))
	require.NoError(t, err)

	assert.Equal(t, "tok-1", gotToken)
	assert.Equal(t, "1234", gotPassCode)
	assert.Equal(t, "statement.pdf", gotFilename)
	assert.Equal(t, "%PDF-1.4 body", gotContent)
}

func TestClientSubmitOmitsEmptyPassCode(t *testing.T) {
	var hasPassCode bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))
		_, hasPassCode = r.MultipartForm.Value["pass_code"]
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	err := client.Submit(context.Background(), "tok-2", "statement.pdf", "", strings.NewReader("%PDF-1.4"))
	require.NoError(t, err)
	assert.False(t, hasPassCode)
}

func TestClientSubmitNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "extractor busy", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	err := client.Submit(context.Background(), "tok-3", "statement.pdf", "", strings.NewReader("%PDF-1.4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
	assert.Contains(t, err.Error(), "extractor busy")
}

func TestClientSubmitUnreachableService(t *testing.T) {
	client := NewClient("http://127.0.0.1:1", time.Second)
	err := client.Submit(context.Background(), "tok-4", "statement.pdf", "", strings.NewReader("%PDF-1.4"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "transfer failed")
}
