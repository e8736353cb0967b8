// Package testutil provides testing utilities for smrelease tests: a fake
// Sentry release API and helpers for laying out build output on disk.
package testutil

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

// Call kinds recorded by FakeSentry.
const (
	CallCreateRelease = "create_release"
	CallCreateFile    = "create_file"
)

// Call is one request received by FakeSentry.
type Call struct {
	Kind    string
	Org     string
	Project string
	Version string
	Name    string // release file name (CallCreateFile only)
	Body    []byte // uploaded file content (CallCreateFile only)
	Start   time.Time
	End     time.Time
}

// FakeSentry is an in-process stand-in for the Sentry release endpoints.
// It records every call in arrival order and tracks how many file uploads
// were in flight at once.
type FakeSentry struct {
	Server *httptest.Server
	Token  string

	// UploadDelay holds every file upload open for this long.
	UploadDelay time.Duration
	// ReleaseStatus, when non-zero, is returned by create-release instead of 201.
	ReleaseStatus int
	// FileStatus maps release file names to a forced response status.
	FileStatus map[string]int
	// RejectExisting answers 409 when a release is created twice. By default
	// the fake answers 208 like Sentry does.
	RejectExisting bool

	mu       sync.Mutex
	calls    []Call
	releases map[string]bool

	inFlight atomic.Int64
	peak     atomic.Int64
}

// NewFakeSentry starts a fake server accepting the given bearer token.
// The server is closed when the test ends.
func NewFakeSentry(t testing.TB, token string) *FakeSentry {
	t.Helper()

	gin.SetMode(gin.TestMode)
	f := &FakeSentry{
		Token:      token,
		FileStatus: map[string]int{},
		releases:   map[string]bool{},
	}

	r := gin.New()
	api := r.Group("/api/0/projects/:org/:project", f.authenticate)
	api.POST("/releases/", f.createRelease)
	api.POST("/releases/:version/files/", f.createFile)

	f.Server = httptest.NewServer(r)
	t.Cleanup(f.Server.Close)
	return f
}

// URL returns the server's base URL.
func (f *FakeSentry) URL() string {
	return f.Server.URL
}

// Calls returns a copy of every recorded call, in arrival order.
func (f *FakeSentry) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// Files returns the recorded file uploads keyed by release file name.
func (f *FakeSentry) Files() map[string]Call {
	out := map[string]Call{}
	for _, c := range f.Calls() {
		if c.Kind == CallCreateFile {
			out[c.Name] = c
		}
	}
	return out
}

// PeakUploads returns the highest number of file uploads in flight at once.
func (f *FakeSentry) PeakUploads() int {
	return int(f.peak.Load())
}

// AddRelease marks a release as already existing.
func (f *FakeSentry) AddRelease(org, project, version string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.releases[org+"/"+project+"/"+version] = true
}

func (f *FakeSentry) record(c Call) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, c)
}

func (f *FakeSentry) authenticate(c *gin.Context) {
	if c.GetHeader("Authorization") != "Bearer "+f.Token {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "Invalid token"})
		return
	}
	c.Next()
}

func (f *FakeSentry) createRelease(c *gin.Context) {
	start := time.Now()
	var body struct {
		Version string `json:"version"`
	}
	if err := c.ShouldBindJSON(&body); err != nil || body.Version == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "version is required"})
		return
	}

	org, project := c.Param("org"), c.Param("project")
	f.record(Call{Kind: CallCreateRelease, Org: org, Project: project, Version: body.Version, Start: start, End: time.Now()})

	if f.ReleaseStatus != 0 {
		c.JSON(f.ReleaseStatus, gin.H{"detail": http.StatusText(f.ReleaseStatus)})
		return
	}

	key := org + "/" + project + "/" + body.Version
	f.mu.Lock()
	exists := f.releases[key]
	f.releases[key] = true
	f.mu.Unlock()
	switch {
	case exists && f.RejectExisting:
		c.JSON(http.StatusConflict, gin.H{"detail": "Release with this version already exists"})
		return
	case exists:
		c.JSON(http.StatusAlreadyReported, gin.H{"version": body.Version})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"version": body.Version})
}

func (f *FakeSentry) createFile(c *gin.Context) {
	n := f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}

	start := time.Now()
	org, project, version := c.Param("org"), c.Param("project"), c.Param("version")

	name := c.PostForm("name")
	header, err := c.FormFile("file")
	if err != nil || name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"detail": "name and file are required"})
		return
	}
	file, err := header.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"detail": err.Error()})
		return
	}
	content, _ := io.ReadAll(file)
	file.Close()

	if f.UploadDelay > 0 {
		time.Sleep(f.UploadDelay)
	}

	f.record(Call{
		Kind: CallCreateFile, Org: org, Project: project, Version: version,
		Name: name, Body: content, Start: start, End: time.Now(),
	})

	f.mu.Lock()
	exists := f.releases[org+"/"+project+"/"+version]
	f.mu.Unlock()
	if !exists {
		c.JSON(http.StatusNotFound, gin.H{"detail": "Release not found"})
		return
	}
	if status, ok := f.FileStatus[name]; ok {
		c.JSON(status, gin.H{"detail": http.StatusText(status)})
		return
	}
	c.JSON(http.StatusCreated, gin.H{"name": name, "size": len(content)})
}

// WriteFiles creates files under dir from a map of relative path to content
// and returns the absolute paths keyed the same way.
func WriteFiles(t testing.TB, dir string, files map[string]string) map[string]string {
	t.Helper()

	paths := make(map[string]string, len(files))
	for rel, content := range files {
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0755); err != nil {
			t.Fatalf("failed to create directory for %s: %v", rel, err)
		}
		if err := os.WriteFile(full, []byte(content), 0644); err != nil {
			t.Fatalf("failed to write %s: %v", rel, err)
		}
		paths[rel] = full
	}
	return paths
}

// FileExists reports whether path exists on disk.
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
