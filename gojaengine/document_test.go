package gojaengine

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/a3st/ABOVE/errors"
)

func testEnvironmentFor(anyOrigin bool) *environment {
	return &environment{
		id:        "test",
		anyOrigin: anyOrigin,
		client:    &http.Client{Timeout: 5 * time.Second},
	}
}

func writeTempHTML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "page.html")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return path
}

func fileURL(path string) string {
	p := filepath.ToSlash(path)
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return "file://" + p
}

func TestLoadDocumentAboutBlank(t *testing.T) {
	doc, err := loadDocument(testEnvironmentFor(false), "about:blank")
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if doc.title != "" || len(doc.scripts) != 0 {
		t.Fatalf("blank document not empty: %+v", doc)
	}
}

func TestLoadDocumentFile(t *testing.T) {
	path := writeTempHTML(t, `<!DOCTYPE html>
<html>
<head><title>Local Page</title></head>
<body>
<script>globalThis.loaded = true;</script>
</body>
</html>`)

	doc, err := loadDocument(testEnvironmentFor(false), fileURL(path))
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if doc.title != "Local Page" {
		t.Fatalf("title = %q, want %q", doc.title, "Local Page")
	}
	if len(doc.scripts) != 1 {
		t.Fatalf("scripts = %d, want 1", len(doc.scripts))
	}
	if doc.scripts[0].name != "inline-script-1" {
		t.Fatalf("script name = %q", doc.scripts[0].name)
	}
	if !strings.Contains(doc.scripts[0].source, "globalThis.loaded") {
		t.Fatalf("script source = %q", doc.scripts[0].source)
	}
}

func TestLoadDocumentMissingFile(t *testing.T) {
	missing := fileURL(filepath.Join(t.TempDir(), "absent.html"))
	_, err := loadDocument(testEnvironmentFor(false), missing)
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseNavigate, Kind: errors.KindIO}) {
		t.Fatalf("unexpected error class: %v", err)
	}
}

func TestLoadDocumentUnsupportedScheme(t *testing.T) {
	_, err := loadDocument(testEnvironmentFor(false), "gopher://example.com/page")
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseNavigate, Kind: errors.KindInvalidInput}) {
		t.Fatalf("unexpected error class: %v", err)
	}
}

func TestLoadDocumentHTTP(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/app.js", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "globalThis.external = 1;")
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Served</title>
<script src="/app.js"></script>
<script>globalThis.inline = 2;</script>
</head><body></body></html>`)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	doc, err := loadDocument(testEnvironmentFor(false), srv.URL+"/")
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if doc.title != "Served" {
		t.Fatalf("title = %q", doc.title)
	}
	if len(doc.scripts) != 2 {
		t.Fatalf("scripts = %d, want 2", len(doc.scripts))
	}
	if doc.scripts[0].name != srv.URL+"/app.js" {
		t.Fatalf("external script name = %q", doc.scripts[0].name)
	}
	if !strings.Contains(doc.scripts[0].source, "external") {
		t.Fatalf("external script source = %q", doc.scripts[0].source)
	}
	if doc.scripts[1].name != "inline-script-1" {
		t.Fatalf("inline script name = %q", doc.scripts[1].name)
	}
}

func TestLoadDocumentHTTPStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	_, err := loadDocument(testEnvironmentFor(false), srv.URL+"/missing")
	if !errors.Is(err, &errors.Error{Phase: errors.PhaseNavigate, Kind: errors.KindIO}) {
		t.Fatalf("unexpected error class: %v", err)
	}
}

func TestLoadDocumentCrossOriginScript(t *testing.T) {
	other := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "globalThis.foreign = true;")
	}))
	defer other.Close()

	page := fmt.Sprintf(`<html><head>
<script src="%s/lib.js"></script>
<script>globalThis.local = true;</script>
</head></html>`, other.URL)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, page)
	}))
	defer srv.Close()

	strict, err := loadDocument(testEnvironmentFor(false), srv.URL+"/")
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if len(strict.scripts) != 1 || strict.scripts[0].name != "inline-script-1" {
		t.Fatalf("strict load kept %d scripts: %+v", len(strict.scripts), strict.scripts)
	}

	open, err := loadDocument(testEnvironmentFor(true), srv.URL+"/")
	if err != nil {
		t.Fatalf("loadDocument: %v", err)
	}
	if len(open.scripts) != 2 {
		t.Fatalf("open load kept %d scripts, want 2", len(open.scripts))
	}
}

func TestScriptAllowed(t *testing.T) {
	parse := func(s string) *url.URL {
		u, err := url.Parse(s)
		if err != nil {
			t.Fatalf("parse %q: %v", s, err)
		}
		return u
	}

	cases := []struct {
		name      string
		anyOrigin bool
		doc       string
		script    string
		want      bool
	}{
		{"same origin", false, "http://a.example/page", "http://a.example/app.js", true},
		{"other host", false, "http://a.example/page", "http://b.example/app.js", false},
		{"scheme upgrade", false, "http://a.example/page", "https://a.example/app.js", false},
		{"file from file", false, "file:///srv/page.html", "file:///srv/app.js", true},
		{"remote from file", false, "file:///srv/page.html", "https://a.example/app.js", false},
		{"file from remote", false, "http://a.example/page", "file:///etc/app.js", false},
		{"other host unlocked", true, "http://a.example/page", "http://b.example/app.js", true},
		{"remote from file unlocked", true, "file:///srv/page.html", "https://a.example/app.js", true},
		{"file from remote stays blocked", true, "http://a.example/page", "file:///etc/app.js", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			env := testEnvironmentFor(tc.anyOrigin)
			got := scriptAllowed(env, parse(tc.doc), parse(tc.script))
			if got != tc.want {
				t.Fatalf("scriptAllowed = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestFilePathStripsDrivePrefix(t *testing.T) {
	u, err := url.Parse("file:///C:/Temp/app.html")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := filePath(u), filepath.FromSlash("C:/Temp/app.html"); got != want {
		t.Fatalf("filePath = %q, want %q", got, want)
	}

	u, err = url.Parse("file:///srv/app.html")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got, want := filePath(u), filepath.FromSlash("/srv/app.html"); got != want {
		t.Fatalf("filePath = %q, want %q", got, want)
	}
}
