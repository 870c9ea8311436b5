package gojaengine

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/net/html"

	"github.com/a3st/ABOVE/errors"
)

// pageScript is one executable unit extracted from a document, named for
// script exception reports.
type pageScript struct {
	name   string
	source string
}

// loadedDocument is the parsed form of a navigation target: its title and
// its scripts in document order, external sources already resolved.
type loadedDocument struct {
	title   string
	scripts []pageScript
}

// loadDocument fetches and parses the navigation target. All IO happens
// here, before the document loop starts, so script execution never blocks
// on the network.
func loadDocument(env *environment, rawURL string) (*loadedDocument, error) {
	if rawURL == "about:blank" {
		return &loadedDocument{}, nil
	}

	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, errors.InvalidInput(errors.PhaseNavigate, fmt.Sprintf("malformed url %q: %v", rawURL, err))
	}

	var data []byte
	switch base.Scheme {
	case "http", "https":
		data, err = fetchHTTP(env, rawURL)
	case "file":
		data, err = os.ReadFile(filePath(base))
		if err != nil {
			err = errors.IO(errors.PhaseNavigate, filePath(base), err)
		}
	default:
		return nil, errors.InvalidInput(errors.PhaseNavigate, fmt.Sprintf("unsupported scheme %q", base.Scheme))
	}
	if err != nil {
		return nil, err
	}

	return parseDocument(env, base, data)
}

// parseDocument walks the HTML tree collecting the title and every script
// element. External scripts that fail policy or fetch are skipped with a
// log line, they never fail the navigation.
func parseDocument(env *environment, base *url.URL, data []byte) (*loadedDocument, error) {
	root, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, errors.InvalidInput(errors.PhaseNavigate, fmt.Sprintf("parse %s: %v", base, err))
	}

	doc := &loadedDocument{}
	inline := 0

	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "title":
				if doc.title == "" {
					doc.title = nodeText(n)
				}
			case "script":
				if src := attr(n, "src"); src != "" {
					if s, ok := fetchScript(env, base, src); ok {
						doc.scripts = append(doc.scripts, s)
					}
				} else if text := nodeText(n); strings.TrimSpace(text) != "" {
					inline++
					doc.scripts = append(doc.scripts, pageScript{
						name:   fmt.Sprintf("inline-script-%d", inline),
						source: text,
					})
				}
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(root)

	return doc, nil
}

// fetchScript resolves and loads one external script subject to the
// origin policy: same host and scheme as the document, or anything when
// origin checks are disabled. Local documents may load local scripts.
func fetchScript(env *environment, base *url.URL, src string) (pageScript, bool) {
	ref, err := url.Parse(src)
	if err != nil {
		Logger().Warn("skipped script with malformed src",
			zap.String("src", src), zap.Error(err))
		return pageScript{}, false
	}
	target := base.ResolveReference(ref)

	if !scriptAllowed(env, base, target) {
		Logger().Warn("skipped cross-origin script",
			zap.String("document", base.String()),
			zap.String("script", target.String()))
		return pageScript{}, false
	}

	var data []byte
	switch target.Scheme {
	case "http", "https":
		data, err = fetchHTTP(env, target.String())
	case "file":
		data, err = os.ReadFile(filePath(target))
	default:
		err = fmt.Errorf("unsupported scheme %q", target.Scheme)
	}
	if err != nil {
		Logger().Warn("skipped unreachable script",
			zap.String("script", target.String()), zap.Error(err))
		return pageScript{}, false
	}

	return pageScript{name: target.String(), source: string(data)}, true
}

func scriptAllowed(env *environment, base, target *url.URL) bool {
	if env.anyOrigin {
		// Remote documents still may not read the local disk.
		return !(target.Scheme == "file" && base.Scheme != "file")
	}
	switch target.Scheme {
	case "file":
		return base.Scheme == "file"
	case "http", "https":
		return target.Scheme == base.Scheme && target.Host == base.Host
	default:
		return false
	}
}

func fetchHTTP(env *environment, rawURL string) ([]byte, error) {
	resp, err := env.client.Get(rawURL)
	if err != nil {
		return nil, errors.IO(errors.PhaseNavigate, rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.IO(errors.PhaseNavigate, rawURL,
			fmt.Errorf("unexpected status %s", resp.Status))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.IO(errors.PhaseNavigate, rawURL, err)
	}
	return data, nil
}

// filePath maps a file URL path to an OS path, stripping the leading
// slash Windows drive paths carry in URL form.
func filePath(u *url.URL) string {
	p := u.Path
	if len(p) >= 3 && p[0] == '/' && p[2] == ':' {
		p = p[1:]
	}
	return filepath.FromSlash(p)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.TextNode {
			b.WriteString(c.Data)
		}
	}
	return b.String()
}
