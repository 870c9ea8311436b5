package adapter

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/tidwall/gjson"

	"github.com/a3st/ABOVE/bridge"
	"github.com/a3st/ABOVE/gojaengine"
	"github.com/a3st/ABOVE/window"
)

func newEngineAdapter(t *testing.T, cfg Config) *Adapter {
	t.Helper()

	if cfg.Desktop == nil {
		cfg.Desktop = window.NewDesktop(window.Config{})
	}
	cfg.Runtime = gojaengine.New()
	cfg.AppName = "above-e2e"
	cfg.DataDir = t.TempDir()
	if cfg.Title == "" {
		cfg.Title = "e2e"
	}
	if cfg.Width == 0 {
		cfg.Width = 640
	}
	if cfg.Height == 0 {
		cfg.Height = 480
	}

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() {
		a.Close()
		cfg.Desktop.Close()
	})

	// Unstick the loop if an expectation never fires.
	guard := time.AfterFunc(30*time.Second, a.Quit)
	t.Cleanup(func() { guard.Stop() })
	return a
}

func writePage(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "app.html")
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write page: %v", err)
	}
	return path
}

func TestEndToEndInvokeCompletion(t *testing.T) {
	a := newEngineAdapter(t, Config{Resizable: true})

	var done []string
	if err := a.Bind("host.add", func(index uint64, args []byte) {
		vals := gjson.ParseBytes(args).Array()
		if len(vals) != 2 {
			t.Errorf("host.add args = %s", args)
			a.Quit()
			return
		}
		sum := vals[0].Int() + vals[1].Int()
		if err := a.CompleteResult(index, true, strconv.FormatInt(sum, 10)); err != nil {
			t.Errorf("CompleteResult: %v", err)
		}
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := a.Bind("host.done", func(index uint64, args []byte) {
		done = append(done, string(args))
		_ = a.CompleteResult(index, true, "null")
		a.Quit()
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	page := writePage(t, `<html><head><title>e2e</title></head><body>
<script>
webview.invoke("host.add", 20, 22).then(function (v) {
	return webview.invoke("host.done", v);
});
</script>
</body></html>`)

	if err := a.Run(page); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(done) != 1 || done[0] != "[42]" {
		t.Fatalf("host.done args = %v, want [\"[42]\"]", done)
	}
	if !a.Window().Visible() {
		t.Fatal("window not shown after navigation")
	}

	stats := a.Stats()
	if stats.Received != 2 || stats.Dispatched != 2 {
		t.Fatalf("stats = %+v, want 2 received, 2 dispatched", stats)
	}
}

func TestEndToEndEventPush(t *testing.T) {
	a := newEngineAdapter(t, Config{})

	var got []string
	if err := a.Bind("host.ready", func(index uint64, args []byte) {
		_ = a.CompleteResult(index, true, "null")
		if err := a.EmitEvent("greeting", `{"text":"hello"}`); err != nil {
			t.Errorf("EmitEvent: %v", err)
		}
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}
	if err := a.Bind("host.echo", func(index uint64, args []byte) {
		got = append(got, string(args))
		_ = a.CompleteResult(index, true, "null")
		a.Quit()
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	page := writePage(t, `<html><body>
<script>
webview.event("greeting", function (data) {
	webview.invoke("host.echo", data.text);
});
webview.invoke("host.ready");
</script>
</body></html>`)

	if err := a.Run(page); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if len(got) != 1 || got[0] != `["hello"]` {
		t.Fatalf("echoed event payload = %v", got)
	}
}

func TestEndToEndPoolExhaustion(t *testing.T) {
	a := newEngineAdapter(t, Config{MaxPendingResults: 2})

	held := 0
	if err := a.Bind("host.hold", func(index uint64, args []byte) {
		// Never completed; the indices stay allocated.
		held++
	}); err != nil {
		t.Fatalf("Bind: %v", err)
	}

	var reports []string
	a.Router().SetTap(func(tr bridge.Trace) {
		if tr.Outcome != bridge.OutcomeDroppedMalformed {
			return
		}
		reports = append(reports, string(tr.Payload))
		a.Quit()
	})

	page := writePage(t, `<html><body>
<script>
webview.invoke("host.hold", 1);
webview.invoke("host.hold", 2);
var caught = "none";
try {
	webview.invoke("host.hold", 3);
} catch (e) {
	caught = (e instanceof RangeError) ? "range" : ("" + e);
}
window.chrome.webview.postMessage("caught:" + caught);
</script>
</body></html>`)

	if err := a.Run(page); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if held != 2 {
		t.Fatalf("held invocations = %d, want 2", held)
	}
	if len(reports) != 1 || reports[0] != "caught:range" {
		t.Fatalf("exhaustion report = %v, want [caught:range]", reports)
	}

	stats := a.Stats()
	if stats.Received != 3 || stats.Dispatched != 2 || stats.DroppedMalformed != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}
