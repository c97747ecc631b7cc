package cmd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/viper"

	"github.com/tsawler/go-clhost/transcript"
)

func testSession(t *testing.T) *session {
	t.Helper()
	viper.Reset()
	viper.Set("driver", "soft")
	s, err := openSession()
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	return s
}

func TestOpenDriver(t *testing.T) {
	viper.Reset()
	viper.Set("driver", "soft")
	viper.Set("soft.device_name", "configured device")
	drv, err := openDriver()
	if err != nil {
		t.Fatalf("openDriver failed: %v", err)
	}
	if drv.Name() != "soft" {
		t.Errorf("Expected soft driver, got %s", drv.Name())
	}

	viper.Set("driver", "cuda")
	if _, err := openDriver(); err == nil {
		t.Error("Expected unknown driver to fail")
	}
}

func TestListDevices(t *testing.T) {
	viper.Reset()
	viper.Set("soft.device_name", "configured device")
	s, err := openSession()
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	rows, err := listDevices(s.module)
	if err != nil {
		t.Fatalf("listDevices failed: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("Expected 1 device, got %d", len(rows))
	}
	if rows[0].Device != "configured device" || rows[0].Type != "CPU" {
		t.Errorf("Expected configured CPU device, got %+v", rows[0])
	}

	var buf bytes.Buffer
	renderDevices(&buf, rows)
	if !strings.Contains(buf.String(), "configured device") {
		t.Errorf("Expected device in table, got:\n%s", buf.String())
	}
}

func post(t *testing.T, h http.Handler, path, body string) (int, callResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("POST", path, strings.NewReader(body)))
	var resp callResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("Invalid JSON from %s: %v", path, err)
	}
	return rec.Code, resp
}

func TestRouter(t *testing.T) {
	s := testSession(t)
	h := newRouter(s)

	code, resp := post(t, h, "/call/getPlatformIDs", `{"as": "p"}`)
	if code != http.StatusOK {
		t.Fatalf("Expected 200, got %d (%+v)", code, resp)
	}
	if list, ok := resp.Result.([]any); !ok || len(list) != 1 {
		t.Errorf("Expected one platform, got %v", resp.Result)
	}

	code, resp = post(t, h, "/call/getPlatformInfo", `{"args": ["$p.0", "PLATFORM_NAME"]}`)
	if code != http.StatusOK || resp.Result == nil {
		t.Errorf("Expected platform name, got %d %+v", code, resp)
	}

	code, resp = post(t, h, "/call/getPlatformInfo", `{"args": ["ok", 42]}`)
	if code != http.StatusUnprocessableEntity || resp.Kind != "KindError" {
		t.Errorf("Expected 422 KindError, got %d %+v", code, resp)
	}

	code, resp = post(t, h, "/call/getPlatformInfo", `{"args": ["$p.0", 30583]}`)
	if code != http.StatusUnprocessableEntity || resp.Status != "CL_INVALID_VALUE" {
		t.Errorf("Expected 422 CL_INVALID_VALUE, got %d %+v", code, resp)
	}

	code, _ = post(t, h, "/call/noSuchOp", `{}`)
	if code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if !strings.Contains(rec.Body.String(), `clhost_calls_total{op="getPlatformIDs",outcome="ok"} 1`) {
		t.Errorf("Expected call counter in metrics, got:\n%s", rec.Body.String())
	}

	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest("GET", "/platforms", nil))
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"type":"CPU"`) {
		t.Errorf("Expected platforms JSON, got %d %s", rec.Code, rec.Body.String())
	}
}

func TestRecordAndShow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.pb")
	viper.Reset()
	viper.Set("record", path)
	s, err := openSession()
	if err != nil {
		t.Fatalf("openSession failed: %v", err)
	}
	s.module.Call("getPlatformIDs")
	s.module.Call("finish")
	if err := s.close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}

	tr, err := transcript.Load(path, transcript.FormatProto)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	var buf bytes.Buffer
	renderTranscript(&buf, tr, true)
	out := buf.String()
	if strings.Contains(out, "getPlatformIDs") || !strings.Contains(out, "ArityError") {
		t.Errorf("Expected only the failed finish call, got:\n%s", out)
	}
}
