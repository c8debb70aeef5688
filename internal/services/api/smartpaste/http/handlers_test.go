package http

import (
	"bufio"
	"bytes"
	"encoding/json"
	stdhttp "net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"smartpaste/internal/core/catalog"
	"smartpaste/internal/core/classifier"
	"smartpaste/internal/core/smartpaste"
	"smartpaste/internal/core/suggest"
	phttp "smartpaste/internal/platform/net/http"
	"smartpaste/internal/services/api/smartpaste/domain"
	svc "smartpaste/internal/services/api/smartpaste/service"

	"github.com/go-chi/chi/v5"
)

type envelope struct {
	StatusCode int             `json:"status_code"`
	Error      string          `json:"error"`
	Data       json.RawMessage `json:"data"`
}

func newServer(t *testing.T) *httptest.Server {
	t.Helper()
	cls := classifier.New(nil, classifier.Options{})
	hub := svc.NewHub(smartpaste.DefaultConfig(), cls, catalog.Default(), time.Minute, nil)
	t.Cleanup(hub.Flush)

	r := phttp.AdaptChi(chi.NewRouter())
	Register(r, svc.New(cls, catalog.Default(), hub))
	srv := httptest.NewServer(r.Mux())
	t.Cleanup(srv.Close)
	return srv
}

func call(t *testing.T, srv *httptest.Server, method, path, body string, out any) int {
	t.Helper()
	var rd *bytes.Buffer
	if body != "" {
		rd = bytes.NewBufferString(body)
	} else {
		rd = &bytes.Buffer{}
	}
	req, err := stdhttp.NewRequest(method, srv.URL+path, rd)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := srv.Client().Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	defer res.Body.Close()
	if out != nil && res.StatusCode != stdhttp.StatusNoContent {
		var env envelope
		if err := json.NewDecoder(res.Body).Decode(&env); err != nil {
			t.Fatalf("decode %s %s: %v", method, path, err)
		}
		if len(env.Data) > 0 {
			if err := json.Unmarshal(env.Data, out); err != nil {
				t.Fatalf("decode data: %v", err)
			}
		}
	}
	return res.StatusCode
}

func TestClassifyAndRules(t *testing.T) {
	srv := newServer(t)

	var out domain.ClassifyResp
	code := call(t, srv, "POST", "/classify", `{"text":"550e8400-e29b-41d4-a716-446655440000","explain":true}`, &out)
	if code != 200 {
		t.Fatalf("status = %d", code)
	}
	if out.Result == nil || out.Result.TargetID != "uuid-generator" || len(out.Candidates) == 0 {
		t.Fatalf("classify = %+v", out)
	}

	var rules domain.RulesResp
	if code := call(t, srv, "GET", "/rules", "", &rules); code != 200 {
		t.Fatalf("rules status = %d", code)
	}
	if len(rules.Rules) == 0 || rules.Policy != "first-match" {
		t.Fatalf("rules = %+v", rules)
	}

	if code := call(t, srv, "POST", "/classify", `{"text":`, &out); code != 400 {
		t.Fatalf("bad json status = %d, want 400", code)
	}
}

func TestSessionRoutes(t *testing.T) {
	srv := newServer(t)

	var sn domain.SessionSnapshot
	if code := call(t, srv, "POST", "/sessions", "", &sn); code != 201 {
		t.Fatalf("create status = %d", code)
	}
	base := "/sessions/" + sn.SessionID

	var pr domain.PasteResp
	if code := call(t, srv, "POST", base+"/paste", `{"text":"#1e90ff"}`, &pr); code != 200 {
		t.Fatalf("paste status = %d", code)
	}
	if !pr.Session.IsActive || pr.Session.CurrentResult.TargetID != "color-converter" {
		t.Fatalf("paste = %+v", pr)
	}

	var got domain.SessionSnapshot
	if code := call(t, srv, "GET", base, "", &got); code != 200 || !got.IsActive {
		t.Fatalf("get = %d %+v", code, got)
	}

	var acc domain.AcceptResp
	if code := call(t, srv, "POST", base+"/accept", "", &acc); code != 200 {
		t.Fatalf("accept status = %d", code)
	}
	if acc.Destination.Path != "/tools/color-converter" {
		t.Fatalf("accept = %+v", acc)
	}
	if code := call(t, srv, "POST", base+"/accept", "", &acc); code != 409 {
		t.Fatalf("idle accept status = %d, want 409", code)
	}

	var d domain.DismissResp
	if code := call(t, srv, "POST", base+"/dismiss", "", &d); code != 200 || d.Dismissed {
		t.Fatalf("dismiss = %d %+v", code, d)
	}

	if code := call(t, srv, "DELETE", base, "", &struct{}{}); code != 204 {
		t.Fatalf("delete status = %d", code)
	}
	if code := call(t, srv, "GET", base, "", &got); code != 404 {
		t.Fatalf("get after delete = %d, want 404", code)
	}
	if code := call(t, srv, "DELETE", base, "", &struct{}{}); code != 404 {
		t.Fatalf("second delete = %d, want 404", code)
	}
}

func readFrame(t *testing.T, br *bufio.Reader) domain.SessionSnapshot {
	t.Helper()
	var data string
	for {
		line, err := br.ReadString('\n')
		if err != nil {
			t.Fatalf("read frame: %v", err)
		}
		line = strings.TrimRight(line, "\n")
		if line == "" && data != "" {
			break
		}
		if strings.HasPrefix(line, "data: ") {
			data = strings.TrimPrefix(line, "data: ")
		}
	}
	var sn domain.SessionSnapshot
	if err := json.Unmarshal([]byte(data), &sn); err != nil {
		t.Fatalf("frame data %q: %v", data, err)
	}
	return sn
}

func TestEvents(t *testing.T) {
	srv := newServer(t)

	var sn domain.SessionSnapshot
	call(t, srv, "POST", "/sessions", "", &sn)
	base := "/sessions/" + sn.SessionID

	res, err := srv.Client().Get(srv.URL + base + "/events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	defer res.Body.Close()
	if ct := res.Header.Get("Content-Type"); ct != "text/event-stream" {
		t.Fatalf("content type = %q", ct)
	}
	br := bufio.NewReader(res.Body)

	first := readFrame(t, br)
	if first.SessionID != sn.SessionID || first.IsActive {
		t.Fatalf("first frame = %+v", first)
	}

	call(t, srv, "POST", base+"/paste", `{"text":"*/5 * * * *"}`, &domain.PasteResp{})
	offered := readFrame(t, br)
	if offered.Cause != suggest.CauseOffered || offered.CurrentResult.TargetID != "cron-parser" {
		t.Fatalf("offered frame = %+v", offered)
	}

	call(t, srv, "DELETE", base, "", &struct{}{})
	closed := readFrame(t, br)
	if closed.Cause != suggest.CauseClosed {
		t.Fatalf("closed frame = %+v", closed)
	}
}

func TestEvents_UnknownSession(t *testing.T) {
	srv := newServer(t)
	res, err := srv.Client().Get(srv.URL + "/sessions/nope/events")
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	res.Body.Close()
	if res.StatusCode != 404 {
		t.Fatalf("status = %d, want 404", res.StatusCode)
	}
}
