package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"sync/atomic"
	"syscall"
	"testing"
	"time"

	"github.com/KaramelBytes/dataqa-cli/internal/ai"
	"github.com/KaramelBytes/dataqa-cli/internal/ingest"
)

func mustTable(t *testing.T, content string) *ingest.Table {
	t.Helper()
	tbl, err := ingest.Clean(ingest.RawFile{Name: "data.csv", Reader: strings.NewReader(content)}, ingest.DefaultOptions())
	if err != nil {
		t.Fatalf("Clean: %v", err)
	}
	return tbl
}

// stubEndpoint serves /chat/completions on a local IPv4 listener.
func stubEndpoint(t *testing.T, h http.HandlerFunc) string {
	t.Helper()
	ln, err := net.Listen("tcp4", "127.0.0.1:0")
	if err != nil {
		if errors.Is(err, syscall.EACCES) || errors.Is(err, syscall.EPERM) {
			t.Skipf("skipping test: cannot open local listener (%v)", err)
		}
		t.Fatalf("listen tcp4: %v", err)
	}
	srv := &http.Server{Handler: h}
	go func() { _ = srv.Serve(ln) }()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = srv.Shutdown(ctx)
	})
	return "http://" + ln.Addr().String()
}

func newTestService(t *testing.T, baseURL string, timeout time.Duration) *Service {
	t.Helper()
	svc, err := NewService(Config{APIKey: "test-key", BaseURL: baseURL, Model: "llama-3.1-8b-instant", Timeout: timeout})
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	return svc
}

type fakeRuntime struct {
	calls int32
	fn    func(ai.GenerateRequest) (*ai.GenerateResponse, error)
}

func (f *fakeRuntime) Generate(_ context.Context, req ai.GenerateRequest) (*ai.GenerateResponse, error) {
	atomic.AddInt32(&f.calls, 1)
	return f.fn(req)
}

const salesCSV = "order_id,region,amount\n1,EU,10.5\n2,US,7\n"

func TestAnswerReturnsContentVerbatim(t *testing.T) {
	var hits int32
	prompts := make(chan ai.GenerateRequest, 1)
	url := stubEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		var req ai.GenerateRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		prompts <- req
		_, _ = io.WriteString(w, `{"choices":[{"message":{"content":"42"}}]}`)
	})
	svc := newTestService(t, url, 2*time.Second)

	res := svc.Answer(context.Background(), Sales, mustTable(t, salesCSV), "How many orders?")
	if res.Status != StatusOK || res.Text != "42" || res.Err != nil {
		t.Fatalf("unexpected result %+v", res)
	}
	if atomic.LoadInt32(&hits) != 1 {
		t.Fatalf("expected one call, got %d", hits)
	}
	req := <-prompts
	if req.Temperature != DefaultTemperature || len(req.Messages) != 1 || req.Messages[0].Role != "user" {
		t.Fatalf("unexpected request %+v", req)
	}
	for _, want := range []string{"Dataset Type: Sales", "Total rows: 2", "How many orders?", "ONLY the dataset summary"} {
		if !strings.Contains(req.Messages[0].Content, want) {
			t.Fatalf("prompt missing %q:\n%s", want, req.Messages[0].Content)
		}
	}
}

func TestAnswerNeverFailsTheCaller(t *testing.T) {
	cases := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{"unauthorized", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = io.WriteString(w, `{"error":{"message":"invalid api key"}}`)
		}},
		{"rate limited", func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "3")
			w.WriteHeader(http.StatusTooManyRequests)
		}},
		{"server error", func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}},
		{"malformed json", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"choices":[`)
		}},
		{"missing content", func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, `{"choices":[{"message":{}}]}`)
		}},
		{"timeout", func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := newTestService(t, stubEndpoint(t, tc.handler), 150*time.Millisecond)
			res := svc.Answer(context.Background(), Inventory, mustTable(t, salesCSV), "total amount?")
			if res.Status != StatusRemoteError {
				t.Fatalf("status = %s, want remote_error (%+v)", res.Status, res)
			}
			if res.Text == "" || res.Err == nil {
				t.Fatalf("expected diagnostic and cause, got %+v", res)
			}
			var rce *ai.RemoteCallError
			if !errors.As(res.Err, &rce) {
				t.Fatalf("expected RemoteCallError, got %T", res.Err)
			}
		})
	}
}

func TestAnswerDiagnosticsAreSpecific(t *testing.T) {
	svc := newTestService(t, stubEndpoint(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Retry-After", "3")
		w.WriteHeader(http.StatusTooManyRequests)
	}), time.Second)
	res := svc.Answer(context.Background(), Sales, mustTable(t, salesCSV), "q")
	if !strings.Contains(res.Text, "rate limiting") || !strings.Contains(res.Text, "3s") {
		t.Fatalf("unexpected diagnostic %q", res.Text)
	}
}

func TestAnswerRecoversFromPanics(t *testing.T) {
	rt := &fakeRuntime{fn: func(ai.GenerateRequest) (*ai.GenerateResponse, error) { panic("boom") }}
	svc := NewServiceWithRuntime(rt, Config{Model: "m"})
	res := svc.Answer(context.Background(), Sales, mustTable(t, salesCSV), "q")
	if res.Status != StatusRemoteError || res.Err == nil || !strings.Contains(res.Err.Error(), "boom") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestNewServiceRequiresCredential(t *testing.T) {
	_, err := NewService(Config{APIKey: "", Model: "llama-3.1-8b-instant"})
	var ce *ai.ConfigurationError
	if !errors.As(err, &ce) || ce.Field != "api_key" {
		t.Fatalf("expected api_key ConfigurationError, got %v", err)
	}
	svc := Unconfigured(err)
	if svc.Ready() == nil {
		t.Fatal("expected Ready to report the configuration error")
	}
	res := svc.Answer(context.Background(), Sales, mustTable(t, salesCSV), "q")
	if res.Status != StatusConfigError || !strings.Contains(res.Text, "not configured") {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestAnswerValidatesInput(t *testing.T) {
	rt := &fakeRuntime{fn: func(ai.GenerateRequest) (*ai.GenerateResponse, error) {
		return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Content: "x"}}}}, nil
	}}
	svc := NewServiceWithRuntime(rt, Config{Model: "m"})
	tbl := mustTable(t, salesCSV)
	cases := []struct {
		name string
		dt   DatasetType
		tbl  *ingest.Table
		q    string
	}{
		{"empty question", Sales, tbl, "   "},
		{"no table", Sales, nil, "q"},
		{"bad type", DatasetType("Payroll"), tbl, "q"},
	}
	for _, tc := range cases {
		if res := svc.Answer(context.Background(), tc.dt, tc.tbl, tc.q); res.Status != StatusInvalidInput {
			t.Errorf("%s: status = %s", tc.name, res.Status)
		}
	}
	if rt.calls != 0 {
		t.Fatalf("invalid input must not reach the network, got %d calls", rt.calls)
	}
}

func TestAnswerPropagatesRequestTemperatureAndModel(t *testing.T) {
	temp := 0.1
	var got ai.GenerateRequest
	rt := &fakeRuntime{fn: func(req ai.GenerateRequest) (*ai.GenerateResponse, error) {
		got = req
		return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Content: ""}}}}, nil
	}}
	svc := NewServiceWithRuntime(rt, Config{Model: " llama3-8b-8192 ", Temperature: &temp})
	res := svc.Answer(context.Background(), Purchase, mustTable(t, salesCSV), "q")
	if res.Status != StatusOK || res.Text != "" {
		t.Fatalf("empty content should be returned verbatim, got %+v", res)
	}
	if got.Model != "llama3-8b-8192" || got.Temperature != 0.1 {
		t.Fatalf("unexpected request %+v", got)
	}
	if res.PromptTokens == 0 || res.RequestID == "" {
		t.Fatalf("expected token estimate and request id, got %+v", res)
	}
}

func TestSummaryIsBounded(t *testing.T) {
	var b strings.Builder
	b.WriteString("id,value\n")
	for i := 0; i < 10000; i++ {
		fmt.Fprintf(&b, "%d,%d\n", i, i*2)
	}
	s := BuildSummary(mustTable(t, b.String()))
	if s.RowCount != 10000 || s.SampleRows != 3 {
		t.Fatalf("unexpected summary %+v", s)
	}
	if lines := strings.Count(s.Sample, "\n") + 1; lines != 4 {
		t.Fatalf("sample has %d lines, want header + 3 rows:\n%s", lines, s.Sample)
	}
	if strings.Contains(s.String(), "9999") {
		t.Fatal("summary must not embed rows beyond the sample")
	}

	small := BuildSummary(mustTable(t, "a\n1\n2\n"))
	if small.SampleRows != 2 || strings.Count(small.Sample, "\n") != 2 {
		t.Fatalf("small table summary = %+v", small)
	}
}

func TestAnswerHonorsExplicitZeroTemperature(t *testing.T) {
	var got []float64
	rt := &fakeRuntime{fn: func(req ai.GenerateRequest) (*ai.GenerateResponse, error) {
		got = append(got, req.Temperature)
		return &ai.GenerateResponse{Choices: []ai.Choice{{Message: ai.Message{Content: "ok"}}}}, nil
	}}
	zero := 0.0
	tbl := mustTable(t, salesCSV)
	NewServiceWithRuntime(rt, Config{Model: "m", Temperature: &zero}).Answer(context.Background(), Purchase, tbl, "q")
	NewServiceWithRuntime(rt, Config{Model: "m"}).Answer(context.Background(), Purchase, tbl, "q")
	if len(got) != 2 || got[0] != 0 || got[1] != DefaultTemperature {
		t.Fatalf("temperatures sent = %v, want [0 %v]", got, DefaultTemperature)
	}
}
