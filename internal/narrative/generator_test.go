package narrative

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func checkComplete(t *testing.T, n *Narrative) {
	t.Helper()
	if n.Summary == "" {
		t.Fatalf("empty summary")
	}
	if len(n.Findings) == 0 || len(n.Recommendations) == 0 || len(n.Risks) == 0 {
		t.Fatalf("narrative has empty sections: %+v", n)
	}
}

func TestGenerateLocalIsTotal(t *testing.T) {
	for _, typ := range []string{"sales", "finance", "customer", "general", "unknown"} {
		p := testProfile()
		p.DatasetType = typ
		n := GenerateLocal(p, testKPIs())
		if n.Method != MethodLocal {
			t.Fatalf("method = %q, want %q", n.Method, MethodLocal)
		}
		checkComplete(t, n)
	}
}

func TestGenerateLocalIsDeterministic(t *testing.T) {
	a := GenerateLocal(testProfile(), testKPIs())
	b := GenerateLocal(testProfile(), testKPIs())
	if a.Summary != b.Summary || len(a.Findings) != len(b.Findings) {
		t.Fatalf("local generation not deterministic")
	}
	for i := range a.Findings {
		if a.Findings[i] != b.Findings[i] {
			t.Fatalf("finding %d differs: %q vs %q", i, a.Findings[i], b.Findings[i])
		}
	}
}

func TestGenerateLocalCompletenessTone(t *testing.T) {
	clean := testProfile()
	n := GenerateLocal(clean, testKPIs())
	if want := "Data quality is strong"; !strings.Contains(n.Summary, want) {
		t.Fatalf("summary missing %q: %s", want, n.Summary)
	}

	dirty := testProfile()
	dirty.TotalMissing = 2
	dirty.ColumnsWithMissing = 1
	n = GenerateLocal(dirty, testKPIs())
	if want := "Data quality requires attention"; !strings.Contains(n.Summary, want) {
		t.Fatalf("summary missing %q: %s", want, n.Summary)
	}
	if want := "missing values may impact"; !strings.Contains(n.Risks[0], want) {
		t.Fatalf("risks missing data-quality entry: %v", n.Risks)
	}
}

func TestGeneratorWithoutRemoteUsesLocal(t *testing.T) {
	g := &Generator{}
	n, remoteErr, err := g.Generate(context.Background(), testProfile(), testKPIs(), "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if remoteErr != nil {
		t.Fatalf("no remote was attempted, remoteErr should be nil: %v", remoteErr)
	}
	if n.Method != MethodLocal {
		t.Fatalf("method = %q, want %q", n.Method, MethodLocal)
	}
	checkComplete(t, n)
}

func TestGeneratorRemoteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply(goodNarrativeJSON))
	}))
	defer srv.Close()

	g := &Generator{Remote: NewClient("k", "m", srv.URL, "", 5*time.Second), Timeout: 5 * time.Second}
	n, remoteErr, err := g.Generate(context.Background(), testProfile(), testKPIs(), "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if remoteErr != nil {
		t.Fatalf("unexpected remote error: %v", remoteErr)
	}
	if n.Method != MethodRemote {
		t.Fatalf("method = %q, want %q", n.Method, MethodRemote)
	}
}

func TestGeneratorFallsBackOnRemoteTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, chatReply(goodNarrativeJSON))
	}))
	defer srv.Close()

	g := &Generator{Remote: NewClient("k", "m", srv.URL, "", 5*time.Second), Timeout: 30 * time.Millisecond}
	n, remoteErr, err := g.Generate(context.Background(), testProfile(), testKPIs(), "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if remoteErr == nil || remoteErr.Kind != KindTimeout {
		t.Fatalf("expected timeout remote error, got %v", remoteErr)
	}
	if n.Method != MethodLocal {
		t.Fatalf("method = %q, want %q after fallback", n.Method, MethodLocal)
	}
	checkComplete(t, n)
}

func TestGeneratorFallsBackOnAuthFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		fmt.Fprint(w, `{"error":{"message":"bad key"}}`)
	}))
	defer srv.Close()

	g := &Generator{Remote: NewClient("k", "m", srv.URL, "", 5*time.Second), Timeout: 5 * time.Second}
	n, remoteErr, err := g.Generate(context.Background(), testProfile(), testKPIs(), "")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if remoteErr == nil || remoteErr.Kind != KindAuth {
		t.Fatalf("expected auth remote error, got %v", remoteErr)
	}
	if n.Method != MethodLocal {
		t.Fatalf("method = %q, want %q after fallback", n.Method, MethodLocal)
	}
}

func TestGeneratorDisabledSkipsRemote(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("remote must not be called when disabled")
	}))
	defer srv.Close()

	g := &Generator{Remote: NewClient("k", "m", srv.URL, "", 5*time.Second), Disabled: true}
	n, remoteErr, err := g.Generate(context.Background(), testProfile(), testKPIs(), "")
	if err != nil || remoteErr != nil {
		t.Fatalf("Generate: %v / %v", err, remoteErr)
	}
	if n.Method != MethodLocal {
		t.Fatalf("method = %q, want %q", n.Method, MethodLocal)
	}
}

func TestGeneratorAbortsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	g := &Generator{}
	n, _, err := g.Generate(ctx, testProfile(), testKPIs(), "")
	if err == nil {
		t.Fatalf("expected error from cancelled context")
	}
	if n != nil {
		t.Fatalf("cancellation must not produce a narrative, got %+v", n)
	}
}

func TestGeneratorParentCancelDuringRemoteAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
		fmt.Fprint(w, chatReply(goodNarrativeJSON))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(30 * time.Millisecond)
		cancel()
	}()
	g := &Generator{Remote: NewClient("k", "m", srv.URL, "", 5*time.Second), Timeout: 5 * time.Second}
	n, _, err := g.Generate(ctx, testProfile(), testKPIs(), "")
	if err == nil {
		t.Fatalf("expected error from parent cancellation")
	}
	if n != nil {
		t.Fatalf("parent cancellation must not fall back to local, got %+v", n)
	}
}

