package narrative

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/algorzen/insight-reporter/internal/kpi"
	"github.com/algorzen/insight-reporter/internal/profile"
)

func testProfile() *profile.DatasetProfile {
	return &profile.DatasetProfile{
		Name:           "orders",
		Rows:           3,
		Cols:           2,
		DatasetType:    profile.TypeSales,
		NumericColumns: 1,
	}
}

func testKPIs() *kpi.Set {
	return &kpi.Set{
		DatasetType: profile.TypeSales,
		Metrics: map[string]any{
			"Total Revenue":       600.0,
			"Average Order Value": 200.0,
		},
	}
}

func chatReply(content string) string {
	return fmt.Sprintf(`{"choices":[{"message":{"role":"assistant","content":%q}}]}`, content)
}

const goodNarrativeJSON = `{"summary":"Revenue is healthy.","findings":["f1"],"recommendations":["r1"],"risks":["k1"]}`

func TestClientGenerateSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("missing bearer auth, got %q", got)
		}
		fmt.Fprint(w, chatReply(goodNarrativeJSON))
	}))
	defer srv.Close()

	c := NewClient("test-key", "test-model", srv.URL, "", 5*time.Second)
	n, err := c.Generate(context.Background(), Request{Profile: testProfile(), KPIs: testKPIs()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n.Method != MethodRemote {
		t.Fatalf("method = %q, want %q", n.Method, MethodRemote)
	}
	if n.Summary != "Revenue is healthy." || len(n.Findings) != 1 {
		t.Fatalf("unexpected narrative: %+v", n)
	}
}

func TestClientGenerateFencedJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, chatReply("```json\n"+goodNarrativeJSON+"\n```"))
	}))
	defer srv.Close()

	c := NewClient("k", "m", srv.URL, "", 5*time.Second)
	n, err := c.Generate(context.Background(), Request{Profile: testProfile(), KPIs: testKPIs()})
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if n.Summary != "Revenue is healthy." {
		t.Fatalf("unexpected narrative: %+v", n)
	}
}

func TestClientGenerateErrorKinds(t *testing.T) {
	cases := []struct {
		name   string
		status int
		body   string
		want   ErrorKind
	}{
		{"unauthorized", http.StatusUnauthorized, `{"error":{"message":"bad key"}}`, KindAuth},
		{"forbidden", http.StatusForbidden, `{}`, KindAuth},
		{"rate limited", http.StatusTooManyRequests, `{}`, KindQuota},
		{"quota message", http.StatusPaymentRequired, `{"error":{"message":"quota exceeded"}}`, KindQuota},
		{"server error", http.StatusInternalServerError, `{}`, KindUnreachable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			c := NewClient("k", "m", srv.URL, "", 5*time.Second)
			_, err := c.Generate(context.Background(), Request{Profile: testProfile(), KPIs: testKPIs()})
			re, ok := err.(*RemoteError)
			if !ok {
				t.Fatalf("expected *RemoteError, got %T: %v", err, err)
			}
			if re.Kind != tc.want {
				t.Fatalf("kind = %q, want %q", re.Kind, tc.want)
			}
		})
	}
}

func TestClientGenerateTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
		fmt.Fprint(w, chatReply(goodNarrativeJSON))
	}))
	defer srv.Close()

	c := NewClient("k", "m", srv.URL, "", 5*time.Second)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Generate(ctx, Request{Profile: testProfile(), KPIs: testKPIs()})
	re, ok := err.(*RemoteError)
	if !ok {
		t.Fatalf("expected *RemoteError, got %T: %v", err, err)
	}
	if re.Kind != KindTimeout {
		t.Fatalf("kind = %q, want %q", re.Kind, KindTimeout)
	}
}

func TestClientGenerateMalformed(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"not json content", chatReply("here are your insights!")},
		{"missing sections", chatReply(`{"summary":"only a summary"}`)},
		{"no choices", `{"choices":[]}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tc.body)
			}))
			defer srv.Close()

			c := NewClient("k", "m", srv.URL, "", 5*time.Second)
			_, err := c.Generate(context.Background(), Request{Profile: testProfile(), KPIs: testKPIs()})
			re, ok := err.(*RemoteError)
			if !ok {
				t.Fatalf("expected *RemoteError, got %T: %v", err, err)
			}
			if re.Kind != KindMalformed {
				t.Fatalf("kind = %q, want %q", re.Kind, KindMalformed)
			}
		})
	}
}

func TestClientGenerateNoAPIKey(t *testing.T) {
	c := NewClient("", "m", "http://unused.invalid", "", time.Second)
	_, err := c.Generate(context.Background(), Request{Profile: testProfile(), KPIs: testKPIs()})
	re, ok := err.(*RemoteError)
	if !ok || re.Kind != KindAuth {
		t.Fatalf("expected auth error, got %v", err)
	}
}

func TestFormatMetric(t *testing.T) {
	if got := formatMetric(600.0); got != "600" {
		t.Fatalf("formatMetric(600.0) = %q", got)
	}
	if got := formatMetric(12.345); got != "12.35" {
		t.Fatalf("formatMetric(12.345) = %q", got)
	}
	if got := formatMetric("widget (2 sales)"); got != "widget (2 sales)" {
		t.Fatalf("formatMetric(string) = %q", got)
	}
}
