package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/etnz/portal/api"
	"github.com/google/go-cmp/cmp"
)

// backend serves canned bodies per "METHOD path" and records the calls.
type backend struct {
	mu     sync.Mutex
	routes map[string]string
	status map[string]int
	calls  []string
}

func (b *backend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	b.mu.Lock()
	b.calls = append(b.calls, key)
	resp, ok := b.routes[key]
	code, hasCode := b.status[key]
	b.mu.Unlock()
	if !ok {
		http.NotFound(w, r)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if hasCode {
		w.WriteHeader(code)
	}
	io.WriteString(w, resp)
}

func (b *backend) called(key string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == key {
			return true
		}
	}
	return false
}

type memStore struct {
	mu   sync.Mutex
	keys []string
}

func (m *memStore) Save(_ context.Context, key string, _ any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keys = append(m.keys, key)
	return nil
}

var testDay = time.Date(2025, time.March, 4, 12, 0, 0, 0, time.UTC)

func newTestServer(t *testing.T, routes map[string]string, status map[string]int) (http.Handler, *backend, *memStore) {
	t.Helper()
	b := &backend{routes: routes, status: status}
	if b.status == nil {
		b.status = map[string]int{}
	}
	be := httptest.NewServer(b)
	t.Cleanup(be.Close)

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	client, err := api.New(be.URL, api.WithLogger(log))
	if err != nil {
		t.Fatal(err)
	}
	store := &memStore{}
	srv, err := New(client, client, WithStore(store), WithLogger(log), WithClock(func() time.Time { return testDay }))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return srv.Handler(), b, store
}

func newRequest(method, target string, form url.Values) *http.Request {
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	return req
}

// do sends a request without cookies, as a new browser would.
func do(h http.Handler, method, target string, form url.Values) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, newRequest(method, target, form))
	return rec
}

// browser keeps its session cookie across requests.
type browser struct {
	h       http.Handler
	cookies []*http.Cookie
}

func (b *browser) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	req := newRequest(method, target, form)
	for _, c := range b.cookies {
		req.AddCookie(c)
	}
	rec := httptest.NewRecorder()
	b.h.ServeHTTP(rec, req)
	if cs := rec.Result().Cookies(); len(cs) > 0 {
		b.cookies = cs
	}
	return rec
}

func expect(t *testing.T, rec *httptest.ResponseRecorder, status int, wants ...string) {
	t.Helper()
	if rec.Code != status {
		t.Errorf("status = %d, want %d\n%s", rec.Code, status, rec.Body.String())
	}
	for _, w := range wants {
		if !strings.Contains(rec.Body.String(), w) {
			t.Errorf("body is missing %q\n%s", w, rec.Body.String())
		}
	}
}

const investorTable = `{"success":true,"data":[
	{"user_id":"USR000001","full_name":"Alice Martin","city":"Boston","total_portfolio_value":250000},
	{"user_id":"USR000002","full_name":"Bob Stone","city":"Denver","total_portfolio_value":1200000}
]}`

func TestWelcome(t *testing.T) {
	h, _, _ := newTestServer(t, map[string]string{
		"GET /api/stats": `{"success":true,"stats":{"investor_records":120,"portfolio_records":118,"product_records":45,"master_allocation_records":9}}`,
	}, nil)
	expect(t, do(h, "GET", "/", nil), http.StatusOK, "Portfolio Management Portal", "120", "/tables/investor-data")
}

func TestWelcome_OpensDashboard(t *testing.T) {
	h, _, _ := newTestServer(t, nil, nil)
	rec := do(h, "GET", "/?user=USR000002&view=dashboard", nil)
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/users/USR000002" {
		t.Errorf("GET / = %d %q, want a redirect to /users/USR000002", rec.Code, rec.Header().Get("Location"))
	}
}

func TestTable_Search(t *testing.T) {
	h, _, _ := newTestServer(t, map[string]string{"GET /api/investor-data": investorTable}, nil)
	rec := do(h, "GET", "/tables/investor-data?q=denver", nil)
	expect(t, rec, http.StatusOK, "Investor Reference Data", "Bob Stone")
	if strings.Contains(rec.Body.String(), "Alice Martin") {
		t.Error("search result shows a row that does not match")
	}
}

func TestTable_ServerError(t *testing.T) {
	h, _, _ := newTestServer(t,
		map[string]string{"GET /api/investor-data": `{"success":false,"error":"Database unavailable"}`},
		map[string]int{"GET /api/investor-data": http.StatusInternalServerError})
	expect(t, do(h, "GET", "/tables/investor-data", nil), http.StatusBadGateway, "Error loading data: Database unavailable")
}

func TestExport(t *testing.T) {
	h, _, _ := newTestServer(t, map[string]string{"GET /api/investor-data": investorTable}, nil)
	rec := do(h, "GET", "/tables/investor-data/export?q=boston", nil)
	expect(t, rec, http.StatusOK)
	if got, want := rec.Header().Get("Content-Disposition"), `attachment; filename="investor-data-2025-03-04.csv"`; got != want {
		t.Errorf("Content-Disposition = %q, want %q", got, want)
	}
	want := `"User ID","Full Name","City","Total Portfolio Value"` + "\n" + `"USR000001","Alice Martin","Boston","250000"`
	if diff := cmp.Diff(want, rec.Body.String()); diff != "" {
		t.Errorf("export mismatch (-want +got):\n%s", diff)
	}
}

func TestExport_ConcurrentBrowsers(t *testing.T) {
	h, _, _ := newTestServer(t, map[string]string{
		"GET /api/investor-data":       investorTable,
		"GET /api/product-market-data": `{"success":true,"data":[{"product_name":"Alpha Fund","market_price_usd":12.5,"industry_sector":"Technology"}]}`,
	}, nil)
	wants := map[string]string{
		"investor-data":       `"User ID","Full Name","City","Total Portfolio Value"`,
		"product-market-data": `"Product Name","Market Price USD","Industry Sector"`,
	}

	var wg sync.WaitGroup
	errs := make(chan string, 200)
	for i := 0; i < 100; i++ {
		for table, header := range wants {
			wg.Add(1)
			go func(table, header string) {
				defer wg.Done()
				rec := do(h, "GET", "/tables/"+table+"/export", nil)
				if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), header+"\n") {
					errs <- fmt.Sprintf("%s: %d %q", table, rec.Code, rec.Body.String())
				}
			}(table, header)
		}
	}
	wg.Wait()
	close(errs)
	n := 0
	for e := range errs {
		if n < 3 {
			t.Errorf("export answered %s", e)
		}
		n++
	}
	if n > 0 {
		t.Errorf("%d of 200 concurrent exports failed", n)
	}
}

func TestBrowsersKeepTheirOwnPages(t *testing.T) {
	h, b, _ := newTestServer(t, guidedRoutes, nil)
	alice, bob := &browser{h: h}, &browser{h: h}

	expect(t, alice.do("GET", "/users/USR000001/rebalance/equities?scenario=1", nil), http.StatusOK, "Trim Equities")
	expect(t, bob.do("GET", "/users/USR000002/coach", nil), http.StatusOK)
	if alice.cookies[0].Value == bob.cookies[0].Value {
		t.Fatal("both browsers share a session")
	}

	// bob's navigation neither supersedes nor replaces alice's page
	rec := alice.do("POST", "/users/USR000001/rebalance/equities/execute", url.Values{"scenario": {"1"}})
	expect(t, rec, http.StatusOK, "Rebalancing Complete")
	if !b.called("POST /api/rebalance/execute") {
		t.Error("execute was not posted")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, c := range b.calls {
		if c == "GET /api/user/USR000002/holdings" {
			t.Errorf("alice's execution loaded bob's holdings")
		}
	}
}

const userData = `{"success":true,"user_data":{
	"portfolio":{"full_name":"Jane Doe"},
	"investor_profile":{"risk_capacity":"Moderate"},
	"allocation_breakdown":{
		"equities":{"current_percent":65,"current_amount":65000,"target_percent":58},
		"bonds":{"current_percent":35,"current_amount":35000,"target_percent":42}
	},
	"total_investment":100000
}}`

func TestDashboard(t *testing.T) {
	h, _, _ := newTestServer(t, map[string]string{"GET /api/user/USR000001": userData}, nil)
	expect(t, do(h, "GET", "/users/USR000001", nil), http.StatusOK,
		"Portfolio Dashboard - Jane Doe",
		`id="chart-specs"`,
		"/users/USR000001/rebalance/equities",
		"/users/USR000001/coach",
	)
}

func TestDashboard_NotFound(t *testing.T) {
	h, _, _ := newTestServer(t,
		map[string]string{"GET /api/user/NOPE": `{"success":false,"error":"User not found"}`},
		map[string]int{"GET /api/user/NOPE": http.StatusNotFound})
	expect(t, do(h, "GET", "/users/NOPE", nil), http.StatusNotFound, "User not found")
}

var guidedRoutes = map[string]string{
	"GET /api/user/USR000001/holdings": `{"success":true,"holdings":[
		{"fund_symbol":"AAA","fund_name":"Alpha Fund","asset_class":"Equities","current_value":5000,"invested_amount":4000}
	]}`,
	"GET /api/rebalance/USR000001/equities": `{"success":true,"scenarios":[
		{"id":1,"name":"Trim Equities","risk_level":"Low","actions":[{"type":"sell","fund_name":"Alpha Fund","fund_symbol":"AAA","amount":1000}],
		 "allocation_change":{"equity_change":-5,"bond_change":5,"cash_change":0}}
	]}`,
	"POST /api/rebalance/execute": `{"success":true,"message":"Rebalancing executed"}`,
}

func TestExecuteRebalance(t *testing.T) {
	h, b, store := newTestServer(t, guidedRoutes, nil)
	br := &browser{h: h}
	expect(t, br.do("GET", "/users/USR000001/rebalance/equities", nil), http.StatusOK, "Alpha Fund", "Trim Equities")

	rec := br.do("POST", "/users/USR000001/rebalance/equities/execute", url.Values{"scenario": {"1"}})
	expect(t, rec, http.StatusOK, "Rebalancing Complete", "Rebalancing executed", "/report?scenario=1")
	if !b.called("POST /api/rebalance/execute") {
		t.Error("execute was not posted")
	}
	if diff := cmp.Diff([]string{"rebalancing_1741089600000"}, store.keys); diff != "" {
		t.Errorf("saved keys mismatch (-want +got):\n%s", diff)
	}

	rec = br.do("GET", "/users/USR000001/rebalance/equities/report?scenario=1", nil)
	expect(t, rec, http.StatusOK, "PORTFOLIO REBALANCING REPORT", "- SELL Alpha Fund: $1,000.00", "- Equities: -5%")
	if got := rec.Header().Get("Content-Disposition"); !strings.Contains(got, "rebalancing-report-2025-03-04.txt") {
		t.Errorf("Content-Disposition = %q", got)
	}
}

func TestExecuteRebalance_NoSelection(t *testing.T) {
	h, b, _ := newTestServer(t, guidedRoutes, nil)
	expect(t, do(h, "POST", "/users/USR000001/rebalance/equities/execute", url.Values{}), http.StatusBadRequest, "Please make a selection first.")
	if b.called("POST /api/rebalance/execute") {
		t.Error("execute was posted without a selection")
	}
}

func TestExecuteCustom(t *testing.T) {
	h, b, _ := newTestServer(t, map[string]string{
		"GET /api/rebalance-options/USR000001/equities": `{"success":true,"asset_class":"equities",
			"sell_options":[{"id":"sell_AAA","fund_symbol":"AAA","fund_name":"Alpha Fund","current_value":800,"suggested_sell_amount":500}],
			"buy_options":[{"id":"buy_CCC","fund_symbol":"CCC","fund_name":"Gamma Fund","suggested_buy_amount":250}]}`,
		"POST /api/execute-custom-rebalance": `{"success":true,"message":"Custom rebalancing executed",
			"summary":{"total_sell_amount":700,"total_buy_amount":0,"net_change":-700,"num_sells":1,"num_buys":0}}`,
	}, nil)
	rec := do(h, "POST", "/users/USR000001/custom/equities/execute", url.Values{
		"select":          {"sell_AAA"},
		"amount_sell_AAA": {"700"},
	})
	expect(t, rec, http.StatusOK, "Custom rebalancing executed", "Sells (1)")
	if !b.called("POST /api/execute-custom-rebalance") {
		t.Error("custom execution was not posted")
	}
}

func TestAnalyze_InvalidFormStaysLocal(t *testing.T) {
	h, b, _ := newTestServer(t, nil, nil)
	rec := do(h, "POST", "/users/USR000001/coach", url.Values{"primaryLifeEvent": {"job_change"}})
	expect(t, rec, http.StatusBadRequest, "Please fill in all required fields: eventTimeline")
	if b.called("POST /api/behavioral-coach/analyze") {
		t.Error("an invalid questionnaire reached the server")
	}
}

func TestImplement_WithoutAnalysis(t *testing.T) {
	h, _, _ := newTestServer(t, nil, nil)
	expect(t, do(h, "POST", "/users/USR000001/coach/implement", url.Values{"scenario": {"gradual"}}), http.StatusConflict)
}

func TestChat_JSON(t *testing.T) {
	h, _, _ := newTestServer(t, map[string]string{
		"POST /api/ai/chat": `{"success":true,"response":"Your portfolio is **balanced**.","suggestions":["Show risks"]}`,
	}, nil)
	req := httptest.NewRequest("POST", "/assistant/chat?user=USR000001", strings.NewReader(`{"message":"How am I doing?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var got chatReply
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("cannot decode reply: %v", err)
	}
	want := chatReply{
		Response:    "Your portfolio is **balanced**.",
		HTML:        "<p>Your portfolio is <strong>balanced</strong>.</p>\n",
		Suggestions: []string{"Show risks"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("chat reply mismatch (-want +got):\n%s", diff)
	}
}

func TestChat_Offline(t *testing.T) {
	h, _, _ := newTestServer(t, nil, nil)
	rec := do(h, "POST", "/assistant/chat?user=USR000001", url.Values{"message": {"hello"}})
	expect(t, rec, http.StatusOK, "hello", "offline")
}

func TestAssistant_UnknownPanel(t *testing.T) {
	h, _, _ := newTestServer(t, nil, nil)
	expect(t, do(h, "GET", "/assistant?panel=weather", nil), http.StatusNotFound, "unknown panel")
}

func TestAssistant_PanelFailureIsLocal(t *testing.T) {
	h, _, _ := newTestServer(t, nil, nil)
	expect(t, do(h, "GET", "/assistant?panel=risk", nil), http.StatusOK, "Risk Alerts", "risk data")
}
