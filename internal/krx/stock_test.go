package krx

import (
	"context"
	"net/http"
	"testing"
	"time"

	"go.opentelemetry.io/otel/trace"

	"krx-supply-oscillator/internal/cache"
	"krx-supply-oscillator/internal/domain"
)

const tickerListBody = `{"OutBlock_1":[
	{"ISU_SRT_CD":"005930","ISU_ABBRV":"삼성전자","MKT_TP_NM":"KOSPI","ISU_CD":"KR7005930003"},
	{"ISU_SRT_CD":"000660","ISU_ABBRV":"SK하이닉스","MKT_TP_NM":"KOSPI","ISU_CD":"KR7000660001"}
]}`

// fakeReportServer routes each POST by its bld parameter and records the
// submitted form values.
type fakeReportServer struct {
	bodies map[string]string
	forms  []map[string]string
}

func (f *fakeReportServer) newStock(t *testing.T) *Stock {
	t.Helper()
	rt := roundTripFunc(func(req *http.Request) (*http.Response, error) {
		if req.Method == http.MethodGet {
			return jsonResponse(http.StatusOK, "<html></html>"), nil
		}
		if err := req.ParseForm(); err != nil {
			return nil, err
		}
		form := make(map[string]string)
		for k := range req.PostForm {
			form[k] = req.PostForm.Get(k)
		}
		f.forms = append(f.forms, form)
		body, ok := f.bodies[form["bld"]]
		if !ok {
			return jsonResponse(http.StatusOK, "{}"), nil
		}
		return jsonResponse(http.StatusOK, body), nil
	})
	client, _ := newTestClient(rt)
	return NewStock(client, cache.NewTickerCache(time.Hour), trace.NewNoopTracerProvider().Tracer("test"))
}

func TestOhlcvByTickerResolvesISINAndSorts(t *testing.T) {
	t.Parallel()

	srv := &fakeReportServer{bodies: map[string]string{
		bldTickerList: tickerListBody,
		bldStockOhlcvByTicker: `{"output":[
			{"TRD_DD":"2024/01/08","TDD_CLSPRC":"74,700"},
			{"TRD_DD":"2024/01/05","TDD_CLSPRC":"76,600"}
		]}`,
	}}
	stock := srv.newStock(t)

	days, err := stock.OhlcvByTicker(context.Background(), "20240101", "20240131", "005930")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 2 {
		t.Fatalf("expected 2 days, got %d", len(days))
	}
	if days[0].Date != "20240105" || days[1].Date != "20240108" {
		t.Fatalf("expected ascending order, got %s then %s", days[0].Date, days[1].Date)
	}

	var ohlcvForm map[string]string
	for _, form := range srv.forms {
		if form["bld"] == bldStockOhlcvByTicker {
			ohlcvForm = form
		}
	}
	if ohlcvForm == nil {
		t.Fatal("no OHLCV request issued")
	}
	if ohlcvForm["isuCd"] != "KR7005930003" {
		t.Fatalf("expected resolved ISIN, got %q", ohlcvForm["isuCd"])
	}
	if ohlcvForm["adjStkPrc"] != "2" {
		t.Fatalf("expected adjusted close request, got %q", ohlcvForm["adjStkPrc"])
	}
}

func TestOhlcvByTickerUnknownSymbolIsEmpty(t *testing.T) {
	t.Parallel()

	srv := &fakeReportServer{bodies: map[string]string{bldTickerList: tickerListBody}}
	stock := srv.newStock(t)

	days, err := stock.OhlcvByTicker(context.Background(), "20240101", "20240131", "999999")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(days) != 0 {
		t.Fatalf("expected empty series, got %d days", len(days))
	}
}

func TestResolveISINCachesBulkListing(t *testing.T) {
	t.Parallel()

	srv := &fakeReportServer{bodies: map[string]string{
		bldTickerList:          tickerListBody,
		bldInvestorTickerDaily: `{"output":[]}`,
	}}
	stock := srv.newStock(t)

	ctx := context.Background()
	if _, err := stock.TradingByInvestor(ctx, "20240101", "20240131", "005930", TradingValue, AskBidNetBuy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := stock.TradingByInvestor(ctx, "20240101", "20240131", "000660", TradingValue, AskBidNetBuy); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	listings := 0
	for _, form := range srv.forms {
		if form["bld"] == bldTickerList {
			listings++
		}
	}
	if listings != 1 {
		t.Fatalf("expected 1 listing fetch shared via cache, got %d", listings)
	}
}

func TestTradingByInvestorSendsDetailView(t *testing.T) {
	t.Parallel()

	srv := &fakeReportServer{bodies: map[string]string{
		bldTickerList:          tickerListBody,
		bldInvestorTickerDaily: `{"output":[{"TRD_DD":"2024/01/05","TRDVAL1":"1,000","TRDVAL10":"2,000","TRDVAL11":"500"}]}`,
	}}
	stock := srv.newStock(t)

	rows, err := stock.TradingByInvestor(context.Background(), "20240101", "20240131", "005930", TradingValue, AskBidNetBuy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(rows) != 1 || rows[0].Foreign != 2500 {
		t.Fatalf("unexpected rows: %+v", rows)
	}

	for _, form := range srv.forms {
		if form["bld"] != bldInvestorTickerDaily {
			continue
		}
		if form["inqTpCd"] != "2" || form["detailView"] != "1" {
			t.Fatalf("missing daily detail parameters: %v", form)
		}
		if form["trdVolVal"] != string(TradingValue) || form["askBid"] != string(AskBidNetBuy) {
			t.Fatalf("missing value type parameters: %v", form)
		}
	}
}

func TestLongRangeFetchIsChunked(t *testing.T) {
	t.Parallel()

	srv := &fakeReportServer{bodies: map[string]string{
		bldTickerList:          tickerListBody,
		bldStockOhlcvByTicker:  `{"output":[]}`,
	}}
	stock := srv.newStock(t)

	if _, err := stock.OhlcvByTicker(context.Background(), "20220101", "20231231", "005930"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	chunks := 0
	for _, form := range srv.forms {
		if form["bld"] == bldStockOhlcvByTicker {
			chunks++
		}
	}
	if chunks != 2 {
		t.Fatalf("expected 2 chunked requests for a 2-year range, got %d", chunks)
	}
}

func TestSearchMatchesNameFragmentAndExactTicker(t *testing.T) {
	t.Parallel()

	srv := &fakeReportServer{bodies: map[string]string{bldTickerList: tickerListBody}}
	stock := srv.newStock(t)
	ctx := context.Background()

	byName, err := stock.Search(ctx, "삼성", "20240105", domain.MarketAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byName) != 1 || byName[0].Ticker != "005930" {
		t.Fatalf("name search: got %+v", byName)
	}

	byTicker, err := stock.Search(ctx, "000660", "20240105", domain.MarketAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(byTicker) != 1 || byTicker[0].Name != "SK하이닉스" {
		t.Fatalf("ticker search: got %+v", byTicker)
	}

	none, err := stock.Search(ctx, "없는종목", "20240105", domain.MarketAll)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(none) != 0 {
		t.Fatalf("expected no matches, got %+v", none)
	}
}

func TestMarketCapsRejectsBadDate(t *testing.T) {
	t.Parallel()

	srv := &fakeReportServer{bodies: map[string]string{}}
	stock := srv.newStock(t)

	if _, err := stock.MarketCaps(context.Background(), "2024-01-05", domain.MarketAll); err == nil {
		t.Fatal("expected validation error for separator date")
	}
	if len(srv.forms) != 0 {
		t.Fatalf("expected no request on invalid input, got %d", len(srv.forms))
	}
}
