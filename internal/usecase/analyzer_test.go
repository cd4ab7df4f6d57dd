package usecase

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"PumpScan/internal/domain/models"
	"PumpScan/internal/repository"
	"PumpScan/internal/services/detection"
	applogger "PumpScan/pkg/logger"
	"PumpScan/pkg/metrics"

	"github.com/cenkalti/backoff/v4"
	"github.com/prometheus/client_golang/prometheus"
)

type recordingArchive struct {
	repository.NoopArchive
	mu     sync.Mutex
	stored []*models.Analysis
	err    error
	delay  time.Duration
}

func (r *recordingArchive) Store(_ context.Context, a *models.Analysis) error {
	if r.delay > 0 {
		time.Sleep(r.delay)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.stored = append(r.stored, a)
	return r.err
}

type recordingPublisher struct {
	repository.NoopPublisher
	mu        sync.Mutex
	published []*models.Analysis
}

func (r *recordingPublisher) Publish(_ context.Context, a *models.Analysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.published = append(r.published, a)
	return nil
}

type fixture struct {
	analyzer *Analyzer
	store    *repository.MemoryStore
	archive  *recordingArchive
	alerts   *recordingPublisher
}

func newFixture() *fixture {
	f := &fixture{
		store:   repository.NewMemoryStore(),
		archive: &recordingArchive{},
		alerts:  &recordingPublisher{},
	}
	engine := detection.NewEngine(detection.NewTracker(detection.DefaultWindowSize))
	f.analyzer = NewAnalyzer(engine, f.store, f.archive, f.alerts, metrics.New(prometheus.NewRegistry()), nil)
	f.analyzer.now = func() time.Time { return time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC) }
	return f
}

func request(symbol string, volume int64, closing, previous float64) *models.AnalyzeRequest {
	return &models.AnalyzeRequest{
		Symbol:          symbol,
		Volume:          &volume,
		ClosingPrice:    closing,
		PreviousClosing: previous,
	}
}

func TestAnalyzerPumpThenDump(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		a, err := f.analyzer.AnalyzeRequest(ctx, SourceHTTP, request("nabil", 15000, 1100, 1100))
		if err != nil {
			t.Fatalf("baseline %d: %v", i, err)
		}
		if a.Suspicious {
			t.Fatalf("baseline record %d flagged: %+v", i, a.Classification)
		}
	}

	pump, err := f.analyzer.AnalyzeRequest(ctx, SourceHTTP, request("NABIL", 45000, 1180, 1100))
	if err != nil {
		t.Fatalf("pump: %v", err)
	}
	if pump.Classification.Pattern != models.PatternPump || pump.Classification.RiskLevel != models.RiskMedium {
		t.Fatalf("pump classification %+v", pump.Classification)
	}

	dump, err := f.analyzer.AnalyzeRequest(ctx, SourceHTTP, request("NABIL", 20000, 1100, 1180))
	if err != nil {
		t.Fatalf("dump: %v", err)
	}
	if dump.Classification.Pattern != models.PatternPumpAndDump || dump.Classification.RiskLevel != models.RiskHigh {
		t.Fatalf("dump classification %+v", dump.Classification)
	}
	if dump.Signals.DropPercent != 6.78 {
		t.Fatalf("drop percent %v", dump.Signals.DropPercent)
	}

	latest, err := f.store.Latest("nabil")
	if err != nil || latest != dump {
		t.Fatalf("latest %v %v", latest, err)
	}
	if len(f.archive.stored) != 7 {
		t.Fatalf("archived %d", len(f.archive.stored))
	}
	if len(f.alerts.published) != 2 {
		t.Fatalf("published %d", len(f.alerts.published))
	}
	if dump.Record.Symbol != "NABIL" || dump.AnalyzedAt.IsZero() {
		t.Fatalf("record %+v", dump)
	}
}

func TestAnalyzerRejectsInvalidRequest(t *testing.T) {
	f := newFixture()
	req := request("NABIL", 100, 0, 1100)
	_, err := f.analyzer.AnalyzeRequest(context.Background(), SourceHTTP, req)
	var ve *models.ValidationError
	if !errors.As(err, &ve) {
		t.Fatalf("expected validation error, got %v", err)
	}
	if len(ve.Fields) != 1 || ve.Fields[0].Field != "closing_price" {
		t.Fatalf("fields %+v", ve.Fields)
	}
	if f.store.Version() != 0 {
		t.Fatalf("invalid record reached the store")
	}

	req = &models.AnalyzeRequest{Symbol: "NABIL", ClosingPrice: 1, PreviousClosing: 1}
	if _, err := f.analyzer.AnalyzeRequest(context.Background(), SourceHTTP, req); !models.IsValidation(err) {
		t.Fatalf("missing volume: expected validation error, got %v", err)
	}

	req = request("NABIL", 100, 1100, 1100)
	req.Timestamp = "yesterday"
	if _, err := f.analyzer.AnalyzeRequest(context.Background(), SourceHTTP, req); !models.IsValidation(err) {
		t.Fatalf("bad timestamp: expected validation error, got %v", err)
	}
}

func TestAnalyzerSinkFailureKeepsResult(t *testing.T) {
	f := newFixture()
	f.archive.err = errors.New("clickhouse down")
	a, err := f.analyzer.AnalyzeRequest(context.Background(), SourceHTTP, request("HDL", 3000, 1200, 1190))
	if err != nil {
		t.Fatalf("analyze: %v", err)
	}
	if got, _ := f.store.Latest("HDL"); got != a {
		t.Fatalf("analysis not stored")
	}
}

func TestAnalyzerConcurrentSymbols(t *testing.T) {
	f := newFixture()
	var wg sync.WaitGroup
	for _, sym := range []string{"A", "B", "C", "D"} {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				if _, err := f.analyzer.AnalyzeRequest(context.Background(), SourceKafka, request(sym, 1000, 100, 100)); err != nil {
					t.Errorf("%s: %v", sym, err)
				}
			}
		}(sym)
	}
	wg.Wait()
	if st := f.store.Stats(); st.Total != 200 || st.Low != 200 {
		t.Fatalf("stats %+v", st)
	}
}

func TestAnalyzerSinksFollowStoreOrder(t *testing.T) {
	f := newFixture()
	f.archive.delay = 50 * time.Microsecond

	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 50; i++ {
				vol := int64(1000 + g*100 + i)
				if _, err := f.analyzer.AnalyzeRequest(context.Background(), SourceHTTP, request("NABIL", vol, 100, 100)); err != nil {
					t.Errorf("analyze: %v", err)
				}
			}
		}(g)
	}
	wg.Wait()

	all := f.store.All()
	if len(f.archive.stored) != len(all) {
		t.Fatalf("archived %d of %d", len(f.archive.stored), len(all))
	}
	for i := range all {
		if f.archive.stored[i] != all[i] {
			t.Fatalf("archive diverges from store at %d", i)
		}
	}
}

func TestAnalyzerLogsSuspiciousActivity(t *testing.T) {
	var buf bytes.Buffer
	f := newFixture()
	engine := detection.NewEngine(detection.NewTracker(detection.DefaultWindowSize))
	a := NewAnalyzer(engine, f.store, nil, nil, metrics.New(prometheus.NewRegistry()), applogger.NewWithWriter(&buf))

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		if _, err := a.AnalyzeRequest(ctx, SourceHTTP, request("NABIL", 15000, 1100, 1100)); err != nil {
			t.Fatalf("baseline: %v", err)
		}
	}
	if _, err := a.AnalyzeRequest(ctx, SourceHTTP, request("NABIL", 45000, 1180, 1100)); err != nil {
		t.Fatalf("pump: %v", err)
	}

	out := buf.String()
	if strings.Count(out, `"message":"record analyzed"`) != 6 || strings.Count(out, `"suspicious":true`) != 1 {
		t.Fatalf("debug lines:\n%s", out)
	}
	if !strings.Contains(out, `"message":"suspicious activity"`) || !strings.Contains(out, `"explanation":"`) {
		t.Fatalf("missing suspicious line:\n%s", out)
	}
}

func TestAnalyzerArchiveQuery(t *testing.T) {
	f := newFixture()
	if _, err := f.analyzer.Archive(context.Background(), "NABIL", 10); !errors.Is(err, models.ErrArchiveDisabled) {
		t.Fatalf("expected ErrArchiveDisabled, got %v", err)
	}
}

func TestKafkaRecordsHandler(t *testing.T) {
	f := newFixture()
	h := NewKafkaRecordsHandler("pumpscan.records", f.analyzer)
	if h.Topic() != "pumpscan.records" {
		t.Fatalf("topic %s", h.Topic())
	}

	err := h.Handle(context.Background(), []byte(`{"symbol":"upper","volume":80000,"closing_price":310,"previous_closing":307,"timestamp":"2025-03-02"}`))
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	a, err := f.store.Latest("UPPER")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if !a.Record.Timestamp.Equal(time.Date(2025, 3, 2, 0, 0, 0, 0, time.UTC)) {
		t.Fatalf("timestamp %v", a.Record.Timestamp)
	}

	var pe *backoff.PermanentError
	if err := h.Handle(context.Background(), []byte(`{not json`)); !errors.As(err, &pe) {
		t.Fatalf("malformed payload should be permanent, got %v", err)
	}
	if err := h.Handle(context.Background(), []byte(`{"symbol":"UPPER"}`)); !errors.As(err, &pe) {
		t.Fatalf("invalid payload should be permanent, got %v", err)
	}
	if f.store.Version() != 1 {
		t.Fatalf("version %d", f.store.Version())
	}
}

func TestSeedLoaderFile(t *testing.T) {
	f := newFixture()
	loader := NewSeedLoader(f.analyzer, nil)
	res, err := loader.LoadFile(context.Background(), "../../data/nepse_today.json")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Loaded != 28 || res.Rejected != 0 || res.Suspicious != 4 {
		t.Fatalf("result %+v", res)
	}
	nabil, err := f.store.Latest("NABIL")
	if err != nil {
		t.Fatalf("latest: %v", err)
	}
	if nabil.Classification.Pattern != models.PatternPumpAndDump {
		t.Fatalf("NABIL %+v", nabil.Classification)
	}
	st := f.store.Stats()
	if st.High != 1 || st.Medium != 3 || st.Low != 24 || st.Symbols != 4 {
		t.Fatalf("stats %+v", st)
	}
}

func TestSeedLoaderMissingFileAndBadRows(t *testing.T) {
	f := newFixture()
	loader := NewSeedLoader(f.analyzer, nil)
	res, err := loader.LoadFile(context.Background(), "does/not/exist.json")
	if err != nil || res.Loaded != 0 {
		t.Fatalf("missing file: %+v %v", res, err)
	}

	doc := `{"result":{"stocks":[
		{"stockSymbol":"HDL","volume":3000,"closingPrice":1200,"previousClosing":1190,"businessDate":"2025-03-02"},
		{"stockSymbol":"","volume":3000,"closingPrice":1200,"previousClosing":1190},
		{"stockSymbol":"HDL","closingPrice":1200,"previousClosing":1190}
	]}}`
	res, err = loader.Load(context.Background(), strings.NewReader(doc))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if res.Loaded != 1 || res.Rejected != 2 {
		t.Fatalf("result %+v", res)
	}

	if _, err := loader.Load(context.Background(), strings.NewReader(`[]`)); err == nil {
		t.Fatalf("expected decode error")
	}
}
