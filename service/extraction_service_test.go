package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Arkaprabha13/KYC/dto"
	"github.com/Arkaprabha13/KYC/metrics"
)

type fakeBackend struct {
	name   string
	record *dto.KYCRecord
	err    error
	calls  int
	order  *[]string
}

func (f *fakeBackend) Name() string { return f.name }

func (f *fakeBackend) Extract(ctx context.Context, doc *Document) (*dto.KYCRecord, error) {
	f.calls++
	if f.order != nil {
		*f.order = append(*f.order, f.name)
	}
	if f.err != nil {
		return nil, f.err
	}
	// Hand out a copy so the orchestrator can stamp it freely
	return f.record.Clone(), nil
}

func recordWith(fields map[string]string, confidence *float64) *dto.KYCRecord {
	r := &dto.KYCRecord{}
	for k, v := range fields {
		r.Set(k, v)
	}
	r.ConfidenceScore = confidence
	return r
}

func confPtr(c float64) *float64 { return &c }

func newTestService(backends ...Backend) *ExtractionService {
	return NewExtractionService(backends, NewPDFProcessor(), 2048, metrics.New())
}

func TestExtractSelectsMostConfident(t *testing.T) {
	fast := &fakeBackend{
		name:   "fast",
		record: recordWith(map[string]string{"name": "x"}, confPtr(0.6)),
	}
	pro := &fakeBackend{
		name:   "pro",
		record: recordWith(map[string]string{"name": "x", "department": "y"}, confPtr(0.9)),
	}

	svc := newTestService(fast, pro)
	record, warnings, err := svc.Extract(context.Background(), &Document{})

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Empty(t, warnings)
	assert.Equal(t, "pro", *record.ModelUsed)
	assert.Equal(t, 0.9, *record.ConfidenceScore)
	dept, ok := record.Get("department")
	assert.True(t, ok)
	assert.Equal(t, "y", dept)
	assert.Equal(t, 1, fast.calls)
	assert.Equal(t, 1, pro.calls)
}

func TestExtractTieKeepsEarlierBackend(t *testing.T) {
	first := &fakeBackend{
		name:   "first",
		record: recordWith(map[string]string{"name": "a"}, confPtr(0.7)),
	}
	second := &fakeBackend{
		name:   "second",
		record: recordWith(map[string]string{"name": "b"}, confPtr(0.7)),
	}

	svc := newTestService(first, second)
	record, _, err := svc.Extract(context.Background(), &Document{})

	require.NoError(t, err)
	assert.Equal(t, "first", *record.ModelUsed)
	name, _ := record.Get("name")
	assert.Equal(t, "a", name)
	// The tied later backend was still consulted, exactly once
	assert.Equal(t, 1, second.calls)
}

func TestExtractEarlyExitOnHighConfidence(t *testing.T) {
	first := &fakeBackend{
		name:   "first",
		record: recordWith(nil, confPtr(0.99)),
	}
	second := &fakeBackend{
		name:   "second",
		record: recordWith(nil, confPtr(1.0)),
	}

	svc := newTestService(first, second)
	record, _, err := svc.Extract(context.Background(), &Document{})

	require.NoError(t, err)
	assert.Equal(t, "first", *record.ModelUsed)
	assert.Equal(t, 0, second.calls)
}

func TestExtractExactCutoffDoesNotExitEarly(t *testing.T) {
	first := &fakeBackend{
		name:   "first",
		record: recordWith(nil, confPtr(0.98)),
	}
	second := &fakeBackend{
		name:   "second",
		record: recordWith(nil, confPtr(0.5)),
	}

	svc := newTestService(first, second)
	record, _, err := svc.Extract(context.Background(), &Document{})

	require.NoError(t, err)
	assert.Equal(t, "first", *record.ModelUsed)
	assert.Equal(t, 1, second.calls)
}

func TestExtractCallsBackendsInOrderOnce(t *testing.T) {
	var order []string
	a := &fakeBackend{name: "a", err: errors.New("quota"), order: &order}
	b := &fakeBackend{name: "b", record: recordWith(nil, confPtr(0.4)), order: &order}
	c := &fakeBackend{name: "c", record: recordWith(nil, confPtr(0.3)), order: &order}

	svc := newTestService(a, b, c)
	_, warnings, err := svc.Extract(context.Background(), &Document{})

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
	assert.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "model a failed")
}

func TestExtractFallsThroughOnFailure(t *testing.T) {
	broken := &fakeBackend{name: "broken", err: errors.New("network down")}
	working := &fakeBackend{
		name:   "working",
		record: recordWith(map[string]string{"name": "z"}, confPtr(0.8)),
	}

	svc := newTestService(broken, working)
	record, warnings, err := svc.Extract(context.Background(), &Document{})

	require.NoError(t, err)
	assert.Equal(t, "working", *record.ModelUsed)
	require.Len(t, warnings, 1)
	assert.Contains(t, warnings[0], "network down")
}

func TestExtractAllBackendsFail(t *testing.T) {
	a := &fakeBackend{name: "a", err: errors.New("quota exceeded")}
	b := &fakeBackend{name: "b", err: errors.New("malformed response")}

	svc := newTestService(a, b)
	record, warnings, err := svc.Extract(context.Background(), &Document{})

	require.ErrorIs(t, err, ErrAllBackendsFailed)
	assert.Nil(t, record)
	require.Len(t, warnings, 2)
	assert.Contains(t, warnings[0], "model a failed")
	assert.Contains(t, warnings[1], "model b failed")
	assert.Equal(t, 1, a.calls)
	assert.Equal(t, 1, b.calls)
}

func TestExtractMissingConfidenceDefaultsToZero(t *testing.T) {
	noConf := &fakeBackend{
		name:   "no-conf",
		record: recordWith(map[string]string{"name": "n"}, nil),
	}
	low := &fakeBackend{
		name:   "low",
		record: recordWith(map[string]string{"name": "m"}, confPtr(0.1)),
	}

	svc := newTestService(noConf, low)
	record, _, err := svc.Extract(context.Background(), &Document{})

	require.NoError(t, err)
	// 0.0 beats the initial -1.0, then 0.1 strictly beats 0.0
	assert.Equal(t, "low", *record.ModelUsed)
	assert.Equal(t, 1, noConf.calls)
}

func TestExtractSingleSuccessWithoutConfidenceIsKept(t *testing.T) {
	only := &fakeBackend{
		name:   "only",
		record: recordWith(map[string]string{"name": "solo"}, nil),
	}

	svc := newTestService(only)
	record, _, err := svc.Extract(context.Background(), &Document{})

	require.NoError(t, err)
	require.NotNil(t, record)
	assert.Equal(t, "only", *record.ModelUsed)
	assert.Nil(t, record.ConfidenceScore)
}

func TestExtractAbortsWhenCredentialMissing(t *testing.T) {
	noKey := &fakeBackend{name: "pro", err: dto.ErrNoCredentials}
	never := &fakeBackend{
		name:   "flash",
		record: recordWith(map[string]string{"name": "x"}, confPtr(0.9)),
	}

	svc := newTestService(noKey, never)
	record, _, err := svc.Extract(context.Background(), &Document{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, dto.ErrNoCredentials))
	assert.False(t, errors.Is(err, ErrAllBackendsFailed))
	assert.Nil(t, record)
	// The chain stops at the credential failure, later backends stay untouched
	assert.Equal(t, 1, noKey.calls)
	assert.Equal(t, 0, never.calls)
}
