package observability

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/danmuck/safebuf"
	"github.com/danmuck/safebuf/internal/testutil/testlog"
)

func counterValue(t *testing.T, m *DecodeMetrics, name, label string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			for _, lp := range metric.GetLabel() {
				if lp.GetValue() == label {
					return metric.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestRecordFrameAndErrors(t *testing.T) {
	testlog.Start(t)
	m := NewDecodeMetrics()
	m.RecordFrame("data", 45, 13)
	m.RecordFrame("data", 32, 0)
	m.RecordError(fmt.Errorf("frame: short body: %w", safebuf.ErrTruncated))
	m.RecordError(safebuf.ErrExtraneousBytes)
	m.RecordError(nil)

	if got := counterValue(t, m, "safebuf_decode_frames_total", "data"); got != 2 {
		t.Fatalf("frames_total{data} = %v", got)
	}
	if got := counterValue(t, m, "safebuf_decode_errors_total", "truncated"); got != 1 {
		t.Fatalf("errors_total{truncated} = %v", got)
	}
	if got := counterValue(t, m, "safebuf_decode_errors_total", "extraneous_bytes"); got != 1 {
		t.Fatalf("errors_total{extraneous_bytes} = %v", got)
	}
}

func TestInstancesAreIndependent(t *testing.T) {
	testlog.Start(t)
	a, b := NewDecodeMetrics(), NewDecodeMetrics()
	a.RecordFrame("hello", 40, 8)
	if got := counterValue(t, a, "safebuf_decode_frames_total", "hello"); got != 1 {
		t.Fatalf("a frames_total{hello} = %v", got)
	}
	if got := counterValue(t, b, "safebuf_decode_frames_total", "hello"); got != 0 {
		t.Fatalf("b frames_total{hello} = %v", got)
	}
}

func TestWriteTextfile(t *testing.T) {
	testlog.Start(t)
	m := NewDecodeMetrics()
	m.RecordFrame("hello", 40, 8)
	path := filepath.Join(t.TempDir(), "decode.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("write textfile: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	if !strings.Contains(string(raw), `safebuf_decode_frames_total{message_type="hello"} 1`) {
		t.Fatalf("unexpected textfile:\n%s", raw)
	}
}
