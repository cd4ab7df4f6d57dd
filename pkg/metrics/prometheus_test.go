package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestRecorderRegistersOnGivenRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)
	r.RecordAnalysis("HIGH", "PUMP_AND_DUMP")
	r.RecordAnalysis("HIGH", "PUMP_AND_DUMP")
	r.RecordRejected("http")
	r.RecordVolumeRatio("NABIL", 3.2)
	r.RecordLatency("analyze", 0.001)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]*float64{}
	for _, mf := range families {
		if mf.GetName() == "pumpscan_analyses_total" {
			v := mf.GetMetric()[0].GetCounter().GetValue()
			found[mf.GetName()] = &v
		}
		if mf.GetName() == "pumpscan_last_volume_ratio" {
			v := mf.GetMetric()[0].GetGauge().GetValue()
			found[mf.GetName()] = &v
		}
	}
	if v := found["pumpscan_analyses_total"]; v == nil || *v != 2 {
		t.Fatalf("analyses counter %v", v)
	}
	if v := found["pumpscan_last_volume_ratio"]; v == nil || *v != 3.2 {
		t.Fatalf("volume ratio gauge %v", v)
	}
}

func TestRecorderIsolatedRegistries(t *testing.T) {
	// Two recorders on separate registries must not collide.
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
