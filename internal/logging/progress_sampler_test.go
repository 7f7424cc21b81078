package logging

import "testing"

func TestNewProgressSamplerDefaults(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		want       float64
	}{
		{"zero", 0, 5},
		{"negative", -2, 5},
		{"custom", 10, 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.want {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.want)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSamplerNilAlwaysLogs(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog(42, "enrich") {
		t.Error("nil sampler should log")
	}
	s.Reset()
}

func TestProgressSamplerBuckets(t *testing.T) {
	s := NewProgressSampler(10)
	steps := []struct {
		percent float64
		want    bool
	}{
		{0, true},
		{4, false},
		{9.9, false},
		{10, true},
		{15, false},
		{35, true},
		{100, true},
		{130, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog(step.percent, "enrich"); got != step.want {
			t.Fatalf("ShouldLog(%v) = %v, want %v", step.percent, got, step.want)
		}
	}
}

func TestProgressSamplerStageChangeResetsBucket(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(60, "enrich")
	if !s.ShouldLog(0, " validate ") {
		t.Fatal("stage change should log")
	}
	if s.lastStage != "validate" {
		t.Fatalf("lastStage = %q, want trimmed stage", s.lastStage)
	}
	if !s.ShouldLog(5, "validate") {
		t.Fatal("bucket should restart after stage change")
	}
}

func TestProgressSamplerUnknownPercent(t *testing.T) {
	s := NewProgressSampler(5)
	if !s.ShouldLog(-1, "enrich") {
		t.Fatal("first stage sighting should log")
	}
	if s.ShouldLog(-1, "enrich") {
		t.Fatal("unknown percent should not log again")
	}
}

func TestProgressSamplerReset(t *testing.T) {
	s := NewProgressSampler(5)
	s.ShouldLog(50, "enrich")
	s.Reset()
	if !s.ShouldLog(50, "enrich") {
		t.Fatal("should log after reset")
	}
}
