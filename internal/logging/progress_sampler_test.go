package logging

import "testing"

func TestNewProgressSampler(t *testing.T) {
	tests := []struct {
		name       string
		bucketSize float64
		wantSize   float64
	}{
		{"default bucket size for zero", 0, 10},
		{"default bucket size for negative", -1, 10},
		{"custom bucket size", 25, 25},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewProgressSampler(tt.bucketSize)
			if s.bucketSize != tt.wantSize {
				t.Errorf("bucketSize = %v, want %v", s.bucketSize, tt.wantSize)
			}
			if s.lastBucket != -1 {
				t.Errorf("lastBucket = %d, want -1", s.lastBucket)
			}
		})
	}
}

func TestProgressSampler_NilSampler(t *testing.T) {
	var s *ProgressSampler
	if !s.ShouldLog("a.mp4", 1, 10) {
		t.Error("ShouldLog on nil sampler should always return true")
	}
	s.Reset()
}

func TestProgressSampler_Buckets(t *testing.T) {
	s := NewProgressSampler(25)
	steps := []struct {
		done int
		want bool
	}{
		{0, true},
		{10, false},
		{25, true},
		{40, false},
		{50, true},
		{99, true},
		{100, true},
		{120, false},
	}
	for _, step := range steps {
		if got := s.ShouldLog("out.mp4", step.done, 100); got != step.want {
			t.Fatalf("ShouldLog(%d) = %v, want %v", step.done, got, step.want)
		}
	}
}

func TestProgressSampler_SubjectChangeResets(t *testing.T) {
	s := NewProgressSampler(10)
	s.ShouldLog("first.mp4", 90, 100)
	if !s.ShouldLog("second.mp4", 5, 100) {
		t.Fatal("new subject should log")
	}
	if s.lastBucket != 0 {
		t.Fatalf("lastBucket = %d, want 0", s.lastBucket)
	}
}

func TestProgressSampler_UnknownTotal(t *testing.T) {
	s := NewProgressSampler(10)
	if !s.ShouldLog("x", 1, 0) {
		t.Fatal("first line for a subject should log")
	}
	if s.ShouldLog("x", 500, 0) {
		t.Fatal("unknown total should not log repeatedly")
	}
	s.Reset()
	if !s.ShouldLog("x", 501, 0) {
		t.Fatal("reset should allow a new line")
	}
}
