package models

import (
	"encoding/json"
	"testing"
)

func TestJobResult(t *testing.T) {
	t.Run("Segments prefers timestamps", func(t *testing.T) {
		var r JobResult
		data := `{"timestamps":[{"start":0,"end":1,"text":"a"}],"lyricTimestamps":[{"start":5,"end":6,"text":"b"}]}`
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		segs := r.Segments()
		if len(segs) != 1 || segs[0].Text != "a" {
			t.Errorf("expected timestamps to win, got %+v", segs)
		}
	})

	t.Run("Segments falls back to lyricTimestamps", func(t *testing.T) {
		var r JobResult
		if err := json.Unmarshal([]byte(`{"lyricTimestamps":[{"start":2.5,"end":4,"text":"hello"}]}`), &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		segs := r.Segments()
		if len(segs) != 1 || segs[0].Start != 2.5 || segs[0].Text != "hello" {
			t.Errorf("unexpected segments %+v", segs)
		}
	})

	t.Run("Segments empty when absent", func(t *testing.T) {
		var r *JobResult
		if segs := r.Segments(); segs == nil || len(segs) != 0 {
			t.Errorf("expected empty non-nil slice, got %#v", segs)
		}
	})

	t.Run("URLs includes unknown url fields", func(t *testing.T) {
		var r JobResult
		data := `{"masterUrl":"m","instrumentalUrl":"i","progressUrl":"","note":"x"}`
		if err := json.Unmarshal([]byte(data), &r); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		urls := r.URLs()
		if len(urls) != 2 || urls[ResultMaster] != "m" || urls[ResultInstrumental] != "i" {
			t.Errorf("unexpected urls %v", urls)
		}
	})
}

func TestStems(t *testing.T) {
	tt := []struct {
		name  string
		data  string
		names []string
		urls  []string
	}{
		{"objects", `[{"name":"piano","url":"u1"}]`, []string{"piano"}, []string{"u1"}},
		{"strings", `["u1","u2"]`, []string{"stem_1", "stem_2"}, []string{"u1", "u2"}},
		{"map", `{"violin":"u2","cello":"u1"}`, []string{"cello", "violin"}, []string{"u1", "u2"}},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			var s Stems
			if err := json.Unmarshal([]byte(tc.data), &s); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if len(s) != len(tc.names) {
				t.Fatalf("expected %d stems, got %d", len(tc.names), len(s))
			}
			for i := range s {
				if s[i].Name != tc.names[i] || s.URLs()[i] != tc.urls[i] {
					t.Errorf("stem %d = %+v", i, s[i])
				}
			}
		})
	}

	t.Run("rejects scalars", func(t *testing.T) {
		var s Stems
		if err := json.Unmarshal([]byte(`42`), &s); err == nil {
			t.Error("expected error")
		}
	})
}

func TestJob(t *testing.T) {
	t.Run("IsTerminal", func(t *testing.T) {
		for status, want := range map[JobStatus]bool{
			JobDone: true, JobError: true, JobRunning: false, JobPending: false, "queued": false, "": false,
		} {
			if got := status.IsTerminal(); got != want {
				t.Errorf("%q.IsTerminal() = %v, want %v", status, got, want)
			}
		}
	})

	t.Run("StatusLine", func(t *testing.T) {
		if got := (Job{Progress: 55, Message: "rendering"}).StatusLine(); got != "55% - rendering" {
			t.Errorf("got %q", got)
		}
		if got := (Job{Progress: 12.5, Message: "x"}).StatusLine(); got != "12.5% - x" {
			t.Errorf("got %q", got)
		}
	})
}

func TestControls(t *testing.T) {
	c := DefaultControls()
	if c.Volume != 0.8 || c.Pan != 0 || c.Reverb != 0.2 || c.Attack != 0.01 || c.Release != 0.2 || c.Humanize != 0.3 {
		t.Errorf("unexpected defaults %+v", c)
	}

	if err := c.Set(ControlPan, -0.5); err != nil || c.Get(ControlPan) != -0.5 {
		t.Errorf("Set pan failed: %v", err)
	}
	if err := c.Set("gain", 1); err == nil {
		t.Error("expected error for unknown control")
	}

	if lo, hi := ControlPan.Range(); lo != -1 || hi != 1 {
		t.Errorf("pan range = [%v,%v]", lo, hi)
	}
	if lo, hi := ControlReverb.Range(); lo != 0 || hi != 1 {
		t.Errorf("reverb range = [%v,%v]", lo, hi)
	}
	if name, ok := ParseControlName(" Humanize "); !ok || name != ControlHumanize {
		t.Errorf("ParseControlName = %q, %v", name, ok)
	}
}

func TestSessionValidate(t *testing.T) {
	s := NewSession(Project{Name: "New Song", Tempo: 80})
	if err := s.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	s.Tracks = []Track{{ID: "a", Name: "Piano"}, {ID: "a", Name: "Kick"}}
	if err := s.Validate(); err == nil {
		t.Error("expected duplicate id error")
	}
}
