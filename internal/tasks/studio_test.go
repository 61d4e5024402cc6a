package tasks

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/session"
	"github.com/desertthunder/songsmith/internal/shared"
	tu "github.com/desertthunder/songsmith/internal/testing"
)

func newTestStudio(t *testing.T, api *tu.MockStudio) *Studio {
	t.Helper()
	cfg := shared.DefaultConfig()
	logger := shared.NewLogger(quietLogger())
	sess := session.New(models.NewSession(session.NewProject(cfg.Project)), api, session.OptionsFromConfig(cfg.Project), logger)
	return NewStudio(api, sess, newTestPoller(api, 0), SettingsFromConfig(cfg), logger)
}

func running(p float64, msg string) models.Job {
	return models.Job{Status: models.JobRunning, Progress: p, Message: msg}
}

func done(res *models.JobResult) models.Job {
	return models.Job{Status: models.JobDone, Progress: 100, Message: "done", Result: res}
}

func drain(ch chan ProgressUpdate) []string {
	var msgs []string
	for {
		select {
		case u := <-ch:
			msgs = append(msgs, u.Message)
		default:
			return msgs
		}
	}
}

func TestGenerateMelody(t *testing.T) {
	ctx := context.Background()

	t.Run("records timing urls and lyrics", func(t *testing.T) {
		api := tu.NewMockStudio([]models.Job{
			running(50, "Composing"),
			done(&models.JobResult{
				LyricTimestamps: []models.LyricSegment{{Start: 9, End: 10, Text: "ignored"}},
				Timestamps:      []models.LyricSegment{{Start: 0, End: 2, Text: "hello"}},
				MidiURL:         "http://x/melody.mid",
				GuideAudioURL:   "http://x/guide.wav",
			}),
		})
		st := newTestStudio(t, api)
		progress := make(chan ProgressUpdate, 16)

		if _, err := st.GenerateMelody(ctx, progress, "hello world"); err != nil {
			t.Fatalf("GenerateMelody: %v", err)
		}

		sess := st.Session()
		if sess.Status() != "Melody ready" {
			t.Errorf("unexpected status %q", sess.Status())
		}
		res := sess.Results()
		if res[models.ResultMidi] != "http://x/melody.mid" || res[models.ResultGuideAudio] != "http://x/guide.wav" {
			t.Errorf("unexpected results %v", res)
		}
		if segs := sess.Segments(); len(segs) != 1 || segs[0].Text != "hello" {
			t.Errorf("expected timestamps to win, got %v", segs)
		}
		if sess.Project().Lyrics != "hello world" {
			t.Errorf("lyrics not recorded: %q", sess.Project().Lyrics)
		}

		req := api.LastRequest().(models.MelodyRequest)
		if req.ProjectID != "proj-1" || req.Lyrics != "hello world" || req.Tempo != 80 || req.Key != "C minor" || req.Style != "Romantic" {
			t.Errorf("unexpected request %+v", req)
		}

		msgs := strings.Join(drain(progress), "|")
		for _, want := range []string{"Generating melody...", "50% - Composing", "Melody ready"} {
			if !strings.Contains(msgs, want) {
				t.Errorf("missing progress %q in %s", want, msgs)
			}
		}
	})

	t.Run("falls back to lyricTimestamps", func(t *testing.T) {
		api := tu.NewMockStudio([]models.Job{done(&models.JobResult{
			LyricTimestamps: []models.LyricSegment{{Start: 1, End: 2, Text: "alt"}},
		})})
		st := newTestStudio(t, api)
		if _, err := st.GenerateMelody(ctx, nil, "x"); err != nil {
			t.Fatalf("GenerateMelody: %v", err)
		}
		if segs := st.Session().Segments(); len(segs) != 1 || segs[0].Text != "alt" {
			t.Errorf("unexpected segments %v", segs)
		}
	})

	t.Run("job error sets status to message", func(t *testing.T) {
		api := tu.NewMockStudio([]models.Job{
			running(10, "Composing"),
			{Status: models.JobError, Progress: 10, Message: "model crashed"},
		})
		st := newTestStudio(t, api)
		_, err := st.GenerateMelody(ctx, nil, "x")
		if !errors.Is(err, shared.ErrJobFailed) {
			t.Fatalf("expected ErrJobFailed, got %v", err)
		}
		if st.Session().Status() != "model crashed" {
			t.Errorf("unexpected status %q", st.Session().Status())
		}
		if len(st.Session().Results()) != 0 {
			t.Error("failed job must not merge results")
		}
	})
}

func TestGenerateInstrumentalAndMix(t *testing.T) {
	ctx := context.Background()
	api := tu.NewMockStudio(
		[]models.Job{done(&models.JobResult{
			ExtraURLs: map[string]string{models.ResultInstrumental: "http://x/inst.wav"},
			Stems:     models.Stems{{Name: "piano", URL: "http://x/piano.wav"}, {Name: "kick", URL: "http://x/kick.wav"}},
		})},
		[]models.Job{running(70, "Mastering"), done(&models.JobResult{MasterURL: "http://x/master.wav"})},
	)
	st := newTestStudio(t, api)
	st.Session().AddTrack("Piano")
	st.Session().AddTrack("Kick")

	if _, err := st.GenerateInstrumental(ctx, nil); err != nil {
		t.Fatalf("GenerateInstrumental: %v", err)
	}
	inst := api.LastRequest().(models.InstrumentalRequest)
	if strings.Join(inst.Instruments, ",") != "Piano,Kick" || inst.LengthSec != 30 {
		t.Errorf("unexpected instrumental request %+v", inst)
	}
	if st.Session().Status() != "Instrumental ready" {
		t.Errorf("unexpected status %q", st.Session().Status())
	}
	if st.Session().Results()[models.ResultInstrumental] != "http://x/inst.wav" {
		t.Errorf("instrumental url not merged: %v", st.Session().Results())
	}

	if _, err := st.Mix(ctx, nil); err != nil {
		t.Fatalf("Mix: %v", err)
	}
	mix := api.LastRequest().(models.MixRequest)
	if strings.Join(mix.Stems, ",") != "http://x/piano.wav,http://x/kick.wav" || mix.MasterTargetLUFS != -14 {
		t.Errorf("unexpected mix request %+v", mix)
	}
	if st.Session().Status() != "Master ready: http://x/master.wav" {
		t.Errorf("unexpected status %q", st.Session().Status())
	}
	if st.Session().LatestMaster() != "http://x/master.wav" {
		t.Error("master not merged")
	}
	if api.Count("CreateProject") != 1 {
		t.Errorf("expected one project creation, got %d", api.Count("CreateProject"))
	}
}

func TestGenerateVideo(t *testing.T) {
	ctx := context.Background()

	t.Run("without master sends empty audio url", func(t *testing.T) {
		api := tu.NewMockStudio([]models.Job{done(&models.JobResult{
			VideoURL:   "http://x/video.mp4",
			Thumbnails: []string{"http://x/t1.jpg", "http://x/t2.jpg"},
		})})
		st := newTestStudio(t, api)
		if _, err := st.GenerateVideo(ctx, nil); err != nil {
			t.Fatalf("GenerateVideo: %v", err)
		}
		req := api.LastRequest().(models.VideoRequest)
		if req.AudioURL != "" || req.AspectRatio != "16:9" || req.Style != "Romantic" {
			t.Errorf("unexpected request %+v", req)
		}
		if st.Session().Status() != "Video ready" || len(st.Session().Thumbnails()) != 2 {
			t.Errorf("unexpected state %q %v", st.Session().Status(), st.Session().Thumbnails())
		}
	})

	t.Run("uses latest master", func(t *testing.T) {
		api := tu.NewMockStudio([]models.Job{done(&models.JobResult{VideoURL: "http://x/v.mp4"})})
		st := newTestStudio(t, api)
		st.Session().MergeResults(st.Session().NextSeq(), map[string]string{models.ResultMaster: "http://x/m.wav"})
		if _, err := st.GenerateVideo(ctx, nil); err != nil {
			t.Fatalf("GenerateVideo: %v", err)
		}
		if req := api.LastRequest().(models.VideoRequest); req.AudioURL != "http://x/m.wav" {
			t.Errorf("expected master url, got %q", req.AudioURL)
		}
	})
}

func TestGenerateFull(t *testing.T) {
	api := tu.NewMockStudio([]models.Job{
		running(25, "Writing"),
		done(&models.JobResult{
			MasterURL: "http://x/master.wav",
			VideoURL:  "http://x/video.mp4",
			MidiURL:   "http://x/song.mid",
			VocalURL:  "http://x/vocal.wav",
		}),
	})
	st := newTestStudio(t, api)
	st.Session().SetLyrics("la la")
	st.Session().MergeResults(st.Session().NextSeq(), map[string]string{
		models.ResultGuideAudio:   "http://x/old-guide.wav",
		models.ResultInstrumental: "http://x/old-inst.wav",
	})

	if _, err := st.GenerateFull(context.Background(), nil); err != nil {
		t.Fatalf("GenerateFull: %v", err)
	}
	req := api.LastRequest().(models.FullRequest)
	if req.Lyrics != "la la" || req.ProjectID != "proj-1" {
		t.Errorf("unexpected request %+v", req)
	}

	res := st.Session().Results()
	if len(res) != 4 {
		t.Fatalf("expected exactly 4 results, got %v", res)
	}
	for _, k := range []string{models.ResultMaster, models.ResultVideo, models.ResultMidi, models.ResultVocal} {
		if res[k] == "" {
			t.Errorf("missing %s", k)
		}
	}
	if st.Session().Status() != "Song ready" {
		t.Errorf("unexpected status %q", st.Session().Status())
	}
}

func TestStudioFailures(t *testing.T) {
	ctx := context.Background()

	tt := []struct {
		name   string
		method string
		run    func(*Studio) error
	}{
		{"create project", "CreateProject", func(s *Studio) error { _, err := s.Mix(ctx, nil); return err }},
		{"submit", "GenerateInstrumental", func(s *Studio) error { _, err := s.GenerateInstrumental(ctx, nil); return err }},
		{"poll", "JobStatus", func(s *Studio) error { _, err := s.GenerateVideo(ctx, nil); return err }},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			api := tu.NewMockStudio([]models.Job{done(nil)})
			api.Errors[tc.method] = errors.New("backend unreachable")
			st := newTestStudio(t, api)

			err := tc.run(st)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(st.Session().Status(), "backend unreachable") {
				t.Errorf("status should carry the error, got %q", st.Session().Status())
			}
		})
	}
}

func TestConcurrentOperationsShareProject(t *testing.T) {
	api := tu.NewMockStudio([]models.Job{done(nil)}, []models.Job{done(nil)})
	api.Gate = make(chan struct{})
	st := newTestStudio(t, api)

	var wg sync.WaitGroup
	errs := make(chan error, 2)
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := st.GenerateMelody(context.Background(), nil, "x")
		errs <- err
	}()
	go func() {
		defer wg.Done()
		_, err := st.GenerateInstrumental(context.Background(), nil)
		errs <- err
	}()

	time.Sleep(20 * time.Millisecond)
	close(api.Gate)
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("unexpected error: %v", err)
		}
	}
	if n := api.Count("CreateProject"); n != 1 {
		t.Errorf("expected 1 creation request, got %d", n)
	}
}
