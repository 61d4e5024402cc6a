package session

import (
	"github.com/desertthunder/songsmith/internal/models"
)

// MergeResults unions fields into the result bundle. A key is only written
// when seq is at least the sequence of the operation that last wrote it.
// Empty values are ignored. It returns the keys that were written.
func (s *ProjectSession) MergeResults(seq int64, fields map[string]string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var written []string
	for k, v := range fields {
		if v == "" || seq < s.state.ResultSeqs[k] {
			continue
		}
		s.state.Results[k] = v
		s.state.ResultSeqs[k] = seq
		written = append(written, k)
	}
	return written
}

// ReplaceResults makes the bundle exactly master, video, midi and vocal.
// Keys written by operations newer than seq survive.
func (s *ProjectSession) ReplaceResults(seq int64, master, video, midi, vocal string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bundle := models.ResultBundle{}
	seqs := map[string]int64{}
	for k, v := range s.state.Results {
		if s.state.ResultSeqs[k] > seq {
			bundle[k], seqs[k] = v, s.state.ResultSeqs[k]
		}
	}
	for k, v := range map[string]string{
		models.ResultMaster: master,
		models.ResultVideo:  video,
		models.ResultMidi:   midi,
		models.ResultVocal:  vocal,
	} {
		if v == "" {
			continue
		}
		if _, newer := bundle[k]; newer {
			continue
		}
		bundle[k], seqs[k] = v, seq
	}

	s.state.Results = bundle
	s.state.ResultSeqs = seqs
}

// Results returns a copy of the result bundle.
func (s *ProjectSession) Results() models.ResultBundle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Results.Clone()
}

// LatestMaster returns the most recent master mix URL or "".
func (s *ProjectSession) LatestMaster() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Results[models.ResultMaster]
}

// SetSegments replaces the lyric timing sequence unless a newer operation already did.
func (s *ProjectSession) SetSegments(seq int64, segs []models.LyricSegment) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.segmentsSeq {
		return false
	}
	s.segmentsSeq = seq
	s.state.Segments = append([]models.LyricSegment{}, segs...)
	return true
}

// Segments returns a copy of the timed lyrics.
func (s *ProjectSession) Segments() []models.LyricSegment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]models.LyricSegment{}, s.state.Segments...)
}

// SetStems records instrumental stems unless a newer operation already did.
func (s *ProjectSession) SetStems(seq int64, stems models.Stems) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.stemsSeq {
		return false
	}
	s.stemsSeq = seq
	s.state.Stems = append(models.Stems{}, stems...)
	return true
}

// Stems returns a copy of the recorded stems.
func (s *ProjectSession) Stems() models.Stems {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append(models.Stems{}, s.state.Stems...)
}

// SetThumbnails records video thumbnails unless a newer operation already did.
func (s *ProjectSession) SetThumbnails(seq int64, thumbs []string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if seq < s.thumbsSeq {
		return false
	}
	s.thumbsSeq = seq
	s.state.Thumbnails = append([]string{}, thumbs...)
	return true
}

// Thumbnails returns a copy of the video thumbnail URLs.
func (s *ProjectSession) Thumbnails() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string{}, s.state.Thumbnails...)
}
