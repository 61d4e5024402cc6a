package models

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// JobStatus is the backend's free-form job state. Only "done" and "error" are terminal.
type JobStatus string

const (
	JobPending JobStatus = "pending"
	JobRunning JobStatus = "running"
	JobDone    JobStatus = "done"
	JobError   JobStatus = "error"
)

// IsTerminal reports whether no further transitions can occur.
func (s JobStatus) IsTerminal() bool {
	return s == JobDone || s == JobError
}

// Result URL keys as they appear in job results and the [ResultBundle].
const (
	ResultMaster       = "masterUrl"
	ResultVideo        = "videoUrl"
	ResultMidi         = "midiUrl"
	ResultGuideAudio   = "guideAudioUrl"
	ResultVocal        = "vocalUrl"
	ResultInstrumental = "instrumentalUrl"
)

// Job is one status snapshot.
type Job struct {
	ID       string     `json:"jobId,omitempty"`
	Status   JobStatus  `json:"status"`
	Progress float64    `json:"progress"`
	Message  string     `json:"message"`
	Result   *JobResult `json:"result,omitempty"`
}

// StatusLine renders the snapshot as "{progress}% - {message}".
func (j Job) StatusLine() string {
	return strconv.FormatFloat(j.Progress, 'f', -1, 64) + "% - " + j.Message
}

// JobResult is the union of result shapes across job types. Every field is optional.
type JobResult struct {
	Timestamps      []LyricSegment `json:"timestamps,omitempty"`
	LyricTimestamps []LyricSegment `json:"lyricTimestamps,omitempty"`
	MidiURL         string         `json:"midiUrl,omitempty"`
	GuideAudioURL   string         `json:"guideAudioUrl,omitempty"`
	MasterURL       string         `json:"masterUrl,omitempty"`
	VideoURL        string         `json:"videoUrl,omitempty"`
	VocalURL        string         `json:"vocalUrl,omitempty"`
	Thumbnails      []string       `json:"thumbnails,omitempty"`
	Stems           Stems          `json:"stems,omitempty"`

	// Other string fields ending in "Url", keyed by field name.
	ExtraURLs map[string]string `json:"-"`
}

// UnmarshalJSON decodes the known fields and collects any other "...Url" strings.
func (r *JobResult) UnmarshalJSON(data []byte) error {
	type alias JobResult
	var a alias
	if err := json.Unmarshal(data, &a); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	for k, v := range raw {
		if !strings.HasSuffix(k, "Url") || knownURLField(k) {
			continue
		}
		var s string
		if json.Unmarshal(v, &s) != nil || s == "" {
			continue
		}
		if a.ExtraURLs == nil {
			a.ExtraURLs = make(map[string]string)
		}
		a.ExtraURLs[k] = s
	}

	*r = JobResult(a)
	return nil
}

func knownURLField(k string) bool {
	switch k {
	case ResultMidi, ResultGuideAudio, ResultMaster, ResultVideo, ResultVocal:
		return true
	}
	return false
}

// Segments returns the lyric timing sequence. timestamps wins over
// lyricTimestamps when present; neither yields an empty slice.
func (r *JobResult) Segments() []LyricSegment {
	if r == nil {
		return []LyricSegment{}
	}
	if r.Timestamps != nil {
		return r.Timestamps
	}
	if r.LyricTimestamps != nil {
		return r.LyricTimestamps
	}
	return []LyricSegment{}
}

// URLs returns every non-empty result URL keyed by field name.
func (r *JobResult) URLs() map[string]string {
	out := make(map[string]string)
	if r == nil {
		return out
	}
	for k, v := range map[string]string{
		ResultMidi:       r.MidiURL,
		ResultGuideAudio: r.GuideAudioURL,
		ResultMaster:     r.MasterURL,
		ResultVideo:      r.VideoURL,
		ResultVocal:      r.VocalURL,
	} {
		if v != "" {
			out[k] = v
		}
	}
	for k, v := range r.ExtraURLs {
		out[k] = v
	}
	return out
}

// Stem is one rendered instrument stem.
type Stem struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// Stems accepts a list of URLs, a list of {name,url} objects, or a name to URL object.
type Stems []Stem

func (s *Stems) UnmarshalJSON(data []byte) error {
	var objs []Stem
	if err := json.Unmarshal(data, &objs); err == nil {
		*s = objs
		return nil
	}

	var urls []string
	if err := json.Unmarshal(data, &urls); err == nil {
		out := make(Stems, len(urls))
		for i, u := range urls {
			out[i] = Stem{Name: fmt.Sprintf("stem_%d", i+1), URL: u}
		}
		*s = out
		return nil
	}

	var byName map[string]string
	if err := json.Unmarshal(data, &byName); err != nil {
		return fmt.Errorf("stems: unsupported shape: %w", err)
	}
	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make(Stems, 0, len(names))
	for _, n := range names {
		out = append(out, Stem{Name: n, URL: byName[n]})
	}
	*s = out
	return nil
}

// URLs returns the stem URLs in order.
func (s Stems) URLs() []string {
	urls := make([]string, 0, len(s))
	for _, st := range s {
		urls = append(urls, st.URL)
	}
	return urls
}

// ResultBundle maps result keys (masterUrl, videoUrl, ...) to URLs.
type ResultBundle map[string]string

// Keys returns the bundle keys sorted.
func (b ResultBundle) Keys() []string {
	keys := make([]string, 0, len(b))
	for k := range b {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Clone returns a copy of b.
func (b ResultBundle) Clone() ResultBundle {
	out := make(ResultBundle, len(b))
	for k, v := range b {
		out[k] = v
	}
	return out
}
