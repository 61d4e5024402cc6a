// package voice validates voice clips and uploads them to create a voice profile
package voice

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/gabriel-vasile/mimetype"
	"github.com/go-playground/validator/v10"

	"github.com/desertthunder/songsmith/internal/models"
	"github.com/desertthunder/songsmith/internal/shared"
)

// AcceptedMIME lists the audio types accepted regardless of file extension.
var AcceptedMIME = []string{
	"audio/wav", "audio/x-wav", "audio/wave", "audio/vnd.wave",
	"audio/mpeg", "audio/mp3",
	"audio/amr",
}

// Limits bounds a clip selection.
type Limits struct {
	MaxFiles     int
	MaxFileBytes int64
	Extensions   []string
}

// DefaultLimits returns 1..30 files of .wav, .mp3 or .amr under 10 MiB each.
func DefaultLimits() Limits {
	return Limits{MaxFiles: 30, MaxFileBytes: 10 * 1024 * 1024, Extensions: []string{".wav", ".mp3", ".amr"}}
}

// LimitsFromConfig builds Limits from the [upload] config section.
func LimitsFromConfig(cfg shared.UploadConfig) Limits {
	l := DefaultLimits()
	if cfg.MaxFiles > 0 {
		l.MaxFiles = cfg.MaxFiles
	}
	if cfg.MaxFileBytes > 0 {
		l.MaxFileBytes = cfg.MaxFileBytes
	}
	if len(cfg.Extensions) > 0 {
		l.Extensions = cfg.Extensions
	}
	return l
}

// Clip is a locally inspected file.
type Clip struct {
	Path string
	Name string
	Size int64
	Ext  string
	MIME string
}

// Inspect stats and sniffs path. It never touches the network.
func Inspect(path string) (Clip, error) {
	info, err := os.Stat(path)
	if err != nil {
		return Clip{}, fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	if info.IsDir() {
		return Clip{}, fmt.Errorf("%w: %s is a directory", shared.ErrInvalidInput, path)
	}

	clip := Clip{
		Path: path,
		Name: filepath.Base(path),
		Size: info.Size(),
		Ext:  strings.ToLower(filepath.Ext(path)),
	}
	if mt, err := mimetype.DetectFile(path); err == nil {
		clip.MIME = mt.String()
	}
	return clip, nil
}

// InspectAll inspects every path, stopping at the first unreadable one.
func InspectAll(paths []string) ([]Clip, error) {
	clips := make([]Clip, 0, len(paths))
	for _, p := range paths {
		c, err := Inspect(p)
		if err != nil {
			return nil, err
		}
		clips = append(clips, c)
	}
	return clips, nil
}

// Validator checks a clip selection, its metadata and consent.
type Validator struct {
	limits   Limits
	validate *validator.Validate
}

// NewValidator creates a Validator for limits.
func NewValidator(limits Limits) *Validator {
	return &Validator{limits: limits, validate: validator.New()}
}

// Limits returns the limits in force.
func (v *Validator) Limits() Limits {
	return v.limits
}

// CheckClip reports why a single clip is unacceptable, or nil.
func (v *Validator) CheckClip(c Clip) error {
	if !v.acceptedType(c) {
		return fmt.Errorf("%s: unsupported format (want %s)", c.Name, strings.Join(v.limits.Extensions, ", "))
	}
	if c.Size >= v.limits.MaxFileBytes {
		return fmt.Errorf("%s: %d bytes is not under the %d byte limit", c.Name, c.Size, v.limits.MaxFileBytes)
	}
	return nil
}

func (v *Validator) acceptedType(c Clip) bool {
	for _, ext := range v.limits.Extensions {
		if strings.EqualFold(c.Ext, ext) {
			return true
		}
	}
	if c.MIME == "" {
		return false
	}
	mt := mimetype.Lookup(c.MIME)
	for _, accepted := range AcceptedMIME {
		if c.MIME == accepted || (mt != nil && mt.Is(accepted)) {
			return true
		}
	}
	return false
}

// Validate checks the whole submission. Every problem is reported; the
// error wraps [shared.ErrValidation], and also [shared.ErrConsentRequired]
// when consent is missing.
func (v *Validator) Validate(clips []Clip, meta models.VoiceMetadata, consent bool) error {
	var problems []error

	switch n := len(clips); {
	case n == 0:
		problems = append(problems, fmt.Errorf("select at least one clip"))
	case n > v.limits.MaxFiles:
		problems = append(problems, fmt.Errorf("%d clips selected, at most %d allowed", n, v.limits.MaxFiles))
	}

	for _, c := range clips {
		if err := v.CheckClip(c); err != nil {
			problems = append(problems, err)
		}
	}

	if err := v.validate.Struct(meta); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			for _, fe := range verrs {
				problems = append(problems, fmt.Errorf("%s is invalid (%s)", strings.ToLower(fe.Field()), fe.Tag()))
			}
		} else {
			problems = append(problems, err)
		}
	}

	if !consent {
		problems = append(problems, shared.ErrConsentRequired)
	}

	if len(problems) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %w", shared.ErrValidation, errors.Join(problems...))
}

// Uploader is the backend call made after validation succeeds.
type Uploader interface {
	UploadVoice(ctx context.Context, files []models.VoiceFile, meta models.VoiceMetadata) (*models.VoiceProfile, error)
}

// Service validates and uploads voice clips.
type Service struct {
	validator *Validator
	api       Uploader
	logger    *log.Logger
}

// NewService creates a Service.
func NewService(v *Validator, api Uploader, logger *log.Logger) *Service {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	return &Service{validator: v, api: api, logger: logger}
}

// Upload validates and, only if that succeeds, opens the clips and uploads them.
func (s *Service) Upload(ctx context.Context, clips []Clip, meta models.VoiceMetadata, consent bool) (*models.VoiceProfile, error) {
	if err := s.validator.Validate(clips, meta, consent); err != nil {
		return nil, err
	}

	files := make([]models.VoiceFile, 0, len(clips))
	for _, c := range clips {
		f, err := os.Open(c.Path)
		if err != nil {
			closeAll(files)
			return nil, fmt.Errorf("failed to open %s: %w", c.Name, err)
		}
		files = append(files, models.VoiceFile{Name: c.Name, Content: f})
	}
	defer closeAll(files)

	s.logger.Info("uploading voice clips", "count", len(files), "name", meta.Name, "locale", meta.Locale)
	profile, err := s.api.UploadVoice(ctx, files, meta)
	if err != nil {
		return nil, err
	}
	s.logger.Info("voice profile created", "voice_profile_id", profile.ID)
	return profile, nil
}

func closeAll(files []models.VoiceFile) {
	for _, f := range files {
		if c, ok := f.Content.(interface{ Close() error }); ok {
			c.Close()
		}
	}
}
