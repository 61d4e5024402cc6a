package models

import "io"

// Locale of a voice profile.
type Locale string

const (
	LocaleBengali Locale = "bn"
	LocaleHindi   Locale = "hi"
	LocaleEnglish Locale = "en"
)

// Gender of a voice profile.
type Gender string

const (
	GenderFemale Gender = "female"
	GenderMale   Gender = "male"
)

// VoiceMetadata is sent alongside uploaded clips.
type VoiceMetadata struct {
	Name   string `validate:"required"`
	Locale Locale `validate:"required,oneof=bn hi en"`
	Gender Gender `validate:"required,oneof=female male"`
}

// ClipReport is the backend's analysis of one uploaded clip.
type ClipReport struct {
	File        string  `json:"file"`
	MonoOK      bool    `json:"mono_ok"`
	SampleRate  int     `json:"sample_rate"`
	DurationSec float64 `json:"duration_sec"`
}

// QualityReport summarizes an upload.
type QualityReport struct {
	QualityOK bool         `json:"quality_ok"`
	Clips     []ClipReport `json:"clips"`
}

// VoiceProfile is the result of a successful voice upload.
type VoiceProfile struct {
	ID      string         `json:"voiceProfileId"`
	Quality *QualityReport `json:"qualityReport,omitempty"`
}

// VoicePreset is a stock voice the backend ships with.
type VoicePreset struct {
	ID     string
	Label  string
	Locale Locale
	Gender Gender
	Demo   string
}

// VoicePresets is the stock voice catalog.
var VoicePresets = []VoicePreset{
	{ID: "bn_f_soft", Label: "Bengali Female (Soft)", Locale: LocaleBengali, Gender: GenderFemale, Demo: "/assets/voice_demo_f_bn.wav"},
	{ID: "hi_f_airy", Label: "Hindi Female (Airy)", Locale: LocaleHindi, Gender: GenderFemale, Demo: "/assets/voice_demo_f_hi.wav"},
	{ID: "en_f_bright", Label: "English Female (Bright)", Locale: LocaleEnglish, Gender: GenderFemale, Demo: "/assets/voice_demo_f_en.wav"},
	{ID: "bn_m_warm", Label: "Bengali Male (Warm)", Locale: LocaleBengali, Gender: GenderMale, Demo: "/assets/voice_demo_m_bn.wav"},
	{ID: "hi_m_deep", Label: "Hindi Male (Deep)", Locale: LocaleHindi, Gender: GenderMale, Demo: "/assets/voice_demo_m_hi.wav"},
	{ID: "en_m_clear", Label: "English Male (Clear)", Locale: LocaleEnglish, Gender: GenderMale, Demo: "/assets/voice_demo_m_en.wav"},
}

// FindVoicePreset looks up a preset by id.
func FindVoicePreset(id string) (VoicePreset, bool) {
	for _, p := range VoicePresets {
		if p.ID == id {
			return p, true
		}
	}
	return VoicePreset{}, false
}

// VoiceFile is one clip to upload.
type VoiceFile struct {
	Name    string
	Content io.Reader
}
