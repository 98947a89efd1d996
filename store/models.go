package store

import "time"

// LoadingState tracks the lifecycle of an in-flight operation
type LoadingState string

const (
	LoadingIdle    LoadingState = "idle"
	LoadingActive  LoadingState = "loading"
	LoadingSuccess LoadingState = "success"
	LoadingError   LoadingState = "error"
)

// PhotoMetadata describes an uploaded photo
type PhotoMetadata struct {
	ID         string      `json:"id"`
	Filename   string      `json:"filename"`
	Size       int64       `json:"size"`
	Type       string      `json:"type"` // MIME type, e.g. "image/jpeg"
	UploadedAt time.Time   `json:"uploadedAt"`
	EXIF       *EXIFBlock  `json:"exif,omitempty"`
	DataURL    string      `json:"dataUrl,omitempty"` // inline image payload, stripped on export
}

// EXIFBlock holds optional camera metadata extracted at upload time
type EXIFBlock struct {
	Date     string        `json:"date,omitempty"`
	Location *GeoLocation  `json:"location,omitempty"`
	Camera   string        `json:"camera,omitempty"`
	Settings *ShotSettings `json:"settings,omitempty"`
}

// GeoLocation is a point with an optional reverse-geocoded address
type GeoLocation struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Address   string  `json:"address,omitempty"`
}

// ShotSettings are the exposure parameters recorded by the camera
type ShotSettings struct {
	Aperture string `json:"aperture,omitempty"`
	Shutter  string `json:"shutter,omitempty"`
	ISO      string `json:"iso,omitempty"`
}

// EmotionScore is a single detected emotion with confidence 0..1
type EmotionScore struct {
	Emotion    string  `json:"emotion"` // "joy", "sadness", "anger", "fear", "surprise", "disgust", "neutral"
	Confidence float64 `json:"confidence"`
}

// PersonDetection describes one person found in a photo
type PersonDetection struct {
	ID           string         `json:"id,omitempty"`
	Confidence   float64        `json:"confidence"`
	EstimatedAge string         `json:"estimatedAge,omitempty"`
	Gender       string         `json:"gender,omitempty"`
	Emotions     []EmotionScore `json:"emotions,omitempty"`
}

// VisualContent is what the vision model saw in the photo
type VisualContent struct {
	Objects   []string          `json:"objects"`
	People    []PersonDetection `json:"people,omitempty"`
	Emotions  []EmotionScore    `json:"emotions,omitempty"`
	Setting   string            `json:"setting"`
	TimeOfDay string            `json:"timeOfDay"` // "morning", "afternoon", "evening", "night", "unknown"
	Weather   string            `json:"weather,omitempty"`
	Activity  string            `json:"activity,omitempty"`
}

// QualityMetrics are 0-100 scores for technical photo quality
type QualityMetrics struct {
	Overall    int `json:"overall"`
	Sharpness  int `json:"sharpness"`
	Brightness int `json:"brightness"`
	Contrast   int `json:"contrast"`
	Saturation int `json:"saturation"`
	Noise      int `json:"noise"`
}

// Enhancement is a suggested image adjustment
type Enhancement struct {
	Type        string `json:"type"` // "brightness", "contrast", "saturation", "sharpness", "noise_reduction", "style_transfer"
	Intensity   int    `json:"intensity"` // 0-100
	Description string `json:"description"`
}

// EnhancementPlan groups suggestions with an overall priority
type EnhancementPlan struct {
	Suggestions []Enhancement `json:"suggestions"`
	Priority    string        `json:"priority"` // "low", "medium", "high"
}

// StoryElements are the conversation hooks derived from a photo
type StoryElements struct {
	SuggestedQuestions []string `json:"suggestedQuestions"`
	Themes             []string `json:"themes"`
	EmotionalTone      string   `json:"emotionalTone"`
}

// PhotoAnalysis is the structured result of running a photo through the
// vision model. At most one analysis exists per photo at any time.
type PhotoAnalysis struct {
	ID            string          `json:"id"`
	PhotoID       string          `json:"photoId"`
	VisualContent VisualContent   `json:"visualContent"`
	Metadata      *EXIFBlock      `json:"metadata,omitempty"`
	Quality       QualityMetrics  `json:"quality"`
	Enhancement   EnhancementPlan `json:"enhancement"`
	Story         StoryElements   `json:"story"`
}

// ConversationMessage is one turn in a photo's conversation thread.
// Messages are append-only and never mutated after creation; thread order is
// insertion order, timestamps are informational.
type ConversationMessage struct {
	ID             string         `json:"id"`
	Role           string         `json:"role"` // "user" or "assistant"
	Content        string         `json:"content"`
	Timestamp      time.Time      `json:"timestamp"`
	AudioURL       string         `json:"audioUrl,omitempty"`
	RelatedPhotoID string         `json:"relatedPhotoId,omitempty"`
	Emotions       []EmotionScore `json:"emotions,omitempty"`
}

// EmotionProfile shapes how expressive the voice agent is, 0-100 per axis
type EmotionProfile struct {
	Warmth     int `json:"warmth"`
	Enthusiasm int `json:"enthusiasm"`
	Empathy    int `json:"empathy"`
	Curiosity  int `json:"curiosity"`
}

// VoiceSettings are the speech-synthesis parameters for one voice
type VoiceSettings struct {
	VoiceID         string  `json:"voiceId"`
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarityBoost"`
	Style           float64 `json:"style"`
}

// VoiceAgent is the personality profile used to shape generated replies and
// synthesized speech. A single process-wide value, replaceable via partial merge.
type VoiceAgent struct {
	Personality       string         `json:"personality"` // "warm", "nostalgic", "excited", "gentle"
	EmotionalRange    EmotionProfile `json:"emotionalRange"`
	ConversationStyle string         `json:"conversationStyle"` // "guided", "exploratory", "therapeutic"
	VoiceSettings     VoiceSettings  `json:"voiceSettings"`
}

// APIKeys holds provider credentials in reversibly encoded form.
// Plaintext keys are never stored or logged.
type APIKeys struct {
	Gemini     string `json:"gemini,omitempty"`
	ElevenLabs string `json:"elevenlabs,omitempty"`
}

// Preferences are user-tunable behavior switches
type Preferences struct {
	VoicePersonality  string `json:"voicePersonality"`
	ConversationStyle string `json:"conversationStyle"`
	AutoEnhance       bool   `json:"autoEnhance"`
	PrivacyMode       bool   `json:"privacyMode"`
}

// Settings is the persisted user configuration
type Settings struct {
	APIKeys     APIKeys     `json:"apiKeys"`
	Preferences Preferences `json:"preferences"`
}

// MemorySession tracks one sitting with a batch of photos
type MemorySession struct {
	ID           string                `json:"id"`
	UserID       string                `json:"userId"`
	Photos       []PhotoMetadata       `json:"photos"`
	Analysis     []PhotoAnalysis       `json:"analysis"`
	Conversation []ConversationMessage `json:"conversation"`
	VoiceAgent   VoiceAgent            `json:"voiceAgent"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Status       string                `json:"status"` // "analyzing", "ready", "conversing", "enhancing", "complete"
}

// DefaultVoiceAgent returns the voice agent used before the user customizes one
func DefaultVoiceAgent() VoiceAgent {
	return VoiceAgent{
		Personality: "warm",
		EmotionalRange: EmotionProfile{
			Warmth:     80,
			Enthusiasm: 60,
			Empathy:    90,
			Curiosity:  70,
		},
		ConversationStyle: "guided",
		VoiceSettings: VoiceSettings{
			VoiceID:         "EXAVITQu4vr4xnSDxMaL",
			Stability:       0.7,
			SimilarityBoost: 0.5,
			Style:           0.3,
		},
	}
}

// DefaultSettings returns the settings used before the user configures anything
func DefaultSettings() Settings {
	return Settings{
		APIKeys: APIKeys{},
		Preferences: Preferences{
			VoicePersonality:  "warm",
			ConversationStyle: "guided",
			AutoEnhance:       true,
			PrivacyMode:       false,
		},
	}
}
