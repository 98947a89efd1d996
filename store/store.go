// Package store holds the process-wide application state: photos, analyses,
// conversation threads, settings, and transient loading/error maps. A single
// Store instance is created at startup and shared by all handlers; every
// mutation is serialized through one mutex so readers never observe a partial
// update.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"memorylens/utils"
)

// Logger is the subset of the application logger the store needs
type Logger interface {
	Warn(format string, v ...interface{})
}

// Store is the single shared state container. All mutations are synchronous
// and total; they never fail from the caller's perspective. Each mutation
// writes the persisted subset of state through the configured sink on a
// best-effort basis.
type Store struct {
	mu sync.Mutex

	settings       Settings
	voiceAgent     VoiceAgent
	activeTab      string
	photos         []PhotoMetadata
	analyses       []PhotoAnalysis
	conversations  map[string][]ConversationMessage
	conversation   []ConversationMessage // active thread, a snapshot copy of one photo's thread
	currentSession *MemorySession

	loadingStates map[string]LoadingState
	errors        map[string]string

	sink   Sink
	logger Logger
}

// New creates an empty store backed by the given persistence sink.
// A nil sink disables persistence entirely.
func New(sink Sink, logger Logger) *Store {
	if sink == nil {
		sink = NoopSink{}
	}
	return &Store{
		settings:      DefaultSettings(),
		voiceAgent:    DefaultVoiceAgent(),
		activeTab:     "upload",
		conversations: make(map[string][]ConversationMessage),
		loadingStates: make(map[string]LoadingState),
		errors:        make(map[string]string),
		sink:          sink,
		logger:        logger,
	}
}

// Load rehydrates the store from the sink's last snapshot. Fields absent from
// the snapshot keep their defaults. A missing snapshot is not an error.
func (s *Store) Load() error {
	snap, err := s.sink.Load()
	if err != nil {
		return err
	}
	if snap == nil {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if snap.Settings != nil {
		s.settings = *snap.Settings
	}
	if snap.VoiceAgent != nil {
		s.voiceAgent = *snap.VoiceAgent
	}
	if snap.ActiveTab != "" {
		s.activeTab = snap.ActiveTab
	}
	s.photos = snap.Photos
	s.analyses = snap.Analyses
	if snap.Conversations != nil {
		s.conversations = snap.Conversations
	}
	s.conversation = snap.Conversation
	s.currentSession = snap.CurrentSession
	return nil
}

// persist writes the durable subset of state through the sink. Callers must
// hold the mutex. Failures are logged and swallowed: the in-memory mutation
// has already succeeded and must not be rolled back.
func (s *Store) persist() {
	snap := Snapshot{
		Settings:       &s.settings,
		VoiceAgent:     &s.voiceAgent,
		ActiveTab:      s.activeTab,
		Photos:         s.photos,
		Analyses:       s.analyses,
		Conversations:  s.conversations,
		Conversation:   s.conversation,
		CurrentSession: s.currentSession,
	}
	if err := s.sink.Save(&snap); err != nil && s.logger != nil {
		s.logger.Warn("state persistence failed: %v", err)
	}
}

// AddPhoto appends a photo. IDs are caller-generated and assumed unique.
func (s *Store) AddPhoto(photo PhotoMetadata) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.photos = append(s.photos, photo)
	s.persist()
}

// RemovePhoto removes a photo and cascades removal of its analysis.
// The photo's conversation thread is kept; orphaned threads remain searchable.
func (s *Store) RemovePhoto(photoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	photos := s.photos[:0]
	for _, p := range s.photos {
		if p.ID != photoID {
			photos = append(photos, p)
		}
	}
	s.photos = photos

	analyses := s.analyses[:0]
	for _, a := range s.analyses {
		if a.PhotoID != photoID {
			analyses = append(analyses, a)
		}
	}
	s.analyses = analyses
	s.persist()
}

// AddAnalysis upserts an analysis keyed by its photo ID: any prior analysis
// for the same photo is dropped before the new one is appended.
func (s *Store) AddAnalysis(analysis PhotoAnalysis) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.analyses[:0]
	for _, a := range s.analyses {
		if a.PhotoID != analysis.PhotoID {
			kept = append(kept, a)
		}
	}
	s.analyses = append(kept, analysis)
	s.persist()
}

// GetAnalysisForPhoto returns the analysis for a photo, or nil when absent
func (s *Store) GetAnalysisForPhoto(photoID string) *PhotoAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.analyses {
		if s.analyses[i].PhotoID == photoID {
			a := s.analyses[i]
			return &a
		}
	}
	return nil
}

// AddMessage appends a message to the transient active-conversation view only.
// Callers that also want the message filed by photo must call AddMessageToPhoto.
func (s *Store) AddMessage(msg ConversationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = append(s.conversation, msg)
	s.persist()
}

// AddMessageToPhoto appends a message to the durable per-photo thread
func (s *Store) AddMessageToPhoto(photoID string, msg ConversationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations[photoID] = append(s.conversations[photoID], msg)
	s.persist()
}

// GetConversationForPhoto returns a copy of a photo's thread, empty if absent
func (s *Store) GetConversationForPhoto(photoID string) []ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ConversationMessage(nil), s.conversations[photoID]...)
}

// SetActiveConversation replaces the active view with a snapshot copy of the
// given photo's thread, or an empty thread when the photo has none.
func (s *Store) SetActiveConversation(photoID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = append([]ConversationMessage(nil), s.conversations[photoID]...)
	s.persist()
}

// ActiveConversation returns a copy of the active thread
func (s *Store) ActiveConversation() []ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ConversationMessage(nil), s.conversation...)
}

// ClearConversation clears only the active view; per-photo threads are kept
func (s *Store) ClearConversation() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversation = nil
	s.persist()
}

// ClearAllConversations clears every thread and the active view
func (s *Store) ClearAllConversations() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.conversations = make(map[string][]ConversationMessage)
	s.conversation = nil
	s.persist()
}

// ReplaceConversations swaps in a new conversations map, e.g. after retention
// pruning or a backup import. The active view is resynchronized to empty.
func (s *Store) ReplaceConversations(conversations map[string][]ConversationMessage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if conversations == nil {
		conversations = make(map[string][]ConversationMessage)
	}
	s.conversations = conversations
	s.conversation = nil
	s.persist()
}

// Photos returns a copy of all photos in upload order
func (s *Store) Photos() []PhotoMetadata {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PhotoMetadata(nil), s.photos...)
}

// Analyses returns a copy of all analyses
func (s *Store) Analyses() []PhotoAnalysis {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]PhotoAnalysis(nil), s.analyses...)
}

// Conversations returns a copy of the per-photo conversation map
func (s *Store) Conversations() map[string][]ConversationMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make(map[string][]ConversationMessage, len(s.conversations))
	for id, msgs := range s.conversations {
		out[id] = append([]ConversationMessage(nil), msgs...)
	}
	return out
}

// SetAPIKey stores a provider credential in reversibly encoded form.
// The plaintext key is never stored or logged.
func (s *Store) SetAPIKey(provider, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	encoded := utils.EncryptAPIKey(key)
	switch provider {
	case "gemini":
		s.settings.APIKeys.Gemini = encoded
	case "elevenlabs":
		s.settings.APIKeys.ElevenLabs = encoded
	}
	s.persist()
}

// APIKey returns the decoded credential for a provider, empty when unset
func (s *Store) APIKey(provider string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch provider {
	case "gemini":
		return utils.DecryptAPIKey(s.settings.APIKeys.Gemini)
	case "elevenlabs":
		return utils.DecryptAPIKey(s.settings.APIKeys.ElevenLabs)
	}
	return ""
}

// Settings returns a copy of the current settings
func (s *Store) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.settings
}

// UpdateSettings replaces the whole settings block. API keys inside must
// already be in encoded form; use SetAPIKey for plaintext input.
func (s *Store) UpdateSettings(settings Settings) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = settings
	s.persist()
}

// UpdatePreferences replaces user preferences
func (s *Store) UpdatePreferences(prefs Preferences) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings.Preferences = prefs
	s.persist()
}

// VoiceAgent returns a copy of the current voice agent
func (s *Store) VoiceAgent() VoiceAgent {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.voiceAgent
}

// UpdateVoiceAgent merges non-zero fields of the patch into the voice agent
func (s *Store) UpdateVoiceAgent(patch VoiceAgentPatch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if patch.Personality != nil {
		s.voiceAgent.Personality = *patch.Personality
	}
	if patch.EmotionalRange != nil {
		s.voiceAgent.EmotionalRange = *patch.EmotionalRange
	}
	if patch.ConversationStyle != nil {
		s.voiceAgent.ConversationStyle = *patch.ConversationStyle
	}
	if patch.VoiceSettings != nil {
		s.voiceAgent.VoiceSettings = *patch.VoiceSettings
	}
	s.persist()
}

// VoiceAgentPatch is a partial voice-agent update; nil fields are left as-is
type VoiceAgentPatch struct {
	Personality       *string         `json:"personality,omitempty"`
	EmotionalRange    *EmotionProfile `json:"emotionalRange,omitempty"`
	ConversationStyle *string         `json:"conversationStyle,omitempty"`
	VoiceSettings     *VoiceSettings  `json:"voiceSettings,omitempty"`
}

// SetActiveTab records which UI tab is showing
func (s *Store) SetActiveTab(tab string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeTab = tab
	s.persist()
}

// ActiveTab returns the last recorded UI tab
func (s *Store) ActiveTab() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activeTab
}

// SetCurrentSession replaces the current memory session (nil to clear)
func (s *Store) SetCurrentSession(session *MemorySession) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currentSession = session
	s.persist()
}

// CurrentSession returns the current session, or nil
func (s *Store) CurrentSession() *MemorySession {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentSession == nil {
		return nil
	}
	sess := *s.currentSession
	return &sess
}

// NewSession builds a session for a batch of photos using the current agent
func (s *Store) NewSession(photos []PhotoMetadata) *MemorySession {
	s.mu.Lock()
	agent := s.voiceAgent
	s.mu.Unlock()

	now := time.Now()
	return &MemorySession{
		ID:         uuid.NewString(),
		UserID:     "local-user",
		Photos:     photos,
		VoiceAgent: agent,
		CreatedAt:  now,
		UpdatedAt:  now,
		Status:     "analyzing",
	}
}

// SetLoadingState records the state of an operation keyed by an arbitrary tag.
// Loading states are transient and never persisted.
func (s *Store) SetLoadingState(key string, state LoadingState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadingStates[key] = state
}

// LoadingStateFor returns the state for a key, LoadingIdle when absent
func (s *Store) LoadingStateFor(key string) LoadingState {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.loadingStates[key]; ok {
		return st
	}
	return LoadingIdle
}

// SetError records the last error message for an operation key
func (s *Store) SetError(key, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[key] = msg
}

// ErrorFor returns the recorded error for a key, empty when none
func (s *Store) ErrorFor(key string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[key]
}

// ClearError removes the error for a key; clearing an absent key is a no-op
func (s *Store) ClearError(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.errors, key)
}

// ClearAllErrors drops every recorded error
func (s *Store) ClearAllErrors() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors = make(map[string]string)
}
