package model

import "slices"

// Event is a source document that can be normalized into a MemoryRecord.
// Filter semantics differ per source type and live on each implementation.
type Event interface {
	Kind() MemoryType
	Timestamp() int64
	Text() string

	// MatchEmotion reports whether the event passes an exact emotion filter
	MatchEmotion(emotion string) bool
	// MatchTags reports whether any of tags appears in the event's tag-bearing field
	MatchTags(tags []string) bool

	ToMemory() *MemoryRecord
}

// VoiceEvent is a document of the voiceEvents collection
type VoiceEvent struct {
	ID             string   `firestore:"-"`
	UID            string   `firestore:"uid"`
	AudioEventID   string   `firestore:"audioEventId,omitempty"`
	SpeakerLabel   string   `firestore:"speakerLabel,omitempty"`
	Content        string   `firestore:"text"`
	Emotion        string   `firestore:"emotion,omitempty"`
	SentimentScore *float64 `firestore:"sentimentScore,omitempty"`
	ToneShift      *float64 `firestore:"toneShift,omitempty"`
	VoiceArchetype string   `firestore:"voiceArchetype,omitempty"`
	CreatedAt      int64    `firestore:"createdAt"`
	People         []string `firestore:"people,omitempty"`
	Tasks          []string `firestore:"tasks,omitempty"`
}

func (v *VoiceEvent) Kind() MemoryType { return MemoryTypeVoice }
func (v *VoiceEvent) Timestamp() int64 { return v.CreatedAt }
func (v *VoiceEvent) Text() string     { return v.Content }

func (v *VoiceEvent) MatchEmotion(emotion string) bool {
	return v.Emotion == emotion
}

func (v *VoiceEvent) MatchTags(tags []string) bool {
	return containsAny(v.People, tags)
}

// Tags returns people followed by tasks
func (v *VoiceEvent) Tags() []string {
	return concat(v.People, v.Tasks)
}

func (v *VoiceEvent) ToMemory() *MemoryRecord {
	return &MemoryRecord{
		ID:             v.ID,
		Type:           MemoryTypeVoice,
		Content:        v.Content,
		CreatedAt:      v.CreatedAt,
		SourceFlow:     SourceFlowVoiceRecording,
		Tags:           v.Tags(),
		Emotions:       SingleEmotion(v.Emotion),
		SentimentScore: v.SentimentScore,
		CrossReferences: CrossReferences{
			People: v.People,
			Tasks:  v.Tasks,
		},
		Embeddings: EmbeddingRef{VectorID: VectorID(MemoryTypeVoice, v.ID)},
		Metadata: map[string]any{
			"audioEventId":   v.AudioEventID,
			"speakerLabel":   v.SpeakerLabel,
			"toneShift":      v.ToneShift,
			"voiceArchetype": v.VoiceArchetype,
		},
	}
}

// DreamEvent is a document of the dreamEvents collection
type DreamEvent struct {
	ID                  string   `firestore:"-"`
	UID                 string   `firestore:"uid"`
	Content             string   `firestore:"text"`
	CreatedAt           int64    `firestore:"createdAt"`
	Emotions            []string `firestore:"emotions,omitempty"`
	Themes              []string `firestore:"themes,omitempty"`
	Symbols             []string `firestore:"symbols,omitempty"`
	SentimentScore      *float64 `firestore:"sentimentScore,omitempty"`
	InferredSleepTime   any      `firestore:"inferredSleepTime,omitempty"`
	WakeTime            any      `firestore:"wakeTime,omitempty"`
	DreamSignalStrength *float64 `firestore:"dreamSignalStrength,omitempty"`
	DreamSymbolTags     []string `firestore:"dreamSymbolTags,omitempty"`
	EmotionBeforeSleep  string   `firestore:"emotionBeforeSleep,omitempty"`
	EmotionUponWaking   string   `firestore:"emotionUponWaking,omitempty"`
}

func (d *DreamEvent) Kind() MemoryType { return MemoryTypeDream }
func (d *DreamEvent) Timestamp() int64 { return d.CreatedAt }
func (d *DreamEvent) Text() string     { return d.Content }

func (d *DreamEvent) MatchEmotion(emotion string) bool {
	return slices.Contains(d.Emotions, emotion)
}

func (d *DreamEvent) MatchTags(tags []string) bool {
	return containsAny(d.Themes, tags)
}

// Tags returns themes followed by symbols
func (d *DreamEvent) Tags() []string {
	return concat(d.Themes, d.Symbols)
}

func (d *DreamEvent) ToMemory() *MemoryRecord {
	return &MemoryRecord{
		ID:             d.ID,
		Type:           MemoryTypeDream,
		Content:        d.Content,
		CreatedAt:      d.CreatedAt,
		SourceFlow:     SourceFlowDreamJournal,
		Tags:           d.Tags(),
		Emotions:       EmotionList(d.Emotions),
		SentimentScore: d.SentimentScore,
		CrossReferences: CrossReferences{
			Themes:  d.Themes,
			Symbols: d.Symbols,
		},
		Embeddings: EmbeddingRef{VectorID: VectorID(MemoryTypeDream, d.ID)},
		Metadata: map[string]any{
			"inferredSleepTime":   d.InferredSleepTime,
			"wakeTime":            d.WakeTime,
			"dreamSignalStrength": d.DreamSignalStrength,
			"dreamSymbolTags":     d.DreamSymbolTags,
			"emotionBeforeSleep":  d.EmotionBeforeSleep,
			"emotionUponWaking":   d.EmotionUponWaking,
		},
	}
}

// Reflection is a document of the innerVoiceReflections collection. It has
// no emotion or tag fields, so it passes both filters.
type Reflection struct {
	ID             string   `firestore:"-"`
	UID            string   `firestore:"uid"`
	Content        string   `firestore:"text"`
	CreatedAt      int64    `firestore:"createdAt"`
	SentimentScore *float64 `firestore:"sentimentScore,omitempty"`
}

func (r *Reflection) Kind() MemoryType         { return MemoryTypeReflection }
func (r *Reflection) Timestamp() int64         { return r.CreatedAt }
func (r *Reflection) Text() string             { return r.Content }
func (r *Reflection) MatchEmotion(string) bool { return true }
func (r *Reflection) MatchTags([]string) bool  { return true }

func (r *Reflection) ToMemory() *MemoryRecord {
	return &MemoryRecord{
		ID:              r.ID,
		Type:            MemoryTypeReflection,
		Content:         r.Content,
		CreatedAt:       r.CreatedAt,
		SourceFlow:      SourceFlowInnerVoice,
		Tags:            []string{},
		SentimentScore:  r.SentimentScore,
		CrossReferences: CrossReferences{},
		Embeddings:      EmbeddingRef{VectorID: VectorID(MemoryTypeReflection, r.ID)},
		Metadata:        map[string]any{},
	}
}

func containsAny(values, candidates []string) bool {
	for _, c := range candidates {
		if slices.Contains(values, c) {
			return true
		}
	}
	return false
}

func concat(a, b []string) []string {
	out := make([]string, 0, len(a)+len(b))
	out = append(out, a...)
	return append(out, b...)
}
