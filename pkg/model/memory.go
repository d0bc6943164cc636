package model

import (
	"encoding/json"
)

type MemoryType string

const (
	MemoryTypeVoice      MemoryType = "voice"
	MemoryTypeDream      MemoryType = "dream"
	MemoryTypeReflection MemoryType = "reflection"
)

type SourceFlow string

const (
	SourceFlowVoiceRecording SourceFlow = "voice_recording"
	SourceFlowDreamJournal   SourceFlow = "dream_journal"
	SourceFlowInnerVoice     SourceFlow = "inner_voice"
)

// Emotions holds either a single emotion (voice) or a list (dream). The JSON
// form follows the source: a string, an array, or nothing at all.
type Emotions struct {
	single string
	list   []string
	isList bool
}

func SingleEmotion(emotion string) *Emotions {
	if emotion == "" {
		return nil
	}
	return &Emotions{single: emotion}
}

func EmotionList(emotions []string) *Emotions {
	if emotions == nil {
		return nil
	}
	return &Emotions{list: emotions, isList: true}
}

// Values returns the emotions as a slice regardless of the source shape
func (e *Emotions) Values() []string {
	if e == nil {
		return nil
	}
	if e.isList {
		return e.list
	}
	return []string{e.single}
}

func (e Emotions) MarshalJSON() ([]byte, error) {
	if e.isList {
		return json.Marshal(e.list)
	}
	return json.Marshal(e.single)
}

func (e *Emotions) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*e = Emotions{single: single}
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*e = Emotions{list: list, isList: true}
	return nil
}

type CrossReferences struct {
	People  []string `json:"people,omitempty"`
	Tasks   []string `json:"tasks,omitempty"`
	Themes  []string `json:"themes,omitempty"`
	Symbols []string `json:"symbols,omitempty"`
}

type EmbeddingRef struct {
	VectorID string `json:"vectorId"`
}

// MemoryRecord is the normalized view over voice, dream and reflection
// documents. It is built per call and never stored.
type MemoryRecord struct {
	ID              string          `json:"id"`
	Type            MemoryType      `json:"type"`
	Content         string          `json:"content"`
	CreatedAt       int64           `json:"createdAt"`
	SourceFlow      SourceFlow      `json:"sourceFlow"`
	Tags            []string        `json:"tags"`
	Emotions        *Emotions       `json:"emotions,omitempty"`
	SentimentScore  *float64        `json:"sentimentScore,omitempty"`
	CrossReferences CrossReferences `json:"crossReferences"`
	Embeddings      EmbeddingRef    `json:"embeddings"`
	Metadata        map[string]any  `json:"metadata"`
}

// VectorID returns the deterministic vector identifier for a source document
func VectorID(t MemoryType, id string) string {
	return string(t) + "_" + id
}

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

func (o SortOrder) Valid() bool {
	return o == SortOrderAsc || o == SortOrderDesc
}
