package indexer

import (
	"fmt"

	"github.com/google/uuid"
)

// Payload keys stored with every indexed point.
const (
	PayloadStoryID = "story_id"
	PayloadTitle   = "title"
	PayloadText    = "text"
	PayloadIndex   = "sentence_index"
	PayloadTotal   = "total_sentences"
)

// pointNamespace scopes deterministic point ids to this index.
var pointNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("kahani-ai/sentence"))

// Chunk is one retrieval unit of a story.
type Chunk struct {
	Text    string // Sentence text
	StoryID string // Source document id
	Title   string // Source document title
	Index   int    // Sequence index within the document (starts at 0)
	Total   int    // Number of chunks produced for the document
}

// Key is the stable textual identifier of the chunk, "<story_id>_sentence_<index>".
func (c Chunk) Key() string {
	return fmt.Sprintf("%s_sentence_%d", c.StoryID, c.Index)
}

// PointID is a deterministic UUID derived from Key, so rebuilding the same
// corpus produces the same point ids.
func (c Chunk) PointID() string {
	return uuid.NewSHA1(pointNamespace, []byte(c.Key())).String()
}

// Payload returns the metadata stored with the chunk's vector.
func (c Chunk) Payload() map[string]any {
	return map[string]any{
		PayloadStoryID: c.StoryID,
		PayloadTitle:   c.Title,
		PayloadText:    c.Text,
		PayloadIndex:   c.Index,
		PayloadTotal:   c.Total,
	}
}

// ChunkFromPayload rebuilds a chunk from stored metadata.
// Numeric fields may come back as int, int64 or float64 depending on the store.
func ChunkFromPayload(meta map[string]any) Chunk {
	return Chunk{
		Text:    stringField(meta, PayloadText),
		StoryID: stringField(meta, PayloadStoryID),
		Title:   stringField(meta, PayloadTitle),
		Index:   intField(meta, PayloadIndex),
		Total:   intField(meta, PayloadTotal),
	}
}

func stringField(meta map[string]any, key string) string {
	if v, ok := meta[key].(string); ok {
		return v
	}
	return ""
}

func intField(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
