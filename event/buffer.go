package event

// Buffer event topics.
const (
	// TopicContentInserted is published when text is inserted.
	TopicContentInserted Topic = "buffer.content.inserted"

	// TopicContentDeleted is published when text is deleted.
	TopicContentDeleted Topic = "buffer.content.deleted"

	// TopicContentReplaced is published when text is replaced.
	TopicContentReplaced Topic = "buffer.content.replaced"

	// TopicUndoApplied is published after a successful undo.
	TopicUndoApplied Topic = "buffer.undo.applied"

	// TopicRedoApplied is published after a successful redo.
	TopicRedoApplied Topic = "buffer.redo.applied"

	// TopicCleared is published when a buffer is reset to empty.
	TopicCleared Topic = "buffer.cleared"
)

// ContentInserted is the payload for TopicContentInserted.
type ContentInserted struct {
	BufferID string
	Position int64
	Text     string
}

// ContentDeleted is the payload for TopicContentDeleted.
type ContentDeleted struct {
	BufferID string
	Start    int64
	End      int64
	Text     string
}

// ContentReplaced is the payload for TopicContentReplaced.
type ContentReplaced struct {
	BufferID string
	Start    int64
	End      int64
	OldText  string
	NewText  string
}

// HistoryApplied is the payload for TopicUndoApplied and
// TopicRedoApplied. Delta is the signed length change the collaborators
// should apply to positions at or after Position.
type HistoryApplied struct {
	BufferID string
	Position int64
	Delta    int64
}

// Cleared is the payload for TopicCleared.
type Cleared struct {
	BufferID string
}
