package buffer

import (
	"github.com/editkit/editkit/marker"
)

// SetMarker places an untyped bookmark marker at position.
func (b *Buffer) SetMarker(name string, position ByteOffset) {
	b.markers.Set(name, position)
}

// SetMarkerWithType places a typed marker.
func (b *Buffer) SetMarkerWithType(name string, position ByteOffset, typ marker.Type) {
	b.markers.SetWithType(name, position, typ)
}

// SetMarkerWithData places a typed marker carrying a JSON payload.
func (b *Buffer) SetMarkerWithData(name string, position ByteOffset, typ marker.Type, data string) {
	b.markers.SetWithData(name, position, typ, data)
}

// GetMarker returns the named marker's position.
func (b *Buffer) GetMarker(name string) (ByteOffset, bool) {
	return b.markers.Get(name)
}

// GetMarkerData returns the named marker's JSON payload.
func (b *Buffer) GetMarkerData(name string) (string, bool) {
	return b.markers.GetData(name)
}

// MarkersByType returns all markers of the given type in insertion
// order.
func (b *Buffer) MarkersByType(typ marker.Type) []marker.Marker {
	return b.markers.GetByType(typ)
}

// MarkersInRange returns all markers with position in [start, end).
func (b *Buffer) MarkersInRange(start, end ByteOffset) []marker.Marker {
	return b.markers.InRange(start, end)
}

// RemoveMarker deletes the named marker.
func (b *Buffer) RemoveMarker(name string) {
	b.markers.Remove(name)
}

// MarkerCount returns the number of markers.
func (b *Buffer) MarkerCount() int {
	return b.markers.Len()
}

// Bookmarks returns the buffer's bookmark markers, suitable for
// persisting through a store.
func (b *Buffer) Bookmarks() []marker.Marker {
	return b.markers.GetByType(marker.Bookmark())
}

// RestoreBookmarks places previously persisted bookmark markers,
// clamping positions to the current content length.
func (b *Buffer) RestoreBookmarks(bookmarks []marker.Marker) {
	length := b.Len()
	for _, m := range bookmarks {
		pos := m.Position
		if pos > length {
			pos = length
		}
		if m.Data != "" {
			b.markers.SetWithData(m.Name, pos, marker.Bookmark(), m.Data)
		} else {
			b.markers.SetWithType(m.Name, pos, marker.Bookmark())
		}
	}
}
