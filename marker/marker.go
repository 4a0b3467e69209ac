// Package marker implements named, typed position annotations that
// track shifts caused by edits elsewhere in the text. A Set indexes
// markers both by name for direct lookup and by type for queries like
// "all diagnostics", and keeps the two indices consistent.
package marker

import (
	"sort"
	"sync"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"

	"github.com/editkit/editkit/rope"
)

// ByteOffset is an alias for rope.ByteOffset for convenience.
type ByteOffset = rope.ByteOffset

// Kind classifies a marker.
type Kind int

const (
	KindBookmark Kind = iota
	KindCursor
	KindSelection
	KindSearchResult
	KindDiagnostic
	KindCustom
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindBookmark:
		return "bookmark"
	case KindCursor:
		return "cursor"
	case KindSelection:
		return "selection"
	case KindSearchResult:
		return "search_result"
	case KindDiagnostic:
		return "diagnostic"
	case KindCustom:
		return "custom"
	default:
		return "unknown"
	}
}

// Severity grades a diagnostic marker.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityError
	SeverityWarning
	SeverityInfo
	SeverityHint
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	case SeverityInfo:
		return "info"
	case SeverityHint:
		return "hint"
	default:
		return "none"
	}
}

// Type identifies a marker's category. It is comparable and usable as
// a map key: Severity and Source are only set for diagnostics, Tag only
// for custom markers.
type Type struct {
	Kind     Kind
	Severity Severity
	Source   string
	Tag      string
}

// Convenience type constructors.

func Bookmark() Type     { return Type{Kind: KindBookmark} }
func Cursor() Type       { return Type{Kind: KindCursor} }
func Selection() Type    { return Type{Kind: KindSelection} }
func SearchResult() Type { return Type{Kind: KindSearchResult} }

// Diagnostic builds a diagnostic type with the given severity and
// source (for example an analyzer or language server name).
func Diagnostic(severity Severity, source string) Type {
	return Type{Kind: KindDiagnostic, Severity: severity, Source: source}
}

// Custom builds a caller-defined type distinguished by tag.
func Custom(tag string) Type {
	return Type{Kind: KindCustom, Tag: tag}
}

// Marker is one annotation: a unique name, a byte position, a type,
// and an optional JSON payload.
type Marker struct {
	Name     string
	Position ByteOffset
	Type     Type

	// Data holds an optional JSON document, empty when unset. Use
	// DataField to read individual fields.
	Data string
}

// DataField extracts a field from the marker's JSON payload by gjson
// path, for example "message" or "code.value".
func (m Marker) DataField(path string) gjson.Result {
	return gjson.Get(m.Data, path)
}

// DiagnosticData builds the JSON payload conventionally attached to
// diagnostic markers.
func DiagnosticData(message string, length ByteOffset) string {
	data, _ := sjson.Set("", "message", message)
	data, _ = sjson.Set(data, "length", length)
	return data
}

// Set holds a buffer's markers. All methods are safe for concurrent
// use.
type Set struct {
	mu sync.RWMutex

	// byName is the authoritative store; byType holds names in
	// insertion order per type. Every name present in one index is
	// present in the other.
	byName map[string]*Marker
	byType map[Type][]string
}

// NewSet creates an empty marker set.
func NewSet() *Set {
	return &Set{
		byName: make(map[string]*Marker),
		byType: make(map[Type][]string),
	}
}

// Set places an untyped bookmark marker at position, replacing any
// existing marker with the same name.
func (s *Set) Set(name string, position ByteOffset) {
	s.SetWithType(name, position, Bookmark())
}

// SetWithType places a typed marker, replacing any existing marker with
// the same name. When the name previously existed under a different
// type, it is moved between type buckets.
func (s *Set) SetWithType(name string, position ByteOffset, typ Type) {
	s.setMarker(&Marker{Name: name, Position: position, Type: typ})
}

// SetWithData places a typed marker carrying a JSON payload.
func (s *Set) SetWithData(name string, position ByteOffset, typ Type, data string) {
	s.setMarker(&Marker{Name: name, Position: position, Type: typ, Data: data})
}

func (s *Set) setMarker(m *Marker) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if old, exists := s.byName[m.Name]; exists {
		s.removeFromBucket(old.Type, m.Name)
	}
	s.byType[m.Type] = append(s.byType[m.Type], m.Name)
	s.byName[m.Name] = m
}

// removeFromBucket drops name from the given type bucket. Caller holds
// the write lock.
func (s *Set) removeFromBucket(typ Type, name string) {
	bucket := s.byType[typ]
	for i, n := range bucket {
		if n == name {
			s.byType[typ] = append(bucket[:i:i], bucket[i+1:]...)
			break
		}
	}
	if len(s.byType[typ]) == 0 {
		delete(s.byType, typ)
	}
}

// SetDataField writes one field of the named marker's JSON payload by
// sjson path, creating the payload if absent. It reports false for an
// unknown marker.
func (s *Set) SetDataField(name, path string, value any) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byName[name]
	if !ok {
		return false
	}
	data, err := sjson.Set(m.Data, path, value)
	if err != nil {
		return false
	}
	m.Data = data
	return true
}

// Get returns the named marker's position.
func (s *Set) Get(name string) (ByteOffset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byName[name]
	if !ok {
		return 0, false
	}
	return m.Position, true
}

// GetMarker returns a copy of the named marker.
func (s *Set) GetMarker(name string) (Marker, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byName[name]
	if !ok {
		return Marker{}, false
	}
	return *m, true
}

// GetData returns the named marker's JSON payload. The second result is
// false when the marker does not exist or carries no data.
func (s *Set) GetData(name string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	m, ok := s.byName[name]
	if !ok || m.Data == "" {
		return "", false
	}
	return m.Data, true
}

// GetByType returns copies of all markers of the given type, in
// insertion order.
func (s *Set) GetByType(typ Type) []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := s.byType[typ]
	if len(names) == 0 {
		return nil
	}
	result := make([]Marker, 0, len(names))
	for _, name := range names {
		if m, ok := s.byName[name]; ok {
			result = append(result, *m)
		}
	}
	return result
}

// Remove deletes the named marker from both indices. It is a no-op for
// an unknown name.
func (s *Set) Remove(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	m, ok := s.byName[name]
	if !ok {
		return
	}
	delete(s.byName, name)
	s.removeFromBucket(m.Type, name)
}

// UpdatePositions shifts every marker at or after editPosition by
// delta, clamping at zero. The owning buffer calls this after each
// edit with delta equal to the inserted length or the negated deleted
// length.
func (s *Set) UpdatePositions(editPosition ByteOffset, delta ByteOffset) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.byName {
		if m.Position >= editPosition {
			m.Position += delta
			if m.Position < 0 {
				m.Position = 0
			}
		}
	}
}

// InRange returns copies of all markers with position in [start, end),
// ordered by position, then name for ties.
func (s *Set) InRange(start, end ByteOffset) []Marker {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []Marker
	for _, m := range s.byName {
		if m.Position >= start && m.Position < end {
			result = append(result, *m)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Position != result[j].Position {
			return result[i].Position < result[j].Position
		}
		return result[i].Name < result[j].Name
	})
	return result
}

// Names returns all marker names in unspecified order.
func (s *Set) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.byName))
	for name := range s.byName {
		names = append(names, name)
	}
	return names
}

// Len returns the number of markers.
func (s *Set) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.byName)
}

// IsEmpty reports whether the set holds no markers.
func (s *Set) IsEmpty() bool {
	return s.Len() == 0
}

// Clear removes every marker.
func (s *Set) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byName = make(map[string]*Marker)
	s.byType = make(map[Type][]string)
}
