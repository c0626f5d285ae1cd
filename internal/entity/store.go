package entity

import "sort"

// Store is the parsed dump treated as a minimal in-memory database: entity
// type name -> records in source order. It is written once by the parser and
// read-only afterward; none of the lookup methods mutate it, so it is safe
// to share without locking once Parse has returned.
type Store struct {
	records map[string][]*Record
}

func newStore() *Store {
	return &Store{records: make(map[string][]*Record)}
}

func (s *Store) add(r *Record) {
	s.records[r.Tag] = append(s.records[r.Tag], r)
}

// Records returns all records of the given entity type in source order.
// The caller must not modify the returned slice.
func (s *Store) Records(tag string) []*Record {
	return s.records[tag]
}

// Count returns the number of records of the given entity type.
func (s *Store) Count(tag string) int {
	return len(s.records[tag])
}

// Tags returns all entity type names present in the store, sorted.
func (s *Store) Tags() []string {
	tags := make([]string, 0, len(s.records))
	for tag := range s.records {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Index builds an id -> record map for the given entity type. Records
// without an id field are skipped; on duplicate ids the first record wins,
// matching the dump's source order.
func (s *Store) Index(tag string) map[string]*Record {
	idx := make(map[string]*Record, len(s.records[tag]))
	for _, r := range s.records[tag] {
		id := r.ID()
		if id == "" {
			continue
		}
		if _, ok := idx[id]; !ok {
			idx[id] = r
		}
	}
	return idx
}

// Where returns the records of the given type whose named field equals
// value, in source order.
func (s *Store) Where(tag, field, value string) []*Record {
	var out []*Record
	for _, r := range s.records[tag] {
		if r.Field(field) == value {
			out = append(out, r)
		}
	}
	return out
}
