package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Record is the persisted worksheet. Field names match the records written
// by earlier versions, so old data keeps loading.
type Record struct {
	Notes           []Note       `json:"notes"`
	Lines           []Connection `json:"lines"`
	SummaryText     string       `json:"summaryText"`
	QuestionText    string       `json:"questionText"`
	NextNoteID      int          `json:"nextNoteId"`
	LastModelAnswer string       `json:"lastModelAnswer"`
}

func defaultRecord() Record {
	return Record{
		Notes:      make([]Note, 0),
		Lines:      make([]Connection, 0),
		NextNoteID: 1,
	}
}

// normalize repairs what a hand-edited or older record may get wrong:
// missing fields, unknown colours, extra question notes, duplicate or
// dangling lines and a counter that would reissue an existing id.
func (r *Record) normalize() {
	if r.Notes == nil {
		r.Notes = make([]Note, 0)
	}
	r.dropExtraQuestions()
	ids := make(map[int]bool, len(r.Notes))
	maxID := 0
	for i := range r.Notes {
		n := &r.Notes[i]
		if !n.Color.Valid() {
			n.Color = ColorYellow
		}
		switch n.Kind {
		case KindFree, KindKeyword, KindQuestion:
		default:
			n.Kind = KindFree
		}
		ids[n.ID] = true
		if n.ID > maxID {
			maxID = n.ID
		}
	}

	lines := make([]Connection, 0, len(r.Lines))
	for _, l := range r.Lines {
		if l.From == l.To || !ids[l.From] || !ids[l.To] {
			continue
		}
		dup := false
		for _, kept := range lines {
			if kept.Joins(l.From, l.To) {
				dup = true
				break
			}
		}
		if !dup {
			lines = append(lines, l)
		}
	}
	r.Lines = lines

	if r.NextNoteID <= maxID {
		r.NextNoteID = maxID + 1
	}
	if r.NextNoteID < 1 {
		r.NextNoteID = 1
	}
}

// dropExtraQuestions keeps the newest question note. Lines to the dropped
// ones become dangling and are removed with the rest.
func (r *Record) dropExtraQuestions() {
	keep := noNote
	for _, n := range r.Notes {
		if n.Kind == KindQuestion && n.ID > keep {
			keep = n.ID
		}
	}
	notes := r.Notes[:0]
	for _, n := range r.Notes {
		if n.Kind == KindQuestion && n.ID != keep {
			continue
		}
		notes = append(notes, n)
	}
	r.Notes = notes
}

type RecordStore struct {
	kv     KV
	key    string
	logger *zap.Logger
}

func NewRecordStore(kv KV, logger *zap.Logger) *RecordStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RecordStore{kv: kv, key: recordKey, logger: logger}
}

func (s *RecordStore) Save(ctx context.Context, r Record) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}
	if err := s.kv.Put(ctx, s.key, data); err != nil {
		qnksStoreErrorTotal.WithLabelValues("save").Inc()
		return fmt.Errorf("save record: %w", err)
	}
	return nil
}

// Load reads the record. A missing record yields the defaults; a record that
// does not parse is logged and also yields the defaults, together with
// ErrCorruptRecord.
func (s *RecordStore) Load(ctx context.Context) (Record, error) {
	data, err := s.kv.Get(ctx, s.key)
	if errors.Is(err, ErrNotFound) {
		return defaultRecord(), nil
	}
	if err != nil {
		qnksStoreErrorTotal.WithLabelValues("load").Inc()
		return defaultRecord(), fmt.Errorf("load record: %w", err)
	}

	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		s.logger.Warn("stored record is unreadable, starting empty",
			zap.String("key", s.key), zap.Int("bytes", len(data)), zap.Error(err))
		qnksStoreErrorTotal.WithLabelValues("decode").Inc()
		return defaultRecord(), fmt.Errorf("%w: %v", ErrCorruptRecord, err)
	}
	r.normalize()
	return r, nil
}
