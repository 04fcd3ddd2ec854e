package network

import (
	"math"

	"github.com/automoto/deadreckoning/shared/netcomponents"
	"github.com/go-gl/mathgl/mgl64"
)

const historySize = 64

// UpdateRecord stores an applied update alongside the pose the entity had
// been dead reckoned to when it arrived.
type UpdateRecord struct {
	Update    netcomponents.EntityUpdateData
	Predicted mgl64.Vec3
	valid     bool
}

// UpdateHistory is a ring buffer of the most recent updates applied to one
// entity, indexed by sequence number.
type UpdateHistory struct {
	history [historySize]UpdateRecord
	nextSeq uint32
	count   int
}

// Store saves an update and the predicted translation it replaced.
func (h *UpdateHistory) Store(u netcomponents.EntityUpdateData, predicted mgl64.Vec3) {
	idx := u.Sequence % historySize
	h.history[idx] = UpdateRecord{
		Update:    u,
		Predicted: predicted,
		valid:     true,
	}
	h.nextSeq = u.Sequence + 1
	h.count++
}

// Get retrieves a stored record by sequence number. Returns false if not found
// or if the slot has been overwritten.
func (h *UpdateHistory) Get(seq uint32) (UpdateRecord, bool) {
	record := h.history[seq%historySize]
	if !record.valid || record.Update.Sequence != seq {
		return UpdateRecord{}, false
	}
	return record, true
}

// NextSeq returns the next expected sequence number.
func (h *UpdateHistory) NextSeq() uint32 {
	return h.nextSeq
}

// Empty reports whether nothing has been stored yet.
func (h *UpdateHistory) Empty() bool {
	return h.count == 0
}

// Since returns the stored records with sequence numbers greater than seq,
// oldest first.
func (h *UpdateHistory) Since(seq uint32) []UpdateRecord {
	pending := int32(h.nextSeq - seq - 1)
	if h.Empty() || pending <= 0 {
		return nil
	}
	if pending > historySize {
		seq = h.nextSeq - historySize - 1
	}

	var results []UpdateRecord
	for s := seq + 1; s != h.nextSeq; s++ {
		if record, ok := h.Get(s); ok {
			results = append(results, record)
		}
	}
	return results
}

// PredictionError returns how far the dead reckoned translation was from the
// truth carried by update seq. Updates without a translation report 0.
func (h *UpdateHistory) PredictionError(seq uint32) float64 {
	record, ok := h.Get(seq)
	if !ok || !record.Update.Has(netcomponents.FieldTranslation) {
		return 0
	}
	return record.Predicted.Sub(record.Update.Translation).Len()
}

// IntervalStats returns the mean and standard deviation of the time between
// consecutive stored updates. Sequence gaps are skipped over. ok is false with
// fewer than two records in the window.
func (h *UpdateHistory) IntervalStats() (mean, stddev float64, ok bool) {
	if h.Empty() {
		return 0, 0, false
	}

	// oldest first, by distance back from the newest sequence
	var records []UpdateRecord
	for back := uint32(historySize); back >= 1; back-- {
		if record, found := h.Get(h.nextSeq - back); found {
			records = append(records, record)
		}
	}
	if len(records) < 2 {
		return 0, 0, false
	}

	gaps := make([]float64, 0, len(records)-1)
	for i := 1; i < len(records); i++ {
		gaps = append(gaps, records[i].Update.Timestamp-records[i-1].Update.Timestamp)
	}

	for _, g := range gaps {
		mean += g
	}
	mean /= float64(len(gaps))
	for _, g := range gaps {
		stddev += (g - mean) * (g - mean)
	}
	stddev = math.Sqrt(stddev / float64(len(gaps)))
	return mean, stddev, true
}
