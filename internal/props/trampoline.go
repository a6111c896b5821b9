package props

import (
	"unsafe"

	"go.uber.org/zap"

	"citrine/internal/common"
)

// Table bundles the opaque handle pointer with the five dispatch functions
// bound to the collector's concrete type. The engine stores the Table,
// calls through it during the build, and finally calls Destroy exactly
// once. After Destroy no other function may be called with the handle.
//
// All byte arguments are raw pointer+length pairs: they describe borrowed
// memory that is only valid for the duration of the call. Zero-length views
// are legal and may carry a nil pointer.
type Table struct {
	// Handle is the opaque pointer produced by Create. Only the functions
	// in this Table may reinterpret it.
	Handle unsafe.Pointer

	// Name returns a pointer to the handle's NUL-terminated name. The
	// pointer stays valid as long as the handle is alive; no allocation
	// happens on this path.
	Name func(h unsafe.Pointer) *byte

	// Add forwards one table entry to the collector. entryType is the raw
	// wire code of common.EntryType; seq is the entry's sequence number and
	// fileSize the table file size after the entry was written.
	Add func(h unsafe.Pointer, key *byte, keyLen int, value *byte, valueLen int, entryType int32, seq, fileSize uint64)

	// Finish runs the collector's Finish exactly once and pushes every
	// resulting (name, value) pair into sink, in the order produced.
	Finish func(h unsafe.Pointer, sink PropertySink)

	// NeedCompact reports whether the finished table should be flagged for
	// recompaction. Collectors that do not implement CompactionSuggester
	// report false.
	NeedCompact func(h unsafe.Pointer) bool

	// Destroy reclaims the handle and the collector it owns. Must be called
	// exactly once, after all other calls have returned.
	Destroy func(h unsafe.Pointer)
}

// Create allocates a handle owning collector under the given name and
// returns the dispatch table for it. It fails if name contains an embedded
// NUL byte; no handle is allocated in that case.
//
// Ownership of collector transfers to the returned Table: whoever holds it
// must eventually call Destroy, and nothing else may use the collector
// afterwards.
func Create[C Collector](name string, collector C) (Table, error) {
	h, err := newHandle(name, collector)
	if err != nil {
		return Table{}, err
	}

	return Table{
		Handle:      unsafe.Pointer(h),
		Name:        nameTrampoline[C],
		Add:         addTrampoline[C],
		Finish:      finishTrampoline[C],
		NeedCompact: needCompactTrampoline[C],
		Destroy:     destroyTrampoline[C],
	}, nil
}

// NameOf reads the collector name out of t's live handle as a Go string.
func NameOf(t Table) string {
	return goString(t.Name(t.Handle))
}

// nameTrampoline returns the stored name buffer. No copy, no allocation.
func nameTrampoline[C Collector](p unsafe.Pointer) *byte {
	h := (*handle[C])(p)
	return &h.name[0]
}

func addTrampoline[C Collector](p unsafe.Pointer, key *byte, keyLen int, value *byte, valueLen int, entryType int32, seq, fileSize uint64) {
	defer swallowPanic("add")

	h := (*handle[C])(p)
	k := unsafe.Slice(key, keyLen)
	v := unsafe.Slice(value, valueLen)
	h.rep.Add(k, v, common.EntryType(entryType), seq, fileSize)
}

func finishTrampoline[C Collector](p unsafe.Pointer, sink PropertySink) {
	defer swallowPanic("finish")

	h := (*handle[C])(p)
	for _, prop := range h.rep.Finish() {
		sink.Add(prop.Name, prop.Value)
	}
}

func needCompactTrampoline[C Collector](p unsafe.Pointer) (need bool) {
	defer swallowPanic("need_compact")

	h := (*handle[C])(p)
	if s, ok := any(h.rep).(CompactionSuggester); ok {
		need = s.NeedCompact()
	}
	return need
}

func destroyTrampoline[C Collector](p unsafe.Pointer) {
	h := (*handle[C])(p)
	h.release()
}

// swallowPanic stops a panicking collector at the dispatch boundary. The
// engine's build loop cannot unwind through a collector failure, so the
// panic is logged and dropped: add contributes nothing for the entry,
// finish emits no further pairs, need_compact reports false.
func swallowPanic(op string) {
	if r := recover(); r != nil {
		common.Logger().Error("table properties collector panicked",
			zap.String("op", op),
			zap.Any("panic", r),
		)
	}
}
