package common

import (
	"encoding/binary"
	"io"
)

// FileNo identifies a file (SSTable or WAL).
type FileNo uint64

// BlockNo identifies a block within an SSTable.
type BlockNo int

// EntryType enumerates logical operations flowing through WAL, memtable,
// and SSTable components. The numeric codes are fixed: they appear on disk
// and cross the properties-collector dispatch boundary as small integers,
// so reordering them breaks both existing files and compiled collectors.
type EntryType uint8

const (
	EntryTypePut                 EntryType = 0
	EntryTypeDelete              EntryType = 1
	EntryTypeSingleDelete        EntryType = 2
	EntryTypeMerge               EntryType = 3
	EntryTypeRangeDelete         EntryType = 4
	EntryTypeDeleteWithTimestamp EntryType = 5
	EntryTypeBlobIndex           EntryType = 6
	EntryTypeOther               EntryType = 7
)

// String returns the short operation mnemonic used by dump and inspect output.
func (t EntryType) String() string {
	switch t {
	case EntryTypePut:
		return "PUT"
	case EntryTypeDelete:
		return "DEL"
	case EntryTypeSingleDelete:
		return "SDEL"
	case EntryTypeMerge:
		return "MERGE"
	case EntryTypeRangeDelete:
		return "RDEL"
	case EntryTypeDeleteWithTimestamp:
		return "TSDEL"
	case EntryTypeBlobIndex:
		return "BLOB"
	default:
		return "OTHER"
	}
}

// IsTombstone reports whether the entry type removes a key rather than
// writing one.
func (t EntryType) IsTombstone() bool {
	switch t {
	case EntryTypeDelete, EntryTypeSingleDelete, EntryTypeRangeDelete, EntryTypeDeleteWithTimestamp:
		return true
	}
	return false
}

// Entry captures a single mutation in sequence order.
type Entry struct {
	Type  EntryType
	Seq   uint64
	Key   []byte
	Value []byte
}

// EntryIterator produces a stream of entries. Next returns nil when the stream
// is exhausted. Implementations should close underlying resources separately.
type EntryIterator interface {
	Next() (*Entry, error)
}

// WriteEntry writes an entry to the given writer.
// Format: type(1) + seq(8) + keyLen(varint) + valueLen(varint) + key + value
// Returns the number of bytes written.
func WriteEntry(w io.Writer, e *Entry) (int, error) {
	var hdr [1 + 8]byte
	var varintBuf [binary.MaxVarintLen64]byte
	total := 0

	hdr[0] = byte(e.Type)
	binary.LittleEndian.PutUint64(hdr[1:], e.Seq)
	n, err := w.Write(hdr[:])
	total += n
	if err != nil {
		return total, err
	}

	n = binary.PutUvarint(varintBuf[:], uint64(len(e.Key)))
	n, err = w.Write(varintBuf[:n])
	total += n
	if err != nil {
		return total, err
	}

	n = binary.PutUvarint(varintBuf[:], uint64(len(e.Value)))
	n, err = w.Write(varintBuf[:n])
	total += n
	if err != nil {
		return total, err
	}

	if len(e.Key) > 0 {
		n, err = w.Write(e.Key)
		total += n
		if err != nil {
			return total, err
		}
	}

	if len(e.Value) > 0 {
		n, err = w.Write(e.Value)
		total += n
		if err != nil {
			return total, err
		}
	}

	return total, nil
}

// ReadEntry reads a single entry from the reader.
// Returns (nil, nil) on a clean end of stream. Returns an error on truncated
// or malformed data.
func ReadEntry(r io.Reader) (*Entry, error) {
	var typeByte [1]byte
	if _, err := io.ReadFull(r, typeByte[:]); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, err
	}

	var seqBuf [8]byte
	if _, err := io.ReadFull(r, seqBuf[:]); err != nil {
		return nil, unexpectedEOF(err)
	}

	keyLen, err := binary.ReadUvarint(byteReader{r})
	if err != nil {
		return nil, unexpectedEOF(err)
	}

	valueLen, err := binary.ReadUvarint(byteReader{r})
	if err != nil {
		return nil, unexpectedEOF(err)
	}

	entry := &Entry{
		Type: EntryType(typeByte[0]),
		Seq:  binary.LittleEndian.Uint64(seqBuf[:]),
	}

	if keyLen > 0 {
		entry.Key = make([]byte, keyLen)
		if _, err := io.ReadFull(r, entry.Key); err != nil {
			return nil, unexpectedEOF(err)
		}
	}

	if valueLen > 0 {
		entry.Value = make([]byte, valueLen)
		if _, err := io.ReadFull(r, entry.Value); err != nil {
			return nil, unexpectedEOF(err)
		}
	}

	return entry, nil
}

// unexpectedEOF maps a mid-entry EOF to io.ErrUnexpectedEOF so callers can
// distinguish truncation from a clean end of stream.
func unexpectedEOF(err error) error {
	if err == io.EOF {
		return io.ErrUnexpectedEOF
	}
	return err
}

// byteReader adapts io.Reader to io.ByteReader for binary.ReadUvarint
type byteReader struct {
	io.Reader
}

func (br byteReader) ReadByte() (byte, error) {
	var b [1]byte
	_, err := io.ReadFull(br.Reader, b[:])
	return b[0], err
}
