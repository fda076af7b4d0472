// Package wire implements the framed message codec for the distributed
// engine.
//
// Every message travels as one frame on a stream transport:
//
//	uint32 length (big-endian, bytes after the prefix)
//	uint8  protocol version
//	uint8  message type
//	body   fixed-layout big-endian fields
//
// Float rows are transferred losslessly as IEEE-754 bits in row order, and
// row payloads carry an xxh3 checksum so corruption is detected at the
// message layer rather than as a wrong simulation result. The explicit
// layout keeps the format versionable and independent of any language's
// native object serialization.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/zeebo/xxh3"
)

// Version is the protocol version emitted and accepted by this codec.
const Version = 1

// MaxFrameSize bounds a single frame. Large enough for a full partition
// result of any realistic grid, small enough to reject garbage prefixes.
const MaxFrameSize = 64 << 20

// MsgType identifies a message within a frame.
type MsgType uint8

const (
	// TypeHello is the worker → master readiness declaration.
	TypeHello MsgType = iota + 1

	// TypeAssign is the master → worker partition assignment and global
	// simulation parameters.
	TypeAssign

	// TypeBoundaryRow carries one halo row between neighboring workers
	// (relayed by the master), tagged with its iteration.
	TypeBoundaryRow

	// TypeResult carries a worker's full partition values to the master
	// after the final iteration.
	TypeResult

	// TypeAbort terminates a session with a reason, in either direction.
	TypeAbort
)

// String returns the message type name.
func (t MsgType) String() string {
	switch t {
	case TypeHello:
		return "Hello"
	case TypeAssign:
		return "Assign"
	case TypeBoundaryRow:
		return "BoundaryRow"
	case TypeResult:
		return "Result"
	case TypeAbort:
		return "Abort"
	default:
		return fmt.Sprintf("Unknown(%d)", uint8(t))
	}
}

// Codec errors.
var (
	// ErrFrameTooLarge is returned when a length prefix exceeds MaxFrameSize.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")

	// ErrVersionMismatch is returned when a frame carries an unsupported
	// protocol version.
	ErrVersionMismatch = errors.New("protocol version mismatch")

	// ErrUnknownMessage is returned for an unrecognized message type.
	ErrUnknownMessage = errors.New("unknown message type")

	// ErrChecksumMismatch is returned when a row payload fails its xxh3
	// checksum.
	ErrChecksumMismatch = errors.New("row checksum mismatch")

	// ErrTruncated is returned when a frame body is shorter than its
	// declared layout.
	ErrTruncated = errors.New("truncated frame body")
)

// Message is implemented by all protocol messages.
type Message interface {
	// Type returns the message type tag.
	Type() MsgType

	appendBody(buf []byte) []byte
	decodeBody(body []byte) error
}

// Hello declares worker readiness to the master.
type Hello struct {
	// Version is the worker's protocol version.
	Version uint8
}

// Assign delivers the partition and the global simulation parameters to a
// worker. Parameters are fixed at dispatch time and never renegotiated.
type Assign struct {
	WorkerID     uint32
	RowStart     uint32
	RowEnd       uint32
	Width        uint32
	Height       uint32
	Iterations   uint32
	BoundaryTemp float64
	InitialTemp  float64

	// HasUpper/HasLower report whether a neighboring partition exists
	// above/below. Absent neighbors mean the adjacent row is a fixed
	// border and no exchange happens on that side.
	HasUpper bool
	HasLower bool
}

// BoundaryRow carries one grid row between adjacent workers.
type BoundaryRow struct {
	// WorkerID is the source worker.
	WorkerID uint32

	// Iteration tags the relaxation round that produced the values
	// (1-based). Receivers reject rows whose tag does not match the round
	// they are exchanging.
	Iteration uint32

	// RowIndex is the global row index of the values.
	RowIndex uint32

	// Values is one full grid row.
	Values []float64
}

// Result carries a worker's computed partition back to the master.
type Result struct {
	WorkerID uint32
	RowStart uint32

	// Rows are the partition's rows in ascending row order.
	Rows [][]float64
}

// Abort terminates the session.
type Abort struct {
	Reason string
}

// Type implements Message.
func (*Hello) Type() MsgType { return TypeHello }

// Type implements Message.
func (*Assign) Type() MsgType { return TypeAssign }

// Type implements Message.
func (*BoundaryRow) Type() MsgType { return TypeBoundaryRow }

// Type implements Message.
func (*Result) Type() MsgType { return TypeResult }

// Type implements Message.
func (*Abort) Type() MsgType { return TypeAbort }

// Write encodes msg as one frame and writes it to w.
func Write(w io.Writer, msg Message) error {
	body := msg.appendBody(nil)

	frame := make([]byte, 0, 4+2+len(body))
	frame = binary.BigEndian.AppendUint32(frame, uint32(2+len(body)))
	frame = append(frame, Version, byte(msg.Type()))
	frame = append(frame, body...)

	if len(frame)-4 > MaxFrameSize {
		return fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, len(frame)-4)
	}

	_, err := w.Write(frame)

	return err
}

// Read decodes the next frame from r.
func Read(r io.Reader) (Message, error) {
	var prefix [4]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, err
	}

	size := binary.BigEndian.Uint32(prefix[:])
	if size > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrFrameTooLarge, size)
	}
	if size < 2 {
		return nil, ErrTruncated
	}

	frame := make([]byte, size)
	if _, err := io.ReadFull(r, frame); err != nil {
		return nil, err
	}

	if frame[0] != Version {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrVersionMismatch, frame[0], Version)
	}

	var msg Message
	switch MsgType(frame[1]) {
	case TypeHello:
		msg = &Hello{}
	case TypeAssign:
		msg = &Assign{}
	case TypeBoundaryRow:
		msg = &BoundaryRow{}
	case TypeResult:
		msg = &Result{}
	case TypeAbort:
		msg = &Abort{}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownMessage, frame[1])
	}

	if err := msg.decodeBody(frame[2:]); err != nil {
		return nil, err
	}

	return msg, nil
}

func (m *Hello) appendBody(buf []byte) []byte {
	return append(buf, m.Version)
}

func (m *Hello) decodeBody(body []byte) error {
	if len(body) < 1 {
		return ErrTruncated
	}
	m.Version = body[0]

	return nil
}

func (m *Assign) appendBody(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, m.WorkerID)
	buf = binary.BigEndian.AppendUint32(buf, m.RowStart)
	buf = binary.BigEndian.AppendUint32(buf, m.RowEnd)
	buf = binary.BigEndian.AppendUint32(buf, m.Width)
	buf = binary.BigEndian.AppendUint32(buf, m.Height)
	buf = binary.BigEndian.AppendUint32(buf, m.Iterations)
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(m.BoundaryTemp))
	buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(m.InitialTemp))
	buf = append(buf, boolByte(m.HasUpper), boolByte(m.HasLower))

	return buf
}

func (m *Assign) decodeBody(body []byte) error {
	const fixed = 6*4 + 2*8 + 2
	if len(body) < fixed {
		return ErrTruncated
	}

	m.WorkerID = binary.BigEndian.Uint32(body[0:])
	m.RowStart = binary.BigEndian.Uint32(body[4:])
	m.RowEnd = binary.BigEndian.Uint32(body[8:])
	m.Width = binary.BigEndian.Uint32(body[12:])
	m.Height = binary.BigEndian.Uint32(body[16:])
	m.Iterations = binary.BigEndian.Uint32(body[20:])
	m.BoundaryTemp = math.Float64frombits(binary.BigEndian.Uint64(body[24:]))
	m.InitialTemp = math.Float64frombits(binary.BigEndian.Uint64(body[32:]))
	m.HasUpper = body[40] != 0
	m.HasLower = body[41] != 0

	return nil
}

func (m *BoundaryRow) appendBody(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, m.WorkerID)
	buf = binary.BigEndian.AppendUint32(buf, m.Iteration)
	buf = binary.BigEndian.AppendUint32(buf, m.RowIndex)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(m.Values)))

	payload := appendFloats(nil, m.Values)
	buf = append(buf, payload...)
	buf = binary.BigEndian.AppendUint64(buf, xxh3.Hash(payload))

	return buf
}

func (m *BoundaryRow) decodeBody(body []byte) error {
	if len(body) < 16 {
		return ErrTruncated
	}

	m.WorkerID = binary.BigEndian.Uint32(body[0:])
	m.Iteration = binary.BigEndian.Uint32(body[4:])
	m.RowIndex = binary.BigEndian.Uint32(body[8:])
	count := int(binary.BigEndian.Uint32(body[12:]))

	// count is untrusted; bound it against the actual payload before any
	// size arithmetic.
	avail := len(body) - 16 - 8
	if avail < 0 || count > avail/8 {
		return ErrTruncated
	}

	payload := body[16 : 16+count*8]
	sum := binary.BigEndian.Uint64(body[16+count*8:])
	if xxh3.Hash(payload) != sum {
		return ErrChecksumMismatch
	}

	m.Values = decodeFloats(payload, count)

	return nil
}

func (m *Result) appendBody(buf []byte) []byte {
	buf = binary.BigEndian.AppendUint32(buf, m.WorkerID)
	buf = binary.BigEndian.AppendUint32(buf, m.RowStart)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(m.Rows)))

	width := 0
	if len(m.Rows) > 0 {
		width = len(m.Rows[0])
	}
	buf = binary.BigEndian.AppendUint32(buf, uint32(width))

	payload := make([]byte, 0, len(m.Rows)*width*8)
	for _, row := range m.Rows {
		payload = appendFloats(payload, row)
	}
	buf = append(buf, payload...)
	buf = binary.BigEndian.AppendUint64(buf, xxh3.Hash(payload))

	return buf
}

func (m *Result) decodeBody(body []byte) error {
	if len(body) < 16 {
		return ErrTruncated
	}

	m.WorkerID = binary.BigEndian.Uint32(body[0:])
	m.RowStart = binary.BigEndian.Uint32(body[4:])
	rows := int(binary.BigEndian.Uint32(body[8:]))
	width := int(binary.BigEndian.Uint32(body[12:]))

	// The shape fields are untrusted; a corrupt header must not be able to
	// wrap the size arithmetic or drive a huge allocation. Bounding rows
	// against the actual payload in uint64 keeps every product in range.
	avail := len(body) - 16 - 8
	if avail < 0 {
		return ErrTruncated
	}
	if width == 0 && rows != 0 {
		return ErrTruncated
	}
	if width > 0 && uint64(rows) > uint64(avail)/(uint64(width)*8) {
		return ErrTruncated
	}

	size := rows * width * 8
	payload := body[16 : 16+size]
	sum := binary.BigEndian.Uint64(body[16+size:])
	if xxh3.Hash(payload) != sum {
		return ErrChecksumMismatch
	}

	m.Rows = make([][]float64, rows)
	for i := range m.Rows {
		m.Rows[i] = decodeFloats(payload[i*width*8:], width)
	}

	return nil
}

func (m *Abort) appendBody(buf []byte) []byte {
	return append(buf, m.Reason...)
}

func (m *Abort) decodeBody(body []byte) error {
	m.Reason = string(body)

	return nil
}

func appendFloats(buf []byte, values []float64) []byte {
	for _, v := range values {
		buf = binary.BigEndian.AppendUint64(buf, math.Float64bits(v))
	}

	return buf
}

func decodeFloats(payload []byte, count int) []float64 {
	out := make([]float64, count)
	for i := range out {
		out[i] = math.Float64frombits(binary.BigEndian.Uint64(payload[i*8:]))
	}

	return out
}

func boolByte(b bool) byte {
	if b {
		return 1
	}

	return 0
}
