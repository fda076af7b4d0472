package wire

import (
	"bytes"
	"encoding/binary"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func roundtrip(t *testing.T, msg Message) Message {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, msg))

	got, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, msg.Type(), got.Type())
	require.Zero(t, buf.Len(), "frame must be fully consumed")

	return got
}

func TestHelloRoundtrip(t *testing.T) {
	t.Parallel()

	got := roundtrip(t, &Hello{Version: Version})
	require.Equal(t, &Hello{Version: Version}, got)
}

func TestAssignRoundtrip(t *testing.T) {
	t.Parallel()

	msg := &Assign{
		WorkerID:     2,
		RowStart:     5,
		RowEnd:       9,
		Width:        100,
		Height:       100,
		Iterations:   1000,
		BoundaryTemp: 100.5,
		InitialTemp:  -3.25,
		HasUpper:     true,
		HasLower:     false,
	}
	require.Equal(t, msg, roundtrip(t, msg))
}

func TestBoundaryRowRoundtrip(t *testing.T) {
	t.Parallel()

	msg := &BoundaryRow{
		WorkerID:  1,
		Iteration: 42,
		RowIndex:  7,
		Values:    []float64{100, 0.125, -17.75, 3.5, 100},
	}
	require.Equal(t, msg, roundtrip(t, msg))
}

func TestResultRoundtrip(t *testing.T) {
	t.Parallel()

	msg := &Result{
		WorkerID: 3,
		RowStart: 10,
		Rows: [][]float64{
			{100, 1.5, 2.5, 100},
			{100, -0.25, 8, 100},
			{100, 0, 0, 100},
		},
	}
	require.Equal(t, msg, roundtrip(t, msg))
}

func TestAbortRoundtrip(t *testing.T) {
	t.Parallel()

	msg := &Abort{Reason: "worker 2 lost"}
	require.Equal(t, msg, roundtrip(t, msg))

	// Empty reason is valid.
	empty := roundtrip(t, &Abort{})
	require.Equal(t, &Abort{}, empty)
}

func TestReadMultipleFrames(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Hello{Version: Version}))
	require.NoError(t, Write(&buf, &BoundaryRow{Iteration: 1, RowIndex: 2, Values: []float64{1, 2}}))
	require.NoError(t, Write(&buf, &Abort{Reason: "done"}))

	msg, err := Read(&buf)
	require.NoError(t, err)
	require.Equal(t, TypeHello, msg.Type())

	msg, err = Read(&buf)
	require.NoError(t, err)
	require.Equal(t, TypeBoundaryRow, msg.Type())

	msg, err = Read(&buf)
	require.NoError(t, err)
	require.Equal(t, TypeAbort, msg.Type())

	_, err = Read(&buf)
	require.ErrorIs(t, err, io.EOF)
}

func TestReadChecksumMismatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	msg := &BoundaryRow{WorkerID: 0, Iteration: 1, RowIndex: 1, Values: []float64{1, 2, 3}}
	require.NoError(t, Write(&buf, msg))

	// Flip one bit inside the float payload (after the 4-byte length
	// prefix, 2-byte header, and 16-byte fixed fields).
	frame := buf.Bytes()
	frame[4+2+16] ^= 0x01

	_, err := Read(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestReadVersionMismatch(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Write(&buf, &Hello{Version: Version}))

	frame := buf.Bytes()
	frame[4] = Version + 1

	_, err := Read(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrVersionMismatch)
}

func TestReadUnknownMessage(t *testing.T) {
	t.Parallel()

	frame := []byte{0, 0, 0, 2, Version, 0xEE}
	_, err := Read(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrUnknownMessage)
}

func TestReadFrameTooLarge(t *testing.T) {
	t.Parallel()

	var frame []byte
	frame = binary.BigEndian.AppendUint32(frame, MaxFrameSize+1)
	frame = append(frame, Version, byte(TypeHello))

	_, err := Read(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReadTruncatedBody(t *testing.T) {
	t.Parallel()

	// A BoundaryRow frame that declares 3 values but carries none.
	var body []byte
	body = binary.BigEndian.AppendUint32(body, 0) // worker id
	body = binary.BigEndian.AppendUint32(body, 1) // iteration
	body = binary.BigEndian.AppendUint32(body, 1) // row index
	body = binary.BigEndian.AppendUint32(body, 3) // count, but no payload

	var frame []byte
	frame = binary.BigEndian.AppendUint32(frame, uint32(2+len(body)))
	frame = append(frame, Version, byte(TypeBoundaryRow))
	frame = append(frame, body...)

	_, err := Read(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReadResultShapeOverflow(t *testing.T) {
	t.Parallel()

	// A Result frame whose declared shape does not fit its payload must be
	// rejected as truncated, never multiplied into a wrapped size check or
	// an oversized allocation.
	build := func(rows, width uint32) []byte {
		var body []byte
		body = binary.BigEndian.AppendUint32(body, 0) // worker id
		body = binary.BigEndian.AppendUint32(body, 1) // row start
		body = binary.BigEndian.AppendUint32(body, rows)
		body = binary.BigEndian.AppendUint32(body, width)
		body = append(body, make([]byte, 16)...) // 8 payload bytes + checksum slot

		var frame []byte
		frame = binary.BigEndian.AppendUint32(frame, uint32(2+len(body)))
		frame = append(frame, Version, byte(TypeResult))

		return append(frame, body...)
	}

	tests := []struct {
		name  string
		rows  uint32
		width uint32
	}{
		{"both fields max", 0xFFFFFFFF, 0xFFFFFFFF},
		{"product wraps to zero", 1 << 30, 1 << 31},
		{"zero width nonzero rows", 1 << 20, 0},
		{"plausible width oversized rows", 1 << 24, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Read(bytes.NewReader(build(tt.rows, tt.width)))
			require.ErrorIs(t, err, ErrTruncated)
		})
	}
}

func TestReadBoundaryRowCountOverflow(t *testing.T) {
	t.Parallel()

	var body []byte
	body = binary.BigEndian.AppendUint32(body, 0)          // worker id
	body = binary.BigEndian.AppendUint32(body, 1)          // iteration
	body = binary.BigEndian.AppendUint32(body, 1)          // row index
	body = binary.BigEndian.AppendUint32(body, 0xFFFFFFFF) // count
	body = append(body, make([]byte, 16)...)

	var frame []byte
	frame = binary.BigEndian.AppendUint32(frame, uint32(2+len(body)))
	frame = append(frame, Version, byte(TypeBoundaryRow))
	frame = append(frame, body...)

	_, err := Read(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestReadShortFrame(t *testing.T) {
	t.Parallel()

	// Declared size smaller than the version+type header.
	frame := []byte{0, 0, 0, 1, Version}
	_, err := Read(bytes.NewReader(frame))
	require.ErrorIs(t, err, ErrTruncated)
}

func TestMsgTypeString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Hello", TypeHello.String())
	require.Equal(t, "Assign", TypeAssign.String())
	require.Equal(t, "BoundaryRow", TypeBoundaryRow.String())
	require.Equal(t, "Result", TypeResult.String())
	require.Equal(t, "Abort", TypeAbort.String())
	require.Equal(t, "Unknown(99)", MsgType(99).String())
}
