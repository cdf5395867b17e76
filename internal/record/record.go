// Package record reads and writes observation recordings: a CBOR stream with
// one header record followed by one record per frame. Buffers are stored as
// typed flat arrays with explicit dimensions, so a recording round-trips
// without loss.
package record

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/sensorviz/sensorviz/internal/observation"
)

const (
	// Magic identifies a sensorviz observation recording.
	Magic = "SVZREC"

	// Version of the recording layout.
	Version = 1
)

type header struct {
	Magic   string                      `cbor:"magic"`
	Version int                         `cbor:"version"`
	Sensors map[string]observation.Kind `cbor:"sensors"`
}

type bufferRecord struct {
	Width    int       `cbor:"w"`
	Height   int       `cbor:"h"`
	Channels int       `cbor:"ch,omitempty"`
	Color    []byte    `cbor:"color,omitempty"`
	Depth    []float32 `cbor:"depth,omitempty"`
	Semantic []int32   `cbor:"semantic,omitempty"`
}

type frameRecord map[string]bufferRecord

// Writer streams observation frames into a recording.
type Writer struct {
	enc     *cbor.Encoder
	closer  io.Closer
	sensors map[string]observation.Kind
}

// NewWriter writes the recording header for the declared sensors and returns
// a Writer appending to w.
func NewWriter(w io.Writer, sensors map[string]observation.Kind) (*Writer, error) {
	if len(sensors) == 0 {
		return nil, errors.New("recording needs at least one sensor")
	}
	for name, kind := range sensors {
		if !kind.Valid() {
			return nil, fmt.Errorf("sensor %q: unknown kind %q", name, kind)
		}
	}
	enc := cbor.NewEncoder(w)
	if err := enc.Encode(header{Magic: Magic, Version: Version, Sensors: sensors}); err != nil {
		return nil, fmt.Errorf("write recording header: %w", err)
	}
	return &Writer{enc: enc, sensors: sensors}, nil
}

// Create opens path for writing and returns a Writer owning the file handle.
func Create(path string, sensors map[string]observation.Kind) (*Writer, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create recording: %w", err)
	}
	w, err := NewWriter(f, sensors)
	if err != nil {
		f.Close()
		return nil, err
	}
	w.closer = f
	return w, nil
}

// WriteFrame appends one observation frame. Every declared sensor must be
// present with a payload matching its kind.
func (w *Writer) WriteFrame(frame observation.Frame) error {
	rec := make(frameRecord, len(w.sensors))
	for name, kind := range w.sensors {
		buf := frame[name]
		if err := buf.Check(kind); err != nil {
			return fmt.Errorf("sensor %q: %w", name, err)
		}
		rec[name] = bufferRecord{
			Width:    buf.Width,
			Height:   buf.Height,
			Channels: buf.Channels,
			Color:    buf.Color,
			Depth:    buf.Depth,
			Semantic: buf.Semantic,
		}
	}
	if err := w.enc.Encode(rec); err != nil {
		return fmt.Errorf("write frame: %w", err)
	}
	return nil
}

// Close releases the underlying file when the Writer owns one.
func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	c := w.closer
	w.closer = nil
	return c.Close()
}

// Reader streams observation frames out of a recording.
type Reader struct {
	dec    *cbor.Decoder
	closer io.Closer
	hdr    header
}

// NewReader validates the recording header and returns a Reader consuming r.
func NewReader(r io.Reader) (*Reader, error) {
	dec := cbor.NewDecoder(r)
	var hdr header
	if err := dec.Decode(&hdr); err != nil {
		return nil, fmt.Errorf("read recording header: %w", err)
	}
	if hdr.Magic != Magic {
		return nil, fmt.Errorf("not an observation recording (magic %q)", hdr.Magic)
	}
	if hdr.Version != Version {
		return nil, fmt.Errorf("unsupported recording version %d", hdr.Version)
	}
	return &Reader{dec: dec, hdr: hdr}, nil
}

// Open opens the recording at path; the returned Reader owns the file handle.
func Open(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open recording: %w", err)
	}
	r, err := NewReader(f)
	if err != nil {
		f.Close()
		return nil, err
	}
	r.closer = f
	return r, nil
}

// Sensors returns the declared sensor name to kind mapping.
func (r *Reader) Sensors() map[string]observation.Kind {
	return r.hdr.Sensors
}

// Next returns the next frame, or io.EOF after the last one.
func (r *Reader) Next() (observation.Frame, error) {
	var rec frameRecord
	if err := r.dec.Decode(&rec); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read frame: %w", err)
	}
	frame := make(observation.Frame, len(rec))
	for name, b := range rec {
		kind, ok := r.hdr.Sensors[name]
		if !ok {
			return nil, fmt.Errorf("frame carries undeclared sensor %q", name)
		}
		buf := &observation.Buffer{
			Width:    b.Width,
			Height:   b.Height,
			Channels: b.Channels,
			Color:    b.Color,
			Depth:    b.Depth,
			Semantic: b.Semantic,
		}
		if err := buf.Check(kind); err != nil {
			return nil, fmt.Errorf("sensor %q: %w", name, err)
		}
		frame[name] = buf
	}
	return frame, nil
}

// ReadAll drains the recording into memory.
func (r *Reader) ReadAll() ([]observation.Frame, error) {
	var frames []observation.Frame
	for {
		frame, err := r.Next()
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return nil, err
		}
		frames = append(frames, frame)
	}
}

// Close releases the underlying file when the Reader owns one.
func (r *Reader) Close() error {
	if r.closer == nil {
		return nil
	}
	c := r.closer
	r.closer = nil
	return c.Close()
}
