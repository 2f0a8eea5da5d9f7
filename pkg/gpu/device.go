package gpu

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"sync"
)

// ErrUnknownBuffer is returned when a draw references a buffer the device
// never created.
var ErrUnknownBuffer = errors.New("unknown buffer")

// BufferKind is the bind target of a device buffer.
type BufferKind int

const (
	VertexBuffer BufferKind = iota
	IndexBuffer
)

func (k BufferKind) String() string {
	if k == IndexBuffer {
		return "index"
	}
	return "vertex"
}

// BufferID identifies a device buffer. Zero is never a valid ID.
type BufferID uint32

// DrawCall is one indexed triangle-list draw.
type DrawCall struct {
	Effect     string
	Technique  string
	Raster     RasterState
	Uniforms   Uniforms
	Vertices   BufferID
	Indices    BufferID
	Stride     int
	IndexCount int
}

// Device is a graphics device the hardware pipeline submits to.
type Device interface {
	CreateBuffer(kind BufferKind, data []byte) (BufferID, error)
	Clear(c color.RGBA)
	Draw(call DrawCall) error
	Present() error
}

// Frame is what a Recorder captured between two Present calls.
type Frame struct {
	Clear color.RGBA
	Draws []DrawCall
}

// Recorder is a Device that keeps every submission in memory.
type Recorder struct {
	mu      sync.Mutex
	buffers map[BufferID][]byte
	kinds   map[BufferID]BufferKind
	nextID  BufferID
	current Frame
	frames  []Frame
	keep    int
	logger  *slog.Logger
}

// NewRecorder creates a recording device that retains the last keep
// presented frames. A nil logger uses slog.Default().
func NewRecorder(keep int, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{
		buffers: make(map[BufferID][]byte),
		kinds:   make(map[BufferID]BufferKind),
		keep:    max(1, keep),
		logger:  logger,
	}
}

// CreateBuffer implements Device. The data is copied.
func (r *Recorder) CreateBuffer(kind BufferKind, data []byte) (BufferID, error) {
	if len(data) == 0 {
		return 0, fmt.Errorf("create %s buffer: empty data", kind)
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := r.nextID
	r.buffers[id] = append([]byte(nil), data...)
	r.kinds[id] = kind
	r.logger.Debug("buffer created", "id", id, "kind", kind, "bytes", len(data))
	return id, nil
}

// Clear implements Device.
func (r *Recorder) Clear(c color.RGBA) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = Frame{Clear: c}
}

// Draw implements Device. Buffers must exist with the right kind and be
// large enough for the call.
func (r *Recorder) Draw(call DrawCall) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.checkBuffer(call.Vertices, VertexBuffer); err != nil {
		return err
	}
	if err := r.checkBuffer(call.Indices, IndexBuffer); err != nil {
		return err
	}
	if call.IndexCount%3 != 0 || 4*call.IndexCount > len(r.buffers[call.Indices]) {
		return fmt.Errorf("draw %s: index count %d does not fit buffer %d", call.Effect, call.IndexCount, call.Indices)
	}

	r.current.Draws = append(r.current.Draws, call)
	r.logger.Debug("draw",
		"effect", call.Effect,
		"technique", call.Technique,
		"cull", call.Raster.Cull,
		"triangles", call.IndexCount/3,
	)
	return nil
}

func (r *Recorder) checkBuffer(id BufferID, kind BufferKind) error {
	got, ok := r.kinds[id]
	if !ok {
		return fmt.Errorf("%s buffer %d: %w", kind, id, ErrUnknownBuffer)
	}
	if got != kind {
		return fmt.Errorf("buffer %d is a %s buffer, want %s", id, got, kind)
	}
	return nil
}

// Present implements Device.
func (r *Recorder) Present() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.frames = append(r.frames, r.current)
	if len(r.frames) > r.keep {
		r.frames = r.frames[len(r.frames)-r.keep:]
	}
	r.current = Frame{}
	return nil
}

// Frames returns the retained presented frames, oldest first.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Frame(nil), r.frames...)
}

// LastFrame returns the most recently presented frame.
func (r *Recorder) LastFrame() (Frame, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.frames) == 0 {
		return Frame{}, false
	}
	return r.frames[len(r.frames)-1], true
}

// Buffer returns a created buffer's contents.
func (r *Recorder) Buffer(id BufferID) ([]byte, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	b, ok := r.buffers[id]
	return b, ok
}
