package network

import (
	"errors"
	"fmt"
	"io"

	"github.com/automoto/deadreckoning/shared/netcomponents"
	"github.com/google/uuid"
	"github.com/leap-fish/necs/esync"
	"github.com/vmihailenco/msgpack/v5"
)

const recordingVersion = 1

var ErrBadRecording = errors.New("not an update recording")

// RecordingHeader opens every recording.
type RecordingHeader struct {
	Version  int    `msgpack:"v"`
	Session  string `msgpack:"session"`
	TickRate int    `msgpack:"tickRate"`
}

// RecordedUpdate is one applied update.
type RecordedUpdate struct {
	ID     esync.NetworkId                `msgpack:"id"`
	Update netcomponents.EntityUpdateData `msgpack:"update"`
}

type countingWriter struct {
	w io.Writer
	n uint64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += uint64(n)
	return n, err
}

// Recorder streams applied updates as msgpack so a session can be replayed
// through the dead reckoning pipeline later.
type Recorder struct {
	out     *countingWriter
	enc     *msgpack.Encoder
	session string
	frames  int
}

// NewRecorder writes a header for a new session to w.
func NewRecorder(w io.Writer, tickRate int) (*Recorder, error) {
	out := &countingWriter{w: w}
	r := &Recorder{
		out:     out,
		enc:     msgpack.NewEncoder(out),
		session: uuid.NewString(),
	}
	header := RecordingHeader{Version: recordingVersion, Session: r.session, TickRate: tickRate}
	if err := r.enc.Encode(&header); err != nil {
		return nil, fmt.Errorf("write recording header: %w", err)
	}
	return r, nil
}

func (r *Recorder) Record(id esync.NetworkId, u netcomponents.EntityUpdateData) error {
	if err := r.enc.Encode(&RecordedUpdate{ID: id, Update: u}); err != nil {
		return fmt.Errorf("record update %d for %d: %w", u.Sequence, id, err)
	}
	r.frames++
	return nil
}

func (r *Recorder) Session() string      { return r.session }
func (r *Recorder) Frames() int          { return r.frames }
func (r *Recorder) BytesWritten() uint64 { return r.out.n }

// Recording is a decoded session.
type Recording struct {
	Header  RecordingHeader
	Updates []RecordedUpdate
}

// ReadRecording decodes a whole recording.
func ReadRecording(r io.Reader) (*Recording, error) {
	dec := msgpack.NewDecoder(r)

	var rec Recording
	if err := dec.Decode(&rec.Header); err != nil {
		return nil, fmt.Errorf("read recording header: %w: %w", ErrBadRecording, err)
	}
	if rec.Header.Version != recordingVersion || rec.Header.Session == "" {
		return nil, fmt.Errorf("%w: version %d", ErrBadRecording, rec.Header.Version)
	}

	for {
		var u RecordedUpdate
		err := dec.Decode(&u)
		if errors.Is(err, io.EOF) {
			return &rec, nil
		}
		if err != nil {
			return nil, fmt.Errorf("read update %d: %w", len(rec.Updates), err)
		}
		rec.Updates = append(rec.Updates, u)
	}
}
