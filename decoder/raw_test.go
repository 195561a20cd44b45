package decoder

import (
	"bytes"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type closeCounter struct{ n int }

func (c *closeCounter) Close() error {
	c.n++
	return nil
}

// exitStatus is a closer whose producer ended with err.
type exitStatus struct {
	closeCounter
	err   error
	waits int
}

func (e *exitStatus) Wait() error {
	e.waits++
	return e.err
}

type failingReader struct{}

func (failingReader) Read([]byte) (int, error) { return 0, errors.New("pipe broken") }

func TestRawDecoderReadsWholePictures(t *testing.T) {
	frame := bytes.Repeat([]byte{1, 2, 3}, 2*2)
	stream := append(append([]byte{}, frame...), frame...)
	closer := &closeCounter{}

	d, err := NewRawDecoder(bytes.NewReader(stream), closer, 2, 2, 0)
	require.NoError(t, err)
	assert.Equal(t, DefaultFrameDelay, d.InterFrameDelay())

	for i := 0; i < 2; i++ {
		p, err := d.NextPicture()
		require.NoError(t, err)
		assert.Equal(t, frame, p.Data[0])
		require.NoError(t, p.Validate())
	}

	_, err = d.NextPicture()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, uint64(2), d.frames)

	require.NoError(t, d.Close())
	assert.Equal(t, 1, closer.n)
}

func TestRawDecoderReportsFailedProducer(t *testing.T) {
	frame := bytes.Repeat([]byte{9}, 2*2*3)
	exit := &exitStatus{err: errors.New("exit status 1: Connection refused")}

	d, err := NewRawDecoder(bytes.NewReader(frame), exit, 2, 2, time.Millisecond)
	require.NoError(t, err)

	_, err = d.NextPicture()
	require.NoError(t, err)

	_, err = d.NextPicture()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.ErrorIs(t, err, exit.err)
	assert.Equal(t, 1, exit.waits)
}

func TestRawDecoderCleanProducerExit(t *testing.T) {
	exit := &exitStatus{}
	d, err := NewRawDecoder(bytes.NewReader(nil), exit, 2, 2, time.Millisecond)
	require.NoError(t, err)

	_, err = d.NextPicture()
	assert.ErrorIs(t, err, io.EOF)
	assert.Equal(t, 1, exit.waits)
}

func TestRawDecoderTruncatedPicture(t *testing.T) {
	d, err := NewRawDecoder(bytes.NewReader(make([]byte, 5)), nil, 2, 2, time.Millisecond)
	require.NoError(t, err)

	_, err = d.NextPicture()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
	assert.Contains(t, err.Error(), "truncated")
	assert.NoError(t, d.Close())
}

func TestRawDecoderReadError(t *testing.T) {
	d, err := NewRawDecoder(failingReader{}, nil, 1, 1, time.Millisecond)
	require.NoError(t, err)

	_, err = d.NextPicture()
	require.Error(t, err)
	assert.NotErrorIs(t, err, io.EOF)
}

func TestRawDecoderRejectsBadSize(t *testing.T) {
	_, err := NewRawDecoder(bytes.NewReader(nil), nil, 0, 10, 0)
	assert.Error(t, err)
}

func TestFrameDelay(t *testing.T) {
	assert.Equal(t, 40*time.Millisecond, FrameDelay(25))
	assert.Equal(t, DefaultFrameDelay, FrameDelay(0))
	assert.Equal(t, DefaultFrameDelay, FrameDelay(-1))
	assert.Equal(t, 10*time.Millisecond, FrameDelay(100))
}
