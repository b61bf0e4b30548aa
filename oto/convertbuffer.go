package oto

import (
	"encoding/binary"
	"io"
	"math"

	"github.com/waveline/timeline"
	"github.com/waveline/timeline/mixer"
)

// AppendFloat32LE appends the frames of buffer to dst as interleaved
// little-endian float32 samples, the format the oto player is opened with.
func AppendFloat32LE(dst []byte, buffer timeline.AudioBuffer) []byte {
	for _, f := range buffer {
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f[0]))
		dst = binary.LittleEndian.AppendUint32(dst, math.Float32bits(f[1]))
	}
	return dst
}

// stream is the io.ReadSeeker the oto player pulls from. Offsets are in
// bytes of encoded audio.
type stream struct {
	mixer  *mixer.Mixer
	frames timeline.AudioBuffer
	tmp    []byte
}

func (s *stream) Read(p []byte) (int, error) {
	n := len(p) / frameSize
	if n == 0 {
		return 0, nil
	}
	if cap(s.frames) < n {
		s.frames = make(timeline.AudioBuffer, n)
	}
	rendered := s.mixer.Render(s.frames[:n])
	if rendered == 0 {
		return 0, io.EOF
	}
	// we reuse the old capacity of tmp by setting its length to zero
	s.tmp = AppendFloat32LE(s.tmp[:0], s.frames[:rendered])
	return copy(p, s.tmp), nil
}

func (s *stream) Seek(offset int64, whence int) (int64, error) {
	var frame int64
	switch whence {
	case io.SeekStart:
		frame = offset / frameSize
	case io.SeekCurrent:
		frame = s.mixer.Position() + offset/frameSize
	case io.SeekEnd:
		frame = s.mixer.Length() + offset/frameSize
	}
	s.mixer.Seek(frame)
	return s.mixer.Position() * frameSize, nil
}
