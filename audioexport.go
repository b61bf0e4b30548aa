package timeline

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"
)

// ErrOddRawLength is returned by ReadRaw when the data is not a whole number
// of stereo float32 frames.
var ErrOddRawLength = errors.New("raw audio length is not a multiple of 8 bytes")

// Wav encodes the buffer as a stereo .wav file, either as float32 or, if
// pcm16 is set, as 16-bit integers.
func (b AudioBuffer) Wav(sampleRate int, pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	wavHeader(len(b)*2, sampleRate, pcm16, buf)
	if err := rawToBuffer(b, pcm16, buf); err != nil {
		return nil, fmt.Errorf("Wav failed: %w", err)
	}
	return buf.Bytes(), nil
}

// Raw encodes the buffer as interleaved little-endian samples without a
// header.
func (b AudioBuffer) Raw(pcm16 bool) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := rawToBuffer(b, pcm16, buf); err != nil {
		return nil, fmt.Errorf("Raw failed: %w", err)
	}
	return buf.Bytes(), nil
}

// ReadRaw decodes interleaved little-endian float32 stereo frames, the format
// Raw(false) produces.
func ReadRaw(data []byte) (AudioBuffer, error) {
	if len(data)%8 != 0 {
		return nil, ErrOddRawLength
	}
	ret := make(AudioBuffer, len(data)/8)
	if err := binary.Read(bytes.NewReader(data), binary.LittleEndian, ret); err != nil {
		return nil, fmt.Errorf("could not decode raw audio: %w", err)
	}
	return ret, nil
}

func rawToBuffer(data AudioBuffer, pcm16 bool, buf *bytes.Buffer) error {
	var err error
	if pcm16 {
		int16data := make([][2]int16, len(data))
		for i, v := range data {
			int16data[i][0] = toInt16(v[0])
			int16data[i][1] = toInt16(v[1])
		}
		err = binary.Write(buf, binary.LittleEndian, int16data)
	} else {
		err = binary.Write(buf, binary.LittleEndian, data)
	}
	if err != nil {
		return fmt.Errorf("could not binary write data to binary buffer: %w", err)
	}
	return nil
}

func toInt16(v float32) int16 {
	return int16(max(min(int(v*math.MaxInt16), math.MaxInt16), math.MinInt16))
}

// wavHeader writes the header of a stereo .wav file holding bufferLength
// samples (L and R counted separately), for int16 data if pcm16 is set and
// float32 data otherwise.
func wavHeader(bufferLength, sampleRate int, pcm16 bool, buf *bytes.Buffer) {
	// Refer to: http://www-mmsp.ece.mcgill.ca/Documents/AudioFormats/WAVE/WAVE.html
	numChannels := 2
	var bytesPerSample, chunkSize, fmtChunkSize, waveFormat int
	var factChunk bool
	if pcm16 {
		bytesPerSample = 2
		chunkSize = 36 + bytesPerSample*bufferLength
		fmtChunkSize = 16
		waveFormat = 1 // PCM
	} else {
		bytesPerSample = 4
		chunkSize = 50 + bytesPerSample*bufferLength
		fmtChunkSize = 18
		waveFormat = 3 // IEEE float
		factChunk = true
	}
	buf.Write([]byte("RIFF"))
	binary.Write(buf, binary.LittleEndian, uint32(chunkSize))
	buf.Write([]byte("WAVE"))
	buf.Write([]byte("fmt "))
	binary.Write(buf, binary.LittleEndian, uint32(fmtChunkSize))
	binary.Write(buf, binary.LittleEndian, uint16(waveFormat))
	binary.Write(buf, binary.LittleEndian, uint16(numChannels))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	binary.Write(buf, binary.LittleEndian, uint32(sampleRate*numChannels*bytesPerSample)) // avgBytesPerSec
	binary.Write(buf, binary.LittleEndian, uint16(numChannels*bytesPerSample))            // blockAlign
	binary.Write(buf, binary.LittleEndian, uint16(8*bytesPerSample))                      // bits per sample
	if fmtChunkSize > 16 {
		binary.Write(buf, binary.LittleEndian, uint16(0)) // size of extension
	}
	if factChunk {
		buf.Write([]byte("fact"))
		binary.Write(buf, binary.LittleEndian, uint32(4))              // fact chunk size
		binary.Write(buf, binary.LittleEndian, uint32(bufferLength/2)) // length in frames
	}
	buf.Write([]byte("data"))
	binary.Write(buf, binary.LittleEndian, uint32(bytesPerSample*bufferLength))
}
