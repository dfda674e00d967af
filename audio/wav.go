package audio

import (
	"bytes"
	"encoding/binary"
	"math"
)

const (
	wavHeaderSize = 44
	bitsPerSample = 16
)

// EncodeWAV writes the buffer as a canonical 16-bit little-endian mono RIFF
// container. The output is a deterministic function of the buffer: the same
// samples always produce byte-identical output. This never fails for a
// well-formed buffer.
func EncodeWAV(buf *Buffer) []byte {
	dataSize := len(buf.Samples) * bitsPerSample / 8
	out := bytes.NewBuffer(make([]byte, 0, wavHeaderSize+dataSize))

	byteRate := buf.SampleRate * bitsPerSample / 8
	blockAlign := bitsPerSample / 8

	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(36+dataSize))
	out.WriteString("WAVE")
	out.WriteString("fmt ")
	binary.Write(out, binary.LittleEndian, uint32(16))            // fmt chunk size
	binary.Write(out, binary.LittleEndian, uint16(1))             // PCM
	binary.Write(out, binary.LittleEndian, uint16(1))             // mono
	binary.Write(out, binary.LittleEndian, uint32(buf.SampleRate))
	binary.Write(out, binary.LittleEndian, uint32(byteRate))
	binary.Write(out, binary.LittleEndian, uint16(blockAlign))
	binary.Write(out, binary.LittleEndian, uint16(bitsPerSample))
	out.WriteString("data")
	binary.Write(out, binary.LittleEndian, uint32(dataSize))

	for _, s := range buf.Samples {
		binary.Write(out, binary.LittleEndian, Quantize(s))
	}
	return out.Bytes()
}

// Quantize converts a float sample to 16-bit signed PCM: clamp to [-1, 1],
// scale so +1.0 maps to 32767 and -1.0 to -32768, round half away from
// zero. No dithering.
func Quantize(s float64) int16 {
	if s > 1 {
		s = 1
	} else if s < -1 {
		s = -1
	}
	var scaled float64
	if s >= 0 {
		scaled = s * 32767
	} else {
		scaled = s * 32768
	}
	r := math.Floor(math.Abs(scaled) + 0.5)
	if scaled < 0 {
		r = -r
	}
	if r > 32767 {
		r = 32767
	} else if r < -32768 {
		r = -32768
	}
	return int16(r)
}
