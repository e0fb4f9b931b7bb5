package bank

import (
	"bytes"
	"encoding/binary"
)

// makeWAV builds a 16-bit PCM stereo WAV file from frames.
func makeWAV(frames [][2]int16, rate int) []byte {
	var buf bytes.Buffer
	dataLen := uint32(len(frames) * 4)

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, 36+dataLen)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(2)) // channels
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*4))
	binary.Write(&buf, binary.LittleEndian, uint16(4))
	binary.Write(&buf, binary.LittleEndian, uint16(16))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, dataLen)
	for _, f := range frames {
		binary.Write(&buf, binary.LittleEndian, f[0])
		binary.Write(&buf, binary.LittleEndian, f[1])
	}
	return buf.Bytes()
}

// constSample returns a sample of n frames all equal to v.
func constSample(n int, v float32) *Sample {
	data := make([]float32, n*2)
	for i := range data {
		data[i] = v
	}
	return NewSample(data, DefaultSampleRate)
}
