package recorder

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
)

const (
	wavSampleRate  = 16000
	wavHeaderSize  = 44
	wavNumChannels = 1
	wavBitsPerSamp = 16
)

// wavWriter streams 16-bit mono PCM into a RIFF file. The header is
// written with placeholder sizes and patched on Close.
type wavWriter struct {
	f       *os.File
	samples int64
}

func newWAVWriter(path string) (*wavWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create wav file: %w", err)
	}
	w := &wavWriter{f: f}
	if err := w.writeHeader(0); err != nil {
		f.Close()
		os.Remove(path)
		return nil, err
	}
	return w, nil
}

func (w *wavWriter) writeHeader(dataSize uint32) error {
	var header [wavHeaderSize]byte
	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")
	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], 1) // PCM
	binary.LittleEndian.PutUint16(header[22:24], wavNumChannels)
	binary.LittleEndian.PutUint32(header[24:28], wavSampleRate)
	binary.LittleEndian.PutUint32(header[28:32], wavSampleRate*wavNumChannels*wavBitsPerSamp/8)
	binary.LittleEndian.PutUint16(header[32:34], wavNumChannels*wavBitsPerSamp/8)
	binary.LittleEndian.PutUint16(header[34:36], wavBitsPerSamp)
	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	if _, err := w.f.WriteAt(header[:], 0); err != nil {
		return fmt.Errorf("write wav header: %w", err)
	}
	return nil
}

func (w *wavWriter) WriteSamples(samples []int16) error {
	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(buf[i*2:], uint16(s))
	}
	offset := wavHeaderSize + w.samples*2
	if _, err := w.f.WriteAt(buf, offset); err != nil {
		return fmt.Errorf("write wav samples: %w", err)
	}
	w.samples += int64(len(samples))
	return nil
}

func (w *wavWriter) SampleCount() int64 { return w.samples }

func (w *wavWriter) Close() error {
	if err := w.writeHeader(uint32(w.samples * 2)); err != nil {
		w.f.Close()
		return err
	}
	return w.f.Close()
}

// readWAVSamples loads the data chunk of a 16-bit PCM WAV file.
func readWAVSamples(path string) ([]int16, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav file: %w", err)
	}
	defer f.Close()

	header := make([]byte, 12)
	if _, err := io.ReadFull(f, header); err != nil {
		return nil, fmt.Errorf("read wav header: %w", err)
	}
	if string(header[0:4]) != "RIFF" || string(header[8:12]) != "WAVE" {
		return nil, fmt.Errorf("%s is not a wav file", path)
	}

	chunk := make([]byte, 8)
	for {
		if _, err := io.ReadFull(f, chunk); err != nil {
			return nil, fmt.Errorf("read wav chunk: %w", err)
		}
		size := binary.LittleEndian.Uint32(chunk[4:8])
		if string(chunk[0:4]) != "data" {
			if _, err := f.Seek(int64(size), io.SeekCurrent); err != nil {
				return nil, fmt.Errorf("seek wav chunk: %w", err)
			}
			continue
		}
		data := make([]byte, size)
		if _, err := io.ReadFull(f, data); err != nil {
			return nil, fmt.Errorf("read wav data: %w", err)
		}
		samples := make([]int16, size/2)
		for i := range samples {
			samples[i] = int16(binary.LittleEndian.Uint16(data[i*2:]))
		}
		return samples, nil
	}
}

// mixWAVFiles sums two recordings sample-wise with clamping and writes the
// result. The longer input determines the output length.
func mixWAVFiles(aPath, bPath, outPath string) error {
	a, err := readWAVSamples(aPath)
	if err != nil {
		return err
	}
	b, err := readWAVSamples(bPath)
	if err != nil {
		return err
	}
	n := len(a)
	if len(b) > n {
		n = len(b)
	}
	mixed := make([]int16, n)
	for i := range mixed {
		var sum int32
		if i < len(a) {
			sum += int32(a[i])
		}
		if i < len(b) {
			sum += int32(b[i])
		}
		if sum > 32767 {
			sum = 32767
		}
		if sum < -32768 {
			sum = -32768
		}
		mixed[i] = int16(sum)
	}

	w, err := newWAVWriter(outPath)
	if err != nil {
		return err
	}
	if err := w.WriteSamples(mixed); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
