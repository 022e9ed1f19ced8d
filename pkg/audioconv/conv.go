// Package audioconv decodes recorded audio blobs (wav, mp3, ogg-vorbis,
// ogg-opus) into the mono 16 kHz float32 PCM the speech-to-text engine
// expects.
package audioconv

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"
	"github.com/jfreymuth/oggvorbis"
	opus "github.com/pekim/opus"
)

const targetRate = 16000

type Options struct {
	// MaxSamples truncates the decoded signal; 0 means no limit.
	MaxSamples int
}

// DecodePCM16k decodes a complete audio blob. format is a hint ("wav",
// "mp3", "ogg"); when empty or unknown the container magic decides.
func DecodePCM16k(data []byte, format string, opt Options) ([]float32, error) {
	if len(data) == 0 {
		return nil, errors.New("empty audio data")
	}

	switch strings.ToLower(strings.TrimPrefix(format, ".")) {
	case "wav":
		return decodeWAV(bytes.NewReader(data), opt)
	case "mp3":
		return decodeMP3(bytes.NewReader(data), opt)
	case "ogg", "oga":
		return decodeOgg(data, opt)
	}

	// No usable hint; sniff the magic.
	if len(data) >= 4 {
		switch string(data[:4]) {
		case "RIFF":
			return decodeWAV(bytes.NewReader(data), opt)
		case "OggS":
			return decodeOgg(data, opt)
		}
	}
	if isMP3Header(data) {
		return decodeMP3(bytes.NewReader(data), opt)
	}

	return nil, fmt.Errorf("unsupported audio format %q", format)
}

func isMP3Header(data []byte) bool {
	if len(data) >= 3 && string(data[:3]) == "ID3" {
		return true
	}
	return len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0
}

func decodeWAV(r io.ReadSeeker, opt Options) ([]float32, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return nil, errors.New("invalid wav")
	}

	pb, err := dec.FullPCMBuffer()
	if err != nil {
		return nil, err
	}
	if pb == nil || pb.Data == nil {
		return nil, errors.New("empty wav")
	}

	bd := int(dec.BitDepth)
	if bd == 0 {
		bd = 16
	}
	x := intsToFloat32(pb.Data, bd)

	ch, sr := 1, 44100
	if pb.Format != nil {
		if pb.Format.NumChannels > 0 {
			ch = pb.Format.NumChannels
		}
		if pb.Format.SampleRate > 0 {
			sr = pb.Format.SampleRate
		}
	}

	return finish(x, ch, sr, opt), nil
}

func decodeMP3(r io.Reader, opt Options) ([]float32, error) {
	dec, err := mp3.NewDecoder(r)
	if err != nil {
		return nil, err
	}

	raw, err := io.ReadAll(dec)
	if err != nil {
		return nil, err
	}

	ints := make([]int16, len(raw)/2)
	for i := range ints {
		ints[i] = int16(raw[2*i]) | int16(raw[2*i+1])<<8
	}
	x := int16sToFloat32(ints)

	sr := dec.SampleRate()
	if sr <= 0 {
		sr = 44100
	}

	// The decoder always emits interleaved stereo.
	return finish(x, 2, sr, opt), nil
}

func decodeOgg(data []byte, opt Options) ([]float32, error) {
	if out, err := decodeOggVorbis(bytes.NewReader(data), opt); err == nil {
		return out, nil
	}
	out, err := decodeOggOpus(bytes.NewReader(data), opt)
	if err != nil {
		return nil, fmt.Errorf("cannot decode ogg as vorbis or opus: %w", err)
	}
	return out, nil
}

func decodeOggVorbis(r io.Reader, opt Options) ([]float32, error) {
	pcm, format, err := oggvorbis.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == nil || format.Channels <= 0 || format.SampleRate <= 0 {
		return nil, errors.New("invalid ogg/vorbis stream")
	}
	return finish(pcm, format.Channels, format.SampleRate, opt), nil
}

func decodeOggOpus(rs io.ReadSeeker, opt Options) ([]float32, error) {
	dec, err := opus.NewDecoder(rs)
	if err != nil {
		return nil, err
	}
	defer dec.Destroy()

	ch := dec.ChannelCount()
	if ch <= 0 {
		ch = 1
	}

	var (
		pcm48 []float32
		buf   = make([]int16, 48_000*ch/2) // ~0.5s per read
	)
	for {
		n, err := dec.Read(buf) // n = samples per channel
		if n > 0 {
			pcm48 = append(pcm48, int16sToFloat32(buf[:n*ch])...)
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}

	if len(pcm48) == 0 {
		return nil, errors.New("empty opus stream")
	}

	return finish(pcm48, ch, 48000, opt), nil
}

// finish downmixes, resamples to the target rate, and applies the sample
// limit.
func finish(x []float32, channels, sampleRate int, opt Options) []float32 {
	if channels > 1 {
		x = downmix(x, channels)
	}
	if sampleRate != targetRate {
		x = resample(x, sampleRate, targetRate)
	}
	if opt.MaxSamples > 0 && len(x) > opt.MaxSamples {
		x = x[:opt.MaxSamples]
	}
	return x
}

func intsToFloat32(data []int, bitDepth int) []float32 {
	out := make([]float32, len(data))
	scale := 1.0 / float64(int64(1)<<(bitDepth-1))
	for i, v := range data {
		out[i] = float32(clamp(float64(v)*scale, -1.0, 1.0))
	}
	return out
}

func int16sToFloat32(data []int16) []float32 {
	out := make([]float32, len(data))
	const scale = 1.0 / 32768.0
	for i, v := range data {
		out[i] = float32(float64(v) * scale)
	}
	return out
}

// downmix averages interleaved channels into mono.
func downmix(in []float32, channels int) []float32 {
	if channels <= 1 {
		return in
	}
	nFrames := len(in) / channels
	out := make([]float32, nFrames)
	for i := 0; i < nFrames; i++ {
		sum := 0.0
		base := i * channels
		for c := 0; c < channels; c++ {
			sum += float64(in[base+c])
		}
		out[i] = float32(sum / float64(channels))
	}
	return out
}

// resample does linear interpolation between rates; good enough for
// speech input.
func resample(in []float32, inSR, outSR int) []float32 {
	if inSR == outSR || len(in) == 0 {
		return in
	}
	ratio := float64(outSR) / float64(inSR)
	outN := int(math.Ceil(float64(len(in)) * ratio))
	out := make([]float32, outN)
	for i := 0; i < outN; i++ {
		src := float64(i) / ratio
		i0 := int(math.Floor(src))
		i1 := i0 + 1
		if i0 >= len(in) {
			out[i] = in[len(in)-1]
			continue
		}
		if i1 >= len(in) {
			out[i] = in[i0]
			continue
		}
		a := float32(src - float64(i0))
		out[i] = in[i0]*(1-a) + in[i1]*a
	}
	return out
}

func clamp(x, lo, hi float64) float64 {
	if x < lo {
		return lo
	}
	if x > hi {
		return hi
	}
	return x
}
