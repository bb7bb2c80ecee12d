package hal

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/veandco/go-sdl2/sdl"
)

const (
	sampleRate = 44100
	amplitude  = 8000
)

// beeper plays a looping square wave through an SDL audio queue.
type beeper struct {
	device  sdl.AudioDeviceID
	wave    []byte // one second of samples, a whole number of periods
	pos     int
	chunk   int // bytes queued per top-up
	playing bool
}

func newBeeper(frequency int, volume float64) (*beeper, error) {
	want := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S16LSB,
		Channels: 1,
		Samples:  1024,
	}

	device, err := sdl.OpenAudioDevice("", false, want, nil, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open sdl audio device: %w", err)
	}
	slog.Debug("hal: open audio", "device", device, "frequency", frequency)

	sdl.PauseAudioDevice(device, false)

	return &beeper{
		device: device,
		wave:   squareWave(sampleRate, frequency, int16(float64(amplitude)*volume)),
		chunk:  2 * sampleRate / 30,
	}, nil
}

func squareWave(rate, frequency int, amp int16) []byte {
	buf := make([]byte, 2*rate)
	samplesPerCycle := float64(rate) / float64(frequency)

	for i := 0; i < rate; i++ {
		v := amp
		phase := float64(i) - float64(int(float64(i)/samplesPerCycle))*samplesPerCycle
		if phase >= samplesPerCycle/2 {
			v = -amp
		}
		binary.LittleEndian.PutUint16(buf[2*i:], uint16(v))
	}

	return buf
}

// Set starts or stops the tone. While on, it keeps about two frames of audio
// queued.
func (b *beeper) Set(on bool) error {
	if !on {
		if b.playing {
			sdl.ClearQueuedAudio(b.device)
			b.playing = false
		}
		return nil
	}

	b.playing = true
	for int(sdl.GetQueuedAudioSize(b.device)) < b.chunk {
		end := b.pos + b.chunk
		if end > len(b.wave) {
			end = len(b.wave)
		}

		if err := sdl.QueueAudio(b.device, b.wave[b.pos:end]); err != nil {
			return fmt.Errorf("failed to queue sdl audio: %w", err)
		}

		b.pos = end % len(b.wave)
	}

	return nil
}

func (b *beeper) Close() {
	sdl.CloseAudioDevice(b.device)
}
