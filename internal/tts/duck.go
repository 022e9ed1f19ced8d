package tts

import (
	"context"
	"fmt"
	"math"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"
)

var percentRe = regexp.MustCompile(`(\d+)\s*%`)

const (
	duckFactor   = 0.3
	duckMinVol   = 10
	fadeDuration = 150 * time.Millisecond
	fadeStep     = 10 * time.Millisecond
	maxVolume    = 150
)

type sinkInput struct {
	id     int
	volume int
	app    string
}

// Ducker lowers the volume of other applications' audio streams while the
// assistant speaks and restores them afterwards. Streams whose
// application.name matches selfNames are left alone.
type Ducker struct {
	selfNames []string

	mu       sync.Mutex
	active   bool
	original map[int]int // stream id -> volume % before ducking
}

func NewDucker(selfNames []string) *Ducker {
	return &Ducker{
		selfNames: append([]string(nil), selfNames...),
		original:  make(map[int]int),
	}
}

// Duck fades every foreign stream down to volume*duckFactor, clamped at
// duckMinVol. Idempotent while active.
func (d *Ducker) Duck(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.active {
		return nil
	}

	streams, err := listSinkInputs(ctx)
	if err != nil {
		return fmt.Errorf("list sink inputs: %w", err)
	}

	d.original = make(map[int]int)
	for _, s := range streams {
		if d.isSelf(s.app) {
			continue
		}

		target := float64(s.volume) * duckFactor
		if target < duckMinVol {
			target = duckMinVol
		}

		d.original[s.id] = s.volume
		if err := fade(ctx, s.id, s.volume, int(math.Round(target))); err != nil {
			return err
		}
	}

	d.active = true
	return nil
}

// Restore fades foreign streams back to their pre-duck volumes. Streams
// that appeared after ducking are left untouched.
func (d *Ducker) Restore(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if !d.active {
		return nil
	}

	streams, err := listSinkInputs(ctx)
	if err != nil {
		return fmt.Errorf("list sink inputs: %w", err)
	}

	for _, s := range streams {
		orig, ok := d.original[s.id]
		if !ok || d.isSelf(s.app) {
			continue
		}
		if err := fade(ctx, s.id, s.volume, orig); err != nil {
			return err
		}
	}

	d.original = make(map[int]int)
	d.active = false
	return nil
}

func (d *Ducker) isSelf(app string) bool {
	for _, name := range d.selfNames {
		if app == name {
			return true
		}
	}
	return false
}

// fade steps a single stream between volumes over fadeDuration.
func fade(ctx context.Context, id, from, to int) error {
	steps := int(fadeDuration / fadeStep)
	if steps < 1 {
		steps = 1
	}

	for i := 1; i <= steps; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		frac := float64(i) / float64(steps)
		v := int(math.Round(float64(from) + float64(to-from)*frac))
		if err := setSinkInputVolume(ctx, id, v); err != nil {
			return fmt.Errorf("set volume id=%d: %w", id, err)
		}

		if i < steps {
			time.Sleep(fadeStep)
		}
	}

	return nil
}

// --- pactl helpers ---

func listSinkInputs(ctx context.Context) ([]sinkInput, error) {
	out, err := exec.CommandContext(ctx, "pactl", "list", "sink-inputs").Output()
	if err != nil {
		return nil, fmt.Errorf("pactl list sink-inputs: %w", err)
	}

	blocks := strings.Split(string(out), "Sink Input #")
	var res []sinkInput

	for _, block := range blocks[min(1, len(blocks)):] {
		newline := strings.IndexByte(block, '\n')
		if newline <= 0 {
			continue
		}

		id, err := strconv.Atoi(strings.TrimSpace(block[:newline]))
		if err != nil {
			continue
		}

		s := sinkInput{id: id}
		for _, line := range strings.Split(block[newline+1:], "\n") {
			line = strings.TrimSpace(line)

			if strings.HasPrefix(line, "Volume:") && s.volume == 0 {
				if m := percentRe.FindStringSubmatch(line); len(m) >= 2 {
					if v, err := strconv.Atoi(m[1]); err == nil {
						s.volume = v
					}
				}
			}

			if strings.HasPrefix(line, "application.name =") && s.app == "" {
				if parts := strings.SplitN(line, "\"", 3); len(parts) >= 2 {
					s.app = parts[1]
				}
			}
		}

		if s.volume == 0 && s.app == "" {
			continue
		}
		res = append(res, s)
	}

	return res, nil
}

func setSinkInputVolume(ctx context.Context, id, percent int) error {
	if percent < 0 {
		percent = 0
	}
	if percent > maxVolume {
		percent = maxVolume
	}

	return exec.CommandContext(ctx, "pactl",
		"set-sink-input-volume", strconv.Itoa(id), fmt.Sprintf("%d%%", percent)).Run()
}
