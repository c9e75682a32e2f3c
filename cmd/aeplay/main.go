// SPDX-License-Identifier: EPL-2.0

// aeplay plays audio files through the engine on the default audio device.
// It drives the same decode → scale → resample → ring path the embedded
// integration uses, with oto consuming the ring in place of the DMA codec.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/emb-audio/audioengine"
	"github.com/emb-audio/audioengine/hw"
	"github.com/emb-audio/audioengine/manager"
)

var (
	flagRate    int
	flagVolume  int
	flagVerbose bool
)

func main() {
	root := &cobra.Command{
		Use:   "aeplay FILE...",
		Short: "Play audio files through the playback engine",
		Args:  cobra.MinimumNArgs(1),
		RunE:  run,
	}
	root.Flags().IntVar(&flagRate, "rate", 48000, "output sample rate in Hz")
	root.Flags().IntVar(&flagVolume, "volume", 7, "player volume (0..10)")
	root.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "debug logging")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

// ringReader adapts the engine's sample ring to the byte stream oto pulls.
// An underrun plays silence rather than stalling the device.
type ringReader struct {
	ring *hw.Ring
	tmp  []int16
}

func (r *ringReader) Read(p []byte) (int, error) {
	samples := len(p) / 2
	if cap(r.tmp) < samples {
		r.tmp = make([]int16, samples)
	}
	n := r.ring.Consume(r.tmp[:samples])
	for i := 0; i < n; i++ {
		p[i*2] = byte(uint16(r.tmp[i]))
		p[i*2+1] = byte(uint16(r.tmp[i]) >> 8)
	}
	for i := n * 2; i < samples*2; i++ {
		p[i] = 0
	}
	return samples * 2, nil
}

func run(cmd *cobra.Command, args []string) error {
	level := zerolog.WarnLevel
	if flagVerbose {
		level = zerolog.DebugLevel
	}
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(level).
		With().Timestamp().Str("component", "aeplay").Logger()

	eng := audioengine.NewEngineExternal(log)
	defer eng.Close()
	mgr := eng.Manager()
	mgr.SetSampleRate(flagRate)
	mgr.SetVolume(manager.SrcPlayer, flagVolume)

	ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   flagRate,
		ChannelCount: 1,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	player := ctx.NewPlayer(&ringReader{ring: eng.Ring()})
	player.Play()
	defer player.Close()

	for _, path := range args {
		mgr.AddFile(path, 0, manager.OutputFront)
	}
	mgr.Play()

	// Poll until the whole queue played out.
	started := false
	for {
		time.Sleep(200 * time.Millisecond)
		st := mgr.PlayerStatus()
		if st.Playing {
			started = true
			fmt.Printf("\r%-40s %3ds/%3ds %3d%%", st.Filename, st.Position, st.Duration, st.Percent)
			continue
		}
		if started && !st.Paused && mgr.QueueLen() == 0 {
			break
		}
	}
	fmt.Println()

	// Let the device drain the tail of the ring.
	for eng.Ring().Used() > 0 {
		time.Sleep(50 * time.Millisecond)
	}
	return nil
}
