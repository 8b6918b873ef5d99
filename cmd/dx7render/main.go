// Command dx7render renders a single note from a DX7 bank or voice
// SysEx dump to a WAV file.
package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/pflag"

	dx7 "github.com/cbegin/dx7fm-go"
)

func main() {
	var (
		bankPath   = pflag.StringP("bank", "b", "", "path to a 4104-byte bank SysEx dump")
		voicePath  = pflag.StringP("voice", "v", "", "path to a 128-byte single-voice SysEx dump")
		patchIndex = pflag.IntP("patch", "p", 0, "patch index within a bank (0..31)")
		note       = pflag.Float64P("note", "n", 60, "MIDI note number")
		sampleRate = pflag.Float64P("sample-rate", "r", 48000, "output sample rate")
		durationMS = pflag.Float64P("duration", "d", 500, "gate-on duration in milliseconds")
		outPath    = pflag.StringP("out", "o", "out.wav", "output WAV path")
	)
	pflag.Parse()

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: false})

	patch, err := loadPatch(*bankPath, *voicePath, *patchIndex)
	if err != nil {
		logger.Fatal("load patch", "err", err)
	}
	logger.Info("rendering", "patch", patch.Name, "algorithm", patch.Algorithm+1, "note", *note, "duration_ms", *durationMS)

	samples := dx7.GenerateSamples(patch, *note, *sampleRate, *durationMS)
	wav := dx7.EncodeWAVFloat32LE(samples, int(*sampleRate), 1)

	if err := os.WriteFile(*outPath, wav, 0o644); err != nil {
		logger.Fatal("write wav", "err", err)
	}
	logger.Info("wrote wav", "path", *outPath, "samples", len(samples))
}

func loadPatch(bankPath, voicePath string, patchIndex int) (dx7.Patch, error) {
	switch {
	case voicePath != "":
		data, err := os.ReadFile(voicePath)
		if err != nil {
			return dx7.Patch{}, err
		}
		return dx7.DecodePatch(data)
	case bankPath != "":
		data, err := os.ReadFile(bankPath)
		if err != nil {
			return dx7.Patch{}, err
		}
		bank, err := dx7.DecodeBank(data)
		if err != nil {
			return dx7.Patch{}, err
		}
		if patchIndex < 0 || patchIndex >= len(bank) {
			return dx7.Patch{}, fmt.Errorf("dx7render: patch index %d out of range 0..%d", patchIndex, len(bank)-1)
		}
		return bank[patchIndex], nil
	default:
		return dx7.Patch{}, fmt.Errorf("dx7render: one of --bank or --voice is required")
	}
}
