// Package vspipe wraps the external enhancement pipeline: a VapourSynth
// script streamed through vspipe into ffmpeg, which re-muxes the original
// audio, applies the optional watermark, and writes the boosted output file.
package vspipe
