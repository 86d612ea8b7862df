// SPDX-License-Identifier: MPL-2.0

// Package sizeinfo measures bundle sizes as shipped over the wire.
package sizeinfo

import (
	"bytes"
	"fmt"
	"io"

	"github.com/andybalholm/brotli"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/klauspost/compress/gzip"
)

const (
	// exactBelow is the size under which byte counts are printed exactly.
	exactBelow = 5000
	// smallBelow and largeAbove bound the amber size band.
	smallBelow = 75000
	largeAbove = 175000
)

var (
	smallStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#10B981"))
	mediumStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#F59E0B"))
	largeStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#EF4444"))
)

// Info holds the sizes of one bundle.
type Info struct {
	// File is the display name of the bundle.
	File string
	// Size is the raw byte size.
	Size int
	// Gzip and Brotli are the compressed sizes; zero when compression failed.
	Gzip   int
	Brotli int
}

// Measure computes the raw, gzip and brotli sizes of code. Compression
// failures leave the corresponding size at zero.
func Measure(file string, code []byte) Info {
	info := Info{File: file, Size: len(code)}
	if n, err := gzipSize(code); err == nil {
		info.Gzip = n
	}
	if n, err := brotliSize(code); err == nil {
		info.Brotli = n
	}
	return info
}

// FormatSize renders size as "N B" below 5000 bytes and in SI units above.
// With raw set the exact byte count is always used.
func FormatSize(size int, raw bool) string {
	if raw || size < exactBelow {
		return fmt.Sprintf("%d B", size)
	}
	return humanize.Bytes(uint64(size))
}

// Style returns the color band of size: green below 75 kB, red above
// 175 kB and amber in between.
func Style(size int) lipgloss.Style {
	switch {
	case size < smallBelow:
		return smallStyle
	case size > largeAbove:
		return largeStyle
	default:
		return mediumStyle
	}
}

// Base renders "file (size)".
func (i Info) Base(raw bool) string {
	return fmt.Sprintf("%s (%s)", i.File, Style(i.Size).Render(FormatSize(i.Size, raw)))
}

// GzipLine renders "gzip: size", or "" when unknown.
func (i Info) GzipLine(raw bool) string { return typed("gzip", i.Gzip, raw) }

// BrotliLine renders "brotli: size", or "" when unknown.
func (i Info) BrotliLine(raw bool) string { return typed("brotli", i.Brotli, raw) }

func typed(kind string, size int, raw bool) string {
	if size == 0 {
		return ""
	}
	return fmt.Sprintf("%s: %s", kind, Style(size).Render(FormatSize(size, raw)))
}

func gzipSize(code []byte) (int, error) {
	var buf bytes.Buffer
	w, err := gzip.NewWriterLevel(&buf, gzip.BestCompression)
	if err != nil {
		return 0, err
	}
	return compressed(w, &buf, code)
}

func brotliSize(code []byte) (int, error) {
	var buf bytes.Buffer
	return compressed(brotli.NewWriterLevel(&buf, brotli.BestCompression), &buf, code)
}

func compressed(w io.WriteCloser, buf *bytes.Buffer, code []byte) (int, error) {
	if _, err := w.Write(code); err != nil {
		return 0, err
	}
	if err := w.Close(); err != nil {
		return 0, err
	}
	return buf.Len(), nil
}
