package seqio

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format is a sequence file format.
type Format string

// Recognized formats.
const (
	FormatAuto  Format = ""
	FormatFASTQ Format = "fastq"
	FormatFASTA Format = "fasta"
	FormatSAM   Format = "sam"
)

// ErrUnknownFileType is returned when a format can be determined neither from a
// hint, the file name, nor its content.
var ErrUnknownFileType = errors.New("unknown file type")

var extensionFormats = map[string]Format{
	".fastq":   FormatFASTQ,
	".fq":      FormatFASTQ,
	".csfastq": FormatFASTQ,
	".csfq":    FormatFASTQ,
	".fasta":   FormatFASTA,
	".fa":      FormatFASTA,
	".fna":     FormatFASTA,
	".seq":     FormatFASTA,
	".csfasta": FormatFASTA,
	".csfa":    FormatFASTA,
	".sam":     FormatSAM,
}

// ParseFormat validates a user supplied format hint. The empty string and
// "auto" both mean detection.
func ParseFormat(hint string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(hint))); f {
	case FormatAuto, "auto":
		return FormatAuto, nil
	case FormatFASTQ, FormatFASTA, FormatSAM:
		return f, nil
	}

	return FormatAuto, fmt.Errorf("%w: %q", ErrUnknownFileType, hint)
}

// FormatFromPath guesses the format from the file extension, ignoring any
// compression suffix.
func FormatFromPath(path string) Format {
	ext := strings.ToLower(filepath.Ext(StripCompressionSuffix(path)))

	return extensionFormats[ext]
}

var samHeaderTags = [][]byte{[]byte("@HD\t"), []byte("@SQ\t"), []byte("@RG\t"), []byte("@PG\t"), []byte("@CO\t")}

const samMandatoryFields = 11

// sniffFormat inspects the first non-blank line buffered in br without
// consuming it.
func sniffFormat(br *bufio.Reader) Format {
	head, _ := br.Peek(br.Size())
	head = bytes.TrimLeft(head, " \t\r\n")

	if len(head) == 0 {
		return FormatAuto
	}

	line, _, _ := bytes.Cut(head, []byte("\n"))

	switch head[0] {
	case '>':
		return FormatFASTA
	case '@':
		for _, tag := range samHeaderTags {
			if bytes.HasPrefix(line, tag) {
				return FormatSAM
			}
		}

		return FormatFASTQ
	}

	if bytes.Count(line, []byte("\t")) >= samMandatoryFields-1 {
		return FormatSAM
	}

	return FormatAuto
}

// resolveFormat applies the hint, then the extension, then content sniffing.
func resolveFormat(hint Format, path string, br *bufio.Reader) (Format, error) {
	if hint != FormatAuto {
		return hint, nil
	}

	if f := FormatFromPath(path); f != FormatAuto {
		return f, nil
	}

	if f := sniffFormat(br); f != FormatAuto {
		return f, nil
	}

	return FormatAuto, fmt.Errorf("%w: %s", ErrUnknownFileType, path)
}
