// Package wrtsnapshot implements spec §6's "Persisted state": a
// snapshot-section wire format carrying magic, version, a compression
// type, and per-substructure subsections for the stack, frames, globals,
// and memory of a paused wrtengine.Machine, so execution can suspend in
// one process and resume in another (or much later, in the same one) —
// distinct from internal/wrtengine.PauseState, which only ever round-trips
// within one live Machine's memory.
//
// Grounded on wrt-runtime/src/state/serialization.rs's StateSection/
// StateHeader/CompressionType layout: magic + version + section-type byte
// + compression-type byte + uncompressed-size + compressed-size, one
// section per subsystem named there (Meta, Stack, Frames, Globals,
// Memory). The Rust source's RLE codec is reproduced directly (byte-run
// encoding is a fixed, simple algorithm with one obviously-correct
// implementation — there is no ecosystem library this would plausibly
// reach for over a dozen lines of stdlib-only run-length coding).
package wrtsnapshot

import (
	"encoding/binary"
	"fmt"

	"github.com/pulseengine/wrt-go/internal/wrterror"
)

// stateMagic is this format's 4-byte magic, the Go-side analogue of the
// Rust source's STATE_MAGIC constant (a distinct literal, since this is a
// different implementation's on-disk format, not a wire-compatible port).
var stateMagic = [4]byte{'W', 'R', 'T', 'S'}

// stateVersion is bumped only if the section layout changes incompatibly.
const stateVersion uint32 = 1

// SectionType enumerates the subsections a Snapshot carries, in the order
// StateSection lists them in the original source.
type SectionType uint8

const (
	SectionMeta SectionType = iota
	SectionStack
	SectionFrames
	SectionGlobals
	SectionMemory
)

// CompressionType selects how a section's payload bytes are stored.
type CompressionType uint8

const (
	CompressionNone CompressionType = iota
	CompressionRLE
)

const headerSize = 4 + 4 + 1 + 1 + 4 + 4 // magic, version, section, compression, uncompressed size, compressed size

// encodeSection wraps payload (already-serialized subsection bytes) in one
// header-prefixed section, compressing with compression first.
func encodeSection(section SectionType, compression CompressionType, payload []byte) []byte {
	var compressed []byte
	switch compression {
	case CompressionRLE:
		compressed = rleEncode(payload)
	default:
		compressed = payload
	}

	out := make([]byte, 0, headerSize+len(compressed))
	out = append(out, stateMagic[:]...)
	out = binary.LittleEndian.AppendUint32(out, stateVersion)
	out = append(out, byte(section), byte(compression))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(payload)))
	out = binary.LittleEndian.AppendUint32(out, uint32(len(compressed)))
	out = append(out, compressed...)
	return out
}

// decodeSection parses one header-prefixed section from the front of data,
// returning the decompressed payload, the section type, and the number of
// bytes consumed (so a caller can walk a concatenation of sections).
func decodeSection(data []byte) (payload []byte, section SectionType, consumed int, err error) {
	if len(data) < headerSize {
		return nil, 0, 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "snapshot section header truncated")
	}
	if [4]byte(data[0:4]) != stateMagic {
		return nil, 0, 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "snapshot magic mismatch")
	}
	version := binary.LittleEndian.Uint32(data[4:8])
	if version != stateVersion {
		return nil, 0, 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotVersionMismatch, fmt.Sprintf("snapshot version %d, runtime expects %d", version, stateVersion))
	}
	section = SectionType(data[8])
	compression := CompressionType(data[9])
	uncompressedSize := binary.LittleEndian.Uint32(data[10:14])
	compressedSize := binary.LittleEndian.Uint32(data[14:18])

	end := headerSize + int(compressedSize)
	if len(data) < end {
		return nil, 0, 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "snapshot section payload truncated")
	}
	raw := data[headerSize:end]

	switch compression {
	case CompressionNone:
		payload = raw
	case CompressionRLE:
		payload, err = rleDecode(raw)
		if err != nil {
			return nil, 0, 0, err
		}
	default:
		return nil, 0, 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "unknown compression type")
	}
	if uint32(len(payload)) != uncompressedSize {
		return nil, 0, 0, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "decompressed size does not match header")
	}
	return payload, section, end, nil
}

// rleEncode runs a byte-run-length scheme: each run is (count byte, value
// byte) with count capped at 255, so a run longer than 255 splits into
// multiple (255, v) pairs followed by the remainder.
func rleEncode(data []byte) []byte {
	out := make([]byte, 0, len(data)/2+2)
	for i := 0; i < len(data); {
		v := data[i]
		run := 1
		for i+run < len(data) && data[i+run] == v && run < 255 {
			run++
		}
		out = append(out, byte(run), v)
		i += run
	}
	return out
}

func rleDecode(data []byte) ([]byte, error) {
	if len(data)%2 != 0 {
		return nil, wrterror.New(wrterror.CategoryParse, wrterror.CodeSnapshotCorrupt, "RLE stream has an odd length")
	}
	out := make([]byte, 0, len(data))
	for i := 0; i < len(data); i += 2 {
		count, v := data[i], data[i+1]
		for j := byte(0); j < count; j++ {
			out = append(out, v)
		}
	}
	return out, nil
}
