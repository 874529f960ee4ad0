// SPDX-FileCopyrightText: 2026 Vishwajeet Singh
//
// SPDX-License-Identifier: GPL-3.0-or-later

package vstp

import (
	"encoding/binary"

	"github.com/vishuRizz/vstp-demo/internal/vstperr"
)

// Encode serializes f to a contiguous byte string per §4.1.1. It performs
// no I/O and is deterministic: equal input (including header order)
// always produces byte-identical output.
//
// Encode fails with vstperr.ErrProtocolLimit (not *vstperr.FrameTooLarge,
// since the size in question is a header/value/header-section bound rather
// than the overall frame cap) if
// any header key or value exceeds HeaderFieldMax bytes, if the encoded
// header section would exceed HeaderLenMax bytes, or if the payload
// exceeds PayloadLenMax bytes.
func Encode(f Frame) ([]byte, error) {
	headerBytes, err := encodeHeaders(f.Headers)
	if err != nil {
		return nil, err
	}
	if len(headerBytes) > HeaderLenMax {
		return nil, vstperr.ErrProtocolLimit
	}
	if uint64(len(f.Payload)) > PayloadLenMax {
		return nil, vstperr.ErrProtocolLimit
	}

	total := FixedHeaderSize + len(headerBytes) + len(f.Payload) + CrcSize
	buf := make([]byte, 0, total)

	buf = append(buf, MagicByte0, MagicByte1)
	buf = append(buf, f.Version)
	buf = append(buf, byte(f.Type))
	buf = append(buf, byte(f.Flags.Known()))

	var hl [2]byte
	binary.LittleEndian.PutUint16(hl[:], uint16(len(headerBytes)))
	buf = append(buf, hl[:]...)

	var pl [4]byte
	binary.BigEndian.PutUint32(pl[:], uint32(len(f.Payload)))
	buf = append(buf, pl[:]...)

	buf = append(buf, headerBytes...)
	buf = append(buf, f.Payload...)

	crc := crcChecksum(buf)
	var crcBytes [4]byte
	binary.BigEndian.PutUint32(crcBytes[:], crc)
	buf = append(buf, crcBytes[:]...)

	return buf, nil
}

// HeaderSectionSize returns the encoded byte length of headers, the same
// value the codec would charge against HeaderLenMax. Callers that need to
// budget space around a header section (e.g. the fragmentation engine)
// use this instead of duplicating the encoding logic.
func HeaderSectionSize(headers Headers) (int, error) {
	b, err := encodeHeaders(headers)
	if err != nil {
		return 0, err
	}
	return len(b), nil
}

// encodeHeaders concatenates the tight key_len|value_len|key|value
// encoding of every header in order.
func encodeHeaders(headers Headers) ([]byte, error) {
	if len(headers) == 0 {
		return nil, nil
	}
	buf := make([]byte, 0, len(headers)*8)
	for _, h := range headers {
		if len(h.Key) > HeaderFieldMax || len(h.Value) > HeaderFieldMax {
			return nil, vstperr.ErrProtocolLimit
		}
		buf = append(buf, byte(len(h.Key)), byte(len(h.Value)))
		buf = append(buf, h.Key...)
		buf = append(buf, h.Value...)
	}
	return buf, nil
}

// DecodeResult is the outcome of a single Decode call.
type DecodeResult struct {
	// Frame is set when a complete frame was consumed.
	Frame Frame
	// Consumed is the number of bytes removed from the front of the
	// buffer on success.
	Consumed int
}

// Decode attempts to extract exactly one frame from the front of buf,
// which must hold at most maxFrameSize bytes of one frame's encoding.
// It implements the validation sequence of §4.1.3 exactly, short-circuiting
// in the documented order so that no allocation proportional to a
// declared length happens before that length is bounds-checked against
// maxFrameSize.
//
// Three outcomes are possible:
//   - (result, 0, nil): a complete, validated frame was found; the caller
//     must advance its buffer by result.Consumed bytes.
//   - (DecodeResult{}, 0, *vstperr.Incomplete): the buffer is not yet a
//     complete frame; the caller must not advance its buffer and should
//     append more bytes before retrying.
//   - (DecodeResult{}, skip, err) with err not an *Incomplete: decode
//     failed. skip is nonzero only when the framing itself is
//     unrecoverable (a bad magic at offset 0), in which case the caller
//     should advance past skip bytes before retrying; otherwise the buffer
//     is left untouched so the caller can decide how to resynchronize.
func Decode(buf []byte, maxFrameSize int) (DecodeResult, int, error) {
	if len(buf) < FixedHeaderSize {
		return DecodeResult{}, 0, &vstperr.Incomplete{Needed: FixedHeaderSize - len(buf)}
	}

	if buf[0] != MagicByte0 || buf[1] != MagicByte1 {
		// Framing is unrecoverable: skip the bad leading byte so a caller
		// retrying byte-by-byte can eventually resynchronize.
		return DecodeResult{}, 1, vstperr.ErrInvalidMagic
	}

	version := buf[2]
	if version != Version {
		return DecodeResult{}, 0, &vstperr.InvalidVersion{Expected: Version, Got: version}
	}

	headerLen := int(binary.LittleEndian.Uint16(buf[5:7]))
	payloadLen := int(binary.BigEndian.Uint32(buf[7:11]))

	total := FixedHeaderSize + headerLen + payloadLen + CrcSize
	if total > maxFrameSize {
		return DecodeResult{}, 0, &vstperr.FrameTooLarge{Size: uint64(total), Limit: uint64(maxFrameSize)}
	}
	if len(buf) < total {
		return DecodeResult{}, 0, &vstperr.Incomplete{Needed: total - len(buf)}
	}

	frameBytes := buf[:total]
	body := frameBytes[:total-CrcSize]
	expectedCRC := binary.BigEndian.Uint32(frameBytes[total-CrcSize:])
	gotCRC := crcChecksum(body)
	if gotCRC != expectedCRC {
		return DecodeResult{}, 0, &vstperr.CrcMismatch{Expected: expectedCRC, Got: gotCRC}
	}

	rawType := frameBytes[3]
	ft := Type(rawType)
	if !ft.Valid() {
		return DecodeResult{}, 0, &vstperr.InvalidFrameType{Type: rawType}
	}
	flags := Flags(frameBytes[4])

	headerSection := frameBytes[FixedHeaderSize : FixedHeaderSize+headerLen]
	headers, err := decodeHeaders(headerSection)
	if err != nil {
		return DecodeResult{}, 0, err
	}

	payload := make([]byte, payloadLen)
	copy(payload, frameBytes[FixedHeaderSize+headerLen:total-CrcSize])

	frame := Frame{
		Version: version,
		Type:    ft,
		Flags:   flags,
		Headers: headers,
		Payload: payload,
	}
	return DecodeResult{Frame: frame, Consumed: total}, 0, nil
}

// decodeHeaders walks section, which must hold exactly the declared
// header_length bytes, parsing key_len|value_len|key|value records until
// it is exhausted. Any overrun (a partial length byte or insufficient
// bytes for a declared key/value) is vstperr.ErrProtocolLimit.
func decodeHeaders(section []byte) (Headers, error) {
	if len(section) == 0 {
		return nil, nil
	}

	var headers Headers
	rest := section
	for len(rest) > 0 {
		if len(rest) < 2 {
			return nil, vstperr.ErrProtocolLimit
		}
		keyLen, valueLen := int(rest[0]), int(rest[1])
		end := 2 + keyLen + valueLen
		if len(rest) < end {
			return nil, vstperr.ErrProtocolLimit
		}
		headers = append(headers, Header{
			Key:   append([]byte(nil), rest[2:2+keyLen]...),
			Value: append([]byte(nil), rest[2+keyLen:end]...),
		})
		rest = rest[end:]
	}
	return headers, nil
}
