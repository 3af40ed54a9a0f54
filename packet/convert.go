package packet

import (
	"encoding/base64"
	"fmt"
	"sort"
	"time"
)

// ToNetwork converts encoded_metadata to its wire-safe form. Pure, total.
func (m EncodedMetadata) ToNetwork() NetworkMetadata {
	return NetworkMetadata{
		CodecName:  m.CodecName,
		Base64Data: base64.StdEncoding.EncodeToString(m.CodecData),
	}
}

// NetworkMetadataToEncoded reverses EncodedMetadata.ToNetwork.
func NetworkMetadataToEncoded(m NetworkMetadata) (EncodedMetadata, error) {
	raw, err := base64.StdEncoding.DecodeString(m.Base64Data)
	if err != nil {
		return EncodedMetadata{}, Wrap(KindFrameGenerationError, "packet", "NetworkMetadataToEncoded", err)
	}
	return EncodedMetadata{CodecName: m.CodecName, CodecData: raw}, nil
}

// ToNetwork splits an EncodedFrame into one or more NetworkFrame chunks, each
// carrying at most MaxPayloadSize base64 characters. t is stamped on every
// resulting chunk (pass time.Now() for live frames, or a fixed instant for
// deterministic tests/replay).
func (f EncodedFrame) ToNetwork(t time.Time) []NetworkFrame {
	encoded := base64.StdEncoding.EncodeToString(f.Data)

	chunks := (len(encoded) + MaxPayloadSize - 1) / MaxPayloadSize
	if chunks == 0 {
		chunks = 1
	}

	out := make([]NetworkFrame, 0, chunks)
	for i := 0; i < chunks; i++ {
		start := i * MaxPayloadSize
		end := start + MaxPayloadSize
		if end > len(encoded) {
			end = len(encoded)
		}
		out = append(out, NetworkFrame{
			Base64Data: encoded[start:end],
			ID:         f.ID,
			T:          t,
			Chunk:      uint32(i + 1),
			Chunks:     uint32(chunks),
		})
	}
	return out
}

// ReassembleFrame groups a batch of NetworkFrame chunks (all sharing one ID)
// back into the original EncodedFrame. It fails if the chunk set is not
// exactly {1, ..., chunks}, if members disagree on chunks or ID, or if the
// base64 concatenation fails to decode. T is not compared: the result's
// CreationTime is the T of chunk 1.
func ReassembleFrame(parts []NetworkFrame) (EncodedFrame, error) {
	if len(parts) == 0 {
		return EncodedFrame{}, Wrap(KindFrameGenerationError, "packet", "ReassembleFrame",
			fmt.Errorf("empty chunk set"))
	}

	sorted := make([]NetworkFrame, len(parts))
	copy(sorted, parts)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Chunk < sorted[j].Chunk })

	want := sorted[0].Chunks
	id := sorted[0].ID
	t := sorted[0].T

	if uint32(len(sorted)) != want {
		return EncodedFrame{}, Wrap(KindFrameGenerationError, "packet", "ReassembleFrame",
			fmt.Errorf("expected %d chunks, got %d", want, len(sorted)))
	}

	var sb []byte
	for i, p := range sorted {
		if p.Chunks != want {
			return EncodedFrame{}, Wrap(KindFrameGenerationError, "packet", "ReassembleFrame",
				fmt.Errorf("chunk %d reports chunks=%d, expected %d", p.Chunk, p.Chunks, want))
		}
		if p.ID != id {
			return EncodedFrame{}, Wrap(KindFrameGenerationError, "packet", "ReassembleFrame",
				fmt.Errorf("chunk %d has mismatched id %v, expected %v", p.Chunk, p.ID, id))
		}
		if p.Chunk != uint32(i+1) {
			return EncodedFrame{}, Wrap(KindFrameGenerationError, "packet", "ReassembleFrame",
				fmt.Errorf("missing or duplicate chunk: expected chunk %d, got %d", i+1, p.Chunk))
		}
		sb = append(sb, p.Base64Data...)
	}

	data, err := base64.StdEncoding.DecodeString(string(sb))
	if err != nil {
		return EncodedFrame{}, Wrap(KindFrameGenerationError, "packet", "ReassembleFrame", err)
	}

	return EncodedFrame{Data: data, ID: id, CreationTime: t}, nil
}
