package source

import (
	"bufio"
	"encoding/binary"
	"io"
	"os"

	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/stream"
)

// ReplayLog is the collaborator a network-replay source reads recorded
// network_packet documents from, in original recording order.
// transport/replaylog implements this over Redis; NewNetworkReplayFile
// below implements it directly over a local file for the original
// spec.md/original_source file-backed replay use case.
type ReplayLog interface {
	// Next returns the next recorded document, or io.EOF when exhausted.
	Next() ([]byte, error)
	SeekToStart() error
	Close() error
}

// NewNetworkReplay builds a stream.Publisher[packet.Network] that replays
// previously recorded network_packet documents from log, following the same
// lazy-init / EOF / error / teardown skeleton as the codec-backed sources
// (there is no separate metadata-first step here: metadata documents are
// simply the first records in the log, recorded as such).
func NewNetworkReplay(log ReplayLog, loop bool) stream.Publisher[packet.Network] {
	return stream.Stateful[packet.Network, *replayState](
		func() *replayState { return &replayState{log: log, loop: loop} },
		generateReplay,
		func(st *replayState) { _ = st.log.Close() },
	)
}

type replayState struct {
	log  ReplayLog
	loop bool
}

func generateReplay(st *replayState, n int, obs stream.Observer[packet.Network]) {
	emitted := 0
	for emitted < n {
		raw, err := st.log.Next()
		if err != nil {
			if err == io.EOF {
				if st.loop {
					if serr := st.log.SeekToStart(); serr != nil {
						obs.OnError(packet.Wrap(packet.KindStreamInitializationError, "source.network_replay", "seek_to_start", serr))
						return
					}
					continue
				}
				obs.OnComplete()
				return
			}
			obs.OnError(packet.Wrap(packet.KindFrameGenerationError, "source.network_replay", "read", err))
			return
		}
		pkt, err := decodeNetworkPacket(raw)
		if err != nil {
			obs.OnError(packet.Wrap(packet.KindFrameGenerationError, "source.network_replay", "decode", err))
			return
		}
		obs.OnNext(pkt)
		emitted++
	}
}

// fileReplayLog implements ReplayLog over a local file containing
// length-prefixed msgpack documents (4-byte big-endian length, then that
// many bytes), the format the original_source file-backed replay produces.
type fileReplayLog struct {
	path string
	f    *os.File
	r    *bufio.Reader
}

// NewNetworkReplayFile opens path as a length-prefixed record file for
// network-replay. It is kept alongside the Redis-backed transport/replaylog
// implementation since spec.md's Non-goals do not exclude the file-backed
// form the original implementation used.
func NewNetworkReplayFile(path string) (ReplayLog, error) {
	l := &fileReplayLog{path: path}
	if err := l.open(); err != nil {
		return nil, err
	}
	return l, nil
}

func (l *fileReplayLog) open() error {
	f, err := os.Open(l.path)
	if err != nil {
		return err
	}
	l.f = f
	l.r = bufio.NewReader(f)
	return nil
}

func (l *fileReplayLog) Next() ([]byte, error) {
	var length uint32
	if err := binary.Read(l.r, binary.BigEndian, &length); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, err
	}
	buf := make([]byte, length)
	if _, err := io.ReadFull(l.r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}

func (l *fileReplayLog) SeekToStart() error {
	if _, err := l.f.Seek(0, io.SeekStart); err != nil {
		return err
	}
	l.r = bufio.NewReader(l.f)
	return nil
}

func (l *fileReplayLog) Close() error {
	return l.f.Close()
}
