// Command replay-tui is an operator tool for stepping through a recorded
// network-replay log one record at a time, grounded on
// pithecene-io-quarry/quarry/cli/tui's Bubble Tea inspect views and on this
// module's own source.NewNetworkReplay/transport/replaylog collaborators.
package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/redis/go-redis/v9"

	"github.com/satori-video/streams/packet"
	"github.com/satori-video/streams/source"
	"github.com/satori-video/streams/stream"
	"github.com/satori-video/streams/transport/replaylog"
)

var (
	version = "v0.1.0"
)

func main() {
	filePath := flag.String("file", "", "path to a length-prefixed network-replay file")
	redisURL := flag.String("redis-url", "", "Redis URL backing a transport/replaylog.Log")
	redisKey := flag.String("redis-key", "", "Redis list key to replay (required with --redis-url)")
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("replay-tui %s\n", version)
		os.Exit(0)
	}

	log, label, err := openReplayLog(*filePath, *redisURL, *redisKey)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay-tui:", err)
		os.Exit(1)
	}
	defer log.Close()

	records, err := loadRecords(log)
	if err != nil {
		fmt.Fprintln(os.Stderr, "replay-tui: reading log:", err)
		os.Exit(1)
	}

	p := tea.NewProgram(newModel(label, records), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		fmt.Fprintln(os.Stderr, "replay-tui:", err)
		os.Exit(1)
	}
}

func openReplayLog(filePath, redisURL, redisKey string) (source.ReplayLog, string, error) {
	switch {
	case filePath != "":
		log, err := source.NewNetworkReplayFile(filePath)
		return log, filePath, err
	case redisURL != "":
		if redisKey == "" {
			return nil, "", fmt.Errorf("--redis-key is required with --redis-url")
		}
		opts, err := redis.ParseURL(redisURL)
		if err != nil {
			return nil, "", fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		return replaylog.New(client, redisKey), redisKey, nil
	default:
		return nil, "", fmt.Errorf("one of --file or --redis-url/--redis-key is required")
	}
}

// loadRecords drains the entire replay log into memory up front: the TUI
// navigates back and forth over a recording, which source.ReplayLog's
// forward-only Next() cannot do on its own.
func loadRecords(log source.ReplayLog) ([]record, error) {
	replay := source.NewNetworkReplay(log, false)

	var records []record
	done := stream.Process(replay, func(n packet.Network) {
		packet.VisitNetwork(n,
			func(m packet.NetworkMetadata) { records = append(records, record{isMetadata: true, metadata: m}) },
			func(f packet.NetworkFrame) { records = append(records, record{frame: f}) },
		)
	})
	_, err := done.Wait()
	return records, err
}
