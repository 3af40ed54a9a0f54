package main

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"

	"github.com/satori-video/streams/packet"
)

func sampleRecords() []record {
	return []record{
		{isMetadata: true, metadata: packet.NetworkMetadata{CodecName: "h264"}},
		{frame: packet.NetworkFrame{ID: packet.ID{I1: 0, I2: 10}, T: time.Unix(0, 0), Chunk: 1, Chunks: 1}},
		{frame: packet.NetworkFrame{ID: packet.ID{I1: 10, I2: 20}, T: time.Unix(1, 0), Chunk: 1, Chunks: 1}},
	}
}

func TestModelNextAdvancesCursor(t *testing.T) {
	m := newModel("test.log", sampleRecords())
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyRight})
	require.Equal(t, 1, next.(model).cursor)
}

func TestModelPrevStopsAtZero(t *testing.T) {
	m := newModel("test.log", sampleRecords())
	prev, _ := m.Update(tea.KeyMsg{Type: tea.KeyLeft})
	require.Equal(t, 0, prev.(model).cursor)
}

func TestModelEndJumpsToLastRecord(t *testing.T) {
	m := newModel("test.log", sampleRecords())
	ended, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("G")})
	require.Equal(t, len(sampleRecords())-1, ended.(model).cursor)
}

func TestModelQuitReturnsQuitCmd(t *testing.T) {
	m := newModel("test.log", sampleRecords())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
}

func TestViewRendersEmptyLog(t *testing.T) {
	m := newModel("empty.log", nil)
	require.Contains(t, m.View(), "empty")
}
