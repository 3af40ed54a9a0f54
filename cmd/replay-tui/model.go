package main

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/satori-video/streams/packet"
)

// record is one entry from a recorded network-replay log, flattened for
// display: either a metadata announcement or one frame chunk.
type record struct {
	isMetadata bool
	metadata   packet.NetworkMetadata
	frame      packet.NetworkFrame
}

type keyMap struct {
	Next key.Binding
	Prev key.Binding
	Home key.Binding
	End  key.Binding
	Quit key.Binding
}

var keys = keyMap{
	Next: key.NewBinding(key.WithKeys("right", "l", " "), key.WithHelp("→/l/space", "next")),
	Prev: key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev")),
	Home: key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
	End:  key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// model is a Bubble Tea model stepping an operator through a recorded
// network-replay log one record at a time, grounded on
// pithecene-io-quarry/quarry/cli/tui.InspectModel's Init/Update/View shape.
type model struct {
	source  string
	records []record
	cursor  int
	width   int
	height  int
}

func newModel(source string, records []record) model {
	return model{source: source, records: records}
}

func (m model) Init() tea.Cmd { return nil }

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, keys.Next):
			if m.cursor < len(m.records)-1 {
				m.cursor++
			}
		case key.Matches(msg, keys.Prev):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, keys.Home):
			m.cursor = 0
		case key.Matches(msg, keys.End):
			m.cursor = len(m.records) - 1
		}
	}
	return m, nil
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(fmt.Sprintf("Replay: %s", m.source)))
	b.WriteString("\n\n")

	if len(m.records) == 0 {
		b.WriteString(valueStyle.Render("log is empty"))
		return boxStyle.Render(b.String())
	}

	b.WriteString(fmt.Sprintf("%s %s\n",
		labelStyle.Render("Position:"),
		valueStyle.Render(fmt.Sprintf("%d / %d", m.cursor+1, len(m.records)))))

	r := m.records[m.cursor]
	if r.isMetadata {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Kind:"), metaStyle.Render("metadata")))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Codec:"), valueStyle.Render(r.metadata.CodecName)))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Payload:"), valueStyle.Render(byteSizeOfBase64(r.metadata.Base64Data))))
	} else {
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Kind:"), frameStyle.Render("frame")))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("ID:"), valueStyle.Render(r.frame.ID.String())))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Time:"), valueStyle.Render(r.frame.T.Format("2006-01-02 15:04:05.000"))))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Chunk:"), valueStyle.Render(fmt.Sprintf("%d / %d", r.frame.Chunk, r.frame.Chunks))))
		b.WriteString(fmt.Sprintf("%s %s\n", labelStyle.Render("Payload:"), valueStyle.Render(byteSizeOfBase64(r.frame.Base64Data))))
	}

	help := helpStyle.Render("←/→ step   g/G first/last   q quit")
	return boxStyle.Render(b.String()) + "\n" + help
}

func byteSizeOfBase64(s string) string {
	n := base64.StdEncoding.DecodedLen(len(s))
	return fmt.Sprintf("%d bytes", n)
}
