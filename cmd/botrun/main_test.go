package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/satori-video/streams/packet"
)

func encodedFrameOfSize(n int) packet.EncodedFrame {
	return packet.EncodedFrame{Data: make([]byte, n)}
}

func TestVersionCmdPrintsVersion(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"version"})
	var out bytes.Buffer
	root.SetOut(&out)

	require.NoError(t, root.Execute())
}

func TestValidateConfigCmdRejectsMissingFile(t *testing.T) {
	root := newRootCmd()
	root.SetArgs([]string{"validate-config", "--config", filepath.Join(t.TempDir(), "missing.yaml")})

	require.Error(t, root.Execute())
}

func TestValidateConfigCmdAcceptsValidFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	contents := `
input: file
source: video.mp4
channel: demo
bot_id: openaivision
`
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))

	root := newRootCmd()
	root.SetArgs([]string{"validate-config", "--config", path})

	require.NoError(t, root.Execute())
}

func TestNewRawRGBDecodeRejectsShortFrame(t *testing.T) {
	decode := newRawRGBDecode(4, 4)
	_, err := decode(encodedFrameOfSize(3))
	require.Error(t, err)
}

func TestNewRawRGBDecodeBuildsImageFrame(t *testing.T) {
	decode := newRawRGBDecode(2, 2)
	img, err := decode(encodedFrameOfSize(2 * 2 * 4))
	require.NoError(t, err)
	require.Equal(t, uint16(2), img.Width)
	require.Equal(t, uint16(2), img.Height)
}
