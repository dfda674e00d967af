package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"os/exec"
	"strconv"
)

// LameFactory opens a BlockEncoder backed by a lame subprocess reading raw
// signed 16-bit little-endian mono PCM on stdin. Returns
// ErrEncoderUnavailable when lame is not installed, which routes callers
// onto the lossless fallback.
func LameFactory(sampleRate, bitrateKbps int) (BlockEncoder, error) {
	path, err := exec.LookPath("lame")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}

	cmd := exec.Command(path,
		"-r",
		"-s", fmt.Sprintf("%g", float64(sampleRate)/1000),
		"--signed", "--bitwidth", "16", "--little-endian",
		"-m", "m",
		"-b", strconv.Itoa(bitrateKbps),
		"--quiet",
		"-", "-",
	)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderUnavailable, err)
	}

	enc := &lameEncoder{cmd: cmd, stdin: stdin, done: make(chan error, 1)}
	go func() {
		_, err := io.Copy(&enc.out, stdout)
		enc.done <- err
	}()
	return enc, nil
}

type lameEncoder struct {
	cmd   *exec.Cmd
	stdin io.WriteCloser
	out   bytes.Buffer
	done  chan error
}

// EncodeBlock streams the block into the encoder. The subprocess buffers
// frames internally, so emitted bytes arrive at Flush.
func (e *lameEncoder) EncodeBlock(pcm []int16) ([]byte, error) {
	if err := binary.Write(e.stdin, binary.LittleEndian, pcm); err != nil {
		return nil, fmt.Errorf("write pcm: %w", err)
	}
	return nil, nil
}

// Flush closes stdin, waits for the encoder to drain, and returns the whole
// container.
func (e *lameEncoder) Flush() ([]byte, error) {
	if err := e.stdin.Close(); err != nil {
		return nil, err
	}
	if err := <-e.done; err != nil {
		return nil, fmt.Errorf("read encoder output: %w", err)
	}
	if err := e.cmd.Wait(); err != nil {
		return nil, fmt.Errorf("lame exited: %w", err)
	}
	return e.out.Bytes(), nil
}
