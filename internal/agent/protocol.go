// Package agent implements the remote policy protocol: newline-delimited
// JSON over TCP. A client greets with {"type":"hello"} and the server
// answers with {"type":"hello","model":NAME}. Every step after that the
// client sends {"obs":[...]} and receives {"action":[8 floats]}.
package agent

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// MaxLineBytes caps a single protocol message.
const MaxLineBytes = 1 << 20

// ErrProtocol reports a malformed, oversized or out-of-order message.
var ErrProtocol = errors.New("agent: protocol error")

const typeHello = "hello"

type helloMessage struct {
	Type  string `json:"type"`
	Model string `json:"model,omitempty"`
}

type observationMessage struct {
	Obs []float32 `json:"obs"`
}

type actionMessage struct {
	Action []float64 `json:"action"`
}

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	return sc
}

// readMessage decodes the next non-blank line into v.
// Returns io.EOF when the peer closed the stream cleanly.
func readMessage(sc *bufio.Scanner, v any) error {
	for sc.Scan() {
		line := bytes.TrimSpace(sc.Bytes())
		if len(line) == 0 {
			continue
		}
		if err := json.Unmarshal(line, v); err != nil {
			return fmt.Errorf("%w: %v", ErrProtocol, err)
		}
		return nil
	}
	if err := sc.Err(); err != nil {
		if errors.Is(err, bufio.ErrTooLong) {
			return fmt.Errorf("%w: message exceeds %d bytes", ErrProtocol, MaxLineBytes)
		}
		return err
	}
	return io.EOF
}

func writeMessage(w io.Writer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProtocol, err)
	}
	b = append(b, '\n')
	_, err = w.Write(b)
	return err
}
