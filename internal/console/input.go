// Copyright (c) 2025 ToeiRei
// Clientbook - client and phone records manager
// This source code is licensed under the MIT license found in the LICENSE file.

package console

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

// ErrInterrupted is returned by a LineReader when the user pressed Ctrl-C
// while a line was being edited. The current action is abandoned.
var ErrInterrupted = errors.New("input interrupted")

// LineReader reads one trimmed line of user input after showing a prompt.
// It returns io.EOF once input is exhausted.
type LineReader interface {
	ReadLine(prompt string) (string, error)
	Close() error
}

type readlineReader struct {
	rl *readline.Instance
}

// NewReadlineReader returns a line editor on the process terminal with
// in-memory history. Only non-empty lines are kept in the history.
func NewReadlineReader(out io.Writer) (LineReader, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:                 "> ",
		InterruptPrompt:        "^C",
		EOFPrompt:              "",
		Stdout:                 out,
		DisableAutoSaveHistory: true,
	})
	if err != nil {
		return nil, fmt.Errorf("initialize line editor: %w", err)
	}
	return &readlineReader{rl: rl}, nil
}

func (r *readlineReader) ReadLine(prompt string) (string, error) {
	r.rl.SetPrompt(prompt)
	line, err := r.rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) {
		return "", ErrInterrupted
	}
	if err != nil {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line != "" {
		_ = r.rl.SaveHistory(line)
	}
	return line, nil
}

func (r *readlineReader) Close() error {
	return r.rl.Close()
}

type scannerReader struct {
	sc  *bufio.Scanner
	out io.Writer
}

// NewScannerReader reads lines from in and writes prompts to out. It is used
// when input is piped or redirected.
func NewScannerReader(in io.Reader, out io.Writer) LineReader {
	return &scannerReader{sc: bufio.NewScanner(in), out: out}
}

func (r *scannerReader) ReadLine(prompt string) (string, error) {
	_, _ = fmt.Fprint(r.out, prompt)
	if !r.sc.Scan() {
		if err := r.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return strings.TrimSpace(r.sc.Text()), nil
}

func (r *scannerReader) Close() error { return nil }
