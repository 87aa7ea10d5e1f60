// Package clipboard moves event lines between the editor and the system
// clipboard.
package clipboard

import (
	"errors"
	"strings"
	"sync"

	"github.com/atotto/clipboard"
)

var ErrEmpty = errors.New("clipboard is empty")

type Board interface {
	ReadAll() (string, error)
	WriteAll(text string) error
}

// System is the desktop clipboard.
type System struct{}

func (System) ReadAll() (string, error) {
	return clipboard.ReadAll()
}

func (System) WriteAll(text string) error {
	return clipboard.WriteAll(text)
}

// Available reports whether a system clipboard utility was found.
func Available() bool {
	return !clipboard.Unsupported
}

// Memory is an in-process clipboard.
type Memory struct {
	mu   sync.Mutex
	text string
}

func (m *Memory) ReadAll() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.text, nil
}

func (m *Memory) WriteAll(text string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	return nil
}

// CopyLines writes lines to the board, one per line.
func CopyLines(b Board, lines []string) error {
	if len(lines) == 0 {
		return ErrEmpty
	}
	return b.WriteAll(strings.Join(lines, "\n"))
}

// PasteLines reads the board and splits it into lines, dropping carriage
// returns and a trailing newline.
func PasteLines(b Board) ([]string, error) {
	text, err := b.ReadAll()
	if err != nil {
		return nil, err
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.TrimSuffix(text, "\n")
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmpty
	}
	return strings.Split(text, "\n"), nil
}

// Equals reports whether the board currently holds text. Read errors count as
// a mismatch.
func Equals(b Board, text string) bool {
	current, err := b.ReadAll()
	if err != nil {
		return false
	}
	return current == text
}
