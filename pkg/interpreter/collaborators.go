package interpreter

import (
	"bufio"
	"errors"
	"io"
	"io/fs"
	"os"
	"strings"

	"github.com/edwingeng/deque"
)

// InputProvider supplies lines for `get`.
type InputProvider interface {
	ReadLine() (string, error)
}

// Filesystem is the read-only view used by `import`. testing/fstest.MapFS
// satisfies it.
type Filesystem interface {
	Stat(name string) (fs.FileInfo, error)
	ReadFile(name string) ([]byte, error)
}

// OSFilesystem reads from the host filesystem.
type OSFilesystem struct{}

func (OSFilesystem) Stat(name string) (fs.FileInfo, error) {
	return os.Stat(name)
}

func (OSFilesystem) ReadFile(name string) ([]byte, error) {
	return os.ReadFile(name)
}

// ReaderInput reads newline-terminated lines from an io.Reader.
type ReaderInput struct {
	r *bufio.Reader
}

// NewReaderInput wraps r.
func NewReaderInput(r io.Reader) *ReaderInput {
	return &ReaderInput{r: bufio.NewReader(r)}
}

// ReadLine returns the next line without its terminator. A final line
// without a newline is returned before io.EOF.
func (in *ReaderInput) ReadLine() (string, error) {
	line, err := in.r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && line != "" {
			return strings.TrimRight(line, "\r"), nil
		}
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// QueueInput serves pre-queued lines, then io.EOF.
type QueueInput struct {
	lines deque.Deque
}

// NewQueueInput queues lines in order.
func NewQueueInput(lines ...string) *QueueInput {
	q := &QueueInput{lines: deque.NewDeque()}
	for _, line := range lines {
		q.Push(line)
	}
	return q
}

// Push appends a line.
func (q *QueueInput) Push(line string) {
	q.lines.PushBack(line)
}

// Len reports how many lines remain.
func (q *QueueInput) Len() int {
	return q.lines.Len()
}

// ReadLine pops the next queued line.
func (q *QueueInput) ReadLine() (string, error) {
	if q.lines.Empty() {
		return "", io.EOF
	}
	return q.lines.PopFront().(string), nil
}
