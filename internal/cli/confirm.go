package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/pfrederiksen/uoft-courses/internal/batch"
	"github.com/pfrederiksen/uoft-courses/internal/course"
)

// maxConfirmAttempts bounds how often an unrecognised answer is re-asked
// before the record is skipped.
const maxConfirmAttempts = 3

type answer int

const (
	answerNo answer = iota
	answerYes
	answerQuit
)

// confirmEmitter asks before writing each record. Answering q stops the run.
type confirmEmitter struct {
	in     *bufio.Reader
	out    io.Writer
	store  batch.Writer
	cancel context.CancelFunc
	quit   bool
}

func newConfirmEmitter(in io.Reader, out io.Writer, store batch.Writer, cancel context.CancelFunc) *confirmEmitter {
	return &confirmEmitter{
		in:     bufio.NewReader(in),
		out:    out,
		store:  store,
		cancel: cancel,
	}
}

// Quit reports whether the user stopped the run.
func (e *confirmEmitter) Quit() bool { return e.quit }

// Emit implements batch.Emitter.
func (e *confirmEmitter) Emit(ctx context.Context, source string, doc *batch.Document) (int, error) {
	written := 0
	for _, rec := range doc.Records {
		ans, err := e.ask(rec)
		if err != nil {
			return written, err
		}

		switch ans {
		case answerYes:
			n, _ := e.store.WriteAll(ctx, []course.Record{rec})
			written += n
		case answerQuit:
			e.quit = true
			e.cancel()
			return written, nil
		}
	}
	return written, nil
}

func (e *confirmEmitter) ask(rec course.Record) (answer, error) {
	for attempt := 0; attempt < maxConfirmAttempts; attempt++ {
		fmt.Fprintf(e.out, "Put in row %v? [y/n/q] ", rec)

		line, err := e.in.ReadString('\n')
		switch strings.ToLower(strings.TrimSpace(line)) {
		case "y", "yes":
			return answerYes, nil
		case "n", "no":
			return answerNo, nil
		case "q", "quit":
			return answerQuit, nil
		}
		if err != nil {
			return answerNo, fmt.Errorf("reading answer: %w", err)
		}
	}

	fmt.Fprintln(e.out, "No valid answer, skipping.")
	return answerNo, nil
}
