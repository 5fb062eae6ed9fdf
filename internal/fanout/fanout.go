// Package fanout tees a single generator's stdout to every algorithm
// consumer's stdin, byte-for-byte and in the same order for each.
package fanout

import (
	"bufio"
	"fmt"
	"io"

	"github.com/impalab/impalab/internal/log"
)

// Consumer is one destination of the fanned-out stream.
type Consumer struct {
	Name string
	W    io.WriteCloser
}

// Result reports whether an individual consumer received the entire
// stream or was dropped early because writing to it failed.
type Result struct {
	Name string
	Err  error
}

// Run reads producer line by line and writes each line to every live
// consumer. Lines are read with a manual bufio.Reader instead of
// bufio.Scanner so that a final line with no trailing newline (EOF
// mid-line) is still forwarded, exactly as read, instead of being
// silently dropped or merged with Scanner's newline-delimited framing.
//
// If a write to one consumer fails, that consumer is closed and
// excluded from all further writes; Run continues serving the
// remaining consumers so one broken pipe cannot stall the others.
// When producer reaches EOF (or another read error), every
// still-live consumer's stdin is closed so its process observes its
// own EOF and can terminate.
//
// Run returns once producer is exhausted and every consumer has been
// closed. The per-consumer outcomes are returned so the caller can
// tell which algorithms received a truncated stream.
func Run(producer io.Reader, consumers []Consumer) []Result {
	reader := bufio.NewReaderSize(producer, 64*1024)
	results := make([]Result, len(consumers))
	live := make([]bool, len(consumers))
	for i, c := range consumers {
		results[i] = Result{Name: c.Name}
		live[i] = true
	}

	closeAll := func() {
		for i, c := range consumers {
			if live[i] {
				_ = c.W.Close()
				live[i] = false
			}
		}
	}

	for {
		line, readErr := reader.ReadString('\n')
		if len(line) > 0 {
			for i, c := range consumers {
				if !live[i] {
					continue
				}
				if _, err := io.WriteString(c.W, line); err != nil {
					log.Warn(log.CatFanout, "consumer write failed, dropping", "consumer", c.Name, "error", err.Error())
					results[i].Err = fmt.Errorf("write to %s: %w", c.Name, err)
					_ = c.W.Close()
					live[i] = false
				}
			}
		}
		if readErr != nil {
			if readErr != io.EOF {
				log.Warn(log.CatFanout, "producer read error", "error", readErr.Error())
			}
			break
		}
	}

	closeAll()
	return results
}
