package rfswitch

import (
	"bufio"
	"fmt"
	"os"

	"github.com/klauspost/compress/gzip"
)

// gzipLineSink adapts a gzip.Writer to diag.LineWriter, used for bulk
// tracer-dump artifacts the way the dependency pack uses klauspost's
// compress package for bulk log/dump output.
type gzipLineSink struct {
	w   *bufio.Writer
	err error
}

func (s *gzipLineSink) WriteLine(line string) {
	if s.err != nil {
		return
	}
	_, s.err = s.w.WriteString(line)
	if s.err == nil {
		_, s.err = s.w.WriteString("\n")
	}
}

// DumpPulseTracerGzip writes the traced pulses to a gzip-compressed file
// at path, for archiving a capture instead of streaming it live.
func (r *Receiver) DumpPulseTracerGzip(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating tracer dump %s: %w", path, err)
	}
	defer f.Close()

	gz := gzip.NewWriter(f)
	defer gz.Close()

	sink := &gzipLineSink{w: bufio.NewWriter(gz)}
	r.DumpPulseTracer(sink)
	if sink.err != nil {
		return fmt.Errorf("writing tracer dump %s: %w", path, sink.err)
	}
	if err := sink.w.Flush(); err != nil {
		return fmt.Errorf("flushing tracer dump %s: %w", path, err)
	}
	return nil
}
