package input

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"

	mboxlib "github.com/emersion/go-mbox"

	"github.com/dhcgn/circuit-maintenance-parser/filter"
)

var mboxPostmark = []byte("From ")

func isMbox(data []byte) bool {
	return bytes.HasPrefix(data, mboxPostmark)
}

// selectFromMbox returns the first message of the archive accepted by f.
func selectFromMbox(data []byte, f *filter.Filter, logger *slog.Logger) ([]byte, error) {
	reader := mboxlib.NewReader(bytes.NewReader(data))

	for idx := 0; ; idx++ {
		msgReader, err := reader.NextMessage()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil, ErrNoMessage
			}
			return nil, fmt.Errorf("mbox message %d: %w", idx, err)
		}

		raw, err := io.ReadAll(msgReader)
		if err != nil {
			return nil, fmt.Errorf("mbox message %d read: %w", idx, err)
		}

		if !f.Allows(raw) {
			logger.Debug("skipping mbox message", "index", idx)
			continue
		}

		logger.Info("selected mbox message", "index", idx, "bytes", len(raw))
		return raw, nil
	}
}
