package openai

import (
	"bufio"
	"errors"
	"io"
	"strings"
)

// readSSE calls onData for every complete server-sent event's data payload.
// Returning false from onData stops reading.
func readSSE(r io.Reader, onData func(data string) (bool, error)) error {
	br := bufio.NewReader(r)
	var dataLines []string

	flush := func() (bool, error) {
		if len(dataLines) == 0 {
			return true, nil
		}
		data := strings.Join(dataLines, "\n")
		dataLines = nil
		return onData(data)
	}

	for {
		line, err := br.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
		eof := errors.Is(err, io.EOF)
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			// Blank line ends event.
			cont, ferr := flush()
			if ferr != nil || !cont {
				return ferr
			}
		case strings.HasPrefix(line, ":"):
			// Comment (OpenRouter sends keep-alive comments).
		case strings.HasPrefix(line, "data:"):
			dataLines = append(dataLines, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}

		if eof {
			_, ferr := flush()
			return ferr
		}
	}
}
