package streaming

import (
	"bufio"
	"encoding/json"
	"io"
	"strings"

	"tidepool/internal/model"
)

// readFrames parses server-sent-event framing from r and invokes emit for
// each complete event/data pair. Comment lines (":...") are heartbeats and
// skipped. Returns when r is exhausted or fails.
func readFrames(r io.Reader, emit func(name, data string)) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	var name string
	var data strings.Builder
	for sc.Scan() {
		line := sc.Text()
		switch {
		case line == "":
			if name != "" {
				emit(name, data.String())
			}
			name = ""
			data.Reset()
		case strings.HasPrefix(line, ":"):
			// heartbeat
		case strings.HasPrefix(line, "event:"):
			name = strings.TrimSpace(strings.TrimPrefix(line, "event:"))
		case strings.HasPrefix(line, "data:"):
			if data.Len() > 0 {
				data.WriteByte('\n')
			}
			data.WriteString(strings.TrimSpace(strings.TrimPrefix(line, "data:")))
		}
	}
	if name != "" {
		emit(name, data.String())
	}
	return sc.Err()
}

// decodeEvent maps one wire message to an Event variant. Updates carry a
// full status payload; deletes carry the target id. Other message types
// (notifications, filter changes) are ignored.
func decodeEvent(name, data string) (model.Event, bool) {
	switch name {
	case "update":
		var s model.Status
		if err := json.Unmarshal([]byte(data), &s); err != nil {
			return nil, false
		}
		return model.UpdateEvent{Status: s}, true
	case "delete":
		id := strings.TrimSpace(data)
		if id == "" {
			return nil, false
		}
		return model.DeleteEvent{TargetID: id}, true
	}
	return nil, false
}
