package domain

import "fmt"

// Status is the play status of a game. The wire value is the uppercase
// string; ordering for sorts uses Code (Backlog < Playing < Done).
type Status string

const (
	StatusBacklog Status = "BACKLOG"
	StatusPlaying Status = "PLAYING"
	StatusDone    Status = "DONE"
)

func AllStatuses() []Status {
	return []Status{StatusBacklog, StatusPlaying, StatusDone}
}

// ParseStatus rejects anything outside the closed set. Callers that read
// remote documents drop records whose status does not parse.
func ParseStatus(raw string) (Status, error) {
	switch Status(raw) {
	case StatusBacklog, StatusPlaying, StatusDone:
		return Status(raw), nil
	}
	return "", fmt.Errorf("unknown game status %q", raw)
}

// Code is the sort ordinal.
func (s Status) Code() int {
	switch s {
	case StatusBacklog:
		return 0
	case StatusPlaying:
		return 1
	case StatusDone:
		return 2
	}
	return -1
}

// Label is the display string used by the shell.
func (s Status) Label() string {
	switch s {
	case StatusBacklog:
		return "Backlog"
	case StatusPlaying:
		return "Jogando"
	case StatusDone:
		return "Concluído"
	}
	return string(s)
}
