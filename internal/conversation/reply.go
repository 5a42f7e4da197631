package conversation

import "fmt"

// Reply is one outbound chat message, independent of the transport
type Reply struct {
	Text     string
	Markdown bool    // render Text with the transport's Markdown mode
	Menu     bool    // attach the main menu keyboard
	Button   *Button // attach a single link button
}

// Button is a clickable action that opens URL
type Button struct {
	Label string
	URL   string
}

func text(s string) Reply {
	return Reply{Text: s}
}

func markdown(format string, args ...interface{}) Reply {
	if len(args) > 0 {
		format = fmt.Sprintf(format, args...)
	}
	return Reply{Text: format, Markdown: true}
}

func menu(s string) Reply {
	return Reply{Text: s, Menu: true}
}

func failure(label string, err error) Reply {
	return Reply{Text: label + ":\n" + err.Error()}
}
