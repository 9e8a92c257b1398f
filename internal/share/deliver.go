package share

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"strings"

	"github.com/atotto/clipboard"
)

// DefaultSubject is the mail subject used when none is configured.
const DefaultSubject = "My Todo List"

// Deliverer hands snapshot text to something outside the program.
type Deliverer interface {
	Deliver(ctx context.Context, text string) error
}

// Clipboard writes the text to the system clipboard.
type Clipboard struct {
	Write func(string) error // defaults to the system clipboard
}

func (c Clipboard) Deliver(_ context.Context, text string) error {
	write := c.Write
	if write == nil {
		if clipboard.Unsupported {
			return errors.New("clipboard: no clipboard utility available")
		}
		write = clipboard.WriteAll
	}
	if err := write(text); err != nil {
		return fmt.Errorf("clipboard: %w", err)
	}
	return nil
}

// Mailer opens the user's mail client with a prefilled message.
type Mailer struct {
	Subject string
	Open    func(ctx context.Context, rawURL string) error // defaults to OpenURL
}

func (m Mailer) Deliver(ctx context.Context, text string) error {
	subject := m.Subject
	if strings.TrimSpace(subject) == "" {
		subject = DefaultSubject
	}
	open := m.Open
	if open == nil {
		open = OpenURL
	}
	if err := open(ctx, MailtoURL(subject, text)); err != nil {
		return fmt.Errorf("mail: %w", err)
	}
	return nil
}

// MailtoURL builds a mailto: link with an empty recipient.
func MailtoURL(subject, body string) string {
	return "mailto:?subject=" + encodeComponent(subject) + "&body=" + encodeComponent(body)
}

// encodeComponent percent-encodes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ),
// which is what mail clients expect in mailto query values.
var componentFixups = strings.NewReplacer("+", "%20", "%21", "!", "%27", "'", "%28", "(", "%29", ")", "%2A", "*")

func encodeComponent(s string) string {
	return componentFixups.Replace(url.QueryEscape(s))
}

// OpenURL asks the platform to open rawURL with its default handler.
func OpenURL(ctx context.Context, rawURL string) error {
	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", rawURL)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", rawURL)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", rawURL)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("open %s: %w", cmd.Path, err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
