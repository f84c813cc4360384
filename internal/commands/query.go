package commands

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/diogo/orbchat/internal/api"
	"github.com/diogo/orbchat/internal/config"
	"github.com/diogo/orbchat/internal/content"
	apierrors "github.com/diogo/orbchat/internal/errors"
	"github.com/diogo/orbchat/internal/models"
	"github.com/diogo/orbchat/internal/parse"
	"github.com/diogo/orbchat/internal/render"
	"github.com/diogo/orbchat/internal/session"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorWarn     = lipgloss.Color("#f7768e")
)

var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	thoughtsStyle = lipgloss.NewStyle().
			BorderStyle(lipgloss.NormalBorder()).
			BorderForeground(colorTextDim).
			BorderLeft(true).
			Foreground(colorTextDim).
			PaddingLeft(1).
			MarginLeft(1).
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(colorTextMute).
			Italic(true)
)

// spinner is a minimal stderr spinner for the pre-stream phase.
type spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
}

func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

func (s *spinner) start() {
	go func() {
		defer close(s.done)

		chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}
		frame := 0

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		fmt.Fprint(os.Stderr, "\033[?25l")

		for {
			select {
			case <-s.stop:
				fmt.Fprint(os.Stderr, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				c := lipgloss.NewStyle().Foreground(colorPrimary).Render(chars[frame%len(chars)])
				msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)
				fmt.Fprintf(os.Stderr, "\r\033[K%s %s", c, msg)
				frame++
			}
		}
	}()
}

func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

func (s *spinner) finish() {
	s.stopOnce()
	<-s.done
}

// runQuery sends a single prompt and streams the response to stdout.
// If rawOutput is true, only the raw response text is printed.
func runQuery(prompt string, rawOutput bool) error {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && attachFlag == "" {
		return fmt.Errorf("prompt cannot be empty")
	}

	// Piped output gets the raw text, no styling or status lines.
	if !isStdoutTTY() {
		rawOutput = true
	}

	cfg, _ := config.LoadConfig()
	llm := getLLM(cfg)

	if cfg.Verbose && !rawOutput {
		fmt.Fprintf(os.Stderr, "[verbose] Model: %s\n", llm.Name)
	}

	payload := api.Payload{Text: prompt}
	if attachFlag != "" {
		att, err := content.LoadAttachment(attachFlag)
		if err != nil {
			return fmt.Errorf("failed to load attachment: %w", err)
		}
		payload.Attachment = att
	}

	client, err := api.NewClient(cfg, api.WithLLM(llm))
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}
	defer client.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Ctrl+C cancels the stream locally and notifies the backend; a
	// second Ctrl+C inside the cooldown window is ignored.
	abort := session.NewAbortCoordinator()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	var spin *spinner
	if !rawOutput {
		spin = newSpinner("Waiting for response")
		spin.start()
	}

	startTime := time.Now()
	stream, err := client.OpenNewChatStream(ctx, payload)
	if err != nil {
		if !rawOutput {
			spin.finish()
		}
		return fmt.Errorf("request failed: %w", err)
	}
	defer stream.Close()

	abort.Arm(cancel, func(ctx context.Context) error {
		return client.NotifyAbort(ctx, stream.ChatID)
	})
	go func() {
		for range sigCh {
			abort.Cancel()
		}
	}()

	if !rawOutput {
		spin.finish()
		fmt.Println(assistantLabelStyle.Render("◍ Orb"))
	}

	text, aborted, err := drainStream(ctx, stream, rawOutput)
	if err != nil {
		return err
	}
	if aborted {
		text += " (stopped by user)"
	}

	if cfg.Verbose && !rawOutput {
		fmt.Fprintf(os.Stderr, "\n[verbose] Request took %s\n", time.Since(startTime).Round(time.Millisecond))
	}

	return writeResult(cfg, text, rawOutput, aborted)
}

// drainStream consumes the stream, echoing progress as it goes. In raw
// mode deltas go straight to stdout; in decorated mode a live status
// line tracks thinking and tool phases, and the styled output is
// printed at the end.
func drainStream(ctx context.Context, stream *api.Stream, rawOutput bool) (text string, aborted bool, err error) {
	var lastStatus string

	for {
		delta, nerr := stream.Next(ctx)
		if delta != "" {
			text += delta
			if rawOutput {
				fmt.Print(delta)
			} else {
				lastStatus = echoProgress(text, lastStatus)
			}
		}
		if nerr == nil {
			continue
		}

		if !rawOutput && lastStatus != "" {
			fmt.Fprint(os.Stderr, "\r\033[K")
		}

		switch {
		case nerr == io.EOF:
			return text, false, nil
		case apierrors.IsCancellation(nerr):
			return text, true, nil
		default:
			// Partial text survives the failure.
			fmt.Fprintln(os.Stderr, formatErrorMessage(nerr, "Stream failed"))
			return text, false, nil
		}
	}
}

// echoProgress writes a one-line status to stderr reflecting the
// current parse state of the accumulated text.
func echoProgress(text, lastStatus string) string {
	view := parse.Parse(models.RawContent{Kind: models.RawPlainText, Text: text})

	status := "streaming"
	if view.IsThinking {
		status = "thinking"
	}
	if !view.ToolPhaseDone() {
		if s := view.CurrentToolStatus(); s != "" {
			status = s
		}
	}

	if status != lastStatus {
		fmt.Fprintf(os.Stderr, "\r\033[K%s", statusStyle.Render("… "+status))
	}
	return status
}

// writeResult prints or saves the final text.
func writeResult(cfg config.Config, text string, rawOutput, aborted bool) error {
	if rawOutput {
		if outputFlag != "" {
			return os.WriteFile(outputFlag, []byte(text), 0o644)
		}
		// Deltas already went to stdout; just terminate the line.
		if !strings.HasSuffix(text, "\n") {
			fmt.Println()
		}
		return nil
	}

	if cfg.CopyToClipboard {
		view := parse.Parse(models.ResolveRaw(text))
		if err := clipboard.WriteAll(view.VisibleText); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorWarn).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(os.Stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(os.Stderr, clipMsg)
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Response saved to %s", outputFlag),
		)
		fmt.Fprintln(os.Stderr, successMsg)
		return nil
	}

	termWidth := getTerminalWidth()
	contentWidth := termWidth - 4
	if contentWidth < 40 {
		contentWidth = 40
	}
	if contentWidth > 120 {
		contentWidth = 120
	}

	view := parse.Parse(models.ResolveRaw(text))
	opts := render.MessageOptions{
		Markdown:     render.FromConfig(cfg.Markdown).WithWidth(contentWidth),
		ShowThinking: true,
	}
	fmt.Println(render.Message(view, opts))

	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80 // default width
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from
// structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorWarn)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	if endpoint := apierrors.GetEndpoint(err); endpoint != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  Endpoint: %s", endpoint)))
	}

	if body := apierrors.GetResponseBody(err); body != "" {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n\n  %s", strings.ReplaceAll(body, "\n", "\n  "))))
	} else if apierrors.IsNetworkError(err) {
		sb.WriteString(dimStyle.Render("\n  Hint: Check that the backend is reachable and try again"))
	}

	return sb.String()
}
