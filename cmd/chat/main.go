// Command chat is a terminal client for the chat2geo service.
package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/chat2geo/chat2geo/client"
	"github.com/chat2geo/chat2geo/internal/domain"
)

var (
	serverURL string
	token     string
	chatID    string
	title     string
)

func main() {
	root := &cobra.Command{
		Use:          "chat",
		Short:        "Terminal client for the chat2geo service",
		SilenceUsage: true,
		RunE:         run,
	}
	root.Flags().StringVar(&serverURL, "server", "http://localhost:8080", "server base URL")
	root.Flags().StringVar(&token, "token", os.Getenv("CHAT2GEO_TOKEN"), "bearer token (defaults to CHAT2GEO_TOKEN)")
	root.Flags().StringVar(&chatID, "chat", "", "existing chat id (a new chat is created when empty)")
	root.Flags().StringVar(&title, "title", "New chat", "title for a newly created chat")

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	if token == "" {
		return fmt.Errorf("a bearer token is required (--token or CHAT2GEO_TOKEN)")
	}

	ctx := cmd.Context()
	api := client.NewAPI(serverURL, token)

	if chatID == "" {
		chat, err := api.CreateChat(ctx, title)
		if err != nil {
			return fmt.Errorf("failed to create chat: %w", err)
		}
		chatID = chat.ID
		fmt.Fprintf(cmd.OutOrStdout(), "created chat %s\n", chatID)
	}

	view := &consoleView{out: cmd.OutOrStdout()}
	controller := client.NewController(api, chatID, view)

	if err := controller.Refresh(ctx); err != nil {
		return err
	}

	fmt.Fprint(cmd.OutOrStdout(), "> ")
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "/quit" {
			break
		}
		// Send failures are surfaced through the view.
		_ = controller.Send(ctx, line)
		fmt.Fprint(cmd.OutOrStdout(), "> ")
	}
	return scanner.Err()
}

// consoleView renders the transcript to the terminal.
type consoleView struct {
	out io.Writer
}

func (v *consoleView) ClearInput() {}

func (v *consoleView) SetSending(sending bool) {
	if sending {
		fmt.Fprintln(v.out, "…")
	}
}

func (v *consoleView) RenderMessages(messages []domain.Message) {
	fmt.Fprintln(v.out, strings.Repeat("-", 60))
	for _, msg := range messages {
		fmt.Fprintf(v.out, "%s: %s\n", msg.Role, msg.Content.Canonical())
	}
}

func (v *consoleView) NotifyError(message string) {
	fmt.Fprintln(v.out, "error:", message)
}
