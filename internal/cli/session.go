// Package cli implements the interactive conversation loop used by the
// run command.
package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/mojomast/arbor"
	"github.com/mojomast/arbor/internal/presentation/tui"
	"github.com/mojomast/arbor/pkg/domain"
)

// RunOptions holds the flags for an interactive session.
type RunOptions struct {
	TreePath string
	TreeID   string
	Debug    bool
	Plain    bool
}

// RunSession plays a single conversation interactively on the
// terminal.
func RunSession(opts RunOptions) error {
	logger := createLogger(opts.Debug)

	if !opts.Plain {
		tui.PrintBanner(arbor.Version)
	}

	engineOpts := []arbor.Option{}
	if opts.Debug {
		engineOpts = append(engineOpts, arbor.WithLogger(logger))
		engineOpts = append(engineOpts, arbor.WithLifecycleHooks(createDebugHooks(logger)))
	}

	engine, err := arbor.New(opts.TreePath, engineOpts...)
	if err != nil {
		return fmt.Errorf("error initializing engine: %w", err)
	}

	treeID := opts.TreeID
	if treeID == "" {
		ids, err := engine.Trees()
		if err != nil || len(ids) == 0 {
			return fmt.Errorf("no trees available in %s", opts.TreePath)
		}
		treeID = ids[0]
	}

	session, err := engine.NewSession(treeID)
	if err != nil {
		return fmt.Errorf("failed to start session: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	render := func(s string) (string, error) { return s, nil }
	if !opts.Plain {
		render = tui.NewRenderer()
	}

	view, err := session.Start(ctx)
	if err != nil {
		return handleExecutionError(err)
	}

	reader := bufio.NewReader(os.Stdin)
	for {
		if view.Terminal {
			printSystemMessage("Conversation finished at '%s'.", session.State().CurrentNodeID)
			return nil
		}
		if err := printNode(view, render); err != nil {
			return err
		}
		if len(view.Choices) == 0 {
			// Dead end without an explicit terminal transition.
			printSystemMessage("Conversation finished at '%s'.", session.State().CurrentNodeID)
			return nil
		}

		index, err := promptChoice(ctx, reader, len(view.Choices))
		if err != nil {
			if isInterrupted(err) {
				fmt.Println()
				printSystemMessage("Interrupted at '%s'.", view.NodeID)
				return nil
			}
			return err
		}

		view, err = session.Choose(ctx, index)
		if err != nil {
			if errors.Is(err, domain.ErrInvalidChoice) {
				printSystemMessage("Invalid choice, try again.")
				continue
			}
			return handleExecutionError(err)
		}
	}
}

func printNode(view *domain.Presentation, render func(string) (string, error)) error {
	text := view.Text
	if view.Speaker != "" {
		text = fmt.Sprintf("**%s**: %s", view.Speaker, view.Text)
	}
	out, err := render(text)
	if err != nil {
		out = text
	}
	fmt.Println(out)

	for i, c := range view.Choices {
		line := fmt.Sprintf("  %d) %s", i+1, c.Text)
		if c.Requirements != "" {
			line = fmt.Sprintf("%s (%s)", line, c.Requirements)
		}
		fmt.Println(line)
	}
	return nil
}

// promptChoice reads a 1-based selection from stdin and returns the
// 0-based index into the offered list.
func promptChoice(ctx context.Context, reader *bufio.Reader, count int) (int, error) {
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		fmt.Print("> ")
		text, err := reader.ReadString('\n')
		if err != nil {
			return 0, err
		}
		text = strings.TrimSpace(text)
		if text == "exit" || text == "quit" {
			return 0, context.Canceled
		}
		n, err := strconv.Atoi(text)
		if err != nil || n < 1 || n > count {
			printSystemMessage("Enter a number between 1 and %d.", count)
			continue
		}
		return n - 1, nil
	}
}
