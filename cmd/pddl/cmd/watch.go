package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/corey/pddl/internal/domain/workspace"
	"github.com/spf13/cobra"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch the workspace and stream file events",
	Long:  "Loads the workspace, then re-parses files as they change on disk and prints every inserted, updated and removed file until interrupted.",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Stop()

	out := cmd.OutOrStdout()
	a.Workspace.Subscribe(func(ev workspace.Event) {
		fmt.Fprint(out, formatEvent(a.RelPath(ev.URI), ev))
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.Start(ctx); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n", paint(colorGray, fmt.Sprintf("watching %s (ctrl-c to stop)", a.Root)))
	<-ctx.Done()
	return nil
}
