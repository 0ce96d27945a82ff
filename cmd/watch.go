package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/galaxykit/rolefix/internal/fix"
	"github.com/galaxykit/rolefix/internal/naming"
	"github.com/galaxykit/rolefix/internal/types"
	"github.com/galaxykit/rolefix/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch [root]",
	Aliases: []string{"w"},
	Short:   "Re-run normalization when the collection tree changes",
	Long: `Watch observes the collection root and re-runs the fix pipeline after
each debounced batch of changes, so a tree being edited stays normalized.

Backup and rewrite settings come from configuration exactly as for fix.
Press Ctrl+C to stop.

Examples:
  rolefix watch                   # Watch the current directory
  rolefix watch /srv/galaxy       # Watch another collection root
  rolefix watch --dry-run         # Only report what each run would change`,
	Args: cobra.MaximumNArgs(1),
	RunE: runWatch,
}

var watchFlags *StandardFlags

func init() {
	rootCmd.AddCommand(watchCmd)

	watchFlags = AddStandardFlags(watchCmd, "run")
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadRunConfig(args, watchFlags)
	if err != nil {
		return err
	}

	log := newLogger(cfg)
	engine := fix.NewEngine(fix.Options{
		Root:         cfg.Root,
		NamespaceDir: cfg.NamespacePath(),
		DryRun:       cfg.DryRun,
		Backup:       cfg.Backup.Enabled,
		SkipDirs:     cfg.Rewrite.SkipDirs,
		CacheSize:    cfg.Rewrite.CacheSize,
	}, log)

	ctx := cmd.Context()

	// Surface newly discovered invalid roles as they register
	events := engine.Registry().Watch()
	defer engine.Registry().UnWatch(events)
	go func() {
		for ev := range events {
			if ev.Type == types.EventTypeAdded && !naming.IsValid(ev.Role.Name) {
				log.Info(ctx, "discovered invalid role", "name", ev.Role.Name, "path", ev.Role.Path)
			}
		}
	}()

	// Normalize once before watching so the initial state is clean
	report, err := engine.Run(ctx)
	if err != nil {
		return err
	}
	if !report.Clean() {
		fmt.Printf("Initial run: %d renames, %d documents rewritten\n",
			report.Summary().Renamed, len(report.Rewritten))
	}

	debounce := time.Duration(cfg.Watch.DebounceMs) * time.Millisecond
	fw, err := watcher.NewFileWatcher(cfg.Root, debounce)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Stop()

	fw.AddFilter(watcher.YAMLFilter)
	fw.AddFilter(watcher.NoBackupFilter)
	fw.AddFilter(watcher.NoGitFilter)
	if len(cfg.Watch.Exclude) > 0 {
		fw.AddFilter(watcher.ExcludeFilter(cfg.Watch.Exclude...))
	}

	fw.AddHandler(func(events []watcher.ChangeEvent) error {
		log.Debug(ctx, "change batch received", "events", len(events))
		report, err := engine.Run(ctx)
		if err != nil {
			log.Error(ctx, err, "normalization run failed")
			return err
		}
		if !report.Clean() {
			s := report.Summary()
			fmt.Printf("Normalized: %d renames, %d documents rewritten, %d warnings\n",
				s.Renamed, s.Rewritten, s.Warnings)
		}
		return nil
	})

	if err := fw.Start(ctx); err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	if err := fw.AddRecursive(cfg.Root); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Root, err)
	}

	fmt.Printf("Watching %s (Ctrl+C to stop)\n", cfg.Root)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	select {
	case <-ctx.Done():
	case <-sigCh:
	}

	return nil
}
