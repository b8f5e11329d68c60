package commands

import (
	"github.com/spf13/cobra"
	"gitlab.com/tozd/go/errors"

	"github.com/walteh/backtrack/cmd/backtrack/opts"
	"github.com/walteh/backtrack/pkg/backup"
	"github.com/walteh/backtrack/pkg/log"
)

// NewBackupCmd creates a new backup command
func NewBackupCmd(opts *opts.RootOpts) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Snapshot tracked files whose content changed",
		Long: `Backup hashes every tracked file and compares it against the
checksum store from the previous run. Changed and new files are
copied into a fresh timestamped directory under the backup root,
named with the version label parsed from the file's header comment;
unchanged files are skipped. Missing files are warnings, not errors.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			console := log.FromContext(ctx)

			cfg, err := opts.LoadConfig(ctx)
			if err != nil {
				return err
			}

			console.Header("backing up tracked files")

			mgr := backup.NewManager(backup.Options{
				Files:  cfg.Backup.Files,
				Store:  cfg.Backup.Store,
				Dir:    cfg.Backup.Dir,
				Logger: console,
			})

			result, err := mgr.Run(ctx)
			if err != nil {
				return errors.Errorf("running backup: %w", err)
			}

			if len(result.Copied) == 0 {
				console.Info("nothing to back up, all tracked files unchanged")
			} else {
				console.Successf("copied %d file(s) to %s", len(result.Copied), result.SnapshotDir)
			}
			if result.Missing > 0 {
				console.Warningf("%d tracked file(s) missing", result.Missing)
			}
			if result.Failed > 0 {
				console.Warningf("%d file(s) failed to copy", result.Failed)
			}
			return nil
		},
	}

	return cmd
}
