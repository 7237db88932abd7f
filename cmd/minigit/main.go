// cmd/minigit/main.go
package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"minigit/internal/commit"
	"minigit/internal/config"
	"minigit/internal/errors"
	"minigit/internal/logging"
	"minigit/internal/repository"
	"minigit/internal/watch"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// Exit codes
const (
	exitOK        = 0
	exitInternal  = 1
	exitUsage     = 2
	exitLifecycle = 3
	exitNoCommit  = 4
)

var (
	rootDir    string
	configPath string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "minigit",
	Short: "minigit is a minimal local file versioning tool",
	Long: `minigit snapshots the full contents of the files you register under an
increasing version number and restores any snapshot on demand.

State lives in the .minigit directory of the working tree. Only one minigit
process may use a repository at a time: concurrent invocations race on the
tracked file list and version counter, and saves are not atomic.`,
	SilenceErrors: true,
	SilenceUsage:  true,
}

// usageError marks errors caused by bad command-line input.
type usageError struct {
	error
}

func (e usageError) Unwrap() error { return e.error }

func init() {
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", ".", "Working tree root")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Config file (default <root>/.minigit/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return usageError{err}
	})

	var initCmd = &cobra.Command{
		Use:   "init",
		Short: "Initialize a new repository in the working tree",
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			repo, err := repository.Create(s.root, s.options())
			if err != nil {
				return err
			}
			defer repo.Close()

			fmt.Println("Initialized empty minigit repository in", repo.StoreDir())
			return nil
		},
	}

	var addCmd = &cobra.Command{
		Use:   "add <name>",
		Short: "Start tracking a file and commit the tracked set",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")

			return withRepository(true, func(repo *repository.Repository) error {
				c, err := repo.Add(args[0], message)
				if err != nil {
					return err
				}
				fmt.Printf("%s %s\n", green("added"), args[0])
				printCommit(c)
				return nil
			})
		},
	}

	var removeCmd = &cobra.Command{
		Use:   "remove <name>",
		Short: "Stop tracking a file",
		Long:  `Stop tracking a file. Recorded commits and the working file are left as they are.`,
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRepository(true, func(repo *repository.Repository) error {
				f, err := repo.Remove(args[0])
				if err != nil {
					return err
				}
				fmt.Printf("%s %s\n", red("removed"), f.Path)
				return nil
			})
		},
	}

	var commitCmd = &cobra.Command{
		Use:     "commit [message]",
		Short:   "Snapshot every tracked file under the next version",
		Args:    maxArgs(1),
		Example: `  minigit commit -m "fix typo"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			message, _ := cmd.Flags().GetString("message")
			if message == "" && len(args) == 1 {
				message = args[0]
			}

			return withRepository(true, func(repo *repository.Repository) error {
				c, err := repo.Commit(message)
				if err != nil {
					return err
				}
				printCommit(c)
				return nil
			})
		},
	}

	var checkoutCmd = &cobra.Command{
		Use:   "checkout <version>",
		Short: "Restore the files recorded in a commit",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := strconv.Atoi(args[0])
			if err != nil {
				return usageError{fmt.Errorf("invalid version %q", args[0])}
			}

			return withRepository(false, func(repo *repository.Repository) error {
				c, err := repo.Checkout(version)
				if err != nil {
					return err
				}
				fmt.Printf("Restored version %s\n", yellow(c.Version))
				for _, f := range c.Files {
					fmt.Printf("\t%s %s\n", green("✓"), f.Path)
				}
				return nil
			})
		},
	}

	var historyCmd = &cobra.Command{
		Use:   "history",
		Short: "Show recent commits",
		Long:  `Show the latest commit, or the last N commits in ascending order with --lines.`,
		Args:  noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lines, _ := cmd.Flags().GetInt("lines")

			return withRepository(false, func(repo *repository.Repository) error {
				commits, err := repo.History(lines)
				if err != nil {
					return err
				}
				for _, c := range commits {
					printCommit(c)
				}
				return nil
			})
		},
	}

	var watchCmd = &cobra.Command{
		Use:   "watch",
		Short: "Commit tracked files automatically when they change",
		Long: `Watch the tracked files and commit the tracked set whenever one of them is
written. Runs until interrupted. Do not run other minigit commands against the
repository while watching.`,
		Args: noArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			debounce, _ := cmd.Flags().GetDuration("debounce")

			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			repo, err := repository.Load(s.root, s.options())
			if err != nil {
				return err
			}
			defer repo.Close()

			w, err := watch.New(repo, watch.Options{Debounce: debounce, Logger: s.logger})
			if err != nil {
				return err
			}
			defer w.Close()

			ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			fmt.Printf("Watching %d tracked files (Ctrl-C to stop)\n", len(repo.Files()))
			if err := w.Run(ctx); err != nil {
				return err
			}
			fmt.Printf("Stopped at version %s\n", yellow(repo.Version()))
			return nil
		},
	}

	addCmd.Flags().StringP("message", "m", "", "Commit message")
	commitCmd.Flags().StringP("message", "m", "", "Commit message")
	historyCmd.Flags().IntP("lines", "n", 0, "Number of most recent commits to show")
	watchCmd.Flags().Duration("debounce", 500*time.Millisecond, "Group changes arriving within this window")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(removeCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(checkoutCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(watchCmd)
}

// session carries the ambient state of one invocation.
type session struct {
	root   string
	cfg    *config.Config
	logger *logging.Logger
}

func newSession() (*session, error) {
	root, err := filepath.Abs(rootDir)
	if err != nil {
		return nil, fmt.Errorf("resolving root %s: %w", rootDir, err)
	}

	path := configPath
	if path == "" {
		path = filepath.Join(root, config.DefaultStoreDir, config.FileName)
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if logLevel != "" {
		cfg.LogLevel = logLevel
	}

	logger, err := logging.NewLogger(cfg.LogLevel)
	if err != nil {
		return nil, usageError{fmt.Errorf("initializing logger: %w", err)}
	}
	logger = logger.WithInvocationID()
	logger.Debug("session started", zap.String("root", root), zap.String("backend", cfg.Store.Backend))

	return &session{root: root, cfg: cfg, logger: logger}, nil
}

func (s *session) options() repository.Options {
	return repository.Options{Config: s.cfg, Logger: s.logger}
}

func (s *session) close() {
	s.logger.Sync()
}

// withRepository runs fn on the loaded repository and saves afterwards when save is set.
func withRepository(save bool, fn func(repo *repository.Repository) error) error {
	s, err := newSession()
	if err != nil {
		return err
	}
	defer s.close()

	repo, err := repository.Load(s.root, s.options())
	if err != nil {
		return err
	}
	defer repo.Close()

	if err := fn(repo); err != nil {
		return err
	}
	if !save {
		return nil
	}
	if err := repo.Save(); err != nil {
		return fmt.Errorf("saving repository: %w", err)
	}
	return nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if err := cobra.NoArgs(cmd, args); err != nil {
		return usageError{err}
	}
	return nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.ExactArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

func maxArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := cobra.MaximumNArgs(n)(cmd, args); err != nil {
			return usageError{err}
		}
		return nil
	}
}

var (
	green  = color.New(color.FgGreen).SprintFunc()
	red    = color.New(color.FgRed).SprintFunc()
	yellow = color.New(color.FgYellow).SprintFunc()
	cyan   = color.New(color.FgCyan).SprintFunc()
)

func printCommit(c *commit.Commit) {
	fmt.Printf("%s %s\n", yellow(fmt.Sprintf("version %d", c.Version)), c.Message)
	if len(c.Files) == 0 {
		fmt.Println("\t(no tracked files)")
		return
	}
	fmt.Printf("\t%s\n", cyan(strings.Join(c.Names(), ", ")))
}

// exitCode maps an error to the process exit status.
func exitCode(err error) int {
	if err == nil {
		return exitOK
	}

	var usage usageError
	if stderrors.As(err, &usage) {
		return exitUsage
	}

	switch errors.TypeOf(err) {
	case errors.ErrorTypeInvalidPath, errors.ErrorTypeAlreadyTracked,
		errors.ErrorTypeNotFound, errors.ErrorTypeInvalidRange:
		return exitUsage
	case errors.ErrorTypeAlreadyInitialized, errors.ErrorTypeNotInitialized:
		return exitLifecycle
	case errors.ErrorTypeCommitNotFound:
		return exitNoCommit
	default:
		return exitInternal
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, red("error:"), err)
		if strings.HasPrefix(err.Error(), "unknown command") {
			os.Exit(exitUsage)
		}
		os.Exit(exitCode(err))
	}
}
