// Package admin implements the operator CLI: schema migration, fixture
// seeding and direct access to the friendship and reply operations.
package admin

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"spur-go/internal/config"
	"spur-go/internal/services"
	"spur-go/internal/storage"
)

// DBOpener opens the database described by cfg.
type DBOpener func(cfg config.Config) (*gorm.DB, error)

// RootOptions holds global flags and the state shared by all commands.
type RootOptions struct {
	ConfigPath string

	openDB DBOpener
	cfg    config.Config
	db     *gorm.DB
}

func openFromConfig(cfg config.Config) (*gorm.DB, error) {
	return storage.InitDB(cfg.Database, cfg.LogLevel)
}

// NewRootCommand creates the root command of the admin CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(openFromConfig)
}

func newRootCommand(openDB DBOpener) *cobra.Command {
	opts := &RootOptions{openDB: openDB}

	cmd := &cobra.Command{
		Use:   "spur-admin",
		Short: "Administer a spur database",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.LoadConfig(opts.ConfigPath)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			opts.cfg = cfg
			db, err := opts.openDB(cfg)
			if err != nil {
				return err
			}
			opts.db = db
			return nil
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "", "config file (default ./config.yaml)")

	cmd.AddCommand(NewMigrateCommand(opts))
	cmd.AddCommand(NewSeedCommand(opts))
	cmd.AddCommand(NewAddFriendCommand(opts))
	cmd.AddCommand(NewFriendshipStatusCommand(opts))
	cmd.AddCommand(NewReplyCommand(opts))

	return cmd
}

// app is the service graph the commands run against.
type app struct {
	uow         storage.UnitOfWork
	users       storage.UserRepository
	postRepo    storage.PostRepository
	auth        services.AuthService
	friendships services.FriendshipService
	posts       services.PostService
}

func (o *RootOptions) app() *app {
	uow := storage.NewGormUnitOfWork(o.db)
	userRepo := storage.NewGormUserRepository(o.db)
	postRepo := storage.NewGormPostRepository(o.db)
	return &app{
		uow:         uow,
		users:       userRepo,
		postRepo:    postRepo,
		auth:        services.NewAuthService(userRepo, o.cfg.Auth),
		friendships: services.NewFriendshipService(uow, userRepo, storage.NewGormFriendshipRepository(o.db), postRepo),
		posts:       services.NewPostService(uow, postRepo),
	}
}

// userID resolves username to an ID.
func (a *app) userID(cmd *cobra.Command, username string) (uint, error) {
	user, err := a.users.GetByUsername(cmd.Context(), username)
	if err != nil {
		return 0, err
	}
	if user == nil {
		return 0, fmt.Errorf("%w: %s", services.ErrNonexistentUser, username)
	}
	return user.ID, nil
}

var errUsage = errors.New("usage error")

// singleRootIndex is the unique index that allows one parentless post.
const singleRootIndex = "post_single_root"
