package admin

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"spur-go/internal/models"
	"spur-go/internal/services"
	"spur-go/internal/storage"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := storage.AutoMigrateTables(opts.db); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}
}

// SeedOptions holds flags for the seed command.
type SeedOptions struct {
	*RootOptions
	Users    []string
	Password string
	RootBody string
}

// NewSeedCommand creates the seed command.
func NewSeedCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SeedOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Create fixture users and the root post",
		Long: `Create fixture users and the root post.

Existing users are left untouched. The root post is authored by the first
user and only created when no root exists yet.

Example:
  spur-admin seed --users alice,bob,carol --password changeme123`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeed(cmd, opts)
		},
	}

	cmd.Flags().StringSliceVar(&opts.Users, "users", []string{"alice", "bob"}, "usernames to create")
	cmd.Flags().StringVar(&opts.Password, "password", "changeme123", "password for every seeded user")
	cmd.Flags().StringVar(&opts.RootBody, "root-body", "Welcome to spur", "body of the root post")

	return cmd
}

func runSeed(cmd *cobra.Command, opts *SeedOptions) error {
	if len(opts.Users) == 0 {
		return fmt.Errorf("%w: --users must name at least one user", errUsage)
	}
	a := opts.app()
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	for _, username := range opts.Users {
		username = strings.TrimSpace(username)
		_, err := a.auth.Register(ctx, username, username, username+"@example.com", opts.Password)
		switch {
		case err == nil:
			fmt.Fprintf(out, "created user %s\n", username)
		case errors.Is(err, services.ErrDuplicateUsername), errors.Is(err, services.ErrDuplicateEmail):
			fmt.Fprintf(out, "user %s already exists\n", username)
		default:
			return fmt.Errorf("seeding user %s: %w", username, err)
		}
	}

	authorID, err := a.userID(cmd, strings.TrimSpace(opts.Users[0]))
	if err != nil {
		return err
	}
	root := &models.Post{AuthorID: &authorID, Body: opts.RootBody}
	var existing *models.Post
	err = storage.RunInTx(ctx, a.uow, func(tx storage.Tx) error {
		found, err := a.postRepo.GetRootWithTx(ctx, tx.Exec())
		if err != nil {
			return err
		}
		if found != nil {
			existing = found
			return nil
		}
		return a.postRepo.CreateWithTx(ctx, tx.Exec(), root)
	})
	// A concurrent seed committed its root between our read and insert.
	if storage.IsConstraintViolation(err, storage.UniqueViolation, singleRootIndex) {
		err = nil
		existing = root
	}
	if err != nil {
		return fmt.Errorf("creating root post: %w", err)
	}
	if existing != nil {
		fmt.Fprintln(out, "root post already exists")
		return nil
	}
	fmt.Fprintf(out, "created root post %d\n", root.ID)
	return nil
}

// NewAddFriendCommand creates the add-friend command.
func NewAddFriendCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add-friend <sender> <recipient>",
		Short: "Send or accept a friend request on behalf of sender",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app()
			senderID, err := a.userID(cmd, args[0])
			if err != nil {
				return err
			}
			becameFriends, err := a.friendships.AddFriendByUsername(cmd.Context(), senderID, args[1])
			if err != nil {
				return err
			}
			if becameFriends {
				fmt.Fprintf(cmd.OutOrStdout(), "%s and %s are now friends\n", args[0], args[1])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s sent a friend request to %s\n", args[0], args[1])
			}
			return nil
		},
	}
}

// NewFriendshipStatusCommand creates the friendship-status command.
func NewFriendshipStatusCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "friendship-status <user> <other>",
		Short: "Print the relationship status between two users",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			a := opts.app()
			userID, err := a.userID(cmd, args[0])
			if err != nil {
				return err
			}
			status, err := a.friendships.GetStatus(cmd.Context(), userID, args[1])
			if err != nil {
				return err
			}
			if status.State == models.FriendshipPending {
				requester := args[1]
				if status.From == userID {
					requester = args[0]
				}
				fmt.Fprintf(cmd.OutOrStdout(), "pending from %s\n", requester)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), status.State)
			return nil
		},
	}
}

// NewReplyCommand creates the reply command.
func NewReplyCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "reply <author> <parent-id> <body>",
		Short: "Reply to a post on behalf of author",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			parentID, err := strconv.ParseUint(args[1], 10, 64)
			if err != nil || parentID == 0 {
				return fmt.Errorf("%w: invalid parent id %q", errUsage, args[1])
			}
			if strings.TrimSpace(args[2]) == "" {
				return fmt.Errorf("%w: body must not be empty", errUsage)
			}

			a := opts.app()
			authorID, err := a.userID(cmd, args[0])
			if err != nil {
				return err
			}
			reply, err := a.posts.CreateReply(cmd.Context(), authorID, uint(parentID), args[2])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created reply %d\n", reply.ID)
			return nil
		},
	}
}
