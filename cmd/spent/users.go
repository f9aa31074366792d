package main

import (
	"context"
	"fmt"
	"net/mail"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/common"
	"github.com/Veraticus/spent/internal/model"
	"github.com/Veraticus/spent/internal/service"
)

func usersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "users",
		Short: "Manage users",
		Long:  `Register people who track expenses in this database.`,
	}

	cmd.AddCommand(addUserCmd())
	cmd.AddCommand(listUsersCmd())

	return cmd
}

func addUserCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add <name> <email>",
		Short: "Register a user",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := registerUser(ctx, a, args[0], args[1])
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created user %s <%s>", user.Name, user.Email)))
				fmt.Fprintf(cmd.OutOrStdout(), "  id: %s\n", user.ID)
				return nil
			})
		},
	}
}

func registerUser(ctx context.Context, a *app, name, email string) (*model.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, common.InvalidInput("name is required")
	}
	addr, err := mail.ParseAddress(strings.TrimSpace(email))
	if err != nil {
		return nil, common.InvalidInput("invalid email %q", email)
	}

	user := &model.User{
		ID:        uuid.New(),
		Name:      name,
		Email:     addr.Address,
		CreatedAt: a.clock.Now().UTC(),
	}
	err = service.WithTx(ctx, a.store, func(tx service.Transaction) error {
		return tx.CreateUser(ctx, user)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func listUsersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List users",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withApp(cmd, func(ctx context.Context, a *app) error {
				var users []model.User
				err := service.WithTx(ctx, a.store, func(tx service.Transaction) error {
					var err error
					users, err = tx.ListUsers(ctx)
					return err
				})
				if err != nil {
					return fmt.Errorf("failed to list users: %w", err)
				}

				if len(users) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), cli.InfoStyle.Render("No users yet. Use 'spent users add' to create one."))
					return nil
				}

				rows := make([][]string, 0, len(users))
				for _, u := range users {
					rows = append(rows, []string{u.ID.String(), u.Name, u.Email})
				}
				fmt.Fprintln(cmd.OutOrStdout(), cli.RenderTable([]string{"ID", "Name", "Email"}, rows))
				return nil
			})
		},
	}
}
