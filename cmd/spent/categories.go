package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spent/internal/category"
	"github.com/Veraticus/spent/internal/cli"
	"github.com/Veraticus/spent/internal/model"
)

func categoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Manage expense categories",
		Long: `List the shared default categories and your own, or add private ones.

Private categories are visible only to the user who created them.`,
	}

	cmd.AddCommand(listCategoriesCmd())
	cmd.AddCommand(addCategoryCmd())

	return cmd
}

func listCategoriesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List categories you can use",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defaultsOnly, _ := cmd.Flags().GetBool("defaults")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				registry := category.NewRegistry(a.store, a.clock)

				var (
					categories []model.Category
					err        error
				)
				if defaultsOnly {
					categories, err = registry.ListDefaults(ctx)
				} else {
					user, userErr := a.currentUser(ctx)
					if userErr != nil {
						return userErr
					}
					categories, err = registry.ListVisible(ctx, user.ID)
				}
				if err != nil {
					return fmt.Errorf("failed to list categories: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), renderCategories(categories))
				return nil
			})
		},
	}

	cmd.Flags().Bool("defaults", false, "show only the shared default categories")
	return cmd
}

func renderCategories(categories []model.Category) string {
	rows := make([][]string, 0, len(categories))
	for _, c := range categories {
		kind := "private"
		if c.IsDefault() {
			kind = "default"
		}
		rows = append(rows, []string{strconv.FormatInt(c.ID, 10), c.Name, c.Color, c.Icon, kind})
	}
	return cli.RenderTable([]string{"ID", "Name", "Color", "Icon", "Kind"}, rows, 0)
}

func addCategoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a private category",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			color, _ := cmd.Flags().GetString("color")
			icon, _ := cmd.Flags().GetString("icon")

			return withApp(cmd, func(ctx context.Context, a *app) error {
				user, err := a.currentUser(ctx)
				if err != nil {
					return err
				}

				created, err := category.NewRegistry(a.store, a.clock).Create(ctx, user.ID, category.NewCategory{
					Name:  args[0],
					Color: color,
					Icon:  icon,
				})
				if err != nil {
					return fmt.Errorf("failed to create category: %w", err)
				}

				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Created category %q (id %d)", created.Name, created.ID)))
				return nil
			})
		},
	}

	cmd.Flags().String("color", "", "hex color such as #FF5733 (default "+model.DefaultCategoryColor+")")
	cmd.Flags().String("icon", "", "icon name (default "+model.DefaultCategoryIcon+")")
	return cmd
}
