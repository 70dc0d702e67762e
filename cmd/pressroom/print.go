package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abelbrown/pressroom/internal/aggregate"
	"github.com/abelbrown/pressroom/internal/config"
	"github.com/abelbrown/pressroom/internal/richtext"
	"github.com/abelbrown/pressroom/internal/wp"
)

// Plain-text commands share the TUI's stack but print once and exit.

var homeCmd = &cobra.Command{
	Use:   "home",
	Short: "Print the category sections of the home view",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := printStack()
		if err != nil {
			return err
		}
		plan, err := s.engine.Refresh(cmd.Context(), nil)
		if err != nil {
			return err
		}
		printPlan(cmd.OutOrStdout(), plan)
		return nil
	},
}

var postCmd = &cobra.Command{
	Use:   "post <id>",
	Short: "Print a post",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, err := printStack()
		if err != nil {
			return err
		}
		page, err := s.engine.Post(cmd.Context(), id)
		if err != nil {
			return err
		}
		printArticle(cmd.OutOrStdout(), page.Post.Title.Rendered, page.ImageURL, page.Post.Content.Rendered)
		return nil
	},
}

var categoryCmd = &cobra.Command{
	Use:   "category <id>",
	Short: "List the posts of a category",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		s, err := printStack()
		if err != nil {
			return err
		}
		page, err := s.engine.Category(cmd.Context(), id)
		if err != nil {
			return err
		}
		printCategory(cmd.OutOrStdout(), page)
		return nil
	},
}

var pageCmd = &cobra.Command{
	Use:   "page <slug>",
	Short: "Print a static page",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := printStack()
		if err != nil {
			return err
		}
		page, err := s.client.PageBySlug(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		printArticle(cmd.OutOrStdout(), page.Title.Rendered, "", page.Content.Rendered)
		return nil
	},
}

var searchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search posts",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		term := strings.TrimSpace(strings.Join(args, " "))
		s, err := printStack()
		if err != nil {
			return err
		}
		if len([]rune(term)) < s.cfg.UI.SearchMinLen {
			return fmt.Errorf("search term must be at least %d characters", s.cfg.UI.SearchMinLen)
		}
		hits, err := s.client.Search(cmd.Context(), term)
		if err != nil {
			return err
		}
		printHits(cmd.OutOrStdout(), hits)
		return nil
	},
}

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Print the navigation menu",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := printStack()
		if err != nil {
			return err
		}
		menu, label, err := s.nav(cmd.Context())
		if err != nil {
			return err
		}
		printMenu(cmd.OutOrStdout(), label, menu)
		return nil
	},
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write the default config file if none exists",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := config.EnsureDefault()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

func printStack() (*stack, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return newStack(cfg, nil), nil
}

func parseID(s string) (int, error) {
	id, err := strconv.Atoi(s)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", s)
	}
	return id, nil
}

func printPlan(w io.Writer, plan aggregate.Plan) {
	if plan.Empty() {
		fmt.Fprintln(w, "No content")
		return
	}
	for i, sec := range plan.Sections {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s (%d of %d)\n", richtext.Text(sec.Category.Name), sec.DisplayCount, sec.Available)
		for _, p := range sec.Posts {
			fmt.Fprintf(w, "  %6d  %s  [%s]\n", p.ID, richtext.Text(p.Title.Rendered), plan.MediaURL(p.FeaturedMedia))
		}
	}
}

func printCategory(w io.Writer, page aggregate.CategoryPage) {
	fmt.Fprintln(w, richtext.Text(page.CategoryName(page.Active)))
	if len(page.Posts) == 0 {
		fmt.Fprintln(w, "  No posts in this category")
		return
	}
	for _, p := range page.Posts {
		fmt.Fprintf(w, "  %6d  %s  [%s]\n", p.ID, richtext.Text(p.Title.Rendered), page.MediaURL(p))
	}
}

func printArticle(w io.Writer, title, image, body string) {
	fmt.Fprintln(w, richtext.Text(title))
	if image != "" {
		fmt.Fprintf(w, "[%s]\n", image)
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, richtext.Render(body))
}

func printHits(w io.Writer, hits []wp.SearchHit) {
	if len(hits) == 0 {
		fmt.Fprintln(w, "No results")
		return
	}
	for _, h := range hits {
		fmt.Fprintf(w, "%6d  %s\n", h.ID, richtext.Text(h.Title.Rendered))
	}
}

func printMenu(w io.Writer, label string, menu []wp.MenuEntry) {
	fmt.Fprintln(w, label)
	for _, e := range menu {
		fmt.Fprintf(w, "  %s  %s\n", e.Item.Title, e.Item.URL)
		for _, c := range e.Children {
			fmt.Fprintf(w, "    %s  %s\n", c.Title, c.URL)
		}
	}
}
