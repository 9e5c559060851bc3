package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/stuverflow/stuverflow-go/internal/models"
)

func (a *App) Search(ctx context.Context, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))
	if query == "" {
		fmt.Fprintln(a.out, "Usage: search <query>")
		return nil
	}

	env, err := a.search.SearchAll(ctx, query, models.SearchOptions{})
	if err != nil {
		fmt.Fprintln(a.out, "Search failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "Questions (%d):\n", env.Meta.QuestionsTotal)
	for _, q := range env.Questions {
		fmt.Fprintf(a.out, "  [%s] %s (%d answers)\n", q.ID, q.Title, q.AnswerCount)
	}
	fmt.Fprintf(a.out, "Users (%d):\n", env.Meta.UsersTotal)
	for _, u := range env.Users {
		fmt.Fprintf(a.out, "  @%s: %s\n", u.Handle, u.Name)
	}
	fmt.Fprintf(a.out, "Communities (%d):\n", env.Meta.CommunitiesTotal)
	for _, c := range env.Communities {
		fmt.Fprintf(a.out, "  %s (%d members)\n", c.Name, c.MemberCount)
	}
	return nil
}

func (a *App) Suggest(ctx context.Context, args []string) error {
	query := strings.TrimSpace(strings.Join(args, " "))

	var bundle models.SuggestionBundle
	select {
	case res := <-a.suggest.Call(ctx, query):
		if res.Err != nil {
			fmt.Fprintln(a.out, "Suggestions failed:", res.Err)
			return res.Err
		}
		bundle = res.Value
	case <-ctx.Done():
		return ctx.Err()
	}

	if len(bundle.Questions)+len(bundle.Tags)+len(bundle.Users)+len(bundle.Communities) == 0 {
		fmt.Fprintln(a.out, "No suggestions.")
		return nil
	}
	printList := func(label string, items []string) {
		if len(items) == 0 {
			return
		}
		fmt.Fprintf(a.out, "%s: %s\n", label, strings.Join(items, ", "))
	}
	printList("Questions", bundle.Questions)
	printList("Tags", bundle.Tags)
	printList("Users", bundle.Users)
	printList("Communities", bundle.Communities)
	return nil
}

func (a *App) Trending(ctx context.Context, args []string) error {
	feed := "tags"
	if len(args) > 0 {
		feed = args[0]
	}

	items, err := a.search.Trending(ctx, feed)
	if err != nil {
		fmt.Fprintln(a.out, "Trending failed:", err)
		return err
	}

	fmt.Fprintf(a.out, "Trending %s:\n", feed)
	for _, item := range items {
		fmt.Fprintf(a.out, "  %s (%d)\n", item.Label, item.Count)
	}
	return nil
}

func (a *App) History(ctx context.Context) error {
	history, err := a.search.History(ctx)
	if err != nil {
		fmt.Fprintln(a.out, "History unavailable:", err)
		return err
	}
	if len(history) == 0 {
		fmt.Fprintln(a.out, "No recent searches.")
		return nil
	}
	for i, q := range history {
		fmt.Fprintf(a.out, "%2d. %s\n", i+1, q)
	}
	return nil
}
