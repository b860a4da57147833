// Command releasectl inspects the bot's state file. Stop the bot first:
// the state file is locked while it runs.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/term"

	"github.com/mmcdole/releasebot/internal/adapter"
	"github.com/mmcdole/releasebot/internal/card"
	"github.com/mmcdole/releasebot/internal/domain"
	"github.com/mmcdole/releasebot/internal/preview"
	"github.com/mmcdole/releasebot/internal/search"
	"github.com/mmcdole/releasebot/internal/store"
)

const usage = `usage: releasectl [-config path] <command>

commands:
  chats                 list subscribed chats
  lists                 list retained result lists
  show <list-id> [n]    show page n (0-based) of a list
`

var errUsage = errors.New("invalid arguments")

func main() {
	var configPath string
	flag.StringVar(&configPath, "config", "", "path to config.yaml")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()

	if err := run(configPath, flag.Args(), os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			flag.Usage()
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string, args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := adapter.LoadConfig(configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cfg.Store.Path == "" {
		return errors.New("store.path is empty: the bot runs without a state file")
	}

	logger := adapter.NullLogger()
	st, err := store.Open(store.Options{
		Path:     cfg.Store.Path,
		MaxLists: cfg.Store.MaxLists,
		Logger:   logger,
	})
	if err != nil {
		return fmt.Errorf("failed to open state (is the bot running?): %w", err)
	}
	defer st.Close()

	switch args[0] {
	case "chats":
		return printChats(out, st)
	case "lists":
		return printLists(out, st)
	case "show":
		return show(out, st, logger, args[1:])
	default:
		return fmt.Errorf("unknown command %q: %w", args[0], errUsage)
	}
}

func printChats(out io.Writer, st *store.State) error {
	for _, id := range st.Subscribers() {
		fmt.Fprintln(out, id)
	}
	return nil
}

func printLists(out io.Writer, st *store.State) error {
	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCREATED\tPAGES\tCAPTION")
	for _, list := range st.Lists() {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n",
			list.ID, list.CreatedAt.Local().Format(time.DateTime), list.Len(), list.Caption)
	}
	return w.Flush()
}

func show(out io.Writer, st *store.State, logger *slog.Logger, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	list, err := st.GetList(args[0])
	if err != nil {
		return err
	}
	if list.Len() == 0 {
		fmt.Fprintln(out, "(empty list)")
		return nil
	}

	index := 0
	if len(args) > 1 {
		index, err = strconv.Atoi(args[1])
		if err != nil || index < 0 || index >= list.Len() {
			return fmt.Errorf("page must be in [0, %d): %w", list.Len(), errUsage)
		}
	}

	genres := search.NewGenreIndex(logger)
	for _, kind := range domain.Kinds {
		if names, ok := st.LoadGenres(kind); ok {
			genres.Set(kind, names)
		}
	}
	renderer := card.NewRenderer(genres)

	f, ok := out.(*os.File)
	if !ok || !term.IsTerminal(int(f.Fd())) {
		c := renderer.Render(list.Items[index], card.Params{
			Index:  index,
			Total:  list.Len(),
			ListID: list.ID,
			Prefix: list.Caption,
		})
		fmt.Fprintln(out, card.PlainText(c.Text))
		if c.ImageURL != "" {
			fmt.Fprintln(out, c.ImageURL)
		}
		return nil
	}

	model := preview.New(list, renderer, index)
	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("pager: %w", err)
	}
	return nil
}
