package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"items-api/backend/internal/client"
	"items-api/backend/internal/items"
	"items-api/backend/internal/tui"
)

const usage = `usage: itemsctl [-addr url] <command>

commands:
  health                      check the API and its database
  ls                          list all items
  get <id>                    show one item
  add <name> [description]    create an item
  rm <id>                     delete an item
  ui                          interactive browser`

func main() {
	def := os.Getenv("ITEMS_API")
	if def == "" {
		def = "http://localhost:6000"
	}
	addr := flag.String("addr", def, "items API base URL")
	flag.Usage = func() { fmt.Fprintln(os.Stderr, usage) }
	flag.Parse()

	os.Exit(run(client.New(*addr), flag.Args(), os.Stdout, os.Stderr))
}

func run(c *client.Client, args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		fmt.Fprintln(stderr, usage)
		return 2
	}
	if args[0] == "ui" {
		if err := tui.Run(c); err != nil {
			fmt.Fprintln(stderr, tui.Fail(err.Error()))
			return 1
		}
		return 0
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cmd, a := args[0], args[1:]
	switch cmd {
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usage)
		return 0

	case "health":
		h, err := c.Health(ctx)
		if err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintln(stdout, tui.OK(fmt.Sprintf("%s at %s", h.Status, h.Time.Format(time.RFC3339))))
		return 0

	case "ls":
		all, err := c.List(ctx)
		if err != nil {
			return fail(stderr, err)
		}
		lines := make([]string, 0, len(all)+1)
		lines = append(lines, fmt.Sprintf("%d items", len(all)))
		for _, it := range all {
			lines = append(lines, format(it))
		}
		fmt.Fprintln(stdout, tui.Panel(lines...))
		return 0

	case "get", "rm":
		if len(a) != 1 {
			fmt.Fprintln(stderr, tui.Fail("usage: itemsctl "+cmd+" <id>"))
			return 2
		}
		id, err := strconv.ParseInt(a[0], 10, 64)
		if err != nil {
			fmt.Fprintln(stderr, tui.Fail(cmd+": not a number: "+a[0]))
			return 2
		}
		var it items.Item
		if cmd == "get" {
			it, err = c.Get(ctx, id)
		} else {
			it, err = c.Delete(ctx, id)
		}
		if err != nil {
			return fail(stderr, err)
		}
		if cmd == "rm" {
			fmt.Fprintln(stdout, tui.OK("deleted "+format(it)))
		} else {
			fmt.Fprintln(stdout, format(it))
		}
		return 0

	case "add":
		if len(a) < 1 || len(a) > 2 {
			fmt.Fprintln(stderr, tui.Fail("usage: itemsctl add <name> [description]"))
			return 2
		}
		in := items.Input{Name: &a[0]}
		if len(a) == 2 {
			in.Description = &a[1]
		}
		it, err := c.Create(ctx, in)
		if err != nil {
			return fail(stderr, err)
		}
		fmt.Fprintln(stdout, tui.OK("created "+format(it)))
		return 0
	}

	fmt.Fprintln(stderr, tui.Fail("unknown command: "+cmd))
	fmt.Fprintln(stderr, usage)
	return 2
}

func fail(w io.Writer, err error) int {
	fmt.Fprintln(w, tui.Fail(err.Error()))
	return 1
}

func format(it items.Item) string {
	s := func(p *string) string {
		if p == nil {
			return "null"
		}
		return strconv.Quote(*p)
	}
	return fmt.Sprintf("#%d %s %s", it.ID, s(it.Name), s(it.Description))
}
