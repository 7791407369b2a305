// Package demo is a sample tool built on the dispatcher and the kit
// services. It doubles as the fixture for the MCP exposure and the CLI.
package demo

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/thellimist/clite/internal/clite"
	"github.com/thellimist/clite/internal/kit"
	"github.com/thellimist/clite/internal/prompt"
	"github.com/thellimist/clite/internal/term"
)

// DefaultFile is what read-file shows when no path is given.
const DefaultFile = "./go.mod"

// Tool holds the demo options and the services its commands use.
type Tool struct {
	WebURL  string
	Verbose bool

	kit *kit.Kit
}

// New returns a Tool running on k.
func New(k *kit.Kit) *Tool {
	return &Tool{kit: k}
}

// Factory builds a fresh Tool per call whose output goes to stdout and
// stderr. Diagnostics keep going to cfg's log output.
func Factory(cfg kit.Config) func(stdout, stderr io.Writer) (clite.Tool, func(), error) {
	return func(stdout, stderr io.Writer) (clite.Tool, func(), error) {
		c := cfg
		if c.LogOutput == nil {
			c.LogOutput = c.Stderr
		}
		c.Stdout, c.Stderr = stdout, stderr
		c.NoColor = true
		k, err := kit.New(c)
		if err != nil {
			return nil, nil, err
		}
		return New(k), func() { _ = k.Close() }, nil
	}
}

func (t *Tool) Register(b *clite.Builder) {
	b.Description("Demo tool: runs commands, reads files, fetches JSON and asks questions.")
	b.String("webUrl", &t.WebURL, "none", "URL fetched when fetch gets no argument")
	b.Bool("verbose", &t.Verbose, false, "echo commands before running them")

	b.Command("main", t.main, clite.WithUsage("print the date, then read-file"))
	b.Command("exec_date", t.execDate, clite.WithUsage("print the date"))
	b.Command("cat_grep", t.catGrep, clite.WithUsage("show the /etc/passwd entries mentioning /root"))
	b.Command("readFile", t.readFile, clite.WithArgs("path"), clite.WithUsage("print a file in gray"))
	b.Command("fetch", t.fetch, clite.WithArgs("url", "key"), clite.WithUsage("fetch JSON and print one key"))
	b.Command("ask", t.ask, clite.WithUsage("ask a few questions"))
}

func (t *Tool) prepare() {
	t.kit.Shell.SetPrintCommand(t.Verbose)
}

func (t *Tool) main(c *clite.Context) error {
	if err := t.execDate(c); err != nil {
		return err
	}
	return t.readFile(&clite.Context{
		Context: c.Context,
		Command: c.Command,
		Stdout:  c.Stdout,
		Stderr:  c.Stderr,
		Log:     c.Log,
	})
}

func (t *Tool) execDate(c *clite.Context) error {
	t.prepare()
	out, err := t.kit.Shell.Cmd("date").Text(c)
	if err != nil {
		return err
	}
	t.kit.Term.Log(t.kit.Term.Paint(term.HighlightBG, out))
	t.kit.Term.LogLight(fmt.Sprintf("webUrl=%s verbose=%t", t.WebURL, t.Verbose))
	return nil
}

func (t *Tool) catGrep(c *clite.Context) error {
	t.prepare()
	out, err := t.kit.Shell.Cmd("cat /etc/passwd | grep /root").Text(c)
	if err != nil {
		return err
	}
	t.kit.Term.Log(t.kit.Term.Paint(term.HighlightBG, out))
	return nil
}

func (t *Tool) readFile(c *clite.Context) error {
	t.prepare()
	content, err := t.kit.Shell.Path(c.Arg(0, DefaultFile)).ReadText()
	if err != nil {
		return err
	}
	t.kit.Term.LogLight(strings.TrimRight(content, "\n"))
	return nil
}

func (t *Tool) fetch(c *clite.Context) error {
	t.prepare()
	url := c.Arg(0, "")
	if url == "" {
		url = t.WebURL
	}
	if url == "" || url == "none" {
		return errors.New("fetch: no URL, pass one or set --web-url")
	}
	key := c.Arg(1, "")

	var data map[string]any
	bar := t.kit.Progress("Fetching " + url)
	if err := bar.With(func() error { return t.kit.HTTP.JSON(c, url, &data) }); err != nil {
		return err
	}

	if key == "" {
		pretty, err := json.MarshalIndent(data, "", "  ")
		if err != nil {
			return err
		}
		t.kit.Term.Log(string(pretty))
		return nil
	}
	v, ok := data[key]
	if !ok {
		return fmt.Errorf("fetch: key %q not found in %s", key, url)
	}
	t.kit.Term.LogStep(key, formatValue(v))
	return nil
}

func (t *Tool) ask(*clite.Context) error {
	p := t.kit.Prompt
	pass, err := p.Input("password : ", true)
	if err != nil {
		return err
	}
	ok, err := p.Confirm("continue?", true)
	if err != nil {
		return err
	}
	if !ok {
		t.kit.Term.LogWarn("Stopped", "at your request.")
		return nil
	}
	colours := []string{"Red", "Green", "Blue"}
	colour, err := p.Select("What's your favourite colour?", colours)
	if err != nil {
		return err
	}
	days := []prompt.Choice{{Text: "Monday"}, {Text: "Wednesday", Selected: true}, {Text: "Blue"}}
	picked, err := p.MultiSelect("Which of the following are days of the week?", days)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(picked))
	for _, i := range picked {
		names = append(names, days[i].Text)
	}
	t.kit.Term.LogStep("Password", fmt.Sprintf("%d characters", len(pass)))
	t.kit.Term.LogStep("Colour", colours[colour])
	t.kit.Term.LogStep("Days", strings.Join(names, ", "))
	return nil
}

func formatValue(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case map[string]any, []any:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	default:
		return fmt.Sprint(v)
	}
}
