package demo

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/thellimist/clite/internal/kit"
	"github.com/thellimist/clite/internal/progress"
	"github.com/thellimist/clite/internal/shell"
	"github.com/thellimist/clite/internal/term"
)

// TourOptions tunes Tour.
type TourOptions struct {
	// URL is fetched as JSON in the request step, which is skipped when
	// URL is empty.
	URL string
	// Key is printed from the fetched document.
	Key string
	// Step scales the sleeps of the tour. Zero means 200ms.
	Step time.Duration
}

// Tour walks through the kit services one feature at a time, printing what
// each step does.
func Tour(ctx context.Context, k *kit.Kit, opts TourOptions) error {
	step := opts.Step
	if step <= 0 {
		step = 200 * time.Millisecond
	}
	sh, tl := k.Shell, k.Term

	section := func(title string) { tl.LogStep("==>", title) }

	section("capture output")
	date, err := sh.Cmd("date").Text(ctx)
	if err != nil {
		return err
	}
	tl.Log(tl.Paint(term.HighlightBG, date))

	section("stream output")
	if _, err := sh.Cmd("echo streamed").Run(ctx); err != nil {
		return err
	}

	section("filter lines")
	lines, err := sh.Cmd(`printf 'alpha\nbeta\ngamma\n'`).Lines(ctx)
	if err != nil {
		return err
	}
	for _, l := range lines {
		if strings.Contains(l, "et") {
			tl.Log("filter result :", l)
		}
	}

	section("parse json")
	var doc struct {
		APIVersion string `json:"apiVersion"`
	}
	if err := sh.Cmd(`echo '{"apiVersion":"v1"}'`).JSON(ctx, &doc); err != nil {
		return err
	}
	tl.Log("apiVersion :", doc.APIVersion)

	section("pipe a child into another command")
	child, err := sh.Cmd("echo first; echo second").Spawn(ctx)
	if err != nil {
		return err
	}
	if _, err := sh.Cmd("xargs -n 1 echo line").Stdin(child.Stdout()).Run(ctx); err != nil {
		return err
	}
	if _, err := child.Wait(); err != nil {
		return err
	}

	section("working directory")
	if _, err := sh.Cmd("pwd").Cwd("..").Run(ctx); err != nil {
		return err
	}

	section("print command")
	if _, err := sh.Cmd("echo printed").PrintCommand(true).Run(ctx); err != nil {
		return err
	}

	section("inline environment")
	if _, err := sh.Cmd(`greeting=hello sh -c 'echo $greeting'`).Run(ctx); err != nil {
		return err
	}

	section("timeout")
	_, err = sh.Cmd("echo 1 && sleep 5 && echo 2").Timeout(step / 2).Run(ctx)
	var exitErr *shell.ExitError
	if !errors.As(err, &exitErr) || !exitErr.TimedOut {
		return fmt.Errorf("tour: expected a timeout, got %v", err)
	}
	tl.LogWarn("Timeout", exitErr.Error())

	section("kill")
	victim, err := sh.Cmd("echo 1 && sleep 5 && echo 2").Quiet().NoThrow().Spawn(ctx)
	if err != nil {
		return err
	}
	if err := shell.Sleep(ctx, step); err != nil {
		return err
	}
	if err := victim.Kill(); err != nil {
		return err
	}
	res, err := victim.Wait()
	if err != nil {
		return err
	}
	tl.Log("killed child", victim.ID, "exit code", res.Code)

	section("logging")
	tl.Log("Hello!")
	tl.LogStep("Setting up", "local directory...")
	tl.LogError("Error", "Some error message.")
	tl.LogWarn("Warning", "Some warning message.")
	tl.LogLight("Some unimportant message.")

	section("progress")
	if err := k.Progress("Updating").With(func() error { return shell.Sleep(ctx, step) }); err != nil {
		return err
	}
	items := []int{1, 2, 3, 4, 5}
	bar := k.Progress("Processing Items", progress.WithLength(len(items)))
	if err := bar.With(func() error {
		for range items {
			if err := shell.Sleep(ctx, step/4); err != nil {
				return err
			}
			bar.Increment()
		}
		return nil
	}); err != nil {
		return err
	}

	section("paths")
	tl.Log("/etc is dir :", sh.Path("/etc").IsDir())
	tl.Log("/etc/passwd exists :", sh.Path("/etc/passwd").Exists())
	if root, err := sh.Path(".").GitRoot(); err == nil {
		tl.Log("git root :", root)
	} else {
		tl.LogLight("not inside a git repository")
	}

	section("which")
	if p, err := shell.Which("sh"); err == nil {
		tl.Log("sh :", p)
	}
	tl.Log("sh exists :", shell.CommandExists("sh"))

	section("retries")
	err = shell.Retry(ctx, shell.RetryOptions{Count: 3, Delay: step / 2}, func(ctx context.Context) error {
		_, err := sh.Cmd("echo try && false").Run(ctx)
		return err
	})
	var retryErr *shell.RetryError
	if !errors.As(err, &retryErr) {
		return fmt.Errorf("tour: expected retries to give up, got %v", err)
	}
	tl.LogWarn("Gave up", retryErr.Error())

	section("request")
	if opts.URL == "" {
		tl.LogLight("no URL given, skipping")
		return nil
	}
	var data map[string]any
	if err := k.HTTP.JSON(ctx, opts.URL, &data); err != nil {
		return err
	}
	if opts.Key == "" {
		tl.Log("fetched", len(data), "keys from", opts.URL)
		return nil
	}
	tl.Log(opts.Key, "from", opts.URL, ":", formatValue(data[opts.Key]))
	return nil
}
