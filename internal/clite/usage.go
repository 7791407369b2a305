package clite

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// WriteUsage renders the help text: usage line, description, commands with
// their argument names and options with their defaults.
func (d *Descriptor) WriteUsage(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Usage: %s [Options] [--] [command [command args]]\n", d.Name)
	if d.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", d.Description)
	}

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	if len(d.commands) > 0 {
		fmt.Fprintln(tw, "\nCommands:")
		for _, c := range d.commands {
			label := c.Name
			for _, a := range c.ArgNames {
				label += " <" + a + ">"
			}
			text := c.Usage
			if c.Default {
				text = strings.TrimSpace(text + " [default]")
			}
			fmt.Fprintf(tw, "  %s\t%s\n", label, text)
		}
	}

	fmt.Fprintln(tw, "\nOptions:")
	fmt.Fprintf(tw, "  -h, --help\tShow this help [default: false]\n")
	for _, o := range d.options {
		text := strings.TrimSpace(o.Usage + " [default: " + formatDefault(o) + "]")
		fmt.Fprintf(tw, "      --%s\t%s\n", o.Name, text)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func formatDefault(o *Option) string {
	if o.Kind == KindString {
		return fmt.Sprintf("%q", o.Default)
	}
	return fmt.Sprintf("%v", o.Default)
}
